package api

import (
	"encoding/json"
	"net/http"

	"github.com/savegress/stockflow/internal/allocation"
	"github.com/savegress/stockflow/internal/config"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	config *config.Config
}

// NewHandlers creates new handlers
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{config: cfg}
}

// Response helpers
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: false, Error: message})
}

// Health check
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Allocate runs one full allocation over the posted snapshot and demand.
// Each request builds a fresh pool; no state survives between calls.
func (h *Handlers) Allocate(w http.ResponseWriter, r *http.Request) {
	var in allocation.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(in.Demand) == 0 && len(in.PickupDemand) == 0 {
		writeError(w, http.StatusBadRequest, "No demand lines provided")
		return
	}

	report := allocation.Run(h.config, in)
	writeJSON(w, http.StatusOK, report)
}

// GetClassificationRules exposes the live location classification table and
// deny-lists, so operators can see how raw names will be bucketed.
func (h *Handlers) GetClassificationRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules":           h.config.Classification.Rules,
		"deny_locations":  h.config.Classification.DenyLocations,
		"deny_requesters": h.config.Classification.DenyRequesters,
	})
}
