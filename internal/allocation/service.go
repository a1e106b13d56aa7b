package allocation

import (
	"github.com/google/uuid"

	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/internal/ingest"
	"github.com/savegress/stockflow/pkg/models"
)

// Input carries the raw tables for one allocation run. PickupDemand is the
// optional set of already-committed pickup-plan lines that pre-consume the
// pool at tier 0 before the main demand competes for it.
type Input struct {
	Stock          []models.RawStockRow  `json:"stock"`
	PurchaseOrders []models.RawOrderRow  `json:"purchase_orders"`
	PickupPlans    []models.RawOrderRow  `json:"pickup_plans"`
	Demand         []models.RawDemandRow `json:"demand"`
	PickupDemand   []models.RawDemandRow `json:"pickup_demand,omitempty"`
}

// Run performs one complete allocation: ingest, pre-pass, tiers, report.
// Every run builds a fresh pool; nothing is shared across runs.
func Run(cfg *config.Config, in Input) *models.Report {
	builder := ingest.NewBuilder(cfg)
	pool := builder.BuildPool(in.Stock, in.PurchaseOrders, in.PickupPlans)
	demand := builder.BuildDemand("demand", in.Demand)
	pickup := builder.BuildDemand("pickup_demand", in.PickupDemand)

	orch := NewOrchestrator(pool, cfg)
	tasks, _, advice := orch.Run(demand, pickup)

	projector := NewProjector(cfg)
	results := projector.Project(pool, demand, tasks)

	filled, short := 0, 0
	for _, t := range tasks {
		if t.Remaining() > 0 {
			short++
		} else {
			filled++
		}
	}

	return &models.Report{
		RunID:           uuid.NewString(),
		Results:         results,
		Decisions:       orch.Decisions(),
		DataQuality:     builder.Events(),
		Reorder:         advice,
		RemainingSupply: projector.RemainingSupply(pool),
		Summary:         models.RunSummary{
			DemandLines:  len(demand),
			PickupLines:  len(pickup),
			FilledLines:  filled,
			ShortLines:   short,
			RejectedRows: len(builder.Events()),
		},
	}
}
