package models

// LocationClass is the normalized bucket a free-text warehouse name maps to.
type LocationClass string

const (
	ClassDomestic   LocationClass = "domestic_wh"
	ClassOutsourced LocationClass = "outsourced_wh"
	ClassCloud      LocationClass = "cloud_wh"
	ClassOther      LocationClass = "other"
)

// OrderType distinguishes the two kinds of not-yet-received supply.
type OrderType string

const (
	OrderTypePurchase   OrderType = "purchase_order"
	OrderTypePickupPlan OrderType = "pickup_plan"
)

// SourceLabels is the fixed display order for usage breakdowns and
// remaining-balance snapshots: on-hand classes first, then inbound pools.
var SourceLabels = []string{
	string(ClassDomestic),
	string(ClassOutsourced),
	string(ClassCloud),
	string(OrderTypePickupPlan),
	string(OrderTypePurchase),
}

// StockBatch is one physical stock record. Batches are only ever
// decremented, never removed; a zero-quantity batch is inert.
type StockBatch struct {
	ItemID    string        `json:"item_id"`
	SubItemID string        `json:"sub_item_id,omitempty"`
	Class     LocationClass `json:"class"`
	Quantity  int           `json:"quantity"`
	Location  string        `json:"location"` // raw warehouse name
	Zone      string        `json:"zone,omitempty"`
}

// OpenOrderBatch is supply that has not physically arrived yet.
type OpenOrderBatch struct {
	ItemID    string    `json:"item_id"`
	SubItemID string    `json:"sub_item_id,omitempty"`
	Quantity  int       `json:"quantity"`
	Type      OrderType `json:"type"`
}

// Raw input rows, as handed over by whatever produced the tables.
// Quantities stay strings here; the ingest layer owns tolerant parsing.

type RawStockRow struct {
	ItemID    string `json:"item_id"`
	SubItemID string `json:"sub_item_id,omitempty"`
	Location  string `json:"location"`
	Zone      string `json:"zone,omitempty"`
	Quantity  string `json:"quantity"`
}

type RawOrderRow struct {
	ItemID    string `json:"item_id"`
	SubItemID string `json:"sub_item_id,omitempty"`
	Quantity  string `json:"quantity"`
	Requester string `json:"requester,omitempty"`
}

type RawDemandRow struct {
	Tag         string            `json:"tag,omitempty"`
	Market      string            `json:"market,omitempty"`
	ItemID      string            `json:"item_id"`
	SubItemID   string            `json:"sub_item_id,omitempty"`
	Quantity    string            `json:"quantity"`
	Passthrough map[string]string `json:"passthrough,omitempty"`
}

// DemandLine is a validated demand row ready for scheduling.
type DemandLine struct {
	RowID       int               `json:"row_id"`
	ItemID      string            `json:"item_id"`
	SubItemID   string            `json:"sub_item_id,omitempty"`
	Quantity    int               `json:"quantity"`
	Market      string            `json:"market,omitempty"`
	Tag         string            `json:"tag,omitempty"`
	Export      bool              `json:"export"`
	NewDemand   bool              `json:"new_demand"`
	Passthrough map[string]string `json:"passthrough,omitempty"`
}

// RepackDetail records a substituted-sub-item take. Repacking changes which
// physical unit fulfills which committed label, so it is always surfaced.
type RepackDetail struct {
	SourceLocation string `json:"source_location"`
	Zone           string `json:"zone,omitempty"`
	SubItemID      string `json:"sub_item_id"`
	Quantity       int    `json:"quantity"`
}

// DataQualityEvent records an input row excluded during ingestion.
// Exclusions are normal outcomes, not errors.
type DataQualityEvent struct {
	Table  string `json:"table"`
	ItemID string `json:"item_id,omitempty"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// DecisionRow is one (task, round) entry of the audit trail.
type DecisionRow struct {
	RowID     int    `json:"row_id"`
	ItemID    string `json:"item_id"`
	SubItemID string `json:"sub_item_id,omitempty"`
	Tier      string `json:"tier"`
	Round     string `json:"round"`
	Trace     string `json:"trace"`
	Filled    int    `json:"filled"`
}

// AllocationResult is the output row for one input demand line.
type AllocationResult struct {
	RowID        int               `json:"row_id"`
	ItemID       string            `json:"item_id"`
	SubItemID    string            `json:"sub_item_id,omitempty"`
	Quantity     int               `json:"quantity"`
	Status       string            `json:"status"`
	Filled       int               `json:"filled"`
	Short        bool              `json:"short"`
	ItemShortage int               `json:"item_shortage"` // summed across all lines of the item
	Usage        map[string]int    `json:"usage,omitempty"`
	RepackFrom   string            `json:"repack_from,omitempty"`
	RepackZones  string            `json:"repack_zones,omitempty"`
	RepackSubs   string            `json:"repack_sub_items,omitempty"`
	RepackQty    int               `json:"repack_qty,omitempty"`
	Remaining    map[string]int    `json:"remaining"`
	Passthrough  map[string]string `json:"passthrough,omitempty"`
}

// ReorderAdvice flags an item whose total demand exceeds total supply,
// measured before any deduction ran.
type ReorderAdvice struct {
	ItemID      string `json:"item_id"`
	TotalDemand int    `json:"total_demand"`
	TotalSupply int    `json:"total_supply"`
	Gap         int    `json:"gap"`
}

// RunSummary gives headline counts for one allocation run.
type RunSummary struct {
	DemandLines  int `json:"demand_lines"`
	PickupLines  int `json:"pickup_lines"`
	FilledLines  int `json:"filled_lines"`
	ShortLines   int `json:"short_lines"`
	RejectedRows int `json:"rejected_rows"`
}

// Report is the complete output of one allocation run. RemainingSupply covers
// every item in the pool, including items no demand line asked for.
type Report struct {
	RunID           string                    `json:"run_id"`
	Results         []AllocationResult        `json:"results"`
	Decisions       []DecisionRow             `json:"decisions"`
	DataQuality     []DataQualityEvent        `json:"data_quality"`
	Reorder         []ReorderAdvice           `json:"reorder_advice"`
	RemainingSupply map[string]map[string]int `json:"remaining_supply"`
	Summary         RunSummary                `json:"summary"`
}
