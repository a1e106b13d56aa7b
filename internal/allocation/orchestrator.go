package allocation

import (
	"fmt"
	"strings"

	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/internal/inventory"
	"github.com/savegress/stockflow/pkg/models"
)

// Orchestrator drives one allocation run: the pickup-plan pre-pass, then the
// four demand tiers, each as a fixed sequence of rounds swept breadth-first
// across every task in the tier. Breadth-first matters: every task's
// exact-match attempt completes before any task's repack attempt begins, so
// same-label stock is reserved for its rightful owner before being
// cannibalized as a substitute.
type Orchestrator struct {
	pool      *inventory.Pool
	cfg       *config.Config
	decisions []models.DecisionRow
}

func NewOrchestrator(pool *inventory.Pool, cfg *config.Config) *Orchestrator {
	return &Orchestrator{pool: pool, cfg: cfg}
}

// round is one pass of a fixed source-matching strategy over a tier.
type round struct {
	name  string
	chain []inventory.SourceRef
	mode  inventory.MatchMode
}

func stockRef(class models.LocationClass) inventory.SourceRef {
	return inventory.SourceRef{Kind: inventory.KindStock, Label: string(class)}
}

func orderRef(t models.OrderType) inventory.SourceRef {
	return inventory.SourceRef{Kind: inventory.KindOrder, Label: string(t)}
}

// Domestic demand prefers domestic stock (no further transfer needed);
// export demand prefers outsourced/cloud stock (avoids repositioning
// domestic stock across the border).
func domesticStockChain() []inventory.SourceRef {
	return []inventory.SourceRef{
		stockRef(models.ClassDomestic),
		stockRef(models.ClassOutsourced),
		stockRef(models.ClassCloud),
	}
}

func exportStockChain() []inventory.SourceRef {
	return []inventory.SourceRef{
		stockRef(models.ClassOutsourced),
		stockRef(models.ClassCloud),
		stockRef(models.ClassDomestic),
	}
}

// Pickup-plan inbound lands sooner than purchase orders, so it is tried
// first whenever open orders are in play.
func orderChain() []inventory.SourceRef {
	return []inventory.SourceRef{
		orderRef(models.OrderTypePickupPlan),
		orderRef(models.OrderTypePurchase),
	}
}

// Domestic tiers repack on-hand stock before touching unconfirmed supply;
// local substitution is operationally cheap.
func domesticRounds() []round {
	return []round{
		{name: "R1 exact-stock", chain: domesticStockChain(), mode: inventory.MatchExact},
		{name: "R2 repack-stock", chain: domesticStockChain(), mode: inventory.MatchRepack},
		{name: "R3 open-order", chain: orderChain(), mode: inventory.MatchEither},
	}
}

// Export tiers exhaust exact matching on both stock and orders before any
// repack; label reassignment is expensive for export compliance.
func exportRounds() []round {
	return []round{
		{name: "R1 exact-stock", chain: exportStockChain(), mode: inventory.MatchExact},
		{name: "R2 exact-order", chain: orderChain(), mode: inventory.MatchExact},
		{name: "R3 repack-stock", chain: exportStockChain(), mode: inventory.MatchRepack},
		{name: "R4 repack-order", chain: orderChain(), mode: inventory.MatchRepack},
	}
}

// The pickup pre-pass consumes stock and purchase orders, never the
// pickup-plan supply pool those same commitments are recorded in.
func pickupRounds() []round {
	purchaseOnly := []inventory.SourceRef{orderRef(models.OrderTypePurchase)}
	return []round{
		{name: "R1 exact-stock", chain: domesticStockChain(), mode: inventory.MatchExact},
		{name: "R2 repack-stock", chain: domesticStockChain(), mode: inventory.MatchRepack},
		{name: "R3 purchase-order", chain: purchaseOnly, mode: inventory.MatchEither},
	}
}

func roundsFor(tier int) []round {
	switch tier {
	case TierPickup:
		return pickupRounds()
	case TierNewExport, TierRecurringExport:
		return exportRounds()
	default:
		return domesticRounds()
	}
}

// Run executes the pre-pass and all demand tiers against the pool. Reorder
// advice is computed first, against the untouched pool, so the global
// demand/supply gap is independent of how lines are actually served.
func (o *Orchestrator) Run(demand, pickup []models.DemandLine) (tasks, pickupTasks []*Task, advice []models.ReorderAdvice) {
	advice = o.reorderAdvice(demand)

	for _, line := range pickup {
		pickupTasks = append(pickupTasks, newTask(line, TierPickup))
	}
	o.runTier(TierPickup, pickupTasks)

	tiers := buildTiers(demand)
	for _, tier := range []int{TierNewDomestic, TierNewExport, TierRecurringDomestic, TierRecurringExport} {
		tierTasks := tiers[tier]
		if len(tierTasks) == 0 {
			continue
		}
		if o.cfg.Allocation.ExportSingleSource && (tier == TierNewExport || tier == TierRecurringExport) {
			o.singleSourcePass(tier, tierTasks)
		}
		o.runTier(tier, tierTasks)
		tasks = append(tasks, tierTasks...)
	}
	return tasks, pickupTasks, advice
}

// Decisions returns the audit trail, one row per (task, round) execution.
func (o *Orchestrator) Decisions() []models.DecisionRow {
	return o.decisions
}

func (o *Orchestrator) runTier(tier int, tierTasks []*Task) {
	for _, r := range roundsFor(tier) {
		for _, t := range tierTasks {
			rem := t.Remaining()
			if rem <= 0 {
				continue
			}
			d := o.pool.Deduct(t.Line.ItemID, t.Line.SubItemID, rem, r.chain, r.mode)
			o.apply(t, r.name, d)
		}
	}
	for _, t := range tierTasks {
		if gap := t.Remaining(); gap > 0 {
			t.Log = append(t.Log, fmt.Sprintf("short %d", gap))
		}
	}
}

// singleSourcePass tries to cover an export task's whole remaining quantity
// from a single stock class before the waterfall, minimizing split shipments.
// All-or-nothing: a class that cannot cover the task alone is skipped.
func (o *Orchestrator) singleSourcePass(tier int, tierTasks []*Task) {
	for _, t := range tierTasks {
		rem := t.Remaining()
		if rem <= 0 {
			continue
		}
		for _, src := range exportStockChain() {
			class := models.LocationClass(src.Label)
			if o.pool.ExactStock(t.Line.ItemID, t.Line.SubItemID, class) < rem {
				continue
			}
			d := o.pool.Deduct(t.Line.ItemID, t.Line.SubItemID, rem, []inventory.SourceRef{src}, inventory.MatchExact)
			o.apply(t, "R0 single-source", d)
			break
		}
	}
}

// apply folds a deduction result into the task and appends the decision row.
func (o *Orchestrator) apply(t *Task, roundName string, d inventory.Deduction) {
	before := t.Remaining()
	filled := before - d.Remaining
	t.Filled += filled
	for label, qty := range d.Usage {
		t.Usage[label] += qty
	}
	t.Repack = append(t.Repack, d.Repack...)

	trace := "nothing available"
	if len(d.Log) > 0 {
		trace = strings.Join(d.Log, " | ")
	}
	t.Log = append(t.Log, fmt.Sprintf("[%s] %s", roundName, trace))

	o.decisions = append(o.decisions, models.DecisionRow{
		RowID:     t.Line.RowID,
		ItemID:    t.Line.ItemID,
		SubItemID: t.Line.SubItemID,
		Tier:      TierLabel(t.Tier),
		Round:     roundName,
		Trace:     trace,
		Filled:    filled,
	})
}

// reorderAdvice computes, per item in first-seen order, the gap between
// total demand across all lines and total supply before any deduction.
func (o *Orchestrator) reorderAdvice(demand []models.DemandLine) []models.ReorderAdvice {
	totals := make(map[string]int)
	var order []string
	for _, line := range demand {
		if _, seen := totals[line.ItemID]; !seen {
			order = append(order, line.ItemID)
		}
		totals[line.ItemID] += line.Quantity
	}

	var advice []models.ReorderAdvice
	for _, item := range order {
		supply := o.pool.TotalSupply(item)
		if gap := totals[item] - supply; gap > 0 {
			advice = append(advice, models.ReorderAdvice{
				ItemID:      item,
				TotalDemand: totals[item],
				TotalSupply: supply,
				Gap:         gap,
			})
		}
	}
	return advice
}
