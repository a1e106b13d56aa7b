package inventory

import (
	"github.com/savegress/stockflow/pkg/models"
)

// Pool owns every stock and open-order batch for one allocation run. It is
// constructed once from the ingested snapshot, mutated in place only through
// Deduct, and discarded after reporting. Not safe for concurrent use; a run
// is single-threaded end to end.
//
// Batches are indexed item -> sub-item -> class (or order type). Sub-item
// iteration order is the insertion order, kept in explicit key slices so that
// repack scans are deterministic.
type Pool struct {
	stock  map[string]map[string]map[models.LocationClass][]*models.StockBatch
	orders map[string]map[string][]*models.OpenOrderBatch

	stockSubs map[string][]string // item -> sub-items, insertion order
	orderSubs map[string][]string
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		stock:     make(map[string]map[string]map[models.LocationClass][]*models.StockBatch),
		orders:    make(map[string]map[string][]*models.OpenOrderBatch),
		stockSubs: make(map[string][]string),
		orderSubs: make(map[string][]string),
	}
}

// AddStock appends a stock batch. The batch is owned by the pool afterwards.
func (p *Pool) AddStock(b *models.StockBatch) {
	subs, ok := p.stock[b.ItemID]
	if !ok {
		subs = make(map[string]map[models.LocationClass][]*models.StockBatch)
		p.stock[b.ItemID] = subs
	}
	classes, ok := subs[b.SubItemID]
	if !ok {
		classes = make(map[models.LocationClass][]*models.StockBatch)
		subs[b.SubItemID] = classes
		p.stockSubs[b.ItemID] = append(p.stockSubs[b.ItemID], b.SubItemID)
	}
	classes[b.Class] = append(classes[b.Class], b)
}

// AddOrder appends an open-order batch.
func (p *Pool) AddOrder(b *models.OpenOrderBatch) {
	subs, ok := p.orders[b.ItemID]
	if !ok {
		subs = make(map[string][]*models.OpenOrderBatch)
		p.orders[b.ItemID] = subs
	}
	if _, ok := subs[b.SubItemID]; !ok {
		p.orderSubs[b.ItemID] = append(p.orderSubs[b.ItemID], b.SubItemID)
	}
	subs[b.SubItemID] = append(subs[b.SubItemID], b)
}

// Snapshot returns the live quantity per source label for an item, summed
// across all sub-items. Pure read; callers may take snapshots mid-run for
// decision logging without side effects.
func (p *Pool) Snapshot(itemID string) map[string]int {
	res := make(map[string]int, len(models.SourceLabels))
	for _, label := range models.SourceLabels {
		res[label] = 0
	}
	for _, classes := range p.stock[itemID] {
		for class, batches := range classes {
			if class == models.ClassOther {
				continue // inert stock, visible only via TotalSupply
			}
			for _, b := range batches {
				res[string(class)] += b.Quantity
			}
		}
	}
	for _, batches := range p.orders[itemID] {
		for _, b := range batches {
			res[string(b.Type)] += b.Quantity
		}
	}
	return res
}

// TotalSupply sums every live batch for an item: all stock classes, including
// the inert "other" class, plus all open orders. Feeds reorder advice.
func (p *Pool) TotalSupply(itemID string) int {
	total := 0
	for _, classes := range p.stock[itemID] {
		for _, batches := range classes {
			for _, b := range batches {
				total += b.Quantity
			}
		}
	}
	for _, batches := range p.orders[itemID] {
		for _, b := range batches {
			total += b.Quantity
		}
	}
	return total
}

// Items returns every item id known to the pool, stock or orders.
func (p *Pool) Items() []string {
	seen := make(map[string]bool, len(p.stock)+len(p.orders))
	var items []string
	for item := range p.stock {
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	for item := range p.orders {
		if !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}
	return items
}

// NetPickupAgainstPurchase subtracts pickup-plan quantities from matching
// purchase-order batches (same item and sub-item), clamping at zero. Used in
// "netted" counting mode so the same inbound unit is never counted twice.
// The pickup-plan batches themselves keep their quantity; only the
// purchase-order side shrinks.
func (p *Pool) NetPickupAgainstPurchase() {
	for item, subs := range p.orders {
		for _, sub := range p.orderSubs[item] {
			batches := subs[sub]
			for _, plan := range batches {
				if plan.Type != models.OrderTypePickupPlan || plan.Quantity <= 0 {
					continue
				}
				toNet := plan.Quantity
				for _, po := range batches {
					if toNet <= 0 {
						break
					}
					if po.Type != models.OrderTypePurchase || po.Quantity <= 0 {
						continue
					}
					take := min(po.Quantity, toNet)
					po.Quantity -= take
					toNet -= take
				}
			}
		}
	}
}
