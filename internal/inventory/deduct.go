package inventory

import (
	"fmt"

	"github.com/savegress/stockflow/pkg/models"
)

// SourceKind selects which batch pool a chain entry targets.
type SourceKind string

const (
	KindStock SourceKind = "stock"
	KindOrder SourceKind = "order"
)

// SourceRef is one entry of a deduction source chain. Label is a location
// class for stock entries and an order type for order entries.
type SourceRef struct {
	Kind  SourceKind
	Label string
}

// MatchMode controls which sub-items of the target item are eligible.
type MatchMode string

const (
	// MatchExact takes only from batches carrying the requested sub-item.
	MatchExact MatchMode = "exact"
	// MatchRepack takes only from other sub-items of the same item and
	// reports every take as a repack.
	MatchRepack MatchMode = "repack"
	// MatchEither tries exact batches first, then falls through to repack.
	MatchEither MatchMode = "either"
)

// Deduction reports exactly what a Deduct call took and what is still unmet.
// A positive Remaining is a normal outcome, not an error.
type Deduction struct {
	Remaining int
	Usage     map[string]int // source label -> qty taken
	Repack    []models.RepackDetail
	Log       []string
}

// Deduct removes up to qty units of (itemID, subItemID) from the pool,
// walking the source chain in order. It never takes more than qty and never
// drives a batch negative. Exact-match batches are always preferred over
// substitutes within a chain entry.
func (p *Pool) Deduct(itemID, subItemID string, qty int, chain []SourceRef, mode MatchMode) Deduction {
	d := Deduction{
		Remaining: qty,
		Usage:     make(map[string]int),
	}
	if qty <= 0 {
		d.Remaining = 0
		return d
	}

	for _, src := range chain {
		if d.Remaining <= 0 {
			break
		}
		taken := 0
		switch src.Kind {
		case KindStock:
			taken = p.deductStock(itemID, subItemID, src.Label, mode, &d)
		case KindOrder:
			taken = p.deductOrder(itemID, subItemID, src.Label, mode, &d)
		}
		if taken > 0 {
			d.Usage[src.Label] += taken
		}
	}
	return d
}

func (p *Pool) deductStock(itemID, subItemID, label string, mode MatchMode, d *Deduction) int {
	subs := p.stock[itemID]
	if subs == nil {
		return 0
	}
	class := models.LocationClass(label)
	taken := 0

	if mode == MatchExact || mode == MatchEither {
		for _, b := range subs[subItemID][class] {
			if d.Remaining <= 0 {
				break
			}
			if b.Quantity <= 0 {
				continue
			}
			take := min(b.Quantity, d.Remaining)
			b.Quantity -= take
			d.Remaining -= take
			taken += take
			d.Log = append(d.Log, fmt.Sprintf("%s(direct,-%d)", label, take))
		}
	}

	if (mode == MatchRepack || mode == MatchEither) && d.Remaining > 0 {
		for _, sub := range p.stockSubs[itemID] {
			if sub == subItemID {
				continue
			}
			if d.Remaining <= 0 {
				break
			}
			for _, b := range subs[sub][class] {
				if d.Remaining <= 0 {
					break
				}
				if b.Quantity <= 0 {
					continue
				}
				take := min(b.Quantity, d.Remaining)
				b.Quantity -= take
				d.Remaining -= take
				taken += take
				d.Repack = append(d.Repack, models.RepackDetail{
					SourceLocation: b.Location,
					Zone:           b.Zone,
					SubItemID:      sub,
					Quantity:       take,
				})
				d.Log = append(d.Log, fmt.Sprintf("%s(repack %s,-%d)", label, sub, take))
			}
		}
	}
	return taken
}

func (p *Pool) deductOrder(itemID, subItemID, label string, mode MatchMode, d *Deduction) int {
	subs := p.orders[itemID]
	if subs == nil {
		return 0
	}
	orderType := models.OrderType(label)
	taken := 0

	if mode == MatchExact || mode == MatchEither {
		for _, b := range subs[subItemID] {
			if d.Remaining <= 0 {
				break
			}
			if b.Type != orderType || b.Quantity <= 0 {
				continue
			}
			take := min(b.Quantity, d.Remaining)
			b.Quantity -= take
			d.Remaining -= take
			taken += take
			d.Log = append(d.Log, fmt.Sprintf("%s(exact,-%d)", label, take))
		}
	}

	if (mode == MatchRepack || mode == MatchEither) && d.Remaining > 0 {
		for _, sub := range p.orderSubs[itemID] {
			if sub == subItemID {
				continue
			}
			if d.Remaining <= 0 {
				break
			}
			for _, b := range subs[sub] {
				if d.Remaining <= 0 {
					break
				}
				if b.Type != orderType || b.Quantity <= 0 {
					continue
				}
				take := min(b.Quantity, d.Remaining)
				b.Quantity -= take
				d.Remaining -= take
				taken += take
				d.Repack = append(d.Repack, models.RepackDetail{
					SourceLocation: label,
					SubItemID:      sub,
					Quantity:       take,
				})
				d.Log = append(d.Log, fmt.Sprintf("%s(repack %s,-%d)", label, sub, take))
			}
		}
	}
	return taken
}

// ExactStock returns the live exact-match quantity for one class. Used by the
// single-source probe to test whether a class can cover a task on its own.
func (p *Pool) ExactStock(itemID, subItemID string, class models.LocationClass) int {
	total := 0
	for _, b := range p.stock[itemID][subItemID][class] {
		total += b.Quantity
	}
	return total
}
