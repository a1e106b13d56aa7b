package allocation

import (
	"fmt"
	"strings"

	"github.com/savegress/stockflow/internal/config"
	"github.com/savegress/stockflow/internal/inventory"
	"github.com/savegress/stockflow/pkg/models"
)

// Projector turns final pool state and per-task accumulators into the output
// rows consumed by the reporting layer.
type Projector struct {
	cfg *config.Config
}

func NewProjector(cfg *config.Config) *Projector {
	return &Projector{cfg: cfg}
}

// Project emits one result row per demand line, in input order. The item
// shortage column aggregates unmet quantity across every line sharing the
// item: a line can show a partial fill while the item overall reads
// satisfied only when the summed shortage is zero.
func (p *Projector) Project(pool *inventory.Pool, demand []models.DemandLine, tasks []*Task) []models.AllocationResult {
	byRow := make(map[int]*Task, len(tasks))
	itemShortage := make(map[string]int)
	for _, t := range tasks {
		byRow[t.Line.RowID] = t
		if gap := t.Remaining(); gap > 0 {
			itemShortage[t.Line.ItemID] += gap
		}
	}

	results := make([]models.AllocationResult, 0, len(demand))
	for _, line := range demand {
		t := byRow[line.RowID]
		if t == nil {
			continue
		}
		res := models.AllocationResult{
			RowID:        line.RowID,
			ItemID:       line.ItemID,
			SubItemID:    line.SubItemID,
			Quantity:     line.Quantity,
			Status:       p.statusString(t),
			Filled:       t.Filled,
			Short:        t.Remaining() > 0,
			ItemShortage: itemShortage[line.ItemID],
			Usage:        t.Usage,
			Remaining:    pool.Snapshot(line.ItemID),
			Passthrough:  line.Passthrough,
		}
		if len(t.Repack) > 0 {
			var locations, zones, subs []string
			total := 0
			for _, r := range t.Repack {
				locations = append(locations, r.SourceLocation)
				zones = append(zones, r.Zone)
				subs = append(subs, r.SubItemID)
				total += r.Quantity
			}
			res.RepackFrom = uniqueJoin(locations)
			res.RepackZones = uniqueJoin(zones)
			res.RepackSubs = uniqueJoin(subs)
			res.RepackQty = total
		}
		results = append(results, res)
	}
	return results
}

// statusString concatenates one segment per source with positive usage, in
// the fixed display order, plus a shortage suffix. A domestic-market line
// served from the outsourced class is flagged for transfer back.
func (p *Projector) statusString(t *Task) string {
	var parts []string
	for _, label := range models.SourceLabels {
		qty := t.Usage[label]
		if qty <= 0 {
			continue
		}
		name := p.cfg.Display.SourceNames[label]
		if name == "" {
			name = label
		}
		segment := fmt.Sprintf("%s%d", name, qty)
		if !t.Line.Export && label == string(models.ClassOutsourced) {
			segment += "(transfer-back)"
		}
		parts = append(parts, segment)
	}
	if gap := t.Remaining(); gap > 0 {
		parts = append(parts, fmt.Sprintf("reorder(short %d)", gap))
	}
	if len(parts) == 0 {
		return "reorder"
	}
	return strings.Join(parts, "+")
}

// RemainingSupply snapshots every item still known to the pool after the run,
// demanded and untouched items alike, for procurement visibility.
func (p *Projector) RemainingSupply(pool *inventory.Pool) map[string]map[string]int {
	remaining := make(map[string]map[string]int)
	for _, item := range pool.Items() {
		remaining[item] = pool.Snapshot(item)
	}
	return remaining
}

func uniqueJoin(values []string) string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return strings.Join(out, "; ")
}
