package allocation

import (
	"github.com/savegress/stockflow/pkg/models"
)

// Tier ranks. Lower runs first and is never revisited; a later tier cannot
// steal back stock already committed to an earlier one.
const (
	TierPickup            = 0 // pre-committed pickup-plan demand
	TierNewDomestic       = 1
	TierNewExport         = 2
	TierRecurringDomestic = 3
	TierRecurringExport   = 4
)

var tierLabels = map[int]string{
	TierPickup:            "T0 pickup-plan",
	TierNewDomestic:       "T1 new-domestic",
	TierNewExport:         "T2 new-export",
	TierRecurringDomestic: "T3 recurring-domestic",
	TierRecurringExport:   "T4 recurring-export",
}

// TierLabel returns the human-readable label used in decision log rows.
func TierLabel(tier int) string {
	return tierLabels[tier]
}

// Task is the unit of work for one demand line: the line itself plus the
// mutable fill accumulators the rounds write into.
type Task struct {
	Line   models.DemandLine
	Tier   int
	Filled int
	Usage  map[string]int
	Repack []models.RepackDetail
	Log    []string
}

// Remaining is the live shortage of the task.
func (t *Task) Remaining() int {
	return t.Line.Quantity - t.Filled
}

func newTask(line models.DemandLine, tier int) *Task {
	return &Task{
		Line:  line,
		Tier:  tier,
		Usage: make(map[string]int),
	}
}

// tierFor applies the fixed decision table: new commitments and the domestic
// market are judged harder to defer and run first.
func tierFor(line models.DemandLine) int {
	switch {
	case line.NewDemand && !line.Export:
		return TierNewDomestic
	case line.NewDemand && line.Export:
		return TierNewExport
	case !line.Export:
		return TierRecurringDomestic
	default:
		return TierRecurringExport
	}
}

// buildTiers partitions demand lines into tier buckets. Within a tier, tasks
// keep input order; no further sorting happens.
func buildTiers(lines []models.DemandLine) map[int][]*Task {
	tiers := make(map[int][]*Task)
	for _, line := range lines {
		tier := tierFor(line)
		tiers[tier] = append(tiers[tier], newTask(line, tier))
	}
	return tiers
}
