package report

import (
	"github.com/limaJavier/judging/pkg/schedule"

	"github.com/samber/lo"
)

const slotHeader = "Slot"

// Dataset defines tabular export content
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// Pivot lays entries out as a Slot x label table, one row per slot and one column per ordinary judge
// label. A cell holds the team the judge sees in that slot, empty when the judge is idle.
func Pivot(slots, labels []string, entries []schedule.Entry) Dataset {
	rows := lo.Map(slots, func(slot string, _ int) map[string]string {
		return map[string]string{slotHeader: slot}
	})
	for _, entry := range entries {
		rows[entry.SlotIndex][entry.Label] = entry.Team
	}
	return Dataset{
		Headers: append([]string{slotHeader}, labels...),
		Rows:    rows,
	}
}
