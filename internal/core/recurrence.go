package core

import "github.com/google/uuid"

// Expand materializes a monthly recurring entry into count dated occurrences.
//
// Occurrence i falls on base.Date shifted by i months, always computed from the
// base date so a series started on the 31st returns to the 31st whenever the
// month allows it. All occurrences share one recurrence group and record the
// series length. A base that already belongs to a group keeps that group.
// count is clamped to at least 1; callers impose any upper bound.
func Expand(base Transaction, count int) []Transaction {
	if count < 1 {
		count = 1
	}

	groupID := base.RecurrenceGroupID
	if groupID == "" {
		groupID = uuid.NewString()
	}

	out := make([]Transaction, count)
	for i := range out {
		occ := base
		occ.ID = uuid.NewString()
		occ.Date = base.Date.AddMonths(i)
		occ.RecurrenceGroupID = groupID
		occ.RecurrenceCount = count
		out[i] = occ
	}
	return out
}
