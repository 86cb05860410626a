package engine

import "github.com/camin-energy/tankflow/internal/model"

// Summary aggregates counts over the movement set.
type Summary struct {
	Total          int
	Pending        int
	Completed      int
	ScheduledToday int
	PendingVolume  float64
	TotalVolume    float64
}

// Summarize computes aggregate counts and volumes from the movement set.
// "Scheduled today" compares each movement's effective date against today
// using the same civil-date definition as the projector, so the two views
// never drift apart.
func Summarize(movements []model.Movement, today model.CivilDate) Summary {
	var s Summary
	s.Total = len(movements)

	for i := range movements {
		m := &movements[i]
		if m.IsPending() {
			s.Pending++
			s.PendingVolume += m.ExpectedVolume
		} else {
			s.Completed++
		}
		if m.EffectiveDate() == today {
			s.ScheduledToday++
		}
		s.TotalVolume += m.EffectiveVolume()
	}
	return s
}
