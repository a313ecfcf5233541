package core

import "strconv"

// Rules holds the two configuration constants every calculation derives
// from: the daily step target and the flat penalty for missing it.
type Rules struct {
	TargetSteps int
	Penalty     Money
}

// DefaultRules matches the original challenge setup: 10k steps a day,
// 50 owed per missed day.
var DefaultRules = Rules{TargetSteps: 10000, Penalty: Money{Units: 50}}

// ParticipantSummary aggregates one participant's entries. AmountOwed is
// always recomputed from missed days; the paid flag never decrements it.
type ParticipantSummary struct {
	Participant    string
	TotalDays      int
	DaysMissed     int
	AmountOwed     Money
	CompletionRate float64
	IsPaid         bool
}

// GrandTotals sums penalties across the whole roster. TotalCollected
// counts only participants whose paid flag is set.
type GrandTotals struct {
	TotalOwed      Money
	TotalCollected Money
}

// Status classifies a step count against the target. Meeting the target
// exactly counts as on target.
func (r Rules) Status(steps int) Status {
	if steps >= r.TargetSteps {
		return StatusOnTarget
	}
	return StatusMissed
}

// AmountOwed is the penalty for a single entry: zero when on target,
// the flat penalty otherwise.
func (r Rules) AmountOwed(steps int) Money {
	if r.Status(steps) == StatusOnTarget {
		return Money{}
	}
	return r.Penalty
}

// Summary computes a participant's aggregate over all their entries.
// A participant with no entries yields all zeroes, including a 0%
// completion rate.
func (r Rules) Summary(state AppState, participant string) ParticipantSummary {
	s := ParticipantSummary{Participant: participant}
	for _, e := range state.Entries {
		if e.Participant != participant {
			continue
		}
		s.TotalDays++
		if r.Status(e.Steps) == StatusMissed {
			s.DaysMissed++
		}
	}
	s.AmountOwed = r.Penalty.Mul(s.DaysMissed)
	if s.TotalDays > 0 {
		s.CompletionRate = float64(s.TotalDays-s.DaysMissed) / float64(s.TotalDays) * 100
	}
	s.IsPaid = state.Payments[participant]
	return s
}

// Totals sums every roster participant's owed amount. Toggling a paid
// flag moves an amount into TotalCollected without changing TotalOwed;
// payment is a reconciliation marker, not a balance decrement.
func (r Rules) Totals(state AppState, roster []string) GrandTotals {
	var t GrandTotals
	for _, p := range roster {
		s := r.Summary(state, p)
		t.TotalOwed = t.TotalOwed.Add(s.AmountOwed)
		if s.IsPaid {
			t.TotalCollected = t.TotalCollected.Add(s.AmountOwed)
		}
	}
	return t
}

// FormatCompletionRate renders a rate as "NN.N%", the form used in the
// summary table and CSV export.
func FormatCompletionRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}
