package week

import (
	"time"
)

// WeekState enum
type WeekState string

const (
	WeekStateDraft      WeekState = "draft"
	WeekStateInProgress WeekState = "in_progress"
	WeekStateClosed     WeekState = "closed"
)

var stateRank = map[WeekState]int{
	WeekStateDraft:      0,
	WeekStateInProgress: 1,
	WeekStateClosed:     2,
}

// IsValid reports whether s is a known week state.
func (s WeekState) IsValid() bool {
	_, ok := stateRank[s]
	return ok
}

// StateNames lists the valid week states as plain strings.
func StateNames() []string {
	return []string{string(WeekStateDraft), string(WeekStateInProgress), string(WeekStateClosed)}
}

// CanTransitionTo enforces the monotonic draft -> in_progress -> closed
// progression. Forward moves only; closed is terminal.
func (s WeekState) CanTransitionTo(next WeekState) bool {
	cur, ok := stateRank[s]
	if !ok {
		return false
	}
	nxt, ok := stateRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// PayrollWeek - Canonical calendar week of the payroll ledger.
// The (ISOYear, ISOWeek) pair is unique across all rows.
type PayrollWeek struct {
	ID        string
	ISOYear   int
	ISOWeek   int
	WeekStart time.Time
	WeekEnd   time.Time
	Label     string
	State     WeekState
	CreatedAt time.Time
	UpdatedAt time.Time
}
