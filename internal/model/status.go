package model

import "fmt"

// Status is the reservation lifecycle state. The stored strings match the
// values the API accepts and returns.
type Status string

const (
	StatusPending   Status = "Pending approval"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// statusRank drives listing order: actionable reservations surface first.
// Sorting must go through this table, never through string comparison.
var statusRank = map[Status]int{
	StatusPending:   1,
	StatusConfirmed: 2,
	StatusCompleted: 3,
	StatusCancelled: 4,
}

// allowedTransitions is the full state machine. Cancelled and Completed are
// terminal: they have no outgoing edges.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if _, ok := statusRank[s]; !ok {
		return "", fmt.Errorf("unknown reservation status %q", raw)
	}
	return s, nil
}

func (s Status) Rank() int {
	return statusRank[s]
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Blocking reports whether a reservation in this status holds its time slot.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}
