package message

import "errors"

// Status is the sync state of one conversation list item within a poll cycle.
type Status string

const (
	StatusUnknown             Status = "unknown"
	StatusFetchingLastMessage Status = "fetching_last_message"
	StatusSettled             Status = "settled"
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ValidTransitions defines allowed status transitions. A settled item goes
// back to fetching on the next cycle.
var ValidTransitions = map[Status][]Status{
	StatusUnknown:             {StatusFetchingLastMessage},
	StatusFetchingLastMessage: {StatusSettled},
	StatusSettled:             {StatusFetchingLastMessage},
}

func (s Status) String() string {
	return string(s)
}

// IsSettled reports whether the last message of the item is known.
func (s Status) IsSettled() bool {
	return s == StatusSettled
}

// CanTransitionTo checks if a transition from current status to target status is valid.
func (s Status) CanTransitionTo(target Status) bool {
	validTargets, ok := ValidTransitions[s]
	if !ok {
		return false
	}
	for _, t := range validTargets {
		if t == target {
			return true
		}
	}
	return false
}

// TransitionTo attempts to transition to the target status and returns error if invalid.
func (s Status) TransitionTo(target Status) (Status, error) {
	if !s.CanTransitionTo(target) {
		return s, ErrInvalidTransition
	}
	return target, nil
}
