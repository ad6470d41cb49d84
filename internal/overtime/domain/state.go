package domain

import "strings"

// State is the approval state of one segment version
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
)

// WorkflowModule is the workflow_states.module these states are registered under
const WorkflowModule = "overtime"

// ParseState matches a state name case-insensitively
func ParseState(s string) (State, bool) {
	switch State(strings.ToLower(strings.TrimSpace(s))) {
	case StatePending:
		return StatePending, true
	case StateApproved:
		return StateApproved, true
	case StateRejected:
		return StateRejected, true
	}
	return "", false
}

// IsDecision reports whether a reviewer may move a segment into s
func (s State) IsDecision() bool {
	return s == StateApproved || s == StateRejected
}

// CanTransition allows only PENDING -> APPROVED and PENDING -> REJECTED.
// Decided versions are terminal; a recompute creates a new pending segment.
func CanTransition(from, to State) bool {
	return from == StatePending && to.IsDecision()
}
