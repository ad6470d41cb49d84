package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	s, ok := ParseState("APPROVED")
	assert.True(t, ok)
	assert.Equal(t, StateApproved, s)

	_, ok = ParseState("archived")
	assert.False(t, ok)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatePending, StateApproved))
	assert.True(t, CanTransition(StatePending, StateRejected))
	assert.False(t, CanTransition(StatePending, StatePending))
	assert.False(t, CanTransition(StateApproved, StateRejected))
	assert.False(t, CanTransition(StateRejected, StateApproved))
}
