package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastStateTransitions(t *testing.T) {
	s := NewFastState()
	assert.Equal(t, StateIdle, s.Load())

	assert.True(t, s.TryTransition(StateIdle, StateRunning))
	assert.Equal(t, StateRunning, s.Load())

	assert.False(t, s.TryTransition(StateIdle, StateRunning))

	s.Store(StateDrained)
	assert.Equal(t, StateDrained, s.Load())
	assert.Equal(t, "Drained", s.Load().String())
}
