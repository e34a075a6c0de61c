package sched

import "sync/atomic"

// RunState is the scheduler loop's lifecycle state. Modelled on the
// teacher's FastState/LoopState (eventloop/state.go): a lock-free CAS
// state machine, so that a concurrent observer (e.g. a stats reporter)
// can inspect the loop's phase without taking a lock, even though the
// simulation itself is single-threaded cooperative (spec §5).
type RunState uint64

const (
	StateIdle RunState = iota
	StateRunning
	StateDrained
	StateExited
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateDrained:
		return "Drained"
	case StateExited:
		return "Exited"
	default:
		return "Unknown"
	}
}

// FastState is a lock-free holder of RunState, cache-line padded to
// avoid false sharing, matching eventloop.FastState.
type FastState struct { // betteralign:ignore
	_ [64]byte
	v atomic.Uint64
	_ [56]byte
}

// NewFastState creates a state holder starting at StateIdle.
func NewFastState() *FastState {
	s := &FastState{}
	s.v.Store(uint64(StateIdle))
	return s
}

func (s *FastState) Load() RunState { return RunState(s.v.Load()) }

func (s *FastState) Store(state RunState) { s.v.Store(uint64(state)) }

func (s *FastState) TryTransition(from, to RunState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}
