package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jameshanlon/tool-axe/internal/config"
	"github.com/jameshanlon/tool-axe/internal/latency"
)

// newTestSystem builds a single-node, single-core SystemState wired the
// way cmd/axe does, but with a small RAM bank based at zero so test
// addresses don't need to account for an offset.
func newTestSystem(t *testing.T, topology latency.Topology) (*SystemState, *Core) {
	t.Helper()
	cfg := config.New(config.WithLatencyModel(topology))
	sys := NewSystemState(cfg)
	node := NewNode(0)
	c := NewCore(4096, 0)
	node.AddCore(c)
	sys.AddNode(node)
	return sys, c
}

// drainAll runs every runnable currently queued, including any newly
// scheduled as a side effect, without going through SystemState.Run (so
// it can be called more than once per test).
func drainAll(t *testing.T, sys *SystemState) {
	t.Helper()
	for !sys.queue.Empty() {
		r, at := sys.queue.PopFront()
		require.NoError(t, r.Run(at))
	}
}
