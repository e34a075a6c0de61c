package core

import (
	"errors"

	"github.com/joeycumines/logiface"
	"github.com/jameshanlon/tool-axe/internal/axelog"
	"github.com/jameshanlon/tool-axe/internal/config"
	"github.com/jameshanlon/tool-axe/internal/latency"
	"github.com/jameshanlon/tool-axe/internal/sched"
	"github.com/jameshanlon/tool-axe/internal/simerr"
)

// SystemState is the whole machine: the node/core graph, the global
// runnable queue and the shared interconnect latency model (spec §4.1,
// §4.4). It plays the role of the teacher's Loop (eventloop/loop.go):
// one cooperative run loop, one FastState lifecycle, but dispatching
// domain Runnables (Thread, TokenDelay) instead of timers/callbacks.
type SystemState struct {
	Nodes []*Node

	queue *sched.RunnableQueue
	state *sched.FastState

	cfg        *config.Config
	latencyMod *latency.Model
	contention *latency.ContentionTracker

	chanendIndex   map[ResourceID]*Chanend
	nextCoreNumber uint16

	onProtocolError func(error)
	logger          *logiface.Logger[logiface.Event]
}

// NewSystemState builds an empty system from cfg; nodes are attached
// with AddNode before Run is called.
func NewSystemState(cfg *config.Config) *SystemState {
	return &SystemState{
		queue:        sched.NewRunnableQueue(),
		state:        sched.NewFastState(),
		cfg:          cfg,
		latencyMod:   latency.New(cfg.ToLatencyParams()),
		contention:   latency.NewContentionTracker(1000),
		chanendIndex: make(map[ResourceID]*Chanend),
	}
}

// Config returns the system's runtime configuration.
func (s *SystemState) Config() *config.Config { return s.cfg }

// LatencyModel returns the shared interconnect latency function.
func (s *SystemState) LatencyModel() *latency.Model { return s.latencyMod }

// Contention returns the switch-contention observation tracker. No
// code path in this module records sends into it, and the -S stats
// dump does not print it.
func (s *SystemState) Contention() *latency.ContentionTracker { return s.contention }

// AddNode attaches n to the system, assigning sequential core numbers
// to its cores and indexing their chanends for GetChanendDest,
// replacing the original's per-lookup linear scan
// (SystemState::getChanendDest) with a map built once at graph
// assembly time.
func (s *SystemState) AddNode(n *Node) {
	n.setSystem(s)
	s.Nodes = append(s.Nodes, n)
	for _, c := range n.Cores {
		c.setCoreNumber(s.nextCoreNumber)
		s.nextCoreNumber++
		for i := range c.Chanends {
			ce := &c.Chanends[i]
			id := NewResourceID(ResTypeChanend, c.CoreID(), uint8(i))
			ce.id = id
			s.chanendIndex[id] = ce
		}
	}
}

// GetChanendDest resolves a resource id to the chanend it names,
// anywhere in the system, regardless of which core or node owns it.
func (s *SystemState) GetChanendDest(id ResourceID) (*Chanend, bool) {
	ce, ok := s.chanendIndex[id]
	return ce, ok
}

// Schedule enqueues r to run at tick at. Scheduling an already-queued
// runnable is a caller error (spec §4.1's "no double-enqueue"
// invariant); remove it first.
func (s *SystemState) Schedule(r sched.Runnable, at sched.Ticks) { s.queue.Push(r, at) }

// Unschedule drops r from the queue if it is present.
func (s *SystemState) Unschedule(r sched.Runnable) { s.queue.Remove(r) }

// Scheduled reports whether r is currently queued.
func (s *SystemState) Scheduled(r sched.Runnable) bool { return s.queue.Contains(r) }

// SetLogger installs the structured logger used for the scheduler
// start/drain and guest-exit log sites (spec §10.1). A nil logger (the
// default) makes those calls no-ops.
func (s *SystemState) SetLogger(l *logiface.Logger[logiface.Event]) { s.logger = l }

// SetProtocolErrorHandler installs the sink for non-fatal protocol-level
// errors (spec §7): illegal memory access packets, bad memory
// addresses. The offending operation is still a no-op; this only
// controls where it gets reported.
func (s *SystemState) SetProtocolErrorHandler(f func(error)) { s.onProtocolError = f }

// ReportProtocolError notifies the installed handler, if any.
func (s *SystemState) ReportProtocolError(err error) {
	if s.onProtocolError != nil {
		s.onProtocolError(err)
	}
}

// CompleteEvent performs the register save/restore side of completing
// an event or interrupt on th for res (spec §4.6): an interrupt saves
// SR to SSR, PC to SPC (via the opcode-cache target address) and ED to
// SED, clears IEBLE and sets ININT/INK; a plain event only clears
// INENB. Both clear EEBLE. The resource's own vector/data application
// happens in res.CompleteEvent(), called last.
func (s *SystemState) CompleteEvent(th *Thread, res EventableResource, interrupt bool) {
	if interrupt {
		th.Ssr = th.statusWord()
		th.Spc = th.TargetPC(th.PC)
		th.Sed = th.Ed
		th.IEBLE = false
		th.ININT = true
		th.INK = true
	} else {
		th.INENB = false
	}
	th.EEBLE = false
	res.CompleteEvent()
	tile := 0
	if th.core != nil {
		tile = th.core.CoreNumber()
	}
	axelog.Event(s.logger, tile, th.num, uint64(th.Time), interrupt)
}

// Run drains the runnable queue until empty or a guest EXIT unwinds it,
// mirroring SystemState::run's catch of ExitException. It returns the
// guest exit status (0 if the queue simply drained).
func (s *SystemState) Run() (int, error) {
	if !s.state.TryTransition(sched.StateIdle, sched.StateRunning) {
		return 0, &simerr.InvariantError{Msg: "system already running"}
	}
	axelog.SchedulerStarted(s.logger)
	for !s.queue.Empty() {
		r, at := s.queue.PopFront()
		if err := r.Run(at); err != nil {
			var exit *simerr.ExitError
			if errors.As(err, &exit) {
				s.state.Store(sched.StateExited)
				axelog.GuestExit(s.logger, exit.Status)
				return exit.Status, nil
			}
			s.state.Store(sched.StateExited)
			return 0, err
		}
	}
	s.state.Store(sched.StateDrained)
	axelog.QueueDrained(s.logger)
	return 0, nil
}

// State reports the run loop's current lifecycle phase.
func (s *SystemState) State() sched.RunState { return s.state.Load() }
