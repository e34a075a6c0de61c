// Package axelog wires structured JSON logging for a SystemState,
// grounded on sql/export.Exporter's *logiface.Logger[logiface.Event]
// field and logiface-stumpy's L.New/L.WithStumpy construction
// (logiface-stumpy/example_test.go). Log sites mirror spec §7/§10.1:
// scheduler start and drain, non-fatal protocol-level errors, guest
// exit, and a Debug-gated per-instruction trace that the logger's own
// level filter keeps off the hot path unless -t is passed.
package axelog

import (
	"io"
	"os"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// New builds a generified logger backed by stumpy's JSON writer. trace
// lowers the minimum level to Debug so Instruction lines are emitted;
// otherwise the logger stays at Informational and Instruction is a
// cheap no-op (canLog is checked before any field is built).
func New(w io.Writer, trace bool) *logiface.Logger[logiface.Event] {
	if w == nil {
		w = os.Stderr
	}
	level := logiface.LevelInformational
	if trace {
		level = logiface.LevelDebug
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(
			stumpy.WithWriter(w),
			stumpy.WithTimeField(""),
		),
		stumpy.L.WithLevel(level),
	).Logger()
}

// SchedulerStarted logs SystemState.Run beginning to drain the
// runnable queue (spec §4.2).
func SchedulerStarted(l *logiface.Logger[logiface.Event]) {
	if l == nil {
		return
	}
	l.Info().Log("scheduler started")
}

// QueueDrained logs the "no runnable threads" terminal state the
// scheduler loop signals when the queue empties without a guest exit.
func QueueDrained(l *logiface.Logger[logiface.Event]) {
	if l == nil {
		return
	}
	l.Info().Log("no runnable threads")
}

// GuestExit logs a guest EXIT syscall unwinding the scheduler loop via
// simerr.ExitError (spec §7).
func GuestExit(l *logiface.Logger[logiface.Event], status int) {
	if l == nil {
		return
	}
	l.Info().Int("status", status).Log("guest exit")
}

// Protocol logs a non-fatal §7 protocol-level error (illegal memory
// access packet, illegal memory address, could not SETD): the
// triggering resource op is already a no-op, this only records it.
func Protocol(l *logiface.Logger[logiface.Event], tile int, err error) {
	if l == nil {
		return
	}
	l.Warning().Int("tile", tile).Err(err).Log("protocol error")
}

// Instruction emits a Debug-level per-instruction trace line, gated
// behind -t (spec §10.1): tile/thread/tick fields are attached through
// the builder chain rather than a persistent context, since each call
// site already has them to hand.
func Instruction(l *logiface.Logger[logiface.Event], tile, thread int, tick uint64, pc uint32) {
	if l == nil {
		return
	}
	l.Debug().
		Int("tile", tile).
		Int("thread", thread).
		Int64("tick", int64(tick)).
		Uint64("pc", uint64(pc)).
		Log("instruction")
}

// Event logs a Debug-level resource event/interrupt completion, for
// the same -t trace stream as Instruction.
func Event(l *logiface.Logger[logiface.Event], tile, thread int, tick uint64, interrupt bool) {
	if l == nil {
		return
	}
	l.Debug().
		Int("tile", tile).
		Int("thread", thread).
		Int64("tick", int64(tick)).
		Bool("interrupt", interrupt).
		Log("event")
}
