package axelog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNilLoggerCallsAreNoops(t *testing.T) {
	assert.NotPanics(t, func() {
		SchedulerStarted(nil)
		QueueDrained(nil)
		GuestExit(nil, 1)
		Protocol(nil, 0, errors.New("boom"))
		Instruction(nil, 0, 0, 0, 0)
		Event(nil, 0, 0, 0, false)
	})
}

func TestSchedulerStartedWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	SchedulerStarted(l)
	assert.Contains(t, buf.String(), "scheduler started")
}

func TestGuestExitIncludesStatus(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	GuestExit(l, 2)
	out := buf.String()
	assert.Contains(t, out, "guest exit")
	assert.Contains(t, out, "2")
}

func TestInstructionTraceOnlyEmittedAtDebugLevel(t *testing.T) {
	var quiet bytes.Buffer
	l := New(&quiet, false) // default level gate is informational
	Instruction(l, 0, 1, 40, 0x1000)
	assert.Empty(t, quiet.String())

	var traced bytes.Buffer
	lt := New(&traced, true)
	Instruction(lt, 0, 1, 40, 0x1000)
	assert.Contains(t, traced.String(), "instruction")
}

func TestProtocolLogsWarningWithTileAndError(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, false)
	Protocol(l, 2, errors.New("illegal memory address"))
	out := buf.String()
	assert.Contains(t, out, "protocol error")
	assert.Contains(t, out, "illegal memory address")
}
