package simerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuestExceptionError(t *testing.T) {
	e := &GuestException{Kind: ExceptionIllegalPC, PC: 0x1000}
	assert.Equal(t, "guest exception ET_ILLEGAL_PC at pc=0x1000", e.Error())
}

func TestExceptionKindStringUnknown(t *testing.T) {
	assert.Equal(t, "ET_UNKNOWN", ExceptionKind(99).String())
}

func TestConfigErrorWrapsCause(t *testing.T) {
	cause := errors.New("no such file")
	e := &ConfigError{Path: "config.txt", Cause: cause}
	assert.Equal(t, "config error: config.txt: no such file", e.Error())
	assert.ErrorIs(t, e, cause)

	var target *ConfigError
	assert.True(t, errors.As(e, &target))
}

func TestProtocolErrorFormat(t *testing.T) {
	e := &ProtocolError{Op: "outct", Detail: "illegal memory address"}
	assert.Equal(t, "outct: illegal memory address", e.Error())
}

func TestInvariantErrorFormat(t *testing.T) {
	e := &InvariantError{Msg: "runnable pushed while already queued"}
	assert.Equal(t, "invariant violation: runnable pushed while already queued", e.Error())
}

func TestInvariantErrorPanics(t *testing.T) {
	assert.PanicsWithValue(t, &InvariantError{Msg: "boom"}, func() {
		panic(&InvariantError{Msg: "boom"})
	})
}

func TestExitErrorFormat(t *testing.T) {
	e := &ExitError{Status: 2}
	assert.Equal(t, "exit status 2", e.Error())
}

func TestExitErrorRecognisedViaErrorsAs(t *testing.T) {
	var err error = &ExitError{Status: 0}
	var target *ExitError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 0, target.Status)
}
