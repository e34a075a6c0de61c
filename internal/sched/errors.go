package sched

import "github.com/jameshanlon/tool-axe/internal/simerr"

var runnableAlreadyQueued = &simerr.InvariantError{Msg: "runnable pushed while already queued"}
