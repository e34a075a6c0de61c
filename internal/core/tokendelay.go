package core

import "github.com/jameshanlon/tool-axe/internal/sched"

// CtrlTokenDelay, DataTokenDelay and DataTokensDelay are the scheduled
// deliveries of the output path (spec §4.3): a sender enqueues one of
// these at time+latency instead of calling the destination directly,
// so that the RunnableQueue is the single point of truth for when a
// token becomes visible. Grounded directly on
// original_source/TokenDelay.h/.cpp's three Runnable subclasses.
type CtrlTokenDelay struct {
	dest  ChanEndpoint
	value uint8
}

func newCtrlTokenDelay(dest ChanEndpoint, value uint8) *CtrlTokenDelay {
	return &CtrlTokenDelay{dest: dest, value: value}
}

func (d *CtrlTokenDelay) Run(at sched.Ticks) error {
	d.dest.ReceiveCtrlToken(at, d.value)
	return nil
}

type DataTokenDelay struct {
	dest  ChanEndpoint
	value uint8
}

func newDataTokenDelay(dest ChanEndpoint, value uint8) *DataTokenDelay {
	return &DataTokenDelay{dest: dest, value: value}
}

func (d *DataTokenDelay) Run(at sched.Ticks) error {
	d.dest.ReceiveDataToken(at, d.value)
	return nil
}

type DataTokensDelay struct {
	dest   ChanEndpoint
	values []uint8
}

func newDataTokensDelay(dest ChanEndpoint, values []uint8) *DataTokensDelay {
	return &DataTokensDelay{dest: dest, values: values}
}

func (d *DataTokensDelay) Run(at sched.Ticks) error {
	d.dest.ReceiveDataTokens(at, d.values)
	return nil
}
