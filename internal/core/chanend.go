package core

import (
	"github.com/jameshanlon/tool-axe/internal/ring"
	"github.com/jameshanlon/tool-axe/internal/sched"
	"github.com/jameshanlon/tool-axe/internal/simerr"
	"github.com/jameshanlon/tool-axe/internal/token"
)

// ResOpResult is the three-valued result of a channel-end operation
// (spec §4.3/§7): CONTINUE completes synchronously, DESCHEDULE parks
// the calling thread, ILLEGAL is translated by the caller into a guest
// exception.
type ResOpResult int

const (
	OpContinue ResOpResult = iota
	OpDeschedule
	OpIllegal
)

// ChanEndpoint is the protocol surface a channel-end exposes to its
// peers: claim/release of the exclusive source binding, buffer
// back-pressure queries, token delivery, and the paused-out wake-up
// notifications. Chanend is this module's only implementation; the
// split mirrors the original's ChanEndpoint/Chanend base/derived pair,
// kept as an interface here since nothing else in this module's scope
// implements it (peripheral endpoints are an external concern, §1).
type ChanEndpoint interface {
	Claim(source ChanEndpoint) bool
	Release(at sched.Ticks)
	CanAcceptToken() bool
	CanAcceptTokens(n int) bool
	ReceiveDataToken(at sched.Ticks, value uint8)
	ReceiveDataTokens(at sched.Ticks, values []uint8)
	ReceiveCtrlToken(at sched.Ticks, value uint8)
	NotifyDestClaimed(at sched.Ticks)
	NotifyDestCanAcceptTokens(at sched.Ticks, tokens int)
	CoreNumber() int
}

type chanendState int

const (
	chanIdle chanendState = iota
	chanClaiming
	chanOpen
	chanClosing
)

type memAccessKind int

const (
	memAccessRead4 memAccessKind = iota
	memAccessWrite4
)

// Chanend is a channel-end: the token protocol state machine,
// buffering, routing and back-pressure described in spec §3/§4.3. It
// is simultaneously an EventableResource and a ChanEndpoint.
type Chanend struct {
	eventable

	num  int
	core *Core
	id   ResourceID

	inUse bool

	dest   ChanEndpoint
	source ChanEndpoint

	// claimWaiters holds endpoints that tried to claim this chanend
	// while it already had a different source bound, in arrival order;
	// Release notifies the head.
	claimWaiters []ChanEndpoint

	buf *ring.Buffer

	pausedOut *Thread
	pausedIn  *Thread

	waitForWord bool
	inPacket    bool
	junkPacket  bool

	memAccessPacket bool
	memAccessType   memAccessKind
	memAccessStep   int
	memAddress      uint32
	memValue        uint32

	lastTime    sched.Ticks
	lastLatency sched.Ticks

	// reservedBufferSpace is declared, matching
	// original_source/Chanend.h, but never updated beyond being reset
	// to zero in Alloc: spec
	// §9 flags this as an open question about the source's own intent,
	// not a gap to invent a fix for.
	reservedBufferSpace int

	state chanendState
}

func (c *Chanend) Num() int          { return c.num }
func (c *Chanend) ID() ResourceID    { return c.id }
func (c *Chanend) CoreNumber() int   { return c.core.CoreNumber() }
func (c *Chanend) InUse() bool       { return c.inUse }
func (c *Chanend) State() chanendState { return c.state }

func (c *Chanend) sys() *SystemState { return c.core.parent.sys }

func (c *Chanend) bindOwner(t *Thread) { c.owner = t }

// Alloc reserves the chanend for t, resetting per-packet state, per
// Chanend::alloc.
func (c *Chanend) Alloc(t *Thread) bool {
	if c.inUse {
		return false
	}
	c.inUse = true
	c.dest = nil
	c.reservedBufferSpace = 0
	c.pausedOut = nil
	c.pausedIn = nil
	c.inPacket = false
	c.junkPacket = false
	c.memAccessPacket = false
	c.state = chanIdle
	c.bindOwner(t)
	return true
}

// Free releases the chanend, failing if a packet is open, a source is
// bound, or the buffer is non-empty, per Chanend::free.
func (c *Chanend) Free() bool {
	if !c.buf.Empty() || c.source != nil || c.inPacket {
		return false
	}
	c.inUse = false
	return true
}

// Arm configures this chanend to raise an event (or interrupt) on
// owner when its update condition is satisfied (spec §4.6).
func (c *Chanend) Arm(owner *Thread, vector, data uint32, interrupt bool) {
	c.eventable.Arm(owner, vector, data, interrupt)
}

func (c *Chanend) EventsPermitted() bool { return c.ownerEventsPermitted() }

// CompleteEvent sets ED and PC on the owner from the recorded event
// vector/data, the resource-specific half of SystemState.CompleteEvent
// (spec §4.6).
func (c *Chanend) CompleteEvent() {
	vector, data, _ := c.completeEventVectorData()
	owner := c.Owner()
	owner.Ed = data
	owner.PC = vector
}

// SeeOwnerEventEnable reports whether this chanend would fire
// immediately, firing it if so, per Chanend::seeEventEnable.
func (c *Chanend) SeeOwnerEventEnable(at sched.Ticks) bool {
	if c.buf.Empty() {
		return false
	}
	c.sys().CompleteEvent(c.Owner(), c, c.interrupt)
	return true
}

// SetData resolves dest from a 32-bit resource-id value, per
// Chanend::setData. It fails (returns false) if a packet is already
// open or the id does not name a chanend or config resource.
func (c *Chanend) SetData(th *Thread, value uint32) bool {
	c.bindOwner(th)
	if c.inPacket {
		return false
	}
	id := ResourceID(value)
	if id.Type() != ResTypeChanend && id.Type() != ResTypeConfig {
		return false
	}
	dest, ok := c.sys().GetChanendDest(id)
	if !ok {
		c.dest = nil
		return true
	}
	c.dest = dest
	return true
}

// CanAcceptToken reports whether the input buffer has room for one
// more token.
func (c *Chanend) CanAcceptToken() bool { return !c.buf.Full() }

// CanAcceptTokens reports whether the input buffer has room for n more
// tokens.
func (c *Chanend) CanAcceptTokens(n int) bool { return c.buf.Remaining() >= n }

// Claim binds source as this chanend's exclusive sender, succeeding if
// no source is currently bound or source is already the bound one;
// otherwise source is queued and Claim reports failure (spec §4.3
// "Claim & release").
func (c *Chanend) Claim(source ChanEndpoint) bool {
	if c.source == nil || c.source == source {
		c.source = source
		return true
	}
	c.claimWaiters = append(c.claimWaiters, source)
	return false
}

// Release clears the source binding and, if a waiter is queued,
// notifies the head so it can retry its claim.
func (c *Chanend) Release(at sched.Ticks) {
	c.source = nil
	if len(c.claimWaiters) == 0 {
		return
	}
	next := c.claimWaiters[0]
	c.claimWaiters = c.claimWaiters[1:]
	next.NotifyDestClaimed(at)
}

// NotifyDestClaimed wakes this chanend's paused-out thread, called by
// the destination once it releases a route this chanend was waiting
// on.
func (c *Chanend) NotifyDestClaimed(at sched.Ticks) {
	if c.pausedOut == nil {
		return
	}
	c.pausedOut.Time = at
	c.sys().Schedule(c.pausedOut, at)
	c.pausedOut = nil
}

// NotifyDestCanAcceptTokens wakes this chanend's paused-out thread now
// that buffer space has freed up at the destination. Identical in
// effect to NotifyDestClaimed — spec §9 flags this duplication as an
// open question in the source, preserved rather than merged.
func (c *Chanend) NotifyDestCanAcceptTokens(at sched.Ticks, tokens int) {
	if c.pausedOut == nil {
		return
	}
	c.pausedOut.Time = at
	c.sys().Schedule(c.pausedOut, at)
	c.pausedOut = nil
}

// openRoute ensures a packet is open from this chanend, attempting to
// claim dest if one isn't already. Returns false (and leaves the
// caller to park in pausedOut) only when the claim is refused.
func (c *Chanend) openRoute() bool {
	if c.inPacket {
		return true
	}
	c.state = chanClaiming
	if c.dest == nil {
		c.junkPacket = true
	} else if !c.dest.Claim(c) {
		return false
	}
	c.inPacket = true
	c.state = chanOpen
	return true
}

// getLatency computes the delivery latency for nTokens tokens leaving
// now, applying the anti-overtake clamp of spec §4.3 so that
// deliveries on this chanend's route never arrive out of order.
func (c *Chanend) getLatency(nTokens int, routeOpen bool, now sched.Ticks) sched.Ticks {
	destCore := 0
	if c.dest != nil {
		destCore = c.dest.CoreNumber()
	}
	raw := sched.Ticks(c.sys().LatencyModel().Calc(c.CoreNumber(), destCore, nTokens, routeOpen))
	if now+raw < c.lastTime+c.lastLatency {
		raw = c.lastLatency + (now - c.lastTime)
	}
	c.lastTime = now
	c.lastLatency = raw
	return raw
}

// Outt emits one data token on the currently open (or newly opened)
// packet, per Chanend::outt.
func (c *Chanend) Outt(th *Thread, value uint8, now sched.Ticks) ResOpResult {
	c.bindOwner(th)
	routeOpen := c.inPacket
	if !c.openRoute() {
		c.pausedOut = th
		return OpDeschedule
	}
	if c.junkPacket {
		return OpContinue
	}
	if !c.dest.CanAcceptToken() {
		c.pausedOut = th
		return OpDeschedule
	}
	lat := c.getLatency(1, routeOpen, now)
	c.sys().Schedule(newDataTokenDelay(c.dest, value), now+lat)
	return OpContinue
}

// Out emits a 32-bit word as four big-endian data tokens, per
// Chanend::out.
func (c *Chanend) Out(th *Thread, value uint32, now sched.Ticks) ResOpResult {
	c.bindOwner(th)
	routeOpen := c.inPacket
	if !c.openRoute() {
		c.pausedOut = th
		return OpDeschedule
	}
	if c.junkPacket {
		return OpContinue
	}
	if !c.dest.CanAcceptTokens(4) {
		c.pausedOut = th
		return OpDeschedule
	}
	tokens := []uint8{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
	lat := c.getLatency(4, routeOpen, now)
	c.sys().Schedule(newDataTokensDelay(c.dest, tokens), now+lat)
	return OpContinue
}

// Outct emits a control token, closing the packet locally (but not the
// route, which closes on delivery) when value is END or PAUSE, per
// Chanend::outct.
func (c *Chanend) Outct(th *Thread, value uint8, now sched.Ticks) ResOpResult {
	c.bindOwner(th)
	routeOpen := c.inPacket
	closing := value == uint8(token.CtrlEnd) || value == uint8(token.CtrlPause)
	if !c.openRoute() {
		c.pausedOut = th
		return OpDeschedule
	}
	if c.junkPacket {
		if closing {
			c.inPacket = false
			c.junkPacket = false
			c.state = chanIdle
		}
		return OpContinue
	}
	if !c.dest.CanAcceptToken() {
		c.pausedOut = th
		return OpDeschedule
	}
	lat := c.getLatency(1, routeOpen, now)
	c.sys().Schedule(newCtrlTokenDelay(c.dest, value), now+lat)
	if closing {
		c.inPacket = false
		c.state = chanClosing
	}
	return OpContinue
}

// ReceiveDataToken delivers one data token into buf (spec §4.3 input
// path), called by a DataTokenDelay when it fires.
func (c *Chanend) ReceiveDataToken(at sched.Ticks, value uint8) {
	c.buf.Push(token.Data(value))
	c.update(at)
}

// ReceiveDataTokens delivers a group of data tokens into buf, except
// when a remote memory-access packet is in progress: the group is then
// consumed as the next (CRI, address[, value]) field instead of being
// buffered (spec §4.3 "Remote memory access packets").
func (c *Chanend) ReceiveDataTokens(at sched.Ticks, values []uint8) {
	if c.memAccessPacket {
		if len(values) != 4 {
			c.memAccessPacket = false
			c.sys().ReportProtocolError(&simerr.ProtocolError{Op: "memory access", Detail: "illegal memory access packet"})
		} else {
			word := uint32(values[0])<<24 | uint32(values[1])<<16 | uint32(values[2])<<8 | uint32(values[3])
			switch c.memAccessStep {
			case 0: // CRI: not modelled further, just consumed
			case 1:
				c.memAddress = word
			case 2:
				if c.memAccessType == memAccessWrite4 {
					c.memValue = word
				} else {
					c.memAccessPacket = false
					c.sys().ReportProtocolError(&simerr.ProtocolError{Op: "memory access", Detail: "illegal memory access packet"})
				}
			default:
				c.memAccessPacket = false
				c.sys().ReportProtocolError(&simerr.ProtocolError{Op: "memory access", Detail: "illegal memory access packet"})
			}
			c.memAccessStep++
		}
		return
	}
	for _, v := range values {
		c.buf.Push(token.Data(v))
	}
	c.update(at)
}

// ReceiveCtrlToken delivers a control token, per Chanend::receiveCtrlToken:
// END pushes the token (so the receiver can chkct/inct it) then
// releases the route; PAUSE only releases; CT_READ4/CT_WRITE4 also
// push normally but additionally arm memory-access mode.
func (c *Chanend) ReceiveCtrlToken(at sched.Ticks, value uint8) {
	switch value {
	case uint8(token.CtrlEnd):
		replyTo := c.source
		if c.memAccessPacket {
			c.completeMemAccess(at, replyTo)
		}
		c.buf.Push(token.Ctrl(token.CtrlEnd))
		c.Release(at)
	case uint8(token.CtrlPause):
		c.Release(at)
	case uint8(token.CtrlRead4):
		c.memAccessPacket = true
		c.memAccessType = memAccessRead4
		c.memAccessStep = 0
		c.buf.Push(token.Ctrl(token.ControlValue(value)))
	case uint8(token.CtrlWrite4):
		c.memAccessPacket = true
		c.memAccessType = memAccessWrite4
		c.memAccessStep = 0
		c.buf.Push(token.Ctrl(token.ControlValue(value)))
	default:
		c.buf.Push(token.Ctrl(token.ControlValue(value)))
	}
	c.update(at)
}

// completeMemAccess services a fully-received CT_READ4/CT_WRITE4
// packet, replying along the route the request arrived on and
// advancing the owning thread's time by the memory-access cost (spec
// §4.3). The extra cost is charged to both the reply's delivery and
// the owner's local clock.
func (c *Chanend) completeMemAccess(at sched.Ticks, replyTo ChanEndpoint) {
	c.memAccessPacket = false
	extra := sched.Ticks(c.sys().Config().LatencyGlobalMemory + 2*CyclesPerTick)
	if owner := c.Owner(); owner != nil {
		owner.Time += extra
	}
	if replyTo == nil {
		return
	}
	addr := c.core.PhysicalAddress(c.memAddress)
	if !c.core.IsValidAddress(addr) {
		c.sys().ReportProtocolError(&simerr.ProtocolError{Op: "memory access", Detail: "illegal memory address"})
		return
	}
	switch c.memAccessType {
	case memAccessRead4:
		value := c.core.LoadWord(addr)
		tokens := []uint8{byte(value >> 24), byte(value >> 16), byte(value >> 8), byte(value)}
		c.sys().Schedule(newDataTokensDelay(replyTo, tokens), at+extra)
		c.sys().Schedule(newCtrlTokenDelay(replyTo, uint8(token.CtrlEnd)), at+extra)
	case memAccessWrite4:
		c.core.StoreWord(addr, c.memValue)
		c.sys().Schedule(newCtrlTokenDelay(replyTo, uint8(token.CtrlEnd)), at+extra)
	}
}

// update re-checks whether this chanend should raise an event, or wake
// a paused-in thread, after new tokens land in buf (spec §4.3 input
// path / Chanend::update).
func (c *Chanend) update(at sched.Ticks) {
	if c.buf.Empty() {
		return
	}
	if c.EventsPermitted() {
		c.sys().CompleteEvent(c.Owner(), c, c.interrupt)
		return
	}
	if c.pausedIn == nil {
		return
	}
	if c.waitForWord && c.buf.Len() < 4 {
		return
	}
	if c.pausedIn.Time < at {
		c.pausedIn.Time = at
	}
	c.sys().Schedule(c.pausedIn, c.pausedIn.Time)
	c.pausedIn = nil
}

func (c *Chanend) setPausedIn(th *Thread, wordInput bool) {
	c.pausedIn = th
	c.waitForWord = wordInput
}

// poptoken removes and returns the head token's value, notifying any
// source blocked on buffer space.
func (c *Chanend) poptoken(at sched.Ticks) uint8 {
	t := c.buf.Pop()
	if c.source != nil {
		c.source.NotifyDestCanAcceptTokens(at, c.buf.Remaining())
	}
	return t.Value
}

// TestCt reports whether the buffer is non-empty, and if so whether its
// head token is a control token; it parks the thread otherwise.
func (c *Chanend) TestCt(th *Thread, at sched.Ticks) (isCt bool, ok bool) {
	c.bindOwner(th)
	if c.buf.Empty() {
		c.setPausedIn(th, false)
		return false, false
	}
	return c.buf.Front().Control, true
}

// TestWCt reports the 1-based position of the first control token
// among the first four queued tokens, or 0 if all four are data; it
// parks the thread if fewer than four tokens are queued and none of
// them is a control token yet.
func (c *Chanend) TestWCt(th *Thread, at sched.Ticks) (position int, ok bool) {
	c.bindOwner(th)
	n := c.buf.Len()
	if n > 4 {
		n = 4
	}
	for i := 0; i < n; i++ {
		if c.buf.At(i).Control {
			return i + 1, true
		}
	}
	if c.buf.Len() < 4 {
		c.setPausedIn(th, true)
		return 0, false
	}
	return 0, true
}

// Intoken pops one data token, ILLEGAL if the head is a control token.
func (c *Chanend) Intoken(th *Thread, at sched.Ticks) (ResOpResult, uint32) {
	isCt, ok := c.TestCt(th, at)
	if !ok {
		return OpDeschedule, 0
	}
	if isCt {
		return OpIllegal, 0
	}
	return OpContinue, uint32(c.poptoken(at))
}

// Inct pops one control token, ILLEGAL if the head is a data token.
func (c *Chanend) Inct(th *Thread, at sched.Ticks) (ResOpResult, uint32) {
	isCt, ok := c.TestCt(th, at)
	if !ok {
		return OpDeschedule, 0
	}
	if !isCt {
		return OpIllegal, 0
	}
	return OpContinue, uint32(c.poptoken(at))
}

// Chkct pops the head token only if it is a control token equal to
// value.
func (c *Chanend) Chkct(th *Thread, value uint8, at sched.Ticks) ResOpResult {
	isCt, ok := c.TestCt(th, at)
	if !ok {
		return OpDeschedule
	}
	if !isCt || c.buf.Front().Value != value {
		return OpIllegal
	}
	c.poptoken(at)
	return OpContinue
}

// In pops four data tokens as a big-endian word, ILLEGAL if any of the
// first four tokens is a control token.
func (c *Chanend) In(th *Thread, at sched.Ticks) (ResOpResult, uint32) {
	pos, ok := c.TestWCt(th, at)
	if !ok {
		return OpDeschedule, 0
	}
	if pos != 0 {
		return OpIllegal, 0
	}
	toks := c.buf.PopN(4)
	value := uint32(toks[0].Value)<<24 | uint32(toks[1].Value)<<16 | uint32(toks[2].Value)<<8 | uint32(toks[3].Value)
	if c.source != nil {
		c.source.NotifyDestCanAcceptTokens(at, c.buf.Remaining())
	}
	return OpContinue, value
}
