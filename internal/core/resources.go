package core

import "github.com/jameshanlon/tool-axe/internal/sched"

// Lock, Sync, Timer, Port and ClockBlock are the remaining fixed
// resource types a Core owns (original_source/Core.h). No pin-level or
// PHY timing is modelled — that is explicitly out of scope (link-layer
// coding Non-goal) — they exist so Thread's event/interrupt discipline
// (spec §4.6) has real resources to arm against beyond the chanend.

// Lock is a simple mutual-exclusion resource: at most one thread holds
// it at a time, others park until Release.
type Lock struct {
	eventable
	num     int
	held    bool
	waiters []*Thread
}

func (l *Lock) Num() int { return l.num }

func (l *Lock) TryAcquire(by *Thread) bool {
	if l.held {
		l.waiters = append(l.waiters, by)
		return false
	}
	l.held = true
	return true
}

func (l *Lock) Release(parent *SystemState) {
	if len(l.waiters) == 0 {
		l.held = false
		return
	}
	next := l.waiters[0]
	l.waiters = l.waiters[1:]
	parent.Schedule(next, next.Time)
}

func (l *Lock) EventsPermitted() bool   { return l.ownerEventsPermitted() }
func (l *Lock) CompleteEvent()          {}
func (l *Lock) SeeOwnerEventEnable(sched.Ticks) bool { return false }

// Synchroniser tracks a set of threads that must all reach a sync
// point before any proceeds (a simplified rendezvous barrier).
type Synchroniser struct {
	eventable
	num     int
	members []*Thread
	waiting int
}

func (s *Synchroniser) Num() int { return s.num }

func (s *Synchroniser) Join(t *Thread) { s.members = append(s.members, t) }

// Sync records an arrival; it reports true once every joined member has
// arrived, at which point the count resets.
func (s *Synchroniser) Sync() bool {
	s.waiting++
	if s.waiting >= len(s.members) && len(s.members) > 0 {
		s.waiting = 0
		return true
	}
	return false
}

func (s *Synchroniser) EventsPermitted() bool   { return s.ownerEventsPermitted() }
func (s *Synchroniser) CompleteEvent()          {}
func (s *Synchroniser) SeeOwnerEventEnable(sched.Ticks) bool { return false }

// Timer fires an event/interrupt when the core's time reaches a
// programmed trigger value.
type Timer struct {
	eventable
	num     int
	trigger uint32
	armed   bool
}

func (tm *Timer) Num() int { return tm.num }

func (tm *Timer) SetTrigger(v uint32) { tm.trigger = v; tm.armed = true }

func (tm *Timer) Fires(now uint32) bool { return tm.armed && now == tm.trigger }

func (tm *Timer) EventsPermitted() bool {
	return tm.armed && tm.ownerEventsPermitted()
}
func (tm *Timer) CompleteEvent()          { tm.armed = false }
func (tm *Timer) SeeOwnerEventEnable(sched.Ticks) bool { return tm.armed }

// Port is a GPIO-style port of a fixed bit width; value and ready state
// only, no pin timing.
type Port struct {
	eventable
	num   int
	width int
	value uint32
	clk   *ClockBlock
}

func (p *Port) Num() int      { return p.num }
func (p *Port) Width() int    { return p.width }
func (p *Port) Value() uint32 { return p.value }
func (p *Port) SetValue(v uint32) {
	mask := uint32(1)<<uint(p.width) - 1
	p.value = v & mask
}
func (p *Port) SetClock(c *ClockBlock) { p.clk = c }

func (p *Port) EventsPermitted() bool   { return p.ownerEventsPermitted() }
func (p *Port) CompleteEvent()          {}
func (p *Port) SeeOwnerEventEnable(sched.Ticks) bool { return false }

// ClockBlock is a configuration-only clock-divider resource: no edge
// timing is simulated, only its divide ratio is tracked (link-layer
// timing accuracy is an explicit Non-goal).
type ClockBlock struct {
	num    int
	divide uint32
}

func (c *ClockBlock) Num() int           { return c.num }
func (c *ClockBlock) SetDivide(d uint32) { c.divide = d }
func (c *ClockBlock) Divide() uint32     { return c.divide }
