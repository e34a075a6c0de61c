package core

import "github.com/jameshanlon/tool-axe/internal/sched"

// EventableResource is the contract for resources that can raise an
// event, optionally promoted to an interrupt, on their owner thread
// (spec §4.6). It is the domain analogue of the teacher's
// EventTarget/Event pair (eventloop/eventtarget.go): instead of a
// generic listener list, a resource has exactly one owner and answers
// whether it would fire immediately when asked.
type EventableResource interface {
	// Owner returns the thread armed to receive this resource's events,
	// or nil if unarmed.
	Owner() *Thread

	// EventsPermitted reports whether the resource is armed and its
	// owner thread has the matching enable bit set (IEBLE when armed as
	// an interrupt, EEBLE otherwise); a resource may add its own
	// readiness condition (Timer requires a pending trigger). It does
	// not compare state against the event vector.
	EventsPermitted() bool

	// CompleteEvent is called by the resource's completion handler
	// (after SystemState.CompleteEvent has performed the register
	// save/restore) to set ED and PC from the resource's recorded
	// event vector and data.
	CompleteEvent()

	// SeeOwnerEventEnable is invoked when the owner thread re-enables
	// events; it reports whether the resource would fire immediately.
	// Chanend also completes the event on the owner straight away; the
	// other resources schedule nothing.
	SeeOwnerEventEnable(at sched.Ticks) bool
}

// eventable is embedded by concrete resources to provide the common
// owner/vector/data/enable bookkeeping described in spec §4.6.
type eventable struct {
	owner      *Thread
	enabled    bool
	eventVect  uint32
	eventData  uint32
	interrupt  bool
}

func (e *eventable) Owner() *Thread { return e.owner }

// Arm records the owner thread and vector/data pair, and whether
// completion should be treated as an interrupt (IEBLE) rather than a
// plain event (EEBLE).
func (e *eventable) Arm(owner *Thread, vector, data uint32, interrupt bool) {
	e.owner = owner
	e.eventVect = vector
	e.eventData = data
	e.interrupt = interrupt
	e.enabled = true
}

func (e *eventable) Disarm() { e.enabled = false; e.owner = nil }

func (e *eventable) armed() bool {
	return e.enabled && e.owner != nil
}

func (e *eventable) ownerEventsPermitted() bool {
	if !e.armed() {
		return false
	}
	if e.interrupt {
		return e.owner.IEBLE
	}
	return e.owner.EEBLE
}

func (e *eventable) completeEventVectorData() (vector, data uint32, interrupt bool) {
	return e.eventVect, e.eventData, e.interrupt
}
