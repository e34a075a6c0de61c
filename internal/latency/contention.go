package latency

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// ring is a growable ring buffer of ordered values, adapted from
// go-catrate's ringBuffer (catrate/ring.go). The original backs a
// wall-clock rate limiter; here it tracks, per switch id, the recent
// simulation ticks at which a packet passed through that switch, with
// no goroutine and no dependency on real time — everything is driven
// by the tick values the caller supplies, keeping the simulation
// single-threaded and deterministic.
type ring[E constraints.Ordered] struct {
	s    []E
	r, w uint
}

func newRing[E constraints.Ordered](size int) *ring[E] {
	if size <= 0 || size&(size-1) != 0 {
		panic("latency: ring size must be a power of 2")
	}
	return &ring[E]{s: make([]E, size)}
}

func (x *ring[E]) mask(v uint) uint { return v & (uint(len(x.s)) - 1) }

func (x *ring[E]) Len() int { return int(x.w - x.r) }

func (x *ring[E]) Get(i int) E { return x.s[x.mask(x.r+uint(i))] }

func (x *ring[E]) Search(value E) int {
	return sort.Search(x.Len(), func(i int) bool { return x.Get(i) >= value })
}

func (x *ring[E]) RemoveBefore(index int) { x.r += uint(index) }

func (x *ring[E]) Append(value E) {
	if x.Len() == len(x.s) {
		s := make([]E, uint(len(x.s))<<1)
		for i := 0; i < x.Len(); i++ {
			s[i] = x.Get(i)
		}
		x.s = s
		x.w = uint(x.Len())
		x.r = 0
	}
	x.s[x.mask(x.w)] = value
	x.w++
}

// ContentionTracker records, per switch id, a sliding window of recent
// send ticks, and reports the busiest switch. It is an additive
// observation layer: it never changes the deterministic latency
// returned by Model.Calc. SystemState creates one, but nothing in this
// module records sends into it and the -S report does not print it.
type ContentionTracker struct {
	window int64 // window width, in ticks
	events map[int]*ring[int64]
}

// NewContentionTracker creates a tracker with the given sliding window
// width in simulation ticks.
func NewContentionTracker(windowTicks int64) *ContentionTracker {
	return &ContentionTracker{
		window: windowTicks,
		events: make(map[int]*ring[int64]),
	}
}

// Record notes that a packet passed through switchID at tick now,
// evicting events that have fallen outside the window — the same
// boundary/eviction logic as go-catrate's filterEvents, specialised to
// a single window instead of a map of rates.
func (c *ContentionTracker) Record(switchID int, now int64) {
	r, ok := c.events[switchID]
	if !ok {
		r = newRing[int64](8)
		c.events[switchID] = r
	}
	boundary := now - c.window
	idx := r.Search(boundary + 1)
	r.RemoveBefore(idx)
	r.Append(now)
}

// Count reports how many sends through switchID fall within the
// current window as of the last Record call for that switch.
func (c *ContentionTracker) Count(switchID int) int {
	r, ok := c.events[switchID]
	if !ok {
		return 0
	}
	return r.Len()
}

// Busiest returns the switch id with the most recently-windowed sends,
// and its count.
func (c *ContentionTracker) Busiest() (switchID, count int) {
	for id, r := range c.events {
		if r.Len() > count {
			switchID, count = id, r.Len()
		}
	}
	return
}
