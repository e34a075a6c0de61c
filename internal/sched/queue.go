// Package sched implements the global event scheduler: a Runnable
// contract and a RunnableQueue ordered by wake-up tick with stable FIFO
// tie-breaking, following the REDESIGN FLAG's allowance to replace the
// source's intrusive linked list with a binary heap — the same choice
// the teacher's event loop makes for its timer queue
// (eventloop/loop.go's timerHeap, built on container/heap).
package sched

import "container/heap"

// Ticks is the simulation's monotonic cycle counter.
type Ticks uint64

// Runnable is anything the scheduler can dispatch: a Thread, a
// TokenDelay, a Timer.
type Runnable interface {
	// Run executes the runnable at the given tick. It may enqueue
	// further runnables or return an error that unwinds the loop
	// (see simerr.ExitError).
	Run(at Ticks) error
}

// item is one entry in the heap: a runnable plus its wake-up tick and
// an insertion sequence number used to break ties in FIFO order.
type item struct {
	runnable Runnable
	wakeUp   Ticks
	seq      uint64
	queued   bool
	index    int
}

// itemHeap implements container/heap.Interface ordered by
// (wakeUp, seq) ascending.
type itemHeap []*item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].wakeUp != h[j].wakeUp {
		return h[i].wakeUp < h[j].wakeUp
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *itemHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// RunnableQueue is the priority queue over Runnable items described in
// spec §4.1: ordered by wake-up tick ascending, ties broken by
// insertion order, O(1) empty check, and explicit protection against
// double-enqueue of the same runnable.
type RunnableQueue struct {
	heap    itemHeap
	nextSeq uint64
	byRun   map[Runnable]*item
}

// NewRunnableQueue creates an empty queue.
func NewRunnableQueue() *RunnableQueue {
	return &RunnableQueue{byRun: make(map[Runnable]*item)}
}

// Empty reports whether the queue holds no runnables. O(1).
func (q *RunnableQueue) Empty() bool { return q.heap.Len() == 0 }

// Len returns the number of queued runnables.
func (q *RunnableQueue) Len() int { return q.heap.Len() }

// Push enqueues r to run at tick t. Pushing a runnable that is already
// queued is an invariant violation — callers must Remove first.
func (q *RunnableQueue) Push(r Runnable, t Ticks) {
	if _, ok := q.byRun[r]; ok {
		panic(runnableAlreadyQueued)
	}
	it := &item{runnable: r, wakeUp: t, seq: q.nextSeq, queued: true}
	q.nextSeq++
	q.byRun[r] = it
	heap.Push(&q.heap, it)
}

// Remove drops r from the queue if present; a no-op otherwise.
func (q *RunnableQueue) Remove(r Runnable) {
	it, ok := q.byRun[r]
	if !ok {
		return
	}
	heap.Remove(&q.heap, it.index)
	delete(q.byRun, r)
}

// Contains reports whether r is currently queued.
func (q *RunnableQueue) Contains(r Runnable) bool {
	_, ok := q.byRun[r]
	return ok
}

// PopFront removes and returns the earliest-due runnable along with its
// wake-up tick.
func (q *RunnableQueue) PopFront() (Runnable, Ticks) {
	it := heap.Pop(&q.heap).(*item)
	delete(q.byRun, it.runnable)
	return it.runnable, it.wakeUp
}
