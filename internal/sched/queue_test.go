package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunnable struct {
	name string
	ran  []Ticks
}

func (r *fakeRunnable) Run(at Ticks) error {
	r.ran = append(r.ran, at)
	return nil
}

func TestRunnableQueueOrdersByWakeUpTick(t *testing.T) {
	q := NewRunnableQueue()
	a, b, c := &fakeRunnable{name: "a"}, &fakeRunnable{name: "b"}, &fakeRunnable{name: "c"}
	q.Push(c, 30)
	q.Push(a, 10)
	q.Push(b, 20)

	var order []string
	var last Ticks
	for !q.Empty() {
		r, at := q.PopFront()
		require.GreaterOrEqual(t, at, last)
		last = at
		order = append(order, r.(*fakeRunnable).name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRunnableQueueTiesPreserveInsertionOrder(t *testing.T) {
	q := NewRunnableQueue()
	first, second, third := &fakeRunnable{name: "first"}, &fakeRunnable{name: "second"}, &fakeRunnable{name: "third"}
	q.Push(first, 5)
	q.Push(second, 5)
	q.Push(third, 5)

	var order []string
	for !q.Empty() {
		r, _ := q.PopFront()
		order = append(order, r.(*fakeRunnable).name)
	}
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRunnableQueueDoubleEnqueuePanics(t *testing.T) {
	q := NewRunnableQueue()
	r := &fakeRunnable{}
	q.Push(r, 1)
	assert.Panics(t, func() { q.Push(r, 2) })
}

func TestRunnableQueueRemove(t *testing.T) {
	q := NewRunnableQueue()
	a, b := &fakeRunnable{name: "a"}, &fakeRunnable{name: "b"}
	q.Push(a, 1)
	q.Push(b, 2)
	assert.True(t, q.Contains(a))
	q.Remove(a)
	assert.False(t, q.Contains(a))

	r, _ := q.PopFront()
	assert.Same(t, b, r)
	assert.True(t, q.Empty())

	// Remove on an absent runnable is a no-op.
	q.Remove(a)
}

func TestRunnableQueueEmptyIsConstantTime(t *testing.T) {
	q := NewRunnableQueue()
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
	r := &fakeRunnable{}
	q.Push(r, 0)
	assert.False(t, q.Empty())
	assert.Equal(t, 1, q.Len())
}
