// Package ring implements the bounded token FIFO backing a channel-end's
// input buffer. Capacity is fixed at construction, matching
// CHANEND_BUFFER_SIZE; push on a full buffer is a caller error (the
// protocol layer must check canAcceptToken(s) first).
package ring

import (
	"github.com/jameshanlon/tool-axe/internal/simerr"
	"github.com/jameshanlon/tool-axe/internal/token"
)

// Buffer is a bounded FIFO of Token, sized at construction.
type Buffer struct {
	data []token.Token
	head int
	size int
}

// New creates a Buffer with the given capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]token.Token, capacity)}
}

// Cap returns the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of tokens currently buffered.
func (b *Buffer) Len() int { return b.size }

// Remaining returns the free capacity.
func (b *Buffer) Remaining() int { return len(b.data) - b.size }

// Empty reports whether the buffer holds no tokens.
func (b *Buffer) Empty() bool { return b.size == 0 }

// Full reports whether the buffer is at capacity.
func (b *Buffer) Full() bool { return b.size == len(b.data) }

// At returns the i-th queued token (0 = head) without removing it.
func (b *Buffer) At(i int) token.Token {
	if i < 0 || i >= b.size {
		panic(&simerr.InvariantError{Msg: "ring: index out of range"})
	}
	return b.data[(b.head+i)%len(b.data)]
}

// Front returns the head token without removing it.
func (b *Buffer) Front() token.Token {
	if b.Empty() {
		panic(&simerr.InvariantError{Msg: "ring: front on empty buffer"})
	}
	return b.At(0)
}

// Push appends a token. Panics if the buffer is full: callers must
// honour canAcceptToken(s) back-pressure before pushing.
func (b *Buffer) Push(t token.Token) {
	if b.Full() {
		panic(&simerr.InvariantError{Msg: "ring: push on full buffer"})
	}
	b.data[(b.head+b.size)%len(b.data)] = t
	b.size++
}

// Pop removes and returns the head token.
func (b *Buffer) Pop() token.Token {
	if b.Empty() {
		panic(&simerr.InvariantError{Msg: "ring: pop on empty buffer"})
	}
	t := b.data[b.head]
	b.head = (b.head + 1) % len(b.data)
	b.size--
	return t
}

// PopN removes and returns the first n tokens, in FIFO order.
func (b *Buffer) PopN(n int) []token.Token {
	if n > b.size {
		panic(&simerr.InvariantError{Msg: "ring: popN exceeds buffer length"})
	}
	out := make([]token.Token, n)
	for i := range out {
		out[i] = b.Pop()
	}
	return out
}
