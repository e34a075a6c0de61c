package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameshanlon/tool-axe/internal/token"
)

func TestBufferBasics(t *testing.T) {
	b := New(8)
	assert.True(t, b.Empty())
	assert.False(t, b.Full())
	assert.Equal(t, 8, b.Remaining())

	b.Push(token.Data(1))
	b.Push(token.Data(2))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, token.Data(1), b.Front())
	assert.Equal(t, token.Data(2), b.At(1))

	assert.Equal(t, token.Data(1), b.Pop())
	assert.Equal(t, 1, b.Len())
}

func TestBufferCapacityInvariant(t *testing.T) {
	b := New(8)
	for i := 0; i < 8; i++ {
		b.Push(token.Data(uint8(i)))
	}
	require.True(t, b.Full())
	assert.Equal(t, 0, b.Remaining())
	assert.Panics(t, func() { b.Push(token.Data(9)) })
}

func TestBufferPopOnEmptyPanics(t *testing.T) {
	b := New(4)
	assert.Panics(t, func() { b.Pop() })
	assert.Panics(t, func() { b.Front() })
}

func TestBufferPopN(t *testing.T) {
	b := New(8)
	for i := 0; i < 4; i++ {
		b.Push(token.Data(uint8(i)))
	}
	toks := b.PopN(4)
	require.Len(t, toks, 4)
	for i, tok := range toks {
		assert.EqualValues(t, i, tok.Value)
	}
	assert.True(t, b.Empty())
}

func TestBufferWrapsAroundHead(t *testing.T) {
	b := New(4)
	for i := 0; i < 4; i++ {
		b.Push(token.Data(uint8(i)))
	}
	b.Pop()
	b.Pop()
	b.Push(token.Data(4))
	b.Push(token.Data(5))
	require.True(t, b.Full())
	want := []uint8{2, 3, 4, 5}
	for i, w := range want {
		assert.EqualValues(t, w, b.At(i).Value)
	}
}
