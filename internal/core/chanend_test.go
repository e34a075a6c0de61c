package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameshanlon/tool-axe/internal/token"
)

// TestChanendLoopbackWordTransfer reproduces spec §8 scenario 1: a
// single-chip out/outct(END) producer followed by an in/chkct consumer.
func TestChanendLoopbackWordTransfer(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	a, b := &c.Chanends[0], &c.Chanends[1]
	thA, thB := &c.Threads[0], &c.Threads[1]

	require.True(t, a.Alloc(thA))
	require.True(t, b.Alloc(thB))

	bID := NewResourceID(ResTypeChanend, c.CoreID(), 1)
	require.True(t, a.SetData(thA, uint32(bID)))

	require.Equal(t, OpContinue, a.Out(thA, 0xdeadbeef, 0))
	require.Equal(t, OpContinue, a.Outct(thA, uint8(token.CtrlEnd), 0))
	drainAll(t, sys)

	require.Equal(t, 5, b.buf.Len())
	assert.True(t, b.buf.At(4).Control)

	res, value := b.In(thB, 0)
	assert.Equal(t, OpContinue, res)
	assert.EqualValues(t, 0xdeadbeef, value)

	assert.Equal(t, OpContinue, b.Chkct(thB, uint8(token.CtrlEnd), 0))
	assert.True(t, b.buf.Empty())
	// The route closed on delivery, so B is free to be claimed again.
	assert.Nil(t, b.source)
}

// TestChanendBackPressureParksSenderAtCapacity reproduces spec §8
// scenario 3: the 9th outt parks the sender, and draining one token
// frees it.
func TestChanendBackPressureParksSenderAtCapacity(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	a, b := &c.Chanends[0], &c.Chanends[1]
	thA, thB := &c.Threads[0], &c.Threads[1]
	require.True(t, a.Alloc(thA))
	require.True(t, b.Alloc(thB))

	bID := NewResourceID(ResTypeChanend, c.CoreID(), 1)
	require.True(t, a.SetData(thA, uint32(bID)))

	for i := 0; i < ChanendBufferSize; i++ {
		res := a.Outt(thA, byte(i), 0)
		require.Equal(t, OpContinue, res)
		drainAll(t, sys)
	}
	require.True(t, b.buf.Full())

	res := a.Outt(thA, 0xff, 0)
	assert.Equal(t, OpDeschedule, res)
	assert.Equal(t, thA, a.pausedOut)
	assert.False(t, sys.Scheduled(thA))

	res2, _ := b.Intoken(thB, 0)
	assert.Equal(t, OpContinue, res2)

	assert.Nil(t, a.pausedOut)
	assert.True(t, sys.Scheduled(thA))
}

// TestChanendClaimContentionQueuesSecondSender reproduces spec §8
// scenario 4: A and B both target C; B's send is refused and queued
// until A releases the route, at which point B is notified.
func TestChanendClaimContentionQueuesSecondSender(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	a, b, cc := &c.Chanends[0], &c.Chanends[1], &c.Chanends[2]
	thA, thB := &c.Threads[0], &c.Threads[1]
	require.True(t, a.Alloc(thA))
	require.True(t, b.Alloc(thB))
	require.True(t, cc.Alloc(&c.Threads[2]))

	cID := NewResourceID(ResTypeChanend, c.CoreID(), 2)
	require.True(t, a.SetData(thA, uint32(cID)))
	require.True(t, b.SetData(thB, uint32(cID)))

	require.Equal(t, OpContinue, a.Outt(thA, 'x', 0))

	res := b.Outt(thB, 'y', 0)
	assert.Equal(t, OpDeschedule, res)
	assert.Equal(t, thB, b.pausedOut)
	require.Len(t, cc.claimWaiters, 1)
	assert.Equal(t, ChanEndpoint(b), cc.claimWaiters[0])

	require.Equal(t, OpContinue, a.Outct(thA, uint8(token.CtrlEnd), 0))
	drainAll(t, sys)

	assert.Nil(t, b.pausedOut)
	assert.Nil(t, cc.source)
	assert.Empty(t, cc.claimWaiters)
}

// TestChanendAntiOvertakeClampsLatency reproduces the anti-overtake
// invariant of spec §4.3: a later send that would otherwise arrive
// before an earlier one is clamped to preserve ordering.
func TestChanendAntiOvertakeClampsLatency(t *testing.T) {
	_, c := newTestSystem(t, 0)
	a, b := &c.Chanends[0], &c.Chanends[1]
	a.dest = b

	a.lastTime = 10
	a.lastLatency = 50
	got := a.getLatency(1, true, 20)

	assert.EqualValues(t, 60, got)
	assert.EqualValues(t, 20, a.lastTime)
	assert.EqualValues(t, 60, a.lastLatency)
}

func TestChanendCanAcceptTokenAndTokens(t *testing.T) {
	c := NewCore(64, 0)
	a := &c.Chanends[0]
	assert.True(t, a.CanAcceptToken())
	assert.True(t, a.CanAcceptTokens(ChanendBufferSize))
	assert.False(t, a.CanAcceptTokens(ChanendBufferSize+1))
}

func TestChanendFreeFailsWithOpenPacketOrBoundSourceOrPendingTokens(t *testing.T) {
	c := NewCore(64, 0)
	a, b := &c.Chanends[0], &c.Chanends[1]
	require.True(t, a.Alloc(&c.Threads[0]))

	assert.True(t, a.Free())
	require.True(t, a.Alloc(&c.Threads[0]))

	a.inPacket = true
	assert.False(t, a.Free())
	a.inPacket = false

	a.source = b
	assert.False(t, a.Free())
	a.source = nil

	a.buf.Push(token.Data(1))
	assert.False(t, a.Free())
}

func TestChanendClaimIsIdempotentForSameSource(t *testing.T) {
	c := NewCore(64, 0)
	cc, a := &c.Chanends[0], &c.Chanends[1]
	assert.True(t, cc.Claim(a))
	assert.True(t, cc.Claim(a))
	assert.Equal(t, ChanEndpoint(a), cc.source)
}
