package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jameshanlon/tool-axe/internal/token"
)

// TestChanendRemoteRead4RoundTrip reproduces spec §8 scenario 5: a
// CT_READ4 request packet (CRI, address, END) against the target
// chanend's core memory (here the same single test core), replying
// with the loaded word.
func TestChanendRemoteRead4RoundTrip(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	r, target := &c.Chanends[0], &c.Chanends[1]
	thR := &c.Threads[0]
	require.True(t, r.Alloc(thR))

	const addr = 0x100
	const word = 0xcafebabe
	c.StoreWord(addr, word)

	targetID := NewResourceID(ResTypeChanend, c.CoreID(), 1)
	require.True(t, r.SetData(thR, uint32(targetID)))

	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlRead4), 0))
	require.Equal(t, OpContinue, r.Out(thR, 0, 0)) // CRI field, not modelled further
	require.Equal(t, OpContinue, r.Out(thR, addr, 0))
	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlEnd), 0))
	drainAll(t, sys)

	assert.False(t, target.memAccessPacket)
	assert.EqualValues(t, addr, target.memAddress)

	res, value := r.In(thR, 0)
	assert.Equal(t, OpContinue, res)
	assert.EqualValues(t, word, value)
	assert.Equal(t, OpContinue, r.Chkct(thR, uint8(token.CtrlEnd), 0))
}

// TestChanendRemoteWrite4RoundTrip covers the CT_WRITE4 counterpart:
// the target's memory is updated and only an END acknowledges it.
func TestChanendRemoteWrite4RoundTrip(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	r, target := &c.Chanends[0], &c.Chanends[1]
	thR := &c.Threads[0]
	require.True(t, r.Alloc(thR))

	const addr = 0x200
	const word = 0x11223344

	targetID := NewResourceID(ResTypeChanend, c.CoreID(), 1)
	require.True(t, r.SetData(thR, uint32(targetID)))

	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlWrite4), 0))
	require.Equal(t, OpContinue, r.Out(thR, 0, 0)) // CRI field
	require.Equal(t, OpContinue, r.Out(thR, addr, 0))
	require.Equal(t, OpContinue, r.Out(thR, word, 0))
	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlEnd), 0))
	drainAll(t, sys)

	assert.False(t, target.memAccessPacket)
	assert.EqualValues(t, word, c.LoadWord(addr))
	assert.Equal(t, OpContinue, r.Chkct(thR, uint8(token.CtrlEnd), 0))
}

// TestChanendRemoteReadIllegalAddressReportsProtocolError covers the §7
// illegal-memory-address path: the no-op is reported, not fatal.
func TestChanendRemoteReadIllegalAddressReportsProtocolError(t *testing.T) {
	sys, c := newTestSystem(t, 0)
	r := &c.Chanends[0]
	thR := &c.Threads[0]
	require.True(t, r.Alloc(thR))

	var reported error
	sys.SetProtocolErrorHandler(func(err error) { reported = err })

	targetID := NewResourceID(ResTypeChanend, c.CoreID(), 1)
	require.True(t, r.SetData(thR, uint32(targetID)))

	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlRead4), 0))
	require.Equal(t, OpContinue, r.Out(thR, 0, 0))
	require.Equal(t, OpContinue, r.Out(thR, 1<<20, 0)) // well past the 4KiB test core's RAM
	require.Equal(t, OpContinue, r.Outct(thR, uint8(token.CtrlEnd), 0))
	drainAll(t, sys)

	require.Error(t, reported)
}
