package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestData(t *testing.T) {
	tok := Data(0x42)
	assert.False(t, tok.Control)
	assert.EqualValues(t, 0x42, tok.Value)
	assert.False(t, tok.Is(CtrlEnd))
}

func TestCtrl(t *testing.T) {
	tok := Ctrl(CtrlEnd)
	assert.True(t, tok.Control)
	assert.EqualValues(t, CtrlEnd, tok.Value)
	assert.True(t, tok.Is(CtrlEnd))
	assert.False(t, tok.Is(CtrlPause))
}
