// Package token defines the byte-level unit exchanged between channel
// ends: a data or control token, and the fixed set of control-token
// codes the core must recognise. Grounded on original_source/Token.h.
package token

// ControlValue enumerates the control-token codes carried by Token.Value
// when Token.Control is true.
type ControlValue uint8

const (
	CtrlEnd    ControlValue = 0x01
	CtrlPause  ControlValue = 0x02
	CtrlAck    ControlValue = 0x03
	CtrlNack   ControlValue = 0x04
	CtrlReadN  ControlValue = 0x10
	CtrlRead1  ControlValue = 0x11
	CtrlRead2  ControlValue = 0x12
	CtrlRead4  ControlValue = 0x13
	CtrlRead8  ControlValue = 0x14
	CtrlWriteN ControlValue = 0x15
	CtrlWrite1 ControlValue = 0x16
	CtrlWrite2 ControlValue = 0x17
	CtrlWrite4 ControlValue = 0x18
	CtrlWrite8 ControlValue = 0x19
	CtrlWriteC ControlValue = 0xc0
	CtrlReadC  ControlValue = 0xc1
)

// Token is the unit of exchange on a channel: either an 8-bit data
// payload, or a control marker drawn from ControlValue.
type Token struct {
	Value   uint8
	Control bool
}

// Data constructs a data token.
func Data(v uint8) Token { return Token{Value: v} }

// Ctrl constructs a control token.
func Ctrl(v ControlValue) Token { return Token{Value: uint8(v), Control: true} }

// Is reports whether a control token carries the given control value.
func (t Token) Is(v ControlValue) bool { return t.Control && t.Value == uint8(v) }
