package core

// Fixed architectural constants (spec §6). These differ from the
// original_source/Config.h values (NUM_THREADS=20, NUM_SYNCS=20):
// spec.md is authoritative where the two disagree.
const (
	NumThreads  = 16
	NumSyncs    = 16
	NumLocks    = 4
	NumTimers   = 10
	NumChanends = 32
	NumClkBlks  = 6

	Num1BitPorts  = 16
	Num4BitPorts  = 6
	Num8BitPorts  = 4
	Num16BitPorts = 4
	Num32BitPorts = 2

	ChanendBufferSize = 8

	// CyclesPerTick is the number of 400MHz clock cycles per 100MHz
	// timer tick, and the cost of executing one guest instruction.
	CyclesPerTick = 4

	DivCycles = 32

	DefaultRAMSizeLog = 16
)
