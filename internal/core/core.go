package core

import (
	"github.com/jameshanlon/tool-axe/internal/ring"
	"github.com/jameshanlon/tool-axe/internal/simerr"
	"github.com/jameshanlon/tool-axe/internal/stats"
)

// Core owns a fixed set of hardware resources and a private memory
// bank (spec §3). Object lifetimes are static for the run: the whole
// graph is built once from configuration and never reshaped.
type Core struct {
	Threads     [NumThreads]Thread
	Syncs       [NumSyncs]Synchroniser
	Locks       [NumLocks]Lock
	Chanends    [NumChanends]Chanend
	Timers      [NumTimers]Timer
	ClockBlocks [NumClkBlks]ClockBlock
	Ports1      [Num1BitPorts]Port
	Ports4      [Num4BitPorts]Port
	Ports8      [Num8BitPorts]Port
	Ports16     [Num16BitPorts]Port
	Ports32     [Num32BitPorts]Port

	Memory   []byte
	RAMSize  uint32
	RAMBase  uint32

	// Stats, when non-nil, receives per-thread instruction counts for
	// the -S/-I reports (spec §12 SUPPLEMENTED FEATURES). Attaching it
	// is optional: cmd/axe only allocates one when a stats flag is
	// passed.
	Stats *stats.CoreStats

	coreNumber uint16
	parent     *Node
}

// NewCore allocates a Core with the given memory size (bytes) and base
// address, wiring up every fixed resource the way
// original_source/Core.h's constructor does.
func NewCore(ramSize, ramBase uint32) *Core {
	c := &Core{
		Memory:  make([]byte, ramSize),
		RAMSize: ramSize,
		RAMBase: ramBase,
	}
	for i := range c.Threads {
		c.Threads[i].num = i
		c.Threads[i].core = c
	}
	for i := range c.Syncs {
		c.Syncs[i].num = i
	}
	for i := range c.Locks {
		c.Locks[i].num = i
	}
	for i := range c.Chanends {
		c.Chanends[i].num = i
		c.Chanends[i].core = c
		c.Chanends[i].buf = ring.New(ChanendBufferSize)
	}
	for i := range c.Timers {
		c.Timers[i].num = i
	}
	for i := range c.ClockBlocks {
		c.ClockBlocks[i].num = i
	}
	initPorts(c.Ports1[:], 1)
	initPorts(c.Ports4[:], 4)
	initPorts(c.Ports8[:], 8)
	initPorts(c.Ports16[:], 16)
	initPorts(c.Ports32[:], 32)
	c.Threads[0].Alloc()
	return c
}

func initPorts(ports []Port, width int) {
	for i := range ports {
		ports[i].num = i
		ports[i].width = width
	}
}

// TargetPC computes the opcode-cache address for logical pc, matching
// Core::targetPc.
func (c *Core) TargetPC(pc uint32) uint32 { return c.RAMBase + (pc << 1) }

func (c *Core) VirtualAddress(addr uint32) uint32  { return addr + c.RAMBase }
func (c *Core) PhysicalAddress(addr uint32) uint32 { return addr - c.RAMBase }
func (c *Core) IsValidAddress(addr uint32) bool    { return addr < c.RAMSize }

func (c *Core) LoadWord(addr uint32) uint32 {
	return uint32(c.Memory[addr]) | uint32(c.Memory[addr+1])<<8 |
		uint32(c.Memory[addr+2])<<16 | uint32(c.Memory[addr+3])<<24
}

func (c *Core) StoreWord(addr uint32, v uint32) {
	c.Memory[addr] = byte(v)
	c.Memory[addr+1] = byte(v >> 8)
	c.Memory[addr+2] = byte(v >> 16)
	c.Memory[addr+3] = byte(v >> 24)
}

func (c *Core) CoreNumber() int { return int(c.coreNumber) }

func (c *Core) setCoreNumber(n uint16) { c.coreNumber = n }

func (c *Core) Parent() *Node { return c.parent }

func (c *Core) setParent(n *Node) { c.parent = n }

// GetLocalChanendDest resolves a resource ID to one of this core's own
// chanends, reporting false if the ID does not name a local chanend.
func (c *Core) GetLocalChanendDest(id ResourceID) (*Chanend, bool) {
	if id.Type() != ResTypeChanend || id.CoreID() != c.coreNumber {
		return nil, false
	}
	n := int(id.Num())
	if n < 0 || n >= len(c.Chanends) {
		return nil, false
	}
	return &c.Chanends[n], true
}

// CoreID returns the resource-id core-tag for this core, matching
// Core::getCoreID.
func (c *Core) CoreID() uint16 { return c.coreNumber }

// mustOK panics with an InvariantError built from msg when ok is false,
// for asserting resource-graph invariants established at construction
// time. Nothing in this package calls it at present.
func mustOK(ok bool, msg string) {
	if !ok {
		panic(&simerr.InvariantError{Msg: msg})
	}
}
