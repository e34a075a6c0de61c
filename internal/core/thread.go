package core

import (
	"github.com/jameshanlon/tool-axe/internal/axelog"
	"github.com/jameshanlon/tool-axe/internal/sched"
	"github.com/jameshanlon/tool-axe/internal/simerr"
)

// InstructionCycles is the number of 400MHz clock cycles a single guest
// instruction takes to execute, equivalently CYCLES_PER_TICK.
const InstructionCycles = CyclesPerTick

// Register names, in the order the original debug dump uses them.
var RegisterNames = [...]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11",
	"cp", "dp", "sp", "lr", "et", "ed", "kep", "ksp", "spc", "sed", "ssr",
}

// Disposition is what a single Program.Step asked the scheduler to do.
type Disposition int

const (
	// DispContinue means the thread keeps running; the caller should
	// step again without returning to the scheduler.
	DispContinue Disposition = iota
	// DispYield means the thread's time slice expired: reschedule it
	// at its current time so other runnable threads get a turn.
	DispYield
	// DispDeschedule means the thread parked on a resource op
	// (DESCHEDULE); it must not self-reschedule, the resource will
	// re-add it on wake.
	DispDeschedule
	// DispExit means the guest invoked EXIT.
	DispExit
)

// Program is the external instruction decoder/dispatcher contract
// (spec §1, §4.5): out of scope for this module, consumed through this
// narrow interface. Step executes the guest instruction at th.PC and
// returns what the scheduler should do next plus the cycles it took
// (InstructionCycles per instruction); Thread.Run adds those cycles to
// th.Time and calls Step again while the disposition is DispContinue.
type Program interface {
	Step(th *Thread) (Disposition, int, error)
}

// Thread is the executing agent: register file, status flags, and the
// event/interrupt discipline of spec §3/§4.5/§4.6.
type Thread struct {
	eventable

	Regs [12]uint32 // r0..r11
	Cp, Dp, Sp, Lr   uint32
	Et, Ed, Kep, Ksp uint32
	Spc, Sed, Ssr    uint32

	EEBLE, IEBLE   bool // event / interrupt enable
	INENB, ININT   bool // event outstanding / interrupt outstanding
	INK            bool // interrupt kind (set alongside ININT)
	Waiting        bool

	PC   uint32
	Time sched.Ticks

	core     *Core
	num      int
	inUse    bool
	program  Program

	// eventEnabledResources/interruptEnabledResources mirror the
	// original's per-thread lists consulted by setSRSlowPath when
	// EEBLE/IEBLE toggles, so armed resources can be notified.
	eventEnabledResources     []EventableResource
	interruptEnabledResources []EventableResource
}

// Num returns the thread's resource index within its Core.
func (t *Thread) Num() int { return t.num }

// Core returns the owning Core.
func (t *Thread) Core() *Core { return t.core }

// SetProgram installs the external instruction stream driving this
// thread.
func (t *Thread) SetProgram(p Program) { t.program = p }

// TargetPC computes the opcode-cache address for a given logical pc,
// per Core.targetPc in the original.
func (t *Thread) TargetPC(pc uint32) uint32 { return t.core.TargetPC(pc) }

// Run executes this thread as a Runnable, per spec §4.2/§4.5: it drives
// Program.Step until the program yields, deschedules, or exits,
// self-rescheduling only on yield.
func (t *Thread) Run(at sched.Ticks) error {
	t.Time = at
	if t.program == nil {
		// nothing to execute; return without rescheduling so the loop
		// doesn't spin without the scheduler ever advancing.
		return nil
	}
	for {
		axelog.Instruction(t.core.parent.sys.logger, t.core.CoreNumber(), t.num, uint64(t.Time), t.PC)
		disp, cycles, err := t.program.Step(t)
		if err != nil {
			return err
		}
		t.Time += sched.Ticks(cycles)
		if t.core.Stats != nil {
			t.core.Stats.Record(t.num, uint64(t.Time))
		}
		switch disp {
		case DispContinue:
			continue
		case DispYield:
			t.core.parent.sys.Schedule(t, t.Time)
			return nil
		case DispDeschedule:
			// Parked on a resource; the resource reschedules it.
			return nil
		case DispExit:
			return &simerr.ExitError{Status: int(t.Regs[0])}
		default:
			panic(&simerr.InvariantError{Msg: "unknown thread disposition"})
		}
	}
}

// SetSR applies the EEBLE/IEBLE pair, notifying any armed resources so
// they can check SeeOwnerEventEnable (mirrors Thread::setSRSlowPath).
func (t *Thread) SetSR(eeble, ieble bool) {
	t.EEBLE = eeble
	t.IEBLE = ieble
	if eeble {
		for _, r := range t.eventEnabledResources {
			r.SeeOwnerEventEnable(t.Time)
		}
	}
	if ieble {
		for _, r := range t.interruptEnabledResources {
			r.SeeOwnerEventEnable(t.Time)
		}
	}
}

// WatchEvents registers r so that SetSR notifies it on re-enable.
func (t *Thread) WatchEvents(r EventableResource)     { t.eventEnabledResources = append(t.eventEnabledResources, r) }
func (t *Thread) WatchInterrupts(r EventableResource)  { t.interruptEnabledResources = append(t.interruptEnabledResources, r) }

// Alloc marks the thread in-use, mirroring Resource::alloc.
func (t *Thread) Alloc() bool {
	if t.inUse {
		return false
	}
	t.inUse = true
	return true
}

func (t *Thread) Free() { t.inUse = false }

func (t *Thread) InUse() bool { return t.inUse }

// statusWord packs the status flags into the word saved to SSR on
// interrupt entry (spec §4.6). Bit layout is a simulator-internal
// convenience, not a guest-visible encoding: nothing in this module
// ever decodes it back except interrupt-return handling in Program,
// which is out of scope here.
func (t *Thread) statusWord() uint32 {
	var w uint32
	set := func(bit uint, v bool) {
		if v {
			w |= 1 << bit
		}
	}
	set(0, t.EEBLE)
	set(1, t.IEBLE)
	set(2, t.INENB)
	set(3, t.ININT)
	set(4, t.INK)
	set(5, t.Waiting)
	return w
}
