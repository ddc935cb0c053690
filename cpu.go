package main

// BreakpointHit signals that execution stopped because PC reached a
// configured breakpoint. Unlike the error types in errors.go this is not
// fatal: the driver catches it, reports the stop, and may resume.
type BreakpointHit struct {
	PC uint16
}

func (e *BreakpointHit) Error() string { return "breakpoint hit" }

// ExitpointHit signals that execution stopped because PC reached a
// configured exitpoint, the normal way a test program signals completion.
type ExitpointHit struct {
	PC uint16
}

func (e *ExitpointHit) Error() string { return "exitpoint hit" }

// CPU is the whole CESC16 architectural and execution state: registers,
// flags, the current privilege mode, the memory and ROM it fetches
// from, the timer that can interrupt it, and the bookkeeping the driver
// loop and status panel read (CPI window, elapsed counters, trace hook).
type CPU struct {
	PC       uint16
	Regs     RegisterFile
	Flags    Flags
	UserMode bool

	RAM *RAM
	ROM ROMPair

	Timer      *Timer
	pendingIRQ bool

	// AllowEarlyInterrupts mirrors Globals.h's strict_flg: when true the
	// timer can interrupt at any PC; when false, delivery is withheld
	// until PC reaches OSCriticalInstrCount, giving kernel startup code
	// a guaranteed interrupt-free prologue.
	AllowEarlyInterrupts bool
	OSCriticalInstrCount uint16

	ElapsedCycles       uint64
	ElapsedInstructions uint64
	CPI                 *CPIWindow

	Tracer *Tracer

	Breakpoints map[uint16]bool
	Exitpoints  map[uint16]bool
}

// NewCPU wires up a CPU against already-constructed memory and timer. RAM
// is expected to already have its four ports attached (see main.go).
func NewCPU(ram *RAM, timer *Timer) *CPU {
	return &CPU{
		RAM:         ram,
		Timer:       timer,
		CPI:         &CPIWindow{},
		Breakpoints: make(map[uint16]bool),
		Exitpoints:  make(map[uint16]bool),
	}
}

// Reset restores architectural state to power-on values. The ROM and RAM
// contents, breakpoints, and exitpoints are untouched.
func (cpu *CPU) Reset() {
	cpu.PC = 0
	cpu.Regs = RegisterFile{}
	cpu.Flags = Flags{}
	cpu.UserMode = false
	cpu.pendingIRQ = false
	cpu.ElapsedCycles = 0
	cpu.ElapsedInstructions = 0
	cpu.CPI.Reset()
}

// isOSReady reports whether a pending timer interrupt may be delivered
// right now, per §4.6: either the emulator is configured to ignore the
// kernel's startup window entirely, or PC has already advanced past it.
func (cpu *CPU) isOSReady() bool {
	return cpu.AllowEarlyInterrupts || cpu.PC >= cpu.OSCriticalInstrCount
}

// irqDeliveryCycles is the fixed cost of transferring control to the
// interrupt vector, the same in both privilege modes.
const irqDeliveryCycles = 3

// irqSource is a peripheral capable of latching its own interrupt request
// asynchronously (from a goroutine other than the one driving Step),
// polled once per turn alongside the timer's overflow. TakeIRQ reports and
// clears the pending condition in one call.
type irqSource interface {
	TakeIRQ() bool
}

// deliverIRQ transfers control to the timer interrupt vector, pushing the
// return address and switching to kernel mode. The vector differs
// depending on which mode the interrupt arrived in, so the handler can
// tell sysret from ret on the way back out.
func (cpu *CPU) deliverIRQ() error {
	vector := VectorIRQFromKernel
	if cpu.UserMode {
		vector = VectorIRQFromUser
	}
	if err := cpu.push(cpu.PC); err != nil {
		return err
	}
	cpu.UserMode = false
	cpu.PC = vector
	return nil
}

// fetch reads one (opcode, argument) pair from the active instruction
// space. In kernel mode this is the ROM pair indexed directly by PC. In
// user mode, RAM has no separate high/low halves, so the opcode and its
// argument occupy two consecutive cells: ram[PC] is the opcode, and PC is
// advanced by one right here — before the argument is read and before the
// caller's own post-execute advance — so the argument lands at the new PC
// and every downstream use of cpu.PC (argument decode, the return address
// pushed by call/syscall/enter) already reflects the one-cell shift. The
// caller's normal end-of-instruction advance then moves PC past the
// argument cell to the next instruction, so a non-jump instruction advances
// PC by 1 in kernel mode and by 2 in user mode.
func (cpu *CPU) fetch() (opcode uint16, argument uint16, err error) {
	if !cpu.UserMode {
		return cpu.ROM.High[cpu.PC], cpu.ROM.Low[cpu.PC], nil
	}
	opcode, err = cpu.RAM.Read(cpu.PC)
	if err != nil {
		return 0, 0, err
	}
	if err := cpu.advancePC(); err != nil {
		return 0, 0, err
	}
	argument, err = cpu.RAM.Read(cpu.PC)
	if err != nil {
		return 0, 0, err
	}
	return opcode, argument, nil
}

// Step fetches, decodes, and executes exactly one instruction (or delivers
// one pending interrupt), returning the number of cycles it cost. It is
// the unit Execute's budget loop spends against, and what single-step mode
// calls directly.
//
// Each call first acts on whatever pendingIRQ state the *previous* call's
// tick left behind, then performs this turn's action, and only afterward
// ticks the timer for this turn's own cost — an overflow caused by this
// turn is therefore not delivered until the next call to Step. This
// one-cycle-turn latency matches the source emulator's interrupt loop.
func (cpu *CPU) Step() (int, error) {
	if cpu.pendingIRQ && cpu.isOSReady() {
		if err := cpu.deliverIRQ(); err != nil {
			return 0, err
		}
		cpu.pendingIRQ = false
		return cpu.finishTurn(irqDeliveryCycles), nil
	}

	oldPC := cpu.PC
	opcode, argument, err := cpu.fetch()
	if err != nil {
		return 0, err
	}
	d := decode(opcode)

	if cpu.Tracer != nil {
		cpu.Tracer.TracePreInstruction(cpu, d, argument)
	}

	eff, err := cpu.execute(d, argument)
	if err != nil {
		if cpu.Tracer != nil {
			cpu.Tracer.TraceException(cpu, err)
		}
		return 0, err
	}
	if !eff.jumped {
		if err := cpu.advancePC(); err != nil {
			return eff.cycles, err
		}
	}

	if cpu.Tracer != nil {
		cpu.Tracer.TracePostInstruction(cpu, oldPC, d)
	}

	return cpu.finishTurn(eff.cycles), nil
}

// finishTurn ticks the timer and any asynchronous IRQ source by this
// turn's cost, updates the CPI window and elapsed counters, and returns
// that cost. Shared by both the interrupt-delivery and normal-instruction
// paths of Step, since both need to report the same turn to the timer and
// the same bookkeeping either way.
func (cpu *CPU) finishTurn(cost int) int {
	if cpu.Timer.Tick(cost) {
		cpu.pendingIRQ = true
	}
	if src, ok := cpu.RAM.Keyboard.(irqSource); ok && src.TakeIRQ() {
		cpu.pendingIRQ = true
	}

	cpu.CPI.Add(cost)
	cpu.ElapsedCycles += uint64(cost)
	cpu.ElapsedInstructions++

	return cost
}

// Execute runs Step in a loop until at least budgetCycles cycles have been
// spent, a breakpoint or exitpoint is reached, or an instruction raises an
// error. It returns the exact number of cycles consumed, which the driver
// uses to pace wall-clock sleep (see driver.go).
func (cpu *CPU) Execute(budgetCycles int) (int, error) {
	spent := 0
	for spent < budgetCycles {
		if cpu.Exitpoints[cpu.PC] {
			return spent, &ExitpointHit{PC: cpu.PC}
		}
		if cpu.Breakpoints[cpu.PC] {
			return spent, &BreakpointHit{PC: cpu.PC}
		}

		n, err := cpu.Step()
		spent += n
		if err != nil {
			return spent, err
		}
	}
	return spent, nil
}
