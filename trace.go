// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package main

import (
	"fmt"
	"io"
)

// Tracer writes a per-instruction execution trace. It is entirely
// optional: a nil *Tracer field on CPU disables all tracing overhead
// except the nil check itself.
type Tracer struct {
	out       io.Writer
	prevRegs  RegisterFile
	prevFlags Flags
}

// NewTracer creates a tracer writing to out.
func NewTracer(out io.Writer) *Tracer {
	return &Tracer{out: out}
}

func modeName(userMode bool) string {
	if userMode {
		return "user"
	}
	return "kernel"
}

// TracePreInstruction records state before execution and prints the
// decoded instruction about to run.
func (t *Tracer) TracePreInstruction(cpu *CPU, d Decoded, argument uint16) {
	t.prevRegs = cpu.Regs
	t.prevFlags = cpu.Flags

	fmt.Fprintf(t.out, "\n----------------------------------------\n")
	fmt.Fprintf(t.out, "cycle=%d inst=%d pc=0x%04X mode=%s\n",
		cpu.ElapsedCycles, cpu.ElapsedInstructions, cpu.PC, modeName(cpu.UserMode))
	fmt.Fprintf(t.out, "opcode=0x%04X argument=0x%04X  %s\n", d.Raw, argument, d.Mnemonic())
	fmt.Fprintf(t.out, "regs before:%s\n", cpu.Regs.String())
	fmt.Fprintf(t.out, "flags before: Z=%v C=%v V=%v S=%v\n",
		t.prevFlags.Z, t.prevFlags.C, t.prevFlags.V, t.prevFlags.S)
}

// TracePostInstruction records what changed during execution.
func (t *Tracer) TracePostInstruction(cpu *CPU, oldPC uint16, d Decoded) {
	if cpu.Regs != t.prevRegs {
		fmt.Fprintf(t.out, "regs after: %s\n", cpu.Regs.String())
	}
	if cpu.Flags != t.prevFlags {
		fmt.Fprintf(t.out, "flags after: Z=%v C=%v V=%v S=%v\n",
			cpu.Flags.Z, cpu.Flags.C, cpu.Flags.V, cpu.Flags.S)
	}
	if cpu.PC != oldPC+1 {
		fmt.Fprintf(t.out, "pc: 0x%04X -> 0x%04X\n", oldPC, cpu.PC)
	}
}

// TraceException records a fatal error raised during execution.
func (t *Tracer) TraceException(cpu *CPU, err error) {
	fmt.Fprintf(t.out, "\n*** EXCEPTION at pc=0x%04X cycle=%d: %v\n",
		cpu.PC, cpu.ElapsedCycles, err)
}

// TraceSPRRead and TraceSPRWrite are retained for peripheral mailbox
// accesses, which behave like the teacher's special-register reads in
// that they are side-effecting memory operations worth calling out
// separately from ordinary RAM traffic.
func (t *Tracer) TraceSPRRead(name string, addr uint16, value uint16) {
	fmt.Fprintf(t.out, "port read: %s (0x%04X) -> 0x%04X\n", name, addr, value)
}

func (t *Tracer) TraceSPRWrite(name string, addr uint16, value uint16) {
	fmt.Fprintf(t.out, "port write: %s (0x%04X) <- 0x%04X\n", name, addr, value)
}

// TraceDoubleFault records the fatal error that ended the run, followed by
// a dump of PC, mode, counters, and registers.
func (t *Tracer) TraceDoubleFault(cpu *CPU, err error) {
	fmt.Fprintf(t.out, "\n========================================\n")
	fmt.Fprintf(t.out, "*** FATAL: %v\n", err)
	fmt.Fprintf(t.out, "pc=0x%04X mode=%s cycle=%d instruction=%d\n",
		cpu.PC, modeName(cpu.UserMode), cpu.ElapsedCycles, cpu.ElapsedInstructions)
	fmt.Fprintf(t.out, "regs:%s\n", cpu.Regs.String())
	fmt.Fprintf(t.out, "========================================\n")
}
