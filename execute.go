package main

// effect is the explicit result of a per-class instruction handler: how
// many cycles it consumed, and whether it already committed a new PC
// itself (jump/call/ret family) — in which case the engine must not apply
// the normal PC-increment-by-one. This replaces the source's mutable
// "increment_pc" flag with a value every handler returns, per the
// redesign note in spec §9: the engine commits PC exactly once, in one
// place, from the effect each handler reports.
type effect struct {
	cycles int
	jumped bool
}

// execute dispatches a fetched (opcode, argument) pair to the right
// per-class handler and returns the effect it produced.
func (cpu *CPU) execute(d Decoded, argument uint16) (effect, error) {
	switch d.Class {
	case ClassALURegOrShift:
		if bit(d.Raw, 12) {
			return cpu.execShift(d.Raw, argument)
		}
		return cpu.execALUReg(d.Raw, argument)
	case ClassShift1:
		return cpu.execShift(d.Raw, argument)
	case ClassALUMemOp:
		return cpu.execALUMemOp(d.Raw, argument)
	case ClassALUMemDest:
		return cpu.execALUMemDest(d.Raw, argument)
	case ClassALUMemDestImm:
		return cpu.execALUMemDestImm(d.Raw, argument)
	case ClassMemOp:
		return cpu.execMemOp(d.Raw, argument)
	case ClassJump:
		return cpu.execJump(d.Raw, argument)
	case ClassCall:
		return cpu.execCall(d.Raw, argument)
	}
	// Unreachable: Class is 3 bits, every value above is handled.
	return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: d.Raw, Argument: argument}
}

// mergeArithFlags applies flags from an ALU op, preserving the carry flag
// when funct is a logical op (and/or/xor never define C).
func (cpu *CPU) mergeArithFlags(funct uint8, f Flags) {
	if !isArithmeticFunct(funct) {
		f.C = cpu.Flags.C
	}
	cpu.Flags = f
}

// §4.5.1 ALU with register operands.
func (cpu *CPU) execALUReg(opcode uint16, argument uint16) (effect, error) {
	imm := bit(opcode, 11)
	funct := uint8(bitfield(opcode, 10, 8))
	rD := uint8(bitfield(opcode, 7, 4))
	rA := uint8(bitfield(opcode, 3, 0))
	isMov := funct == FunctMov

	a, err := cpu.Regs.Read(rA)
	if err != nil {
		return effect{}, err
	}

	var result uint16
	var flags Flags
	if imm {
		result, flags = aluResult(funct, a, argument, cpu.Flags.C)
	} else {
		rB := uint8(bitfield(argument, 3, 0))
		if isMov {
			rB = rA
		}
		b, err := cpu.Regs.Read(rB)
		if err != nil {
			return effect{}, err
		}
		result, flags = aluResult(funct, a, b, cpu.Flags.C)
	}

	if err := cpu.Regs.Write(rD, result); err != nil {
		return effect{}, err
	}
	if !isMov {
		cpu.mergeArithFlags(funct, flags)
	}

	cost := 3
	if isMov {
		cost = 2
	}
	return effect{cycles: cost}, nil
}

// §4.5.2 ALU with memory operand.
func (cpu *CPU) execALUMemOp(opcode uint16, argument uint16) (effect, error) {
	addrMode := uint8(bitfield(opcode, 12, 11))
	funct := uint8(bitfield(opcode, 10, 8))
	rD := uint8(bitfield(opcode, 7, 4))
	rA := uint8(bitfield(opcode, 3, 0))

	a, err := cpu.Regs.Read(rA)
	if err != nil {
		return effect{}, err
	}

	cost := 4
	var operand uint16
	var dest uint16 // current value of rD, needed for indexed modes

	switch addrMode {
	case 0b00: // direct
		operand, err = cpu.RAM.Read(argument)
	case 0b01: // indirect
		rB := uint8(bitfield(argument, 3, 0))
		var rbv uint16
		rbv, err = cpu.Regs.Read(rB)
		if err == nil {
			operand, err = cpu.RAM.Read(rbv)
		}
	case 0b10: // indexed, immediate offset
		dest, err = cpu.Regs.Read(rD)
		if err == nil {
			operand, err = cpu.RAM.Read(a + argument)
		}
		cost = 5
	case 0b11: // indexed, register offset
		rB := uint8(bitfield(argument, 3, 0))
		dest, err = cpu.Regs.Read(rD)
		if err == nil {
			var rbv uint16
			rbv, err = cpu.Regs.Read(rB)
			if err == nil {
				operand, err = cpu.RAM.Read(a + rbv)
			}
		}
		cost = 5
	}
	if err != nil {
		return effect{}, err
	}

	var result uint16
	var flags Flags
	if addrMode == 0b10 || addrMode == 0b11 {
		result, flags = aluResult(funct, dest, operand, cpu.Flags.C)
	} else {
		result, flags = aluResult(funct, a, operand, cpu.Flags.C)
	}

	if err := cpu.Regs.Write(rD, result); err != nil {
		return effect{}, err
	}
	if funct != FunctMov {
		cpu.mergeArithFlags(funct, flags)
	} else {
		cost = 3
	}

	return effect{cycles: cost}, nil
}

// §4.5.3 ALU with memory destination (source: register).
func (cpu *CPU) execALUMemDest(opcode uint16, argument uint16) (effect, error) {
	addrMode := uint8(bitfield(opcode, 12, 11))
	funct := uint8(bitfield(opcode, 10, 8))
	rA := uint8(bitfield(opcode, 3, 0))

	a, err := cpu.Regs.Read(rA)
	if err != nil {
		return effect{}, err
	}

	cost := 4
	var addr uint16
	var rB uint8

	switch addrMode {
	case 0b00: // direct: address is the argument, source is rA itself
		addr = argument
		rB = rA
	case 0b01: // indirect: address is rA's value, source is the argument's register field
		addr = a
		rB = uint8(bitfield(argument, 3, 0))
	case 0b10: // indexed, immediate offset
		rB = uint8(bitfield(opcode, 7, 4))
		addr = a + argument
		cost = 5
	case 0b11: // indexed, register offset
		rB = uint8(bitfield(opcode, 7, 4))
		rC := uint8(bitfield(argument, 3, 0))
		cv, err := cpu.Regs.Read(rC)
		if err != nil {
			return effect{}, err
		}
		addr = a + cv
		cost = 5
	}

	b, err := cpu.Regs.Read(rB)
	if err != nil {
		return effect{}, err
	}
	cur, err := cpu.RAM.Read(addr)
	if err != nil {
		return effect{}, err
	}
	result, flags := aluResult(funct, cur, b, cpu.Flags.C)
	if err := cpu.RAM.Write(addr, result); err != nil {
		return effect{}, err
	}
	if funct != FunctMov {
		cpu.mergeArithFlags(funct, flags)
	} else {
		cost--
	}

	return effect{cycles: cost}, nil
}

// §4.5.4 ALU with memory destination, 4-bit immediate source.
func (cpu *CPU) execALUMemDestImm(opcode uint16, argument uint16) (effect, error) {
	addrMode := uint8(bitfield(opcode, 12, 11))
	funct := uint8(bitfield(opcode, 10, 8))
	imm4 := uint16(bitfield(opcode, 7, 4))
	rA := uint8(bitfield(opcode, 3, 0))

	a, err := cpu.Regs.Read(rA)
	if err != nil {
		return effect{}, err
	}

	var addr uint16
	var src uint16
	cost := 4

	switch addrMode {
	case 0b00: // direct addressing is implemented as indexed: costs 5
		addr = argument
		src = imm4
		cost = 5
	case 0b01: // indirect; the argument carries the full 16-bit immediate
		addr = a
		src = argument
	case 0b10:
		addr = a + argument
		src = imm4
		cost = 5
	case 0b11:
		rC := uint8(bitfield(argument, 3, 0))
		cv, err := cpu.Regs.Read(rC)
		if err != nil {
			return effect{}, err
		}
		addr = a + cv
		src = imm4
		cost = 5
	}

	cur, err := cpu.RAM.Read(addr)
	if err != nil {
		return effect{}, err
	}
	result, flags := aluResult(funct, cur, src, cpu.Flags.C)
	if err := cpu.RAM.Write(addr, result); err != nil {
		return effect{}, err
	}
	if funct != FunctMov {
		cpu.mergeArithFlags(funct, flags)
	} else {
		cost--
	}

	return effect{cycles: cost}, nil
}

// §4.3 shift unit, dispatched from classes 000 (bit12=1) and 001.
func (cpu *CPU) execShift(opcode uint16, argument uint16) (effect, error) {
	op := uint8(bitfield(opcode, 13, 12))
	shamt := uint8(bitfield(opcode, 11, 8))
	rD := uint8(bitfield(opcode, 7, 4))
	rA := uint8(bitfield(opcode, 3, 0))

	if op == 0b00 {
		return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
	}

	a, err := cpu.Regs.Read(rA)
	if err != nil {
		return effect{}, err
	}
	result, flags := shiftResult(op, shamt, a, cpu.Flags)
	if err := cpu.Regs.Write(rD, result); err != nil {
		return effect{}, err
	}
	cpu.Flags = flags

	return effect{cycles: int(shamt) + 1}, nil
}

// §4.5.5 memory operations.
func (cpu *CPU) execMemOp(opcode uint16, argument uint16) (effect, error) {
	rD := uint8(bitfield(opcode, 7, 4))
	rA := uint8(bitfield(opcode, 3, 0))
	sub := uint8(bitfield(opcode, 12, 8))

	requireSP := func() error {
		if rA != RegSP {
			return &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
		}
		return nil
	}

	switch sub {
	case MemOpMovb:
		return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}

	case MemOpSwap:
		a, err := cpu.Regs.Read(rA)
		if err != nil {
			return effect{}, err
		}
		addr := a + argument
		d, err := cpu.Regs.Read(rD)
		if err != nil {
			return effect{}, err
		}
		cur, err := cpu.RAM.Read(addr)
		if err != nil {
			return effect{}, err
		}
		if err := cpu.Regs.Write(rD, cur); err != nil {
			return effect{}, err
		}
		if err := cpu.RAM.Write(addr, d); err != nil {
			return effect{}, err
		}
		return effect{cycles: 5}, nil

	case MemOpPeekLow:
		a, err := cpu.Regs.Read(rA)
		if err != nil {
			return effect{}, err
		}
		if err := cpu.Regs.Write(rD, cpu.ROM.Low[a+argument]); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPeekHigh:
		a, err := cpu.Regs.Read(rA)
		if err != nil {
			return effect{}, err
		}
		if err := cpu.Regs.Write(rD, cpu.ROM.High[a+argument]); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPushReg:
		if err := requireSP(); err != nil {
			return effect{}, err
		}
		rB := uint8(bitfield(argument, 3, 0))
		v, err := cpu.Regs.Read(rB)
		if err != nil {
			return effect{}, err
		}
		if err := cpu.push(v); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPushImm:
		if err := requireSP(); err != nil {
			return effect{}, err
		}
		if err := cpu.push(argument); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPushf:
		if err := requireSP(); err != nil {
			return effect{}, err
		}
		if err := cpu.push(uint16(cpu.Flags.Byte())); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPop:
		if err := requireSP(); err != nil {
			return effect{}, err
		}
		v, err := cpu.pop()
		if err != nil {
			return effect{}, err
		}
		if err := cpu.Regs.Write(rD, v); err != nil {
			return effect{}, err
		}
		return effect{cycles: 3}, nil

	case MemOpPopf:
		if err := requireSP(); err != nil {
			return effect{}, err
		}
		v, err := cpu.pop()
		if err != nil {
			return effect{}, err
		}
		if v&0xFFF0 != 0 {
			return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
		}
		cpu.Flags = FlagsFromByte(uint8(v))
		return effect{cycles: 3}, nil
	}

	return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
}

// §4.5.6 jumps.
func (cpu *CPU) execJump(opcode uint16, argument uint16) (effect, error) {
	cond := uint8(bitfield(opcode, 11, 8))
	if cond == 0b1111 {
		return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
	}
	if !isConditionMet(cond, cpu.Flags) {
		return effect{cycles: 2}, nil
	}

	var target uint16
	if !bit(opcode, 12) {
		rA := uint8(bitfield(opcode, 3, 0))
		v, err := cpu.Regs.Read(rA)
		if err != nil {
			return effect{}, err
		}
		target = v
	} else {
		target = argument
	}
	cpu.PC = target
	return effect{cycles: 2, jumped: true}, nil
}

// §4.5.7 call/syscall/enter/ret/sysret/exit family.
func (cpu *CPU) execCall(opcode uint16, argument uint16) (effect, error) {
	sub := uint8(bitfield(opcode, 12, 9))
	retOrExit := sub == CallOpRetGroup || sub == CallOpExitGroup

	rA := uint8(bitfield(opcode, 3, 0))
	bit8 := bit(opcode, 8)

	target := argument
	if !bit8 {
		rB := uint8(bitfield(argument, 3, 0))
		v, err := cpu.Regs.Read(rB)
		if err != nil {
			return effect{}, err
		}
		target = v
	}

	if !retOrExit && rA != RegSP {
		return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
	}

	switch sub {
	case CallOpCall:
		if err := cpu.push(cpu.PC + 1); err != nil {
			return effect{}, err
		}
		cpu.PC = target
		return effect{cycles: 4, jumped: true}, nil

	case CallOpSyscall:
		if err := cpu.push(cpu.PC + 1); err != nil {
			return effect{}, err
		}
		cpu.PC = target
		cpu.UserMode = false
		return effect{cycles: 4, jumped: true}, nil

	case CallOpEnter:
		if err := cpu.push(cpu.PC + 1); err != nil {
			return effect{}, err
		}
		cpu.PC = target
		cpu.UserMode = true
		return effect{cycles: 4, jumped: true}, nil

	case CallOpRetGroup:
		v, err := cpu.pop()
		if err != nil {
			return effect{}, err
		}
		cpu.PC = v
		if bit8 { // sysret
			cpu.UserMode = true
		}
		return effect{cycles: 3, jumped: true}, nil

	case CallOpExitGroup:
		if bit8 {
			return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
		}
		v, err := cpu.pop()
		if err != nil {
			return effect{}, err
		}
		cpu.PC = v
		cpu.UserMode = false
		return effect{cycles: 3, jumped: true}, nil
	}

	return effect{}, &IllegalOpcodeError{PC: cpu.PC, Opcode: opcode, Argument: argument}
}
