package main

import "fmt"

// The core recognizes no recoverable error class: every error returned by
// the engine is fatal and is reported by the driver's single exit path
// (see driver.go), which tears down the terminal before printing the
// diagnostic and terminating the process.

// IllegalOpcodeError is raised when an opcode or sub-encoding maps to no
// defined instruction.
type IllegalOpcodeError struct {
	PC       uint16
	Opcode   uint16
	Argument uint16
}

func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode at PC=0x%04X: opcode=0x%04X argument=0x%04X", e.PC, e.Opcode, e.Argument)
}

// InvalidMemoryAccessError is raised when an address falls inside the MMIO
// window (0xFF00..0xFFFF) but does not land on one of the four port
// addresses.
type InvalidMemoryAccessError struct {
	Address uint16
}

func (e *InvalidMemoryAccessError) Error() string {
	return fmt.Sprintf("invalid memory access at address 0x%04X", e.Address)
}

// InvalidRegisterAccessError is raised when a register index falls outside
// 0..15. The decoder only ever produces 4-bit fields, so this is purely
// defensive: it can only fire if a handler is given a malformed index.
type InvalidRegisterAccessError struct {
	Index uint8
}

func (e *InvalidRegisterAccessError) Error() string {
	return fmt.Sprintf("invalid register index %d", e.Index)
}

// StackOverflowError is raised when SP wraps past 0x0000 or 0xFFFF during
// push/pop.
type StackOverflowError struct {
	SP uint16
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack overflow: SP wrapped to 0x%04X", e.SP)
}

// PCOverflowError is raised when PC advances from 0xFFFF to 0x0000.
type PCOverflowError struct{}

func (e *PCOverflowError) Error() string {
	return "PC overflowed past 0xFFFF"
}

// PeripheralProtocolError is raised by a peripheral mailbox when it
// receives a malformed command: an ACK when none is expected, a payload
// wider than the device's width in non-strict mode, a busy-register
// overwrite in non-strict mode, or a disk byte-stream protocol violation.
type PeripheralProtocolError struct {
	Device  string
	Message string
}

func (e *PeripheralProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Device, e.Message)
}

// HostIOError is raised for failures talking to the host: the ROM file
// could not be opened or parsed, or the terminal could not be put into raw
// mode. Always raised before (or outside of) the main execution loop.
type HostIOError struct {
	Message string
}

func (e *HostIOError) Error() string {
	return e.Message
}

// RealtimeOverrunError is raised by the driver loop when an instruction
// slice takes longer than its wall-clock budget allows.
type RealtimeOverrunError struct {
	TargetHz int64
}

func (e *RealtimeOverrunError) Error() string {
	return fmt.Sprintf("target clock frequency %d Hz too high for real-time emulation", e.TargetHz)
}
