package main

// CPU privilege modes. The opcode/argument fetch source and the interrupt
// vector both depend on which mode the CPU is currently in.
const (
	ModeKernel = 0 // fetching from ROM
	ModeUser   = 1 // fetching from RAM
)

// Flags byte layout (bits 4-7 are always 0).
const (
	FlagZ uint8 = 1 << 0 // Zero
	FlagC uint8 = 1 << 1 // Carry
	FlagV uint8 = 1 << 2 // Overflow
	FlagS uint8 = 1 << 3 // Sign
)

// ALU funct codes (bits 10:8 of ALU-class opcodes).
const (
	FunctMov   uint8 = 0b000
	FunctAnd   uint8 = 0b001
	FunctOr    uint8 = 0b010
	FunctXor   uint8 = 0b011
	FunctAdd   uint8 = 0b100
	FunctSub   uint8 = 0b101
	FunctAddc  uint8 = 0b110
	FunctSubb  uint8 = 0b111
)

// Top-level opcode classes, dispatched on opcode bits 15:13.
const (
	ClassALURegOrShift uint8 = 0b000 // ALU-reg if bit12==0, else shift
	ClassShift1        uint8 = 0b001 // shift
	ClassALUMemOp      uint8 = 0b010
	ClassALUMemDest     uint8 = 0b011
	ClassALUMemDestImm uint8 = 0b100
	ClassMemOp         uint8 = 0b101
	ClassJump          uint8 = 0b110
	ClassCall          uint8 = 0b111
)

// Memory-op sub-opcodes (opcode bits 12:8, class 101).
const (
	MemOpMovb     uint8 = 0b00000 // reserved/deprecated -> IllegalOpcode
	MemOpSwap     uint8 = 0b00001
	MemOpPeekLow  uint8 = 0b00010
	MemOpPeekHigh uint8 = 0b00011
	MemOpPushReg  uint8 = 0b00100
	MemOpPushImm  uint8 = 0b00101
	MemOpPushf    uint8 = 0b00110
	MemOpPop      uint8 = 0b00111
	MemOpPopf     uint8 = 0b01000
)

// Call-family sub-opcodes (opcode bits 12:9, class 111).
const (
	CallOpCall     uint8 = 0b0000
	CallOpSyscall  uint8 = 0b0001
	CallOpEnter    uint8 = 0b0010
	CallOpRetGroup uint8 = 0b0011 // ret (bit8=0) / sysret (bit8=1)
	CallOpExitGroup uint8 = 0b0100 // exit (bit8=0) / illegal (bit8=1)
)

// Jump condition codes (opcode bits 11:8, class 110).
const (
	CondJMP uint8 = 0b0000
	CondJZ  uint8 = 0b0001 // Z
	CondJNZ uint8 = 0b0010 // !Z
	CondJC  uint8 = 0b0011 // C
	CondJNC uint8 = 0b0100 // !C
	CondJO  uint8 = 0b0101 // V
	CondJNO uint8 = 0b0110 // !V
	CondJS  uint8 = 0b0111 // S
	CondJNS uint8 = 0b1000 // !S
	CondJBE uint8 = 0b1001 // C || Z
	CondJA  uint8 = 0b1010 // !(C || Z)
	CondJL  uint8 = 0b1011 // V != S
	CondJLE uint8 = 0b1100 // (V != S) || Z
	CondJG  uint8 = 0b1101 // (V == S) && !Z
	CondJGE uint8 = 0b1110 // V == S
	// 0b1111 is reserved -> IllegalOpcode
)

// ABI register indices, per GLOSSARY.
const (
	RegZero = 0
	RegSP   = 1
	RegBP   = 2
	RegS0   = 3
	RegS1   = 4
	RegS2   = 5
	RegS3   = 6
	RegS4   = 7
	RegT0   = 8
	RegT1   = 9
	RegT2   = 10
	RegT3   = 11
	RegA0   = 12
	RegA1   = 13
	RegA2   = 14
	RegA3   = 15
)

// ABINames maps register index to its ABI name, used by tracing and the
// status panel.
var ABINames = [16]string{
	"zero", "sp", "bp", "s0", "s1", "s2", "s3", "s4",
	"t0", "t1", "t2", "t3", "a0", "a1", "a2", "a3",
}

// MMIO port addresses, fixed by the architecture.
const (
	PortKeyboard uint16 = 0xFF00
	PortDisplay  uint16 = 0xFF40
	PortTimer    uint16 = 0xFF80
	PortDisk     uint16 = 0xFFC0
)

// Interrupt vectors.
const (
	VectorIRQFromUser   uint16 = 0x0011
	VectorIRQFromKernel uint16 = 0x0013
)

// BusyBit is the CPU-visible bit that indicates a peripheral's input
// register has an unconsumed command pending.
const BusyBit uint16 = 0x0200

// CPI moving-average window size.
const CPIWindowSize = 500

// MSB is the sign bit of a 16-bit word, used throughout flag computation.
const MSB uint16 = 0x8000
