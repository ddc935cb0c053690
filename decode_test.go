package main

import "testing"

func TestBitfield(t *testing.T) {
	word := uint16(0b1010_1100_0011_0101)
	if got := bitfield(word, 15, 13); got != 0b101 {
		t.Fatalf("bitfield(15,13) = %03b, want 101", got)
	}
	if got := bitfield(word, 3, 0); got != 0b0101 {
		t.Fatalf("bitfield(3,0) = %04b, want 0101", got)
	}
}

func TestBit(t *testing.T) {
	word := uint16(0b0000_0001_0000_0000)
	if !bit(word, 8) {
		t.Fatal("expected bit 8 set")
	}
	if bit(word, 7) {
		t.Fatal("expected bit 7 clear")
	}
}

func TestDecodeClass(t *testing.T) {
	cases := []struct {
		opcode uint16
		class  uint8
	}{
		{0x0000, ClassALURegOrShift},
		{0x4000, ClassALUMemOp},
		{0x6000, ClassALUMemDest},
		{0x8000, ClassALUMemDestImm},
		{0xA000, ClassMemOp},
		{0xC000, ClassJump},
		{0xE000, ClassCall},
	}
	for _, c := range cases {
		if got := decode(c.opcode).Class; got != c.class {
			t.Errorf("decode(0x%04X).Class = %03b, want %03b", c.opcode, got, c.class)
		}
	}
}

func TestMnemonicDoesNotPanic(t *testing.T) {
	for class := uint16(0); class < 8; class++ {
		d := decode(class << 13)
		if d.Mnemonic() == "" {
			t.Errorf("empty mnemonic for class %03b", class)
		}
	}
}
