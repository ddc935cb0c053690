package main

import "testing"

func writeDisplay(d *Display, cmd uint8, data uint8) error {
	return d.WritePort(uint16(cmd)|uint16(data)<<8, false)
}

func TestDisplayPutCharAdvancesColumn(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, 'H', 0)
	writeDisplay(d, 'i', 0)
	cells := d.Snapshot()
	if cells[0][0].Char != 'H' || cells[0][1].Char != 'i' {
		t.Fatalf("got %q%q, want Hi", cells[0][0].Char, cells[0][1].Char)
	}
	_, col, _ := d.Cursor()
	if col != 2 {
		t.Fatalf("col = %d, want 2", col)
	}
}

func TestDisplayLineFeedMovesToNextRow(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, 0x0A, 0)
	row, col, _ := d.Cursor()
	if row != 1 || col != 0 {
		t.Fatalf("row=%d col=%d, want 1,0", row, col)
	}
}

func TestDisplayScrollsAtBottomRow(t *testing.T) {
	d := NewDisplay()
	for i := 0; i < DisplayRows; i++ {
		writeDisplay(d, 0x0A, 0)
	}
	row, _, _ := d.Cursor()
	if row != DisplayRows-1 {
		t.Fatalf("row after overflow = %d, want %d", row, DisplayRows-1)
	}
}

func TestDisplayCarriageReturnResetsColumn(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, 'x', 0)
	writeDisplay(d, 0x0D, 0)
	_, col, _ := d.Cursor()
	if col != 0 {
		t.Fatalf("col after CR = %d, want 0", col)
	}
}

func TestDisplayCursorCommands(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, dispCmdCursorRow, 5)
	writeDisplay(d, dispCmdCursorCol, 10)
	row, col, _ := d.Cursor()
	if row != 5 || col != 10 {
		t.Fatalf("row=%d col=%d, want 5,10", row, col)
	}
}

func TestDisplaySaveAndRestoreCursor(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, dispCmdCursorRow, 3)
	writeDisplay(d, dispCmdCursorCol, 4)
	writeDisplay(d, dispCmdSaveCursor, 0)
	writeDisplay(d, dispCmdCursorRow, 9)
	writeDisplay(d, dispCmdCursorCol, 9)
	writeDisplay(d, dispCmdRestoreCursor, 0)
	row, col, _ := d.Cursor()
	if row != 3 || col != 4 {
		t.Fatalf("row=%d col=%d, want 3,4", row, col)
	}
}

func TestDisplayBlinkToggle(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, dispCmdBlinkToggle, 0)
	if _, _, blink := d.Cursor(); !blink {
		t.Fatal("expected blink on after one toggle")
	}
	writeDisplay(d, dispCmdBlinkToggle, 0)
	if _, _, blink := d.Cursor(); blink {
		t.Fatal("expected blink off after second toggle")
	}
}

func TestDisplayClearScreen(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, 'x', 0)
	writeDisplay(d, dispCmdClearScreen, 0)
	cells := d.Snapshot()
	if cells[0][0].Char != 0 {
		t.Fatal("expected cell cleared after clear-screen command")
	}
}

func TestDisplayColorReduction(t *testing.T) {
	if got := reduceColor(0b111111); got != 0b111 {
		t.Fatalf("reduceColor(all-high) = %03b, want 111", got)
	}
	if got := reduceColor(0); got != 0 {
		t.Fatalf("reduceColor(0) = %03b, want 0", got)
	}
}

func TestDisplayResetClearsEverything(t *testing.T) {
	d := NewDisplay()
	writeDisplay(d, 'x', 0)
	writeDisplay(d, dispCmdBlinkToggle, 0)
	writeDisplay(d, dispCmdReset, 0)
	cells := d.Snapshot()
	if cells[0][0].Char != 0 {
		t.Fatal("expected cells cleared after reset")
	}
	if _, _, blink := d.Cursor(); blink {
		t.Fatal("expected blink cleared after reset")
	}
}

func TestDisplayStrictRejectsUnknownCommand(t *testing.T) {
	d := NewDisplay()
	if err := d.WritePort(0x0001, true); err == nil {
		t.Fatal("expected protocol error for an unrecognized low-byte value in strict mode")
	}
}
