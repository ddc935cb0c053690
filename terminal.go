package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"
)

// Key codes the terminal adapter maps non-printable input to, handed to
// the keyboard mailbox as the 7-bit payload. Grounded on Terminal.cpp's
// update_input() table; regular printable bytes and \n/\r pass through
// unchanged and are not listed here.
const (
	KeyBackspace  = 0x08
	KeyPageUp     = 0x0B
	KeyPageDown   = 0x0C
	KeyHome       = 0x0D
	KeyInsert     = 0x0E
	KeyEnd        = 0x1B
	KeyLeft       = 0x1C
	KeyRight      = 0x1D
	KeyDown       = 0x1E
	KeyUp         = 0x1F
	KeyDelete     = 0x7F
	KeyF1         = 0x0F
	KeyF2         = 0x10
	KeyF3         = 0x11
	KeyF4         = 0x12
	KeyF8         = 0x16
	KeyF9         = 0x17
	KeyF10        = 0x18
	KeyF11        = 0x19
	KeyF12        = 0x1A
)

// Function-key control signals. F5/F6/F7 never reach the keyboard
// mailbox: the terminal adapter intercepts them for pause/single-step/
// reset-counters, mirroring Terminal.cpp's own handling of those three.
type ControlKey int

const (
	ControlNone ControlKey = iota
	ControlPauseToggle
	ControlSingleStep
	ControlResetCounters
)

// Terminal owns the raw-mode console: it decodes ANSI escape sequences
// from stdin into CESC16 key codes or control signals. It does not draw
// the display or the status panel; RenderStatus only builds the panel text.
type Terminal struct {
	in       *os.File
	out      *os.File
	oldState *term.State
	reader   *bufio.Reader
}

// NewTerminal wraps stdin/stdout without yet entering raw mode.
func NewTerminal(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out, reader: bufio.NewReader(in)}
}

// EnterRawMode puts the terminal into character-at-a-time, no-echo mode,
// matching the emulator's need to see every keystroke including control
// characters and arrow keys.
func (t *Terminal) EnterRawMode() error {
	st, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return &HostIOError{Message: fmt.Sprintf("cannot set raw terminal mode: %v", err)}
	}
	t.oldState = st
	return nil
}

// Restore returns the terminal to its original mode. Safe to call even if
// EnterRawMode was never called or already undone.
func (t *Terminal) Restore() {
	if t.oldState != nil {
		term.Restore(int(t.in.Fd()), t.oldState)
		t.oldState = nil
	}
}

// ReadKey blocks for one key event, returning either a byte destined for
// the keyboard mailbox, a control signal, or both zero when the input
// stream closed.
func (t *Terminal) ReadKey() (code byte, ctrl ControlKey, err error) {
	b, err := t.reader.ReadByte()
	if err != nil {
		return 0, ControlNone, err
	}

	if b != 0x1B {
		return b, ControlNone, nil
	}

	// Escape sequence: CSI (ESC [ ...) or SS3 (ESC O ...).
	b2, err := t.reader.ReadByte()
	if err != nil {
		return KeyEnd, ControlNone, nil // a lone ESC maps to KeyEnd per the table
	}
	if b2 != '[' && b2 != 'O' {
		return KeyEnd, ControlNone, nil
	}

	var seq strings.Builder
	for {
		b3, err := t.reader.ReadByte()
		if err != nil {
			break
		}
		seq.WriteByte(b3)
		if (b3 >= 'A' && b3 <= 'Z') || (b3 >= 'a' && b3 <= 'z') {
			break
		}
	}

	return decodeEscapeSequence(seq.String())
}

func decodeEscapeSequence(seq string) (byte, ControlKey, error) {
	switch seq {
	case "A":
		return KeyUp, ControlNone, nil
	case "B":
		return KeyDown, ControlNone, nil
	case "C":
		return KeyRight, ControlNone, nil
	case "D":
		return KeyLeft, ControlNone, nil
	case "H":
		return KeyHome, ControlNone, nil
	case "F":
		return KeyEnd, ControlNone, nil
	case "2~":
		return KeyInsert, ControlNone, nil
	case "3~":
		return KeyDelete, ControlNone, nil
	case "5~":
		return KeyPageUp, ControlNone, nil
	case "6~":
		return KeyPageDown, ControlNone, nil
	case "P":
		return KeyF1, ControlNone, nil
	case "Q":
		return KeyF2, ControlNone, nil
	case "R":
		return KeyF3, ControlNone, nil
	case "S":
		return KeyF4, ControlNone, nil
	case "15~":
		return 0, ControlPauseToggle, nil // F5
	case "17~":
		return 0, ControlSingleStep, nil // F6
	case "18~":
		return 0, ControlResetCounters, nil // F7
	case "19~":
		return KeyF8, ControlNone, nil
	case "20~":
		return KeyF9, ControlNone, nil
	case "21~":
		return KeyF10, ControlNone, nil
	case "23~":
		return KeyF11, ControlNone, nil
	case "24~":
		return KeyF12, ControlNone, nil
	}
	return 0, ControlNone, nil
}

// RenderStatus produces the status/perf panel text shown alongside the
// emulated screen: mode, PC, flags, registers, and the CPI moving average.
// Kept as a pure function of a CPU snapshot so it is trivially testable
// without a live terminal.
func RenderStatus(cpu *CPU, rs *RuntimeState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode=%-6s pc=0x%04X  ", modeName(cpu.UserMode), cpu.PC)
	fmt.Fprintf(&b, "flags[Z=%v C=%v V=%v S=%v]  ",
		cpu.Flags.Z, cpu.Flags.C, cpu.Flags.V, cpu.Flags.S)
	fmt.Fprintf(&b, "cycles=%d instructions=%d cpi=%.2f", cpu.ElapsedCycles, cpu.ElapsedInstructions, cpu.CPI.Mean())
	if rs.Paused {
		fmt.Fprint(&b, "  [PAUSED]")
	}
	fmt.Fprintf(&b, "\nregs:%s\n", cpu.Regs.String())
	fmt.Fprintf(&b, "uptime=%s\n", time.Since(rs.StartedAt).Round(time.Second))
	return b.String()
}
