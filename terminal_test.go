package main

import (
	"strings"
	"testing"
	"time"
)

func TestDecodeEscapeSequenceArrows(t *testing.T) {
	cases := []struct {
		seq  string
		want byte
	}{
		{"A", KeyUp},
		{"B", KeyDown},
		{"C", KeyRight},
		{"D", KeyLeft},
		{"H", KeyHome},
		{"F", KeyEnd},
		{"3~", KeyDelete},
		{"P", KeyF1},
	}
	for _, c := range cases {
		t.Run(c.seq, func(t *testing.T) {
			code, ctrl, err := decodeEscapeSequence(c.seq)
			if err != nil {
				t.Fatal(err)
			}
			if ctrl != ControlNone {
				t.Fatalf("unexpected control signal %v", ctrl)
			}
			if code != c.want {
				t.Fatalf("code = 0x%02X, want 0x%02X", code, c.want)
			}
		})
	}
}

func TestDecodeEscapeSequenceFunctionControlKeys(t *testing.T) {
	cases := []struct {
		seq  string
		want ControlKey
	}{
		{"15~", ControlPauseToggle},
		{"17~", ControlSingleStep},
		{"18~", ControlResetCounters},
	}
	for _, c := range cases {
		t.Run(c.seq, func(t *testing.T) {
			_, ctrl, err := decodeEscapeSequence(c.seq)
			if err != nil {
				t.Fatal(err)
			}
			if ctrl != c.want {
				t.Fatalf("ctrl = %v, want %v", ctrl, c.want)
			}
		})
	}
}

func TestDecodeEscapeSequenceUnknownIsIgnored(t *testing.T) {
	code, ctrl, err := decodeEscapeSequence("99~")
	if err != nil || code != 0 || ctrl != ControlNone {
		t.Fatalf("unknown sequence should decode to zero values, got code=%v ctrl=%v err=%v", code, ctrl, err)
	}
}

func TestRenderStatusContainsKeyFields(t *testing.T) {
	cpu := NewCPU(&RAM{}, NewTimer())
	cpu.Reset()
	cpu.PC = 0x0042
	cpu.Flags.Z = true
	rs := &RuntimeState{StartedAt: time.Now()}

	out := RenderStatus(cpu, rs)
	if !strings.Contains(out, "pc=0x0042") {
		t.Fatalf("status missing PC: %q", out)
	}
	if !strings.Contains(out, "Z=true") {
		t.Fatalf("status missing Z flag: %q", out)
	}
	if strings.Contains(out, "[PAUSED]") {
		t.Fatal("unpaused status must not report [PAUSED]")
	}
}

func TestRenderStatusReportsPaused(t *testing.T) {
	cpu := NewCPU(&RAM{}, NewTimer())
	cpu.Reset()
	rs := &RuntimeState{Paused: true, StartedAt: time.Now()}

	out := RenderStatus(cpu, rs)
	if !strings.Contains(out, "[PAUSED]") {
		t.Fatalf("paused status must report [PAUSED]: %q", out)
	}
}
