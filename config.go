package main

import "time"

// Config is the immutable set of values fixed for the lifetime of one
// emulator run, parsed once from the command line in main.go. Replacing
// the original's Globals.h namespace with a struct keeps every dependency
// explicit in constructor signatures instead of reaching for package-level
// state, per the redesign note in spec §9.
type Config struct {
	ROMPath    string
	ClockHz    int64
	Strict     bool // peripheral protocol strictness (RAM.Strict)
	StrictTiming bool // AllowEarlyInterrupts: ignore the OS-critical-section gate
	OSCriticalInstrCount uint16
	Breakpoints []uint16
	Exitpoints  []uint16
	TracePath   string
	DiskPath    string
	KeyboardCanInterrupt bool
	SingleStep  bool
}

// RuntimeState is the mutable state a running emulator session carries
// beyond the CPU's own architectural registers: things the terminal
// adapter's function keys flip and the driver loop reads, guarded by the
// driver's update mutex rather than scattered package globals.
type RuntimeState struct {
	Paused    bool
	StepOnce  bool
	StartedAt time.Time
}
