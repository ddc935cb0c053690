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
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const version = "1.0.0"

// hexAddrList is a repeatable flag.Value collecting 16-bit hex addresses,
// used for -bp and -ep. Each -bp/-ep on the command line appends one
// address rather than replacing the list, the same pattern the teacher's
// flag.Usage-based CLI uses for its own repeatable options.
type hexAddrList []uint16

func (l *hexAddrList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = fmt.Sprintf("0x%04X", v)
	}
	return strings.Join(parts, ",")
}

func (l *hexAddrList) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %v", s, err)
	}
	*l = append(*l, uint16(v))
	return nil
}

var (
	clockHz       = flag.Int64("f", 1_000_000, "Emulated clock frequency in Hz")
	strictFlag    = flag.Bool("strict", false, "Fail fast on peripheral protocol violations instead of tolerating them")
	strictTiming  = flag.Bool("strict-timing", false, "Allow the timer to interrupt before the OS-critical-section instruction count is reached")
	osCritical    = flag.Uint("os-critical", 0, "Instruction count before which timer interrupts are withheld")
	tracePath     = flag.String("trace", "", "Write a detailed execution trace to this file")
	diskPath      = flag.String("disk", ".", "Root directory the disk controller's file commands resolve paths against")
	kbdInterrupt  = flag.Bool("kbd-interrupt", true, "Let the keyboard raise attention on new input")
	singleStep    = flag.Bool("step", false, "Start in single-step mode (advance with F6)")
	showVersion   = flag.Bool("version", false, "Show version and exit")
	breakpoints   hexAddrList
	exitpoints    hexAddrList
)

func init() {
	flag.Var(&breakpoints, "bp", "Breakpoint address in hex (repeatable)")
	flag.Var(&exitpoints, "ep", "Exitpoint address in hex (repeatable)")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <rom-file>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "CESC16 Emulator - run a CESC16 ROM image\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nArguments:\n")
	fmt.Fprintf(os.Stderr, "  <rom-file>    whitespace-delimited hex-pair ROM image (see §6)\n")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("CESC16 Emulator v%s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}

	cfg := &Config{
		ROMPath:              args[0],
		ClockHz:              *clockHz,
		Strict:               *strictFlag,
		StrictTiming:         *strictTiming,
		OSCriticalInstrCount: uint16(*osCritical),
		Breakpoints:          breakpoints,
		Exitpoints:           exitpoints,
		TracePath:            *tracePath,
		DiskPath:             *diskPath,
		KeyboardCanInterrupt: *kbdInterrupt,
		SingleStep:           *singleStep,
	}

	rom, err := LoadROM(cfg.ROMPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	var tracer *Tracer
	if cfg.TracePath != "" {
		f, err := os.Create(cfg.TracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		tracer = NewTracer(f)
		fmt.Fprintf(f, "CESC16 Emulator Trace\nROM: %s\nClock: %d Hz\n========================================\n\n", cfg.ROMPath, cfg.ClockHz)
	}

	timer := NewTimer()
	ram := &RAM{
		Keyboard: NewKeyboard(cfg.KeyboardCanInterrupt),
		Display:  NewDisplay(),
		Timer:    timer,
		Disk:     NewDisk(cfg.DiskPath),
		Strict:   cfg.Strict,
	}

	ram.Tracer = tracer

	cpu := NewCPU(ram, timer)
	cpu.ROM = *rom
	cpu.Tracer = tracer
	cpu.AllowEarlyInterrupts = cfg.StrictTiming
	cpu.OSCriticalInstrCount = cfg.OSCriticalInstrCount
	for _, a := range cfg.Breakpoints {
		cpu.Breakpoints[a] = true
	}
	for _, a := range cfg.Exitpoints {
		cpu.Exitpoints[a] = true
	}
	cpu.Reset()

	term := NewTerminal(os.Stdin, os.Stdout)
	if err := term.EnterRawMode(); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up terminal: %v\n", err)
		os.Exit(1)
	}
	defer term.Restore()

	rs := &RuntimeState{Paused: cfg.SingleStep, StepOnce: false}
	driver := NewDriver(cpu, cfg, rs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	stop := make(chan struct{})
	go func() {
		<-sigChan
		close(stop)
	}()

	go runKeyboard(term, driver, ram.Keyboard.(*Keyboard), cfg, stop)

	startTime := time.Now()
	runErr := driver.Run(stop)
	elapsed := time.Since(startTime)

	term.Restore()

	fmt.Fprintf(os.Stderr, "\n========================================\n")
	fmt.Fprintf(os.Stderr, "Execution stopped\n")
	fmt.Fprintf(os.Stderr, "Cycles: %d  Instructions: %d\n", cpu.ElapsedCycles, cpu.ElapsedInstructions)
	fmt.Fprintf(os.Stderr, "Time: %v\n", elapsed.Round(time.Millisecond))
	if elapsed.Seconds() > 0 {
		fmt.Fprintf(os.Stderr, "Speed: %.3f MHz\n", (float64(cpu.ElapsedCycles)/1_000_000.0)/elapsed.Seconds())
	}

	var bp *BreakpointHit
	var ep *ExitpointHit
	switch {
	case errors.As(runErr, &bp):
		fmt.Fprintf(os.Stderr, "Stopped at breakpoint 0x%04X\n", bp.PC)
	case errors.As(runErr, &ep):
		fmt.Fprintf(os.Stderr, "Stopped at exitpoint 0x%04X\n", ep.PC)
	case runErr != nil:
		FatalExit(term, tracer, cpu, runErr)
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "Exit: normal\n")
	}
}

// runKeyboard reads raw terminal input and feeds it either to the
// function-key control path or the keyboard mailbox, until stop closes.
func runKeyboard(term *Terminal, driver *Driver, kbd *Keyboard, cfg *Config, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		code, ctrl, err := term.ReadKey()
		if err != nil {
			return
		}

		switch ctrl {
		case ControlPauseToggle:
			driver.Lock()
			driver.rs.Paused = !driver.rs.Paused
			driver.Unlock()
			continue
		case ControlSingleStep:
			driver.Lock()
			if driver.rs.Paused {
				driver.rs.StepOnce = true
			}
			driver.Unlock()
			continue
		case ControlResetCounters:
			driver.Lock()
			driver.cpu.ElapsedCycles = 0
			driver.Unlock()
			driver.cpu.CPI.Reset()
			continue
		}

		if code == 0x03 { // Ctrl-C: raw mode stops the terminal sending SIGINT, so raise it for the signal handler
			if p, err := os.FindProcess(os.Getpid()); err == nil {
				p.Signal(os.Interrupt)
			}
			continue
		}
		kbd.Push(code, cfg.Strict)
	}
}
