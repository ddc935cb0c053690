package main

import "testing"

func TestClassifyStopNilError(t *testing.T) {
	stop, err := classifyStop(nil)
	if stop || err != nil {
		t.Fatalf("nil error must not stop the loop, got stop=%v err=%v", stop, err)
	}
}

func TestClassifyStopPropagatesBreakpoint(t *testing.T) {
	bp := &BreakpointHit{PC: 0x10}
	stop, err := classifyStop(bp)
	if !stop {
		t.Fatal("breakpoint must stop the loop")
	}
	if err != bp {
		t.Fatalf("classifyStop must propagate the original error, got %v", err)
	}
}

func TestClassifyStopPropagatesFatalError(t *testing.T) {
	fatal := &IllegalOpcodeError{PC: 4, Opcode: 0xFFFF}
	stop, err := classifyStop(fatal)
	if !stop || err != fatal {
		t.Fatalf("fatal error must stop the loop and propagate, got stop=%v err=%v", stop, err)
	}
}

func TestDriverRunStopsImmediatelyOnExternalStop(t *testing.T) {
	cpu := NewCPU(&RAM{}, NewTimer())
	cpu.Reset()
	cfg := &Config{ClockHz: 1_000_000}
	rs := &RuntimeState{}
	driver := NewDriver(cpu, cfg, rs)

	stop := make(chan struct{})
	close(stop)
	if err := driver.Run(stop); err != nil {
		t.Fatalf("expected nil error on external stop, got %v", err)
	}
}

func TestDriverRunStopsAtExitpoint(t *testing.T) {
	cpu := NewCPU(&RAM{}, NewTimer())
	cpu.Reset()
	cpu.Exitpoints[0x0000] = true
	cfg := &Config{ClockHz: 1_000_000}
	rs := &RuntimeState{}
	driver := NewDriver(cpu, cfg, rs)

	stop := make(chan struct{})
	err := driver.Run(stop)
	if _, ok := err.(*ExitpointHit); !ok {
		t.Fatalf("expected *ExitpointHit, got %T (%v)", err, err)
	}
}
