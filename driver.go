package main

import (
	"sync"
	"time"
)

// fastSliceDuration is the wall-clock slice the fast-regime pacer paces
// against, matching CpuController.cpp's run_fast's 10ms tick.
const fastSliceDuration = 10 * time.Millisecond

// Driver wraps a CPU with the wall-clock pacing loop and the mutex that
// lets the terminal adapter's status-panel renderer read CPU state
// between slices without racing the execute loop. Grounded on
// CpuController.h/cpp's run_fast/run_slow split.
type Driver struct {
	cpu *CPU
	cfg *Config
	rs  *RuntimeState

	// mu is the update-mutex-equivalent: held across each Execute slice,
	// and briefly by any reader (status panel, function-key handler)
	// that needs a consistent CPU snapshot.
	mu sync.Mutex
}

// NewDriver constructs a driver. rs.StartedAt is set here so uptime
// reporting is accurate from the first slice.
func NewDriver(cpu *CPU, cfg *Config, rs *RuntimeState) *Driver {
	rs.StartedAt = time.Now()
	return &Driver{cpu: cpu, cfg: cfg, rs: rs}
}

// Lock/Unlock expose the update mutex to callers (the terminal adapter)
// that need to read or mutate CPU/RuntimeState between slices.
func (d *Driver) Lock()   { d.mu.Lock() }
func (d *Driver) Unlock() { d.mu.Unlock() }

// Run paces execution against the configured clock frequency until a
// breakpoint, exitpoint, fatal error, or external stop request ends it.
// A breakpoint or exitpoint stop is returned as its *BreakpointHit or
// *ExitpointHit value, a fatal instruction error as itself, and an external
// stop as nil.
func (d *Driver) Run(stop <-chan struct{}) error {
	cyclesPerSlice := d.cfg.ClockHz * int64(fastSliceDuration/time.Microsecond) / 1_000_000
	var carry int64

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		d.mu.Lock()
		paused := d.rs.Paused
		step := d.rs.StepOnce
		d.mu.Unlock()

		if paused && !step {
			time.Sleep(25 * time.Millisecond)
			continue
		}

		if step {
			d.mu.Lock()
			_, err := d.cpu.Execute(1)
			d.rs.StepOnce = false
			d.mu.Unlock()
			if stop, serr := classifyStop(err); stop {
				return serr
			}
			continue
		}

		if cyclesPerSlice >= 1 {
			budget := cyclesPerSlice + carry
			if budget < 1 {
				budget = 1
			}
			start := time.Now()
			d.mu.Lock()
			spent, err := d.cpu.Execute(int(budget))
			d.mu.Unlock()
			carry = budget - int64(spent)

			if stop, serr := classifyStop(err); stop {
				return serr
			}

			elapsed := time.Since(start)
			if elapsed < fastSliceDuration {
				time.Sleep(fastSliceDuration - elapsed)
			} else if elapsed > 4*fastSliceDuration {
				return &RealtimeOverrunError{TargetHz: d.cfg.ClockHz}
			}
		} else {
			// Slow regime: a single Execute call always yields at least
			// one instruction's worth of cycles, which this sleeps off
			// proportionally to the configured (sub-100Hz) clock.
			d.mu.Lock()
			spent, err := d.cpu.Execute(1)
			d.mu.Unlock()
			if stop, serr := classifyStop(err); stop {
				return serr
			}
			micros := int64(spent) * 1_000_000 / d.cfg.ClockHz
			time.Sleep(time.Duration(micros) * time.Microsecond)
		}
	}
}

// classifyStop reports whether err should end Run's loop. Both of the
// non-fatal control-flow sentinels (breakpoint/exitpoint) and a genuine
// fatal error stop the loop; classifyStop never swallows err; the caller
// (main.go) uses errors.As to tell a sentinel from a real failure.
func classifyStop(err error) (stop bool, out error) {
	if err == nil {
		return false, nil
	}
	return true, err
}

// exitOnce guards FatalExit's teardown so the terminal is restored and the
// trace written at most once, however many times it is called.
var exitOnce sync.Once

// FatalExit restores the terminal and, when tracing is on, writes the fatal
// error and a final state dump to the trace. It runs its body at most once
// per process. It neither prints to stderr nor exits; main.go does both
// after calling it.
func FatalExit(term *Terminal, tracer *Tracer, cpu *CPU, err error) {
	exitOnce.Do(func() {
		term.Restore()
		if tracer != nil {
			tracer.TraceDoubleFault(cpu, err)
		}
	})
}
