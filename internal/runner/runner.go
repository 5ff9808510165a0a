// Package runner executes a machine without a window at a fixed instruction rate.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// StopReason describes why a run ended.
type StopReason string

// Stop reasons of a run.
const (
	StopCancelled  StopReason = "cancelled"
	StopCycleLimit StopReason = "cycle limit"
	StopBreakpoint StopReason = "breakpoint"
	StopFault      StopReason = "fault"
)

// Options controls a headless run.
type Options struct {
	Rate        int             // cycles per second
	Cycles      uint64          // cycle limit, 0 runs until cancelled
	Breakpoints set.Set[uint16] // addresses that stop the run before they are executed
	Dump        io.Writer       // receives the framebuffer when the run stops, nil disables
}

// Result of a run.
type Result struct {
	Reason StopReason
	Cycles uint64 // number of executed cycles
	State  machine.State
}

// Runner drives a machine from a ticker.
type Runner struct {
	logger  *log.Logger
	machine *machine.Machine
	options Options
}

// New returns a runner for the given machine.
func New(logger *log.Logger, m *machine.Machine, options Options) *Runner {
	return &Runner{
		logger:  logger,
		machine: m,
		options: options,
	}
}

// Run executes cycles until the context is cancelled, the cycle limit or a
// breakpoint is reached, or the machine faults. A fault is returned as error
// together with the result.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.options.Rate <= 0 {
		return Result{}, fmt.Errorf("invalid rate %d", r.options.Rate)
	}

	interval := time.Second / time.Duration(r.options.Rate)
	if interval <= 0 {
		return Result{}, fmt.Errorf("invalid rate %d: interval between cycles is below 1ns", r.options.Rate)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	result, runErr := r.loop(ctx, ticker.C)
	result.State = r.machine.Snapshot()

	r.logger.Info("Run stopped",
		log.String("reason", string(result.Reason)),
		log.Int("cycles", int(result.Cycles)))
	if result.Reason == StopBreakpoint || result.Reason == StopFault {
		logState(r.logger, result.State)
	}

	if err := r.dump(); err != nil {
		return result, err
	}
	return result, runErr
}

func (r *Runner) loop(ctx context.Context, tick <-chan time.Time) (Result, error) {
	var result Result
	for {
		if r.options.Cycles > 0 && result.Cycles >= r.options.Cycles {
			result.Reason = StopCycleLimit
			return result, nil
		}
		if r.options.Breakpoints.Contains(r.machine.PC()) {
			result.Reason = StopBreakpoint
			return result, nil
		}

		select {
		case <-ctx.Done():
			result.Reason = StopCancelled
			return result, fmt.Errorf("running machine: %w", ctx.Err())
		case <-tick:
		}

		if err := r.machine.Cycle(); err != nil {
			result.Reason = StopFault
			return result, fmt.Errorf("running machine: %w", err)
		}
		result.Cycles++
	}
}

func (r *Runner) dump() error {
	if r.options.Dump == nil {
		return nil
	}
	if _, err := io.WriteString(r.options.Dump, r.machine.Framebuffer().String()); err != nil {
		return fmt.Errorf("writing framebuffer: %w", err)
	}
	return nil
}

func logState(logger *log.Logger, state machine.State) {
	logger.Info("Machine state",
		log.Hex("pc", state.PC),
		log.Hex("i", state.I),
		log.Uint8("sp", state.SP),
		log.String("v", fmt.Sprintf("% X", state.V[:])),
		log.Uint8("delay_timer", state.DelayTimer),
		log.Uint8("sound_timer", state.SoundTimer))
}
