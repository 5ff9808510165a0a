// Package pipeline orchestrates loading a program and running or listing it.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// windowTitle is the title of the frontend window.
const windowTitle = "retrochip8"

// Pipeline orchestrates the complete workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Execute loads the input program and either writes its listing to writer,
// runs it headless or opens the window, depending on the options.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) error {
	program, err := p.loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	return p.ExecuteWithProgram(ctx, program, opts, writer)
}

// ExecuteWithProgram runs the pipeline with a pre-loaded program image.
func (p *Pipeline) ExecuteWithProgram(ctx context.Context, program []byte, opts options.Program, writer io.Writer) error {
	p.printInfo(opts, program)

	if opts.Disassemble {
		return p.runDisassembly(ctx, program, opts, writer)
	}

	m, err := p.createMachine(program, opts)
	if err != nil {
		return err
	}

	if opts.Headless {
		return p.runHeadless(ctx, m, opts, writer)
	}

	if err := frontend.Run(ctx, p.logger, m, frontend.Options{
		Rate:  opts.Rate,
		Scale: opts.Scale,
		Title: windowTitle,
	}); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}

// runDisassembly writes the listing of the program.
func (p *Pipeline) runDisassembly(ctx context.Context, program []byte, opts options.Program, writer io.Writer) error {
	dis, err := disasm.New(p.logger, program, disasm.Options{
		HexComments: !opts.NoHexComments,
		ZeroBytes:   opts.ZeroBytes,
	})
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}

	if err := dis.Process(ctx, writer); err != nil {
		return fmt.Errorf("processing disassembly: %w", err)
	}
	return nil
}

// createMachine creates a machine with the program loaded.
func (p *Pipeline) createMachine(program []byte, opts options.Program) (*machine.Machine, error) {
	var machineOptions []machine.Option
	if opts.Seed != 0 {
		machineOptions = append(machineOptions, machine.WithSeed(opts.Seed))
	}
	if opts.Trace {
		machineOptions = append(machineOptions, machine.WithTracer(disasm.NewTracer(p.logger)))
	}

	m := machine.New(p.logger, machineOptions...)
	if err := m.Load(program); err != nil {
		return nil, fmt.Errorf("loading program into machine: %w", err)
	}
	return m, nil
}

// runHeadless runs the machine without a window.
func (p *Pipeline) runHeadless(ctx context.Context, m *machine.Machine, opts options.Program, writer io.Writer) error {
	runnerOptions := runner.Options{
		Rate:        opts.Rate,
		Cycles:      opts.Cycles,
		Breakpoints: opts.Breakpoints,
	}
	if opts.Dump {
		runnerOptions.Dump = writer
	}

	if _, err := runner.New(p.logger, m, runnerOptions).Run(ctx); err != nil {
		return fmt.Errorf("running headless: %w", err)
	}
	return nil
}

// printInfo prints information about the program being processed.
func (p *Pipeline) printInfo(opts options.Program, program []byte) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing CHIP-8 program",
		log.String("file", opts.Input),
		log.Int("size", len(program)),
	)
}
