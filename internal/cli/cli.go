// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/set"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	var breakpoints string
	readOptionFlags(flags, &opts, &breakpoints)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if len(args) > 0 {
		opts.Input = args[0]
	}

	if err := normalizeOptions(&opts, breakpoints); err != nil {
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <program file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after program file, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program, breakpoints string) error {
	if opts.Rate < 1 || opts.Rate > options.MaxRate {
		return fmt.Errorf("invalid rate %d: valid range is 1-%d", opts.Rate, options.MaxRate)
	}
	if opts.Scale < 1 || opts.Scale > options.MaxScale {
		return fmt.Errorf("invalid scale %d: valid range is 1-%d", opts.Scale, options.MaxScale)
	}

	addresses, err := parseBreakpoints(breakpoints)
	if err != nil {
		return err
	}
	opts.Breakpoints = addresses
	return nil
}

// parseBreakpoints parses a comma separated list of hex addresses. The
// addresses can be prefixed by $ or 0x.
func parseBreakpoints(s string) (set.Set[uint16], error) {
	addresses := set.New[uint16]()
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		value := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(field), "$"), "0x")
		address, err := strconv.ParseUint(value, 16, 16)
		if err != nil || address > machine.MaxAddress {
			return nil, fmt.Errorf("invalid breakpoint address '%s'", field)
		}
		addresses.Add(uint16(address))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, breakpoints *string) {
	flags.StringVar(&opts.Input, "i", "", "name of the input program file")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "print a disassembly listing of the program and exit")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output addresses and opcode bytes as comments in the listing")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the program in the listing")
	flags.BoolVar(&opts.Headless, "headless", false, "run without opening a window")
	flags.BoolVar(&opts.Dump, "dump", false, "print the framebuffer when the headless run stops")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.IntVar(&opts.Rate, "rate", options.DefaultRate, "instructions executed per second, the delay and sound timers count down once per instruction")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window scale factor")
	flags.Uint64Var(&opts.Cycles, "cycles", 0, "stop the headless run after this many cycles, 0 runs until interrupted")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 uses a random seed")
	flags.StringVar(breakpoints, "break", "", "comma separated hex addresses that stop the headless run, for example 200,2A4")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
