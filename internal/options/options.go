// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrogolib/set"
)

// Default emulation settings.
const (
	DefaultRate  = 540
	MaxRate      = 1_000_000
	DefaultScale = 10
	MaxScale     = 32
)

// Parameters contains file path options.
type Parameters struct {
	Input string `flag:"i" usage:"input program file"`
}

// Flags contains behavior options.
type Flags struct {
	Disassemble bool `flag:"disasm" usage:"print a disassembly listing and exit"`
	Headless    bool `flag:"headless" usage:"run without a window"`
	Dump        bool `flag:"dump" usage:"print the framebuffer when the headless run stops"`
	Trace       bool `flag:"trace" usage:"log every executed instruction"`
	Debug       bool `flag:"debug" usage:"enable debug logging"`
	Quiet       bool `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains listing formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit address and opcode bytes in comments"`
	ZeroBytes     bool `flag:"z" usage:"include trailing zero bytes in the listing"`
}

// Emulation contains the machine execution options.
type Emulation struct {
	Rate        int             `flag:"rate" usage:"instructions per second, timers tick once per instruction"`
	Scale       int             `flag:"scale" usage:"window scale factor"`
	Cycles      uint64          `flag:"cycles" usage:"stop the headless run after this many cycles"`
	Seed        uint64          `flag:"seed" usage:"seed of the random number generator"`
	Breakpoints set.Set[uint16] `flag:"break" usage:"comma separated hex breakpoint addresses"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	OutputFlags
	Emulation
}
