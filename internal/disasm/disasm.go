// Package disasm converts CHIP-8 programs into assembly listings. Code is found
// by following the execution flow from the program start, everything that is
// not reached is written as data bytes.
package disasm

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	entryLabel  = "Start"
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

type offsetType uint8

const (
	dataOffset    offsetType = iota // not reached by the execution flow
	codeOffset                      // first byte of an instruction
	operandOffset                   // second byte of an instruction
)

// Options controls the listing output.
type Options struct {
	HexComments bool // address and opcode bytes as comment
	ZeroBytes   bool // keep trailing zero bytes of the program
}

// Disasm implements a disassembler for a single program image.
type Disasm struct {
	logger  *log.Logger
	options Options
	program []byte

	offsets      []offsetType
	instructions map[uint16]Instruction

	branchDestinations set.Set[uint16]
	callDestinations   set.Set[uint16]
	dataReferences     set.Set[uint16]

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a disassembler for the program that is loaded at machine.ProgramStart.
func New(logger *log.Logger, program []byte, options Options) (*Disasm, error) {
	if len(program) > machine.MaxProgramSize {
		return nil, fmt.Errorf("%w: %d bytes", machine.ErrProgramTooLarge, len(program))
	}

	return &Disasm{
		logger:              logger,
		options:             options,
		program:             program,
		offsets:             make([]offsetType, len(program)),
		instructions:        map[uint16]Instruction{},
		branchDestinations:  set.New[uint16](),
		callDestinations:    set.New[uint16](),
		dataReferences:      set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}, nil
}

// Process traces the program and writes the listing to w.
func (dis *Disasm) Process(ctx context.Context, w io.Writer) error {
	if err := dis.followExecutionFlow(ctx); err != nil {
		return err
	}

	dis.logger.Debug("Execution flow traced",
		log.Int("instructions", len(dis.instructions)),
		log.Int("branch_destinations", len(dis.branchDestinations)),
		log.Int("call_destinations", len(dis.callDestinations)),
		log.Int("data_references", len(dis.dataReferences)))

	return dis.write(w)
}

func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	dis.addAddressToParse(machine.ProgramStart)

	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}
	return nil
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inProgram(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) processOffset(address uint16) {
	index := int(address - machine.ProgramStart)
	if index+1 >= len(dis.program) {
		return // a single trailing byte can not hold an instruction
	}
	if dis.offsets[index] != dataOffset || dis.offsets[index+1] != dataOffset {
		return // overlaps an already decoded instruction
	}

	opcode := uint16(dis.program[index])<<8 | uint16(dis.program[index+1])
	ins, ok := Decode(opcode)
	if !ok {
		return
	}

	dis.offsets[index] = codeOffset
	dis.offsets[index+1] = operandOffset
	dis.instructions[address] = ins

	next := address + 2
	switch {
	case ins.IsJump():
		if target, ok := ins.Target(); ok {
			dis.branchDestinations.Add(target)
			dis.addAddressToParse(target)
		}

	case ins.IsCall():
		if target, ok := ins.Target(); ok {
			dis.callDestinations.Add(target)
			dis.addAddressToParse(target)
		}
		dis.addAddressToParse(next)

	case ins.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + 2)

	case ins.IsDataReference():
		if target, ok := ins.Target(); ok {
			dis.dataReferences.Add(target)
		}
		dis.addAddressToParse(next)

	case !ins.IsReturn():
		dis.addAddressToParse(next)
	}
}

func (dis *Disasm) inProgram(address uint16) bool {
	return address >= machine.ProgramStart && int(address-machine.ProgramStart) < len(dis.program)
}

// label returns the label name of an address. Addresses that point into the
// middle of an instruction or outside of the program have no label.
func (dis *Disasm) label(address uint16) (string, bool) {
	if !dis.inProgram(address) || dis.offsets[address-machine.ProgramStart] == operandOffset {
		return "", false
	}

	switch {
	case address == machine.ProgramStart:
		return entryLabel, true
	case dis.callDestinations.Contains(address):
		return fmt.Sprintf(funcNaming, address), true
	case dis.branchDestinations.Contains(address):
		return fmt.Sprintf(labelNaming, address), true
	case dis.dataReferences.Contains(address):
		return fmt.Sprintf(dataNaming, address), true
	default:
		return "", false
	}
}
