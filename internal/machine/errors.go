package machine

import (
	"errors"
	"fmt"
)

var (
	// ErrStackOverflow is returned when a call is executed with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when a return is executed with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrAddressOutOfRange is returned for memory accesses outside of the 4KB address space.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrProgramTooLarge is returned when a program does not fit into the program area.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrHalted is returned by Cycle after the machine faulted.
	ErrHalted = errors.New("machine halted")
)

// Fault describes a machine fault that stopped execution.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("opcode %04X at $%03X: %v", f.Opcode, f.PC, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
