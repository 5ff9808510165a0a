// Package machine implements the CHIP-8 virtual machine.
//
// # Machine Model
//
// A Machine owns all of its state, multiple instances are fully independent:
//   - 4KB of memory (0x000-MaxAddress), font glyphs at FontStart, programs at ProgramStart
//   - 16 general-purpose 8-bit registers V0-VF, VF doubles as the flag register
//   - the 16-bit index register I and program counter PC
//   - a 16 entry return address stack
//   - delay and sound timers, decremented once per cycle while nonzero
//   - a 64x32 monochrome framebuffer and a 16 key keypad shared with the host
//
// # Execution
//
// Cycle executes exactly one instruction: the opcode at PC is fetched big-endian,
// PC is advanced by 2, the opcode is dispatched through nibble-indexed tables
// and the timers are decremented. Opcodes that do not resolve to an instruction
// are no-ops.
//
// The machine performs no I/O and never sleeps. Pacing is the job of the host,
// which calls Cycle at its chosen rate and independently updates the keypad
// and renders the framebuffer between calls.
//
// # Faults
//
// Stack overflow, stack underflow and memory accesses outside of the address
// space are returned by Cycle as a *Fault. A faulted machine stays halted until
// Reset or Load is called.
//
// # Usage Example
//
//	m := machine.New(logger)
//	if err := m.Load(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		m.SetKey(0x5, pressed)
//		if err := m.Cycle(); err != nil {
//			return err
//		}
//		if m.DrawFlag() {
//			render(m.Framebuffer())
//		}
//	}
package machine
