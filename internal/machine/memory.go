package machine

import "fmt"

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: unused, zero initialized
//	0x050-0x09F: font glyphs 0-F, 5 bytes each
//	0x0A0-0x1FF: unused, zero initialized
//	0x200-0xFFF: program image
const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 4096

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1

	// ProgramStart is the load address and entry point of programs.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x50

	// FontGlyphSize is the size of a single font glyph in bytes.
	FontGlyphSize = 5
)

var fontSet = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// checkRange verifies that the length bytes starting at address are all
// inside of the address space.
func checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("%w: $%04X+%d", ErrAddressOutOfRange, address, length)
	}
	return nil
}

// ReadMemory returns the byte at the given address.
func (m *Machine) ReadMemory(address uint16) (byte, error) {
	if err := checkRange(address, 1); err != nil {
		return 0, err
	}
	return m.memory[address], nil
}

// fetch reads the big-endian opcode at the program counter.
func (m *Machine) fetch() (opcode, error) {
	if err := checkRange(m.pc, 2); err != nil {
		return 0, err
	}
	return opcode(uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1])), nil
}
