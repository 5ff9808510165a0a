package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded CHIP-8 opcode.
type Instruction struct {
	opcode uint16
	ins    *chip8.Instruction
}

// Decode identifies the instruction encoded by opcode. It returns false for
// words that are not part of the instruction set.
func Decode(opcode uint16) (Instruction, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return Instruction{opcode: opcode, ins: op.Instruction}, true
		}
	}
	return Instruction{opcode: opcode}, false
}

// Opcode returns the encoded instruction word.
func (i Instruction) Opcode() uint16 {
	return i.opcode
}

// Name returns the instruction mnemonic, empty for unknown opcodes.
func (i Instruction) Name() string {
	if i.ins == nil {
		return ""
	}
	return i.ins.Name
}

// IsCall returns true if the instruction is a subroutine call.
func (i Instruction) IsCall() bool {
	return i.ins == chip8.Call
}

// IsJump returns true for both the absolute and the V0 relative jump.
func (i Instruction) IsJump() bool {
	return i.ins == chip8.Jp
}

// IsReturn returns true if the instruction is a subroutine return.
func (i Instruction) IsReturn() bool {
	return i.ins == chip8.Ret
}

// IsSkip returns true if the instruction conditionally skips the next one.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// IsDataReference returns true if the instruction points I at an address.
func (i Instruction) IsDataReference() bool {
	return i.ins == chip8.Ld && i.opcode&0xF000 == 0xA000
}

// Target returns the address encoded in a JP, CALL or LD I instruction.
// The V0 relative jump has no static target.
func (i Instruction) Target() (uint16, bool) {
	switch i.opcode & 0xF000 {
	case 0x1000, 0x2000, 0xA000:
		return i.opcode & 0x0FFF, i.ins != nil
	default:
		return 0, false
	}
}

// String returns the instruction in assembly syntax with numeric addresses.
func (i Instruction) String() string {
	return i.Format(nil)
}

// Format returns the instruction in assembly syntax. If label is set, it is
// asked for a name for every address operand.
func (i Instruction) Format(label func(address uint16) (string, bool)) string {
	if i.ins == nil {
		return fmt.Sprintf(".byte $%02X, $%02X", i.opcode>>8, i.opcode&0xFF)
	}

	address := fmt.Sprintf("$%03X", i.opcode&0x0FFF)
	if label != nil {
		if name, ok := label(i.opcode & 0x0FFF); ok {
			address = name
		}
	}

	params := i.formatParams(address)
	if params == "" {
		return i.Name()
	}
	return fmt.Sprintf("%s %s", i.Name(), params)
}

func (i Instruction) formatParams(address string) string {
	op := i.opcode
	x := extractRegisterX(op)
	y := extractRegisterY(op)

	switch op & 0xF000 {
	case 0x0000:
		if i.ins == chip8.Cls || i.ins == chip8.Ret {
			return ""
		}
		return address
	case 0x1000, 0x2000:
		return address
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return fmt.Sprintf("V%X, $%02X", x, op&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0x8000:
		return formatArithmeticParams(op)
	case 0xA000:
		return "I, " + address
	case 0xB000:
		return "V0, " + address
	case 0xD000:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, op&0x000F)
	case 0xE000:
		return fmt.Sprintf("V%X", x)
	default:
		return formatMiscParams(op)
	}
}

// formatArithmeticParams formats the 8xyN register operations. Shifts only
// name the target register.
func formatArithmeticParams(op uint16) string {
	x := extractRegisterX(op)
	if n := op & 0x000F; n == 0x6 || n == 0xE {
		return fmt.Sprintf("V%X", x)
	}
	return fmt.Sprintf("V%X, V%X", x, extractRegisterY(op))
}

// formatMiscParams formats the Fx timer, keypad and memory transfer operations.
func formatMiscParams(op uint16) string {
	x := extractRegisterX(op)
	switch op & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	default:
		return fmt.Sprintf("V%X", x)
	}
}

func extractRegisterX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

func extractRegisterY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
