package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

// maxDataBytesPerLine limits the length of .byte lines.
const maxDataBytesPerLine = 8

func (dis *Disasm) write(w io.Writer) error {
	header := fmt.Sprintf("; CHIP-8 program disassembly\n; Program starts at $%03X in CHIP-8 memory space\n\n.org $%03X\n\n",
		machine.ProgramStart, machine.ProgramStart)
	if _, err := io.WriteString(w, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	endIndex := dis.endIndex()
	for index := 0; index < endIndex; {
		address := machine.ProgramStart + uint16(index)

		if name, ok := dis.label(address); ok {
			if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
				return fmt.Errorf("writing label %s: %w", name, err)
			}
		}

		var err error
		if dis.offsets[index] == codeOffset {
			err = dis.writeCode(w, address)
			index += 2
		} else {
			var n int
			n, err = dis.writeData(w, index, endIndex)
			index += n
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (dis *Disasm) writeCode(w io.Writer, address uint16) error {
	ins := dis.instructions[address]
	line := "    " + ins.Format(dis.label)

	var comment string
	if dis.options.HexComments {
		comment = fmt.Sprintf("$%04X %02X %02X", address, ins.Opcode()>>8, ins.Opcode()&0xFF)
	}
	if err := writeLine(w, line, comment); err != nil {
		return fmt.Errorf("writing code at $%04X: %w", address, err)
	}
	return nil
}

// writeData writes the data bytes starting at index up to the next code
// offset or label and returns the number of bytes written.
func (dis *Disasm) writeData(w io.Writer, index, endIndex int) (int, error) {
	end := index + 1
	for end < endIndex && end-index < maxDataBytesPerLine && dis.offsets[end] == dataOffset {
		if _, ok := dis.label(machine.ProgramStart + uint16(end)); ok {
			break
		}
		end++
	}

	var buf strings.Builder
	buf.WriteString("    .byte ")
	for i, b := range dis.program[index:end] {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "$%02X", b)
	}

	var comment string
	address := machine.ProgramStart + uint16(index)
	if dis.options.HexComments {
		comment = fmt.Sprintf("$%04X", address)
	}
	if err := writeLine(w, buf.String(), comment); err != nil {
		return 0, fmt.Errorf("writing data at $%04X: %w", address, err)
	}
	return end - index, nil
}

// endIndex returns the index after the last meaningful byte of the program.
// Trailing zero bytes are cut unless they are code or labeled.
func (dis *Disasm) endIndex() int {
	if dis.options.ZeroBytes {
		return len(dis.program)
	}

	for i := len(dis.program) - 1; i >= 0; i-- {
		if dis.program[i] != 0 || dis.offsets[i] != dataOffset {
			return i + 1
		}
		if _, ok := dis.label(machine.ProgramStart + uint16(i)); ok {
			return i + 1
		}
	}
	return 0
}

func writeLine(w io.Writer, line, comment string) error {
	var err error
	if comment == "" {
		_, err = fmt.Fprintf(w, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(w, "%-32s ; %s\n", line, comment)
	}
	return err
}
