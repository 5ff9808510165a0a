package disasm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

const listingHeader = "; CHIP-8 program disassembly\n; Program starts at $200 in CHIP-8 memory space\n\n.org $200\n\n"

func runDisasm(t *testing.T, program []byte, options Options) string {
	t.Helper()

	dis, err := New(log.NewTestLogger(t), program, options)
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, dis.Process(context.Background(), &buf))

	output := buf.String()
	assert.True(t, strings.HasPrefix(output, listingHeader))
	return strings.TrimPrefix(output, listingHeader)
}

func TestDisasm_Listing(t *testing.T) {
	program := []byte{
		0x00, 0xE0, // cls
		0xA2, 0x0C, // ld I, sprite
		0x22, 0x08, // call draw
		0x12, 0x06, // jp self
		0xD0, 0x15, // drw V0, V1, 5
		0x00, 0xEE, // ret
		0xF0, 0x90, 0x90, 0x90, 0xF0, // sprite
		0x00, 0x00,
	}

	expected := strings.Join([]string{
		"Start:",
		"    cls",
		"    ld I, _data_020c",
		"    call _func_0208",
		"_label_0206:",
		"    jp _label_0206",
		"_func_0208:",
		"    " + chip8.Drw.Name + " V0, V1, $5",
		"    " + chip8.Ret.Name,
		"_data_020c:",
		"    .byte $F0, $90, $90, $90, $F0",
		"",
	}, "\n")

	assert.Equal(t, expected, runDisasm(t, program, Options{}))
}

func TestDisasm_HexComments(t *testing.T) {
	output := runDisasm(t, []byte{0x00, 0xE0, 0x12, 0x02, 0xAB}, Options{HexComments: true})

	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "Start:", lines[0])
	assert.Equal(t, "    cls                          ; $0200 00 E0", lines[1])
	assert.Equal(t, "_label_0202:", lines[2])
	assert.Equal(t, "    jp _label_0202               ; $0202 12 02", lines[3])
	assert.Equal(t, "    .byte $AB                    ; $0204", lines[4])
}

func TestDisasm_SkipFollowsBothPaths(t *testing.T) {
	program := []byte{
		0x30, 0x00, // se V0, $00
		0x00, 0xE0, // cls
		0x00, 0xEE, // ret
	}

	output := runDisasm(t, program, Options{})
	assert.False(t, strings.Contains(output, ".byte"))
	assert.True(t, strings.Contains(output, "    cls\n"))
}

func TestDisasm_UnreachedBytesAreData(t *testing.T) {
	program := []byte{
		0x12, 0x00, // jp Start
		0x00, 0xE0, // never reached
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09,
	}

	expected := strings.Join([]string{
		"Start:",
		"    jp Start",
		"    .byte $00, $E0, $01, $02, $03, $04, $05, $06",
		"    .byte $07, $08, $09",
		"",
	}, "\n")

	assert.Equal(t, expected, runDisasm(t, program, Options{}))
}

func TestDisasm_JumpIntoInstruction(t *testing.T) {
	output := runDisasm(t, []byte{0x12, 0x01}, Options{})
	assert.Equal(t, "Start:\n    jp $201\n", output)
}

func TestDisasm_TargetOutsideProgram(t *testing.T) {
	output := runDisasm(t, []byte{0x23, 0x00, 0x12, 0x02}, Options{})
	assert.True(t, strings.Contains(output, "    call $300\n"))
}

func TestDisasm_ZeroBytes(t *testing.T) {
	program := []byte{0x12, 0x00, 0x00, 0x00}

	assert.Equal(t, "Start:\n    jp Start\n", runDisasm(t, program, Options{}))
	assert.Equal(t, "Start:\n    jp Start\n    .byte $00, $00\n", runDisasm(t, program, Options{ZeroBytes: true}))
}

func TestDisasm_ProgramTooLarge(t *testing.T) {
	_, err := New(log.NewTestLogger(t), make([]byte, machine.MaxProgramSize+1), Options{})
	assert.True(t, errors.Is(err, machine.ErrProgramTooLarge))
}

func TestDisasm_Cancelled(t *testing.T) {
	dis, err := New(log.NewTestLogger(t), []byte{0x00, 0xE0}, Options{})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = dis.Process(ctx, &buf)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, buf.Len())
}

func TestTracer(t *testing.T) {
	m := machine.New(log.NewTestLogger(t), machine.WithTracer(NewTracer(log.NewTestLogger(t))))
	assert.NoError(t, m.Load([]byte{0x60, 0x01, 0xF1, 0xFF, 0x12, 0x00}))

	for range 3 {
		assert.NoError(t, m.Cycle())
	}
	assert.Equal(t, uint16(0x200), m.PC())
}
