package disasm

import (
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		opcode   uint16
		ins      *chip8.Instruction
		expected string
	}{
		{0x00E0, chip8.Cls, "cls"},
		{0x00EE, chip8.Ret, chip8.Ret.Name},
		{0x1234, chip8.Jp, "jp $234"},
		{0x2300, chip8.Call, "call $300"},
		{0x3234, chip8.Se, "se V2, $34"},
		{0x4A0F, chip8.Sne, chip8.Sne.Name + " VA, $0F"},
		{0x5120, chip8.Se, "se V1, V2"},
		{0x6A42, chip8.Ld, "ld VA, $42"},
		{0x7105, chip8.Add, chip8.Add.Name + " V1, $05"},
		{0x8120, chip8.Ld, "ld V1, V2"},
		{0x8121, chip8.Or, chip8.Or.Name + " V1, V2"},
		{0x8124, chip8.Add, chip8.Add.Name + " V1, V2"},
		{0x8127, chip8.Subn, chip8.Subn.Name + " V1, V2"},
		{0x8126, chip8.Shr, chip8.Shr.Name + " V1"},
		{0x812E, chip8.Shl, chip8.Shl.Name + " V1"},
		{0x9AB0, chip8.Sne, chip8.Sne.Name + " VA, VB"},
		{0xA234, chip8.Ld, "ld I, $234"},
		{0xB300, chip8.Jp, "jp V0, $300"},
		{0xC0FF, chip8.Rnd, chip8.Rnd.Name + " V0, $FF"},
		{0xD125, chip8.Drw, chip8.Drw.Name + " V1, V2, $5"},
		{0xE19E, chip8.Skp, chip8.Skp.Name + " V1"},
		{0xE2A1, chip8.Sknp, chip8.Sknp.Name + " V2"},
		{0xF107, chip8.Ld, "ld V1, DT"},
		{0xF20A, chip8.Ld, "ld V2, K"},
		{0xF315, chip8.Ld, "ld DT, V3"},
		{0xF418, chip8.Ld, "ld ST, V4"},
		{0xF51E, chip8.Add, chip8.Add.Name + " I, V5"},
		{0xF629, chip8.Ld, "ld F, V6"},
		{0xF733, chip8.Ld, "ld B, V7"},
		{0xF855, chip8.Ld, "ld [I], V8"},
		{0xF965, chip8.Ld, "ld V9, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			ins, ok := Decode(tt.opcode)
			assert.True(t, ok)
			assert.Equal(t, tt.ins.Name, ins.Name())
			assert.Equal(t, tt.opcode, ins.Opcode())
			assert.Equal(t, tt.expected, ins.String())
		})
	}
}

func TestDecode_Unknown(t *testing.T) {
	for _, opcode := range []uint16{0xE1AE, 0xF1FF} {
		ins, ok := Decode(opcode)
		assert.False(t, ok)
		assert.Equal(t, "", ins.Name())
		assert.False(t, ins.IsJump())
		assert.False(t, ins.IsSkip())

		_, ok = ins.Target()
		assert.False(t, ok)
	}

	ins, _ := Decode(0xF1FF)
	assert.Equal(t, ".byte $F1, $FF", ins.String())
}

func TestInstruction_ControlFlow(t *testing.T) {
	tests := []struct {
		name      string
		opcode    uint16
		jump      bool
		call      bool
		ret       bool
		skip      bool
		dataRef   bool
		target    uint16
		hasTarget bool
	}{
		{name: "jump", opcode: 0x1208, jump: true, target: 0x208, hasTarget: true},
		{name: "relative jump", opcode: 0xB208, jump: true},
		{name: "call", opcode: 0x2208, call: true, target: 0x208, hasTarget: true},
		{name: "return", opcode: 0x00EE, ret: true},
		{name: "skip equal byte", opcode: 0x3001, skip: true},
		{name: "skip not equal register", opcode: 0x9010, skip: true},
		{name: "skip key", opcode: 0xE09E, skip: true},
		{name: "load index", opcode: 0xA30C, dataRef: true, target: 0x30C, hasTarget: true},
		{name: "load byte", opcode: 0x6001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, ok := Decode(tt.opcode)
			assert.True(t, ok)
			assert.Equal(t, tt.jump, ins.IsJump())
			assert.Equal(t, tt.call, ins.IsCall())
			assert.Equal(t, tt.ret, ins.IsReturn())
			assert.Equal(t, tt.skip, ins.IsSkip())
			assert.Equal(t, tt.dataRef, ins.IsDataReference())

			target, ok := ins.Target()
			assert.Equal(t, tt.hasTarget, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestInstruction_Format_Label(t *testing.T) {
	label := func(address uint16) (string, bool) {
		if address == 0x208 {
			return "loop", true
		}
		return "", false
	}

	ins, _ := Decode(0x1208)
	assert.Equal(t, "jp loop", ins.Format(label))

	ins, _ = Decode(0xA20A)
	assert.Equal(t, "ld I, $20A", ins.Format(label))

	ins, _ = Decode(0x6208)
	assert.Equal(t, "ld V2, $08", ins.Format(label), "immediate bytes are not addresses")
}
