package machine

import "github.com/retroenv/retrogolib/log"

// opcode is a single 16-bit instruction word.
type opcode uint16

// family returns the top nibble that selects the first-level table entry.
func (o opcode) family() uint16 { return uint16(o) >> 12 }

// x returns the register index in bits 8-11.
func (o opcode) x() uint8 { return uint8(o>>8) & 0xF }

// y returns the register index in bits 4-7.
func (o opcode) y() uint8 { return uint8(o>>4) & 0xF }

// kk returns the low byte.
func (o opcode) kk() byte { return byte(o) }

// nnn returns the 12-bit address.
func (o opcode) nnn() uint16 { return uint16(o) & 0xFFF }

// n returns the low nibble.
func (o opcode) n() uint8 { return uint8(o) & 0xF }

// handler executes one decoded instruction against the machine state.
type handler func(m *Machine, op opcode) error

// table maps the top nibble of an opcode to its handler. The families 0, 8,
// E and F resolve through a second-level table.
var table = [16]handler{
	0x0: dispatchSystem,
	0x1: (*Machine).jump,
	0x2: (*Machine).call,
	0x3: (*Machine).skipEqualByte,
	0x4: (*Machine).skipNotEqualByte,
	0x5: dispatchRegisterSkip(false),
	0x6: (*Machine).loadByte,
	0x7: (*Machine).addByte,
	0x8: dispatchArithmetic,
	0x9: dispatchRegisterSkip(true),
	0xA: (*Machine).loadIndex,
	0xB: (*Machine).jumpOffset,
	0xC: (*Machine).randomByte,
	0xD: (*Machine).draw,
	0xE: dispatchKey,
	0xF: dispatchMisc,
}

// Second-level tables. Every slot without an instruction holds noop.
var (
	// tableSystem is indexed by the low byte of 00kk opcodes.
	tableSystem = newTable256(map[int]handler{
		0xE0: (*Machine).clearScreen,
		0xEE: (*Machine).ret,
	})

	// tableArithmetic is indexed by the low nibble of 8xyn opcodes.
	tableArithmetic = newTable16(map[int]handler{
		0x0: (*Machine).loadRegister,
		0x1: (*Machine).or,
		0x2: (*Machine).and,
		0x3: (*Machine).xor,
		0x4: (*Machine).addRegister,
		0x5: (*Machine).sub,
		0x6: (*Machine).shiftRight,
		0x7: (*Machine).subReverse,
		0xE: (*Machine).shiftLeft,
	})

	// tableKey is indexed by the low byte of Exkk opcodes.
	tableKey = newTable256(map[int]handler{
		0x9E: (*Machine).skipKeyPressed,
		0xA1: (*Machine).skipKeyNotPressed,
	})

	// tableMisc is indexed by the low byte of Fxkk opcodes.
	tableMisc = newTable256(map[int]handler{
		0x07: (*Machine).loadDelayTimer,
		0x0A: (*Machine).waitKey,
		0x15: (*Machine).setDelayTimer,
		0x18: (*Machine).setSoundTimer,
		0x1E: (*Machine).addIndex,
		0x29: (*Machine).loadFont,
		0x33: (*Machine).storeBCD,
		0x55: (*Machine).storeRegisters,
		0x65: (*Machine).loadRegisters,
	})
)

// newTable16 returns a table with all slots defaulting to noop and the
// passed handlers set.
func newTable16(handlers map[int]handler) [16]handler {
	var t [16]handler
	for i := range t {
		t[i] = noop
	}
	for key, h := range handlers {
		t[key] = h
	}
	return t
}

func newTable256(handlers map[int]handler) [256]handler {
	var t [256]handler
	for i := range t {
		t[i] = noop
	}
	for key, h := range handlers {
		t[key] = h
	}
	return t
}

func dispatch(m *Machine, op opcode) error {
	return table[op.family()](m, op)
}

// dispatchSystem resolves 0nnn opcodes. Only 00E0 and 00EE are instructions,
// machine code calls (0nnn with a nonzero high nibble) are ignored.
func dispatchSystem(m *Machine, op opcode) error {
	if op.x() != 0 {
		return noop(m, op)
	}
	return tableSystem[op.kk()](m, op)
}

func dispatchArithmetic(m *Machine, op opcode) error {
	return tableArithmetic[op.n()](m, op)
}

func dispatchKey(m *Machine, op opcode) error {
	return tableKey[op.kk()](m, op)
}

func dispatchMisc(m *Machine, op opcode) error {
	return tableMisc[op.kk()](m, op)
}

// dispatchRegisterSkip returns the handler for 5xy0 and 9xy0, opcodes with a
// nonzero low nibble are not instructions.
func dispatchRegisterSkip(notEqual bool) handler {
	return func(m *Machine, op opcode) error {
		if op.n() != 0 {
			return noop(m, op)
		}
		if notEqual {
			return m.skipNotEqualRegister(op)
		}
		return m.skipEqualRegister(op)
	}
}

// noop handles opcodes that do not resolve to an instruction. The program
// counter was already advanced by the fetch, so execution continues with the
// next instruction.
func noop(m *Machine, op opcode) error {
	m.logger.Debug("Unknown opcode",
		log.Hex("opcode", uint16(op)),
		log.Hex("pc", m.pc-2))
	return nil
}
