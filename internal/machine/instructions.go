package machine

import "fmt"

// Handlers run after the fetch advanced the program counter, so pc already
// addresses the following instruction. Skips advance it by 2 more.

// clearScreen implements 00E0 CLS.
func (m *Machine) clearScreen(_ opcode) error {
	m.framebuffer.Clear()
	m.drawFlag = true
	return nil
}

// ret implements 00EE RET: pop the return address into pc.
func (m *Machine) ret(_ opcode) error {
	if m.sp == 0 {
		return ErrStackUnderflow
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

// jump implements 1nnn JP addr.
func (m *Machine) jump(op opcode) error {
	m.pc = op.nnn()
	return nil
}

// call implements 2nnn CALL addr: push pc and jump to nnn.
func (m *Machine) call(op opcode) error {
	if int(m.sp) >= StackSize {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, m.sp)
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = op.nnn()
	return nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += 2
	}
}

// skipEqualByte implements 3xkk SE Vx, byte.
func (m *Machine) skipEqualByte(op opcode) error {
	m.skipIf(m.v[op.x()] == op.kk())
	return nil
}

// skipNotEqualByte implements 4xkk SNE Vx, byte.
func (m *Machine) skipNotEqualByte(op opcode) error {
	m.skipIf(m.v[op.x()] != op.kk())
	return nil
}

// skipEqualRegister implements 5xy0 SE Vx, Vy.
func (m *Machine) skipEqualRegister(op opcode) error {
	m.skipIf(m.v[op.x()] == m.v[op.y()])
	return nil
}

// skipNotEqualRegister implements 9xy0 SNE Vx, Vy.
func (m *Machine) skipNotEqualRegister(op opcode) error {
	m.skipIf(m.v[op.x()] != m.v[op.y()])
	return nil
}

// loadByte implements 6xkk LD Vx, byte.
func (m *Machine) loadByte(op opcode) error {
	m.v[op.x()] = op.kk()
	return nil
}

// addByte implements 7xkk ADD Vx, byte. The sum wraps, VF is not affected.
func (m *Machine) addByte(op opcode) error {
	m.v[op.x()] += op.kk()
	return nil
}

// loadRegister implements 8xy0 LD Vx, Vy.
func (m *Machine) loadRegister(op opcode) error {
	m.v[op.x()] = m.v[op.y()]
	return nil
}

// or implements 8xy1 OR Vx, Vy.
func (m *Machine) or(op opcode) error {
	m.v[op.x()] |= m.v[op.y()]
	return nil
}

// and implements 8xy2 AND Vx, Vy.
func (m *Machine) and(op opcode) error {
	m.v[op.x()] &= m.v[op.y()]
	return nil
}

// xor implements 8xy3 XOR Vx, Vy.
func (m *Machine) xor(op opcode) error {
	m.v[op.x()] ^= m.v[op.y()]
	return nil
}

// setFlag writes the flag register. It is always called after the result was
// stored, so the flag wins when the result register is VF.
func (m *Machine) setFlag(set bool) {
	if set {
		m.v[flagRegister] = 1
	} else {
		m.v[flagRegister] = 0
	}
}

// addRegister implements 8xy4 ADD Vx, Vy. VF is set to 1 on carry.
func (m *Machine) addRegister(op opcode) error {
	sum := uint16(m.v[op.x()]) + uint16(m.v[op.y()])
	m.v[op.x()] = byte(sum)
	m.setFlag(sum > 0xFF)
	return nil
}

// sub implements 8xy5 SUB Vx, Vy. VF is set to 1 when Vx >= Vy (no borrow).
func (m *Machine) sub(op opcode) error {
	vx, vy := m.v[op.x()], m.v[op.y()]
	m.v[op.x()] = vx - vy
	m.setFlag(vx >= vy)
	return nil
}

// shiftRight implements 8xy6 SHR Vx. VF receives the bit shifted out.
func (m *Machine) shiftRight(op opcode) error {
	vx := m.v[op.x()]
	m.v[op.x()] = vx >> 1
	m.setFlag(vx&0x01 != 0)
	return nil
}

// subReverse implements 8xy7 SUBN Vx, Vy. VF is set to 1 when Vy >= Vx.
func (m *Machine) subReverse(op opcode) error {
	vx, vy := m.v[op.x()], m.v[op.y()]
	m.v[op.x()] = vy - vx
	m.setFlag(vy >= vx)
	return nil
}

// shiftLeft implements 8xyE SHL Vx. VF receives the bit shifted out.
func (m *Machine) shiftLeft(op opcode) error {
	vx := m.v[op.x()]
	m.v[op.x()] = vx << 1
	m.setFlag(vx&0x80 != 0)
	return nil
}

// loadIndex implements Annn LD I, addr.
func (m *Machine) loadIndex(op opcode) error {
	m.i = op.nnn()
	return nil
}

// jumpOffset implements Bnnn JP V0, addr.
func (m *Machine) jumpOffset(op opcode) error {
	m.pc = op.nnn() + uint16(m.v[0])
	return nil
}

// randomByte implements Cxkk RND Vx, byte.
func (m *Machine) randomByte(op opcode) error {
	m.v[op.x()] = m.random() & op.kk()
	return nil
}

// draw implements Dxyn DRW Vx, Vy, nibble. VF is set to 1 if any pixel was
// erased by the sprite.
func (m *Machine) draw(op opcode) error {
	collision, err := m.drawSprite(m.v[op.x()], m.v[op.y()], op.n())
	if err != nil {
		return err
	}
	m.setFlag(collision)
	return nil
}

// skipKeyPressed implements Ex9E SKP Vx. Only the low nibble of Vx selects the key.
func (m *Machine) skipKeyPressed(op opcode) error {
	m.skipIf(m.keypad[m.v[op.x()]&0xF])
	return nil
}

// skipKeyNotPressed implements ExA1 SKNP Vx.
func (m *Machine) skipKeyNotPressed(op opcode) error {
	m.skipIf(!m.keypad[m.v[op.x()]&0xF])
	return nil
}

// loadDelayTimer implements Fx07 LD Vx, DT.
func (m *Machine) loadDelayTimer(op opcode) error {
	m.v[op.x()] = m.delayTimer
	return nil
}

// waitKey implements Fx0A LD Vx, K. Without a pressed key the instruction is
// repeated in the next cycle, with several pressed keys the lowest one wins.
func (m *Machine) waitKey(op opcode) error {
	key, ok := m.keypad.firstPressed()
	if !ok {
		m.pc -= 2
		return nil
	}
	m.v[op.x()] = key
	return nil
}

// setDelayTimer implements Fx15 LD DT, Vx.
func (m *Machine) setDelayTimer(op opcode) error {
	m.delayTimer = m.v[op.x()]
	return nil
}

// setSoundTimer implements Fx18 LD ST, Vx.
func (m *Machine) setSoundTimer(op opcode) error {
	m.soundTimer = m.v[op.x()]
	return nil
}

// addIndex implements Fx1E ADD I, Vx. The flag register is not affected.
func (m *Machine) addIndex(op opcode) error {
	m.i += uint16(m.v[op.x()])
	return nil
}

// loadFont implements Fx29 LD F, Vx.
func (m *Machine) loadFont(op opcode) error {
	m.i = FontStart + FontGlyphSize*uint16(m.v[op.x()])
	return nil
}

// storeBCD implements Fx33 LD B, Vx: hundreds, tens and ones of Vx are
// written to I, I+1 and I+2.
func (m *Machine) storeBCD(op opcode) error {
	if err := checkRange(m.i, 3); err != nil {
		return err
	}
	value := m.v[op.x()]
	m.memory[m.i] = value / 100
	m.memory[m.i+1] = value / 10 % 10
	m.memory[m.i+2] = value % 10
	return nil
}

// storeRegisters implements Fx55 LD [I], Vx. I is left unchanged.
func (m *Machine) storeRegisters(op opcode) error {
	count := int(op.x()) + 1
	if err := checkRange(m.i, count); err != nil {
		return err
	}
	copy(m.memory[m.i:int(m.i)+count], m.v[:count])
	return nil
}

// loadRegisters implements Fx65 LD Vx, [I]. I is left unchanged.
func (m *Machine) loadRegisters(op opcode) error {
	count := int(op.x()) + 1
	if err := checkRange(m.i, count); err != nil {
		return err
	}
	copy(m.v[:count], m.memory[m.i:int(m.i)+count])
	return nil
}
