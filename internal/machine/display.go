package machine

import "strings"

// Screen dimensions in pixels.
const (
	ScreenWidth  = 64
	ScreenHeight = 32
)

const (
	pixelOff byte = 0x00
	pixelOn  byte = 0xFF
)

// Framebuffer is the 64x32 monochrome screen in row-major order with the origin
// at the top-left corner. Every cell is either all 0s or all 1s.
type Framebuffer [ScreenWidth * ScreenHeight]byte

// Pixel returns whether the pixel at the given coordinates is set.
// Coordinates outside of the screen are reported as unset.
func (f *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return f[y*ScreenWidth+x] == pixelOn
}

// Clear unsets all pixels.
func (f *Framebuffer) Clear() {
	for i := range f {
		f[i] = pixelOff
	}
}

// String renders the framebuffer as text framed by a border, set pixels are
// shown as '*'.
func (f *Framebuffer) String() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", ScreenWidth) + "+\n"

	sb.WriteString(border)
	for y := range ScreenHeight {
		sb.WriteByte('|')
		for x := range ScreenWidth {
			if f.Pixel(x, y) {
				sb.WriteByte('*')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// KeyCount is the number of keys on the CHIP-8 hexadecimal keypad.
const KeyCount = 16

// Keypad holds the pressed state of the keys 0-F.
type Keypad [KeyCount]bool

// firstPressed returns the lowest pressed key index.
func (k *Keypad) firstPressed() (byte, bool) {
	for i, pressed := range k {
		if pressed {
			return byte(i), true
		}
	}
	return 0, false
}

// drawSprite XOR-blits the n byte sprite stored at the index register onto the
// framebuffer at (x mod 64, y mod 32). Every pixel wraps around the screen
// edges individually. It returns whether any set pixel was cleared.
func (m *Machine) drawSprite(x, y byte, n uint8) (bool, error) {
	if err := checkRange(m.i, int(n)); err != nil {
		return false, err
	}

	originX := int(x) % ScreenWidth
	originY := int(y) % ScreenHeight
	collision := false

	for row := range int(n) {
		data := m.memory[int(m.i)+row]
		screenY := (originY + row) % ScreenHeight

		for col := range 8 {
			if data&(0x80>>col) == 0 {
				continue
			}

			screenX := (originX + col) % ScreenWidth
			cell := &m.framebuffer[screenY*ScreenWidth+screenX]
			if *cell == pixelOn {
				collision = true
			}
			*cell ^= pixelOn
		}
	}

	m.drawFlag = true
	return collision, nil
}
