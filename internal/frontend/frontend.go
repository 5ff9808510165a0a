// Package frontend runs a machine in a window, with the host keyboard mapped
// to the keypad.
//
// Every frame executes rate/60 cycles. The delay and sound timers count down
// once per cycle, so at the default rate of 540 they run at 540 Hz instead of
// the 60 Hz of the original hardware.
package frontend

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

// keyMap maps the left side of a QWERTY keyboard to the hex keypad:
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keyMap = map[ebiten.Key]byte{
	ebiten.Key1: 0x1,
	ebiten.Key2: 0x2,
	ebiten.Key3: 0x3,
	ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4,
	ebiten.KeyW: 0x5,
	ebiten.KeyE: 0x6,
	ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7,
	ebiten.KeyS: 0x8,
	ebiten.KeyD: 0x9,
	ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA,
	ebiten.KeyX: 0x0,
	ebiten.KeyC: 0xB,
	ebiten.KeyV: 0xF,
}

// Options controls the window.
type Options struct {
	Rate  int // cycles per second
	Scale int // window pixels per display pixel
	Title string
}

// Game implements ebiten.Game for a machine.
type Game struct {
	ctx     context.Context
	logger  *log.Logger
	machine *machine.Machine

	cyclesPerFrame int
	pressedKeys    func(keys []ebiten.Key) []ebiten.Key
	keys           []ebiten.Key

	pixels  []byte
	display *ebiten.Image
	sound   bool
}

// NewGame returns a game that executes rate cycles per second. Update stops
// the game loop once ctx is cancelled.
func NewGame(ctx context.Context, logger *log.Logger, m *machine.Machine, rate int) *Game {
	return &Game{
		ctx:            ctx,
		logger:         logger,
		machine:        m,
		cyclesPerFrame: max(1, rate/ebiten.DefaultTPS),
		pressedKeys:    inpututil.AppendPressedKeys,
		pixels:         make([]byte, 4*machine.ScreenWidth*machine.ScreenHeight),
	}
}

// Run opens the window and runs the game loop until the window is closed, ctx
// is cancelled or the machine faults.
func Run(ctx context.Context, logger *log.Logger, m *machine.Machine, options Options) error {
	ebiten.SetWindowSize(machine.ScreenWidth*options.Scale, machine.ScreenHeight*options.Scale)
	ebiten.SetWindowTitle(options.Title)

	game := NewGame(ctx, logger, m, options.Rate)
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("running game loop: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("running game loop: %w", err)
	}
	return nil
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	g.keys = g.pressedKeys(g.keys[:0])
	g.machine.SetKeypad(keypadState(g.keys))

	for range g.cyclesPerFrame {
		if err := g.machine.Cycle(); err != nil {
			return fmt.Errorf("running machine: %w", err)
		}
	}

	g.updateSound()
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	redraw := g.machine.DrawFlag()
	if g.display == nil {
		g.display = ebiten.NewImage(machine.ScreenWidth, machine.ScreenHeight)
		redraw = true
	}
	if redraw {
		renderPixels(g.pixels, g.machine.Framebuffer())
		g.display.WritePixels(g.pixels)
	}
	screen.DrawImage(g.display, nil)
}

// Layout implements ebiten.Game, the screen has the native display resolution.
func (g *Game) Layout(_, _ int) (int, int) {
	return machine.ScreenWidth, machine.ScreenHeight
}

func (g *Game) updateSound() {
	active := g.machine.SoundActive()
	if active == g.sound {
		return
	}
	g.sound = active
	if active {
		g.logger.Debug("Sound on")
	} else {
		g.logger.Debug("Sound off")
	}
}

// keypadState returns the keypad with all mapped keys pressed.
func keypadState(keys []ebiten.Key) machine.Keypad {
	var keypad machine.Keypad
	for _, key := range keys {
		if index, ok := keyMap[key]; ok {
			keypad[index] = true
		}
	}
	return keypad
}

// renderPixels converts the framebuffer into RGBA pixels, lit pixels are white.
func renderPixels(pixels []byte, framebuffer *machine.Framebuffer) {
	for y := range machine.ScreenHeight {
		for x := range machine.ScreenWidth {
			var value byte
			if framebuffer.Pixel(x, y) {
				value = 0xFF
			}
			offset := 4 * (y*machine.ScreenWidth + x)
			pixels[offset] = value
			pixels[offset+1] = value
			pixels[offset+2] = value
			pixels[offset+3] = 0xFF
		}
	}
}
