package machine

import (
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"
)

// Register file and stack dimensions.
const (
	RegisterCount = 16
	StackSize     = 16

	flagRegister = 0xF
)

// Machine is a CHIP-8 virtual machine.
type Machine struct {
	logger *log.Logger
	tracer Tracer
	random func() byte

	memory [MemorySize]byte
	v      [RegisterCount]byte // V0-VF, VF is the flag register
	i      uint16              // index register
	pc     uint16              // program counter

	stack [StackSize]uint16
	sp    uint8

	delayTimer byte
	soundTimer byte

	framebuffer Framebuffer
	keypad      Keypad
	drawFlag    bool

	fault error // set once a fault halted the machine
}

// Tracer receives every instruction right before it is executed.
type Tracer interface {
	Trace(pc, opcode uint16)
}

// Option configures a Machine.
type Option func(*Machine)

// WithRandom sets the source of random bytes used by the RND instruction.
func WithRandom(random func() byte) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// WithSeed makes the RND instruction reproducible by seeding its generator.
func WithSeed(seed uint64) Option {
	return func(m *Machine) {
		rng := rand.New(rand.NewPCG(seed, seed))
		m.random = func() byte {
			return byte(rng.UintN(256))
		}
	}
}

// WithTracer sets a tracer that is called for every executed instruction.
func WithTracer(tracer Tracer) Option {
	return func(m *Machine) {
		m.tracer = tracer
	}
}

// New returns a machine in its power-on state, ready to load a program.
func New(logger *log.Logger, opts ...Option) *Machine {
	m := &Machine{
		logger: logger,
		random: func() byte {
			return byte(rand.UintN(256))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset restores the power-on state: all memory, registers, stack, timers,
// framebuffer and keypad are zeroed, the font is written to FontStart and the
// program counter is set to ProgramStart.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	copy(m.memory[FontStart:], fontSet[:])

	m.v = [RegisterCount]byte{}
	m.i = 0
	m.pc = ProgramStart
	m.stack = [StackSize]uint16{}
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.framebuffer.Clear()
	m.keypad = Keypad{}
	m.drawFlag = true
	m.fault = nil
}

// Load resets the machine and copies the program image to ProgramStart.
// Programs that do not fit into memory are rejected without changing any state.
func (m *Machine) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	m.Reset()
	copy(m.memory[ProgramStart:], program)

	m.logger.Debug("Program loaded",
		log.Int("size", len(program)),
		log.Hex("address", uint16(ProgramStart)))
	return nil
}

// Cycle executes a single instruction and decrements the timers.
// Unknown opcodes are skipped. A returned error is always a *Fault, or
// ErrHalted if the machine faulted in an earlier cycle.
func (m *Machine) Cycle() error {
	if m.fault != nil {
		return fmt.Errorf("%w: %w", ErrHalted, m.fault)
	}

	pc := m.pc
	op, err := m.fetch()
	if err != nil {
		return m.halt(pc, 0, err)
	}
	m.pc += 2

	if m.tracer != nil {
		m.tracer.Trace(pc, uint16(op))
	}

	if err := dispatch(m, op); err != nil {
		return m.halt(pc, op, err)
	}

	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
	return nil
}

// halt records a fault, the machine refuses to execute until it is reset.
// Reporting the fault is left to the caller.
func (m *Machine) halt(pc uint16, op opcode, err error) error {
	fault := &Fault{
		PC:     pc,
		Opcode: uint16(op),
		Err:    err,
	}
	m.fault = fault
	m.logger.Debug("Machine halted",
		log.Hex("pc", pc),
		log.Hex("opcode", uint16(op)),
		log.Err(err))
	return fault
}

// SetKey sets the pressed state of a key, keys outside of 0-F are ignored.
func (m *Machine) SetKey(key uint8, pressed bool) {
	if key < KeyCount {
		m.keypad[key] = pressed
	}
}

// SetKeypad replaces the state of all keys.
func (m *Machine) SetKeypad(keys Keypad) {
	m.keypad = keys
}

// Keypad returns the current key states.
func (m *Machine) Keypad() Keypad {
	return m.keypad
}

// Framebuffer returns the screen contents.
// The returned pointer must not be used while Cycle is running.
func (m *Machine) Framebuffer() *Framebuffer {
	return &m.framebuffer
}

// DrawFlag returns whether the framebuffer changed since the last call and
// resets the flag.
func (m *Machine) DrawFlag() bool {
	flag := m.drawFlag
	m.drawFlag = false
	return flag
}

// DelayTimer returns the current value of the delay timer.
func (m *Machine) DelayTimer() byte {
	return m.delayTimer
}

// SoundTimer returns the current value of the sound timer.
func (m *Machine) SoundTimer() byte {
	return m.soundTimer
}

// SoundActive returns whether the buzzer should currently sound.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}

// Halted returns whether a fault stopped the machine.
func (m *Machine) Halted() bool {
	return m.fault != nil
}

// State is a read-only snapshot of the machine registers.
type State struct {
	PC         uint16
	I          uint16
	SP         uint8
	V          [RegisterCount]byte
	DelayTimer byte
	SoundTimer byte
	Stack      []uint16 // active return addresses, oldest first
}

// PC returns the address of the next instruction.
func (m *Machine) PC() uint16 {
	return m.pc
}

// Snapshot returns a copy of the current register state.
func (m *Machine) Snapshot() State {
	stack := make([]uint16, m.sp)
	copy(stack, m.stack[:m.sp])

	return State{
		PC:         m.pc,
		I:          m.i,
		SP:         m.sp,
		V:          m.v,
		DelayTimer: m.delayTimer,
		SoundTimer: m.soundTimer,
		Stack:      stack,
	}
}
