package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const testRate = 100_000

func newMachine(t *testing.T, program ...byte) *machine.Machine {
	t.Helper()
	m := machine.New(log.NewTestLogger(t))
	assert.NoError(t, m.Load(program))
	return m
}

func TestRun_CycleLimit(t *testing.T) {
	// V0 += 1, loop
	m := newMachine(t, 0x70, 0x01, 0x12, 0x00)
	r := New(log.NewTestLogger(t), m, Options{Rate: testRate, Cycles: 10})

	result, err := r.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StopCycleLimit, result.Reason)
	assert.Equal(t, uint64(10), result.Cycles)
	assert.Equal(t, byte(5), result.State.V[0])
}

func TestRun_Breakpoint(t *testing.T) {
	m := newMachine(t,
		0x60, 0x01, // LD V0, 1
		0x61, 0x02, // LD V1, 2
		0x62, 0x03, // LD V2, 3
		0x12, 0x06,
	)
	breakpoints := set.New[uint16]()
	breakpoints.Add(0x204)
	r := New(log.NewTestLogger(t), m, Options{Rate: testRate, Breakpoints: breakpoints})

	result, err := r.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, StopBreakpoint, result.Reason)
	assert.Equal(t, uint64(2), result.Cycles)
	assert.Equal(t, uint16(0x204), result.State.PC)
	assert.Equal(t, byte(2), result.State.V[1])
	assert.Equal(t, byte(0), result.State.V[2], "instruction at the breakpoint is not executed")
}

func TestRun_Fault(t *testing.T) {
	m := newMachine(t, 0x60, 0x01, 0x00, 0xEE)
	r := New(log.NewTestLogger(t), m, Options{Rate: testRate})

	result, err := r.Run(context.Background())
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
	assert.Equal(t, StopFault, result.Reason)
	assert.Equal(t, uint64(1), result.Cycles)
	assert.True(t, m.Halted())
}

func TestRun_Cancelled(t *testing.T) {
	m := newMachine(t, 0x12, 0x00)
	r := New(log.NewTestLogger(t), m, Options{Rate: testRate})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, StopCancelled, result.Reason)
}

func TestRun_Dump(t *testing.T) {
	m := newMachine(t,
		0xA2, 0x08, // LD I, sprite
		0xD0, 0x01, // DRW V0, V0, 1
		0x12, 0x04,
		0x00, 0x00,
		0x80, // sprite
	)
	var buf bytes.Buffer
	r := New(log.NewTestLogger(t), m, Options{Rate: testRate, Cycles: 2, Dump: &buf})

	_, err := r.Run(context.Background())
	assert.NoError(t, err)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "|*"+strings.Repeat(" ", machine.ScreenWidth-1)+"|", lines[1])
}

func TestRun_InvalidRate(t *testing.T) {
	tests := []struct {
		name string
		rate int
	}{
		{name: "zero", rate: 0},
		{name: "negative", rate: -1},
		{name: "sub nanosecond interval", rate: 2_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, 0x12, 0x00)
			r := New(log.NewTestLogger(t), m, Options{Rate: tt.rate, Cycles: 1})

			result, err := r.Run(context.Background())
			assert.ErrorContains(t, err, "invalid rate")
			assert.Equal(t, uint64(0), result.Cycles)
		})
	}
}
