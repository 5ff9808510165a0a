package disasm

import (
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
)

var _ machine.Tracer = (*Tracer)(nil)

// Tracer logs every instruction executed by a machine.
type Tracer struct {
	logger *log.Logger
}

// NewTracer returns a tracer that logs to the given logger.
func NewTracer(logger *log.Logger) *Tracer {
	return &Tracer{logger: logger}
}

// Trace implements machine.Tracer.
func (t *Tracer) Trace(pc, opcode uint16) {
	ins, _ := Decode(opcode)
	t.logger.Info("Execute",
		log.Hex("pc", pc),
		log.Hex("opcode", ins.Opcode()),
		log.String("instruction", ins.String()))
}
