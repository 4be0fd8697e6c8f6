package interpreter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Manu343726/iridium/pkg/vm/instructions"
)

// Kind of event recorded by a trace
type TraceOperation string

const (
	// An instruction was executed
	TraceExecute TraceOperation = "execute"
	// A HLT instruction stopped the machine
	TraceHalt TraceOperation = "halt"
	// An instruction failed
	TraceError TraceOperation = "error"
)

// Trace records one interpreter event
type Trace struct {
	Operation TraceOperation
	// Offset of the opcode byte of the traced instruction
	PC          uint32
	Instruction instructions.Instruction
	Result      string
	Error       error
}

func (t *Trace) resultString() string {
	if t.Error != nil {
		return fmt.Sprintf("error: %v", t.Error.Error())
	} else if len(t.Result) > 0 {
		return fmt.Sprintf("result: %v", t.Result)
	} else {
		return ""
	}
}

func (t *Trace) String() string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("[0x%08X] %v", t.PC, t.Operation))

	if t.Operation != TraceError {
		builder.WriteString(" ")
		builder.WriteString(t.Instruction.String())
	}

	if result := t.resultString(); result != "" {
		builder.WriteString(" ")
		builder.WriteString(result)
	}

	return builder.String()
}

// Tracer receives interpreter events
type Tracer interface {
	SaveTrace(t *Trace)
}

// TracerFunc adapts a function to the Tracer interface
type TracerFunc func(t *Trace)

func (f TracerFunc) SaveTrace(t *Trace) {
	f(t)
}

type multiTracer []Tracer

// MultiTracer returns a tracer forwarding every trace to all the given tracers, in order
func MultiTracer(tracers ...Tracer) Tracer {
	result := make(multiTracer, 0, len(tracers))

	for _, tracer := range tracers {
		if tracer != nil {
			result = append(result, tracer)
		}
	}

	return result
}

func (m multiTracer) SaveTrace(t *Trace) {
	for _, tracer := range m {
		tracer.SaveTrace(t)
	}
}

type logTracer struct {
	logger *slog.Logger
}

// NewLogTracer returns a tracer that writes every trace into a structured logger.
// Executed instructions are logged at debug level, halts at info level and errors at error level
func NewLogTracer(logger *slog.Logger) Tracer {
	return &logTracer{
		logger: logger,
	}
}

func (t *logTracer) SaveTrace(trace *Trace) {
	pc := slog.String("pc", fmt.Sprintf("0x%08X", trace.PC))

	switch trace.Operation {
	case TraceExecute:
		t.logger.LogAttrs(context.Background(), slog.LevelDebug, "execute", pc,
			slog.String("instruction", trace.Instruction.String()),
			slog.String("result", trace.Result))
	case TraceHalt:
		t.logger.LogAttrs(context.Background(), slog.LevelInfo, "halt", pc)
	case TraceError:
		t.logger.LogAttrs(context.Background(), slog.LevelError, "execution error", pc,
			slog.Any("error", trace.Error))
	}
}
