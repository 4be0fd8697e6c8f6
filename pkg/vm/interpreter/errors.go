package interpreter

import (
	"errors"
	"fmt"

	"github.com/Manu343726/iridium/pkg/vm/instructions"
)

var (
	ErrDivisionByZero     = errors.New("division by zero")
	ErrRegisterOutOfRange = errors.New("register index out of range")
	ErrTruncatedProgram   = errors.New("truncated program")
)

// ExecutionError reports a fatal error raised while executing the instruction at PC.
//
// The machine state is left exactly as it was before the faulting instruction, so PC
// still points to its opcode byte.
type ExecutionError struct {
	// Offset of the opcode byte of the faulting instruction
	PC uint32
	// Opcode of the faulting instruction. Not meaningful if Err is an illegal opcode error
	OpCode instructions.OpCode
	// Underlying error (ErrDivisionByZero, ErrRegisterOutOfRange, ErrTruncatedProgram or instructions.ErrIllegalOpCode)
	Err error
}

func (e *ExecutionError) Error() string {
	if errors.Is(e.Err, instructions.ErrIllegalOpCode) {
		return fmt.Sprintf("error decoding instruction at 0x%08X: %v", e.PC, e.Err)
	}

	return fmt.Sprintf("error executing %v at 0x%08X: %v", e.OpCode, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
