package instructions

import "errors"

var (
	ErrIllegalOpCode             = errors.New("illegal opcode")
	ErrInstructionNotImplemented = errors.New("instruction not implemented")
	ErrInvalidInstruction        = errors.New("invalid instruction")
	ErrTruncatedInstruction      = errors.New("truncated instruction")
	ErrInvalidInstructionsLayout = errors.New("invalid instruction layout")
)
