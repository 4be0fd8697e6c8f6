package instructions

import (
	"fmt"
)

// Contains information about an instruction operand
type OperandDescriptor struct {
	// Type of operand
	Kind OperandKind
	// Role the operand takes in the instruction
	Role OperandRole
	// Short operand name (for documentation and debugging)
	Name string
	// First byte within the instruction used to encode this operand. Filled automatically from the operand order if zero
	EncodingPosition int
	// Operand description (for documentation and debugging)
	Description string
	// Position within the set of operands of the instruction, indexed from 0 to total operands - 1
	Index int
}

// Returns true if the operand is a register operand
func (o *OperandDescriptor) IsRegister() bool {
	return o.Kind == OperandKind_Register
}

// Returns true if the operand is an immediate operand
func (o *OperandDescriptor) IsImmediate() bool {
	return o.Kind == OperandKind_Immediate16
}

// Total bytes used to encode the value into the instruction
func (o *OperandDescriptor) EncodingBytes() int {
	return o.Kind.EncodingBytes()
}

// Returns an human readable string describing the operand
func (o *OperandDescriptor) String() string {
	return fmt.Sprintf("<%v:%v:%v>", o.Name, o.Role, o.Kind)
}

// Reads the operand value from the encoded bytes of an instruction
func (o *OperandDescriptor) Value(record [InstructionBytes]byte) uint16 {
	if o.IsImmediate() {
		return uint16(record[o.EncodingPosition])<<8 | uint16(record[o.EncodingPosition+1])
	}

	return uint16(record[o.EncodingPosition])
}

// Formats an operand value in assembly syntax
func (o *OperandDescriptor) Format(value uint16) string {
	if o.IsRegister() {
		return fmt.Sprintf("r%d", value)
	}

	return fmt.Sprintf("#%d", value)
}
