package instructions

import (
	"fmt"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
)

// Contains information describing an instruction
type InstructionDescriptor struct {
	// Instruction opcode
	OpCode *OpCodeDescriptor
	// Instruction operands
	Operands []*OperandDescriptor
	// Instruction description (for documentation and debugging)
	Description string
}

// Returns a human readable string representation of the instruction
func (d *InstructionDescriptor) String() string {
	var builder strings.Builder

	builder.WriteString(d.OpCode.Mnemonic)

	for _, operand := range d.Operands {
		builder.WriteString(" ")
		builder.WriteString(operand.String())
	}

	return builder.String()
}

// Returns the number of bytes used by the opcode and operands of the instruction.
// The rest of the instruction record up to InstructionBytes is padding
func (d *InstructionDescriptor) UsedBytes() int {
	used := d.OpCode.EncodingBytes()

	for _, operand := range d.Operands {
		used += operand.EncodingBytes()
	}

	return used
}

// Returns the fields of the instruction record, in byte units
func (d *InstructionDescriptor) layout(opcodeName string, operandName func(*OperandDescriptor) string) []utils.RecordField {
	fields := []utils.RecordField{
		{
			Name:   opcodeName,
			Offset: d.OpCode.EncodingPosition(),
			Size:   d.OpCode.EncodingBytes(),
		},
	}

	return append(fields, utils.Map(d.Operands, func(op *OperandDescriptor) utils.RecordField {
		return utils.RecordField{
			Name:   operandName(op),
			Offset: op.EncodingPosition,
			Size:   op.EncodingBytes(),
		}
	})...)
}

// Returns full documentation for the instruction
func (d *InstructionDescriptor) Documentation(leftpad int) (string, error) {
	var builder strings.Builder
	leftpad_str := strings.Repeat(" ", leftpad)

	builder.WriteString(leftpad_str)
	builder.WriteString(fmt.Sprintf("%v\n\n", d))

	leftpad_str += "  "
	leftpad += 2

	builder.WriteString(leftpad_str)
	builder.WriteString("Description:\n\n  ")
	builder.WriteString(leftpad_str)
	builder.WriteString(d.Description)
	builder.WriteString("\n\n")
	builder.WriteString(leftpad_str)
	builder.WriteString("Memory layout:\n\n")

	fields := d.layout(utils.FormatUintHex(d.OpCode.BinaryRepresentation, 2), func(op *OperandDescriptor) string { return op.Name })

	recordLayout, err := utils.RecordLayout(fields, InstructionBytes, leftpad+2)
	if err != nil {
		return "", fmt.Errorf("error generating documentation for instruction %s: %w", d.OpCode.Mnemonic, err)
	}

	builder.WriteString(recordLayout)
	builder.WriteString("\n")
	builder.WriteString(leftpad_str)
	builder.WriteString("Operands:\n\n")

	if len(d.Operands) > 0 {
		for i, operand := range d.Operands {
			builder.WriteString(leftpad_str)
			builder.WriteString(fmt.Sprintf(" [%v] %v: %v\n", i, operand, operand.Description))
		}
	} else {
		builder.WriteString(leftpad_str)
		builder.WriteString("  (none)\n")
	}

	return builder.String(), nil
}
