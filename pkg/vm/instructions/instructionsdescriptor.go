package instructions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
)

// Number of bytes used to encode any instruction
const InstructionBytes = 4

// Constains information about all implemented instructions
type InstructionsDescriptor struct {
	instructions map[OpCode]*InstructionDescriptor
}

// Returns all implemented instructions, sorted by opcode
func (d *InstructionsDescriptor) AllInstructions() []*InstructionDescriptor {
	all := make([]*InstructionDescriptor, 0, len(d.instructions))

	for _, instruction := range d.instructions {
		all = append(all, instruction)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].OpCode.OpCode < all[j].OpCode.OpCode
	})

	return all
}

// Returns the instruction corresponding to the given opcode
func (d *InstructionsDescriptor) Instruction(op OpCode) (*InstructionDescriptor, error) {
	if instruction, hasInstruction := d.instructions[op]; hasInstruction {
		return instruction, nil
	} else {
		return nil, utils.MakeError(ErrInstructionNotImplemented, "no instruction implemented for opcode '%v'", op)
	}
}

// Returns the number of bytes required to encode a machine instruction
func (d *InstructionsDescriptor) InstructionBytes() int {
	return InstructionBytes
}

func fixInstructionOperands(instr *InstructionDescriptor) error {
	currentEncodingPosition := instr.OpCode.EncodingBytes()

	for i, operand := range instr.Operands {
		operand.Index = i

		if operand.EncodingPosition == 0 {
			operand.EncodingPosition = currentEncodingPosition
		} else if operand.EncodingPosition < currentEncodingPosition {
			return utils.MakeError(ErrInvalidInstructionsLayout, "operand %v of instruction %s has invalid encoding position %v (overlaps with previous operand or the instruction opcode)", operand, instr.OpCode.Mnemonic, operand.EncodingPosition)
		}

		currentEncodingPosition = operand.EncodingPosition + operand.EncodingBytes()
	}

	if currentEncodingPosition > InstructionBytes {
		return utils.MakeError(ErrInvalidInstructionsLayout, "instruction '%v' requires %v bytes for encoding, instructions should fit in %v bytes", instr, currentEncodingPosition, InstructionBytes)
	}

	return nil
}

// Initializes an instructions descriptor with all the given instructions
func NewInstructionsDescriptor(instructions []*InstructionDescriptor) InstructionsDescriptor {
	d := InstructionsDescriptor{
		instructions: make(map[OpCode]*InstructionDescriptor, len(instructions)),
	}

	for _, instr := range instructions {
		if err := fixInstructionOperands(instr); err != nil {
			panic(err)
		}

		d.instructions[instr.OpCode.OpCode] = instr
	}

	for _, opCode := range Opcodes.AllOpCodes() {
		if _, implemented := d.instructions[opCode.OpCode]; !implemented {
			panic(fmt.Errorf("missing instruction descriptor for opcode %v", opCode.Mnemonic))
		}
	}

	return d
}

// Decodes an instruction from its binary representation
func (d *InstructionsDescriptor) Decode(record [InstructionBytes]byte) (Instruction, error) {
	opCode, err := Opcodes.DecodeOpCode(record[0])
	if err != nil {
		return Instruction{}, err
	}

	return NewInstruction(opCode, record[1], record[2], record[3]), nil
}

// Returns the reference documentation of the instruction set
func (d *InstructionsDescriptor) DocString() (string, error) {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Iridium instruction set\n\nEvery instruction is encoded in %v bytes, opcode first. Immediates are big-endian.\n\n", InstructionBytes))
	builder.WriteString("Opcodes:\n\n")

	for _, opCode := range Opcodes.AllOpCodes() {
		builder.WriteString(fmt.Sprintf("  %v  %v\n", utils.FormatUintHex(opCode.BinaryRepresentation, 2), opCode.Mnemonic))
	}

	builder.WriteString("\nInstructions:\n\n")

	for _, instr := range d.AllInstructions() {
		doc, err := instr.Documentation(2)
		if err != nil {
			return "", err
		}

		builder.WriteString(doc)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
