package instructions

import (
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
)

// A fixed width instruction record: one opcode byte followed by three operand bytes.
//
// Operand bytes are opaque at this level. Their meaning (register index, or the high and low
// halves of a 16 bit immediate) depends on the opcode, see the instruction descriptors.
type Instruction struct {
	OpCode OpCode
	Byte1  uint8
	Byte2  uint8
	Byte3  uint8
}

func NewInstruction(opCode OpCode, byte1 uint8, byte2 uint8, byte3 uint8) Instruction {
	return Instruction{
		OpCode: opCode,
		Byte1:  byte1,
		Byte2:  byte2,
		Byte3:  byte3,
	}
}

func Hlt() Instruction {
	return NewInstruction(OpCode_HLT, 0, 0, 0)
}

// Returns a LOAD instruction. The immediate is encoded most significant byte first
func Load(dst uint8, immediate uint16) Instruction {
	return NewInstruction(OpCode_LOAD, dst, uint8(immediate>>8), uint8(immediate))
}

func Add(lhs uint8, rhs uint8, dst uint8) Instruction {
	return NewInstruction(OpCode_ADD, lhs, rhs, dst)
}

func Sub(lhs uint8, rhs uint8, dst uint8) Instruction {
	return NewInstruction(OpCode_SUB, lhs, rhs, dst)
}

func Mul(lhs uint8, rhs uint8, dst uint8) Instruction {
	return NewInstruction(OpCode_MUL, lhs, rhs, dst)
}

func Div(lhs uint8, rhs uint8, dst uint8) Instruction {
	return NewInstruction(OpCode_DIV, lhs, rhs, dst)
}

// Returns a GT instruction jumping to the offset stored in the target register when lhs > rhs
func Gt(lhs uint8, rhs uint8, target uint8) Instruction {
	return NewInstruction(OpCode_GT, lhs, rhs, target)
}

// Returns the binary representation of the instruction
func (instr Instruction) Bytes() [InstructionBytes]byte {
	return [InstructionBytes]byte{Opcodes.EncodeOpCode(instr.OpCode), instr.Byte1, instr.Byte2, instr.Byte3}
}

// Returns the descriptor of the instruction opcode
func (instr Instruction) Descriptor() (*InstructionDescriptor, error) {
	return Instructions.Instruction(instr.OpCode)
}

// Returns the values of the instruction operands, as described by the instruction descriptor
func (instr Instruction) OperandValues() ([]uint16, error) {
	descriptor, err := instr.Descriptor()
	if err != nil {
		return nil, err
	}

	record := instr.Bytes()

	return utils.Map(descriptor.Operands, func(op *OperandDescriptor) uint16 {
		return op.Value(record)
	}), nil
}

// Returns the instruction in assembly syntax, like "LOAD r1, #500"
func (instr Instruction) String() string {
	descriptor, err := instr.Descriptor()
	if err != nil {
		record := instr.Bytes()
		return ".byte " + utils.FormatSlice(utils.Map(record[:], func(b byte) string { return utils.FormatUintHex(b, 2) }), ", ")
	}

	record := instr.Bytes()
	operands := utils.Map(descriptor.Operands, func(op *OperandDescriptor) string {
		return op.Format(op.Value(record))
	})

	if len(operands) == 0 {
		return descriptor.OpCode.Mnemonic
	}

	return descriptor.OpCode.Mnemonic + " " + strings.Join(operands, ", ")
}

// Draws the instruction record, showing the opcode and the value of each operand
func (instr Instruction) PrettyPrint(leftpad int) (string, error) {
	descriptor, err := instr.Descriptor()
	if err != nil {
		return "", err
	}

	record := instr.Bytes()
	fields := descriptor.layout(descriptor.OpCode.Mnemonic, func(op *OperandDescriptor) string {
		return op.Name + " " + op.Format(op.Value(record))
	})

	return utils.RecordLayout(fields, InstructionBytes, leftpad)
}

// Encodes a sequence of instructions into a program.
//
// Each instruction is encoded as exactly InstructionBytes bytes, opcode first, with no
// header, padding or separators between instructions
func Encode(instructions []Instruction) []byte {
	program := make([]byte, 0, len(instructions)*InstructionBytes)

	for _, instr := range instructions {
		record := instr.Bytes()
		program = append(program, record[:]...)
	}

	return program
}

// Decodes the instruction encoded at the beginning of the given bytes
func DecodeInstruction(binaryRepresentation []byte) (Instruction, error) {
	if len(binaryRepresentation) < InstructionBytes {
		return Instruction{}, utils.MakeError(ErrTruncatedInstruction, "expected %v bytes, got %v", InstructionBytes, len(binaryRepresentation))
	}

	return Instructions.Decode([InstructionBytes]byte(binaryRepresentation[:InstructionBytes]))
}

// Decodes a program as a sequence of instruction records. This is the inverse of Encode()
func DecodeInstructions(program []byte) ([]Instruction, error) {
	if len(program)%InstructionBytes != 0 {
		return nil, utils.MakeError(ErrTruncatedInstruction, "program is %v bytes long, which is not a multiple of the %v bytes instruction size", len(program), InstructionBytes)
	}

	result := make([]Instruction, 0, len(program)/InstructionBytes)

	for offset := 0; offset < len(program); offset += InstructionBytes {
		instr, err := DecodeInstruction(program[offset:])
		if err != nil {
			return nil, utils.MakeError(ErrInvalidInstruction, "at offset %v: %w", utils.FormatUintHex(uint32(offset), 4), err)
		}

		result = append(result, instr)
	}

	return result, nil
}
