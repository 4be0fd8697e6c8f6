package instructions

// Represents an instruction opcode. The numeric value of each opcode is the byte
// that encodes it in a program, so the order of this list is part of the program format.
type OpCode uint8

const (
	// Stops execution
	OpCode_HLT OpCode = iota
	// Load a 16 bit unsigned immediate into a register
	OpCode_LOAD
	// Add values of two registers, save result into third
	OpCode_ADD
	// Substract values of two registers, save result into third
	OpCode_SUB
	// Divide values of two registers, save quotient into third and remainder into the remainder register
	OpCode_DIV
	// Multiply values of two registers, save result into third
	OpCode_MUL
	// Jump to the address stored in a third register if the first register is greater than the second
	OpCode_GT

	// Total opcodes implemented
	TOTAL_OPCODES
)

// Returns the mnemonic of the instruction opcode
func (op OpCode) String() string {
	return Opcodes.Mnemonic(op)
}
