package instructions

var Opcodes OpCodesDescriptor = NewOpCodesDescriptor(
	map[OpCode]string{
		OpCode_HLT:  "HLT",
		OpCode_LOAD: "LOAD",
		OpCode_ADD:  "ADD",
		OpCode_SUB:  "SUB",
		OpCode_DIV:  "DIV",
		OpCode_MUL:  "MUL",
		OpCode_GT:   "GT",
	},
)

var Instructions InstructionsDescriptor = NewInstructionsDescriptor([]*InstructionDescriptor{
	hltDescriptor(),
	loadDescriptor(),
	arithmeticDescriptor(OpCode_ADD, "Adds the values of two 32 bit integer registers and saves the result into a third register. Overflow wraps around"),
	arithmeticDescriptor(OpCode_SUB, "Substracts the value of a 32 bit integer register from another register and saves the result into a third register. Overflow wraps around"),
	arithmeticDescriptor(OpCode_DIV, "Divides the value of a 32 bit integer register by another register, truncating towards zero, and saves the quotient into a third register. The remainder of the division is saved into the remainder register. Dividing by zero stops the machine with an error"),
	arithmeticDescriptor(OpCode_MUL, "Multiplies the values of two 32 bit integer registers and saves the result into a third register. Overflow wraps around"),
	gtDescriptor(),
})

func hltDescriptor() *InstructionDescriptor {
	return &InstructionDescriptor{
		OpCode:      Opcodes.Descriptor(OpCode_HLT),
		Description: "Halts the machine. Only the opcode byte is consumed, the program counter is left pointing right after it",
		Operands:    nil,
	}
}

func loadDescriptor() *InstructionDescriptor {
	return &InstructionDescriptor{
		OpCode:      Opcodes.Descriptor(OpCode_LOAD),
		Description: "Copies a 16 bit unsigned immediate into a 32 bit integer register",
		Operands: []*OperandDescriptor{
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Destination,
				Name:        "dst",
				Description: "destination register",
			},
			{
				Kind:        OperandKind_Immediate16,
				Role:        OperandRole_Source,
				Name:        "imm",
				Description: "source immediate, most significant byte first",
			},
		},
	}
}

func arithmeticDescriptor(op OpCode, description string) *InstructionDescriptor {
	return &InstructionDescriptor{
		OpCode:      Opcodes.Descriptor(op),
		Description: description,
		Operands: []*OperandDescriptor{
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Source,
				Name:        "lhs",
				Description: "left hand side register",
			},
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Source,
				Name:        "rhs",
				Description: "right hand side register",
			},
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Destination,
				Name:        "dst",
				Description: "destination register",
			},
		},
	}
}

func gtDescriptor() *InstructionDescriptor {
	return &InstructionDescriptor{
		OpCode:      Opcodes.Descriptor(OpCode_GT),
		Description: "Compares two 32 bit integer registers. If the first is greater than the second, execution jumps to the program offset stored in a third register. All three operands are consumed regardless of the comparison result",
		Operands: []*OperandDescriptor{
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Source,
				Name:        "lhs",
				Description: "left hand side register",
			},
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_Source,
				Name:        "rhs",
				Description: "right hand side register",
			},
			{
				Kind:        OperandKind_Register,
				Role:        OperandRole_JumpTarget,
				Name:        "target",
				Description: "register holding the program offset to jump to",
			},
		},
	}
}
