package instructions

// Represents the kind of operand (Register, immediate, etc)
type OperandKind uint

const (
	// 8 bit register index
	OperandKind_Register OperandKind = iota
	// 16 bit unsigned immediate, encoded big endian
	OperandKind_Immediate16
)

func (o OperandKind) String() string {
	switch o {
	case OperandKind_Register:
		return "Register"
	case OperandKind_Immediate16:
		return "Immediate16"
	}

	panic("unreachable")
}

// Returns the number of program bytes used to encode an operand of this kind
func (o OperandKind) EncodingBytes() int {
	switch o {
	case OperandKind_Register:
		return 1
	case OperandKind_Immediate16:
		return 2
	}

	panic("unreachable")
}
