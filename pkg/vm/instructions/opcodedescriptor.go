package instructions

import (
	"fmt"

	"github.com/Manu343726/iridium/pkg/utils"
)

// Contains implementation information of an instruction opcode
type OpCodeDescriptor struct {
	OpCode               OpCode
	BinaryRepresentation byte
	Mnemonic             string
}

func (d *OpCodeDescriptor) String() string {
	return fmt.Sprintf("%v (code: %v, binary: %v, hex: %v)", d.Mnemonic, d.BinaryRepresentation, utils.FormatUintBinary(d.BinaryRepresentation, 8), utils.FormatUintHex(d.BinaryRepresentation, 2))
}

// Returns the number of bytes used to encode an instruction opcode
func (d *OpCodeDescriptor) EncodingBytes() int {
	return 1
}

// Returns the first byte within an instruction used to encode the opcode
func (d *OpCodeDescriptor) EncodingPosition() int {
	return 0
}
