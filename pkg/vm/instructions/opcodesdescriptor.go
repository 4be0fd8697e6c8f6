package instructions

import (
	"fmt"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
)

// Returns information about the implemented opcodes
type OpCodesDescriptor struct {
	mnemonics         map[OpCode]string
	mnemonicsToOpCode map[string]OpCode
}

func (d *OpCodesDescriptor) Descriptor(op OpCode) *OpCodeDescriptor {
	return &OpCodeDescriptor{
		OpCode:               op,
		BinaryRepresentation: d.EncodeOpCode(op),
		Mnemonic:             d.Mnemonic(op),
	}
}

// Returns the descriptors of all implemented opcodes, sorted by binary representation
func (d *OpCodesDescriptor) AllOpCodes() []*OpCodeDescriptor {
	return utils.Map(utils.SortedKeys(d.mnemonics), d.Descriptor)
}

// Number of opcodes implemented
func (d *OpCodesDescriptor) TotalOpCodes() int {
	return len(d.mnemonics)
}

// Decodes an opcode from its binary representation.
//
// Decoding is total over the implemented opcodes and fails with ErrIllegalOpCode for any other byte
func (d *OpCodesDescriptor) DecodeOpCode(binaryRepresentation byte) (OpCode, error) {
	opCode := OpCode(binaryRepresentation)

	if _, implemented := d.mnemonics[opCode]; !implemented {
		return 0, utils.MakeError(ErrIllegalOpCode, "%v (hex: %v, bin: %v)", binaryRepresentation, utils.FormatUintHex(binaryRepresentation, 2), utils.FormatUintBinary(binaryRepresentation, 8))
	}

	return opCode, nil
}

// Encodes an opcode into its binary representation
func (d *OpCodesDescriptor) EncodeOpCode(op OpCode) byte {
	return byte(op)
}

// Returns the mnemonic string representation of the opcode
func (d *OpCodesDescriptor) Mnemonic(op OpCode) string {
	if mnemonic, implemented := d.mnemonics[op]; implemented {
		return mnemonic
	}

	return fmt.Sprintf("ILLEGAL(%v)", utils.FormatUintHex(uint8(op), 2))
}

// Returns the opcode corresponding to the given mnemonic
func (d *OpCodesDescriptor) ParseOpCode(mnemonic string) (OpCode, error) {
	if opcode, hasOpCode := d.mnemonicsToOpCode[strings.ToUpper(strings.TrimSpace(mnemonic))]; hasOpCode {
		return opcode, nil
	} else {
		return 0, utils.MakeError(ErrIllegalOpCode, "'%v'", mnemonic)
	}
}

// Initialized an opcodes descriptor with all the opcodes in the given opcode -> mnemonic map
func NewOpCodesDescriptor(mnemonics map[OpCode]string) OpCodesDescriptor {
	for _, opCode := range utils.Iota(int(TOTAL_OPCODES), func(i int) OpCode { return OpCode(i) }) {
		if _, hasOpCode := mnemonics[opCode]; !hasOpCode {
			panic(fmt.Sprintf("missing entry for opcode %v in mnemonics table. Make sure you've added all OpCode -> Mnemonic entries in the NewOpCodesDescriptor() call", uint8(opCode)))
		}
	}

	d := OpCodesDescriptor{
		mnemonics:         mnemonics,
		mnemonicsToOpCode: utils.InvertedMap(mnemonics),
	}

	if d.TotalOpCodes() != int(TOTAL_OPCODES) {
		panic("unexpected entries in opcode mnemonics table. Make sure the table only contains the opcodes declared in opcode.go")
	}

	return d
}
