package loader

import (
	"bytes"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
	"gopkg.in/yaml.v3"
)

// Listing is a human readable list of instruction records:
//
//	name: add
//	instructions:
//	  - opcode: LOAD
//	    bytes: [1, 0, 2]
//	  - opcode: HLT
//	    bytes: [0, 0, 0]
//
// Each entry holds the opcode mnemonic and the three raw operand bytes of the record
type Listing struct {
	Name         string         `yaml:"name,omitempty"`
	Instructions []ListingEntry `yaml:"instructions"`
}

// ListingEntry is a single instruction record of a listing
type ListingEntry struct {
	OpCode string `yaml:"opcode"`
	Bytes  []int  `yaml:"bytes,flow"`
}

// NewListing builds the listing of a sequence of instructions
func NewListing(name string, instrs []instructions.Instruction) *Listing {
	return &Listing{
		Name: name,
		Instructions: utils.Map(instrs, func(instr instructions.Instruction) ListingEntry {
			return ListingEntry{
				OpCode: instr.OpCode.String(),
				Bytes:  []int{int(instr.Byte1), int(instr.Byte2), int(instr.Byte3)},
			}
		}),
	}
}

// Decodes an entry into its instruction record
func (e *ListingEntry) instruction() (instructions.Instruction, error) {
	opCode, err := instructions.Opcodes.ParseOpCode(e.OpCode)
	if err != nil {
		return instructions.Instruction{}, err
	}

	operandBytes := instructions.InstructionBytes - 1
	if len(e.Bytes) != operandBytes {
		return instructions.Instruction{}, utils.MakeError(ErrInvalidListing, "%v entry has %v operand bytes, expected %v", e.OpCode, len(e.Bytes), operandBytes)
	}

	var record [3]uint8
	for i, value := range e.Bytes {
		if value < 0 || value > 0xFF {
			return instructions.Instruction{}, utils.MakeError(ErrInvalidListing, "%v operand byte %v out of range: %v", e.OpCode, i, value)
		}

		record[i] = uint8(value)
	}

	return instructions.NewInstruction(opCode, record[0], record[1], record[2]), nil
}

// Decode returns the instruction records of the listing
func (l *Listing) Decode() ([]instructions.Instruction, error) {
	result := make([]instructions.Instruction, 0, len(l.Instructions))

	for i, entry := range l.Instructions {
		instr, err := entry.instruction()
		if err != nil {
			return nil, utils.MakeError(err, "listing entry %v", i)
		}

		result = append(result, instr)
	}

	return result, nil
}

// Program encodes the listing into program bytes
func (l *Listing) Program() ([]byte, error) {
	instrs, err := l.Decode()
	if err != nil {
		return nil, err
	}

	return instructions.Encode(instrs), nil
}

// MarshalListing serializes a listing to YAML
func MarshalListing(l *Listing) ([]byte, error) {
	var buffer bytes.Buffer

	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)

	if err := encoder.Encode(l); err != nil {
		return nil, utils.MakeError(err, "marshal listing")
	}

	if err := encoder.Close(); err != nil {
		return nil, utils.MakeError(err, "marshal listing")
	}

	return buffer.Bytes(), nil
}

// UnmarshalListing deserializes a listing from YAML
func UnmarshalListing(data []byte) (*Listing, error) {
	var l Listing
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, utils.MakeError(ErrInvalidListing, "%v", err)
	}

	return &l, nil
}
