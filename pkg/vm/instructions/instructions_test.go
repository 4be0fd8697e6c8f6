package instructions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOpCode(t *testing.T) {
	expected := map[byte]OpCode{
		0: OpCode_HLT,
		1: OpCode_LOAD,
		2: OpCode_ADD,
		3: OpCode_SUB,
		4: OpCode_DIV,
		5: OpCode_MUL,
		6: OpCode_GT,
	}

	for b, op := range expected {
		decoded, err := Opcodes.DecodeOpCode(b)
		require.NoError(t, err)
		assert.Equal(t, op, decoded)
		assert.Equal(t, b, Opcodes.EncodeOpCode(decoded))
	}
}

func TestDecodeOpCode_Illegal(t *testing.T) {
	for b := 7; b <= 255; b++ {
		_, err := Opcodes.DecodeOpCode(byte(b))
		assert.ErrorIs(t, err, ErrIllegalOpCode, "byte %v", b)
	}
}

func TestOpCodeMnemonics(t *testing.T) {
	assert.Equal(t, "HLT", OpCode_HLT.String())
	assert.Equal(t, "LOAD", OpCode_LOAD.String())
	assert.Equal(t, "GT", OpCode_GT.String())
	assert.Equal(t, "ILLEGAL(0xc8)", OpCode(200).String())

	t.Run("parse", func(t *testing.T) {
		op, err := Opcodes.ParseOpCode("div")
		require.NoError(t, err)
		assert.Equal(t, OpCode_DIV, op)

		_, err = Opcodes.ParseOpCode("jmp")
		assert.ErrorIs(t, err, ErrIllegalOpCode)
	})

	t.Run("all opcodes sorted", func(t *testing.T) {
		all := Opcodes.AllOpCodes()
		require.Len(t, all, int(TOTAL_OPCODES))

		for i, op := range all {
			assert.Equal(t, OpCode(i), op.OpCode)
		}
	})
}

func TestInstructionDescriptors(t *testing.T) {
	for _, descriptor := range Instructions.AllInstructions() {
		assert.LessOrEqual(t, descriptor.UsedBytes(), InstructionBytes, "%v", descriptor)
	}

	load, err := Instructions.Instruction(OpCode_LOAD)
	require.NoError(t, err)
	require.Len(t, load.Operands, 2)
	assert.Equal(t, 1, load.Operands[0].EncodingPosition)
	assert.Equal(t, 2, load.Operands[1].EncodingPosition)
	assert.True(t, load.Operands[1].IsImmediate())
	assert.Equal(t, 4, load.UsedBytes())

	hlt, err := Instructions.Instruction(OpCode_HLT)
	require.NoError(t, err)
	assert.Empty(t, hlt.Operands)
	assert.Equal(t, 1, hlt.UsedBytes())

	_, err = Instructions.Instruction(OpCode(42))
	assert.ErrorIs(t, err, ErrInstructionNotImplemented)
}

func TestLoadImmediateIsBigEndian(t *testing.T) {
	instr := Load(3, 0x0102)

	assert.Equal(t, [InstructionBytes]byte{1, 3, 0x01, 0x02}, instr.Bytes())

	values, err := instr.OperandValues()
	require.NoError(t, err)
	assert.Equal(t, []uint16{3, 0x0102}, values)

	assert.Equal(t, [InstructionBytes]byte{1, 0, 1, 244}, Load(0, 500).Bytes())
}

func TestEncode(t *testing.T) {
	program := Encode([]Instruction{
		Load(1, 2),
		Load(3, 5),
		Add(1, 3, 6),
		Hlt(),
	})

	assert.Equal(t, []byte{
		1, 1, 0, 2,
		1, 3, 0, 5,
		2, 1, 3, 6,
		0, 0, 0, 0,
	}, program)

	assert.Empty(t, Encode(nil))
}

func TestDecodeInstructions(t *testing.T) {
	instrs := []Instruction{
		Load(1, 130),
		Load(3, 16),
		Gt(1, 3, 3),
		Sub(1, 3, 6),
		Mul(1, 3, 6),
		Div(1, 3, 6),
		Hlt(),
	}

	decoded, err := DecodeInstructions(Encode(instrs))
	require.NoError(t, err)
	assert.Equal(t, instrs, decoded)

	t.Run("truncated", func(t *testing.T) {
		_, err := DecodeInstructions([]byte{1, 0, 1})
		assert.ErrorIs(t, err, ErrTruncatedInstruction)
	})

	t.Run("illegal opcode", func(t *testing.T) {
		_, err := DecodeInstructions([]byte{0, 0, 0, 0, 200, 0, 0, 0})
		assert.ErrorIs(t, err, ErrInvalidInstruction)
		assert.ErrorIs(t, err, ErrIllegalOpCode)
	})
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "HLT", Hlt().String())
	assert.Equal(t, "LOAD r1, #500", Load(1, 500).String())
	assert.Equal(t, "ADD r1, r3, r6", Add(1, 3, 6).String())
	assert.Equal(t, "GT r1, r3, r3", Gt(1, 3, 3).String())
	assert.Equal(t, ".byte 0xc8, 0x00, 0x01, 0x02", NewInstruction(200, 0, 1, 2).String())
}

func TestPrettyPrint(t *testing.T) {
	frame, err := Load(1, 500).PrettyPrint(0)
	require.NoError(t, err)

	assert.Equal(t, ""+
		"0            1            2             4\n"+
		"+------------+------------+-------------+\n"+
		"|    LOAD    |   dst r1   |  imm #500   |\n"+
		"+------------+------------+-------------+\n"+
		" <- 1 byte -> <- 1 byte -> <- 2 bytes ->\n",
		frame)

	frame, err = Hlt().PrettyPrint(2)
	require.NoError(t, err)
	assert.Contains(t, frame, "  |    HLT     |  (unused)   |\n")
	assert.Contains(t, frame, "   <- 1 byte -> <- 3 bytes ->\n")

	_, err = NewInstruction(200, 0, 0, 0).PrettyPrint(0)
	assert.ErrorIs(t, err, ErrInstructionNotImplemented)
}

func TestDocumentation(t *testing.T) {
	for _, descriptor := range Instructions.AllInstructions() {
		doc, err := descriptor.Documentation(0)
		require.NoError(t, err)
		assert.Contains(t, doc, descriptor.OpCode.Mnemonic)
		assert.Contains(t, doc, descriptor.Description)
	}
}

func TestDocString(t *testing.T) {
	doc, err := Instructions.DocString()
	require.NoError(t, err)

	assert.Contains(t, doc, "0x06  GT")
	for _, descriptor := range Instructions.AllInstructions() {
		assert.Contains(t, doc, descriptor.Description)
	}
}
