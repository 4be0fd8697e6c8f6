package interpreter

import (
	"fmt"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
	"github.com/fatih/color"
)

// FormatStyle controls the output style for formatting functions
type FormatStyle int

const (
	// StylePlain produces plain text output without colors
	StylePlain FormatStyle = iota
	// StyleColored produces colorized output using ANSI escape codes
	StyleColored
)

// Returns a formatting function applying the given color attributes if the style is colored
func paint(style FormatStyle, attributes ...color.Attribute) func(a ...any) string {
	if style == StylePlain {
		return fmt.Sprint
	}

	c := color.New(attributes...)
	c.EnableColor()
	return c.SprintFunc()
}

// DisassemblyLine is a decoded instruction record of a program
type DisassemblyLine struct {
	// Program offset of the record
	Offset uint32
	// Raw bytes of the record
	Bytes []byte
	// Decoded instruction, nil if the record could not be decoded
	Instruction *instructions.Instruction
}

// Text returns the record in assembly syntax. Records that cannot be decoded are shown as raw bytes
func (l *DisassemblyLine) Text() string {
	if l.Instruction != nil {
		return l.Instruction.String()
	}

	return ".byte " + strings.Join(utils.Map(l.Bytes, func(b byte) string { return utils.FormatUintHex(b, 2) }), ", ")
}

// Disassemble splits a program into instruction records and decodes them.
// Illegal and truncated records are kept as raw bytes
func Disassemble(program []byte) []DisassemblyLine {
	chunks := utils.Chunks(program, instructions.InstructionBytes)
	lines := make([]DisassemblyLine, 0, len(chunks))

	for i, chunk := range chunks {
		line := DisassemblyLine{
			Offset: uint32(i * instructions.InstructionBytes),
			Bytes:  chunk,
		}

		if instr, err := instructions.DecodeInstruction(chunk); err == nil {
			line.Instruction = &instr
		}

		lines = append(lines, line)
	}

	return lines
}

// FormatDisassemblyLine formats a disassembly line, marking the current program counter and breakpoints
func FormatDisassemblyLine(line DisassemblyLine, style FormatStyle, isPC bool, hasBreakpoint bool) string {
	var (
		colorOffset     = paint(style, color.FgCyan)
		colorBytes      = paint(style, color.FgHiBlack)
		colorOpcode     = paint(style, color.FgYellow, color.Bold)
		colorOperands   = paint(style, color.FgGreen)
		colorRaw        = paint(style, color.FgRed)
		colorPC         = paint(style, color.FgGreen, color.Bold)
		colorBreakpoint = paint(style, color.FgRed, color.Bold)
	)

	marker := "  "
	switch {
	case isPC && hasBreakpoint:
		marker = colorBreakpoint("*") + colorPC(">")
	case isPC:
		marker = " " + colorPC(">")
	case hasBreakpoint:
		marker = colorBreakpoint("*") + " "
	}

	rawBytes := strings.Join(utils.Map(line.Bytes, func(b byte) string { return fmt.Sprintf("%02x", b) }), " ")

	var text string
	if line.Instruction != nil {
		mnemonic, operands, _ := strings.Cut(line.Text(), " ")
		text = colorOpcode(mnemonic)
		if operands != "" {
			text += " " + colorOperands(operands)
		}
	} else {
		text = colorRaw(line.Text())
	}

	return fmt.Sprintf("%s %s  %-11s  %s", marker, colorOffset(fmt.Sprintf("0x%08X", line.Offset)), colorBytes(rawBytes), text)
}

// FormatRegisters formats the machine registers as a grid, followed by the program counter and remainder
func FormatRegisters(state *State, style FormatStyle) string {
	var (
		colorReg   = paint(style, color.FgGreen)
		colorValue = paint(style, color.FgWhite, color.Bold)
		colorZero  = paint(style, color.FgHiBlack)
		colorState = paint(style, color.FgCyan)
	)

	const columns = 4

	var builder strings.Builder

	for row, registers := range utils.Chunks(state.Registers[:], columns) {
		for column, value := range registers {
			idx := row*columns + column

			valueText := fmt.Sprintf("%11d", value)
			if value == 0 {
				valueText = colorZero(valueText)
			} else {
				valueText = colorValue(valueText)
			}

			if column > 0 {
				builder.WriteString("  ")
			}

			builder.WriteString(colorReg(fmt.Sprintf("r%-2d", idx)))
			builder.WriteString(" = ")
			builder.WriteString(valueText)
		}

		builder.WriteString("\n")
	}

	builder.WriteString(fmt.Sprintf("%s = %s  %s = %s  %s = %v\n",
		colorState("pc"), colorValue(fmt.Sprintf("0x%08X", state.PC)),
		colorState("remainder"), colorValue(state.Remainder),
		colorState("halted"), state.Done()))

	return builder.String()
}
