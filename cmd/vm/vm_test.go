package vm

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/Manu343726/iridium/pkg/vm/loader"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func addProgram() []instructions.Instruction {
	return []instructions.Instruction{
		instructions.Load(1, 2),
		instructions.Load(3, 5),
		instructions.Add(1, 3, 6),
		instructions.Hlt(),
	}
}

func loopProgram() []instructions.Instruction {
	return []instructions.Instruction{
		instructions.Load(1, 1),
		instructions.Load(2, 0),
		instructions.Gt(1, 2, 2),
	}
}

func writeProgram(t *testing.T, name string, instrs []instructions.Instruction) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, loader.Save(path, instructions.Encode(instrs)))
	return path
}

func newTestSession(instrs ...instructions.Instruction) (*session, *bytes.Buffer) {
	interp := interpreter.NewInterpreter()
	interp.LoadProgram(instructions.Encode(instrs))

	var out bytes.Buffer
	return newSession(interpreter.NewDebugger(interp), &out), &out
}

func runSession(s *session, out *bytes.Buffer, line string) string {
	out.Reset()
	s.execute(line)
	return out.String()
}

func execTestCommand() (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	return cmd, &stdout, &stderr
}

func TestExec(t *testing.T) {
	path := writeProgram(t, "add.yaml", addProgram())
	cmd, stdout, _ := execTestCommand()

	require.NoError(t, runExec(cmd, []string{path}))
	assert.Contains(t, stdout.String(), "r6  =           7")
	assert.Contains(t, stdout.String(), "pc = 0x0000000D")
}

func TestExec_Trace(t *testing.T) {
	cli.Settings().Exec.Trace = true
	defer func() { cli.Settings().Exec.Trace = false }()

	path := writeProgram(t, "add.bin", addProgram())
	cmd, _, stderr := execTestCommand()

	require.NoError(t, runExec(cmd, []string{path}))
	assert.Contains(t, stderr.String(), "LOAD r1, #2")
	assert.Contains(t, stderr.String(), "r6 = 7")
}

func TestExec_Errors(t *testing.T) {
	t.Run("illegal opcode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "illegal.bin")
		require.NoError(t, loader.Save(path, []byte{1, 1, 0, 2, 200, 0, 0, 0}))
		cmd, stdout, _ := execTestCommand()

		err := runExec(cmd, []string{path})
		assert.ErrorIs(t, err, instructions.ErrIllegalOpCode)
		// Registers are still printed
		assert.Contains(t, stdout.String(), "r1  =           2")
	})

	t.Run("step limit", func(t *testing.T) {
		cli.Settings().Exec.MaxSteps = 10
		defer func() { cli.Settings().Exec.MaxSteps = 0 }()

		path := writeProgram(t, "loop.irm", loopProgram())
		cmd, _, _ := execTestCommand()

		assert.ErrorIs(t, runExec(cmd, []string{path}), ErrStepLimitReached)
	})

	t.Run("unsupported file", func(t *testing.T) {
		cmd, _, _ := execTestCommand()
		assert.ErrorIs(t, runExec(cmd, []string{"program.txt"}), loader.ErrUnsupportedFormat)
	})
}

func TestSession_Step(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Equal(t, " > 0x00000004  01 03 00 05  LOAD r3, #5\n", runSession(s, out, "step"))

	// An empty line repeats the last command
	assert.Equal(t, " > 0x00000008  02 01 03 06  ADD r1, r3, r6\n", runSession(s, out, ""))

	assert.Contains(t, runSession(s, out, "s 5"), "Program halted after 1 steps.")
}

func TestSession_Breakpoints(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Equal(t, "Breakpoint 0 at 0x00000008\n", runSession(s, out, "break 0x8"))
	assert.Equal(t, "Breakpoint 1 at 0x00000000\n", runSession(s, out, "b"))

	output := runSession(s, out, "continue")
	assert.Contains(t, output, "Breakpoint 0 hit at 0x00000008")
	assert.Contains(t, output, "*> 0x00000008")

	output = runSession(s, out, "list")
	assert.Contains(t, output, "0: 0x00000008 (enabled, hits: 1)")
	assert.Contains(t, output, "1: 0x00000000 (enabled, hits: 0)")

	assert.Equal(t, "Breakpoint 0 disabled\n", runSession(s, out, "disable 0"))
	assert.Equal(t, "Deleted 1\n", runSession(s, out, "delete 1"))
	assert.Equal(t, "No such ID: 1\n", runSession(s, out, "d 1"))

	assert.Contains(t, runSession(s, out, "c"), "Program halted after 2 steps.")
}

func TestSession_Watchpoints(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Equal(t, "Watchpoint 0 on r6\n", runSession(s, out, "watch r6"))
	assert.Contains(t, runSession(s, out, "c"), "Watchpoint 0: r6 = 7")
	assert.Equal(t, "r6 = 7 (0x00000007)\n", runSession(s, out, "print r6"))

	assert.Contains(t, runSession(s, out, "list"), "0: r6 = 7 (hits: 1)")
	assert.Equal(t, "Deleted 0\n", runSession(s, out, "unwatch 0"))
	assert.Equal(t, "No breakpoints or watchpoints.\n", runSession(s, out, "l"))

	assert.Contains(t, runSession(s, out, "watch r40"), "invalid register 'r40'")
}

func TestSession_RunUntil(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Contains(t, runSession(s, out, "until 12"), " > 0x0000000C  00 00 00 00  HLT")
	assert.Equal(t, uint32(12), s.dbg.GetPC())
}

func TestSession_Run(t *testing.T) {
	s, out := newTestSession(loopProgram()...)

	assert.Contains(t, runSession(s, out, "run 7"), "Stopped after 7 steps.")
	assert.Equal(t, uint32(4), s.dbg.GetPC())
}

func TestSession_Errors(t *testing.T) {
	s, out := newTestSession(instructions.Load(1, 2), instructions.NewInstruction(200, 0, 0, 0))

	output := runSession(s, out, "c")
	assert.Contains(t, output, "Error: error decoding instruction at 0x00000004")
	assert.Contains(t, output, ".byte 0xc8, 0x00, 0x00, 0x00")

	assert.Contains(t, runSession(s, out, "frobnicate"), "Unknown command: frobnicate")
	assert.Contains(t, runSession(s, out, "until"), "Usage: until <offset>")
	assert.Contains(t, runSession(s, out, "set r1"), "Usage: set")
}

func TestSession_SetAndPrint(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Equal(t, "r1 = -5 (0xFFFFFFFB)\n", runSession(s, out, "set r1 -5"))
	assert.Equal(t, "pc = 0x00000000\n", runSession(s, out, "print pc"))

	assert.Equal(t, " > 0x00000008  02 01 03 06  ADD r1, r3, r6\n", runSession(s, out, "set pc 8"))
	assert.Equal(t, "pc = 0x00000008\n", runSession(s, out, "p pc"))
	assert.Equal(t, "remainder = 0\n", runSession(s, out, "p remainder"))

	runSession(s, out, "step")
	assert.Equal(t, "r6 = -5 (0xFFFFFFFB)\n", runSession(s, out, "p 6"))

	assert.Contains(t, runSession(s, out, "reset"), "Machine reset.")
	assert.Equal(t, "r1 = 0 (0x00000000)\n", runSession(s, out, "p r1"))
}

func TestSession_Disassemble(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	assert.Equal(t,
		"   0x00000004  01 03 00 05  LOAD r3, #5\n"+
			"   0x00000008  02 01 03 06  ADD r1, r3, r6\n",
		runSession(s, out, "x 4 2"))

	assert.Contains(t, runSession(s, out, "disasm 64"), "past the end of the program")
	assert.Contains(t, runSession(s, out, "info"), "r0  =           0")
}

func TestSession_Quit(t *testing.T) {
	s, _ := newTestSession(addProgram()...)

	assert.False(t, s.execute("help"))
	assert.True(t, s.execute("quit"))
	assert.True(t, s.execute("exit"))
}

func TestSession_Help(t *testing.T) {
	s, out := newTestSession(addProgram()...)

	help := runSession(s, out, "help")
	assert.Equal(t, debugHelp+"\n", help)
	assert.Equal(t, help, runSession(s, out, "h"))

	for _, command := range []string{"step, s", "continue, c", "watch, w", "quit, q"} {
		assert.Contains(t, help, command)
	}

	assert.Contains(t, debugCmd.Long, debugHelp)
}

func TestParseValue(t *testing.T) {
	cases := map[string]uint32{
		"0":      0,
		"12":     12,
		"0x10":   16,
		"0XFF":   255,
		"-1":     0xFFFFFFFF,
		"-0x10":  0xFFFFFFF0,
		"65535":  65535,
		"4096":   4096,
		"0x1000": 4096,
	}

	for input, expected := range cases {
		value, err := parseValue(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, value, input)
	}

	_, err := parseValue("pc")
	assert.Error(t, err)
}

func TestParseRegister(t *testing.T) {
	reg, err := parseRegister("r31")
	require.NoError(t, err)
	assert.Equal(t, uint8(31), reg)

	reg, err = parseRegister("R7")
	require.NoError(t, err)
	assert.Equal(t, uint8(7), reg)

	reg, err = parseRegister("3")
	require.NoError(t, err)
	assert.Equal(t, uint8(3), reg)

	for _, invalid := range []string{"r32", "sp", "", "r-1"} {
		_, err := parseRegister(invalid)
		assert.Error(t, err, invalid)
	}
}

func newTestTuiModel(maxSteps int, instrs ...instructions.Instruction) *tuiModel {
	interp := interpreter.NewInterpreter()
	interp.LoadProgram(instructions.Encode(instrs))
	return newTuiModel(interpreter.NewDebugger(interp), maxSteps)
}

func TestTuiModel(t *testing.T) {
	m := newTestTuiModel(0, addProgram()...)
	assert.Equal(t, tuiDefaultRunSteps, m.maxSteps)

	text, pcLine := m.disassemblyText()
	assert.Equal(t, 0, pcLine)
	assert.Len(t, strings.Split(strings.TrimSuffix(text, "\n"), "\n"), 4)
	assert.Contains(t, text, "[black:green] > 0x00000000  01 01 00 02  LOAD r1, #2[-:-]")

	assert.False(t, m.handleKey('s'))
	_, pcLine = m.disassemblyText()
	assert.Equal(t, 1, pcLine)
	assert.Contains(t, m.statusText(), "step[-] after 1 steps")

	assert.False(t, m.handleKey('b'))
	assert.NotNil(t, m.dbg.GetBreakpointAt(4))
	assert.Contains(t, m.statusText(), "breakpoint set at 0x00000004")

	assert.False(t, m.handleKey('b'))
	assert.Nil(t, m.dbg.GetBreakpointAt(4))

	assert.False(t, m.handleKey('c'))
	assert.Contains(t, m.statusText(), "halt[-] after 3 steps")
	assert.Contains(t, m.registersText(), "r6  =           7")

	_, pcLine = m.disassemblyText()
	assert.Equal(t, -1, pcLine)

	assert.False(t, m.handleKey('r'))
	assert.Equal(t, uint32(0), m.dbg.GetPC())
	assert.Contains(t, m.statusText(), "machine reset")

	assert.True(t, m.handleKey('q'))
}

func TestTuiModel_StepLimit(t *testing.T) {
	m := newTestTuiModel(9, loopProgram()...)

	m.handleKey('c')
	assert.Contains(t, m.statusText(), "max_steps[-] after 9 steps")
}

func TestTuiModel_Errors(t *testing.T) {
	m := newTestTuiModel(0, instructions.NewInstruction(200, 1, 2, 3))

	text, _ := m.disassemblyText()
	assert.Contains(t, text, ".byte 0xc8, 0x01, 0x02, 0x03")

	m.handleKey('c')
	assert.Contains(t, m.statusText(), "error[-] after 0 steps: [red]error decoding instruction")
}
