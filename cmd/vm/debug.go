package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// =============================================================================
// Color definitions for CLI output
// =============================================================================

var (
	colorAddr       = color.New(color.FgCyan)
	colorReg        = color.New(color.FgGreen)
	colorValue      = color.New(color.FgWhite, color.Bold)
	colorHex        = color.New(color.FgMagenta)
	colorError      = color.New(color.FgRed, color.Bold)
	colorSuccess    = color.New(color.FgGreen)
	colorWarning    = color.New(color.FgYellow)
	colorHeader     = color.New(color.FgWhite, color.Bold, color.Underline)
	colorBreakpoint = color.New(color.FgRed, color.Bold)
)

// =============================================================================
// Command definitions and flags
// =============================================================================

const debugHelp = `Commands:
  step, s [n]          - Execute n instructions (default: 1)
  continue, c          - Continue execution until a breakpoint, watchpoint or halt
  run, r [n]           - Run at most n instructions (default: unlimited)
  until, u <offset>    - Run until the program counter reaches offset
  break, b [offset]    - Set breakpoint (default: PC)
  watch, w <reg>       - Stop when a register changes
  delete, d <id>       - Delete breakpoint by ID
  unwatch <id>         - Delete watchpoint by ID
  enable/disable <id>  - Enable or disable a breakpoint
  list, l              - List all breakpoints and watchpoints
  print, p <what>      - Print a register, pc or remainder
  set <what> <value>   - Set a register or pc
  disasm, x [offset] [n] - Disassemble n instructions
  info, i              - Show machine state
  reset                - Reset registers and program counter
  help, h              - Show help
  quit, q              - Exit debugger`

var debugCmd = &cobra.Command{
	Use:   "debug <program>",
	Short: "Run the iridium debugger",
	Long:  "Interactive debugger for iridium programs.\n\n" + debugHelp,
	Args:  cobra.ExactArgs(1),
	RunE:  runDebug,
}

func init() {
	VmCmd.AddCommand(debugCmd)
}

var debugCommands = []string{
	"step", "s", "continue", "c", "run", "r", "until", "u",
	"break", "b", "watch", "w", "delete", "d", "unwatch", "enable", "disable", "list", "l",
	"print", "p", "set", "disasm", "x", "info", "i", "reset",
	"help", "h", "quit", "q", "exit",
}

// =============================================================================
// Main debug entry point
// =============================================================================

func runDebug(cmd *cobra.Command, args []string) error {
	program, err := cli.LoadProgram(args[0])
	if err != nil {
		return err
	}

	interp := interpreter.NewInterpreter()
	interp.LoadProgram(program.Program)
	interp.SetTracer(interpreter.NewLogTracer(cli.Logger()))

	s := newSession(interpreter.NewDebugger(interp), cmd.OutOrStdout())

	fmt.Fprintf(s.out, "Loaded %d bytes from %s\n", len(program.Program), program.Path)

	// Ctrl+C while running interrupts the program. At the prompt it is reported by liner
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)

	go func() {
		for range sigChan {
			s.dbg.Interrupt()
		}
	}()

	// Set up liner for readline support
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(false)

	// Set up tab completion
	line.SetCompleter(func(input string) []string {
		var completions []string
		for _, cmd := range debugCommands {
			if strings.HasPrefix(cmd, strings.ToLower(input)) {
				completions = append(completions, cmd)
			}
		}
		return completions
	})

	// Load history
	historyFile := getHistoryFilePath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(s.out, "Entry point: %s\n", colorAddr.Sprintf("0x%08X", s.dbg.GetPC()))
	colorSuccess.Fprintln(s.out, "Type 'help' for available commands.")
	fmt.Fprintln(s.out)
	s.showCurrentInstruction()

	// Main loop
	for {
		input, err := line.Prompt("(iridium) ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				colorSuccess.Fprintln(s.out, "\nExiting debugger.")
				break
			}
			if errors.Is(err, liner.ErrPromptAborted) {
				colorWarning.Fprintln(s.out, "Use 'quit' or 'exit' to leave the debugger.")
				continue
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input != "" && input != s.lastCommand {
			line.AppendHistory(input)
		}

		if s.execute(input) {
			break
		}
	}

	// Save history
	if f, err := os.Create(historyFile); err == nil {
		line.WriteHistory(f)
		f.Close()
	}

	return nil
}

// getHistoryFilePath returns the path to the debugger history file
func getHistoryFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".iridium_history"
	}
	return filepath.Join(homeDir, ".iridium_history")
}

// getTerminalSize returns terminal width and height, with fallback defaults
func getTerminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		// Fallback to reasonable defaults
		return 80, 24
	}
	return width, height
}

// =============================================================================
// Debugger session
// =============================================================================

// session runs debugger commands against a debugger, writing their output into out
type session struct {
	dbg         *interpreter.Debugger
	out         io.Writer
	style       interpreter.FormatStyle
	lastCommand string
}

func newSession(dbg *interpreter.Debugger, out io.Writer) *session {
	return &session{
		dbg:   dbg,
		out:   out,
		style: cli.Style(out),
	}
}

// Executes a command line. An empty line repeats the last command. Returns true if the session is over
func (s *session) execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		line = s.lastCommand
	}

	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	s.lastCommand = line

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "step", "s", "stepi", "si":
		count := parseCount(args, 1)
		var result *interpreter.ExecutionResult
		for i := 0; i < count; i++ {
			result = s.dbg.Step()
			if result.StopReason != interpreter.StopStep {
				break
			}
		}
		s.showResult(result)

	case "continue", "c":
		s.showResult(s.dbg.Continue())

	case "run", "r":
		s.showResult(s.dbg.Run(parseCount(args, 0)))

	case "until", "u":
		if len(args) == 0 {
			s.errorf("Usage: until <offset>")
			return false
		}
		offset, err := parseValue(args[0])
		if err != nil {
			s.errorf("Invalid offset: %s", args[0])
			return false
		}
		s.showResult(s.dbg.RunUntil(offset))

	case "break", "b":
		offset := s.dbg.GetPC()
		if len(args) > 0 {
			var err error
			if offset, err = parseValue(args[0]); err != nil {
				s.errorf("Invalid offset: %s", args[0])
				return false
			}
		}
		bp := s.dbg.AddBreakpoint(offset)
		colorSuccess.Fprintf(s.out, "Breakpoint %d at %s\n", bp.ID, colorAddr.Sprintf("0x%08X", bp.Offset))

	case "watch", "w":
		if len(args) == 0 {
			s.errorf("Usage: watch <register>")
			return false
		}
		reg, err := parseRegister(args[0])
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		wp, err := s.dbg.AddWatchpoint(reg)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		colorSuccess.Fprintf(s.out, "Watchpoint %d on %s\n", wp.ID, colorReg.Sprintf("r%d", wp.Register))

	case "delete", "d", "unwatch":
		if len(args) == 0 {
			s.errorf("Usage: %s <id>", cmd)
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			s.errorf("Invalid ID: %s", args[0])
			return false
		}
		var removed bool
		if cmd == "unwatch" {
			removed = s.dbg.RemoveWatchpoint(id)
		} else {
			removed = s.dbg.RemoveBreakpoint(id)
		}
		if !removed {
			s.errorf("No such ID: %d", id)
			return false
		}
		colorSuccess.Fprintf(s.out, "Deleted %d\n", id)

	case "enable", "disable":
		if len(args) == 0 {
			s.errorf("Usage: %s <id>", cmd)
			return false
		}
		id, err := strconv.Atoi(args[0])
		if err != nil || !s.dbg.EnableBreakpoint(id, cmd == "enable") {
			s.errorf("No such breakpoint: %s", args[0])
			return false
		}
		colorSuccess.Fprintf(s.out, "Breakpoint %d %sd\n", id, cmd)

	case "list", "l":
		s.showBreakpoints()

	case "print", "p":
		if len(args) == 0 {
			s.errorf("Usage: print <register|pc|remainder>")
			return false
		}
		s.print(args[0])

	case "set":
		if len(args) < 2 {
			s.errorf("Usage: set <register|pc> <value>")
			return false
		}
		s.set(args[0], args[1])

	case "disasm", "x":
		offset := s.dbg.GetPC()
		if len(args) > 0 {
			var err error
			if offset, err = parseValue(args[0]); err != nil {
				s.errorf("Invalid offset: %s", args[0])
				return false
			}
		}
		_, height := getTerminalSize()
		s.showDisassembly(offset, parseCount(args[min(1, len(args)):], max(height/2, 8)))

	case "info", "i":
		colorHeader.Fprintln(s.out, "Registers")
		fmt.Fprint(s.out, interpreter.FormatRegisters(s.dbg.State(), s.style))

	case "reset":
		s.dbg.Interpreter().Reset()
		colorSuccess.Fprintln(s.out, "Machine reset.")
		s.showCurrentInstruction()

	case "help", "h":
		fmt.Fprintln(s.out, debugHelp)

	case "quit", "q", "exit":
		return true

	default:
		s.errorf("Unknown command: %s. Type 'help' for available commands.", cmd)
	}

	return false
}

func (s *session) errorf(format string, args ...any) {
	colorError.Fprintf(s.out, format+"\n", args...)
}

func (s *session) showResult(result *interpreter.ExecutionResult) {
	switch result.StopReason {
	case interpreter.StopBreakpoint:
		colorBreakpoint.Fprintf(s.out, "Breakpoint %d hit at %s\n", result.BreakpointID, colorAddr.Sprintf("0x%08X", s.dbg.GetPC()))
	case interpreter.StopWatchpoint:
		wp := s.dbg.GetWatchpoint(result.WatchpointID)
		colorWarning.Fprintf(s.out, "Watchpoint %d: %s = %s\n", wp.ID, colorReg.Sprintf("r%d", wp.Register), colorValue.Sprint(wp.LastValue))
	case interpreter.StopHalt:
		colorSuccess.Fprintf(s.out, "Program halted after %d steps.\n", result.StepsExecuted)
	case interpreter.StopError:
		colorError.Fprintf(s.out, "Error: %v\n", result.Error)
	case interpreter.StopMaxSteps:
		colorWarning.Fprintf(s.out, "Stopped after %d steps.\n", result.StepsExecuted)
	case interpreter.StopInterrupted:
		colorWarning.Fprintf(s.out, "\nInterrupted after %d steps at %s\n", result.StepsExecuted, colorAddr.Sprintf("0x%08X", s.dbg.GetPC()))
	}

	s.showCurrentInstruction()
}

func (s *session) showCurrentInstruction() {
	if s.dbg.IsHalted() && s.dbg.State().Halted() {
		return
	}

	s.showDisassembly(s.dbg.GetPC(), 1)
}

func (s *session) showDisassembly(offset uint32, count int) {
	program := s.dbg.State().Program

	if uint64(offset) >= uint64(len(program)) {
		colorWarning.Fprintf(s.out, "%s is past the end of the program (%d bytes)\n", colorAddr.Sprintf("0x%08X", offset), len(program))
		return
	}

	lines := interpreter.Disassemble(program[offset:])
	if count < len(lines) {
		lines = lines[:count]
	}

	for _, line := range lines {
		line.Offset += offset
		fmt.Fprintln(s.out, interpreter.FormatDisassemblyLine(line, s.style, line.Offset == s.dbg.GetPC(), s.dbg.GetBreakpointAt(line.Offset) != nil))
	}
}

func (s *session) showBreakpoints() {
	breakpoints := s.dbg.ListBreakpoints()
	watchpoints := s.dbg.ListWatchpoints()

	if len(breakpoints) == 0 && len(watchpoints) == 0 {
		fmt.Fprintln(s.out, "No breakpoints or watchpoints.")
		return
	}

	if len(breakpoints) > 0 {
		colorHeader.Fprintln(s.out, "Breakpoints")
		for _, bp := range breakpoints {
			state := "enabled"
			if !bp.Enabled {
				state = "disabled"
			}
			fmt.Fprintf(s.out, "  %d: %s (%s, hits: %d)\n", bp.ID, colorAddr.Sprintf("0x%08X", bp.Offset), state, bp.HitCount)
		}
	}

	if len(watchpoints) > 0 {
		colorHeader.Fprintln(s.out, "Watchpoints")
		for _, wp := range watchpoints {
			fmt.Fprintf(s.out, "  %d: %s = %d (hits: %d)\n", wp.ID, colorReg.Sprintf("r%d", wp.Register), wp.LastValue, wp.HitCount)
		}
	}
}

func (s *session) print(what string) {
	state := s.dbg.State()

	switch strings.ToLower(what) {
	case "pc":
		fmt.Fprintf(s.out, "%s = %s\n", colorReg.Sprint("pc"), colorAddr.Sprintf("0x%08X", state.PC))
	case "remainder", "rem":
		fmt.Fprintf(s.out, "%s = %s\n", colorReg.Sprint("remainder"), colorValue.Sprint(state.Remainder))
	default:
		reg, err := parseRegister(what)
		if err != nil {
			s.errorf("%v", err)
			return
		}
		value, err := s.dbg.GetRegister(reg)
		if err != nil {
			s.errorf("%v", err)
			return
		}
		fmt.Fprintf(s.out, "%s = %s (%s)\n", colorReg.Sprintf("r%d", reg), colorValue.Sprint(value), colorHex.Sprintf("0x%08X", uint32(value)))
	}
}

func (s *session) set(what string, valueText string) {
	value, err := parseValue(valueText)
	if err != nil {
		s.errorf("Invalid value: %s", valueText)
		return
	}

	if strings.ToLower(what) == "pc" {
		s.dbg.SetPC(value)
		s.showCurrentInstruction()
		return
	}

	reg, err := parseRegister(what)
	if err != nil {
		s.errorf("%v", err)
		return
	}

	if err := s.dbg.SetRegister(reg, int32(value)); err != nil {
		s.errorf("%v", err)
		return
	}

	s.print(what)
}

// =============================================================================
// Argument parsing
// =============================================================================

func parseCount(args []string, fallback int) int {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseValue(s string) (uint32, error) {
	s = strings.ToLower(s)
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var val uint64
	var err error

	if strings.HasPrefix(s, "0x") {
		val, err = strconv.ParseUint(s[2:], 16, 32)
	} else {
		val, err = strconv.ParseUint(s, 10, 32)
	}

	if err != nil {
		return 0, err
	}

	if negative {
		return uint32(-int32(val)), nil
	}
	return uint32(val), nil
}

// Parses a register name (r0-r31) or index
func parseRegister(s string) (uint8, error) {
	idx, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "r"), 10, 8)
	if err != nil || idx >= interpreter.TotalRegisters {
		return 0, fmt.Errorf("invalid register '%s' (expected r0-r%d)", s, interpreter.TotalRegisters-1)
	}

	return uint8(idx), nil
}
