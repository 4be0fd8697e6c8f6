package vm

import (
	"fmt"
	"strings"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

// Step limit of a single continue in the viewer when no exec.max_steps is configured
const tuiDefaultRunSteps = 100000

var tuiCmd = &cobra.Command{
	Use:   "tui <program>",
	Short: "Step through a program in a full screen viewer",
	Long: `Shows the program disassembly and the machine registers side by side while
stepping through an iridium program.

Keys:
  s, space   - Execute one instruction
  c          - Continue until a breakpoint, halt or the step limit
  b          - Toggle a breakpoint at the program counter
  r          - Reset registers and program counter
  q, Esc     - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTui,
}

func init() {
	VmCmd.AddCommand(tuiCmd)
}

// tuiModel holds the viewer state, independent of the terminal widgets rendering it
type tuiModel struct {
	dbg        *interpreter.Debugger
	maxSteps   int
	lastResult *interpreter.ExecutionResult
	message    string
}

func newTuiModel(dbg *interpreter.Debugger, maxSteps int) *tuiModel {
	if maxSteps <= 0 {
		maxSteps = tuiDefaultRunSteps
	}

	return &tuiModel{
		dbg:      dbg,
		maxSteps: maxSteps,
	}
}

// Applies a key press. Returns true if the viewer must be closed
func (m *tuiModel) handleKey(key rune) bool {
	m.message = ""

	switch key {
	case 's', ' ':
		m.lastResult = m.dbg.Step()
	case 'c':
		m.lastResult = m.dbg.Run(m.maxSteps)
	case 'b':
		pc := m.dbg.GetPC()
		if bp := m.dbg.GetBreakpointAt(pc); bp != nil {
			m.dbg.RemoveBreakpoint(bp.ID)
			m.message = fmt.Sprintf("breakpoint removed at 0x%08X", pc)
		} else {
			m.dbg.AddBreakpoint(pc)
			m.message = fmt.Sprintf("breakpoint set at 0x%08X", pc)
		}
	case 'r':
		m.dbg.Interpreter().Reset()
		m.lastResult = nil
		m.message = "machine reset"
	case 'q':
		return true
	}

	return false
}

// Returns the disassembly with tview color tags, and the line holding the program counter (-1 if none)
func (m *tuiModel) disassemblyText() (string, int) {
	var builder strings.Builder
	pc := m.dbg.GetPC()
	pcLine := -1

	for i, line := range interpreter.Disassemble(m.dbg.State().Program) {
		isPC := line.Offset == pc
		text := tview.Escape(interpreter.FormatDisassemblyLine(line, interpreter.StylePlain, isPC, m.dbg.GetBreakpointAt(line.Offset) != nil))

		switch {
		case isPC:
			pcLine = i
			builder.WriteString("[black:green]" + text + "[-:-]")
		case line.Instruction == nil:
			builder.WriteString("[red]" + text + "[-]")
		default:
			builder.WriteString(text)
		}

		builder.WriteString("\n")
	}

	return builder.String(), pcLine
}

func (m *tuiModel) registersText() string {
	return tview.Escape(interpreter.FormatRegisters(m.dbg.State(), interpreter.StylePlain))
}

func (m *tuiModel) statusText() string {
	var parts []string

	if m.lastResult != nil {
		status := fmt.Sprintf("[yellow]%s[-] after %d steps", m.lastResult.StopReason, m.lastResult.StepsExecuted)
		if m.lastResult.Error != nil {
			status += ": [red]" + tview.Escape(m.lastResult.Error.Error()) + "[-]"
		}
		parts = append(parts, status)
	}

	if m.message != "" {
		parts = append(parts, m.message)
	}

	parts = append(parts, "[::d]s: step  c: continue  b: breakpoint  r: reset  q: quit[::-]")
	return " " + strings.Join(parts, " | ")
}

func runTui(cmd *cobra.Command, args []string) error {
	program, err := cli.LoadProgram(args[0])
	if err != nil {
		return err
	}

	interp := interpreter.NewInterpreter()
	interp.LoadProgram(program.Program)
	interp.SetTracer(interpreter.NewLogTracer(cli.Logger()))

	model := newTuiModel(interpreter.NewDebugger(interp), cli.Settings().Exec.MaxSteps)

	app := tview.NewApplication()

	disasm := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	disasm.SetBorder(true).SetTitle(fmt.Sprintf(" %s (%d bytes) ", program.Name, len(program.Program)))

	registers := tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	registers.SetBorder(true).SetTitle(" Registers ")

	status := tview.NewTextView().SetDynamicColors(true)

	refresh := func() {
		text, pcLine := model.disassemblyText()
		disasm.SetText(text)
		if pcLine >= 0 {
			_, _, _, height := disasm.GetInnerRect()
			disasm.ScrollTo(max(pcLine-height/2, 0), 0)
		}

		registers.SetText(model.registersText())
		status.SetText(model.statusText())
	}

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tview.NewFlex().
			AddItem(disasm, 0, 1, false).
			AddItem(registers, 78, 0, false), 0, 1, false).
		AddItem(status, 1, 0, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if model.handleKey(event.Rune()) {
				app.Stop()
			} else {
				refresh()
			}
			return nil
		}
		return event
	})

	refresh()
	return app.SetRoot(layout, true).Run()
}
