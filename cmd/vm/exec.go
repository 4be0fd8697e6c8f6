package vm

import (
	"errors"
	"fmt"
	"io"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/config"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrStepLimitReached = errors.New("step limit reached")

var execVerbose bool

var execCmd = &cobra.Command{
	Use:   "exec <file>",
	Short: "Execute an iridium program",
	Long: `Loads and executes an iridium program until it halts, runs past its end or fails.
The final register values are printed to stdout.

Example:
  iridium vm exec program.bin
  iridium vm exec --trace program.yaml
  iridium vm exec --max-steps 1000 program.irm`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	VmCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVarP(&execVerbose, "verbose", "v", false, "Print execution details")
	execCmd.Flags().IntP("max-steps", "n", 0, "Maximum number of steps to execute (0 = unlimited)")
	execCmd.Flags().BoolP("trace", "t", false, "Trace each instruction execution")

	cobra.CheckErr(viper.BindPFlag(config.KeyMaxSteps, execCmd.Flags().Lookup("max-steps")))
	cobra.CheckErr(viper.BindPFlag(config.KeyTrace, execCmd.Flags().Lookup("trace")))
}

func runExec(cmd *cobra.Command, args []string) error {
	program, err := cli.LoadProgram(args[0])
	if err != nil {
		return err
	}

	settings := cli.Settings()
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	interp := interpreter.NewInterpreter()
	interp.LoadProgram(program.Program)

	tracers := []interpreter.Tracer{interpreter.NewLogTracer(cli.Logger())}
	if settings.Exec.Trace {
		tracers = append(tracers, newConsoleTracer(stderr))
	}
	interp.SetTracer(interpreter.MultiTracer(tracers...))

	if execVerbose {
		fmt.Fprintf(stderr, "Loaded %s (%v, %d bytes)\n", program.Name, program.Format, len(program.Program))
		fmt.Fprintf(stderr, "Starting execution at PC=0x%08X\n", interp.State().PC)
	}

	result := interpreter.NewDebugger(interp).Run(settings.Exec.MaxSteps)

	cli.Logger().Info("execution finished",
		"reason", result.StopReason.String(),
		"steps", result.StepsExecuted,
		"pc", fmt.Sprintf("0x%08X", interp.State().PC))

	if execVerbose {
		fmt.Fprintf(stderr, "\n=== Execution %s ===\n", result.StopReason)
		fmt.Fprintf(stderr, "Steps executed: %d\n", result.StepsExecuted)
		fmt.Fprintf(stderr, "Final PC: 0x%08X\n", interp.State().PC)
	}

	fmt.Fprint(stdout, interpreter.FormatRegisters(interp.State(), cli.Style(stdout)))

	switch result.StopReason {
	case interpreter.StopError:
		return result.Error
	case interpreter.StopMaxSteps:
		return fmt.Errorf("%w: stopped after %d steps at 0x%08X", ErrStepLimitReached, result.StepsExecuted, interp.State().PC)
	default:
		return nil
	}
}

// Prints each trace to the console, one line per instruction
func newConsoleTracer(w io.Writer) interpreter.Tracer {
	colorPC := color.New(color.FgCyan)
	colorError := color.New(color.FgRed, color.Bold)
	step := 0

	return interpreter.TracerFunc(func(trace *interpreter.Trace) {
		prefix := fmt.Sprintf("[%4d] %s", step, colorPC.Sprintf("0x%08X", trace.PC))
		step++

		switch trace.Operation {
		case interpreter.TraceError:
			fmt.Fprintf(w, "%s %s\n", prefix, colorError.Sprint(trace.Error))
		case interpreter.TraceHalt:
			fmt.Fprintf(w, "%s %s\n", prefix, trace.Instruction)
		default:
			fmt.Fprintf(w, "%s %-20s %s\n", prefix, trace.Instruction, trace.Result)
		}
	})
}
