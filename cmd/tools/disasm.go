package tools

import (
	"fmt"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/spf13/cobra"
)

var disasmCmd = &cobra.Command{
	Use:   "disasm <file>",
	Short: "Disassemble an iridium program",
	Long: `Prints the instruction records of a program, one per line, with their offsets and raw bytes.
Records that cannot be decoded are printed as .byte directives.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := cli.LoadProgram(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		style := cli.Style(out)

		for _, line := range interpreter.Disassemble(program.Program) {
			fmt.Fprintln(out, interpreter.FormatDisassemblyLine(line, style, false, false))
		}

		return nil
	},
}

func init() {
	ToolsCmd.AddCommand(disasmCmd)
}
