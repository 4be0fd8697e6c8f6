package tools

import (
	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/pkg/vm/loader"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input> <output>",
	Short: "Convert a program between file formats",
	Long: `Reads a program and writes it back in the format given by the output file extension.

Supported formats:
  .bin          - raw program bytes
  .yaml, .yml   - instruction listing
  .irm          - program image

Example:
  iridium tools encode program.yaml program.bin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := cli.LoadProgram(args[0])
		if err != nil {
			return err
		}

		if err := loader.Save(args[1], program.Program); err != nil {
			return err
		}

		cli.Logger().Info("program written", "path", args[1], "format", loader.DetectFormat(args[1]).String(), "bytes", len(program.Program))
		return nil
	},
}

func init() {
	ToolsCmd.AddCommand(encodeCmd)
}
