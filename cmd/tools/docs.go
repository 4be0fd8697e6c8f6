package tools

import (
	"fmt"
	"os"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/Manu343726/iridium/pkg/vm/instructions"
	"github.com/spf13/cobra"
)

var supportedModules = map[string]func() (string, error){
	"vm.instructions": instructions.Instructions.DocString,
}

var docsCmd = &cobra.Command{
	Use:   "docs module",
	Short: "Show iridium documentation",
	Long: `Dumps the documentation of the specified iridium module.
By default the tool dumps the documentation to stdout, but it can be redirected to a file using the --output flag.

Supported modules:
` + strings.Join(utils.Map(utils.SortedKeys(supportedModules), func(module string) string { return "  " + module }), "\n"),
	Args:      cobra.MatchAll(cobra.OnlyValidArgs, cobra.ExactArgs(1)),
	ValidArgs: utils.SortedKeys(supportedModules),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := supportedModules[args[0]]()
		if err != nil {
			return err
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile == "" {
			fmt.Fprintln(cmd.OutOrStdout(), doc)
			return nil
		}

		file, err := os.Create(outputFile)
		if err != nil {
			return utils.MakeError(err, "creating documentation file")
		}
		defer file.Close()

		_, err = fmt.Fprintln(file, doc)
		return err
	},
}

func init() {
	ToolsCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringP("output", "o", "", "Output file. If not specified, the documentation is dumped to stdout.")
}
