package vm

import (
	"github.com/spf13/cobra"
)

// VmCmd groups the commands running programs in the iridium VM
var VmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Run iridium programs",
	Long: `Commands to execute, debug and inspect iridium programs.

Programs can be given as raw binaries (.bin), YAML instruction listings (.yaml, .yml)
or program images (.irm).`,
}
