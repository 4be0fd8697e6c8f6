package cmd

import (
	"fmt"
	"os"

	"github.com/Manu343726/iridium/cmd/cli"
	"github.com/Manu343726/iridium/cmd/tools"
	"github.com/Manu343726/iridium/cmd/vm"
	"github.com/Manu343726/iridium/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	configFileUsed string
)

// rootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "iridium",
	Short: "A minimal register virtual machine",
	Long: `Iridium is a minimal register virtual machine: 32 signed 32-bit registers,
a byte addressed program counter and seven 4-byte instructions.

This CLI is the entry point for the Iridium ecosystem, providing access to the VM, tools, etc`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cli.Init(viper.GetViper(), configFileUsed)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cli.Close()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(tools.ToolsCmd, vm.VmCmd)
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.iridium.yaml)")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text, json")
	flags.String("log-file", "", "Also write logs as JSON lines into this file")
	flags.String("color", config.ColorAuto, "Colored output: auto, always, never")

	cobra.CheckErr(viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format")))
	cobra.CheckErr(viper.BindPFlag(config.KeyLogFile, flags.Lookup("log-file")))
	cobra.CheckErr(viper.BindPFlag(config.KeyColor, flags.Lookup("color")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	var searchPaths []string

	if cfgFile == "" {
		// Search config in home directory with name ".iridium" (without extension).
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		searchPaths = append(searchPaths, home)
	}

	config.Setup(viper.GetViper(), cfgFile, searchPaths...)

	used, err := config.ReadConfigFile(viper.GetViper())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}

	configFileUsed = used
}
