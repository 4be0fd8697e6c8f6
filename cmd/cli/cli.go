// Package cli holds the state shared by all iridium commands: settings, logger and
// console styling.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Manu343726/iridium/pkg/config"
	"github.com/Manu343726/iridium/pkg/log"
	"github.com/Manu343726/iridium/pkg/vm/interpreter"
	"github.com/Manu343726/iridium/pkg/vm/loader"
	"github.com/fatih/color"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	settings *config.Settings
	logger   = log.Discard()
	closeLog = func() error { return nil }
)

// Init loads the settings from v and sets up the logger and console colors
func Init(v *viper.Viper, configFileUsed string) error {
	s, err := config.Load(v)
	if err != nil {
		return err
	}

	opts, err := s.LogOptions(os.Stderr)
	if err != nil {
		return err
	}

	l, c, err := log.New(opts)
	if err != nil {
		return err
	}

	settings, logger, closeLog = s, l, c
	color.NoColor = !s.UseColor(IsTerminal(os.Stdout))

	if configFileUsed != "" {
		logger.Debug("using config file", "path", configFileUsed)
	}
	logger.Debug("logger ready", "options", opts.String())

	return nil
}

// Close releases the resources acquired by Init
func Close() {
	if err := closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
	}
}

// Settings returns the current settings. Defaults are returned if Init was not called
func Settings() *config.Settings {
	if settings == nil {
		v := viper.New()
		config.SetDefaults(v)

		s, err := config.Load(v)
		if err != nil {
			panic(err)
		}

		settings = s
	}

	return settings
}

// Logger returns the process logger
func Logger() *slog.Logger {
	return logger
}

// IsTerminal returns true if the given output is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Style returns the formatting style for the given output
func Style(w io.Writer) interpreter.FormatStyle {
	if Settings().UseColor(IsTerminal(w)) {
		return interpreter.StyleColored
	}

	return interpreter.StylePlain
}

// LoadProgram loads a program file, logging what was loaded
func LoadProgram(path string) (*loader.Result, error) {
	result, err := loader.LoadFile(path)
	if err != nil {
		logger.Error("loading program failed", "path", path, "error", err)
		return nil, err
	}

	logger.Info("program loaded", "path", path, "format", result.Format.String(), "name", result.Name, "bytes", len(result.Program))
	return result, nil
}
