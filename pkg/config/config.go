// Package config holds the settings of the iridium tools.
//
// Settings are read through viper from, in order of precedence: bound command line
// flags, IRIDIUM_* environment variables (IRIDIUM_EXEC_MAX_STEPS for exec.max_steps),
// the config file (~/.iridium.yaml by default) and the defaults below.
package config

import (
	"errors"
	"io"
	"strings"

	"github.com/Manu343726/iridium/pkg/log"
	"github.com/Manu343726/iridium/pkg/utils"
	"github.com/spf13/viper"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Setting keys
const (
	KeyMaxSteps  = "exec.max_steps"
	KeyTrace     = "exec.trace"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogFile   = "log.file"
	KeyColor     = "output.color"
)

const (
	EnvPrefix  = "IRIDIUM"
	ConfigName = ".iridium"
)

// Color modes of the console output
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type ExecSettings struct {
	// Maximum number of instructions executed by a run, 0 means unlimited
	MaxSteps int `mapstructure:"max_steps"`
	// Log every executed instruction
	Trace bool `mapstructure:"trace"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type OutputSettings struct {
	Color string `mapstructure:"color"`
}

// Settings of the iridium tools
type Settings struct {
	Exec   ExecSettings   `mapstructure:"exec"`
	Log    LogSettings    `mapstructure:"log"`
	Output OutputSettings `mapstructure:"output"`
}

// SetDefaults registers the default value of every setting
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMaxSteps, 0)
	v.SetDefault(KeyTrace, false)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, string(log.FormatText))
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyColor, ColorAuto)
}

// Setup configures a viper instance to read the iridium settings. If configFile is empty,
// a .iridium config file is searched in the given directories
func Setup(v *viper.Viper, configFile string, searchPaths ...string) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		for _, path := range searchPaths {
			v.AddConfigPath(path)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadConfigFile reads the config file, if any. Returns the path of the file used, or an
// empty string if no config file was found
func ReadConfigFile(v *viper.Viper) (string, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}

		return "", utils.MakeError(err, "reading config file")
	}

	return v.ConfigFileUsed(), nil
}

// Load decodes and validates the settings
func Load(v *viper.Viper) (*Settings, error) {
	var settings Settings

	if err := v.Unmarshal(&settings); err != nil {
		return nil, utils.MakeError(ErrInvalidSettings, "%v", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Validate checks all settings hold supported values
func (s *Settings) Validate() error {
	if s.Exec.MaxSteps < 0 {
		return utils.MakeError(ErrInvalidSettings, "%v must not be negative, got %v", KeyMaxSteps, s.Exec.MaxSteps)
	}

	switch s.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return utils.MakeError(ErrInvalidSettings, "%v must be one of %v, %v or %v, got '%v'", KeyColor, ColorAuto, ColorAlways, ColorNever, s.Output.Color)
	}

	if _, err := s.LogOptions(nil); err != nil {
		return utils.MakeError(ErrInvalidSettings, "%v", err)
	}

	return nil
}

// LogOptions returns the logger options for the given main log output
func (s *Settings) LogOptions(output io.Writer) (log.Options, error) {
	level, err := log.ParseLevel(s.Log.Level)
	if err != nil {
		return log.Options{}, err
	}

	format, err := log.ParseFormat(s.Log.Format)
	if err != nil {
		return log.Options{}, err
	}

	return log.Options{
		Level:  level,
		Format: format,
		Output: output,
		File:   s.Log.File,
	}, nil
}

// UseColor returns whether console output should be colored, given whether the output is a terminal
func (s *Settings) UseColor(isTerminal bool) bool {
	switch s.Output.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}
