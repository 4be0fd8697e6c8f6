// Package log builds the structured logger used by the iridium tools.
//
// Records are always written to a human readable handler (usually stderr) and
// optionally duplicated into a JSON lines file.
package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Manu343726/iridium/pkg/utils"
	slogmulti "github.com/samber/slog-multi"
)

var ErrInvalidLogSettings = errors.New("invalid log settings")

// Output format of the main log handler
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options configures a logger
type Options struct {
	// Minimum level of the records written
	Level slog.Level
	// Format of the records written to Output
	Format Format
	// Main log output. Defaults to stderr
	Output io.Writer
	// If not empty, records are also appended as JSON lines to this file
	File string
}

// ParseLevel parses a level name (debug, info, warn, error), case insensitive
func ParseLevel(level string) (slog.Level, error) {
	var result slog.Level

	if err := result.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return 0, utils.MakeError(ErrInvalidLogSettings, "unknown log level '%v'", level)
	}

	return result, nil
}

// ParseFormat parses a log format name (text, json)
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", utils.MakeError(ErrInvalidLogSettings, "unknown log format '%v'", format)
	}
}

// New builds a logger from the given options. The returned close function releases the log
// file, if any, and must be called when the logger is no longer used
func New(opts Options) (*slog.Logger, func() error, error) {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var main slog.Handler
	switch opts.Format {
	case FormatText, "":
		main = slog.NewTextHandler(output, handlerOpts)
	case FormatJSON:
		main = slog.NewJSONHandler(output, handlerOpts)
	default:
		return nil, nil, utils.MakeError(ErrInvalidLogSettings, "unknown log format '%v'", opts.Format)
	}

	if opts.File == "" {
		return slog.New(main), func() error { return nil }, nil
	}

	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, utils.MakeError(err, "opening log file")
	}

	logger := slog.New(slogmulti.Fanout(
		main,
		slog.NewJSONHandler(file, handlerOpts),
	))

	return logger, file.Close, nil
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
}

// Describes the logger configuration, for diagnostics
func (o Options) String() string {
	file := "none"
	if o.File != "" {
		file = o.File
	}

	return fmt.Sprintf("level=%v format=%v file=%v", o.Level, o.Format, file)
}
