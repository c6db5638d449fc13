package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/toolmap/pkg/constants"
)

// Config describes how command output is logged.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or disabled.
	Level string

	// Format is json, console or auto. Auto picks console on a terminal.
	Format string

	// Output is stderr, stdout, discard or a file path that is appended to.
	Output string

	// TimeFormat names a console timestamp layout (kitchen, rfc3339, unix)
	// or holds a custom Go layout.
	TimeFormat string

	// NoColor disables colors in console output.
	NoColor bool

	// AddCaller adds file:line to every entry.
	AddCaller bool

	// Fields are attached to every entry, for example a run label.
	Fields map[string]any
}

// DefaultConfig returns the configuration used by the CLI when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// NewLoggerFromConfig builds a logger from cfg. A nil cfg means DefaultConfig.
// The global zerolog level follows cfg.Level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logCtx := zerolog.New(formatWriter(cfg, openOutput(cfg.Output))).
		Level(level).
		With().
		Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}
	for k, v := range cfg.Fields {
		logCtx = addFieldToContext(logCtx, k, v)
	}
	return logCtx.Logger()
}

// Configure replaces the default logger with one built from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// openOutput resolves an output name. A file that cannot be opened falls
// back to stderr so logging never stops a run.
func openOutput(name string) io.Writer {
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr
	case "stdout":
		return os.Stdout
	case "discard", "none":
		return io.Discard
	}
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions) //nolint:gosec // operator-supplied log path
	if err != nil {
		return os.Stderr
	}
	return file
}

// formatWriter wraps out in a console writer when the format asks for one.
func formatWriter(cfg *Config, out io.Writer) io.Writer {
	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := out.(*os.File); ok && isTerminal(f) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: parseTimeFormat(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

var levelAliases = map[string]zerolog.Level{
	"warning":  zerolog.WarnLevel,
	"none":     zerolog.Disabled,
	"off":      zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

// parseLevel accepts zerolog level names plus a few aliases. Unknown names
// mean info.
func parseLevel(level string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if l, ok := levelAliases[name]; ok {
		return l
	}
	if l, err := zerolog.ParseLevel(name); err == nil && name != "" {
		return l
	}
	return zerolog.InfoLevel
}

var timeFormats = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"unix":        "",
	"epoch":       "",
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
}

// parseTimeFormat maps a named layout to a Go layout. Strings that already
// look like a layout pass through; anything else is kitchen time.
func parseTimeFormat(format string) string {
	if layout, ok := timeFormats[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}
