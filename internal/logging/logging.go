// Package logging builds the zerolog logger shared by the server, the CLI and
// the recognition pipeline.
//
// Logs always go to a writer other than stdout, which carries the MCP
// protocol. When that writer is a terminal the human-readable console format
// is used; otherwise each event is one JSON line.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "MOCKUP_MCP_LOG_LEVEL"

// ParseLevel converts a level name. The empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
}

// New creates a logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	out := w
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		out = zerolog.ConsoleWriter{Out: f, TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "mockup-mcp").
		Logger()
}

// FromEnv creates a stderr logger at the level named by fallback, overridden
// by MOCKUP_MCP_LOG_LEVEL when set.
func FromEnv(fallback string) (zerolog.Logger, error) {
	name := fallback
	if v := os.Getenv(EnvLevel); v != "" {
		name = v
	}
	level, err := ParseLevel(name)
	if err != nil {
		return zerolog.Nop(), err
	}
	return New(os.Stderr, level), nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
