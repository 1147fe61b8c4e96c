// Package logging builds the zerolog logger shared by every component.
// Output always goes to stderr by default: stdout carries the MCP protocol.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// New returns a logger at level writing format ("json" or "console") to out.
// A nil out means os.Stderr.
func New(level, format string, out io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.Nop(), errors.Newf("unsupported log level %q", level)
	}

	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "", "json":
	default:
		return zerolog.Nop(), errors.Newf("unsupported log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
