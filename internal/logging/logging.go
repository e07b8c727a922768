// Package logging builds the structured JSON logger used by sigstress.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// ParseLevel parses a level name. The empty string is LevelInformational.
func ParseLevel(s string) (logiface.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return logiface.LevelTrace, nil
	case "debug":
		return logiface.LevelDebug, nil
	case "info", "":
		return logiface.LevelInformational, nil
	case "notice":
		return logiface.LevelNotice, nil
	case "warn", "warning":
		return logiface.LevelWarning, nil
	case "error", "err":
		return logiface.LevelError, nil
	case "disabled", "off":
		return logiface.LevelDisabled, nil
	default:
		return logiface.LevelDisabled, fmt.Errorf("unknown log level %q", s)
	}
}

// Options configures New.
type Options struct {
	// Level is the minimum level written.
	Level logiface.Level
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
}

// New creates a JSON logger writing one event per line.
func New(opts Options) *logiface.Logger[logiface.Event] {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(out)),
		stumpy.L.WithLevel(opts.Level),
	).Logger()
}

// NewFromString is New with the level given by name.
func NewFromString(level string, out io.Writer) (*logiface.Logger[logiface.Event], error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return New(Options{Level: lvl, Output: out}), nil
}
