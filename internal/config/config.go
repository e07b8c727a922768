package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the complete sigstress configuration.
type Config struct {
	Signal  SignalConfig  `toml:"signal"`
	Load    LoadConfig    `toml:"load"`
	Logging LoggingConfig `toml:"logging"`
}

// SignalConfig describes the signal under test.
type SignalConfig struct {
	// Name labels logs and metrics.
	Name string `toml:"name"`
	// SyncHandlers is the number of synchronous handlers to register.
	SyncHandlers int `toml:"sync_handlers"`
	// AsyncHandlers is the number of asynchronous handlers to register.
	AsyncHandlers int `toml:"async_handlers"`
	// MaxHandlers caps the registry; 0 means no cap.
	MaxHandlers uint64 `toml:"max_handlers"`
	// FailEvery makes every Nth invocation of a handler return an error;
	// 0 disables failures.
	FailEvery int `toml:"fail_every"`
}

// LoadConfig describes the emit load.
type LoadConfig struct {
	// Emitters is the number of goroutines calling Emit concurrently.
	Emitters int `toml:"emitters"`
	// Emits is the total number of Emit calls across all emitters.
	Emits int `toml:"emits"`
	// Rate limits Emit calls per second across all emitters; 0 is unlimited.
	Rate float64 `toml:"rate"`
	// Burst is the limiter burst size.
	Burst int `toml:"burst"`
	// Work is how long each handler spins.
	Work Duration `toml:"work"`
	// Clone emits on a clone of the signal halfway through the run.
	Clone bool `toml:"clone"`
	// Move moves the signal to a new instance halfway through the run.
	Move bool `toml:"move"`
}

// LoggingConfig configures the JSON logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, notice, warning, error, disabled.
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the duration in Go syntax.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Signal: SignalConfig{
			Name:          "sigstress",
			SyncHandlers:  4,
			AsyncHandlers: 4,
		},
		Load: LoadConfig{
			Emitters: 4,
			Emits:    1000,
			Burst:    1,
			Work:     Duration(10 * time.Microsecond),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// TotalHandlers returns the number of handlers the run registers.
func (c *Config) TotalHandlers() int {
	return c.Signal.SyncHandlers + c.Signal.AsyncHandlers
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(path string, value any, msg string) {
		errs = append(errs, &ValidationError{Path: path, Value: value, Message: msg})
	}

	if c.Signal.SyncHandlers < 0 {
		invalid("signal.sync_handlers", c.Signal.SyncHandlers, "must not be negative")
	}
	if c.Signal.AsyncHandlers < 0 {
		invalid("signal.async_handlers", c.Signal.AsyncHandlers, "must not be negative")
	}
	if c.TotalHandlers() == 0 {
		invalid("signal", 0, "at least one handler is required")
	}
	if c.Signal.MaxHandlers > 0 && uint64(c.TotalHandlers()) > c.Signal.MaxHandlers {
		invalid("signal.max_handlers", c.Signal.MaxHandlers, "smaller than the number of handlers")
	}
	if c.Signal.FailEvery < 0 {
		invalid("signal.fail_every", c.Signal.FailEvery, "must not be negative")
	}

	if c.Load.Emitters < 1 {
		invalid("load.emitters", c.Load.Emitters, "must be at least 1")
	}
	if c.Load.Emits < 0 {
		invalid("load.emits", c.Load.Emits, "must not be negative")
	}
	if c.Load.Rate < 0 {
		invalid("load.rate", c.Load.Rate, "must not be negative")
	}
	if c.Load.Rate > 0 && c.Load.Burst < 1 {
		invalid("load.burst", c.Load.Burst, "must be at least 1 when rate is set")
	}
	if c.Load.Work < 0 {
		invalid("load.work", c.Load.Work, "must not be negative")
	}
	if c.Load.Clone && c.Load.Move {
		invalid("load.move", c.Load.Move, "clone and move are mutually exclusive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "notice", "warn", "warning", "error", "err", "disabled", "off", "":
	default:
		invalid("logging.level", c.Logging.Level, "unknown level")
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config: %w", errors.Join(errs...))
}
