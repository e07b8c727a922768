package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix is the prefix of every environment variable ApplyEnv reads.
const EnvPrefix = "SIGSTRESS_"

// envSetters maps environment variables to the setting they override.
var envSetters = map[string]func(c *Config, v string) error{
	"SIGSTRESS_SIGNAL_NAME": func(c *Config, v string) error {
		c.Signal.Name = v
		return nil
	},
	"SIGSTRESS_SYNC_HANDLERS":  intSetter(func(c *Config) *int { return &c.Signal.SyncHandlers }),
	"SIGSTRESS_ASYNC_HANDLERS": intSetter(func(c *Config) *int { return &c.Signal.AsyncHandlers }),
	"SIGSTRESS_FAIL_EVERY":     intSetter(func(c *Config) *int { return &c.Signal.FailEvery }),
	"SIGSTRESS_EMITTERS":       intSetter(func(c *Config) *int { return &c.Load.Emitters }),
	"SIGSTRESS_EMITS":          intSetter(func(c *Config) *int { return &c.Load.Emits }),
	"SIGSTRESS_BURST":          intSetter(func(c *Config) *int { return &c.Load.Burst }),
	"SIGSTRESS_RATE": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Load.Rate = f
		return nil
	},
	"SIGSTRESS_WORK": func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		c.Load.Work = Duration(d)
		return nil
	},
	"SIGSTRESS_CLONE": boolSetter(func(c *Config) *bool { return &c.Load.Clone }),
	"SIGSTRESS_MOVE":  boolSetter(func(c *Config) *bool { return &c.Load.Move }),
	"SIGSTRESS_LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

// ApplyEnv overrides settings from SIGSTRESS_* environment variables found
// through lookup. A nil lookup uses os.LookupEnv.
// Note: Empty string values are treated as valid values, not as unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, set := range envSetters {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("environment variable %s: %w", name, err)
		}
	}
	return nil
}
