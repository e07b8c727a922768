// Package main is the entry point for the sigstress load generator.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/sigslot/internal/config"
	"github.com/dshills/sigslot/internal/logging"
	"github.com/dshills/sigslot/internal/stress"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitInvariant = 2
	exitUsage     = 64
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// flagValues holds command-line overrides. A flag overrides the file and
// environment only when it was set explicitly.
type flagValues struct {
	configPath  string
	syncN       int
	asyncN      int
	emitters    int
	emits       int
	rate        float64
	work        time.Duration
	failEvery   int
	clone       bool
	move        bool
	logLevel    string
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sigstress", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var fv flagValues
	fs.StringVar(&fv.configPath, "config", "", "Path to TOML configuration file")
	fs.StringVar(&fv.configPath, "c", "", "Path to TOML configuration file (shorthand)")
	fs.IntVar(&fv.syncN, "sync", 0, "Number of synchronous handlers")
	fs.IntVar(&fv.asyncN, "async", 0, "Number of asynchronous handlers")
	fs.IntVar(&fv.emitters, "emitters", 0, "Number of concurrent emitters")
	fs.IntVar(&fv.emits, "emits", 0, "Total number of Emit calls")
	fs.Float64Var(&fv.rate, "rate", 0, "Emit calls per second, 0 for unlimited")
	fs.DurationVar(&fv.work, "work", 0, "Busy time per handler call")
	fs.IntVar(&fv.failEvery, "fail-every", 0, "Fail every Nth call of each handler")
	fs.BoolVar(&fv.clone, "clone", false, "Emit on a clone from the midpoint on")
	fs.BoolVar(&fv.move, "move", false, "Move the signal at the midpoint")
	fs.StringVar(&fv.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.BoolVar(&fv.showVersion, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "sigstress - load generator for sigslot signals\n\n")
		fmt.Fprintf(stderr, "Usage: sigstress [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  sigstress -emits 100000 -emitters 16\n")
		fmt.Fprintf(stderr, "  sigstress -c stress.toml -move\n")
		fmt.Fprintf(stderr, "  SIGSTRESS_RATE=500 sigstress -fail-every 10\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if fv.showVersion {
		fmt.Fprintf(stdout, "sigstress %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return exitOK
	}

	cfg, err := loadConfig(fs, fv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	logger, err := logging.NewFromString(cfg.Logging.Level, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := stress.NewRunner(cfg, logger).Run(ctx)
	if report != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(report); encErr != nil {
			fmt.Fprintf(stderr, "Error: writing report: %v\n", encErr)
		}
	}
	if err != nil {
		logger.Err().Err(err).Log("stress run failed")
		return exitError
	}

	if err := report.Check(); err != nil {
		logger.Err().Err(err).Log("invariants violated")
		return exitInvariant
	}

	logger.Info().
		Uint64("emits", report.Emits).
		Dur("duration", report.Duration).
		Log("stress run passed")
	return exitOK
}

// loadConfig resolves defaults, the config file, the environment and flags,
// in that order, and validates the result.
func loadConfig(fs *flag.FlagSet, fv flagValues) (*config.Config, error) {
	cfg, err := config.NewLoader().Load(fv.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sync":
			cfg.Signal.SyncHandlers = fv.syncN
		case "async":
			cfg.Signal.AsyncHandlers = fv.asyncN
		case "emitters":
			cfg.Load.Emitters = fv.emitters
		case "emits":
			cfg.Load.Emits = fv.emits
		case "rate":
			cfg.Load.Rate = fv.rate
		case "work":
			cfg.Load.Work = config.Duration(fv.work)
		case "fail-every":
			cfg.Signal.FailEvery = fv.failEvery
		case "clone":
			cfg.Load.Clone = fv.clone
		case "move":
			cfg.Load.Move = fv.move
		case "log-level":
			cfg.Logging.Level = fv.logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
