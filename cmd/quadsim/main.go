// cmd/quadsim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/logging"
)

// options holds the command line flags.
type options struct {
	configPath    string
	createDefault bool
	renderer      string
	strategy      string
	seed          int
	frames        int
	dt            float64
	width         float64
	height        float64
	compare       bool
	logFile       string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("quadsim", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "quadsim.yaml", "Path to configuration file (.yaml, .yml or .json)")
	fs.BoolVar(&opts.createDefault, "default", false, "Write the default configuration to -config and exit")
	fs.StringVar(&opts.renderer, "renderer", "headless", "Renderer type: 'headless', 'terminal' or 'engo'")
	fs.StringVar(&opts.strategy, "strategy", "", "Detection strategy: 'quadtree' or 'brute-force' (overrides config)")
	fs.IntVar(&opts.seed, "seed", -1, "Number of random bodies to start with (overrides config)")
	fs.IntVar(&opts.frames, "frames", 600, "Frames to run (headless only)")
	fs.Float64Var(&opts.dt, "dt", 1.0/60.0, "Fixed frame time in seconds (headless only)")
	fs.Float64Var(&opts.width, "width", 0, "World width (overrides config)")
	fs.Float64Var(&opts.height, "height", 0, "World height (overrides config)")
	fs.BoolVar(&opts.compare, "compare", false, "Run the same seeded world under both strategies (headless only)")
	fs.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	ctx := logging.WithCorrelationID(context.Background(), logging.GenerateCorrelationID())

	if opts.createDefault {
		if err := writeDefaultConfig(ctx, logger, opts.configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", opts.configPath,
			)
			closeLog()
			os.Exit(1)
		}
		return
	}

	simConfig, err := loadConfig(ctx, logger, opts)
	if err != nil {
		logger.Error(ctx, "Invalid configuration", err, "config_path", opts.configPath)
		closeLog()
		os.Exit(1)
	}

	switch opts.renderer {
	case "engo":
		err = runEngo(ctx, logger, simConfig)
	case "terminal":
		err = runTerminal(ctx, logger, simConfig)
	case "headless":
		err = runHeadless(ctx, logger, simConfig, opts)
	default:
		err = fmt.Errorf("unknown renderer %q", opts.renderer)
	}
	if err != nil {
		logger.Error(ctx, "Simulation failed", err, "renderer", opts.renderer)
		closeLog()
		os.Exit(1)
	}
}

// newLogger returns the process logger. The terminal viewer owns stdout,
// so without -log-file it logs nothing.
func newLogger(opts *options) (*logging.Logger, func(), error) {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		level, _ := logging.ParseLevel(os.Getenv(logging.LevelEnvVar))
		return logging.NewLoggerWithWriter(f, level), func() { f.Close() }, nil
	}
	if opts.renderer == "terminal" {
		return logging.NewLoggerWithWriter(io.Discard, slog.LevelError), func() {}, nil
	}
	return logging.NewLogger(), func() {}, nil
}

// writeDefaultConfig saves DefaultConfig to path, as JSON or YAML by
// extension.
func writeDefaultConfig(ctx context.Context, logger *logging.Logger, path string) error {
	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	logger.Info(ctx, "Created default configuration file", "config_path", path)
	return nil
}

// loadConfig reads the config file if present, then applies environment
// overrides and flags, and validates the result.
func loadConfig(ctx context.Context, logger *logging.Logger, opts *options) (*config.SimConfig, error) {
	var (
		simConfig *config.SimConfig
		err       error
	)

	if _, statErr := os.Stat(opts.configPath); os.IsNotExist(statErr) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", opts.configPath,
		)
		simConfig, err = config.LoadConfigFromEnv()
	} else {
		simConfig, err = config.LoadConfig(opts.configPath)
		if err == nil {
			err = config.ApplyEnv(simConfig)
		}
	}
	if err != nil {
		return nil, logging.WrapError(err, "failed to load configuration")
	}
	applyFlags(simConfig, opts)

	if err := simConfig.Validate(); err != nil {
		return nil, err
	}
	return simConfig, nil
}

func applyFlags(simConfig *config.SimConfig, opts *options) {
	if opts.strategy != "" {
		if s, err := engine.ParseStrategy(opts.strategy); err == nil {
			simConfig.Detection.Strategy = s.String()
		} else {
			simConfig.Detection.Strategy = opts.strategy
		}
	}
	if opts.seed >= 0 {
		simConfig.Seed.Count = opts.seed
	}
	if opts.width > 0 {
		simConfig.World.Width = opts.width
	}
	if opts.height > 0 {
		simConfig.World.Height = opts.height
	}
}
