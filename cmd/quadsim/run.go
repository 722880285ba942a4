// cmd/quadsim/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EngoEngine/engo"
	"golang.org/x/term"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/render"
	engorender "github.com/opd-ai/go-quadsim/pkg/render/engo"
)

// runHeadless steps the simulation a fixed number of frames and logs a
// summary. With -compare the same seeded world runs once per strategy.
func runHeadless(ctx context.Context, logger *logging.Logger, simConfig *config.SimConfig, opts *options) error {
	if opts.frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.frames)
	}

	strategies := []string{simConfig.Detection.Strategy}
	if opts.compare {
		strategies = []string{config.StrategyBruteForce, config.StrategyQuadtree}
		if simConfig.Seed.RandomSeed == 0 {
			simConfig.Seed.RandomSeed = uint64(time.Now().UnixNano())
		}
	}

	for _, strategy := range strategies {
		runConfig := *simConfig
		runConfig.Detection.Strategy = strategy

		summary, err := headlessRun(ctx, logger, &runConfig, opts.frames, opts.dt)
		if err != nil {
			return err
		}
		logger.Info(ctx, "Headless run complete",
			"strategy", strategy,
			"frames", summary.frames,
			"bodies", summary.bodies,
			"checks", summary.checks,
			"collisions", summary.totals.For(summary.strategy),
			"dropped", summary.dropped,
			"elapsed_ms", summary.elapsed.Milliseconds(),
		)
	}
	return nil
}

// runSummary aggregates a headless run.
type runSummary struct {
	strategy engine.Strategy
	frames   uint64
	bodies   int
	checks   int
	dropped  int
	totals   engine.Totals
	elapsed  time.Duration
}

func headlessRun(ctx context.Context, logger *logging.Logger, simConfig *config.SimConfig, frames int, dt float64) (runSummary, error) {
	sim, err := engine.NewSimulation(simConfig, engine.WithLogger(logger), engine.WithContext(ctx))
	if err != nil {
		return runSummary{}, err
	}
	renderer := render.NewNullRenderer(logger)

	var summary runSummary
	start := time.Now()
	for i := 0; i < frames; i++ {
		stats := sim.StepFrame(dt)
		summary.checks += stats.ChecksPerformed
		summary.dropped += stats.DroppedBodies
		render.DrawFrame(renderer, sim, render.NewHUD(sim, render.FPSFromDelta(dt), false))
	}
	summary.elapsed = time.Since(start)
	summary.strategy = sim.Strategy()
	summary.frames = sim.Frame()
	summary.bodies = sim.BodyCount()
	summary.totals = sim.Totals()
	return summary, nil
}

// runEngo opens the GUI window. It returns when the window closes.
func runEngo(ctx context.Context, logger *logging.Logger, simConfig *config.SimConfig) error {
	sim, err := engine.NewSimulation(simConfig, engine.WithLogger(logger), engine.WithContext(ctx))
	if err != nil {
		return err
	}
	scene := engorender.NewSimulationScene(ctx, sim, logger)
	engo.Run(scene.RunOptions(), scene)
	return nil
}

// runTerminal draws the simulation as ASCII in raw mode. A key reader
// goroutine feeds commands to the frame loop, which is the only goroutine
// touching the simulation.
func runTerminal(ctx context.Context, logger *logging.Logger, simConfig *config.SimConfig) error {
	inFd := int(os.Stdin.Fd())
	if !term.IsTerminal(inFd) {
		return errors.New("terminal renderer requires an interactive terminal")
	}

	sim, err := engine.NewSimulation(simConfig, engine.WithLogger(logger), engine.WithContext(ctx))
	if err != nil {
		return err
	}

	oldState, err := term.MakeRaw(inFd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(inFd, oldState)
		fmt.Fprint(os.Stdout, "\033[?25h\r\n")
	}()
	fmt.Fprint(os.Stdout, "\033[?25l")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cols, rows := render.TerminalFieldSize(int(os.Stdout.Fd()), 80, 24)
	renderer := render.NewTerminalRenderer(os.Stdout, cols, rows, sim.World())

	keys := make(chan rune, 16)
	go readKeys(ctx, os.Stdin, keys)

	return frameLoop(ctx, sim, render.NewController(sim, logger), renderer, keys, simConfig.Frame.TargetFPS)
}

// frameLoop steps and draws at targetFPS until quit, cancellation or the
// key channel closes.
func frameLoop(ctx context.Context, sim *engine.Simulation, controller *render.Controller, renderer *render.TerminalRenderer, keys <-chan rune, targetFPS int) error {
	ticker := time.NewTicker(time.Second / time.Duration(targetFPS))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			quit, _ := controller.Apply(ctx, render.CommandForKey(key))
			if quit {
				return nil
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			sim.StepFrame(dt)
			render.DrawFrame(renderer, sim, render.NewHUD(sim, render.FPSFromDelta(dt), controller.ShowIndex))
			if err := renderer.Err(); err != nil {
				return err
			}
		}
	}
}

// readKeys forwards single bytes read from r as runes until a read fails
// or ctx is done, then closes keys. A Read blocked on stdin is only released
// by the next key press or process exit.
func readKeys(ctx context.Context, r io.Reader, keys chan<- rune) {
	defer close(keys)
	buf := make([]byte, 1)
	for {
		if _, err := r.Read(buf); err != nil {
			return
		}
		select {
		case keys <- rune(buf[0]):
		case <-ctx.Done():
			return
		}
	}
}
