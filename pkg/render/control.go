// pkg/render/control.go
package render

import (
	"context"

	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// Command is a user action on the simulation.
type Command int

const (
	CommandNone Command = iota
	CommandSpawn
	CommandReset
	CommandToggleStrategy
	CommandToggleOverlay
	CommandQuit
)

func (c Command) String() string {
	switch c {
	case CommandSpawn:
		return "spawn"
	case CommandReset:
		return "reset"
	case CommandToggleStrategy:
		return "toggle_strategy"
	case CommandToggleOverlay:
		return "toggle_overlay"
	case CommandQuit:
		return "quit"
	default:
		return "none"
	}
}

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
)

// CommandForKey maps a key press to a command.
func CommandForKey(key rune) Command {
	switch key {
	case ' ':
		return CommandSpawn
	case 'r', 'R':
		return CommandReset
	case 'q', 'Q':
		return CommandToggleStrategy
	case 'v', 'V':
		return CommandToggleOverlay
	case keyCtrlC, keyEscape:
		return CommandQuit
	default:
		return CommandNone
	}
}

// Controllable is the part of a simulation commands act on.
type Controllable interface {
	SpawnRandom() (physics.BodyID, error)
	ResetAll()
	ToggleStrategy() engine.Strategy
}

// Controller applies commands to a simulation and tracks view state.
type Controller struct {
	ShowIndex bool

	sim    Controllable
	logger *logging.Logger
}

// NewController creates a controller for sim.
func NewController(sim Controllable, logger *logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Controller{sim: sim, logger: logger}
}

// Apply executes cmd. It reports quit for CommandQuit; a failed spawn is
// returned as an error and leaves the simulation unchanged.
func (c *Controller) Apply(ctx context.Context, cmd Command) (quit bool, err error) {
	switch cmd {
	case CommandSpawn:
		id, err := c.sim.SpawnRandom()
		if err != nil {
			c.logger.Warn(ctx, "Spawn failed", "error", err)
			return false, err
		}
		c.logger.Debug(ctx, "Command applied", "command", cmd.String(), "body_id", id)
	case CommandReset:
		c.sim.ResetAll()
		c.logger.Debug(ctx, "Command applied", "command", cmd.String())
	case CommandToggleStrategy:
		s := c.sim.ToggleStrategy()
		c.logger.Debug(ctx, "Command applied", "command", cmd.String(), "strategy", s.String())
	case CommandToggleOverlay:
		c.ShowIndex = !c.ShowIndex
		c.logger.Debug(ctx, "Command applied", "command", cmd.String(), "show_index", c.ShowIndex)
	case CommandQuit:
		c.logger.Info(ctx, "Quit requested")
		return true, nil
	}
	return false, nil
}
