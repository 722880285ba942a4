// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-quadsim/pkg/render"
)

// Button names registered with engo.Input.
const (
	buttonSpawn          = "spawn"
	buttonReset          = "reset"
	buttonToggleStrategy = "toggleStrategy"
	buttonToggleOverlay  = "toggleOverlay"
	buttonQuit           = "quit"
)

// buttonCommands lists buttons in the order they are polled.
var buttonCommands = []struct {
	button  string
	command render.Command
}{
	{buttonSpawn, render.CommandSpawn},
	{buttonReset, render.CommandReset},
	{buttonToggleStrategy, render.CommandToggleStrategy},
	{buttonToggleOverlay, render.CommandToggleOverlay},
	{buttonQuit, render.CommandQuit},
}

// SetupInputBindings sets up the key bindings for the simulation.
func SetupInputBindings() {
	engo.Input.RegisterButton(buttonSpawn, engo.KeySpace)
	engo.Input.RegisterButton(buttonReset, engo.KeyR)
	engo.Input.RegisterButton(buttonToggleStrategy, engo.KeyQ)
	engo.Input.RegisterButton(buttonToggleOverlay, engo.KeyV)
	engo.Input.RegisterButton(buttonQuit, engo.KeyEscape)
}

// buttonSource reports whether a named button was pressed this frame.
type buttonSource interface {
	JustPressed(button string) bool
}

// engoButtons reads engo.Input.
type engoButtons struct{}

func (engoButtons) JustPressed(button string) bool {
	return engo.Input.Button(button).JustPressed()
}

// pollCommands returns the commands whose buttons were pressed this frame.
func pollCommands(buttons buttonSource) []render.Command {
	var commands []render.Command
	for _, bc := range buttonCommands {
		if buttons.JustPressed(bc.button) {
			commands = append(commands, bc.command)
		}
	}
	return commands
}
