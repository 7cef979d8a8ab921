// Package view turns an execution environment into user-facing text.
package view

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbrock/hostenv/internal/environment"
)

const (
	SimulatorLabel = "Running on simulator"
	DeviceLabel    = "Running on device"
)

// Label returns the status line for env.
func Label(env environment.Environment) string {
	if env == environment.Simulated {
		return SimulatorLabel
	}
	return DeviceLabel
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

// Terminal writes the title and label as two stacked lines, styled when
// the output is an interactive terminal.
func Terminal(w io.Writer, title string, env environment.Environment, styled bool) error {
	label := Label(env)
	if styled {
		title = titleStyle.Render(title)
		label = labelStyle.Render(label)
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, label)
	return err
}
