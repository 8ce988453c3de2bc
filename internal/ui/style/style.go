// Package style provides the colours and icons shared by kiln's terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Ember  = lipgloss.Color("#E4572E")
	Ash    = lipgloss.Color("#6B7280")
	Clay   = lipgloss.Color("#B45309")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "·"
)

// Prompt is the style of interactive questions.
var Prompt = lipgloss.NewStyle().Foreground(Ember).Bold(true)

// Hint is the style of secondary prompt text.
var Hint = lipgloss.NewStyle().Foreground(Ash)
