// Package tui provides the interactive prompts of the build.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/ui/style"
)

// ConfirmModel is a yes/no question answered with a single key.
type ConfirmModel struct {
	Question   string
	DefaultYes bool

	Answer  bool
	Done    bool
	Aborted bool
}

// NewConfirmModel creates a model asking question. Enter selects the default answer.
func NewConfirmModel(question string, defaultYes bool) ConfirmModel {
	return ConfirmModel{Question: question, DefaultYes: defaultYes}
}

// Init initializes the model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.Answer, m.Done = true, true
	case "n", "N", "esc":
		m.Answer, m.Done = false, true
	case "enter":
		m.Answer, m.Done = m.DefaultYes, true
	case "ctrl+c":
		m.Aborted, m.Done = true, true
	default:
		return m, nil
	}
	return m, tea.Quit
}

// View renders the question, or the answer once given.
func (m ConfirmModel) View() string {
	choices := "[y/N]"
	if m.DefaultYes {
		choices = "[Y/n]"
	}

	if m.Done {
		answer := "no"
		if m.Answer {
			answer = "yes"
		}
		if m.Aborted {
			answer = "aborted"
		}
		return style.Prompt.Render("? ") + m.Question + " " + style.Hint.Render(answer) + "\n"
	}
	return style.Prompt.Render("? ") + m.Question + " " + style.Hint.Render(choices) + " "
}
