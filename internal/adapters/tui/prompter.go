package tui

import (
	"context"
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/ui/output"
	"go.trai.ch/zerr"
)

// Prompter implements ports.Prompter with a bubbletea program.
type Prompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter creates a Prompter on the process's terminal. It is interactive only
// when both stdin and stderr are terminals.
func NewPrompter() *Prompter {
	return NewPrompterWith(os.Stdin, os.Stderr, output.IsTerminal(os.Stdin) && output.IsTerminal(os.Stderr))
}

// NewPrompterWith creates a Prompter reading keys from in and drawing to out.
func NewPrompterWith(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: in, out: out, interactive: interactive}
}

// Interactive reports whether prompts can be answered.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Confirm asks question and waits for an answer. Without a terminal it answers no.
// Interrupting the prompt returns domain.ErrCancelled.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if !p.interactive {
		return false, nil
	}

	prog := tea.NewProgram(
		NewConfirmModel(question, false),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithContext(ctx),
	)
	final, err := prog.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return false, zerr.Wrap(ctx.Err(), domain.ErrCancelled.Error())
		}
		return false, zerr.Wrap(err, "failed to run prompt")
	}

	m, ok := final.(ConfirmModel)
	if !ok {
		return false, nil
	}
	if m.Aborted {
		return false, domain.ErrCancelled
	}
	return m.Answer, nil
}
