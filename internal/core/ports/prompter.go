package ports

import "context"

// Prompter asks the operator a yes/no question.
//
//go:generate mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
type Prompter interface {
	// Interactive reports whether a human can answer prompts.
	Interactive() bool

	// Confirm asks question and returns the answer. A non-interactive prompter returns false.
	Confirm(ctx context.Context, question string) (bool, error)
}
