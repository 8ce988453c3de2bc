// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"
)

// Executor defines the interface for running external commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs argv in dir with the given additional environment in "KEY=VALUE" form.
	// Output is streamed to stdout and stderr. A non-zero exit is returned as an error.
	Execute(ctx context.Context, argv []string, dir string, env []string, stdout, stderr io.Writer) error
}
