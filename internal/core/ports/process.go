package ports

import "context"

// ProcessKiller terminates running instances of a bundle.
//
//go:generate mockgen -source=process.go -destination=mocks/mock_process.go -package=mocks
type ProcessKiller interface {
	// KillBundle forcefully terminates every process whose executable is named name or
	// whose command line references a file inside dir. It returns the number of processes terminated.
	KillBundle(ctx context.Context, name, dir string) (int, error)
}
