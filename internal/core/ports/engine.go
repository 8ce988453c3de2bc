package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

// ClosureResolver computes the set of modules the bundle must contain.
type ClosureResolver interface {
	// Resolve computes the closure of the manifest's entry point. Non-fatal
	// problems are returned as warnings alongside the closure.
	Resolve(ctx context.Context, bc *domain.BuildContext) (domain.Outcome[*domain.Closure], error)
}

// StageReport counts the effect of a staging run.
type StageReport struct {
	Copied    int
	Unchanged int
	Removed   int
}

// Changed returns the number of files that were written or removed.
func (r StageReport) Changed() int {
	return r.Copied + r.Removed
}

// Stager copies the closure and data mappings into the staging tree.
type Stager interface {
	// Stage brings the staging tree in line with the build context's closure.
	Stage(ctx context.Context, bc *domain.BuildContext) (StageReport, error)
}

// Assembler produces the runnable bundle directory.
type Assembler interface {
	// Assemble writes the bundle and returns its directory.
	Assemble(ctx context.Context, bc *domain.BuildContext) (string, error)
}

// PackageOptions control the distribution packager.
type PackageOptions struct {
	// Overwrite permits replacing an existing release directory and archive.
	Overwrite bool
}

// Release describes the written release.
type Release struct {
	Dir     string
	Archive string
}

// Packager writes the release directory and archive.
type Packager interface {
	// Package copies the bundle into a release directory and compresses it.
	// It returns the release directory and archive path.
	Package(ctx context.Context, bc *domain.BuildContext, opts PackageOptions) (domain.Outcome[Release], error)

	// Exists reports whether the release directory or archive of the build already exists.
	Exists(bc *domain.BuildContext) bool
}
