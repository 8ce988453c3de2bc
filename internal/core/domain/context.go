package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BuildOptions are the operator's choices for a single build.
type BuildOptions struct {
	// WorkDir overrides the intermediate build directory.
	WorkDir string
	// DistDir overrides the bundle output directory.
	DistDir string
	// SpecDir overrides the directory relative manifest paths resolve against.
	SpecDir string
	// Clean removes prior work and output directories before building.
	Clean bool
	// NoConfirm replaces existing outputs without asking.
	NoConfirm bool
}

// Closure is the resolved set of records the bundle must contain.
type Closure struct {
	// Entry is the entry-point script.
	Entry ModuleRecord
	// Modules are the resolved importable modules, sorted by name.
	Modules []ModuleRecord
	// Companions are native libraries, package data and metadata files.
	Companions []ModuleRecord
	// Graph is the import graph the closure was computed from.
	Graph *ImportGraph
}

// BuildContext is the mutable state of one build, passed explicitly through the pipeline.
type BuildContext struct {
	ID       string
	Manifest *BuildManifest
	Options  BuildOptions
	Started  time.Time

	Warnings *Warnings
	Closure  *Closure
	Staged   *StagedBundle

	BundleDir   string
	ReleaseDir  string
	ArchivePath string
	Changed     int

	Timings map[Stage]time.Duration
}

// NewBuildContext creates the context for building manifest with the given options.
func NewBuildContext(manifest *BuildManifest, opts BuildOptions) *BuildContext {
	if opts.WorkDir == "" {
		opts.WorkDir = DefaultWorkDir
	}
	if opts.DistDir == "" {
		opts.DistDir = DefaultDistDir
	}
	return &BuildContext{
		ID:       uuid.NewString(),
		Manifest: manifest,
		Options:  opts,
		Started:  time.Now(),
		Warnings: &Warnings{},
		Staged:   NewStagedBundle(),
		Timings:  make(map[Stage]time.Duration),
	}
}

// StageDir returns the staging tree of this build.
func (b *BuildContext) StageDir() string {
	return StagePath(b.Options.WorkDir, b.Manifest.Name())
}

// WorkDir returns the work directory of this bundle.
func (b *BuildContext) WorkDir() string {
	return BundleWorkDir(b.Options.WorkDir, b.Manifest.Name())
}

// Checkpoint returns ErrCancelled wrapped for stage if ctx has been cancelled.
// The pipeline calls it between stages.
func (b *BuildContext) Checkpoint(ctx context.Context, next Stage) error {
	if err := ctx.Err(); err != nil {
		return NewBuildError(next, ErrCancelled, err)
	}
	return nil
}

// Result summarizes the build.
func (b *BuildContext) Result(err error) BuildResult {
	res := BuildResult{
		ID:          b.ID,
		Name:        b.Manifest.Name(),
		BundleDir:   b.BundleDir,
		ReleaseDir:  b.ReleaseDir,
		ArchivePath: b.ArchivePath,
		Success:     err == nil,
		Warnings:    b.Warnings.List(),
		Changed:     b.Changed,
		Duration:    time.Since(b.Started),
	}
	if b.Closure != nil {
		res.Modules = len(b.Closure.Modules)
	}
	if be, ok := AsBuildError(err); ok {
		res.FailedStage = be.Stage
	}
	return res
}
