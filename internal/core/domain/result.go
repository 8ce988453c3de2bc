package domain

import (
	"errors"
	"time"
)

// BuildResult is the outcome of a build.
type BuildResult struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	BundleDir   string        `json:"bundle_dir,omitzero"`
	ReleaseDir  string        `json:"release_dir,omitzero"`
	ArchivePath string        `json:"archive_path,omitzero"`
	Success     bool          `json:"success"`
	FailedStage Stage         `json:"failed_stage,omitzero"`
	Warnings    []Warning     `json:"warnings,omitzero"`
	Modules     int           `json:"modules"`
	Changed     int           `json:"changed"`
	Duration    time.Duration `json:"duration"`
}

// BuildRecord is the persisted summary of the last build of a bundle.
type BuildRecord struct {
	Name         string      `json:"name"`
	ManifestPath string      `json:"manifest_path"`
	Result       BuildResult `json:"result"`
	Timestamp    time.Time   `json:"timestamp,omitzero"`
}

// AsBuildError extracts the BuildError from err.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
