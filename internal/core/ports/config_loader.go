package ports

import "go.trai.ch/kiln/internal/core/domain"

// LoadOptions control how a manifest is loaded.
type LoadOptions struct {
	// BaseDir overrides the directory relative manifest paths resolve against.
	// When empty, the manifest's own directory is used.
	BaseDir string
}

// ManifestLoader defines the interface for loading the build manifest.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ManifestLoader interface {
	// Load reads and validates the manifest at path. It never writes to the filesystem.
	Load(path string, opts LoadOptions) (*domain.BuildManifest, error)
}
