package ports

import "go.trai.ch/kiln/internal/core/domain"

// BuildRecordStore defines the interface for storing and retrieving build records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildRecordStore interface {
	// Get retrieves the last build record of the named bundle from the store directory dir.
	// Returns nil, nil if not found.
	Get(dir, name string) (*domain.BuildRecord, error)

	// Put stores the build record in the store directory dir.
	Put(dir string, record domain.BuildRecord) error
}
