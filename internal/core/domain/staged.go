package domain

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"go.trai.ch/zerr"
)

// StagedEntry is the source of one destination in the staged bundle.
type StagedEntry struct {
	// Source is the path the content is copied from.
	Source SourcePath
	// Hash is the content hash of Source.
	Hash string
}

// StagedBundle maps destination-relative paths to their sources.
// It is safe for concurrent use. No two different contents may share a destination.
type StagedBundle struct {
	mu      sync.Mutex
	entries map[string]StagedEntry
}

// NewStagedBundle creates an empty StagedBundle.
func NewStagedBundle() *StagedBundle {
	return &StagedBundle{entries: make(map[string]StagedEntry)}
}

// Add records that dest is produced from source with the given content hash.
// Re-adding the same content is a no-op. Different content fails with ErrStagingConflict.
func (b *StagedBundle) Add(dest, source, hash string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.entries[dest]; ok {
		if prev.Hash == hash {
			return nil
		}
		err := zerr.With(ErrStagingConflict, "destination", dest)
		err = zerr.With(err, "first_source", prev.Source.String())
		return zerr.With(err, "second_source", source)
	}
	b.entries[dest] = StagedEntry{Source: NewSourcePath(source), Hash: hash}
	return nil
}

// Get returns the entry for dest.
func (b *StagedBundle) Get(dest string) (StagedEntry, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[dest]
	return e, ok
}

// Len returns the number of destinations.
func (b *StagedBundle) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Destinations returns all destinations in lexical order.
func (b *StagedBundle) Destinations() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.entries))
}

// All yields destinations in lexical order together with their entries.
func (b *StagedBundle) All() iter.Seq2[string, StagedEntry] {
	dests := b.Destinations()
	return func(yield func(string, StagedEntry) bool) {
		for _, d := range dests {
			e, _ := b.Get(d)
			if !yield(d, e) {
				return
			}
		}
	}
}
