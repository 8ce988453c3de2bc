// Package cas persists build records next to the staging trees they describe.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// recordSuffix is appended to the bundle name to form the record file name.
const recordSuffix = ".json"

// Store implements ports.BuildRecordStore with one JSON file per bundle.
type Store struct {
	mu    sync.RWMutex
	cache map[string]domain.BuildRecord
}

// NewStore creates a new, empty Store.
func NewStore() *Store {
	return &Store{cache: make(map[string]domain.BuildRecord)}
}

func recordPath(dir, name string) string {
	return filepath.Join(filepath.Clean(dir), name+recordSuffix)
}

// Get retrieves the build record of the named bundle, or nil if none was stored.
func (s *Store) Get(dir, name string) (*domain.BuildRecord, error) {
	path := recordPath(dir, name)

	s.mu.RLock()
	rec, ok := s.cache[path]
	s.mu.RUnlock()
	if ok {
		return &rec, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path is derived from the work directory
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", path)
	}

	s.mu.Lock()
	s.cache[path] = rec
	s.mu.Unlock()
	return &rec, nil
}

// Put writes the build record, replacing any previous record of the same bundle.
func (s *Store) Put(dir string, record domain.BuildRecord) error {
	path := recordPath(dir, record.Name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", filepath.Dir(path))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil { //nolint:gosec // Path is derived from the work directory
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", path)
	}

	s.mu.Lock()
	s.cache[path] = record
	s.mu.Unlock()
	return nil
}
