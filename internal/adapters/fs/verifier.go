package fs

import (
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Verifier checks for the existence of files.
type Verifier struct{}

// NewVerifier creates a new Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Missing returns the entries of paths that do not exist below root.
func (v *Verifier) Missing(root string, paths []string) ([]string, error) {
	var missing []string
	for _, p := range paths {
		full := filepath.Join(root, p)
		if _, err := os.Stat(full); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, p)
				continue
			}
			return nil, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", full)
		}
	}
	return missing, nil
}
