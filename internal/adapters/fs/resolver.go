package fs

import (
	"path/filepath"
	"slices"

	"go.trai.ch/zerr"
)

// Resolver expands glob patterns using filepath.Glob.
type Resolver struct{}

// NewResolver creates a new Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve expands patterns into sorted, de-duplicated paths.
// A plain path that does not exist is reported as missing, like a glob with no matches.
func (r *Resolver) Resolve(patterns []string) (matches, missing []string, err error) {
	seen := make(map[string]struct{})

	for _, pattern := range patterns {
		found, globErr := filepath.Glob(pattern)
		if globErr != nil {
			return nil, nil, zerr.With(zerr.Wrap(globErr, "failed to glob path"), "pattern", pattern)
		}
		if len(found) == 0 {
			missing = append(missing, pattern)
			continue
		}
		for _, m := range found {
			seen[m] = struct{}{}
		}
	}

	matches = make([]string, 0, len(seen))
	for p := range seen {
		matches = append(matches, p)
	}
	slices.Sort(matches)

	return matches, missing, nil
}
