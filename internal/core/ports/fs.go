package ports

import (
	"io/fs"
	"iter"
)

//go:generate mockgen -source=fs.go -destination=mocks/mock_fs.go -package=mocks

// Walker enumerates files below a directory.
type Walker interface {
	// WalkFiles yields every regular file below root in lexical order, skipping entries
	// whose base name matches one of the ignore patterns. A walk error is yielded with
	// an empty path and ends the walk.
	WalkFiles(root string, ignores []string) iter.Seq2[string, error]
}

// Hasher computes content hashes.
type Hasher interface {
	// HashFile returns the hex-encoded content hash of the file at path.
	HashFile(path string) (string, error)
}

// Copier copies files and directory trees.
type Copier interface {
	// CopyFile copies src to dst, creating parent directories. Existing files are replaced.
	CopyFile(src, dst string, mode fs.FileMode) error

	// CopyTree copies the files below src into dst. Paths relative to src for which skip
	// returns true are not copied. It returns the number of files copied.
	CopyTree(src, dst string, skip func(rel string) bool) (int, error)
}

// PathResolver expands path patterns.
type PathResolver interface {
	// Resolve expands glob patterns into sorted, de-duplicated paths.
	// Patterns that match nothing are returned as missing.
	Resolve(patterns []string) (matches, missing []string, err error)
}

// Verifier checks for expected files.
type Verifier interface {
	// Missing returns the paths below root that do not exist.
	Missing(root string, paths []string) ([]string, error)
}
