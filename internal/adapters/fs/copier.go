package fs

import (
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Copier copies files and trees, writing through a temporary file so a
// destination is never left half-written.
type Copier struct {
	walker *Walker
}

// NewCopier creates a new Copier.
func NewCopier(walker *Walker) *Copier {
	return &Copier{walker: walker}
}

// CopyFile copies src to dst with the given mode. A zero mode keeps the source's mode.
func (c *Copier) CopyFile(src, dst string, mode iofs.FileMode) error {
	in, err := os.Open(src) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", src)
	}
	defer in.Close() //nolint:errcheck // Best effort close in defer

	if mode == 0 {
		info, statErr := in.Stat()
		if statErr != nil {
			return zerr.With(zerr.Wrap(statErr, domain.ErrFileOpenFailed.Error()), "path", src)
		}
		mode = info.Mode().Perm()
	}

	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return copyErr(err, src, dst)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp*")
	if err != nil {
		return copyErr(err, src, dst)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return copyErr(err, src, dst)
	}
	if err := tmp.Close(); err != nil {
		return copyErr(err, src, dst)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return copyErr(err, src, dst)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return copyErr(err, src, dst)
	}
	return nil
}

// CopyTree copies every file below src into dst, preserving relative paths and modes.
func (c *Copier) CopyTree(src, dst string, skip func(rel string) bool) (int, error) {
	copied := 0
	for path, err := range c.walker.WalkFiles(src, nil) {
		if err != nil {
			return copied, zerr.With(zerr.Wrap(err, domain.ErrFileCopyFailed.Error()), "source", src)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return copied, copyErr(err, path, dst)
		}
		if skip != nil && skip(filepath.ToSlash(rel)) {
			continue
		}

		if err := c.CopyFile(path, filepath.Join(dst, rel), 0); err != nil {
			return copied, err
		}
		copied++
	}
	return copied, nil
}

func copyErr(err error, src, dst string) error {
	err = zerr.With(zerr.Wrap(err, domain.ErrFileCopyFailed.Error()), "source", src)
	return zerr.With(err, "destination", dst)
}
