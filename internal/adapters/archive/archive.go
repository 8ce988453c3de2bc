// Package archive writes the module archive and release archives.
package archive

import (
	"archive/tar"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Epoch is the modification time recorded for every entry. It is the earliest time
// a zip archive can represent.
var Epoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Archiver implements ports.Archiver.
type Archiver struct {
	walker ports.Walker
}

// NewArchiver creates a new Archiver.
func NewArchiver(walker ports.Walker) *Archiver {
	return &Archiver{walker: walker}
}

type entry struct {
	path string
	name string
	mode os.FileMode
	size int64
}

func (a *Archiver) entries(src, prefix string) ([]entry, error) {
	var out []entry
	for p, err := range a.walker.WalkFiles(src, nil) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list archive input"), "path", src)
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to compute archive entry name")
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", p)
		}
		mode := os.FileMode(domain.FilePerm)
		if info.Mode()&0o111 != 0 {
			mode = domain.ExecPerm
		}
		out = append(out, entry{
			path: p,
			name: path.Join(prefix, filepath.ToSlash(rel)),
			mode: mode,
			size: info.Size(),
		})
	}
	return out, nil
}

// Zip writes the files below src into dst.
func (a *Archiver) Zip(src, dst string, compress bool) (int, error) {
	entries, err := a.entries(src, "")
	if err != nil {
		return 0, err
	}
	err = writeAtomic(dst, func(w io.Writer) error {
		return writeZip(w, entries, compress)
	})
	if err != nil {
		return 0, zerr.With(err, "archive", dst)
	}
	return len(entries), nil
}

// Archive writes the tree below src into dst using format.
func (a *Archiver) Archive(src, dst, prefix string, format domain.ArchiveFormat) error {
	entries, err := a.entries(src, prefix)
	if err != nil {
		return err
	}

	err = writeAtomic(dst, func(w io.Writer) error {
		switch format {
		case domain.FormatZip:
			return writeZip(w, entries, true)
		case domain.FormatTarGz:
			gw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
			if err != nil {
				return err
			}
			return writeTar(gw, entries)
		case domain.FormatTarXz:
			xw, err := xz.NewWriter(w)
			if err != nil {
				return err
			}
			return writeTar(xw, entries)
		case domain.FormatTarZst:
			zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
			if err != nil {
				return err
			}
			return writeTar(zw, entries)
		default:
			return zerr.With(domain.ErrInvalidArchiveFormat, "format", string(format))
		}
	})
	if err != nil {
		return zerr.With(err, "archive", dst)
	}
	return nil
}

func writeZip(w io.Writer, entries []entry, compress bool) error {
	zw := zip.NewWriter(w)
	method := zip.Store
	if compress {
		method = zip.Deflate
	}
	for _, e := range entries {
		hdr := &zip.FileHeader{
			Name:     e.name,
			Method:   method,
			Modified: Epoch,
		}
		hdr.SetMode(e.mode)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyFile(fw, e.path); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeTar writes entries as a tarball into the compressor cw and closes it.
func writeTar(cw io.WriteCloser, entries []entry) error {
	tw := tar.NewWriter(cw)
	for _, e := range entries {
		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.name,
			Mode:     int64(e.mode),
			Size:     e.size,
			ModTime:  Epoch,
			Format:   tar.FormatPAX,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if err := copyFile(tw, e.path); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return cw.Close()
}

func copyFile(w io.Writer, src string) error {
	f, err := os.Open(src) //nolint:gosec // Path comes from walking the archive input
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", src)
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

// writeAtomic writes dst through a temporary file in the same directory.
func writeAtomic(dst string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create archive directory")
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return zerr.Wrap(err, "failed to create archive")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return zerr.Wrap(err, "failed to write archive")
	}
	if err = tmp.Chmod(domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to write archive")
	}
	if err = tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to write archive")
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return zerr.Wrap(err, "failed to write archive")
	}
	return nil
}
