package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// ArchiveFormat is the compression format of a release archive.
type ArchiveFormat string

const (
	// FormatZip writes a deflated zip archive.
	FormatZip ArchiveFormat = "zip"
	// FormatTarGz writes a gzip-compressed tarball.
	FormatTarGz ArchiveFormat = "tar.gz"
	// FormatTarXz writes an xz-compressed tarball.
	FormatTarXz ArchiveFormat = "tar.xz"
	// FormatTarZst writes a zstd-compressed tarball.
	FormatTarZst ArchiveFormat = "tar.zst"
)

// ParseArchiveFormat normalizes s into an ArchiveFormat. An empty string selects zip.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "zip":
		return FormatZip, nil
	case "tar.gz", "tgz":
		return FormatTarGz, nil
	case "tar.xz", "txz":
		return FormatTarXz, nil
	case "tar.zst", "tzst":
		return FormatTarZst, nil
	default:
		return "", zerr.With(ErrInvalidArchiveFormat, "format", s)
	}
}

// Extension returns the file extension including the leading dot.
func (f ArchiveFormat) Extension() string {
	return "." + string(f)
}
