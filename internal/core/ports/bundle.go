package ports

import "go.trai.ch/kiln/internal/core/domain"

//go:generate mockgen -source=bundle.go -destination=mocks/mock_bundle.go -package=mocks

// Archiver writes archives of directory trees. Entries are written in lexical
// order with fixed timestamps so identical trees produce identical archives.
type Archiver interface {
	// Zip writes the files below src into the zip archive dst. Entries are
	// deflated when compress is set and stored otherwise. It returns the number of entries.
	Zip(src, dst string, compress bool) (int, error)

	// Archive writes the tree below src into dst in the given format.
	// Entry names are prefixed with prefix.
	Archive(src, dst, prefix string, format domain.ArchiveFormat) error
}

// LaunchSpec describes what a launcher starts.
type LaunchSpec struct {
	// Name is the bundle name; the launcher file is named after it.
	Name string
	// Entry is the entry script relative to the bundle directory, slash-separated.
	Entry string
	// PythonPath lists the import roots relative to the bundle directory, slash-separated.
	PythonPath []string
	// Args are passed to the entry script before the user's arguments.
	Args []string
	// Env is exported before the interpreter starts.
	Env map[string]string
	// Flags are the launcher toggles of the manifest.
	Flags domain.LauncherFlags
}

// LauncherWriter renders launchers.
type LauncherWriter interface {
	// Write renders the launcher for spec into dir and returns its path.
	Write(dir string, spec LaunchSpec) (string, error)
}
