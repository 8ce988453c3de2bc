package ports

import "go.trai.ch/kiln/internal/core/domain"

//go:generate mockgen -source=python.go -destination=mocks/mock_python.go -package=mocks

// ImportScanner extracts import statements from source files.
type ImportScanner interface {
	// Scan returns the imports of the source file at path in order of appearance.
	Scan(path string) ([]domain.Import, error)
}

// ModuleFinder opens module indexes over ordered search roots.
type ModuleFinder interface {
	// Open indexes the given roots. Earlier roots shadow later ones.
	Open(roots []string) (ModuleIndex, error)
}

// ModuleIndex locates modules and the files that travel with them.
type ModuleIndex interface {
	// Find resolves a module name. It returns domain.ErrModuleNotFound when no root provides it.
	Find(name domain.ModuleName) (domain.ModuleRecord, error)

	// Submodules returns every module below the package pkg, sorted by name.
	Submodules(pkg domain.ModuleName) ([]domain.ModuleRecord, error)

	// Metadata returns the files of the distribution metadata for a distribution
	// or top-level module name. The boolean is false when none exists.
	Metadata(name string) ([]domain.ModuleRecord, bool)

	// Natives returns the shared libraries that belong to the top-level package pkg,
	// including its sibling ".libs" directory. Debug symbol files are only included when debug is set.
	// Each record is named after the module or package that owns the file.
	Natives(pkg domain.ModuleRecord, debug bool) ([]domain.ModuleRecord, error)

	// PackageData returns the non-code files of the package pkg, each named after
	// the innermost package directory that holds it.
	PackageData(pkg domain.ModuleRecord) ([]domain.ModuleRecord, error)

	// IsStdlib reports whether name belongs to the interpreter's standard library.
	IsStdlib(name domain.ModuleName) bool
}
