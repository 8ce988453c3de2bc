package domain

import "path/filepath"

const (
	// DefaultWorkDir is the default directory for intermediate build state.
	DefaultWorkDir = "build"

	// DefaultDistDir is the default directory assembled bundles are written to.
	DefaultDistDir = "dist"

	// DefaultReleaseDir is the default directory release archives are written to.
	DefaultReleaseDir = "release"

	// KilnDirName is the name of the internal state directory inside the work directory.
	KilnDirName = ".kiln"

	// StoreDirName is the name of the build record store directory.
	StoreDirName = "store"

	// StageDirName is the name of the staging tree inside a bundle's work directory.
	StageDirName = "stage"

	// InternalDirName holds everything the launcher needs besides itself.
	InternalDirName = "_internal"

	// LibDirName holds packages that must stay on disk (native code, data files, metadata).
	LibDirName = "lib"

	// PyzDirName holds pure-code modules before they are packed.
	PyzDirName = "pyz"

	// ModuleArchiveName is the packed archive of pure-code modules.
	ModuleArchiveName = "modules.zip"

	// BuildLogFile is the name of the build log inside a bundle's work directory.
	BuildLogFile = "build.log"

	// DefaultVersion is the release version used when the manifest names none.
	DefaultVersion = "0.0.0"

	// DefaultInterpreter is the interpreter command used when the manifest names none.
	DefaultInterpreter = "python3"

	// DefaultLogTail is the number of build log lines shown after a failure.
	DefaultLogTail = 20

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecPerm is the permission for launchers (rwxr-xr-x).
	ExecPerm = 0o755
)

// BundleWorkDir returns the work directory of the named bundle.
func BundleWorkDir(workDir, name string) string {
	return filepath.Join(workDir, name)
}

// StagePath returns the staging tree of the named bundle.
func StagePath(workDir, name string) string {
	return filepath.Join(workDir, name, StageDirName)
}

// BuildLogPath returns the build log of the named bundle.
func BuildLogPath(workDir, name string) string {
	return filepath.Join(workDir, name, BuildLogFile)
}

// StorePath returns the build record store below workDir.
func StorePath(workDir string) string {
	return filepath.Join(workDir, KilnDirName, StoreDirName)
}

// BundleDir returns the assembled bundle directory.
func BundleDir(distDir, name string) string {
	return filepath.Join(distDir, name)
}

// DefaultIgnores are file and directory names never copied into a bundle.
var DefaultIgnores = []string{".git", "__pycache__", "*.pyc", "*.pyo", ".DS_Store"}

// LauncherName returns the file name of the launcher of the named bundle on platform.
func LauncherName(name, platform string) string {
	if platform == "windows" {
		return name + ".cmd"
	}
	return name
}
