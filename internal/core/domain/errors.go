package domain

import "go.trai.ch/zerr"

// Error kinds. A failing stage reports one of these as the Kind of a BuildError,
// so callers can classify failures with errors.Is.
var (
	// ErrManifest is returned when the manifest is missing, malformed or references missing paths.
	ErrManifest = zerr.New("manifest error")

	// ErrPrecondition is returned when a running instance cannot be stopped or a prior output cannot be removed.
	ErrPrecondition = zerr.New("build precondition failed")

	// ErrHookFailed is returned when a pre-build hook exits unsuccessfully.
	ErrHookFailed = zerr.New("pre-build hook failed")

	// ErrResolution is returned when the entry point or an explicitly declared module cannot be resolved.
	ErrResolution = zerr.New("resolution error")

	// ErrStagingConflict is returned when two inputs write different content to the same destination.
	ErrStagingConflict = zerr.New("staging conflict")

	// ErrStaging is returned when staging fails for reasons other than a conflict.
	ErrStaging = zerr.New("staging failed")

	// ErrAssembly is returned when the launcher or the module archive cannot be produced.
	ErrAssembly = zerr.New("assembly error")

	// ErrPackaging is returned when the release cannot be written.
	ErrPackaging = zerr.New("packaging error")

	// ErrCancelled is returned when the build is aborted between stages.
	ErrCancelled = zerr.New("build cancelled")
)

// Detailed causes wrapped by the kinds above.
var (
	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrManifestReadFailed is returned when the manifest cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read manifest")

	// ErrManifestParseFailed is returned when the manifest cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrUnsupportedManifestFormat is returned for manifest files with an unknown extension.
	ErrUnsupportedManifestFormat = zerr.New("unsupported manifest format, expected .yaml, .yml or .hcl")

	// ErrUnsupportedManifestVersion is returned when the manifest declares an unknown schema version.
	ErrUnsupportedManifestVersion = zerr.New("unsupported manifest version")

	// ErrInvalidBundleName is returned when the output name is empty or not a plain file name.
	ErrInvalidBundleName = zerr.New("invalid bundle name")

	// ErrEntryPointNotFound is returned when the entry point script does not exist.
	ErrEntryPointNotFound = zerr.New("entry point not found")

	// ErrDataSourceNotFound is returned when a data mapping source does not exist.
	ErrDataSourceNotFound = zerr.New("data source not found")

	// ErrDestinationOutsideBundle is returned when a data mapping destination escapes the bundle.
	ErrDestinationOutsideBundle = zerr.New("destination is outside the bundle")

	// ErrInvalidModuleName is returned for names that are not dotted identifiers.
	ErrInvalidModuleName = zerr.New("invalid module name")

	// ErrInvalidArchiveFormat is returned for unknown release archive formats.
	ErrInvalidArchiveFormat = zerr.New("invalid archive format, expected zip, tar.gz, tar.xz or tar.zst")

	// ErrUnsupportedPlatform is returned when no launcher exists for the target platform.
	ErrUnsupportedPlatform = zerr.New("unsupported launcher platform")

	// ErrModuleNotFound is returned when a module cannot be found on any search path.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrScanFailed is returned when a source file cannot be scanned for imports.
	ErrScanFailed = zerr.New("failed to scan imports")

	// ErrReleaseExists is returned when a release destination exists and overwrite is not permitted.
	ErrReleaseExists = zerr.New("release destination already exists")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrFileCopyFailed is returned when a file cannot be copied.
	ErrFileCopyFailed = zerr.New("failed to copy file")

	// ErrStoreReadFailed is returned when the build record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build record")

	// ErrStoreUnmarshalFailed is returned when the build record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build record")

	// ErrStoreMarshalFailed is returned when the build record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build record")

	// ErrStoreWriteFailed is returned when the build record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build record")

	// ErrStoreCreateFailed is returned when the build record directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build record directory")
)
