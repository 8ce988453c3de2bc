package domain

import (
	"maps"
	"slices"
)

// DataMapping copies a source directory or file to a bundle-relative destination.
type DataMapping struct {
	// Source is the absolute path of the file or directory to copy.
	Source string
	// Dest is the slash-separated destination relative to the bundle's internal directory.
	Dest string
}

// LauncherFlags are the mutually independent launcher toggles.
type LauncherFlags struct {
	// Windowed suppresses the console window.
	Windowed bool
	// Debug retains native debug symbols and enables runtime diagnostics.
	Debug bool
	// Compress deflates the packed module archive.
	Compress bool
	// Interpreter is the interpreter command the launcher runs.
	Interpreter string
	// Platform is the target operating system of the launcher (linux, darwin, windows).
	Platform string
}

// DistOptions control the release directory and archive.
type DistOptions struct {
	// Version is embedded in the release directory name.
	Version string
	// Format is the release archive format.
	Format ArchiveFormat
	// ReleaseDir is the directory releases are written to.
	ReleaseDir string
}

// HookCommand is a command run before resolution, in argv form.
type HookCommand []string

// ManifestSpec holds the validated fields used to construct a BuildManifest.
type ManifestSpec struct {
	Path          string
	BaseDir       string
	Name          string
	Entry         string
	Datas         []DataMapping
	HiddenImports []ModuleName
	Collect       []ModuleName
	Excludes      []ModuleName
	Metadata      []string
	CollectData   []ModuleName
	Paths         []string
	SearchPaths   []string
	Docs          []string
	Args          []string
	Env           map[string]string
	Hooks         []HookCommand
	Launcher      LauncherFlags
	Dist          DistOptions
}

// BuildManifest is the immutable description of what to bundle and how.
// It is created once by the manifest loader at the start of a build.
type BuildManifest struct {
	spec ManifestSpec
}

// NewBuildManifest freezes spec into a BuildManifest.
func NewBuildManifest(spec ManifestSpec) *BuildManifest {
	return &BuildManifest{spec: cloneSpec(spec)}
}

// Path returns the manifest file path.
func (m *BuildManifest) Path() string { return m.spec.Path }

// BaseDir returns the directory relative paths were resolved against.
func (m *BuildManifest) BaseDir() string { return m.spec.BaseDir }

// Name returns the output bundle name.
func (m *BuildManifest) Name() string { return m.spec.Name }

// Entry returns the absolute path of the entry-point script.
func (m *BuildManifest) Entry() string { return m.spec.Entry }

// Datas returns the ordered data mappings.
func (m *BuildManifest) Datas() []DataMapping { return slices.Clone(m.spec.Datas) }

// HiddenImports returns the explicitly declared modules.
func (m *BuildManifest) HiddenImports() []ModuleName { return slices.Clone(m.spec.HiddenImports) }

// CollectSubmodules returns packages whose submodules are all declared.
func (m *BuildManifest) CollectSubmodules() []ModuleName { return slices.Clone(m.spec.Collect) }

// Excludes returns the excluded modules.
func (m *BuildManifest) Excludes() []ModuleName { return slices.Clone(m.spec.Excludes) }

// Metadata returns the distributions whose metadata must be bundled.
func (m *BuildManifest) Metadata() []string { return slices.Clone(m.spec.Metadata) }

// CollectData returns the packages whose data files must be bundled.
func (m *BuildManifest) CollectData() []ModuleName { return slices.Clone(m.spec.CollectData) }

// Paths returns the additional application source roots.
func (m *BuildManifest) Paths() []string { return slices.Clone(m.spec.Paths) }

// SearchPaths returns the third-party package roots (site-packages).
func (m *BuildManifest) SearchPaths() []string { return slices.Clone(m.spec.SearchPaths) }

// Docs returns documentation files copied into the release.
func (m *BuildManifest) Docs() []string { return slices.Clone(m.spec.Docs) }

// Args returns arguments the launcher passes to the entry point.
func (m *BuildManifest) Args() []string { return slices.Clone(m.spec.Args) }

// Env returns environment variables exported by the launcher.
func (m *BuildManifest) Env() map[string]string { return maps.Clone(m.spec.Env) }

// Hooks returns the pre-build hook commands.
func (m *BuildManifest) Hooks() []HookCommand {
	out := make([]HookCommand, len(m.spec.Hooks))
	for i, h := range m.spec.Hooks {
		out[i] = slices.Clone(h)
	}
	return out
}

// Launcher returns the launcher flags.
func (m *BuildManifest) Launcher() LauncherFlags { return m.spec.Launcher }

// Dist returns the distribution options.
func (m *BuildManifest) Dist() DistOptions { return m.spec.Dist }

// ExcludeSet returns the excluded modules as a set.
func (m *BuildManifest) ExcludeSet() ModuleSet { return NewModuleSet(m.spec.Excludes...) }

func cloneSpec(s ManifestSpec) ManifestSpec {
	c := s
	c.Datas = slices.Clone(s.Datas)
	c.HiddenImports = slices.Clone(s.HiddenImports)
	c.Collect = slices.Clone(s.Collect)
	c.Excludes = slices.Clone(s.Excludes)
	c.Metadata = slices.Clone(s.Metadata)
	c.CollectData = slices.Clone(s.CollectData)
	c.Paths = slices.Clone(s.Paths)
	c.SearchPaths = slices.Clone(s.SearchPaths)
	c.Docs = slices.Clone(s.Docs)
	c.Args = slices.Clone(s.Args)
	c.Env = maps.Clone(s.Env)
	c.Hooks = make([]HookCommand, len(s.Hooks))
	for i, h := range s.Hooks {
		c.Hooks[i] = slices.Clone(h)
	}
	return c
}
