package config

// Manifest represents the structure of a kiln manifest file.
type Manifest struct {
	Version       string            `yaml:"version"`
	Name          string            `yaml:"name"`
	Entry         string            `yaml:"entry"`
	Paths         []string          `yaml:"paths"`
	SearchPaths   []string          `yaml:"search_paths"`
	Datas         []DataDTO         `yaml:"datas"`
	HiddenImports []string          `yaml:"hidden_imports"`
	Excludes      []string          `yaml:"excludes"`
	Metadata      []string          `yaml:"metadata"`
	CollectData   []string          `yaml:"collect_data"`
	Docs          []string          `yaml:"docs"`
	Args          []string          `yaml:"args"`
	Env           map[string]string `yaml:"env"`
	Hooks         HooksDTO          `yaml:"hooks"`
	Launcher      LauncherDTO       `yaml:"launcher"`
	Dist          DistDTO           `yaml:"dist"`
}

// DataDTO maps a source file or directory into the bundle.
type DataDTO struct {
	Source string `yaml:"source" hcl:"source"`
	Dest   string `yaml:"dest" hcl:"dest"`
}

// HooksDTO lists commands run before resolution.
type HooksDTO struct {
	PreBuild [][]string `yaml:"pre_build" hcl:"pre_build,optional"`
}

// LauncherDTO configures the generated launcher.
type LauncherDTO struct {
	Windowed    bool   `yaml:"windowed" hcl:"windowed,optional"`
	Debug       bool   `yaml:"debug" hcl:"debug,optional"`
	Compress    *bool  `yaml:"compress" hcl:"compress,optional"`
	Interpreter string `yaml:"interpreter" hcl:"interpreter,optional"`
	Platform    string `yaml:"platform" hcl:"platform,optional"`
}

// DistDTO configures the release directory and archive.
type DistDTO struct {
	Version    string `yaml:"version" hcl:"version,optional"`
	Format     string `yaml:"format" hcl:"format,optional"`
	ReleaseDir string `yaml:"release_dir" hcl:"release_dir,optional"`
}

// hclManifest is the HCL form of Manifest. Data mappings, hooks, the launcher
// and dist settings are blocks.
type hclManifest struct {
	Version       string            `hcl:"version,optional"`
	Name          string            `hcl:"name"`
	Entry         string            `hcl:"entry"`
	Paths         []string          `hcl:"paths,optional"`
	SearchPaths   []string          `hcl:"search_paths,optional"`
	Datas         []DataDTO         `hcl:"data,block"`
	HiddenImports []string          `hcl:"hidden_imports,optional"`
	Excludes      []string          `hcl:"excludes,optional"`
	Metadata      []string          `hcl:"metadata,optional"`
	CollectData   []string          `hcl:"collect_data,optional"`
	Docs          []string          `hcl:"docs,optional"`
	Args          []string          `hcl:"args,optional"`
	Env           map[string]string `hcl:"env,optional"`
	Hooks         *HooksDTO         `hcl:"hooks,block"`
	Launcher      *LauncherDTO      `hcl:"launcher,block"`
	Dist          *DistDTO          `hcl:"dist,block"`
}

func (h *hclManifest) manifest() *Manifest {
	m := &Manifest{
		Version:       h.Version,
		Name:          h.Name,
		Entry:         h.Entry,
		Paths:         h.Paths,
		SearchPaths:   h.SearchPaths,
		Datas:         h.Datas,
		HiddenImports: h.HiddenImports,
		Excludes:      h.Excludes,
		Metadata:      h.Metadata,
		CollectData:   h.CollectData,
		Docs:          h.Docs,
		Args:          h.Args,
		Env:           h.Env,
	}
	if h.Hooks != nil {
		m.Hooks = *h.Hooks
	}
	if h.Launcher != nil {
		m.Launcher = *h.Launcher
	}
	if h.Dist != nil {
		m.Dist = *h.Dist
	}
	return m
}
