// Package config provides the manifest loader for kiln.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only manifest schema version understood by the loader.
const SupportedVersion = "1"

var validBundleNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Loader implements ports.ManifestLoader for YAML and HCL manifests.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the manifest at manifestPath and returns the validated domain.BuildManifest.
func (l *Loader) Load(manifestPath string, opts ports.LoadOptions) (*domain.BuildManifest, error) {
	absPath, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", manifestPath)
	}

	if _, statErr := os.Stat(absPath); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return nil, zerr.With(domain.ErrManifestNotFound, "path", manifestPath)
		}
		return nil, zerr.With(zerr.Wrap(statErr, domain.ErrManifestReadFailed.Error()), "path", manifestPath)
	}

	m, err := decodeFile(absPath)
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}

	baseDir := filepath.Dir(absPath)
	if opts.BaseDir != "" {
		if baseDir, err = filepath.Abs(opts.BaseDir); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "specpath", opts.BaseDir)
		}
	}

	spec, err := l.validate(m, absPath, baseDir)
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}

	l.Logger.Debug(fmt.Sprintf("loaded manifest %s for bundle %s", manifestPath, spec.Name))
	return domain.NewBuildManifest(spec), nil
}

func decodeFile(absPath string) (*Manifest, error) {
	// #nosec G304 -- manifest path is provided by the operator
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestReadFailed.Error())
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".yaml", ".yml":
		return decodeYAML(data)
	case ".hcl":
		return decodeHCL(data, absPath)
	default:
		return nil, zerr.With(domain.ErrUnsupportedManifestFormat, "extension", filepath.Ext(absPath))
	}
}

func decodeYAML(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, zerr.Wrap(zerr.New("manifest is empty"), domain.ErrManifestParseFailed.Error())
		}
		return nil, zerr.Wrap(err, domain.ErrManifestParseFailed.Error())
	}
	return &m, nil
}

func decodeHCL(data []byte, filename string) (*Manifest, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, zerr.Wrap(diags, domain.ErrManifestParseFailed.Error())
	}

	var h hclManifest
	if diags := gohcl.DecodeBody(file.Body, nil, &h); diags.HasErrors() {
		return nil, zerr.Wrap(diags, domain.ErrManifestParseFailed.Error())
	}
	return h.manifest(), nil
}

//nolint:cyclop // sequential field validation
func (l *Loader) validate(m *Manifest, manifestPath, baseDir string) (domain.ManifestSpec, error) {
	spec := domain.ManifestSpec{
		Path:    manifestPath,
		BaseDir: baseDir,
		Args:    m.Args,
		Env:     m.Env,
	}

	if m.Version != "" && m.Version != SupportedVersion {
		return spec, zerr.With(domain.ErrUnsupportedManifestVersion, "version", m.Version)
	}

	if err := validateBundleName(m.Name); err != nil {
		return spec, err
	}
	spec.Name = m.Name

	entry, err := resolveEntry(baseDir, m.Entry)
	if err != nil {
		return spec, err
	}
	spec.Entry = entry

	if spec.Datas, err = resolveDatas(baseDir, m.Datas); err != nil {
		return spec, err
	}

	if spec.HiddenImports, spec.Collect, err = parseDeclared(m.HiddenImports); err != nil {
		return spec, zerr.With(err, "field", "hidden_imports")
	}
	if spec.Excludes, err = parseModuleNames(m.Excludes); err != nil {
		return spec, zerr.With(err, "field", "excludes")
	}
	if spec.CollectData, err = parseModuleNames(m.CollectData); err != nil {
		return spec, zerr.With(err, "field", "collect_data")
	}
	for _, dist := range m.Metadata {
		if strings.TrimSpace(dist) != "" {
			spec.Metadata = append(spec.Metadata, strings.TrimSpace(dist))
		}
	}

	spec.Paths = l.resolveSearchPaths(baseDir, m.Paths, "paths")
	spec.SearchPaths = l.resolveSearchPaths(baseDir, m.SearchPaths, "search_paths")
	for _, doc := range m.Docs {
		spec.Docs = append(spec.Docs, resolvePath(baseDir, doc))
	}

	for i, argv := range m.Hooks.PreBuild {
		if len(argv) == 0 || argv[0] == "" {
			return spec, zerr.With(zerr.New("pre-build hook has no command"), "hook", i)
		}
		spec.Hooks = append(spec.Hooks, domain.HookCommand(argv))
	}

	spec.Launcher = launcherFlags(m.Launcher)

	if spec.Dist, err = distOptions(baseDir, m.Dist); err != nil {
		return spec, err
	}

	return spec, nil
}

func validateBundleName(name string) error {
	if name == "" || name == "." || name == ".." || !validBundleNameRegex.MatchString(name) {
		return zerr.With(domain.ErrInvalidBundleName, "name", name)
	}
	return nil
}

func resolveEntry(baseDir, entry string) (string, error) {
	if entry == "" {
		return "", zerr.With(domain.ErrEntryPointNotFound, "entry", entry)
	}
	abs := resolvePath(baseDir, entry)
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", zerr.With(domain.ErrEntryPointNotFound, "entry", abs)
	}
	return abs, nil
}

func resolveDatas(baseDir string, datas []DataDTO) ([]domain.DataMapping, error) {
	out := make([]domain.DataMapping, 0, len(datas))
	for _, d := range datas {
		src := resolvePath(baseDir, d.Source)
		if d.Source == "" {
			return nil, zerr.With(domain.ErrDataSourceNotFound, "source", d.Source)
		}
		if _, err := os.Stat(src); err != nil {
			return nil, zerr.With(domain.ErrDataSourceNotFound, "source", src)
		}

		dest, err := cleanDest(d.Dest)
		if err != nil {
			return nil, zerr.With(err, "source", src)
		}
		out = append(out, domain.DataMapping{Source: src, Dest: dest})
	}
	return out, nil
}

// cleanDest normalizes a bundle-relative destination. "" and "." name the bundle root.
func cleanDest(dest string) (string, error) {
	d := path.Clean(filepath.ToSlash(strings.TrimSpace(dest)))
	if d == "" {
		d = "."
	}
	if path.IsAbs(d) || filepath.IsAbs(dest) || d == ".." || strings.HasPrefix(d, "../") {
		return "", zerr.With(domain.ErrDestinationOutsideBundle, "dest", dest)
	}
	return d, nil
}

func parseDeclared(names []string) (modules, collect []domain.ModuleName, err error) {
	for _, raw := range names {
		s := strings.TrimSpace(raw)
		if base, ok := strings.CutSuffix(s, ".*"); ok {
			m, err := domain.ParseModuleName(base)
			if err != nil {
				return nil, nil, err
			}
			collect = append(collect, m)
			continue
		}
		m, err := domain.ParseModuleName(s)
		if err != nil {
			return nil, nil, err
		}
		modules = append(modules, m)
	}
	return modules, collect, nil
}

func parseModuleNames(names []string) ([]domain.ModuleName, error) {
	out := make([]domain.ModuleName, 0, len(names))
	for _, raw := range names {
		m, err := domain.ParseModuleName(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (l *Loader) resolveSearchPaths(baseDir string, paths []string, field string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs := resolvePath(baseDir, p)
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			l.Logger.Warn(fmt.Sprintf("%s entry %s is not a directory, skipping", field, p))
			continue
		}
		out = append(out, abs)
	}
	return out
}

func launcherFlags(dto LauncherDTO) domain.LauncherFlags {
	flags := domain.LauncherFlags{
		Windowed:    dto.Windowed,
		Debug:       dto.Debug,
		Compress:    true,
		Interpreter: dto.Interpreter,
		Platform:    strings.ToLower(dto.Platform),
	}
	if dto.Compress != nil {
		flags.Compress = *dto.Compress
	}
	if flags.Interpreter == "" {
		flags.Interpreter = domain.DefaultInterpreter
	}
	if flags.Platform == "" {
		flags.Platform = runtime.GOOS
	}
	return flags
}

func distOptions(baseDir string, dto DistDTO) (domain.DistOptions, error) {
	format, err := domain.ParseArchiveFormat(dto.Format)
	if err != nil {
		return domain.DistOptions{}, err
	}
	opts := domain.DistOptions{
		Version:    dto.Version,
		Format:     format,
		ReleaseDir: dto.ReleaseDir,
	}
	if opts.Version == "" {
		opts.Version = domain.DefaultVersion
	}
	if opts.ReleaseDir == "" {
		opts.ReleaseDir = domain.DefaultReleaseDir
	}
	// Releases sit next to the manifest unless release_dir is absolute.
	opts.ReleaseDir = resolvePath(baseDir, opts.ReleaseDir)
	return opts, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}
