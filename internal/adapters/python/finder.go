package python

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var distSeparators = regexp.MustCompile(`[-_.]+`)

// Finder implements ports.ModuleFinder over directories laid out like a Python path.
type Finder struct {
	walker ports.Walker
}

// NewFinder creates a new Finder.
func NewFinder(walker ports.Walker) *Finder {
	return &Finder{walker: walker}
}

// Open indexes the distribution metadata below roots and returns a lazy module index.
func (f *Finder) Open(roots []string) (ports.ModuleIndex, error) {
	ix := &Index{
		walker: f.walker,
		cache:  make(map[domain.ModuleName]located),
		dists:  make(map[string]distribution),
		tops:   make(map[string]distribution),
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to resolve search path"), "path", root)
		}
		if slices.Contains(ix.roots, abs) {
			continue
		}
		ix.roots = append(ix.roots, abs)
		if err := ix.indexDistributions(abs); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

type distribution struct {
	root string
	dir  string
	top  string
}

type located struct {
	record domain.ModuleRecord
	// portions are the directories a package spans. A namespace package may span several roots.
	portions []portion
	err      error
}

type portion struct {
	root string
	dir  string
}

// Index implements ports.ModuleIndex. Lookups are cached and safe for concurrent use.
type Index struct {
	walker ports.Walker
	roots  []string

	mu    sync.Mutex
	cache map[domain.ModuleName]located
	dists map[string]distribution
	tops  map[string]distribution
}

func (ix *Index) indexDistributions(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to read search path"), "path", root)
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || (!strings.HasSuffix(name, ".dist-info") && !strings.HasSuffix(name, ".egg-info")) {
			continue
		}
		project, _, _ := strings.Cut(strings.TrimSuffix(strings.TrimSuffix(name, ".dist-info"), ".egg-info"), "-")
		key := normalizeDist(project)
		if _, seen := ix.dists[key]; seen {
			continue
		}

		d := distribution{root: root, dir: filepath.Join(root, name), top: key}
		tops := readTopLevel(filepath.Join(d.dir, "top_level.txt"))
		if len(tops) > 0 {
			d.top = tops[0]
		}
		ix.dists[key] = d
		for _, top := range tops {
			if _, seen := ix.tops[top]; !seen {
				ix.tops[top] = d
			}
		}
	}
	return nil
}

func readTopLevel(path string) []string {
	f, err := os.Open(path) //nolint:gosec // Path is inside a metadata directory
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var tops []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			tops = append(tops, line)
		}
	}
	return tops
}

func normalizeDist(name string) string {
	return distSeparators.ReplaceAllString(strings.ToLower(name), "_")
}

// Find resolves name the way the import system does: a regular package, then an
// extension module, then a source module, in the first root providing one. A directory
// without an __init__ module becomes a namespace package only if no root provides anything else.
func (ix *Index) Find(name domain.ModuleName) (domain.ModuleRecord, error) {
	loc := ix.locate(name)
	return loc.record, loc.err
}

func (ix *Index) locate(name domain.ModuleName) located {
	ix.mu.Lock()
	loc, ok := ix.cache[name]
	ix.mu.Unlock()
	if ok {
		return loc
	}

	var bases []portion
	if parent := name.Parent(); parent != "" {
		p := ix.locate(parent)
		switch {
		case p.err != nil:
			loc = located{err: p.err}
		case !p.record.Package:
			loc = located{err: zerr.With(domain.ErrModuleNotFound, "module", name.String())}
		default:
			bases = p.portions
		}
	} else {
		for _, root := range ix.roots {
			bases = append(bases, portion{root: root, dir: root})
		}
	}

	if loc.err == nil {
		loc = ix.step(bases, name)
	}

	ix.mu.Lock()
	ix.cache[name] = loc
	ix.mu.Unlock()
	return loc
}

func (ix *Index) step(bases []portion, name domain.ModuleName) located {
	base := name.Base()
	var namespaces []portion

	for _, b := range bases {
		dir := filepath.Join(b.dir, base)
		if init := filepath.Join(dir, "__init__.py"); isFile(init) {
			return located{
				record:   newRecord(name, domain.KindSource, b.root, init, true),
				portions: []portion{{root: b.root, dir: dir}},
			}
		}
		if ext := findExtension(b.dir, base); ext != "" {
			return located{record: newRecord(name, domain.KindNative, b.root, ext, false)}
		}
		if src := filepath.Join(b.dir, base+".py"); isFile(src) {
			return located{record: newRecord(name, domain.KindSource, b.root, src, false)}
		}
		if isDir(dir) {
			namespaces = append(namespaces, portion{root: b.root, dir: dir})
		}
	}

	if len(namespaces) == 0 {
		return located{err: zerr.With(domain.ErrModuleNotFound, "module", name.String())}
	}
	rec := newRecord(name, domain.KindSource, namespaces[0].root, namespaces[0].dir, true)
	rec.Namespace = true
	return located{record: rec, portions: namespaces}
}

// Submodules returns every module below pkg, sorted by name. Modules of a namespace
// package are collected from all of its portions; earlier roots win.
func (ix *Index) Submodules(pkg domain.ModuleName) ([]domain.ModuleRecord, error) {
	loc := ix.locate(pkg)
	if loc.err != nil {
		return nil, loc.err
	}

	seen := make(domain.ModuleSet)
	var out []domain.ModuleRecord
	for _, p := range loc.portions {
		for path, err := range ix.walker.WalkFiles(p.dir, domain.DefaultIgnores) {
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to list package"), "package", pkg.String())
			}
			name, kind, isPkg, ok := moduleForFile(pkg, p.dir, path)
			if !ok || name == pkg || seen.Has(name) {
				continue
			}
			seen.Add(name)
			out = append(out, newRecord(name, kind, p.root, path, isPkg))
		}
	}

	slices.SortFunc(out, func(a, b domain.ModuleRecord) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	return out, nil
}

// moduleForFile maps a file below a package directory to its module name.
func moduleForFile(pkg domain.ModuleName, dir, path string) (domain.ModuleName, domain.ModuleKind, bool, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return "", "", false, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	file := parts[len(parts)-1]

	var (
		stem string
		kind = domain.KindSource
	)
	switch {
	case strings.HasSuffix(file, ".py"):
		stem = strings.TrimSuffix(file, ".py")
	case isExtensionFile(file):
		stem, _, _ = strings.Cut(file, ".")
		kind = domain.KindNative
	default:
		return "", "", false, false
	}

	parts = parts[:len(parts)-1]
	isPkg := stem == "__init__"
	if !isPkg {
		parts = append(parts, stem)
	}

	name := pkg
	for _, part := range parts {
		if !validIdentifier(part) {
			return "", "", false, false
		}
		name = name.Child(part)
	}
	return name, kind, isPkg, true
}

// Metadata returns the distribution metadata files for a distribution or top-level module name.
func (ix *Index) Metadata(name string) ([]domain.ModuleRecord, bool) {
	d, ok := ix.dists[normalizeDist(name)]
	if !ok {
		d, ok = ix.tops[name]
	}
	if !ok {
		return nil, false
	}

	var out []domain.ModuleRecord
	for path, err := range ix.walker.WalkFiles(d.dir, domain.DefaultIgnores) {
		if err != nil {
			return nil, false
		}
		out = append(out, newRecord(domain.ModuleName(d.top), domain.KindMetadata, d.root, path, false))
	}
	return out, len(out) > 0
}

// Natives returns the shared libraries inside pkg and in its sibling "<name>.libs" directory.
func (ix *Index) Natives(pkg domain.ModuleRecord, debug bool) ([]domain.ModuleRecord, error) {
	if !pkg.Package {
		return nil, nil
	}
	dirs := []string{filepath.Dir(pkg.Path)}
	if pkg.Namespace {
		dirs = []string{pkg.Path}
	}
	if libs := filepath.Join(pkg.Root, pkg.Name.Top().String()+".libs"); isDir(libs) {
		dirs = append(dirs, libs)
	}

	var out []domain.ModuleRecord
	for _, dir := range dirs {
		for path, err := range ix.walker.WalkFiles(dir, domain.DefaultIgnores) {
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to list native libraries"), "package", pkg.Name.String())
			}
			file := filepath.Base(path)
			if isSharedLibrary(file) || (debug && isDebugFile(path)) {
				out = append(out, newRecord(ownerOf(pkg.Name, dir, path), domain.KindNative, pkg.Root, path, false))
			}
		}
	}
	return out, nil
}

// PackageData returns the files inside pkg that are neither code nor native libraries.
func (ix *Index) PackageData(pkg domain.ModuleRecord) ([]domain.ModuleRecord, error) {
	if !pkg.Package {
		return nil, nil
	}
	dir := filepath.Dir(pkg.Path)
	if pkg.Namespace {
		dir = pkg.Path
	}

	var out []domain.ModuleRecord
	for path, err := range ix.walker.WalkFiles(dir, domain.DefaultIgnores) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list package data"), "package", pkg.Name.String())
		}
		file := filepath.Base(path)
		if strings.HasSuffix(file, ".py") || isSharedLibrary(file) || isDebugFile(path) {
			continue
		}
		out = append(out, newRecord(ownerOf(pkg.Name, dir, path), domain.KindData, pkg.Root, path, false))
	}
	return out, nil
}

// ownerOf names the module a companion file below dir belongs to. Extension modules
// and their detached debug symbols are named like the module they implement; other
// files belong to the innermost package directory that holds them. Files outside dir
// belong to pkg.
func ownerOf(pkg domain.ModuleName, dir, path string) domain.ModuleName {
	if name, kind, _, ok := moduleForFile(pkg, dir, path); ok && kind == domain.KindNative {
		return name
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return pkg
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	name := pkg
	for _, part := range parts[:len(parts)-1] {
		if !validIdentifier(part) {
			return name
		}
		name = name.Child(part)
	}
	file := parts[len(parts)-1]
	if stem, _, _ := strings.Cut(file, "."); isDebugFile(file) && validIdentifier(stem) {
		return name.Child(stem)
	}
	return name
}

// IsStdlib reports whether name belongs to the standard library.
func (ix *Index) IsStdlib(name domain.ModuleName) bool {
	return IsStdlib(name)
}

func newRecord(name domain.ModuleName, kind domain.ModuleKind, root, path string, pkg bool) domain.ModuleRecord {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return domain.ModuleRecord{
		Name:    name,
		Kind:    kind,
		Path:    path,
		Root:    root,
		RelPath: filepath.ToSlash(rel),
		Package: pkg,
	}
}

// findExtension returns the extension module named base in dir, such as
// "base.cpython-312-x86_64-linux-gnu.so" or "base.pyd".
func findExtension(dir, base string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, base+".") {
			continue
		}
		if isExtensionFile(name) {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

func isExtensionFile(name string) bool {
	return strings.HasSuffix(name, ".so") || strings.HasSuffix(name, ".pyd")
}

func isSharedLibrary(name string) bool {
	switch filepath.Ext(name) {
	case ".so", ".pyd", ".dll", ".dylib":
		return true
	}
	return strings.Contains(name, ".so.")
}

func isDebugFile(path string) bool {
	switch filepath.Ext(path) {
	case ".pdb", ".debug":
		return true
	}
	return strings.Contains(filepath.ToSlash(path), ".dSYM/")
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
