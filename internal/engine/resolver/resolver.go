// Package resolver computes the set of modules a bundle must contain.
package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// EntryModule is the module name the entry script runs as.
const EntryModule domain.ModuleName = "__main__"

// Resolver implements ports.ClosureResolver by following import statements from
// the entry script across the manifest's search roots.
type Resolver struct {
	finder  ports.ModuleFinder
	scanner ports.ImportScanner
	logger  ports.Logger
}

// New creates a new Resolver.
func New(finder ports.ModuleFinder, scanner ports.ImportScanner, logger ports.Logger) *Resolver {
	return &Resolver{finder: finder, scanner: scanner, logger: logger}
}

// Roots returns the search roots of manifest in lookup order: the entry script's
// directory, the application paths and the third-party search paths.
func Roots(m *domain.BuildManifest) []string {
	roots := []string{filepath.Dir(m.Entry())}
	roots = append(roots, m.Paths()...)
	return append(roots, m.SearchPaths()...)
}

// Resolve computes the closure of the build's entry point.
func (r *Resolver) Resolve(ctx context.Context, bc *domain.BuildContext) (domain.Outcome[*domain.Closure], error) {
	var out domain.Outcome[*domain.Closure]
	m := bc.Manifest

	ix, err := r.finder.Open(Roots(m))
	if err != nil {
		return out, fail(zerr.Wrap(err, "failed to index search paths"))
	}

	run := &resolution{
		ctx:      ctx,
		index:    ix,
		scanner:  r.scanner,
		excludes: m.ExcludeSet(),
		graph:    domain.NewImportGraph(),
		warned:   make(domain.ModuleSet),
		outcome:  &out,
	}

	entry := domain.ModuleRecord{
		Name:    EntryModule,
		Kind:    domain.KindSource,
		Path:    m.Entry(),
		Root:    filepath.Dir(m.Entry()),
		RelPath: filepath.Base(m.Entry()),
	}
	imports, err := r.scanner.Scan(entry.Path)
	if err != nil {
		return out, fail(zerr.With(err, "entry", entry.Path))
	}
	run.graph.AddModule(entry)
	run.follow(entry, imports)

	if err := run.declare(m.HiddenImports(), m.CollectSubmodules()); err != nil {
		return out, fail(err)
	}
	if err := run.drain(); err != nil {
		return out, err
	}

	closure := &domain.Closure{
		Entry: entry,
		Graph: run.graph,
	}
	for _, name := range run.graph.Closure([]domain.ModuleName{EntryModule}, run.excludes.Covers) {
		if name == EntryModule {
			continue
		}
		rec, _ := run.graph.Module(name)
		closure.Modules = append(closure.Modules, rec)
	}
	slices.SortFunc(closure.Modules, func(a, b domain.ModuleRecord) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})

	closure.Companions = run.companions(closure.Modules, m, searchRootSet(m))

	r.logger.Debug(fmt.Sprintf("resolved %d modules and %d companion files", len(closure.Modules), len(closure.Companions)))
	out.Value = closure
	return out, nil
}

func fail(err error) error {
	return domain.NewBuildError(domain.StageResolve, domain.ErrResolution, err)
}

func searchRootSet(m *domain.BuildManifest) map[string]bool {
	set := make(map[string]bool)
	for _, p := range m.SearchPaths() {
		if abs, err := filepath.Abs(p); err == nil {
			set[abs] = true
		}
	}
	return set
}

// resolution is the state of one Resolve call.
type resolution struct {
	ctx      context.Context
	index    ports.ModuleIndex
	scanner  ports.ImportScanner
	excludes domain.ModuleSet
	graph    *domain.ImportGraph
	queue    []domain.ModuleRecord
	warned   domain.ModuleSet
	outcome  *domain.Outcome[*domain.Closure]
}

func (s *resolution) warn(code domain.WarningCode, subject, format string, args ...any) {
	s.outcome.Warn(domain.Warning{
		Stage:   domain.StageResolve,
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// declare adds the explicitly declared modules. A declared module that cannot be found is
// fatal unless the interpreter ships it.
func (s *resolution) declare(hidden, collect []domain.ModuleName) error {
	for _, name := range hidden {
		if s.excludes.Covers(name) {
			s.warn(domain.WarnExcludedDeclared, name.String(), "module %s is declared and excluded; exclusion wins", name)
			continue
		}
		rec, err := s.index.Find(name)
		if err != nil {
			if s.index.IsStdlib(name) {
				continue
			}
			return zerr.With(zerr.Wrap(err, "declared module cannot be resolved"), "module", name.String())
		}
		s.add(rec)
		s.graph.AddEdge(EntryModule, rec.Name)
	}

	for _, pkg := range collect {
		if s.excludes.Covers(pkg) {
			s.warn(domain.WarnExcludedDeclared, pkg.String(), "package %s is declared and excluded; exclusion wins", pkg)
			continue
		}
		rec, err := s.index.Find(pkg)
		if err != nil {
			if s.index.IsStdlib(pkg) {
				continue
			}
			return zerr.With(zerr.Wrap(err, "declared package cannot be resolved"), "module", pkg.String())
		}
		s.add(rec)
		s.graph.AddEdge(EntryModule, rec.Name)

		subs, err := s.index.Submodules(pkg)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to list submodules"), "module", pkg.String())
		}
		for _, sub := range subs {
			if !s.excludes.Covers(sub.Name) {
				s.add(sub)
				s.graph.AddEdge(EntryModule, sub.Name)
			}
		}
	}
	return nil
}

// add inserts rec and its enclosing packages into the graph and queues new modules for
// scanning. Importing a submodule imports its parents first, so each parent is an edge.
func (s *resolution) add(rec domain.ModuleRecord) {
	s.enqueue(rec)
	for _, parent := range rec.Name.Ancestors() {
		if !s.graph.Has(parent) {
			p, err := s.index.Find(parent)
			if err != nil {
				continue
			}
			s.enqueue(p)
		}
		s.graph.AddEdge(rec.Name, parent)
	}
}

func (s *resolution) enqueue(rec domain.ModuleRecord) {
	if s.graph.AddModule(rec) {
		s.queue = append(s.queue, rec)
	}
}

// drain scans queued modules until no new modules are found.
func (s *resolution) drain() error {
	for len(s.queue) > 0 {
		if err := s.ctx.Err(); err != nil {
			return domain.NewBuildError(domain.StageResolve, domain.ErrCancelled, err)
		}

		rec := s.queue[0]
		s.queue = s.queue[1:]
		if rec.Kind != domain.KindSource || rec.Namespace {
			continue
		}

		imports, err := s.scanner.Scan(rec.Path)
		if err != nil {
			s.warn(domain.WarnScanFailed, rec.Name.String(), "imports of %s could not be read: %v", rec.Name, err)
			continue
		}
		s.follow(rec, imports)
	}
	return nil
}

// follow resolves the imports of importer and records the edges.
func (s *resolution) follow(importer domain.ModuleRecord, imports []domain.Import) {
	for _, imp := range imports {
		target, subs, ok := imp.Candidates(importer.Name, importer.Package && !importer.Namespace)
		if !ok {
			continue
		}

		rec, found := s.lookup(importer.Name, target, true)
		if !found || !rec.Package {
			continue
		}
		// "from pkg import name" loads pkg.name when it is a submodule and is an
		// attribute lookup otherwise, so misses are not reported.
		for _, sub := range subs {
			s.lookup(importer.Name, sub, false)
		}
	}
}

func (s *resolution) lookup(importer, name domain.ModuleName, report bool) (domain.ModuleRecord, bool) {
	if s.excludes.Covers(name) {
		return domain.ModuleRecord{}, false
	}
	if rec, ok := s.graph.Module(name); ok {
		s.graph.AddEdge(importer, name)
		return rec, true
	}

	rec, err := s.index.Find(name)
	if err != nil {
		if report && !s.index.IsStdlib(name) && !s.warned.Has(name) {
			s.warned.Add(name)
			s.warn(domain.WarnMissingModule, name.String(), "module %s imported by %s not found", name, importer)
		}
		return domain.ModuleRecord{}, false
	}

	s.add(rec)
	s.graph.AddEdge(importer, name)
	return rec, true
}

// companions collects the native libraries, data files and metadata that travel with the closure.
func (s *resolution) companions(modules []domain.ModuleRecord, m *domain.BuildManifest, searchRoots map[string]bool) []domain.ModuleRecord {
	seen := make(map[string]bool)
	var out []domain.ModuleRecord
	push := func(recs ...domain.ModuleRecord) {
		for _, rec := range recs {
			if s.excludes.Covers(rec.Name) {
				continue
			}
			if !seen[rec.Path] {
				seen[rec.Path] = true
				out = append(out, rec)
			}
		}
	}

	debug := m.Launcher().Debug
	metadataSeen := make(map[string]bool)
	for _, rec := range modules {
		if strings.Contains(string(rec.Name), ".") {
			continue
		}
		if rec.Package {
			natives, err := s.index.Natives(rec, debug)
			if err != nil {
				s.warn(domain.WarnScanFailed, rec.Name.String(), "native libraries of %s could not be listed: %v", rec.Name, err)
			}
			push(natives...)
		}
		if searchRoots[rec.Root] {
			if files, ok := s.index.Metadata(rec.Name.String()); ok && !metadataSeen[files[0].Path] {
				metadataSeen[files[0].Path] = true
				push(files...)
			}
		}
	}

	for _, pkg := range m.CollectData() {
		if s.excludes.Covers(pkg) {
			continue
		}
		rec, err := s.index.Find(pkg)
		if err != nil {
			s.warn(domain.WarnMissingData, pkg.String(), "package %s listed in collect_data not found", pkg)
			continue
		}
		data, err := s.index.PackageData(rec)
		if err != nil {
			s.warn(domain.WarnMissingData, pkg.String(), "data files of %s could not be listed: %v", pkg, err)
			continue
		}
		push(data...)
	}

	for _, name := range m.Metadata() {
		files, ok := s.index.Metadata(name)
		if !ok {
			s.warn(domain.WarnMissingMetadata, name, "metadata for %s not found", name)
			continue
		}
		push(files...)
	}

	slices.SortFunc(out, func(a, b domain.ModuleRecord) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return out
}
