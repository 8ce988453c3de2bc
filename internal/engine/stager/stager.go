// Package stager copies the resolved closure and data mappings into the staging tree.
package stager

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"sync/atomic"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Stager implements ports.Stager.
type Stager struct {
	walker ports.Walker
	hasher ports.Hasher
	copier ports.Copier
	logger ports.Logger
	limit  int
}

// New creates a new Stager that copies up to runtime.NumCPU files at once.
func New(walker ports.Walker, hasher ports.Hasher, copier ports.Copier, logger ports.Logger) *Stager {
	return &Stager{
		walker: walker,
		hasher: hasher,
		copier: copier,
		logger: logger,
		limit:  runtime.NumCPU(),
	}
}

// item is one planned copy: a source file and its slash-separated destination below the stage root.
type item struct {
	dest   string
	source string
}

// Stage brings the staging tree in line with the build context's closure and data mappings.
// Files whose content already matches are left alone and files no longer planned are removed.
func (s *Stager) Stage(ctx context.Context, bc *domain.BuildContext) (ports.StageReport, error) {
	var report ports.StageReport
	if bc.Closure == nil {
		return report, fail(domain.ErrStaging, zerr.New("closure has not been resolved"))
	}

	plan, err := s.plan(bc)
	if err != nil {
		return report, fail(domain.ErrStaging, err)
	}

	if err := s.record(ctx, bc.Staged, plan); err != nil {
		return report, classify(err)
	}

	root := bc.StageDir()
	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return report, fail(domain.ErrStaging, zerr.With(zerr.Wrap(err, "failed to create stage directory"), "path", root))
	}

	copied, unchanged, err := s.copy(ctx, root, bc.Staged)
	if err != nil {
		return report, classify(err)
	}
	report.Copied, report.Unchanged = copied, unchanged

	if report.Removed, err = s.prune(root, bc.Staged); err != nil {
		return report, fail(domain.ErrStaging, err)
	}

	s.logger.Debug(fmt.Sprintf("staged %d files: %d copied, %d unchanged, %d removed",
		bc.Staged.Len(), report.Copied, report.Unchanged, report.Removed))
	return report, nil
}

func fail(kind, err error) error {
	return domain.NewBuildError(domain.StageStage, kind, err)
}

// classify turns an error from a concurrent phase into a staging BuildError.
func classify(err error) error {
	if be, ok := domain.AsBuildError(err); ok {
		return be
	}
	return fail(domain.ErrStaging, err)
}

// plan maps every closure record, the entry script and every data mapping to a destination.
func (s *Stager) plan(bc *domain.BuildContext) ([]item, error) {
	closure := bc.Closure
	lib := onDiskPackages(closure)

	var plan []item
	place := func(rec domain.ModuleRecord) {
		if rec.Namespace {
			return
		}
		dir := domain.PyzDirName
		if rec.Kind != domain.KindSource || lib.Has(rec.Name.Top()) {
			dir = domain.LibDirName
		}
		plan = append(plan, item{dest: path.Join(domain.InternalDirName, dir, rec.RelPath), source: rec.Path})
	}
	for _, rec := range closure.Modules {
		place(rec)
	}
	for _, rec := range closure.Companions {
		place(rec)
	}

	plan = append(plan, item{
		dest:   path.Join(domain.InternalDirName, closure.Entry.RelPath),
		source: closure.Entry.Path,
	})

	for _, d := range bc.Manifest.Datas() {
		items, err := s.expand(d)
		if err != nil {
			return nil, err
		}
		plan = append(plan, items...)
	}
	return plan, nil
}

// onDiskPackages returns the top-level packages that carry native code or data files.
// Such packages are staged under lib so the interpreter can load them from disk.
func onDiskPackages(c *domain.Closure) domain.ModuleSet {
	set := make(domain.ModuleSet)
	for _, rec := range slices.Concat(c.Modules, c.Companions) {
		if rec.Kind == domain.KindNative || rec.Kind == domain.KindData {
			set.Add(rec.Name.Top())
		}
	}
	return set
}

// expand lists the files a data mapping contributes. A directory is copied below its
// destination; a single file is placed inside the destination directory.
func (s *Stager) expand(d domain.DataMapping) ([]item, error) {
	base := path.Join(domain.InternalDirName, d.Dest)

	info, err := os.Stat(d.Source)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDataSourceNotFound.Error()), "source", d.Source)
	}
	if !info.IsDir() {
		return []item{{dest: path.Join(base, filepath.Base(d.Source)), source: d.Source}}, nil
	}

	var items []item
	for p, err := range s.walker.WalkFiles(d.Source, domain.DefaultIgnores) {
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list data files"), "source", d.Source)
		}
		rel, err := filepath.Rel(d.Source, p)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list data files"), "source", d.Source)
		}
		items = append(items, item{dest: path.Join(base, filepath.ToSlash(rel)), source: p})
	}
	return items, nil
}

// record hashes every planned source and adds it to the staged bundle.
func (s *Stager) record(ctx context.Context, staged *domain.StagedBundle, plan []item) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, it := range plan {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return domain.NewBuildError(domain.StageStage, domain.ErrCancelled, err)
			}
			sum, err := s.hasher.HashFile(it.source)
			if err != nil {
				return err
			}
			if err := staged.Add(it.dest, it.source, sum); err != nil {
				return fail(domain.ErrStagingConflict, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// copy writes every staged destination whose content differs from its source.
func (s *Stager) copy(ctx context.Context, root string, staged *domain.StagedBundle) (copied, unchanged int, err error) {
	var nCopied, nUnchanged atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for dest, entry := range staged.All() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return domain.NewBuildError(domain.StageStage, domain.ErrCancelled, err)
			}
			target := filepath.Join(root, filepath.FromSlash(dest))
			if current, err := s.hasher.HashFile(target); err == nil && current == entry.Hash {
				nUnchanged.Add(1)
				return nil
			}
			if err := s.copier.CopyFile(entry.Source.String(), target, 0); err != nil {
				return err
			}
			nCopied.Add(1)
			return nil
		})
	}

	err = g.Wait()
	return int(nCopied.Load()), int(nUnchanged.Load()), err
}

// prune removes files below root that are not staged, then any directories left empty.
func (s *Stager) prune(root string, staged *domain.StagedBundle) (int, error) {
	var stale []string
	for p, err := range s.walker.WalkFiles(root, nil) {
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to scan stage directory"), "path", root)
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to scan stage directory"), "path", p)
		}
		if _, ok := staged.Get(filepath.ToSlash(rel)); !ok {
			stale = append(stale, p)
		}
	}

	for _, p := range stale {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return 0, zerr.With(zerr.Wrap(err, "failed to remove stale file"), "path", p)
		}
	}
	if len(stale) > 0 {
		removeEmptyDirs(root)
	}
	return len(stale), nil
}

func removeEmptyDirs(root string) {
	var dirs []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err == nil && d.IsDir() && p != root {
			dirs = append(dirs, p)
		}
		return nil
	})
	// Deepest first, so parents empty out before they are visited.
	for _, d := range slices.Backward(dirs) {
		_ = os.Remove(d)
	}
}
