// Package packager writes release directories and archives of assembled bundles.
package packager

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Packager implements ports.Packager.
type Packager struct {
	copier   ports.Copier
	archiver ports.Archiver
	resolver ports.PathResolver
	verifier ports.Verifier
	logger   ports.Logger
}

// New creates a new Packager.
func New(
	copier ports.Copier,
	archiver ports.Archiver,
	resolver ports.PathResolver,
	verifier ports.Verifier,
	logger ports.Logger,
) *Packager {
	return &Packager{
		copier:   copier,
		archiver: archiver,
		resolver: resolver,
		verifier: verifier,
		logger:   logger,
	}
}

// ReleaseName returns "<name>-<version>-<platform>-<arch>" for the build.
func ReleaseName(m *domain.BuildManifest) string {
	version := m.Dist().Version
	if version == "" {
		version = domain.DefaultVersion
	}
	return fmt.Sprintf("%s-%s-%s-%s", m.Name(), version, platform(m), runtime.GOARCH)
}

func platform(m *domain.BuildManifest) string {
	if p := m.Launcher().Platform; p != "" {
		return p
	}
	return runtime.GOOS
}

// Paths returns the release directory and archive of the build.
func Paths(m *domain.BuildManifest) (dir, archive string) {
	root := m.Dist().ReleaseDir
	if root == "" {
		root = domain.DefaultReleaseDir
	}
	dir = filepath.Join(root, ReleaseName(m))
	return dir, dir + format(m).Extension()
}

func format(m *domain.BuildManifest) domain.ArchiveFormat {
	if f := m.Dist().Format; f != "" {
		return f
	}
	return domain.FormatZip
}

// Exists reports whether the release directory or archive of the build already exists.
func (p *Packager) Exists(bc *domain.BuildContext) bool {
	dir, archive := Paths(bc.Manifest)
	for _, target := range []string{dir, archive} {
		if _, err := os.Lstat(target); err == nil {
			return true
		}
	}
	return false
}

// Package copies the assembled bundle and the manifest's documents into the release
// directory and compresses it. An existing release is only replaced when opts permit it.
func (p *Packager) Package(
	ctx context.Context,
	bc *domain.BuildContext,
	opts ports.PackageOptions,
) (domain.Outcome[ports.Release], error) {
	var out domain.Outcome[ports.Release]
	if err := ctx.Err(); err != nil {
		return out, domain.NewBuildError(domain.StagePackage, domain.ErrCancelled, err)
	}

	m := bc.Manifest
	dir, archive := Paths(m)

	if bc.Closure == nil || bc.BundleDir == "" {
		return out, fail(zerr.New("bundle has not been assembled"))
	}

	if p.Exists(bc) {
		if !opts.Overwrite {
			err := zerr.With(zerr.With(domain.ErrReleaseExists, "release_dir", dir), "archive", archive)
			return out, fail(err)
		}
		for _, target := range []string{dir, archive} {
			if err := os.RemoveAll(target); err != nil {
				return out, fail(zerr.With(zerr.Wrap(err, "failed to remove previous release"), "path", target))
			}
		}
	}

	if _, err := p.copier.CopyTree(bc.BundleDir, dir, nil); err != nil {
		return out, fail(err)
	}

	docs, err := p.copyDocs(m, dir, &out)
	if err != nil {
		return out, fail(err)
	}

	expected := append([]string{
		domain.LauncherName(m.Name(), platform(m)),
		filepath.FromSlash(path.Join(domain.InternalDirName, bc.Closure.Entry.RelPath)),
	}, docs...)
	missing, err := p.verifier.Missing(dir, expected)
	if err != nil {
		return out, fail(err)
	}
	if len(missing) > 0 {
		return out, fail(zerr.With(zerr.New("release is incomplete"), "missing", missing))
	}

	if err := p.archiver.Archive(dir, archive, ReleaseName(m), format(m)); err != nil {
		return out, fail(err)
	}

	p.logger.Debug(fmt.Sprintf("packaged %s into %s", dir, archive))
	out.Value = ports.Release{Dir: dir, Archive: archive}
	return out, nil
}

// copyDocs copies every document matched by the manifest's doc patterns to the top of
// the release directory. Patterns without matches are reported as warnings.
func (p *Packager) copyDocs(m *domain.BuildManifest, dir string, out *domain.Outcome[ports.Release]) ([]string, error) {
	matches, missing, err := p.resolver.Resolve(m.Docs())
	if err != nil {
		return nil, err
	}
	for _, pattern := range missing {
		out.Warn(domain.Warning{
			Stage:   domain.StagePackage,
			Code:    domain.WarnMissingDoc,
			Subject: pattern,
			Message: fmt.Sprintf("document %s not found", pattern),
		})
	}

	var copied []string
	for _, src := range matches {
		name := filepath.Base(src)
		dst := filepath.Join(dir, name)
		info, err := os.Stat(src)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", src)
		}
		if info.IsDir() {
			_, err = p.copier.CopyTree(src, dst, nil)
		} else {
			err = p.copier.CopyFile(src, dst, 0)
		}
		if err != nil {
			return nil, err
		}
		copied = append(copied, name)
	}
	return copied, nil
}

func fail(err error) error {
	return domain.NewBuildError(domain.StagePackage, domain.ErrPackaging, err)
}
