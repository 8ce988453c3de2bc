// Package assembler turns the staging tree into a runnable bundle directory.
package assembler

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Assembler implements ports.Assembler.
type Assembler struct {
	copier   ports.Copier
	archiver ports.Archiver
	launcher ports.LauncherWriter
	logger   ports.Logger
}

// New creates a new Assembler.
func New(copier ports.Copier, archiver ports.Archiver, launcher ports.LauncherWriter, logger ports.Logger) *Assembler {
	return &Assembler{
		copier:   copier,
		archiver: archiver,
		launcher: launcher,
		logger:   logger,
	}
}

// PythonPath returns the import roots of a bundle, relative to the bundle directory.
func PythonPath() []string {
	return []string{
		path.Join(domain.InternalDirName, domain.ModuleArchiveName),
		path.Join(domain.InternalDirName, domain.LibDirName),
		domain.InternalDirName,
	}
}

// Assemble recreates the bundle directory from the staging tree. Pure-code modules are
// packed into a single archive and a launcher for the target platform is written next
// to the internal directory.
func (a *Assembler) Assemble(ctx context.Context, bc *domain.BuildContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.NewBuildError(domain.StageAssemble, domain.ErrCancelled, err)
	}

	if bc.Closure == nil {
		return "", fail(zerr.New("closure has not been resolved"))
	}

	m := bc.Manifest
	stage := bc.StageDir()
	dir := domain.BundleDir(bc.Options.DistDir, m.Name())

	if err := os.RemoveAll(dir); err != nil {
		return "", fail(zerr.With(zerr.Wrap(err, "failed to remove previous bundle"), "path", dir))
	}
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return "", fail(zerr.With(zerr.Wrap(err, "failed to create bundle directory"), "path", dir))
	}

	pyzPrefix := path.Join(domain.InternalDirName, domain.PyzDirName) + "/"
	copied, err := a.copier.CopyTree(stage, dir, func(rel string) bool {
		return strings.HasPrefix(rel, pyzPrefix)
	})
	if err != nil {
		return "", fail(err)
	}

	packed := 0
	pyz := filepath.Join(stage, domain.InternalDirName, domain.PyzDirName)
	if info, statErr := os.Stat(pyz); statErr == nil && info.IsDir() {
		archive := filepath.Join(dir, domain.InternalDirName, domain.ModuleArchiveName)
		if packed, err = a.archiver.Zip(pyz, archive, m.Launcher().Compress); err != nil {
			return "", fail(zerr.Wrap(err, "failed to pack modules"))
		}
	}

	flags := m.Launcher()
	if flags.Platform == "" {
		flags.Platform = runtime.GOOS
	}
	launcher, err := a.launcher.Write(dir, ports.LaunchSpec{
		Name:       m.Name(),
		Entry:      path.Join(domain.InternalDirName, bc.Closure.Entry.RelPath),
		PythonPath: PythonPath(),
		Args:       m.Args(),
		Env:        m.Env(),
		Flags:      flags,
	})
	if err != nil {
		return "", fail(err)
	}

	a.logger.Debug(fmt.Sprintf("assembled %s: %d files, %d packed modules, launcher %s",
		dir, copied, packed, filepath.Base(launcher)))
	return dir, nil
}

func fail(err error) error {
	return domain.NewBuildError(domain.StageAssemble, domain.ErrAssembly, err)
}
