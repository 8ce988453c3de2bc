// Package app implements the application layer for kiln.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stages are the engines of the build pipeline.
type Stages struct {
	Resolver  ports.ClosureResolver
	Stager    ports.Stager
	Assembler ports.Assembler
	Packager  ports.Packager
}

// Services are the adapters the pipeline drives around its stages.
type Services struct {
	Logger    ports.Logger
	BuildLog  ports.BuildLog
	Store     ports.BuildRecordStore
	Telemetry ports.Telemetry
	Prompter  ports.Prompter
	Killer    ports.ProcessKiller
	Executor  ports.Executor
}

// App represents the main application logic.
type App struct {
	loader    ports.ManifestLoader
	stages    Stages
	logger    ports.Logger
	buildLog  ports.BuildLog
	store     ports.BuildRecordStore
	telemetry ports.Telemetry
	prompter  ports.Prompter
	killer    ports.ProcessKiller
	executor  ports.Executor
	stderr    io.Writer
	logTail   int
}

// New creates a new App instance.
func New(loader ports.ManifestLoader, stages Stages, services Services) *App {
	return &App{
		loader:    loader,
		stages:    stages,
		logger:    services.Logger,
		buildLog:  services.BuildLog,
		store:     services.Store,
		telemetry: services.Telemetry,
		prompter:  services.Prompter,
		killer:    services.Killer,
		executor:  services.Executor,
		stderr:    os.Stderr,
		logTail:   domain.DefaultLogTail,
	}
}

// WithStderr sets where the build log tail is printed after a failure.
func (a *App) WithStderr(w io.Writer) *App {
	a.stderr = w
	return a
}

// ConfigureLogging switches the terminal log format and verbosity when the logger supports it.
func (a *App) ConfigureLogging(jsonOutput, verbose bool) {
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonOutput)
	}
	if l, ok := a.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(verbose)
	}
}

// Close flushes the telemetry session.
func (a *App) Close() error {
	return a.telemetry.Close()
}

// Build runs the whole pipeline for the manifest at path. The returned result is
// filled in as far as the build got; err is a *domain.BuildError naming the failed stage.
func (a *App) Build(ctx context.Context, path string, opts domain.BuildOptions) (domain.BuildResult, error) {
	manifest, err := a.loader.Load(path, ports.LoadOptions{BaseDir: opts.SpecDir})
	if err != nil {
		err = domain.NewBuildError(domain.StageManifest, domain.ErrManifest, err)
		return domain.BuildResult{Success: false, FailedStage: domain.StageManifest}, err
	}

	bc := domain.NewBuildContext(manifest, opts)
	a.logger.Info(fmt.Sprintf("building %s from %s", manifest.Name(), manifest.Path()))
	a.logPrevious(bc)

	if err := a.prepare(ctx, bc); err != nil {
		return a.finish(bc, err), err
	}
	defer func() { _ = a.buildLog.Detach() }()

	err = a.run(ctx, bc)
	return a.finish(bc, err), err
}

// run executes the stages after the precondition in order.
func (a *App) run(ctx context.Context, bc *domain.BuildContext) error {
	steps := []struct {
		stage domain.Stage
		run   func(context.Context, *domain.BuildContext) error
	}{
		{domain.StageHooks, a.runHooks},
		{domain.StageResolve, a.resolve},
		{domain.StageStage, a.stage},
		{domain.StageAssemble, a.assemble},
		{domain.StagePackage, a.pkg},
	}

	for _, s := range steps {
		if err := bc.Checkpoint(ctx, s.stage); err != nil {
			return err
		}
		if err := a.step(ctx, bc, s.stage, s.run); err != nil {
			return err
		}
	}
	return nil
}

// step records stage as a telemetry vertex and times it.
func (a *App) step(
	ctx context.Context,
	bc *domain.BuildContext,
	stage domain.Stage,
	run func(context.Context, *domain.BuildContext) error,
) error {
	vctx, vertex := a.telemetry.Record(ctx, stage.String())

	a.logger.Debug(fmt.Sprintf("stage %s started", stage))
	start := time.Now()
	err := run(vctx, bc)
	bc.Timings[stage] = time.Since(start)

	if err != nil {
		err = classify(stage, err)
		vertex.Log(domain.LogLevelError, err.Error())
	} else {
		vertex.Log(domain.LogLevelInfo, fmt.Sprintf("finished in %s", bc.Timings[stage].Round(time.Millisecond)))
	}
	vertex.Complete(err)
	return err
}

// classify wraps errors that do not yet name their stage.
func classify(stage domain.Stage, err error) error {
	if be, ok := domain.AsBuildError(err); ok {
		return be
	}
	if errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled) {
		return domain.NewBuildError(stage, domain.ErrCancelled, err)
	}
	return domain.NewBuildError(stage, kindOf(stage), err)
}

func kindOf(stage domain.Stage) error {
	switch stage {
	case domain.StageManifest:
		return domain.ErrManifest
	case domain.StagePrecondition:
		return domain.ErrPrecondition
	case domain.StageHooks:
		return domain.ErrHookFailed
	case domain.StageResolve:
		return domain.ErrResolution
	case domain.StageStage:
		return domain.ErrStaging
	case domain.StageAssemble:
		return domain.ErrAssembly
	default:
		return domain.ErrPackaging
	}
}

// prepare stops running instances of the bundle, removes prior outputs when asked to
// and starts the build log.
func (a *App) prepare(ctx context.Context, bc *domain.BuildContext) error {
	if err := bc.Checkpoint(ctx, domain.StagePrecondition); err != nil {
		return err
	}
	name := bc.Manifest.Name()
	bundleDir := domain.BundleDir(bc.Options.DistDir, name)

	killed, err := a.killer.KillBundle(ctx, name, bundleDir)
	if err != nil {
		return classify(domain.StagePrecondition, err)
	}
	if killed > 0 {
		a.logger.Info(fmt.Sprintf("terminated %d running instance(s) of %s", killed, name))
	}

	if bc.Options.Clean {
		for _, dir := range []string{bc.WorkDir(), bundleDir} {
			if err := a.remove(dir); err != nil {
				return classify(domain.StagePrecondition, err)
			}
		}
	}

	if err := os.MkdirAll(bc.WorkDir(), domain.DirPerm); err != nil {
		return classify(domain.StagePrecondition, zerr.With(zerr.Wrap(err, "failed to create work directory"), "path", bc.WorkDir()))
	}
	logPath := domain.BuildLogPath(bc.Options.WorkDir, name)
	if err := a.buildLog.Attach(logPath); err != nil {
		return classify(domain.StagePrecondition, err)
	}
	a.logger.Debug(fmt.Sprintf("build %s logging to %s", bc.ID, logPath))
	return nil
}

func (a *App) remove(dir string) error {
	if _, err := os.Lstat(dir); os.IsNotExist(err) {
		return nil
	}
	a.logger.Info(fmt.Sprintf("removing %s", dir))
	if err := os.RemoveAll(dir); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove directory"), "path", dir)
	}
	return nil
}

func (a *App) runHooks(ctx context.Context, bc *domain.BuildContext) error {
	hooks := bc.Manifest.Hooks()
	if len(hooks) == 0 {
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Cached()
		}
		return nil
	}

	var stdout, stderr io.Writer
	if v, ok := ports.VertexFromContext(ctx); ok {
		stdout, stderr = v.Stdout(), v.Stderr()
	}
	for _, hook := range hooks {
		a.logger.Info(fmt.Sprintf("running hook: %s", strings.Join(hook, " ")))
		if err := a.executor.Execute(ctx, hook, bc.Manifest.BaseDir(), nil, stdout, stderr); err != nil {
			return domain.NewBuildError(domain.StageHooks, domain.ErrHookFailed, err)
		}
	}
	return nil
}

func (a *App) resolve(ctx context.Context, bc *domain.BuildContext) error {
	out, err := a.stages.Resolver.Resolve(ctx, bc)
	a.warn(ctx, bc, out.Warnings)
	if err != nil {
		return err
	}
	bc.Closure = out.Value
	a.logger.Info(fmt.Sprintf("resolved %d modules and %d companion files",
		len(bc.Closure.Modules), len(bc.Closure.Companions)))
	return nil
}

func (a *App) stage(ctx context.Context, bc *domain.BuildContext) error {
	report, err := a.stages.Stager.Stage(ctx, bc)
	if err != nil {
		return err
	}
	bc.Changed = report.Changed()
	if bc.Changed == 0 {
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Cached()
		}
	}
	a.logger.Info(fmt.Sprintf("staged %d files (%d copied, %d unchanged, %d removed)",
		bc.Staged.Len(), report.Copied, report.Unchanged, report.Removed))
	return nil
}

func (a *App) assemble(ctx context.Context, bc *domain.BuildContext) error {
	dir, err := a.stages.Assembler.Assemble(ctx, bc)
	if err != nil {
		return err
	}
	bc.BundleDir = dir
	a.logger.Info(fmt.Sprintf("assembled bundle %s", dir))
	return nil
}

func (a *App) pkg(ctx context.Context, bc *domain.BuildContext) error {
	overwrite, err := a.confirmOverwrite(ctx, bc)
	if err != nil {
		return err
	}

	out, err := a.stages.Packager.Package(ctx, bc, ports.PackageOptions{Overwrite: overwrite})
	a.warn(ctx, bc, out.Warnings)
	if err != nil {
		return err
	}
	bc.ReleaseDir = out.Value.Dir
	bc.ArchivePath = out.Value.Archive
	a.logger.Info(fmt.Sprintf("wrote release %s", bc.ArchivePath))
	return nil
}

// confirmOverwrite decides whether an existing release may be replaced. --no-confirm
// permits it; otherwise an interactive operator is asked.
func (a *App) confirmOverwrite(ctx context.Context, bc *domain.BuildContext) (bool, error) {
	if bc.Options.NoConfirm {
		return true, nil
	}
	if !a.stages.Packager.Exists(bc) || !a.prompter.Interactive() {
		return false, nil
	}
	ok, err := a.prompter.Confirm(ctx, fmt.Sprintf("A release of %s %s already exists. Replace it?",
		bc.Manifest.Name(), bc.Manifest.Dist().Version))
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (a *App) warn(ctx context.Context, bc *domain.BuildContext, ws []domain.Warning) {
	bc.Warnings.Add(ws...)
	v, hasVertex := ports.VertexFromContext(ctx)
	for _, w := range ws {
		a.logger.Warn(w.String())
		if hasVertex {
			v.Log(domain.LogLevelWarn, w.String())
		}
	}
}

func (a *App) logPrevious(bc *domain.BuildContext) {
	prev, err := a.store.Get(domain.StorePath(bc.Options.WorkDir), bc.Manifest.Name())
	if err != nil {
		a.logger.Debug(fmt.Sprintf("previous build record unavailable: %v", err))
		return
	}
	if prev == nil {
		return
	}
	status := "succeeded"
	if !prev.Result.Success {
		status = "failed in stage " + prev.Result.FailedStage.String()
	}
	a.logger.Debug(fmt.Sprintf("previous build of %s %s at %s", prev.Name, status,
		prev.Timestamp.Format(time.RFC3339)))
}

// finish records the build, prints the log tail on failure and summarizes warnings on success.
func (a *App) finish(bc *domain.BuildContext, err error) domain.BuildResult {
	result := bc.Result(err)

	record := domain.BuildRecord{
		Name:         bc.Manifest.Name(),
		ManifestPath: bc.Manifest.Path(),
		Result:       result,
		Timestamp:    time.Now(),
	}
	if putErr := a.store.Put(domain.StorePath(bc.Options.WorkDir), record); putErr != nil {
		a.logger.Warn(fmt.Sprintf("failed to record build: %v", putErr))
	}

	if err != nil {
		a.printTail(bc)
		return result
	}

	if n := len(result.Warnings); n > 0 {
		a.logger.Warn(fmt.Sprintf("build finished with %d warning(s):", n))
		for _, w := range result.Warnings {
			a.logger.Warn("  " + w.String())
		}
	}
	a.logger.Info(fmt.Sprintf("built %s in %s", result.Name, result.Duration.Round(time.Millisecond)))
	return result
}

func (a *App) printTail(bc *domain.BuildContext) {
	lines, err := a.buildLog.Tail(a.logTail)
	if err != nil || len(lines) == 0 {
		return
	}
	path := domain.BuildLogPath(bc.Options.WorkDir, bc.Manifest.Name())
	_, _ = fmt.Fprintf(a.stderr, "--- last %d lines of %s ---\n", len(lines), path)
	for _, line := range lines {
		_, _ = fmt.Fprintln(a.stderr, line)
	}
}

// Clean stops running instances of the manifest's bundle and removes its work and
// bundle directories.
func (a *App) Clean(ctx context.Context, path string, opts domain.BuildOptions) error {
	manifest, err := a.loader.Load(path, ports.LoadOptions{BaseDir: opts.SpecDir})
	if err != nil {
		return domain.NewBuildError(domain.StageManifest, domain.ErrManifest, err)
	}
	bc := domain.NewBuildContext(manifest, opts)
	bundleDir := domain.BundleDir(bc.Options.DistDir, manifest.Name())

	if _, err := a.killer.KillBundle(ctx, manifest.Name(), bundleDir); err != nil {
		return classify(domain.StagePrecondition, err)
	}

	var errs error
	for _, dir := range []string{bc.WorkDir(), bundleDir} {
		errs = errors.Join(errs, a.remove(dir))
	}
	if errs != nil {
		return classify(domain.StagePrecondition, errs)
	}
	a.logger.Info(fmt.Sprintf("cleaned %s", manifest.Name()))
	return nil
}
