package app_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rock "go.trai.ch/kiln/internal/adapters/telemetry/progrock"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader    *mocks.MockManifestLoader
	resolver  *mocks.MockClosureResolver
	stager    *mocks.MockStager
	assembler *mocks.MockAssembler
	packager  *mocks.MockPackager
	buildLog  *mocks.MockBuildLog
	store     *mocks.MockBuildRecordStore
	prompter  *mocks.MockPrompter
	killer    *mocks.MockProcessKiller
	executor  *mocks.MockExecutor

	stderr   *bytes.Buffer
	app      *app.App
	base     string
	opts     domain.BuildOptions
	manifest *domain.BuildManifest
}

func newHarness(t *testing.T, spec domain.ManifestSpec) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	base := t.TempDir()
	spec.Path = filepath.Join(base, "kiln.yaml")
	spec.BaseDir = base
	spec.Entry = filepath.Join(base, "app_main.py")
	if spec.Name == "" {
		spec.Name = "app"
	}

	h := &harness{
		loader:    mocks.NewMockManifestLoader(ctrl),
		resolver:  mocks.NewMockClosureResolver(ctrl),
		stager:    mocks.NewMockStager(ctrl),
		assembler: mocks.NewMockAssembler(ctrl),
		packager:  mocks.NewMockPackager(ctrl),
		buildLog:  mocks.NewMockBuildLog(ctrl),
		store:     mocks.NewMockBuildRecordStore(ctrl),
		prompter:  mocks.NewMockPrompter(ctrl),
		killer:    mocks.NewMockProcessKiller(ctrl),
		executor:  mocks.NewMockExecutor(ctrl),
		stderr:    &bytes.Buffer{},
		base:      base,
		manifest:  domain.NewBuildManifest(spec),
		opts: domain.BuildOptions{
			WorkDir: filepath.Join(base, "build"),
			DistDir: filepath.Join(base, "dist"),
		},
	}

	h.app = app.New(h.loader, app.Stages{
		Resolver:  h.resolver,
		Stager:    h.stager,
		Assembler: h.assembler,
		Packager:  h.packager,
	}, app.Services{
		Logger:    log,
		BuildLog:  h.buildLog,
		Store:     h.store,
		Telemetry: rock.New(),
		Prompter:  h.prompter,
		Killer:    h.killer,
		Executor:  h.executor,
	}).WithStderr(h.stderr)
	t.Cleanup(func() { _ = h.app.Close() })
	return h
}

func (h *harness) bundleDir() string {
	return domain.BundleDir(h.opts.DistDir, h.manifest.Name())
}

// expectPrepare sets up the calls made before the first stage runs.
func (h *harness) expectPrepare() {
	h.loader.EXPECT().Load(h.manifest.Path(), ports.LoadOptions{}).Return(h.manifest, nil)
	h.store.EXPECT().Get(domain.StorePath(h.opts.WorkDir), h.manifest.Name()).Return(nil, nil)
	h.killer.EXPECT().KillBundle(gomock.Any(), h.manifest.Name(), h.bundleDir()).Return(0, nil)
	h.buildLog.EXPECT().Attach(domain.BuildLogPath(h.opts.WorkDir, h.manifest.Name())).Return(nil)
	h.buildLog.EXPECT().Detach().Return(nil)
}

func closure() *domain.Closure {
	return &domain.Closure{
		Entry:   domain.ModuleRecord{Name: "__main__", RelPath: "app_main.py"},
		Modules: []domain.ModuleRecord{{Name: "mod"}, {Name: "mod.x"}},
	}
}

func TestApp_Build(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{
		Hooks: []domain.HookCommand{{"make", "assets"}},
	})
	h.opts.NoConfirm = true
	h.expectPrepare()

	warning := domain.Warning{
		Stage:   domain.StageResolve,
		Code:    domain.WarnMissingModule,
		Subject: "yaml",
		Message: "module yaml imported by __main__ not found",
	}
	release := ports.Release{Dir: "/release/app-1.0.0", Archive: "/release/app-1.0.0.zip"}

	h.executor.EXPECT().
		Execute(gomock.Any(), []string{"make", "assets"}, h.base, nil, gomock.Any(), gomock.Any()).
		Return(nil)
	gomock.InOrder(
		h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
			Return(domain.Outcome[*domain.Closure]{Value: closure(), Warnings: []domain.Warning{warning}}, nil),
		h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, bc *domain.BuildContext) (ports.StageReport, error) {
				assert.NotNil(t, bc.Closure)
				return ports.StageReport{Copied: 3, Removed: 1}, nil
			}),
		h.assembler.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(h.bundleDir(), nil),
		h.packager.EXPECT().Package(gomock.Any(), gomock.Any(), ports.PackageOptions{Overwrite: true}).
			Return(domain.Outcome[ports.Release]{Value: release}, nil),
	)
	h.store.EXPECT().Put(domain.StorePath(h.opts.WorkDir), gomock.Any()).
		DoAndReturn(func(_ string, rec domain.BuildRecord) error {
			assert.Equal(t, "app", rec.Name)
			assert.Equal(t, h.manifest.Path(), rec.ManifestPath)
			assert.True(t, rec.Result.Success)
			assert.False(t, rec.Timestamp.IsZero())
			return nil
		})

	result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Modules)
	assert.Equal(t, 4, result.Changed)
	assert.Equal(t, h.bundleDir(), result.BundleDir)
	assert.Equal(t, release.Dir, result.ReleaseDir)
	assert.Equal(t, release.Archive, result.ArchivePath)
	assert.Equal(t, []domain.Warning{warning}, result.Warnings)
	assert.Empty(t, h.stderr.String())
	assert.DirExists(t, filepath.Join(h.opts.WorkDir, "app"))
}

func TestApp_Build_ManifestError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})

	h.loader.EXPECT().Load(h.manifest.Path(), ports.LoadOptions{}).
		Return(nil, domain.ErrEntryPointNotFound)

	result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrManifest)
	assert.ErrorIs(t, err, domain.ErrEntryPointNotFound)
	assert.Equal(t, 2, domain.ExitCode(err))
	assert.False(t, result.Success)
	assert.Equal(t, domain.StageManifest, result.FailedStage)
	assert.NoDirExists(t, h.opts.WorkDir)
	assert.NoDirExists(t, h.opts.DistDir)
}

func TestApp_Build_SpecDirIsPassedToLoader(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})
	h.opts.SpecDir = "/elsewhere"

	h.loader.EXPECT().Load(h.manifest.Path(), ports.LoadOptions{BaseDir: "/elsewhere"}).
		Return(nil, domain.ErrManifestNotFound)

	_, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.ErrorIs(t, err, domain.ErrManifestNotFound)
}

func TestApp_Build_StageFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(h *harness)
		stage domain.Stage
		kind  error
		code  int
	}{
		{
			name: "resolve",
			setup: func(h *harness) {
				h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(domain.Outcome[*domain.Closure]{},
					domain.NewBuildError(domain.StageResolve, domain.ErrResolution, domain.ErrModuleNotFound))
			},
			stage: domain.StageResolve,
			kind:  domain.ErrResolution,
			code:  4,
		},
		{
			name: "stage conflict",
			setup: func(h *harness) {
				h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
					Return(domain.Outcome[*domain.Closure]{Value: closure()}, nil)
				h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(ports.StageReport{},
					domain.NewBuildError(domain.StageStage, domain.ErrStagingConflict, errors.New("settings.json")))
			},
			stage: domain.StageStage,
			kind:  domain.ErrStagingConflict,
			code:  5,
		},
		{
			name: "assemble error without stage",
			setup: func(h *harness) {
				h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
					Return(domain.Outcome[*domain.Closure]{Value: closure()}, nil)
				h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(ports.StageReport{}, nil)
				h.assembler.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return("", errors.New("disk full"))
			},
			stage: domain.StageAssemble,
			kind:  domain.ErrAssembly,
			code:  6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, domain.ManifestSpec{})
			h.opts.NoConfirm = true
			h.expectPrepare()
			tt.setup(h)
			h.buildLog.EXPECT().Tail(domain.DefaultLogTail).Return([]string{"level=ERROR msg=boom"}, nil)
			h.store.EXPECT().Put(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ string, rec domain.BuildRecord) error {
					assert.False(t, rec.Result.Success)
					assert.Equal(t, tt.stage, rec.Result.FailedStage)
					return nil
				})

			result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.code, domain.ExitCode(err))
			assert.Equal(t, tt.stage, result.FailedStage)
			assert.Contains(t, h.stderr.String(), "level=ERROR msg=boom")
		})
	}
}

func TestApp_Build_HookFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{
		Hooks: []domain.HookCommand{{"false"}, {"never"}},
	})
	h.expectPrepare()

	h.executor.EXPECT().
		Execute(gomock.Any(), []string{"false"}, h.base, nil, gomock.Any(), gomock.Any()).
		Return(errors.New("exit status 1"))
	h.buildLog.EXPECT().Tail(gomock.Any()).Return(nil, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHookFailed)
	assert.Equal(t, 3, domain.ExitCode(err))
	assert.Equal(t, domain.StageHooks, result.FailedStage)
}

func TestApp_Build_Cancelled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(h.manifest, nil)
	h.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	h.buildLog.EXPECT().Tail(gomock.Any()).Return(nil, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	_, err := h.app.Build(ctx, h.manifest.Path(), h.opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, 130, domain.ExitCode(err))
	assert.NoDirExists(t, h.opts.WorkDir)
}

func TestApp_Build_KillFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})

	h.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(h.manifest, nil)
	h.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	h.killer.EXPECT().KillBundle(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, errors.New("access denied"))
	h.buildLog.EXPECT().Tail(gomock.Any()).Return(nil, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	_, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPrecondition)
	assert.Equal(t, 3, domain.ExitCode(err))
}

func TestApp_Build_CleanRemovesPreviousOutput(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})
	h.opts.Clean = true

	stale := filepath.Join(domain.StagePath(h.opts.WorkDir, "app"), "old.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o750))
	require.NoError(t, os.WriteFile(stale, nil, 0o600))
	require.NoError(t, os.MkdirAll(h.bundleDir(), 0o750))

	h.expectPrepare()
	h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(domain.Outcome[*domain.Closure]{}, domain.ErrModuleNotFound)
	h.buildLog.EXPECT().Tail(gomock.Any()).Return(nil, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	_, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.ErrorIs(t, err, domain.ErrResolution)
	assert.NoFileExists(t, stale)
	assert.NoDirExists(t, h.bundleDir())
}

func TestApp_Build_ReleaseOverwrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		noConfirm   bool
		exists      bool
		interactive bool
		answer      bool
		want        bool
	}{
		{name: "no confirm", noConfirm: true, want: true},
		{name: "fresh release", exists: false, want: false},
		{name: "non-interactive", exists: true, interactive: false, want: false},
		{name: "confirmed", exists: true, interactive: true, answer: true, want: true},
		{name: "declined", exists: true, interactive: true, answer: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, domain.ManifestSpec{})
			h.opts.NoConfirm = tt.noConfirm
			h.expectPrepare()

			h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
				Return(domain.Outcome[*domain.Closure]{Value: closure()}, nil)
			h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(ports.StageReport{}, nil)
			h.assembler.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(h.bundleDir(), nil)
			if !tt.noConfirm {
				h.packager.EXPECT().Exists(gomock.Any()).Return(tt.exists)
			}
			if tt.exists {
				h.prompter.EXPECT().Interactive().Return(tt.interactive)
			}
			if tt.interactive {
				h.prompter.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(tt.answer, nil)
			}
			h.packager.EXPECT().Package(gomock.Any(), gomock.Any(), ports.PackageOptions{Overwrite: tt.want}).
				Return(domain.Outcome[ports.Release]{}, nil)
			h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

			_, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
			require.NoError(t, err)
		})
	}
}

func TestApp_Build_PromptInterrupted(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})
	h.expectPrepare()

	h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(domain.Outcome[*domain.Closure]{Value: closure()}, nil)
	h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(ports.StageReport{}, nil)
	h.assembler.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(h.bundleDir(), nil)
	h.packager.EXPECT().Exists(gomock.Any()).Return(true)
	h.prompter.EXPECT().Interactive().Return(true)
	h.prompter.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, domain.ErrCancelled)
	h.buildLog.EXPECT().Tail(gomock.Any()).Return(nil, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil)

	result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.Error(t, err)
	assert.Equal(t, 130, domain.ExitCode(err))
	assert.Equal(t, domain.StagePackage, result.FailedStage)
}

func TestApp_Build_StoreFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})
	h.opts.NoConfirm = true

	h.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(h.manifest, nil)
	h.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, domain.ErrStoreUnmarshalFailed)
	h.killer.EXPECT().KillBundle(gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil)
	h.buildLog.EXPECT().Attach(gomock.Any()).Return(nil)
	h.buildLog.EXPECT().Detach().Return(nil)
	h.resolver.EXPECT().Resolve(gomock.Any(), gomock.Any()).
		Return(domain.Outcome[*domain.Closure]{Value: closure()}, nil)
	h.stager.EXPECT().Stage(gomock.Any(), gomock.Any()).Return(ports.StageReport{}, nil)
	h.assembler.EXPECT().Assemble(gomock.Any(), gomock.Any()).Return(h.bundleDir(), nil)
	h.packager.EXPECT().Package(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.Outcome[ports.Release]{}, nil)
	h.store.EXPECT().Put(gomock.Any(), gomock.Any()).Return(domain.ErrStoreWriteFailed)

	result, err := h.app.Build(context.Background(), h.manifest.Path(), h.opts)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestApp_Clean(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})

	work := filepath.Join(h.opts.WorkDir, "app")
	other := filepath.Join(h.opts.WorkDir, "other")
	for _, dir := range []string{work, other, h.bundleDir()} {
		require.NoError(t, os.MkdirAll(dir, 0o750))
	}

	h.loader.EXPECT().Load(h.manifest.Path(), ports.LoadOptions{}).Return(h.manifest, nil)
	h.killer.EXPECT().KillBundle(gomock.Any(), "app", h.bundleDir()).Return(0, nil)

	require.NoError(t, h.app.Clean(context.Background(), h.manifest.Path(), h.opts))
	assert.NoDirExists(t, work)
	assert.NoDirExists(t, h.bundleDir())
	assert.DirExists(t, other)
}

func TestApp_Clean_ManifestError(t *testing.T) {
	t.Parallel()
	h := newHarness(t, domain.ManifestSpec{})

	h.loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil, domain.ErrManifestParseFailed)

	err := h.app.Clean(context.Background(), h.manifest.Path(), h.opts)
	require.ErrorIs(t, err, domain.ErrManifest)
	assert.Equal(t, 2, domain.ExitCode(err))
}
