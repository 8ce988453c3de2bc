package stager_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/stager"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

var _ ports.Stager = (*stager.Stager)(nil)

type fixture struct {
	src  string
	site string
	work string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{src: t.TempDir(), site: t.TempDir(), work: t.TempDir()}
	write(t, f.src, map[string]string{
		"main.py":          "import pure, fast\n",
		"pure/__init__.py": "",
		"pure/core.py":     "X = 1\n",
		"config/app.toml":  "debug = false\n",
		"config/.git/HEAD": "ref\n",
		"logo.png":         "PNG",
	})
	write(t, f.site, map[string]string{
		"fast/__init__.py":            "",
		"fast/_ext.so":                "ELF",
		"fast-1.0.dist-info/METADATA": "Name: fast\n",
	})
	return f
}

func write(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
}

func record(name domain.ModuleName, kind domain.ModuleKind, root, rel string, pkg bool) domain.ModuleRecord {
	return domain.ModuleRecord{
		Name:    name,
		Kind:    kind,
		Path:    filepath.Join(root, filepath.FromSlash(rel)),
		Root:    root,
		RelPath: rel,
		Package: pkg,
	}
}

func (f fixture) context(datas ...domain.DataMapping) *domain.BuildContext {
	m := domain.NewBuildManifest(domain.ManifestSpec{
		Name:  "app",
		Entry: filepath.Join(f.src, "main.py"),
		Datas: datas,
	})
	bc := domain.NewBuildContext(m, domain.BuildOptions{WorkDir: f.work})
	bc.Closure = &domain.Closure{
		Entry: domain.ModuleRecord{Name: "__main__", Kind: domain.KindSource, Path: filepath.Join(f.src, "main.py"), Root: f.src, RelPath: "main.py"},
		Modules: []domain.ModuleRecord{
			record("fast", domain.KindSource, f.site, "fast/__init__.py", true),
			record("pure", domain.KindSource, f.src, "pure/__init__.py", true),
			record("pure.core", domain.KindSource, f.src, "pure/core.py", false),
		},
		Companions: []domain.ModuleRecord{
			record("fast", domain.KindMetadata, f.site, "fast-1.0.dist-info/METADATA", false),
			record("fast", domain.KindNative, f.site, "fast/_ext.so", false),
		},
	}
	return bc
}

func newStager(t *testing.T) *stager.Stager {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return stager.New(fs.NewWalker(), fs.NewHasher(), fs.NewCopier(fs.NewWalker()), log)
}

func tree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	for p, err := range fs.NewWalker().WalkFiles(root, nil) {
		require.NoError(t, err)
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		data, err := os.ReadFile(p) //nolint:gosec // test fixture
		require.NoError(t, err)
		out[filepath.ToSlash(rel)] = string(data)
	}
	return out
}

func TestStager_Layout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	bc := f.context(
		domain.DataMapping{Source: filepath.Join(f.src, "config"), Dest: "config"},
		domain.DataMapping{Source: filepath.Join(f.src, "logo.png"), Dest: "assets"},
	)
	report, err := newStager(t).Stage(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"_internal/main.py":                         "import pure, fast\n",
		"_internal/pyz/pure/__init__.py":            "",
		"_internal/pyz/pure/core.py":                "X = 1\n",
		"_internal/lib/fast/__init__.py":            "",
		"_internal/lib/fast/_ext.so":                "ELF",
		"_internal/lib/fast-1.0.dist-info/METADATA": "Name: fast\n",
		"_internal/config/app.toml":                 "debug = false\n",
		"_internal/assets/logo.png":                 "PNG",
	}, tree(t, bc.StageDir()))

	assert.Equal(t, 8, report.Copied)
	assert.Equal(t, 0, report.Unchanged)
	assert.Equal(t, 8, bc.Staged.Len())
}

func TestStager_Idempotent(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	mapping := domain.DataMapping{Source: filepath.Join(f.src, "config"), Dest: "config"}
	s := newStager(t)

	first := f.context(mapping)
	_, err := s.Stage(context.Background(), first)
	require.NoError(t, err)
	before := tree(t, first.StageDir())

	second := f.context(mapping)
	report, err := s.Stage(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Changed())
	assert.Equal(t, len(before), report.Unchanged)
	assert.Equal(t, before, tree(t, second.StageDir()))
}

func TestStager_UpdatesChangedAndRemovesStale(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	s := newStager(t)

	_, err := s.Stage(context.Background(), f.context(
		domain.DataMapping{Source: filepath.Join(f.src, "config"), Dest: "config"},
	))
	require.NoError(t, err)

	write(t, f.src, map[string]string{"pure/core.py": "X = 2\n"})
	bc := f.context()
	report, err := s.Stage(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Copied)
	assert.Equal(t, 1, report.Removed)
	got := tree(t, bc.StageDir())
	assert.Equal(t, "X = 2\n", got["_internal/pyz/pure/core.py"])
	assert.NotContains(t, got, "_internal/config/app.toml")
	assert.NoDirExists(t, filepath.Join(bc.StageDir(), "_internal", "config"))
}

func TestStager_Conflict(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	write(t, f.src, map[string]string{
		"a/settings.json": `{"a": 1}`,
		"b/settings.json": `{"b": 2}`,
		"c/settings.json": `{"a": 1}`,
	})

	t.Run("different content", func(t *testing.T) {
		bc := f.context(
			domain.DataMapping{Source: filepath.Join(f.src, "a"), Dest: "conf"},
			domain.DataMapping{Source: filepath.Join(f.src, "b"), Dest: "conf"},
		)
		_, err := newStager(t).Stage(context.Background(), bc)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrStagingConflict)

		be, ok := domain.AsBuildError(err)
		require.True(t, ok)
		var zerrErr *zerr.Error
		require.ErrorAs(t, be.Cause(), &zerrErr)
		assert.Equal(t, "_internal/conf/settings.json", zerrErr.Metadata()["destination"])
		assert.Equal(t, domain.StageStage.ExitCode(), domain.ExitCode(err))
	})

	t.Run("identical content", func(t *testing.T) {
		bc := f.context(
			domain.DataMapping{Source: filepath.Join(f.src, "a"), Dest: "conf"},
			domain.DataMapping{Source: filepath.Join(f.src, "c"), Dest: "conf"},
		)
		_, err := newStager(t).Stage(context.Background(), bc)
		require.NoError(t, err)
	})
}

func TestStager_RequiresClosure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	bc := f.context()
	bc.Closure = nil

	_, err := newStager(t).Stage(context.Background(), bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStaging)
}

func TestStager_CopyFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctrl := gomock.NewController(t)
	copier := mocks.NewMockCopier(ctrl)
	copier.EXPECT().CopyFile(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full")).MinTimes(1)
	log := mocks.NewMockLogger(ctrl)

	s := stager.New(fs.NewWalker(), fs.NewHasher(), copier, log)
	_, err := s.Stage(context.Background(), f.context())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStaging)
	assert.ErrorContains(t, err, "disk full")
}

func TestStager_Cancelled(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newStager(t).Stage(ctx, f.context())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}
