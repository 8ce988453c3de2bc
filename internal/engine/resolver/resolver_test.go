package resolver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/python"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

var _ ports.ClosureResolver = (*resolver.Resolver)(nil)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
}

func newResolver(t *testing.T) *resolver.Resolver {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	return resolver.New(python.NewFinder(fs.NewWalker()), python.NewScanner(), log)
}

func buildContext(spec domain.ManifestSpec) *domain.BuildContext {
	if spec.Name == "" {
		spec.Name = "app"
	}
	return domain.NewBuildContext(domain.NewBuildManifest(spec), domain.BuildOptions{})
}

func names(recs []domain.ModuleRecord) []domain.ModuleName {
	out := make([]domain.ModuleName, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func codes(ws []domain.Warning) []domain.WarningCode {
	out := make([]domain.WarningCode, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

func TestResolver_FollowsImports(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py": "import os, sys\n" +
			"import app\n" +
			"from app import models, VERSION\n" +
			"import missing_thing\n" +
			"from . import nothing\n",
		"app/__init__.py": "from .util import helper\nVERSION = '1'\n",
		"app/models.py":   "from app.util import helper\n",
		"app/util.py":     "import json\n",
		"app/unused.py":   "",
	})

	bc := buildContext(domain.ManifestSpec{Entry: filepath.Join(src, "main.py")})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	closure := out.Value
	assert.Equal(t, []domain.ModuleName{"app", "app.models", "app.util"}, names(closure.Modules))
	assert.Equal(t, resolver.EntryModule, closure.Entry.Name)
	assert.Equal(t, "main.py", closure.Entry.RelPath)
	assert.ElementsMatch(t, []domain.ModuleName{"app", "app.models"}, closure.Graph.Imports(resolver.EntryModule))

	require.Len(t, out.Warnings, 1)
	assert.Equal(t, domain.WarnMissingModule, out.Warnings[0].Code)
	assert.Equal(t, "missing_thing", out.Warnings[0].Subject)
}

func TestResolver_IncludesParentPackages(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py":         "import a.b.c\n",
		"a/__init__.py":   "import shared\n",
		"a/b/__init__.py": "",
		"a/b/c.py":        "",
		"shared.py":       "",
	})

	bc := buildContext(domain.ManifestSpec{Entry: filepath.Join(src, "main.py")})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, []domain.ModuleName{"a", "a.b", "a.b.c", "shared"}, names(out.Value.Modules))
	assert.Empty(t, out.Warnings)
}

func TestResolver_DeclaredModules(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py":              "print('hi')\n",
		"mod/__init__.py":      "",
		"mod/x.py":             "import mod.y\n",
		"mod/y.py":             "",
		"plug/__init__.py":     "",
		"plug/a.py":            "",
		"plug/sub/__init__.py": "",
		"plug/sub/b.py":        "",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:         filepath.Join(src, "main.py"),
		HiddenImports: []domain.ModuleName{"mod.x"},
		Collect:       []domain.ModuleName{"plug"},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, []domain.ModuleName{
		"mod", "mod.x", "mod.y",
		"plug", "plug.a", "plug.sub", "plug.sub.b",
	}, names(out.Value.Modules))
}

func TestResolver_ExclusionWins(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py":         "import big\nimport small\n",
		"big/__init__.py": "import deep\n",
		"deep.py":         "",
		"small.py":        "",
		"mod/__init__.py": "",
		"mod/x.py":        "",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:         filepath.Join(src, "main.py"),
		HiddenImports: []domain.ModuleName{"mod.x"},
		Excludes:      []domain.ModuleName{"mod.x", "big"},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	got := make(domain.ModuleSet)
	for _, rec := range out.Value.Modules {
		got.Add(rec.Name)
	}
	assert.Equal(t, []domain.ModuleName{"small"}, got.Sorted())
	for _, excluded := range bc.Manifest.Excludes() {
		assert.False(t, got.Has(excluded), "excluded module %s in closure", excluded)
	}

	require.Len(t, out.Warnings, 1)
	assert.Equal(t, domain.WarnExcludedDeclared, out.Warnings[0].Code)
	assert.Equal(t, "mod.x", out.Warnings[0].Subject)
}

func TestResolver_DeclaredModuleMissing(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{"main.py": ""})

	bc := buildContext(domain.ManifestSpec{
		Entry:         filepath.Join(src, "main.py"),
		HiddenImports: []domain.ModuleName{"nowhere"},
	})
	_, err := newResolver(t).Resolve(context.Background(), bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.ErrorContains(t, err, domain.ErrModuleNotFound.Error())
	assert.Equal(t, domain.StageResolve.ExitCode(), domain.ExitCode(err))
}

func TestResolver_DeclaredStdlibModules(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py":         "",
		"mod/__init__.py": "",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:         filepath.Join(src, "main.py"),
		HiddenImports: []domain.ModuleName{"json", "email.mime.text", "mod"},
		Collect:       []domain.ModuleName{"xml"},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, []domain.ModuleName{"mod"}, names(out.Value.Modules))
	assert.Equal(t, []domain.ModuleName{"mod"}, out.Value.Graph.Imports(resolver.EntryModule))
	assert.Empty(t, out.Warnings)
}

func TestResolver_ExcludedCompanions(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	site := t.TempDir()
	writeFiles(t, src, map[string]string{"main.py": ""})
	writeFiles(t, site, map[string]string{
		"fastpkg/__init__.py":                              "",
		"fastpkg/speedups.cpython-312-x86_64-linux-gnu.so": "ELF",
		"fastpkg/_core.so":                                 "ELF",
		"fastpkg/tests/__init__.py":                        "",
		"fastpkg/tests/fixture.json":                       "{}",
		"fastpkg/data/table.json":                          "{}",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:         filepath.Join(src, "main.py"),
		SearchPaths:   []string{site},
		HiddenImports: []domain.ModuleName{"fastpkg"},
		Excludes:      []domain.ModuleName{"fastpkg.speedups", "fastpkg.tests"},
		CollectData:   []domain.ModuleName{"fastpkg"},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	var rels []string
	for _, c := range out.Value.Companions {
		rels = append(rels, c.RelPath)
		assert.False(t, bc.Manifest.ExcludeSet().Covers(c.Name), "excluded companion %s", c.RelPath)
	}
	assert.Equal(t, []string{"fastpkg/_core.so", "fastpkg/data/table.json"}, rels)
	assert.Equal(t, []domain.ModuleName{"fastpkg"}, names(out.Value.Modules))
	assert.Empty(t, out.Warnings)
}

func TestResolver_EntryUnreadable(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	bc := buildContext(domain.ManifestSpec{Entry: filepath.Join(src, "gone.py")})
	_, err := newResolver(t).Resolve(context.Background(), bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestResolver_Companions(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	site := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py": "import fastlib\nimport plain\n",
	})
	writeFiles(t, site, map[string]string{
		"fastlib/__init__.py":                           "from . import _core\n",
		"fastlib/_core.cpython-312-x86_64-linux-gnu.so": "ELF",
		"fastlib/_core.debug":                           "DWARF",
		"fastlib/data/table.json":                       "{}",
		"fastlib.libs/libgfortran.so.5":                 "ELF",
		"fastlib-2.1.dist-info/METADATA":                "Name: fastlib\n",
		"fastlib-2.1.dist-info/top_level.txt":           "fastlib\n",
		"plain.py":                                      "",
		"other-1.0.dist-info/METADATA":                  "Name: other\n",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:       filepath.Join(src, "main.py"),
		SearchPaths: []string{site},
		CollectData: []domain.ModuleName{"fastlib", "absent"},
		Metadata:    []string{"other", "unknown"},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, []domain.ModuleName{"fastlib", "fastlib._core", "plain"}, names(out.Value.Modules))

	var rels []string
	kinds := map[string]domain.ModuleKind{}
	for _, c := range out.Value.Companions {
		rels = append(rels, c.RelPath)
		kinds[c.RelPath] = c.Kind
	}
	assert.Equal(t, []string{
		"fastlib-2.1.dist-info/METADATA",
		"fastlib-2.1.dist-info/top_level.txt",
		"fastlib.libs/libgfortran.so.5",
		"fastlib/_core.cpython-312-x86_64-linux-gnu.so",
		"fastlib/data/table.json",
		"other-1.0.dist-info/METADATA",
	}, rels)
	assert.Equal(t, domain.KindNative, kinds["fastlib.libs/libgfortran.so.5"])
	assert.Equal(t, domain.KindData, kinds["fastlib/data/table.json"])
	assert.Equal(t, domain.KindMetadata, kinds["other-1.0.dist-info/METADATA"])

	assert.ElementsMatch(t,
		[]domain.WarningCode{domain.WarnMissingData, domain.WarnMissingMetadata},
		codes(out.Warnings))
}

func TestResolver_DebugKeepsSymbols(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py":             "import fastlib\n",
		"fastlib/__init__.py": "",
		"fastlib/_core.so":    "ELF",
		"fastlib/_core.debug": "DWARF",
	})

	bc := buildContext(domain.ManifestSpec{
		Entry:    filepath.Join(src, "main.py"),
		Launcher: domain.LauncherFlags{Debug: true},
	})
	out, err := newResolver(t).Resolve(context.Background(), bc)
	require.NoError(t, err)

	var rels []string
	for _, c := range out.Value.Companions {
		rels = append(rels, c.RelPath)
	}
	assert.Equal(t, []string{"fastlib/_core.debug", "fastlib/_core.so"}, rels)
}

func TestResolver_ScanFailureIsWarning(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	finder := mocks.NewMockModuleFinder(ctrl)
	index := mocks.NewMockModuleIndex(ctrl)
	scanner := mocks.NewMockImportScanner(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	lib := domain.ModuleRecord{Name: "lib", Kind: domain.KindSource, Path: "/src/lib.py", Root: "/src", RelPath: "lib.py"}

	finder.EXPECT().Open([]string{"/src"}).Return(index, nil)
	scanner.EXPECT().Scan("/src/main.py").Return([]domain.Import{{Module: "lib"}}, nil)
	index.EXPECT().Find(domain.ModuleName("lib")).Return(lib, nil)
	scanner.EXPECT().Scan("/src/lib.py").Return(nil, errors.New("permission denied"))

	bc := buildContext(domain.ManifestSpec{Entry: "/src/main.py"})
	out, err := resolver.New(finder, scanner, log).Resolve(context.Background(), bc)
	require.NoError(t, err)

	assert.Equal(t, []domain.ModuleName{"lib"}, names(out.Value.Modules))
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, domain.WarnScanFailed, out.Warnings[0].Code)
}

func TestResolver_OpenFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	finder := mocks.NewMockModuleFinder(ctrl)
	finder.EXPECT().Open(gomock.Any()).Return(nil, errors.New("boom"))

	bc := buildContext(domain.ManifestSpec{Entry: "/src/main.py"})
	_, err := resolver.New(finder, mocks.NewMockImportScanner(ctrl), mocks.NewMockLogger(ctrl)).
		Resolve(context.Background(), bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrResolution)
}

func TestResolver_Cancelled(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	writeFiles(t, src, map[string]string{
		"main.py": "import a\n",
		"a.py":    "",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bc := buildContext(domain.ManifestSpec{Entry: filepath.Join(src, "main.py")})
	_, err := newResolver(t).Resolve(ctx, bc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
}
