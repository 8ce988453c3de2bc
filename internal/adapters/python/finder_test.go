package python_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/adapters/python"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("# "+f+"\n"), 0o600))
	}
}

func openIndex(t *testing.T, roots ...string) ports.ModuleIndex {
	t.Helper()
	ix, err := python.NewFinder(fs.NewWalker()).Open(roots)
	require.NoError(t, err)
	return ix
}

func TestIndex_Find(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"app/__init__.py",
		"app/models.py",
		"app/_speedups.cpython-312-x86_64-linux-gnu.so",
		"util.py",
		"ns/part/__init__.py",
	)
	ix := openIndex(t, root)

	tests := []struct {
		name      domain.ModuleName
		kind      domain.ModuleKind
		rel       string
		pkg       bool
		namespace bool
	}{
		{name: "app", kind: domain.KindSource, rel: "app/__init__.py", pkg: true},
		{name: "app.models", kind: domain.KindSource, rel: "app/models.py"},
		{name: "app._speedups", kind: domain.KindNative, rel: "app/_speedups.cpython-312-x86_64-linux-gnu.so"},
		{name: "util", kind: domain.KindSource, rel: "util.py"},
		{name: "ns", kind: domain.KindSource, rel: "ns", pkg: true, namespace: true},
		{name: "ns.part", kind: domain.KindSource, rel: "ns/part/__init__.py", pkg: true},
	}

	for _, tt := range tests {
		t.Run(tt.name.String(), func(t *testing.T) {
			t.Parallel()
			rec, err := ix.Find(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, rec.Name)
			assert.Equal(t, tt.kind, rec.Kind)
			assert.Equal(t, tt.rel, rec.RelPath)
			assert.Equal(t, tt.pkg, rec.Package)
			assert.Equal(t, tt.namespace, rec.Namespace)
		})
	}
}

func TestIndex_Find_NotFound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, "util.py")
	ix := openIndex(t, root)

	for _, name := range []domain.ModuleName{"missing", "util.sub", "missing.child"} {
		_, err := ix.Find(name)
		require.Error(t, err, name)
		assert.ErrorContains(t, err, domain.ErrModuleNotFound.Error())
	}
}

func TestIndex_Find_EarlierRootShadows(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeTree(t, first, "shared.py")
	writeTree(t, second, "shared/__init__.py", "other.py")
	ix := openIndex(t, first, second)

	rec, err := ix.Find("shared")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(first, "shared.py"), rec.Path)
	assert.False(t, rec.Package)

	rec, err = ix.Find("other")
	require.NoError(t, err)
	assert.Equal(t, second, rec.Root)
}

func TestIndex_Find_NamespaceYieldsToRegularPackage(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeTree(t, first, "pkg/data.txt")
	writeTree(t, second, "pkg/__init__.py")
	ix := openIndex(t, first, second)

	rec, err := ix.Find("pkg")
	require.NoError(t, err)
	assert.False(t, rec.Namespace)
	assert.Equal(t, second, rec.Root)
}

func TestIndex_Submodules(t *testing.T) {
	t.Parallel()

	first, second := t.TempDir(), t.TempDir()
	writeTree(t, first,
		"ns/a.py",
		"ns/sub/__init__.py",
		"ns/sub/deep.py",
		"ns/sub/__pycache__/deep.cpython-312.pyc",
		"ns/not-a-module/x.py",
		"ns/readme.txt",
	)
	writeTree(t, second, "ns/a.py", "ns/b.py")
	ix := openIndex(t, first, second)

	mods, err := ix.Submodules("ns")
	require.NoError(t, err)

	var names []domain.ModuleName
	for _, m := range mods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []domain.ModuleName{"ns.a", "ns.b", "ns.sub", "ns.sub.deep"}, names)
	assert.Equal(t, first, mods[0].Root)
	assert.True(t, mods[2].Package)
}

func TestIndex_Metadata(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"My_Dist-1.2.0.dist-info/METADATA",
		"My_Dist-1.2.0.dist-info/RECORD",
		"my_dist/__init__.py",
		"yaml/__init__.py",
		"PyYAML-6.0.dist-info/METADATA",
	)
	require.NoError(t, os.WriteFile(filepath.Join(root, "PyYAML-6.0.dist-info", "top_level.txt"), []byte("_yaml\nyaml\n"), 0o600))
	ix := openIndex(t, root)

	files, ok := ix.Metadata("my-dist")
	require.True(t, ok)
	assert.Len(t, files, 2)
	for _, f := range files {
		assert.Equal(t, domain.KindMetadata, f.Kind)
		assert.Contains(t, f.RelPath, "My_Dist-1.2.0.dist-info/")
	}

	files, ok = ix.Metadata("yaml")
	require.True(t, ok)
	assert.Len(t, files, 2)

	_, ok = ix.Metadata("absent")
	assert.False(t, ok)
}

func TestIndex_Natives(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"numpy/__init__.py",
		"numpy/core/_multiarray.cpython-312-x86_64-linux-gnu.so",
		"numpy/core/_multiarray.debug",
		"numpy.libs/libopenblas.so.0",
		"numpy/core/data.csv",
	)
	ix := openIndex(t, root)

	pkg, err := ix.Find("numpy")
	require.NoError(t, err)

	natives, err := ix.Natives(pkg, false)
	require.NoError(t, err)
	owners := map[string]domain.ModuleName{}
	for _, n := range natives {
		assert.Equal(t, domain.KindNative, n.Kind)
		owners[n.RelPath] = n.Name
	}
	assert.Equal(t, map[string]domain.ModuleName{
		"numpy/core/_multiarray.cpython-312-x86_64-linux-gnu.so": "numpy.core._multiarray",
		"numpy.libs/libopenblas.so.0":                            "numpy",
	}, owners)

	withDebug, err := ix.Natives(pkg, true)
	require.NoError(t, err)
	require.Len(t, withDebug, 3)
	for _, n := range withDebug {
		if n.RelPath == "numpy/core/_multiarray.debug" {
			assert.Equal(t, domain.ModuleName("numpy.core._multiarray"), n.Name)
		}
	}
}

func TestIndex_PackageData(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root,
		"app/__init__.py",
		"app/templates/index.html",
		"app/native.so",
		"app/__pycache__/x.pyc",
	)
	ix := openIndex(t, root)

	pkg, err := ix.Find("app")
	require.NoError(t, err)

	data, err := ix.PackageData(pkg)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, "app/templates/index.html", data[0].RelPath)
	assert.Equal(t, domain.KindData, data[0].Kind)
	assert.Equal(t, domain.ModuleName("app.templates"), data[0].Name)

	mod, err := openIndex(t, root).Find("app")
	require.NoError(t, err)
	mod.Package = false
	none, err := ix.PackageData(mod)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIsStdlib(t *testing.T) {
	t.Parallel()

	assert.True(t, python.IsStdlib("os"))
	assert.True(t, python.IsStdlib("os.path"))
	assert.True(t, python.IsStdlib("__future__"))
	assert.True(t, python.IsStdlib("xml.etree.ElementTree"))
	assert.False(t, python.IsStdlib("numpy"))
	assert.False(t, python.IsStdlib("app"))
}
