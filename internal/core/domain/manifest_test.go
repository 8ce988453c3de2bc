package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestBuildManifest_IsImmutable(t *testing.T) {
	spec := domain.ManifestSpec{
		Name:          "app",
		Datas:         []domain.DataMapping{{Source: "/src/config", Dest: "config"}},
		HiddenImports: []domain.ModuleName{"mod.x"},
		Env:           map[string]string{"A": "1"},
		Hooks:         []domain.HookCommand{{"pip", "install"}},
	}
	m := domain.NewBuildManifest(spec)

	// Mutating the spec after construction must not leak into the manifest.
	spec.Datas[0].Dest = "changed"
	spec.Env["A"] = "2"
	spec.Hooks[0][0] = "rm"

	// Mutating returned slices must not leak either.
	datas := m.Datas()
	datas[0].Dest = "changed"
	m.Env()["B"] = "3"

	assert.Equal(t, "config", m.Datas()[0].Dest)
	assert.Equal(t, map[string]string{"A": "1"}, m.Env())
	assert.Equal(t, domain.HookCommand{"pip", "install"}, m.Hooks()[0])
	assert.Equal(t, []domain.ModuleName{"mod.x"}, m.HiddenImports())
}

func TestParseArchiveFormat(t *testing.T) {
	tests := []struct {
		input string
		want  domain.ArchiveFormat
	}{
		{"", domain.FormatZip},
		{"ZIP", domain.FormatZip},
		{"tar.gz", domain.FormatTarGz},
		{"tgz", domain.FormatTarGz},
		{".tar.xz", domain.FormatTarXz},
		{"tar.zst", domain.FormatTarZst},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := domain.ParseArchiveFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := domain.ParseArchiveFormat("rar")
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrInvalidArchiveFormat.Error())
}
