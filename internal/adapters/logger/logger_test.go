package logger_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger writing to a buffer without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_ImplementsPorts(_ *testing.T) {
	var _ ports.Logger = (*logger.Logger)(nil)
	var _ ports.BuildLog = (*logger.Logger)(nil)
}

func TestLogger_Levels(t *testing.T) {
	t.Run("info", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Info("resolving closure of app_main.py")
		goldie.New(t).Assert(t, "info_basic", buf.Bytes())
	})

	t.Run("warn", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Warn("2 warnings")
		goldie.New(t).Assert(t, "warn_basic", buf.Bytes())
	})

	t.Run("debug hidden by default", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Debug("scanning pkg/__init__.py")
		assert.Empty(t, buf.String())
	})

	t.Run("debug when verbose", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.SetVerbose(true)
		lg.Debug("scanning pkg/__init__.py")
		goldie.New(t).Assert(t, "debug_verbose", buf.Bytes())
	})
}

func TestLogger_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name: "build error with metadata cause",
			err: domain.NewBuildError(domain.StageResolve, domain.ErrResolution,
				zerr.With(domain.ErrModuleNotFound, "module", "mod.x")),
			goldenName: "error_build_chain",
		},
		{
			name: "zerr chain over stdlib error",
			err: zerr.With(zerr.Wrap(errors.New("open kiln.yaml: permission denied"),
				"failed to read manifest"), "path", "kiln.yaml"),
			goldenName: "error_zerr_chain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lg, buf := newTestLogger(t)
			lg.Error(tt.err)
			goldie.New(t).Assert(t, tt.goldenName, buf.Bytes())
		})
	}
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("staging 12 files")
	lg.Error(zerr.With(zerr.Wrap(errors.New("disk full"), "failed to copy file"), "dest", "lib/a.so"))

	out := buf.String()
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"msg":"staging 12 files"`)
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "failed to copy file")
	assert.NotContains(t, out, "✗")

	buf.Reset()
	lg.SetJSON(false)
	lg.Error(errors.New("back to pretty"))
	assert.Equal(t, "✗ Error: back to pretty\n", buf.String())
}

func TestLogger_AttachAndTail(t *testing.T) {
	lg, buf := newTestLogger(t)
	path := filepath.Join(t.TempDir(), "build", "inventory", "build.log")

	lg.Info("before attach")
	require.NoError(t, lg.Attach(path))
	for i := range 30 {
		lg.Info(fmt.Sprintf("line %02d", i))
	}
	lg.Debug("debug goes to the file only")
	lg.Error(errors.New("stage failed"))
	require.NoError(t, lg.Detach())
	lg.Info("after detach")

	assert.NotContains(t, buf.String(), "debug goes to the file only")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before attach")
	assert.NotContains(t, string(data), "after detach")
	assert.Contains(t, string(data), "debug goes to the file only")

	tail, err := lg.Tail(domain.DefaultLogTail)
	require.NoError(t, err)
	require.Len(t, tail, domain.DefaultLogTail)
	assert.Contains(t, tail[0], "line 12")
	assert.Contains(t, tail[len(tail)-1], "stage failed")
}

func TestLogger_Tail_WithoutAttach(t *testing.T) {
	lg, _ := newTestLogger(t)
	tail, err := lg.Tail(10)
	require.NoError(t, err)
	assert.Empty(t, tail)
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)
	require.NoError(t, lg.Attach(filepath.Join(t.TempDir(), "build.log")))
	defer func() { _ = lg.Detach() }()

	done := make(chan bool, 5)
	go func() { lg.Info("concurrent info"); done <- true }()
	go func() { lg.Warn("concurrent warn"); done <- true }()
	go func() { lg.Error(errors.New("concurrent error")); done <- true }()
	go func() { lg.SetJSON(true); done <- true }()
	go func() { lg.SetOutput(&bytes.Buffer{}); done <- true }()

	for range 5 {
		<-done
	}
}
