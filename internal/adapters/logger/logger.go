// Package logger implements a logging adapter using log/slog.
package logger

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Logger implements ports.Logger and ports.BuildLog using log/slog.
// Terminal output is pretty-printed or JSON. While a build log is attached,
// every record is also appended to it in slog's text format.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	level    *slog.LevelVar
	jsonMode bool
	output   io.Writer

	file     *os.File
	fileLog  *slog.Logger
	filePath string
}

// New creates a new Logger writing to stderr at info level.
func New() *Logger {
	l := &Logger{
		level:  &slog.LevelVar{},
		output: os.Stderr,
	}
	l.level.Set(slog.LevelInfo)
	l.rebuild()
	return l
}

// rebuild replaces the terminal handler. Callers must hold the write lock or own l exclusively.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}
	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// SetOutput updates the terminal destination. A nil writer selects stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches terminal output between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// SetVerbose enables debug records on the terminal.
func (l *Logger) SetVerbose(enable bool) {
	if enable {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(slog.LevelInfo)
}

// Debug logs a diagnostic message.
func (l *Logger) Debug(msg string) {
	l.log(slog.LevelDebug, msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.log(slog.LevelInfo, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.log(slog.LevelWarn, msg)
}

// Error logs an error together with its cause chain.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	formatted := formatErrorEntries(collectErrorEntries(err))
	if l.jsonMode {
		l.logger.Error("build failed", "error", err.Error())
	} else {
		l.logger.Error(formatted)
	}
	if l.fileLog != nil {
		l.fileLog.Error(formatted)
	}
}

func (l *Logger) log(level slog.Level, msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ctx := context.Background()
	l.logger.Log(ctx, level, msg)
	if l.fileLog != nil {
		l.fileLog.Log(ctx, level, msg)
	}
}

// Attach starts mirroring every record into the file at path.
// A previously attached file is closed first.
func (l *Logger) Attach(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.closeFile(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build log directory"), "path", path)
	}
	// #nosec G304 -- path is derived from the work directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open build log"), "path", path)
	}

	l.file = f
	l.filePath = path
	l.fileLog = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// Detach stops mirroring records and closes the build log.
// The path is remembered so Tail keeps working.
func (l *Logger) Detach() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeFile()
}

func (l *Logger) closeFile() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLog = nil
	if err != nil {
		return zerr.Wrap(err, "failed to close build log")
	}
	return nil
}

// Tail returns up to the last n lines of the current or most recent build log.
func (l *Logger) Tail(n int) ([]string, error) {
	l.mu.RLock()
	path := l.filePath
	l.mu.RUnlock()

	if path == "" || n <= 0 {
		return nil, nil
	}

	// #nosec G304 -- path was opened by Attach
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read build log"), "path", path)
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(ring) == n {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read build log"), "path", path)
	}
	return ring, nil
}
