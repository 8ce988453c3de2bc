// Package shell runs pre-build hook commands.
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/creack/pty"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Executor implements ports.Executor. Commands run in a pseudo-terminal where the
// platform provides one, so tools keep their interactive formatting, and fall back
// to plain pipes otherwise.
type Executor struct {
	logger ports.Logger
	usePTY bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithoutPTY makes the executor always use pipes. Standard error is then kept separate.
func WithoutPTY() Option {
	return func(e *Executor) {
		e.usePTY = false
	}
}

// NewExecutor creates a new Executor that mirrors command output to logger.
func NewExecutor(logger ports.Logger, opts ...Option) *Executor {
	e := &Executor{logger: logger, usePTY: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs argv in dir and waits for it to exit. Output lines are written to the
// logger and to stdout and stderr.
func (e *Executor) Execute(
	ctx context.Context,
	argv []string,
	dir string,
	env []string,
	stdout, stderr io.Writer,
) error {
	if len(argv) == 0 {
		return nil
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	name := argv[0]
	cmdEnv := resolveEnvironment(os.Environ(), env)

	// Names containing a separator are resolved against dir by os/exec.
	executable := name
	if !strings.ContainsRune(name, filepath.Separator) && !strings.ContainsRune(name, '/') {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, argv[1:]...) //nolint:gosec // hook commands come from the manifest
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = cmdEnv

	outLog := &logWriter{log: e.logger.Info}
	errLog := &logWriter{log: e.logger.Warn}
	defer func() {
		_ = outLog.Close()
		_ = errLog.Close()
	}()

	var err error
	if e.usePTY {
		err = runPTY(cmd, io.MultiWriter(outLog, stdout))
		if errors.Is(err, errNoPTY) {
			cmd = rebuild(ctx, cmd)
			err = runPipes(cmd, io.MultiWriter(outLog, stdout), io.MultiWriter(errLog, stderr))
		}
	} else {
		err = runPipes(cmd, io.MultiWriter(outLog, stdout), io.MultiWriter(errLog, stderr))
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode), "command", strings.Join(argv, " "))
	}
	return nil
}

var errNoPTY = errors.New("pseudo-terminal unavailable")

func runPTY(cmd *exec.Cmd, out io.Writer) error {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		if cmd.Process == nil {
			return errors.Join(errNoPTY, err)
		}
		return err
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		// The pty merges stdout and stderr.
		_, _ = io.Copy(out, ptmx)
	}()

	err = cmd.Wait()
	<-ioDone
	_ = ptmx.Close()
	return err
}

func runPipes(cmd *exec.Cmd, stdout, stderr io.Writer) error {
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// rebuild returns a fresh copy of cmd, which cannot be started twice.
func rebuild(ctx context.Context, cmd *exec.Cmd) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args[1:]...) //nolint:gosec // same command as before
	c.Args = cmd.Args
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	return c
}

// logWriter splits written bytes into lines and passes each to log.
type logWriter struct {
	mu  sync.Mutex
	log func(string)
	buf []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

// Close flushes a trailing line without a newline.
func (w *logWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	// PTYs terminate lines with \r\n.
	w.log(strings.TrimSuffix(string(line), "\r"))
}

// resolveEnvironment overlays env on the inherited process environment.
func resolveEnvironment(sysEnv, env []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(env))
	var order []string
	apply := func(entries []string) {
		for _, entry := range entries {
			k, v, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			if _, seen := envMap[k]; !seen {
				order = append(order, k)
			}
			envMap[k] = v
		}
	}
	apply(sysEnv)
	apply(env)

	result := make([]string, 0, len(order))
	for _, k := range order {
		result = append(result, k+"="+envMap[k])
	}
	return result
}

// lookPath searches for an executable in the directories named by the PATH of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
