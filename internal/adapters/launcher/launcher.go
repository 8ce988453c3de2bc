// Package launcher renders the scripts that start a bundled application.
package launcher

import (
	"bytes"
	"embed"
	"maps"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
	envName   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ErrInvalidEnvName is returned when a launcher environment variable name cannot be exported.
var ErrInvalidEnvName = zerr.New("invalid environment variable name")

type dialect struct {
	template string
	suffix   string
	cmd      bool
	quote    func(string) string
	escape   func(string) string
	dir      func(rel string) string
	sep      string
	newline  string
}

var posix = dialect{
	template: "launcher.sh.tmpl",
	quote:    shellQuote,
	escape:   shellQuote,
	dir:      func(rel string) string { return `"$here"/` + shellQuote(rel) },
	sep:      ":",
	newline:  "\n",
}

var windows = dialect{
	template: "launcher.cmd.tmpl",
	suffix:   ".cmd",
	cmd:      true,
	quote:    cmdQuote,
	escape:   cmdEscape,
	dir:      func(rel string) string { return "%~dp0" + cmdEscape(strings.ReplaceAll(rel, "/", `\`)) },
	sep:      ";",
	newline:  "\r\n",
}

func dialectFor(platform string) (dialect, bool) {
	switch platform {
	case "linux", "darwin", "freebsd", "netbsd", "openbsd":
		return posix, true
	case "windows":
		return windows, true
	default:
		return dialect{}, false
	}
}

type envVar struct {
	Key   string
	Value string
}

type view struct {
	Name        string
	PythonPath  string
	Env         []envVar
	Debug       bool
	Windowed    bool
	Interpreter string
	Entry       string
	Args        []string
}

// Writer implements ports.LauncherWriter.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the launcher for spec into dir. The POSIX launcher is named after the
// bundle and is executable; the Windows launcher carries a ".cmd" suffix.
func (w *Writer) Write(dir string, spec ports.LaunchSpec) (string, error) {
	d, ok := dialectFor(spec.Flags.Platform)
	if !ok {
		return "", zerr.With(domain.ErrUnsupportedPlatform, "platform", spec.Flags.Platform)
	}

	content, err := render(d, spec)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, spec.Name+d.suffix)
	if err := os.WriteFile(dst, content, domain.ExecPerm); err != nil { //nolint:gosec // launchers must be executable
		return "", zerr.With(zerr.Wrap(err, "failed to write launcher"), "path", dst)
	}
	if err := os.Chmod(dst, domain.ExecPerm); err != nil { //nolint:gosec // launchers must be executable
		return "", zerr.With(zerr.Wrap(err, "failed to write launcher"), "path", dst)
	}
	return dst, nil
}

func render(d dialect, spec ports.LaunchSpec) ([]byte, error) {
	interp := spec.Flags.Interpreter
	if interp == "" {
		interp = domain.DefaultInterpreter
	}
	if spec.Flags.Windowed && d.cmd {
		interp = windowedInterpreter(interp)
	}

	v := view{
		Name:        spec.Name,
		Debug:       spec.Flags.Debug,
		Windowed:    spec.Flags.Windowed,
		Interpreter: d.escape(interp),
		Entry:       d.dir(spec.Entry),
	}

	roots := make([]string, len(spec.PythonPath))
	for i, rel := range spec.PythonPath {
		roots[i] = d.dir(rel)
	}
	v.PythonPath = strings.Join(roots, d.sep)

	for _, key := range slices.Sorted(maps.Keys(spec.Env)) {
		if !envName.MatchString(key) {
			return nil, zerr.With(ErrInvalidEnvName, "name", key)
		}
		v.Env = append(v.Env, envVar{Key: key, Value: d.escape(spec.Env[key])})
	}
	for _, arg := range spec.Args {
		v.Args = append(v.Args, d.quote(arg))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, d.template, v); err != nil {
		return nil, zerr.Wrap(err, "failed to render launcher")
	}
	out := buf.String()
	if d.newline != "\n" {
		out = strings.ReplaceAll(out, "\n", d.newline)
	}
	return []byte(out), nil
}

// windowedInterpreter returns the console-less variant of a Windows interpreter command.
func windowedInterpreter(interp string) string {
	dir, file := path.Split(filepath.ToSlash(interp))
	file = strings.TrimSuffix(file, ".exe")
	switch {
	case file == "python" || file == "python3":
		file = "pythonw"
	case !strings.HasSuffix(file, "w"):
		file += "w"
	}
	return filepath.FromSlash(dir + file)
}

// shellQuote quotes s for a POSIX shell.
func shellQuote(s string) string {
	if s != "" && strings.Trim(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-./=:,+@%") == "" {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// cmdEscape escapes s for use inside a double-quoted cmd.exe string.
func cmdEscape(s string) string {
	return strings.NewReplacer("%", "%%", `"`, `""`).Replace(s)
}

func cmdQuote(s string) string {
	return `"` + cmdEscape(s) + `"`
}
