// Package process finds and terminates running instances of a bundle.
package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// Process is a running process as seen by a Lister.
type Process struct {
	PID  int
	Name string
	Args []string
}

// Lister enumerates running processes.
type Lister func(ctx context.Context) ([]Process, error)

// Killer implements ports.ProcessKiller.
type Killer struct {
	list Lister
	kill func(pid int) error
	self map[int]bool
}

// NewKiller creates a Killer for the current platform.
func NewKiller() *Killer {
	return NewKillerWith(PlatformLister(runtime.GOOS), killPID)
}

// NewKillerWith creates a Killer with a custom process source and kill function.
func NewKillerWith(list Lister, kill func(pid int) error) *Killer {
	return &Killer{
		list: list,
		kill: kill,
		self: map[int]bool{os.Getpid(): true, os.Getppid(): true},
	}
}

// KillBundle terminates every process that runs the bundle named name from dir.
func (k *Killer) KillBundle(ctx context.Context, name, dir string) (int, error) {
	procs, err := k.list(ctx)
	if err != nil {
		return 0, zerr.Wrap(err, "failed to list processes")
	}

	absDir := ""
	if dir != "" {
		if absDir, err = filepath.Abs(dir); err != nil {
			return 0, zerr.Wrap(err, "failed to resolve bundle directory")
		}
	}

	killed := 0
	for _, p := range procs {
		if k.self[p.PID] || !matches(p, name, absDir) {
			continue
		}
		if err := k.kill(p.PID); err != nil {
			return killed, zerr.With(zerr.With(zerr.Wrap(err, "failed to terminate process"), "pid", p.PID), "process", p.Name)
		}
		killed++
	}
	return killed, nil
}

func matches(p Process, name, dir string) bool {
	if name != "" && (p.Name == name || strings.EqualFold(p.Name, name+".exe") || truncatedComm(p.Name, name)) {
		return true
	}
	if dir == "" {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for _, arg := range p.Args {
		if strings.HasPrefix(arg, prefix) {
			return true
		}
	}
	return false
}

// truncatedComm reports whether comm is name cut to the 15 bytes Linux keeps.
func truncatedComm(comm, name string) bool {
	return len(comm) == 15 && len(name) > 15 && strings.HasPrefix(name, comm)
}

func killPID(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// PlatformLister returns the process source for goos.
func PlatformLister(goos string) Lister {
	switch goos {
	case "linux":
		return func(_ context.Context) ([]Process, error) { return listProc("/proc") }
	case "windows":
		return listTasklist
	default:
		return listPS
	}
}

// listProc reads processes from a procfs mount.
func listProc(root string) ([]Process, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var out []Process
	for _, e := range entries {
		pid, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(root, e.Name(), "comm")) //nolint:gosec // procfs path
		if err != nil {
			// The process exited or is not ours to read.
			continue
		}
		cmdline, _ := os.ReadFile(filepath.Join(root, e.Name(), "cmdline")) //nolint:gosec // procfs path
		var args []string
		for _, a := range bytes.Split(bytes.TrimRight(cmdline, "\x00"), []byte{0}) {
			if len(a) > 0 {
				args = append(args, string(a))
			}
		}
		out = append(out, Process{PID: pid, Name: strings.TrimSpace(string(comm)), Args: args})
	}
	return out, nil
}

// listPS parses `ps` output on BSD-like systems.
func listPS(ctx context.Context) ([]Process, error) {
	out, err := exec.CommandContext(ctx, "ps", "-axo", "pid=,comm=,args=").Output()
	if err != nil {
		return nil, err
	}
	return parsePS(out), nil
}

func parsePS(out []byte) []Process {
	var procs []Process
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: filepath.Base(fields[1]), Args: fields[2:]})
	}
	return procs
}

// listTasklist parses `tasklist` CSV output on Windows.
func listTasklist(ctx context.Context) ([]Process, error) {
	out, err := exec.CommandContext(ctx, "tasklist", "/FO", "CSV", "/NH").Output()
	if err != nil {
		return nil, err
	}
	return parseTasklist(out)
}

func parseTasklist(out []byte) ([]Process, error) {
	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var procs []Process
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		pid, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		procs = append(procs, Process{PID: pid, Name: rec[0]})
	}
	return procs, nil
}
