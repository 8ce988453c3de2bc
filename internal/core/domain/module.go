package domain

import (
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ModuleName is a validated, dotted Python module identifier such as "pkg.sub.mod".
type ModuleName string

// ParseModuleName validates s and returns it as a ModuleName.
func ParseModuleName(s string) (ModuleName, error) {
	s = strings.TrimSpace(s)
	if !moduleNamePattern.MatchString(s) {
		return "", zerr.With(ErrInvalidModuleName, "module", s)
	}
	return ModuleName(s), nil
}

// String returns the dotted name.
func (m ModuleName) String() string {
	return string(m)
}

// Parent returns the enclosing package, or "" for a top-level module.
func (m ModuleName) Parent() ModuleName {
	i := strings.LastIndexByte(string(m), '.')
	if i < 0 {
		return ""
	}
	return m[:i]
}

// Top returns the top-level package name.
func (m ModuleName) Top() ModuleName {
	if i := strings.IndexByte(string(m), '.'); i >= 0 {
		return m[:i]
	}
	return m
}

// Base returns the last component of the name.
func (m ModuleName) Base() string {
	return string(m[strings.LastIndexByte(string(m), '.')+1:])
}

// Child returns the submodule name of m.
func (m ModuleName) Child(name string) ModuleName {
	if m == "" {
		return ModuleName(name)
	}
	return m + "." + ModuleName(name)
}

// Within reports whether m equals prefix or is one of its submodules.
func (m ModuleName) Within(prefix ModuleName) bool {
	if m == prefix {
		return true
	}
	return strings.HasPrefix(string(m), string(prefix)+".")
}

// Ancestors returns every enclosing package of m, outermost first.
func (m ModuleName) Ancestors() []ModuleName {
	var out []ModuleName
	for p := m.Parent(); p != ""; p = p.Parent() {
		out = append(out, p)
	}
	slices.Reverse(out)
	return out
}

// ModuleKind classifies what a ModuleRecord contributes to the bundle.
type ModuleKind string

const (
	// KindSource is pure Python code.
	KindSource ModuleKind = "source"
	// KindNative is a native extension module or shared library.
	KindNative ModuleKind = "native"
	// KindMetadata is a package's distribution metadata (dist-info, egg-info).
	KindMetadata ModuleKind = "metadata"
	// KindData is a non-code file shipped inside a package.
	KindData ModuleKind = "data"
)

// ModuleRecord is a module or file that belongs to the closure.
type ModuleRecord struct {
	// Name is the module name, or for companion files the owning package.
	Name ModuleName
	// Kind classifies the record.
	Kind ModuleKind
	// Path is the resolved filesystem path.
	Path string
	// Root is the search path the record was found under.
	Root string
	// RelPath is Path relative to Root, used as the in-bundle location.
	RelPath string
	// Package is true for a package's __init__ module and for namespace packages.
	Package bool
	// Namespace is true for a package directory without an __init__ module.
	Namespace bool
}

// ModuleSet is a set of module names.
type ModuleSet map[ModuleName]struct{}

// NewModuleSet creates a set containing names.
func NewModuleSet(names ...ModuleName) ModuleSet {
	s := make(ModuleSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Add inserts name into the set.
func (s ModuleSet) Add(name ModuleName) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s ModuleSet) Has(name ModuleName) bool {
	_, ok := s[name]
	return ok
}

// Covers reports whether name equals or is a submodule of any member.
func (s ModuleSet) Covers(name ModuleName) bool {
	if s.Has(name) {
		return true
	}
	for p := name.Parent(); p != ""; p = p.Parent() {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexical order.
func (s ModuleSet) Sorted() []ModuleName {
	out := make([]ModuleName, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
