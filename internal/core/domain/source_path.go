package domain

import "unique"

// SourcePath is an interned file system path.
type SourcePath struct {
	h unique.Handle[string]
}

// NewSourcePath interns p.
func NewSourcePath(p string) SourcePath {
	return SourcePath{h: unique.Make(p)}
}

// String returns the path.
func (p SourcePath) String() string {
	if p == (SourcePath{}) {
		return ""
	}
	return p.h.Value()
}

// MarshalText encodes the path as plain text.
func (p SourcePath) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText interns the decoded path.
func (p *SourcePath) UnmarshalText(text []byte) error {
	*p = NewSourcePath(string(text))
	return nil
}
