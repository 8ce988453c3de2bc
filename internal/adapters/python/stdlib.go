package python

import (
	_ "embed"
	"strings"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
)

//go:embed stdlib.txt
var stdlibList string

var stdlibNames = sync.OnceValue(func() map[string]struct{} {
	names := make(map[string]struct{})
	for _, line := range strings.Split(stdlibList, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names[line] = struct{}{}
		}
	}
	return names
})

// IsStdlib reports whether the top-level package of name ships with CPython.
// The list follows CPython 3.11 and still contains modules removed in later releases.
func IsStdlib(name domain.ModuleName) bool {
	_, ok := stdlibNames()[name.Top().String()]
	return ok
}
