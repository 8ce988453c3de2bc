package progrock

import (
	"fmt"
	"io"
	"strings"

	"github.com/vito/progrock"
	"go.trai.ch/kiln/internal/core/domain"
)

// Vertex is one pipeline stage recorded on a progrock tape.
type Vertex struct {
	vertex *progrock.VertexRecorder
}

// Stdout receives hook output and informational stage lines.
func (v *Vertex) Stdout() io.Writer {
	return v.vertex.Stdout()
}

// Stderr receives warnings and errors.
func (v *Vertex) Stderr() io.Writer {
	return v.vertex.Stderr()
}

// Log writes msg to the vertex, one line per line of msg. Warnings and errors go to
// the error stream.
func (v *Vertex) Log(level domain.LogLevel, msg string) {
	w := v.vertex.Stdout()
	if level >= domain.LogLevelWarn {
		w = v.vertex.Stderr()
	}
	for line := range strings.Lines(msg) {
		_, _ = fmt.Fprintf(w, "%-5s %s\n", level.String(), strings.TrimRight(line, "\r\n"))
	}
}

// Complete ends the stage. A non-nil err marks it failed.
func (v *Vertex) Complete(err error) {
	v.vertex.Done(err)
}

// Cached marks a stage that had nothing to do.
func (v *Vertex) Cached() {
	v.vertex.Cached()
}
