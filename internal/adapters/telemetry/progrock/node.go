package progrock

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/vito/progrock"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID identifies the stage recorder in the graft graph.
const NodeID graft.ID = "adapter.stage_recorder"

func init() {
	graft.Register(graft.Node[ports.Telemetry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Telemetry, error) {
			// Stages are recorded onto an in-memory tape; the terminal view is the logger's.
			return NewRecorder(progrock.NewTape()), nil
		},
	})
}
