package process

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the process killer Graft node.
const NodeID graft.ID = "adapter.process_killer"

func init() {
	graft.Register(graft.Node[ports.ProcessKiller]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProcessKiller, error) {
			return NewKiller(), nil
		},
	})
}
