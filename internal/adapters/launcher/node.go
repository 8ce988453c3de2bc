package launcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the launcher writer Graft node.
const NodeID graft.ID = "adapter.launcher"

func init() {
	graft.Register(graft.Node[ports.LauncherWriter]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.LauncherWriter, error) {
			return NewWriter(), nil
		},
	})
}
