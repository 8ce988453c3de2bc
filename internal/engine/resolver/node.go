package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/python" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[ports.ClosureResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			python.FinderNodeID,
			python.ScannerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.ClosureResolver, error) {
			finder, err := graft.Dep[ports.ModuleFinder](ctx)
			if err != nil {
				return nil, err
			}

			scanner, err := graft.Dep[ports.ImportScanner](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(finder, scanner, log), nil
		},
	})
}
