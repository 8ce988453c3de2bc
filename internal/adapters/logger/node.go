package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the logger Graft node.
	NodeID graft.ID = "adapter.logger"
	// BuildLogNodeID is the unique identifier for the build log Graft node.
	BuildLogNodeID graft.ID = "adapter.build_log"
)

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[ports.BuildLog]{
		ID:        BuildLogNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.BuildLog, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			buildLog, ok := log.(ports.BuildLog)
			if !ok {
				return nil, ErrNoBuildLog
			}
			return buildLog, nil
		},
	})
}
