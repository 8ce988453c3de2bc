package assembler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/archive"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/launcher" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/core/ports"
)

// NodeID is the unique identifier for the assembler Graft node.
const NodeID graft.ID = "engine.assembler"

func init() {
	graft.Register(graft.Node[ports.Assembler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.CopierNodeID,
			archive.NodeID,
			launcher.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.Assembler, error) {
			copier, err := graft.Dep[ports.Copier](ctx)
			if err != nil {
				return nil, err
			}

			archiver, err := graft.Dep[ports.Archiver](ctx)
			if err != nil {
				return nil, err
			}

			writer, err := graft.Dep[ports.LauncherWriter](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(copier, archiver, writer, log), nil
		},
	})
}
