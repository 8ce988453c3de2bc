package python

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/fs"
	"go.trai.ch/kiln/internal/core/ports"
)

const (
	// ScannerNodeID is the unique identifier for the import scanner Graft node.
	ScannerNodeID graft.ID = "adapter.python.scanner"
	// FinderNodeID is the unique identifier for the module finder Graft node.
	FinderNodeID graft.ID = "adapter.python.finder"
)

func init() {
	graft.Register(graft.Node[ports.ImportScanner]{
		ID:        ScannerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ImportScanner, error) {
			return NewScanner(), nil
		},
	})

	graft.Register(graft.Node[ports.ModuleFinder]{
		ID:        FinderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID},
		Run: func(ctx context.Context) (ports.ModuleFinder, error) {
			walker, err := graft.Dep[ports.Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewFinder(walker), nil
		},
	})
}
