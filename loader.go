package torchgen

import (
	internalLoader "github.com/goliatone/go-torchgen/internal/graph/loader"
	"github.com/goliatone/go-torchgen/pkg/graph"
)

// NewLoader constructs a graph loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...graph.LoaderOption) graph.Loader {
	cfg := graph.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}
