package ingest

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/format"
)

// Strategy extracts page count and metadata for one format.
type Strategy interface {
	Process(ctx context.Context, data []byte, name string) (*FileInfo, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, data []byte, name string) (*FileInfo, error)

func (f StrategyFunc) Process(ctx context.Context, data []byte, name string) (*FileInfo, error) {
	return f(ctx, data, name)
}

// Registry maps formats to strategies.
type Registry struct {
	mu         sync.RWMutex
	strategies map[format.Format]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[format.Format]Strategy)}
}

// DefaultRegistry registers the built-in strategies for every format.
func DefaultRegistry(log zerolog.Logger) *Registry {
	r := NewRegistry()
	r.Register(format.PDF, &pdfStrategy{log: log})
	r.Register(format.EPUB, estimateStrategy(format.EPUB))
	r.Register(format.CBZ, estimateStrategy(format.CBZ))
	r.Register(format.CBR, estimateStrategy(format.CBR))
	return r
}

// Register installs s for f, replacing any previous strategy.
func (r *Registry) Register(f format.Format, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[f] = s
}

// Lookup returns the strategy for f.
func (r *Registry) Lookup(f format.Format) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[f]
	return s, ok
}
