package render

import (
	"context"
	"sync"

	"github.com/blackwell-systems/readshelf/internal/format"
)

// Strategy renders one page from a book's raw bytes. Failures are
// reported as TypeError content.
type Strategy interface {
	Render(ctx context.Context, data []byte, page int) *Content
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(ctx context.Context, data []byte, page int) *Content

func (f StrategyFunc) Render(ctx context.Context, data []byte, page int) *Content {
	return f(ctx, data, page)
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

// DefaultRegistry renders pdf pages and placeholders for the other formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(format.PDF, pdfStrategy{})
	for _, f := range []format.Format{format.EPUB, format.CBZ, format.CBR} {
		r.Register(f, placeholderStrategy(f))
	}
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
