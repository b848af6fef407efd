package ingest

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/blob"
	"github.com/blackwell-systems/readshelf/internal/format"
	"github.com/blackwell-systems/readshelf/internal/util"
)

// Processor stores raw uploads and extracts their page counts.
type Processor struct {
	blobs    blob.Store
	registry *Registry
	log      zerolog.Logger
}

// NewProcessor creates a Processor. A nil registry uses DefaultRegistry.
func NewProcessor(blobs blob.Store, registry *Registry, log zerolog.Logger) *Processor {
	if registry == nil {
		registry = DefaultRegistry(log)
	}
	return &Processor{blobs: blobs, registry: registry, log: log}
}

// Process stores data under bookID and dispatches to the strategy for the
// file's format. Unsupported files are rejected before anything is stored.
func (p *Processor) Process(ctx context.Context, data []byte, fileName, bookID string) (*FileInfo, error) {
	f, err := format.FromFileName(fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	strategy, ok := p.registry.Lookup(f)
	if !ok {
		return nil, fmt.Errorf("%w: no processor for %s", ErrUnsupportedFormat, f)
	}

	if err := p.blobs.Put(ctx, bookID, data, fileName); err != nil {
		return nil, fmt.Errorf("%w: storing %s: %w", ErrStorageFailure, fileName, err)
	}

	info, err := strategy.Process(ctx, data, fileName)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", fileName, err)
	}
	info.Metadata.SHA256 = util.SHA256Bytes(data)

	p.log.Debug().
		Str("book", bookID).
		Str("format", string(f)).
		Int("pages", info.TotalPages).
		Bool("estimated", info.Metadata.PageCountEstimated).
		Msg("processed file")
	return info, nil
}
