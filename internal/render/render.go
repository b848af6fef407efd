// Package render produces displayable content for one page of a stored
// book. Results for formats with real page data are cached in the blob
// store as derived pages.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/blob"
	"github.com/blackwell-systems/readshelf/internal/format"
)

// ErrFileNotFound is returned when the book has no raw blob.
var ErrFileNotFound = errors.New("file not found")

// Content types.
const (
	TypePDF         = "pdf"
	TypePlaceholder = "placeholder"
	TypeError       = "error"
)

// Content is one rendered page.
type Content struct {
	Type       string        `json:"type"`
	PageNumber int           `json:"pageNumber"`
	Format     format.Format `json:"format,omitempty"`
	HTML       string        `json:"html,omitempty"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	Text       string        `json:"text,omitempty"`
	Width      int           `json:"width,omitempty"`
	Height     int           `json:"height,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// cacheable reports whether c carries real page data worth storing.
func (c *Content) cacheable() bool {
	return c.Type != TypeError && c.Type != TypePlaceholder
}

// Renderer dispatches page requests to per-format strategies.
type Renderer struct {
	blobs    blob.Store
	registry *Registry
	log      zerolog.Logger
}

// NewRenderer creates a Renderer. A nil registry uses DefaultRegistry.
func NewRenderer(blobs blob.Store, registry *Registry, log zerolog.Logger) *Renderer {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Renderer{blobs: blobs, registry: registry, log: log}
}

// Render returns the content of page for bookID. Format-specific failures
// come back as TypeError content with a nil error; only a missing or
// unreadable raw blob is returned as an error.
func (r *Renderer) Render(ctx context.Context, bookID string, page int, f format.Format) (*Content, error) {
	if c := r.cached(ctx, bookID, page); c != nil {
		return c, nil
	}

	raw, err := r.blobs.Get(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", bookID, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, bookID)
	}

	strategy, ok := r.registry.Lookup(f)
	if !ok {
		return Placeholder(f, page), nil
	}
	content := strategy.Render(ctx, raw.Data, page)

	if content.cacheable() {
		r.store(ctx, bookID, page, content)
	}
	return content, nil
}

func (r *Renderer) cached(ctx context.Context, bookID string, page int) *Content {
	data, err := r.blobs.GetPage(ctx, bookID, page)
	if err != nil {
		r.log.Warn().Err(err).Str("book", bookID).Int("page", page).Msg("page cache read failed")
		return nil
	}
	if data == nil {
		return nil
	}
	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		r.log.Warn().Err(err).Str("book", bookID).Int("page", page).Msg("discarding corrupt cached page")
		return nil
	}
	return &c
}

func (r *Renderer) store(ctx context.Context, bookID string, page int, c *Content) {
	data, err := json.Marshal(c)
	if err == nil {
		err = r.blobs.PutPage(ctx, bookID, page, data)
	}
	if err != nil {
		r.log.Warn().Err(err).Str("book", bookID).Int("page", page).Msg("page cache write failed")
	}
}
