// Package catalog holds the authoritative list of book records. Every
// mutation is applied to a copy, persisted as one snapshot, and only then
// becomes visible.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/readshelf/internal/format"
	"github.com/blackwell-systems/readshelf/internal/ingest"
	"github.com/blackwell-systems/readshelf/internal/render"
)

// Processor stores an upload and extracts its page count.
type Processor interface {
	Process(ctx context.Context, data []byte, fileName, bookID string) (*ingest.FileInfo, error)
}

// Renderer produces page content for a stored book.
type Renderer interface {
	Render(ctx context.Context, bookID string, page int, f format.Format) (*render.Content, error)
}

// BlobCleaner removes everything stored for a book.
type BlobCleaner interface {
	DeleteAllForOwner(ctx context.Context, owner string) error
}

// Options are the collaborators of a Library.
type Options struct {
	Snapshot  Snapshot
	Processor Processor
	Renderer  Renderer
	Blobs     BlobCleaner
	Logger    zerolog.Logger
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Library is the metadata catalog.
type Library struct {
	mu    sync.RWMutex
	books []Book

	snapshot  Snapshot
	processor Processor
	renderer  Renderer
	blobs     BlobCleaner
	log       zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// Status reports the outcome of one file in a batch.
type Status struct {
	Index int
	Total int
	Name  string
	Book  *Book
	Err   error
}

// New creates an empty Library. Call Open to load the stored snapshot.
func New(opts Options) *Library {
	l := &Library{
		books:     []Book{},
		snapshot:  opts.Snapshot,
		processor: opts.Processor,
		renderer:  opts.Renderer,
		blobs:     opts.Blobs,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	return l
}

// Open loads the stored snapshot, replacing the in-memory list.
func (l *Library) Open(ctx context.Context) error {
	books, err := l.snapshot.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading library: %w", err)
	}
	l.mu.Lock()
	l.books = books
	l.mu.Unlock()
	l.log.Debug().Int("books", len(books)).Msg("library loaded")
	return nil
}

// List returns a copy of every record.
func (l *Library) List() []Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(l.books)
}

// Get returns a copy of the record, or nil when id is unknown.
func (l *Library) Get(id string) *Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneOf(ByID(l.books, id))
}

// Search matches query case-insensitively against title and author.
func (l *Library) Search(query string) []Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := []Book{}
	for _, b := range l.books {
		if matchesSearch(b, query) {
			out = append(out, b.Clone())
		}
	}
	return out
}

// Filter returns copies of the records matching f.
func (l *Library) Filter(f Filter) []Book {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneAll(f.Apply(l.books))
}

// Add ingests one upload. A record is persisted whether processing
// succeeds or fails; on failure the failed record is returned together
// with the processing error.
func (l *Library) Add(ctx context.Context, up ingest.Upload) (*Book, error) {
	id := l.newID()
	size := up.Size
	if size == 0 {
		size = int64(len(up.Data))
	}
	book := Book{
		ID:        id,
		Title:     format.Stem(up.Name),
		Format:    format.Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Name), "."))),
		FileName:  up.Name,
		DateAdded: l.now().UTC(),
		FileSize:  size,
		Tags:      []string{},
	}

	info, procErr := l.processor.Process(ctx, up.Data, up.Name, id)
	if procErr == nil {
		applyInfo(&book, info)
	} else {
		book.ProcessingStatus = StatusFailed
		book.Error = procErr.Error()
		book.Metadata.SHA256 = up.SHA256
	}

	saved, err := l.mutate(ctx, func(books []Book) ([]Book, *Book) {
		books = Append(books, book)
		return books, ByID(books, id)
	})
	if err != nil {
		if procErr == nil && l.blobs != nil {
			if cerr := l.blobs.DeleteAllForOwner(ctx, id); cerr != nil {
				l.log.Error().Err(cerr).Str("book", id).Msg("removing unrecorded upload failed")
			}
		}
		return nil, errors.Join(procErr, err)
	}

	ev := l.log.Info()
	if procErr != nil {
		ev = l.log.Warn().Err(procErr)
	}
	ev.Str("book", id).Str("file", up.Name).Str("status", saved.ProcessingStatus).Int("pages", saved.TotalPages).Msg("book added")
	return saved, procErr
}

func applyInfo(b *Book, info *ingest.FileInfo) {
	if info.Title != "" {
		b.Title = info.Title
	}
	b.Author = info.Author
	b.Format = info.Format
	b.TotalPages = info.TotalPages
	b.IsProcessed = true
	b.ProcessingStatus = StatusCompleted
	b.Metadata = Metadata{
		Subject:            info.Metadata.Subject,
		Creator:            info.Metadata.Creator,
		Producer:           info.Metadata.Producer,
		CreationDate:       cloneTime(info.Metadata.CreationDate),
		ModificationDate:   cloneTime(info.Metadata.ModificationDate),
		PageCountEstimated: info.Metadata.PageCountEstimated,
		SHA256:             info.Metadata.SHA256,
	}
}

// AddBatch ingests uploads one after another. A failing file never affects
// the others. onStatus, when non-nil, is called after each file. A
// cancelled context stops the batch before the next file starts.
func (l *Library) AddBatch(ctx context.Context, uploads []ingest.Upload, onStatus func(Status)) []Status {
	return l.addEach(ctx, len(uploads), func(i int) (string, ingest.Upload, error) {
		return uploads[i].Name, uploads[i], nil
	}, onStatus)
}

// AddSources is AddBatch for resolved inputs. Each source is read only when
// its turn comes, so at most one file is held in memory. A source that
// cannot be read is reported with a nil Book and leaves no record.
func (l *Library) AddSources(ctx context.Context, srcs []*ingest.Source, onStatus func(Status)) []Status {
	return l.addEach(ctx, len(srcs), func(i int) (string, ingest.Upload, error) {
		up, err := ingest.ReadUpload(ctx, srcs[i])
		return srcs[i].Name, up, err
	}, onStatus)
}

func (l *Library) addEach(ctx context.Context, total int, next func(int) (string, ingest.Upload, error), onStatus func(Status)) []Status {
	statuses := make([]Status, 0, total)
	for i := range total {
		if err := ctx.Err(); err != nil {
			l.log.Info().Int("done", i).Int("total", total).Msg("batch cancelled")
			break
		}
		name, up, err := next(i)
		var book *Book
		if err == nil {
			book, err = l.Add(ctx, up)
		} else {
			l.log.Warn().Err(err).Str("name", name).Msg("input unreadable")
		}
		st := Status{Index: i, Total: total, Name: name, Book: book, Err: err}
		statuses = append(statuses, st)
		if onStatus != nil {
			onStatus(st)
		}
	}
	return statuses
}

// UpdateProgress sets the current page, clamped into [1, TotalPages], and
// refreshes LastRead. Books without pages stay at page 0. Returns nil
// when id is unknown.
func (l *Library) UpdateProgress(ctx context.Context, id string, page int) (*Book, error) {
	return l.mutate(ctx, func(books []Book) ([]Book, *Book) {
		b := ByID(books, id)
		if b == nil {
			return nil, nil
		}
		b.CurrentPage = clampPage(page, b.TotalPages)
		now := l.now().UTC()
		b.LastRead = &now
		return books, b
	})
}

// SetTags replaces the tags of a book. Returns nil when id is unknown.
func (l *Library) SetTags(ctx context.Context, id string, tags []string) (*Book, error) {
	tags = normalizeTags(tags)
	return l.mutate(ctx, func(books []Book) ([]Book, *Book) {
		b := ByID(books, id)
		if b == nil {
			return nil, nil
		}
		b.Tags = tags
		return books, b
	})
}

// Delete removes the record, then removes its blobs. A blob cleanup
// failure is logged and not returned. Returns nil when id is unknown.
func (l *Library) Delete(ctx context.Context, id string) (*Book, error) {
	var removed Book
	_, err := l.mutate(ctx, func(books []Book) ([]Book, *Book) {
		b := ByID(books, id)
		if b == nil {
			return nil, nil
		}
		removed = *b
		books, _ = Remove(books, id)
		return books, &removed
	})
	if err != nil {
		return nil, err
	}
	if removed.ID == "" {
		return nil, nil
	}

	if l.blobs != nil {
		if err := l.blobs.DeleteAllForOwner(ctx, id); err != nil {
			l.log.Error().Err(err).Str("book", id).Msg("removing stored files failed")
		}
	}
	l.log.Info().Str("book", id).Str("title", removed.Title).Msg("book deleted")
	out := removed.Clone()
	return &out, nil
}

// PageContent renders a page of a book, clamping page into range first.
// Returns nil when id is unknown.
func (l *Library) PageContent(ctx context.Context, id string, page int) (*render.Content, error) {
	b := l.Get(id)
	if b == nil {
		return nil, nil
	}
	return l.renderer.Render(ctx, id, clampRead(page, b.TotalPages), b.Format)
}

// Read renders a page and records it as the current page when it differs
// from the stored one. Returns nil content and book when id is unknown.
func (l *Library) Read(ctx context.Context, id string, page int) (*render.Content, *Book, error) {
	b := l.Get(id)
	if b == nil {
		return nil, nil, nil
	}
	page = clampRead(page, b.TotalPages)
	content, err := l.renderer.Render(ctx, id, page, b.Format)
	if err != nil {
		return nil, b, err
	}
	if page != b.CurrentPage {
		updated, err := l.UpdateProgress(ctx, id, page)
		if err != nil {
			return content, b, err
		}
		if updated != nil {
			b = updated
		}
	}
	return content, b, nil
}

// mutate applies fn to a copy of the list, persists the result and swaps
// it in. fn returns a nil list to signal that nothing changed.
func (l *Library) mutate(ctx context.Context, fn func([]Book) ([]Book, *Book)) (*Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, changed := fn(cloneAll(l.books))
	if next == nil {
		return nil, nil
	}
	if err := l.snapshot.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("saving library: %w", err)
	}
	l.books = next
	return cloneOf(changed), nil
}

func cloneOf(b *Book) *Book {
	if b == nil {
		return nil
	}
	c := b.Clone()
	return &c
}

// clampPage bounds page to [1, total], or 0 for a book without pages.
func clampPage(page, total int) int {
	if total < 1 {
		return 0
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// clampRead is clampPage for rendering, where page 1 is the floor.
func clampRead(page, total int) int {
	if p := clampPage(page, total); p > 0 {
		return p
	}
	return 1
}
