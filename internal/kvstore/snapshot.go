package kvstore

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/readshelf/internal/catalog"
)

// Snapshot keeps the library snapshot as one row.
type Snapshot struct {
	store *Store
	key   string
}

// NewSnapshot stores the snapshot of namespace in s.
func NewSnapshot(s *Store, namespace string) *Snapshot {
	return &Snapshot{store: s, key: catalog.SnapshotName(namespace)}
}

func (s *Snapshot) Load(ctx context.Context) ([]catalog.Book, error) {
	data, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	if !ok {
		return []catalog.Book{}, nil
	}
	return catalog.Parse(data)
}

func (s *Snapshot) Save(ctx context.Context, books []catalog.Book) error {
	data, err := catalog.Marshal(books)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
