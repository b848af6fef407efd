package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// Snapshot persists the whole book list as one unit.
type Snapshot interface {
	// Load returns the stored list, or an empty list when none exists.
	Load(ctx context.Context) ([]Book, error)
	// Save replaces the stored list.
	Save(ctx context.Context, books []Book) error
}

// SnapshotName is the snapshot identifier for a namespace.
func SnapshotName(namespace string) string {
	return namespace + "-books"
}

// Parse decodes a JSON snapshot into a book list.
func Parse(data []byte) ([]Book, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Book{}, nil
	}
	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}
	if books == nil {
		return []Book{}, nil
	}
	return books, nil
}

// Marshal encodes a book list as a JSON snapshot.
func Marshal(books []Book) ([]byte, error) {
	if books == nil {
		books = []Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return append(data, '\n'), nil
}

// FileSnapshot stores the list as a JSON file written atomically.
type FileSnapshot struct {
	path string
}

// NewFileSnapshot stores the snapshot for namespace under dataDir.
func NewFileSnapshot(dataDir, namespace string) *FileSnapshot {
	return &FileSnapshot{path: filepath.Join(dataDir, SnapshotName(namespace)+".json")}
}

// Path returns the snapshot file location.
func (s *FileSnapshot) Path() string { return s.path }

func (s *FileSnapshot) Load(ctx context.Context) ([]Book, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Book{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

func (s *FileSnapshot) Save(ctx context.Context, books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}

// MemorySnapshot keeps the list in process memory.
type MemorySnapshot struct {
	mu   sync.Mutex
	data []byte
}

// NewMemorySnapshot returns an empty in-memory snapshot.
func NewMemorySnapshot() *MemorySnapshot {
	return &MemorySnapshot{}
}

func (s *MemorySnapshot) Load(ctx context.Context) ([]Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Parse(s.data)
}

func (s *MemorySnapshot) Save(ctx context.Context, books []Book) error {
	data, err := Marshal(books)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	return nil
}
