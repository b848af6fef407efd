package blob

import (
	"context"
	"sync"
	"time"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// Memory is an in-process Store. Data is copied on the way in and out.
type Memory struct {
	mu    sync.RWMutex
	files map[string]File
	pages map[string]map[int][]byte
	quota int64
	now   func() time.Time
}

// NewMemory creates an empty in-memory store. A positive quota makes Usage
// report capacity; otherwise Usage reports zeros.
func NewMemory(quota int64) *Memory {
	return &Memory{
		files: make(map[string]File),
		pages: make(map[string]map[int][]byte),
		quota: quota,
		now:   time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, key string, data []byte, name string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f := newFile(key, data, name, util.SHA256Bytes(data), m.now())
	f.Data = clone(data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = f
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (*File, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[key]
	if !ok {
		return nil, nil
	}
	f.Data = clone(f.Data)
	return &f, nil
}

func (m *Memory) PutPage(ctx context.Context, owner string, page int, data []byte) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := validPage(page); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[owner] == nil {
		m.pages[owner] = make(map[int][]byte)
	}
	m.pages[owner][page] = clone(data)
	return nil
}

func (m *Memory) GetPage(ctx context.Context, owner string, page int) ([]byte, error) {
	if err := validKey(owner); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.pages[owner][page]
	if !ok {
		return nil, nil
	}
	return clone(data), nil
}

func (m *Memory) DeleteAllForOwner(ctx context.Context, owner string) error {
	if err := validKey(owner); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, owner)
	delete(m.pages, owner)
	return nil
}

func (m *Memory) Usage(ctx context.Context) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var used int64
	for _, f := range m.files {
		used += f.Size
	}
	for _, pages := range m.pages {
		for _, p := range pages {
			used += int64(len(p))
		}
	}
	return usageFrom(used, 0, false, m.quota), nil
}

// Len returns the number of raw files held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
