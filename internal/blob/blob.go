// Package blob is the durable store for raw uploads and derived page
// content. Records are keyed by book id; derived pages are keyed by
// (book id, page number) and carry their owner for bulk cleanup.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrStorage wraps every failure of the underlying store.
var ErrStorage = errors.New("storage failure")

// ErrInvalidKey is returned for keys that cannot address a record.
var ErrInvalidKey = errors.New("invalid blob key")

// Store is the durable blob store.
//
// Get and GetPage return nil with a nil error when the record is absent.
// DeleteAllForOwner is idempotent.
type Store interface {
	Put(ctx context.Context, key string, data []byte, name string) error
	Get(ctx context.Context, key string) (*File, error)
	PutPage(ctx context.Context, owner string, page int, data []byte) error
	GetPage(ctx context.Context, owner string, page int) ([]byte, error)
	DeleteAllForOwner(ctx context.Context, owner string) error
	Usage(ctx context.Context) (Usage, error)
}

// File is a stored raw upload.
type File struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	ContentType string    `json:"contentType"`
	SHA256      string    `json:"sha256"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"storedAt"`
	Data        []byte    `json:"-"`
}

// Usage reports capacity of the store in bytes. All fields are zero when
// the environment cannot report.
type Usage struct {
	QuotaBytes     int64 `json:"quota"`
	UsedBytes      int64 `json:"usage"`
	AvailableBytes int64 `json:"available"`
}

// usageFrom combines a measured used count with either a configured quota
// or the free space reported by the filesystem.
func usageFrom(used, free int64, freeKnown bool, quota int64) Usage {
	switch {
	case quota > 0:
		avail := quota - used
		if avail < 0 {
			avail = 0
		}
		return Usage{QuotaBytes: quota, UsedBytes: used, AvailableBytes: avail}
	case freeKnown:
		return Usage{QuotaBytes: used + free, UsedBytes: used, AvailableBytes: free}
	default:
		return Usage{}
	}
}

func validKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validPage(page int) error {
	if page < 1 {
		return fmt.Errorf("%w: page %d", ErrInvalidKey, page)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

// pageID is the record id of a derived page.
func pageID(owner string, page int) string {
	return fmt.Sprintf("%s-page-%d", owner, page)
}

func newFile(key string, data []byte, name, sum string, now time.Time) File {
	return File{
		Key:         key,
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		SHA256:      sum,
		Size:        int64(len(data)),
		StoredAt:    now.UTC(),
	}
}
