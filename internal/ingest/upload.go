package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// Upload is a file fully read into memory, ready to add to the library.
type Upload struct {
	Name   string
	Data   []byte
	Size   int64
	SHA256 string
}

// NewUpload wraps bytes already in memory.
func NewUpload(name string, data []byte) Upload {
	return Upload{
		Name:   name,
		Data:   data,
		Size:   int64(len(data)),
		SHA256: util.SHA256Bytes(data),
	}
}

// ReadUpload reads src to the end, hashing it on the way.
func ReadUpload(ctx context.Context, src *Source) (Upload, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Upload{}, fmt.Errorf("opening %s: %w", src.Name, err)
	}
	defer rc.Close()

	r := NewReader(ctx, rc, MaxUploadBytes)
	data, err := io.ReadAll(r)
	if err != nil {
		return Upload{}, fmt.Errorf("reading %s: %w", src.Name, err)
	}
	if src.Size >= 0 && r.Size() != src.Size {
		return Upload{}, fmt.Errorf("reading %s: got %d bytes, expected %d", src.Name, r.Size(), src.Size)
	}
	return Upload{Name: src.Name, Data: data, Size: r.Size(), SHA256: r.SHA256()}, nil
}
