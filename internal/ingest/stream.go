package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

// MaxUploadBytes caps how much ReadUpload will read from one source.
const MaxUploadBytes int64 = 1 << 30

// ErrTooLarge is returned once a Reader passes its limit.
var ErrTooLarge = errors.New("upload too large")

// Reader hashes and counts bytes as they pass through. It stops with
// ErrTooLarge past its limit and with ctx.Err() once ctx is done.
type Reader struct {
	ctx   context.Context
	r     io.Reader
	h     hash.Hash
	size  int64
	limit int64
}

// NewReader wraps r. A limit <= 0 means no limit.
func NewReader(ctx context.Context, r io.Reader, limit int64) *Reader {
	return &Reader{ctx: ctx, r: r, h: sha256.New(), limit: limit}
}

func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	if n > 0 {
		r.h.Write(p[:n]) //nolint:errcheck
		r.size += int64(n)
	}
	if r.limit > 0 && r.size > r.limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, r.limit)
	}
	return n, err
}

// SHA256 is the hex sha256 of everything read so far.
func (r *Reader) SHA256() string {
	return hex.EncodeToString(r.h.Sum(nil))
}

// Size is the number of bytes read so far.
func (r *Reader) Size() int64 { return r.size }
