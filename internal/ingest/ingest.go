// Package ingest turns an uploaded file into a stored raw blob plus the
// page count and metadata needed for a catalog record.
package ingest

import (
	"errors"
	"time"

	"github.com/blackwell-systems/readshelf/internal/format"
)

var (
	// ErrUnsupportedFormat is returned before anything is stored when the
	// file extension is outside the supported set.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrStorageFailure is returned when the raw bytes could not be stored.
	ErrStorageFailure = errors.New("storage failure")
	// ErrParseDegraded marks a document whose structure could not be read.
	// It is logged and reported on FileInfo, never returned from Process.
	ErrParseDegraded = errors.New("parse degraded")
)

// FileInfo is the outcome of processing one file.
type FileInfo struct {
	Format     format.Format
	Name       string
	Size       int64
	TotalPages int
	Title      string
	Author     string
	Metadata   Metadata
	// Degraded wraps ErrParseDegraded when the page count fell back to an
	// estimate because parsing failed.
	Degraded error
}

// Metadata holds document properties read from the file.
type Metadata struct {
	Subject            string
	Creator            string
	Producer           string
	CreationDate       *time.Time
	ModificationDate   *time.Time
	PageCountEstimated bool
	SHA256             string
}

func estimated(f format.Format, name string, data []byte) *FileInfo {
	return &FileInfo{
		Format:     f,
		Name:       name,
		Size:       int64(len(data)),
		TotalPages: format.EstimatePageCount(int64(len(data)), f),
		Metadata:   Metadata{PageCountEstimated: true},
	}
}
