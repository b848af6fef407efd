package catalog

import (
	"time"

	"github.com/blackwell-systems/readshelf/internal/format"
)

// Processing outcomes.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Book is one entry in the library.
type Book struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Author           string        `json:"author"`
	Format           format.Format `json:"format"`
	FileName         string        `json:"fileName"`
	TotalPages       int           `json:"totalPages"`
	CurrentPage      int           `json:"currentPage"`
	DateAdded        time.Time     `json:"dateAdded"`
	LastRead         *time.Time    `json:"lastRead"`
	FileSize         int64         `json:"fileSize"`
	Tags             []string      `json:"tags"`
	IsProcessed      bool          `json:"isProcessed"`
	ProcessingStatus string        `json:"processingStatus"`
	Error            string        `json:"error,omitempty"`
	Metadata         Metadata      `json:"metadata"`
}

// Metadata holds document properties and provenance.
type Metadata struct {
	Subject            string     `json:"subject,omitempty"`
	Creator            string     `json:"creator,omitempty"`
	Producer           string     `json:"producer,omitempty"`
	CreationDate       *time.Time `json:"creationDate,omitempty"`
	ModificationDate   *time.Time `json:"modificationDate,omitempty"`
	PageCountEstimated bool       `json:"pageCountEstimated,omitempty"`
	SHA256             string     `json:"sha256,omitempty"`
}

// Failed reports whether ingestion of the book failed.
func (b *Book) Failed() bool { return b.ProcessingStatus == StatusFailed }

// Progress returns the fraction of the book read, 0 when it has no pages.
func (b *Book) Progress() float64 {
	if b.TotalPages <= 0 {
		return 0
	}
	return float64(b.CurrentPage) / float64(b.TotalPages)
}

// Clone returns a deep copy of b.
func (b Book) Clone() Book {
	if b.Tags != nil {
		b.Tags = append([]string(nil), b.Tags...)
	}
	b.LastRead = cloneTime(b.LastRead)
	b.Metadata.CreationDate = cloneTime(b.Metadata.CreationDate)
	b.Metadata.ModificationDate = cloneTime(b.Metadata.ModificationDate)
	return b
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneAll(books []Book) []Book {
	out := make([]Book, len(books))
	for i := range books {
		out[i] = books[i].Clone()
	}
	return out
}
