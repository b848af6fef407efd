package catalog

import (
	"strings"

	"github.com/blackwell-systems/readshelf/internal/format"
)

// Filter applies all non-empty criteria and returns matching books.
type Filter struct {
	Tag    string
	Search string // matches title, author, or any tag
	Format format.Format
	Status string
}

// Apply returns the subset of books matching all non-empty filter fields.
func (f Filter) Apply(books []Book) []Book {
	out := []Book{}
	for _, b := range books {
		if f.Tag != "" && !hasTag(b, f.Tag) {
			continue
		}
		if f.Format != "" && !strings.EqualFold(string(b.Format), string(f.Format)) {
			continue
		}
		if f.Status != "" && !strings.EqualFold(b.ProcessingStatus, f.Status) {
			continue
		}
		if f.Search != "" && !matchesSearch(b, f.Search) && !tagContains(b, f.Search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ByID returns the first book with the given ID, or nil.
func ByID(books []Book, id string) *Book {
	for i := range books {
		if books[i].ID == id {
			return &books[i]
		}
	}
	return nil
}

// Append adds a book to the list and returns the updated slice.
// If a book with the same ID already exists it is replaced.
func Append(books []Book, b Book) []Book {
	for i, existing := range books {
		if existing.ID == b.ID {
			books[i] = b
			return books
		}
	}
	return append(books, b)
}

// Remove removes a book by ID. Returns the updated slice and whether a book
// was actually removed.
func Remove(books []Book, id string) ([]Book, bool) {
	for i, b := range books {
		if b.ID == id {
			return append(books[:i], books[i+1:]...), true
		}
	}
	return books, false
}

func hasTag(b Book, tag string) bool {
	for _, t := range b.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func tagContains(b Book, q string) bool {
	q = strings.ToLower(q)
	for _, t := range b.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// matchesSearch is a case-insensitive substring match over title and author.
func matchesSearch(b Book, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q)
}

// normalizeTags trims, drops empties and removes case-insensitive duplicates,
// keeping first occurrence order.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
