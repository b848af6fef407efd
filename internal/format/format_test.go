package format_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/readshelf/internal/format"
)

func TestFromFileName(t *testing.T) {
	cases := []struct {
		name string
		want format.Format
	}{
		{"book.pdf", format.PDF},
		{"BOOK.PDF", format.PDF},
		{"novel.Epub", format.EPUB},
		{"/some/dir/comic.cbz", format.CBZ},
		{"archive.tar.cbr", format.CBR},
	}
	for _, c := range cases {
		got, err := format.FromFileName(c.name)
		if err != nil {
			t.Errorf("FromFileName(%q): %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("FromFileName(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFromFileName_Unsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "README", "", "book.pdf.zip", "mobi."} {
		_, err := format.FromFileName(name)
		if !errors.Is(err, format.ErrUnsupported) {
			t.Errorf("FromFileName(%q) err = %v, want ErrUnsupported", name, err)
		}
	}
}

func TestStem(t *testing.T) {
	cases := []struct{ in, want string }{
		{"My Book.pdf", "My Book"},
		{"/tmp/a.b.epub", "a.b"},
		{"noext", "noext"},
	}
	for _, c := range cases {
		if got := format.Stem(c.in); got != c.want {
			t.Errorf("Stem(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEstimatePageCount(t *testing.T) {
	const mb = 1024 * 1024
	cases := []struct {
		size int64
		f    format.Format
		want int
	}{
		{0, format.PDF, 1},
		{1, format.PDF, 1},
		{100 * 1024, format.PDF, 1},
		{2 * mb, format.PDF, 20},
		{mb + mb/2, format.PDF, 15},
		{mb, format.EPUB, 20},
		{50 * 1024, format.EPUB, 1},
		{3 * mb, format.EPUB, 60},
		{mb, format.CBZ, 5},
		{10 * mb, format.CBR, 50},
		{200 * 1024, format.CBZ, 1},
		{mb, format.Format("mobi"), 1},
	}
	for _, c := range cases {
		got := format.EstimatePageCount(c.size, c.f)
		if got != c.want {
			t.Errorf("EstimatePageCount(%d, %s) = %d, want %d", c.size, c.f, got, c.want)
		}
	}
}

func TestEstimatePageCount_Deterministic(t *testing.T) {
	for _, f := range format.All() {
		a := format.EstimatePageCount(7_654_321, f)
		b := format.EstimatePageCount(7_654_321, f)
		if a != b {
			t.Errorf("%s: estimate not stable: %d vs %d", f, a, b)
		}
	}
}

func TestParse_ErrorListsSupported(t *testing.T) {
	_, err := format.Parse("docx")
	if err == nil {
		t.Fatal("expected error for docx")
	}
	for _, f := range format.All() {
		if !strings.Contains(err.Error(), string(f)) {
			t.Errorf("error %q does not mention %s", err, f)
		}
	}
}
