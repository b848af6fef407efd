package pdfdoc

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/readshelf/internal/pdfdoc/pdftest"
)

const minimalPDF = `%PDF-1.4
1 0 obj
<<
/Type /Catalog
/Pages 2 0 R
>>
endobj
2 0 obj
<<
/Type /Pages
/Kids [3 0 R 5 0 R 6 0 R]
/Count 3
/MediaBox [0 0 595 842]
>>
endobj
3 0 obj
<<
/Type /Page
/Parent 2 0 R
/MediaBox [0 0 612 792]
>>
endobj
5 0 obj
<<
/Type /Page
/Parent 2 0 R
>>
endobj
6 0 obj
<</Type/Page/Parent 2 0 R/MediaBox [0 0 300 400]>>
endobj
4 0 obj
<<
/Title (Test Document Title)
/Author (John Doe)
/Subject (Test Subject)
/Creator (Writer)
/Producer <FEFF00500044004600460061006B0065>
/CreationDate (D:20230115103000Z)
/ModDate (D:20240201120000+02'00')
>>
endobj
xref
0 7
0000000000 65535 f
trailer
<<
/Size 7
/Root 1 0 R
/Info 4 0 R
>>
startxref
280
%%EOF`

func TestParse_MinimalDocument(t *testing.T) {
	doc, err := Parse([]byte(minimalPDF))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "1.4" {
		t.Errorf("Version = %q, want 1.4", doc.Version)
	}
	if doc.PageCount != 3 {
		t.Fatalf("PageCount = %d, want 3", doc.PageCount)
	}
	if doc.Info.Title != "Test Document Title" {
		t.Errorf("Title = %q", doc.Info.Title)
	}
	if doc.Info.Author != "John Doe" {
		t.Errorf("Author = %q", doc.Info.Author)
	}
	if doc.Info.Subject != "Test Subject" {
		t.Errorf("Subject = %q", doc.Info.Subject)
	}
	if doc.Info.Creator != "Writer" {
		t.Errorf("Creator = %q", doc.Info.Creator)
	}
	if doc.Info.Producer != "PDFFake" {
		t.Errorf("Producer = %q", doc.Info.Producer)
	}
	if doc.Info.CreationDate == nil || !doc.Info.CreationDate.Equal(time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("CreationDate = %v", doc.Info.CreationDate)
	}
	if doc.Info.ModDate == nil || !doc.Info.ModDate.Equal(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("ModDate = %v", doc.Info.ModDate)
	}
}

func TestParse_PageBoxes(t *testing.T) {
	doc, err := Parse([]byte(minimalPDF))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []Box{{612, 792}, {595, 842}, {300, 400}}
	for i, w := range want {
		got, err := doc.PageBox(i + 1)
		if err != nil {
			t.Fatalf("PageBox(%d): %v", i+1, err)
		}
		if got != w {
			t.Errorf("PageBox(%d) = %+v, want %+v", i+1, got, w)
		}
	}
	if _, err := doc.PageBox(4); err == nil {
		t.Error("PageBox(4) should fail on a 3-page document")
	}
	if _, err := doc.PageBox(0); err == nil {
		t.Error("PageBox(0) should fail")
	}
}

func TestParse_NoInfo(t *testing.T) {
	pdf := `%PDF-1.7
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
2 0 obj
<< /Type /Pages /Kids [3 0 R] /Count 1 >>
endobj
3 0 obj
<< /Type /Page /Parent 2 0 R >>
endobj
trailer
<< /Size 4 /Root 1 0 R >>
%%EOF`
	doc, err := Parse([]byte(pdf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Info.Title != "" || doc.Info.Author != "" || doc.Info.CreationDate != nil {
		t.Errorf("expected empty info, got %+v", doc.Info)
	}
	box, _ := doc.PageBox(1)
	if box != Letter {
		t.Errorf("PageBox(1) = %+v, want Letter", box)
	}
}

func TestParse_NotPDF(t *testing.T) {
	_, err := Parse([]byte(strings.Repeat("garbage ", 500)))
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

func TestParse_NoPages(t *testing.T) {
	_, err := Parse([]byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF"))
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("err = %v, want ErrNoPages", err)
	}
}

func TestParse_Encrypted(t *testing.T) {
	pdf := "%PDF-1.4\n1 0 obj\n<< /Type /Pages /Count 2 >>\nendobj\ntrailer\n<< /Root 1 0 R /Encrypt 9 0 R >>\n%%EOF"
	_, err := Parse([]byte(pdf))
	if !errors.Is(err, ErrEncrypted) {
		t.Errorf("err = %v, want ErrEncrypted", err)
	}
}

func TestParse_CountsPageObjectsWithoutTree(t *testing.T) {
	pdf := "%PDF-1.3\n1 0 obj\n<< /Type /Page >>\nendobj\n2 0 obj\n<< /Type /Page >>\nendobj\n%%EOF"
	doc, err := Parse([]byte(pdf))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", doc.PageCount)
	}
}

func TestParse_ObjectStream(t *testing.T) {
	data := pdftest.BuildObjectStream(4, "Packed Objects", "Jane Roe")
	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Version != "1.5" {
		t.Errorf("Version = %q, want 1.5", doc.Version)
	}
	if doc.PageCount != 4 {
		t.Errorf("PageCount = %d, want 4", doc.PageCount)
	}
	if doc.Info.Title != "Packed Objects" || doc.Info.Author != "Jane Roe" || doc.Info.Subject != "Testing" {
		t.Errorf("Info = %+v", doc.Info)
	}
	box, err := doc.PageBox(4)
	if err != nil {
		t.Fatal(err)
	}
	if box != Letter {
		t.Errorf("PageBox(4) = %+v, want Letter", box)
	}
}

func TestScan_CannotSeeObjectStreams(t *testing.T) {
	_, err := scan(pdftest.BuildObjectStream(2, "x", "y"))
	if !errors.Is(err, ErrNoPages) {
		t.Errorf("scan err = %v, want ErrNoPages", err)
	}
}

func TestParse_XRefTable(t *testing.T) {
	doc, err := Parse(pdftest.Build(3, "Classic", "Author Name"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.PageCount != 3 || len(doc.Pages) != 3 {
		t.Errorf("PageCount = %d, boxes = %d, want 3 and 3", doc.PageCount, len(doc.Pages))
	}
	if doc.Info.Title != "Classic" || doc.Info.Author != "Author Name" {
		t.Errorf("Info = %+v", doc.Info)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Simple Title", "Simple Title"},
		{"Title\\nWith\\nNewlines", "Title\nWith\nNewlines"},
		{"Title with \\(parens\\)", "Title with (parens)"},
		{"Path\\\\with\\\\backslash", "Path\\with\\backslash"},
		{"  Spaces  ", "Spaces"},
	}
	for _, tt := range tests {
		if got := decodePDFString(tt.input); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDecodeHexString(t *testing.T) {
	cases := []struct{ in, want string }{
		{"00480065006C006C006F", "Hello"},
		{"FEFF00480069", "Hi"},
		{"ABC", ""},
		{"", ""},
		{"0048 0069", "Hi"},
	}
	for _, c := range cases {
		if got := decodeHexString(c.in); got != c.want {
			t.Errorf("decodeHexString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHexValue(t *testing.T) {
	cases := map[byte]byte{'0': 0, '9': 9, 'a': 10, 'f': 15, 'A': 10, 'F': 15, 'G': 0}
	for c, want := range cases {
		if got := hexValue(c); got != want {
			t.Errorf("hexValue(%q) = %d, want %d", c, got, want)
		}
	}
}

func TestExtractField(t *testing.T) {
	if got := extractField(`/Title (My Great Book)`, "Title"); got != "My Great Book" {
		t.Errorf("parentheses: got %q", got)
	}
	if got := extractField(`/Title <00480069>`, "Title"); got != "Hi" {
		t.Errorf("hex: got %q", got)
	}
	if got := extractField(`/Title (Escaped \) paren)`, "Title"); got != "Escaped ) paren" {
		t.Errorf("escaped paren: got %q", got)
	}
	if got := extractField(`/Author (Someone)`, "Title"); got != "" {
		t.Errorf("missing field: got %q", got)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"D:20230115103000Z", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"D:2021", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"D:20200310", time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"D:20200310120000-05'00'", time.Date(2020, 3, 10, 17, 0, 0, 0, time.UTC), true},
		{"20200310", time.Date(2020, 3, 10, 0, 0, 0, 0, time.UTC), true},
		{"D:20201340", time.Time{}, false},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, c := range cases {
		got, ok := parseDate(c.in)
		if ok != c.ok {
			t.Errorf("parseDate(%q) ok = %v, want %v", c.in, ok, c.ok)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("parseDate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
