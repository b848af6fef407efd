// Package pdfdoc reads the document structure of a PDF held in memory: page
// count, per-page media boxes and the Info dictionary.
//
// Documents are read through pdfcpu, which follows cross-reference tables
// and streams and unpacks object streams. Files pdfcpu rejects, usually
// ones with a damaged or missing xref, are scanned object by object
// instead. Callers treat a parse error as "structure unknown" rather than
// as a corrupt upload.
package pdfdoc

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrNotPDF is returned when the %PDF- header is missing.
	ErrNotPDF = errors.New("missing %PDF header")
	// ErrEncrypted is returned for documents with an /Encrypt dictionary.
	ErrEncrypted = errors.New("document is encrypted")
	// ErrNoPages is returned when no page tree could be located.
	ErrNoPages = errors.New("no pages found")
)

// Letter is the media box assumed when a page declares none.
var Letter = Box{Width: 612, Height: 792}

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

// Box is a page size in PDF points.
type Box struct {
	Width  float64
	Height float64
}

// Info holds the document information dictionary.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Creator      string
	Producer     string
	CreationDate *time.Time
	ModDate      *time.Time
}

// Document is the parsed structure of a PDF.
type Document struct {
	Version   string
	PageCount int
	// Pages holds one media box per page object found, in file order.
	// It may be shorter than PageCount when the page tree is compressed.
	Pages []Box
	Info  Info
}

var (
	objectRe   = regexp.MustCompile(`(?s)(\d+)\s+(\d+)\s+obj\b(.*?)\bendobj`)
	pageTypeRe = regexp.MustCompile(`/Type\s*/Page(?:[^a-zA-Z]|$)`)
	pagesRe    = regexp.MustCompile(`/Type\s*/Pages\b`)
	countRe    = regexp.MustCompile(`/Count\s+(\d+)`)
	mediaBoxRe = regexp.MustCompile(`/MediaBox\s*\[\s*(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)\s*\]`)
	infoRefRe  = regexp.MustCompile(`/Info\s+(\d+)\s+(\d+)\s+R`)
	encryptRe  = regexp.MustCompile(`trailer[^%]*?/Encrypt\s`)
	versionRe  = regexp.MustCompile(`%PDF-(\d\.\d)`)
)

// Parse reads the structure of the PDF in data.
func Parse(data []byte) (*Document, error) {
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	m := versionRe.FindSubmatch(head)
	if m == nil {
		return nil, ErrNotPDF
	}
	version := string(m[1])

	doc, err := read(data)
	if err == nil {
		doc.Version = version
		return doc, nil
	}
	if errors.Is(err, ErrEncrypted) {
		return nil, err
	}

	doc, scanErr := scan(data)
	if scanErr != nil {
		return nil, fmt.Errorf("%w (reader: %v)", scanErr, err)
	}
	doc.Version = version
	return doc, nil
}

// scan finds objects by pattern matching over the raw file. It cannot see
// objects packed into object streams.
func scan(data []byte) (*Document, error) {
	doc := &Document{}
	if encryptRe.Match(data) {
		return nil, ErrEncrypted
	}

	objects := indexObjects(data)

	var inherited *Box
	maxCount := 0
	for _, obj := range objects {
		body := obj.body
		switch {
		case pagesRe.Match(body):
			if c := countRe.FindSubmatch(body); c != nil {
				if n, err := strconv.Atoi(string(c[1])); err == nil && n > maxCount {
					maxCount = n
					if b, ok := mediaBox(body); ok {
						inherited = &b
					}
				}
			}
		case pageTypeRe.Match(body):
			doc.Pages = append(doc.Pages, pageBox(body))
		}
	}

	if inherited != nil {
		for i := range doc.Pages {
			if doc.Pages[i] == (Box{}) {
				doc.Pages[i] = *inherited
			}
		}
	}
	for i := range doc.Pages {
		if doc.Pages[i] == (Box{}) {
			doc.Pages[i] = Letter
		}
	}

	doc.PageCount = maxCount
	if doc.PageCount == 0 {
		doc.PageCount = len(doc.Pages)
	}
	if doc.PageCount == 0 {
		return nil, ErrNoPages
	}

	doc.Info = readInfo(data, objects)
	return doc, nil
}

// PageBox returns the media box of page n (1-based), falling back to the
// first known box, then Letter.
func (d *Document) PageBox(n int) (Box, error) {
	if n < 1 || n > d.PageCount {
		return Box{}, fmt.Errorf("page %d does not exist (document has %d pages)", n, d.PageCount)
	}
	if n <= len(d.Pages) {
		return d.Pages[n-1], nil
	}
	if len(d.Pages) > 0 {
		return d.Pages[0], nil
	}
	return Letter, nil
}

type object struct {
	num  string
	gen  string
	body []byte
}

func indexObjects(data []byte) []object {
	matches := objectRe.FindAllSubmatch(data, -1)
	objs := make([]object, 0, len(matches))
	for _, m := range matches {
		objs = append(objs, object{num: string(m[1]), gen: string(m[2]), body: m[3]})
	}
	return objs
}

// pageBox returns the page's own media box, or the zero Box when the page
// inherits it from the tree.
func pageBox(body []byte) Box {
	b, _ := mediaBox(body)
	return b
}

func mediaBox(body []byte) (Box, bool) {
	m := mediaBoxRe.FindSubmatch(body)
	if m == nil {
		return Box{}, false
	}
	var v [4]float64
	for i := range v {
		f, err := strconv.ParseFloat(string(m[i+1]), 64)
		if err != nil {
			return Box{}, false
		}
		v[i] = f
	}
	w, h := v[2]-v[0], v[3]-v[1]
	if w <= 0 || h <= 0 {
		return Box{}, false
	}
	return Box{Width: w, Height: h}, true
}

// readInfo locates the Info dictionary through the trailer reference and
// falls back to scanning the whole file.
func readInfo(data []byte, objects []object) Info {
	text := data
	if refs := infoRefRe.FindAllSubmatch(data, -1); len(refs) > 0 {
		// The last trailer wins in incrementally updated files.
		ref := refs[len(refs)-1]
		for i := len(objects) - 1; i >= 0; i-- {
			if objects[i].num == string(ref[1]) && objects[i].gen == string(ref[2]) {
				text = objects[i].body
				break
			}
		}
	}
	s := string(text)
	info := Info{
		Title:    extractField(s, "Title"),
		Author:   extractField(s, "Author"),
		Subject:  extractField(s, "Subject"),
		Creator:  extractField(s, "Creator"),
		Producer: extractField(s, "Producer"),
	}
	if t, ok := parseDate(extractField(s, "CreationDate")); ok {
		info.CreationDate = &t
	}
	if t, ok := parseDate(extractField(s, "ModDate")); ok {
		info.ModDate = &t
	}
	return info
}
