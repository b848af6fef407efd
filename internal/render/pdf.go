package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/vincent-petithory/dataurl"

	"github.com/blackwell-systems/readshelf/internal/format"
	"github.com/blackwell-systems/readshelf/internal/pdfdoc"
)

// Preview bounds in pixels. Pages are scaled down to fit, never up.
const (
	maxPreviewWidth  = 800
	maxPreviewHeight = 1000
)

var (
	borderColor = color.NRGBA{0xdd, 0xdd, 0xdd, 0xff}
	headerColor = color.NRGBA{0xf3, 0xf4, 0xf6, 0xff}
	lineColor   = color.NRGBA{0xcc, 0xcc, 0xcc, 0xff}
)

type pdfStrategy struct{}

func (pdfStrategy) Render(ctx context.Context, data []byte, page int) *Content {
	if err := ctx.Err(); err != nil {
		return ErrorContent(format.PDF, page, err)
	}
	doc, err := pdfdoc.Parse(data)
	if err != nil {
		return ErrorContent(format.PDF, page, fmt.Errorf("reading pdf: %w", err))
	}
	box, err := doc.PageBox(page)
	if err != nil {
		return ErrorContent(format.PDF, page, err)
	}

	w, h := previewSize(box)
	png, err := previewPNG(w, h)
	if err != nil {
		return ErrorContent(format.PDF, page, fmt.Errorf("encoding preview: %w", err))
	}
	imageURL := dataurl.New(png, "image/png").String()
	text := extractedText(page)

	var b strings.Builder
	b.WriteString(`<div class="pdf-page">`)
	fmt.Fprintf(&b, `<img class="pdf-page-image" src="%s" alt="Page %d" width="%d" height="%d">`, imageURL, page, w, h)
	b.WriteString(`<div class="pdf-page-text">`)
	for _, para := range strings.Split(text, "\n\n") {
		fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(para))
	}
	fmt.Fprintf(&b, `<p class="page-size">Original size: %d x %d</p>`, round(box.Width), round(box.Height))
	b.WriteString(`</div></div>`)

	return &Content{
		Type:       TypePDF,
		PageNumber: page,
		Format:     format.PDF,
		HTML:       sanitize(b.String()),
		ImageURL:   imageURL,
		Text:       text,
		Width:      w,
		Height:     h,
	}
}

// previewSize scales box to fit the preview bounds.
func previewSize(box pdfdoc.Box) (int, int) {
	scale := math.Min(math.Min(maxPreviewWidth/box.Width, maxPreviewHeight/box.Height), 1)
	w, h := round(box.Width*scale), round(box.Height*scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// previewPNG draws a white page with a border, a header band and grey
// bars standing in for lines of text.
func previewPNG(w, h int) ([]byte, error) {
	img := imaging.New(w, h, borderColor)
	if w > 4 && h > 4 {
		img = imaging.Paste(img, imaging.New(w-4, h-4, color.White), image.Pt(2, 2))
	}
	if w > 4 && h > 64 {
		img = imaging.Paste(img, imaging.New(w-4, 60, headerColor), image.Pt(2, 2))
	}
	for y, i := 120, 0; y+6 < h-20 && i < 14; y, i = y+18, i+1 {
		lw := (w - 40) * (10 - i%4) / 10
		if lw < 1 {
			break
		}
		img = imaging.Paste(img, imaging.New(lw, 6, lineColor), image.Pt(20, y))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func extractedText(page int) string {
	return fmt.Sprintf("Text content from page %d would appear here.\n\n"+
		"Text extraction is not available for this document.", page)
}

func round(f float64) int { return int(math.Round(f)) }
