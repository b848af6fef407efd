package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// pdfcpu otherwise creates a config dir under the user's home.
	api.DisableConfigDir()
}

var infoKeys = []string{"Title", "Author", "Subject", "Creator", "Producer", "CreationDate", "ModDate"}

// read parses data with pdfcpu. A panic inside the reader on a malformed
// file is returned as an error.
func read(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if ctx.Encrypt != nil {
		return nil, ErrEncrypted
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}
	if ctx.PageCount == 0 {
		return nil, ErrNoPages
	}

	dims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("reading page sizes: %w", err)
	}
	doc = &Document{PageCount: ctx.PageCount, Pages: make([]Box, 0, len(dims))}
	for _, d := range dims {
		b := Box{Width: d.Width, Height: d.Height}
		if b.Width <= 0 || b.Height <= 0 {
			b = Letter
		}
		doc.Pages = append(doc.Pages, b)
	}

	doc.Info = readInfoDict(ctx)
	return doc, nil
}

// readInfoDict decodes the trailer's Info dictionary. Missing or malformed
// entries are left empty.
func readInfoDict(ctx *model.Context) Info {
	var info Info
	if ctx.Info == nil {
		return info
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return info
	}

	values := make(map[string]string, len(infoKeys))
	for _, key := range infoKeys {
		obj, ok := d[key]
		if !ok {
			continue
		}
		if obj, err = ctx.Dereference(obj); err != nil {
			continue
		}
		switch v := obj.(type) {
		case types.StringLiteral:
			values[key] = decodePDFString(string(v))
		case types.HexLiteral:
			values[key] = strings.TrimSpace(decodeHexString(string(v)))
		}
	}

	info = Info{
		Title:    values["Title"],
		Author:   values["Author"],
		Subject:  values["Subject"],
		Creator:  values["Creator"],
		Producer: values["Producer"],
	}
	if t, ok := parseDate(values["CreationDate"]); ok {
		info.CreationDate = &t
	}
	if t, ok := parseDate(values["ModDate"]); ok {
		info.ModDate = &t
	}
	return info
}
