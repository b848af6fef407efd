// Package pdftest builds small, valid PDF files for tests.
package pdftest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// Build returns an uncompressed PDF 1.4 file with a classic xref table,
// n Letter-sized pages and an Info dictionary with title, author and the
// subject "Testing".
func Build(n int, title, author string) []byte {
	bodies := documentObjects(n, title, author)

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(bodies))
	for i, body := range bodies {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(bodies)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(bodies)+1, len(bodies), xref)
	return b.Bytes()
}

// BuildObjectStream returns the same document as Build, but as PDF 1.5
// with every object except the streams packed into an object stream and a
// cross-reference stream instead of an xref table.
func BuildObjectStream(n int, title, author string) []byte {
	bodies := documentObjects(n, title, author)
	k := len(bodies)
	objStm, xrefStm := k+1, k+2

	var header, content strings.Builder
	for i, body := range bodies {
		fmt.Fprintf(&header, "%d %d ", i+1, content.Len())
		content.WriteString(body)
		content.WriteString("\n")
	}
	packed := header.String() + content.String()

	var b bytes.Buffer
	b.WriteString("%PDF-1.5\n%\xe2\xe3\xcf\xd3\n")

	objStmOffset := b.Len()
	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /ObjStm /N %d /First %d /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		objStm, k, header.Len(), len(packed), packed)

	xrefOffset := b.Len()
	var entries bytes.Buffer
	entry := func(typ byte, field2 uint32, field3 uint16) {
		entries.WriteByte(typ)
		binary.Write(&entries, binary.BigEndian, field2) //nolint:errcheck
		binary.Write(&entries, binary.BigEndian, field3) //nolint:errcheck
	}
	entry(0, 0, 0xffff)
	for i := range bodies {
		entry(2, uint32(objStm), uint16(i))
	}
	entry(1, uint32(objStmOffset), 0)
	entry(1, uint32(xrefOffset), 0)

	fmt.Fprintf(&b, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 4 2] /Root 1 0 R /Info %d 0 R /Length %d >>\nstream\n",
		xrefStm, xrefStm+1, k, entries.Len())
	b.Write(entries.Bytes())
	fmt.Fprintf(&b, "\nendstream\nendobj\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return b.Bytes()
}

// documentObjects returns the bodies of objects 1..n+3: catalog, page
// tree, n pages and the Info dictionary.
func documentObjects(n int, title, author string) []string {
	kids := make([]string, n)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	bodies := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), n),
	}
	for i := 0; i < n; i++ {
		bodies = append(bodies, "<< /Type /Page /Parent 2 0 R /Resources << >> >>")
	}
	return append(bodies, fmt.Sprintf("<< /Title (%s) /Author (%s) /Subject (Testing) >>", title, author))
}
