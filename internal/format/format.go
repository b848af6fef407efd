// Package format defines the closed set of document formats the library
// accepts and the page-count estimates used when a format cannot be parsed.
package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Format identifies a supported document type by its file extension.
type Format string

const (
	PDF  Format = "pdf"
	EPUB Format = "epub"
	CBZ  Format = "cbz"
	CBR  Format = "cbr"
)

// ErrUnsupported is returned for extensions outside the supported set.
var ErrUnsupported = errors.New("unsupported file format")

// All lists every supported format in display order.
func All() []Format {
	return []Format{PDF, EPUB, CBZ, CBR}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return slices.Contains(All(), f)
}

// Supported is the comma-separated list of supported formats.
func Supported() string {
	names := make([]string, 0, 4)
	for _, f := range All() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func (f Format) String() string { return string(f) }

// Parse normalizes s (case-insensitive, optional leading dot) into a Format.
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.Valid() {
		if f == "" {
			return "", fmt.Errorf("%w: missing extension", ErrUnsupported)
		}
		return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupported, f, Supported())
	}
	return f, nil
}

// FromFileName determines the format from the extension of name.
func FromFileName(name string) (Format, error) {
	return Parse(filepath.Ext(name))
}

// Stem returns name without directory and extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
