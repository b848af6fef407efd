package util

import (
	"io"
	"os"

	"github.com/fatih/color"
)

// IsTerminal reports whether w is a character device such as a terminal.
// Buffers and pipes are not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// InitColor turns colored output off when asked to or when out is not a
// terminal.
func InitColor(noColor bool, out io.Writer) {
	color.NoColor = noColor || !IsTerminal(out)
}
