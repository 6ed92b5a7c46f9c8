// Package highlight renders tool module sources for the terminal.
package highlight

import (
	"bytes"
	"io"

	"github.com/alecthomas/chroma/v2/quick"
)

const (
	lexer     = "c"
	formatter = "terminal256"

	// DefaultStyle is the chroma style used by Write.
	DefaultStyle = "monokai"
)

// Write copies src to w, with ANSI syntax highlighting when color is true.
// If highlighting fails the plain source is written instead.
func Write(w io.Writer, src []byte, color bool) error {
	if !color {
		_, err := w.Write(src)
		return err
	}

	var buf bytes.Buffer
	if err := quick.Highlight(&buf, string(src), lexer, formatter, DefaultStyle); err != nil {
		_, err := w.Write(src)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
