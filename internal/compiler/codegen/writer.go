package codegen

import (
	"bytes"
	"fmt"
	"strings"
)

// indentUnit is the indentation of one block level in emitted Rust
const indentUnit = "    "

// Writer accumulates generated Rust source line by line
type Writer struct {
	buf    *bytes.Buffer
	indent int
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Line writes a formatted line at the current indentation. An empty format
// writes a blank line.
func (w *Writer) Line(format string, args ...interface{}) {
	if format == "" {
		w.buf.WriteString("\n")
		return
	}

	for i := 0; i < w.indent; i++ {
		w.buf.WriteString(indentUnit)
	}

	if len(args) > 0 {
		w.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		w.buf.WriteString(format)
	}
	w.buf.WriteString("\n")
}

// Lines writes every line of a multi-line text at the current indentation
func (w *Writer) Lines(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		w.Line(line)
	}
}

// Open writes `header {` and indents the following lines
func (w *Writer) Open(format string, args ...interface{}) {
	w.Line(format+" {", args...)
	w.indent++
}

// Close dedents and writes the closing brace followed by suffix
func (w *Writer) Close(suffix string) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line("}" + suffix)
}

// Block writes `header { body }` with body indented
func (w *Writer) Block(header string, body func()) {
	w.Open("%s", header)
	body()
	w.Close("")
}

// String returns the accumulated source
func (w *Writer) String() string {
	return w.buf.String()
}

// Len reports the number of bytes written
func (w *Writer) Len() int {
	return w.buf.Len()
}
