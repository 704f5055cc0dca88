// Package markup is a streaming writer for nested, indented markup with fixed
// precision number formatting. It knows nothing about the elements it writes.
package markup

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrUnclosed is returned by Flush when elements are still open.
var ErrUnclosed = errors.New("markup: unclosed elements")

const indentWidth = 4

// Attr is one name="value" pair on an element.
type Attr struct {
	Name  string
	Value string
}

// A is shorthand for an Attr.
func A(name, value string) Attr {
	return Attr{Name: name, Value: value}
}

// Writer writes one element per line, indented by nesting depth.
//
// Depth is a plain counter: Open increments it and Close decrements it.
// Closing with nothing open is a programming error and panics. The first
// write error is kept and every later call is a no-op; check Err or Flush.
type Writer struct {
	bw    *bufio.Writer
	depth int
	err   error
}

// NewWriter returns a Writer on top of w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// Header writes the XML declaration followed by a comment line.
func (w *Writer) Header(comment string) {
	w.Line(`<?xml version="1.0" encoding="UTF-8"?>`)
	if comment != "" {
		w.Line("<!-- " + strings.ReplaceAll(comment, "--", "- -") + " -->")
	}
}

// Open writes an opening tag and nests one level deeper.
func (w *Writer) Open(tag string, attrs ...Attr) {
	w.Line("<" + tag + formatAttrs(attrs) + ">")
	w.depth++
}

// Close leaves one nesting level and writes the closing tag.
func (w *Writer) Close(tag string) {
	if w.depth == 0 {
		panic(fmt.Sprintf("markup: Close(%q) with no open element", tag))
	}
	w.depth--
	w.Line("</" + tag + ">")
}

// Element writes a self-closing element at the current depth.
func (w *Writer) Element(tag string, attrs ...Attr) {
	w.Line("<" + tag + formatAttrs(attrs) + " />")
}

// Parameter writes <parameter name="..." value="..." />.
func (w *Writer) Parameter(name, value string) {
	w.Element("parameter", A("name", name), A("value", value))
}

// Line writes raw text at the current depth.
func (w *Writer) Line(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.bw.WriteString(strings.Repeat(" ", w.depth*indentWidth)); err != nil {
		w.err = err
		return
	}
	if _, err := w.bw.WriteString(s); err != nil {
		w.err = err
		return
	}
	w.err = w.bw.WriteByte('\n')
}

// Depth returns the current nesting depth.
func (w *Writer) Depth() int {
	return w.depth
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

// Flush writes buffered output. It fails if a write failed earlier or if
// elements are still open.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.bw.Flush(); err != nil {
		w.err = err
		return err
	}
	if w.depth != 0 {
		return fmt.Errorf("%w: depth %d", ErrUnclosed, w.depth)
	}
	return nil
}

func formatAttrs(attrs []Attr) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(Escape(a.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// Escape escapes s for use in an attribute value.
func Escape(s string) string {
	if !strings.ContainsAny(s, "<>&'\"\t\n\r") {
		return s
	}
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Fixed formats values with prec decimals, separated by single spaces.
func Fixed(prec int, values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', prec, 64)
	}
	return strings.Join(parts, " ")
}

// Float formats a scalar parameter value with the fewest digits needed.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Int formats an integer parameter value.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Bool formats a boolean parameter value as true or false.
func Bool(v bool) string {
	return strconv.FormatBool(v)
}
