// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type writeScope uint8

const (
	wEmptyDocument writeScope = iota
	wNonemptyDocument
	wEmptyObject
	wDanglingName
	wNonemptyObject
	wEmptyArray
	wNonemptyArray
)

// replacements maps the characters that must always be escaped. Entries
// for the control range are filled in by init.
var replacements [128]string

// htmlReplacements additionally escapes characters that are dangerous
// when the output is embedded in markup or script contexts.
var htmlReplacements [128]string

func init() {
	for c := 0; c < 0x20; c++ {
		replacements[c] = fmt.Sprintf(`\u%04x`, c)
	}
	replacements['"'] = `\"`
	replacements['\\'] = `\\`
	replacements['\t'] = `\t`
	replacements['\b'] = `\b`
	replacements['\n'] = `\n`
	replacements['\r'] = `\r`
	replacements['\f'] = `\f`

	htmlReplacements = replacements
	htmlReplacements['<'] = "\\u003c"
	htmlReplacements['>'] = "\\u003e"
	htmlReplacements['&'] = "\\u0026"
	htmlReplacements['='] = "\\u003d"
	htmlReplacements['\''] = "\\u0027"
}

// WriterOption configures a [StreamWriter].
type WriterOption func(*StreamWriter)

// WriterStrict restricts the writer to exactly one top-level value.
func WriterStrict() WriterOption {
	return func(w *StreamWriter) {
		w.lenient = false
	}
}

// WriterIndent enables pretty-printing with the given per-level indent.
// An empty indent restores compact output.
func WriterIndent(indent string) WriterOption {
	return func(w *StreamWriter) {
		w.indent = indent
		if indent == "" {
			w.separator = ":"
		} else {
			w.separator = ": "
		}
	}
}

// WriterNoHTMLEscape disables the HTML-safe escaping of '<', '>', '&',
// '=' and single quotes. Escaping is on by default to guard against
// cross-context injection when the output is embedded in markup.
func WriterNoHTMLEscape() WriterOption {
	return func(w *StreamWriter) {
		w.htmlSafe = false
	}
}

// WriterSerializeNulls makes WriteNull emit a null member instead of
// eliding the pending name. Nulls are elided by default.
func WriterSerializeNulls() WriterOption {
	return func(w *StreamWriter) {
		w.serializeNulls = true
	}
}

// WriterAllowNonFinite permits writing NaN, Infinity and -Infinity as
// bare identifiers. This produces non-standard output that only lenient
// readers accept.
func WriterAllowNonFinite() WriterOption {
	return func(w *StreamWriter) {
		w.allowNonFinite = true
	}
}

// StreamWriter is the text-backed [Writer]: it emits a syntactically
// valid document to an io.Writer, validating that Begin/End/Name/value
// calls occur in a grammatically valid sequence and failing fast with
// [ErrWriterState] on misuse.
//
// Call Flush after the document is complete to drain the internal
// buffer.
type StreamWriter struct {
	bw             *bufio.Writer
	stack          []writeScope
	deferredName   *string
	indent         string
	separator      string
	lenient        bool
	htmlSafe       bool
	serializeNulls bool
	allowNonFinite bool
}

var _ Writer = (*StreamWriter)(nil)

// NewWriter returns a StreamWriter over w: compact output, HTML-safe
// escaping on, null members elided, non-finite numbers rejected.
func NewWriter(w io.Writer, opts ...WriterOption) *StreamWriter {
	sw := &StreamWriter{
		bw:        bufio.NewWriter(w),
		stack:     []writeScope{wEmptyDocument},
		separator: ":",
		lenient:   true,
		htmlSafe:  true,
	}
	for _, opt := range opts {
		opt(sw)
	}
	return sw
}

// Flush writes any buffered output to the underlying writer.
func (w *StreamWriter) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return transportErr("write", err)
	}
	return nil
}

// SerializeNulls reports whether null members are emitted rather than
// elided.
func (w *StreamWriter) SerializeNulls() bool { return w.serializeNulls }

func (w *StreamWriter) top() writeScope { return w.stack[len(w.stack)-1] }

func (w *StreamWriter) setTop(sc writeScope) { w.stack[len(w.stack)-1] = sc }

func (w *StreamWriter) write(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return transportErr("write", err)
	}
	return nil
}

func (w *StreamWriter) newline() error {
	if w.indent == "" {
		return nil
	}
	if err := w.write("\n"); err != nil {
		return err
	}
	for i := 1; i < len(w.stack); i++ {
		if err := w.write(w.indent); err != nil {
			return err
		}
	}
	return nil
}

// beforeValue prepares for a value: separators, indentation, and state
// transitions. A value directly inside an object without a pending name
// is a usage error.
func (w *StreamWriter) beforeValue() error {
	switch w.top() {
	case wEmptyDocument:
		w.setTop(wNonemptyDocument)
		return nil
	case wNonemptyDocument:
		if !w.lenient {
			return fmt.Errorf("%w: multiple top-level values", ErrWriterState)
		}
		return nil
	case wEmptyArray:
		w.setTop(wNonemptyArray)
		return w.newline()
	case wNonemptyArray:
		if err := w.write(","); err != nil {
			return err
		}
		return w.newline()
	case wDanglingName:
		w.setTop(wNonemptyObject)
		return w.write(w.separator)
	default:
		return fmt.Errorf("%w: value without a name inside an object", ErrWriterState)
	}
}

// writeDeferredName emits the name held back by Name, once its value is
// known to be emitted.
func (w *StreamWriter) writeDeferredName() error {
	if w.deferredName == nil {
		return nil
	}
	if w.top() == wNonemptyObject {
		if err := w.write(","); err != nil {
			return err
		}
	}
	if err := w.newline(); err != nil {
		return err
	}
	w.setTop(wDanglingName)
	name := *w.deferredName
	w.deferredName = nil
	return w.writeQuoted(name)
}

// Name writes an object member name. The name is held back until its
// value arrives so that an elided null drops the name along with it.
func (w *StreamWriter) Name(name string) error {
	if w.deferredName != nil {
		return fmt.Errorf("%w: two names without a value", ErrWriterState)
	}
	if sc := w.top(); sc != wEmptyObject && sc != wNonemptyObject {
		return fmt.Errorf("%w: name outside an object", ErrWriterState)
	}
	w.deferredName = &name
	return nil
}

// BeginObject opens an object.
func (w *StreamWriter) BeginObject() error {
	return w.open(wEmptyObject, "{")
}

// EndObject closes the current object.
func (w *StreamWriter) EndObject() error {
	return w.close(wEmptyObject, wNonemptyObject, "}")
}

// BeginArray opens an array.
func (w *StreamWriter) BeginArray() error {
	return w.open(wEmptyArray, "[")
}

// EndArray closes the current array.
func (w *StreamWriter) EndArray() error {
	return w.close(wEmptyArray, wNonemptyArray, "]")
}

func (w *StreamWriter) open(sc writeScope, bracket string) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stack = append(w.stack, sc)
	return w.write(bracket)
}

func (w *StreamWriter) close(empty, nonempty writeScope, bracket string) error {
	sc := w.top()
	if sc != empty && sc != nonempty {
		return fmt.Errorf("%w: unmatched %s", ErrWriterState, bracket)
	}
	if w.deferredName != nil {
		return fmt.Errorf("%w: dangling name %q", ErrWriterState, *w.deferredName)
	}
	w.stack = w.stack[:len(w.stack)-1]
	if sc == nonempty {
		if err := w.newline(); err != nil {
			return err
		}
	}
	return w.write(bracket)
}

// WriteString writes a string value.
func (w *StreamWriter) WriteString(s string) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.writeQuoted(s)
}

// WriteBool writes a boolean value.
func (w *StreamWriter) WriteBool(b bool) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	if b {
		return w.write("true")
	}
	return w.write("false")
}

// WriteInt64 writes an integer value.
func (w *StreamWriter) WriteInt64(v int64) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.write(strconv.FormatInt(v, 10))
}

// WriteUint64 writes an unsigned integer value.
func (w *StreamWriter) WriteUint64(v uint64) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.write(strconv.FormatUint(v, 10))
}

// WriteFloat64 writes a floating point value. NaN and the infinities are
// rejected unless [WriterAllowNonFinite] was applied.
func (w *StreamWriter) WriteFloat64(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if !w.allowNonFinite {
			return fmt.Errorf("%w: %v", ErrNonFiniteNumber, v)
		}
		return w.writeNonFinite(v)
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.write(strconv.FormatFloat(v, 'g', -1, 64))
}

func (w *StreamWriter) writeNonFinite(v float64) error {
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	switch {
	case math.IsNaN(v):
		return w.write("NaN")
	case math.IsInf(v, 1):
		return w.write("Infinity")
	default:
		return w.write("-Infinity")
	}
}

// WriteNumber writes a numeric value from its exact text.
func (w *StreamWriter) WriteNumber(n Number) error {
	lit := string(n)
	if lit == "NaN" || lit == "Infinity" || lit == "-Infinity" {
		if !w.allowNonFinite {
			return fmt.Errorf("%w: %s", ErrNonFiniteNumber, lit)
		}
	} else if !isNumberLiteral(lit) {
		return fmt.Errorf("not a valid number: %q", lit)
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.write(lit)
}

// WriteNull writes a null value, or drops the pending name entirely when
// null serialization is off.
func (w *StreamWriter) WriteNull() error {
	if w.deferredName != nil && !w.serializeNulls {
		w.deferredName = nil
		return nil
	}
	if err := w.writeDeferredName(); err != nil {
		return err
	}
	if err := w.beforeValue(); err != nil {
		return err
	}
	return w.write("null")
}

func (w *StreamWriter) writeQuoted(s string) error {
	table := &replacements
	if w.htmlSafe {
		table = &htmlReplacements
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if r := table[c]; r != "" {
				b.WriteString(r)
			} else {
				b.WriteByte(c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			// Undecodable input must not leak through as invalid UTF-8.
			b.WriteString(`\ufffd`)
		case r == '\u2028' || r == '\u2029':
			// Line and paragraph separators terminate statements when
			// the output lands inside script source.
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
	return w.write(b.String())
}
