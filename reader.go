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
	"unicode/utf16"
)

// scope tracks the kind of container the reader is currently inside.
type scope uint8

const (
	scopeEmptyDocument scope = iota
	scopeNonemptyDocument
	scopeEmptyObject
	scopeDanglingName
	scopeNonemptyObject
	scopeEmptyArray
	scopeNonemptyArray
)

// peekKind is the internal classification of the buffered next token.
type peekKind uint8

const (
	pkNone peekKind = iota
	pkBeginObject
	pkEndObject
	pkBeginArray
	pkEndArray
	pkTrue
	pkFalse
	pkNull
	pkString
	pkName
	pkNumber
	pkEOF
)

// nonExecutePrefix neutralizes direct script inclusion when a response
// is fetched as executable code. Lenient readers skip it silently.
const nonExecutePrefix = ")]}'"

// ReaderOption configures a [StreamReader].
type ReaderOption func(*StreamReader)

// ReaderStrict makes the reader accept only the standard grammar and
// exactly one well-formed top-level value. Readers are lenient by
// default.
func ReaderStrict() ReaderOption {
	return func(s *StreamReader) {
		s.lenient = false
	}
}

// StreamReader is the text-backed [Reader]: a character-level pull
// tokenizer over an io.Reader.
//
// In its default lenient mode it accepts a superset of the standard
// grammar:
//
//   - // and /* */ and # comments
//   - single-quoted strings and names, unquoted names and string values
//   - bare top-level scalars and multiple top-level values
//   - NaN, Infinity and -Infinity number tokens
//   - the non-executable prefix ")]}'" followed by a newline
//   - semicolons in place of commas, and trailing separators
//
// Unescaped control characters inside strings are rejected in both
// modes.
type StreamReader struct {
	br      *bufio.Reader
	lenient bool

	line int // 1-based line of the next unread byte
	col  int // 1-based column of the next unread byte

	pk  peekKind
	lit string // decoded string/name, or raw number text

	stack       []scope
	pathNames   []string
	pathIndices []int
}

var _ Reader = (*StreamReader)(nil)

// NewReader returns a lenient StreamReader over r. Use [ReaderStrict] to
// restrict it to the standard grammar.
func NewReader(r io.Reader, opts ...ReaderOption) *StreamReader {
	s := &StreamReader{
		br:          bufio.NewReader(r),
		lenient:     true,
		line:        1,
		col:         1,
		stack:       []scope{scopeEmptyDocument},
		pathNames:   []string{""},
		pathIndices: []int{0},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lenient reports whether the reader accepts the permissive superset of
// the grammar.
func (s *StreamReader) Lenient() bool { return s.lenient }

func (s *StreamReader) top() scope { return s.stack[len(s.stack)-1] }

func (s *StreamReader) setTop(sc scope) { s.stack[len(s.stack)-1] = sc }

func (s *StreamReader) push(sc scope) {
	s.stack = append(s.stack, sc)
	s.pathNames = append(s.pathNames, "")
	s.pathIndices = append(s.pathIndices, 0)
}

func (s *StreamReader) pop() {
	n := len(s.stack) - 1
	s.stack = s.stack[:n]
	s.pathNames = s.pathNames[:n]
	s.pathIndices = s.pathIndices[:n]
}

// valueConsumed updates path bookkeeping after a complete value has been
// read in the current container.
func (s *StreamReader) valueConsumed() {
	if sc := s.top(); sc == scopeEmptyArray || sc == scopeNonemptyArray {
		s.pathIndices[len(s.stack)-1]++
	}
}

// Path returns a JSONPath-style description of the current position,
// e.g. "$.users[2].name".
func (s *StreamReader) Path() string {
	var b strings.Builder
	b.WriteByte('$')
	for i, sc := range s.stack {
		switch sc {
		case scopeEmptyArray, scopeNonemptyArray:
			fmt.Fprintf(&b, "[%d]", s.pathIndices[i])
		case scopeEmptyObject, scopeDanglingName, scopeNonemptyObject:
			b.WriteByte('.')
			b.WriteString(s.pathNames[i])
		}
	}
	return b.String()
}

func (s *StreamReader) syntaxError(msg string) error {
	return &SyntaxError{Msg: msg, Line: s.line, Column: s.col, Path: s.Path()}
}

// checkLenient fails unless the reader accepts the permissive grammar.
func (s *StreamReader) checkLenient(what string) error {
	if s.lenient {
		return nil
	}
	return s.syntaxError(what + " not allowed in strict mode")
}

// peekByte returns the next byte without consuming it. io.EOF is
// returned at end of stream; other failures are wrapped as transport
// errors.
func (s *StreamReader) peekByte() (byte, error) {
	bs, err := s.br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, transportErr("read", err)
	}
	return bs[0], nil
}

// advance consumes one byte and updates the position counters.
func (s *StreamReader) advance() (byte, error) {
	b, err := s.br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, transportErr("read", err)
	}
	if b == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return b, nil
}

// peekNonWhitespace skips whitespace and (in lenient mode) comments,
// then returns the next significant byte without consuming it.
func (s *StreamReader) peekNonWhitespace() (byte, error) {
	for {
		c, err := s.peekByte()
		if err != nil {
			return 0, err
		}
		switch c {
		case ' ', '\t', '\r', '\n':
			if _, err := s.advance(); err != nil {
				return 0, err
			}
		case '/':
			two, err := s.br.Peek(2)
			if err != nil || len(two) < 2 {
				return c, nil
			}
			switch two[1] {
			case '/':
				if err := s.checkLenient("comments"); err != nil {
					return 0, err
				}
				if err := s.skipToEndOfLine(); err != nil {
					return 0, err
				}
			case '*':
				if err := s.checkLenient("comments"); err != nil {
					return 0, err
				}
				if err := s.skipBlockComment(); err != nil {
					return 0, err
				}
			default:
				return c, nil
			}
		case '#':
			if err := s.checkLenient("comments"); err != nil {
				return 0, err
			}
			if err := s.skipToEndOfLine(); err != nil {
				return 0, err
			}
		default:
			return c, nil
		}
	}
}

func (s *StreamReader) skipToEndOfLine() error {
	for {
		b, err := s.advance()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}

func (s *StreamReader) skipBlockComment() error {
	// Consume the leading "/*".
	if _, err := s.advance(); err != nil {
		return err
	}
	if _, err := s.advance(); err != nil {
		return err
	}
	var prev byte
	for {
		b, err := s.advance()
		if err == io.EOF {
			return s.syntaxError("unterminated comment")
		}
		if err != nil {
			return err
		}
		if prev == '*' && b == '/' {
			return nil
		}
		prev = b
	}
}

// Peek returns the kind of the next token without consuming it.
func (s *StreamReader) Peek() (Token, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return 0, err
		}
	}
	switch s.pk {
	case pkBeginObject:
		return TokenBeginObject, nil
	case pkEndObject:
		return TokenEndObject, nil
	case pkBeginArray:
		return TokenBeginArray, nil
	case pkEndArray:
		return TokenEndArray, nil
	case pkTrue, pkFalse:
		return TokenBool, nil
	case pkNull:
		return TokenNull, nil
	case pkString:
		return TokenString, nil
	case pkName:
		return TokenName, nil
	case pkNumber:
		return TokenNumber, nil
	case pkEOF:
		return TokenEndDocument, nil
	}
	return 0, s.syntaxError("malformed document")
}

func (s *StreamReader) doPeek() error {
	switch s.top() {
	case scopeEmptyArray:
		s.setTop(scopeNonemptyArray)
		c, err := s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("unterminated array")
		}
		if err != nil {
			return err
		}
		if c == ']' {
			if _, err := s.advance(); err != nil {
				return err
			}
			s.pk = pkEndArray
			return nil
		}
		return s.peekValue(c)

	case scopeNonemptyArray:
		c, err := s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("unterminated array")
		}
		if err != nil {
			return err
		}
		switch c {
		case ']':
			if _, err := s.advance(); err != nil {
				return err
			}
			s.pk = pkEndArray
			return nil
		case ';':
			if err := s.checkLenient("semicolons"); err != nil {
				return err
			}
			fallthrough
		case ',':
			if _, err := s.advance(); err != nil {
				return err
			}
		default:
			return s.syntaxError("unterminated array")
		}
		c, err = s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("unterminated array")
		}
		if err != nil {
			return err
		}
		if c == ']' {
			// Trailing separator before the closing bracket.
			if err := s.checkLenient("trailing commas"); err != nil {
				return err
			}
			if _, err := s.advance(); err != nil {
				return err
			}
			s.pk = pkEndArray
			return nil
		}
		return s.peekValue(c)

	case scopeEmptyObject, scopeNonemptyObject:
		return s.peekObjectName()

	case scopeDanglingName:
		s.setTop(scopeNonemptyObject)
		c, err := s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("expected ':'")
		}
		if err != nil {
			return err
		}
		switch c {
		case ':':
			if _, err := s.advance(); err != nil {
				return err
			}
		case '=':
			if err := s.checkLenient("'=' separators"); err != nil {
				return err
			}
			if _, err := s.advance(); err != nil {
				return err
			}
			if next, err := s.peekByte(); err == nil && next == '>' {
				if _, err := s.advance(); err != nil {
					return err
				}
			}
		default:
			return s.syntaxError("expected ':'")
		}
		c, err = s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("expected value")
		}
		if err != nil {
			return err
		}
		return s.peekValue(c)

	case scopeEmptyDocument:
		if err := s.skipByteOrderMark(); err != nil {
			return err
		}
		if s.lenient {
			if err := s.skipNonExecutePrefix(); err != nil {
				return err
			}
		}
		s.setTop(scopeNonemptyDocument)
		c, err := s.peekNonWhitespace()
		if err == io.EOF {
			// An empty stream is the absence of a value, not an error.
			s.pk = pkEOF
			return nil
		}
		if err != nil {
			return err
		}
		return s.peekValue(c)

	case scopeNonemptyDocument:
		c, err := s.peekNonWhitespace()
		if err == io.EOF {
			s.pk = pkEOF
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.checkLenient("multiple top-level values"); err != nil {
			return err
		}
		return s.peekValue(c)
	}
	return s.syntaxError("malformed document")
}

func (s *StreamReader) peekObjectName() error {
	first := s.top() == scopeEmptyObject
	s.setTop(scopeDanglingName)

	c, err := s.peekNonWhitespace()
	if err == io.EOF {
		return s.syntaxError("unterminated object")
	}
	if err != nil {
		return err
	}
	if !first {
		switch c {
		case '}':
			if _, err := s.advance(); err != nil {
				return err
			}
			s.pk = pkEndObject
			return nil
		case ';':
			if err := s.checkLenient("semicolons"); err != nil {
				return err
			}
			fallthrough
		case ',':
			if _, err := s.advance(); err != nil {
				return err
			}
		default:
			return s.syntaxError("unterminated object")
		}
		c, err = s.peekNonWhitespace()
		if err == io.EOF {
			return s.syntaxError("unterminated object")
		}
		if err != nil {
			return err
		}
	}

	switch c {
	case '"', '\'':
		if c == '\'' {
			if err := s.checkLenient("single-quoted names"); err != nil {
				return err
			}
		}
		if _, err := s.advance(); err != nil {
			return err
		}
		lit, err := s.readQuoted(c)
		if err != nil {
			return err
		}
		s.lit = lit
		s.pk = pkName
		return nil
	case '}':
		if !first {
			// Trailing separator before the closing brace.
			if err := s.checkLenient("trailing commas"); err != nil {
				return err
			}
		}
		if _, err := s.advance(); err != nil {
			return err
		}
		s.pk = pkEndObject
		return nil
	default:
		if err := s.checkLenient("unquoted names"); err != nil {
			return err
		}
		lit, err := s.scanUnquoted()
		if err != nil {
			return err
		}
		if lit == "" {
			return s.syntaxError("expected name")
		}
		s.lit = lit
		s.pk = pkName
		return nil
	}
}

// peekValue classifies the value starting at the already-peeked byte c.
func (s *StreamReader) peekValue(c byte) error {
	switch c {
	case '{':
		if _, err := s.advance(); err != nil {
			return err
		}
		s.pk = pkBeginObject
		return nil
	case '[':
		if _, err := s.advance(); err != nil {
			return err
		}
		s.pk = pkBeginArray
		return nil
	case '"', '\'':
		if c == '\'' {
			if err := s.checkLenient("single-quoted strings"); err != nil {
				return err
			}
		}
		if _, err := s.advance(); err != nil {
			return err
		}
		lit, err := s.readQuoted(c)
		if err != nil {
			return err
		}
		s.lit = lit
		s.pk = pkString
		return nil
	}

	lit, err := s.scanUnquoted()
	if err != nil {
		return err
	}
	if lit == "" {
		return s.syntaxError("expected value")
	}

	switch {
	case lit == "true":
		s.pk = pkTrue
	case lit == "false":
		s.pk = pkFalse
	case lit == "null":
		s.pk = pkNull
	case s.lenient && strings.EqualFold(lit, "true"):
		s.pk = pkTrue
	case s.lenient && strings.EqualFold(lit, "false"):
		s.pk = pkFalse
	case s.lenient && strings.EqualFold(lit, "null"):
		s.pk = pkNull
	case lit == "NaN" || lit == "Infinity" || lit == "-Infinity":
		if err := s.checkLenient("NaN and infinities"); err != nil {
			return err
		}
		s.lit = lit
		s.pk = pkNumber
	case isNumberLiteral(lit):
		s.lit = lit
		s.pk = pkNumber
	default:
		if err := s.checkLenient("unquoted strings"); err != nil {
			return err
		}
		s.lit = lit
		s.pk = pkString
	}
	return nil
}

// isNumberLiteral validates lit against the number grammar. Leading
// zeros are tolerated, matching the permissiveness of the original
// tokenizer.
func isNumberLiteral(lit string) bool {
	i := 0
	if i < len(lit) && lit[i] == '-' {
		i++
	}
	digits := func() bool {
		start := i
		for i < len(lit) && lit[i] >= '0' && lit[i] <= '9' {
			i++
		}
		return i > start
	}
	if !digits() {
		return false
	}
	if i < len(lit) && lit[i] == '.' {
		i++
		if !digits() {
			return false
		}
	}
	if i < len(lit) && (lit[i] == 'e' || lit[i] == 'E') {
		i++
		if i < len(lit) && (lit[i] == '+' || lit[i] == '-') {
			i++
		}
		if !digits() {
			return false
		}
	}
	return i == len(lit)
}

// scanUnquoted consumes a run of literal characters, stopping at any
// structural delimiter or whitespace.
func (s *StreamReader) scanUnquoted() (string, error) {
	var b strings.Builder
	for {
		c, err := s.peekByte()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}
		switch c {
		case '{', '}', '[', ']', ':', ',', ';', '=', '"', '\'', '/', '\\', '#',
			' ', '\t', '\r', '\n', '\f':
			return b.String(), nil
		}
		if _, err := s.advance(); err != nil {
			return "", err
		}
		b.WriteByte(c)
	}
}

// readQuoted consumes a string whose opening quote has already been
// consumed, decoding escape sequences.
func (s *StreamReader) readQuoted(quote byte) (string, error) {
	var b strings.Builder
	for {
		c, err := s.advance()
		if err == io.EOF {
			return "", s.syntaxError("unterminated string")
		}
		if err != nil {
			return "", err
		}
		switch {
		case c == quote:
			return b.String(), nil
		case c == '\\':
			if err := s.readEscape(&b); err != nil {
				return "", err
			}
		case c == '\n':
			return "", s.syntaxError("unterminated string")
		case c < 0x20:
			return "", s.syntaxError("unescaped control character in string")
		default:
			b.WriteByte(c)
		}
	}
}

func (s *StreamReader) readEscape(b *strings.Builder) error {
	c, err := s.advance()
	if err == io.EOF {
		return s.syntaxError("unterminated escape sequence")
	}
	if err != nil {
		return err
	}
	switch c {
	case '"', '\\', '/':
		b.WriteByte(c)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '\'':
		if err := s.checkLenient("escaped single quotes"); err != nil {
			return err
		}
		b.WriteByte('\'')
	case '\n':
		if err := s.checkLenient("escaped newlines"); err != nil {
			return err
		}
		b.WriteByte('\n')
	case 'u':
		r, err := s.readUnicodeEscape()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			if two, perr := s.br.Peek(2); perr == nil && two[0] == '\\' && two[1] == 'u' {
				if _, err := s.advance(); err != nil {
					return err
				}
				if _, err := s.advance(); err != nil {
					return err
				}
				r2, err := s.readUnicodeEscape()
				if err != nil {
					return err
				}
				// DecodeRune yields U+FFFD for an invalid pair, the same
				// replacement WriteRune applies to a lone surrogate.
				b.WriteRune(utf16.DecodeRune(r, r2))
				return nil
			}
		}
		b.WriteRune(r)
	default:
		return s.syntaxError("invalid escape sequence")
	}
	return nil
}

func (s *StreamReader) readUnicodeEscape() (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		c, err := s.advance()
		if err == io.EOF {
			return 0, s.syntaxError("unterminated escape sequence")
		}
		if err != nil {
			return 0, err
		}
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			r |= rune(c-'A') + 10
		default:
			return 0, s.syntaxError("invalid \\u escape sequence")
		}
	}
	return r, nil
}

func (s *StreamReader) skipByteOrderMark() error {
	bs, err := s.br.Peek(3)
	if err == nil && len(bs) == 3 && bs[0] == 0xEF && bs[1] == 0xBB && bs[2] == 0xBF {
		for i := 0; i < 3; i++ {
			if _, err := s.advance(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *StreamReader) skipNonExecutePrefix() error {
	c, err := s.peekNonWhitespace()
	if err != nil || c != ')' {
		return nil // leave EOF and transport errors for the caller
	}
	bs, err := s.br.Peek(len(nonExecutePrefix))
	if err != nil || string(bs) != nonExecutePrefix {
		return nil
	}
	for range nonExecutePrefix {
		if _, err := s.advance(); err != nil {
			return err
		}
	}
	return nil
}

// BeginObject consumes the opening of an object.
func (s *StreamReader) BeginObject() error {
	if err := s.require(pkBeginObject, "BEGIN_OBJECT"); err != nil {
		return err
	}
	s.pk = pkNone
	s.push(scopeEmptyObject)
	return nil
}

// EndObject consumes the closing of an object.
func (s *StreamReader) EndObject() error {
	if err := s.require(pkEndObject, "END_OBJECT"); err != nil {
		return err
	}
	s.pk = pkNone
	s.pop()
	s.valueConsumed()
	return nil
}

// BeginArray consumes the opening of an array.
func (s *StreamReader) BeginArray() error {
	if err := s.require(pkBeginArray, "BEGIN_ARRAY"); err != nil {
		return err
	}
	s.pk = pkNone
	s.push(scopeEmptyArray)
	return nil
}

// EndArray consumes the closing of an array.
func (s *StreamReader) EndArray() error {
	if err := s.require(pkEndArray, "END_ARRAY"); err != nil {
		return err
	}
	s.pk = pkNone
	s.pop()
	s.valueConsumed()
	return nil
}

// HasNext reports whether the current object or array has another
// element, or, at the top level, whether another value follows.
func (s *StreamReader) HasNext() (bool, error) {
	t, err := s.Peek()
	if err != nil {
		return false, err
	}
	return t != TokenEndObject && t != TokenEndArray && t != TokenEndDocument, nil
}

// NextName consumes and returns the next object member name.
func (s *StreamReader) NextName() (string, error) {
	if err := s.require(pkName, "NAME"); err != nil {
		return "", err
	}
	name := s.lit
	s.pk = pkNone
	s.pathNames[len(s.stack)-1] = name
	return name, nil
}

// NextString consumes and returns the next value as a string. Numeric
// tokens are returned as their literal text.
func (s *StreamReader) NextString() (string, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return "", err
		}
	}
	if s.pk != pkString && s.pk != pkNumber {
		return "", s.typeMismatch("STRING")
	}
	v := s.lit
	s.pk = pkNone
	s.valueConsumed()
	return v, nil
}

// NextBool consumes and returns the next value as a bool.
func (s *StreamReader) NextBool() (bool, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return false, err
		}
	}
	switch s.pk {
	case pkTrue:
		s.pk = pkNone
		s.valueConsumed()
		return true, nil
	case pkFalse:
		s.pk = pkNone
		s.valueConsumed()
		return false, nil
	}
	return false, s.typeMismatch("BOOLEAN")
}

// NextNull consumes the next value, which must be a null.
func (s *StreamReader) NextNull() error {
	if err := s.require(pkNull, "NULL"); err != nil {
		return err
	}
	s.pk = pkNone
	s.valueConsumed()
	return nil
}

// NextFloat64 consumes and returns the next value as a float64. The
// non-finite values NaN, Infinity and -Infinity are only returned in
// lenient mode.
func (s *StreamReader) NextFloat64() (float64, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return 0, err
		}
	}
	if s.pk != pkNumber && s.pk != pkString {
		return 0, s.typeMismatch("NUMBER")
	}
	f, err := strconv.ParseFloat(s.lit, 64)
	if err != nil {
		return 0, s.typeMismatch("NUMBER")
	}
	if !s.lenient && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return 0, s.syntaxError("NaN and infinities not allowed in strict mode")
	}
	s.pk = pkNone
	s.valueConsumed()
	return f, nil
}

// NextInt64 consumes and returns the next value as an int64. Conversions
// that would lose precision fail with a syntax error.
func (s *StreamReader) NextInt64() (int64, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return 0, err
		}
	}
	if s.pk != pkNumber && s.pk != pkString {
		return 0, s.typeMismatch("NUMBER")
	}
	if v, err := strconv.ParseInt(s.lit, 10, 64); err == nil {
		s.pk = pkNone
		s.valueConsumed()
		return v, nil
	}
	f, err := strconv.ParseFloat(s.lit, 64)
	if err != nil {
		return 0, s.typeMismatch("NUMBER")
	}
	v := int64(f)
	if float64(v) != f {
		return 0, s.syntaxError(fmt.Sprintf("expected an int64 but was %s", s.lit))
	}
	s.pk = pkNone
	s.valueConsumed()
	return v, nil
}

// NextNumber consumes the next numeric value as its exact text.
func (s *StreamReader) NextNumber() (Number, error) {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return "", err
		}
	}
	switch s.pk {
	case pkNumber:
	case pkString:
		if _, err := strconv.ParseFloat(s.lit, 64); err != nil {
			return "", s.typeMismatch("NUMBER")
		}
	default:
		return "", s.typeMismatch("NUMBER")
	}
	n := Number(s.lit)
	s.pk = pkNone
	s.valueConsumed()
	return n, nil
}

// Skip consumes and discards the next value, including all nested
// content. At a name position, only the name is skipped.
func (s *StreamReader) Skip() error {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return err
		}
	}
	if s.pk == pkName {
		s.pk = pkNone
		s.pathNames[len(s.stack)-1] = "<skipped>"
		return nil
	}

	depth := 0
	for {
		t, err := s.Peek()
		if err != nil {
			return err
		}
		switch t {
		case TokenBeginObject:
			if err := s.BeginObject(); err != nil {
				return err
			}
			depth++
		case TokenBeginArray:
			if err := s.BeginArray(); err != nil {
				return err
			}
			depth++
		case TokenEndObject:
			if depth == 0 {
				return s.syntaxError("no value to skip")
			}
			if err := s.EndObject(); err != nil {
				return err
			}
			depth--
		case TokenEndArray:
			if depth == 0 {
				return s.syntaxError("no value to skip")
			}
			if err := s.EndArray(); err != nil {
				return err
			}
			depth--
		case TokenName:
			s.pk = pkNone
			s.pathNames[len(s.stack)-1] = "<skipped>"
		case TokenEndDocument:
			return s.syntaxError("no value to skip")
		default:
			s.pk = pkNone
			s.valueConsumed()
		}
		if depth == 0 {
			return nil
		}
	}
}

func (s *StreamReader) require(want peekKind, name string) error {
	if s.pk == pkNone {
		if err := s.doPeek(); err != nil {
			return err
		}
	}
	if s.pk != want {
		return s.typeMismatch(name)
	}
	return nil
}

func (s *StreamReader) typeMismatch(want string) error {
	t, _ := s.Peek()
	return s.syntaxError(fmt.Sprintf("expected %s but was %s", want, t))
}
