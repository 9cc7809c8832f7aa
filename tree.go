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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TreeWriter is the [Writer] that produces a [Node] instead of text.
// Adapters cannot tell it apart from a [StreamWriter], which is what
// makes [Engine.ToTree] equivalent to serialize-then-parse without the
// text detour.
type TreeWriter struct {
	// SerializeNulls controls whether a null member is stored or the
	// pending name is dropped, mirroring the stream writer's default.
	SerializeNulls bool

	stack   []Node
	pending *string
	result  Node
	done    bool
}

var _ Writer = (*TreeWriter)(nil)

// NewTreeWriter returns an empty TreeWriter.
func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

// Result returns the tree written so far. An empty writer returns Null.
func (t *TreeWriter) Result() Node {
	if t.result == nil {
		return Null
	}
	return t.result
}

func (t *TreeWriter) value(n Node) error {
	if len(t.stack) == 0 {
		if t.done {
			return fmt.Errorf("%w: multiple top-level values", ErrWriterState)
		}
		t.result = n
		t.done = true
		return nil
	}
	switch top := t.stack[len(t.stack)-1].(type) {
	case *ObjectNode:
		if t.pending == nil {
			return fmt.Errorf("%w: value without a name inside an object", ErrWriterState)
		}
		top.Set(*t.pending, n)
		t.pending = nil
	case *ArrayNode:
		top.Append(n)
	}
	return nil
}

// Name records an object member name.
func (t *TreeWriter) Name(name string) error {
	if t.pending != nil {
		return fmt.Errorf("%w: two names without a value", ErrWriterState)
	}
	if len(t.stack) == 0 {
		return fmt.Errorf("%w: name outside an object", ErrWriterState)
	}
	if _, ok := t.stack[len(t.stack)-1].(*ObjectNode); !ok {
		return fmt.Errorf("%w: name outside an object", ErrWriterState)
	}
	t.pending = &name
	return nil
}

// BeginObject opens an object.
func (t *TreeWriter) BeginObject() error {
	obj := NewObject()
	if err := t.value(obj); err != nil {
		return err
	}
	t.stack = append(t.stack, obj)
	return nil
}

// EndObject closes the current object.
func (t *TreeWriter) EndObject() error {
	if t.pending != nil {
		return fmt.Errorf("%w: dangling name %q", ErrWriterState, *t.pending)
	}
	if len(t.stack) == 0 {
		return fmt.Errorf("%w: unmatched }", ErrWriterState)
	}
	if _, ok := t.stack[len(t.stack)-1].(*ObjectNode); !ok {
		return fmt.Errorf("%w: unmatched }", ErrWriterState)
	}
	t.stack = t.stack[:len(t.stack)-1]
	return nil
}

// BeginArray opens an array.
func (t *TreeWriter) BeginArray() error {
	arr := NewArray()
	if err := t.value(arr); err != nil {
		return err
	}
	t.stack = append(t.stack, arr)
	return nil
}

// EndArray closes the current array.
func (t *TreeWriter) EndArray() error {
	if len(t.stack) == 0 {
		return fmt.Errorf("%w: unmatched ]", ErrWriterState)
	}
	if _, ok := t.stack[len(t.stack)-1].(*ArrayNode); !ok {
		return fmt.Errorf("%w: unmatched ]", ErrWriterState)
	}
	t.stack = t.stack[:len(t.stack)-1]
	return nil
}

// WriteString stores a string value.
func (t *TreeWriter) WriteString(s string) error {
	return t.value(StringNode(s))
}

// WriteBool stores a boolean value.
func (t *TreeWriter) WriteBool(b bool) error {
	return t.value(BoolNode(b))
}

// WriteInt64 stores an integer value.
func (t *TreeWriter) WriteInt64(v int64) error {
	return t.value(IntNode(v))
}

// WriteUint64 stores an unsigned integer value.
func (t *TreeWriter) WriteUint64(v uint64) error {
	return t.value(NumberNode(Number(strconv.FormatUint(v, 10))))
}

// WriteFloat64 stores a floating point value. Non-finite values are
// stored as their literal names; trees have no grammar to violate, so no
// option gates them here.
func (t *TreeWriter) WriteFloat64(v float64) error {
	switch {
	case math.IsNaN(v):
		return t.value(NumberNode("NaN"))
	case math.IsInf(v, 1):
		return t.value(NumberNode("Infinity"))
	case math.IsInf(v, -1):
		return t.value(NumberNode("-Infinity"))
	}
	return t.value(FloatNode(v))
}

// WriteNumber stores a numeric value from its exact text.
func (t *TreeWriter) WriteNumber(n Number) error {
	return t.value(NumberNode(n))
}

// WriteNull stores a null value, or drops the pending name when null
// serialization is off.
func (t *TreeWriter) WriteNull() error {
	if t.pending != nil && !t.SerializeNulls {
		t.pending = nil
		return nil
	}
	return t.value(Null)
}

// treeEvent is one flattened token of a tree.
type treeEvent struct {
	tok Token
	s   string // name or string value
	n   Number
	b   bool
}

func flatten(n Node, out []treeEvent) []treeEvent {
	switch n := n.(type) {
	case nullNode:
		return append(out, treeEvent{tok: TokenNull})
	case *ScalarNode:
		switch v := n.v.(type) {
		case string:
			return append(out, treeEvent{tok: TokenString, s: v})
		case bool:
			return append(out, treeEvent{tok: TokenBool, b: v})
		case Number:
			return append(out, treeEvent{tok: TokenNumber, n: v})
		}
	case *ArrayNode:
		out = append(out, treeEvent{tok: TokenBeginArray})
		for _, el := range n.elems {
			out = flatten(el, out)
		}
		return append(out, treeEvent{tok: TokenEndArray})
	case *ObjectNode:
		out = append(out, treeEvent{tok: TokenBeginObject})
		for _, name := range n.names {
			out = append(out, treeEvent{tok: TokenName, s: name})
			out = flatten(n.members[name], out)
		}
		return append(out, treeEvent{tok: TokenEndObject})
	}
	return out
}

// treeReader replays a [Node] through the [Reader] interface, so every
// adapter can consume trees without knowing they exist.
type treeReader struct {
	events      []treeEvent
	i           int
	pathNames   []string
	pathIndices []int
	inObject    []bool
}

var _ Reader = (*treeReader)(nil)

// NewTreeReader returns a [Reader] that yields the token stream of root.
func NewTreeReader(root Node) Reader {
	if root == nil {
		root = Null
	}
	return &treeReader{events: flatten(root, nil)}
}

func (t *treeReader) cur() (treeEvent, bool) {
	if t.i >= len(t.events) {
		return treeEvent{}, false
	}
	return t.events[t.i], true
}

// Peek returns the kind of the next token without consuming it.
func (t *treeReader) Peek() (Token, error) {
	ev, ok := t.cur()
	if !ok {
		return TokenEndDocument, nil
	}
	return ev.tok, nil
}

// Path returns the location of the reader as a JSONPath expression.
func (t *treeReader) Path() string {
	var b strings.Builder
	b.WriteString("$")
	for i := range t.inObject {
		if t.inObject[i] {
			if t.pathNames[i] != "" {
				b.WriteString(".")
				b.WriteString(t.pathNames[i])
			}
		} else {
			fmt.Fprintf(&b, "[%d]", t.pathIndices[i])
		}
	}
	return b.String()
}

func (t *treeReader) mismatch(want string) error {
	tok, _ := t.Peek()
	return &SyntaxError{
		Msg:  fmt.Sprintf("expected %s but was %s", want, tok),
		Path: t.Path(),
	}
}

// valueConsumed advances the enclosing array index, if any.
func (t *treeReader) valueConsumed() {
	if n := len(t.inObject); n > 0 && !t.inObject[n-1] {
		t.pathIndices[n-1]++
	}
}

// BeginObject consumes the opening of an object.
func (t *treeReader) BeginObject() error {
	if ev, ok := t.cur(); !ok || ev.tok != TokenBeginObject {
		return t.mismatch("BEGIN_OBJECT")
	}
	t.i++
	t.inObject = append(t.inObject, true)
	t.pathNames = append(t.pathNames, "")
	t.pathIndices = append(t.pathIndices, 0)
	return nil
}

// EndObject consumes the closing of an object.
func (t *treeReader) EndObject() error {
	if ev, ok := t.cur(); !ok || ev.tok != TokenEndObject {
		return t.mismatch("END_OBJECT")
	}
	t.i++
	t.pop()
	t.valueConsumed()
	return nil
}

// BeginArray consumes the opening of an array.
func (t *treeReader) BeginArray() error {
	if ev, ok := t.cur(); !ok || ev.tok != TokenBeginArray {
		return t.mismatch("BEGIN_ARRAY")
	}
	t.i++
	t.inObject = append(t.inObject, false)
	t.pathNames = append(t.pathNames, "")
	t.pathIndices = append(t.pathIndices, 0)
	return nil
}

// EndArray consumes the closing of an array.
func (t *treeReader) EndArray() error {
	if ev, ok := t.cur(); !ok || ev.tok != TokenEndArray {
		return t.mismatch("END_ARRAY")
	}
	t.i++
	t.pop()
	t.valueConsumed()
	return nil
}

func (t *treeReader) pop() {
	t.inObject = t.inObject[:len(t.inObject)-1]
	t.pathNames = t.pathNames[:len(t.pathNames)-1]
	t.pathIndices = t.pathIndices[:len(t.pathIndices)-1]
}

// HasNext reports whether the current object or array has more content.
func (t *treeReader) HasNext() (bool, error) {
	tok, err := t.Peek()
	if err != nil {
		return false, err
	}
	return tok != TokenEndObject && tok != TokenEndArray && tok != TokenEndDocument, nil
}

// NextName consumes and returns the next object member name.
func (t *treeReader) NextName() (string, error) {
	ev, ok := t.cur()
	if !ok || ev.tok != TokenName {
		return "", t.mismatch("NAME")
	}
	t.i++
	t.pathNames[len(t.pathNames)-1] = ev.s
	return ev.s, nil
}

// NextString consumes and returns the next value as a string. Numeric
// values are returned as their literal text.
func (t *treeReader) NextString() (string, error) {
	ev, ok := t.cur()
	if !ok {
		return "", t.mismatch("STRING")
	}
	switch ev.tok {
	case TokenString:
		t.i++
		t.valueConsumed()
		return ev.s, nil
	case TokenNumber:
		t.i++
		t.valueConsumed()
		return string(ev.n), nil
	}
	return "", t.mismatch("STRING")
}

// NextBool consumes and returns the next value as a bool.
func (t *treeReader) NextBool() (bool, error) {
	ev, ok := t.cur()
	if !ok || ev.tok != TokenBool {
		return false, t.mismatch("BOOLEAN")
	}
	t.i++
	t.valueConsumed()
	return ev.b, nil
}

// NextNull consumes the next value, which must be a null.
func (t *treeReader) NextNull() error {
	ev, ok := t.cur()
	if !ok || ev.tok != TokenNull {
		return t.mismatch("NULL")
	}
	t.i++
	t.valueConsumed()
	return nil
}

func (t *treeReader) numericText(want string) (string, error) {
	ev, ok := t.cur()
	if !ok {
		return "", t.mismatch(want)
	}
	switch ev.tok {
	case TokenNumber:
		return string(ev.n), nil
	case TokenString:
		return ev.s, nil
	}
	return "", t.mismatch(want)
}

// NextFloat64 consumes and returns the next value as a float64.
func (t *treeReader) NextFloat64() (float64, error) {
	lit, err := t.numericText("NUMBER")
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, t.mismatch("NUMBER")
	}
	t.i++
	t.valueConsumed()
	return f, nil
}

// NextInt64 consumes and returns the next value as an int64. Conversions
// that would lose precision fail.
func (t *treeReader) NextInt64() (int64, error) {
	lit, err := t.numericText("NUMBER")
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseInt(lit, 10, 64); err == nil {
		t.i++
		t.valueConsumed()
		return v, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, t.mismatch("NUMBER")
	}
	v := int64(f)
	if float64(v) != f {
		return 0, &SyntaxError{
			Msg:  fmt.Sprintf("expected an int64 but was %s", lit),
			Path: t.Path(),
		}
	}
	t.i++
	t.valueConsumed()
	return v, nil
}

// NextNumber consumes the next numeric value as its exact text.
func (t *treeReader) NextNumber() (Number, error) {
	lit, err := t.numericText("NUMBER")
	if err != nil {
		return "", err
	}
	if ev, _ := t.cur(); ev.tok == TokenString {
		if _, err := strconv.ParseFloat(lit, 64); err != nil {
			return "", t.mismatch("NUMBER")
		}
	}
	t.i++
	t.valueConsumed()
	return Number(lit), nil
}

// Skip consumes and discards the next value, including all nested
// content. At a name position, only the name is skipped.
func (t *treeReader) Skip() error {
	ev, ok := t.cur()
	if !ok {
		return t.mismatch("a value")
	}
	switch ev.tok {
	case TokenName:
		t.i++
		t.pathNames[len(t.pathNames)-1] = "<skipped>"
		return nil
	case TokenEndObject, TokenEndArray:
		return t.mismatch("a value")
	case TokenBeginObject, TokenBeginArray:
		depth := 0
		for {
			ev, ok := t.cur()
			if !ok {
				return t.mismatch("a value")
			}
			switch ev.tok {
			case TokenBeginObject, TokenBeginArray:
				depth++
			case TokenEndObject, TokenEndArray:
				depth--
			}
			t.i++
			if depth == 0 {
				t.valueConsumed()
				return nil
			}
		}
	default:
		t.i++
		t.valueConsumed()
		return nil
	}
}
