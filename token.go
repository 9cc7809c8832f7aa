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

import "strconv"

// Token identifies the kind of the next structural element in a
// document, as reported by [Reader.Peek].
type Token uint8

const (
	// TokenBeginObject is the opening of an object, '{'.
	TokenBeginObject Token = iota

	// TokenEndObject is the closing of an object, '}'.
	TokenEndObject

	// TokenBeginArray is the opening of an array, '['.
	TokenBeginArray

	// TokenEndArray is the closing of an array, ']'.
	TokenEndArray

	// TokenName is an object member name.
	TokenName

	// TokenString is a string value.
	TokenString

	// TokenNumber is a numeric value.
	TokenNumber

	// TokenBool is a true or false literal.
	TokenBool

	// TokenNull is a null literal.
	TokenNull

	// TokenEndDocument signals that the top-level value has been fully
	// consumed, or that the stream held no content at all.
	TokenEndDocument
)

// String returns the token kind name.
func (t Token) String() string {
	switch t {
	case TokenBeginObject:
		return "BEGIN_OBJECT"
	case TokenEndObject:
		return "END_OBJECT"
	case TokenBeginArray:
		return "BEGIN_ARRAY"
	case TokenEndArray:
		return "END_ARRAY"
	case TokenName:
		return "NAME"
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenBool:
		return "BOOLEAN"
	case TokenNull:
		return "NULL"
	case TokenEndDocument:
		return "END_DOCUMENT"
	default:
		return "UNKNOWN"
	}
}

// Number holds the exact text of a numeric token so numbers can be
// re-emitted losslessly, without committing to an integer or floating
// point representation.
type Number string

// String returns the literal text of the number.
func (n Number) String() string { return string(n) }

// Int64 returns the number as an int64.
func (n Number) Int64() (int64, error) {
	return strconv.ParseInt(string(n), 10, 64)
}

// Float64 returns the number as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// Reader is a pull tokenizer over a document. The streaming
// implementation is [StreamReader]; an in-memory tree implementation
// backs [Engine.FromTree], so any adapter works against either without
// change.
//
// A Reader is owned by a single call stack and is not safe for
// concurrent use.
type Reader interface {
	// Peek returns the kind of the next token without consuming it.
	Peek() (Token, error)

	// BeginObject consumes the opening of an object.
	BeginObject() error

	// EndObject consumes the closing of an object.
	EndObject() error

	// BeginArray consumes the opening of an array.
	BeginArray() error

	// EndArray consumes the closing of an array.
	EndArray() error

	// HasNext reports whether the current object or array has another
	// element.
	HasNext() (bool, error)

	// NextName consumes and returns the next object member name.
	NextName() (string, error)

	// NextString consumes and returns the next value as a string.
	NextString() (string, error)

	// NextBool consumes and returns the next value as a bool.
	NextBool() (bool, error)

	// NextNull consumes the next value, which must be a null.
	NextNull() error

	// NextFloat64 consumes and returns the next value as a float64.
	NextFloat64() (float64, error)

	// NextInt64 consumes and returns the next value as an int64,
	// rejecting lossy conversions.
	NextInt64() (int64, error)

	// NextNumber consumes the next numeric value as its exact text.
	NextNumber() (Number, error)

	// Skip consumes and discards the next value, including all of its
	// nested content.
	Skip() error

	// Path returns a JSONPath-style description of the position within
	// the document, e.g. "$.users[2].name".
	Path() string
}

// Writer is a push emitter for a document. The streaming implementation
// is [StreamWriter]; an in-memory tree implementation backs
// [Engine.ToTree].
//
// A Writer is owned by a single call stack and is not safe for
// concurrent use.
type Writer interface {
	// BeginObject opens an object.
	BeginObject() error

	// EndObject closes the current object.
	EndObject() error

	// BeginArray opens an array.
	BeginArray() error

	// EndArray closes the current array.
	EndArray() error

	// Name writes an object member name. The name is held back until the
	// member's value arrives, so a null value can be elided together
	// with its name when null serialization is off.
	Name(name string) error

	// WriteString writes a string value.
	WriteString(s string) error

	// WriteBool writes a boolean value.
	WriteBool(b bool) error

	// WriteInt64 writes an integer value.
	WriteInt64(v int64) error

	// WriteUint64 writes an unsigned integer value.
	WriteUint64(v uint64) error

	// WriteFloat64 writes a floating point value. Non-finite values are
	// rejected unless the writer was configured to allow them.
	WriteFloat64(v float64) error

	// WriteNumber writes a numeric value from its exact text.
	WriteNumber(n Number) error

	// WriteNull writes a null value, or elides the pending name when
	// null serialization is off.
	WriteNull() error
}
