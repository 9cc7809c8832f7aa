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
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriterDocument builds a small document and checks the exact
// output.
func TestWriterDocument(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb)

	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Name("id"))
	require.NoError(t, w.WriteInt64(7))
	require.NoError(t, w.Name("tags"))
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.WriteString("a"))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteNull())
	require.NoError(t, w.EndArray())
	require.NoError(t, w.EndObject())
	require.NoError(t, w.Flush())

	assert.Equal(t, `{"id":7,"tags":["a",true,null]}`, sb.String())
}

// TestWriterNullElision verifies a null member drops its name unless
// null serialization is on. Nulls inside arrays always appear because
// positions carry meaning there.
func TestWriterNullElision(t *testing.T) {
	t.Parallel()

	t.Run("elided by default", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		w := NewWriter(&sb)
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Name("a"))
		require.NoError(t, w.WriteNull())
		require.NoError(t, w.Name("b"))
		require.NoError(t, w.WriteInt64(1))
		require.NoError(t, w.EndObject())
		require.NoError(t, w.Flush())
		assert.Equal(t, `{"b":1}`, sb.String())
	})

	t.Run("serialized on request", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		w := NewWriter(&sb, WriterSerializeNulls())
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Name("a"))
		require.NoError(t, w.WriteNull())
		require.NoError(t, w.EndObject())
		require.NoError(t, w.Flush())
		assert.Equal(t, `{"a":null}`, sb.String())
	})
}

// TestWriterHTMLEscaping verifies markup-sensitive characters escape by
// default and stay literal when escaping is off.
func TestWriterHTMLEscaping(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, w.WriteString(`<script>a='1'&b=2</script>`))
	require.NoError(t, w.Flush())
	assert.Equal(t,
		`"\u003cscript\u003ea\u003d\u00271\u0027\u0026b\u003d2\u003c/script\u003e"`,
		sb.String())

	sb.Reset()
	w = NewWriter(&sb, WriterNoHTMLEscape())
	require.NoError(t, w.WriteString(`<a&b>`))
	require.NoError(t, w.Flush())
	assert.Equal(t, `"<a&b>"`, sb.String())
}

// TestWriterControlEscapes verifies control characters and the line
// separators always escape.
func TestWriterControlEscapes(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb, WriterNoHTMLEscape())
	require.NoError(t, w.WriteString("a\tb\nc\u2028d\u2029e\x01f"))
	require.NoError(t, w.Flush())
	assert.Equal(t, `"a\tb\nc\u2028d\u2029e\u0001f"`, sb.String())
}

// TestWriterInvalidUTF8 verifies undecodable bytes are written as the
// replacement character rather than copied through raw.
func TestWriterInvalidUTF8(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, w.WriteString("a\xffb\xc3("))
	require.NoError(t, w.Flush())
	assert.Equal(t, `"a\ufffdb\ufffd("`, sb.String())
}

// TestWriterIndent verifies pretty-printed output.
func TestWriterIndent(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb, WriterIndent("  "))
	require.NoError(t, w.BeginObject())
	require.NoError(t, w.Name("a"))
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.WriteInt64(1))
	require.NoError(t, w.WriteInt64(2))
	require.NoError(t, w.EndArray())
	require.NoError(t, w.EndObject())
	require.NoError(t, w.Flush())

	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ]\n}", sb.String())
}

// TestWriterStateErrors verifies grammatical misuse fails with
// ErrWriterState.
func TestWriterStateErrors(t *testing.T) {
	t.Parallel()

	t.Run("value without name in object", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{})
		require.NoError(t, w.BeginObject())
		err := w.WriteInt64(1)
		assert.ErrorIs(t, err, ErrWriterState)
	})

	t.Run("two names in a row", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{})
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Name("a"))
		err := w.Name("b")
		assert.ErrorIs(t, err, ErrWriterState)
	})

	t.Run("name outside object", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{})
		err := w.Name("a")
		assert.ErrorIs(t, err, ErrWriterState)
	})

	t.Run("mismatched close", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{})
		require.NoError(t, w.BeginObject())
		err := w.EndArray()
		assert.ErrorIs(t, err, ErrWriterState)
	})

	t.Run("dangling name at close", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{})
		require.NoError(t, w.BeginObject())
		require.NoError(t, w.Name("a"))
		err := w.EndObject()
		assert.ErrorIs(t, err, ErrWriterState)
	})

	t.Run("second top-level value in strict mode", func(t *testing.T) {
		t.Parallel()

		w := NewWriter(&strings.Builder{}, WriterStrict())
		require.NoError(t, w.WriteInt64(1))
		err := w.WriteInt64(2)
		assert.ErrorIs(t, err, ErrWriterState)
	})
}

// TestWriterNonFinite verifies NaN and the infinities are rejected by
// default and written as identifiers when allowed.
func TestWriterNonFinite(t *testing.T) {
	t.Parallel()

	w := NewWriter(&strings.Builder{})
	assert.ErrorIs(t, w.WriteFloat64(math.NaN()), ErrNonFiniteNumber)
	assert.ErrorIs(t, w.WriteFloat64(math.Inf(1)), ErrNonFiniteNumber)
	assert.ErrorIs(t, w.WriteNumber("Infinity"), ErrNonFiniteNumber)

	var sb strings.Builder
	w = NewWriter(&sb, WriterAllowNonFinite())
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.WriteFloat64(math.NaN()))
	require.NoError(t, w.WriteFloat64(math.Inf(1)))
	require.NoError(t, w.WriteFloat64(math.Inf(-1)))
	require.NoError(t, w.EndArray())
	require.NoError(t, w.Flush())
	assert.Equal(t, `[NaN,Infinity,-Infinity]`, sb.String())
}

// TestWriterNumberValidation verifies WriteNumber rejects text that is
// not a number.
func TestWriterNumberValidation(t *testing.T) {
	t.Parallel()

	w := NewWriter(&strings.Builder{})
	assert.Error(t, w.WriteNumber("12abc"))
	assert.Error(t, w.WriteNumber(""))

	var sb strings.Builder
	w = NewWriter(&sb)
	require.NoError(t, w.WriteNumber("1.00"))
	require.NoError(t, w.Flush())
	assert.Equal(t, "1.00", sb.String())
}

// TestWriterFloatFormat verifies the shortest-form float rendering.
func TestWriterFloatFormat(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, w.BeginArray())
	require.NoError(t, w.WriteFloat64(1.5))
	require.NoError(t, w.WriteFloat64(0.1))
	require.NoError(t, w.WriteFloat64(1e21))
	require.NoError(t, w.EndArray())
	require.NoError(t, w.Flush())
	assert.Equal(t, `[1.5,0.1,1e+21]`, sb.String())
}

// TestWriterRoundTrip verifies writer output parses back to the same
// shape.
func TestWriterRoundTrip(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	w := NewWriter(&sb)
	require.NoError(t, WriteNode(w, NewObject().
		Set("a", NewArray(IntNode(1), IntNode(2), IntNode(3))).
		Set("b", NewArray())))
	require.NoError(t, w.Flush())
	assert.Equal(t, `{"a":[1,2,3],"b":[]}`, sb.String())

	n, err := ReadNode(NewReader(strings.NewReader(sb.String()), ReaderStrict()))
	require.NoError(t, err)
	assert.True(t, n.Equal(NewObject().
		Set("a", NewArray(IntNode(1), IntNode(2), IntNode(3))).
		Set("b", NewArray())))
}
