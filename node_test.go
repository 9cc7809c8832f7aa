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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScalarNode verifies kinds, conversions, and exact numeric text.
func TestScalarNode(t *testing.T) {
	t.Parallel()

	t.Run("kinds", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, KindString, StringNode("x").Kind())
		assert.Equal(t, KindBool, BoolNode(true).Kind())
		assert.Equal(t, KindNumber, IntNode(1).Kind())
		assert.Equal(t, KindNull, Null.Kind())
	})

	t.Run("conversions", func(t *testing.T) {
		t.Parallel()

		n := NumberNode("42")
		i, err := n.AsInt64()
		require.NoError(t, err)
		assert.Equal(t, int64(42), i)
		f, err := n.AsFloat64()
		require.NoError(t, err)
		assert.Equal(t, 42.0, f)
		assert.Equal(t, "42", n.AsString())

		b, err := StringNode("true").AsBool()
		require.NoError(t, err)
		assert.True(t, b)

		_, err = StringNode("nope").AsInt64()
		assert.Error(t, err)
	})

	t.Run("numbers keep their literal text", func(t *testing.T) {
		t.Parallel()

		n := NumberNode("1.300")
		num, ok := n.Number()
		require.True(t, ok)
		assert.Equal(t, Number("1.300"), num)

		_, ok = StringNode("1.300").Number()
		assert.False(t, ok)
	})

	t.Run("equality is kind sensitive", func(t *testing.T) {
		t.Parallel()

		assert.True(t, IntNode(5).Equal(NumberNode("5")))
		assert.False(t, IntNode(5).Equal(StringNode("5")))
		assert.False(t, NumberNode("5").Equal(NumberNode("5.0")))
		assert.True(t, Null.Equal(Null))
		assert.False(t, Null.Equal(StringNode("null")))
	})
}

// TestObjectNode verifies insertion order, replacement, and removal.
func TestObjectNode(t *testing.T) {
	t.Parallel()

	o := NewObject().
		Set("b", IntNode(1)).
		Set("a", IntNode(2)).
		Set("c", nil)
	assert.Equal(t, []string{"b", "a", "c"}, o.Names())
	assert.Equal(t, 3, o.Len())

	got, ok := o.Get("c")
	require.True(t, ok)
	assert.True(t, got.Equal(Null))

	// Replacement keeps the original position.
	o.Set("b", IntNode(9))
	assert.Equal(t, []string{"b", "a", "c"}, o.Names())
	got, _ = o.Get("b")
	assert.True(t, got.Equal(IntNode(9)))

	removed, ok := o.Remove("a")
	require.True(t, ok)
	assert.True(t, removed.Equal(IntNode(2)))
	assert.Equal(t, []string{"b", "c"}, o.Names())
	_, ok = o.Remove("a")
	assert.False(t, ok)

	// Equality ignores insertion order.
	other := NewObject().Set("c", Null).Set("b", IntNode(9))
	assert.True(t, o.Equal(other))
	assert.False(t, o.Equal(NewObject().Set("b", IntNode(9))))
}

// TestArrayNode verifies ordering and element equality.
func TestArrayNode(t *testing.T) {
	t.Parallel()

	a := NewArray(IntNode(1), nil).Append(StringNode("x"))
	assert.Equal(t, 3, a.Len())
	assert.True(t, a.At(1).Equal(Null))

	same := NewArray(IntNode(1), Null, StringNode("x"))
	assert.True(t, a.Equal(same))

	reordered := NewArray(Null, IntNode(1), StringNode("x"))
	assert.False(t, a.Equal(reordered))
}

// TestNodeStreamConversion verifies ReadNode and WriteNode against the
// text form, preserving member order and numeric literals.
func TestNodeStreamConversion(t *testing.T) {
	t.Parallel()

	const doc = `{"id":7,"price":1.300,"tags":["a",null],"meta":{"ok":true}}`
	n, err := ReadNode(NewReader(strings.NewReader(doc)))
	require.NoError(t, err)

	obj, ok := n.(*ObjectNode)
	require.True(t, ok)
	assert.Equal(t, []string{"id", "price", "tags", "meta"}, obj.Names())
	price, _ := obj.Get("price")
	num, ok := price.(*ScalarNode).Number()
	require.True(t, ok)
	assert.Equal(t, Number("1.300"), num)

	var b strings.Builder
	w := NewWriter(&b, WriterSerializeNulls())
	require.NoError(t, WriteNode(w, n))
	require.NoError(t, w.Flush())
	assert.Equal(t, doc, b.String())
}
