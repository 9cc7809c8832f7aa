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
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDescriptorInterning verifies structurally equal descriptors are
// identical, which is what makes them usable as map keys.
func TestDescriptorInterning(t *testing.T) {
	t.Parallel()

	assert.True(t, TypeOf[map[string][]int64]() == TypeOf[map[string][]int64]())
	assert.True(t, TypeOf[string]() == DescriptorOf(reflect.TypeFor[string]()))
	assert.True(t, ArrayOf(TypeOf[int]()) == ArrayOf(TypeOf[int]()))
	assert.True(t,
		Parameterized(TypeOf[struct{}](), TypeOf[string]()) ==
			Parameterized(TypeOf[struct{}](), TypeOf[string]()))

	assert.False(t, TypeOf[int]() == TypeOf[int64]())
	assert.False(t, ArrayOf(TypeOf[int]()) == ArrayOf(TypeOf[int64]()))
}

// TestDescriptorZeroValue verifies the zero Descriptor behaves as
// AnyType.
func TestDescriptorZeroValue(t *testing.T) {
	t.Parallel()

	var d Descriptor
	assert.True(t, d.Equal(AnyType))
	assert.Equal(t, "any", d.String())
	assert.Equal(t, reflect.TypeFor[any](), d.Erasure())
}

// TestBoundIdempotence verifies repeated bounding is a no-op and mixed
// bounds collapse to the loosest wildcard.
func TestBoundIdempotence(t *testing.T) {
	t.Parallel()

	d := TypeOf[io.Reader]()

	assert.True(t, UpperBounded(UpperBounded(d)) == UpperBounded(d))
	assert.True(t, LowerBounded(LowerBounded(d)) == LowerBounded(d))

	// Mixed bounds carry no usable constraint in either order.
	loosest := UpperBounded(AnyType)
	assert.True(t, UpperBounded(LowerBounded(d)) == loosest)
	assert.True(t, LowerBounded(UpperBounded(d)) == loosest)
	assert.True(t, UpperBounded(loosest) == loosest)
	assert.True(t, LowerBounded(loosest) == loosest)
	assert.True(t, LowerBounded(AnyType) == loosest)
}

// TestDescriptorAccessors verifies the shape accessors round-trip their
// construction inputs.
func TestDescriptorAccessors(t *testing.T) {
	t.Parallel()

	t.Run("exact", func(t *testing.T) {
		t.Parallel()

		d := TypeOf[int64]()
		assert.True(t, d.IsExact())
		assert.Equal(t, reflect.TypeFor[int64](), d.Erasure())
		_, ok := d.Elem()
		assert.False(t, ok)
		_, _, ok = d.Bounds()
		assert.False(t, ok)
	})

	t.Run("array", func(t *testing.T) {
		t.Parallel()

		d := ArrayOf(TypeOf[string]())
		elem, ok := d.Elem()
		require.True(t, ok)
		assert.True(t, elem == TypeOf[string]())
		assert.Equal(t, reflect.TypeFor[[]string](), d.Erasure())
		assert.Equal(t, "[]string", d.String())
	})

	t.Run("parameterized", func(t *testing.T) {
		t.Parallel()

		type Pair struct{}
		raw := TypeOf[Pair]()
		d := Parameterized(raw, TypeOf[string](), TypeOf[int]())
		got, ok := d.Raw()
		require.True(t, ok)
		assert.True(t, got == raw)
		args := d.Args()
		require.Len(t, args, 2)
		assert.True(t, args[0] == TypeOf[string]())
		assert.True(t, args[1] == TypeOf[int]())
		assert.Equal(t, raw.Erasure(), d.Erasure())
	})

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()

		d := UpperBounded(TypeOf[io.Reader]())
		upper, lower, ok := d.Bounds()
		require.True(t, ok)
		assert.True(t, upper == TypeOf[io.Reader]())
		assert.True(t, lower.Equal(Descriptor{}))
		assert.Equal(t, reflect.TypeFor[io.Reader](), d.Erasure())

		d = LowerBounded(TypeOf[io.Reader]())
		upper, lower, ok = d.Bounds()
		require.True(t, ok)
		assert.True(t, upper == AnyType)
		assert.True(t, lower == TypeOf[io.Reader]())
	})
}

// TestAssignableFrom covers the variance rules: covariant upper bounds,
// contravariant lower bounds, invariant exact arguments.
func TestAssignableFrom(t *testing.T) {
	t.Parallel()

	reader := TypeOf[io.Reader]()
	readWriter := TypeOf[io.ReadWriter]()

	t.Run("interface satisfaction", func(t *testing.T) {
		t.Parallel()

		assert.True(t, reader.AssignableFrom(readWriter))
		assert.False(t, readWriter.AssignableFrom(reader))
		assert.True(t, AnyType.AssignableFrom(reader))
	})

	t.Run("covariant upper bound", func(t *testing.T) {
		t.Parallel()

		assert.True(t, UpperBounded(reader).AssignableFrom(readWriter))
		assert.True(t, UpperBounded(reader).AssignableFrom(UpperBounded(readWriter)))
		assert.False(t, UpperBounded(readWriter).AssignableFrom(reader))
	})

	t.Run("contravariant lower bound", func(t *testing.T) {
		t.Parallel()

		assert.True(t, LowerBounded(readWriter).AssignableFrom(LowerBounded(reader)))
		assert.False(t, LowerBounded(reader).AssignableFrom(LowerBounded(readWriter)))
	})

	t.Run("invariant exact arguments", func(t *testing.T) {
		t.Parallel()

		type Box struct{}
		raw := TypeOf[Box]()
		assert.True(t, Parameterized(raw, reader).AssignableFrom(Parameterized(raw, reader)))
		assert.False(t, Parameterized(raw, reader).AssignableFrom(Parameterized(raw, readWriter)))
		assert.True(t,
			Parameterized(raw, UpperBounded(reader)).
				AssignableFrom(Parameterized(raw, readWriter)))
	})

	t.Run("arrays are covariant in their element", func(t *testing.T) {
		t.Parallel()

		assert.True(t, ArrayOf(reader).AssignableFrom(ArrayOf(readWriter)))
		assert.False(t, ArrayOf(readWriter).AssignableFrom(ArrayOf(reader)))
	})
}

// TestAssignableFromRecursiveShapes verifies the walk terminates on
// mutually recursive parameterized shapes.
func TestAssignableFromRecursiveShapes(t *testing.T) {
	t.Parallel()

	type A struct{}
	type B struct{}
	rawA, rawB := TypeOf[A](), TypeOf[B]()

	// A[? extends B[...]] referencing back into A. Building the knot from
	// the outside approximates the recursion a generic self-referential
	// type declaration would produce.
	// Wildcard bounds force the walk below the identity fast path; distinct
	// leaves keep every level structurally different.
	wide := Parameterized(rawA,
		UpperBounded(Parameterized(rawB, UpperBounded(Parameterized(rawA, UpperBounded(AnyType))))))
	narrow := Parameterized(rawA,
		UpperBounded(Parameterized(rawB, UpperBounded(Parameterized(rawA, TypeOf[io.ReadWriter]())))))

	assert.True(t, wide.AssignableFrom(narrow))
	assert.False(t, narrow.AssignableFrom(wide))
	assert.True(t, wide.AssignableFrom(wide))
}

// TestDescriptorString verifies the canonical renderings.
func TestDescriptorString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "map[string][]int64", TypeOf[map[string][]int64]().String())
	assert.Equal(t, "? extends io.Reader", UpperBounded(TypeOf[io.Reader]()).String())
	assert.Equal(t, "? super io.Reader", LowerBounded(TypeOf[io.Reader]()).String())
	assert.Equal(t, "[]io.Reader", ArrayOf(TypeOf[io.Reader]()).String())
}

// TestDescriptorConcurrentInterning verifies concurrent construction of
// the same shapes converges to identical descriptors.
func TestDescriptorConcurrentInterning(t *testing.T) {
	t.Parallel()

	type target struct{ A int }
	const goroutines = 16

	results := make([]Descriptor, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ArrayOf(UpperBounded(TypeOf[target]()))
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.True(t, results[0] == results[i])
	}
}
