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
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReflectiveTags verifies tag names, omission, and omitempty.
func TestReflectiveTags(t *testing.T) {
	t.Parallel()

	type item struct {
		Name    string `json:"name"`
		Secret  string `json:"-"`
		Count   int    `json:"count,omitempty"`
		Untyped string
	}
	e := MustNew()

	data, err := Marshal(e, item{Name: "x", Secret: "hidden", Untyped: "u"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x","Untyped":"u"}`, string(data))

	data, err = Marshal(e, item{Name: "x", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x","count":3,"Untyped":""}`, string(data))

	var out item
	require.NoError(t, e.Unmarshal([]byte(`{"name":"y","Secret":"spoof","count":2}`), &out))
	assert.Equal(t, item{Name: "y", Count: 2}, out)
}

// TestReflectiveNamingPolicy verifies the policy applies only to
// untagged fields.
func TestReflectiveNamingPolicy(t *testing.T) {
	t.Parallel()

	type profile struct {
		DisplayName string
		AvatarURL   string
		Pinned      bool `json:"is_pinned"`
	}
	e := MustNew(WithNamingPolicy(SnakeCaseNaming))

	data, err := Marshal(e, profile{DisplayName: "d", AvatarURL: "a", Pinned: true})
	require.NoError(t, err)
	assert.Equal(t, `{"display_name":"d","avatar_url":"a","is_pinned":true}`, string(data))

	var out profile
	require.NoError(t, e.Unmarshal(data, &out))
	assert.Equal(t, profile{DisplayName: "d", AvatarURL: "a", Pinned: true}, out)
}

// TestReflectiveEmbedding verifies promotion of embedded fields, the
// shallow-shadows-deep rule, and nil embedded pointers on write.
func TestReflectiveEmbedding(t *testing.T) {
	t.Parallel()

	type base struct {
		ID   int    `json:"id"`
		Kind string `json:"kind"`
	}
	type wrapped struct {
		base
		Kind string `json:"kind"` // shadows base.Kind
		Name string `json:"name"`
	}
	e := MustNew()

	t.Run("promotion and shadowing", func(t *testing.T) {
		t.Parallel()

		in := wrapped{base: base{ID: 7, Kind: "inner"}, Kind: "outer", Name: "n"}
		data, err := Marshal(e, in)
		require.NoError(t, err)
		assert.Equal(t, `{"id":7,"kind":"outer","name":"n"}`, string(data))

		var out wrapped
		require.NoError(t, e.Unmarshal(data, &out))
		assert.Equal(t, 7, out.base.ID)
		assert.Equal(t, "outer", out.Kind)
		assert.Equal(t, "", out.base.Kind)
	})

	t.Run("nil embedded pointer is skipped on write", func(t *testing.T) {
		t.Parallel()

		type viaPointer struct {
			*base
			Name string `json:"name"`
		}
		data, err := Marshal(e, viaPointer{Name: "n"})
		require.NoError(t, err)
		assert.Equal(t, `{"name":"n"}`, string(data))
	})

	t.Run("nil embedded pointer is allocated on read", func(t *testing.T) {
		t.Parallel()

		type Base struct {
			ID int `json:"id"`
		}
		type viaPointer struct {
			*Base
			Name string `json:"name"`
		}
		var out viaPointer
		require.NoError(t, e.Unmarshal([]byte(`{"id":3,"name":"n"}`), &out))
		require.NotNil(t, out.Base)
		assert.Equal(t, 3, out.Base.ID)
	})

	t.Run("unexported embedded struct promotes exported fields", func(t *testing.T) {
		t.Parallel()

		type envelope struct {
			base
			Name string `json:"name"`
		}
		in := envelope{base: base{ID: 7, Kind: "k"}, Name: "n"}
		data, err := Marshal(e, in)
		require.NoError(t, err)
		assert.Equal(t, `{"id":7,"kind":"k","name":"n"}`, string(data))

		var out envelope
		require.NoError(t, e.Unmarshal(data, &out))
		assert.Equal(t, in, out)
	})

	t.Run("nil unexported embedded pointer fails on read", func(t *testing.T) {
		t.Parallel()

		type viaPointer struct {
			*base
			Name string `json:"name"`
		}
		var out viaPointer
		err := e.Unmarshal([]byte(`{"id":3,"name":"n"}`), &out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedded pointer to unexported type")
	})
}

// TestReflectiveConflict verifies same-depth duplicate names fail with a
// ConflictError naming both declaring types.
func TestReflectiveConflict(t *testing.T) {
	t.Parallel()

	type left struct {
		V int `json:"v"`
	}
	type right struct {
		V int `json:"v"`
	}
	type both struct {
		left
		right
	}
	e := MustNew()

	_, err := e.Adapter(TypeOf[both]())
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "v", conflict.Name)
	assert.NotEqual(t, conflict.First, conflict.Second)
}

// TestReflectiveCreator verifies custom construction and its failure
// modes.
func TestReflectiveCreator(t *testing.T) {
	t.Parallel()

	type counter struct {
		Hits int `json:"hits"`
		Base int `json:"-"`
	}

	t.Run("creator seeds the instance", func(t *testing.T) {
		t.Parallel()

		e := MustNew(WithCreator(func() (*counter, error) {
			return &counter{Base: 100}, nil
		}))
		var out counter
		require.NoError(t, e.Unmarshal([]byte(`{"hits":3}`), &out))
		assert.Equal(t, counter{Hits: 3, Base: 100}, out)
	})

	t.Run("creator failure surfaces as ConstructionError", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		e := MustNew(WithCreator(func() (*counter, error) {
			return nil, boom
		}))
		var out counter
		err := e.Unmarshal([]byte(`{"hits":3}`), &out)
		var cerr *ConstructionError
		require.ErrorAs(t, err, &cerr)
		assert.ErrorIs(t, err, boom)
	})
}

// TestReflectiveExclusion verifies exclusion predicates compose and
// remove fields in both directions.
func TestReflectiveExclusion(t *testing.T) {
	t.Parallel()

	type doc struct {
		Title    string `json:"title"`
		Draft    bool   `json:"draft"`
		Internal string `json:"internal"`
	}
	e := MustNew(
		WithExclusion(func(f reflect.StructField) bool { return f.Name == "Draft" }),
		WithExclusion(func(f reflect.StructField) bool { return strings.HasPrefix(f.Name, "Internal") }),
	)

	data, err := Marshal(e, doc{Title: "t", Draft: true, Internal: "i"})
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t"}`, string(data))

	var out doc
	require.NoError(t, e.Unmarshal([]byte(`{"title":"t","draft":true,"internal":"i"}`), &out))
	assert.Equal(t, doc{Title: "t"}, out)
}

// TestReflectiveNullMembers verifies explicit nulls clear nillable
// fields and leave value fields at their current value.
func TestReflectiveNullMembers(t *testing.T) {
	t.Parallel()

	type rec struct {
		Count int      `json:"count"`
		Tags  []string `json:"tags"`
	}
	e := MustNew(WithCreator(func() (*rec, error) {
		return &rec{Count: 9, Tags: []string{"seed"}}, nil
	}))

	var out rec
	require.NoError(t, e.Unmarshal([]byte(`{"count":null,"tags":null}`), &out))
	assert.Equal(t, 9, out.Count, "null must not clear a non-nillable field")
	assert.Nil(t, out.Tags)
}

// TestReflectiveStructNull verifies a null document yields the zero
// struct through the null-safe wrapper.
func TestReflectiveStructNull(t *testing.T) {
	t.Parallel()

	type rec struct {
		A int `json:"a"`
	}
	e := MustNew()

	out, err := e.UnmarshalFor(TypeOf[rec](), []byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, rec{}, out)

	var viaPtr *rec
	require.NoError(t, e.Unmarshal([]byte(`null`), &viaPtr))
	assert.Nil(t, viaPtr)
}
