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
	"reflect"
	"strings"
)

// Events provides hooks for observability without coupling.
// All hooks are optional; a nil hook is simply not called.
// Hooks may be invoked concurrently and must be safe for that.
type Events struct {
	// AdapterResolved is called once per top-level adapter lookup.
	// cached reports whether the adapter came from the engine cache.
	AdapterResolved func(d Descriptor, cached bool)

	// UnknownMember is called when a document member has no matching
	// struct field. path is the document path of the member, such as
	// "$.user.address.zip".
	UnknownMember func(path string)
}

type config struct {
	factories      []Factory
	naming         NamingPolicy
	exclude        func(f reflect.StructField) bool
	creators       map[reflect.Type]func() (any, error)
	events         Events
	serializeNulls bool
	htmlEscape     bool
	lenient        bool
	indent         string
	nonExecPrefix  bool
	allowNonFinite bool
}

func defaultConfig() *config {
	return &config{
		naming:     IdentityNaming,
		htmlEscape: true,
		lenient:    true,
	}
}

func (c *config) validate() error {
	if c.naming == nil {
		return fmt.Errorf("naming policy must not be nil")
	}
	if strings.Trim(c.indent, " \t") != "" {
		return fmt.Errorf("indent must contain only spaces and tabs, got %q", c.indent)
	}
	return nil
}

// Option configures an [Engine].
type Option func(*config)

// WithFactory registers adapter factories. Factories registered earlier
// take precedence; all user factories take precedence over the
// overridable built-in adapters, but never over the foundational
// primitive adapters.
//
// Example:
//
//	e := codec.MustNew(codec.WithFactory(myFactory))
func WithFactory(factories ...Factory) Option {
	return func(c *config) {
		c.factories = append(c.factories, factories...)
	}
}

// WithAdapter registers an adapter for exactly one descriptor. It is
// shorthand for a factory that matches d and declines everything else.
func WithAdapter(d Descriptor, a Adapter) Option {
	return func(c *config) {
		c.factories = append(c.factories, FactoryFunc(func(_ *Resolution, got Descriptor) (Adapter, error) {
			if got.Equal(d) {
				return a, nil
			}
			return nil, nil
		}))
	}
}

// WithTypeAdapter registers a typed read/write pair for T.
//
// Example:
//
//	codec.WithTypeAdapter(
//	    func(r codec.Reader) (netip.Addr, error) {
//	        s, err := r.NextString()
//	        if err != nil {
//	            return netip.Addr{}, err
//	        }
//	        return netip.ParseAddr(s)
//	    },
//	    func(w codec.Writer, a netip.Addr) error {
//	        return w.WriteString(a.String())
//	    },
//	)
func WithTypeAdapter[T any](read func(r Reader) (T, error), write func(w Writer, v T) error) Option {
	return WithAdapter(TypeOf[T](), AdapterFunc{
		ReadFunc: func(r Reader) (any, error) {
			return read(r)
		},
		WriteFunc: func(w Writer, v any) error {
			return write(w, v.(T))
		},
	})
}

// WithNamingPolicy sets the wire-name derivation for untagged struct
// fields. The default keeps field names as declared.
func WithNamingPolicy(p NamingPolicy) Option {
	return func(c *config) {
		c.naming = p
	}
}

// WithExclusion adds a predicate that removes matching struct fields
// from both serialization and deserialization. Unexported fields and
// fields tagged `json:"-"` are always excluded.
func WithExclusion(pred func(f reflect.StructField) bool) Option {
	return func(c *config) {
		prev := c.exclude
		if prev == nil {
			c.exclude = pred
			return
		}
		c.exclude = func(f reflect.StructField) bool {
			return prev(f) || pred(f)
		}
	}
}

// WithSerializeNulls emits null members instead of eliding them.
func WithSerializeNulls() Option {
	return func(c *config) {
		c.serializeNulls = true
	}
}

// WithIndent enables pretty-printed output with the given per-level
// indent string.
func WithIndent(indent string) Option {
	return func(c *config) {
		c.indent = indent
	}
}

// WithoutHTMLEscaping disables escaping of '<', '>', '&', '=' and single
// quotes in emitted strings.
func WithoutHTMLEscaping() Option {
	return func(c *config) {
		c.htmlEscape = false
	}
}

// WithStrict makes both reading and writing conform to the standard
// grammar: no comments, no unquoted or single-quoted strings, exactly
// one top-level value, and no non-finite numbers.
func WithStrict() Option {
	return func(c *config) {
		c.lenient = false
	}
}

// WithNonExecutablePrefix emits the `)]}'` prefix before every document
// and tolerates it when reading. The prefix defeats script-inclusion
// attacks against endpoints that return user-controlled data.
func WithNonExecutablePrefix() Option {
	return func(c *config) {
		c.nonExecPrefix = true
	}
}

// WithNonFiniteNumbers permits NaN, Infinity and -Infinity as values.
// Output containing them is only readable leniently.
func WithNonFiniteNumbers() Option {
	return func(c *config) {
		c.allowNonFinite = true
	}
}

// WithCreator overrides how instances of T are constructed during
// deserialization, for types whose zero value is not a valid starting
// point.
//
// Example:
//
//	codec.WithCreator(func() (*ring.Buffer, error) {
//	    return ring.NewBuffer(16), nil
//	})
func WithCreator[T any](fn func() (*T, error)) Option {
	return func(c *config) {
		if c.creators == nil {
			c.creators = make(map[reflect.Type]func() (any, error))
		}
		rt := reflect.TypeOf((*T)(nil)).Elem()
		c.creators[rt] = func() (any, error) {
			return fn()
		}
	}
}

// WithEvents installs observability hooks.
func WithEvents(ev Events) Option {
	return func(c *config) {
		c.events = ev
	}
}
