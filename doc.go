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

// Package codec converts Go values to JSON documents and back through a
// pluggable adapter pipeline.
//
// The package is organized around four pieces: a streaming tokenizer
// ([StreamReader], [StreamWriter]), an in-memory tree model ([Node]), a
// per-type codec contract ([Adapter], [Factory]), and the [Engine] that
// resolves, caches and composes adapters for arbitrarily nested types.
//
// # Quick Start
//
// The package provides both generic and non-generic APIs:
//
//	e := codec.MustNew()
//
//	// Generic (preferred when the type is known)
//	user, err := codec.Unmarshal[User](e, data)
//
//	// Non-generic (when the type comes from a variable)
//	var user User
//	err := e.Unmarshal(data, &user)
//
//	data, err := e.Marshal(user)
//
// # Configuration
//
// Engines are immutable once built; use functional options to customize
// behavior:
//
//	e := codec.MustNew(
//	    codec.WithNamingPolicy(codec.SnakeCaseNaming),
//	    codec.WithIndent("  "),
//	    codec.WithSerializeNulls(),
//	)
//
// # Custom Adapters
//
// Types get custom wire forms through adapters:
//
//	e := codec.MustNew(codec.WithTypeAdapter(
//	    func(r codec.Reader) (Point, error) {
//	        s, err := r.NextString()
//	        if err != nil {
//	            return Point{}, err
//	        }
//	        return ParsePoint(s)
//	    },
//	    func(w codec.Writer, p Point) error {
//	        return w.WriteString(p.String())
//	    },
//	))
//
// Factories generalize adapters to whole families of types, and can
// decorate the adapter they shadow via [Resolution.Delegate].
//
// # Lenient and Strict Documents
//
// By default readers accept a superset of the standard grammar:
// comments, unquoted and single-quoted strings, non-finite numbers,
// trailing commas and multiple top-level values. [WithStrict] restricts
// both reading and writing to the standard grammar.
//
// # Trees
//
// [Engine.ToTree] and [Engine.FromTree] convert between values and
// in-memory [Node] trees through the same adapters that serve text, so
// the two representations cannot drift apart.
package codec
