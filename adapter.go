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

// Adapter is the per-type codec contract: read one value from a token
// stream, write one value to a token stream.
//
// Adapters must be stateless or effectively immutable; once an engine
// has published an adapter it may be invoked concurrently from any
// number of goroutines.
type Adapter interface {
	// Read consumes exactly one value from r and returns it.
	Read(r Reader) (any, error)

	// Write emits v as exactly one value on w.
	Write(w Writer, v any) error
}

// Factory is a predicate plus constructor: given a descriptor and access
// to the resolving engine, it either declines (nil, nil) or produces an
// adapter. Factories may request adapters for nested types through res;
// the engine breaks cyclic requests transparently.
//
// Factories are registered at engine construction time and never
// reordered or removed afterward. Create must be side-effect-free aside
// from nested res queries.
type Factory interface {
	Create(res *Resolution, d Descriptor) (Adapter, error)
}

// FactoryFunc adapts a function to the [Factory] interface.
type FactoryFunc func(res *Resolution, d Descriptor) (Adapter, error)

// Create calls f.
func (f FactoryFunc) Create(res *Resolution, d Descriptor) (Adapter, error) {
	return f(res, d)
}

// AdapterFunc builds an [Adapter] from a pair of functions.
type AdapterFunc struct {
	ReadFunc  func(r Reader) (any, error)
	WriteFunc func(w Writer, v any) error
}

// Read calls ReadFunc.
func (a AdapterFunc) Read(r Reader) (any, error) { return a.ReadFunc(r) }

// Write calls WriteFunc.
func (a AdapterFunc) Write(w Writer, v any) error { return a.WriteFunc(w, v) }

// futureAdapter is the placeholder installed while a descriptor is being
// resolved, so that cyclic type graphs terminate. It is a
// single-assignment cell: the real adapter is installed exactly once,
// and the placeholder defers all reads and writes to it afterwards.
//
// A futureAdapter is scoped to one resolution call stack and must never
// be shared with another goroutine before its delegate is installed.
// Invoking it earlier is a fatal usage error, not a runtime condition,
// and panics.
type futureAdapter struct {
	delegate Adapter
}

func (f *futureAdapter) setDelegate(a Adapter) {
	if f.delegate != nil {
		panic("codec: delegate already installed on placeholder adapter")
	}
	f.delegate = a
}

func (f *futureAdapter) resolved() Adapter {
	if f.delegate == nil {
		panic("codec: placeholder adapter used before the enclosing resolution completed")
	}
	return f.delegate
}

func (f *futureAdapter) Read(r Reader) (any, error) {
	return f.resolved().Read(r)
}

func (f *futureAdapter) Write(w Writer, v any) error {
	return f.resolved().Write(w, v)
}

// TypeAdapter is a compile-time-typed view over an erased [Adapter].
// Obtain one with [AdapterFor].
type TypeAdapter[T any] struct {
	a Adapter
}

// Read consumes one value from r.
func (t TypeAdapter[T]) Read(r Reader) (T, error) {
	v, err := t.a.Read(r)
	if err != nil {
		var zero T
		return zero, err
	}
	if v == nil {
		var zero T
		return zero, nil
	}
	return v.(T), nil
}

// Write emits v on w.
func (t TypeAdapter[T]) Write(w Writer, v T) error {
	return t.a.Write(w, v)
}

// Erased returns the underlying untyped adapter.
func (t TypeAdapter[T]) Erased() Adapter { return t.a }
