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
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sync"
	"sync/atomic"
)

// Engine converts Go values to documents and back. It owns the ordered
// factory chain and a cache of resolved adapters.
//
// An Engine is immutable after construction and safe for concurrent use;
// build one per configuration and reuse it.
//
// Example:
//
//	e := codec.MustNew(codec.WithNamingPolicy(codec.SnakeCaseNaming))
//	data, err := e.Marshal(user)
type Engine struct {
	cfg       *config
	factories []Factory
	cache     atomic.Pointer[map[Descriptor]Adapter]
	cacheMu   sync.Mutex
}

// New creates an [Engine] with the given options.
//
// Factories are consulted in a fixed order: foundational primitive
// adapters first, then user factories in registration order, then the
// overridable built-ins, and finally the reflective struct binder.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	e.factories = append(e.factories, foundationFactories()...)
	e.factories = append(e.factories, cfg.factories...)
	e.factories = append(e.factories, standardFactories()...)
	e.factories = append(e.factories, &reflectiveFactory{})

	empty := make(map[Descriptor]Adapter)
	e.cache.Store(&empty)
	return e, nil
}

// MustNew creates an [Engine] with the given options.
// Panics if configuration is invalid.
//
// Use in main() or init() where panic on startup is acceptable.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("codec: invalid configuration: %v", err))
	}
	return e
}

// Adapter returns the adapter for d, resolving and caching it on first
// use. Resolutions triggered by distinct goroutines may race; all
// winners are behaviorally identical and the cache converges.
func (e *Engine) Adapter(d Descriptor) (Adapter, error) {
	if a, ok := e.lookup(d); ok {
		if hook := e.cfg.events.AdapterResolved; hook != nil {
			hook(d, true)
		}
		return a, nil
	}

	res := &Resolution{
		engine:   e,
		inFlight: make(map[Descriptor]*futureAdapter),
		resolved: make(map[Descriptor]Adapter),
	}
	a, err := res.Adapter(d)
	if err != nil {
		return nil, err
	}
	// Publish everything the call stack resolved in one batch, so a
	// concurrent reader never observes a half-built adapter graph.
	e.publish(res.resolved)
	if hook := e.cfg.events.AdapterResolved; hook != nil {
		hook(d, false)
	}
	return a, nil
}

func (e *Engine) lookup(d Descriptor) (Adapter, bool) {
	a, ok := (*e.cache.Load())[d]
	return a, ok
}

// publish copies the live cache, merges the batch, and swaps the
// pointer. Readers stay lock-free; entries already published win over
// the batch so racing resolutions settle on one adapter per descriptor.
func (e *Engine) publish(batch map[Descriptor]Adapter) {
	if len(batch) == 0 {
		return
	}
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	cur := *e.cache.Load()
	next := make(map[Descriptor]Adapter, len(cur)+len(batch))
	for k, v := range cur {
		next[k] = v
	}
	for k, v := range batch {
		if _, ok := next[k]; !ok {
			next[k] = v
		}
	}
	e.cache.Store(&next)
}

// Resolution is the per-call state of one adapter lookup. Factories
// receive it in Create and use it to request adapters for nested types;
// when a request cycles back to a descriptor already being resolved, the
// engine hands out a placeholder that is wired to the finished adapter
// once the enclosing resolution completes.
//
// A Resolution is confined to the call stack that created it. Factories
// must not retain it or share it across goroutines.
type Resolution struct {
	engine   *Engine
	inFlight map[Descriptor]*futureAdapter
	resolved map[Descriptor]Adapter
}

// Engine returns the engine this resolution runs on.
func (r *Resolution) Engine() *Engine { return r.engine }

// Adapter returns the adapter for d, consulting the engine cache, the
// current call stack, and finally the factory chain.
func (r *Resolution) Adapter(d Descriptor) (Adapter, error) {
	if a, ok := r.engine.lookup(d); ok {
		return a, nil
	}
	if a, ok := r.resolved[d]; ok {
		return a, nil
	}
	if fut, ok := r.inFlight[d]; ok {
		return fut, nil
	}

	fut := &futureAdapter{}
	r.inFlight[d] = fut
	defer delete(r.inFlight, d)

	for _, f := range r.engine.factories {
		a, err := f.Create(r, d)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		fut.setDelegate(a)
		r.resolved[d] = a
		return a, nil
	}
	return nil, &ResolutionError{Descriptor: d}
}

// Delegate resolves d while skipping skip and every factory registered
// before it. A factory that wants to decorate the adapter it would
// otherwise shadow uses this to obtain the shadowed adapter.
func (r *Resolution) Delegate(skip Factory, d Descriptor) (Adapter, error) {
	idx := -1
	for i, f := range r.engine.factories {
		if sameFactory(f, skip) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, &ResolutionError{Descriptor: d, Reason: "delegate factory is not registered on this engine"}
	}
	for _, f := range r.engine.factories[idx+1:] {
		a, err := f.Create(r, d)
		if err != nil {
			return nil, err
		}
		if a != nil {
			return a, nil
		}
	}
	return nil, &ResolutionError{Descriptor: d, Reason: "no factory past the delegation point matched"}
}

// sameFactory compares factories by identity without panicking on
// non-comparable dynamic types such as FactoryFunc.
func sameFactory(a, b Factory) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.Func || bv.Kind() == reflect.Func {
		return av.Kind() == bv.Kind() && av.Pointer() == bv.Pointer()
	}
	if av.Type() != bv.Type() || !av.Type().Comparable() {
		return false
	}
	return a == b
}

// Marshal serializes v, deriving the descriptor from v's runtime type.
// A nil v serializes as null.
func (e *Engine) Marshal(v any) ([]byte, error) {
	return e.MarshalFor(descriptorForValue(v), v)
}

// MarshalFor serializes v as an instance of d.
//
// Passing the descriptor explicitly matters when v's runtime type is
// more specific than the declared type whose adapter should apply.
func (e *Engine) MarshalFor(d Descriptor, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodeFor(&buf, d, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode serializes v to w, deriving the descriptor from v's runtime
// type.
func (e *Engine) Encode(w io.Writer, v any) error {
	return e.EncodeFor(w, descriptorForValue(v), v)
}

// EncodeFor serializes v as an instance of d to w.
func (e *Engine) EncodeFor(w io.Writer, d Descriptor, v any) error {
	if e.cfg.nonExecPrefix {
		if _, err := io.WriteString(w, nonExecutePrefix+"\n"); err != nil {
			return transportErr("write", err)
		}
	}
	sw := e.writer(w)
	if err := e.WriteValue(sw, d, v); err != nil {
		return err
	}
	return sw.Flush()
}

// WriteValue writes v as one value on an adapter-level writer. Unlike
// Encode it never flushes and never emits the non-execute prefix; use it
// to interleave engine output with hand-written tokens.
func (e *Engine) WriteValue(w Writer, d Descriptor, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	a, err := e.Adapter(d)
	if err != nil {
		return err
	}
	return a.Write(w, v)
}

// Unmarshal deserializes data into out, which must be a non-nil pointer.
// An empty document leaves out untouched; an explicit null stores the
// zero value. Trailing non-whitespace content after the value is an
// error even in lenient mode.
func (e *Engine) Unmarshal(data []byte, out any) error {
	return e.Decode(bytes.NewReader(data), out)
}

// Decode deserializes one document from r into out, which must be a
// non-nil pointer.
func (e *Engine) Decode(r io.Reader, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrOutMustBePointer
	}
	elem := rv.Type().Elem()

	v, present, err := e.decodeOne(r, DescriptorOf(elem))
	if err != nil {
		return err
	}
	if !present {
		return nil
	}
	if v == nil {
		rv.Elem().Set(reflect.Zero(elem))
		return nil
	}
	got := reflect.ValueOf(v)
	if !got.Type().AssignableTo(elem) {
		return fmt.Errorf("cannot store %s into %s", got.Type(), elem)
	}
	rv.Elem().Set(got)
	return nil
}

// UnmarshalFor deserializes data as an instance of d and returns the
// value. An empty document and an explicit null both return nil.
func (e *Engine) UnmarshalFor(d Descriptor, data []byte) (any, error) {
	return e.DecodeFor(bytes.NewReader(data), d)
}

// DecodeFor deserializes one document from r as an instance of d.
func (e *Engine) DecodeFor(r io.Reader, d Descriptor) (any, error) {
	v, _, err := e.decodeOne(r, d)
	return v, err
}

func (e *Engine) decodeOne(r io.Reader, d Descriptor) (any, bool, error) {
	sr := e.reader(r)
	v, present, err := e.readValue(sr, d)
	if err != nil || !present {
		return nil, false, err
	}
	tok, err := sr.Peek()
	if err != nil {
		return nil, false, err
	}
	if tok != TokenEndDocument {
		return nil, false, sr.syntaxError("document was not fully consumed")
	}
	return v, true, nil
}

// ReadValue reads one value from an adapter-level reader. The reader is
// left positioned after the value, so callers can drive multi-value
// streams themselves.
func (e *Engine) ReadValue(r Reader, d Descriptor) (any, error) {
	a, err := e.Adapter(d)
	if err != nil {
		return nil, err
	}
	return a.Read(r)
}

func (e *Engine) readValue(sr *StreamReader, d Descriptor) (any, bool, error) {
	tok, err := sr.Peek()
	if err != nil {
		return nil, false, err
	}
	if tok == TokenEndDocument {
		return nil, false, nil
	}
	a, err := e.Adapter(d)
	if err != nil {
		return nil, false, err
	}
	v, err := a.Read(sr)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ToTree serializes v into an in-memory [Node] instead of text.
func (e *Engine) ToTree(v any) (Node, error) {
	return e.ToTreeFor(descriptorForValue(v), v)
}

// ToTreeFor serializes v as an instance of d into a [Node].
func (e *Engine) ToTreeFor(d Descriptor, v any) (Node, error) {
	tw := NewTreeWriter()
	tw.SerializeNulls = e.cfg.serializeNulls
	if err := e.WriteValue(tw, d, v); err != nil {
		return nil, err
	}
	return tw.Result(), nil
}

// FromTree deserializes a [Node] into out, which must be a non-nil
// pointer.
func (e *Engine) FromTree(n Node, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrOutMustBePointer
	}
	elem := rv.Type().Elem()

	v, err := e.FromTreeFor(DescriptorOf(elem), n)
	if err != nil {
		return err
	}
	if v == nil {
		rv.Elem().Set(reflect.Zero(elem))
		return nil
	}
	got := reflect.ValueOf(v)
	if !got.Type().AssignableTo(elem) {
		return fmt.Errorf("cannot store %s into %s", got.Type(), elem)
	}
	rv.Elem().Set(got)
	return nil
}

// FromTreeFor deserializes a [Node] as an instance of d.
func (e *Engine) FromTreeFor(d Descriptor, n Node) (any, error) {
	if n == nil || n == Null {
		n = Null
	}
	return e.ReadValue(NewTreeReader(n), d)
}

func (e *Engine) reader(r io.Reader) *StreamReader {
	var opts []ReaderOption
	if !e.cfg.lenient {
		opts = append(opts, ReaderStrict())
	}
	return NewReader(r, opts...)
}

func (e *Engine) writer(w io.Writer) *StreamWriter {
	var opts []WriterOption
	if !e.cfg.lenient {
		opts = append(opts, WriterStrict())
	}
	if e.cfg.indent != "" {
		opts = append(opts, WriterIndent(e.cfg.indent))
	}
	if !e.cfg.htmlEscape {
		opts = append(opts, WriterNoHTMLEscape())
	}
	if e.cfg.serializeNulls {
		opts = append(opts, WriterSerializeNulls())
	}
	if e.cfg.allowNonFinite {
		opts = append(opts, WriterAllowNonFinite())
	}
	return NewWriter(w, opts...)
}

func descriptorForValue(v any) Descriptor {
	if v == nil {
		return AnyType
	}
	return DescriptorOf(reflect.TypeOf(v))
}

// Marshal serializes v on e using T's descriptor. Unlike
// [Engine.Marshal] the descriptor reflects the static type, so interface
// values serialize through the declared type's adapter.
func Marshal[T any](e *Engine, v T) ([]byte, error) {
	return e.MarshalFor(TypeOf[T](), v)
}

// Unmarshal deserializes data on e as a T.
func Unmarshal[T any](e *Engine, data []byte) (T, error) {
	var out T
	err := e.Unmarshal(data, &out)
	return out, err
}

// AdapterFor returns the typed adapter for T.
func AdapterFor[T any](e *Engine) (TypeAdapter[T], error) {
	a, err := e.Adapter(TypeOf[T]())
	if err != nil {
		return TypeAdapter[T]{}, err
	}
	return TypeAdapter[T]{a: a}, nil
}
