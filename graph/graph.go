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

// Package graph serializes object graphs that contain cycles or shared
// references, which the plain tree-shaped wire format cannot express.
//
// A registered value serializes as an object keyed by reference labels
// in discovery order, with every cross-reference written as a label:
//
//	{"0x1":{"name":"ROCK","beats":"0x2"},"0x2":{"name":"SCISSORS","beats":"0x1"}}
//
// Deserialization restores identity: two references to the same label
// yield the same pointer, including self-references.
package graph

import (
	"fmt"
	"reflect"

	"rivaas.dev/codec"
)

// Builder collects the pointer-to-struct types whose values participate
// in graph serialization.
//
// Example:
//
//	f, err := graph.NewBuilder().
//	    AddType(codec.TypeOf[*Roshambo]()).
//	    Factory()
//	if err != nil {
//	    return err
//	}
//	e := codec.MustNew(codec.WithFactory(f))
type Builder struct {
	types []codec.Descriptor
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddType registers a type. It must describe a pointer to a struct;
// identity has no meaning for value types.
func (b *Builder) AddType(d codec.Descriptor) *Builder {
	b.types = append(b.types, d)
	return b
}

// Factory returns the factory to register on an engine with
// [codec.WithFactory]. It fails if any registered type is not a pointer
// to a struct.
func (b *Builder) Factory() (codec.Factory, error) {
	if len(b.types) == 0 {
		return nil, fmt.Errorf("graph: no types registered")
	}
	types := make(map[codec.Descriptor]bool, len(b.types))
	for _, d := range b.types {
		rt := d.Erasure()
		if rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("graph: %s is not a pointer to a struct", d)
		}
		types[d] = true
	}
	return &factory{types: types}, nil
}

type factory struct {
	types map[codec.Descriptor]bool
}

// Create claims registered descriptors and wraps the adapter the engine
// would otherwise use for them.
func (f *factory) Create(res *codec.Resolution, d codec.Descriptor) (codec.Adapter, error) {
	if !f.types[d] {
		return nil, nil
	}
	delegate, err := res.Delegate(f, d)
	if err != nil {
		return nil, err
	}
	return &adapter{
		rt:       d.Erasure(),
		delegate: delegate,
	}, nil
}

type adapter struct {
	rt       reflect.Type // pointer to struct
	delegate codec.Adapter
}

// graphWriter carries the label assignments of one in-progress write.
// Registered adapters recognize it and emit labels instead of values.
type graphWriter struct {
	codec.Writer
	labels map[any]string
	queue  []queued
}

type queued struct {
	label string
	value any
	via   *adapter
}

// labelFor returns v's label, assigning the next one and enqueueing v on
// first sight.
func (g *graphWriter) labelFor(v any, via *adapter) string {
	if label, ok := g.labels[v]; ok {
		return label
	}
	label := fmt.Sprintf("0x%x", len(g.labels)+1)
	g.labels[v] = label
	g.queue = append(g.queue, queued{label: label, value: v, via: via})
	return label
}

func (a *adapter) Write(w codec.Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return w.WriteNull()
	}

	if gw, ok := w.(*graphWriter); ok {
		// Inside an enclosing graph write: emit the label only; the
		// value itself is serialized from the queue.
		return gw.Writer.WriteString(gw.labelFor(v, a))
	}

	gw := &graphWriter{Writer: w, labels: make(map[any]string)}
	gw.labelFor(v, a)
	if err := w.BeginObject(); err != nil {
		return err
	}
	for len(gw.queue) > 0 {
		next := gw.queue[0]
		gw.queue = gw.queue[1:]
		if err := w.Name(next.label); err != nil {
			return err
		}
		if err := next.via.delegate.Write(gw, next.value); err != nil {
			return err
		}
	}
	return w.EndObject()
}

// graphReader carries the instances of one in-progress read. Registered
// adapters recognize it and resolve labels against it.
type graphReader struct {
	codec.Reader
	ctx *readContext
}

type readContext struct {
	nodes     map[string]codec.Node
	instances map[string]any
}

// valueFor returns the instance for label, constructing and populating
// it on first request. The instance is published before its own members
// deserialize, which is what lets cycles terminate with identity intact.
func (c *readContext) valueFor(a *adapter, label string) (any, error) {
	if inst, ok := c.instances[label]; ok {
		if reflect.TypeOf(inst) != a.rt {
			return nil, fmt.Errorf("graph: reference %q resolved as both %s and %T", label, a.rt, inst)
		}
		return inst, nil
	}
	node, ok := c.nodes[label]
	if !ok {
		return nil, fmt.Errorf("graph: unknown reference %q", label)
	}

	pv := reflect.New(a.rt.Elem())
	c.instances[label] = pv.Interface()

	inner := &graphReader{Reader: codec.NewTreeReader(node), ctx: c}
	got, err := a.delegate.Read(inner)
	if err != nil {
		return nil, err
	}
	// The delegate allocated its own instance; copy its state into the
	// published one so earlier references stay valid.
	gv := reflect.ValueOf(got)
	if gv.Kind() == reflect.Pointer && !gv.IsNil() {
		pv.Elem().Set(gv.Elem())
	}
	return pv.Interface(), nil
}

func (a *adapter) Read(r codec.Reader) (any, error) {
	if gr, ok := r.(*graphReader); ok {
		// Inside an enclosing graph read: the value is a label.
		label, err := gr.Reader.NextString()
		if err != nil {
			return nil, err
		}
		return gr.ctx.valueFor(a, label)
	}

	tok, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if tok == codec.TokenNull {
		if err := r.NextNull(); err != nil {
			return nil, err
		}
		return reflect.Zero(a.rt).Interface(), nil
	}

	ctx := &readContext{
		nodes:     make(map[string]codec.Node),
		instances: make(map[string]any),
	}
	var root string
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		label, err := r.NextName()
		if err != nil {
			return nil, err
		}
		node, err := codec.ReadNode(r)
		if err != nil {
			return nil, err
		}
		if root == "" {
			root = label
		}
		ctx.nodes[label] = node
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	if root == "" {
		return nil, fmt.Errorf("graph: document holds no values")
	}
	return ctx.valueFor(a, root)
}
