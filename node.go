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
	"strconv"

	"github.com/spf13/cast"
)

// NodeKind identifies the shape of a [Node].
type NodeKind uint8

const (
	KindNull NodeKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k NodeKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is an in-memory document value: an object, an array, a scalar, or
// null. Trees are what [Engine.ToTree] produces and [Engine.FromTree]
// consumes, and they move through the same adapters as text does.
//
// Nodes are not safe for concurrent mutation.
type Node interface {
	// Kind reports the node's shape.
	Kind() NodeKind

	// Equal reports deep equality. Object members compare without
	// regard to insertion order; array elements compare in order.
	Equal(other Node) bool

	sealed()
}

type nullNode struct{}

// Null is the singleton null node.
var Null Node = nullNode{}

func (nullNode) Kind() NodeKind    { return KindNull }
func (nullNode) Equal(o Node) bool { return o != nil && o.Kind() == KindNull }
func (nullNode) sealed()           {}
func (nullNode) String() string    { return "null" }

// ScalarNode holds a string, a bool, or a number.
type ScalarNode struct {
	v any // string, bool or Number
}

// StringNode returns a scalar holding s.
func StringNode(s string) *ScalarNode { return &ScalarNode{v: s} }

// BoolNode returns a scalar holding b.
func BoolNode(b bool) *ScalarNode { return &ScalarNode{v: b} }

// NumberNode returns a scalar holding the exact numeric text n.
func NumberNode(n Number) *ScalarNode { return &ScalarNode{v: n} }

// IntNode returns a numeric scalar holding v.
func IntNode(v int64) *ScalarNode {
	return &ScalarNode{v: Number(strconv.FormatInt(v, 10))}
}

// FloatNode returns a numeric scalar holding f.
func FloatNode(f float64) *ScalarNode {
	return &ScalarNode{v: Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Kind reports whether the scalar is a string, bool or number.
func (s *ScalarNode) Kind() NodeKind {
	switch s.v.(type) {
	case bool:
		return KindBool
	case Number:
		return KindNumber
	default:
		return KindString
	}
}

func (s *ScalarNode) sealed() {}

// Equal compares scalars by kind and value.
func (s *ScalarNode) Equal(o Node) bool {
	os, ok := o.(*ScalarNode)
	return ok && s.v == os.v
}

// unwrap exposes the raw value with Number lowered to its text, which is
// the form the cast conversions understand.
func (s *ScalarNode) unwrap() any {
	if n, ok := s.v.(Number); ok {
		return string(n)
	}
	return s.v
}

// AsString renders the scalar as a string; numbers and bools use their
// literal text.
func (s *ScalarNode) AsString() string { return cast.ToString(s.unwrap()) }

// AsInt64 converts the scalar to an int64.
func (s *ScalarNode) AsInt64() (int64, error) { return cast.ToInt64E(s.unwrap()) }

// AsFloat64 converts the scalar to a float64.
func (s *ScalarNode) AsFloat64() (float64, error) { return cast.ToFloat64E(s.unwrap()) }

// AsBool converts the scalar to a bool.
func (s *ScalarNode) AsBool() (bool, error) { return cast.ToBoolE(s.unwrap()) }

// Number returns the exact numeric text when the scalar is a number.
func (s *ScalarNode) Number() (Number, bool) {
	n, ok := s.v.(Number)
	return n, ok
}

// String renders the scalar's literal text.
func (s *ScalarNode) String() string { return s.AsString() }

// ObjectNode is an object whose members keep insertion order.
// Re-setting an existing name replaces the value in place.
type ObjectNode struct {
	names   []string
	members map[string]Node
}

// NewObject returns an empty object node.
func NewObject() *ObjectNode {
	return &ObjectNode{members: make(map[string]Node)}
}

// Kind returns KindObject.
func (o *ObjectNode) Kind() NodeKind { return KindObject }

func (o *ObjectNode) sealed() {}

// Set stores a member, keeping the position of an already present name.
// A nil node stores Null. Set returns o for chaining.
func (o *ObjectNode) Set(name string, n Node) *ObjectNode {
	if n == nil {
		n = Null
	}
	if _, ok := o.members[name]; !ok {
		o.names = append(o.names, name)
	}
	o.members[name] = n
	return o
}

// Get returns the member for name.
func (o *ObjectNode) Get(name string) (Node, bool) {
	n, ok := o.members[name]
	return n, ok
}

// Remove deletes the member for name and returns it.
func (o *ObjectNode) Remove(name string) (Node, bool) {
	n, ok := o.members[name]
	if !ok {
		return nil, false
	}
	delete(o.members, name)
	for i, have := range o.names {
		if have == name {
			o.names = append(o.names[:i], o.names[i+1:]...)
			break
		}
	}
	return n, true
}

// Names returns the member names in insertion order.
func (o *ObjectNode) Names() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Len returns the member count.
func (o *ObjectNode) Len() int { return len(o.names) }

// Equal compares objects by membership, ignoring insertion order.
func (o *ObjectNode) Equal(other Node) bool {
	oo, ok := other.(*ObjectNode)
	if !ok || len(o.members) != len(oo.members) {
		return false
	}
	for name, n := range o.members {
		on, ok := oo.members[name]
		if !ok || !n.Equal(on) {
			return false
		}
	}
	return true
}

// ArrayNode is an ordered list of nodes.
type ArrayNode struct {
	elems []Node
}

// NewArray returns an array node holding the given elements.
func NewArray(elems ...Node) *ArrayNode {
	a := &ArrayNode{}
	return a.Append(elems...)
}

// Kind returns KindArray.
func (a *ArrayNode) Kind() NodeKind { return KindArray }

func (a *ArrayNode) sealed() {}

// Append adds elements to the end. Nil elements are stored as Null.
// Append returns a for chaining.
func (a *ArrayNode) Append(elems ...Node) *ArrayNode {
	for _, n := range elems {
		if n == nil {
			n = Null
		}
		a.elems = append(a.elems, n)
	}
	return a
}

// Len returns the element count.
func (a *ArrayNode) Len() int { return len(a.elems) }

// At returns the element at index i.
func (a *ArrayNode) At(i int) Node { return a.elems[i] }

// Equal compares arrays element by element, in order.
func (a *ArrayNode) Equal(other Node) bool {
	oa, ok := other.(*ArrayNode)
	if !ok || len(a.elems) != len(oa.elems) {
		return false
	}
	for i, n := range a.elems {
		if !n.Equal(oa.elems[i]) {
			return false
		}
	}
	return true
}

// ReadNode consumes one value from r and returns it as a tree.
func ReadNode(r Reader) (Node, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch t {
	case TokenBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		obj := NewObject()
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			name, err := r.NextName()
			if err != nil {
				return nil, err
			}
			child, err := ReadNode(r)
			if err != nil {
				return nil, err
			}
			obj.Set(name, child)
		}
		return obj, r.EndObject()
	case TokenBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		arr := NewArray()
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			child, err := ReadNode(r)
			if err != nil {
				return nil, err
			}
			arr.Append(child)
		}
		return arr, r.EndArray()
	case TokenString:
		s, err := r.NextString()
		if err != nil {
			return nil, err
		}
		return StringNode(s), nil
	case TokenNumber:
		n, err := r.NextNumber()
		if err != nil {
			return nil, err
		}
		return NumberNode(n), nil
	case TokenBool:
		b, err := r.NextBool()
		if err != nil {
			return nil, err
		}
		return BoolNode(b), nil
	case TokenNull:
		return Null, r.NextNull()
	default:
		return nil, fmt.Errorf("expected a value but was %s", t)
	}
}

// WriteNode emits n as one value on w. Null members inside objects
// follow the writer's null handling, so a non-serializing writer elides
// them along with their names.
func WriteNode(w Writer, n Node) error {
	if n == nil {
		n = Null
	}
	switch n := n.(type) {
	case nullNode:
		return w.WriteNull()
	case *ScalarNode:
		switch v := n.v.(type) {
		case string:
			return w.WriteString(v)
		case bool:
			return w.WriteBool(v)
		case Number:
			return w.WriteNumber(v)
		}
		return fmt.Errorf("scalar node holds unsupported value %T", n.v)
	case *ArrayNode:
		if err := w.BeginArray(); err != nil {
			return err
		}
		for _, el := range n.elems {
			if err := WriteNode(w, el); err != nil {
				return err
			}
		}
		return w.EndArray()
	case *ObjectNode:
		if err := w.BeginObject(); err != nil {
			return err
		}
		for _, name := range n.names {
			if err := w.Name(name); err != nil {
				return err
			}
			if err := WriteNode(w, n.members[name]); err != nil {
				return err
			}
		}
		return w.EndObject()
	default:
		return fmt.Errorf("unsupported node type %T", n)
	}
}
