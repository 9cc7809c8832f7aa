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
	"sync"
	"sync/atomic"
)

// Descriptor is a canonical, immutable identification of a type shape.
// It wraps an exact Go type, a parameterized form (a raw type plus
// ordered type arguments), an array-of-element form, or a variance
// wildcard ("produces at most" / "accepts at least").
//
// Descriptors are interned: two descriptors built from structurally
// equal shapes compare equal with ==, are safe to share across
// goroutines, and can be used directly as map keys.
//
// Construct descriptors with [TypeOf], [DescriptorOf], [Parameterized],
// [ArrayOf], [UpperBounded] and [LowerBounded]. The zero Descriptor is
// treated as [AnyType].
type Descriptor struct {
	n *descNode
}

type descKind uint8

const (
	descExact descKind = iota
	descParameterized
	descArray
	descWildcard
)

// descNode is the interned representation behind a Descriptor. Nodes are
// unique per canonical shape, so equality and hashing are pointer-based.
type descNode struct {
	kind    descKind
	rt      reflect.Type // exact types only
	raw     *descNode    // parameterized: the unparameterized identity
	args    []*descNode  // parameterized: ordered type arguments
	elem    *descNode    // array: the element shape
	upper   *descNode    // wildcard: "produces at most" bound
	lower   *descNode    // wildcard: "accepts at least" bound, may be nil
	erasure reflect.Type
	text    string // canonical rendering, for errors and String
}

var anyReflectType = reflect.TypeFor[any]()

// anyNode backs AnyType. Initialized before any interning can happen.
var anyNode = &descNode{kind: descExact, rt: anyReflectType, erasure: anyReflectType, text: "any"}

// unboundedNode is the canonical loosest wildcard: upper bound any, no
// lower bound. Both UpperBounded and LowerBounded collapse mixed-bound
// forms to this node.
var unboundedNode = &descNode{kind: descWildcard, upper: anyNode, erasure: anyReflectType, text: "? extends any"}

// AnyType is the universal top descriptor, the exact descriptor of the
// empty interface.
var AnyType = Descriptor{n: anyNode}

// Descriptor interning uses the read-copy-update pattern: an atomic
// pointer to an immutable map with a write-side mutex. Reads on the hot
// path are lock-free.
var (
	exactInternPtr atomic.Pointer[map[reflect.Type]*descNode]
	shapeInternPtr atomic.Pointer[map[string]*descNode]
	internMu       sync.Mutex
)

func init() {
	em := map[reflect.Type]*descNode{anyReflectType: anyNode}
	exactInternPtr.Store(&em)
	sm := make(map[string]*descNode)
	shapeInternPtr.Store(&sm)
}

// TypeOf returns the exact descriptor for T. Go generics are reified, so
// this is the type-witness construction path: a caller who has the type
// at its own call site can name it fully, including instantiated
// container types such as map[string][]int64.
func TypeOf[T any]() Descriptor {
	return DescriptorOf(reflect.TypeFor[T]())
}

// DescriptorOf returns the exact descriptor for rt. A nil type yields
// [AnyType].
func DescriptorOf(rt reflect.Type) Descriptor {
	if rt == nil {
		return AnyType
	}
	m := exactInternPtr.Load()
	if n, ok := (*m)[rt]; ok {
		return Descriptor{n: n}
	}

	internMu.Lock()
	defer internMu.Unlock()
	m = exactInternPtr.Load()
	if n, ok := (*m)[rt]; ok {
		return Descriptor{n: n}
	}

	n := &descNode{kind: descExact, rt: rt, erasure: rt, text: rt.String()}
	next := make(map[reflect.Type]*descNode, len(*m)+1)
	for k, v := range *m {
		next[k] = v
	}
	next[rt] = n
	exactInternPtr.Store(&next)
	return Descriptor{n: n}
}

// Parameterized returns the descriptor for raw instantiated with args,
// for generic container shapes whose arguments cannot be recovered from
// a value or a bare reflect.Type.
//
// Example:
//
//	pair := codec.Parameterized(codec.TypeOf[Pair[any, any]](),
//	    codec.TypeOf[string](), codec.TypeOf[int]())
func Parameterized(raw Descriptor, args ...Descriptor) Descriptor {
	rawN := raw.node()
	argNs := make([]*descNode, len(args))
	parts := make([]string, len(args))
	for i, a := range args {
		argNs[i] = a.node()
		parts[i] = argNs[i].text
	}
	return internShape(&descNode{
		kind:    descParameterized,
		raw:     rawN,
		args:    argNs,
		erasure: rawN.erasure,
		text:    rawN.text + "[" + strings.Join(parts, ", ") + "]",
	})
}

// ArrayOf returns the descriptor for "array of elem".
func ArrayOf(elem Descriptor) Descriptor {
	e := elem.node()
	return internShape(&descNode{
		kind:    descArray,
		elem:    e,
		erasure: reflect.SliceOf(e.erasure),
		text:    "[]" + e.text,
	})
}

// UpperBounded returns the wildcard descriptor "produces at most d".
// The operation is idempotent, and combining it with a lower bound
// collapses to the loosest possible bound around [AnyType]:
//
//	UpperBounded(UpperBounded(d)) == UpperBounded(d)
//	UpperBounded(LowerBounded(d)) == UpperBounded(AnyType)
func UpperBounded(d Descriptor) Descriptor {
	n := d.node()
	if n == anyNode {
		return Descriptor{n: unboundedNode}
	}
	if n.kind == descWildcard {
		if n.lower != nil {
			// "produces at most (accepts at least X)" carries no usable
			// bound; only the loosest wildcard remains.
			return Descriptor{n: unboundedNode}
		}
		return Descriptor{n: n}
	}
	return internShape(&descNode{
		kind:    descWildcard,
		upper:   n,
		erasure: n.erasure,
		text:    "? extends " + n.text,
	})
}

// LowerBounded returns the wildcard descriptor "accepts at least d".
// Idempotent, and symmetric with [UpperBounded] on mixed bounds:
//
//	LowerBounded(LowerBounded(d)) == LowerBounded(d)
//	LowerBounded(UpperBounded(d)) == UpperBounded(AnyType)
func LowerBounded(d Descriptor) Descriptor {
	n := d.node()
	if n == anyNode {
		return Descriptor{n: unboundedNode}
	}
	if n.kind == descWildcard {
		if n.lower != nil {
			return Descriptor{n: n}
		}
		return Descriptor{n: unboundedNode}
	}
	return internShape(&descNode{
		kind:    descWildcard,
		upper:   anyNode,
		lower:   n,
		erasure: anyReflectType,
		text:    "? super " + n.text,
	})
}

// internShape interns a composite node. Children are already interned,
// so a key over child identities uniquely describes the shape.
func internShape(n *descNode) Descriptor {
	key := shapeKey(n)
	m := shapeInternPtr.Load()
	if existing, ok := (*m)[key]; ok {
		return Descriptor{n: existing}
	}

	internMu.Lock()
	defer internMu.Unlock()
	m = shapeInternPtr.Load()
	if existing, ok := (*m)[key]; ok {
		return Descriptor{n: existing}
	}

	next := make(map[string]*descNode, len(*m)+1)
	for k, v := range *m {
		next[k] = v
	}
	next[key] = n
	shapeInternPtr.Store(&next)
	return Descriptor{n: n}
}

func shapeKey(n *descNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:", n.kind)
	switch n.kind {
	case descParameterized:
		fmt.Fprintf(&b, "%p", n.raw)
		for _, a := range n.args {
			fmt.Fprintf(&b, ",%p", a)
		}
	case descArray:
		fmt.Fprintf(&b, "%p", n.elem)
	case descWildcard:
		fmt.Fprintf(&b, "%p/%p", n.upper, n.lower)
	}
	return b.String()
}

// node returns the backing node, mapping the zero Descriptor to any.
func (d Descriptor) node() *descNode {
	if d.n == nil {
		return anyNode
	}
	return d.n
}

// String returns the canonical rendering of the descriptor, e.g.
// "map[string][]int64" or "? extends io.Reader".
func (d Descriptor) String() string {
	return d.node().text
}

// Equal reports whether d and other describe the same canonical shape.
// Interning makes this equivalent to ==.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.node() == other.node()
}

// Erasure returns the Go type the descriptor resolves to at run time:
// the type itself for exact descriptors, the raw type for parameterized
// ones, a slice type for arrays, and the upper bound's erasure for
// wildcards.
func (d Descriptor) Erasure() reflect.Type {
	return d.node().erasure
}

// IsExact reports whether d names a single concrete Go type.
func (d Descriptor) IsExact() bool {
	return d.node().kind == descExact
}

// Raw returns the unparameterized identity of a parameterized
// descriptor. ok is false for all other kinds.
func (d Descriptor) Raw() (Descriptor, bool) {
	n := d.node()
	if n.kind != descParameterized {
		return Descriptor{}, false
	}
	return Descriptor{n: n.raw}, true
}

// Args returns the ordered type arguments of a parameterized descriptor,
// or nil for other kinds.
func (d Descriptor) Args() []Descriptor {
	n := d.node()
	if n.kind != descParameterized {
		return nil
	}
	out := make([]Descriptor, len(n.args))
	for i, a := range n.args {
		out[i] = Descriptor{n: a}
	}
	return out
}

// Elem returns the element shape of an array descriptor. ok is false for
// other kinds.
func (d Descriptor) Elem() (Descriptor, bool) {
	n := d.node()
	if n.kind != descArray {
		return Descriptor{}, false
	}
	return Descriptor{n: n.elem}, true
}

// Bounds returns the wildcard bounds of d. For non-wildcard descriptors
// ok is false. lower is the zero Descriptor when the wildcard has no
// lower bound.
func (d Descriptor) Bounds() (upper, lower Descriptor, ok bool) {
	n := d.node()
	if n.kind != descWildcard {
		return Descriptor{}, Descriptor{}, false
	}
	upper = Descriptor{n: n.upper}
	if n.lower != nil {
		lower = Descriptor{n: n.lower}
	}
	return upper, lower, true
}

// AssignableFrom reports whether a value shaped like candidate can be
// used where d is expected: covariant against upper bounds,
// contravariant against lower bounds, invariant on exact type arguments.
//
// The walk is recursive by construction; visited (descriptor, candidate)
// pairs are tracked so mutually-recursive generic shapes terminate.
func (d Descriptor) AssignableFrom(candidate Descriptor) bool {
	return assignable(d.node(), candidate.node(), make(map[[2]*descNode]bool))
}

func assignable(target, cand *descNode, seen map[[2]*descNode]bool) bool {
	if target == cand || target == anyNode || target == unboundedNode {
		return true
	}
	pair := [2]*descNode{target, cand}
	if seen[pair] {
		// Already expanding this pair higher up the walk; treating the
		// cycle as satisfied keeps mutually-recursive shapes terminating.
		return true
	}
	seen[pair] = true

	switch target.kind {
	case descWildcard:
		// Covariant against the upper bound, contravariant against the
		// lower bound.
		candUpper, candLower := cand, cand
		if cand.kind == descWildcard {
			candUpper = cand.upper
			candLower = cand.lower
		}
		if !assignable(target.upper, candUpper, seen) {
			return false
		}
		if target.lower != nil {
			if candLower == nil {
				return false
			}
			return assignable(candLower, target.lower, seen)
		}
		return true

	case descExact:
		if cand.kind == descWildcard {
			// "? extends X" is usable where X (or an interface X
			// satisfies) is expected.
			return cand.lower == nil && assignable(target, cand.upper, seen)
		}
		if cand.kind == descParameterized {
			return assignable(target, cand.raw, seen)
		}
		if cand.kind != descExact {
			return false
		}
		if target.rt == cand.rt {
			return true
		}
		return target.rt.Kind() == reflect.Interface && cand.rt.Implements(target.rt)

	case descParameterized:
		if cand.kind != descParameterized || target.raw != cand.raw || len(target.args) != len(cand.args) {
			return false
		}
		for i, ta := range target.args {
			ca := cand.args[i]
			if ta.kind == descWildcard {
				if !assignable(ta, ca, seen) {
					return false
				}
				continue
			}
			// Exact arguments are invariant.
			if ta != ca {
				return false
			}
		}
		return true

	case descArray:
		if cand.kind != descArray {
			return false
		}
		return assignable(target.elem, cand.elem, seen)
	}
	return false
}
