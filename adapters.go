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
	"encoding/base64"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	numberType    = reflect.TypeFor[Number]()
	nodeIfaceType = reflect.TypeFor[Node]()
	byteSliceType = reflect.TypeFor[[]byte]()
	timeType      = reflect.TypeFor[time.Time]()
	durationType  = reflect.TypeFor[time.Duration]()
	uuidType      = reflect.TypeFor[uuid.UUID]()
	urlType       = reflect.TypeFor[url.URL]()
)

// canonicalScalars are the unnamed basic types whose adapters cannot be
// overridden. Named types with a basic kind resolve after user
// factories, so those remain customizable.
var canonicalScalars = map[reflect.Type]bool{
	reflect.TypeFor[string]():  true,
	reflect.TypeFor[bool]():    true,
	reflect.TypeFor[int]():     true,
	reflect.TypeFor[int8]():    true,
	reflect.TypeFor[int16]():   true,
	reflect.TypeFor[int32]():   true,
	reflect.TypeFor[int64]():   true,
	reflect.TypeFor[uint]():    true,
	reflect.TypeFor[uint8]():   true,
	reflect.TypeFor[uint16]():  true,
	reflect.TypeFor[uint32]():  true,
	reflect.TypeFor[uint64]():  true,
	reflect.TypeFor[float32](): true,
	reflect.TypeFor[float64](): true,
	numberType:                 true,
}

// foundationFactories resolve before all user factories.
func foundationFactories() []Factory {
	return []Factory{
		FactoryFunc(nodeFactory),
		FactoryFunc(anyFactory),
		FactoryFunc(boundsFactory),
		FactoryFunc(canonicalScalarFactory),
	}
}

// standardFactories resolve after user factories, so any of them can be
// shadowed by a registration.
func standardFactories() []Factory {
	return []Factory{
		FactoryFunc(timeFactory),
		FactoryFunc(durationFactory),
		FactoryFunc(uuidFactory),
		FactoryFunc(urlFactory),
		FactoryFunc(byteSliceFactory),
		FactoryFunc(namedScalarFactory),
		FactoryFunc(sliceArrayFactory),
		FactoryFunc(mapFactory),
		FactoryFunc(pointerFactory),
		FactoryFunc(interfaceFactory),
	}
}

// nullSafeAdapter reads null as the zero value of its type and writes
// nil values as null, so the wrapped adapter only ever sees real values.
type nullSafeAdapter struct {
	rt reflect.Type
	a  Adapter
}

func nullSafe(rt reflect.Type, a Adapter) Adapter {
	return &nullSafeAdapter{rt: rt, a: a}
}

func (n *nullSafeAdapter) Read(r Reader) (any, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if t == TokenNull {
		if err := r.NextNull(); err != nil {
			return nil, err
		}
		return reflect.Zero(n.rt).Interface(), nil
	}
	return n.a.Read(r)
}

func (n *nullSafeAdapter) Write(w Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return w.WriteNull()
		}
	}
	return n.a.Write(w, v)
}

// toValue converts an adapter result into something assignable to rt.
func toValue(v any, rt reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(rt)
	}
	rv := reflect.ValueOf(v)
	if rv.Type() != rt && !rv.Type().AssignableTo(rt) && rv.Type().ConvertibleTo(rt) {
		return rv.Convert(rt)
	}
	return rv
}

// nodeFactory handles the Node interface and its concrete
// implementations, so a struct field can hold a raw subtree.
func nodeFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt != nodeIfaceType && !rt.Implements(nodeIfaceType) {
		return nil, nil
	}
	return &nodeAdapter{want: rt}, nil
}

type nodeAdapter struct {
	want reflect.Type
}

func (a *nodeAdapter) Read(r Reader) (any, error) {
	n, err := ReadNode(r)
	if err != nil {
		return nil, err
	}
	if a.want == nodeIfaceType {
		return n, nil
	}
	if n == Null {
		return reflect.Zero(a.want).Interface(), nil
	}
	if reflect.TypeOf(n) != a.want {
		return nil, fmt.Errorf("expected %s but document holds %s", a.want, n.Kind())
	}
	return n, nil
}

func (a *nodeAdapter) Write(w Writer, v any) error {
	n, ok := v.(Node)
	if !ok || n == nil {
		return w.WriteNull()
	}
	return WriteNode(w, n)
}

// anyFactory handles the empty interface: values round-trip through
// maps, slices, strings, float64s, bools and nil, the way a schemaless
// document naturally maps to Go.
func anyFactory(res *Resolution, d Descriptor) (Adapter, error) {
	if !d.Equal(AnyType) {
		return nil, nil
	}
	return &anyAdapter{engine: res.Engine()}, nil
}

type anyAdapter struct {
	engine *Engine
}

func (a *anyAdapter) Read(r Reader) (any, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	switch t {
	case TokenBeginObject:
		if err := r.BeginObject(); err != nil {
			return nil, err
		}
		m := make(map[string]any)
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
			v, err := a.Read(r)
			if err != nil {
				return nil, err
			}
			m[name] = v
		}
		return m, r.EndObject()
	case TokenBeginArray:
		if err := r.BeginArray(); err != nil {
			return nil, err
		}
		out := []any{}
		for {
			more, err := r.HasNext()
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
			v, err := a.Read(r)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, r.EndArray()
	case TokenString:
		return r.NextString()
	case TokenNumber:
		return r.NextFloat64()
	case TokenBool:
		return r.NextBool()
	case TokenNull:
		return nil, r.NextNull()
	default:
		return nil, fmt.Errorf("expected a value but was %s", t)
	}
}

func (a *anyAdapter) Write(w Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	rt := reflect.TypeOf(v)
	delegate, err := a.engine.Adapter(DescriptorOf(rt))
	if err != nil {
		return err
	}
	return delegate.Write(w, v)
}

// boundsFactory maps wildcard descriptors onto their erasure: a value
// known as "extends X" serializes the way an X does.
func boundsFactory(res *Resolution, d Descriptor) (Adapter, error) {
	if _, _, ok := d.Bounds(); !ok {
		return nil, nil
	}
	return res.Adapter(DescriptorOf(d.Erasure()))
}

func canonicalScalarFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if !d.IsExact() || !canonicalScalars[rt] {
		return nil, nil
	}
	return nullSafe(rt, scalarAdapterFor(rt)), nil
}

// namedScalarFactory binds named types with a basic kind, such as
// `type Celsius float64`. It runs after user factories so such types
// can be given custom adapters.
func namedScalarFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	switch rt.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nullSafe(rt, scalarAdapterFor(rt)), nil
	}
	return nil, nil
}

func scalarAdapterFor(rt reflect.Type) Adapter {
	if rt == numberType {
		return numberAdapter{}
	}
	return &scalarAdapter{rt: rt}
}

type numberAdapter struct{}

func (numberAdapter) Read(r Reader) (any, error) {
	return r.NextNumber()
}

func (numberAdapter) Write(w Writer, v any) error {
	return w.WriteNumber(v.(Number))
}

// scalarAdapter binds any type with a basic kind through reflection, so
// the same code serves both `int64` and `type UserID int64`.
type scalarAdapter struct {
	rt reflect.Type
}

func (a *scalarAdapter) Read(r Reader) (any, error) {
	out := reflect.New(a.rt).Elem()
	switch a.rt.Kind() {
	case reflect.String:
		s, err := r.NextString()
		if err != nil {
			return nil, err
		}
		out.SetString(s)
	case reflect.Bool:
		b, err := r.NextBool()
		if err != nil {
			return nil, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := r.NextInt64()
		if err != nil {
			return nil, err
		}
		if out.OverflowInt(v) {
			return nil, fmt.Errorf("value %d overflows %s", v, a.rt)
		}
		out.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		if out.OverflowUint(v) {
			return nil, fmt.Errorf("value %d overflows %s", v, a.rt)
		}
		out.SetUint(v)
	case reflect.Float32, reflect.Float64:
		f, err := r.NextFloat64()
		if err != nil {
			return nil, err
		}
		if out.OverflowFloat(f) {
			return nil, fmt.Errorf("value %g overflows %s", f, a.rt)
		}
		out.SetFloat(f)
	default:
		return nil, fmt.Errorf("no scalar binding for %s", a.rt)
	}
	return out.Interface(), nil
}

func (a *scalarAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	switch a.rt.Kind() {
	case reflect.String:
		return w.WriteString(rv.String())
	case reflect.Bool:
		return w.WriteBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.WriteInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return w.WriteUint64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return w.WriteFloat64(rv.Float())
	}
	return fmt.Errorf("no scalar binding for %s", a.rt)
}

// readUint64 parses the next numeric token as a uint64, tolerating
// exponent forms that still denote a whole non-negative value.
func readUint64(r Reader) (uint64, error) {
	n, err := r.NextNumber()
	if err != nil {
		return 0, err
	}
	if v, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("expected an unsigned integer but was %s", n)
	}
	v := uint64(f)
	if f < 0 || float64(v) != f {
		return 0, fmt.Errorf("expected an unsigned integer but was %s", n)
	}
	return v, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func timeFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	if d.Erasure() != timeType {
		return nil, nil
	}
	return nullSafe(timeType, timeAdapter{}), nil
}

type timeAdapter struct{}

func (timeAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse %q as time.Time", s)
}

func (timeAdapter) Write(w Writer, v any) error {
	return w.WriteString(v.(time.Time).Format(time.RFC3339Nano))
}

func durationFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	if d.Erasure() != durationType {
		return nil, nil
	}
	return nullSafe(durationType, durationAdapter{}), nil
}

// durationAdapter writes durations in Go's text form ("1h30m") and also
// accepts raw nanosecond counts when reading.
type durationAdapter struct{}

func (durationAdapter) Read(r Reader) (any, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if t == TokenNumber {
		n, err := r.NextInt64()
		if err != nil {
			return nil, err
		}
		return time.Duration(n), nil
	}
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as time.Duration: %w", s, err)
	}
	return dur, nil
}

func (durationAdapter) Write(w Writer, v any) error {
	return w.WriteString(v.(time.Duration).String())
}

func uuidFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	if d.Erasure() != uuidType {
		return nil, nil
	}
	return nullSafe(uuidType, uuidAdapter{}), nil
}

type uuidAdapter struct{}

func (uuidAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as uuid.UUID: %w", s, err)
	}
	return id, nil
}

func (uuidAdapter) Write(w Writer, v any) error {
	return w.WriteString(v.(uuid.UUID).String())
}

func urlFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	if d.Erasure() != urlType {
		return nil, nil
	}
	return nullSafe(urlType, urlAdapter{}), nil
}

type urlAdapter struct{}

func (urlAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %q as url.URL: %w", s, err)
	}
	return *u, nil
}

func (urlAdapter) Write(w Writer, v any) error {
	u := v.(url.URL)
	return w.WriteString(u.String())
}

// byteSliceFactory binds []byte as a base64 string, matching the common
// wire convention for binary payloads.
func byteSliceFactory(_ *Resolution, d Descriptor) (Adapter, error) {
	if d.Erasure() != byteSliceType {
		return nil, nil
	}
	return nullSafe(byteSliceType, byteSliceAdapter{}), nil
}

type byteSliceAdapter struct{}

func (byteSliceAdapter) Read(r Reader) (any, error) {
	s, err := r.NextString()
	if err != nil {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cannot decode base64 value: %w", err)
	}
	return b, nil
}

func (byteSliceAdapter) Write(w Writer, v any) error {
	return w.WriteString(base64.StdEncoding.EncodeToString(v.([]byte)))
}

func sliceArrayFactory(res *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt.Kind() != reflect.Slice && rt.Kind() != reflect.Array {
		return nil, nil
	}
	elemDesc, ok := d.Elem()
	if !ok {
		elemDesc = DescriptorOf(rt.Elem())
	}
	elem, err := res.Adapter(elemDesc)
	if err != nil {
		return nil, err
	}
	return nullSafe(rt, &sliceAdapter{rt: rt, elemType: rt.Elem(), elem: elem}), nil
}

type sliceAdapter struct {
	rt       reflect.Type
	elemType reflect.Type
	elem     Adapter
}

func (a *sliceAdapter) Read(r Reader) (any, error) {
	if err := r.BeginArray(); err != nil {
		return nil, err
	}
	out := reflect.New(a.rt).Elem()
	if a.rt.Kind() == reflect.Slice {
		out.Set(reflect.MakeSlice(a.rt, 0, 8))
	}
	i := 0
	for {
		more, err := r.HasNext()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		ev, err := a.readElement(r)
		if err != nil {
			return nil, err
		}
		if a.rt.Kind() == reflect.Slice {
			out.Set(reflect.Append(out, ev))
		} else if i < a.rt.Len() {
			out.Index(i).Set(ev)
		}
		i++
	}
	if err := r.EndArray(); err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

func (a *sliceAdapter) readElement(r Reader) (reflect.Value, error) {
	t, err := r.Peek()
	if err != nil {
		return reflect.Value{}, err
	}
	if t == TokenNull {
		if err := r.NextNull(); err != nil {
			return reflect.Value{}, err
		}
		return reflect.Zero(a.elemType), nil
	}
	v, err := a.elem.Read(r)
	if err != nil {
		return reflect.Value{}, err
	}
	return toValue(v, a.elemType), nil
}

func (a *sliceAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	if err := w.BeginArray(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		ev := rv.Index(i)
		if isNilValue(ev) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := a.elem.Write(w, ev.Interface()); err != nil {
			return err
		}
	}
	return w.EndArray()
}

func isNilValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func mapFactory(res *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt.Kind() != reflect.Map {
		return nil, nil
	}
	kc, err := keyCodecFor(rt.Key())
	if err != nil {
		return nil, err
	}
	val, err := res.Adapter(DescriptorOf(rt.Elem()))
	if err != nil {
		return nil, err
	}
	return nullSafe(rt, &mapAdapter{rt: rt, valType: rt.Elem(), keys: kc, val: val}), nil
}

// keyCodec turns map keys into member names and back.
type keyCodec struct {
	encode func(reflect.Value) string
	decode func(string, reflect.Type) (reflect.Value, error)
}

func keyCodecFor(kt reflect.Type) (*keyCodec, error) {
	switch kt.Kind() {
	case reflect.String:
		return &keyCodec{
			encode: func(v reflect.Value) string { return v.String() },
			decode: func(s string, rt reflect.Type) (reflect.Value, error) {
				k := reflect.New(rt).Elem()
				k.SetString(s)
				return k, nil
			},
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &keyCodec{
			encode: func(v reflect.Value) string { return strconv.FormatInt(v.Int(), 10) },
			decode: func(s string, rt reflect.Type) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil || reflect.New(rt).Elem().OverflowInt(n) {
					return reflect.Value{}, fmt.Errorf("cannot use %q as a %s map key", s, rt)
				}
				k := reflect.New(rt).Elem()
				k.SetInt(n)
				return k, nil
			},
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &keyCodec{
			encode: func(v reflect.Value) string { return strconv.FormatUint(v.Uint(), 10) },
			decode: func(s string, rt reflect.Type) (reflect.Value, error) {
				n, err := strconv.ParseUint(s, 10, 64)
				if err != nil || reflect.New(rt).Elem().OverflowUint(n) {
					return reflect.Value{}, fmt.Errorf("cannot use %q as a %s map key", s, rt)
				}
				k := reflect.New(rt).Elem()
				k.SetUint(n)
				return k, nil
			},
		}, nil
	}
	return nil, fmt.Errorf("map key type %s is not representable as a member name", kt)
}

type mapAdapter struct {
	rt      reflect.Type
	valType reflect.Type
	keys    *keyCodec
	val     Adapter
}

func (a *mapAdapter) Read(r Reader) (any, error) {
	if err := r.BeginObject(); err != nil {
		return nil, err
	}
	m := reflect.MakeMap(a.rt)
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
		key, err := a.keys.decode(name, a.rt.Key())
		if err != nil {
			return nil, err
		}
		if m.MapIndex(key).IsValid() {
			return nil, fmt.Errorf("duplicate map key %q at %s", name, r.Path())
		}
		t, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if t == TokenNull {
			if err := r.NextNull(); err != nil {
				return nil, err
			}
			m.SetMapIndex(key, reflect.Zero(a.valType))
			continue
		}
		v, err := a.val.Read(r)
		if err != nil {
			return nil, err
		}
		m.SetMapIndex(key, toValue(v, a.valType))
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return m.Interface(), nil
}

// Write emits members sorted by name so output is deterministic across
// map iteration orders.
func (a *mapAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	type member struct {
		name string
		val  reflect.Value
	}
	members := make([]member, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		members = append(members, member{a.keys.encode(iter.Key()), iter.Value()})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].name < members[j].name })

	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, m := range members {
		if err := w.Name(m.name); err != nil {
			return err
		}
		if isNilValue(m.val) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := a.val.Write(w, m.val.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

func pointerFactory(res *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt.Kind() != reflect.Pointer {
		return nil, nil
	}
	elem, err := res.Adapter(DescriptorOf(rt.Elem()))
	if err != nil {
		return nil, err
	}
	return &pointerAdapter{rt: rt, elem: elem}, nil
}

type pointerAdapter struct {
	rt   reflect.Type
	elem Adapter
}

func (a *pointerAdapter) Read(r Reader) (any, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if t == TokenNull {
		if err := r.NextNull(); err != nil {
			return nil, err
		}
		return reflect.Zero(a.rt).Interface(), nil
	}
	v, err := a.elem.Read(r)
	if err != nil {
		return nil, err
	}
	p := reflect.New(a.rt.Elem())
	p.Elem().Set(toValue(v, a.rt.Elem()))
	return p.Interface(), nil
}

func (a *pointerAdapter) Write(w Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	rv := reflect.ValueOf(v)
	if rv.IsNil() {
		return w.WriteNull()
	}
	return a.elem.Write(w, rv.Elem().Interface())
}

// interfaceFactory serializes non-empty interface values through their
// runtime type. Reading is only possible for null; a concrete target
// type cannot be inferred from the document alone.
func interfaceFactory(res *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt.Kind() != reflect.Interface {
		return nil, nil
	}
	return &interfaceAdapter{engine: res.Engine(), rt: rt}, nil
}

type interfaceAdapter struct {
	engine *Engine
	rt     reflect.Type
}

func (a *interfaceAdapter) Read(r Reader) (any, error) {
	t, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if t == TokenNull {
		return nil, r.NextNull()
	}
	return nil, fmt.Errorf("cannot deserialize into interface %s; register an adapter for it", a.rt)
}

func (a *interfaceAdapter) Write(w Writer, v any) error {
	if v == nil {
		return w.WriteNull()
	}
	delegate, err := a.engine.Adapter(DescriptorOf(reflect.TypeOf(v)))
	if err != nil {
		return err
	}
	return delegate.Write(w, v)
}
