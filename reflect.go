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
	"sort"
	"strings"
)

// reflectiveFactory is the fallback binder: any struct that no earlier
// factory claimed is bound field by field through reflection.
type reflectiveFactory struct{}

func (rf *reflectiveFactory) Create(res *Resolution, d Descriptor) (Adapter, error) {
	rt := d.Erasure()
	if rt.Kind() != reflect.Struct {
		return nil, nil
	}
	e := res.Engine()

	fields, err := bindFields(rt, e.cfg)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*boundField, len(fields))
	for _, f := range fields {
		a, err := res.Adapter(DescriptorOf(f.typ))
		if err != nil {
			return nil, err
		}
		f.adapter = a
		byName[f.name] = f
	}

	ad := &reflectiveAdapter{
		rt:      rt,
		fields:  fields,
		byName:  byName,
		creator: e.cfg.creators[rt],
		events:  e.cfg.events,
	}
	return nullSafe(rt, ad), nil
}

// boundField is one wire member of a struct, possibly reached through
// embedded types.
type boundField struct {
	name      string
	index     []int
	typ       reflect.Type
	declaring reflect.Type
	depth     int
	order     int
	omitEmpty bool
	nillable  bool
	adapter   Adapter
}

// bindFields enumerates the wire members of rt, applying tags, the
// naming policy, exclusions and embedded-field promotion. Two members
// with the same name at the same promotion depth are a hard error; a
// shallower member silently shadows deeper ones, matching Go's own
// selector rules.
func bindFields(rt reflect.Type, cfg *config) ([]*boundField, error) {
	var all []*boundField
	order := 0

	var walk func(rt reflect.Type, index []int, depth int) error
	walk = func(rt reflect.Type, index []int, depth int) error {
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			tag := f.Tag.Get("json")
			if tag == "-" {
				continue
			}
			if f.Anonymous && tag == "" {
				ft := f.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				// Embedded structs promote regardless of the type name's
				// exportedness; only their exported fields are visible.
				if ft.Kind() == reflect.Struct {
					if err := walk(ft, append(append([]int{}, index...), i), depth+1); err != nil {
						return err
					}
					continue
				}
			}
			if f.PkgPath != "" {
				continue
			}
			if cfg.exclude != nil && cfg.exclude(f) {
				continue
			}

			name, opts := parseTag(tag)
			if name == "" {
				name = cfg.naming(f.Name)
			}
			all = append(all, &boundField{
				name:      name,
				index:     append(append([]int{}, index...), i),
				typ:       f.Type,
				declaring: rt,
				depth:     depth,
				order:     order,
				omitEmpty: opts.contains("omitempty"),
				nillable:  isNillableKind(f.Type.Kind()),
			})
			order++
		}
		return nil
	}
	if err := walk(rt, nil, 0); err != nil {
		return nil, err
	}

	grouped := make(map[string][]*boundField)
	for _, f := range all {
		grouped[f.name] = append(grouped[f.name], f)
	}
	var out []*boundField
	for _, group := range grouped {
		sort.Slice(group, func(i, j int) bool {
			if group[i].depth != group[j].depth {
				return group[i].depth < group[j].depth
			}
			return group[i].order < group[j].order
		})
		if len(group) > 1 && group[0].depth == group[1].depth {
			return nil, &ConflictError{
				Name:   group[0].name,
				First:  group[0].declaring,
				Second: group[1].declaring,
			}
		}
		out = append(out, group[0])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out, nil
}

type tagOptions string

func (o tagOptions) contains(opt string) bool {
	s := string(o)
	for s != "" {
		var cur string
		cur, s, _ = strings.Cut(s, ",")
		if cur == opt {
			return true
		}
	}
	return false
}

func parseTag(tag string) (string, tagOptions) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, tagOptions(opts)
}

func isNillableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return true
	}
	return false
}

// reflectiveAdapter binds one struct type. Writing walks the bound
// fields in declaration order; reading matches incoming names against
// them, skipping members no field claims.
type reflectiveAdapter struct {
	rt      reflect.Type
	fields  []*boundField
	byName  map[string]*boundField
	creator func() (any, error)
	events  Events
}

func (a *reflectiveAdapter) newInstance() (reflect.Value, error) {
	if a.creator == nil {
		return reflect.New(a.rt), nil
	}
	inst, err := a.creator()
	if err != nil {
		return reflect.Value{}, &ConstructionError{Type: a.rt, Err: err}
	}
	rv := reflect.ValueOf(inst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Type().Elem() != a.rt {
		return reflect.Value{}, &ConstructionError{
			Type: a.rt,
			Err:  fmt.Errorf("creator returned %T, want *%s", inst, a.rt),
		}
	}
	return rv, nil
}

func (a *reflectiveAdapter) Read(r Reader) (any, error) {
	pv, err := a.newInstance()
	if err != nil {
		return nil, err
	}
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
		name, err := r.NextName()
		if err != nil {
			return nil, err
		}
		f := a.byName[name]
		if f == nil {
			if a.events.UnknownMember != nil {
				a.events.UnknownMember(r.Path())
			}
			if err := r.Skip(); err != nil {
				return nil, err
			}
			continue
		}
		tok, err := r.Peek()
		if err != nil {
			return nil, err
		}
		if tok == TokenNull {
			if err := r.NextNull(); err != nil {
				return nil, err
			}
			// Null only lands in fields that can hold it; others keep
			// their current value.
			if f.nillable {
				fv, err := fieldByIndexAlloc(pv.Elem(), f.index)
				if err != nil {
					return nil, err
				}
				fv.Set(reflect.Zero(f.typ))
			}
			continue
		}
		v, err := f.adapter.Read(r)
		if err != nil {
			return nil, err
		}
		fv, err := fieldByIndexAlloc(pv.Elem(), f.index)
		if err != nil {
			return nil, err
		}
		fv.Set(toValue(v, f.typ))
	}
	if err := r.EndObject(); err != nil {
		return nil, err
	}
	return pv.Elem().Interface(), nil
}

func (a *reflectiveAdapter) Write(w Writer, v any) error {
	rv := reflect.ValueOf(v)
	if err := w.BeginObject(); err != nil {
		return err
	}
	for _, f := range a.fields {
		fv, ok := fieldByIndex(rv, f.index)
		if !ok {
			continue
		}
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		if err := w.Name(f.name); err != nil {
			return err
		}
		if isNilValue(fv) {
			if err := w.WriteNull(); err != nil {
				return err
			}
			continue
		}
		if err := f.adapter.Write(w, fv.Interface()); err != nil {
			return err
		}
	}
	return w.EndObject()
}

// fieldByIndex resolves an embedded field path for reading, reporting
// false when a nil embedded pointer interrupts the path.
func fieldByIndex(rv reflect.Value, index []int) (reflect.Value, bool) {
	for n, i := range index {
		if n > 0 {
			if rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					return reflect.Value{}, false
				}
				rv = rv.Elem()
			}
		}
		rv = rv.Field(i)
	}
	return rv, true
}

// fieldByIndexAlloc resolves an embedded field path for writing into the
// struct, allocating nil embedded pointers along the way. A nil pointer
// to an unexported embedded type cannot be set through reflection, so
// reaching a member through one is an error rather than a panic.
func fieldByIndexAlloc(rv reflect.Value, index []int) (reflect.Value, error) {
	for n, i := range index {
		if n > 0 {
			if rv.Kind() == reflect.Pointer {
				if rv.IsNil() {
					if !rv.CanSet() {
						return reflect.Value{}, fmt.Errorf("cannot allocate embedded pointer to unexported type %s", rv.Type().Elem())
					}
					rv.Set(reflect.New(rv.Type().Elem()))
				}
				rv = rv.Elem()
			}
		}
		rv = rv.Field(i)
	}
	return rv, nil
}
