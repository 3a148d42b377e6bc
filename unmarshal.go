// Copyright 2024-2026 The TagJSON Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tagjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
)

// Unmarshal decodes a JSON document and restores type identity to every
// object carrying a registered identifier under TypeKey. The walk is
// bottom-up: nested tagged objects are already live values by the time
// their enclosing object is considered, at arbitrary depth inside arrays
// and plain objects.
//
// Restored values are pointers to freshly allocated structs of the
// registered type, so methods with pointer receivers dispatch on them.
// The tag key is not copied into the struct; IdentifierOf recovers it.
// Objects whose identifier is unknown, and objects without TypeKey, pass
// through as map[string]any with nothing removed. Arrays become []any.
// Numbers become int64 when the literal is an exact integer in range,
// else float64.
//
// Unmarshal returns a *SyntaxError if data is not one well-formed JSON
// document, and a *FieldError if a tagged object's field cannot be
// assigned to the registered type's field. It is all-or-nothing: on error
// the returned value is nil.
func (r *Registry) Unmarshal(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &SyntaxError{err: err}
	}
	if err := dec.Decode(new(any)); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data after top-level value")
		}
		return nil, &SyntaxError{err: err}
	}
	return r.hydrate(root)
}

// hydrate walks a parsed tree bottom-up, converting tagged objects into
// live values and normalizing numbers. Maps and slices are rewritten in
// place; the input tree is owned by the decoder so aliasing is not a
// concern.
func (r *Registry) hydrate(node any) (any, error) {
	switch n := node.(type) {
	case map[string]any:
		for key, val := range n {
			restored, err := r.hydrate(val)
			if err != nil {
				return nil, err
			}
			n[key] = restored
		}
		id, ok := n[TypeKey].(string)
		if !ok {
			return n, nil
		}
		info, ok := r.infoByID(id)
		if !ok {
			// Unknown identifier: pass the object through verbatim,
			// tag key included.
			return n, nil
		}
		return instantiate(info, n)
	case []any:
		for i, elem := range n {
			restored, err := r.hydrate(elem)
			if err != nil {
				return nil, err
			}
			n[i] = restored
		}
		return n, nil
	case json.Number:
		return normalizeNumber(n)
	default:
		return node, nil
	}
}

// instantiate allocates a value of the registered type and copies the
// document's fields into it. Document keys with no matching field are
// ignored; fields missing from the document keep their zero value.
func instantiate(info *typeInfo, doc map[string]any) (any, error) {
	ptr := reflect.New(info.typ)
	elem := ptr.Elem()
	for key, val := range doc {
		if key == TypeKey {
			continue
		}
		idx, ok := info.byName[key]
		if !ok {
			continue
		}
		field := elem.Field(info.fields[idx].index)
		if err := assign(field, val); err != nil {
			return nil, &FieldError{Type: info.typ, Field: key, err: err}
		}
	}
	return ptr.Interface(), nil
}

// normalizeNumber maps a JSON number literal onto Go's two scalar number
// shapes: int64 for exact integers, float64 otherwise. Parsing the
// literal text keeps the full 64-bit integer range exact, which a detour
// through float64 would not.
func normalizeNumber(n json.Number) (any, error) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("tagjson: number %q out of range", string(n))
	}
	return f, nil
}

// assign coerces a hydrated value onto a struct field. src is either a
// restored value (pointer to a registered struct), a container of those,
// or a normalized scalar (nil, bool, int64, float64, string).
func assign(dst reflect.Value, src any) error {
	if src == nil {
		switch dst.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		default:
			return fmt.Errorf("cannot assign null to %s", dst.Type())
		}
	}
	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}
	switch dst.Kind() {
	case reflect.Pointer:
		ptr := reflect.New(dst.Type().Elem())
		if err := assign(ptr.Elem(), src); err != nil {
			return err
		}
		dst.Set(ptr)
		return nil
	case reflect.Bool:
		if b, ok := src.(bool); ok {
			dst.SetBool(b)
			return nil
		}
	case reflect.String:
		if s, ok := src.(string); ok {
			dst.SetString(s)
			return nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := integerValue(src)
		if !ok || dst.OverflowInt(i) {
			break
		}
		dst.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := integerValue(src)
		if !ok || i < 0 || dst.OverflowUint(uint64(i)) {
			break
		}
		dst.SetUint(uint64(i))
		return nil
	case reflect.Float32, reflect.Float64:
		switch s := src.(type) {
		case int64:
			dst.SetFloat(float64(s))
			return nil
		case float64:
			if dst.OverflowFloat(s) {
				break
			}
			dst.SetFloat(s)
			return nil
		}
	case reflect.Slice:
		list, ok := src.([]any)
		if !ok {
			break
		}
		out := reflect.MakeSlice(dst.Type(), len(list), len(list))
		for i, elem := range list {
			if err := assign(out.Index(i), elem); err != nil {
				return err
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		list, ok := src.([]any)
		if !ok || len(list) != dst.Len() {
			break
		}
		for i, elem := range list {
			if err := assign(dst.Index(i), elem); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		m, ok := src.(map[string]any)
		if !ok || dst.Type().Key().Kind() != reflect.String {
			break
		}
		out := reflect.MakeMapWithSize(dst.Type(), len(m))
		for key, val := range m {
			elem := reflect.New(dst.Type().Elem()).Elem()
			if err := assign(elem, val); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(key).Convert(dst.Type().Key()), elem)
		}
		dst.Set(out)
		return nil
	case reflect.Struct:
		// A restored value arrives as *T; deref it onto a T field.
		if sv.Kind() == reflect.Pointer && sv.Type().Elem() == dst.Type() {
			dst.Set(sv.Elem())
			return nil
		}
	}
	return fmt.Errorf("cannot assign %T to %s", src, dst.Type())
}

// integerValue extracts an exact integer from a normalized scalar.
func integerValue(src any) (int64, bool) {
	switch s := src.(type) {
	case int64:
		return s, true
	case float64:
		if s != math.Trunc(s) || s < -(1<<63) || s >= 1<<63 {
			return 0, false
		}
		return int64(s), true
	}
	return 0, false
}
