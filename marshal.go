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
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"unicode/utf8"
)

// maxEncodeDepth bounds the recursion of Marshal. The serializable
// universe has no sharing, so any value this deep is a cycle.
const maxEncodeDepth = 10000

var jsonNumberType = reflect.TypeOf(json.Number(""))

// Marshal encodes v as a JSON document. Structs must be of registered
// types and become tagged objects: the TypeKey member first, carrying the
// type's identifier, then each exported field under its json-tag (or Go)
// name in declaration order. Slices and arrays encode element-wise;
// string-keyed maps encode with their keys sorted, so output is
// deterministic for a given value. Nil pointers, interfaces, maps, and
// slices encode as null.
//
// Marshal returns an *UnregisteredTypeError if any struct in the value
// has no registry entry, an *UnsupportedTypeError for values outside the
// serializable universe, and an *UnsupportedValueError for NaN, infinite
// floats, and cyclic values. On error the returned bytes are nil.
func (r *Registry) Marshal(v any) ([]byte, error) {
	e := encodeState{registry: r}
	if err := e.encode(reflect.ValueOf(v), 0); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

type encodeState struct {
	registry *Registry
	buf      bytes.Buffer
}

func (e *encodeState) encode(v reflect.Value, depth int) error {
	if depth > maxEncodeDepth {
		return &UnsupportedValueError{Str: "exceeds maximum nesting depth (likely a cycle)"}
	}
	if !v.IsValid() {
		e.buf.WriteString("null")
		return nil
	}
	if v.Type() == jsonNumberType {
		return e.encodeNumberLiteral(v.String())
	}
	switch v.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(v.Bool()))
		return nil
	case reflect.String:
		e.encodeString(v.String())
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(v.Int(), 10))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(v.Uint(), 10))
		return nil
	case reflect.Float32:
		return e.encodeFloat(v.Float(), 32)
	case reflect.Float64:
		return e.encodeFloat(v.Float(), 64)
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.encode(v.Elem(), depth+1)
	case reflect.Slice:
		if v.IsNil() {
			e.buf.WriteString("null")
			return nil
		}
		return e.encodeArray(v, depth)
	case reflect.Array:
		return e.encodeArray(v, depth)
	case reflect.Map:
		return e.encodeMap(v, depth)
	case reflect.Struct:
		return e.encodeStruct(v, depth)
	default:
		return &UnsupportedTypeError{Type: v.Type()}
	}
}

func (e *encodeState) encodeArray(v reflect.Value, depth int) error {
	e.buf.WriteByte('[')
	for i := 0; i < v.Len(); i++ {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		if err := e.encode(v.Index(i), depth+1); err != nil {
			return err
		}
	}
	e.buf.WriteByte(']')
	return nil
}

func (e *encodeState) encodeMap(v reflect.Value, depth int) error {
	if v.Type().Key().Kind() != reflect.String {
		return &UnsupportedTypeError{Type: v.Type()}
	}
	if v.IsNil() {
		e.buf.WriteString("null")
		return nil
	}
	keys := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	keyType := v.Type().Key()
	e.buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			e.buf.WriteByte(',')
		}
		e.encodeString(key)
		e.buf.WriteByte(':')
		elem := v.MapIndex(reflect.ValueOf(key).Convert(keyType))
		if err := e.encode(elem, depth+1); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

// encodeStruct writes a tagged document: the type identifier under
// TypeKey, then the value's own fields in declaration order.
func (e *encodeState) encodeStruct(v reflect.Value, depth int) error {
	info, ok := e.registry.infoByType(v.Type())
	if !ok {
		return &UnregisteredTypeError{Type: v.Type()}
	}
	e.buf.WriteByte('{')
	e.encodeString(TypeKey)
	e.buf.WriteByte(':')
	e.encodeString(info.id)
	for _, field := range info.fields {
		e.buf.WriteByte(',')
		e.encodeString(field.name)
		e.buf.WriteByte(':')
		if err := e.encode(v.Field(field.index), depth+1); err != nil {
			return err
		}
	}
	e.buf.WriteByte('}')
	return nil
}

func (e *encodeState) encodeFloat(f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return &UnsupportedValueError{Str: strconv.FormatFloat(f, 'g', -1, bits)}
	}
	// Like encoding/json: the shortest representation that round-trips,
	// with exponent notation only where plain notation would be longer
	// than fixed-width readers expect.
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	b := strconv.AppendFloat(e.buf.AvailableBuffer(), f, format, -1, bits)
	if format == 'e' {
		// Clean up e-09 to e-9.
		if n := len(b); n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	e.buf.Write(b)
	return nil
}

// encodeNumberLiteral writes a json.Number verbatim after checking that
// it really is a JSON number.
func (e *encodeState) encodeNumberLiteral(s string) error {
	if !isValidNumber(s) {
		return &UnsupportedValueError{Str: fmt.Sprintf("json.Number %q", s)}
	}
	e.buf.WriteString(s)
	return nil
}

const hexDigits = "0123456789abcdef"

// encodeString writes s as a JSON string, escaping quotes, backslashes,
// and control characters. Non-ASCII text passes through as UTF-8; invalid
// UTF-8 is replaced rune by rune with U+FFFD.
func (e *encodeState) encodeString(s string) {
	e.buf.WriteByte('"')
	for i := 0; i < len(s); {
		if c := s[i]; c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				e.buf.WriteByte(c)
				i++
				continue
			}
			switch c {
			case '"', '\\':
				e.buf.WriteByte('\\')
				e.buf.WriteByte(c)
			case '\n':
				e.buf.WriteString(`\n`)
			case '\r':
				e.buf.WriteString(`\r`)
			case '\t':
				e.buf.WriteString(`\t`)
			default:
				e.buf.WriteString(`\u00`)
				e.buf.WriteByte(hexDigits[c>>4])
				e.buf.WriteByte(hexDigits[c&0xF])
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			e.buf.WriteString(`�`)
			i++
			continue
		}
		e.buf.WriteString(s[i : i+size])
		i += size
	}
	e.buf.WriteByte('"')
}

// isValidNumber reports whether s is a valid JSON number literal, per
// RFC 8259 section 6.
func isValidNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
		if s == "" {
			return false
		}
	}
	switch {
	case s[0] == '0':
		s = s[1:]
	case '1' <= s[0] && s[0] <= '9':
		s = s[1:]
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	default:
		return false
	}
	if len(s) >= 2 && s[0] == '.' && '0' <= s[1] && s[1] <= '9' {
		s = s[2:]
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	}
	if len(s) >= 2 && (s[0] == 'e' || s[0] == 'E') {
		s = s[1:]
		if s[0] == '+' || s[0] == '-' {
			s = s[1:]
			if s == "" {
				return false
			}
		}
		for len(s) > 0 && '0' <= s[0] && s[0] <= '9' {
			s = s[1:]
		}
	}
	return s == ""
}
