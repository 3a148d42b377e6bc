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
	"fmt"
	"reflect"
)

// An UnregisteredTypeError is returned by Marshal when it encounters a
// struct whose type has no registry entry, anywhere in the value,
// including inside slices, maps, and the fields of other tagged values.
// The encode call produces no partial output.
type UnregisteredTypeError struct {
	Type reflect.Type
}

func (e *UnregisteredTypeError) Error() string {
	return "tagjson: unregistered type " + e.Type.String()
}

// An UnsupportedTypeError is returned by Marshal for values outside the
// serializable universe: channels, functions, complex numbers, and maps
// with non-string keys.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "tagjson: unsupported type " + e.Type.String()
}

// An UnsupportedValueError is returned by Marshal for values of a
// supported type that have no JSON representation, such as NaN, infinite
// floats, and values nested too deeply to be anything but a cycle.
type UnsupportedValueError struct {
	Str string
}

func (e *UnsupportedValueError) Error() string {
	return "tagjson: unsupported value: " + e.Str
}

// A SyntaxError is returned by Unmarshal when the input is not a single
// syntactically valid JSON document. It wraps the parser's error; use
// errors.As to recover positional detail from the underlying
// *json.SyntaxError when one is present.
type SyntaxError struct {
	err error
}

func (e *SyntaxError) Error() string {
	return "tagjson: malformed input: " + e.err.Error()
}

func (e *SyntaxError) Unwrap() error {
	return e.err
}

// A FieldError is returned by Unmarshal when a tagged document carries a
// field value that cannot be assigned to the registered type's
// corresponding field, for example a string where the field is an int.
type FieldError struct {
	Type  reflect.Type
	Field string
	err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tagjson: cannot decode field %q of %s: %v", e.Field, e.Type, e.err)
}

func (e *FieldError) Unwrap() error {
	return e.err
}
