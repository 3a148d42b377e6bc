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
	"reflect"

	"github.com/google/uuid"
)

// Version is the semantic version of the tagjson module.
const Version = "0.1.0"

// TypeKey is the reserved object key that carries a type identifier on the
// wire. It is identical for all tagged types. Plain maps in application
// data should avoid it: an object containing TypeKey is indistinguishable
// from an encoded tagged value.
const TypeKey = "_"

// NewTypeID returns a fresh type identifier in canonical form, suitable
// for passing to Register. Identifiers are random (version 4) UUIDs.
//
// Production code should mint an identifier once and commit the literal
// next to the type definition; identifiers generated at runtime change on
// every run and defeat the point of a stable wire format.
func NewTypeID() string {
	return uuid.NewString()
}

var defaultRegistry = NewRegistry()

// Register associates a struct type with a type identifier in the default
// registry. See [Registry.Register].
func Register(id string, value any) {
	defaultRegistry.Register(id, value)
}

// TypeOf looks up the type registered under id in the default registry.
// See [Registry.TypeOf].
func TypeOf(id string) (reflect.Type, bool) {
	return defaultRegistry.TypeOf(id)
}

// IdentifierOf looks up the identifier registered for a value's type in
// the default registry. See [Registry.IdentifierOf].
func IdentifierOf(value any) (string, bool) {
	return defaultRegistry.IdentifierOf(value)
}

// Marshal encodes v using the default registry. See [Registry.Marshal].
func Marshal(v any) ([]byte, error) {
	return defaultRegistry.Marshal(v)
}

// Unmarshal decodes data using the default registry. See
// [Registry.Unmarshal].
func Unmarshal(data []byte) (any, error) {
	return defaultRegistry.Unmarshal(data)
}
