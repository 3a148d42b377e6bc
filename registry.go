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
	"strings"
	"sync"
)

// A Registry is a bidirectional mapping between type identifiers and the
// Go struct types registered under them. The encoder consults it to find
// the identifier for a value's concrete type; the decoder consults it to
// find the concrete type for an embedded identifier.
//
// Registries are safe for concurrent use. The intended discipline is
// register-at-startup, read-only thereafter; lookups take only a read
// lock, so concurrent Marshal and Unmarshal calls never contend.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]*typeInfo
	byType map[reflect.Type]*typeInfo
}

// typeInfo caches everything the codec needs to know about a registered
// type, computed once at registration.
type typeInfo struct {
	id     string
	typ    reflect.Type // always a struct type
	fields []structField
	byName map[string]int // wire name → index into fields
}

type structField struct {
	name  string // wire name: json tag if present, else the Go field name
	index int    // index into the struct type's fields
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*typeInfo),
		byType: make(map[reflect.Type]*typeInfo),
	}
}

// Register associates the concrete struct type of value with id, in both
// directions. The value itself is only a type witness: pass a zero value
// or a pointer to one, as with gob.RegisterName. Identifiers are
// conventionally canonical UUID strings (see NewTypeID); Register does
// not validate the syntax.
//
// Register panics if value's type, after unwrapping pointers, is not a
// struct. It never fails otherwise: registering the same pair twice is a
// harmless no-op, and registering a different type under an existing
// identifier (or a different identifier for an existing type) silently
// overwrites the earlier entry in that direction. The overwrite behavior
// is a footgun, not a feature: each type should be registered exactly
// once, before any value of it is encoded or decoded.
func (r *Registry) Register(id string, value any) {
	typ := structTypeOf(value)
	info := &typeInfo{
		id:     id,
		typ:    typ,
		byName: make(map[string]int),
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, structField{name: name, index: i})
	}
	r.mu.Lock()
	r.byID[id] = info
	r.byType[typ] = info
	r.mu.Unlock()
}

// TypeOf returns the struct type registered under id. The second return
// value reports whether the identifier is known.
func (r *Registry) TypeOf(id string) (reflect.Type, bool) {
	r.mu.RLock()
	info, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return info.typ, true
}

// IdentifierOf returns the identifier registered for a value's concrete
// type. It accepts a struct value, a pointer to one, or a reflect.Type.
// The second return value reports whether the type is registered.
//
// For a value reconstructed by Unmarshal, IdentifierOf recovers the
// identifier that tagged it on the wire.
func (r *Registry) IdentifierOf(value any) (string, bool) {
	typ, ok := value.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(value)
	}
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil {
		return "", false
	}
	r.mu.RLock()
	info, ok := r.byType[typ]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}
	return info.id, true
}

func (r *Registry) infoByID(id string) (*typeInfo, bool) {
	r.mu.RLock()
	info, ok := r.byID[id]
	r.mu.RUnlock()
	return info, ok
}

func (r *Registry) infoByType(typ reflect.Type) (*typeInfo, bool) {
	r.mu.RLock()
	info, ok := r.byType[typ]
	r.mu.RUnlock()
	return info, ok
}

// structTypeOf resolves the registration witness to a struct type,
// unwrapping any number of pointers.
func structTypeOf(value any) reflect.Type {
	typ, ok := value.(reflect.Type)
	if !ok {
		typ = reflect.TypeOf(value)
	}
	for typ != nil && typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == nil || typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("tagjson: Register of non-struct type %T", value))
	}
	return typ
}
