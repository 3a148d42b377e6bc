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
	"sync"
	"testing"

	"github.com/google/uuid"

	"tagjson.dev/tagjson/internal/assert"
)

func TestRegistryLookups(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	registry.Register(pointID, &point{})

	typ, ok := registry.TypeOf(pointID)
	assert.True(t, ok)
	assert.True(t, typ == reflect.TypeOf(point{}))

	// Lookups are total: unknown inputs report not-found, never panic.
	_, ok = registry.TypeOf("no-such-identifier")
	assert.False(t, ok)
	_, ok = registry.IdentifierOf(&wrapper{})
	assert.False(t, ok)
	_, ok = registry.IdentifierOf(nil)
	assert.False(t, ok)

	// IdentifierOf accepts values, pointers, and reflect.Types alike.
	for _, witness := range []any{point{}, &point{}, reflect.TypeOf(point{}), reflect.TypeOf(&point{})} {
		id, ok := registry.IdentifierOf(witness)
		assert.True(t, ok, assert.Sprintf("witness %T", witness))
		assert.Equal(t, id, pointID)
	}
}

func TestRegistryIdempotentReRegistration(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	registry.Register(pointID, &point{})
	registry.Register(pointID, &point{})

	typ, ok := registry.TypeOf(pointID)
	assert.True(t, ok)
	assert.True(t, typ == reflect.TypeOf(point{}))
	id, ok := registry.IdentifierOf(point{})
	assert.True(t, ok)
	assert.Equal(t, id, pointID)
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	t.Parallel()

	// Same identifier, different type: the identifier now decodes to the
	// newer type.
	registry := NewRegistry()
	registry.Register(pointID, &point{})
	registry.Register(pointID, &wrapper{})
	typ, ok := registry.TypeOf(pointID)
	assert.True(t, ok)
	assert.True(t, typ == reflect.TypeOf(wrapper{}))

	// Same type, different identifier: the type now encodes under the
	// newer identifier.
	registry = NewRegistry()
	registry.Register(pointID, &point{})
	registry.Register(wrapperID, &point{})
	id, ok := registry.IdentifierOf(point{})
	assert.True(t, ok)
	assert.Equal(t, id, wrapperID)
}

func TestRegisterNonStructPanics(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	assert.Panics(t, func() { registry.Register(pointID, 42) })
	assert.Panics(t, func() { registry.Register(pointID, "text") })
	assert.Panics(t, func() { registry.Register(pointID, []point{}) })
	assert.Panics(t, func() { registry.Register(pointID, nil) })
}

func TestRegistryConcurrentLookups(t *testing.T) {
	t.Parallel()
	registry := NewRegistry()
	registry.Register(pointID, &point{})

	var group sync.WaitGroup
	for i := 0; i < 8; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for j := 0; j < 1000; j++ {
				if _, ok := registry.TypeOf(pointID); !ok {
					t.Error("registered identifier not found")
					return
				}
				if _, ok := registry.IdentifierOf(point{}); !ok {
					t.Error("registered type not found")
					return
				}
			}
		}()
	}
	group.Wait()
}

func TestNewTypeID(t *testing.T) {
	t.Parallel()
	first := NewTypeID()
	second := NewTypeID()
	assert.NotEqual(t, first, second)
	for _, id := range []string{first, second} {
		parsed, err := uuid.Parse(id)
		assert.Nil(t, err)
		assert.Equal(t, parsed.String(), id)
	}
}
