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

package tagjson_test

import (
	"math"
	"reflect"
	"testing"
	"testing/quick"

	"tagjson.dev/tagjson"
	"tagjson.dev/tagjson/internal/assert"
)

// The optional-value types below play the role of application code: they
// register once at init and otherwise only call Marshal and Unmarshal.

const (
	someID  = "0f2a7b9e-3d41-4c58-9b6a-8e1f5c3d7a20"
	noneID  = "6b9e2c4f-8a1d-4e73-b5c9-2f0a6d8e4b17"
	edgesID = "9d4b1e6a-2c8f-4a05-b7e3-1f9c5a2d8e64"
)

// Some wraps a present value.
type Some struct {
	V any `json:"v"`
}

// UnwrapOr returns the wrapped value, ignoring the default.
func (s *Some) UnwrapOr(_ any) any { return s.V }

// None is the absent value.
type None struct{}

// UnwrapOr returns the default.
func (n *None) UnwrapOr(def any) any { return def }

// Optional is the behavior surface shared by Some and None.
type Optional interface {
	UnwrapOr(def any) any
}

// edges exercises extremal primitive values inside a tagged type.
type edges struct {
	N int64  `json:"n"`
	S string `json:"s"`
}

func init() {
	tagjson.Register(someID, &Some{})
	tagjson.Register(noneID, &None{})
	tagjson.Register(edgesID, &edges{})
}

func TestBehaviorPreservation(t *testing.T) {
	t.Parallel()
	data, err := tagjson.Marshal(&Some{V: int64(42)})
	assert.Nil(t, err)
	got, err := tagjson.Unmarshal(data)
	assert.Nil(t, err)
	opt, ok := got.(Optional)
	assert.True(t, ok)
	assert.Equal(t, opt.UnwrapOr(int64(0)), any(int64(42)))
}

func TestNestedOptionals(t *testing.T) {
	t.Parallel()
	value := &Some{V: &Some{V: &Some{V: int64(42)}}}

	data, err := tagjson.Marshal(value)
	assert.Nil(t, err)
	want := `{"_":"` + someID + `","v":{"_":"` + someID + `","v":{"_":"` + someID + `","v":42}}}`
	assert.Equal(t, string(data), want)

	got, err := tagjson.Unmarshal(data)
	assert.Nil(t, err)
	unwrapped := got
	for i := 0; i < 3; i++ {
		opt, ok := unwrapped.(Optional)
		assert.True(t, ok, assert.Sprintf("layer %d", i))
		unwrapped = opt.UnwrapOr(nil)
	}
	assert.Equal(t, unwrapped, any(int64(42)))
}

func TestMixedArray(t *testing.T) {
	t.Parallel()
	value := []any{&Some{V: int64(1)}, &None{}, &Some{V: int64(2)}, &None{}}

	data, err := tagjson.Marshal(value)
	assert.Nil(t, err)
	got, err := tagjson.Unmarshal(data)
	assert.Nil(t, err)
	list, ok := got.([]any)
	assert.True(t, ok)
	assert.Equal(t, len(list), 4)
	want := []int64{1, 0, 2, 0}
	for i, elem := range list {
		opt, ok := elem.(Optional)
		assert.True(t, ok, assert.Sprintf("element %d", i))
		assert.Equal(t, opt.UnwrapOr(int64(0)), any(want[i]))
	}
}

func TestRoundTripIdentity(t *testing.T) {
	t.Parallel()
	values := []any{
		&Some{V: int64(42)},
		&None{},
		&Some{V: &None{}},
		&Some{V: []any{int64(1), "two", 3.5, nil, &Some{V: false}}},
		&Some{V: map[string]any{"nested": &Some{V: "deep"}}},
	}
	for _, value := range values {
		data, err := tagjson.Marshal(value)
		assert.Nil(t, err)
		got, err := tagjson.Unmarshal(data)
		assert.Nil(t, err)
		assert.Equal(t, got, value)
	}
}

func TestPrimitiveEdgeValues(t *testing.T) {
	t.Parallel()
	text := "line\nbreak\ttab \"quote\" back\\slash héllo→世界"
	for _, n := range []int64{math.MaxInt64, math.MinInt64, 9007199254740991, -9007199254740991} {
		value := &edges{N: n, S: text}
		data, err := tagjson.Marshal(value)
		assert.Nil(t, err)
		got, err := tagjson.Unmarshal(data)
		assert.Nil(t, err)
		assert.Equal(t, got, any(value))
	}
}

func TestRoundTripQuick(t *testing.T) {
	t.Parallel()
	roundTrip := func(text string, number int64) bool {
		want := &edges{N: number, S: text}
		data, err := tagjson.Marshal(want)
		if err != nil {
			t.Fatal(err)
		}
		got, err := tagjson.Unmarshal(data)
		if err != nil {
			t.Fatal(err)
		}
		return reflect.DeepEqual(got, want)
	}
	if err := quick.Check(roundTrip, nil /* config */); err != nil {
		t.Error(err)
	}
}

func TestTagKeyHidden(t *testing.T) {
	t.Parallel()
	data, err := tagjson.Marshal(&Some{V: int64(1)})
	assert.Nil(t, err)
	got, err := tagjson.Unmarshal(data)
	assert.Nil(t, err)
	some, ok := got.(*Some)
	assert.True(t, ok)
	// The struct's own data is just the field; the identifier lives in
	// the registry, reachable through the accessor.
	assert.Equal(t, some, &Some{V: int64(1)})
	id, ok := tagjson.IdentifierOf(some)
	assert.True(t, ok)
	assert.Equal(t, id, someID)
}

func TestDefaultRegistryMirrorsLookups(t *testing.T) {
	t.Parallel()
	typ, ok := tagjson.TypeOf(someID)
	assert.True(t, ok)
	assert.Equal(t, typ.Name(), "Some")
	_, ok = tagjson.TypeOf("11111111-2222-3333-4444-555555555555")
	assert.False(t, ok)
}
