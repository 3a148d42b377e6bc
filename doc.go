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

// Package tagjson encodes heterogeneous Go values to JSON documents tagged
// with a stable type identifier, and decodes those documents back into
// values of the original concrete type, methods and all, without the
// caller naming the type.
//
// Each participating struct type is registered once, typically at program
// start, under a canonical UUID string:
//
//	tagjson.Register("7c9e6679-7425-40de-944b-e07fc1f90ae7", &Point{})
//
// Marshal then emits every value of that type as an object whose first
// member, under the key "_", carries the identifier:
//
//	{"_": "7c9e6679-7425-40de-944b-e07fc1f90ae7", "x": 1, "y": 2}
//
// Unmarshal walks the parsed document bottom-up and, wherever it finds an
// object carrying a registered identifier, allocates a fresh value of the
// registered type and fills its fields, however deeply the object is
// nested inside arrays and plain objects. Objects carrying an identifier
// that was never registered are passed through verbatim as
// map[string]any, tag key included, so documents produced by newer or
// foreign programs survive a decode unharmed.
//
// The registry is the codec's only shared state. The package-level
// functions use a process-wide default registry; code that wants hermetic
// behavior (tests, plugins with conflicting registrations) can construct
// its own with NewRegistry and call the equivalent methods on it.
package tagjson // import "tagjson.dev/tagjson"
