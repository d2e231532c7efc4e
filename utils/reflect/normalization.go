/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflect

import (
	"errors"
	"reflect"
	"strings"
)

// DefaultMaxUnwrap bounds pointer unwrapping in EntityType.
const DefaultMaxUnwrap = 4

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping
	// pointers) is not a named type (e.g., anonymous struct, func, map).
	ErrReflectTypeNotNamed = errors.New("reflect: entity type is not named")
)

// EntityType unwraps pointers and returns the named type behind t.
// *Case, **Case and Case all normalize to Case, so the registry keeps one
// partition per entity kind whatever form callers pass in.
func EntityType(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	for i := 0; t.Kind() == reflect.Ptr && i < DefaultMaxUnwrap; i++ {
		t = t.Elem()
	}
	if t.Kind() == reflect.Ptr || t.Name() == "" {
		return nil, ErrReflectTypeNotNamed
	}
	return t, nil
}

// TypeName returns a stable "pkg.Type" name for t with generic
// instantiation parameters stripped ("Box[int]" -> "Box").
// It returns "" when t has no named entity type.
func TypeName(t reflect.Type) string {
	base, err := EntityType(t)
	if err != nil {
		return ""
	}
	name := base.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	if p := base.PkgPath(); p != "" {
		if i := strings.LastIndexByte(p, '/'); i >= 0 {
			p = p[i+1:]
		}
		name = p + "." + name
	}
	return name
}
