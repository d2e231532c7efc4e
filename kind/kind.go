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

// Package kind resolves the display name of an entity kind.
//
// Resolution tries, in order:
//  1. common.Namer: the entity names its own kind.
//  2. Register: a name assigned to the entity type up front.
//  3. Reflection: the "pkg.Type" name of the entity type, memoized per type.
package kind

import (
	"errors"
	"reflect"
	"sync"

	"dirpx.dev/robj/rxapi/common"
	uref "dirpx.dev/robj/utils/reflect"
)

// ErrEmptyName is returned when registering an empty kind name.
var ErrEmptyName = errors.New("robj(kind): empty name")

var (
	// explicit holds names assigned with Register, by entity type.
	explicit sync.Map // key: reflect.Type, val: string
	// typeNameCache caches reflection-derived names by type.
	typeNameCache sync.Map // key: reflect.Type, val: string
)

// Register assigns name to the entity type of t. Pointers to t resolve
// to the same name. A later call replaces the name.
func Register(t reflect.Type, name string) error {
	if name == "" {
		return ErrEmptyName
	}
	et, err := uref.EntityType(t)
	if err != nil {
		return err
	}
	explicit.Store(et, name)
	return nil
}

// Unregister drops a name assigned with Register.
func Unregister(t reflect.Type) {
	if et, err := uref.EntityType(t); err == nil {
		explicit.Delete(et)
	}
}

// Of returns the kind name of v, or "" when none can be determined.
func Of(v any) string {
	if v == nil {
		return ""
	}
	if n, ok := v.(common.Namer); ok {
		if name := safeEntityName(n); name != "" {
			return name
		}
	}
	return OfType(reflect.TypeOf(v))
}

// OfType returns the registered or reflection-based kind name of t.
func OfType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if et, err := uref.EntityType(t); err == nil {
		if v, ok := explicit.Load(et); ok {
			return v.(string)
		}
	}
	if v, ok := typeNameCache.Load(t); ok {
		return v.(string)
	}
	name := uref.TypeName(t)
	typeNameCache.Store(t, name)
	return name
}

// safeEntityName guards against Namer implementations with pointer
// receivers being called on typed nil pointers.
func safeEntityName(n common.Namer) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return n.EntityName()
}
