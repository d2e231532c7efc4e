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

package apis

import "reflect"

// Registry maps identity keys to live object instances, partitioned by
// concrete type. Two kinds never collide even when their ids coincide.
type Registry interface {
	// LookupOrCreate returns the instance registered for (t, key) with
	// cached set to true, or registers the result of alloc and returns it
	// with cached set to false. When the policy disables caching, alloc is
	// called every time and nothing is registered.
	LookupOrCreate(t reflect.Type, key Key, alloc func() any) (obj any, cached bool, err error)
	// Lookup returns the instance registered for (t, key) if present.
	Lookup(t reflect.Type, key Key) (any, bool)
	// Index makes obj reachable under an additional key (an id learned by a
	// fetch, or a name). If another instance already owns the key, that
	// instance is returned and nothing changes.
	Index(t reflect.Type, key Key, obj any) (canonical any, err error)
	// Forget removes every key of t pointing at obj and reports how many
	// were removed.
	Forget(t reflect.Type, obj any) int
	// Entries returns a snapshot for diagnostics (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered keys.
	Count() int
	// Reset clears all registered entries.
	Reset()
}

// Entry is a single (type, key, object) association in a Registry snapshot.
type Entry struct {
	// Type is the normalized entity type.
	Type reflect.Type
	// Key is the identity key.
	Key Key
	// Object is the registered instance.
	Object any
}
