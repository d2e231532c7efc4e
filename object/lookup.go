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

package object

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/session"
)

// ErrBadLookup is returned when Lookup is called without a session, kind
// or allocator.
var ErrBadLookup = errors.New("robj(object): lookup needs a session, a kind and an allocator")

// Lookup returns the instance of T identified by hint, allocating and
// registering one on the first lookup. With caching enabled every lookup
// of the same id (or name) returns the same instance.
//
// The returned object is not fetched: its fields are loaded on first
// access. An apis.Inject hint is kept on the object and, when it covers
// every declared field, hydrates it without a remote call.
//
// T is a pointer to a struct embedding Base; alloc returns a new zero
// value of it.
func Lookup[T Entity](ctx context.Context, s *session.Session, k *Kind, hint apis.Hint, alloc func() T) (T, error) {
	var zero T
	if s == nil || k == nil || alloc == nil {
		return zero, ErrBadLookup
	}
	key, err := apis.HintKey(hint)
	if err != nil {
		return zero, err
	}

	t := reflect.TypeFor[T]()
	obj, cached, err := s.Registry().LookupOrCreate(t, key, func() any {
		e := alloc()
		e.Object().init(e, k, s, key)
		return e
	})
	if err != nil {
		return zero, err
	}
	e, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: registry holds %T for %v %s", apis.ErrTypeMismatch, obj, t, key)
	}

	name := k.name(t)
	s.Metrics().Lookup(name, cached)
	if cached {
		s.Logger().Debug("cache hit", "kind", name, "key", key.String())
	} else {
		s.Logger().Debug("cache miss", "kind", name, "key", key.String())
	}

	if inj, ok := hint.(apis.Inject); ok {
		if err := e.Object().absorb(ctx, apis.Fields(inj)); err != nil {
			return zero, err
		}
	}
	return e, nil
}

// IsCached reports whether the object identified by hint is registered
// and hydrated. It never fetches.
func IsCached[T Entity](s *session.Session, hint apis.Hint) bool {
	if s == nil {
		return false
	}
	key, err := apis.HintKey(hint)
	if err != nil {
		return false
	}
	obj, ok := s.Registry().Lookup(reflect.TypeFor[T](), key)
	if !ok {
		return false
	}
	e, ok := obj.(T)
	return ok && e.Object().Hydrated()
}

// GetAs reads field from e and asserts its type. A nil value yields the
// zero V.
func GetAs[V any](ctx context.Context, e Entity, field string) (V, error) {
	var zero V
	v, err := e.Object().Get(ctx, field)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	tv, ok := v.(V)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, want %v", apis.ErrFieldType, field, v, reflect.TypeFor[V]())
	}
	return tv, nil
}
