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

package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"dirpx.dev/robj/apis"
	uref "dirpx.dev/robj/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("robj(registry): nil reflect.Type provided")
	// ErrNilObject is returned when a nil object is indexed or allocated.
	ErrNilObject = errors.New("robj(registry): nil object")
)

// New constructs an identity Registry for cfg.
// When cfg.Policy disables caching the registry never stores anything.
func New(cfg apis.Config, logger *slog.Logger) apis.Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registry{
		caching: cfg.Policy.Caching(),
		logger:  logger,
		parts:   make(map[reflect.Type]map[apis.Key]any),
	}
}

// registry is a mutex-guarded, per-type identity map.
type registry struct {
	// caching is false under policy.None.
	caching bool
	logger  *slog.Logger
	// mu guards parts and count.
	mu sync.Mutex
	// parts maps a normalized entity type to its key -> instance map.
	parts map[reflect.Type]map[apis.Key]any
	// count tracks the number of registered keys.
	count int
}

// Ensure registry implements apis.Registry.
var _ apis.Registry = (*registry)(nil)

// LookupOrCreate returns the live instance for (t, key) or registers a new one.
func (r *registry) LookupOrCreate(t reflect.Type, key apis.Key, alloc func() any) (any, bool, error) {
	nt, err := r.normalize(t, key)
	if err != nil {
		return nil, false, err
	}
	if !r.caching {
		obj := alloc()
		if obj == nil {
			return nil, false, ErrNilObject
		}
		return obj, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	part := r.parts[nt]
	if obj, ok := part[key]; ok {
		return obj, true, nil
	}
	obj := alloc()
	if obj == nil {
		return nil, false, ErrNilObject
	}
	if part == nil {
		part = make(map[apis.Key]any)
		r.parts[nt] = part
	}
	part[key] = obj
	r.count++
	return obj, false, nil
}

// Lookup returns the instance registered for (t, key) if present.
func (r *registry) Lookup(t reflect.Type, key apis.Key) (any, bool) {
	nt, err := r.normalize(t, key)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.parts[nt][key]
	return obj, ok
}

// Index makes obj reachable under key. The first instance to claim a key keeps it.
func (r *registry) Index(t reflect.Type, key apis.Key, obj any) (any, error) {
	nt, err := r.normalize(t, key)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNilObject
	}
	if !r.caching {
		return obj, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	part := r.parts[nt]
	if old, ok := part[key]; ok {
		if old != obj {
			r.logger.Warn("identity already owned by another instance",
				"type", nt.String(), "key", key.String())
		}
		return old, nil
	}
	if part == nil {
		part = make(map[apis.Key]any)
		r.parts[nt] = part
	}
	part[key] = obj
	r.count++
	return obj, nil
}

// Forget drops every key of t that points at obj.
func (r *registry) Forget(t reflect.Type, obj any) int {
	nt, err := uref.EntityType(t)
	if err != nil || obj == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for k, v := range r.parts[nt] {
		if v == obj {
			delete(r.parts[nt], k)
			removed++
		}
	}
	r.count -= removed
	return removed
}

// Entries returns a snapshot for diagnostics (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]apis.Entry, 0, r.count)
	for t, part := range r.parts {
		for k, v := range part {
			entries = append(entries, apis.Entry{Type: t, Key: k, Object: v})
		}
	}
	return entries
}

// Count returns the number of registered keys.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parts = make(map[reflect.Type]map[apis.Key]any)
	r.count = 0
}

// normalize validates inputs and maps t to its entity type.
func (r *registry) normalize(t reflect.Type, key apis.Key) (reflect.Type, error) {
	if t == nil {
		return nil, ErrNilType
	}
	if !key.Valid() {
		return nil, fmt.Errorf("%w: %s", apis.ErrInvalidKey, key)
	}
	return uref.EntityType(t)
}
