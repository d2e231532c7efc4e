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

package robj

import (
	"context"
	"sync/atomic"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/kind"
	"dirpx.dev/robj/object"
	"dirpx.dev/robj/rxapi/cache/policy"
	"dirpx.dev/robj/session"
)

// init installs a default session with the default config and no transport.
func init() {
	def.Store(session.MustNew())
}

// def is the process-wide default session.
var def atomic.Pointer[session.Session]

// Default returns the process-wide session.
func Default() *session.Session {
	return def.Load()
}

// SetSession replaces the process-wide session. Nil is ignored.
// Objects looked up through the previous session keep using it.
func SetSession(s *session.Session) {
	if s == nil {
		return
	}
	def.Store(s)
}

// Config returns the configuration of the default session.
func Config() apis.Config {
	return Default().Config()
}

// SetConfig reconfigures the default session.
// This is a convenience wrapper around Default().SetConfig.
func SetConfig(cfg apis.Config) error {
	return Default().SetConfig(cfg)
}

// SetPolicy switches the cache policy of the default session.
func SetPolicy(p policy.Policy) error {
	return Default().SetPolicy(p)
}

// SetTransport sets the transport of the default session.
func SetTransport(tr apis.Transport) {
	Default().SetTransport(tr)
}

// Registry returns the identity registry of the default session.
func Registry() apis.Registry {
	return Default().Registry()
}

// SetRegistry installs and pins reg in the default session.
func SetRegistry(reg apis.Registry) {
	Default().SetRegistry(reg)
}

// IsRegistryPinned reports whether the default registry is pinned.
func IsRegistryPinned() bool {
	return Default().IsRegistryPinned()
}

// UnpinRegistry lets config changes rebuild the default registry again.
func UnpinRegistry() {
	Default().UnpinRegistry()
}

// Pack packs a composite id with the default MaxID.
func Pack(components ...int64) (int64, error) {
	return Default().Codec().Pack(components...)
}

// Unpack reverses Pack.
func Unpack(key int64) ([]int64, error) {
	return Default().Codec().Unpack(key)
}

// Begin starts batching calls on the default session.
func Begin() error {
	return Default().Batcher().Begin()
}

// End sends the queued calls of the default session as one request and
// stops batching.
func End(ctx context.Context) error {
	return Default().Batcher().End(ctx)
}

// Lookup is object.Lookup on the default session.
func Lookup[T object.Entity](ctx context.Context, k *object.Kind, hint apis.Hint, alloc func() T) (T, error) {
	return object.Lookup(ctx, Default(), k, hint, alloc)
}

// KindOf returns the kind name of v for logs and metric labels.
func KindOf(v any) string {
	return kind.Of(v)
}
