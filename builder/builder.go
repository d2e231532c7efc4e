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

package builder

import (
	"log/slog"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/composite"
	"dirpx.dev/robj/registry"
)

// New creates and returns a new instance of an apis.Builder.
// A nil logger means slog.Default().
func New(logger *slog.Logger) apis.Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &builder{logger: logger}
}

// builder carries the logger handed to the registries it builds.
type builder struct {
	logger *slog.Logger
}

// BuildRegistry builds a registry for cfg. Live instances of prev are
// carried over when cfg keeps caching enabled, so switching between
// Objects and Persistent preserves identities. Switching to None drops them.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New(cfg, b.logger)
	if prev == nil || !cfg.Policy.Caching() {
		return nreg
	}
	for _, e := range prev.Entries() {
		_, _ = nreg.Index(e.Type, e.Key, e.Object)
	}
	return nreg
}

// BuildCodec builds the composite key codec for cfg.MaxID.
func (b *builder) BuildCodec(cfg apis.Config) (apis.Codec, error) {
	return composite.New(cfg.MaxID)
}
