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

package config

import (
	"time"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/rxapi/cache/policy"
)

const (
	// DefaultPolicy caches object identities and pushes changes immediately.
	DefaultPolicy = policy.Objects
	// DefaultMaxID bounds each component of a composite id.
	// Packing [1, 2] with this base yields 1000000002.
	DefaultMaxID int64 = 1_000_000_000
	// DefaultTTL is the time-to-live of mutable kinds.
	DefaultTTL = time.Hour
	// DefaultImmutableTTL is the time-to-live of reference kinds (one month).
	DefaultImmutableTTL = 30 * 24 * time.Hour
	// DefaultIdentifierWidth disables zero padding in identifiers.
	DefaultIdentifierWidth = 0
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Sanitize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		Policy:          DefaultPolicy,
		MaxID:           DefaultMaxID,
		DefaultTTL:      DefaultTTL,
		ImmutableTTL:    DefaultImmutableTTL,
		IdentifierWidth: DefaultIdentifierWidth,
	}
}

// Sanitize resets invalid values of cfg to their defaults.
// A negative TTL is kept: it means "never expires".
func Sanitize(cfg apis.Config) apis.Config {
	if cfg.Policy < policy.None || cfg.Policy > policy.Persistent {
		cfg.Policy = DefaultPolicy
	}
	if cfg.MaxID < 2 {
		cfg.MaxID = DefaultMaxID
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.ImmutableTTL == 0 {
		cfg.ImmutableTTL = DefaultImmutableTTL
	}
	if cfg.IdentifierWidth < 0 {
		cfg.IdentifierWidth = DefaultIdentifierWidth
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithPolicy sets the cache policy.
func WithPolicy(p policy.Policy) Option {
	return func(c *apis.Config) {
		c.Policy = p
	}
}

// WithMaxID sets the composite id base.
// Values below 2 reset to the default.
func WithMaxID(max int64) Option {
	return func(c *apis.Config) {
		if max < 2 {
			c.MaxID = DefaultMaxID
			return
		}
		c.MaxID = max
	}
}

// WithDefaultTTL sets the time-to-live of mutable kinds.
// Zero resets to the default.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *apis.Config) {
		c.DefaultTTL = ttl
	}
}

// WithImmutableTTL sets the time-to-live of reference kinds.
// Zero resets to the default.
func WithImmutableTTL(ttl time.Duration) Option {
	return func(c *apis.Config) {
		c.ImmutableTTL = ttl
	}
}

// WithIdentifierWidth sets the zero padding of identifiers.
func WithIdentifierWidth(width int) Option {
	return func(c *apis.Config) {
		c.IdentifierWidth = width
	}
}
