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

package policy

import (
	"fmt"
	"strings"
)

// Policy selects how a session caches remote objects and when local
// field changes are pushed upstream.
//
// # Overview
//
// Policy is a small ordered enumeration. Each level includes the behavior
// of the levels below it:
//
//   - None       — No identity cache. Every lookup allocates a new object,
//     and every field change is pushed to the server immediately.
//   - Objects    — Identity cache enabled. Lookups by the same id or name
//     resolve to the same in-memory instance. Field changes are still
//     pushed immediately.
//   - Persistent — Identity cache enabled and field changes are buffered
//     on the object until an explicit Flush.
//
// Because the levels are ordered, callers MAY compare them directly:
//
//	if p >= policy.Objects {
//	    // identity cache is active
//	}
//
// # Contract
//
//   - The numeric order of the defined values MUST NOT change.
//   - Policy values are plain integers and are safe to share across
//     goroutines.
//   - Buffered writes (Persistent) are only safe when the caller guarantees
//     an eventual Flush; scripts without an explicit save phase SHOULD use
//     Objects or None.
type Policy int

const (
	// None disables the identity cache.
	//
	// # Semantics
	//
	// Under None, lookups never consult or populate the identity registry:
	// two lookups of the same id return two distinct, independently
	// hydrated instances. No identity guarantee holds in this mode.
	// Field changes are pushed to the server as soon as they are made.
	None Policy = iota

	// Objects enables the identity cache without deferred writes.
	//
	// # Semantics
	//
	// Under Objects, at most one live instance exists per (type, identity)
	// pair. Reading a field hydrates the instance at most once until it
	// expires. Writing a field that actually changes its value pushes the
	// change upstream immediately.
	//
	// Identity caching does not imply deferred writes: code that expects
	// changes to be held on the object until a save phase MUST select
	// Persistent. Under Objects a change is never left waiting for Flush
	// unless pushing it failed.
	Objects

	// Persistent enables the identity cache and buffers field changes.
	//
	// # Semantics
	//
	// Under Persistent, a changed field marks the object dirty and the
	// change stays local until the object is flushed. A dirty object that
	// becomes stale is flushed before it is re-fetched.
	Persistent
)

// String returns the canonical token for p.
//
// For unknown values it returns "Unknown(<n>)" and never panics, so that
// corrupted values can still be logged.
func (p Policy) String() string {
	switch p {
	case None:
		return "None"
	case Objects:
		return "Objects"
	case Persistent:
		return "Persistent"
	default:
		return fmt.Sprintf("Unknown(%d)", p)
	}
}

// Caching reports whether the identity registry is active under p.
func (p Policy) Caching() bool {
	return p >= Objects
}

// Buffered reports whether field changes are deferred until Flush under p.
func (p Policy) Buffered() bool {
	return p >= Persistent
}

// Parse parses a textual representation of a Policy.
//
// # Overview
//
// Matching is case-insensitive and surrounding whitespace is ignored.
// Accepted inputs:
//
//   - "None", "no-cache"       -> None
//   - "Objects", "objects-only" -> Objects
//   - "Persistent"             -> Persistent
//
// # Contract
//
//   - On failure Parse returns None and a non-nil error; callers MUST NOT
//     rely on the returned value in that case.
//   - Parse MUST NOT panic for any input.
//
// Example:
//
//	p, err := policy.Parse("persistent")
//	if err != nil {
//	    // handle invalid configuration
//	}
//	_ = p // Persistent
func Parse(s string) (Policy, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return None, fmt.Errorf("cache: empty policy")
	}

	switch strings.ToLower(trimmed) {
	case "none", "no-cache":
		return None, nil
	case "objects", "objects-only":
		return Objects, nil
	case "persistent":
		return Persistent, nil
	default:
		return None, fmt.Errorf("cache: unknown policy %q", s)
	}
}

// MustParse is like Parse but panics on invalid input.
// It is meant for hard-coded values and tests.
func MustParse(s string) Policy {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// MarshalText implements encoding.TextMarshaler.
//
// Unknown values are rejected instead of being serialized in their
// diagnostic "Unknown(<n>)" form.
func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case None, Objects, Persistent:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("cache: cannot marshal unknown policy %d", p)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// It accepts the same tokens as Parse. On failure the receiver is left
// unchanged. Configuration decoders (for example gopkg.in/yaml.v3) use
// this method to read the policy from a config file.
func (p *Policy) UnmarshalText(text []byte) error {
	value, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = value
	return nil
}
