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

import (
	"time"

	"dirpx.dev/robj/rxapi/cache/policy"
)

// Config carries the session-wide caching knobs.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Policy selects identity caching and deferred writes.
	Policy policy.Policy

	// MaxID is the base used to pack composite ids into a single key.
	// Every component of a composite id must be strictly below MaxID.
	MaxID int64

	// DefaultTTL is the time-to-live of mutable entity kinds that do not
	// declare their own.
	DefaultTTL time.Duration

	// ImmutableTTL is the time-to-live of reference kinds (products,
	// versions, users) whose data rarely changes on the server.
	ImmutableTTL time.Duration

	// IdentifierWidth zero-pads ids in identifiers ("TC#0042" for width 4).
	IdentifierWidth int
}
