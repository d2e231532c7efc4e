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

// Package expiry decides when a hydrated object is too old to be trusted.
package expiry

import "time"

// Never is a TTL under which hydrated objects never go stale.
const Never time.Duration = -1

// Stamped is anything that records when it was last fetched.
// A zero time means never fetched.
type Stamped interface {
	FetchedAt() time.Time
}

// Policy is the staleness rule of one entity kind.
type Policy struct {
	// TTL is the maximum age of hydrated data. Negative means Never.
	TTL time.Duration
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// IsStale reports whether obj must be re-fetched before it is trusted:
// it was never fetched, or it is older than the TTL.
func (p Policy) IsStale(obj Stamped) bool {
	return p.StaleAt(obj.FetchedAt())
}

// StaleAt is IsStale for a raw fetch timestamp.
func (p Policy) StaleAt(fetchedAt time.Time) bool {
	if fetchedAt.IsZero() {
		return true
	}
	if p.TTL < 0 {
		return false
	}
	return p.now().Sub(fetchedAt) > p.TTL
}

// ExpiresAt returns when data fetched at fetchedAt goes stale.
// The boolean is false when it never does.
func (p Policy) ExpiresAt(fetchedAt time.Time) (time.Time, bool) {
	if fetchedAt.IsZero() || p.TTL < 0 {
		return time.Time{}, false
	}
	return fetchedAt.Add(p.TTL), true
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
