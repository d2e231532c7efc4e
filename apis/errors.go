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
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned for malformed identity keys and composite ids.
	ErrInvalidKey = errors.New("robj: invalid key")
	// ErrTypeMismatch is returned when objects of different types are compared.
	ErrTypeMismatch = errors.New("robj: type mismatch")
	// ErrIncompleteFetch indicates a fetch hook that left a declared field
	// uninitialized. It is a bug in the hook and is never retried.
	ErrIncompleteFetch = errors.New("robj: incomplete fetch")
	// ErrStaleDirty is returned when a stale object with unflushed changes
	// could not be flushed before re-fetching it.
	ErrStaleDirty = errors.New("robj: stale object has unflushed changes")
	// ErrUnknownField is returned for fields the kind does not declare.
	ErrUnknownField = errors.New("robj: unknown field")
	// ErrReadOnlyField is returned when setting the identity field.
	ErrReadOnlyField = errors.New("robj: read-only field")
	// ErrFieldType is returned when a field value does not have the requested type.
	ErrFieldType = errors.New("robj: field type mismatch")
	// ErrNotUpdatable is returned when flushing a kind without an update hook.
	ErrNotUpdatable = errors.New("robj: kind does not support updates")
	// ErrNoTransport is returned when a session has no transport configured.
	ErrNoTransport = errors.New("robj: no transport configured")
	// ErrBatchPending is returned when batching is started while it is
	// already active.
	ErrBatchPending = errors.New("robj: batch already in progress")
	// ErrNotBatching is returned when a batch is ended that was never started.
	ErrNotBatching = errors.New("robj: not batching")
	// ErrBatchMismatch indicates a transport that answered a batch with the
	// wrong number of results.
	ErrBatchMismatch = errors.New("robj: batch result count mismatch")
)

// TransportError wraps a failure reported by the transport collaborator.
// The original error is kept unchanged and is available via errors.Unwrap.
type TransportError struct {
	Method string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("robj: transport call %s failed: %v", e.Method, e.Err)
}

// Unwrap returns the collaborator's error.
func (e *TransportError) Unwrap() error {
	return e.Err
}
