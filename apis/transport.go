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

import "context"

// Call is one remote procedure call.
type Call struct {
	Method string
	Params []any
}

// Result is the outcome of one call inside a batched request.
// Each entry succeeds or fails on its own.
type Result struct {
	Value any
	Err   error
}

// Transport is the remote procedure caller the object layer fronts.
// Authentication, retries and timeouts are the transport's business.
type Transport interface {
	// Call performs a single call and waits for its result.
	Call(ctx context.Context, method string, params ...any) (any, error)
	// CallBatch performs all calls as one request. results[i] corresponds
	// to calls[i]. A non-nil error means the request as a whole failed.
	CallBatch(ctx context.Context, calls []Call) (results []Result, err error)
}

// Codec packs ordered tuples of small ids into a single key and back.
type Codec interface {
	Pack(components ...int64) (int64, error)
	Unpack(key int64) ([]int64, error)
}
