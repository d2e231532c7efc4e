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

// Package fake provides an in-memory apis.Transport for tests.
//
// Methods are answered by registered handlers. Every call is recorded,
// and each transport request (a direct Call or a whole CallBatch) counts
// as one request.
package fake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dirpx.dev/robj/apis"
)

// ErrNoHandler is returned for methods nothing was registered for.
var ErrNoHandler = errors.New("fake: no handler for method")

// Handler answers a single call.
type Handler func(params []any) (any, error)

// Transport is a scripted apis.Transport.
type Transport struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    []apis.Call
	requests int
	batches  [][]apis.Call
	fail     error
}

var _ apis.Transport = (*Transport)(nil)

// New returns an empty Transport.
func New() *Transport {
	return &Transport{handlers: make(map[string]Handler)}
}

// Handle registers h for method, replacing any previous handler.
func (t *Transport) Handle(method string, h Handler) *Transport {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[method] = h
	return t
}

// Fail makes every following request fail with err. Nil clears it.
func (t *Transport) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail = err
}

// Call implements apis.Transport.
func (t *Transport) Call(ctx context.Context, method string, params ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.requests++
	c := apis.Call{Method: method, Params: params}
	t.calls = append(t.calls, c)
	fail := t.fail
	h := t.handlers[method]
	t.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	return dispatch(h, c)
}

// CallBatch implements apis.Transport.
func (t *Transport) CallBatch(ctx context.Context, calls []apis.Call) ([]apis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.requests++
	t.calls = append(t.calls, calls...)
	t.batches = append(t.batches, append([]apis.Call(nil), calls...))
	fail := t.fail
	hs := make([]Handler, len(calls))
	for i, c := range calls {
		hs[i] = t.handlers[c.Method]
	}
	t.mu.Unlock()

	if fail != nil {
		return nil, fail
	}
	out := make([]apis.Result, len(calls))
	for i, c := range calls {
		v, err := dispatch(hs[i], c)
		out[i] = apis.Result{Value: v, Err: err}
	}
	return out, nil
}

func dispatch(h Handler, c apis.Call) (any, error) {
	if h == nil {
		return nil, fmt.Errorf("%w %q", ErrNoHandler, c.Method)
	}
	return h(c.Params)
}

// Requests returns the number of transport requests made so far.
func (t *Transport) Requests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests
}

// Calls returns a copy of every recorded call, batched or not.
func (t *Transport) Calls() []apis.Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]apis.Call(nil), t.calls...)
}

// CallsTo returns the recorded calls to method.
func (t *Transport) CallsTo(method string) []apis.Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []apis.Call
	for _, c := range t.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Batches returns the calls of every CallBatch request, in order.
func (t *Transport) Batches() [][]apis.Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]apis.Call(nil), t.batches...)
}

// Reset clears the recorded calls and counters. Handlers are kept.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = nil
	t.batches = nil
	t.requests = 0
	t.fail = nil
}
