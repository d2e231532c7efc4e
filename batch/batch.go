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

// Package batch folds remote calls into batched transport requests.
//
// A Batcher starts in direct mode: every Call is sent and awaited right
// away and returns an already resolved Future. Begin switches to batched
// mode, where calls are queued and their Futures stay pending until Flush
// sends the whole queue as one transport request and hands each caller
// its own result, in queue order.
//
//	b.Begin()
//	f1 := b.Call(ctx, "TestCaseRun.update", 1, fields)
//	f2 := b.Call(ctx, "TestCaseRun.update", 2, fields)
//	err := b.End(ctx) // one CallBatch carrying both calls
//	v, err := f1.Wait(ctx)
//
// A transport failure fails every queued call with the same error. When
// the request itself succeeds, each call resolves from its own entry.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"dirpx.dev/robj/apis"
)

// Batcher dispatches calls directly or queues them for a batched flush.
type Batcher struct {
	tr     apis.Transport
	logger *slog.Logger

	mu       sync.Mutex
	batching bool
	queue    []*request
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Batcher) {
		if l != nil {
			b.logger = l
		}
	}
}

// New returns a Batcher in direct mode sending through tr.
func New(tr apis.Transport, opts ...Option) *Batcher {
	b := &Batcher{tr: tr, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Begin switches to batched mode. It fails with apis.ErrBatchPending when
// a batch is already in progress, so a caller cannot mistake "still
// batching" for a fresh start.
func (b *Batcher) Begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.batching {
		return fmt.Errorf("%w: %d calls queued", apis.ErrBatchPending, len(b.queue))
	}
	b.batching = true
	b.logger.Debug("batching started")
	return nil
}

// Batching reports whether calls are currently queued instead of sent.
func (b *Batcher) Batching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.batching
}

// Pending returns the number of queued calls.
func (b *Batcher) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Call sends the call now (direct mode) or queues it (batched mode).
func (b *Batcher) Call(ctx context.Context, method string, params ...any) *Future {
	r := newRequest(apis.Call{Method: method, Params: params})

	b.mu.Lock()
	if b.batching {
		b.queue = append(b.queue, r)
		b.mu.Unlock()
		return r.future
	}
	b.mu.Unlock()

	v, err := b.tr.Call(ctx, method, params...)
	r.resolve(v, err)
	return r.future
}

// Flush sends all queued calls as one batched request and resolves their
// futures. It returns the transport error, if any; per-call failures are
// only reported through the individual futures. Flushing an empty queue
// sends nothing. The batching mode is left unchanged.
func (b *Batcher) Flush(ctx context.Context) error {
	b.mu.Lock()
	reqs := b.queue
	b.queue = nil
	b.mu.Unlock()

	if len(reqs) == 0 {
		return nil
	}
	return b.run(ctx, reqs)
}

// End flushes the queue and switches back to direct mode.
func (b *Batcher) End(ctx context.Context) error {
	b.mu.Lock()
	if !b.batching {
		b.mu.Unlock()
		return apis.ErrNotBatching
	}
	b.batching = false
	reqs := b.queue
	b.queue = nil
	b.mu.Unlock()

	b.logger.Debug("batching ended", "calls", len(reqs))
	if len(reqs) == 0 {
		return nil
	}
	return b.run(ctx, reqs)
}

// run is the function called on each flush.
func (b *Batcher) run(ctx context.Context, reqs []*request) error {
	calls := make([]apis.Call, len(reqs))
	for i, r := range reqs {
		calls[i] = r.call
	}

	results, err := b.tr.CallBatch(ctx, calls)
	if err == nil && len(results) != len(calls) {
		err = fmt.Errorf("%w: got %d results for %d calls", apis.ErrBatchMismatch, len(results), len(calls))
	}
	if err != nil {
		b.logger.Error("batched request failed", "calls", len(calls), "error", err)
		for _, r := range reqs {
			r.resolve(nil, err)
		}
		return err
	}

	for i, r := range reqs {
		res := results[i]
		if res.Err != nil {
			r.resolve(nil, &apis.TransportError{Method: r.call.Method, Err: res.Err})
			continue
		}
		r.resolve(res.Value, nil)
	}
	return nil
}

// request pairs a queued call with the future handed to its caller.
type request struct {
	call   apis.Call
	future *Future
}

func newRequest(c apis.Call) *request {
	return &request{
		call:   c,
		future: &Future{done: make(chan struct{})},
	}
}

func (r *request) resolve(v any, err error) {
	r.future.out = v
	r.future.err = err
	close(r.future.done)
}

// Future is the pending result of a call.
type Future struct {
	done chan struct{}
	out  any
	err  error
}

// Done returns a channel closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Resolved reports whether the result is available.
func (f *Future) Resolved() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the result is available or ctx is done.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.out, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Err returns the error of a resolved call, or nil while it is pending.
// Writers use it to surface direct-mode failures without blocking on
// calls that are still queued.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}
