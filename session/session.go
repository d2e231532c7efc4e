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

// Package session ties together the pieces one client connection needs:
// configuration, the identity registry, the composite key codec, the
// transport and the call batcher.
//
// Configuration, registry, codec and transport live in an immutable
// snapshot that is swapped atomically, so readers never lock. Writers
// serialize on a build mutex and rebuild the non-pinned layers through
// the session's apis.Builder.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/batch"
	"dirpx.dev/robj/builder"
	"dirpx.dev/robj/config"
	"dirpx.dev/robj/metrics"
	"dirpx.dev/robj/rxapi/cache/policy"
)

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("robj(session): builder returned nil registry")
	// ErrNilCodec is returned when a builder returns a nil codec.
	ErrNilCodec = errors.New("robj(session): builder returned nil codec")
)

// state is one immutable snapshot of the session layers.
type state struct {
	cfg   apis.Config
	reg   apis.Registry
	codec apis.Codec
	bld   apis.Builder
	tr    apis.Transport
	preg  bool // registry pinned: not rebuilt on config changes
}

// Session is safe for concurrent use.
type Session struct {
	buildMu sync.Mutex
	st      atomic.Pointer[state]

	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	batcher  *batch.Batcher
	requests atomic.Int64
}

var _ apis.Transport = (*Session)(nil)

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg     apis.Config
	tr      apis.Transport
	reg     apis.Registry
	bld     apis.Builder
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// WithConfig sets the configuration. It is sanitized before use.
func WithConfig(cfg apis.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithTransport sets the remote procedure caller.
func WithTransport(tr apis.Transport) Option {
	return func(o *options) { o.tr = tr }
}

// WithRegistry installs reg and pins it.
func WithRegistry(reg apis.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// WithBuilder sets the builder used to (re)build registry and codec.
func WithBuilder(b apis.Builder) Option {
	return func(o *options) { o.bld = b }
}

// WithLogger sets the logger shared by every component of the session.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the collectors. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides time.Now, mostly for expiration tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a Session.
func New(opts ...Option) (*Session, error) {
	o := options{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.bld == nil {
		o.bld = builder.New(o.logger)
	}
	cfg := config.Sanitize(o.cfg)

	st := &state{cfg: cfg, bld: o.bld, tr: o.tr}
	if o.reg != nil {
		st.reg, st.preg = o.reg, true
	} else {
		st.reg = o.bld.BuildRegistry(cfg, nil)
	}
	if st.reg == nil {
		return nil, ErrNilRegistry
	}
	codec, err := buildCodec(o.bld, cfg)
	if err != nil {
		return nil, err
	}
	st.codec = codec

	s := &Session{
		logger:  o.logger,
		metrics: o.metrics,
		now:     o.now,
	}
	s.batcher = batch.New(s, batch.WithLogger(o.logger))
	s.st.Store(st)
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Session {
	s, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func buildCodec(b apis.Builder, cfg apis.Config) (apis.Codec, error) {
	c, err := b.BuildCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("robj(session): building codec: %w", err)
	}
	if c == nil {
		return nil, ErrNilCodec
	}
	return c, nil
}

// Config returns the current configuration.
func (s *Session) Config() apis.Config {
	return s.st.Load().cfg
}

// Policy returns the current cache policy.
func (s *Session) Policy() policy.Policy {
	return s.st.Load().cfg.Policy
}

// SetConfig replaces the configuration and rebuilds the codec and, unless
// pinned, the registry. Identities survive a switch between caching
// policies; switching to policy.None drops them.
func (s *Session) SetConfig(cfg apis.Config) error {
	cfg = config.Sanitize(cfg)

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	old := s.st.Load()
	b := old.bld

	nreg := old.reg
	if !old.preg {
		nreg = b.BuildRegistry(cfg, old.reg)
	}
	if nreg == nil {
		return ErrNilRegistry
	}
	codec, err := buildCodec(b, cfg)
	if err != nil {
		return err
	}

	s.st.Store(&state{
		cfg:   cfg,
		reg:   nreg,
		codec: codec,
		bld:   b,
		tr:    old.tr,
		preg:  old.preg,
	})
	s.logger.Debug("session config updated", "policy", cfg.Policy.String(), "max_id", cfg.MaxID)
	return nil
}

// SetPolicy is a shortcut for SetConfig with only the policy changed.
func (s *Session) SetPolicy(p policy.Policy) error {
	cfg := s.Config()
	cfg.Policy = p
	return s.SetConfig(cfg)
}

// Registry returns the identity registry.
func (s *Session) Registry() apis.Registry {
	return s.st.Load().reg
}

// SetRegistry installs reg and pins it. Nil is ignored.
func (s *Session) SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	old := s.st.Load()
	next := *old
	next.reg = reg
	next.preg = true
	s.st.Store(&next)
}

// IsRegistryPinned reports whether config changes leave the registry alone.
func (s *Session) IsRegistryPinned() bool {
	return s.st.Load().preg
}

// UnpinRegistry lets the next config change rebuild the registry again.
func (s *Session) UnpinRegistry() {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	old := s.st.Load()
	next := *old
	next.preg = false
	s.st.Store(&next)
}

// Codec returns the composite key codec for the current MaxID.
func (s *Session) Codec() apis.Codec {
	return s.st.Load().codec
}

// Transport returns the underlying transport, nil if none is set.
func (s *Session) Transport() apis.Transport {
	return s.st.Load().tr
}

// SetTransport replaces the underlying transport.
func (s *Session) SetTransport(tr apis.Transport) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	old := s.st.Load()
	next := *old
	next.tr = tr
	s.st.Store(&next)
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Metrics returns the collectors, possibly nil.
func (s *Session) Metrics() *metrics.Metrics { return s.metrics }

// Now returns the current time of the session clock.
func (s *Session) Now() time.Time { return s.now() }

// Requests returns the number of transport requests issued so far.
// A batched request counts once regardless of how many calls it carries.
func (s *Session) Requests() int64 { return s.requests.Load() }

// Batcher returns the call batcher. Writes are routed through it by Go.
func (s *Session) Batcher() *batch.Batcher { return s.batcher }

// Go routes a call through the batcher: it is sent right away in direct
// mode and queued while a batch is open.
func (s *Session) Go(ctx context.Context, method string, params ...any) *batch.Future {
	return s.batcher.Call(ctx, method, params...)
}

// Call performs one call on the transport and waits for it. Reads use it
// directly since hydration needs the data before it can return.
func (s *Session) Call(ctx context.Context, method string, params ...any) (any, error) {
	tr := s.Transport()
	if tr == nil {
		return nil, fmt.Errorf("%w: calling %s", apis.ErrNoTransport, method)
	}
	s.requests.Add(1)
	v, err := tr.Call(ctx, method, params...)
	s.metrics.Request(false, 1, err)
	if err != nil {
		s.logger.Debug("transport call failed", "method", method, "error", err)
		return nil, &apis.TransportError{Method: method, Err: err}
	}
	return v, nil
}

// CallBatch performs calls as one transport request.
func (s *Session) CallBatch(ctx context.Context, calls []apis.Call) ([]apis.Result, error) {
	tr := s.Transport()
	if tr == nil {
		return nil, fmt.Errorf("%w: batching %d calls", apis.ErrNoTransport, len(calls))
	}
	s.requests.Add(1)
	res, err := tr.CallBatch(ctx, calls)
	s.metrics.Request(true, len(calls), err)
	if err != nil {
		return nil, &apis.TransportError{Method: "batch", Err: err}
	}
	return res, nil
}
