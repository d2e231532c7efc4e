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

// Package metrics exposes Prometheus collectors for the object layer.
//
// All recording methods are safe on a nil *Metrics, so components can be
// built without observability wired in.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "robj"

// Metrics holds the collectors of one session.
type Metrics struct {
	lookups   *prometheus.CounterVec // kind, result=hit|miss
	fetches   *prometheus.CounterVec // kind, source=remote|inject
	updates   *prometheus.CounterVec // kind
	requests  *prometheus.CounterVec // mode=direct|batch
	failures  *prometheus.CounterVec // mode=direct|batch
	batchSize prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is useful in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "lookups_total",
			Help:      "Identity lookups by kind and result (hit or miss)",
		}, []string{"kind", "result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "object",
			Name:      "fetches_total",
			Help:      "Object hydrations by kind and source (remote or inject)",
		}, []string{"kind", "source"}),
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "object",
			Name:      "updates_total",
			Help:      "Field changes pushed upstream by kind",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Transport requests by mode (direct or batch)",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "failures_total",
			Help:      "Failed transport requests by mode (direct or batch)",
		}, []string{"mode"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "batch",
			Name:      "calls",
			Help:      "Number of calls folded into one batched request",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.lookups, m.fetches, m.updates, m.requests, m.failures, m.batchSize} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return nil, errors.Join(errors.New("metrics: collector already registered"), err)
			}
			return nil, err
		}
	}
	return m, nil
}

// Lookup records an identity lookup.
func (m *Metrics) Lookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(kind, result).Inc()
}

// Fetch records a hydration; fromInject marks the no-network fast path.
func (m *Metrics) Fetch(kind string, fromInject bool) {
	if m == nil {
		return
	}
	source := "remote"
	if fromInject {
		source = "inject"
	}
	m.fetches.WithLabelValues(kind, source).Inc()
}

// Update records a field change pushed upstream.
func (m *Metrics) Update(kind string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(kind).Inc()
}

// Request records one transport request. size is the number of calls it carried.
func (m *Metrics) Request(batched bool, size int, err error) {
	if m == nil {
		return
	}
	mode := "direct"
	if batched {
		mode = "batch"
		m.batchSize.Observe(float64(size))
	}
	m.requests.WithLabelValues(mode).Inc()
	if err != nil {
		m.failures.WithLabelValues(mode).Inc()
	}
}

// Lookups returns the lookup counter for assertions and dashboards.
func (m *Metrics) Lookups() *prometheus.CounterVec { return m.lookups }

// Fetches returns the fetch counter.
func (m *Metrics) Fetches() *prometheus.CounterVec { return m.fetches }

// Updates returns the update counter.
func (m *Metrics) Updates() *prometheus.CounterVec { return m.updates }

// Requests returns the transport request counter.
func (m *Metrics) Requests() *prometheus.CounterVec { return m.requests }
