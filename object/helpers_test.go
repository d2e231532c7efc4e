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

package object_test

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/config"
	"dirpx.dev/robj/object"
	"dirpx.dev/robj/rxapi/cache/policy"
	"dirpx.dev/robj/session"
	"dirpx.dev/robj/transport/fake"
)

var caseKind = &object.Kind{
	Name:   "TestCase",
	Prefix: "TC",
	Fields: []string{"summary", "priority"},
}

type Case struct{ object.Base }

func newCase() *Case { return new(Case) }

func (c *Case) FetchFields(ctx context.Context, ref object.Ref, _ apis.Fields) (apis.Fields, error) {
	var (
		v   any
		err error
	)
	if ref.HasID() {
		v, err = ref.Session.Call(ctx, "TestCase.get", ref.ID)
	} else {
		v, err = ref.Session.Call(ctx, "TestCase.filter", ref.Name)
	}
	if err != nil {
		return nil, err
	}
	return v.(apis.Fields), nil
}

func (c *Case) UpdateFields(ctx context.Context, ref object.Ref, changed apis.Fields) error {
	return ref.Session.Go(ctx, "TestCase.update", ref.ID, changed).Err()
}

// namedCaseKind is caseKind with summary declared as the unique name.
var namedCaseKind = &object.Kind{
	Name:      "TestCase",
	Prefix:    "TC",
	Fields:    []string{"summary", "priority"},
	NameField: "summary",
}

type NamedCase struct{ Case }

func newNamedCase() *NamedCase { return new(NamedCase) }

var planKind = &object.Kind{Name: "TestPlan", Prefix: "TP", Fields: []string{"name"}}

type Plan struct{ object.Base }

func newPlan() *Plan { return new(Plan) }

func (p *Plan) FetchFields(ctx context.Context, ref object.Ref, _ apis.Fields) (apis.Fields, error) {
	return apis.Fields{"name": fmt.Sprintf("plan %d", ref.ID)}, nil
}

var brokenKind = &object.Kind{Name: "Broken", Fields: []string{"summary", "priority"}}

type Broken struct{ object.Base }

func newBroken() *Broken { return new(Broken) }

func (b *Broken) FetchFields(context.Context, object.Ref, apis.Fields) (apis.Fields, error) {
	return apis.Fields{"summary": "half"}, nil
}

// server is an in-memory TestCase store behind a fake transport.
type server struct {
	mu   sync.Mutex
	rows map[int64]apis.Fields
	tr   *fake.Transport
}

func newServer() *server {
	s := &server{rows: map[int64]apis.Fields{
		1:  {"summary": "one", "priority": "P3"},
		2:  {"summary": "two", "priority": "P3"},
		3:  {"summary": "three", "priority": "P3"},
		7:  {"summary": "login", "priority": "P1"},
		42: {"summary": "logout", "priority": "P2"},
	}}
	s.tr = fake.New().
		Handle("TestCase.get", s.get).
		Handle("TestCase.filter", s.filter).
		Handle("TestCase.update", s.update)
	return s
}

func (s *server) get(p []any) (any, error) {
	id := p[0].(int64)
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("no TestCase with id %d", id)
	}
	out := maps.Clone(row)
	out["id"] = id
	return out, nil
}

func (s *server) filter(p []any) (any, error) {
	name := p[0].(string)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.rows {
		if row["summary"] == name {
			out := maps.Clone(row)
			out["id"] = id
			return out, nil
		}
	}
	return nil, fmt.Errorf("no TestCase named %q", name)
}

func (s *server) update(p []any) (any, error) {
	id := p[0].(int64)
	changed := p[1].(apis.Fields)
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, fmt.Errorf("no TestCase with id %d", id)
	}
	maps.Copy(row, changed)
	return nil, nil
}

func (s *server) set(id int64, field string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id][field] = v
}

func (s *server) row(id int64) apis.Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.rows[id])
}

func (s *server) rejectUpdates() {
	s.tr.Handle("TestCase.update", func([]any) (any, error) {
		return nil, errors.New("permission denied")
	})
}

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSession(p policy.Policy, tr apis.Transport, clk *clock, opts ...session.Option) *session.Session {
	opts = append([]session.Option{
		session.WithConfig(config.NewConfig(config.WithPolicy(p))),
		session.WithTransport(tr),
		session.WithClock(clk.Now),
	}, opts...)
	return session.MustNew(opts...)
}
