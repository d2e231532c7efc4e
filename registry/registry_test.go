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

package registry_test

import (
	"errors"
	"reflect"
	"testing"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/config"
	"dirpx.dev/robj/registry"
	"dirpx.dev/robj/rxapi/cache/policy"
)

type Case struct{ id int64 }
type Plan struct{ id int64 }

var (
	caseType = reflect.TypeOf(&Case{})
	planType = reflect.TypeOf(&Plan{})
)

func newCase(id int64) func() any {
	return func() any { return &Case{id: id} }
}

func TestLookupOrCreate_SameInstance(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	first, cached, err := reg.LookupOrCreate(caseType, apis.IDKey(42), newCase(42))
	if err != nil {
		t.Fatalf("LookupOrCreate: unexpected error: %v", err)
	}
	if cached {
		t.Fatalf("first lookup reported cached")
	}

	second, cached, err := reg.LookupOrCreate(caseType, apis.IDKey(42), func() any {
		t.Fatalf("alloc called for a cached key")
		return nil
	})
	if err != nil {
		t.Fatalf("LookupOrCreate: unexpected error: %v", err)
	}
	if !cached {
		t.Fatalf("second lookup reported not cached")
	}
	if first != second {
		t.Fatalf("got distinct instances %p and %p", first, second)
	}
	if reg.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", reg.Count())
	}
}

func TestLookupOrCreate_ValueAndPointerShareAPartition(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	a, _, _ := reg.LookupOrCreate(caseType, apis.IDKey(1), newCase(1))
	b, cached, _ := reg.LookupOrCreate(reflect.TypeOf(Case{}), apis.IDKey(1), newCase(1))
	if !cached || a != b {
		t.Fatalf("Case and *Case resolved to different partitions")
	}
}

func TestLookupOrCreate_TypesDoNotCollide(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	c, _, _ := reg.LookupOrCreate(caseType, apis.IDKey(7), newCase(7))
	p, cached, _ := reg.LookupOrCreate(planType, apis.IDKey(7), func() any { return &Plan{id: 7} })
	if cached {
		t.Fatalf("plan 7 found in the case partition")
	}
	if _, ok := p.(*Plan); !ok {
		t.Fatalf("got %T, want *Plan", p)
	}
	if _, ok := c.(*Case); !ok {
		t.Fatalf("got %T, want *Case", c)
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}
}

func TestLookupOrCreate_NoCache(t *testing.T) {
	reg := registry.New(config.NewConfig(config.WithPolicy(policy.None)), nil)

	a, cached1, _ := reg.LookupOrCreate(caseType, apis.IDKey(42), newCase(42))
	b, cached2, _ := reg.LookupOrCreate(caseType, apis.IDKey(42), newCase(42))
	if cached1 || cached2 {
		t.Fatalf("no-cache registry reported a cached instance")
	}
	if a == b {
		t.Fatalf("no-cache registry returned the same instance twice")
	}
	if reg.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", reg.Count())
	}
	if _, ok := reg.Lookup(caseType, apis.IDKey(42)); ok {
		t.Fatalf("no-cache registry stored an instance")
	}
}

func TestIndex_NameThenID(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	obj, _, _ := reg.LookupOrCreate(caseType, apis.NameKey("smoke"), newCase(0))

	// The id is learned after a fetch.
	canonical, err := reg.Index(caseType, apis.IDKey(5), obj)
	if err != nil {
		t.Fatalf("Index: unexpected error: %v", err)
	}
	if canonical != obj {
		t.Fatalf("Index returned a different instance")
	}

	byID, cached, _ := reg.LookupOrCreate(caseType, apis.IDKey(5), newCase(5))
	if !cached || byID != obj {
		t.Fatalf("lookup by learned id did not hit the name-created instance")
	}

	// Idempotent.
	if _, err := reg.Index(caseType, apis.IDKey(5), obj); err != nil {
		t.Fatalf("Index again: unexpected error: %v", err)
	}
	if reg.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", reg.Count())
	}
}

func TestIndex_FirstOwnerWins(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	owner, _, _ := reg.LookupOrCreate(caseType, apis.IDKey(9), newCase(9))
	intruder := &Case{id: 9}

	canonical, err := reg.Index(caseType, apis.IDKey(9), intruder)
	if err != nil {
		t.Fatalf("Index: unexpected error: %v", err)
	}
	if canonical != owner {
		t.Fatalf("Index replaced the owner of an identity")
	}
}

func TestForget(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	obj, _, _ := reg.LookupOrCreate(caseType, apis.NameKey("smoke"), newCase(3))
	_, _ = reg.Index(caseType, apis.IDKey(3), obj)

	if n := reg.Forget(caseType, obj); n != 2 {
		t.Fatalf("Forget removed %d keys, want 2", n)
	}
	if reg.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", reg.Count())
	}
	if _, ok := reg.Lookup(caseType, apis.IDKey(3)); ok {
		t.Fatalf("forgotten instance still reachable")
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := registry.New(config.DefaultConfig(), nil)

	if _, _, err := reg.LookupOrCreate(nil, apis.IDKey(1), newCase(1)); err != registry.ErrNilType {
		t.Fatalf("nil type: want ErrNilType, got %v", err)
	}
	if _, _, err := reg.LookupOrCreate(caseType, apis.IDKey(0), newCase(0)); !errors.Is(err, apis.ErrInvalidKey) {
		t.Fatalf("zero id: want ErrInvalidKey, got %v", err)
	}
	if _, _, err := reg.LookupOrCreate(caseType, apis.IDKey(1), func() any { return nil }); err != registry.ErrNilObject {
		t.Fatalf("nil alloc: want ErrNilObject, got %v", err)
	}
	if _, err := reg.Index(caseType, apis.IDKey(1), nil); err != registry.ErrNilObject {
		t.Fatalf("nil index: want ErrNilObject, got %v", err)
	}
	if _, _, err := reg.LookupOrCreate(reflect.TypeOf(struct{}{}), apis.IDKey(1), newCase(1)); err == nil {
		t.Fatalf("anonymous type: want error, got nil")
	}
}
