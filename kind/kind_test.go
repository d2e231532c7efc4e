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

package kind_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/robj/kind"
	"dirpx.dev/robj/rxapi/common"
)

type plan struct{}

type product struct{}

func (*product) EntityName() string { return "product" }

type panicky struct{ name *string }

func (p *panicky) EntityName() string { return *p.name }

func TestOf(t *testing.T) {
	cases := []struct {
		name string
		v    any
		want string
	}{
		{"nil", nil, ""},
		{"namer", &product{}, "product"},
		{"namer func", common.NamerFunc(func() string { return "fn" }), "fn"},
		{"reflect pointer", &plan{}, "kind_test.plan"},
		{"reflect value", plan{}, "kind_test.plan"},
		{"namer panics", &panicky{}, "kind_test.panicky"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := kind.Of(tc.v); got != tc.want {
				t.Fatalf("Of(%T) = %q, want %q", tc.v, got, tc.want)
			}
		})
	}
}

func TestOfType_Concurrent(t *testing.T) {
	typ := reflect.TypeOf(&plan{})
	workers := runtime.GOMAXPROCS(0) * 4

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if got := kind.OfType(typ); got != "kind_test.plan" {
					t.Errorf("OfType = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

type build struct{}

func TestRegister(t *testing.T) {
	typ := reflect.TypeOf(build{})
	if err := kind.Register(typ, "testbuild"); err != nil {
		t.Fatalf("Register error = %v", err)
	}
	defer kind.Unregister(typ)

	if got := kind.Of(&build{}); got != "testbuild" {
		t.Fatalf("Of(*build) = %q, want %q", got, "testbuild")
	}
	if got := kind.OfType(typ); got != "testbuild" {
		t.Fatalf("OfType(build) = %q, want %q", got, "testbuild")
	}
	if got := kind.Of(&product{}); got != "product" {
		t.Fatalf("Namer must win over Register, got %q", got)
	}

	if err := kind.Register(typ, ""); err != kind.ErrEmptyName {
		t.Fatalf("Register(empty) error = %v, want ErrEmptyName", err)
	}
	if err := kind.Register(nil, "x"); err == nil {
		t.Fatalf("Register(nil) error = nil")
	}

	kind.Unregister(typ)
	if got := kind.OfType(typ); got != "kind_test.build" {
		t.Fatalf("OfType after Unregister = %q", got)
	}
}
