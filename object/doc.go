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

// Package object presents remote, server-owned records as local objects.
//
// An entity type embeds Base, declares its fields in a Kind and
// implements the hooks it supports:
//
//	var caseKind = &object.Kind{Name: "TestCase", Prefix: "TC", Fields: []string{"summary", "priority"}}
//
//	type Case struct{ object.Base }
//
//	func (c *Case) FetchFields(ctx context.Context, ref object.Ref, _ apis.Fields) (apis.Fields, error) {
//		v, err := ref.Session.Call(ctx, "TestCase.get", ref.ID)
//		...
//	}
//
//	func (c *Case) UpdateFields(ctx context.Context, ref object.Ref, changed apis.Fields) error {
//		return ref.Session.Go(ctx, "TestCase.update", ref.ID, changed).Err()
//	}
//
//	c, err := object.Lookup(ctx, sess, caseKind, apis.ID(42), func() *Case { return new(Case) })
//
// Objects are identity-mapped through the session registry, hydrated
// once on first field access, and re-fetched once their kind TTL has
// elapsed. Field writes that do not change the value are ignored. Real
// changes mark the object dirty and are pushed right away, or held until
// Flush when the session policy buffers writes.
//
// Each object serializes access to its own state. Fetch and update hooks
// run with the object locked, so concurrent readers share a single fetch.
package object
