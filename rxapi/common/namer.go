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

package common

// Namer identifies an entity kind by a stable, canonical name.
//
// # Overview
//
// Namer is the zero-reflection fast path for naming entity kinds in log
// lines and metric labels. When an entity implements Namer, the kind
// resolver uses EntityName and does not fall back to the Go type name.
//
// EntityName is a type-level contract: it names the *kind* of remote
// record ("testcase", "testplan", "product"), never a particular instance.
//
// # Usage
//
//	type Case struct{ object.Base }
//
//	func (*Case) EntityName() string { return "testcase" }
//
// # Contract
//
//   - The returned name MUST be non-empty and deterministic for a given
//     concrete type.
//   - The returned name MUST NOT depend on instance state; in particular
//     it MUST NOT trigger a fetch.
//   - Implementations MUST be safe for concurrent calls and MUST NOT
//     perform I/O.
type Namer interface {
	// EntityName returns the canonical, type-level name for this entity.
	EntityName() string
}

// NamerFunc adapts a plain function to the Namer interface.
type NamerFunc func() string

// EntityName implements Namer for NamerFunc.
func (f NamerFunc) EntityName() string {
	return f()
}
