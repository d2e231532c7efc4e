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

// Identifier extends Namer with a per-instance identifier.
//
// # Overview
//
// Remote objects are logged as "<kind> <identifier>", where the identifier
// is the short, prefixed form operators know from the server UI
// ("TC#0042", "TP#1234"). Objects whose id is not known yet (created by
// name and not fetched) report "TC#UNKNOWN (name)".
//
// # Contract
//
//   - EntityID MUST NOT trigger a fetch: it reports what is known locally.
//   - EntityID MUST be safe for concurrent calls.
//   - Once the id of an instance is known, EntityID MUST NOT change.
type Identifier interface {
	Namer

	// EntityID returns the identifier of this instance.
	EntityID() string
}
