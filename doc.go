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

// Package robj provides a process-wide default session for remote objects.
//
// Most programs talk to a single server. robj keeps one session.Session
// for them so entity packages can look objects up without threading a
// session through every call:
//
//	robj.SetTransport(jsonrpc.New("https://tcms.example.com/json-rpc/"))
//	c, err := robj.Lookup(ctx, caseKind, apis.ID(42), newCase)
//	summary, err := object.GetAs[string](ctx, c, "summary")
//
// # Design
//
// The session holds an immutable snapshot of config, registry, codec and
// transport, published through an atomic pointer. Readers never lock.
// Writers (SetConfig, SetPolicy, SetTransport, SetRegistry) serialize on
// a build mutex and publish a fresh snapshot; registries that are not
// pinned are rebuilt through the session builder, which carries live
// identities over as long as the new policy still caches.
//
// # Batching
//
//	robj.Begin()
//	for _, c := range cases {
//		_ = c.Flush(ctx)
//	}
//	err := robj.End(ctx) // one request for every queued update
//
// # Pinning
//
// SetRegistry installs a registry and pins it: config changes no longer
// rebuild it until UnpinRegistry is called. Tests use it to observe the
// registry directly.
//
// Programs that need several servers create their own sessions with
// session.New and pass them to object.Lookup.
package robj
