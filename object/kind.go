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

package object

import (
	"reflect"
	"slices"
	"time"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/expiry"
	"dirpx.dev/robj/kind"
)

// IDField is the identity field every kind has implicitly.
const IDField = "id"

// Kind describes one entity kind: its name, identifier prefix, declared
// fields and expiration. A Kind is shared by every instance of the kind
// and must not be modified after first use.
type Kind struct {
	// Name is used in String, logs and metric labels ("TestCase").
	// Empty means the Go type name of the entity.
	Name string
	// Prefix is the short identifier prefix ("TC"). Empty means Name.
	Prefix string
	// Fields lists the declared fields besides IDField. A fetch must
	// populate every one of them.
	Fields []string
	// TTL overrides the session TTL for this kind. Zero means the
	// session default, expiry.Never disables expiration.
	TTL time.Duration
	// Immutable marks reference kinds that use the session ImmutableTTL.
	Immutable bool
	// NameField names the declared field holding the unique name of a
	// record ("name", "username"). When an inject or a fetch supplies it,
	// the object is also registered under that name. Empty means the
	// kind has no unique name.
	NameField string
}

// nameOf returns the unique name carried by data, if any.
func (k *Kind) nameOf(data apis.Fields) string {
	if k.NameField == "" {
		return ""
	}
	name, _ := data[k.NameField].(string)
	return name
}

// Declares reports whether field belongs to the kind.
func (k *Kind) Declares(field string) bool {
	return field == IDField || slices.Contains(k.Fields, field)
}

// Covers reports whether data holds a value for every declared field.
func (k *Kind) Covers(data apis.Fields) bool {
	return k.missing(data) == ""
}

// missing returns the first declared field absent from data.
func (k *Kind) missing(data apis.Fields) string {
	for _, f := range k.Fields {
		if _, ok := data[f]; !ok {
			return f
		}
	}
	return ""
}

// Expiry returns the staleness rule of the kind under cfg.
func (k *Kind) Expiry(cfg apis.Config, now func() time.Time) expiry.Policy {
	ttl := k.TTL
	if ttl == 0 {
		ttl = cfg.DefaultTTL
		if k.Immutable {
			ttl = cfg.ImmutableTTL
		}
	}
	return expiry.Policy{TTL: ttl, Now: now}
}

func (k *Kind) name(t reflect.Type) string {
	if k.Name != "" {
		return k.Name
	}
	return kind.OfType(t)
}

func (k *Kind) prefix(t reflect.Type) string {
	if k.Prefix != "" {
		return k.Prefix
	}
	return k.name(t)
}
