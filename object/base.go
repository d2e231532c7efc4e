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
	"context"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/rxapi/common"
	"dirpx.dev/robj/session"
)

var (
	// ErrUnbound is returned by objects that were not created by Lookup.
	ErrUnbound = errors.New("robj(object): object not created by Lookup")
	// ErrNotFetchable is returned when a kind without a fetch hook must be hydrated.
	ErrNotFetchable = errors.New("robj(object): kind has no fetch hook")
)

// Entity is implemented by every type embedding Base.
type Entity interface {
	Object() *Base
}

// Fetcher is the fetch hook of an entity kind. It returns the values of
// every declared field, plus IDField when the object was looked up by
// name. inject holds the data passed to Lookup, if any, so a hook may
// complete partial data instead of fetching everything.
type Fetcher interface {
	FetchFields(ctx context.Context, ref Ref, inject apis.Fields) (apis.Fields, error)
}

// Updater is the update hook of an entity kind. changed holds only the
// modified fields. Hooks that send through Session.Go return nil while
// the call is queued in a batch.
type Updater interface {
	UpdateFields(ctx context.Context, ref Ref, changed apis.Fields) error
}

// Ref is what hooks know about the object they serve. Hooks run with the
// object locked and must not call back into it.
type Ref struct {
	ID      int64
	Name    string
	Kind    *Kind
	Session *session.Session
}

// HasID reports whether the id is known.
func (r Ref) HasID() bool { return r.ID > 0 }

// Base is the state shared by every remote object. Entity types embed it
// and are always handled by pointer.
type Base struct {
	mu sync.Mutex

	self Entity
	typ  reflect.Type
	desc *Kind
	sess *session.Session

	id   int64
	name string

	// fields holds hydrated and modified values. A declared field absent
	// from the map is uninitialized.
	fields    apis.Fields
	modified  map[string]struct{}
	inject    apis.Fields
	fetchedAt time.Time
}

var (
	_ common.Identifier = (*Base)(nil)
	_ Entity            = (*Base)(nil)
)

// Object implements Entity.
func (b *Base) Object() *Base { return b }

func (b *Base) init(self Entity, k *Kind, s *session.Session, key apis.Key) {
	b.self = self
	b.typ = reflect.TypeOf(self)
	b.desc = k
	b.sess = s
	b.id = key.ID
	b.name = key.Name
	b.fields = make(apis.Fields, len(k.Fields))
	b.modified = make(map[string]struct{})
}

// Kind returns the kind descriptor.
func (b *Base) Kind() *Kind { return b.desc }

// Session returns the owning session.
func (b *Base) Session() *session.Session { return b.sess }

// Get returns the value of field, fetching the object first when it was
// never hydrated or has gone stale.
func (b *Base) Get(ctx context.Context, field string) (any, error) {
	if b.sess == nil {
		return nil, ErrUnbound
	}
	if field == IDField {
		id, err := b.ID(ctx)
		if err != nil {
			return nil, err
		}
		return id, nil
	}
	if !b.desc.Declares(field) {
		return nil, fmt.Errorf("%w: %s has no field %q", apis.ErrUnknownField, b.EntityName(), field)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureFresh(ctx); err != nil {
		return nil, err
	}
	v, ok := b.fields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s field %q", apis.ErrIncompleteFetch, b.identifier(), field)
	}
	return v, nil
}

// Set changes field. Setting the current value is a no-op and does not
// dirty the object; numbers compare by value, so json.Number("2") and
// int64(2) are the same value. The change is pushed right away unless the session
// policy buffers writes until Flush.
func (b *Base) Set(ctx context.Context, field string, value any) error {
	if b.sess == nil {
		return ErrUnbound
	}
	if field == IDField {
		return fmt.Errorf("%w: %q", apis.ErrReadOnlyField, field)
	}
	if !b.desc.Declares(field) {
		return fmt.Errorf("%w: %s has no field %q", apis.ErrUnknownField, b.EntityName(), field)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureFresh(ctx); err != nil {
		return err
	}
	if cur, ok := b.fields[field]; ok && sameValue(cur, value) {
		// A change whose immediate push failed is still pending: push it again.
		if _, pending := b.modified[field]; pending && !b.sess.Policy().Buffered() {
			return b.flush(ctx)
		}
		return nil
	}
	b.fields[field] = value
	b.modified[field] = struct{}{}
	b.sess.Logger().Info("updating field",
		"identifier", b.identifier(), "field", field, "value", value)

	if b.sess.Policy().Buffered() {
		return nil
	}
	return b.flush(ctx)
}

// Flush pushes modified fields through the update hook. On failure the
// object stays dirty.
func (b *Base) Flush(ctx context.Context) error {
	if b.sess == nil {
		return ErrUnbound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flush(ctx)
}

// Refresh re-fetches the object. Pending changes are flushed first; if
// that fails the object is left untouched and apis.ErrStaleDirty is returned.
func (b *Base) Refresh(ctx context.Context) error {
	if b.sess == nil {
		return ErrUnbound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refresh(ctx)
}

// ID returns the numeric id, fetching when only the name is known.
func (b *Base) ID(ctx context.Context) (int64, error) {
	if b.sess == nil {
		return 0, ErrUnbound
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.id > 0 {
		return b.id, nil
	}
	if err := b.ensureFresh(ctx); err != nil {
		return 0, err
	}
	return b.id, nil
}

// Hash is derived from the id so equal objects hash alike.
func (b *Base) Hash(ctx context.Context) (uint64, error) {
	id, err := b.ID(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Equal compares by id. A nil other is never equal; objects of different
// entity types cannot be compared and yield apis.ErrTypeMismatch.
func (b *Base) Equal(ctx context.Context, other Entity) (bool, error) {
	if other == nil {
		return false, nil
	}
	if rv := reflect.ValueOf(other); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return false, nil
	}
	if reflect.TypeOf(other) != b.typ {
		return false, fmt.Errorf("%w: cannot compare %v with %T", apis.ErrTypeMismatch, b.typ, other)
	}
	o := other.Object()
	if o == b {
		return true, nil
	}
	a, err := b.ID(ctx)
	if err != nil {
		return false, err
	}
	c, err := o.ID(ctx)
	if err != nil {
		return false, err
	}
	return a == c, nil
}

// Forget removes the object from the identity registry. The next lookup
// of its id or name allocates a fresh instance.
func (b *Base) Forget() int {
	if b.sess == nil {
		return 0
	}
	return b.sess.Registry().Forget(b.typ, b.self)
}

// FetchedAt returns when the object was last hydrated, zero if never.
func (b *Base) FetchedAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fetchedAt
}

// Hydrated reports whether the object was fetched at least once.
func (b *Base) Hydrated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.fetchedAt.IsZero()
}

// Dirty reports whether the object holds changes not yet pushed.
func (b *Base) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.modified) > 0
}

// Modified returns the names of the fields not yet pushed, sorted.
func (b *Base) Modified() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.modified))
}

// Stale reports whether the next field access will re-fetch. It never
// fetches itself.
func (b *Base) Stale() bool {
	if b.sess == nil {
		return true
	}
	return b.desc.Expiry(b.sess.Config(), b.sess.Now).IsStale(b)
}

// Inject returns a copy of the data the object was looked up with.
func (b *Base) Inject() apis.Fields {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.inject)
}

// EntityName implements common.Namer.
func (b *Base) EntityName() string {
	if b.desc == nil {
		return ""
	}
	return b.desc.name(b.typ)
}

// EntityID implements common.Identifier.
func (b *Base) EntityID() string { return b.Identifier() }

// Identifier returns the short form "TC#42", or "TC#UNKNOWN (name)" while
// only the name is known. It never fetches.
func (b *Base) Identifier() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.identifier()
}

// String returns "TestCase(42)", "TestCase('name')" or "TestCase(<unknown>)".
func (b *Base) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	name := b.EntityName()
	switch {
	case b.id > 0:
		return fmt.Sprintf("%s(%d)", name, b.id)
	case b.name != "":
		return fmt.Sprintf("%s('%s')", name, b.name)
	default:
		return name + "(<unknown>)"
	}
}

func (b *Base) identifier() string {
	if b.desc == nil {
		return "#UNKNOWN"
	}
	prefix := b.desc.prefix(b.typ)
	switch {
	case b.id > 0:
		return fmt.Sprintf("%s#%0*d", prefix, b.sess.Config().IdentifierWidth, b.id)
	case b.name != "":
		return fmt.Sprintf("%s#UNKNOWN (%s)", prefix, b.name)
	default:
		return prefix + "#UNKNOWN"
	}
}

func (b *Base) ref() Ref {
	return Ref{ID: b.id, Name: b.name, Kind: b.desc, Session: b.sess}
}

// ensureFresh hydrates an object that was never fetched and refreshes a
// stale one. b.mu must be held.
func (b *Base) ensureFresh(ctx context.Context) error {
	if b.fetchedAt.IsZero() {
		return b.hydrate(ctx, b.inject)
	}
	if b.desc.Expiry(b.sess.Config(), b.sess.Now).StaleAt(b.fetchedAt) {
		b.sess.Logger().Debug("object expired", "identifier", b.identifier(), "fetched_at", b.fetchedAt)
		return b.refresh(ctx)
	}
	return nil
}

// refresh flushes pending changes and re-fetches. b.mu must be held.
func (b *Base) refresh(ctx context.Context) error {
	if len(b.modified) > 0 {
		b.sess.Logger().Info("flushing changes before refresh",
			"identifier", b.identifier(), "fields", len(b.modified))
		if err := b.flush(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", apis.ErrStaleDirty, b.identifier(), err)
		}
	}
	return b.hydrate(ctx, nil)
}

// hydrate replaces every field with fresh data. Data that covers every
// declared field (usually an inject) is used as is; anything else goes
// through the fetch hook. Nothing changes unless the data is complete.
// b.mu must be held.
func (b *Base) hydrate(ctx context.Context, inject apis.Fields) error {
	data, fromInject := inject, true
	if inject == nil || !b.desc.Covers(inject) || (b.id == 0 && inject[IDField] == nil) {
		f, ok := b.self.(Fetcher)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFetchable, b.identifier())
		}
		var err error
		data, err = f.FetchFields(ctx, b.ref(), inject)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", b.identifier(), err)
		}
		fromInject = false
	}

	if m := b.desc.missing(data); m != "" {
		return fmt.Errorf("%w: %s did not receive field %q", apis.ErrIncompleteFetch, b.identifier(), m)
	}
	learned := int64(0)
	if b.id == 0 {
		id, err := apis.Int64(data[IDField])
		if err != nil || id <= 0 {
			return fmt.Errorf("%w: %s did not receive a valid %q", apis.ErrIncompleteFetch, b.identifier(), IDField)
		}
		learned = id
	}

	if learned > 0 {
		b.id = learned
	}
	clear(b.fields)
	for _, f := range b.desc.Fields {
		b.fields[f] = data[f]
	}
	clear(b.modified)
	b.fetchedAt = b.sess.Now()

	name := b.EntityName()
	b.sess.Metrics().Fetch(name, fromInject)
	b.sess.Logger().Debug("object fetched",
		"kind", name, "identifier", b.identifier(), "inject", fromInject)

	owner := true
	if learned > 0 {
		owner = b.indexID()
	}
	if owner {
		b.indexName(b.desc.nameOf(data))
	}
	return nil
}

// indexID registers the object under its newly learned id and reports
// whether it owns the id. When another instance already owns it, the name
// this object was created with is moved over to that instance so later
// lookups converge on it.
func (b *Base) indexID() bool {
	reg := b.sess.Registry()
	canonical, err := reg.Index(b.typ, apis.IDKey(b.id), b.self)
	if err != nil {
		return false
	}
	if canonical == any(b.self) {
		return true
	}
	if b.name != "" {
		reg.Forget(b.typ, b.self)
		_, _ = reg.Index(b.typ, apis.NameKey(b.name), canonical)
	}
	return false
}

// indexName registers the object under the unique name found in its data.
// b.mu must be held.
func (b *Base) indexName(name string) {
	if name == "" {
		return
	}
	if b.name == "" {
		b.name = name
	}
	_, _ = b.sess.Registry().Index(b.typ, apis.NameKey(name), b.self)
}

// flush pushes modified fields. b.mu must be held.
func (b *Base) flush(ctx context.Context) error {
	if len(b.modified) == 0 {
		return nil
	}
	u, ok := b.self.(Updater)
	if !ok {
		return fmt.Errorf("%w: %s", apis.ErrNotUpdatable, b.identifier())
	}
	changed := make(apis.Fields, len(b.modified))
	for f := range b.modified {
		changed[f] = b.fields[f]
	}
	if err := u.UpdateFields(ctx, b.ref(), changed); err != nil {
		return fmt.Errorf("updating %s: %w", b.identifier(), err)
	}
	clear(b.modified)

	b.sess.Metrics().Update(b.EntityName())
	b.sess.Logger().Debug("object flushed", "identifier", b.identifier(), "fields", len(changed))
	return nil
}

// absorb stores the data an object was looked up with and hydrates from
// it when it is complete and the object was never fetched.
func (b *Base) absorb(ctx context.Context, inject apis.Fields) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inject = maps.Clone(inject)
	b.indexName(b.desc.nameOf(inject))
	if !b.fetchedAt.IsZero() || !b.desc.Covers(inject) {
		return nil
	}
	return b.hydrate(ctx, b.inject)
}
