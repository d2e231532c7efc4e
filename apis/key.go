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

package apis

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Key is the identity of a remote object within one concrete type.
// Exactly one of ID and Name is meaningful: a non-empty Name marks a
// name key, otherwise the key is the numeric (or packed composite) ID.
type Key struct {
	ID   int64
	Name string
}

// IDKey returns the key for a numeric id.
func IDKey(id int64) Key { return Key{ID: id} }

// NameKey returns the key for a name.
func NameKey(name string) Key { return Key{Name: name} }

// IsName reports whether k is a name key.
func (k Key) IsName() bool { return k.Name != "" }

// Valid reports whether k can index an object.
func (k Key) Valid() bool { return k.IsName() || k.ID > 0 }

// String renders the key the way log lines refer to objects.
func (k Key) String() string {
	if k.IsName() {
		return strconv.Quote(k.Name)
	}
	return "ID#" + strconv.FormatInt(k.ID, 10)
}

// Fields is a bundle of field values keyed by field name, as returned by
// the server for a single record.
type Fields map[string]any

// Hint tells a lookup which object is wanted: an ID, a Name or an Inject.
type Hint interface {
	hint()
}

// ID asks for an object by its numeric (or packed composite) id.
type ID int64

// Name asks for an object by its unique name.
type Name string

// Inject hands over a record already fetched by a listing or search call.
// It must carry at least an "id" field.
type Inject Fields

func (ID) hint()     {}
func (Name) hint()   {}
func (Inject) hint() {}

// HintKey returns the registry key addressed by h.
func HintKey(h Hint) (Key, error) {
	switch v := h.(type) {
	case ID:
		if v <= 0 {
			return Key{}, fmt.Errorf("%w: id %d is not positive", ErrInvalidKey, int64(v))
		}
		return IDKey(int64(v)), nil
	case Name:
		if v == "" {
			return Key{}, fmt.Errorf("%w: empty name", ErrInvalidKey)
		}
		return NameKey(string(v)), nil
	case Inject:
		raw, ok := v["id"]
		if !ok {
			return Key{}, fmt.Errorf("%w: inject without id", ErrInvalidKey)
		}
		id, err := Int64(raw)
		if err != nil || id <= 0 {
			return Key{}, fmt.Errorf("%w: inject id %v", ErrInvalidKey, raw)
		}
		return IDKey(id), nil
	case nil:
		return Key{}, fmt.Errorf("%w: nil hint", ErrInvalidKey)
	default:
		return Key{}, fmt.Errorf("%w: unsupported hint %T", ErrInvalidKey, h)
	}
}

// Int64 converts a numeric field value to int64. Decoders hand out ids as
// float64 or json.Number, so integral floats are accepted.
func Int64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}
