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

// Package composite packs ordered tuples of small positive ids into a
// single synthetic id and back.
//
// Some remote relations are addressed by a pair of keys (a plan and a
// case, a run and a case) while the identity registry indexes objects by
// one scalar key. Packing is base-Max positional:
//
//	Pack(3, 7)   == 3*Max + 7
//	Unpack(3007) == [3 7]     // Max = 1000
//
// Every component must lie in [1, Max). Zero components are rejected so
// that Pack and Unpack stay exact inverses (a leading zero would vanish).
package composite

import (
	"fmt"
	"math"

	"dirpx.dev/robj/apis"
)

// Codec packs and unpacks composite ids using a fixed base.
type Codec struct {
	max int64
}

// Ensure Codec implements apis.Codec.
var _ apis.Codec = Codec{}

// New returns a Codec with base max. The base must be at least 2.
func New(max int64) (Codec, error) {
	if max < 2 {
		return Codec{}, fmt.Errorf("%w: composite base %d is below 2", apis.ErrInvalidKey, max)
	}
	return Codec{max: max}, nil
}

// MustNew is like New but panics on an invalid base.
func MustNew(max int64) Codec {
	c, err := New(max)
	if err != nil {
		panic(err)
	}
	return c
}

// Max returns the base of c.
func (c Codec) Max() int64 {
	return c.max
}

// Pack folds components into a single key.
func (c Codec) Pack(components ...int64) (int64, error) {
	if c.max < 2 {
		return 0, fmt.Errorf("%w: uninitialized codec", apis.ErrInvalidKey)
	}
	if len(components) == 0 {
		return 0, fmt.Errorf("%w: no components to pack", apis.ErrInvalidKey)
	}
	var key int64
	for i, v := range components {
		if v <= 0 || v >= c.max {
			return 0, fmt.Errorf("%w: component %d (%d) outside [1, %d)", apis.ErrInvalidKey, i, v, c.max)
		}
		if key > (math.MaxInt64-v)/c.max {
			return 0, fmt.Errorf("%w: %v overflows a 64-bit key", apis.ErrInvalidKey, components)
		}
		key = key*c.max + v
	}
	return key, nil
}

// Unpack splits key into its components, in the order they were packed.
// Zero unpacks to an empty slice.
func (c Codec) Unpack(key int64) ([]int64, error) {
	if c.max < 2 {
		return nil, fmt.Errorf("%w: uninitialized codec", apis.ErrInvalidKey)
	}
	if key < 0 {
		return nil, fmt.Errorf("%w: negative composite id %d", apis.ErrInvalidKey, key)
	}
	var out []int64
	for key > 0 {
		out = append(out, key%c.max)
		key /= c.max
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if out == nil {
		out = []int64{}
	}
	return out, nil
}
