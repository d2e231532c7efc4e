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

package composite_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/composite"
)

func TestPackUnpack_Scenario(t *testing.T) {
	c := composite.MustNew(1000)

	key, err := c.Pack(3, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3007), key)

	parts, err := c.Unpack(3007)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 7}, parts)
}

func TestPack_DefaultBase(t *testing.T) {
	c := composite.MustNew(1_000_000_000)
	key, err := c.Pack(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000002), key)
}

func TestUnpack_Zero(t *testing.T) {
	parts, err := composite.MustNew(1000).Unpack(0)
	require.NoError(t, err)
	assert.Empty(t, parts)
	assert.NotNil(t, parts)
}

func TestPack_Errors(t *testing.T) {
	c := composite.MustNew(1000)

	tests := []struct {
		name  string
		input []int64
	}{
		{"empty", nil},
		{"negative", []int64{3, -1}},
		{"zero", []int64{0, 7}},
		{"at max", []int64{3, 1000}},
		{"above max", []int64{1001}},
		{"overflow", []int64{999, 999, 999, 999, 999, 999, 999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Pack(tt.input...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apis.ErrInvalidKey), "got %v", err)
		})
	}
}

func TestUnpack_Negative(t *testing.T) {
	_, err := composite.MustNew(1000).Unpack(-5)
	assert.ErrorIs(t, err, apis.ErrInvalidKey)
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := composite.New(1)
	assert.ErrorIs(t, err, apis.ErrInvalidKey)

	var zero composite.Codec
	_, err = zero.Pack(1)
	assert.ErrorIs(t, err, apis.ErrInvalidKey)
}

// TestRoundTrip checks unpack(pack(xs)) == xs and pack(unpack(n)) == n for
// random tuples below the base.
func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, max := range []int64{2, 10, 1000, 1_000_000_000} {
		c := composite.MustNew(max)
		width := int(math.Floor(63 / math.Log2(float64(max))))
		for i := 0; i < 500; i++ {
			n := 1 + rng.Intn(width)
			xs := make([]int64, n)
			for j := range xs {
				xs[j] = 1 + rng.Int63n(max-1)
			}

			key, err := c.Pack(xs...)
			if err != nil {
				// Only overflow may reject a tuple of in-range components.
				require.ErrorIs(t, err, apis.ErrInvalidKey)
				continue
			}
			got, err := c.Unpack(key)
			require.NoError(t, err)
			require.Equal(t, xs, got, "max=%d", max)

			back, err := c.Pack(got...)
			require.NoError(t, err)
			require.Equal(t, key, back)
		}
	}
}
