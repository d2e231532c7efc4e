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
	"encoding/json"
	"reflect"

	"dirpx.dev/robj/apis"
)

// sameValue reports whether a and b hold the same field value. Numbers are
// compared by value whatever their Go type, since decoded responses carry
// json.Number while callers pass native integers.
func sameValue(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	if !isNumber(a) || !isNumber(b) {
		return false
	}
	if x, err := apis.Int64(a); err == nil {
		y, err := apis.Int64(b)
		return err == nil && x == y
	}
	x, ok := float(a)
	if !ok {
		return false
	}
	y, ok := float(b)
	return ok && x == y
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint32, float64, json.Number:
		return true
	}
	return false
}

func float(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	i, err := apis.Int64(v)
	return float64(i), err == nil
}
