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

package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"dirpx.dev/robj/apis"
)

// handler answers TestCase.get with {"id": n, "summary": "case n"} and
// everything else with a method-not-found error. Batches come back reversed.
func handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		if bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
			var reqs []Request
			require.NoError(t, json.Unmarshal(body, &reqs))
			out := make([]Response, 0, len(reqs))
			for _, req := range reqs {
				out = append(out, answer(req))
			}
			slices.Reverse(out)
			require.NoError(t, json.NewEncoder(w).Encode(out))
			return
		}
		var req Request
		require.NoError(t, json.Unmarshal(body, &req))
		require.NoError(t, json.NewEncoder(w).Encode(answer(req)))
	}
}

func answer(req Request) Response {
	res := Response{JSONRPC: version, ID: req.ID}
	if req.Method != "TestCase.get" {
		res.Error = &Error{Code: -32601, Message: "Method not found"}
		return res
	}
	id := req.Params[0].(float64)
	res.Result, _ = json.Marshal(map[string]any{"id": id, "summary": "case"})
	return res
}

func TestClient_Call(t *testing.T) {
	srv := httptest.NewServer(handler(t))
	defer srv.Close()
	c := New(srv.URL, WithHTTPClient(srv.Client()))

	v, err := c.Call(context.Background(), "TestCase.get", 42)
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok, "result is %T", v)
	id, err := apis.Int64(m["id"])
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "case", m["summary"])
}

func TestClient_CallRemoteError(t *testing.T) {
	srv := httptest.NewServer(handler(t))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.Call(context.Background(), "TestCase.nope")
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestClient_CallBatchMatchesByID(t *testing.T) {
	srv := httptest.NewServer(handler(t))
	defer srv.Close()
	c := New(srv.URL)

	res, err := c.CallBatch(context.Background(), []apis.Call{
		{Method: "TestCase.get", Params: []any{1}},
		{Method: "TestCase.nope"},
		{Method: "TestCase.get", Params: []any{3}},
	})
	require.NoError(t, err)
	require.Len(t, res, 3)

	for i, want := range []int64{1, 0, 3} {
		if want == 0 {
			var rpcErr *Error
			assert.ErrorAs(t, res[i].Err, &rpcErr)
			continue
		}
		require.NoError(t, res[i].Err)
		id, err := apis.Int64(res[i].Value.(map[string]any)["id"])
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
}

func TestClient_CallBatchMissingResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).CallBatch(context.Background(), []apis.Call{{Method: "TestCase.get", Params: []any{1}}})
	require.NoError(t, err)
	assert.ErrorIs(t, res[0].Err, ErrMissingResponse)
}

func TestClient_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	c := New(srv.URL)

	_, err := c.Call(context.Background(), "TestCase.get", 1)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))

	_, err = c.CallBatch(context.Background(), []apis.Call{{Method: "TestCase.get"}})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_Headers(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Cookie")
		var req Request
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(Response{JSONRPC: version, ID: req.ID})
	}))
	defer srv.Close()

	c := New(srv.URL, WithHeader("Cookie", "sessionid=abc"))
	v, err := c.Call(context.Background(), "Auth.check")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "sessionid=abc", got)
}

func TestClient_EmptyBatch(t *testing.T) {
	res, err := New("http://127.0.0.1:0").CallBatch(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(handler(t))
	defer srv.Close()
	c := New(srv.URL, WithRateLimit(rate.Every(time.Hour), 1))

	_, err := c.Call(context.Background(), "TestCase.get", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Call(ctx, "TestCase.get", 2)
	assert.Error(t, err, "second call must wait for a token past the deadline")
}
