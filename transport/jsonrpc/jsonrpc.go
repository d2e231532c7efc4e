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

// Package jsonrpc is an apis.Transport speaking JSON-RPC 2.0 over HTTP.
//
// A single call is posted as one request object. A batch is posted as an
// array of request objects and the responses, which servers may return in
// any order, are matched back to the calls by id:
//
//	--> [{"jsonrpc": "2.0", "method": "TestCase.get", "params": [42], "id": "0b9c..."},
//	     {"jsonrpc": "2.0", "method": "TestCase.get", "params": [43], "id": "51ad..."}]
//	<-- [{"jsonrpc": "2.0", "result": {...}, "id": "51ad..."},
//	     {"jsonrpc": "2.0", "error": {"code": -32602, "message": "no such case"}, "id": "0b9c..."}]
//
// Results are decoded into plain Go values with numbers kept as
// json.Number, so ids survive without float rounding.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"dirpx.dev/robj/apis"
)

const version = "2.0"

var (
	// ErrMissingResponse is set on batched calls the server did not answer.
	ErrMissingResponse = errors.New("jsonrpc: no response for call")
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("jsonrpc: unexpected HTTP status")
)

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      string `json:"id"`
}

// Response is a JSON-RPC 2.0 response object.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      string          `json:"id"`
}

// Error is the error member of a response.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: error %d: %s", e.Code, e.Message)
}

// Client posts JSON-RPC requests to one endpoint.
type Client struct {
	url    string
	hc     *http.Client
	header http.Header
	logger *slog.Logger
	// limiter throttles requests when set. A batch counts as one request.
	limiter *rate.Limiter
}

var _ apis.Transport = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Nil keeps http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithHeader adds a header sent with every request, e.g. a session cookie.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithRateLimit caps the request rate sent to the server.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a Client posting to url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		hc:     http.DefaultClient,
		header: make(http.Header),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call implements apis.Transport.
func (c *Client) Call(ctx context.Context, method string, params ...any) (any, error) {
	req := newRequest(method, params)
	var res Response
	if err := c.post(ctx, req, &res); err != nil {
		return nil, err
	}
	if res.ID != req.ID {
		return nil, fmt.Errorf("jsonrpc: response id %q does not match request %q", res.ID, req.ID)
	}
	return decodeResult(res)
}

// CallBatch implements apis.Transport.
func (c *Client) CallBatch(ctx context.Context, calls []apis.Call) ([]apis.Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	reqs := make([]Request, len(calls))
	for i, call := range calls {
		reqs[i] = newRequest(call.Method, call.Params)
	}

	var res []Response
	if err := c.post(ctx, reqs, &res); err != nil {
		return nil, err
	}
	byID := make(map[string]Response, len(res))
	for _, r := range res {
		byID[r.ID] = r
	}

	out := make([]apis.Result, len(reqs))
	for i, req := range reqs {
		r, ok := byID[req.ID]
		if !ok {
			out[i] = apis.Result{Err: fmt.Errorf("%w %s", ErrMissingResponse, req.Method)}
			continue
		}
		v, err := decodeResult(r)
		out[i] = apis.Result{Value: v, Err: err}
	}
	c.logger.Debug("batch sent", "calls", len(reqs), "responses", len(res))
	return out, nil
}

func newRequest(method string, params []any) Request {
	if params == nil {
		params = []any{}
	}
	return Request{JSONRPC: version, Method: method, Params: params, ID: uuid.NewString()}
}

func (c *Client) post(ctx context.Context, payload, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("jsonrpc: rate limit: %w", err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("jsonrpc: encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("jsonrpc: creating request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status)
	}
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("jsonrpc: decoding response: %w", err)
	}
	return nil
}

func decodeResult(r Response) (any, error) {
	if r.Error != nil {
		return nil, r.Error
	}
	if len(r.Result) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(r.Result))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("jsonrpc: decoding result: %w", err)
	}
	return v, nil
}
