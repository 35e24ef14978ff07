// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gestoapi is the HTTP client for the gesto API
package gestoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"

	"github.com/walteh/gesto/pkg/remote"
)

// RequestIDHeader carries a fresh id on every call
const RequestIDHeader = "X-Request-Id"

const maxErrorBody = 512

var _ remote.API = (*Client)(nil)

// ⚙️ Options configures a Client
type Options struct {
	// BaseURL is resolved on every call, so a changed server url applies at once
	BaseURL func(ctx context.Context) string
	// HTTPClient is the base client, http.DefaultClient when nil
	HTTPClient *http.Client
	// Timeout bounds each call, zero means no bound
	Timeout time.Duration
	// Credentials enable /login before catalog and movement calls
	Credentials *remote.Credentials
}

// 🌐 Client implements remote.API over HTTP
type Client struct {
	opts Options
	base *http.Client

	mu     sync.Mutex
	authed *http.Client
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == nil {
		return nil, errors.New("base url resolver is required")
	}
	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	return &Client{opts: opts, base: base}, nil
}

// StaticBaseURL returns a resolver for a fixed url
func StaticBaseURL(u string) func(context.Context) string {
	return func(context.Context) string { return u }
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	auth   bool
}

func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	data, err := c.send(ctx, cl)
	if cl.auth && c.opts.Credentials != nil && remote.IsStatus(err, http.StatusUnauthorized) {
		// token expired, log in again once
		c.mu.Lock()
		c.authed = nil
		c.mu.Unlock()
		data, err = c.send(ctx, cl)
	}
	return data, err
}

func (c *Client) send(ctx context.Context, cl call) ([]byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.opts.BaseURL(ctx)), "/")
	if base == "" {
		return nil, errors.New("server url is not configured")
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	target := base + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		buf, err := json.Marshal(cl.body)
		if err != nil {
			return nil, errors.Errorf("encoding %s body: %w", cl.path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, errors.Errorf("building request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.base
	if cl.auth && c.opts.Credentials != nil {
		hc, err = c.authClient(ctx)
		if err != nil {
			return nil, err
		}
	}

	logger := zerolog.Ctx(ctx).With().Str("method", cl.method).Str("path", cl.path).Str("request_id", reqID).Logger()
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed")
		return nil, errors.Errorf("%s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Errorf("reading %s response: %w", cl.path, err)
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &remote.StatusError{Method: cl.method, Path: cl.path, Code: resp.StatusCode, Body: msg}
	}

	return data, nil
}

// authClient returns a client carrying the session token, logging in first
// when there is none
func (c *Client) authClient(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authed != nil {
		return c.authed, nil
	}

	resp, err := c.Login(ctx, *c.opts.Credentials)
	if err != nil {
		return nil, errors.Errorf("logging in: %w", err)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: resp.BearerToken(), TokenType: "Bearer"})
	c.authed = oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, c.base), src)
	return c.authed, nil
}

func decode[T any](path string, data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &remote.DecodeError{Path: path, Err: err}
	}
	return out, nil
}
