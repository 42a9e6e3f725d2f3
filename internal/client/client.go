// Package client implements the target client: a thin HTTP layer that
// issues raw and GraphQL requests against the endpoint under test and
// reports status, headers, body, and elapsed time for each call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sharederrors "github.com/gqlaudit/gqlaudit/internal/shared/errors"
)

const (
	defaultUserAgent   = "gqlaudit/1.0"
	defaultGraphQLPath = "/graphql"

	// maxBodyBytes caps how much of a response body is retained.
	maxBodyBytes = 1 << 20
)

// Response captures one exchange with the target.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
	Elapsed time.Duration
}

// Client sends requests to a single target endpoint. Session-level
// defaults (content type, user agent, bearer token) are applied to every
// request unless overridden per call.
type Client struct {
	baseURL     *url.URL
	graphqlPath string
	token       string
	httpc       *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer credential attached to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = timeout }
}

// WithGraphQLPath overrides the GraphQL endpoint path (default /graphql).
func WithGraphQLPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.graphqlPath = path
		}
	}
}

// New builds a client for the given base target. An unparseable target is
// the one fatal configuration error of a scan.
func New(target string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(target), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", sharederrors.ErrInvalidTarget, target)
	}

	c := &Client{
		baseURL:     parsed,
		graphqlPath: defaultGraphQLPath,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized target address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// GraphQLURL returns the resolved GraphQL endpoint address.
func (c *Client) GraphQLURL() string {
	return c.baseURL.JoinPath(c.graphqlPath).String()
}

// Do sends a single request. Header overrides replace session defaults;
// an override with an empty value removes the header entirely, which is
// how probes drop the bearer token.
func (c *Client) Do(ctx context.Context, method, path string, headers map[string]string, body []byte) (*Response, error) {
	target := c.baseURL.JoinPath(path).String()
	if strings.Contains(path, "?") {
		// JoinPath escapes query strings, so splice them back manually.
		parts := strings.SplitN(path, "?", 2)
		target = c.baseURL.JoinPath(parts[0]).String() + "?" + parts[1]
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for name, value := range headers {
		if value == "" {
			req.Header.Del(name)
			continue
		}
		req.Header.Set(name, value)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		// A truncated body is still usable evidence.
		data = data[:len(data):len(data)]
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
		Elapsed: elapsed,
	}, nil
}

// GraphQL posts a query document to the GraphQL endpoint.
func (c *Client) GraphQL(ctx context.Context, query string, variables map[string]any, headers map[string]string) (*Response, error) {
	payload := map[string]any{
		"query": query,
	}
	if variables == nil {
		variables = map[string]any{}
	}
	payload["variables"] = variables

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql payload: %w", err)
	}
	return c.Do(ctx, http.MethodPost, c.graphqlPath, headers, body)
}

// OK reports whether the response carries an HTTP success status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// BodyContains performs a case-insensitive substring search over the body.
func (r *Response) BodyContains(needle string) bool {
	return strings.Contains(strings.ToLower(string(r.Body)), strings.ToLower(needle))
}
