package homework

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	opFetch = "fetch"

	maxResponseBodySize   = 1 << 20 // 1MB
	defaultRequestTimeout = 30 * time.Second
)

// Client fetches homework statuses from the API.
//
// Timeouts are applied per request via the context rather than on the
// http.Client, so a caller-supplied client keeps its own settings.
type Client struct {
	endpoint   string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds a single request. Zero keeps the default (30s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient returns a client for endpoint authenticating with token.
func NewClient(endpoint, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("endpoint must be an absolute URL")
	}
	c := &Client{
		endpoint: u.String(),
		token:    token,
		timeout:  defaultRequestTimeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch requests the statuses changed since fromDate (unix seconds) and
// returns the JSON-decoded body. Numbers decode as json.Number.
func (c *Client) Fetch(ctx context.Context, fromDate int64) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, _ := url.Parse(c.endpoint)
	q := u.Query()
	q.Set("from_date", strconv.FormatInt(fromDate, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: opFetch, Msg: "build request", Err: err}
	}
	req.Header.Set("Authorization", "OAuth "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: opFetch, Msg: "request failed", Err: redact(err, c.token)}
	}
	defer resp.Body.Close()

	// The status decides the error kind; a non-200 body is never read.
	if resp.StatusCode != http.StatusOK {
		e := newError(KindRemoteStatus, opFetch, "endpoint returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		e.StatusCode = resp.StatusCode
		return nil, e
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: opFetch, Msg: "read body", Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &Error{Kind: KindShape, Op: opFetch, Msg: "body is not valid JSON", Err: err}
	}
	return v, nil
}

// redact keeps the API token out of error strings (url.Error embeds the URL,
// and some proxies echo headers).
func redact(err error, token string) error {
	if err == nil || token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "***"))
}
