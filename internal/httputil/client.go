// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/secpapers/pkg/types"
)

// DefaultUserAgent identifies the tool to remote services.
const DefaultUserAgent = "secpapers/0.1 (+https://github.com/prncoprs/best-papers-in-computer-security)"

// DefaultTimeout is the per-request timeout when none is configured.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps response bodies; the README and DBLP pages are far smaller.
const maxBodySize = 32 << 20

// StatusError reports a response whose status is not 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Options configures a Client.
type Options struct {
	types.HTTPConfig

	// Token is sent as a bearer token when set.
	Token string

	// Interval is the minimum spacing between requests. Zero disables the limiter.
	Interval time.Duration

	// MaxRetries bounds 429 retries (0 uses the default).
	MaxRetries int

	// HTTPClient overrides the underlying client (tests use httptest clients).
	HTTPClient *http.Client
}

// Client issues sequential GET requests with a fixed User-Agent, optional
// bearer authentication, request spacing, and 429 backoff.
type Client struct {
	http       *http.Client
	userAgent  string
	token      string
	limiter    *rate.Limiter
	maxRetries int
}

// New creates a Client.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}

	return &Client{
		http:       hc,
		userAgent:  ua,
		token:      opts.Token,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
	}
}

// Get fetches url and returns the response body. The call first waits for
// the limiter, so consecutive calls are spaced by the configured interval.
// Any status other than 200 is returned as a *StatusError.
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", req.URL.Redacted(), err)
	}
	return body, nil
}
