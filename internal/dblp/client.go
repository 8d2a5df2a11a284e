// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dblp cross-checks dataset records against the DBLP computer
// science bibliography. Search responses are cached on disk, and requests
// that miss the cache are spaced by a fixed delay to respect the public API.
package dblp

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/secpapers/internal/httputil"
	"github.com/pdiddy/secpapers/pkg/types"
)

// APIBase is the DBLP publication search endpoint. Tests point it at an
// httptest server.
var APIBase = "https://dblp.org/search/publ/api"

// Defaults for VerifyConfig fields left unset.
const (
	DefaultRequestDelay    = time.Second
	DefaultMaxHits         = 10
	DefaultTitleThreshold  = 0.8
	DefaultAuthorThreshold = 0.5
)

// ResponseCache stores raw API responses by request URL.
type ResponseCache interface {
	Get(ctx context.Context, url string) ([]byte, bool, error)
	Put(ctx context.Context, url string, data []byte) error
}

// CacheStats counts how search requests were served.
type CacheStats struct {
	Hits    int `json:"hits"`
	Fetched int `json:"fetched"`
}

// Client searches DBLP by title.
type Client struct {
	http    *httputil.Client
	cache   ResponseCache
	base    string
	maxHits int
	stats   CacheStats
}

// NewClient creates a client. cache may be nil to disable caching.
func NewClient(cfg types.VerifyConfig, cache ResponseCache) *Client {
	delay := cfg.RequestDelay
	if delay == 0 {
		delay = DefaultRequestDelay
	}
	base := cfg.APIBase
	if base == "" {
		base = APIBase
	}
	maxHits := cfg.MaxHits
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	return &Client{
		http: httputil.New(httputil.Options{
			HTTPConfig: cfg.HTTPConfig,
			Interval:   delay,
		}),
		cache:   cache,
		base:    base,
		maxHits: maxHits,
	}
}

// Stats reports cache hits and fetched requests so far.
func (c *Client) Stats() CacheStats {
	return c.stats
}

// QueryURL is the fully qualified search URL for title. It is also the
// cache key.
func (c *Client) QueryURL(title string) string {
	q := url.Values{}
	q.Set("q", title)
	q.Set("format", "json")
	q.Set("h", strconv.Itoa(c.maxHits))
	return c.base + "?" + q.Encode()
}

// SearchTitle returns the publications DBLP finds for title, best match
// first as ranked by DBLP. A fresh cached response is used when available;
// otherwise the request waits its turn on the rate limiter, and a
// successfully decoded response is cached. Cache failures are logged and
// otherwise ignored.
func (c *Client) SearchTitle(ctx context.Context, title string) ([]Record, error) {
	log := zerolog.Ctx(ctx)
	u := c.QueryURL(title)

	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, u)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed")
		}
		if ok {
			if records, err := decodeSearch(data); err == nil {
				c.stats.Hits++
				return records, nil
			}
			log.Debug().Str("title", title).Msg("discarding undecodable cache entry")
		}
	}

	body, err := c.http.Get(ctx, u, "application/json")
	if err != nil {
		return nil, err
	}
	c.stats.Fetched++

	records, err := decodeSearch(body)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		if err := c.cache.Put(ctx, u, body); err != nil {
			log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return records, nil
}
