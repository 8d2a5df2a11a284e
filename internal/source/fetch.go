// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"

	"github.com/pdiddy/secpapers/internal/httputil"
	"github.com/pdiddy/secpapers/pkg/types"
)

// ReadmeURL is the raw upstream README. Tests point it at an httptest server.
var ReadmeURL = "https://raw.githubusercontent.com/prncoprs/best-papers-in-computer-security/main/README.md"

// Fetcher downloads the upstream README.
type Fetcher struct {
	client *httputil.Client
	url    string
}

// NewFetcher creates a Fetcher from the source configuration. The GitHub
// token, when present, is sent as a bearer token.
func NewFetcher(cfg types.SourceConfig) *Fetcher {
	url := cfg.ReadmeURL
	if url == "" {
		url = ReadmeURL
	}
	return &Fetcher{
		client: httputil.New(httputil.Options{
			HTTPConfig: cfg.HTTPConfig,
			Token:      cfg.GitHubToken,
		}),
		url: url,
	}
}

// URL is the address Fetch reads from.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch returns the README markdown.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	body, err := f.client.Get(ctx, f.url, "text/plain")
	if err != nil {
		return "", fmt.Errorf("fetching README: %w", err)
	}
	return string(body), nil
}
