// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/secpapers/pkg/types"
)

const sampleReadme = `# Best Papers in Computer Security

- [IEEE S&P](#ieee-sp)
- [USENIX Security](#usenix-security)

<a id="ieee-sp"></a>
## IEEE S&P (Oakland)

| Year | Paper |
|:-----|:------|
| 2025 | [**Breaking the Barrier: Post-Barrier Spectre Attacks**](https://example.org/bpi.pdf)<br>Johannes Wikner (ETH Zurich), Kaveh Razavi (ETH Zurich)<br>**SoK: Unsolved Problems**<br>Alice Smith, Bob Jones |
| 2024 | [Tabula Rasa](#2024)<br/>Jane Doe and John Roe (Some Lab) |

<a id="acm-ccs"></a>

## ACM CCS

| Year | Paper |
| :--- | :--- |
| 2023 | **Lost in Translation**<br>[**Next Title**](https://example.org/next) |
| TBD | **Ignored** |

## NDSS
| Year | Papers |
|---|---|
| 2022 | **Fallback Heading Paper**<br>Jane Doe (MIT) |

## Contributing

| 2020 | **Should not be parsed** |
`

func TestParseReadme(t *testing.T) {
	papers, counts := ParseReadme(sampleReadme)

	assert.Equal(t, []VenueCount{
		{Venue: types.VenueSP, Found: true, Papers: 3},
		{Venue: types.VenueCCS, Found: true, Papers: 2},
		{Venue: types.VenueUSENIX, Found: false},
		{Venue: types.VenueNDSS, Found: true, Papers: 1},
	}, counts)

	require.Len(t, papers, 6)
	assert.Equal(t, types.Paper{
		Title: "Breaking the Barrier: Post-Barrier Spectre Attacks",
		Authors: []types.Author{
			{Name: "Johannes Wikner", Institution: "ETH Zurich"},
			{Name: "Kaveh Razavi", Institution: "ETH Zurich"},
		},
		Venue: types.VenueSP,
		Year:  2025,
		Award: types.AwardBest,
		URL:   "https://example.org/bpi.pdf",
	}, papers[0])

	assert.Equal(t, "SoK: Unsolved Problems", papers[1].Title)
	assert.Empty(t, papers[1].URL)
	assert.Equal(t, []types.Author{{Name: "Alice Smith"}, {Name: "Bob Jones"}}, papers[1].Authors)

	assert.Equal(t, "Tabula Rasa", papers[2].Title)
	assert.Equal(t, 2024, papers[2].Year)
	assert.Empty(t, papers[2].URL, "fragment links carry no url")
	assert.Equal(t, []types.Author{
		{Name: "Jane Doe", Institution: "Some Lab"},
		{Name: "John Roe", Institution: "Some Lab"},
	}, papers[2].Authors)

	assert.Equal(t, "Lost in Translation", papers[3].Title)
	assert.Empty(t, papers[3].Authors, "a following entry is not an author line")
	assert.Equal(t, "Next Title", papers[4].Title)
	assert.Equal(t, "https://example.org/next", papers[4].URL)
	assert.Equal(t, types.VenueCCS, papers[4].Venue)

	assert.Equal(t, types.Paper{
		Title:   "Fallback Heading Paper",
		Authors: []types.Author{{Name: "Jane Doe", Institution: "MIT"}},
		Venue:   types.VenueNDSS,
		Year:    2022,
		Award:   types.AwardDistinguished,
	}, papers[5])
}

func TestParseReadmeEmpty(t *testing.T) {
	papers, counts := ParseReadme("")
	assert.Empty(t, papers)
	require.Len(t, counts, len(types.Venues))
	for _, c := range counts {
		assert.False(t, c.Found)
	}
}

func TestParseCell(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		titles []string
		urls   []string
	}{
		{
			name:   "bold link",
			cell:   "[**A**](https://a.org)",
			titles: []string{"A"},
			urls:   []string{"https://a.org"},
		},
		{
			name:   "plain link strips stray bold markers",
			cell:   "[*B*](https://b.org)<br>Jane Doe (MIT)",
			titles: []string{"B"},
			urls:   []string{"https://b.org"},
		},
		{
			name:   "bold only",
			cell:   "**C**<BR />Jane Doe",
			titles: []string{"C"},
			urls:   []string{""},
		},
		{
			name:   "consecutive titles",
			cell:   "**D**<br>**E**<br>[F](https://f.org)",
			titles: []string{"D", "E", "F"},
			urls:   []string{"", "", "https://f.org"},
		},
		{
			name:   "stray text is skipped",
			cell:   "TBA<br><br>**G**",
			titles: []string{"G"},
			urls:   []string{""},
		},
		{name: "empty", cell: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCell(tt.cell, 2025, types.VenueUSENIX)
			var titles, urls []string
			for _, p := range got {
				titles = append(titles, p.Title)
				urls = append(urls, p.URL)
				assert.Equal(t, types.AwardDistinguished, p.Award)
				assert.Equal(t, 2025, p.Year)
			}
			assert.Equal(t, tt.titles, titles)
			assert.Equal(t, tt.urls, urls)
		})
	}
}

func TestFetcher(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(sampleReadme))
	}))
	defer ts.Close()

	f := NewFetcher(types.SourceConfig{ReadmeURL: ts.URL, GitHubToken: "ghp_test"})
	assert.Equal(t, ts.URL, f.URL())

	content, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleReadme, content)
	assert.Equal(t, "Bearer ghp_test", auth)
}

func TestFetcherDefaultURL(t *testing.T) {
	old := ReadmeURL
	ReadmeURL = "http://127.0.0.1:1/README.md"
	defer func() { ReadmeURL = old }()

	f := NewFetcher(types.SourceConfig{})
	assert.Equal(t, "http://127.0.0.1:1/README.md", f.URL())
}

func TestFetcherError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := NewFetcher(types.SourceConfig{ReadmeURL: ts.URL}).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching README")
}
