// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/secpapers/pkg/types"
)

func samplePapers() []types.Paper {
	return []types.Paper{
		{Title: "Zeta", Venue: types.VenueNDSS, Year: 2023, Award: types.AwardDistinguished},
		{Title: "Beta", Venue: types.VenueSP, Year: 2025, Award: types.AwardBest,
			Authors: []types.Author{{Name: "Jane Doe", Institution: "MIT"}}},
		{Title: "Alpha", Venue: types.VenueSP, Year: 2025, Award: types.AwardBest},
		{Title: "Gamma", Venue: types.VenueCCS, Year: 2025, Award: types.AwardBest, URL: "https://example.org/g"},
	}
}

func TestSort(t *testing.T) {
	papers := samplePapers()
	Sort(papers)

	var titles []string
	for _, p := range papers {
		titles = append(titles, p.Title)
	}
	// 2025: ACM CCS < IEEE S&P; then 2023.
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta", "Zeta"}, titles)
}

func TestNew(t *testing.T) {
	ds := New(nil)
	assert.Equal(t, Description, ds.Description)
	assert.Equal(t, SourceURL, ds.Source)
	assert.Equal(t, []string{"IEEE S&P", "ACM CCS", "USENIX Security", "NDSS"}, ds.Venues)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "papers.json")
	require.NoError(t, Save(path, New(samplePapers())))

	ds, err := Load(path)
	require.NoError(t, err)
	require.Len(t, ds.Papers, 4)
	assert.Equal(t, "Gamma", ds.Papers[0].Title)
	assert.Equal(t, []types.Author{{Name: "Jane Doe", Institution: "MIT"}}, ds.Papers[2].Authors)
	assert.Equal(t, []types.Author{}, ds.Papers[0].Authors)
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "papers.json")
	require.NoError(t, Save(path, New([]types.Paper{{
		Title: "SLAP", Venue: types.VenueSP, Year: 2025, Award: types.AwardBest,
	}})))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `"venue": "IEEE S&P"`, "ampersands are not escaped")
	assert.Contains(t, out, "\n  \"papers\": [\n", "two-space indent")
	assert.Contains(t, out, `"authors": []`)
	assert.True(t, strings.HasSuffix(out, "}\n"))

	// Key order follows the record layout.
	order := []string{`"title"`, `"authors"`, `"venue"`, `"year"`, `"award"`, `"url"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(out, key)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, key)
		last = idx
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed after rename")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing dataset")
}

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "papers.json")

	unlock, err := Lock(path)
	require.NoError(t, err)

	_, err = Lock(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, unlock())

	unlock, err = Lock(path)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

func TestSubmissionPaper(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		want    types.Paper
		wantErr string
	}{
		{
			name: "award defaults by venue",
			sub: Submission{
				Title:   " Branch Privilege Injection ",
				Authors: "Sandro Rüegge, Johannes Wikner, Kaveh Razavi",
				Venue:   "usenix",
				Year:    2025,
			},
			want: types.Paper{
				Title: "Branch Privilege Injection",
				Authors: []types.Author{
					{Name: "Sandro Rüegge"}, {Name: "Johannes Wikner"}, {Name: "Kaveh Razavi"},
				},
				Venue: types.VenueUSENIX,
				Year:  2025,
				Award: types.AwardDistinguished,
			},
		},
		{
			name: "explicit award and url",
			sub: Submission{
				Title: "Empc", Authors: "Shuangjie Yao (HKUST), Dongdong She (HKUST)",
				Venue: "IEEE S&P", Year: 2025, Award: "Best Paper Honorable Mention", URL: "https://example.org/empc",
			},
			want: types.Paper{
				Title: "Empc",
				Authors: []types.Author{
					{Name: "Shuangjie Yao", Institution: "HKUST"},
					{Name: "Dongdong She", Institution: "HKUST"},
				},
				Venue: types.VenueSP, Year: 2025,
				Award: "Best Paper Honorable Mention",
				URL:   "https://example.org/empc",
			},
		},
		{name: "missing title", sub: Submission{Venue: "NDSS", Year: 2025}, wantErr: "missing title"},
		{name: "unknown venue", sub: Submission{Title: "X", Venue: "Crypto", Year: 2025}, wantErr: "unknown venue"},
		{name: "missing year", sub: Submission{Title: "X", Venue: "NDSS"}, wantErr: "missing year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sub.Paper()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadSubmissions(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "2025.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`papers:
  - title: "My ZIP isn't your ZIP"
    authors: Yufan You, Jianjun Chen, Qi Wang, Haixin Duan
    venue: USENIX Security
    year: 2025
  - title: "Blindfold: Confidential Memory Management by Untrusted Operating System"
    authors: Caihua Li (Yale University), Seung-seob Lee (Yale University), Ling Zhong (Yale University)
    venue: NDSS
    year: 2025
`), 0o644))

	papers, err := LoadSubmissions(good)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, types.AwardDistinguished, papers[0].Award)
	assert.Len(t, papers[0].Authors, 4)
	assert.Equal(t, "Yale University", papers[1].Authors[2].Institution)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`papers:
  - title: ""
    venue: NDSS
    year: 2025
  - title: Valid
    venue: Eurocrypt
    year: 2025
`), 0o644))
	_, err = LoadSubmissions(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")
	assert.Contains(t, err.Error(), "entry 2")

	_, err = LoadSubmissions(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIngest(t *testing.T) {
	existing := []types.Paper{
		{Title: "My ZIP isn't your ZIP", Venue: types.VenueUSENIX, Year: 2025},
		{Title: "SafeSplit", Venue: types.VenueNDSS, Year: 2025, URL: "https://example.org/safesplit"},
	}
	incoming := []types.Paper{
		{Title: "My ZIP Isn't Your ZIP!", Venue: types.VenueUSENIX, Year: 2025, URL: "https://example.org/zip"},
		{Title: "safesplit", Venue: types.VenueNDSS, Year: 2025, URL: "https://example.org/other"},
		{Title: "ReDAN", Venue: types.VenueNDSS, Year: 2025},
		{Title: "ReDAN.", Venue: types.VenueNDSS, Year: 2025},
	}

	out, summary := Ingest(existing, incoming)
	assert.Equal(t, IngestSummary{Added: 1, Upgraded: 1, Skipped: 2, Total: 3}, summary)
	assert.True(t, summary.Changed())
	require.Len(t, out, 3)
	assert.Equal(t, "https://example.org/zip", out[0].URL)
	assert.Equal(t, "https://example.org/safesplit", out[1].URL)
	assert.Equal(t, "ReDAN", out[2].Title)

	assert.Empty(t, existing[0].URL, "existing slice is not modified")
}

func TestIngestNothingNew(t *testing.T) {
	existing := samplePapers()
	_, summary := Ingest(existing, existing)
	assert.False(t, summary.Changed())
	assert.Equal(t, len(existing), summary.Skipped)
}
