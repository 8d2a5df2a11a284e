// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/secpapers/internal/cache"
	"github.com/pdiddy/secpapers/pkg/types"
)

const bpiResponse = `{"result":{
  "query":"Branch Privilege Injection*",
  "status":{"@code":"200","text":"OK"},
  "hits":{"@total":"2","@sent":"2","hit":[
    {"@score":"7","info":{
      "authors":{"author":[
        {"@pid":"1","text":"Sandro Rüegge"},
        {"@pid":"2","text":"Johannes Wikner 0001"},
        {"@pid":"3","text":"Kaveh Razavi"}]},
      "title":"Branch Privilege Injection: Compromising Spectre v2 Hardware Mitigations by Exploiting Branch Predictor Race Conditions.",
      "venue":"USENIX Security Symposium",
      "year":"2025",
      "type":"Conference and Workshop Papers",
      "key":"conf/uss/RueeggeWR25",
      "ee":["https://www.usenix.org/conference/usenixsecurity25/presentation/ruegge","https://example.org/bpi.pdf"],
      "url":"https://dblp.org/rec/conf/uss/RueeggeWR25"}},
    {"@score":"3","info":{
      "authors":{"author":{"@pid":"9","text":"Someone Else"}},
      "title":"Branch Privilege Injection.",
      "venue":["CoRR","arXiv"],
      "year":"2025",
      "key":"journals/corr/abs-2505-00000",
      "ee":"https://arxiv.org/abs/2505.00000",
      "url":"https://dblp.org/rec/journals/corr/abs-2505-00000"}}
  ]}}}`

const emptyResponse = `{"result":{"status":{"@code":"200","text":"OK"},"hits":{"@total":"0","@sent":"0"}}}`

func TestDecodeSearch(t *testing.T) {
	records, err := decodeSearch([]byte(bpiResponse))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"Sandro Rüegge", "Johannes Wikner 0001", "Kaveh Razavi"}, records[0].Authors)
	assert.Equal(t, 2025, records[0].Year)
	assert.Equal(t, []string{"USENIX Security Symposium"}, records[0].Venues)
	assert.Len(t, records[0].EE, 2)

	assert.Equal(t, []string{"Someone Else"}, records[1].Authors)
	assert.Equal(t, []string{"CoRR", "arXiv"}, records[1].Venues)
	assert.Equal(t, []string{"https://arxiv.org/abs/2505.00000"}, records[1].EE)
}

func TestDecodeSearchEmptyAndErrors(t *testing.T) {
	records, err := decodeSearch([]byte(emptyResponse))
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = decodeSearch([]byte(`{"result":{"status":{"@code":"500","text":"Internal"}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = decodeSearch([]byte(`<html>`))
	require.Error(t, err)
}

func TestDecodeSearchBareAuthorString(t *testing.T) {
	body := `{"result":{"hits":{"hit":{"info":{"authors":{"author":"Jane Doe"},"title":"T","year":"2024"}}}}}`
	records, err := decodeSearch([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Jane Doe"}, records[0].Authors)
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Johannes Wikner 0001", "johannes wikner"},
		{"Sandro Rüegge", "sandro ruegge"},
		{"Roland H. C. Yap", "roland h c yap"},
		{"Ahmad-Reza  Sadeghi", "ahmad reza sadeghi"},
		{"  GONÇALO PESTANA ", "goncalo pestana"},
		{"Wei Wang 12", "wei wang"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.input), "NormalizeName(%q)", tt.input)
	}
}

func TestAuthorOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"A B", "C D"}, []string{"C D", "A B"}, 1},
		{"homonym suffix and accents", []string{"Sandro Rüegge", "Johannes Wikner"}, []string{"Sandro Ruegge", "Johannes Wikner 0001", "Kaveh Razavi"}, 2.0 / 3.0},
		{"disjoint", []string{"A B"}, []string{"C D"}, 0},
		{"empty", nil, []string{"C D"}, 0},
		{"duplicates collapse", []string{"A B", "a b"}, []string{"A B"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AuthorOverlap(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRecordVenue(t *testing.T) {
	tests := []struct {
		rec  Record
		want types.Venue
		ok   bool
	}{
		{Record{Key: "conf/sp/WiknerR25"}, types.VenueSP, true},
		{Record{Key: "conf/ccs/Foo24"}, types.VenueCCS, true},
		{Record{Key: "conf/uss/Bar23"}, types.VenueUSENIX, true},
		{Record{Key: "conf/ndss/Baz22"}, types.VenueNDSS, true},
		{Record{Venues: []string{"USENIX Security"}}, types.VenueUSENIX, true},
		{Record{Venues: []string{"SP"}}, types.VenueSP, true},
		{Record{Key: "journals/corr/abs-1", Venues: []string{"CoRR"}}, "", false},
		{Record{Key: "conf/eurosp/X", Venues: []string{"EuroS&P"}}, "", false},
	}
	for _, tt := range tests {
		got, ok := RecordVenue(tt.rec)
		assert.Equal(t, tt.ok, ok, "%+v", tt.rec)
		assert.Equal(t, tt.want, got, "%+v", tt.rec)
	}
}

// --- Client ---

func newTestServer(t *testing.T, body string, calls *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClientQueryURL(t *testing.T) {
	c := NewClient(types.VerifyConfig{APIBase: "https://dblp.example/api", MaxHits: 5}, nil)
	u, err := url.Parse(c.QueryURL("type++: Prohibiting Type Confusion"))
	require.NoError(t, err)
	assert.Equal(t, "dblp.example", u.Host)
	assert.Equal(t, "type++: Prohibiting Type Confusion", u.Query().Get("q"))
	assert.Equal(t, "json", u.Query().Get("format"))
	assert.Equal(t, "5", u.Query().Get("h"))
}

func TestClientUsesCache(t *testing.T) {
	var calls int32
	ts := newTestServer(t, bpiResponse, &calls)

	store, err := cache.Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	c := NewClient(types.VerifyConfig{APIBase: ts.URL, RequestDelay: time.Millisecond}, store)
	ctx := context.Background()

	first, err := c.SearchTitle(ctx, "Branch Privilege Injection")
	require.NoError(t, err)
	second, err := c.SearchTitle(ctx, "Branch Privilege Injection")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, CacheStats{Hits: 1, Fetched: 1}, c.Stats())

	_, ok, err := store.Get(ctx, c.QueryURL("Branch Privilege Injection"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestClientWithoutCache(t *testing.T) {
	var calls int32
	ts := newTestServer(t, emptyResponse, &calls)

	c := NewClient(types.VerifyConfig{APIBase: ts.URL, RequestDelay: time.Millisecond}, nil)
	for range 2 {
		records, err := c.SearchTitle(context.Background(), "Nothing")
		require.NoError(t, err)
		assert.Empty(t, records)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientDoesNotCacheFailures(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	store, err := cache.Open(t.TempDir(), time.Hour)
	require.NoError(t, err)
	defer store.Close()

	c := NewClient(types.VerifyConfig{APIBase: ts.URL, RequestDelay: time.Millisecond}, store)
	_, err = c.SearchTitle(context.Background(), "Anything")
	require.Error(t, err)

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, st.Entries)
}

// --- Verifier ---

type fakeSearcher struct {
	results map[string][]Record
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) SearchTitle(_ context.Context, title string) ([]Record, error) {
	f.calls = append(f.calls, title)
	if err := f.errs[title]; err != nil {
		return nil, err
	}
	return f.results[title], nil
}

func TestVerify(t *testing.T) {
	papers := []types.Paper{
		{Title: "Breaking the Barrier: Post-Barrier Spectre Attacks", Venue: types.VenueSP, Year: 2025,
			Authors: []types.Author{{Name: "Johannes Wikner"}, {Name: "Kaveh Razavi"}}},
		{Title: "Unknown Paper", Venue: types.VenueSP, Year: 2025},
		{Title: "Flaky", Venue: types.VenueNDSS, Year: 2025},
		{Title: "Wrong People", Venue: types.VenueCCS, Year: 2024,
			Authors: []types.Author{{Name: "Alice Smith"}, {Name: "Bob Jones"}}},
		{Title: "Off By A Year", Venue: types.VenueNDSS, Year: 2024, URL: "https://kept.example"},
	}
	search := &fakeSearcher{
		results: map[string][]Record{
			"Breaking the Barrier: Post-Barrier Spectre Attacks": {{
				Key: "conf/sp/WiknerR25", Title: "Breaking the Barrier: Post-Barrier Spectre Attacks.",
				Authors: []string{"Johannes Wikner 0001", "Kaveh Razavi"}, Year: 2025,
				EE: []string{"https://doi.org/10.1109/SP.2025.1"},
			}},
			"Unknown Paper": {{Key: "conf/x/1", Title: "Something Entirely Different", Year: 2025}},
			"Wrong People": {{
				Key: "conf/ccs/Other24", Title: "Wrong People.", Authors: []string{"Carol White", "Bob Jones", "Dan Brown"}, Year: 2024,
			}},
			"Off By A Year": {{
				Key: "journals/corr/abs-1", Venues: []string{"CoRR"}, Title: "Off by a year", Year: 2023,
				EE: []string{"https://arxiv.org/abs/1"},
			}},
		},
		errs: map[string]error{"Flaky": errors.New("connection reset")},
	}

	v := NewVerifier(search, Options{FixURLs: true})
	report, err := v.Verify(context.Background(), papers)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Checked)
	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 1, report.URLsFixed)
	assert.Equal(t, "https://doi.org/10.1109/SP.2025.1", papers[0].URL)
	assert.Equal(t, "https://kept.example", papers[4].URL)

	type key struct {
		index int
		kind  IssueKind
	}
	var got []key
	for _, is := range report.Issues {
		got = append(got, key{is.Index, is.Kind})
	}
	assert.Equal(t, []key{
		{1, IssueNotFound},
		{2, IssueAPIError},
		{3, IssueAuthorMismatch},
		{4, IssueYearMismatch},
		{4, IssueVenueMismatch},
	}, got)
	assert.True(t, report.HasIssues())
	assert.Equal(t, 1, report.Count(IssueVenueMismatch))
	assert.Contains(t, report.Issues[1].Detail, "connection reset")
}

func TestVerifyFilters(t *testing.T) {
	papers := []types.Paper{
		{Title: "A", Venue: types.VenueSP, Year: 2025},
		{Title: "B", Venue: types.VenueNDSS, Year: 2025},
		{Title: "C", Venue: types.VenueNDSS, Year: 2024},
		{Title: "D", Venue: types.VenueNDSS, Year: 2025},
		{Title: "E", Venue: types.VenueNDSS, Year: 2025},
	}
	search := &fakeSearcher{}
	v := NewVerifier(search, Options{Venue: types.VenueNDSS, Year: 2025, Limit: 2})
	report, err := v.Verify(context.Background(), papers)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "D"}, search.calls)
	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 2, report.Count(IssueNotFound))
}

func TestVerifyWithoutFixLeavesURLs(t *testing.T) {
	papers := []types.Paper{{Title: "Empc", Venue: types.VenueSP, Year: 2025}}
	search := &fakeSearcher{results: map[string][]Record{
		"Empc": {{Key: "conf/sp/YaoS25", Title: "Empc.", Year: 2025, EE: []string{"https://doi.org/x"}}},
	}}
	report, err := NewVerifier(search, Options{}).Verify(context.Background(), papers)
	require.NoError(t, err)
	assert.Empty(t, papers[0].URL)
	assert.Zero(t, report.URLsFixed)
	assert.False(t, report.HasIssues(), "no authors means no author check")
}

func TestVerifyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewVerifier(&fakeSearcher{}, Options{}).Verify(ctx, []types.Paper{{Title: "A"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBestMatch(t *testing.T) {
	best, score := BestMatch("SafeSplit", nil)
	assert.Nil(t, best)
	assert.Zero(t, score)

	records := []Record{{Title: "Unrelated Work"}, {Title: "SafeSplit."}, {Title: "SafeSplit"}}
	best, score = BestMatch("SafeSplit", records)
	require.NotNil(t, best)
	assert.Equal(t, "SafeSplit.", best.Title, "ties keep the earlier record")
	assert.Equal(t, 1.0, score)
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(types.VerifyConfig{AuthorThreshold: 0.75})
	assert.Equal(t, DefaultTitleThreshold, opts.TitleThreshold)
	assert.Equal(t, 0.75, opts.AuthorThreshold)
}
