// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/internal/observability"
	"github.com/pdiddy/secpapers/pkg/types"
)

// Searcher finds DBLP records by title. *Client implements it.
type Searcher interface {
	SearchTitle(ctx context.Context, title string) ([]Record, error)
}

// IssueKind classifies a verification finding.
type IssueKind string

const (
	IssueAPIError       IssueKind = "api_error"
	IssueNotFound       IssueKind = "not_found"
	IssueAuthorMismatch IssueKind = "author_mismatch"
	IssueYearMismatch   IssueKind = "year_mismatch"
	IssueVenueMismatch  IssueKind = "venue_mismatch"
)

// Issue is one finding for one paper.
type Issue struct {
	Index  int         `json:"index"`
	Title  string      `json:"title"`
	Venue  types.Venue `json:"venue"`
	Year   int         `json:"year"`
	Kind   IssueKind   `json:"kind"`
	Detail string      `json:"detail"`
}

// Options configures a verification run.
type Options struct {
	// TitleThreshold is the minimum title similarity for a match.
	TitleThreshold float64

	// AuthorThreshold is the minimum author overlap.
	AuthorThreshold float64

	// Venue and Year restrict the run to matching papers when set.
	Venue types.Venue
	Year  int

	// Limit stops after this many papers have been checked (0 means all).
	Limit int

	// FixURLs fills empty paper URLs from the matched record.
	FixURLs bool
}

// OptionsFromConfig fills thresholds from config, using defaults for unset values.
func OptionsFromConfig(cfg types.VerifyConfig) Options {
	opts := Options{TitleThreshold: DefaultTitleThreshold, AuthorThreshold: DefaultAuthorThreshold}
	if cfg.TitleThreshold > 0 {
		opts.TitleThreshold = cfg.TitleThreshold
	}
	if cfg.AuthorThreshold > 0 {
		opts.AuthorThreshold = cfg.AuthorThreshold
	}
	return opts
}

// Report summarizes a verification run.
type Report struct {
	Checked   int     `json:"checked"`
	Matched   int     `json:"matched"`
	URLsFixed int     `json:"urls_fixed"`
	Issues    []Issue `json:"issues"`
}

// HasIssues reports whether any paper failed verification.
func (r Report) HasIssues() bool {
	return len(r.Issues) > 0
}

// Count returns the number of issues of the given kind.
func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, is := range r.Issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}

// Verifier checks papers against DBLP search results.
type Verifier struct {
	search Searcher
	opts   Options
}

// NewVerifier creates a Verifier.
func NewVerifier(search Searcher, opts Options) *Verifier {
	if opts.TitleThreshold <= 0 {
		opts.TitleThreshold = DefaultTitleThreshold
	}
	if opts.AuthorThreshold <= 0 {
		opts.AuthorThreshold = DefaultAuthorThreshold
	}
	return &Verifier{search: search, opts: opts}
}

// Verify checks each selected paper in order. A failed search is recorded
// as an api_error and the run continues. With FixURLs, empty URLs of
// matched papers are filled in place in papers. Verify only stops early
// when ctx is cancelled, returning the partial report with ctx.Err().
func (v *Verifier) Verify(ctx context.Context, papers []types.Paper) (Report, error) {
	log := zerolog.Ctx(ctx)
	var report Report

	for i := range papers {
		p := papers[i]
		if !v.selected(p) {
			continue
		}
		if v.opts.Limit > 0 && report.Checked >= v.opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		plog := observability.WithPaper(*log, p)

		issues, match := v.check(ctx, i, p)
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		for _, is := range issues {
			plog.Warn().Str("kind", string(is.Kind)).Msg(is.Detail)
		}
		report.Issues = append(report.Issues, issues...)
		if match == nil {
			continue
		}
		report.Matched++

		if v.opts.FixURLs && p.URL == "" && len(match.EE) > 0 {
			papers[i].URL = match.EE[0]
			report.URLsFixed++
			plog.Info().Str("url", match.EE[0]).Msg("filled url")
		}
	}
	return report, nil
}

func (v *Verifier) selected(p types.Paper) bool {
	if v.opts.Venue != "" && p.Venue != v.opts.Venue {
		return false
	}
	if v.opts.Year != 0 && p.Year != v.opts.Year {
		return false
	}
	return true
}

// check verifies one paper and returns its issues and the matched record,
// nil when no record matched the title.
func (v *Verifier) check(ctx context.Context, index int, p types.Paper) ([]Issue, *Record) {
	issue := func(kind IssueKind, format string, args ...any) Issue {
		return Issue{
			Index: index, Title: p.Title, Venue: p.Venue, Year: p.Year,
			Kind: kind, Detail: fmt.Sprintf(format, args...),
		}
	}

	records, err := v.search.SearchTitle(ctx, p.Title)
	if err != nil {
		return []Issue{issue(IssueAPIError, "search failed: %v", err)}, nil
	}

	best, score := BestMatch(p.Title, records)
	if best == nil || score < v.opts.TitleThreshold {
		return []Issue{issue(IssueNotFound, "no DBLP record with title similarity >= %.2f (best %.2f)", v.opts.TitleThreshold, score)}, nil
	}

	var issues []Issue
	if len(p.Authors) > 0 {
		if overlap := AuthorOverlap(p.AuthorNames(), best.Authors); overlap < v.opts.AuthorThreshold {
			issues = append(issues, issue(IssueAuthorMismatch, "author overlap %.2f with %s", overlap, best.Key))
		}
	}
	if best.Year != p.Year {
		issues = append(issues, issue(IssueYearMismatch, "DBLP year %d", best.Year))
	}
	if venue, ok := RecordVenue(*best); !ok {
		issues = append(issues, issue(IssueVenueMismatch, "unrecognized DBLP venue %v (%s)", best.Venues, best.Key))
	} else if venue != p.Venue {
		issues = append(issues, issue(IssueVenueMismatch, "DBLP venue %s", venue))
	}
	return issues, best
}

// BestMatch returns the record whose title is most similar to title and
// its similarity. Ties keep DBLP's ranking. It returns nil for no records.
func BestMatch(title string, records []Record) (*Record, float64) {
	var best *Record
	bestScore := 0.0
	for i := range records {
		score := dedup.TitleSimilarity(title, records[i].Title)
		if best == nil || score > bestScore {
			best, bestScore = &records[i], score
		}
	}
	return best, bestScore
}
