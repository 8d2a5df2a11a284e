// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/secpapers/internal/authors"
	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/pkg/types"
)

// Submission is one hand-curated entry. Authors is a raw author line in any
// format the author parser understands.
type Submission struct {
	Title   string `yaml:"title"`
	Authors string `yaml:"authors"`
	Venue   string `yaml:"venue"`
	Year    int    `yaml:"year"`
	Award   string `yaml:"award,omitempty"`
	URL     string `yaml:"url,omitempty"`
}

// submissionFile is the YAML document layout.
type submissionFile struct {
	Papers []Submission `yaml:"papers"`
}

// Paper converts the submission, parsing the author line and defaulting
// the award by venue.
func (s Submission) Paper() (types.Paper, error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return types.Paper{}, errors.New("missing title")
	}
	venue, ok := types.ParseVenue(s.Venue)
	if !ok {
		return types.Paper{}, fmt.Errorf("%q: unknown venue %q", title, s.Venue)
	}
	if s.Year <= 0 {
		return types.Paper{}, fmt.Errorf("%q: missing year", title)
	}

	award := types.Award(strings.TrimSpace(s.Award))
	if award == "" {
		award = types.DefaultAward(venue)
	}
	return types.Paper{
		Title:   title,
		Authors: authors.Parse(s.Authors),
		Venue:   venue,
		Year:    s.Year,
		Award:   award,
		URL:     strings.TrimSpace(s.URL),
	}, nil
}

// LoadSubmissions reads a YAML file of curated papers. Every invalid entry
// is reported in the returned error; no papers are returned in that case.
func LoadSubmissions(path string) ([]types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading submissions: %w", err)
	}

	var file submissionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing submissions %s: %w", path, err)
	}

	papers := make([]types.Paper, 0, len(file.Papers))
	var errs []error
	for i, s := range file.Papers {
		p, err := s.Paper()
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i+1, err))
			continue
		}
		papers = append(papers, p)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid submissions in %s: %w", path, errors.Join(errs...))
	}
	return papers, nil
}

// IngestSummary counts the outcome of Ingest.
type IngestSummary struct {
	// Added papers were new to the dataset.
	Added int `json:"added"`

	// Upgraded papers replaced an existing copy that had no URL.
	Upgraded int `json:"upgraded"`

	// Skipped papers were already present.
	Skipped int `json:"skipped"`

	// Total is the resulting dataset size.
	Total int `json:"total"`
}

// Changed reports whether Ingest altered the dataset.
func (s IngestSummary) Changed() bool {
	return s.Added > 0 || s.Upgraded > 0
}

// Ingest merges incoming papers into existing with the same policy as
// dedup.Merge: a paper whose normalized title is already present is skipped
// unless dedup.Supersedes says the incoming copy replaces it. existing is
// not modified.
func Ingest(existing, incoming []types.Paper) ([]types.Paper, IngestSummary) {
	out := make([]types.Paper, len(existing), len(existing)+len(incoming))
	copy(out, existing)

	index := make(map[string]int, len(out)+len(incoming))
	for i, p := range out {
		key := dedup.NormalizeTitle(p.Title)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	var summary IngestSummary
	for _, p := range incoming {
		key := dedup.NormalizeTitle(p.Title)
		i, ok := index[key]
		switch {
		case !ok:
			index[key] = len(out)
			out = append(out, p)
			summary.Added++
		case dedup.Supersedes(out[i], p):
			out[i] = p
			summary.Upgraded++
		default:
			summary.Skipped++
		}
	}
	summary.Total = len(out)
	return out, summary
}
