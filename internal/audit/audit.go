// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package audit checks a dataset for coverage gaps, likely duplicates and
// malformed records, and summarizes its contents.
package audit

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/secpapers/internal/dedup"
	"github.com/pdiddy/secpapers/pkg/types"
)

// Year bounds outside of which a paper's year is suspicious.
const (
	MinYear = 2000
	MaxYear = 2030
)

// minTitleLength is the shortest title, in runes, that is not flagged.
const minTitleLength = 5

// topAuthorCount bounds Summary.TopAuthors.
const topAuthorCount = 10

// Coverage is the year range of one venue and the years it is missing.
type Coverage struct {
	Venue   types.Venue `json:"venue"`
	First   int         `json:"first"`
	Last    int         `json:"last"`
	Years   []int       `json:"years"`
	Missing []int       `json:"missing"`
}

// Problem names a data quality defect.
type Problem string

const (
	ProblemShortTitle   Problem = "missing_or_short_title"
	ProblemNoAuthors    Problem = "missing_authors"
	ProblemYearRange    Problem = "suspicious_year"
	ProblemUnknownVenue Problem = "unknown_venue"
)

// QualityIssue is one defect on one paper.
type QualityIssue struct {
	Index   int         `json:"index"`
	Title   string      `json:"title"`
	Venue   types.Venue `json:"venue"`
	Year    int         `json:"year"`
	Problem Problem     `json:"problem"`
}

// Count pairs a label with a number of papers.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes the dataset contents.
type Summary struct {
	Total      int     `json:"total"`
	ByVenue    []Count `json:"by_venue"`
	ByYear     []Count `json:"by_year"`
	WithURL    int     `json:"with_url"`
	TopAuthors []Count `json:"top_authors"`
}

// URLCoverage is the percentage of papers with a URL.
func (s Summary) URLCoverage() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.WithURL) / float64(s.Total)
}

// Report is the result of Run.
type Report struct {
	Coverage   []Coverage     `json:"coverage"`
	Duplicates []dedup.Pair   `json:"duplicates"`
	Quality    []QualityIssue `json:"quality"`
	Summary    Summary        `json:"summary"`
}

// MissingYears reports whether any venue has a gap in its year range.
func (r Report) MissingYears() bool {
	for _, c := range r.Coverage {
		if len(c.Missing) > 0 {
			return true
		}
	}
	return false
}

// HasIssues reports whether any check found a problem.
func (r Report) HasIssues() bool {
	return r.MissingYears() || len(r.Duplicates) > 0 || len(r.Quality) > 0
}

// Run executes every check. Each check runs regardless of what the others
// find.
func Run(papers []types.Paper, opts dedup.Options) Report {
	return Report{
		Coverage:   CheckCoverage(papers),
		Duplicates: dedup.FindDuplicates(papers, opts),
		Quality:    CheckQuality(papers),
		Summary:    Summarize(papers),
	}
}

// CheckCoverage lists, per venue in name order, the years between the first
// and last award year that have no paper.
func CheckCoverage(papers []types.Paper) []Coverage {
	years := make(map[types.Venue]map[int]bool)
	for _, p := range papers {
		if years[p.Venue] == nil {
			years[p.Venue] = make(map[int]bool)
		}
		years[p.Venue][p.Year] = true
	}

	venues := make([]types.Venue, 0, len(years))
	for v := range years {
		venues = append(venues, v)
	}
	sort.Slice(venues, func(i, j int) bool { return venues[i] < venues[j] })

	coverage := make([]Coverage, 0, len(venues))
	for _, v := range venues {
		c := Coverage{Venue: v, Missing: []int{}}
		for y := range years[v] {
			c.Years = append(c.Years, y)
		}
		sort.Ints(c.Years)
		c.First, c.Last = c.Years[0], c.Years[len(c.Years)-1]
		for y := c.First; y <= c.Last; y++ {
			if !years[v][y] {
				c.Missing = append(c.Missing, y)
			}
		}
		coverage = append(coverage, c)
	}
	return coverage
}

// CheckQuality flags short titles, empty author lists, years outside
// [MinYear, MaxYear] and venues outside the tracked set.
func CheckQuality(papers []types.Paper) []QualityIssue {
	var issues []QualityIssue
	for i, p := range papers {
		flag := func(problem Problem) {
			issues = append(issues, QualityIssue{
				Index: i, Title: p.Title, Venue: p.Venue, Year: p.Year, Problem: problem,
			})
		}
		if utf8.RuneCountInString(strings.TrimSpace(p.Title)) < minTitleLength {
			flag(ProblemShortTitle)
		}
		if len(p.Authors) == 0 {
			flag(ProblemNoAuthors)
		}
		if p.Year != 0 && (p.Year < MinYear || p.Year > MaxYear) {
			flag(ProblemYearRange)
		}
		if !p.Venue.Known() {
			flag(ProblemUnknownVenue)
		}
	}
	return issues
}

// Summarize counts papers by venue (name order) and year (newest first),
// counts URLs, and ranks the ten most frequent author names. Authors with
// equal counts are ordered by name.
func Summarize(papers []types.Paper) Summary {
	s := Summary{Total: len(papers)}

	venues := make(map[string]int)
	years := make(map[int]int)
	authorCounts := make(map[string]int)
	for _, p := range papers {
		venues[string(p.Venue)]++
		years[p.Year]++
		if p.URL != "" {
			s.WithURL++
		}
		for _, a := range p.Authors {
			if a.Name != "" {
				authorCounts[a.Name]++
			}
		}
	}

	s.ByVenue = toCounts(venues)
	sort.Slice(s.ByVenue, func(i, j int) bool { return s.ByVenue[i].Name < s.ByVenue[j].Name })

	yearKeys := make([]int, 0, len(years))
	for y := range years {
		yearKeys = append(yearKeys, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(yearKeys)))
	for _, y := range yearKeys {
		s.ByYear = append(s.ByYear, Count{Name: fmt.Sprint(y), Count: years[y]})
	}

	s.TopAuthors = toCounts(authorCounts)
	sort.Slice(s.TopAuthors, func(i, j int) bool {
		a, b := s.TopAuthors[i], s.TopAuthors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})
	if len(s.TopAuthors) > topAuthorCount {
		s.TopAuthors = s.TopAuthors[:topAuthorCount]
	}
	return s
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	return out
}
