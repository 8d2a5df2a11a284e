// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source reads award listings from the upstream "best papers in
// computer security" README. Each venue has its own section holding a
// markdown table of | Year | Papers | rows, where one cell lists several
// papers separated by <br> tags.
package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/secpapers/internal/authors"
	"github.com/pdiddy/secpapers/pkg/types"
)

// section ties a venue to the anchor id and heading that introduce it.
type section struct {
	venue   types.Venue
	anchor  string
	heading string
}

var sections = []section{
	{types.VenueSP, "ieee-sp", "IEEE S&P"},
	{types.VenueCCS, "acm-ccs", "ACM CCS"},
	{types.VenueUSENIX, "usenix-security", "USENIX Security"},
	{types.VenueNDSS, "ndss", "NDSS"},
}

// VenueCount reports what ParseReadme found for one venue.
type VenueCount struct {
	Venue  types.Venue
	Found  bool
	Papers int
}

var (
	brPattern   = regexp.MustCompile(`(?i)<br\s*/?>\s*`)
	yearPattern = regexp.MustCompile(`^(\d{4})`)

	boldLinkEntry = regexp.MustCompile(`^\[\*\*(.+?)\*\*\]\(([^)]+)\)`)
	linkEntry     = regexp.MustCompile(`^\[([^\]]+)\]\(([^)]+)\)`)
	boldEntry     = regexp.MustCompile(`^\*\*(.+?)\*\*`)
)

// ParseReadme extracts every paper listed in the venue sections of content.
// Sections that cannot be located are reported with Found == false; rows
// and entries that do not match the expected shapes are skipped.
func ParseReadme(content string) ([]types.Paper, []VenueCount) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var papers []types.Paper
	counts := make([]VenueCount, 0, len(sections))
	for _, sec := range sections {
		body, ok := sectionLines(lines, sec)
		count := VenueCount{Venue: sec.venue, Found: ok}
		for _, line := range body {
			found := parseRow(line, sec.venue)
			count.Papers += len(found)
			papers = append(papers, found...)
		}
		counts = append(counts, count)
	}
	return papers, counts
}

// sectionLines returns the lines after a venue's heading up to the next
// second-level heading or anchor. The section starts at its anchor when
// present, otherwise at a "## <heading>" line.
func sectionLines(lines []string, sec section) ([]string, bool) {
	anchor := `<a id="` + sec.anchor + `"`
	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), anchor) {
			start = i
			break
		}
	}
	if start < 0 {
		for i, line := range lines {
			if isHeading(line, sec.heading) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		return nil, false
	}

	// Skip to the first table-bearing line after the section's own heading.
	i := start
	if !isHeading(lines[i], "") {
		for i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "" {
			i++
		}
		if i+1 < len(lines) && isHeading(lines[i+1], "") {
			i++
		}
	}

	end := len(lines)
	for j := i + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if isHeading(trimmed, "") || strings.HasPrefix(strings.ToLower(trimmed), `<a id="`) {
			end = j
			break
		}
	}
	return lines[i+1 : end], true
}

// isHeading reports whether line is a "## " heading, optionally one whose
// text starts with title (case-insensitive).
func isHeading(line, title string) bool {
	text, ok := strings.CutPrefix(strings.TrimSpace(line), "## ")
	if !ok {
		return false
	}
	return title == "" || strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), strings.ToLower(title))
}

// parseRow reads one "| Year | Papers |" table row.
func parseRow(line string, venue types.Venue) []types.Paper {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil
	}
	if strings.Contains(line, "Year") && strings.Contains(line, "Paper") {
		return nil
	}
	if strings.Contains(line, ":-") {
		return nil
	}

	cells := strings.Split(line, "|")
	if len(cells) < 3 {
		return nil
	}
	m := yearPattern.FindStringSubmatch(strings.TrimSpace(cells[1]))
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	return ParseCell(strings.TrimSpace(cells[2]), year, venue)
}

// ParseCell reads the papers listed in one table cell. Each entry is a
// title, optionally followed by its author line in the next <br>-separated
// part.
func ParseCell(cell string, year int, venue types.Venue) []types.Paper {
	parts := brPattern.Split(cell, -1)
	award := types.DefaultAward(venue)

	var papers []types.Paper
	for i := 0; i < len(parts); i++ {
		title, url, ok := parseEntry(strings.TrimSpace(parts[i]))
		if !ok {
			continue
		}

		var authorLine string
		if i+1 < len(parts) {
			next := strings.TrimSpace(parts[i+1])
			if next != "" && !startsEntry(next) {
				authorLine = next
				i++
			}
		}

		if strings.HasPrefix(url, "#") {
			url = ""
		}
		papers = append(papers, types.Paper{
			Title:   title,
			Authors: authors.Parse(authorLine),
			Venue:   venue,
			Year:    year,
			Award:   award,
			URL:     url,
		})
	}
	return papers
}

// parseEntry matches [**Title**](url), [Title](url), or **Title**.
func parseEntry(part string) (title, url string, ok bool) {
	if m := boldLinkEntry.FindStringSubmatch(part); m != nil {
		title, url = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	} else if m := linkEntry.FindStringSubmatch(part); m != nil {
		title, url = strings.TrimSpace(strings.Trim(m[1], "*")), strings.TrimSpace(m[2])
	} else if m := boldEntry.FindStringSubmatch(part); m != nil {
		title = strings.TrimSpace(m[1])
	}
	return title, url, title != ""
}

func startsEntry(part string) bool {
	return strings.HasPrefix(part, "[") || strings.HasPrefix(part, "**")
}
