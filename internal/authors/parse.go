// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package authors turns free-form author lines into ordered (name,
// institution) records.
//
// Author lines in the award listings follow several conventions with no
// format tag. Parse tries each known convention in priority order and keeps
// the first one that produces any author:
//
//	Jane Doe (MIT), John Roe (Stanford)        parenthetical institutions
//	Jane Doe, MIT; John Roe, Stanford          semicolon segments
//	Jane Doe, John Roe                         plain names
//
// Parsing is heuristic. It never fails; unrecognized input yields an empty
// or partial result.
package authors

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/secpapers/pkg/types"
)

// parenPattern matches "Name (Institution)". The name is an uppercase-initial
// run of letters, hyphens, apostrophes, periods and whitespace.
var parenPattern = regexp.MustCompile(`(\p{Lu}[\p{L}'’.\s-]+?)\s*\(([^)]+)\)`)

var commaPattern = regexp.MustCompile(`,\s*`)

// Parse converts an author line into authors in input order.
func Parse(s string) []types.Author {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, format := range formats {
		if found := format(s); len(found) > 0 {
			return found
		}
	}
	return nil
}

// formats are tried in order; the first non-empty result wins.
var formats = []func(string) []types.Author{
	parseParenthetical,
	parseSemicolonSegments,
	parseNameList,
}

// parseParenthetical handles "Name (Institution)" sequences, including
// "A and B (Institution)" where both names share the institution.
func parseParenthetical(s string) []types.Author {
	var found []types.Author
	for _, m := range parenPattern.FindAllStringSubmatch(s, -1) {
		name := collapseSpace(m[1])
		institution := strings.TrimSpace(m[2])
		if IsInstitution(name) {
			continue
		}
		for _, n := range SplitConjunction(name) {
			if utf8.RuneCountInString(n) < 2 || IsInstitution(n) {
				continue
			}
			found = append(found, types.Author{Name: n, Institution: institution})
		}
	}
	return found
}

// parseSemicolonSegments handles "Name, Institution; Name, Institution".
// Segments without a comma are skipped. Names must look like a person: at
// least two tokens, each starting with an uppercase letter.
func parseSemicolonSegments(s string) []types.Author {
	if !strings.Contains(s, ";") {
		return nil
	}

	var found []types.Author
	for _, segment := range strings.Split(s, ";") {
		segment = strings.TrimSpace(segment)
		name, institution, ok := strings.Cut(segment, ",")
		if segment == "" || !ok {
			continue
		}
		name = collapseSpace(name)
		institution = strings.TrimSpace(institution)
		if utf8.RuneCountInString(name) < 2 || IsInstitution(name) {
			continue
		}
		for _, n := range SplitConjunction(name) {
			if looksLikePerson(n) {
				found = append(found, types.Author{Name: n, Institution: institution})
			}
		}
	}
	return found
}

// parseNameList is the fallback: comma-separated names, no institutions.
func parseNameList(s string) []types.Author {
	var found []types.Author
	for _, part := range commaPattern.Split(s, -1) {
		name := collapseSpace(part)
		if utf8.RuneCountInString(name) < 2 || IsInstitution(name) {
			continue
		}
		for _, n := range SplitConjunction(name) {
			if utf8.RuneCountInString(n) < 2 || IsInstitution(n) {
				continue
			}
			found = append(found, types.Author{Name: n})
		}
	}
	return found
}

var (
	conjunctionPattern = regexp.MustCompile(`(?i)\s+and\s+`)
	leadingAnd         = regexp.MustCompile(`(?i)^and\s+`)
)

// SplitConjunction splits "A and B" into separate names. A leading "and "
// left behind by an Oxford comma ("A, B, and C") is dropped.
func SplitConjunction(name string) []string {
	name = leadingAnd.ReplaceAllString(strings.TrimSpace(name), "")
	var names []string
	for _, part := range conjunctionPattern.Split(name, -1) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// Format renders authors back into the parenthetical convention Parse reads
// first: "Name (Institution), Name".
func Format(list []types.Author) string {
	parts := make([]string, len(list))
	for i, a := range list {
		if a.Institution == "" {
			parts[i] = a.Name
			continue
		}
		parts[i] = a.Name + " (" + a.Institution + ")"
	}
	return strings.Join(parts, ", ")
}

func looksLikePerson(name string) bool {
	tokens := strings.Fields(name)
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
