// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dblp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/secpapers/pkg/types"
)

// homonymSuffix is DBLP's disambiguation number, e.g. "Wei Wang 0001".
var homonymSuffix = regexp.MustCompile(`\s+\d{4}$`)

// NormalizeName folds an author name for comparison: the DBLP homonym
// number is removed, diacritics are stripped, case is folded, and
// punctuation other than letters and spaces is dropped.
func NormalizeName(name string) string {
	name = homonymSuffix.ReplaceAllString(strings.TrimSpace(name), "")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			b.WriteRune(' ')
		}
	}
	// Casers hold state, so each call gets its own.
	return cases.Fold().String(strings.Join(strings.Fields(b.String()), " "))
}

// AuthorOverlap is |A ∩ B| / max(|A|, |B|) over normalized names. It is 0
// when either list is empty.
func AuthorOverlap(a, b []string) float64 {
	setA, setB := nameSet(a), nameSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for n := range setA {
		if setB[n] {
			shared++
		}
	}
	return float64(shared) / float64(max(len(setA), len(setB)))
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if key := NormalizeName(n); key != "" {
			set[key] = true
		}
	}
	return set
}

// venueKeys maps DBLP conference key prefixes to venues.
var venueKeys = map[string]types.Venue{
	"conf/sp/":   types.VenueSP,
	"conf/ccs/":  types.VenueCCS,
	"conf/uss/":  types.VenueUSENIX,
	"conf/ndss/": types.VenueNDSS,
}

// venueNames maps DBLP venue labels to venues.
var venueNames = map[string]types.Venue{
	"sp":                        types.VenueSP,
	"s&p":                       types.VenueSP,
	"ccs":                       types.VenueCCS,
	"usenix security":           types.VenueUSENIX,
	"usenix security symposium": types.VenueUSENIX,
	"ndss":                      types.VenueNDSS,
}

// RecordVenue identifies the tracked venue a record was published at,
// first by its DBLP key and then by its venue labels.
func RecordVenue(rec Record) (types.Venue, bool) {
	for prefix, v := range venueKeys {
		if strings.HasPrefix(rec.Key, prefix) {
			return v, true
		}
	}
	for _, label := range rec.Venues {
		if v, ok := venueNames[strings.ToLower(strings.TrimSpace(label))]; ok {
			return v, true
		}
	}
	return "", false
}
