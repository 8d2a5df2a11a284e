// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures of the award paper dataset:
// papers, authors, venues, awards, and the persisted dataset document.
package types

import "strings"

// Venue is one of the security conferences tracked by the dataset.
type Venue string

const (
	VenueSP     Venue = "IEEE S&P"
	VenueCCS    Venue = "ACM CCS"
	VenueUSENIX Venue = "USENIX Security"
	VenueNDSS   Venue = "NDSS"
)

// Venues lists the tracked venues in the order they appear in the dataset header.
var Venues = []Venue{VenueSP, VenueCCS, VenueUSENIX, VenueNDSS}

// Known reports whether v is one of the tracked venues.
func (v Venue) Known() bool {
	for _, known := range Venues {
		if v == known {
			return true
		}
	}
	return false
}

// venueAliases maps lowercased spellings seen in listings and on the
// command line to venues.
var venueAliases = map[string]Venue{
	"ieee s&p":        VenueSP,
	"s&p":             VenueSP,
	"sp":              VenueSP,
	"oakland":         VenueSP,
	"ieee sp":         VenueSP,
	"acm ccs":         VenueCCS,
	"ccs":             VenueCCS,
	"usenix security": VenueUSENIX,
	"usenix":          VenueUSENIX,
	"usenix sec":      VenueUSENIX,
	"ndss":            VenueNDSS,
}

// ParseVenue resolves a venue name or common alias, ignoring case.
func ParseVenue(s string) (Venue, bool) {
	v, ok := venueAliases[strings.ToLower(strings.Join(strings.Fields(s), " "))]
	return v, ok
}

// Award is the distinction attached to a paper.
type Award string

const (
	AwardBest          Award = "Best Paper"
	AwardDistinguished Award = "Distinguished Paper"
)

// DefaultAward returns the award name a venue uses for its top papers.
// NDSS and USENIX Security call them distinguished papers.
func DefaultAward(v Venue) Award {
	switch v {
	case VenueNDSS, VenueUSENIX:
		return AwardDistinguished
	default:
		return AwardBest
	}
}

// Author is one (name, institution) pair in a paper's author list.
type Author struct {
	// Name is the person's display name.
	Name string `json:"name" yaml:"name"`

	// Institution is the affiliation, empty when the source did not give one.
	Institution string `json:"institution" yaml:"institution"`
}

// Paper is one award-winning paper. Field order is the JSON key order of
// the persisted dataset.
type Paper struct {
	Title   string   `json:"title" yaml:"title"`
	Authors []Author `json:"authors" yaml:"authors"`
	Venue   Venue    `json:"venue" yaml:"venue"`
	Year    int      `json:"year" yaml:"year"`
	Award   Award    `json:"award" yaml:"award"`

	// URL links to the paper; empty when unknown.
	URL string `json:"url" yaml:"url"`
}

// AuthorNames returns the author names in order.
func (p Paper) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return names
}

// Dataset is the persisted JSON document.
type Dataset struct {
	Description string   `json:"description" yaml:"description"`
	Source      string   `json:"source" yaml:"source"`
	Venues      []string `json:"venues" yaml:"venues"`
	Papers      []Paper  `json:"papers" yaml:"papers"`
}
