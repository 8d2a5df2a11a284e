// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"sort"

	"github.com/pdiddy/secpapers/pkg/types"
)

// Default thresholds. Pairs from different years are held to a stricter
// bar because a venue can legitimately award near-identical titles in
// different years.
const (
	DefaultSameGroupThreshold = 0.85
	DefaultCrossYearThreshold = 0.95
)

// Options configures FindDuplicates.
type Options struct {
	// SameGroupThreshold applies to pairs sharing year and venue.
	SameGroupThreshold float64

	// CrossYearThreshold applies to pairs sharing the venue only.
	CrossYearThreshold float64
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		SameGroupThreshold: DefaultSameGroupThreshold,
		CrossYearThreshold: DefaultCrossYearThreshold,
	}
}

// OptionsFromConfig converts configured thresholds, falling back to the
// defaults for unset values.
func OptionsFromConfig(cfg types.DedupConfig) Options {
	opts := DefaultOptions()
	if cfg.SameGroupThreshold > 0 {
		opts.SameGroupThreshold = cfg.SameGroupThreshold
	}
	if cfg.CrossYearThreshold > 0 {
		opts.CrossYearThreshold = cfg.CrossYearThreshold
	}
	return opts
}

// Pair is a likely duplicate. FirstIndex < SecondIndex, both indices into
// the slice given to FindDuplicates.
type Pair struct {
	First       types.Paper `json:"first"`
	Second      types.Paper `json:"second"`
	FirstIndex  int         `json:"first_index"`
	SecondIndex int         `json:"second_index"`
	Similarity  float64     `json:"similarity"`
}

// FindDuplicates compares every pair of papers that share a venue. Pairs
// from the same year are flagged at SameGroupThreshold, pairs from
// different years at CrossYearThreshold. The result is ordered by
// descending similarity; equal similarities keep discovery order.
//
// Comparisons are quadratic in the size of each venue group.
func FindDuplicates(papers []types.Paper, opts Options) []Pair {
	normalized := make([]string, len(papers))
	for i, p := range papers {
		normalized[i] = NormalizeTitle(p.Title)
	}

	type groupKey struct {
		year  int
		venue types.Venue
	}

	var groupOrder []groupKey
	groups := make(map[groupKey][]int)
	var venueOrder []types.Venue
	venues := make(map[types.Venue][]int)
	for i, p := range papers {
		gk := groupKey{p.Year, p.Venue}
		if _, ok := groups[gk]; !ok {
			groupOrder = append(groupOrder, gk)
		}
		groups[gk] = append(groups[gk], i)

		if _, ok := venues[p.Venue]; !ok {
			venueOrder = append(venueOrder, p.Venue)
		}
		venues[p.Venue] = append(venues[p.Venue], i)
	}

	var pairs []Pair
	compare := func(i, j int, threshold float64) {
		sim := Ratio(normalized[i], normalized[j])
		if sim >= threshold {
			pairs = append(pairs, Pair{
				First:       papers[i],
				Second:      papers[j],
				FirstIndex:  i,
				SecondIndex: j,
				Similarity:  sim,
			})
		}
	}

	for _, gk := range groupOrder {
		members := groups[gk]
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				compare(members[x], members[y], opts.SameGroupThreshold)
			}
		}
	}

	for _, v := range venueOrder {
		members := venues[v]
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				i, j := members[x], members[y]
				if papers[i].Year == papers[j].Year {
					continue
				}
				compare(i, j, opts.CrossYearThreshold)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Similarity > pairs[j].Similarity
	})
	return pairs
}
