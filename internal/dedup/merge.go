// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import "github.com/pdiddy/secpapers/pkg/types"

// MergeStats counts what Merge did.
type MergeStats struct {
	// Kept is the number of distinct papers.
	Kept int

	// Replaced counts first-seen papers swapped for a later copy with a URL.
	Replaced int

	// Dropped counts later copies discarded in favor of the first-seen paper.
	Dropped int
}

// Removed is the number of input papers that are not in the output.
func (s MergeStats) Removed() int {
	return s.Replaced + s.Dropped
}

// Supersedes reports whether candidate should replace kept, a paper with
// the same normalized title seen earlier: only a copy with a URL replaces
// one without.
func Supersedes(kept, candidate types.Paper) bool {
	return kept.URL == "" && candidate.URL != ""
}

// Merge collapses papers whose normalized titles are identical. The
// first-seen paper is kept in place unless it has no URL and a later copy
// does; then the later copy takes its slot.
func Merge(papers []types.Paper) ([]types.Paper, MergeStats) {
	var stats MergeStats
	seen := make(map[string]int, len(papers)) // normalized title → index in merged
	merged := make([]types.Paper, 0, len(papers))

	for _, p := range papers {
		key := NormalizeTitle(p.Title)
		idx, ok := seen[key]
		if !ok {
			seen[key] = len(merged)
			merged = append(merged, p)
			continue
		}
		if Supersedes(merged[idx], p) {
			merged[idx] = p
			stats.Replaced++
			continue
		}
		stats.Dropped++
	}

	stats.Kept = len(merged)
	return merged, stats
}
