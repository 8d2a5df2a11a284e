// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup finds papers that are probably the same publication despite
// differences in case, punctuation and wording of their titles.
package dedup

import (
	"strings"
	"unicode"
)

// NormalizeTitle lowercases a title, drops every rune that is not a letter,
// digit or whitespace, and collapses whitespace. The result is for
// comparison only, never for display.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TitleSimilarity is Ratio over normalized titles.
func TitleSimilarity(a, b string) float64 {
	return Ratio(NormalizeTitle(a), NormalizeTitle(b))
}

// Ratio returns the sequence similarity of a and b in [0, 1]: 2*M/T, where
// T is the combined rune count and M is the total size of the matching
// blocks found by taking the longest common run and recursing on the runes
// to its left and right. Two empty strings are identical.
//
// Block matching depends on argument order ("tide"/"diet" matches one rune
// one way and two the other), so Ratio takes the better of both orders and
// is symmetric.
//
// Runtime is O(len(a)*len(b)) per level of recursion.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	m := max(matchedRunes(ra, rb), matchedRunes(rb, ra))
	return 2.0 * float64(m) / float64(total)
}

// matchedRunes sums the sizes of the matching blocks. It walks an explicit
// stack of unmatched regions instead of recursing.
func matchedRunes(a, b []rune) int {
	type region struct{ alo, ahi, blo, bhi int }

	// prev and cur hold run lengths ending at b[j-1]; reused across calls.
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)

	total := 0
	stack := []region{{0, len(a), 0, len(b)}}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, k := longestMatch(a, b, r.alo, r.ahi, r.blo, r.bhi, prev, cur)
		if k == 0 {
			continue
		}
		total += k
		if r.alo < i && r.blo < j {
			stack = append(stack, region{r.alo, i, r.blo, j})
		}
		if i+k < r.ahi && j+k < r.bhi {
			stack = append(stack, region{i + k, r.ahi, j + k, r.bhi})
		}
	}
	return total
}

// longestMatch finds the longest block a[i:i+k] == b[j:j+k] within
// a[alo:ahi] and b[blo:bhi]. Among equally long blocks it returns the one
// that starts earliest in a, then earliest in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int, prev, cur []int) (besti, bestj, bestk int) {
	besti, bestj = alo, blo
	for j := blo; j <= bhi; j++ {
		prev[j] = 0
	}
	for i := alo; i < ahi; i++ {
		cur[blo] = 0
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			k := prev[j] + 1
			cur[j+1] = k
			if k > bestk {
				besti, bestj, bestk = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return besti, bestj, bestk
}
