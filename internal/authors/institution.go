// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package authors

import (
	"regexp"
	"strings"
)

// institutionMarkers are matched anywhere in the lowercased candidate.
var institutionMarkers = []string{
	"university", "universit", "institute", "college", "school",
	"laborator", "center", "centre", "research", "corporation",
	"google", "microsoft", "amazon", "facebook", "nvidia", "samsung",
	"huawei", "alibaba", "tencent", "baidu", "deepmind", "openai",
	"mozilla", "cispa", "inria", "kaist", "national", "federal",
	"department",
}

// institutionWords are short markers that only count as whole words, so
// "MIT" is an institution but "Smith" is not. "tu" must be followed by
// another word ("TU Darmstadt").
var institutionWords = regexp.MustCompile(
	`\b(inc|llc|ltd|corp|meta|apple|ibm|intel|epfl|eth|mit|rub|dept|state|brave|ucl|nyu|njit|hkust|unist|nudt|sustech|csiro|cmu)\b|\btu\s`)

// labWord matches "lab" ending a word, including compounds such as "CyLab"
// and "SecLab".
var labWord = regexp.MustCompile(`labs?\b`)

var institutionSuffix = regexp.MustCompile(`\b(university|institute|lab|center|tech)\s*$`)

// IsInstitution reports whether s reads as an institution rather than a
// person's name. It is a static keyword filter; a person surnamed "Lab" is
// misclassified.
func IsInstitution(s string) bool {
	lower := strings.ToLower(s)
	for _, marker := range institutionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return labWord.MatchString(lower) || institutionWords.MatchString(lower) || institutionSuffix.MatchString(lower)
}
