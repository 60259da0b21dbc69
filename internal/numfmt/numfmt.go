// Package numfmt converts localized, unit-suffixed count strings into
// integers. Social surfaces render counts as "1.2K", "3.4M", "12,345" or the
// CJK forms "1.2萬" and "3.4億"; every extraction heuristic that reads a
// human-visible count goes through Parse.
package numfmt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// First numeric token with an optional multiplier suffix. Thousands
// separators are stripped before matching, so the fraction separator can
// only be a dot by the time this runs.
var tokenRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*(?i:(K|M|B|萬|億))?`)

var multipliers = map[string]float64{
	"k": 1_000,
	"m": 1_000_000,
	"b": 1_000_000_000,
	"萬": 10_000,
	"億": 100_000_000,
}

// Parse extracts the first numeric token from s, applies any multiplier
// suffix and rounds half-up to the nearest integer. It returns false when no
// numeric token is present. It never panics on malformed input.
func Parse(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "+", "")

	m := tokenRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	val, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if unit := strings.ToLower(m[2]); unit != "" {
		if mul, ok := multipliers[unit]; ok {
			val *= mul
		}
	}
	return int64(math.Round(val)), true
}
