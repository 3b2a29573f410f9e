package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Keyword limits.
const (
	MaxKeywordLength   = 50 // exclusive, in characters
	MaxDerivedKeywords = 5
	MaxUserKeywords    = 3
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
	// Anything but ASCII word characters, whitespace, Hangul syllables and hyphen.
	disallowedPattern = regexp.MustCompile(`[^\w\s가-힣-]`)
)

// NormalizeKeywords merges machine-derived and user-supplied keywords into a
// single ranked list: user keywords (trimmed, max 3) first, then cleaned
// derived keywords (max 5), duplicates removed keeping the first occurrence.
func NormalizeKeywords(derived, user []string) []string {
	cleanedUser := make([]string, 0, MaxUserKeywords)
	for _, k := range user {
		if len(cleanedUser) == MaxUserKeywords {
			break
		}
		k = strings.TrimSpace(k)
		if validKeywordLength(k) {
			cleanedUser = append(cleanedUser, k)
		}
	}

	cleanedDerived := make([]string, 0, MaxDerivedKeywords)
	for _, k := range derived {
		if len(cleanedDerived) == MaxDerivedKeywords {
			break
		}
		k = CleanKeyword(k)
		if validKeywordLength(k) {
			cleanedDerived = append(cleanedDerived, k)
		}
	}

	merged := make([]string, 0, len(cleanedUser)+len(cleanedDerived))
	seen := make(map[string]struct{}, cap(merged))
	for _, k := range append(cleanedUser, cleanedDerived...) {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		merged = append(merged, k)
	}
	return merged
}

// CleanKeyword strips parenthetical notes and punctuation from an LLM keyword,
// e.g. "Weld Analysis (용접 해석)" becomes "Weld Analysis".
func CleanKeyword(keyword string) string {
	cleaned := strings.TrimSpace(parentheticalPattern.ReplaceAllString(keyword, ""))
	cleaned = whitespacePattern.ReplaceAllString(cleaned, " ")
	cleaned = disallowedPattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func validKeywordLength(k string) bool {
	n := utf8.RuneCountInString(k)
	return n > 0 && n < MaxKeywordLength
}
