// Package enrich derives supplementary channel metadata — category,
// language, and operator-supplied overrides — that the core cleaning
// pipeline itself has no opinion on.
package enrich

import "strings"

// categoryKeywords maps a lowercased keyword found in a channel's group
// name or display name to the category it implies. Checked in map
// iteration order is non-deterministic, so Category scans this slice in
// the fixed order below, earliest match wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"news", "News"},
	{"sport", "Sports"},
	{"movie", "Movies"},
	{"cinema", "Movies"},
	{"kids", "Kids"},
	{"cartoon", "Kids"},
	{"music", "Music"},
	{"doc", "Documentary"},
	{"religio", "Religious"},
	{"shop", "Shopping"},
	{"adult", "Adult"},
}

// Category infers a coarse category from a channel's group and display
// name, or "" if nothing matches.
func Category(groupName, name string) string {
	haystack := strings.ToLower(groupName + " " + name)
	for _, kw := range categoryKeywords {
		if strings.Contains(haystack, kw.keyword) {
			return kw.category
		}
	}
	return ""
}
