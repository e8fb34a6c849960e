package enrich

import "strings"

// languageMarkers maps a lowercased substring commonly seen in group or
// channel names to the language it implies. Order matters: checked in
// slice order, earliest match wins.
var languageMarkers = []struct {
	marker   string
	language string
}{
	{"english", "English"},
	{" uk", "English"},
	{"|en|", "English"},
	{"spanish", "Spanish"},
	{"espa", "Spanish"},
	{"french", "French"},
	{"francai", "French"},
	{"german", "German"},
	{"deutsch", "German"},
	{"italian", "Italian"},
	{"italia", "Italian"},
	{"portuguese", "Portuguese"},
	{"portugu", "Portuguese"},
	{"arabic", "Arabic"},
	{"russian", "Russian"},
	{"polish", "Polish"},
	{"turkish", "Turkish"},
}

// Language infers a spoken language from a channel's group and display
// name, or "" if nothing matches.
func Language(groupName, name string) string {
	haystack := strings.ToLower(groupName + " " + name)
	for _, m := range languageMarkers {
		if strings.Contains(haystack, m.marker) {
			return m.language
		}
	}
	return ""
}
