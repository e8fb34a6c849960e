package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var qualitySuffixRegex = regexp.MustCompile(`(?i)\s*\(?\b(hd|sd|fhd|uhd|4k|1080p|720p|480p|360p)\b\)?\s*$`)

// genericNames are display names too generic to use as a dedup key on their
// own — "Channel 4" survives, but bare "channel" or "tv" does not.
var genericNames = map[string]bool{
	"channel": true, "test": true, "live": true, "stream": true,
	"tv": true, "video": true, "audio": true, "radio": true,
	"news": true, "sports": true, "movie": true, "music": true,
	"entertainment": true,
}

// Name canonicalizes a channel display name (or a raw #EXTINF line) for
// equality comparison: strips any leading "#EXTINF...," directive prefix,
// lowercases, drops a trailing quality suffix, and collapses punctuation
// and whitespace.
func Name(s string) string {
	if len(s) >= 7 && strings.EqualFold(s[:7], "#EXTINF") {
		if idx := strings.IndexByte(s, ','); idx != -1 {
			s = s[idx+1:]
		}
	}

	s = strings.ToLower(strings.TrimSpace(s))
	s = qualitySuffixRegex.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if !lastWasSpace {
			b.WriteByte(' ')
			lastWasSpace = true
		}
	}

	return strings.TrimSpace(b.String())
}

// IsMeaningful reports whether a normalized name is specific enough to use
// as a deduplication key: longer than 3 characters and not one of the
// generic placeholder names.
func IsMeaningful(normalized string) bool {
	return len(normalized) > 3 && !genericNames[normalized]
}
