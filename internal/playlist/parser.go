// Package playlist implements the forgiving M3U parser and the writer that
// renders a cleaned channel list back to Extended-M3U text.
package playlist

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/alorle/iptv-cleaner/internal/channel"
)

// ErrIO is returned when the input text cannot be read at all (as opposed to
// merely containing malformed entries, which are skipped silently).
var ErrIO = fmt.Errorf("playlist: unable to read source text")

var recognizedSchemes = map[string]bool{
	"http": true, "https": true, "rtmp": true, "rtsp": true,
	"mms": true, "mmsh": true, "rtp": true,
}

var rejectedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".ico": true, ".svg": true, ".webp": true, ".html": true, ".htm": true,
	".php": true, ".asp": true, ".aspx": true, ".jsp": true, ".css": true,
	".js": true, ".json": true, ".xml": true, ".txt": true, ".pdf": true,
	".doc": true, ".docx": true, ".zip": true, ".rar": true, ".7z": true,
	".tar": true, ".gz": true,
}

var rejectedHosts = map[string]bool{
	"localhost": true, "127.0.0.1": true, "0.0.0.0": true,
}

// recognizedAttrKeys is the set of lowercased EXTINF attribute keys the
// parser handles itself; anything else lands in ExtraAttributes.
var recognizedAttrKeys = map[string]bool{
	"tvg-id": true, "tvg-name": true, "tvg-logo": true,
	"group-title": true, "x-tvg-url": true, "url-tvg": true,
}

// maxURLLookahead bounds how many lines past an #EXTINF directive the
// parser will scan looking for its URL line, per spec.
const maxURLLookahead = 5

// Parse converts M3U/M3U8 text into an ordered slice of Channels, skipping
// malformed entries silently. It never fails except when text cannot be
// split into lines at all (practically unreachable for a Go string, but the
// ErrIO contract exists for callers that feed it from an io.Reader that
// errored before ever reaching here).
func Parse(text string) ([]channel.Channel, error) {
	if text == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")

	globalEPG := ""
	firstNonEmpty := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstNonEmpty = i
			break
		}
	}
	if firstNonEmpty != -1 && strings.HasPrefix(strings.TrimSpace(lines[firstNonEmpty]), "#EXTM3U") {
		globalEPG = extractAttr(lines[firstNonEmpty], "x-tvg-url")
		if globalEPG == "" {
			globalEPG = extractAttr(lines[firstNonEmpty], "url-tvg")
		}
	}

	var out []channel.Channel

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if line == "" {
			continue
		}

		if !strings.HasPrefix(strings.ToUpper(line), "#EXTINF") {
			continue
		}

		entry, consumed := parseEntry(lines, i, globalEPG)
		if entry != nil {
			entry.ID = len(out)
			out = append(out, *entry)
		}
		i += consumed
	}

	return out, nil
}

// parseEntry parses a single #EXTINF block starting at lines[start] and
// returns the resulting Channel (nil if no valid URL was found) plus how
// many extra lines beyond lines[start] were consumed.
func parseEntry(lines []string, start int, globalEPG string) (*channel.Channel, int) {
	extinf := lines[start]

	attrs, displayFromAttrs := parseExtinfAttrs(extinf)

	name := displayName(extinf)
	if name == "" {
		name = attrs["tvg-name"]
	}
	if name == "" {
		name = extinf
	}
	_ = displayFromAttrs

	groupName := attrs["group-title"]
	epgURL := attrs["x-tvg-url"]
	if epgURL == "" {
		epgURL = attrs["url-tvg"]
	}
	if epgURL == "" {
		epgURL = globalEPG
	}

	extra := map[string]string{}
	for k, v := range attrs {
		if recognizedAttrKeys[k] {
			continue
		}
		extra[k] = v
	}

	limit := start + maxURLLookahead
	if limit >= len(lines) {
		limit = len(lines) - 1
	}

	for j := start + 1; j <= limit; j++ {
		line := strings.TrimSpace(lines[j])

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXTGRP:") {
			groupName = strings.TrimSpace(strings.TrimPrefix(line, "#EXTGRP:"))
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		candidate := strings.Trim(line, `"'`)
		if !validStreamURL(candidate) {
			// Not a usable URL line; this EXTINF entry has no stream.
			return nil, j - start
		}

		ch := channel.Channel{
			Name:            name,
			Link:            candidate,
			GroupName:       groupName,
			TvgID:           attrs["tvg-id"],
			TvgName:         attrs["tvg-name"],
			TvgLogo:         attrs["tvg-logo"],
			EPGUrl:          epgURL,
			ExtraAttributes: extra,
		}
		return &ch, j - start
	}

	return nil, limit - start
}

// displayName extracts the text following the first comma of an EXTINF
// directive line, the free-form display name.
func displayName(extinf string) string {
	if !strings.HasPrefix(strings.ToUpper(extinf), "#EXTINF") {
		return ""
	}
	idx := strings.IndexByte(extinf, ',')
	if idx == -1 {
		return ""
	}
	return strings.TrimSpace(extinf[idx+1:])
}

// parseExtinfAttrs hand-scans an EXTINF line for key="value" attributes,
// stopping at the first comma (the start of the display name; a comma inside
// a quoted value also ends the scan), per
// spec.md §9's preference for a cursor scan over a regex-heavy decode.
func parseExtinfAttrs(line string) (map[string]string, bool) {
	attrs := map[string]string{}

	commaIdx := strings.IndexByte(line, ',')
	head := line
	if commaIdx != -1 {
		head = line[:commaIdx]
	}

	i := 0
	n := len(head)
	for i < n {
		for i < n && (head[i] == ' ' || head[i] == '\t') {
			i++
		}
		keyStart := i
		for i < n && head[i] != '=' && head[i] != ' ' {
			i++
		}
		if i >= n || head[i] != '=' {
			i++
			continue
		}
		key := strings.ToLower(head[keyStart:i])
		i++ // skip '='
		if i >= n || head[i] != '"' {
			continue
		}
		i++ // skip opening quote
		valStart := i
		for i < n && head[i] != '"' {
			i++
		}
		if i >= n {
			break
		}
		value := head[valStart:i]
		i++ // skip closing quote
		if key != "" {
			attrs[key] = value
		}
	}

	return attrs, commaIdx != -1
}

// extractAttr pulls a single key="value" attribute out of a header line
// such as "#EXTM3U x-tvg-url=\"...\"".
func extractAttr(line, key string) string {
	attrs, _ := parseExtinfAttrs(line + ",")
	return attrs[strings.ToLower(key)]
}

// validStreamURL reports whether candidate is an absolute URL with a
// recognized scheme, a plausible host, and a path that doesn't look like a
// non-media asset.
func validStreamURL(candidate string) bool {
	if candidate == "" {
		return false
	}

	u, err := url.Parse(candidate)
	if err != nil || !u.IsAbs() {
		return false
	}

	if !recognizedSchemes[strings.ToLower(u.Scheme)] {
		return false
	}

	host := u.Hostname()
	if len(host) < 3 || rejectedHosts[strings.ToLower(host)] {
		return false
	}

	path := strings.ToLower(u.Path)
	for ext := range rejectedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	return true
}
