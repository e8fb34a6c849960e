package playlist

import (
	"fmt"
	"strings"

	"github.com/alorle/iptv-cleaner/internal/channel"
)

// attrOrder fixes the order recognized attributes appear in when rendering
// an EXTINF line, matching the order most IPTV players expect.
var attrOrder = []string{"tvg-id", "tvg-name", "tvg-logo", "tvg-language", "group-title"}

// Write renders channels back to Extended-M3U text. The first non-empty EPG
// URL among the channels (if any) is hoisted onto the #EXTM3U header; per spec this is a lossy
// "first wins" choice when multiple source playlists disagree on it.
func Write(channels []channel.Channel) string {
	var b strings.Builder

	header := "#EXTM3U"
	if epg := firstEPGUrl(channels); epg != "" {
		header += fmt.Sprintf(` x-tvg-url="%s"`, epg)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	for _, ch := range channels {
		writeEntry(&b, ch)
	}

	return b.String()
}

func writeEntry(b *strings.Builder, ch channel.Channel) {
	b.WriteString("#EXTINF:-1")

	attrs := map[string]string{
		"tvg-id":       ch.TvgID,
		"tvg-name":     ch.TvgName,
		"tvg-logo":     ch.TvgLogo,
		"tvg-language": ch.Language,
		"group-title":  ch.GroupName,
	}
	wroteGroupTitle := false
	for _, key := range attrOrder {
		if v := attrs[key]; v != "" {
			fmt.Fprintf(b, ` %s="%s"`, key, escapeAttr(v))
			if key == "group-title" {
				wroteGroupTitle = true
			}
		}
	}
	for _, key := range sortedKeys(ch.ExtraAttributes) {
		if v := ch.ExtraAttributes[key]; v != "" {
			fmt.Fprintf(b, ` %s="%s"`, key, escapeAttr(v))
		}
	}

	b.WriteByte(',')
	if strings.HasPrefix(strings.ToUpper(ch.Name), "#EXTINF") {
		b.WriteString(ch.Name)
	} else {
		b.WriteString(ch.DisplayName())
	}
	b.WriteByte('\n')

	// group-title is always written above when GroupName is set, so this
	// fires only if a future change stops always emitting the attribute.
	if ch.GroupName != "" && !wroteGroupTitle {
		b.WriteString("#EXTGRP:")
		b.WriteString(ch.GroupName)
		b.WriteByte('\n')
	}

	b.WriteString(ch.Link)
	b.WriteByte('\n')
}

func firstEPGUrl(channels []channel.Channel) string {
	for _, ch := range channels {
		if ch.EPGUrl != "" {
			return ch.EPGUrl
		}
	}
	return ""
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
