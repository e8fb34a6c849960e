package prober

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/alorle/iptv-cleaner/internal/channel"
)

// errorSignatureRegex matches the leading bytes of an HTML/XML error page
// masquerading as a stream response.
var errorSignatureRegex = regexp.MustCompile(`(?is)^\s*(<!DOCTYPE|<html|<\?xml.*<html|404|403|error)`)

var errorTextMarkers = []string{"not found", "access denied"}

// recognizedContentTypes is the media-type allowlist used when byte
// sniffing is inconclusive.
var recognizedContentTypes = map[string]bool{
	"video/mp2t": true, "video/mp4": true, "video/mpeg": true,
	"video/x-mpegurl": true, "video/x-ms-asf": true, "video/x-msvideo": true,
	"video/x-flv": true, "video/webm": true, "video/3gpp": true, "video/quicktime": true,
	"audio/mpeg": true, "audio/aac": true, "audio/mp4": true,
	"audio/x-mpegurl": true, "audio/x-scpls": true,
	"application/vnd.apple.mpegurl": true, "application/x-mpegurl": true,
	"application/dash+xml": true, "application/octet-stream": true, "binary/octet-stream": true,
}

// codecTagPrefixes maps an HLS CODECS= tag prefix (case-insensitive) to a
// human codec label.
var codecTagPrefixes = []struct {
	prefix string
	label  string
}{
	{"avc1", "H.264"}, {"hvc1", "HEVC"}, {"hev1", "HEVC"},
	{"vp9", "VP9"}, {"av01", "AV1"}, {"mp4a", "AAC"},
	{"ac-3", "AC3"}, {"opus", "Opus"},
}

// isErrorPage reports whether buf looks like an HTML/XML error page rather
// than media.
func isErrorPage(buf []byte) bool {
	prefix := buf
	if len(prefix) > 2048 {
		prefix = prefix[:2048]
	}
	if errorSignatureRegex.Match(prefix) {
		return true
	}
	lower := strings.ToLower(string(prefix))
	for _, marker := range errorTextMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// hasMediaMagic checks the buffer's leading bytes against known stream
// container/frame signatures.
func hasMediaMagic(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if buf[0] == 0x47 {
		return true // MPEG-TS sync byte
	}
	if len(buf) >= 3 && string(buf[:3]) == "ID3" {
		return true // ID3v2 tag
	}
	if len(buf) >= 2 && buf[0] == 0xFF && (buf[1]&0xE0) == 0xE0 {
		return true // MP3 frame sync
	}
	if len(buf) >= 2 && buf[0] == 0xFF && (buf[1]&0xF0) == 0xF0 {
		return true // AAC ADTS sync
	}
	if len(buf) >= 3 && string(buf[:3]) == "FLV" {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(string(buf)), "#EXTM3U") {
		return true // HLS/DASH manifest
	}
	return false
}

// mostlyBinary reports whether more than 10% of the first 100 bytes are
// non-printable (excluding CR/LF/TAB), a weak signal of a raw media stream
// whose container wasn't otherwise recognized.
func mostlyBinary(buf []byte) bool {
	n := len(buf)
	if n > 100 {
		n = 100
	}
	if n == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range buf[:n] {
		if b < 0x20 && b != '\r' && b != '\n' && b != '\t' {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(n) > 0.10
}

// magicCodecLabel returns the fallback codec/kind label implied by the
// sniffed magic bytes, used when no richer CODECS= tag was available.
func magicCodecLabel(buf []byte) (video, audio string) {
	switch {
	case len(buf) > 0 && buf[0] == 0x47:
		return "MPEG-TS", ""
	case len(buf) >= 2 && buf[0] == 0xFF && (buf[1]&0xE0) == 0xE0:
		return "", "MP3"
	case len(buf) >= 2 && buf[0] == 0xFF && (buf[1]&0xF0) == 0xF0:
		return "", "AAC"
	case len(buf) >= 3 && string(buf[:3]) == "FLV":
		return "FLV", ""
	case len(buf) >= 3 && string(buf[:3]) == "ID3":
		return "", "MP3/AAC"
	default:
		return "", ""
	}
}

var (
	resolutionRegex = regexp.MustCompile(`(?i)RESOLUTION=(\d+)x(\d+)`)
	bandwidthRegex  = regexp.MustCompile(`(?i)BANDWIDTH=(\d+)`)
	codecsRegex     = regexp.MustCompile(`(?i)CODECS="([^"]*)"`)
)

// extractManifestInfo pulls best-effort StreamInfo out of an HLS/DASH
// manifest body.
func extractManifestInfo(body []byte) channel.StreamInfo {
	var info channel.StreamInfo

	if m := resolutionRegex.FindSubmatch(body); m != nil {
		if w, err := strconv.Atoi(string(m[1])); err == nil {
			info.Width = w
		}
		if h, err := strconv.Atoi(string(m[2])); err == nil {
			info.Height = h
		}
	}
	if m := bandwidthRegex.FindSubmatch(body); m != nil {
		if bw, err := strconv.Atoi(string(m[1])); err == nil {
			info.Bitrate = bw
		}
	}
	if m := codecsRegex.FindSubmatch(body); m != nil {
		for _, tag := range bytes.Split(m[1], []byte(",")) {
			tag = bytes.TrimSpace(tag)
			lower := strings.ToLower(string(tag))
			for _, ct := range codecTagPrefixes {
				if !strings.HasPrefix(lower, ct.prefix) {
					continue
				}
				switch ct.label {
				case "AAC", "AC3", "Opus":
					if info.AudioCodec == "" {
						info.AudioCodec = ct.label
					}
				default:
					if info.VideoCodec == "" {
						info.VideoCodec = ct.label
					}
				}
			}
		}
	}

	return info
}
