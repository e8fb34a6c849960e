// Package normalize implements the pure URL and display-name canonicalization
// rules the deduplicator keys on. Every function here is side-effect free.
package normalize

import (
	"sort"
	"strings"
)

// trackingPrefixes lists the lowercased prefixes of query parameters that
// are considered noise for equality purposes: session identifiers, cache
// busters, and analytics tags that vary per request without changing the
// actual stream.
var trackingPrefixes = []string{
	"utm_", "session", "sid=", "token=", "t=", "ts=", "timestamp=",
	"_=", "random=", "r=", "cache=", "nocache=",
}

// URL canonicalizes a stream link for equality comparison: case-folds it,
// strips a trailing slash (from the path too when a query follows), drops tracking query parameters and sorts the
// rest, folds default ports, and drops a "www." host prefix.
func URL(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	s = strings.TrimSuffix(s, "/")

	if idx := strings.IndexByte(s, '?'); idx != -1 {
		base := strings.TrimSuffix(s[:idx], "/")
		query := s[idx+1:]
		s = base + withFilteredQuery(query)
	}

	s = strings.ReplaceAll(s, ":80/", "/")
	s = strings.ReplaceAll(s, ":443/", "/")
	s = strings.ReplaceAll(s, "://www.", "://")

	return s
}

// withFilteredQuery strips tracking parameters from a raw (already
// lowercased) query string, sorts the remainder, and returns it prefixed
// with "?" — or "" if nothing survives.
func withFilteredQuery(query string) string {
	if query == "" {
		return ""
	}

	parts := strings.Split(query, "&")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || isTrackingParam(p) {
			continue
		}
		kept = append(kept, p)
	}

	if len(kept) == 0 {
		return ""
	}

	sort.Strings(kept)
	return "?" + strings.Join(kept, "&")
}

func isTrackingParam(param string) bool {
	for _, prefix := range trackingPrefixes {
		if strings.HasPrefix(param, prefix) {
			return true
		}
	}
	return false
}
