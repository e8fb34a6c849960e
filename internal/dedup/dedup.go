// Package dedup removes duplicate channels by normalized link and normalized
// display name, the second cleaning stage after parsing.
package dedup

import (
	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/normalize"
)

// Result carries the deduplicated channel list alongside how many entries
// were dropped, the count the Final Report surfaces as "doubles removed".
type Result struct {
	Channels []channel.Channel
	Removed  int
}

// Remove drops duplicate channels using two equality sets — normalized link
// and normalized display name — preserving the order of survivors. It runs
// in O(N).
//
// A name collision rolls back the link reservation of the entry it evicts,
// so a later channel sharing only that link with the rolled-back entry is
// not spuriously treated as a duplicate.
func Remove(channels []channel.Channel) Result {
	linkSeen := make(map[string]bool, len(channels))
	nameSeen := make(map[string]bool, len(channels))

	out := make([]channel.Channel, 0, len(channels))
	removed := 0

	for _, ch := range channels {
		link := normalize.URL(ch.Link)
		name := normalize.Name(ch.Name)

		if linkSeen[link] {
			removed++
			continue
		}
		linkSeen[link] = true

		meaningful := normalize.IsMeaningful(name)
		if meaningful && nameSeen[name] {
			delete(linkSeen, link)
			removed++
			continue
		}

		if meaningful {
			nameSeen[name] = true
		}

		out = append(out, ch)
	}

	return Result{Channels: channel.Renumber(out), Removed: removed}
}
