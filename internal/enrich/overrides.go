package enrich

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/normalize"
)

// Override holds optional metadata overrides for a single channel. A nil
// field means "not configured"; a pointer to an empty string means
// "explicitly cleared".
type Override struct {
	Enabled    *bool   `yaml:"enabled,omitempty"`
	TvgID      *string `yaml:"tvg_id,omitempty"`
	TvgName    *string `yaml:"tvg_name,omitempty"`
	TvgLogo    *string `yaml:"tvg_logo,omitempty"`
	GroupTitle *string `yaml:"group_title,omitempty"`
}

// File is a YAML overrides document keyed by normalized channel link or
// normalized channel name — whichever a given entry chooses to key on is
// resolved by trying the link first.
type File struct {
	ByLink map[string]Override `yaml:"by_link,omitempty"`
	ByName map[string]Override `yaml:"by_name,omitempty"`
}

// LoadFile reads and parses an overrides YAML file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overrides file %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing overrides file %s: %w", path, err)
	}
	return &f, nil
}

// Apply overlays configured overrides onto channels, matching each
// channel by normalized link first, then by normalized name. A channel
// matched with Enabled explicitly false is dropped from the result.
// Applying overrides only ever touches metadata fields — never Link
// itself — matching this pass's place between the Deduplicator and the
// Probe Scheduler.
func (f *File) Apply(channels []channel.Channel) []channel.Channel {
	if f == nil {
		return channels
	}

	out := make([]channel.Channel, 0, len(channels))
	for _, ch := range channels {
		override, ok := f.lookup(ch)
		if !ok {
			out = append(out, ch)
			continue
		}
		if override.Enabled != nil && !*override.Enabled {
			continue
		}
		out = append(out, applyOverride(ch, override))
	}
	return channel.Renumber(out)
}

func (f *File) lookup(ch channel.Channel) (Override, bool) {
	if o, ok := f.ByLink[normalize.URL(ch.Link)]; ok {
		return o, true
	}
	if o, ok := f.ByName[normalize.Name(ch.Name)]; ok {
		return o, true
	}
	return Override{}, false
}

func applyOverride(ch channel.Channel, o Override) channel.Channel {
	if o.TvgID != nil {
		ch.TvgID = *o.TvgID
	}
	if o.TvgName != nil {
		ch.TvgName = *o.TvgName
	}
	if o.TvgLogo != nil {
		ch.TvgLogo = *o.TvgLogo
	}
	if o.GroupTitle != nil {
		ch.GroupName = *o.GroupTitle
	}
	return ch
}
