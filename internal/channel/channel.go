// Package channel defines the core Channel value object shared by every
// pipeline stage.
package channel

// StreamInfo holds derived technical metadata about a stream, filled in
// only after a successful probe. Every field is individually optional.
type StreamInfo struct {
	Width      int
	Height     int
	Bitrate    int
	VideoCodec string
	AudioCodec string
}

// Merge returns a copy of s with any zero-valued field replaced by the
// corresponding field in other, preferring s's own value when both are set.
func (s StreamInfo) Merge(other StreamInfo) StreamInfo {
	out := s
	if out.Width == 0 {
		out.Width = other.Width
	}
	if out.Height == 0 {
		out.Height = other.Height
	}
	if out.Bitrate == 0 {
		out.Bitrate = other.Bitrate
	}
	if out.VideoCodec == "" {
		out.VideoCodec = other.VideoCodec
	}
	if out.AudioCodec == "" {
		out.AudioCodec = other.AudioCodec
	}
	return out
}

// IsZero reports whether no field of the StreamInfo has been populated.
func (s StreamInfo) IsZero() bool {
	return s == StreamInfo{}
}

// Channel is an immutable playlist entry. Every pipeline stage consumes one
// ordered slice of Channels and produces a fresh one rather than mutating
// in place.
type Channel struct {
	ID        int
	Name      string
	Link      string
	GroupName string

	TvgID   string
	TvgName string
	TvgLogo string
	EPGUrl  string

	ExtraAttributes map[string]string

	StreamInfo *StreamInfo

	Category    string
	Language    string
	ContentHash string
}

// WithID returns a copy of c with its ID replaced, the only field later
// stages are allowed to rewrite without otherwise touching the record.
func (c Channel) WithID(id int) Channel {
	c.ID = id
	return c
}

// Renumber rewrites the ID field of every channel to its 0..N-1 position,
// returning a fresh slice as required by the "id is rewritten by each stage
// that reorders" invariant.
func Renumber(channels []Channel) []Channel {
	out := make([]Channel, len(channels))
	for i, ch := range channels {
		out[i] = ch.WithID(i)
	}
	return out
}

// DisplayName returns the name that should appear after the comma on an
// EXTINF line: tvg-name if set, otherwise the channel's own Name.
func (c Channel) DisplayName() string {
	if c.TvgName != "" {
		return c.TvgName
	}
	return c.Name
}
