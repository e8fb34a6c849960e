// Package engine composes the cleaning pipeline — parse, dedup, enrich,
// probe — into the single operation the CLI drives; the CLI writes the
// returned survivors itself.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/dedup"
	"github.com/alorle/iptv-cleaner/internal/enrich"
	"github.com/alorle/iptv-cleaner/internal/playlist"
	"github.com/alorle/iptv-cleaner/internal/scheduler"
	"github.com/alorle/iptv-cleaner/internal/source"
	"github.com/alorle/iptv-cleaner/internal/telemetry"
)

// Report summarizes the outcome of a single cleaning run.
type Report struct {
	WorkingCount     int
	TotalAfterDedupe int
	DoublesRemoved   int
	OriginalCount    int
	GroupCount       int
}

// Options configures a single Run.
type Options struct {
	Dedup          bool
	SkipValidation bool
	MaxConcurrency int
	Overrides      *enrich.File
	OnProgress     func(scheduler.Progress)
}

// Engine wires together the source resolver and prober shared across a
// run's sources.
type Engine struct {
	resolver *source.Resolver
	prober   scheduler.Prober
	logger   *slog.Logger
}

// New builds an Engine. p is typically a *prober.Prober, but accepting the
// scheduler's narrow interface keeps the engine testable without a real
// network-probing dependency.
func New(resolver *source.Resolver, p scheduler.Prober, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{resolver: resolver, prober: p, logger: logger}
}

// Run resolves each source, parses it, optionally merges them into one
// working set, deduplicates, applies enrichment/overrides, probes, and
// returns the surviving channels plus a Final Report. It never returns an
// error for probe-level failures (those are absorbed into the report) or
// for a source that parses to zero channels (spec's non-fatal
// ParseEmpty). A source that fails to resolve (SourceNotFound,
// InvalidSourceUrl) or download (DownloadFailed) is fatal: Run stops
// before any further pipeline stage and returns the joined source errors,
// so the caller can map them to a process exit code.
func (e *Engine) Run(ctx context.Context, sources []string, merge bool, opts Options) ([]channel.Channel, Report, error) {
	jobID := uuid.NewString()
	logger := e.logger.With("job_id", jobID)

	var allChannels []channel.Channel
	originalCount := 0
	var srcErrs []error

	for _, src := range sources {
		text, err := e.resolver.Resolve(src)
		if err != nil {
			logger.Error("failed to resolve source", "source", src, "error", err)
			srcErrs = append(srcErrs, fmt.Errorf("resolving source %q: %w", src, err))
			continue
		}

		parsed, err := playlist.Parse(text)
		if err != nil {
			logger.Error("failed to parse source", "source", src, "error", err)
			srcErrs = append(srcErrs, fmt.Errorf("parsing source %q: %w", src, err))
			continue
		}

		logger.Info("parsed source", "source", src, "channel_count", len(parsed))
		originalCount += len(parsed)

		if merge {
			allChannels = append(allChannels, parsed...)
		} else {
			allChannels = parsed
			break
		}
	}

	if len(srcErrs) > 0 {
		return nil, Report{}, errors.Join(srcErrs...)
	}

	if len(allChannels) == 0 {
		logger.Warn("parser produced zero channels", "sources", sources)
	}

	allChannels = channel.Renumber(allChannels)
	telemetry.ChannelsParsed.Set(float64(len(allChannels)))

	doublesRemoved := 0
	if opts.Dedup {
		result := dedup.Remove(allChannels)
		allChannels = result.Channels
		doublesRemoved = result.Removed
	}
	telemetry.ChannelsDeduped.Set(float64(doublesRemoved))

	allChannels = enrichChannels(allChannels)
	if opts.Overrides != nil {
		allChannels = opts.Overrides.Apply(allChannels)
	}

	totalAfterDedupe := len(allChannels)

	survivors := allChannels
	if !opts.SkipValidation {
		survivors = scheduler.Run(ctx, allChannels, e.prober, opts.MaxConcurrency, opts.OnProgress)
	}

	report := Report{
		WorkingCount:     len(survivors),
		TotalAfterDedupe: totalAfterDedupe,
		DoublesRemoved:   doublesRemoved,
		OriginalCount:    originalCount,
		GroupCount:       groupCount(survivors),
	}

	return survivors, report, nil
}

// enrichChannels fills in each channel's Category and Language from its
// group/display name, replacing any value already present. The overrides
// pass runs after this one and does not touch either field.
func enrichChannels(channels []channel.Channel) []channel.Channel {
	out := make([]channel.Channel, len(channels))
	for i, ch := range channels {
		ch.Category = enrich.Category(ch.GroupName, ch.Name)
		ch.Language = enrich.Language(ch.GroupName, ch.Name)
		out[i] = ch
	}
	return out
}

func groupCount(channels []channel.Channel) int {
	seen := map[string]bool{}
	for _, ch := range channels {
		key := strings.ToLower(strings.TrimSpace(ch.GroupName))
		if key == "" {
			continue
		}
		seen[key] = true
	}
	return len(seen)
}

// SplitByGroup partitions channels into ordered buckets keyed by group
// name, for `-split` output. Channels with no group name are collected
// under the empty-string key.
func SplitByGroup(channels []channel.Channel) map[string][]channel.Channel {
	buckets := map[string][]channel.Channel{}
	for _, ch := range channels {
		buckets[ch.GroupName] = append(buckets[ch.GroupName], ch)
	}
	return buckets
}

// SortedGroupNames returns the keys of a SplitByGroup result in stable,
// case-insensitive alphabetical order, with the ungrouped bucket ("") last.
func SortedGroupNames(buckets map[string][]channel.Channel) []string {
	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "" {
			return false
		}
		if names[j] == "" {
			return true
		}
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
	return names
}
