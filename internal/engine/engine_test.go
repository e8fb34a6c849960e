package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/enrich"
	"github.com/alorle/iptv-cleaner/internal/prober"
	"github.com/alorle/iptv-cleaner/internal/source"
)

// fakeProber reports alive for everything except links listed in dead.
type fakeProber struct {
	dead map[string]bool
}

func (f *fakeProber) Probe(ctx context.Context, url string) prober.Result {
	if f.dead[url] {
		return prober.Result{Alive: false}
	}
	return prober.Result{Alive: true}
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="one" group-title="Sports",Channel One
http://example.com/one.ts
#EXTINF:-1 tvg-id="two" group-title="News",Channel Two
http://example.com/two.ts
#EXTINF:-1 tvg-id="three" group-title="Sports",Channel Three
http://example.com/three.ts
`

func newTestEngine(t *testing.T, dead map[string]bool) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "playlist.m3u")
	if err := os.WriteFile(path, []byte(samplePlaylist), 0o644); err != nil {
		t.Fatal(err)
	}
	resolver := source.New(http.DefaultClient, dir)
	return New(resolver, &fakeProber{dead: dead}, silentLogger()), path
}

func TestRunProducesReportAndSurvivors(t *testing.T) {
	e, path := newTestEngine(t, map[string]bool{"http://example.com/two.ts": true})

	survivors, report, err := e.Run(context.Background(), []string{path}, false, Options{
		Dedup:          true,
		MaxConcurrency: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.OriginalCount != 3 {
		t.Errorf("OriginalCount = %d, want 3", report.OriginalCount)
	}
	if report.TotalAfterDedupe != 3 {
		t.Errorf("TotalAfterDedupe = %d, want 3", report.TotalAfterDedupe)
	}
	if report.WorkingCount != 2 {
		t.Errorf("WorkingCount = %d, want 2", report.WorkingCount)
	}
	if report.DoublesRemoved != 0 {
		t.Errorf("DoublesRemoved = %d, want 0", report.DoublesRemoved)
	}
	if report.GroupCount != 1 {
		t.Errorf("GroupCount = %d, want 1 (only Sports survives)", report.GroupCount)
	}
	if len(survivors) != 2 {
		t.Fatalf("len(survivors) = %d, want 2", len(survivors))
	}
	if survivors[0].Name != "Channel One" || survivors[1].Name != "Channel Three" {
		t.Errorf("unexpected survivors: %+v", survivors)
	}
}

func TestRunSkipValidationKeepsEverything(t *testing.T) {
	e, path := newTestEngine(t, map[string]bool{"http://example.com/two.ts": true})

	survivors, report, err := e.Run(context.Background(), []string{path}, false, Options{
		SkipValidation: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 3 {
		t.Fatalf("len(survivors) = %d, want 3", len(survivors))
	}
	if report.WorkingCount != 3 {
		t.Errorf("WorkingCount = %d, want 3", report.WorkingCount)
	}
}

func TestRunAppliesOverrides(t *testing.T) {
	e, path := newTestEngine(t, nil)

	disabled := false
	overrides := &enrich.File{
		ByLink: map[string]enrich.Override{
			"http://example.com/two.ts": {Enabled: &disabled},
		},
	}

	survivors, report, err := e.Run(context.Background(), []string{path}, false, Options{
		SkipValidation: true,
		Overrides:      overrides,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 2 {
		t.Fatalf("len(survivors) = %d, want 2 after override drop", len(survivors))
	}
	if report.TotalAfterDedupe != 2 {
		t.Errorf("TotalAfterDedupe = %d, want 2", report.TotalAfterDedupe)
	}
}

func TestRunMergesMultipleSources(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.m3u")
	pathB := filepath.Join(dir, "b.m3u")
	if err := os.WriteFile(pathA, []byte(samplePlaylist), 0o644); err != nil {
		t.Fatal(err)
	}
	second := `#EXTM3U
#EXTINF:-1 tvg-id="four" group-title="Movies",Channel Four
http://example.com/four.ts
`
	if err := os.WriteFile(pathB, []byte(second), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(source.New(http.DefaultClient, dir), &fakeProber{}, silentLogger())

	survivors, report, err := e.Run(context.Background(), []string{pathA, pathB}, true, Options{
		SkipValidation: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.OriginalCount != 4 {
		t.Errorf("OriginalCount = %d, want 4", report.OriginalCount)
	}
	if len(survivors) != 4 {
		t.Errorf("len(survivors) = %d, want 4", len(survivors))
	}
}

func TestRunWithoutMergeUsesOnlyFirstSource(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.m3u")
	pathB := filepath.Join(dir, "b.m3u")
	if err := os.WriteFile(pathA, []byte(samplePlaylist), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pathB, []byte(samplePlaylist), 0o644); err != nil {
		t.Fatal(err)
	}

	e := New(source.New(http.DefaultClient, dir), &fakeProber{}, silentLogger())

	survivors, _, err := e.Run(context.Background(), []string{pathA, pathB}, false, Options{
		SkipValidation: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(survivors) != 3 {
		t.Errorf("len(survivors) = %d, want 3 (only first source used)", len(survivors))
	}
}

func TestSplitByGroupAndSortedGroupNames(t *testing.T) {
	channels := []channel.Channel{
		{GroupName: "News", Name: "A"},
		{GroupName: "Sports", Name: "B"},
		{GroupName: "", Name: "C"},
		{GroupName: "news", Name: "D"},
	}

	buckets := SplitByGroup(channels)
	if len(buckets["News"]) != 1 || len(buckets["news"]) != 1 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}

	names := SortedGroupNames(buckets)
	if len(names) != 4 {
		t.Fatalf("len(names) = %d, want 4", len(names))
	}
	if names[len(names)-1] != "" {
		t.Errorf("expected ungrouped bucket last, got %v", names)
	}
}

func TestRunAllSourcesFailReturnsError(t *testing.T) {
	dir := t.TempDir()
	e := New(source.New(http.DefaultClient, dir), &fakeProber{}, silentLogger())

	missing := filepath.Join(dir, "missing.m3u")
	survivors, report, err := e.Run(context.Background(), []string{missing}, false, Options{
		SkipValidation: true,
	})
	if err == nil {
		t.Fatal("expected an error when the only source fails to resolve")
	}
	if !errors.As(err, new(*source.ErrNotFound)) && !strings.Contains(err.Error(), missing) {
		t.Errorf("expected error to reference the failed source, got: %v", err)
	}
	if survivors != nil {
		t.Errorf("expected nil survivors, got %d", len(survivors))
	}
	if report != (Report{}) {
		t.Errorf("expected zero-value report, got %+v", report)
	}
}

func TestRunMergeModeJoinsAllSourceErrors(t *testing.T) {
	dir := t.TempDir()
	e := New(source.New(http.DefaultClient, dir), &fakeProber{}, silentLogger())

	missingA := filepath.Join(dir, "missing-a.m3u")
	missingB := filepath.Join(dir, "missing-b.m3u")
	_, _, err := e.Run(context.Background(), []string{missingA, missingB}, true, Options{
		SkipValidation: true,
	})
	if err == nil {
		t.Fatal("expected an error when every merged source fails to resolve")
	}
	if !strings.Contains(err.Error(), missingA) || !strings.Contains(err.Error(), missingB) {
		t.Errorf("expected joined error to mention both failed sources, got: %v", err)
	}
}
