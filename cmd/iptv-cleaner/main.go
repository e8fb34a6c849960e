package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/cliexit"
	"github.com/alorle/iptv-cleaner/internal/config"
	"github.com/alorle/iptv-cleaner/internal/engine"
	"github.com/alorle/iptv-cleaner/internal/enrich"
	"github.com/alorle/iptv-cleaner/internal/logging"
	"github.com/alorle/iptv-cleaner/internal/playlist"
	"github.com/alorle/iptv-cleaner/internal/prober"
	"github.com/alorle/iptv-cleaner/internal/scheduler"
	"github.com/alorle/iptv-cleaner/internal/source"
	"github.com/alorle/iptv-cleaner/internal/telemetry"
)

// srcFlag collects repeated -src occurrences into a slice.
type srcFlag []string

func (s *srcFlag) String() string { return strings.Join(*s, ",") }
func (s *srcFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		sources        srcFlag
		dest           = flag.String("dest", "", "output path; parent created if missing")
		timeoutSec     = flag.Int("timeout", 0, "per-request total timeout in seconds")
		concurrency    = flag.Int("c", 0, "max concurrent probes, clamped to [1, 50]")
		dedupFlag      = flag.String("rd", "", "enable dedup (false forms: false, f, 0, no)")
		skipValidation = flag.Bool("skip-validation", false, "skip probing, keep all parsed channels")
		merge          = flag.Bool("merge", false, "concatenate multiple sources into one working set")
		split          = flag.Bool("split", false, "write one output file per group")
		verbose        = flag.Bool("v", false, "verbose error output")
		configPath     = flag.String("config", "", "optional YAML config file supplying defaults")
		overridesPath  = flag.String("overrides", "", "optional YAML channel overrides file")
	)
	flag.Var(&sources, "src", "source playlist path or URL (repeatable)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "iptv-cleaner: loading config: %v\n", err)
			return cliexit.Failure
		}
		cfg = loaded
	}

	if len(sources) > 0 {
		cfg.Sources = sources
	}
	if *dest != "" {
		cfg.Dest = *dest
	}
	if *timeoutSec != 0 {
		cfg.Timeout = *timeoutSec
	}
	if *concurrency != 0 {
		cfg.Concurrency = *concurrency
	}
	if *dedupFlag != "" {
		cfg.Dedup = config.ParseBoolFlag(*dedupFlag)
	}
	cfg.SkipValidation = cfg.SkipValidation || *skipValidation
	cfg.Merge = cfg.Merge || *merge
	cfg.Split = cfg.Split || *split
	cfg.Verbose = cfg.Verbose || *verbose
	if *overridesPath != "" {
		cfg.OverridesFile = *overridesPath
	}
	cfg.ClampConcurrency()

	if len(cfg.Sources) == 0 {
		fmt.Fprintln(os.Stderr, "iptv-cleaner: at least one -src is required")
		return cliexit.Failure
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	resLevel := logging.INFO
	if cfg.Verbose {
		resLevel = logging.DEBUG
	}
	resLogger := logging.New(resLevel, "resilience")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("shutdown signal received, cancelling in-flight work")
		cancel()
	}()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout()}

	var overrides *enrich.File
	if cfg.OverridesFile != "" {
		loaded, err := enrich.LoadFile(cfg.OverridesFile)
		if err != nil {
			logger.Error("loading overrides file", "error", err)
			return cliexit.Failure
		}
		overrides = loaded
	}

	p := prober.New(prober.Config{
		Client:             httpClient,
		CBFailureThreshold: cfg.Resilience.CBFailureThreshold,
		CBCooldown:         cfg.Resilience.CBCooldown,
		ResilienceLogger:   resLogger,
	})
	resolver := source.New(httpClient, "")
	eng := engine.New(resolver, p, logger)

	start := time.Now()
	survivors, report, err := eng.Run(ctx, cfg.Sources, cfg.Merge, engine.Options{
		Dedup:          cfg.Dedup,
		SkipValidation: cfg.SkipValidation,
		MaxConcurrency: cfg.Concurrency,
		Overrides:      overrides,
		OnProgress:     progressLogger(logger),
	})
	if err != nil {
		logger.Error("pipeline failed", "error", err, "kind", cliexit.Classify(err))
		return cliexit.Code(err)
	}

	logger.Info("pipeline complete",
		"duration", time.Since(start).String(),
		"original_count", report.OriginalCount,
		"total_after_dedupe", report.TotalAfterDedupe,
		"doubles_removed", report.DoublesRemoved,
		"working_count", report.WorkingCount,
		"group_count", report.GroupCount,
	)

	if cfg.Verbose {
		if dumpErr := telemetry.Dump(os.Stderr); dumpErr != nil {
			logger.Warn("dumping telemetry", "error", dumpErr)
		}
	}

	if writeErr := writeOutput(cfg, survivors); writeErr != nil {
		logger.Error("writing output", "error", writeErr)
		return cliexit.Failure
	}

	if ctx.Err() != nil {
		return cliexit.CancelledBySignal
	}
	return cliexit.Success
}

// progressLogger adapts scheduler progress snapshots into structured log
// lines at the rate the scheduler already throttles them to.
func progressLogger(logger *slog.Logger) func(scheduler.Progress) {
	return func(p scheduler.Progress) {
		logger.Info("probe progress",
			"percent", p.Percent,
			"working", p.Working,
			"not_working", p.NotWorking,
			"total", p.Total,
			"activity", p.ActivityLabel,
		)
	}
}

// writeOutput renders the cleaned playlist to cfg.Dest, or to one file per
// group under cfg.Dest's directory when -split is set.
func writeOutput(cfg *config.Config, channels []channel.Channel) error {
	dest := cfg.Dest
	if dest == "" {
		dest = defaultDest(cfg.Sources[0])
	}
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	if !cfg.Split {
		return os.WriteFile(dest, []byte(playlist.Write(channels)), 0o644)
	}

	buckets := engine.SplitByGroup(channels)
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for _, group := range engine.SortedGroupNames(buckets) {
		name := group
		if name == "" {
			name = "ungrouped"
		}
		path := fmt.Sprintf("%s-%s%s", base, sanitizeFilename(name), ext)
		if err := os.WriteFile(path, []byte(playlist.Write(buckets[group])), 0o644); err != nil {
			return fmt.Errorf("writing group %q: %w", group, err)
		}
	}
	return nil
}

func defaultDest(firstSource string) string {
	base := filepath.Base(firstSource)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)
	return filepath.Join(os.TempDir(), base+"-Cleaned.m3u")
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "group"
	}
	return b.String()
}
