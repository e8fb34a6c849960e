package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Timeout != 10 || cfg.Concurrency != 10 || !cfg.Dedup {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Resilience.CBFailureThreshold != 0 {
		t.Errorf("expected breaker disabled by default (threshold 0), got %d", cfg.Resilience.CBFailureThreshold)
	}
}

func TestClampConcurrency(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {-5, 1}, {1, 1}, {50, 50}, {51, 50}, {1000, 50}, {25, 25},
	}
	for _, tt := range tests {
		cfg := &Config{Concurrency: tt.in}
		cfg.ClampConcurrency()
		if cfg.Concurrency != tt.want {
			t.Errorf("ClampConcurrency(%d) = %d, want %d", tt.in, cfg.Concurrency, tt.want)
		}
	}
}

func TestParseBoolFlag(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"false", false}, {"f", false}, {"0", false}, {"no", false},
		{"true", true}, {"t", true}, {"1", true}, {"yes", true}, {"", true},
	}
	for _, tt := range tests {
		if got := ParseBoolFlag(tt.in); got != tt.want {
			t.Errorf("ParseBoolFlag(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
concurrency: 20
dedup: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Concurrency != 20 {
		t.Errorf("expected concurrency overridden to 20, got %d", cfg.Concurrency)
	}
	if cfg.Dedup {
		t.Errorf("expected dedup overridden to false")
	}
	if cfg.Timeout != 10 {
		t.Errorf("expected unset Timeout to keep default 10, got %d", cfg.Timeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
