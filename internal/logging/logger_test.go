package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"INFO", INFO},
		{"WARN", WARN},
		{"warn", WARN},
		{"ERROR", ERROR},
		{"invalid", INFO},
		{"", INFO},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{Level(999), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.expected)
			}
		})
	}
}

func TestLoggerFiltering(t *testing.T) {
	tests := []struct {
		name         string
		logLevel     Level
		logFunc      func(*Logger)
		shouldAppear bool
	}{
		{"debug at debug level", DEBUG, func(l *Logger) { l.Debug("test", nil) }, true},
		{"debug at info level", INFO, func(l *Logger) { l.Debug("test", nil) }, false},
		{"info at info level", INFO, func(l *Logger) { l.Info("test", nil) }, true},
		{"info at warn level", WARN, func(l *Logger) { l.Info("test", nil) }, false},
		{"warn at warn level", WARN, func(l *Logger) { l.Warn("test", nil) }, true},
		{"warn at error level", ERROR, func(l *Logger) { l.Warn("test", nil) }, false},
		{"error at error level", ERROR, func(l *Logger) { l.Error("test", nil) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewWithWriter(tt.logLevel, "", buf)
			tt.logFunc(logger)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.shouldAppear {
				t.Errorf("output presence = %v, want %v. Output: %q", hasOutput, tt.shouldAppear, buf.String())
			}
		})
	}
}

func TestLoggerPrefix(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(INFO, "[prober]", buf)
	logger.Info("test message", nil)

	if !strings.Contains(buf.String(), "[prober]") {
		t.Errorf("output missing prefix: %q", buf.String())
	}
}

func TestLoggerFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(INFO, "", buf)
	logger.Info("test message", map[string]any{"host": "example.com", "attempt": 2})

	output := buf.String()
	for _, want := range []string{"test message", "host=example.com", "attempt=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %q", want, output)
		}
	}
}

func TestLogProbeRetry(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(INFO, "", buf)
	logger.LogProbeRetry("example.com", 2, "connection reset")

	output := buf.String()
	for _, want := range []string{"INFO", "probe retry", "event=probe_retry", "host=example.com", "attempt=2", "reason=connection reset"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %q", want, output)
		}
	}
}

func TestLogCircuitBreakerChange(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(INFO, "", buf)
	logger.LogCircuitBreakerChange("example.com", "CLOSED", "OPEN")

	output := buf.String()
	for _, want := range []string{"WARN", "circuit breaker state changed", "host=example.com", "oldState=CLOSED", "newState=OPEN"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %q", want, output)
		}
	}
}

func TestLogCircuitOpenSkipRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewWithWriter(INFO, "", buf)
	logger.LogCircuitOpenSkip("example.com")

	if buf.Len() != 0 {
		t.Errorf("expected DEBUG-level event suppressed at INFO, got %q", buf.String())
	}
}
