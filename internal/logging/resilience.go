package logging

import "time"

// ResilienceEvent identifies a specific kind of recovery/failure event
// emitted while probing streams.
type ResilienceEvent string

const (
	EventProbeRetry           ResilienceEvent = "probe_retry"
	EventCircuitBreakerChange ResilienceEvent = "circuit_breaker_change"
	EventCircuitOpenSkip      ResilienceEvent = "circuit_open_skip"
)

// LogProbeRetry logs a single retry attempt for a host's probe (INFO level).
func (l *Logger) LogProbeRetry(host string, attempt int, reason string) {
	l.Info("probe retry", map[string]any{
		"event":     EventProbeRetry,
		"host":      host,
		"attempt":   attempt,
		"reason":    reason,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// LogCircuitBreakerChange logs a per-host circuit breaker state transition
// (WARN level).
func (l *Logger) LogCircuitBreakerChange(host, oldState, newState string) {
	l.Warn("circuit breaker state changed", map[string]any{
		"event":     EventCircuitBreakerChange,
		"host":      host,
		"oldState":  oldState,
		"newState":  newState,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// LogCircuitOpenSkip logs a probe retry skipped because its host's circuit
// is open (DEBUG level — this is expected steady-state behavior, not a
// surprise).
func (l *Logger) LogCircuitOpenSkip(host string) {
	l.Debug("probe skipped, circuit open", map[string]any{
		"event":     EventCircuitOpenSkip,
		"host":      host,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
