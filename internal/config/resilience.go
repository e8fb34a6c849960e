package config

import "time"

// ResilienceConfig centralizes the probe circuit breaker's tuning knobs.
type ResilienceConfig struct {
	// CBFailureThreshold is consecutive failed probe attempts against a
	// host before its circuit opens. <= 0 disables the breaker entirely.
	CBFailureThreshold int           `yaml:"cb_failure_threshold"`
	CBCooldown         time.Duration `yaml:"cb_cooldown"`
}

// DefaultResilience returns the circuit breaker disabled (threshold 0):
// probe verdicts stay a pure function of the URL, deadline, and HTTP
// client unless an operator opts into per-host retry throttling via
// `-config`. Five consecutive failures over thirty seconds is a
// reasonable starting point once opted in.
func DefaultResilience() ResilienceConfig {
	return ResilienceConfig{
		CBFailureThreshold: 0,
		CBCooldown:         30 * time.Second,
	}
}
