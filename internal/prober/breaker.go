package prober

import (
	"sync"
	"time"

	"github.com/alorle/iptv-cleaner/internal/logging"
	"github.com/alorle/iptv-cleaner/internal/telemetry"
)

// breakerState mirrors the classic closed/open/half-open circuit breaker
// states, scoped here to a single host rather than a single upstream
// service.
type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "CLOSED"
	case stateOpen:
		return "OPEN"
	case stateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// hostBreaker guards the retry budget spent probing a single host: once a
// host has failed consecutively past its threshold, further retry attempts
// against it are skipped until the cooldown elapses.
// It never changes the alive/dead verdict of a probe that does run — it
// only decides whether a retry is attempted.
type hostBreaker struct {
	threshold int
	cooldown  time.Duration
	logger    *logging.Logger
	host      string

	mu           sync.Mutex
	state        breakerState
	failureCount int
	openedAt     time.Time
}

// newHostBreaker builds a breaker for host. threshold <= 0 disables it
// entirely (Allow always returns true).
func newHostBreaker(host string, threshold int, cooldown time.Duration, logger *logging.Logger) *hostBreaker {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &hostBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		logger:    logger,
		host:      host,
		state:     stateClosed,
	}
}

// Allow reports whether a probe attempt against this host may proceed.
func (b *hostBreaker) Allow() bool {
	if b.threshold <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateOpen && time.Since(b.openedAt) >= b.cooldown {
		b.transitionTo(stateHalfOpen)
	}

	if b.state == stateOpen {
		if b.logger != nil {
			b.logger.LogCircuitOpenSkip(b.host)
		}
		return false
	}
	return true
}

// RecordSuccess closes the circuit and clears the failure count.
func (b *hostBreaker) RecordSuccess() {
	if b.threshold <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.transitionTo(stateClosed)
}

// RecordFailure counts a failed attempt, opening the circuit once the
// configured threshold of consecutive failures is reached.
func (b *hostBreaker) RecordFailure() {
	if b.threshold <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		b.transitionTo(stateOpen)
		return
	}

	b.failureCount++
	if b.failureCount >= b.threshold {
		b.transitionTo(stateOpen)
	}
}

// transitionTo must be called with b.mu held.
func (b *hostBreaker) transitionTo(next breakerState) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next

	switch next {
	case stateOpen:
		b.openedAt = time.Now()
		telemetry.RecordCircuitBreakerTrip(b.host)
	case stateClosed:
		b.failureCount = 0
		b.openedAt = time.Time{}
	}

	telemetry.SetCircuitBreakerState(b.host, next.String())

	if b.logger != nil {
		b.logger.LogCircuitBreakerChange(b.host, prev.String(), next.String())
	}
}

// breakerRegistry lazily creates one hostBreaker per host, shared across
// all probes in a single scheduler run.
type breakerRegistry struct {
	threshold int
	cooldown  time.Duration
	logger    *logging.Logger

	mu       sync.Mutex
	breakers map[string]*hostBreaker
}

func newBreakerRegistry(threshold int, cooldown time.Duration, logger *logging.Logger) *breakerRegistry {
	return &breakerRegistry{
		threshold: threshold,
		cooldown:  cooldown,
		logger:    logger,
		breakers:  make(map[string]*hostBreaker),
	}
}

func (r *breakerRegistry) forHost(host string) *hostBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[host]
	if !ok {
		b = newHostBreaker(host, r.threshold, r.cooldown, r.logger)
		r.breakers[host] = b
	}
	return b
}
