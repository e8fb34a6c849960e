// Package telemetry exposes the run's Prometheus counters and gauges. This
// is a one-shot CLI, not a server, so metrics are never scraped over HTTP —
// they are dumped as text to stderr at the end of a run when `-v` is set.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChannelsParsed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_cleaner_channels_parsed",
		Help: "Number of channels produced by the parser for the current run",
	})

	ChannelsDeduped = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_cleaner_channels_deduped_total",
		Help: "Number of duplicate channels removed for the current run",
	})

	ProbesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_cleaner_probes_in_flight",
		Help: "Number of stream probes currently awaiting a response",
	})

	ProbesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_cleaner_probes_total",
		Help: "Total number of stream probes completed",
	})

	ProbesAlive = promauto.NewCounter(prometheus.CounterOpts{
		Name: "iptv_cleaner_probes_alive_total",
		Help: "Total number of stream probes that confirmed a live stream",
	})

	ProbeRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_cleaner_probe_retries_total",
		Help: "Total number of probe retry attempts, by host",
	}, []string{"host"})

	// CircuitBreakerState tracks the current per-host breaker state:
	// 0=closed, 1=open, 2=half-open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_cleaner_circuit_breaker_state",
		Help: "Current state of the per-host probe circuit breaker",
	}, []string{"host"})

	CircuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_cleaner_circuit_breaker_trips_total",
		Help: "Total number of times a host's circuit breaker transitioned to OPEN",
	}, []string{"host"})
)

// SetCircuitBreakerState records a breaker's current state for host.
func SetCircuitBreakerState(host, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(host).Set(value)
}

// RecordCircuitBreakerTrip increments the trip counter for host.
func RecordCircuitBreakerTrip(host string) {
	CircuitBreakerTrips.WithLabelValues(host).Inc()
}

// RecordProbeRetry increments the retry counter for host.
func RecordProbeRetry(host string) {
	ProbeRetries.WithLabelValues(host).Inc()
}

// RecordProbeResult increments the total/alive probe counters for a
// completed probe.
func RecordProbeResult(alive bool) {
	ProbesTotal.Inc()
	if alive {
		ProbesAlive.Inc()
	}
}
