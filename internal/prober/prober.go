// Package prober probes candidate stream URLs over HTTP to determine
// whether they are live, and opportunistically extracts stream metadata.
package prober

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/logging"
	"github.com/alorle/iptv-cleaner/internal/telemetry"
)

const (
	sniffSoftDeadline = 8 * time.Second
	sniffMinBytes     = 512
	sniffMaxBytes     = 4096
	sniffReadAttempts = 3
	sniffChunkSize    = 2048

	retryAttempts = 3
)

var retryDelays = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}

// Result is the outcome of probing a single URL.
type Result struct {
	Alive      bool
	StreamInfo channel.StreamInfo
}

// Prober probes candidate URLs, honoring a per-host circuit breaker so a
// consistently failing host doesn't keep burning the retry budget.
type Prober struct {
	client    *http.Client
	breakers  *breakerRegistry
	resLogger *logging.Logger
}

// Config configures a Prober.
type Config struct {
	Client *http.Client

	// CBFailureThreshold is the number of consecutive failures against a
	// host before its circuit opens and further retries to it are
	// skipped. <= 0 disables the breaker.
	CBFailureThreshold int
	CBCooldown         time.Duration

	ResilienceLogger *logging.Logger
}

// New builds a Prober from cfg, applying defaults for a nil/zero Config.
func New(cfg Config) *Prober {
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Prober{
		client:    client,
		breakers:  newBreakerRegistry(cfg.CBFailureThreshold, cfg.CBCooldown, cfg.ResilienceLogger),
		resLogger: cfg.ResilienceLogger,
	}
}

// Probe attempts to confirm candidateURL is a live stream, retrying
// transient failures up to three times total with short backoffs. It
// honors ctx cancellation at every await point and never returns an error:
// an unreachable or malformed stream simply yields Result{Alive: false}.
func (p *Prober) Probe(ctx context.Context, candidateURL string) Result {
	host := hostOf(candidateURL)
	breaker := p.breakers.forHost(host)

	var last Result
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if ctx.Err() != nil {
			return last
		}

		// The breaker only ever guards retry budget: attempt 0 always runs
		// so a host's circuit can never flip an otherwise-successful first
		// attempt to dead. Only attempts after a local failure can be
		// skipped once a host's circuit is open.
		if attempt > 0 && !breaker.Allow() {
			telemetry.RecordProbeResult(false)
			return last
		}

		telemetry.ProbesInFlight.Inc()
		res := p.attempt(ctx, candidateURL)
		telemetry.ProbesInFlight.Dec()

		if res.Alive {
			breaker.RecordSuccess()
			telemetry.RecordProbeResult(true)
			return res
		}
		breaker.RecordFailure()
		last = res

		if attempt < retryAttempts-1 {
			if p.resLogger != nil {
				p.resLogger.LogProbeRetry(host, attempt+1, "not alive")
			}
			telemetry.RecordProbeRetry(host)
			select {
			case <-ctx.Done():
				telemetry.RecordProbeResult(false)
				return last
			case <-time.After(retryDelays[attempt]):
			}
		}
	}
	telemetry.RecordProbeResult(false)
	return last
}

// attempt performs a single GET + sniff cycle against candidateURL.
func (p *Prober) attempt(ctx context.Context, candidateURL string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidateURL, nil)
	if err != nil {
		return Result{Alive: false}
	}
	req.Header.Set("User-Agent", "VLC/3.0.18 LibVLC/3.0.18")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Icy-MetaData", "1")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{Alive: false}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || resp.StatusCode == 204 {
		return Result{Alive: false}
	}

	buf, readErr := sniffBody(ctx, resp.Body)
	if readErr != nil && len(buf) == 0 {
		return Result{Alive: false}
	}
	if len(buf) == 0 {
		return Result{Alive: false}
	}

	if isErrorPage(buf) {
		return Result{Alive: false}
	}

	alive := hasMediaMagic(buf)
	if !alive {
		alive = mostlyBinary(buf)
	}
	if !alive {
		mediaType := mediaTypeOf(resp.Header.Get("Content-Type"))
		alive = recognizedContentTypes[mediaType]
	}
	if !alive {
		return Result{Alive: false}
	}

	info := streamInfoFrom(resp.Header, buf)
	return Result{Alive: true, StreamInfo: info}
}

// sniffBody reads up to sniffMaxBytes from body, stopping early once
// sniffMinBytes have arrived or sniffReadAttempts chunks have been read,
// all within a soft deadline measured from the first read.
func sniffBody(ctx context.Context, body interface {
	Read(p []byte) (int, error)
}) ([]byte, error) {
	deadline := time.Now().Add(sniffSoftDeadline)
	buf := make([]byte, 0, sniffMaxBytes)
	chunk := make([]byte, sniffChunkSize)

	for i := 0; i < sniffReadAttempts; i++ {
		if ctx.Err() != nil {
			return buf, ctx.Err()
		}
		if time.Now().After(deadline) {
			break
		}

		n, err := body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if len(buf) >= sniffMinBytes || len(buf) >= sniffMaxBytes {
			break
		}
		if err != nil {
			return buf, err
		}
	}

	return buf, nil
}

func mediaTypeOf(contentType string) string {
	if idx := strings.IndexByte(contentType, ';'); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// streamInfoFrom merges header-derived and body-derived stream metadata,
// preferring header values when both are present.
func streamInfoFrom(header http.Header, body []byte) channel.StreamInfo {
	var fromHeader channel.StreamInfo
	if br := header.Get("icy-br"); br != "" {
		if n, err := strconv.Atoi(br); err == nil {
			fromHeader.Bitrate = n * 1000
		}
	}

	var fromBody channel.StreamInfo
	if strings.HasPrefix(strings.TrimSpace(string(body)), "#EXTM3U") {
		fromBody = extractManifestInfo(body)
	} else {
		video, audio := magicCodecLabel(body)
		fromBody.VideoCodec = video
		fromBody.AudioCodec = audio
	}

	return fromHeader.Merge(fromBody)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
