// Package scheduler fans a channel list out across a bounded pool of
// concurrent probes and reassembles the survivors in source order.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/alorle/iptv-cleaner/internal/channel"
	"github.com/alorle/iptv-cleaner/internal/prober"
)

// Progress is a point-in-time snapshot of scheduler progress, emitted
// throughout a run at a rate-limited cadence.
type Progress struct {
	Total         int
	Working       int
	NotWorking    int
	Percent       int
	ActivityLabel string
}

// Prober is the minimal probing dependency the scheduler needs; satisfied
// by *prober.Prober.
type Prober interface {
	Probe(ctx context.Context, url string) prober.Result
}

// Run filters channels down to those whose links probe alive, preserving
// input order among survivors. At most maxConcurrency probes run at once
// (clamped to [1, 50]). onProgress, if non-nil, is invoked serially at a
// rate-limited cadence (never concurrently).
//
// On context cancellation, Run returns whatever survivors have completed
// so far rather than an error — cancellation is cooperative, not a
// failure.
func Run(ctx context.Context, channels []channel.Channel, p Prober, maxConcurrency int, onProgress func(Progress)) []channel.Channel {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	if maxConcurrency > 50 {
		maxConcurrency = 50
	}

	total := len(channels)
	if total == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(int64(maxConcurrency))

	var (
		working    int64
		notWorking int64
		processed  int64

		mu        sync.Mutex
		survivors []indexed

		progressMu sync.Mutex
	)

	interval := progressInterval(total)

	var wg sync.WaitGroup
	for i, ch := range channels {
		i, ch := i, ch

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context canceled while waiting for a slot; nothing more to
			// schedule.
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result := p.Probe(ctx, ch.Link)

			if result.Alive {
				atomic.AddInt64(&working, 1)
				merged := ch
				merged.StreamInfo = &result.StreamInfo
				mu.Lock()
				survivors = append(survivors, indexed{index: i, channel: merged})
				mu.Unlock()
			} else {
				atomic.AddInt64(&notWorking, 1)
			}

			n := atomic.AddInt64(&processed, 1)
			if onProgress != nil && (int(n)%interval == 0 || int(n) == total) {
				progressMu.Lock()
				defer progressMu.Unlock()
				onProgress(Progress{
					Total:         total,
					Working:       int(atomic.LoadInt64(&working)),
					NotWorking:    int(atomic.LoadInt64(&notWorking)),
					Percent:       int(100 * n / int64(total)),
					ActivityLabel: ch.Name,
				})
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	sortByIndex(survivors)

	out := make([]channel.Channel, len(survivors))
	for i, s := range survivors {
		out[i] = s.channel
	}

	if onProgress != nil {
		onProgress(Progress{
			Total:      total,
			Working:    int(atomic.LoadInt64(&working)),
			NotWorking: int(atomic.LoadInt64(&notWorking)),
			Percent:    100,
		})
	}

	return out
}

type indexed struct {
	index   int
	channel channel.Channel
}

// sortByIndex is a small insertion sort; survivor counts per run are modest
// and this avoids importing sort for a single call site.
func sortByIndex(items []indexed) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j-1].index > items[j].index; j-- {
			items[j-1], items[j] = items[j], items[j-1]
		}
	}
}

// progressInterval returns how many processed items must elapse between
// progress reports, scaled to the total so huge playlists don't spam.
func progressInterval(total int) int {
	switch {
	case total < 20:
		return 1
	case total < 100:
		return 2
	case total < 500:
		return 5
	case total < 1000:
		return 10
	default:
		n := total / 100
		if n < 1 {
			n = 1
		}
		return n
	}
}
