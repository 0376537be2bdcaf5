// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package features

import "time"

type burstKey struct {
	client string
	domain string
}

// BurstTracker keeps a sliding window of recent timestamps per
// (client, domain) pair. Callers must feed timestamps in non-decreasing
// order; windows are never re-sorted.
type BurstTracker struct {
	threshold int
	window    time.Duration
	windows   map[burstKey][]time.Time
}

// NewBurstTracker returns a tracker that reports a burst once threshold
// queries fall inside window.
func NewBurstTracker(threshold int, window time.Duration) *BurstTracker {
	return &BurstTracker{
		threshold: threshold,
		window:    window,
		windows:   make(map[burstKey][]time.Time),
	}
}

// IsBurst records ts for the pair and reports whether the window now holds at
// least threshold entries. Entries strictly older than the window, measured
// from ts, are evicted first.
func (b *BurstTracker) IsBurst(client, domain string, ts time.Time) bool {
	key := burstKey{client: client, domain: domain}
	w := append(b.windows[key], ts)

	drop := 0
	for drop < len(w) && ts.Sub(w[drop]) > b.window {
		drop++
	}
	if drop > 0 {
		// Compact in place so the backing array does not grow without bound.
		n := copy(w, w[drop:])
		w = w[:n]
	}
	b.windows[key] = w

	return len(w) >= b.threshold
}

// Prune forgets pairs whose newest entry is older than the window relative
// to now and returns how many were removed.
func (b *BurstTracker) Prune(now time.Time) int {
	removed := 0
	for key, w := range b.windows {
		if len(w) == 0 || now.Sub(w[len(w)-1]) > b.window {
			delete(b.windows, key)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked (client, domain) pairs.
func (b *BurstTracker) Len() int {
	return len(b.windows)
}
