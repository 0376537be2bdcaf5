// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package policy accumulates operator confirmations per domain and nominates
// domains for long-term blocking. Nominations are advisory only.
package policy

import (
	"maps"
	"slices"
	"strings"
	"time"

	"grimm.is/dnsadvisor/internal/state"
)

// zone-less layouts written by older tooling; parsed as UTC
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// State holds confirmation counts and the time each domain was last labelled.
type State struct {
	Confirmations map[string]int    `json:"confirmations"`
	LastSeen      map[string]string `json:"last_seen"`
}

// New returns an empty State.
func New() *State {
	return &State{
		Confirmations: make(map[string]int),
		LastSeen:      make(map[string]string),
	}
}

// Update records one label for domain at now. A positive label adds a
// confirmation; a negative one removes one, never going below zero. The
// domain is matched case-insensitively; an empty domain is ignored.
func (s *State) Update(domain string, positive bool, now time.Time) {
	if domain == "" {
		return
	}
	key := strings.ToLower(domain)
	if positive {
		s.Confirmations[key]++
	} else {
		s.Confirmations[key] = max(0, s.Confirmations[key]-1)
	}
	s.LastSeen[key] = now.UTC().Format(time.RFC3339Nano)
}

// Decay removes one confirmation from every tracked domain whose last label
// is older than days before now. Unparsable timestamps are skipped. Decay
// is a no-op when days is not positive. Counts already at zero stay at zero.
// It returns the number of domains actually decremented.
func (s *State) Decay(now time.Time, days int) int {
	if days <= 0 {
		return 0
	}
	cutoff := now.AddDate(0, 0, -days)

	n := 0
	for domain, ts := range s.LastSeen {
		last, ok := parseTimestamp(ts)
		if !ok || !last.Before(cutoff) {
			continue
		}
		count, tracked := s.Confirmations[domain]
		if !tracked || count <= 0 {
			continue
		}
		s.Confirmations[domain] = count - 1
		n++
	}
	return n
}

// Candidates returns the domains with at least threshold confirmations,
// sorted.
func (s *State) Candidates(threshold int) []string {
	var out []string
	for _, domain := range slices.Sorted(maps.Keys(s.Confirmations)) {
		if s.Confirmations[domain] >= threshold {
			out = append(out, domain)
		}
	}
	return out
}

func parseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Load restores a State from path, or returns an empty one if the file does
// not exist.
func Load(path string) (*State, error) {
	s := New()
	found, err := state.Load(path, s)
	if err != nil {
		return nil, err
	}
	if !found {
		return s, nil
	}
	if s.Confirmations == nil {
		s.Confirmations = make(map[string]int)
	}
	if s.LastSeen == nil {
		s.LastSeen = make(map[string]string)
	}
	return s, nil
}

// Save writes the State to path.
func (s *State) Save(path string) error {
	return state.Save(path, s)
}
