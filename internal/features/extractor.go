// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package features

import (
	"strings"

	"grimm.is/dnsadvisor/internal/dnslog"
)

// Flags are the boolean anomaly indicators for one query.
type Flags struct {
	Entropy bool `json:"entropy"`
	Length  bool `json:"length"`
	RareTLD bool `json:"rare_tld"`
	Burst   bool `json:"burst"`
	NewTLD  bool `json:"new_tld"`
}

// Active returns the names of the raised flags in canonical order.
func (f Flags) Active() []string {
	var out []string
	for _, k := range Keys {
		if f.get(k) {
			out = append(out, k)
		}
	}
	return out
}

// Any reports whether at least one flag is raised.
func (f Flags) Any() bool {
	return f.Entropy || f.Length || f.RareTLD || f.Burst || f.NewTLD
}

func (f Flags) get(key string) bool {
	switch key {
	case KeyEntropy:
		return f.Entropy
	case KeyLength:
		return f.Length
	case KeyRareTLD:
		return f.RareTLD
	case KeyBurst:
		return f.Burst
	case KeyNewTLD:
		return f.NewTLD
	}
	return false
}

// Thresholds configures flag extraction.
type Thresholds struct {
	Entropy         float64
	LongQueryLength int
	RareTLDs        []string
}

// Extractor computes flags and features, updating the profiler and burst
// tracker as a side effect.
type Extractor struct {
	entropy  float64
	long     int
	rare     map[string]struct{}
	profiler *DeviceProfiler
	bursts   *BurstTracker
}

// NewExtractor binds thresholds to the stateful trackers it drives.
func NewExtractor(th Thresholds, profiler *DeviceProfiler, bursts *BurstTracker) *Extractor {
	rare := make(map[string]struct{}, len(th.RareTLDs))
	for _, t := range th.RareTLDs {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			rare[t] = struct{}{}
		}
	}
	return &Extractor{
		entropy:  th.Entropy,
		long:     th.LongQueryLength,
		rare:     rare,
		profiler: profiler,
		bursts:   bursts,
	}
}

// Extract scores one query. It must be called once per query in timestamp
// order.
func (e *Extractor) Extract(q dnslog.Query) (Flags, Vector) {
	entropy := ShannonEntropy(q.Domain)
	tld := TLD(q.Domain)
	length := Length(q.Domain)

	isNew := e.profiler.Update(q.Client, tld, entropy)

	_, rare := e.rare[tld]
	flags := Flags{
		Entropy: entropy >= e.entropy,
		Length:  length >= e.long,
		RareTLD: tld != "" && rare,
		Burst:   e.bursts.IsBurst(q.Client, q.Domain, q.Timestamp),
		NewTLD:  isNew,
	}

	return flags, Vector{
		KeyEntropy: entropy,
		KeyLength:  float64(length),
		KeyRareTLD: boolValue(flags.RareTLD),
		KeyBurst:   boolValue(flags.Burst),
		KeyNewTLD:  boolValue(flags.NewTLD),
	}
}
