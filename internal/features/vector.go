// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package features derives anomaly flags and numeric feature vectors from
// DNS queries.
package features

import "slices"

// Feature keys. Every Vector produced by the Extractor carries exactly these.
const (
	KeyEntropy = "entropy"
	KeyLength  = "length"
	KeyRareTLD = "rare_tld"
	KeyBurst   = "burst"
	KeyNewTLD  = "new_tld"
)

// Keys lists the feature keys in canonical order.
var Keys = []string{KeyEntropy, KeyLength, KeyRareTLD, KeyBurst, KeyNewTLD}

// Vector maps feature names to values. Booleans are encoded as 0 or 1.
type Vector map[string]float64

// Each calls fn for every present key, canonical keys first in Keys order,
// then any extra keys in sorted order. Fixed order keeps floating point sums
// reproducible between runs.
func (v Vector) Each(fn func(key string, value float64)) {
	seen := 0
	for _, k := range Keys {
		if val, ok := v[k]; ok {
			fn(k, val)
			seen++
		}
	}
	if seen == len(v) {
		return
	}
	for _, k := range sortedExtra(v) {
		fn(k, v[k])
	}
}

func sortedExtra(v Vector) []string {
	var extra []string
	for k := range v {
		if !isCanonical(k) {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	return extra
}

func isCanonical(k string) bool {
	return slices.Contains(Keys, k)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
