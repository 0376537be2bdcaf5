// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoring

import "grimm.is/dnsadvisor/internal/features"

// Linear is a fixed-weight scorer configured by hand. It never learns.
type Linear struct {
	weights Table
}

// NewLinear copies weights into a new scorer.
func NewLinear(weights map[string]float64) *Linear {
	t := make(Table, len(weights))
	for k, w := range weights {
		t[k] = w
	}
	return &Linear{weights: t}
}

// Score returns Σ w·x clamped to [0, 1].
func (l *Linear) Score(v features.Vector, _ string) float64 {
	var sum float64
	v.Each(func(key string, value float64) {
		sum += l.weights.Get(key) * value
	})
	return clamp01(sum)
}

// Update returns the current score. Weights are constant.
func (l *Linear) Update(v features.Vector, domain string, _ bool) float64 {
	return l.Score(v, domain)
}
