// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoring

import (
	"strings"

	"grimm.is/dnsadvisor/internal/features"
	"grimm.is/dnsadvisor/internal/state"
)

const (
	positiveBiasStep = 0.5
	negativeBiasStep = 0.2
	minDomainBias    = -1.0
)

// Statistical scores a query by how far its features sit from their running
// means, shifted by a per-domain bias learned from feedback.
type Statistical struct {
	stats      map[string]*RunningStat
	domainBias Table
	threshold  float64
}

// NewStatistical returns an untrained model.
func NewStatistical(zscoreThreshold float64) *Statistical {
	return &Statistical{
		stats:      make(map[string]*RunningStat),
		domainBias: make(Table),
		threshold:  zscoreThreshold,
	}
}

// Score averages the absolute z-scores of features that have at least two
// samples and non-zero spread, adds the domain bias, divides by the z-score
// threshold and clamps to [0, 1]. With no usable features the z part is 0.
func (s *Statistical) Score(v features.Vector, domain string) float64 {
	var sum float64
	n := 0
	v.Each(func(key string, value float64) {
		st, ok := s.stats[key]
		if !ok {
			return
		}
		if z, ok := st.AbsZScore(value); ok {
			sum += z
			n++
		}
	})

	avg := 0.0
	if n > 0 {
		avg = sum / float64(n)
	}
	combined := avg + s.domainBias.Get(strings.ToLower(domain))
	if s.threshold > 0 {
		combined /= s.threshold
	}
	return clamp01(combined)
}

// Observe folds every feature of v into its running statistic.
func (s *Statistical) Observe(v features.Vector) {
	v.Each(func(key string, value float64) {
		st, ok := s.stats[key]
		if !ok {
			st = &RunningStat{}
			s.stats[key] = st
		}
		st.Update(value)
	})
}

// ApplyFeedback moves the domain bias up by 0.5 for a positive label, or
// down by 0.2 with a floor of -1 for a negative one. The positive side is
// unbounded; Score clamps the result.
func (s *Statistical) ApplyFeedback(domain string, positive bool) {
	if domain == "" {
		return
	}
	key := strings.ToLower(domain)
	if positive {
		s.domainBias.Add(key, positiveBiasStep)
		return
	}
	s.domainBias[key] = max(minDomainBias, s.domainBias.Get(key)-negativeBiasStep)
}

// Update returns the current score and then applies feedback.
func (s *Statistical) Update(v features.Vector, domain string, positive bool) float64 {
	prev := s.Score(v, domain)
	s.ApplyFeedback(domain, positive)
	return prev
}

// Stat returns a copy of the running statistic for key.
func (s *Statistical) Stat(key string) (RunningStat, bool) {
	st, ok := s.stats[key]
	if !ok {
		return RunningStat{}, false
	}
	return *st, true
}

// DomainBias returns the learned bias for domain, 0 if none.
func (s *Statistical) DomainBias(domain string) float64 {
	return s.domainBias.Get(strings.ToLower(domain))
}

// Threshold is the z-score divisor in effect.
func (s *Statistical) Threshold() float64 {
	return s.threshold
}

type statisticalDoc struct {
	Stats           map[string]RunningStat `json:"stats"`
	DomainBias      Table                  `json:"domain_bias"`
	ZScoreThreshold *float64               `json:"zscore_threshold,omitempty"`
}

// LoadStatistical restores a model from path. A missing file yields a fresh
// model using zscoreThreshold; a stored threshold overrides it.
func LoadStatistical(path string, zscoreThreshold float64) (*Statistical, error) {
	m := NewStatistical(zscoreThreshold)

	var doc statisticalDoc
	found, err := state.Load(path, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return m, nil
	}

	for k, st := range doc.Stats {
		m.stats[k] = &st
	}
	for k, b := range doc.DomainBias {
		m.domainBias[k] = b
	}
	if doc.ZScoreThreshold != nil {
		m.threshold = *doc.ZScoreThreshold
	}
	return m, nil
}

// Save writes the model to path.
func (s *Statistical) Save(path string) error {
	doc := statisticalDoc{
		Stats:           make(map[string]RunningStat, len(s.stats)),
		DomainBias:      s.domainBias,
		ZScoreThreshold: &s.threshold,
	}
	for k, st := range s.stats {
		doc.Stats[k] = *st
	}
	return state.Save(path, doc)
}
