// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoring

import "math"

// Welford's Algorithm: https://en.wikipedia.org/wiki/Algorithms_for_calculating_variance#Welford's_online_algorithm

// RunningStat tracks the mean and variance of one feature without keeping
// history.
type RunningStat struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"` // sum of squared differences from the mean
}

// Update folds value into the running statistics.
func (s *RunningStat) Update(value float64) {
	s.Count++
	delta := value - s.Mean
	s.Mean += delta / float64(s.Count)
	s.M2 += delta * (value - s.Mean)
}

// Variance is the sample variance, or 0 with fewer than two samples.
func (s *RunningStat) Variance() float64 {
	if s.Count < 2 {
		return 0
	}
	return s.M2 / float64(s.Count-1)
}

func (s *RunningStat) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// AbsZScore returns |value-mean|/stddev and false when the statistic cannot
// produce one (fewer than two samples or zero spread).
func (s *RunningStat) AbsZScore(value float64) (float64, bool) {
	if s.Count < 2 {
		return 0, false
	}
	sd := s.StdDev()
	if sd == 0 {
		return 0, false
	}
	return math.Abs(value-s.Mean) / sd, true
}
