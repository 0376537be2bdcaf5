// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package scoring

import (
	"math"

	"grimm.is/dnsadvisor/internal/features"
	"grimm.is/dnsadvisor/internal/state"
)

// OnlineLogistic is a logistic regression trained by one SGD step per
// labelled example.
type OnlineLogistic struct {
	weights      Table
	bias         float64
	learningRate float64
}

// NewOnlineLogistic returns a model with zero weights and bias.
func NewOnlineLogistic(learningRate float64) *OnlineLogistic {
	return &OnlineLogistic{weights: make(Table), learningRate: learningRate}
}

// Score returns sigmoid(bias + Σ w·x). Features without a weight contribute
// nothing. The domain is not used.
func (m *OnlineLogistic) Score(v features.Vector, _ string) float64 {
	z := m.bias
	v.Each(func(key string, value float64) {
		z += m.weights.Get(key) * value
	})
	return sigmoid(z)
}

// Update takes one gradient step toward the label and returns the
// prediction made before the step. Every key in v gets a weight, even if the
// step leaves it at zero.
func (m *OnlineLogistic) Update(v features.Vector, domain string, positive bool) float64 {
	pred := m.Score(v, domain)
	target := 0.0
	if positive {
		target = 1
	}
	step := m.learningRate * (target - pred)

	v.Each(func(key string, value float64) {
		m.weights.Add(key, step*value)
	})
	m.bias += step
	return pred
}

// Weight returns the weight for key and whether it has been materialized.
func (m *OnlineLogistic) Weight(key string) (float64, bool) {
	w, ok := m.weights[key]
	return w, ok
}

func (m *OnlineLogistic) Bias() float64         { return m.bias }
func (m *OnlineLogistic) LearningRate() float64 { return m.learningRate }

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

type logisticDoc struct {
	Weights      Table    `json:"weights"`
	Bias         float64  `json:"bias"`
	LearningRate *float64 `json:"learning_rate,omitempty"`
}

// LoadLogistic restores a model from path. A missing file yields a fresh
// model using learningRate; a stored learning rate overrides it.
func LoadLogistic(path string, learningRate float64) (*OnlineLogistic, error) {
	m := NewOnlineLogistic(learningRate)

	var doc logisticDoc
	found, err := state.Load(path, &doc)
	if err != nil {
		return nil, err
	}
	if !found {
		return m, nil
	}

	for k, w := range doc.Weights {
		m.weights[k] = w
	}
	m.bias = doc.Bias
	if doc.LearningRate != nil {
		m.learningRate = *doc.LearningRate
	}
	return m, nil
}

// Save writes the model to path.
func (m *OnlineLogistic) Save(path string) error {
	return state.Save(path, logisticDoc{
		Weights:      m.weights,
		Bias:         m.bias,
		LearningRate: &m.learningRate,
	})
}
