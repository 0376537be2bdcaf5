// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package scoring implements the online models that turn a feature vector
// into an anomaly probability and learn from operator feedback.
package scoring

import (
	"fmt"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/features"
)

// Scorer maps a feature vector to a score in [0, 1] and learns from labels.
type Scorer interface {
	// Score is a pure read of the current model.
	Score(v features.Vector, domain string) float64
	// Update learns from one labelled example and returns the score the
	// model produced before learning.
	Update(v features.Vector, domain string, positive bool) float64
}

// Observer is implemented by scorers that also learn the unlabelled feature
// distribution. Observe is called once per processed query.
type Observer interface {
	Observe(v features.Vector)
}

// Saver is implemented by scorers with persisted state.
type Saver interface {
	Save(path string) error
}

// Kind names a scoring backend.
type Kind string

const (
	KindStatistical    Kind = "statistical"
	KindOnlineLogistic Kind = "online_logistic"
	KindLinear         Kind = "linear"
)

// Kinds lists the supported backends.
var Kinds = []Kind{KindStatistical, KindOnlineLogistic, KindLinear}

// Params carries the configured defaults for a backend. Values stored in a
// persisted model take precedence over LearningRate and ZScoreThreshold.
type Params struct {
	LearningRate    float64
	ZScoreThreshold float64
	LinearWeights   map[string]float64
}

// Load builds the backend named by kind, restoring its state from path when
// the file exists. An empty path yields an in-memory model.
func Load(kind Kind, path string, p Params) (Scorer, error) {
	switch kind {
	case KindStatistical, "":
		return LoadStatistical(path, p.ZScoreThreshold)
	case KindOnlineLogistic:
		return LoadLogistic(path, p.LearningRate)
	case KindLinear:
		return NewLinear(p.LinearWeights), nil
	default:
		return nil, errors.Attr(
			errors.New(errors.KindValidation, fmt.Sprintf("unknown model type %q", kind)),
			"model_type", string(kind))
	}
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
