// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package analyzer runs the per-query scoring and learning loop.
//
// For each query, in order: extract flags and features, score, turn the
// score into a decision, let the scorer observe the features, and, when
// learning is enabled and a feedback label exists, update the scorer and
// record the label in the policy state. Finish applies policy decay and
// returns the block candidates.
//
// An Analyzer is single-threaded and owns the state it is given for the
// duration of a run.
package analyzer

import (
	"time"

	"grimm.is/dnsadvisor/internal/clock"
	"grimm.is/dnsadvisor/internal/config"
	"grimm.is/dnsadvisor/internal/dnslog"
	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/features"
	"grimm.is/dnsadvisor/internal/feedback"
	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/metrics"
	"grimm.is/dnsadvisor/internal/policy"
	"grimm.is/dnsadvisor/internal/scoring"
)

// Decision is the advisory outcome for one query.
type Decision string

const (
	DecisionAllow     Decision = "allow"
	DecisionRecommend Decision = "recommend"
)

// Verdict is the result of processing one query.
type Verdict struct {
	Query    dnslog.Query
	Flags    features.Flags
	Features features.Vector
	Score    float64
	Decision Decision
	// Learned is set when a feedback label was applied; Label holds it.
	Learned bool
	Label   bool
}

// Summary counts a run.
type Summary struct {
	Total       int `json:"total"`
	Recommended int `json:"recommended"`
	Learned     int `json:"learned"`
}

// Result is everything a run produces for reporting.
type Result struct {
	Summary Summary
	// Items holds the recommended verdicts in query order.
	Items []Verdict
	// Candidates is nil when no policy state was supplied.
	Candidates []string
}

// Sink receives every verdict, e.g. for a persistent history.
type Sink interface {
	Record(v Verdict) error
}

// Options wires an Analyzer. Config and Scorer are required.
type Options struct {
	Config   *config.Config
	Scorer   scoring.Scorer
	Feedback *feedback.Map
	Policy   *policy.State
	// Learn enables scorer and policy updates from Feedback.
	Learn   bool
	Metrics *metrics.Metrics
	Sink    Sink
	Clock   clock.Clock
	Logger  *logging.Logger
}

// Analyzer processes a query stream.
type Analyzer struct {
	cfg       *config.Config
	scorer    scoring.Scorer
	observer  scoring.Observer
	feedback  *feedback.Map
	policy    *policy.State
	learn     bool
	metrics   *metrics.Metrics
	sink      Sink
	clock     clock.Clock
	logger    *logging.Logger
	profiler  *features.DeviceProfiler
	bursts    *features.BurstTracker
	extractor *features.Extractor

	last    time.Time
	summary Summary
	items   []Verdict
}

// New builds an Analyzer with fresh profiler and burst state.
func New(opts Options) (*Analyzer, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.KindValidation, "analyzer requires a config")
	}
	if opts.Scorer == nil {
		return nil, errors.New(errors.KindValidation, "analyzer requires a scorer")
	}

	a := &Analyzer{
		cfg:      opts.Config,
		scorer:   opts.Scorer,
		feedback: opts.Feedback,
		policy:   opts.Policy,
		learn:    opts.Learn,
		metrics:  opts.Metrics,
		sink:     opts.Sink,
		clock:    opts.Clock,
		logger:   opts.Logger,
		profiler: features.NewDeviceProfiler(),
		bursts:   features.NewBurstTracker(opts.Config.BurstThreshold, opts.Config.BurstWindow()),
	}
	a.observer, _ = opts.Scorer.(scoring.Observer)
	if a.clock == nil {
		a.clock = clock.Func(clock.Now)
	}
	if a.logger == nil {
		a.logger = logging.WithComponent("analyzer")
	}
	a.extractor = features.NewExtractor(features.Thresholds{
		Entropy:         opts.Config.EntropyThreshold,
		LongQueryLength: opts.Config.LongQueryLength,
		RareTLDs:        opts.Config.RareTLDs,
	}, a.profiler, a.bursts)
	return a, nil
}

// Process scores one query. Queries must arrive in non-decreasing timestamp
// order; an earlier timestamp than the previous query is a KindValidation
// error and leaves all state untouched.
func (a *Analyzer) Process(q dnslog.Query) (Verdict, error) {
	if !a.last.IsZero() && q.Timestamp.Before(a.last) {
		err := errors.Errorf(errors.KindValidation, "query timestamp %s precedes %s",
			q.Timestamp.Format(time.RFC3339), a.last.Format(time.RFC3339))
		err = errors.Attr(err, "domain", q.Domain)
		return Verdict{}, errors.Attr(err, "index", a.summary.Total)
	}
	a.last = q.Timestamp

	flags, vec := a.extractor.Extract(q)
	score := a.scorer.Score(vec, q.Domain)
	decision := DecisionAllow
	if score >= a.cfg.DecisionThreshold {
		decision = DecisionRecommend
	}

	if a.observer != nil {
		a.observer.Observe(vec)
	}

	v := Verdict{Query: q, Flags: flags, Features: vec, Score: score, Decision: decision}

	if a.learn {
		if positive, ok := a.feedback.Lookup(q.Domain, q.Client); ok {
			a.scorer.Update(vec, q.Domain, positive)
			if a.policy != nil {
				a.policy.Update(q.Domain, positive, a.clock.Now())
			}
			v.Learned, v.Label = true, positive
			a.summary.Learned++
			a.metrics.ObserveLabel(positive)
		}
	}

	a.summary.Total++
	if decision == DecisionRecommend {
		a.summary.Recommended++
		a.items = append(a.items, v)
	}
	a.metrics.ObserveVerdict(string(decision), score, flags.Active())

	if a.sink != nil {
		if err := a.sink.Record(v); err != nil {
			// history is best effort; scoring continues
			a.logger.Warn("failed to record verdict", "domain", q.Domain, "error", err)
		}
	}
	return v, nil
}

// Run processes queries in order and then calls Finish.
func (a *Analyzer) Run(queries []dnslog.Query) (*Result, error) {
	for _, q := range queries {
		if _, err := a.Process(q); err != nil {
			return nil, err
		}
	}
	return a.Finish(), nil
}

// Finish decays the policy state and collects candidates. It may be called
// once per run.
func (a *Analyzer) Finish() *Result {
	res := &Result{Summary: a.summary, Items: a.items}

	if a.policy != nil {
		now := a.clock.Now()
		decayed := a.policy.Decay(now, a.cfg.AutoPromoteDecayDays)
		res.Candidates = a.policy.Candidates(a.cfg.AutoPromoteAfter)
		if res.Candidates == nil {
			res.Candidates = []string{}
		}
		a.logger.Info("policy updated",
			"decayed", decayed,
			"candidates", len(res.Candidates),
			"auto_promote_after", a.cfg.AutoPromoteAfter)
	}

	a.metrics.SetState(len(res.Candidates), a.profiler.Len(), a.bursts.Len(), float64(a.clock.Now().Unix()))
	a.logger.Info("analysis complete",
		"total", a.summary.Total,
		"recommended", a.summary.Recommended,
		"learned", a.summary.Learned)
	return res
}

// Profiler exposes the per-client profiles built during the run.
func (a *Analyzer) Profiler() *features.DeviceProfiler {
	return a.profiler
}

// Summary returns the counters so far.
func (a *Analyzer) Summary() Summary {
	return a.summary
}
