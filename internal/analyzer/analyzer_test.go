// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package analyzer

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

var t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

type recordingSink struct {
	verdicts []Verdict
	err      error
}

func (s *recordingSink) Record(v Verdict) error {
	s.verdicts = append(s.verdicts, v)
	return s.err
}

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Output: &bytes.Buffer{}, Level: logging.LevelError})
}

func repeat(domain, client string, n int, step time.Duration) []dnslog.Query {
	out := make([]dnslog.Query, n)
	for i := range out {
		out[i] = dnslog.Query{Timestamp: t0.Add(time.Duration(i) * step), Client: client, Domain: domain, QType: "A"}
	}
	return out
}

func TestNewRequiresConfigAndScorer(t *testing.T) {
	_, err := New(Options{Scorer: scoring.NewLinear(nil)})
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))

	_, err = New(Options{Config: config.Default()})
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
}

func TestStatisticalObservesEveryQuery(t *testing.T) {
	model := scoring.NewStatistical(2.5)
	a, err := New(Options{Config: config.Default(), Scorer: model, Logger: quietLogger()})
	require.NoError(t, err)

	qs := append(repeat("a.example", "10.0.0.1", 3, time.Minute),
		dnslog.Query{Timestamp: t0.Add(time.Hour), Client: "10.0.0.2", Domain: "b.example"})
	res, err := a.Run(qs)
	require.NoError(t, err)

	for _, k := range features.Keys {
		st, ok := model.Stat(k)
		require.True(t, ok, k)
		assert.EqualValues(t, 4, st.Count, k)
	}
	assert.Equal(t, 4, res.Summary.Total)
	assert.Equal(t, 0, res.Summary.Learned)
	assert.Nil(t, res.Candidates, "no policy state supplied")
	assert.Equal(t, 2, a.Profiler().Len())
}

func TestFeedbackLearningAndPromotion(t *testing.T) {
	mc := clock.NewMockClock(t0.Add(time.Hour))

	model := scoring.NewStatistical(2.5)
	pol := policy.New()
	fb := feedback.Build([]feedback.Entry{{Domain: "EVIL.tk", Label: "block"}})

	a, err := New(Options{
		Config:   config.Default(),
		Scorer:   model,
		Feedback: fb,
		Policy:   pol,
		Learn:    true,
		Clock:    mc,
		Logger:   quietLogger(),
	})
	require.NoError(t, err)

	qs := repeat("evil.tk", "10.0.0.9", 5, time.Minute)

	first, err := a.Process(qs[0])
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.Score, "label is applied after scoring")
	assert.Equal(t, DecisionAllow, first.Decision)
	assert.True(t, first.Learned)
	assert.True(t, first.Label)

	second, err := a.Process(qs[1])
	require.NoError(t, err)
	assert.InDelta(t, 0.2, second.Score, 1e-9)

	for _, q := range qs[2:] {
		_, err := a.Process(q)
		require.NoError(t, err)
	}
	res := a.Finish()

	assert.Equal(t, 5, res.Summary.Learned)
	assert.Equal(t, 2.5, model.DomainBias("evil.tk"))
	assert.Equal(t, 5, pol.Confirmations["evil.tk"])
	assert.Equal(t, mc.Now().Format(time.RFC3339Nano), pol.LastSeen["evil.tk"])
	assert.Equal(t, []string{"evil.tk"}, res.Candidates)

	require.NotEmpty(t, res.Items)
	last := res.Items[len(res.Items)-1]
	assert.Equal(t, DecisionRecommend, last.Decision)
	assert.Equal(t, qs[4].Timestamp, last.Query.Timestamp)
	assert.Equal(t, res.Summary.Recommended, len(res.Items))
}

func TestLearningDisabledIgnoresFeedback(t *testing.T) {
	model := scoring.NewOnlineLogistic(0.1)
	pol := policy.New()
	fb := feedback.Build([]feedback.Entry{{Domain: "evil.tk", Label: "block"}})

	a, err := New(Options{
		Config: config.Default(), Scorer: model, Feedback: fb, Policy: pol, Logger: quietLogger(),
	})
	require.NoError(t, err)

	res, err := a.Run(repeat("evil.tk", "10.0.0.9", 3, time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Summary.Learned)
	assert.Equal(t, 0.0, model.Bias())
	assert.Empty(t, pol.Confirmations)
	assert.Equal(t, []string{}, res.Candidates)
}

func TestLogisticLearnsFromClientSpecificLabel(t *testing.T) {
	cfg := config.Default()
	cfg.DecisionThreshold = 0.5
	model := scoring.NewOnlineLogistic(0.1)
	laptop := "10.0.0.9"
	fb := feedback.Build([]feedback.Entry{
		{Domain: "x.example", Client: &laptop, Label: "malicious"},
		{Domain: "x.example", Label: "allow"},
	})

	a, err := New(Options{Config: cfg, Scorer: model, Feedback: fb, Learn: true, Logger: quietLogger()})
	require.NoError(t, err)

	v1, err := a.Process(dnslog.Query{Timestamp: t0, Client: laptop, Domain: "x.example"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, v1.Score)
	assert.Equal(t, DecisionRecommend, v1.Decision, "score equal to threshold recommends")
	assert.True(t, v1.Label)

	v2, err := a.Process(dnslog.Query{Timestamp: t0.Add(time.Minute), Client: laptop, Domain: "x.example"})
	require.NoError(t, err)
	assert.Greater(t, v2.Score, v1.Score)

	v3, err := a.Process(dnslog.Query{Timestamp: t0.Add(2 * time.Minute), Client: "10.0.0.10", Domain: "x.example"})
	require.NoError(t, err)
	assert.False(t, v3.Label, "other clients fall back to the domain-wide label")
}

func TestLinearScorerBurst(t *testing.T) {
	cfg := config.Default()
	cfg.BurstThreshold = 2
	cfg.ModelType = string(scoring.KindLinear)
	model := scoring.NewLinear(map[string]float64{features.KeyBurst: 1})

	a, err := New(Options{Config: cfg, Scorer: model, Logger: quietLogger()})
	require.NoError(t, err)

	res, err := a.Run(repeat("chatty.example", "10.0.0.3", 3, time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Recommended)
	for _, v := range res.Items {
		assert.True(t, v.Flags.Burst)
		assert.Equal(t, 1.0, v.Score)
	}
}

func TestOutOfOrderFailsFast(t *testing.T) {
	a, err := New(Options{Config: config.Default(), Scorer: scoring.NewStatistical(2.5), Logger: quietLogger()})
	require.NoError(t, err)

	qs := []dnslog.Query{
		{Timestamp: t0.Add(time.Minute), Client: "c", Domain: "a.example"},
		{Timestamp: t0.Add(time.Minute), Client: "c", Domain: "b.example"},
		{Timestamp: t0, Client: "c", Domain: "late.example"},
	}
	_, err = a.Run(qs)
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
	assert.Equal(t, 2, errors.GetAttributes(err)["index"])
	assert.Equal(t, "late.example", errors.GetAttributes(err)["domain"])
	assert.Equal(t, 2, a.Summary().Total)
}

func TestFinishDecaysPolicy(t *testing.T) {
	mc := clock.NewMockClock(t0)

	pol := policy.New()
	pol.Confirmations["stale.example"] = 3
	pol.LastSeen["stale.example"] = t0.AddDate(0, 0, -40).Format(time.RFC3339)
	pol.Confirmations["fresh.example"] = 3
	pol.LastSeen["fresh.example"] = t0.AddDate(0, 0, -2).Format(time.RFC3339)

	a, err := New(Options{
		Config: config.Default(), Scorer: scoring.NewStatistical(2.5), Policy: pol, Clock: mc, Logger: quietLogger(),
	})
	require.NoError(t, err)

	res := a.Finish()
	assert.Equal(t, []string{"fresh.example"}, res.Candidates)
	assert.Equal(t, 2, pol.Confirmations["stale.example"])
}

func TestSinkAndMetrics(t *testing.T) {
	sink := &recordingSink{err: fmt.Errorf("disk full")}
	m := metrics.New()
	cfg := config.Default()
	cfg.RareTLDs = []string{"tk"}

	a, err := New(Options{Config: cfg, Scorer: scoring.NewStatistical(2.5), Sink: sink, Metrics: m, Logger: quietLogger()})
	require.NoError(t, err)

	res, err := a.Run([]dnslog.Query{
		{Timestamp: t0, Client: "c", Domain: "a.example"},
		{Timestamp: t0.Add(time.Second), Client: "c", Domain: "b.tk"},
	})
	require.NoError(t, err, "sink errors do not abort the run")
	assert.Len(t, sink.verdicts, 2)
	assert.Equal(t, 2, res.Summary.Total)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Queries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Flags.WithLabelValues(features.KeyRareTLD)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Flags.WithLabelValues(features.KeyNewTLD)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TrackedClients))
}
