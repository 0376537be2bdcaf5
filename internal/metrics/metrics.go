// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package metrics exposes analyzer counters in Prometheus format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"grimm.is/dnsadvisor/internal/errors"
)

// Metrics holds the analyzer's collectors on a private registry. All
// methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	Queries   prometheus.Counter
	Decisions *prometheus.CounterVec
	Flags     *prometheus.CounterVec
	Labels    *prometheus.CounterVec
	Scores    prometheus.Histogram

	Candidates     prometheus.Gauge
	TrackedClients prometheus.Gauge
	BurstKeys      prometheus.Gauge
	LastRun        prometheus.Gauge
}

// New registers a fresh set of collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dnsadvisor_queries_total",
			Help: "DNS queries scored",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dnsadvisor_decisions_total",
			Help: "Scored queries by decision",
		}, []string{"decision"}),
		Flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dnsadvisor_flags_total",
			Help: "Anomaly flags raised, by flag",
		}, []string{"flag"}),
		Labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dnsadvisor_feedback_applied_total",
			Help: "Feedback labels learned from, by label",
		}, []string{"label"}),
		Scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dnsadvisor_score",
			Help:    "Distribution of anomaly scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		Candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnsadvisor_policy_candidates",
			Help: "Domains currently nominated for blocking",
		}),
		TrackedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnsadvisor_tracked_clients",
			Help: "Clients with a behavior profile",
		}),
		BurstKeys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnsadvisor_burst_windows",
			Help: "Active (client, domain) burst windows",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dnsadvisor_last_run_timestamp_seconds",
			Help: "Unix time the last analysis finished",
		}),
	}

	m.registry.MustRegister(
		m.Queries, m.Decisions, m.Flags, m.Labels, m.Scores,
		m.Candidates, m.TrackedClients, m.BurstKeys, m.LastRun,
	)
	return m
}

// Registry returns the registry holding m's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveVerdict records one scored query.
func (m *Metrics) ObserveVerdict(decision string, score float64, flags []string) {
	if m == nil {
		return
	}
	m.Queries.Inc()
	m.Decisions.WithLabelValues(decision).Inc()
	m.Scores.Observe(score)
	for _, f := range flags {
		m.Flags.WithLabelValues(f).Inc()
	}
}

// ObserveLabel records one learned feedback label.
func (m *Metrics) ObserveLabel(positive bool) {
	if m == nil {
		return
	}
	label := "negative"
	if positive {
		label = "positive"
	}
	m.Labels.WithLabelValues(label).Inc()
}

// SetState publishes end-of-run sizes.
func (m *Metrics) SetState(candidates, clients, burstKeys int, finishedUnix float64) {
	if m == nil {
		return
	}
	m.Candidates.Set(float64(candidates))
	m.TrackedClients.Set(float64(clients))
	m.BurstKeys.Set(float64(burstKeys))
	m.LastRun.Set(finishedUnix)
}

// WriteTextfile writes all metrics to path in the text exposition format,
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "write metrics textfile"), "path", path)
	}
	return nil
}
