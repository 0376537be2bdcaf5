// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package config loads dnsadvisor settings from HCL, JSON or YAML.
package config

import (
	"strings"
	"time"

	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/scoring"
)

// Defaults.
const (
	DefaultEntropyThreshold     = 3.5
	DefaultLongQueryLength      = 60
	DefaultBurstThreshold       = 12
	DefaultBurstWindowSeconds   = 30
	DefaultModelType            = string(scoring.KindStatistical)
	DefaultDecisionThreshold    = 0.7
	DefaultLearningRate         = 0.1
	DefaultZScoreThreshold      = 2.5
	DefaultAutoPromoteAfter     = 3
	DefaultAutoPromoteDecayDays = 30
	DefaultDeviceAnomalyScore   = 0.65
)

// Config holds every tunable. Any field may be omitted from the file.
type Config struct {
	// Detection thresholds
	EntropyThreshold   float64  `hcl:"entropy_threshold,optional" json:"entropy_threshold" yaml:"entropy_threshold"`
	LongQueryLength    int      `hcl:"long_query_length,optional" json:"long_query_length" yaml:"long_query_length"`
	BurstThreshold     int      `hcl:"burst_threshold,optional" json:"burst_threshold" yaml:"burst_threshold"`
	BurstWindowSeconds int      `hcl:"burst_window_seconds,optional" json:"burst_window_seconds" yaml:"burst_window_seconds"`
	RareTLDs           []string `hcl:"rare_tlds,optional" json:"rare_tlds" yaml:"rare_tlds"`
	// CommonTLDs is accepted for compatibility and currently unused.
	CommonTLDs []string `hcl:"common_tlds,optional" json:"common_tlds" yaml:"common_tlds"`

	// Scoring
	ModelType         string             `hcl:"model_type,optional" json:"model_type" yaml:"model_type"`
	DecisionThreshold float64            `hcl:"decision_threshold,optional" json:"decision_threshold" yaml:"decision_threshold"`
	LearningRate      float64            `hcl:"learning_rate,optional" json:"learning_rate" yaml:"learning_rate"`
	ZScoreThreshold   float64            `hcl:"zscore_threshold,optional" json:"zscore_threshold" yaml:"zscore_threshold"`
	TRMWeights        map[string]float64 `hcl:"trm_weights,optional" json:"trm_weights" yaml:"trm_weights"`
	// DeviceAnomalyScore is reserved for per-device scoring.
	DeviceAnomalyScore float64 `hcl:"device_anomaly_score,optional" json:"device_anomaly_score" yaml:"device_anomaly_score"`

	// Policy
	AutoPromoteAfter     int `hcl:"auto_promote_after,optional" json:"auto_promote_after" yaml:"auto_promote_after"`
	AutoPromoteDecayDays int `hcl:"auto_promote_decay_days,optional" json:"auto_promote_decay_days" yaml:"auto_promote_decay_days"`

	Logging    *LoggingConfig    `hcl:"logging,block" json:"logging,omitempty" yaml:"logging,omitempty"`
	VerdictLog *VerdictLogConfig `hcl:"verdict_log,block" json:"verdict_log,omitempty" yaml:"verdict_log,omitempty"`
	Metrics    *MetricsConfig    `hcl:"metrics,block" json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level string `hcl:"level,optional" json:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `hcl:"json,optional" json:"json,omitempty" yaml:"json,omitempty"`
}

// VerdictLogConfig enables the SQLite verdict history.
type VerdictLogConfig struct {
	Path string `hcl:"path" json:"path" yaml:"path"`
	// Retention is a Go duration such as "720h". Empty keeps everything.
	Retention string `hcl:"retention,optional" json:"retention,omitempty" yaml:"retention,omitempty"`
	// RecordAll stores allowed queries too, not just recommendations.
	RecordAll bool `hcl:"record_all,optional" json:"record_all,omitempty" yaml:"record_all,omitempty"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `hcl:"textfile" json:"textfile" yaml:"textfile"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		EntropyThreshold:     DefaultEntropyThreshold,
		LongQueryLength:      DefaultLongQueryLength,
		BurstThreshold:       DefaultBurstThreshold,
		BurstWindowSeconds:   DefaultBurstWindowSeconds,
		ModelType:            DefaultModelType,
		DecisionThreshold:    DefaultDecisionThreshold,
		LearningRate:         DefaultLearningRate,
		ZScoreThreshold:      DefaultZScoreThreshold,
		AutoPromoteAfter:     DefaultAutoPromoteAfter,
		AutoPromoteDecayDays: DefaultAutoPromoteDecayDays,
		DeviceAnomalyScore:   DefaultDeviceAnomalyScore,
	}
}

// BurstWindow is BurstWindowSeconds as a Duration.
func (c *Config) BurstWindow() time.Duration {
	return time.Duration(c.BurstWindowSeconds) * time.Second
}

// Model returns the configured scoring backend.
func (c *Config) Model() scoring.Kind {
	return scoring.Kind(strings.ToLower(strings.TrimSpace(c.ModelType)))
}

// ScoringParams returns the backend defaults derived from c.
func (c *Config) ScoringParams() scoring.Params {
	return scoring.Params{
		LearningRate:    c.LearningRate,
		ZScoreThreshold: c.ZScoreThreshold,
		LinearWeights:   c.TRMWeights,
	}
}

// LoggerConfig translates the logging block into a logging.Config.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Logging != nil {
		cfg.Level = logging.ParseLevel(c.Logging.Level)
		cfg.JSON = c.Logging.JSON
	}
	return cfg
}

// RetentionDuration parses the verdict log retention. Zero means keep
// everything.
func (c *Config) RetentionDuration() (time.Duration, error) {
	if c.VerdictLog == nil || c.VerdictLog.Retention == "" {
		return 0, nil
	}
	return time.ParseDuration(c.VerdictLog.Retention)
}
