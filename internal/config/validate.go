// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/scoring"
	"grimm.is/dnsadvisor/internal/validation"
)

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks ranges and enumerations. The returned error is
// KindValidation and carries the first offending field as the "field"
// attribute.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.EntropyThreshold < 0 {
		add("entropy_threshold", "must be >= 0, got %v", c.EntropyThreshold)
	}
	if c.LongQueryLength < 0 {
		add("long_query_length", "must be >= 0, got %d", c.LongQueryLength)
	}
	if c.BurstThreshold < 1 {
		add("burst_threshold", "must be >= 1, got %d", c.BurstThreshold)
	}
	if c.BurstWindowSeconds < 0 {
		add("burst_window_seconds", "must be >= 0, got %d", c.BurstWindowSeconds)
	}
	for i, tld := range c.RareTLDs {
		if err := validation.TLD(tld); err != nil {
			add(fmt.Sprintf("rare_tlds[%d]", i), "%v", err)
		}
	}
	for i, tld := range c.CommonTLDs {
		if err := validation.TLD(tld); err != nil {
			add(fmt.Sprintf("common_tlds[%d]", i), "%v", err)
		}
	}
	if !slices.Contains(scoring.Kinds, c.Model()) {
		add("model_type", "unknown model %q (want statistical, online_logistic or linear)", c.ModelType)
	}
	if c.DecisionThreshold < 0 || c.DecisionThreshold > 1 {
		add("decision_threshold", "must be within [0, 1], got %v", c.DecisionThreshold)
	}
	if c.LearningRate <= 0 {
		add("learning_rate", "must be > 0, got %v", c.LearningRate)
	}
	if c.ZScoreThreshold < 0 {
		add("zscore_threshold", "must be >= 0, got %v", c.ZScoreThreshold)
	}
	if c.AutoPromoteAfter < 1 {
		add("auto_promote_after", "must be >= 1, got %d", c.AutoPromoteAfter)
	}
	if c.DeviceAnomalyScore < 0 || c.DeviceAnomalyScore > 1 {
		add("device_anomaly_score", "must be within [0, 1], got %v", c.DeviceAnomalyScore)
	}
	if c.Logging != nil && c.Logging.Level != "" {
		switch strings.ToLower(c.Logging.Level) {
		case "debug", "info", "warn", "warning", "error":
		default:
			add("logging.level", "unknown level %q", c.Logging.Level)
		}
	}
	if c.VerdictLog != nil {
		if c.VerdictLog.Path == "" {
			add("verdict_log.path", "is required")
		}
		if c.VerdictLog.Retention != "" {
			if d, err := time.ParseDuration(c.VerdictLog.Retention); err != nil || d < 0 {
				add("verdict_log.retention", "invalid duration %q", c.VerdictLog.Retention)
			}
		}
	}
	if c.Metrics != nil && c.Metrics.Textfile == "" {
		add("metrics.textfile", "is required")
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Attr(errors.Wrap(errs, errors.KindValidation, "invalid config"), "field", errs[0].Field)
}
