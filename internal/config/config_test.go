// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/scoring"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3.5, cfg.EntropyThreshold)
	assert.Equal(t, 60, cfg.LongQueryLength)
	assert.Equal(t, 12, cfg.BurstThreshold)
	assert.Equal(t, 30*time.Second, cfg.BurstWindow())
	assert.Equal(t, scoring.KindStatistical, cfg.Model())
	assert.Equal(t, 0.7, cfg.DecisionThreshold)
	assert.Equal(t, 0.1, cfg.LearningRate)
	assert.Equal(t, 2.5, cfg.ZScoreThreshold)
	assert.Equal(t, 3, cfg.AutoPromoteAfter)
	assert.Equal(t, 30, cfg.AutoPromoteDecayDays)
	assert.Equal(t, 0.65, cfg.DeviceAnomalyScore)
	assert.Empty(t, cfg.RareTLDs)
	assert.Empty(t, cfg.TRMWeights)
}

func TestLoadJSONFlatDocument(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"entropy_threshold": 4.0,
		"model_type": "online_logistic",
		"rare_tlds": ["zip", "mov"],
		"common_tlds": ["com"],
		"trm_weights": {"entropy": 0.2, "burst": 0.5},
		"auto_promote_decay_days": 0
	}`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.EntropyThreshold)
	assert.Equal(t, scoring.KindOnlineLogistic, cfg.Model())
	assert.Equal(t, []string{"zip", "mov"}, cfg.RareTLDs)
	assert.Equal(t, 0.5, cfg.TRMWeights["burst"])
	assert.Equal(t, 0, cfg.AutoPromoteDecayDays, "explicit zero survives defaults")
	assert.Equal(t, 12, cfg.BurstThreshold, "unset fields keep defaults")
}

func TestLoadHCL(t *testing.T) {
	path := writeConfig(t, "dnsadvisor.hcl", `
entropy_threshold  = 3.8
burst_threshold    = 5
model_type         = "linear"
rare_tlds          = ["tk", "xyz"]
trm_weights        = { entropy = 0.25, new_tld = 0.4 }

logging {
  level = "debug"
  json  = true
}

verdict_log {
  path      = "/var/lib/dnsadvisor/verdicts.db"
  retention = "720h"
}

metrics {
  textfile = "/var/lib/node_exporter/dnsadvisor.prom"
}
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3.8, cfg.EntropyThreshold)
	assert.Equal(t, 5, cfg.BurstThreshold)
	assert.Equal(t, scoring.KindLinear, cfg.Model())
	assert.Equal(t, []string{"tk", "xyz"}, cfg.RareTLDs)
	assert.Equal(t, 0.4, cfg.TRMWeights["new_tld"])
	assert.Equal(t, 0.7, cfg.DecisionThreshold)

	lc := cfg.LoggerConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.True(t, lc.JSON)

	require.NotNil(t, cfg.VerdictLog)
	ret, err := cfg.RetentionDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, ret)
	require.NotNil(t, cfg.Metrics)
	assert.Equal(t, "/var/lib/node_exporter/dnsadvisor.prom", cfg.Metrics.Textfile)
}

func TestLoadHCLUnknownAttribute(t *testing.T) {
	path := writeConfig(t, "bad.hcl", `entropy_treshold = 3.0`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
decision_threshold: 0.55
zscore_threshold: 3
rare_tlds: [top, gq]
logging:
  level: warn
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.55, cfg.DecisionThreshold)
	assert.Equal(t, 3.0, cfg.ZScoreThreshold)
	assert.Equal(t, []string{"top", "gq"}, cfg.RareTLDs)
	assert.Equal(t, logging.LevelWarn, cfg.LoggerConfig().Level)
}

func TestLoadUnknownExtensionFallsBack(t *testing.T) {
	jsonPath := writeConfig(t, "config.conf", `{"burst_threshold": 4}`)
	cfg, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BurstThreshold)

	hclPath := writeConfig(t, "config.conf", `burst_threshold = 6`)
	cfg, err = LoadFile(hclPath)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.BurstThreshold)

	yamlPath := writeConfig(t, "config.conf", "burst_threshold: 8\nmodel_type: statistical\n")
	cfg, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.BurstThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.hcl"))
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"rare_tlds[1]", func(c *Config) { c.RareTLDs = []string{"tk", "co.uk"} }},
		{"common_tlds[0]", func(c *Config) { c.CommonTLDs = []string{""} }},
		{"model_type", func(c *Config) { c.ModelType = "neural" }},
		{"decision_threshold", func(c *Config) { c.DecisionThreshold = 1.5 }},
		{"burst_threshold", func(c *Config) { c.BurstThreshold = 0 }},
		{"learning_rate", func(c *Config) { c.LearningRate = 0 }},
		{"zscore_threshold", func(c *Config) { c.ZScoreThreshold = -1 }},
		{"auto_promote_after", func(c *Config) { c.AutoPromoteAfter = 0 }},
		{"logging.level", func(c *Config) { c.Logging = &LoggingConfig{Level: "chatty"} }},
		{"verdict_log.path", func(c *Config) { c.VerdictLog = &VerdictLogConfig{} }},
		{"verdict_log.retention", func(c *Config) {
			c.VerdictLog = &VerdictLogConfig{Path: "x.db", Retention: "a month"}
		}},
		{"metrics.textfile", func(c *Config) { c.Metrics = &MetricsConfig{} }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.KindValidation, errors.GetKind(err))
			assert.Equal(t, tt.field, errors.GetAttributes(err)["field"])
		})
	}
}

func TestModelTypeCaseInsensitive(t *testing.T) {
	cfg := Default()
	cfg.ModelType = " Online_Logistic "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, scoring.KindOnlineLogistic, cfg.Model())
}
