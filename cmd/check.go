// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/dnsadvisor/internal/config"
	"grimm.is/dnsadvisor/internal/errors"
)

// RunCheckConfig implements 'dnsadvisor check-config'. It loads a config,
// lists every validation problem and prints the effective settings.
func RunCheckConfig(args []string) error {
	fs := flag.NewFlagSet("check-config", flag.ContinueOnError)
	configPath := fs.String("config", "", "Config file to check (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-config is required")
	}

	data, err := os.ReadFile(*configPath)
	if err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "read config"), "path", *configPath)
	}
	cfg, err := decodeConfig(data, *configPath)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			printf("Configuration has %d errors:\n", len(verrs))
			for _, v := range verrs {
				printf("  - %s\n", v.Error())
			}
		}
		return err
	}

	printf("Configuration OK: %s\n", *configPath)
	printf("  model_type:         %s\n", cfg.Model())
	printf("  decision_threshold: %g\n", cfg.DecisionThreshold)
	printf("  entropy_threshold:  %g\n", cfg.EntropyThreshold)
	printf("  burst:              %d queries / %s\n", cfg.BurstThreshold, cfg.BurstWindow())
	printf("  rare_tlds:          %s\n", strings.Join(cfg.RareTLDs, ", "))
	printf("  auto_promote_after: %d (decay %d days)\n", cfg.AutoPromoteAfter, cfg.AutoPromoteDecayDays)
	if cfg.VerdictLog != nil {
		printf("  verdict_log:        %s\n", cfg.VerdictLog.Path)
	}
	if cfg.Metrics != nil {
		printf("  metrics textfile:   %s\n", cfg.Metrics.Textfile)
	}
	return nil
}

// decodeConfig parses without validating so every problem can be listed.
func decodeConfig(data []byte, path string) (*config.Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return config.LoadJSON(data)
	case ".yaml", ".yml":
		return config.LoadYAML(data)
	default:
		return config.LoadHCL(data, path)
	}
}
