// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"

	"grimm.is/dnsadvisor/internal/errors"
)

// LoadFile reads a config file, picking the decoder from the extension:
// .hcl, .json, .yaml or .yml. Other extensions are tried as HCL, then JSON,
// then YAML. The result is validated.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		kind := errors.KindIO
		if os.IsNotExist(err) {
			kind = errors.KindNotFound
		}
		return nil, errors.Attr(errors.Wrap(err, kind, "read config file"), "path", path)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		cfg, err = LoadHCL(data, path)
	case ".json":
		cfg, err = LoadJSON(data)
	case ".yaml", ".yml":
		cfg, err = LoadYAML(data)
	default:
		cfg, err = loadAny(data, path)
	}
	if err != nil {
		return nil, errors.Attr(err, "path", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Attr(err, "path", path)
	}
	return cfg, nil
}

func loadAny(data []byte, filename string) (*Config, error) {
	cfg, hclErr := LoadHCL(data, filename)
	if hclErr == nil {
		return cfg, nil
	}
	cfg, jsonErr := LoadJSON(data)
	if jsonErr == nil {
		return cfg, nil
	}
	cfg, yamlErr := LoadYAML(data)
	if yamlErr == nil {
		return cfg, nil
	}
	return nil, errors.Errorf(errors.KindValidation,
		"config is not valid HCL (%v), JSON (%v) or YAML (%v)", hclErr, jsonErr, yamlErr)
}

// LoadHCL decodes HCL on top of the defaults. It does not validate.
func LoadHCL(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(diags, errors.KindValidation, "parse HCL")
	}

	cfg := Default()
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return nil, errors.Wrap(diags, errors.KindValidation, "decode HCL")
	}
	return cfg, nil
}

// LoadJSON decodes JSON on top of the defaults. It does not validate.
func LoadJSON(data []byte) (*Config, error) {
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "parse JSON")
	}
	return cfg, nil
}

// LoadYAML decodes YAML on top of the defaults. It does not validate.
func LoadYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.KindValidation, "parse YAML")
	}
	return cfg, nil
}
