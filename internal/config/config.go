// Package config loads the optional YAML config file that lists export
// sources and report defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AccountSource is one export file belonging to an account.
type AccountSource struct {
	ID     string `yaml:"id"`
	File   string `yaml:"file"`
	Format string `yaml:"format,omitempty"`
}

// Defaults are the report parameters applied when a flag is left unset.
// Values are clamped to sane ranges on load.
type Defaults struct {
	MerchantLimit        int `yaml:"merchant_limit,omitempty"`
	TxLimit              int `yaml:"tx_limit,omitempty"`
	TopK                 int `yaml:"top_k,omitempty"`
	MerchantsPerCategory int `yaml:"merchants_per_category,omitempty"`
	Days                 int `yaml:"days,omitempty"`
	Limit                int `yaml:"limit,omitempty"`
	MinOccurrences       int `yaml:"min_occurrences,omitempty"`
}

type Config struct {
	// Currency overrides the display currency for table output
	Currency string `yaml:"currency,omitempty"`

	// Accounts lists export files to load on startup
	Accounts []AccountSource `yaml:"accounts,omitempty"`

	Defaults Defaults `yaml:"defaults,omitempty"`
}

// DefaultConfigPath returns ~/.smart-financial-coach/config.yaml, or an empty
// string when the home directory is unknown.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".smart-financial-coach", "config.yaml")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Defaults = cfg.Defaults.Clamped()
	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Clamped fills unset defaults and clamps all values to their valid ranges.
func (d Defaults) Clamped() Defaults {
	return Defaults{
		MerchantLimit:        clampInt(d.MerchantLimit, 10, 1, 200),
		TxLimit:              clampInt(d.TxLimit, 10, 1, 500),
		TopK:                 clampInt(d.TopK, 3, 1, 50),
		MerchantsPerCategory: clampInt(d.MerchantsPerCategory, 5, 1, 50),
		Days:                 clampInt(d.Days, 30, 1, 365),
		Limit:                clampInt(d.Limit, 10, 1, 200),
		MinOccurrences:       clampInt(d.MinOccurrences, 2, 2, 24),
	}
}

func clampInt(v, def, min, max int) int {
	if v == 0 {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
