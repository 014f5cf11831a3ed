// Package config loads a workspace's `.topos.yaml` settings: diagnostic
// severity overrides, the soft-to-hard constraint ratio threshold, and
// durability overrides for path globs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// DurabilityOverride assigns a non-default durability tier to every file
// matching Glob (a doublestar pattern evaluated relative to the workspace
// root, e.g. "vendor/**/*.tps").
type DurabilityOverride struct {
	Glob       string `mapstructure:"glob"`
	Durability string `mapstructure:"durability"` // "high" or "low"
}

// SeverityOverride reassigns a rule code's reported severity, e.g.
// demoting W207 to "info" for a workspace that tolerates a looser
// soft-to-hard ratio.
type SeverityOverride struct {
	Code     string `mapstructure:"code"`
	Severity string `mapstructure:"severity"` // "error", "warning", or "info"
}

// Workspace is the typed shape of `.topos.yaml`. Zero value is the default
// configuration: no overrides, default soft ratio threshold.
type Workspace struct {
	SoftRatioThreshold   float64              `mapstructure:"soft_ratio_threshold"`
	SeverityOverrides    []SeverityOverride   `mapstructure:"severity_overrides"`
	DurabilityOverrides  []DurabilityOverride `mapstructure:"durability_overrides"`
}

// DefaultSoftRatioThreshold matches diagnostics.SoftRatioThreshold; kept as
// a separate constant so config doesn't need to import diagnostics just
// for a default value.
const DefaultSoftRatioThreshold = 0.3

// Default returns a Workspace with no overrides.
func Default() Workspace {
	return Workspace{SoftRatioThreshold: DefaultSoftRatioThreshold}
}

// Load reads `.topos.yaml` from root, if present, and merges it over
// Default(). A missing file is not an error; a malformed one is.
func Load(root string) (Workspace, error) {
	cfg := Default()

	path := filepath.Join(root, ".topos.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("config: checking %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if cfg.SoftRatioThreshold == 0 {
		cfg.SoftRatioThreshold = DefaultSoftRatioThreshold
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.SoftRatioThreshold <= 0 {
		cfg.SoftRatioThreshold = DefaultSoftRatioThreshold
	}
	return cfg, nil
}

// DurabilityFor returns the durability string ("high"/"low") configured
// for relPath, or "" if no override glob matches it. The first matching
// override in declaration order wins.
func (w Workspace) DurabilityFor(relPath string) string {
	for _, o := range w.DurabilityOverrides {
		ok, err := doublestar.Match(o.Glob, relPath)
		if err == nil && ok {
			return o.Durability
		}
	}
	return ""
}

// SeverityFor returns the overridden severity string for code, or "" if
// code has no override.
func (w Workspace) SeverityFor(code string) string {
	for _, o := range w.SeverityOverrides {
		if o.Code == code {
			return o.Severity
		}
	}
	return ""
}
