// Package config provides configuration management for the options analysis application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"optionsdesk/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Selection SelectionConfig `mapstructure:"selection"`
	Scenario  ScenarioConfig  `mapstructure:"scenario"`
	Data      DataConfig      `mapstructure:"data"`
	UI        UIConfig        `mapstructure:"ui"`
}

// AnalysisConfig holds pricing and position parameters.
type AnalysisConfig struct {
	Ticker            string  `mapstructure:"ticker"`
	Contracts         int     `mapstructure:"contracts"`
	SharesPerContract int     `mapstructure:"shares_per_contract"`
	RiskFreeFallback  float64 `mapstructure:"risk_free_fallback"`
	ExpensiveAbovePct float64 `mapstructure:"expensive_above_pct"`
	CheapBelowPct     float64 `mapstructure:"cheap_below_pct"`
}

// SelectionConfig holds contract selection thresholds.
type SelectionConfig struct {
	TargetOTMPct        float64 `mapstructure:"target_otm_pct"`
	MinOTMPct           float64 `mapstructure:"min_otm_pct"`
	MaxOTMPct           float64 `mapstructure:"max_otm_pct"`
	MinOpenInterest     int64   `mapstructure:"min_open_interest"`
	RelaxedOpenInterest int64   `mapstructure:"relaxed_open_interest"`
}

// ScenarioConfig holds scenario repricing parameters.
type ScenarioConfig struct {
	VolFloor float64 `mapstructure:"vol_floor"`
}

// DataConfig holds data and report directory locations.
type DataConfig struct {
	Dir        string `mapstructure:"dir"`
	ReportsDir string `mapstructure:"reports_dir"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/optionsdesk"
	}
	return filepath.Join(home, ".config", "optionsdesk")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Ticker:            "NVDA",
			Contracts:         10,
			SharesPerContract: 100,
			RiskFreeFallback:  0.045,
			ExpensiveAbovePct: 20.0,
			CheapBelowPct:     -20.0,
		},
		Selection: SelectionConfig{
			TargetOTMPct:        10.0,
			MinOTMPct:           5.0,
			MaxOTMPct:           20.0,
			MinOpenInterest:     100,
			RelaxedOpenInterest: 50,
		},
		Scenario: ScenarioConfig{
			VolFloor: 0.05,
		},
		Data: DataConfig{
			Dir:        filepath.Join(DefaultConfigDir(), "data"),
			ReportsDir: filepath.Join(DefaultConfigDir(), "reports"),
		},
		UI: UIConfig{ColorEnabled: true},
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, write template for next time
		if werr := WriteTemplate(configDir); werr != nil {
			return nil, fmt.Errorf("writing config template: %w", werr)
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("analysis.ticker", cfg.Analysis.Ticker)
	v.SetDefault("analysis.contracts", cfg.Analysis.Contracts)
	v.SetDefault("analysis.shares_per_contract", cfg.Analysis.SharesPerContract)
	v.SetDefault("analysis.risk_free_fallback", cfg.Analysis.RiskFreeFallback)
	v.SetDefault("analysis.expensive_above_pct", cfg.Analysis.ExpensiveAbovePct)
	v.SetDefault("analysis.cheap_below_pct", cfg.Analysis.CheapBelowPct)
	v.SetDefault("selection.target_otm_pct", cfg.Selection.TargetOTMPct)
	v.SetDefault("selection.min_otm_pct", cfg.Selection.MinOTMPct)
	v.SetDefault("selection.max_otm_pct", cfg.Selection.MaxOTMPct)
	v.SetDefault("selection.min_open_interest", cfg.Selection.MinOpenInterest)
	v.SetDefault("selection.relaxed_open_interest", cfg.Selection.RelaxedOpenInterest)
	v.SetDefault("scenario.vol_floor", cfg.Scenario.VolFloor)
	v.SetDefault("data.dir", cfg.Data.Dir)
	v.SetDefault("data.reports_dir", cfg.Data.ReportsDir)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPTIONSDESK_TICKER"); v != "" {
		cfg.Analysis.Ticker = v
	}
	if v := os.Getenv("OPTIONSDESK_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("OPTIONSDESK_REPORTS_DIR"); v != "" {
		cfg.Data.ReportsDir = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.Contracts <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "analysis.contracts must be positive")
	}
	if c.Analysis.SharesPerContract <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "analysis.shares_per_contract must be positive")
	}
	if c.Analysis.ExpensiveAbovePct <= c.Analysis.CheapBelowPct {
		return errors.Wrap(errors.ErrConfigInvalid, "analysis.expensive_above_pct must exceed analysis.cheap_below_pct")
	}
	if c.Selection.MinOTMPct < 0 || c.Selection.MaxOTMPct < c.Selection.MinOTMPct {
		return errors.Wrapf(errors.ErrConfigInvalid, "selection OTM bounds invalid: min=%.1f max=%.1f", c.Selection.MinOTMPct, c.Selection.MaxOTMPct)
	}
	if c.Selection.TargetOTMPct < c.Selection.MinOTMPct || c.Selection.TargetOTMPct > c.Selection.MaxOTMPct {
		return errors.Wrap(errors.ErrConfigInvalid, "selection.target_otm_pct must lie within [min, max] OTM bounds")
	}
	if c.Selection.MinOpenInterest < 0 || c.Selection.RelaxedOpenInterest < 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "open interest floors must be non-negative")
	}
	if c.Scenario.VolFloor <= 0 {
		return errors.Wrap(errors.ErrConfigInvalid, "scenario.vol_floor must be positive")
	}
	return nil
}
