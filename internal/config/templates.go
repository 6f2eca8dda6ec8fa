package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Desk Configuration

[analysis]
# Ticker analyzed by default
ticker = "NVDA"
# Position size used for hedging and scenario P&L
contracts = 10
# Contract multiplier (shares per option contract)
shares_per_contract = 100
# Risk-free rate used when the metadata file carries none
risk_free_fallback = 0.045
# Mispricing above this percentage labels the option EXPENSIVE
expensive_above_pct = 20.0
# Mispricing below this percentage labels the option CHEAP
cheap_below_pct = -20.0

[selection]
# Preferred out-of-the-money percentage for the selected contract
target_otm_pct = 10.0
# OTM bounds applied by the strict selection tier
min_otm_pct = 5.0
max_otm_pct = 20.0
# Open interest floor for the strict tier
min_open_interest = 100
# Open interest floor for the relaxed fallback tier
relaxed_open_interest = 50

[scenario]
# Volatility floor applied when shocking sigma downward
vol_floor = 0.05

[data]
# Directory holding <TICKER>_historical.csv, <TICKER>_calls.csv,
# <TICKER>_puts.csv and <TICKER>_metadata.csv.
# Defaults to ~/.config/optionsdesk/data when unset.
# dir = "/path/to/data"
# Directory where memo, summary and sweep exports are written.
# Defaults to ~/.config/optionsdesk/reports when unset.
# reports_dir = "/path/to/reports"

[ui]
# Enable colored output
color_enabled = true
`

// WriteTemplate writes the default config template to the config directory.
func WriteTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil // never overwrite an existing config
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
