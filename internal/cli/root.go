package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"optionsdesk/internal/config"
	"optionsdesk/internal/logging"
	"optionsdesk/internal/marketdata"
	"optionsdesk/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Provider marketdata.Provider
	Store    store.RunStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Provider = marketdata.NewCSVProvider(cfg.Data.Dir, cfg.Analysis.RiskFreeFallback)

	dbPath := filepath.Join(config.DefaultConfigDir(), "optionsdesk.db")
	runStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize run store, history will be unavailable")
	} else {
		app.Store = runStore
		logger.Debug().Msg("SQLite run store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "optionsdesk",
		Short: "Options Desk - single-option valuation and risk reports",
		Long: `Options Desk computes a valuation and risk report for an equity option.

It estimates historical volatility from a daily price series, selects a
tradable contract from the chain, prices it with the Black-Scholes model
under both historical and implied volatility, derives the Greeks and a
delta hedge, and stresses the position under named scenarios.

Use 'optionsdesk analyze' to run the full pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/optionsdesk)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))
	rootCmd.AddCommand(newDataCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Options Desk v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Analysis Configuration")
	output.Printf("  Ticker:            %s\n", cfg.Analysis.Ticker)
	output.Printf("  Contracts:         %d\n", cfg.Analysis.Contracts)
	output.Printf("  Shares/Contract:   %d\n", cfg.Analysis.SharesPerContract)
	output.Printf("  Risk-Free Fallback: %.2f%%\n", cfg.Analysis.RiskFreeFallback*100)
	output.Printf("  Expensive Above:   %+.0f%%\n", cfg.Analysis.ExpensiveAbovePct)
	output.Printf("  Cheap Below:       %+.0f%%\n", cfg.Analysis.CheapBelowPct)
	output.Println()

	output.Bold("Selection Configuration")
	output.Printf("  Target OTM:        %.1f%%\n", cfg.Selection.TargetOTMPct)
	output.Printf("  OTM Bounds:        %.1f%% - %.1f%%\n", cfg.Selection.MinOTMPct, cfg.Selection.MaxOTMPct)
	output.Printf("  Min Open Interest: %d (relaxed: %d)\n", cfg.Selection.MinOpenInterest, cfg.Selection.RelaxedOpenInterest)
	output.Println()

	output.Bold("Data")
	output.Printf("  Data Directory:    %s\n", cfg.Data.Dir)
	output.Printf("  Reports Directory: %s\n", cfg.Data.ReportsDir)
}
