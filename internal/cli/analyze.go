package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"optionsdesk/internal/analysis"
	"optionsdesk/internal/models"
	"optionsdesk/internal/report"
	"optionsdesk/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [ticker]",
		Short: "Run the full valuation and risk pipeline",
		Long: `Run the complete analysis pipeline for one ticker:

volatility estimation, contract selection, Black-Scholes pricing under
historical and implied volatility, Greeks, delta hedge sizing, scenario
P&L and sensitivity sweeps. Results are printed, written to the reports
directory, and recorded in the run history.`,
		Example: `  optionsdesk analyze
  optionsdesk analyze NVDA
  optionsdesk analyze AAPL --contracts 5 --no-report`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			ticker := app.Config.Analysis.Ticker
			if len(args) > 0 {
				ticker = strings.ToUpper(args[0])
			}

			if contracts, _ := cmd.Flags().GetInt("contracts"); contracts > 0 {
				app.Config.Analysis.Contracts = contracts
			}

			snap, err := app.Provider.Snapshot(ctx, ticker)
			if err != nil {
				output.Error("Failed to load market data: %v", err)
				return err
			}

			analyzer := analysis.New(app.Config, app.Logger)
			result, err := analyzer.Run(*snap)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			printReport(output, result)

			noReport, _ := cmd.Flags().GetBool("no-report")
			if !noReport {
				writer := report.NewWriter(app.Config.Data.ReportsDir)
				if err := writer.Write(result); err != nil {
					output.Warning("Report writing failed: %v", err)
				} else {
					output.Dim("Reports written to %s", app.Config.Data.ReportsDir)
				}
			}

			if app.Store != nil {
				if _, err := app.Store.SaveRun(ctx, result); err != nil {
					output.Warning("Run history not saved: %v", err)
				}
			}

			return nil
		},
	}

	cmd.Flags().Int("contracts", 0, "position size in contracts (overrides config)")
	cmd.Flags().Bool("no-report", false, "skip writing report files")

	return cmd
}

func printReport(output *Output, r *models.Report) {
	output.SectionHeader("MARKET DATA")
	output.Printf("  Stock:          %s\n", r.Meta.Ticker)
	output.Printf("  Current Price:  %s\n", utils.FormatUSD(r.Meta.SpotPrice))
	output.Printf("  Option Expiry:  %s (%d DTE)\n", r.Meta.Expiration, r.Meta.DTE)

	output.SectionHeader("OPTION SELECTION")
	output.Printf("  Selected:       $%.0f Call (%s)\n", r.Selected.Strike, r.Selected.ContractSymbol)
	output.Printf("  Market Price:   %s\n", utils.FormatUSD(r.Selected.MidPrice()))
	output.Printf("  OTM:            %.1f%%\n", r.Selected.PctOTM)
	output.Printf("  Open Interest:  %s\n", utils.FormatQuantity(r.Selected.OpenInterest))

	output.SectionHeader("VOLATILITY ANALYSIS")
	output.Printf("  21-Day Historical Vol:  %.1f%%\n", r.Volatility.HV21*100)
	if r.Volatility.HasHV63 {
		output.Printf("  63-Day Historical Vol:  %.1f%%\n", r.Volatility.HV63*100)
	}
	if r.Volatility.HasHV252 {
		output.Printf("  252-Day Historical Vol: %.1f%%\n", r.Volatility.HV252*100)
	}
	output.Printf("  Implied Volatility:     %.1f%%\n", r.Selected.ImpliedVolatility*100)
	output.Printf("  Vol Risk Premium:       %s\n", utils.FormatPercent(r.VRP*100))
	output.Printf("  Regime:                 %s (%.0fth percentile)\n", r.Volatility.Regime, r.Volatility.Percentile)

	output.SectionHeader("BLACK-SCHOLES PRICING")
	output.Printf("  Model Price (HV):  %s\n", utils.FormatUSD(r.Pricing.PriceHV))
	output.Printf("  Model Price (IV):  %s\n", utils.FormatUSD(r.Pricing.PriceIV))
	output.Printf("  Market Price:      %s\n", utils.FormatUSD(r.Selected.MidPrice()))
	output.Printf("  Mispricing:        %s\n", utils.FormatPercent(r.Pricing.MispricingPct))
	output.Printf("  Valuation:         %s\n", output.ValuationString(string(r.Pricing.Valuation)))

	output.SectionHeader("GREEKS ANALYSIS")
	output.Printf("  Delta:  %.4f  (%.0f shares equiv.)\n", r.Greeks.Delta, r.Greeks.SharesEquiv)
	output.Printf("  Gamma:  %.6f\n", r.Greeks.Gamma)
	output.Printf("  Theta:  %s/day  (%s/week)\n", utils.FormatUSD(r.Greeks.ThetaDaily), utils.FormatUSD(r.Greeks.ThetaWeekly))
	output.Printf("  Vega:   %s per 1%% IV\n", utils.FormatUSD(r.Greeks.VegaDollar))
	output.Printf("  Rho:    %.4f per 1%% rate\n", r.Greeks.Rho)

	output.SectionHeader("HEDGING STRATEGY")
	output.Printf("  Position:        %d contracts\n", r.Contracts)
	output.Printf("  Delta Exposure:  %.0f shares\n", r.Hedge.DeltaExposure)
	output.Printf("  Hedge:           %s %s shares\n", r.Hedge.Direction, utils.FormatQuantity(int64(abs(r.Hedge.Shares))))
	output.Printf("  Hedge Capital:   %s\n", utils.FormatUSD(r.Hedge.Capital))

	output.SectionHeader("SCENARIO ANALYSIS")
	table := NewTable(output, "Scenario", "Stock", "Vol", "P&L", "P&L %")
	for _, s := range r.Scenarios.All {
		table.AddRow(
			s.Name,
			utils.FormatPercent(s.StockChangePct),
			utils.FormatPercent(s.VolChangePct),
			output.ColoredString(output.PnLColor(s.PnL), utils.FormatPnL(s.PnL)),
			utils.FormatPercent(s.PnLPct),
		)
	}
	table.Render()
	output.Println()
	output.Success("  Best Case:  %s -> %s", r.Scenarios.Best.Name, utils.FormatPnL(r.Scenarios.Best.PnL))
	output.Error("  Worst Case: %s -> %s", r.Scenarios.Worst.Name, utils.FormatPnL(r.Scenarios.Worst.PnL))

	if r.Put != nil {
		output.SectionHeader("PUT OPTION ANALYSIS")
		output.Printf("  Selected Put:   $%.0f Put (%s)\n", r.Put.Selected.Strike, r.Put.Selected.ContractSymbol)
		output.Printf("  Market Price:   %s\n", utils.FormatUSD(r.Put.Selected.MidPrice()))
		output.Printf("  OTM:            %.1f%%\n", r.Put.Selected.PctOTM)
		output.Printf("  Put Delta:      %.4f\n", r.Put.Greeks.Delta)
		output.Printf("  Put Valuation:  %s\n", output.ValuationString(string(r.Put.Pricing.Valuation)))
	} else {
		output.SectionHeader("PUT OPTION ANALYSIS")
		output.Dim("  No suitable put option found for comparison.")
	}

	output.Println()
	output.Bold("  Key Finding: Option is %s", r.Pricing.Valuation)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
