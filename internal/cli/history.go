package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"optionsdesk/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [ticker]",
		Short: "List past analysis runs",
		Long: `List previous analysis runs recorded in the local run history,
newest first. Pass a ticker to filter.`,
		Example: `  optionsdesk history
  optionsdesk history NVDA --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				output.Warning("Run history is not available.")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			ticker := ""
			if len(args) > 0 {
				ticker = strings.ToUpper(args[0])
			}
			limit, _ := cmd.Flags().GetInt("limit")

			runs, err := app.Store.ListRuns(ctx, ticker, limit)
			if err != nil {
				output.Error("Failed to load run history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Info("No runs recorded yet. Run 'optionsdesk analyze' first.")
				return nil
			}

			output.SectionHeader("RUN HISTORY")
			table := NewTable(output, "Date", "Ticker", "Contract", "Spot", "Valuation", "Mispricing", "Regime", "Delta")
			for _, run := range runs {
				table.AddRow(
					run.CreatedAt.Format("2006-01-02 15:04"),
					run.Ticker,
					fmt.Sprintf("$%.0f %s", run.Strike, run.Expiration),
					utils.FormatUSD(run.SpotPrice),
					output.ValuationString(run.Valuation),
					utils.FormatPercent(run.MispricingPct),
					run.Regime,
					fmt.Sprintf("%.3f", run.Delta),
				)
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to show")

	return cmd
}
