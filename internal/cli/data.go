package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newDataCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Inspect local market data files",
		Long: `Inspect the market data directory and report which input files are
present for each ticker. The analyze command needs the historical
price, call chain and metadata files; the put chain is optional.`,
	}

	cmd.AddCommand(newDataPathCmd(app))
	cmd.AddCommand(newDataCheckCmd(app))

	return cmd
}

func newDataPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the market data directory",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			output.Println(app.Config.Data.Dir)
		},
	}
}

// dataFileSuffixes are the per-ticker files the CSV provider reads.
var dataFileSuffixes = []struct {
	suffix   string
	label    string
	required bool
}{
	{"_historical.csv", "Historical prices", true},
	{"_calls.csv", "Call chain", true},
	{"_puts.csv", "Put chain", false},
	{"_metadata.csv", "Metadata", true},
}

func newDataCheckCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check [ticker]",
		Short: "Check that input files exist for a ticker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			ticker := app.Config.Analysis.Ticker
			if len(args) > 0 {
				ticker = strings.ToUpper(args[0])
			}
			dir := app.Config.Data.Dir

			type fileStatus struct {
				Label    string `json:"label"`
				Path     string `json:"path"`
				Present  bool   `json:"present"`
				Required bool   `json:"required"`
			}

			statuses := make([]fileStatus, 0, len(dataFileSuffixes))
			missing := 0
			for _, df := range dataFileSuffixes {
				path := filepath.Join(dir, ticker+df.suffix)
				_, err := os.Stat(path)
				present := err == nil
				if !present && df.required {
					missing++
				}
				statuses = append(statuses, fileStatus{
					Label:    df.label,
					Path:     path,
					Present:  present,
					Required: df.required,
				})
			}

			if output.IsJSON() {
				return output.JSON(statuses)
			}

			output.SectionHeader(fmt.Sprintf("DATA FILES: %s", ticker))
			for _, s := range statuses {
				switch {
				case s.Present:
					output.Success("  %-18s %s", s.Label, s.Path)
				case s.Required:
					output.Error("  %-18s missing: %s", s.Label, s.Path)
				default:
					output.Dim("  %-18s missing (optional): %s", s.Label, s.Path)
				}
			}

			if missing > 0 {
				return fmt.Errorf("%d required data file(s) missing for %s", missing, ticker)
			}
			output.Println()
			output.Success("All required files present.")
			return nil
		},
	}
}
