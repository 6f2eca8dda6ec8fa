// Package report renders a completed analysis into a consulting memo,
// a machine-readable JSON summary, and CSV sensitivity exports.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
	"optionsdesk/pkg/utils"
)

// Sink consumes a finished report. The analysis core never touches
// files or the network; everything behind this interface does.
type Sink interface {
	Write(r *models.Report) error
}

// Writer renders reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a report writer targeting dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write renders the memo, the JSON summary and the scenario and
// sensitivity CSV exports.
func (w *Writer) Write(r *models.Report) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return errors.Wrap(err, "creating reports directory")
	}

	stamp := r.GeneratedAt.Format("2006-01-02")
	base := fmt.Sprintf("%s_%s", r.Meta.Ticker, stamp)

	if err := os.WriteFile(filepath.Join(w.dir, base+"_memo.txt"), []byte(Memo(r)), 0644); err != nil {
		return errors.Wrap(err, "writing memo")
	}
	if err := w.writeSummary(filepath.Join(w.dir, base+"_summary.json"), r); err != nil {
		return err
	}
	if err := w.writeScenarioCSV(filepath.Join(w.dir, base+"_scenarios.csv"), r); err != nil {
		return err
	}
	return w.writeSweepCSV(filepath.Join(w.dir, base+"_sweeps.csv"), r)
}

// summary is the flat JSON shape of the key findings.
type summary struct {
	Ticker        string  `json:"ticker"`
	Expiration    string  `json:"expiration"`
	DTE           int     `json:"dte"`
	SpotPrice     float64 `json:"spot_price"`
	Strike        float64 `json:"strike"`
	Contract      string  `json:"contract"`
	MarketPrice   float64 `json:"market_price"`
	PriceHV       float64 `json:"model_price_hv"`
	PriceIV       float64 `json:"model_price_iv"`
	MispricingPct float64 `json:"mispricing_pct"`
	Valuation     string  `json:"valuation"`
	HV21          float64 `json:"hv_21d"`
	ImpliedVol    float64 `json:"implied_vol"`
	VRP           float64 `json:"vrp"`
	Regime        string  `json:"regime"`
	Percentile    float64 `json:"regime_percentile"`
	Delta         float64 `json:"delta"`
	Gamma         float64 `json:"gamma"`
	ThetaDaily    float64 `json:"theta_daily"`
	VegaDollar    float64 `json:"vega_dollar"`
	Rho           float64 `json:"rho"`
	HedgeShares   float64 `json:"hedge_shares"`
	HedgeSide     string  `json:"hedge_direction"`
	HedgeCapital  float64 `json:"hedge_capital"`
	BestScenario  string  `json:"best_scenario"`
	BestPnL       float64 `json:"best_pnl"`
	WorstScenario string  `json:"worst_scenario"`
	WorstPnL      float64 `json:"worst_pnl"`
	GeneratedAt   string  `json:"generated_at"`
}

func (w *Writer) writeSummary(path string, r *models.Report) error {
	s := summary{
		Ticker:        r.Meta.Ticker,
		Expiration:    r.Meta.Expiration,
		DTE:           r.Meta.DTE,
		SpotPrice:     r.Meta.SpotPrice,
		Strike:        r.Selected.Strike,
		Contract:      r.Selected.ContractSymbol,
		MarketPrice:   r.Selected.MidPrice(),
		PriceHV:       r.Pricing.PriceHV,
		PriceIV:       r.Pricing.PriceIV,
		MispricingPct: r.Pricing.MispricingPct,
		Valuation:     string(r.Pricing.Valuation),
		HV21:          r.Volatility.HV21,
		ImpliedVol:    r.Selected.ImpliedVolatility,
		VRP:           r.VRP,
		Regime:        string(r.Volatility.Regime),
		Percentile:    r.Volatility.Percentile,
		Delta:         r.Greeks.Delta,
		Gamma:         r.Greeks.Gamma,
		ThetaDaily:    r.Greeks.ThetaDaily,
		VegaDollar:    r.Greeks.VegaDollar,
		Rho:           r.Greeks.Rho,
		HedgeShares:   r.Hedge.Shares,
		HedgeSide:     string(r.Hedge.Direction),
		HedgeCapital:  r.Hedge.Capital,
		BestScenario:  r.Scenarios.Best.Name,
		BestPnL:       r.Scenarios.Best.PnL,
		WorstScenario: r.Scenarios.Worst.Name,
		WorstPnL:      r.Scenarios.Worst.PnL,
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding summary")
	}
	return os.WriteFile(path, data, 0644)
}

// scenarioRow is the CSV shape of one scenario result.
type scenarioRow struct {
	Name           string  `csv:"name"`
	StockChangePct float64 `csv:"stock_change_pct"`
	VolChangePct   float64 `csv:"vol_change_pct"`
	PnL            float64 `csv:"pnl"`
	PnLPct         float64 `csv:"pnl_pct"`
}

func (w *Writer) writeScenarioCSV(path string, r *models.Report) error {
	rows := make([]*scenarioRow, 0, len(r.Scenarios.All))
	for _, s := range r.Scenarios.All {
		rows = append(rows, &scenarioRow{
			Name:           s.Name,
			StockChangePct: s.StockChangePct,
			VolChangePct:   s.VolChangePct,
			PnL:            s.PnL,
			PnLPct:         s.PnLPct,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating scenario export")
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

// sweepRow is the CSV shape of one sensitivity sweep point. The two
// sweeps share a file, distinguished by the sweep column.
type sweepRow struct {
	Sweep    string  `csv:"sweep"`
	Variable float64 `csv:"variable"`
	Price    float64 `csv:"price"`
	PnL      float64 `csv:"pnl"`
}

func (w *Writer) writeSweepCSV(path string, r *models.Report) error {
	rows := make([]*sweepRow, 0, len(r.Sensitivity.VolSweep)+len(r.Sensitivity.TimeSweep))
	for _, p := range r.Sensitivity.VolSweep {
		rows = append(rows, &sweepRow{Sweep: "volatility", Variable: p.VolPct, Price: p.Price, PnL: p.PnL})
	}
	for _, p := range r.Sensitivity.TimeSweep {
		rows = append(rows, &sweepRow{Sweep: "time", Variable: p.DTE, Price: p.Price, PnL: p.PnL})
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating sweep export")
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

// Memo renders the one-page consulting memo.
func Memo(r *models.Report) string {
	var b strings.Builder
	line := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", thin, title, thin)
	}

	fmt.Fprintf(&b, "%s\n%34s\n%s\n\n", line, "CONSULTING MEMORANDUM", line)
	fmt.Fprintf(&b, "TO:       Portfolio Management Team\n")
	fmt.Fprintf(&b, "FROM:     Quantitative Analysis Desk\n")
	fmt.Fprintf(&b, "DATE:     %s\n", r.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "RE:       %s Options Analysis\n", r.Meta.Ticker)

	section("EXECUTIVE SUMMARY")
	fmt.Fprintf(&b, "Position:     %s $%.0f Call\n", r.Meta.Ticker, r.Selected.Strike)
	fmt.Fprintf(&b, "Expiration:   %s (%d days)\n", r.Meta.Expiration, r.Meta.DTE)
	fmt.Fprintf(&b, "Stock Price:  %s\n\n", utils.FormatUSD(r.Meta.SpotPrice))
	fmt.Fprintf(&b, "FINDING: Option is %s relative to historical volatility\n", r.Pricing.Valuation)
	fmt.Fprintf(&b, "         (%+.1f%% vs model price)\n\n", r.Pricing.MispricingPct)
	fmt.Fprintf(&b, "RECOMMENDATION: %s\n", recommendation(r.Pricing.Valuation))

	section("PRICING ANALYSIS")
	fmt.Fprintf(&b, "  Market Price:       %s\n", utils.FormatUSD(r.Selected.MidPrice()))
	fmt.Fprintf(&b, "  Model Price (HV):   %s\n", utils.FormatUSD(r.Pricing.PriceHV))
	fmt.Fprintf(&b, "  Model Price (IV):   %s\n\n", utils.FormatUSD(r.Pricing.PriceIV))
	fmt.Fprintf(&b, "  Valuation:          %s (%+.1f%%)\n", r.Pricing.Valuation, r.Pricing.MispricingPct)

	section("VOLATILITY")
	fmt.Fprintf(&b, "  21-Day Realized:    %.1f%%\n", r.Volatility.HV21*100)
	fmt.Fprintf(&b, "  Implied Vol:        %.1f%%\n", r.Selected.ImpliedVolatility*100)
	fmt.Fprintf(&b, "  Risk Premium:       %+.1f%%\n", r.VRP*100)
	fmt.Fprintf(&b, "  Regime:             %s (%.0fth percentile)\n", r.Volatility.Regime, r.Volatility.Percentile)

	section("GREEKS")
	fmt.Fprintf(&b, "  Delta:   %.3f    (~%.0f shares per contract)\n", r.Greeks.Delta, r.Greeks.SharesEquiv)
	fmt.Fprintf(&b, "  Gamma:   %.5f\n", r.Greeks.Gamma)
	fmt.Fprintf(&b, "  Theta:   %s/day\n", utils.FormatUSD(r.Greeks.ThetaDaily))
	fmt.Fprintf(&b, "  Vega:    %s per 1%% IV\n", utils.FormatUSD(r.Greeks.VegaDollar))

	section("HEDGING")
	fmt.Fprintf(&b, "  Position Size:     %d contracts\n", r.Contracts)
	fmt.Fprintf(&b, "  Delta Exposure:    %.0f shares\n", r.Hedge.DeltaExposure)
	fmt.Fprintf(&b, "  To Hedge:          %s %.0f shares\n", r.Hedge.Direction, absFloat(r.Hedge.Shares))
	fmt.Fprintf(&b, "  Capital Required:  %s\n", utils.FormatUSD(r.Hedge.Capital))

	section("SCENARIOS (1 Week)")
	fmt.Fprintf(&b, "  Best Case:    %-15s %12s\n", r.Scenarios.Best.Name, utils.FormatPnL(r.Scenarios.Best.PnL))
	fmt.Fprintf(&b, "  Worst Case:   %-15s %12s\n", r.Scenarios.Worst.Name, utils.FormatPnL(r.Scenarios.Worst.PnL))

	if r.Put != nil {
		section("PUT COMPARISON")
		fmt.Fprintf(&b, "  Selected Put:       %s $%.0f Put\n", r.Meta.Ticker, r.Put.Selected.Strike)
		fmt.Fprintf(&b, "  Market Price:       %s\n", utils.FormatUSD(r.Put.Selected.MidPrice()))
		fmt.Fprintf(&b, "  Model Price (IV):   %s\n", utils.FormatUSD(r.Put.Pricing.PriceIV))
		fmt.Fprintf(&b, "  Put Delta:          %.4f\n", r.Put.Greeks.Delta)
		fmt.Fprintf(&b, "  Put Implied Vol:    %.1f%%\n", r.Put.Selected.ImpliedVolatility*100)
	}

	fmt.Fprintf(&b, "\n%s\n", line)
	return b.String()
}

func recommendation(v models.Valuation) string {
	switch v {
	case models.ValuationExpensive:
		return "Consider selling premium or waiting for better entry"
	case models.ValuationCheap:
		return "Favorable entry for long premium"
	default:
		return "Priced in line with realized volatility"
	}
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
