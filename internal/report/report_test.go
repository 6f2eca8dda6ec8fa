package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"optionsdesk/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Meta: models.AnalysisMeta{
			Ticker:       "TEST",
			Expiration:   "2025-04-17",
			DTE:          35,
			SpotPrice:    102.1,
			RiskFreeRate: 0.045,
			DataDate:     "2025-03-13",
		},
		Selected: models.SelectedContract{
			ContractQuote: models.ContractQuote{
				ContractSymbol:    "TEST250417C00110000",
				Strike:            110,
				Bid:               0.80,
				Ask:               0.90,
				LastPrice:         0.85,
				OpenInterest:      2851,
				ImpliedVolatility: 0.3012,
			},
			Type:   models.Call,
			PctOTM: 7.7,
			Score:  5.1,
		},
		Volatility: models.VolatilityMetrics{
			HV21:       0.2450,
			Regime:     models.RegimeNormal,
			Percentile: 55,
		},
		VRP: 0.0562,
		Pricing: models.PricingResult{
			PriceHV:       0.48,
			PriceIV:       0.84,
			Mispricing:    0.36,
			MispricingPct: 75.0,
			Valuation:     models.ValuationExpensive,
		},
		Greeks: models.Greeks{
			Delta:       0.175,
			Gamma:       0.0278,
			ThetaDaily:  -0.036,
			ThetaWeekly: -0.254,
			Vega:        0.080,
			VegaDollar:  8.0,
			Rho:         0.016,
			SharesEquiv: 17.5,
		},
		Hedge: models.HedgeInstruction{
			DeltaPerContract: 0.175,
			DeltaExposure:    175,
			Shares:           -175,
			Direction:        models.HedgeShort,
			Capital:          17867.5,
		},
		Contracts: 10,
		Scenarios: models.ScenarioAnalysis{
			All: []models.ScenarioResult{
				{Name: "Bull Rally", StockChangePct: 15, VolChangePct: -5, PnL: 4890, PnLPct: 575},
				{Name: "Flat", StockChangePct: 0, VolChangePct: 0, PnL: -310, PnLPct: -36},
				{Name: "Crash", StockChangePct: -15, VolChangePct: 20, PnL: -820, PnLPct: -96},
			},
			Best:  models.ScenarioResult{Name: "Bull Rally", PnL: 4890},
			Worst: models.ScenarioResult{Name: "Crash", PnL: -820},
		},
		Sensitivity: models.SensitivityData{
			VolSweep: []models.VolSweepPoint{
				{VolPct: 15.1, Multiplier: 0.5, Price: 0.12, PnL: -730},
				{VolPct: 60.2, Multiplier: 2.0, Price: 3.41, PnL: 2560},
			},
			TimeSweep: []models.TimeSweepPoint{
				{DTE: 35, Price: 0.84, PnL: -10},
				{DTE: 1, Price: 0.01, PnL: -840},
			},
			CurrentVol: 30.12,
			CurrentDTE: 35,
		},
		Put: &models.PutAnalysis{
			Selected: models.SelectedContract{
				ContractQuote: models.ContractQuote{
					ContractSymbol:    "TEST250417P00090000",
					Strike:            90,
					Bid:               0.60,
					Ask:               0.70,
					ImpliedVolatility: 0.3301,
				},
				Type:   models.Put,
				PctOTM: 11.9,
			},
			Pricing: models.PricingResult{PriceIV: 0.52, Valuation: models.ValuationExpensive},
			Greeks:  models.Greeks{Delta: -0.14},
		},
		GeneratedAt: time.Date(2025, 3, 13, 16, 30, 0, 0, time.UTC),
	}
}

func TestMemo_Sections(t *testing.T) {
	memo := Memo(sampleReport())

	sections := []string{
		"CONSULTING MEMORANDUM",
		"EXECUTIVE SUMMARY",
		"PRICING ANALYSIS",
		"VOLATILITY",
		"GREEKS",
		"HEDGING",
		"SCENARIOS (1 Week)",
		"PUT COMPARISON",
	}
	for _, s := range sections {
		if !strings.Contains(memo, s) {
			t.Errorf("memo missing section %q", s)
		}
	}

	if !strings.Contains(memo, "Option is EXPENSIVE") {
		t.Error("memo missing the valuation finding")
	}
	if !strings.Contains(memo, "TEST $110 Call") {
		t.Error("memo missing the position line")
	}
	if !strings.Contains(memo, "SHORT 175 shares") {
		t.Error("memo missing the hedge instruction")
	}
}

func TestMemo_PutSectionOptional(t *testing.T) {
	r := sampleReport()
	r.Put = nil
	if strings.Contains(Memo(r), "PUT COMPARISON") {
		t.Error("memo should omit the put section when absent")
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		v    models.Valuation
		want string
	}{
		{models.ValuationExpensive, "selling premium"},
		{models.ValuationCheap, "long premium"},
		{models.ValuationFair, "in line"},
	}
	for _, tt := range tests {
		if got := recommendation(tt.v); !strings.Contains(got, tt.want) {
			t.Errorf("recommendation(%s) = %q, want substring %q", tt.v, got, tt.want)
		}
	}
}

func TestWrite_AllArtifacts(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	if err := NewWriter(dir).Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	base := "TEST_2025-03-13"
	for _, suffix := range []string{"_memo.txt", "_summary.json", "_scenarios.csv", "_sweeps.csv"} {
		path := filepath.Join(dir, base+suffix)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", base+suffix, err)
		}
	}
}

func TestWrite_SummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	if err := NewWriter(dir).Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "TEST_2025-03-13_summary.json"))
	if err != nil {
		t.Fatal(err)
	}

	var s map[string]interface{}
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}

	if s["ticker"] != "TEST" {
		t.Errorf("ticker = %v", s["ticker"])
	}
	if s["valuation"] != "EXPENSIVE" {
		t.Errorf("valuation = %v", s["valuation"])
	}
	if s["hedge_direction"] != "SHORT" {
		t.Errorf("hedge_direction = %v", s["hedge_direction"])
	}
	if s["best_scenario"] != "Bull Rally" {
		t.Errorf("best_scenario = %v", s["best_scenario"])
	}
	if got := s["mispricing_pct"].(float64); got != 75.0 {
		t.Errorf("mispricing_pct = %v", got)
	}
}

func TestWrite_ScenarioCSV(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	if err := NewWriter(dir).Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "TEST_2025-03-13_scenarios.csv"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "name,stock_change_pct,vol_change_pct,pnl,pnl_pct") {
		t.Errorf("unexpected header in:\n%s", content)
	}
	if !strings.Contains(content, "Bull Rally") {
		t.Error("scenario rows missing")
	}

	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 1+len(r.Scenarios.All) {
		t.Errorf("got %d lines, want %d", len(lines), 1+len(r.Scenarios.All))
	}
}

func TestWrite_SweepCSVCombinesBothSweeps(t *testing.T) {
	dir := t.TempDir()
	r := sampleReport()

	if err := NewWriter(dir).Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "TEST_2025-03-13_sweeps.csv"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if !strings.Contains(content, "volatility") || !strings.Contains(content, "time") {
		t.Errorf("sweep labels missing in:\n%s", content)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	want := 1 + len(r.Sensitivity.VolSweep) + len(r.Sensitivity.TimeSweep)
	if len(lines) != want {
		t.Errorf("got %d lines, want %d", len(lines), want)
	}
}
