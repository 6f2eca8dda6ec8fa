package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"optionsdesk/internal/models"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testReport(ticker string, generatedAt time.Time) *models.Report {
	return &models.Report{
		Meta: models.AnalysisMeta{
			Ticker:     ticker,
			Expiration: "2025-04-17",
			DTE:        35,
			SpotPrice:  102.1,
		},
		Selected: models.SelectedContract{
			ContractQuote: models.ContractQuote{
				ContractSymbol:    ticker + "250417C00110000",
				Strike:            110,
				Bid:               0.80,
				Ask:               0.90,
				ImpliedVolatility: 0.3012,
			},
			Type: models.Call,
		},
		Volatility: models.VolatilityMetrics{
			HV21:       0.245,
			Regime:     models.RegimeNormal,
			Percentile: 55,
		},
		VRP: 0.0562,
		Pricing: models.PricingResult{
			PriceHV:       0.48,
			PriceIV:       0.84,
			MispricingPct: 75.0,
			Valuation:     models.ValuationExpensive,
		},
		Greeks: models.Greeks{Delta: 0.175, Gamma: 0.0278, ThetaDaily: -0.036, VegaDollar: 8.0, Rho: 0.016},
		Hedge: models.HedgeInstruction{
			Shares:    -175,
			Direction: models.HedgeShort,
			Capital:   17867.5,
		},
		Scenarios: models.ScenarioAnalysis{
			Best:  models.ScenarioResult{Name: "Bull Rally", PnL: 4890},
			Worst: models.ScenarioResult{Name: "Crash", PnL: -820},
		},
		GeneratedAt: generatedAt,
	}
}

func TestSaveRun_AndList(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.SaveRun(ctx, testReport("TEST", time.Now()))
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if id <= 0 {
		t.Errorf("id = %d, want positive", id)
	}

	runs, err := s.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.Ticker != "TEST" {
		t.Errorf("ticker = %s", run.Ticker)
	}
	if run.Strike != 110 {
		t.Errorf("strike = %v", run.Strike)
	}
	if run.Valuation != "EXPENSIVE" {
		t.Errorf("valuation = %s", run.Valuation)
	}
	if run.MarketPrice != 0.85 {
		t.Errorf("market price = %v, want bid/ask mid 0.85", run.MarketPrice)
	}
	if run.BestScenario != "Bull Rally" || run.WorstScenario != "Crash" {
		t.Errorf("scenarios = %s/%s", run.BestScenario, run.WorstScenario)
	}
}

func TestListRuns_TickerFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, ticker := range []string{"AAA", "BBB", "AAA"} {
		if _, err := s.SaveRun(ctx, testReport(ticker, time.Now())); err != nil {
			t.Fatalf("SaveRun(%s): %v", ticker, err)
		}
	}

	runs, err := s.ListRuns(ctx, "AAA", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d AAA runs, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Ticker != "AAA" {
			t.Errorf("filter leaked ticker %s", r.Ticker)
		}
	}

	all, err := s.ListRuns(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d total runs, want 3", len(all))
	}
}

func TestListRuns_OrderAndLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := s.SaveRun(ctx, testReport("TEST", base.AddDate(0, 0, i))); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, "TEST", 3)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want limit 3", len(runs))
	}
	// Newest first.
	for i := 1; i < len(runs); i++ {
		if runs[i].CreatedAt.After(runs[i-1].CreatedAt) {
			t.Errorf("runs out of order: %v before %v", runs[i-1].CreatedAt, runs[i].CreatedAt)
		}
	}
	wantNewest := base.AddDate(0, 0, 4)
	if !runs[0].CreatedAt.Equal(wantNewest) {
		t.Errorf("newest = %v, want %v", runs[0].CreatedAt, wantNewest)
	}
}

func TestListRuns_DefaultLimit(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := s.SaveRun(ctx, testReport("TEST", time.Now())); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 20 {
		t.Errorf("got %d runs, want default limit 20", len(runs))
	}
}
