package scenario

import (
	"math"
	"testing"

	"optionsdesk/internal/analysis/pricing"
	"optionsdesk/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	p, err := pricing.NewPricer(pricing.Inputs{
		S:       100,
		K:       110,
		T:       35.0 / 365.0,
		R:       0.045,
		SigmaHV: 0.25,
		SigmaIV: 0.30,
	}, pricing.DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	// Market price near the model's implied-vol value.
	return New(p, 0.85, 10, DefaultConfig())
}

func TestRun_ScenarioSet(t *testing.T) {
	analysis := newTestEngine(t).Run()

	wantNames := []string{
		"Bull Rally", "Moderate Up", "Flat", "Moderate Down",
		"Crash", "Vol Spike", "Vol Crush",
	}
	if len(analysis.All) != len(wantNames) {
		t.Fatalf("got %d scenarios, want %d", len(analysis.All), len(wantNames))
	}
	for i, want := range wantNames {
		if analysis.All[i].Name != want {
			t.Errorf("scenario[%d] = %q, want %q", i, analysis.All[i].Name, want)
		}
	}
}

func TestRun_ScenarioDirections(t *testing.T) {
	analysis := newTestEngine(t).Run()

	byName := make(map[string]models.ScenarioResult, len(analysis.All))
	for _, r := range analysis.All {
		byName[r.Name] = r
	}

	// A 15% rally puts the $110 call well in the money.
	if byName["Bull Rally"].PnL <= 0 {
		t.Errorf("Bull Rally PnL = %v, want positive", byName["Bull Rally"].PnL)
	}
	// One week of decay with nothing else moving loses money on a long call.
	if byName["Flat"].PnL >= 0 {
		t.Errorf("Flat PnL = %v, want negative (theta decay)", byName["Flat"].PnL)
	}
	// A crash leaves the OTM call nearly worthless even with the vol pop.
	if byName["Crash"].PnL >= byName["Flat"].PnL {
		t.Errorf("Crash PnL %v should be worse than Flat %v",
			byName["Crash"].PnL, byName["Flat"].PnL)
	}
	// More vol helps a long option relative to less vol.
	if byName["Vol Spike"].PnL <= byName["Vol Crush"].PnL {
		t.Errorf("Vol Spike %v should beat Vol Crush %v",
			byName["Vol Spike"].PnL, byName["Vol Crush"].PnL)
	}
}

func TestRun_BestWorstAreExtremes(t *testing.T) {
	analysis := newTestEngine(t).Run()

	for _, r := range analysis.All {
		if r.PnL > analysis.Best.PnL {
			t.Errorf("scenario %s PnL %v exceeds best %v", r.Name, r.PnL, analysis.Best.PnL)
		}
		if r.PnL < analysis.Worst.PnL {
			t.Errorf("scenario %s PnL %v below worst %v", r.Name, r.PnL, analysis.Worst.PnL)
		}
	}
	if analysis.Best.Name != "Bull Rally" {
		t.Errorf("best = %s, want Bull Rally", analysis.Best.Name)
	}
}

func TestRun_PnLPctScaling(t *testing.T) {
	e := newTestEngine(t)
	analysis := e.Run()
	// PnLPct is PnL over total premium (market price * 100 * contracts).
	premium := 0.85 * 100 * 10
	for _, r := range analysis.All {
		want := r.PnL / premium * 100
		if math.Abs(r.PnLPct-want) > 1e-9 {
			t.Errorf("%s: PnLPct = %v, want %v", r.Name, r.PnLPct, want)
		}
	}
}

func TestRun_VolFloor(t *testing.T) {
	// IV at 10%: Vol Crush shocks to 0% but the floor keeps it at 5%,
	// so the crushed price matches pricing at exactly the floor.
	p, err := pricing.NewPricer(pricing.Inputs{
		S: 100, K: 110, T: 35.0 / 365.0, R: 0.045,
		SigmaHV: 0.10, SigmaIV: 0.10,
	}, pricing.DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	e := New(p, 0.05, 1, DefaultConfig())
	analysis := e.Run()

	var crush models.ScenarioResult
	for _, r := range analysis.All {
		if r.Name == "Vol Crush" {
			crush = r
		}
	}

	newT := math.Max(35.0/365.0-7.0/365.0, 0.001)
	floorPrice := pricing.Call(100, 110, newT, 0.045, 0.05)
	wantPnL := (floorPrice - 0.05) * 100
	if math.Abs(crush.PnL-wantPnL) > 1e-9 {
		t.Errorf("Vol Crush PnL = %v, want %v (vol floored at 5%%)", crush.PnL, wantPnL)
	}
}

func TestSensitivity_SweepShapes(t *testing.T) {
	data := newTestEngine(t).Sensitivity()

	if len(data.VolSweep) != 20 {
		t.Errorf("vol sweep has %d points, want 20", len(data.VolSweep))
	}
	if len(data.TimeSweep) != 30 {
		t.Errorf("time sweep has %d points, want 30", len(data.TimeSweep))
	}

	// Multipliers span 0.5x to 2.0x.
	first, last := data.VolSweep[0], data.VolSweep[len(data.VolSweep)-1]
	if math.Abs(first.Multiplier-0.5) > 1e-12 {
		t.Errorf("first multiplier = %v, want 0.5", first.Multiplier)
	}
	if math.Abs(last.Multiplier-2.0) > 1e-12 {
		t.Errorf("last multiplier = %v, want 2.0", last.Multiplier)
	}

	// Price is nondecreasing in vol.
	for i := 1; i < len(data.VolSweep); i++ {
		if data.VolSweep[i].Price < data.VolSweep[i-1].Price-1e-9 {
			t.Errorf("vol sweep price decreased at %d: %v -> %v",
				i, data.VolSweep[i-1].Price, data.VolSweep[i].Price)
		}
	}

	// Time sweep runs from current DTE down to 1.
	if got := data.TimeSweep[0].DTE; got != 35 {
		t.Errorf("first sweep DTE = %v, want 35", got)
	}
	if got := data.TimeSweep[len(data.TimeSweep)-1].DTE; got != 1 {
		t.Errorf("last sweep DTE = %v, want 1", got)
	}
	// OTM call loses value as expiry approaches.
	firstP := data.TimeSweep[0].Price
	lastP := data.TimeSweep[len(data.TimeSweep)-1].Price
	if lastP >= firstP {
		t.Errorf("time decay: price at 1 DTE %v should be below %v", lastP, firstP)
	}

	if data.CurrentDTE != 35 {
		t.Errorf("CurrentDTE = %d, want 35", data.CurrentDTE)
	}
	if math.Abs(data.CurrentVol-30) > 1e-9 {
		t.Errorf("CurrentVol = %v, want 30", data.CurrentVol)
	}
}

func TestSensitivity_ShortDTEUsesDefaultAxis(t *testing.T) {
	p, err := pricing.NewPricer(pricing.Inputs{
		S: 100, K: 110, T: 1.0 / 365.0, R: 0.045,
		SigmaHV: 0.25, SigmaIV: 0.30,
	}, pricing.DefaultThresholds())
	if err != nil {
		t.Fatalf("NewPricer: %v", err)
	}
	data := New(p, 0.10, 1, DefaultConfig()).Sensitivity()

	if data.CurrentDTE != 30 {
		t.Errorf("CurrentDTE = %d, want 30 for sub-2-day positions", data.CurrentDTE)
	}
	if got := data.TimeSweep[0].DTE; got != 30 {
		t.Errorf("first sweep DTE = %v, want 30", got)
	}
}
