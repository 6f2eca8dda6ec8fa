// Package scenario reprices an option position under named joint
// (price, vol, time) shocks and produces 1-D sensitivity sweeps.
package scenario

import (
	"math"

	"optionsdesk/internal/analysis/pricing"
	"optionsdesk/internal/models"
)

const (
	minTime       = 0.001
	volSweepSize  = 20
	timeSweepSize = 30
)

// shock is one named joint scenario.
type shock struct {
	name     string
	stockChg float64 // fractional stock move
	volChg   float64 // absolute vol move
	days     float64 // elapsed days
}

// The fixed one-week scenario set, in presentation order. Best/worst
// ties resolve to the first occurrence in this order.
var shocks = []shock{
	{"Bull Rally", 0.15, -0.05, 7},
	{"Moderate Up", 0.05, 0.0, 7},
	{"Flat", 0.0, 0.0, 7},
	{"Moderate Down", -0.05, 0.05, 7},
	{"Crash", -0.15, 0.20, 7},
	{"Vol Spike", 0.0, 0.10, 7},
	{"Vol Crush", 0.0, -0.10, 7},
}

// Config holds scenario repricing parameters.
type Config struct {
	VolFloor float64 // floor applied when shocking sigma downward
}

// DefaultConfig returns the standard scenario parameters.
func DefaultConfig() Config {
	return Config{VolFloor: 0.05}
}

// Engine reprices one position under the scenario set. It reads the
// pricer's inputs at the implied volatility and never mutates them.
type Engine struct {
	in          pricing.Inputs
	marketPrice float64
	contracts   int
	cfg         Config
}

// New creates a scenario engine for the given position.
func New(p *pricing.Pricer, marketPrice float64, contracts int, cfg Config) *Engine {
	return &Engine{
		in:          p.Inputs(),
		marketPrice: marketPrice,
		contracts:   contracts,
		cfg:         cfg,
	}
}

// Run executes all scenarios and identifies the best and worst case.
func (e *Engine) Run() models.ScenarioAnalysis {
	results := make([]models.ScenarioResult, 0, len(shocks))
	for _, s := range shocks {
		pnl := e.pnl(s.stockChg, s.volChg, s.days)
		results = append(results, models.ScenarioResult{
			Name:           s.name,
			StockChangePct: s.stockChg * 100,
			VolChangePct:   s.volChg * 100,
			PnL:            pnl,
			PnLPct:         pnl / (e.marketPrice * 100 * float64(e.contracts)) * 100,
		})
	}

	best, worst := results[0], results[0]
	for _, r := range results[1:] {
		if r.PnL > best.PnL {
			best = r
		}
		if r.PnL < worst.PnL {
			worst = r
		}
	}

	return models.ScenarioAnalysis{All: results, Best: best, Worst: worst}
}

// pnl reprices the call at the shocked inputs and returns the total
// position P&L against the observed market price.
func (e *Engine) pnl(stockChg, volChg, days float64) float64 {
	newS := e.in.S * (1 + stockChg)
	newSigma := math.Max(e.in.SigmaIV+volChg, e.cfg.VolFloor)
	newT := math.Max(e.in.T-days/365, minTime)

	newPrice := pricing.Call(newS, e.in.K, newT, e.in.R, newSigma)
	perContract := (newPrice - e.marketPrice) * 100
	return perContract * float64(e.contracts)
}

// Sensitivity generates the volatility and time-decay sweeps around
// the current position, holding the other inputs fixed.
func (e *Engine) Sensitivity() models.SensitivityData {
	volSweep := make([]models.VolSweepPoint, 0, volSweepSize)
	for i := 0; i < volSweepSize; i++ {
		mult := 0.5 + 1.5*float64(i)/float64(volSweepSize-1)
		sigma := e.in.SigmaIV * mult
		price := pricing.Call(e.in.S, e.in.K, e.in.T, e.in.R, sigma)
		volSweep = append(volSweep, models.VolSweepPoint{
			VolPct:     sigma * 100,
			Multiplier: mult,
			Price:      price,
			PnL:        (price - e.marketPrice) * 100 * float64(e.contracts),
		})
	}

	// Sweep from the current DTE down to 1 day. A position already
	// inside 2 days gets a 30-day axis for the sweep only; pricing
	// elsewhere still uses the true T.
	currentDTE := int(e.in.T * 365)
	if currentDTE < 2 {
		currentDTE = 30
	}
	timeSweep := make([]models.TimeSweepPoint, 0, timeSweepSize)
	for i := 0; i < timeSweepSize; i++ {
		dte := math.Max(1, float64(currentDTE)-float64(currentDTE-1)*float64(i)/float64(timeSweepSize-1))
		price := pricing.Call(e.in.S, e.in.K, dte/365, e.in.R, e.in.SigmaIV)
		timeSweep = append(timeSweep, models.TimeSweepPoint{
			DTE:   dte,
			Price: price,
			PnL:   (price - e.marketPrice) * 100 * float64(e.contracts),
		})
	}

	return models.SensitivityData{
		VolSweep:   volSweep,
		TimeSweep:  timeSweep,
		CurrentVol: e.in.SigmaIV * 100,
		CurrentDTE: currentDTE,
	}
}

