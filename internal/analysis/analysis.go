// Package analysis orchestrates the full valuation and risk pipeline
// for a single option position.
package analysis

import (
	"time"

	"github.com/rs/zerolog"

	"optionsdesk/internal/analysis/hedging"
	"optionsdesk/internal/analysis/pricing"
	"optionsdesk/internal/analysis/scenario"
	"optionsdesk/internal/analysis/selection"
	"optionsdesk/internal/analysis/volatility"
	"optionsdesk/internal/config"
	"optionsdesk/internal/errors"
	"optionsdesk/internal/logging"
	"optionsdesk/internal/models"
)

// Snapshot is the market data consumed by one analysis run.
type Snapshot struct {
	Bars  []models.PriceBar
	Calls []models.ContractQuote
	Puts  []models.ContractQuote
	Meta  models.AnalysisMeta
}

// Analyzer runs the pricing and risk pipeline over a market snapshot.
// The pipeline itself is pure; the analyzer only adds configuration
// and logging around it.
type Analyzer struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// New creates an analyzer with the given configuration.
func New(cfg *config.Config, logger zerolog.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logger}
}

func (a *Analyzer) selector() *selection.Selector {
	return selection.New(selection.Config{
		TargetOTMPct:        a.cfg.Selection.TargetOTMPct,
		MinOTMPct:           a.cfg.Selection.MinOTMPct,
		MaxOTMPct:           a.cfg.Selection.MaxOTMPct,
		MinOpenInterest:     a.cfg.Selection.MinOpenInterest,
		RelaxedOpenInterest: a.cfg.Selection.RelaxedOpenInterest,
	})
}

// Run executes the pipeline: volatility, selection, pricing, Greeks,
// hedging, scenarios and the optional put comparison. A missing put
// match is non-fatal; everything else aborts the run.
func (a *Analyzer) Run(snap Snapshot) (*models.Report, error) {
	logger := logging.WithTicker(a.logger, snap.Meta.Ticker)

	if len(snap.Bars) == 0 {
		return nil, errors.NewDataError("historical", snap.Meta.Ticker, "empty price series", errors.ErrDataNotFound)
	}
	if snap.Meta.SpotPrice <= 0 {
		return nil, errors.NewDataError("metadata", snap.Meta.Ticker, "missing spot price", errors.ErrDataNotFound)
	}

	returns := models.LogReturns(snap.Bars)
	vol, err := volatility.Analyze(returns)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Float64("hv21", vol.HV21).
		Str("regime", string(vol.Regime)).
		Msg("Volatility computed")

	selected, err := a.selector().SelectCall(snap.Calls, snap.Meta.SpotPrice)
	if err != nil {
		return nil, err
	}
	logging.LogSelection(logger, snap.Meta.Ticker, selected.ContractSymbol, selected.Strike, selected.Score)

	thresholds := pricing.Thresholds{
		ExpensiveAbovePct: a.cfg.Analysis.ExpensiveAbovePct,
		CheapBelowPct:     a.cfg.Analysis.CheapBelowPct,
	}
	pricer, err := pricing.NewPricer(pricing.Inputs{
		S:       snap.Meta.SpotPrice,
		K:       selected.Strike,
		T:       float64(snap.Meta.DTE) / 365,
		R:       snap.Meta.RiskFreeRate,
		SigmaHV: vol.HV21,
		SigmaIV: selected.ImpliedVolatility,
	}, thresholds)
	if err != nil {
		return nil, err
	}

	priced := pricer.Calculate()
	logging.LogValuation(logger, snap.Meta.Ticker, string(priced.Valuation), priced.MispricingPct)

	greeks := pricing.Greeks(pricer, models.Call)

	hedge := hedging.Hedge(hedging.Position{
		Delta:             greeks.Delta,
		StockPrice:        snap.Meta.SpotPrice,
		Contracts:         a.cfg.Analysis.Contracts,
		SharesPerContract: a.cfg.Analysis.SharesPerContract,
	})

	engine := scenario.New(pricer, selected.MidPrice(), a.cfg.Analysis.Contracts,
		scenario.Config{VolFloor: a.cfg.Scenario.VolFloor})
	scenarios := engine.Run()
	sensitivity := engine.Sensitivity()

	report := &models.Report{
		Meta:        snap.Meta,
		Selected:    *selected,
		Volatility:  vol,
		VRP:         selected.ImpliedVolatility - vol.HV21,
		Pricing:     priced,
		Greeks:      greeks,
		Hedge:       hedge,
		Contracts:   a.cfg.Analysis.Contracts,
		Scenarios:   scenarios,
		Sensitivity: sensitivity,
		GeneratedAt: time.Now(),
	}

	report.Put = a.putComparison(logger, snap, vol, thresholds)

	return report, nil
}

// putComparison analyzes the paired OTM put when one can be selected.
// Failure here is reported as absence, not as a pipeline error.
func (a *Analyzer) putComparison(logger zerolog.Logger, snap Snapshot, vol models.VolatilityMetrics, th pricing.Thresholds) *models.PutAnalysis {
	selected, err := a.selector().SelectPut(snap.Puts, snap.Meta.SpotPrice)
	if err != nil {
		logger.Warn().Err(err).Msg("No suitable put for comparison")
		return nil
	}

	pricer, err := pricing.NewPricer(pricing.Inputs{
		S:       snap.Meta.SpotPrice,
		K:       selected.Strike,
		T:       float64(snap.Meta.DTE) / 365,
		R:       snap.Meta.RiskFreeRate,
		SigmaHV: vol.HV21,
		SigmaIV: selected.ImpliedVolatility,
	}, th)
	if err != nil {
		logger.Warn().Err(err).Msg("Put pricing skipped")
		return nil
	}

	return &models.PutAnalysis{
		Selected: *selected,
		Pricing:  pricer.CalculatePut(),
		Greeks:   pricing.Greeks(pricer, models.Put),
	}
}
