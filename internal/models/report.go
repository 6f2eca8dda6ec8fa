package models

import "time"

// VolPoint is one dated rolling-volatility observation.
type VolPoint struct {
	Date time.Time
	HV   float64
}

// VolatilityMetrics holds annualized historical volatility over the
// standard windows plus the regime classification of the 21-day value.
// A window with insufficient history is reported as undefined via its
// Has flag rather than zero-filled.
type VolatilityMetrics struct {
	HV21       float64
	HV63       float64
	HV252      float64
	HasHV63    bool
	HasHV252   bool
	Regime     RegimeLabel
	Percentile float64
	History    []VolPoint
}

// PricingResult is the output of a Black-Scholes valuation under both
// historical and implied volatility.
type PricingResult struct {
	PriceHV       float64
	PriceIV       float64
	Mispricing    float64
	MispricingPct float64
	Valuation     Valuation
}

// Greeks holds the analytic sensitivities for one contract.
// Vega is per 1 percentage point of volatility; VegaDollar scales it
// to one contract (100 shares). Rho is per 1 percentage point of rate.
type Greeks struct {
	Delta       float64
	Gamma       float64
	ThetaDaily  float64
	ThetaWeekly float64
	Vega        float64
	VegaDollar  float64
	Rho         float64
	SharesEquiv float64
}

// HedgeInstruction describes the share position that neutralizes the
// delta exposure of an option position. Derived, never mutated.
type HedgeInstruction struct {
	DeltaPerContract float64
	DeltaExposure    float64
	Shares           float64
	Direction        HedgeDirection
	Capital          float64
}

// ScenarioResult is the repriced P&L of the position under one named
// joint (price, vol, time) shock.
type ScenarioResult struct {
	Name           string
	StockChangePct float64
	VolChangePct   float64
	PnL            float64
	PnLPct         float64
}

// ScenarioAnalysis is the full scenario table with its extremes.
type ScenarioAnalysis struct {
	All   []ScenarioResult
	Best  ScenarioResult
	Worst ScenarioResult
}

// VolSweepPoint is one point of the volatility sensitivity sweep.
type VolSweepPoint struct {
	VolPct     float64
	Multiplier float64
	Price      float64
	PnL        float64
}

// TimeSweepPoint is one point of the time-decay sensitivity sweep.
type TimeSweepPoint struct {
	DTE   float64
	Price float64
	PnL   float64
}

// SensitivityData holds the two independent 1-D sweeps.
type SensitivityData struct {
	VolSweep   []VolSweepPoint
	TimeSweep  []TimeSweepPoint
	CurrentVol float64
	CurrentDTE int
}

// PutAnalysis is the optional paired-put comparison block.
type PutAnalysis struct {
	Selected SelectedContract
	Pricing  PricingResult
	Greeks   Greeks
}

// Report is the complete result bundle for one analysis run, shaped as
// plain nested records for the reporting sink.
type Report struct {
	Meta        AnalysisMeta
	Selected    SelectedContract
	Volatility  VolatilityMetrics
	VRP         float64
	Pricing     PricingResult
	Greeks      Greeks
	Hedge       HedgeInstruction
	Contracts   int
	Scenarios   ScenarioAnalysis
	Sensitivity SensitivityData
	Put         *PutAnalysis
	GeneratedAt time.Time
}
