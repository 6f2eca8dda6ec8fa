// Package models provides domain models for the options analysis application.
package models

import (
	"math"
	"time"
)

// OptionType identifies the side of an option contract.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// HedgeDirection is the side of a share hedge.
type HedgeDirection string

const (
	HedgeLong  HedgeDirection = "LONG"
	HedgeShort HedgeDirection = "SHORT"
)

// RegimeLabel classifies the current volatility level against its own history.
type RegimeLabel string

const (
	RegimeLow    RegimeLabel = "LOW"
	RegimeNormal RegimeLabel = "NORMAL"
	RegimeHigh   RegimeLabel = "HIGH"
)

// Valuation labels an option's implied-vol price against its
// historical-vol model price.
type Valuation string

const (
	ValuationCheap     Valuation = "CHEAP"
	ValuationFair      Valuation = "FAIR"
	ValuationExpensive Valuation = "EXPENSIVE"
)

// PriceBar represents one daily close observation.
type PriceBar struct {
	Date  time.Time
	Close float64
}

// ReturnPoint is one dated log return.
type ReturnPoint struct {
	Date   time.Time
	Return float64
}

// ReturnSeries is a chronological series of daily log returns.
type ReturnSeries struct {
	Points []ReturnPoint
}

// LogReturns derives a return series from a chronological price series
// via ln(P_t / P_{t-1}). Bars with a non-positive close are skipped.
func LogReturns(bars []PriceBar) ReturnSeries {
	var points []ReturnPoint
	for i := 1; i < len(bars); i++ {
		prev, cur := bars[i-1], bars[i]
		if prev.Close <= 0 || cur.Close <= 0 {
			continue
		}
		points = append(points, ReturnPoint{
			Date:   cur.Date,
			Return: math.Log(cur.Close / prev.Close),
		})
	}
	return ReturnSeries{Points: points}
}

// Len returns the number of observations in the series.
func (rs ReturnSeries) Len() int {
	return len(rs.Points)
}

// Values returns the raw return values in chronological order.
func (rs ReturnSeries) Values() []float64 {
	values := make([]float64, len(rs.Points))
	for i, p := range rs.Points {
		values[i] = p.Return
	}
	return values
}

// ContractQuote is one row of an option chain snapshot.
type ContractQuote struct {
	ContractSymbol    string
	Strike            float64
	Bid               float64
	Ask               float64
	LastPrice         float64
	OpenInterest      int64
	Volume            int64
	ImpliedVolatility float64
}

// MidPrice returns the bid/ask midpoint.
func (q ContractQuote) MidPrice() float64 {
	return (q.Bid + q.Ask) / 2
}

// SelectedContract is a chain row chosen for analysis, augmented with
// its moneyness and selection score. Immutable once produced.
type SelectedContract struct {
	ContractQuote
	Type   OptionType
	PctOTM float64
	Score  float64
}

// AnalysisMeta holds the scalar market context for one analysis run.
type AnalysisMeta struct {
	Ticker       string
	Expiration   string
	DTE          int
	SpotPrice    float64
	RiskFreeRate float64
	DataDate     string
}
