// Package volatility computes rolling historical volatility and
// classifies the current volatility regime.
package volatility

import (
	"math"

	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
)

const (
	windowShort  = 21
	windowMedium = 63
	windowLong   = 252

	// annualization factor for daily returns
	tradingDays = 252

	regimeHighAbove = 80.0
	regimeLowBelow  = 20.0
)

// Analyze computes annualized historical volatility over the 21/63/252
// day windows and classifies the regime of the current 21-day value.
// Fewer than 21 returns is insufficient history; the longer windows are
// reported as undefined rather than zero-filled when short.
func Analyze(rs models.ReturnSeries) (models.VolatilityMetrics, error) {
	if rs.Len() < windowShort {
		return models.VolatilityMetrics{}, errors.Wrapf(errors.ErrInsufficientHistory,
			"need %d returns, have %d", windowShort, rs.Len())
	}

	history := rollingVol(rs, windowShort)

	m := models.VolatilityMetrics{
		HV21:    history[len(history)-1].HV,
		History: history,
	}

	if rs.Len() >= windowMedium {
		medium := rollingVol(rs, windowMedium)
		m.HV63 = medium[len(medium)-1].HV
		m.HasHV63 = true
	}
	if rs.Len() >= windowLong {
		long := rollingVol(rs, windowLong)
		m.HV252 = long[len(long)-1].HV
		m.HasHV252 = true
	}

	m.Percentile = percentile(history, m.HV21)
	m.Regime = classify(m.Percentile)

	return m, nil
}

// rollingVol returns the annualized rolling sample standard deviation.
// The first w-1 points are undefined and excluded from the output.
func rollingVol(rs models.ReturnSeries, window int) []models.VolPoint {
	values := rs.Values()
	out := make([]models.VolPoint, 0, len(values)-window+1)
	for i := window - 1; i < len(values); i++ {
		sd := sampleStdDev(values[i-window+1 : i+1])
		out = append(out, models.VolPoint{
			Date: rs.Points[i].Date,
			HV:   sd * math.Sqrt(tradingDays),
		})
	}
	return out
}

// percentile is the share of historical values strictly below current,
// in [0, 100]. Strict comparison excludes the current value itself.
func percentile(history []models.VolPoint, current float64) float64 {
	if len(history) == 0 {
		return 0
	}
	below := 0
	for _, p := range history {
		if p.HV < current {
			below++
		}
	}
	return float64(below) / float64(len(history)) * 100
}

func classify(percentile float64) models.RegimeLabel {
	switch {
	case percentile > regimeHighAbove:
		return models.RegimeHigh
	case percentile < regimeLowBelow:
		return models.RegimeLow
	default:
		return models.RegimeNormal
	}
}

// sampleStdDev is the n-1 standard deviation of values.
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}
