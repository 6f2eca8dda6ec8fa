// Package pricing implements the Black-Scholes closed-form pricer and
// the analytic Greeks derived from it.
package pricing

import (
	"math"

	"optionsdesk/internal/analysis/mathx"
	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
)

// minTime is the floor applied to time-to-expiry to avoid division by zero.
const minTime = 0.001

// Inputs holds the market parameters for one contract valuation.
// Immutable after construction; one Pricer owns one Inputs value.
type Inputs struct {
	S       float64 // spot price
	K       float64 // strike
	T       float64 // time to expiry in years
	R       float64 // risk-free rate
	SigmaHV float64 // historical volatility
	SigmaIV float64 // implied volatility
}

// Thresholds are the mispricing cutoffs for the valuation label,
// in percent. Defaults mirror config defaults (+20 / -20).
type Thresholds struct {
	ExpensiveAbovePct float64
	CheapBelowPct     float64
}

// DefaultThresholds returns the standard valuation cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{ExpensiveAbovePct: 20.0, CheapBelowPct: -20.0}
}

// Pricer prices a European option under both volatility inputs.
type Pricer struct {
	in Inputs
	th Thresholds
}

// NewPricer validates the inputs and constructs a pricer. T is floored
// at 0.001 years; non-positive spot, strike or volatility is rejected
// up front since it would make d1 undefined.
func NewPricer(in Inputs, th Thresholds) (*Pricer, error) {
	if in.S <= 0 {
		return nil, errors.Wrapf(errors.ErrDegenerateInputs, "spot %.4f", in.S)
	}
	if in.K <= 0 {
		return nil, errors.Wrapf(errors.ErrDegenerateInputs, "strike %.4f", in.K)
	}
	if in.SigmaHV <= 0 {
		return nil, errors.Wrapf(errors.ErrDegenerateInputs, "sigma_hv %.4f", in.SigmaHV)
	}
	if in.SigmaIV <= 0 {
		return nil, errors.Wrapf(errors.ErrDegenerateInputs, "sigma_iv %.4f", in.SigmaIV)
	}
	in.T = math.Max(in.T, minTime)
	return &Pricer{in: in, th: th}, nil
}

// Inputs returns the (floored) pricing inputs.
func (p *Pricer) Inputs() Inputs {
	return p.in
}

// d1 and d2 evaluated at an arbitrary volatility.
func (p *Pricer) d1(sigma float64) float64 {
	return (math.Log(p.in.S/p.in.K) + (p.in.R+0.5*sigma*sigma)*p.in.T) /
		(sigma * math.Sqrt(p.in.T))
}

func (p *Pricer) d2(sigma float64) float64 {
	return p.d1(sigma) - sigma*math.Sqrt(p.in.T)
}

// D1 returns d1 evaluated at the implied volatility.
func (p *Pricer) D1() float64 {
	return p.d1(p.in.SigmaIV)
}

// D2 returns d2 evaluated at the implied volatility.
func (p *Pricer) D2() float64 {
	return p.d2(p.in.SigmaIV)
}

// CallPrice returns the Black-Scholes call price at the given volatility.
func (p *Pricer) CallPrice(sigma float64) float64 {
	return Call(p.in.S, p.in.K, p.in.T, p.in.R, sigma)
}

// PutPrice returns the Black-Scholes put price at the given volatility.
func (p *Pricer) PutPrice(sigma float64) float64 {
	d1, d2 := p.d1(sigma), p.d2(sigma)
	return p.in.K*math.Exp(-p.in.R*p.in.T)*mathx.NormCDF(-d2) -
		p.in.S*mathx.NormCDF(-d1)
}

// Call evaluates the closed-form call price at arbitrary inputs.
// Callers own input sanity; the scenario engine uses this directly
// when repricing under shocked parameters.
func Call(S, K, T, r, sigma float64) float64 {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	return S*mathx.NormCDF(d1) - K*math.Exp(-r*T)*mathx.NormCDF(d2)
}

// PriceIV returns the call price at the implied volatility.
func (p *Pricer) PriceIV() float64 {
	return p.CallPrice(p.in.SigmaIV)
}

// PutPriceIV returns the put price at the implied volatility.
func (p *Pricer) PutPriceIV() float64 {
	return p.PutPrice(p.in.SigmaIV)
}

// Calculate prices the call under both volatility inputs and labels the
// implied-vol price against the historical-vol model price.
func (p *Pricer) Calculate() models.PricingResult {
	return p.result(p.CallPrice(p.in.SigmaHV), p.CallPrice(p.in.SigmaIV))
}

// CalculatePut mirrors Calculate for the put side, reusing the same
// valuation thresholds.
func (p *Pricer) CalculatePut() models.PricingResult {
	return p.result(p.PutPrice(p.in.SigmaHV), p.PutPrice(p.in.SigmaIV))
}

func (p *Pricer) result(priceHV, priceIV float64) models.PricingResult {
	var mispricingPct float64
	if priceHV > 0 {
		mispricingPct = (priceIV - priceHV) / priceHV * 100
	}
	return models.PricingResult{
		PriceHV:       priceHV,
		PriceIV:       priceIV,
		Mispricing:    priceIV - priceHV,
		MispricingPct: mispricingPct,
		Valuation:     p.valuation(mispricingPct),
	}
}

func (p *Pricer) valuation(mispricingPct float64) models.Valuation {
	switch {
	case mispricingPct > p.th.ExpensiveAbovePct:
		return models.ValuationExpensive
	case mispricingPct < p.th.CheapBelowPct:
		return models.ValuationCheap
	default:
		return models.ValuationFair
	}
}
