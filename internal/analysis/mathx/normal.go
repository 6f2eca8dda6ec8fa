// Package mathx provides the standard normal distribution primitives
// shared by the pricing, Greeks and scenario engines.
package mathx

import "math"

// NormCDF returns the standard normal cumulative distribution at x.
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// NormPDF returns the standard normal density at x.
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}
