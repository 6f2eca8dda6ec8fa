package pricing

import (
	"math"

	"optionsdesk/internal/analysis/mathx"
	"optionsdesk/internal/models"
)

// Greeks computes the analytic sensitivities for the pricer's contract
// at the implied volatility. Theta is returned per day and per week,
// vega and rho per 1 percentage point move.
func Greeks(p *Pricer, optType models.OptionType) models.Greeks {
	in := p.Inputs()
	d1, d2 := p.D1(), p.D2()
	sqrtT := math.Sqrt(in.T)
	discount := math.Exp(-in.R * in.T)

	var delta float64
	if optType == models.Put {
		delta = mathx.NormCDF(d1) - 1
	} else {
		delta = mathx.NormCDF(d1)
	}

	gamma := mathx.NormPDF(d1) / (in.S * in.SigmaIV * sqrtT)

	thetaAnnual := -(in.S * mathx.NormPDF(d1) * in.SigmaIV) / (2 * sqrtT)
	if optType == models.Put {
		thetaAnnual += in.R * in.K * discount * mathx.NormCDF(-d2)
	} else {
		thetaAnnual -= in.R * in.K * discount * mathx.NormCDF(d2)
	}
	thetaDaily := thetaAnnual / 365

	vega := in.S * sqrtT * mathx.NormPDF(d1) / 100

	var rho float64
	if optType == models.Put {
		rho = -in.K * in.T * discount * mathx.NormCDF(-d2) / 100
	} else {
		rho = in.K * in.T * discount * mathx.NormCDF(d2) / 100
	}

	return models.Greeks{
		Delta:       delta,
		Gamma:       gamma,
		ThetaDaily:  thetaDaily,
		ThetaWeekly: thetaDaily * 7,
		Vega:        vega,
		VegaDollar:  vega * 100, // one contract controls 100 shares
		Rho:         rho,
		SharesEquiv: delta * 100,
	}
}
