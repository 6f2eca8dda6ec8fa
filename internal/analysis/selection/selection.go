// Package selection scores and picks a tradable contract from an
// option chain by moneyness, liquidity and spread.
package selection

import (
	"math"

	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
)

// Config holds the selection thresholds. Passed in at construction so
// tests can vary them without process-wide state.
type Config struct {
	TargetOTMPct        float64
	MinOTMPct           float64
	MaxOTMPct           float64
	MinOpenInterest     int64
	RelaxedOpenInterest int64
}

// DefaultConfig returns the standard selection thresholds.
func DefaultConfig() Config {
	return Config{
		TargetOTMPct:        10.0,
		MinOTMPct:           5.0,
		MaxOTMPct:           20.0,
		MinOpenInterest:     100,
		RelaxedOpenInterest: 50,
	}
}

// candidate is a chain row with its computed moneyness.
type candidate struct {
	quote  models.ContractQuote
	pctOTM float64
}

// Selector picks the best contract from a chain.
type Selector struct {
	cfg Config
}

// New creates a selector with the given thresholds.
func New(cfg Config) *Selector {
	return &Selector{cfg: cfg}
}

// SelectCall picks an out-of-the-money call (strike above spot).
func (s *Selector) SelectCall(chain []models.ContractQuote, spot float64) (*models.SelectedContract, error) {
	return s.pick(chain, spot, models.Call)
}

// SelectPut picks an out-of-the-money put (strike below spot).
func (s *Selector) SelectPut(chain []models.ContractQuote, spot float64) (*models.SelectedContract, error) {
	return s.pick(chain, spot, models.Put)
}

func (s *Selector) pick(chain []models.ContractQuote, spot float64, optType models.OptionType) (*models.SelectedContract, error) {
	otm := outOfTheMoney(chain, spot, optType)
	if len(otm) == 0 {
		return nil, errors.Wrapf(errors.ErrNoMatchingContract, "%s chain has no OTM strikes around spot %.2f", optType, spot)
	}

	// Two-tier retry policy: the strict filter first, then the relaxed
	// liquidity-only fallback. First non-empty tier wins.
	tiers := []func(candidate) bool{
		func(c candidate) bool {
			return c.pctOTM >= s.cfg.MinOTMPct &&
				c.pctOTM <= s.cfg.MaxOTMPct &&
				c.quote.OpenInterest > s.cfg.MinOpenInterest
		},
		func(c candidate) bool {
			return c.quote.OpenInterest > s.cfg.RelaxedOpenInterest
		},
	}

	var filtered []candidate
	for _, keep := range tiers {
		for _, c := range otm {
			if keep(c) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			break
		}
	}
	if len(filtered) == 0 {
		return nil, errors.Wrapf(errors.ErrNoMatchingContract, "%s chain empty after relaxed filter", optType)
	}

	// Strictly-greater comparison keeps the first occurrence on ties.
	best := filtered[0]
	bestScore := s.score(best)
	for _, c := range filtered[1:] {
		if sc := s.score(c); sc > bestScore {
			best, bestScore = c, sc
		}
	}

	return &models.SelectedContract{
		ContractQuote: best.quote,
		Type:          optType,
		PctOTM:        best.pctOTM,
		Score:         bestScore,
	}, nil
}

// outOfTheMoney filters the chain to the unfavorable side of spot and
// computes the positive OTM magnitude for each row.
func outOfTheMoney(chain []models.ContractQuote, spot float64, optType models.OptionType) []candidate {
	var out []candidate
	for _, q := range chain {
		var pct float64
		switch optType {
		case models.Put:
			if q.Strike >= spot {
				continue
			}
			pct = (spot - q.Strike) / spot * 100
		default:
			if q.Strike <= spot {
				continue
			}
			pct = (q.Strike - spot) / spot * 100
		}
		out = append(out, candidate{quote: q, pctOTM: pct})
	}
	return out
}

// score combines proximity to the target moneyness, liquidity and
// spread tightness into a single ranking value.
func (s *Selector) score(c candidate) float64 {
	return -math.Abs(c.pctOTM-s.cfg.TargetOTMPct)*2 +
		math.Log1p(float64(c.quote.OpenInterest))*1.5 -
		spreadPct(c.quote)*0.5
}

// spreadPct is the bid-ask spread as a percentage of last price. Rows
// with no traded last price contribute no spread penalty instead of an
// unbounded one.
func spreadPct(q models.ContractQuote) float64 {
	if q.LastPrice <= 0 {
		return 0
	}
	return (q.Ask - q.Bid) / q.LastPrice * 100
}
