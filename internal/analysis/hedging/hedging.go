// Package hedging converts an option position's delta exposure into a
// share-hedge instruction.
package hedging

import (
	"math"

	"optionsdesk/internal/models"
)

// Position describes the option position being hedged.
type Position struct {
	Delta             float64 // per-contract delta
	StockPrice        float64
	Contracts         int
	SharesPerContract int
}

// Hedge returns the share position that neutralizes the aggregate
// delta. The hedge is the opposite-sign position: long calls are
// hedged by shorting stock.
func Hedge(pos Position) models.HedgeInstruction {
	exposure := pos.Delta * float64(pos.Contracts) * float64(pos.SharesPerContract)
	hedgeShares := -exposure

	direction := models.HedgeLong
	if hedgeShares < 0 {
		direction = models.HedgeShort
	}

	return models.HedgeInstruction{
		DeltaPerContract: pos.Delta,
		DeltaExposure:    exposure,
		Shares:           hedgeShares,
		Direction:        direction,
		Capital:          math.Abs(hedgeShares) * pos.StockPrice,
	}
}

// PnL estimates the hedge leg's profit for a percentage move in the
// stock under a static delta assumption, with no gamma correction.
func PnL(pos Position, priceChangePct float64) float64 {
	newPrice := pos.StockPrice * (1 + priceChangePct)
	hedgeShares := -pos.Delta * float64(pos.Contracts) * float64(pos.SharesPerContract)
	return hedgeShares * (newPrice - pos.StockPrice)
}
