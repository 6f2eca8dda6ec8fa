// Package store provides persistence for completed analysis runs.
package store

import (
	"context"
	"time"

	"optionsdesk/internal/models"
)

// RunSummary is one persisted analysis run, as listed by history.
type RunSummary struct {
	ID            int64
	Ticker        string
	Contract      string
	Strike        float64
	Expiration    string
	SpotPrice     float64
	MarketPrice   float64
	PriceIV       float64
	MispricingPct float64
	Valuation     string
	Regime        string
	Delta         float64
	BestScenario  string
	BestPnL       float64
	WorstScenario string
	WorstPnL      float64
	CreatedAt     time.Time
}

// RunStore persists and lists analysis runs.
type RunStore interface {
	SaveRun(ctx context.Context, r *models.Report) (int64, error)
	ListRuns(ctx context.Context, ticker string, limit int) ([]RunSummary, error)
	Close() error
}
