// Package marketdata provides market data loading for the analysis
// pipeline. The core consumes a Provider; persistence formats and
// fetch mechanics stay behind this interface.
package marketdata

import (
	"context"

	"optionsdesk/internal/analysis"
)

// Provider supplies one complete market snapshot per analysis run:
// the trailing daily price series, the call and put chains for one
// expiration, and the scalar metadata.
type Provider interface {
	Snapshot(ctx context.Context, ticker string) (*analysis.Snapshot, error)
}
