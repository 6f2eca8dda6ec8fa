package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"optionsdesk/internal/analysis"
	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
)

// csvDate parses the date formats the data files carry: plain dates
// and timezone-suffixed timestamps.
type csvDate struct {
	time.Time
}

func (d *csvDate) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// csvCount tolerates counts serialized as floats ("1534.0").
type csvCount int64

func (c *csvCount) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing count %q: %w", s, err)
	}
	*c = csvCount(f)
	return nil
}

// priceRow is one row of <TICKER>_historical.csv.
type priceRow struct {
	Date  csvDate `csv:"Date"`
	Close float64 `csv:"Close"`
}

// chainRow is one row of the call or put chain CSV.
type chainRow struct {
	ContractSymbol    string   `csv:"contractSymbol"`
	Strike            float64  `csv:"strike"`
	LastPrice         float64  `csv:"lastPrice"`
	Bid               float64  `csv:"bid"`
	Ask               float64  `csv:"ask"`
	Volume            csvCount `csv:"volume"`
	OpenInterest      csvCount `csv:"openInterest"`
	ImpliedVolatility float64  `csv:"impliedVolatility"`
}

// metaRow is the single row of <TICKER>_metadata.csv.
type metaRow struct {
	Ticker       string  `csv:"ticker"`
	Expiration   string  `csv:"expiration"`
	RiskFreeRate float64 `csv:"risk_free_rate"`
	CurrentPrice float64 `csv:"current_price"`
	DataEndDate  string  `csv:"data_end_date"`
}

// CSVProvider loads snapshots from a directory of per-ticker CSV
// files: <TICKER>_historical.csv, <TICKER>_calls.csv,
// <TICKER>_puts.csv and <TICKER>_metadata.csv.
type CSVProvider struct {
	dir              string
	riskFreeFallback float64
	clock            func() time.Time
}

// NewCSVProvider creates a provider reading from dir. The fallback
// rate is used when the metadata file carries no risk-free rate.
func NewCSVProvider(dir string, riskFreeFallback float64) *CSVProvider {
	return &CSVProvider{
		dir:              dir,
		riskFreeFallback: riskFreeFallback,
		clock:            time.Now,
	}
}

// Snapshot loads all four files for the ticker. Total absence of
// required data aborts with a DataError; the put chain is optional.
func (p *CSVProvider) Snapshot(ctx context.Context, ticker string) (*analysis.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bars, err := p.loadHistorical(ticker)
	if err != nil {
		return nil, err
	}

	calls, err := p.loadChain(ticker, "calls")
	if err != nil {
		return nil, err
	}

	// Put chain is the optional comparison leg.
	puts, err := p.loadChain(ticker, "puts")
	if err != nil {
		puts = nil
	}

	meta, err := p.loadMeta(ticker)
	if err != nil {
		return nil, err
	}

	return &analysis.Snapshot{
		Bars:  bars,
		Calls: calls,
		Puts:  puts,
		Meta:  meta,
	}, nil
}

func (p *CSVProvider) loadHistorical(ticker string) ([]models.PriceBar, error) {
	path := filepath.Join(p.dir, ticker+"_historical.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError("historical", ticker, path, errors.ErrDataNotFound)
	}
	defer f.Close()

	var rows []*priceRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError("historical", ticker, "parsing CSV", err)
	}

	bars := make([]models.PriceBar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, models.PriceBar{Date: r.Date.Time, Close: r.Close})
	}
	return bars, nil
}

func (p *CSVProvider) loadChain(ticker, side string) ([]models.ContractQuote, error) {
	path := filepath.Join(p.dir, fmt.Sprintf("%s_%s.csv", ticker, side))
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDataError(side, ticker, path, errors.ErrDataNotFound)
	}
	defer f.Close()

	var rows []*chainRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewDataError(side, ticker, "parsing CSV", err)
	}

	chain := make([]models.ContractQuote, 0, len(rows))
	for _, r := range rows {
		chain = append(chain, models.ContractQuote{
			ContractSymbol:    r.ContractSymbol,
			Strike:            r.Strike,
			Bid:               r.Bid,
			Ask:               r.Ask,
			LastPrice:         r.LastPrice,
			OpenInterest:      int64(r.OpenInterest),
			Volume:            int64(r.Volume),
			ImpliedVolatility: r.ImpliedVolatility,
		})
	}
	return chain, nil
}

func (p *CSVProvider) loadMeta(ticker string) (models.AnalysisMeta, error) {
	path := filepath.Join(p.dir, ticker+"_metadata.csv")
	f, err := os.Open(path)
	if err != nil {
		return models.AnalysisMeta{}, errors.NewDataError("metadata", ticker, path, errors.ErrDataNotFound)
	}
	defer f.Close()

	var rows []*metaRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return models.AnalysisMeta{}, errors.NewDataError("metadata", ticker, "parsing CSV", err)
	}
	if len(rows) == 0 {
		return models.AnalysisMeta{}, errors.NewDataError("metadata", ticker, "empty metadata file", errors.ErrDataNotFound)
	}
	row := rows[0]

	expiry, err := time.Parse("2006-01-02", row.Expiration)
	if err != nil {
		return models.AnalysisMeta{}, errors.NewDataError("metadata", ticker, "bad expiration "+row.Expiration, err)
	}
	dte := int(expiry.Sub(p.clock()).Hours() / 24)

	rate := row.RiskFreeRate
	if rate <= 0 {
		rate = p.riskFreeFallback
	}

	return models.AnalysisMeta{
		Ticker:       row.Ticker,
		Expiration:   row.Expiration,
		DTE:          dte,
		SpotPrice:    row.CurrentPrice,
		RiskFreeRate: rate,
		DataDate:     row.DataEndDate,
	}, nil
}
