package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"optionsdesk/internal/errors"
	"optionsdesk/internal/models"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based run store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabaseError, "opening database: %v", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.ErrDatabaseError, "initializing schema: %v", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per completed analysis run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		contract TEXT NOT NULL,
		strike REAL NOT NULL,
		expiration TEXT NOT NULL,
		dte INTEGER NOT NULL,
		spot_price REAL NOT NULL,
		market_price REAL NOT NULL,
		price_hv REAL NOT NULL,
		price_iv REAL NOT NULL,
		mispricing_pct REAL NOT NULL,
		valuation TEXT NOT NULL,
		hv_21d REAL NOT NULL,
		implied_vol REAL NOT NULL,
		vrp REAL NOT NULL,
		regime TEXT NOT NULL,
		regime_percentile REAL NOT NULL,
		delta REAL NOT NULL,
		gamma REAL NOT NULL,
		theta_daily REAL NOT NULL,
		vega_dollar REAL NOT NULL,
		rho REAL NOT NULL,
		hedge_shares REAL NOT NULL,
		hedge_direction TEXT NOT NULL,
		hedge_capital REAL NOT NULL,
		best_scenario TEXT NOT NULL,
		best_pnl REAL NOT NULL,
		worst_scenario TEXT NOT NULL,
		worst_pnl REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_ticker ON runs(ticker, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists the key findings of a completed report.
func (s *SQLiteStore) SaveRun(ctx context.Context, r *models.Report) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			ticker, contract, strike, expiration, dte, spot_price,
			market_price, price_hv, price_iv, mispricing_pct, valuation,
			hv_21d, implied_vol, vrp, regime, regime_percentile,
			delta, gamma, theta_daily, vega_dollar, rho,
			hedge_shares, hedge_direction, hedge_capital,
			best_scenario, best_pnl, worst_scenario, worst_pnl, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Meta.Ticker, r.Selected.ContractSymbol, r.Selected.Strike,
		r.Meta.Expiration, r.Meta.DTE, r.Meta.SpotPrice,
		r.Selected.MidPrice(), r.Pricing.PriceHV, r.Pricing.PriceIV,
		r.Pricing.MispricingPct, string(r.Pricing.Valuation),
		r.Volatility.HV21, r.Selected.ImpliedVolatility, r.VRP,
		string(r.Volatility.Regime), r.Volatility.Percentile,
		r.Greeks.Delta, r.Greeks.Gamma, r.Greeks.ThetaDaily,
		r.Greeks.VegaDollar, r.Greeks.Rho,
		r.Hedge.Shares, string(r.Hedge.Direction), r.Hedge.Capital,
		r.Scenarios.Best.Name, r.Scenarios.Best.PnL,
		r.Scenarios.Worst.Name, r.Scenarios.Worst.PnL,
		r.GeneratedAt.UTC(),
	)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrDatabaseError, "saving run: %v", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs, newest first. An empty ticker
// matches all tickers.
func (s *SQLiteStore) ListRuns(ctx context.Context, ticker string, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, ticker, contract, strike, expiration, spot_price,
			market_price, price_iv, mispricing_pct, valuation, regime,
			delta, best_scenario, best_pnl, worst_scenario, worst_pnl,
			created_at
		FROM runs`
	args := []interface{}{}
	if ticker != "" {
		query += " WHERE ticker = ?"
		args = append(args, ticker)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabaseError, "listing runs: %v", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var createdAt time.Time
		if err := rows.Scan(
			&r.ID, &r.Ticker, &r.Contract, &r.Strike, &r.Expiration,
			&r.SpotPrice, &r.MarketPrice, &r.PriceIV, &r.MispricingPct,
			&r.Valuation, &r.Regime, &r.Delta,
			&r.BestScenario, &r.BestPnL, &r.WorstScenario, &r.WorstPnL,
			&createdAt,
		); err != nil {
			return nil, errors.Wrapf(errors.ErrDatabaseError, "scanning run: %v", err)
		}
		r.CreatedAt = createdAt
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
