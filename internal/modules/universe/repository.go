package universe

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jongga-screener/internal/database"
	"jongga-screener/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository stores the stock list and daily bars in the screener
// database. It implements domain.BarSource.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a universe repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "universe").Logger(),
	}
}

// UpsertStocks inserts or refreshes listed stocks.
func (r *Repository) UpsertStocks(ctx context.Context, stocks []domain.Stock) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stocks (code, name, market, updated_at)
			VALUES (?, ?, ?, datetime('now'))
			ON CONFLICT(code) DO UPDATE SET
				name = excluded.name,
				market = excluded.market,
				updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("prepare stock upsert: %w", err)
		}
		defer stmt.Close()

		for _, s := range stocks {
			if _, err := stmt.ExecContext(ctx, s.Code, s.Name, s.Market); err != nil {
				return fmt.Errorf("upsert stock %s: %w", s.Code, err)
			}
		}
		return nil
	})
}

// UpsertBars inserts or replaces daily bars for one stock. Re-feeding a
// date overwrites it, so corrected end-of-day data wins.
func (r *Repository) UpsertBars(ctx context.Context, code string, bars []domain.DailyBar) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO daily_bars (code, date, open, high, low, close, volume, trading_value)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(code, date) DO UPDATE SET
				open = excluded.open,
				high = excluded.high,
				low = excluded.low,
				close = excluded.close,
				volume = excluded.volume,
				trading_value = excluded.trading_value`)
		if err != nil {
			return fmt.Errorf("prepare bar upsert: %w", err)
		}
		defer stmt.Close()

		for _, b := range bars {
			_, err := stmt.ExecContext(ctx,
				code, b.Date.Format(dateLayout),
				b.Open, b.High, b.Low, b.Close, b.Volume, b.TradingValue)
			if err != nil {
				return fmt.Errorf("upsert bar %s %s: %w", code, b.Date.Format(dateLayout), err)
			}
		}
		return nil
	})
}

// GetDailyBars returns the last lookbackDays bars for a stock in
// chronological order, most recent last.
func (r *Repository) GetDailyBars(ctx context.Context, stockCode string, lookbackDays int) ([]domain.DailyBar, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume, trading_value
		FROM daily_bars
		WHERE code = ?
		ORDER BY date DESC
		LIMIT ?`, stockCode, lookbackDays)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", stockCode, err)
	}
	defer rows.Close()

	var bars []domain.DailyBar
	for rows.Next() {
		var b domain.DailyBar
		var dateStr string
		if err := rows.Scan(&dateStr, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume, &b.TradingValue); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Date, err = time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse bar date %q: %w", dateStr, err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}

	// Query returned newest first; flip to chronological.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// Candidates builds the screening candidates for one date from the
// stored bars: today's bar joined with the previous close for the
// change rate. Stocks without a previous bar are skipped.
func (r *Repository) Candidates(ctx context.Context, screenDate time.Time) ([]Candidate, error) {
	dateStr := screenDate.Format(dateLayout)
	rows, err := r.db.QueryContext(ctx, `
		SELECT b.code, COALESCE(s.name, b.code), b.close, b.trading_value,
		       (SELECT p.close FROM daily_bars p
		        WHERE p.code = b.code AND p.date < b.date
		        ORDER BY p.date DESC LIMIT 1) AS prev_close
		FROM daily_bars b
		LEFT JOIN stocks s ON s.code = b.code
		WHERE b.date = ?`, dateStr)
	if err != nil {
		return nil, fmt.Errorf("query candidates for %s: %w", dateStr, err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		var prevClose sql.NullFloat64
		if err := rows.Scan(&c.Code, &c.Name, &c.Price, &c.TradingValue, &prevClose); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if !prevClose.Valid || prevClose.Float64 <= 0 {
			continue
		}
		c.ChangeRate = (c.Price/prevClose.Float64 - 1) * 100
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return candidates, nil
}

// StockCount returns the number of listed stocks, for the health report.
func (r *Repository) StockCount(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stocks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stocks: %w", err)
	}
	return n, nil
}
