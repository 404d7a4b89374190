package screener

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jongga-screener/internal/database"
	"jongga-screener/internal/domain"
)

const dateLayout = "2006-01-02"

// Repository persists screening runs in the screener database. It
// implements domain.ScoreStore.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a score repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "screener").Logger(),
	}
}

// SaveRun stores a run and all its scores in one transaction. Re-running
// a screen date replaces the previous run for that date.
func (r *Repository) SaveRun(ctx context.Context, run domain.ScreeningRun) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		dateStr := run.ScreenDate.Format(dateLayout)

		// Cascade removes the old run's scores.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM screening_runs WHERE screen_date = ?`, dateStr); err != nil {
			return fmt.Errorf("clear previous run: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO screening_runs (id, screen_date, universe, excluded, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, dateStr, run.Universe, run.Excluded,
			run.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stock_scores (
				run_id, screen_date, code, name,
				current_price, change_rate, trading_value,
				cci, cci_slope, ma20, disparity, consecutive_up, volume_ratio,
				raw_cci_value, raw_change, raw_disparity, raw_consec, raw_volume, raw_candle,
				wgt_cci_value, wgt_change, wgt_disparity, wgt_consec, wgt_volume, wgt_candle,
				bonus_cci_rising, bonus_ma20_trend, bonus_candle,
				total, grade, rank
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare score insert: %w", err)
		}
		defer stmt.Close()

		for _, s := range run.Scores {
			_, err := stmt.ExecContext(ctx,
				run.ID, dateStr, s.StockCode, s.StockName,
				s.CurrentPrice, s.ChangeRate, s.TradingValue,
				s.Indicators.CCI, s.Indicators.CCISlope, s.Indicators.MA20,
				s.Indicators.Disparity, s.Indicators.ConsecutiveUp, s.Indicators.VolumeRatio,
				s.Raw.CCIValue, s.Raw.Change, s.Raw.Disparity, s.Raw.Consec, s.Raw.Volume, s.Raw.Candle,
				s.Weighted.CCIValue, s.Weighted.Change, s.Weighted.Disparity, s.Weighted.Consec, s.Weighted.Volume, s.Weighted.Candle,
				s.Bonus.CCIRising, s.Bonus.MA20Trend, s.Bonus.NotHighEqClose,
				s.Total, string(s.Grade), s.Rank)
			if err != nil {
				return fmt.Errorf("insert score %s: %w", s.StockCode, err)
			}
		}
		return nil
	})
}

// GetRun returns the run for a screen date, or nil when none exists.
func (r *Repository) GetRun(ctx context.Context, screenDate time.Time) (*domain.ScreeningRun, error) {
	return r.loadRun(ctx,
		`SELECT id, screen_date, universe, excluded, created_at
		 FROM screening_runs WHERE screen_date = ?`,
		screenDate.Format(dateLayout))
}

// LatestRun returns the most recent run, or nil when none exists.
func (r *Repository) LatestRun(ctx context.Context) (*domain.ScreeningRun, error) {
	return r.loadRun(ctx,
		`SELECT id, screen_date, universe, excluded, created_at
		 FROM screening_runs ORDER BY screen_date DESC LIMIT 1`)
}

func (r *Repository) loadRun(ctx context.Context, query string, args ...any) (*domain.ScreeningRun, error) {
	var run domain.ScreeningRun
	var dateStr, createdStr string
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&run.ID, &dateStr, &run.Universe, &run.Excluded, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	if run.ScreenDate, err = time.Parse(dateLayout, dateStr); err != nil {
		return nil, fmt.Errorf("parse run date %q: %w", dateStr, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339, createdStr); err != nil {
		return nil, fmt.Errorf("parse run created_at %q: %w", createdStr, err)
	}

	run.Scores, err = r.loadScores(ctx,
		scoreColumns+` WHERE s.run_id = ? ORDER BY s.rank ASC`, run.ID)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ScoresWithoutOutcome returns scores from the run on screenDate that
// have no linked next-day outcome yet.
func (r *Repository) ScoresWithoutOutcome(ctx context.Context, screenDate time.Time) ([]domain.StockScore, error) {
	dateStr := screenDate.Format(dateLayout)
	return r.loadScores(ctx,
		scoreColumns+`
		 WHERE s.screen_date = ?
		   AND NOT EXISTS (
		       SELECT 1 FROM next_day_outcomes o
		       WHERE o.screen_date = s.screen_date AND o.code = s.code)
		 ORDER BY s.rank ASC`, dateStr)
}

// PendingOutcomeDates returns the screen dates with at least one score
// still missing its next-day outcome, oldest first.
func (r *Repository) PendingOutcomeDates(ctx context.Context) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT s.screen_date
		FROM stock_scores s
		WHERE NOT EXISTS (
			SELECT 1 FROM next_day_outcomes o
			WHERE o.screen_date = s.screen_date AND o.code = s.code)
		ORDER BY s.screen_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("query pending outcome dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, fmt.Errorf("scan pending date: %w", err)
		}
		d, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse pending date %q: %w", dateStr, err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending dates: %w", err)
	}
	return dates, nil
}

const scoreColumns = `
	SELECT s.screen_date, s.code, s.name,
	       s.current_price, s.change_rate, s.trading_value,
	       s.cci, s.cci_slope, s.ma20, s.disparity, s.consecutive_up, s.volume_ratio,
	       s.raw_cci_value, s.raw_change, s.raw_disparity, s.raw_consec, s.raw_volume, s.raw_candle,
	       s.wgt_cci_value, s.wgt_change, s.wgt_disparity, s.wgt_consec, s.wgt_volume, s.wgt_candle,
	       s.bonus_cci_rising, s.bonus_ma20_trend, s.bonus_candle,
	       s.total, s.grade, s.rank
	FROM stock_scores s`

func (r *Repository) loadScores(ctx context.Context, query string, args ...any) ([]domain.StockScore, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.StockScore
	for rows.Next() {
		var s domain.StockScore
		var dateStr, gradeStr string
		err := rows.Scan(
			&dateStr, &s.StockCode, &s.StockName,
			&s.CurrentPrice, &s.ChangeRate, &s.TradingValue,
			&s.Indicators.CCI, &s.Indicators.CCISlope, &s.Indicators.MA20,
			&s.Indicators.Disparity, &s.Indicators.ConsecutiveUp, &s.Indicators.VolumeRatio,
			&s.Raw.CCIValue, &s.Raw.Change, &s.Raw.Disparity, &s.Raw.Consec, &s.Raw.Volume, &s.Raw.Candle,
			&s.Weighted.CCIValue, &s.Weighted.Change, &s.Weighted.Disparity, &s.Weighted.Consec, &s.Weighted.Volume, &s.Weighted.Candle,
			&s.Bonus.CCIRising, &s.Bonus.MA20Trend, &s.Bonus.NotHighEqClose,
			&s.Total, &gradeStr, &s.Rank)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		if s.ScreenDate, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, fmt.Errorf("parse score date %q: %w", dateStr, err)
		}
		s.Grade = domain.Grade(gradeStr)
		if s.Strategy, err = domain.StrategyFor(s.Grade); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return scores, nil
}
