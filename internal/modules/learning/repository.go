package learning

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

// OutcomeRepository persists next-day outcomes in the screener database.
// It implements domain.OutcomeStore.
type OutcomeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewOutcomeRepository creates an outcome repository.
func NewOutcomeRepository(db *sql.DB, log zerolog.Logger) *OutcomeRepository {
	return &OutcomeRepository{
		db:  db,
		log: log.With().Str("repo", "outcomes").Logger(),
	}
}

// SaveOutcome stores one realized outcome. Re-feeding the same
// (screen date, code) pair overwrites it.
func (r *OutcomeRepository) SaveOutcome(ctx context.Context, o domain.NextDayOutcome) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO next_day_outcomes
			(screen_date, code, next_date, gap_rate, day_change_rate, high_change_rate, low_change_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(screen_date, code) DO UPDATE SET
			next_date = excluded.next_date,
			gap_rate = excluded.gap_rate,
			day_change_rate = excluded.day_change_rate,
			high_change_rate = excluded.high_change_rate,
			low_change_rate = excluded.low_change_rate`,
		o.ScreenDate.Format(dateLayout), o.StockCode, o.NextDate.Format(dateLayout),
		o.GapRate, o.DayChangeRate, o.HighChangeRate, o.LowChangeRate)
	if err != nil {
		return fmt.Errorf("save outcome %s %s: %w", o.StockCode, o.ScreenDate.Format(dateLayout), err)
	}
	return nil
}

// Pairs joins scores with their realized outcomes over the trailing
// window, oldest first.
func (r *OutcomeRepository) Pairs(ctx context.Context, windowDays int) ([]domain.ScoreOutcomePair, error) {
	cutoff := time.Now().AddDate(0, 0, -windowDays).Format(dateLayout)
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.screen_date, s.code,
		       s.raw_cci_value, s.raw_change, s.raw_disparity, s.raw_consec, s.raw_volume, s.raw_candle,
		       o.next_date, o.gap_rate, o.day_change_rate, o.high_change_rate, o.low_change_rate
		FROM stock_scores s
		JOIN next_day_outcomes o
		  ON o.screen_date = s.screen_date AND o.code = s.code
		WHERE s.screen_date >= ?
		ORDER BY s.screen_date ASC, s.code ASC`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query score/outcome pairs: %w", err)
	}
	defer rows.Close()

	var pairs []domain.ScoreOutcomePair
	for rows.Next() {
		var p domain.ScoreOutcomePair
		var dateStr, nextStr string
		err := rows.Scan(
			&dateStr, &p.StockCode,
			&p.Scores.CCIValue, &p.Scores.Change, &p.Scores.Disparity,
			&p.Scores.Consec, &p.Scores.Volume, &p.Scores.Candle,
			&nextStr, &p.Outcome.GapRate, &p.Outcome.DayChangeRate,
			&p.Outcome.HighChangeRate, &p.Outcome.LowChangeRate)
		if err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		if p.ScreenDate, err = time.Parse(dateLayout, dateStr); err != nil {
			return nil, fmt.Errorf("parse pair date %q: %w", dateStr, err)
		}
		if p.Outcome.NextDate, err = time.Parse(dateLayout, nextStr); err != nil {
			return nil, fmt.Errorf("parse outcome date %q: %w", nextStr, err)
		}
		p.Outcome.StockCode = p.StockCode
		p.Outcome.ScreenDate = p.ScreenDate
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

// WeightRepository owns the active weight set and its audit history in
// the weights database (ledger profile). It implements domain.WeightStore.
type WeightRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewWeightRepository creates a weight repository.
func NewWeightRepository(db *sql.DB, log zerolog.Logger) *WeightRepository {
	return &WeightRepository{
		db:  db,
		log: log.With().Str("repo", "weights").Logger(),
	}
}

// Seed writes the neutral weight set if no weights exist yet. Called
// once at startup.
func (r *WeightRepository) Seed(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM weight_config`).Scan(&n); err != nil {
		return fmt.Errorf("count weights: %w", err)
	}
	if n > 0 {
		return nil
	}
	r.log.Info().Msg("Seeding neutral weights")
	return r.write(ctx, domain.DefaultWeights(), nil)
}

// Active returns the current weight set.
func (r *WeightRepository) Active(ctx context.Context) (domain.Weights, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT indicator, weight, revision, updated_at FROM weight_config`)
	if err != nil {
		return domain.Weights{}, fmt.Errorf("query weights: %w", err)
	}
	defer rows.Close()

	// Start below any stored revision so the first row always sets the
	// set-level revision and timestamp.
	w := domain.Weights{Values: make(map[domain.Indicator]float64), Revision: -1}
	for rows.Next() {
		var ind string
		var weight float64
		var revision int64
		var updatedStr string
		if err := rows.Scan(&ind, &weight, &revision, &updatedStr); err != nil {
			return domain.Weights{}, fmt.Errorf("scan weight: %w", err)
		}
		w.Values[domain.Indicator(ind)] = weight
		if revision > w.Revision {
			w.Revision = revision
			if w.UpdatedAt, err = time.Parse(time.RFC3339, updatedStr); err != nil {
				return domain.Weights{}, fmt.Errorf("parse weight updated_at %q: %w", updatedStr, err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Weights{}, fmt.Errorf("iterate weights: %w", err)
	}
	if len(w.Values) == 0 {
		return domain.DefaultWeights(), nil
	}
	return w, nil
}

// Replace swaps the active set and appends the audit rows in one
// transaction. A validation or write failure leaves the previous set
// untouched. Each swap advances the revision past the one it replaces.
func (r *WeightRepository) Replace(ctx context.Context, next domain.Weights, changes []domain.WeightChange) error {
	if err := next.Validate(); err != nil {
		return err
	}
	next.Revision++
	next.UpdatedAt = time.Now().UTC()
	return r.write(ctx, next, changes)
}

func (r *WeightRepository) write(ctx context.Context, w domain.Weights, changes []domain.WeightChange) error {
	now := time.Now().UTC()
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = now
	}
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO weight_config (indicator, weight, revision, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(indicator) DO UPDATE SET
				weight = excluded.weight,
				revision = excluded.revision,
				updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("prepare weight upsert: %w", err)
		}
		defer stmt.Close()

		for _, ind := range domain.AllIndicators {
			_, err := stmt.ExecContext(ctx,
				string(ind), w.Get(ind), w.Revision, w.UpdatedAt.Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("upsert weight %s: %w", ind, err)
			}
		}

		for _, c := range changes {
			changedAt := c.ChangedAt
			if changedAt.IsZero() {
				changedAt = now
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO weight_history
					(indicator, old_weight, new_weight, correlation, sample_size, reason, changed_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				string(c.Indicator), c.OldWeight, c.NewWeight,
				c.Correlation, c.SampleSize, c.Reason, changedAt.Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("append weight history %s: %w", c.Indicator, err)
			}
		}
		return nil
	})
}

// History returns the most recent audit rows, newest first.
func (r *WeightRepository) History(ctx context.Context, limit int) ([]domain.WeightChange, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT indicator, old_weight, new_weight, correlation, sample_size, reason, changed_at
		FROM weight_history
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query weight history: %w", err)
	}
	defer rows.Close()

	var history []domain.WeightChange
	for rows.Next() {
		var c domain.WeightChange
		var ind, changedStr string
		if err := rows.Scan(&ind, &c.OldWeight, &c.NewWeight, &c.Correlation, &c.SampleSize, &c.Reason, &changedStr); err != nil {
			return nil, fmt.Errorf("scan weight history: %w", err)
		}
		c.Indicator = domain.Indicator(ind)
		if c.ChangedAt, err = time.Parse(time.RFC3339, changedStr); err != nil {
			return nil, fmt.Errorf("parse history changed_at %q: %w", changedStr, err)
		}
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weight history: %w", err)
	}
	return history, nil
}
