package domain

import (
	"context"
	"time"
)

// BarSource supplies chronological daily bars for a stock, most recent
// last. The sequence is gap-tolerant: non-trading days are absent.
// Implementations live outside the core (market-data collaborator or the
// local bar store fed by it).
type BarSource interface {
	GetDailyBars(ctx context.Context, stockCode string, lookbackDays int) ([]DailyBar, error)
}

// ScoreStore persists ranked screening runs and reads them back.
type ScoreStore interface {
	SaveRun(ctx context.Context, run ScreeningRun) error
	GetRun(ctx context.Context, screenDate time.Time) (*ScreeningRun, error)
	LatestRun(ctx context.Context) (*ScreeningRun, error)
	// ScoresWithoutOutcome returns scores from a run that have no linked
	// next-day outcome yet.
	ScoresWithoutOutcome(ctx context.Context, screenDate time.Time) ([]StockScore, error)
	// PendingOutcomeDates returns the distinct screen dates that still
	// have scores without an outcome, oldest first.
	PendingOutcomeDates(ctx context.Context) ([]time.Time, error)
}

// OutcomeStore persists realized next-day outcomes and serves the
// optimizer's training window.
type OutcomeStore interface {
	SaveOutcome(ctx context.Context, outcome NextDayOutcome) error
	// Pairs returns score/outcome pairs whose screen date falls within the
	// trailing window.
	Pairs(ctx context.Context, windowDays int) ([]ScoreOutcomePair, error)
}

// WeightStore owns the active weight set and its append-only history.
// Replace swaps the active set and appends the audit rows in one
// transaction: the swap is all-or-nothing.
type WeightStore interface {
	Active(ctx context.Context) (Weights, error)
	Replace(ctx context.Context, next Weights, changes []WeightChange) error
	History(ctx context.Context, limit int) ([]WeightChange, error)
}
