package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"jongga-screener/internal/domain"
	"jongga-screener/pkg/formulas"
)

// outcomeLookback is the minimum bar window fetched when hunting for
// the next trading day after a screen date. Backfilled dates widen it
// so the window still reaches their session.
const outcomeLookback = 10

// Collector records realized next-day outcomes for screened stocks.
type Collector struct {
	bars     domain.BarSource
	scores   domain.ScoreStore
	outcomes domain.OutcomeStore
	log      zerolog.Logger
}

// NewCollector creates an outcome collector.
func NewCollector(bars domain.BarSource, scores domain.ScoreStore, outcomes domain.OutcomeStore, log zerolog.Logger) *Collector {
	return &Collector{
		bars:     bars,
		scores:   scores,
		outcomes: outcomes,
		log:      log.With().Str("service", "outcome_collector").Logger(),
	}
}

// CollectResult summarizes one collection pass.
type CollectResult struct {
	Collected int `json:"collected"`
	Skipped   int `json:"skipped"` // next trading day has not closed yet
	Failed    int `json:"failed"`
}

// CollectPending sweeps every screen date that still has scores without
// an outcome. Dates whose next session has not closed yet stay pending.
func (c *Collector) CollectPending(ctx context.Context) (CollectResult, error) {
	dates, err := c.scores.PendingOutcomeDates(ctx)
	if err != nil {
		return CollectResult{}, fmt.Errorf("load pending dates: %w", err)
	}

	var total CollectResult
	for _, d := range dates {
		res, err := c.Collect(ctx, d)
		if err != nil {
			return total, err
		}
		total.Collected += res.Collected
		total.Skipped += res.Skipped
		total.Failed += res.Failed
	}
	return total, nil
}

// Collect records the next-trading-day outcome for every score of the
// given screen date that has none yet. A stock whose next session has
// not closed is skipped and picked up on a later pass; per-stock
// failures never abort the pass.
func (c *Collector) Collect(ctx context.Context, screenDate time.Time) (CollectResult, error) {
	pending, err := c.scores.ScoresWithoutOutcome(ctx, screenDate)
	if err != nil {
		return CollectResult{}, fmt.Errorf("load pending scores: %w", err)
	}

	var res CollectResult
	for _, score := range pending {
		outcome, err := c.collectOne(ctx, score)
		if err != nil {
			c.log.Warn().Err(err).Str("code", score.StockCode).Msg("Outcome collection failed")
			res.Failed++
			continue
		}
		if outcome == nil {
			res.Skipped++
			continue
		}
		if err := c.outcomes.SaveOutcome(ctx, *outcome); err != nil {
			c.log.Error().Err(err).Str("code", score.StockCode).Msg("Failed to persist outcome")
			res.Failed++
			continue
		}
		res.Collected++
	}

	c.log.Info().
		Str("screen_date", screenDate.Format("2006-01-02")).
		Int("collected", res.Collected).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Msg("Outcome collection finished")
	return res, nil
}

// collectOne returns nil without error when the next trading day is not
// available yet.
func (c *Collector) collectOne(ctx context.Context, score domain.StockScore) (*domain.NextDayOutcome, error) {
	scoredClose := score.CurrentPrice
	if scoredClose <= 0 {
		return nil, fmt.Errorf("scored close is %v: %w", scoredClose, domain.ErrInvalidBarData)
	}

	// The bar source returns the latest N sessions. Size the window by
	// the screen date's age so a backfilled date is still covered.
	lookback := outcomeLookback
	if age := int(time.Since(score.ScreenDate).Hours()/24) + 2; age > lookback {
		lookback = age
	}
	bars, err := c.bars.GetDailyBars(ctx, score.StockCode, lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}

	nextIdx := -1
	for i := range bars {
		if bars[i].Date.After(score.ScreenDate) {
			nextIdx = i
			break
		}
	}
	if nextIdx < 0 {
		return nil, nil
	}
	if nextIdx == 0 {
		// No bar at or before the screen date survived in the window,
		// so this bar is not provably the first session after it.
		return nil, nil
	}
	next := &bars[nextIdx]

	return &domain.NextDayOutcome{
		StockCode:      score.StockCode,
		ScreenDate:     score.ScreenDate,
		NextDate:       next.Date,
		GapRate:        formulas.PercentChange(scoredClose, next.Open),
		DayChangeRate:  formulas.PercentChange(scoredClose, next.Close),
		HighChangeRate: formulas.PercentChange(scoredClose, next.High),
		LowChangeRate:  formulas.PercentChange(scoredClose, next.Low),
	}, nil
}
