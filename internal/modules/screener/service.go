// Package screener orchestrates one screening run: bars in, ranked
// TOP-N scores out, handed to the persistence collaborator.
package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jongga-screener/internal/domain"
	"jongga-screener/internal/modules/indicators"
	"jongga-screener/internal/modules/ranking"
	"jongga-screener/internal/modules/scoring"
	"jongga-screener/internal/modules/universe"
	"jongga-screener/pkg/formulas"
)

// barLookback covers the scoring window with headroom for the MA20
// slope and non-trading gaps.
const barLookback = 40

// Service scores the day's eligible universe and persists the ranked
// result.
type Service struct {
	bars    domain.BarSource
	weights domain.WeightStore
	scores  domain.ScoreStore
	calc    *indicators.Calculator
	filter  universe.FilterConfig
	topN    int
	log     zerolog.Logger
}

// NewService creates a screening service.
func NewService(bars domain.BarSource, weights domain.WeightStore, scores domain.ScoreStore, filter universe.FilterConfig, topN int, log zerolog.Logger) *Service {
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	return &Service{
		bars:    bars,
		weights: weights,
		scores:  scores,
		calc:    indicators.NewCalculator(log),
		filter:  filter,
		topN:    topN,
		log:     log.With().Str("service", "screener").Logger(),
	}
}

// Run screens the given candidates for screenDate and persists the
// ranked run. The active weights are read exactly once, before the
// first stock is scored, so an optimizer swap mid-run cannot shear the
// ranking. Per-stock failures exclude only that stock.
func (s *Service) Run(ctx context.Context, screenDate time.Time, candidates []universe.Candidate) (*domain.ScreeningRun, error) {
	active, err := s.weights.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active weights: %w", err)
	}
	normalizer, err := scoring.NewNormalizer(active)
	if err != nil {
		return nil, fmt.Errorf("build normalizer: %w", err)
	}

	eligible := universe.Filter(candidates, s.filter)
	s.log.Info().
		Str("screen_date", screenDate.Format("2006-01-02")).
		Int("candidates", len(candidates)).
		Int("eligible", len(eligible)).
		Msg("Screening run started")

	scored := make([]domain.StockScore, 0, len(eligible))
	excluded := 0
	for _, c := range eligible {
		score, err := s.scoreOne(ctx, screenDate, c, normalizer)
		if err != nil {
			s.log.Warn().Err(err).Str("code", c.Code).Str("name", c.Name).Msg("Stock excluded from run")
			excluded++
			continue
		}
		scored = append(scored, *score)
	}

	run := &domain.ScreeningRun{
		ID:         uuid.NewString(),
		ScreenDate: screenDate,
		CreatedAt:  time.Now().UTC(),
		Universe:   len(scored),
		Excluded:   excluded,
		Scores:     ranking.Rank(scored),
	}

	if err := s.scores.SaveRun(ctx, *run); err != nil {
		return nil, fmt.Errorf("persist screening run: %w", err)
	}

	top := ranking.TopN(run.Scores, s.topN)
	for _, t := range top {
		s.log.Info().
			Int("rank", t.Rank).
			Str("code", t.StockCode).
			Str("name", t.StockName).
			Float64("total", t.Total).
			Str("grade", string(t.Grade)).
			Msg("TOP pick")
	}
	return run, nil
}

// scoreOne computes one stock's StockScore. Indicator and normalizer
// failures bubble up so the caller can exclude the stock.
func (s *Service) scoreOne(ctx context.Context, screenDate time.Time, c universe.Candidate, normalizer *scoring.Normalizer) (*domain.StockScore, error) {
	bars, err := s.bars.GetDailyBars(ctx, c.Code, barLookback)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	// Bars recorded after the screen date would leak the future into
	// the score; cut them off.
	for len(bars) > 0 && bars[len(bars)-1].Date.After(screenDate) {
		bars = bars[:len(bars)-1]
	}

	set, err := s.calc.Compute(bars)
	if err != nil {
		return nil, err
	}

	raw, weighted, bonus, total, err := normalizer.Score(*set)
	if err != nil {
		return nil, err
	}

	total = formulas.Round1(total)
	grade := domain.GradeFor(total)
	strategy, err := domain.StrategyFor(grade)
	if err != nil {
		return nil, err
	}

	return &domain.StockScore{
		StockCode:    c.Code,
		StockName:    c.Name,
		ScreenDate:   screenDate,
		CurrentPrice: c.Price,
		ChangeRate:   set.ChangeRate,
		TradingValue: c.TradingValue,
		Indicators:   *set,
		Raw:          raw,
		Weighted:     weighted,
		Bonus:        bonus,
		Total:        total,
		Grade:        grade,
		Strategy:     strategy,
	}, nil
}
