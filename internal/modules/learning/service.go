package learning

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"jongga-screener/internal/domain"
	"jongga-screener/pkg/formulas"
)

// Service runs the daily learning cycle: collect yesterday's outcomes,
// analyze the trailing window, and swap in a new weight set when the
// evidence supports one.
type Service struct {
	collector *Collector
	outcomes  domain.OutcomeStore
	weights   domain.WeightStore
	cfg       OptimizerConfig
	window    int // trailing window, days
	log       zerolog.Logger
}

// NewService creates a learning service.
func NewService(collector *Collector, outcomes domain.OutcomeStore, weights domain.WeightStore, cfg OptimizerConfig, windowDays int, log zerolog.Logger) *Service {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Service{
		collector: collector,
		outcomes:  outcomes,
		weights:   weights,
		cfg:       cfg,
		window:    windowDays,
		log:       log.With().Str("service", "learning").Logger(),
	}
}

// LearningResult summarizes one daily learning run.
type LearningResult struct {
	Collected      CollectResult       `json:"collected"`
	WeightsUpdated bool                `json:"weights_updated"`
	Optimization   *OptimizationResult `json:"optimization,omitempty"`
}

// RunDaily collects every pending outcome and re-optimizes the weights
// from the trailing window. An optimization that fails for lack of
// evidence leaves the active weights untouched and is reported, not
// retried.
func (s *Service) RunDaily(ctx context.Context) (*LearningResult, error) {
	collected, err := s.collector.CollectPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect outcomes: %w", err)
	}
	result := &LearningResult{Collected: collected}

	pairs, err := s.outcomes.Pairs(ctx, s.window)
	if err != nil {
		return nil, fmt.Errorf("load score/outcome pairs: %w", err)
	}

	current, err := s.weights.Active(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active weights: %w", err)
	}

	opt, err := Optimize(pairs, current, s.cfg)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientSamples) {
			s.log.Warn().Err(err).Int("pairs", len(pairs)).Msg("Optimization skipped, weights unchanged")
			return result, nil
		}
		return nil, fmt.Errorf("optimize weights: %w", err)
	}
	result.Optimization = opt

	if len(opt.Changes) == 0 {
		s.log.Info().Int("samples", opt.SampleSize).Msg("No weight moved outside the dead zone")
		return result, nil
	}

	// All-or-nothing: the new set and its audit rows land in one
	// transaction, or the old set stays active.
	if err := s.weights.Replace(ctx, opt.NewWeights, opt.Changes); err != nil {
		return nil, fmt.Errorf("replace weights: %w", err)
	}
	result.WeightsUpdated = true

	for _, ch := range opt.Changes {
		s.log.Info().
			Str("indicator", string(ch.Indicator)).
			Float64("old", ch.OldWeight).
			Float64("new", ch.NewWeight).
			Float64("correlation", ch.Correlation).
			Int("samples", ch.SampleSize).
			Msg("Weight revised")
	}
	return result, nil
}

// PerformanceSummary aggregates realized outcomes over a trailing window.
type PerformanceSummary struct {
	Trades    int     `json:"trades"`
	Wins      int     `json:"wins"`
	WinRate   float64 `json:"win_rate"` // %
	AvgReturn float64 `json:"avg_return"`
	AvgGap    float64 `json:"avg_gap"`
	AvgHigh   float64 `json:"avg_high"`
	MaxReturn float64 `json:"max_return"`
	MinReturn float64 `json:"min_return"`
}

// Performance summarizes win rate and average next-day returns over the
// trailing window.
func (s *Service) Performance(ctx context.Context, windowDays int) (*PerformanceSummary, error) {
	if windowDays <= 0 {
		windowDays = s.window
	}
	pairs, err := s.outcomes.Pairs(ctx, windowDays)
	if err != nil {
		return nil, fmt.Errorf("load score/outcome pairs: %w", err)
	}
	if len(pairs) == 0 {
		return &PerformanceSummary{}, nil
	}

	returns := make([]float64, len(pairs))
	gaps := make([]float64, len(pairs))
	highs := make([]float64, len(pairs))
	summary := &PerformanceSummary{
		Trades:    len(pairs),
		MaxReturn: pairs[0].Outcome.DayChangeRate,
		MinReturn: pairs[0].Outcome.DayChangeRate,
	}
	for i, p := range pairs {
		r := p.Outcome.DayChangeRate
		returns[i] = r
		gaps[i] = p.Outcome.GapRate
		highs[i] = p.Outcome.HighChangeRate
		if r > 0 {
			summary.Wins++
		}
		if r > summary.MaxReturn {
			summary.MaxReturn = r
		}
		if r < summary.MinReturn {
			summary.MinReturn = r
		}
	}
	summary.WinRate = float64(summary.Wins) / float64(summary.Trades) * 100
	summary.AvgReturn = formulas.Mean(returns)
	summary.AvgGap = formulas.Mean(gaps)
	summary.AvgHigh = formulas.Mean(highs)
	return summary, nil
}
