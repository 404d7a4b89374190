// Package learning closes the feedback loop: it collects realized
// next-day outcomes for screened stocks and adapts the indicator weights
// from the correlation between sub-scores and those outcomes.
package learning

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"jongga-screener/internal/domain"
	"jongga-screener/pkg/formulas"
)

const (
	// DefaultMinSamples is the smallest score/outcome sample the
	// optimizer will learn from.
	DefaultMinSamples = 10
	// DefaultLearningRate scales how far one revision moves a weight.
	DefaultLearningRate = 0.1
	// DefaultCorrelationThreshold is the dead zone: correlations at or
	// below this magnitude leave the weight untouched.
	DefaultCorrelationThreshold = 0.05
)

// OptimizerConfig tunes the weight adaptation.
type OptimizerConfig struct {
	MinSamples           int
	LearningRate         float64
	CorrelationThreshold float64
}

// DefaultOptimizerConfig returns the production tuning.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		MinSamples:           DefaultMinSamples,
		LearningRate:         DefaultLearningRate,
		CorrelationThreshold: DefaultCorrelationThreshold,
	}
}

// OptimizationResult is one complete weight revision: the full new set,
// one audit record per changed indicator, and the evidence behind it.
type OptimizationResult struct {
	NewWeights   domain.Weights               `json:"new_weights"`
	Changes      []domain.WeightChange        `json:"changes"`
	Correlations map[domain.Indicator]float64 `json:"correlations"`
	SampleSize   int                          `json:"sample_size"`
}

// Optimize computes a new weight set from historical score/outcome pairs.
// Per indicator it takes the Pearson correlation between that indicator's
// raw sub-score and the realized next-day close-to-close return, then
// nudges the weight by a correlation-proportional step:
//
//	new = clamp(old * (1 + correlation * learningRate), WeightMin, WeightMax)
//
// Correlations inside the dead zone produce no change and no audit row.
// Fails with ErrInsufficientSamples below the minimum sample size, or
// when no indicator yields a defined correlation (degenerate variance
// across the whole sample). A failed optimization changes nothing.
func Optimize(pairs []domain.ScoreOutcomePair, current domain.Weights, cfg OptimizerConfig) (*OptimizationResult, error) {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = DefaultMinSamples
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultLearningRate
	}
	if len(pairs) < cfg.MinSamples {
		return nil, fmt.Errorf("%d pairs, need %d: %w", len(pairs), cfg.MinSamples, domain.ErrInsufficientSamples)
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}

	returns := make([]float64, len(pairs))
	for i, p := range pairs {
		returns[i] = p.Outcome.DayChangeRate
	}

	next := current.Clone()
	now := time.Now().UTC()
	result := &OptimizationResult{
		Correlations: make(map[domain.Indicator]float64, len(domain.AllIndicators)),
		SampleSize:   len(pairs),
	}

	defined := 0
	for _, ind := range domain.AllIndicators {
		scores := subScoreSeries(pairs, ind)

		// Degenerate series (zero variance on either side) have no
		// defined correlation; the weight stays put.
		if formulas.StdDev(scores) == 0 || formulas.StdDev(returns) == 0 {
			continue
		}
		corr := stat.Correlation(scores, returns, nil)
		if math.IsNaN(corr) || math.IsInf(corr, 0) {
			continue
		}
		corr = math.Max(-1, math.Min(1, corr))
		defined++
		result.Correlations[ind] = corr

		if math.Abs(corr) <= cfg.CorrelationThreshold {
			continue
		}

		old := current.Get(ind)
		proposed := old * (1 + corr*cfg.LearningRate)
		proposed = math.Max(domain.WeightMin, math.Min(domain.WeightMax, proposed))
		proposed = round3(proposed)
		if proposed == old {
			continue
		}

		next.Values[ind] = proposed
		result.Changes = append(result.Changes, domain.WeightChange{
			Indicator:   ind,
			OldWeight:   old,
			NewWeight:   proposed,
			Correlation: corr,
			SampleSize:  len(pairs),
			Reason:      fmt.Sprintf("corr %+.4f vs next-day return over %d samples", corr, len(pairs)),
			ChangedAt:   now,
		})
	}

	if defined == 0 {
		return nil, fmt.Errorf("no indicator produced a defined correlation: %w", domain.ErrInsufficientSamples)
	}

	next.UpdatedAt = now
	result.NewWeights = next
	return result, nil
}

func subScoreSeries(pairs []domain.ScoreOutcomePair, ind domain.Indicator) []float64 {
	series := make([]float64, len(pairs))
	for i, p := range pairs {
		switch ind {
		case domain.IndicatorCCIValue:
			series[i] = p.Scores.CCIValue
		case domain.IndicatorChange:
			series[i] = p.Scores.Change
		case domain.IndicatorDisparity:
			series[i] = p.Scores.Disparity
		case domain.IndicatorConsec:
			series[i] = p.Scores.Consec
		case domain.IndicatorVolume:
			series[i] = p.Scores.Volume
		case domain.IndicatorCandle:
			series[i] = p.Scores.Candle
		}
	}
	return series
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
