package scoring

import (
	"fmt"
	"math"

	"jongga-screener/internal/domain"
)

// Normalizer turns an IndicatorSet into raw and weighted sub-scores under
// a fixed weight set. It is pure and safe for concurrent use: one
// Normalizer is built per screening run from the weights read at run
// start, so a concurrent optimizer swap never shears a run in half.
type Normalizer struct {
	weights domain.Weights
}

// NewNormalizer creates a normalizer for one run's weight set.
func NewNormalizer(weights domain.Weights) (*Normalizer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{weights: weights.Clone()}, nil
}

// Weights returns the weight set this normalizer applies.
func (n *Normalizer) Weights() domain.Weights {
	return n.weights.Clone()
}

// Score computes raw sub-scores, weighted sub-scores, bonuses, and the
// clamped total for one stock's indicators. Fails with
// ErrInvalidIndicatorValue on non-finite input; the ranking engine
// excludes the stock rather than propagate NaN into the aggregate.
func (n *Normalizer) Score(set domain.IndicatorSet) (domain.SubScores, domain.SubScores, domain.Bonuses, float64, error) {
	for name, v := range map[string]float64{
		"cci":          set.CCI,
		"change_rate":  set.ChangeRate,
		"disparity":    set.Disparity,
		"volume_ratio": set.VolumeRatio,
		"wick_ratio":   set.UpperWickRatio,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.SubScores{}, domain.SubScores{}, domain.Bonuses{}, 0,
				fmt.Errorf("%s is not finite: %w", name, domain.ErrInvalidIndicatorValue)
		}
	}

	raw := domain.SubScores{
		CCIValue:  CCIValueScore(set.CCI),
		Change:    ChangeScore(set.ChangeRate),
		Disparity: DisparityScore(set.Disparity),
		Consec:    ConsecScore(set.ConsecutiveUp),
		Volume:    VolumeScore(set.VolumeRatio),
		Candle:    CandleScore(set.IsBullish, set.UpperWickRatio),
	}

	// Weights scale around 1.0 as neutral: with all weights at the
	// default the weighted sub-scores equal the raw ones exactly.
	weighted := domain.SubScores{
		CCIValue:  raw.CCIValue * n.weights.Get(domain.IndicatorCCIValue),
		Change:    raw.Change * n.weights.Get(domain.IndicatorChange),
		Disparity: raw.Disparity * n.weights.Get(domain.IndicatorDisparity),
		Consec:    raw.Consec * n.weights.Get(domain.IndicatorConsec),
		Volume:    raw.Volume * n.weights.Get(domain.IndicatorVolume),
		Candle:    raw.Candle * n.weights.Get(domain.IndicatorCandle),
	}

	bonus := domain.Bonuses{
		CCIRising:      CCIRisingBonus(set.CCIRising, set.CCIRise),
		MA20Trend:      MA20TrendBonus(set.MA20ThreeUp, set.MA20TwoUp),
		NotHighEqClose: CandleShapeBonus(set.HighEqualsClose),
	}

	total := weighted.Sum() + bonus.Sum()
	if total > TotalMax {
		total = TotalMax
	}
	if total < 0 {
		total = 0
	}
	return raw, weighted, bonus, total, nil
}
