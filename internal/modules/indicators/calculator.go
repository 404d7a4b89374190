// Package indicators derives the raw technical indicators for one stock
// from its daily bar series.
package indicators

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"jongga-screener/internal/domain"
	"jongga-screener/pkg/formulas"
)

const (
	// CCIPeriod is the CCI lookback.
	CCIPeriod = 14
	// MAPeriod is the moving-average lookback.
	MAPeriod = 20
	// CCISlopeLag compares CCI(today) against CCI(today - lag).
	CCISlopeLag = 3
	// MASlopeLag compares MA20(today) against MA20(today - lag), in %.
	MASlopeLag = 3
	// VolumeWindow is the trailing window for the volume ratio, today
	// excluded.
	VolumeWindow = 5
	// MinBars is the minimum history required to score a stock.
	MinBars = MAPeriod
)

// Calculator computes an IndicatorSet from a chronological bar series.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates an indicator calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{log: log.With().Str("component", "indicators").Logger()}
}

// Compute derives all indicators from bars (oldest first, ending at the
// evaluation day). Fails with ErrInsufficientHistory when fewer than
// MinBars bars exist and with ErrInvalidBarData when a bar is unusable;
// the caller excludes the stock from the day's universe in either case.
func (c *Calculator) Compute(bars []domain.DailyBar) (*domain.IndicatorSet, error) {
	if len(bars) < MinBars {
		return nil, fmt.Errorf("%d bars, need %d: %w", len(bars), MinBars, domain.ErrInsufficientHistory)
	}
	if err := validateBars(bars); err != nil {
		return nil, err
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	cci := formulas.CCISeries(highs, lows, closes, CCIPeriod)
	ma := formulas.SMASeries(closes, MAPeriod)
	if len(cci) == 0 || len(ma) == 0 {
		return nil, fmt.Errorf("indicator series empty for %d bars: %w", len(bars), domain.ErrInsufficientHistory)
	}

	today := bars[len(bars)-1]
	prevClose := bars[len(bars)-2].Close

	set := domain.IndicatorSet{
		CCI:             last(cci),
		MA20:            last(ma),
		ChangeRate:      formulas.PercentChange(prevClose, today.Close),
		ConsecutiveUp:   consecutiveUp(bars),
		VolumeRatio:     volumeRatio(bars),
		IsBullish:       today.IsBullish(),
		UpperWickRatio:  today.UpperWickRatio(),
		HighEqualsClose: today.High == today.Close && today.IsBullish(),
	}
	set.Disparity = formulas.PercentChange(set.MA20, today.Close)

	if len(cci) > CCISlopeLag {
		set.CCISlope = last(cci) - cci[len(cci)-1-CCISlopeLag]
	}
	if len(cci) >= 2 {
		set.CCIRise = last(cci) - cci[len(cci)-2]
		set.CCIRising = set.CCIRise > 0
	}
	if len(ma) > MASlopeLag {
		set.MA20Slope = formulas.PercentChange(ma[len(ma)-1-MASlopeLag], last(ma))
	}
	if len(ma) >= 2 {
		set.MA20TwoUp = ma[len(ma)-1] > ma[len(ma)-2]
	}
	if len(ma) >= 3 {
		set.MA20ThreeUp = ma[len(ma)-1] > ma[len(ma)-2] && ma[len(ma)-2] > ma[len(ma)-3]
	}

	if err := checkFinite(set); err != nil {
		return nil, err
	}
	return &set, nil
}

// validateBars rejects series the arithmetic cannot safely consume.
func validateBars(bars []domain.DailyBar) error {
	for i, b := range bars {
		if b.Close <= 0 || b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return fmt.Errorf("bar %d (%s) has non-positive price: %w", i, b.Date.Format("2006-01-02"), domain.ErrInvalidBarData)
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s) has high below low: %w", i, b.Date.Format("2006-01-02"), domain.ErrInvalidBarData)
		}
		if b.Volume < 0 {
			return fmt.Errorf("bar %d (%s) has negative volume: %w", i, b.Date.Format("2006-01-02"), domain.ErrInvalidBarData)
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d (%s) out of order: %w", i, b.Date.Format("2006-01-02"), domain.ErrInvalidBarData)
		}
	}
	return nil
}

// consecutiveUp counts the trailing run of closes above the previous
// close, truncated at the start of the series.
func consecutiveUp(bars []domain.DailyBar) int {
	count := 0
	for i := len(bars) - 1; i > 0; i-- {
		if bars[i].Close > bars[i-1].Close {
			count++
		} else {
			break
		}
	}
	return count
}

// volumeRatio divides today's volume by the mean volume of the trailing
// VolumeWindow bars, today excluded. Neutral 1.0 when history or volume
// is missing.
func volumeRatio(bars []domain.DailyBar) float64 {
	if len(bars) < VolumeWindow+1 {
		return 1.0
	}
	window := bars[len(bars)-1-VolumeWindow : len(bars)-1]
	var sum float64
	for _, b := range window {
		sum += float64(b.Volume)
	}
	avg := sum / float64(VolumeWindow)
	if avg == 0 {
		return 1.0
	}
	return float64(bars[len(bars)-1].Volume) / avg
}

func checkFinite(set domain.IndicatorSet) error {
	for name, v := range map[string]float64{
		"cci":          set.CCI,
		"cci_slope":    set.CCISlope,
		"ma20":         set.MA20,
		"ma20_slope":   set.MA20Slope,
		"disparity":    set.Disparity,
		"volume_ratio": set.VolumeRatio,
		"change_rate":  set.ChangeRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s is not finite: %w", name, domain.ErrInvalidIndicatorValue)
		}
	}
	return nil
}

func last(values []float64) float64 {
	return values[len(values)-1]
}
