package domain

import (
	"fmt"
	"time"
)

// Indicator names the weightable scoring categories. One weight multiplier
// exists per core sub-score.
type Indicator string

const (
	IndicatorCCIValue  Indicator = "cci_value"
	IndicatorChange    Indicator = "change"
	IndicatorDisparity Indicator = "disparity"
	IndicatorConsec    Indicator = "consec"
	IndicatorVolume    Indicator = "volume"
	IndicatorCandle    Indicator = "candle"
)

// AllIndicators lists the weightable categories in canonical order.
// The order is stable because optimizer audit rows and API output follow it.
var AllIndicators = []Indicator{
	IndicatorCCIValue,
	IndicatorChange,
	IndicatorDisparity,
	IndicatorConsec,
	IndicatorVolume,
	IndicatorCandle,
}

const (
	// WeightDefault is the neutral multiplier.
	WeightDefault = 1.0
	// WeightMin and WeightMax bound every weight revision. Zero or negative
	// weights would invert an indicator's signal and are a configuration
	// error, never a valid state.
	WeightMin = 0.25
	WeightMax = 3.0
)

// Weights is a named set of per-indicator multipliers. Exactly one set is
// active at a time; mutations go through the weight repository so every
// change lands in the append-only history.
type Weights struct {
	Values    map[Indicator]float64 `json:"values"`
	Revision  int64                 `json:"revision"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// DefaultWeights returns a neutral weight set (all 1.0).
func DefaultWeights() Weights {
	values := make(map[Indicator]float64, len(AllIndicators))
	for _, ind := range AllIndicators {
		values[ind] = WeightDefault
	}
	return Weights{Values: values}
}

// Get returns the multiplier for an indicator, defaulting to neutral when
// the set predates the indicator.
func (w Weights) Get(ind Indicator) float64 {
	if v, ok := w.Values[ind]; ok {
		return v
	}
	return WeightDefault
}

// Validate checks that every weight lies in (0, WeightMax] and within the
// configured clamp range.
func (w Weights) Validate() error {
	for _, ind := range AllIndicators {
		v := w.Get(ind)
		if v <= 0 {
			return fmt.Errorf("weight %s is %v: %w", ind, v, ErrInvalidWeight)
		}
		if v < WeightMin || v > WeightMax {
			return fmt.Errorf("weight %s is %v, outside [%v, %v]: %w", ind, v, WeightMin, WeightMax, ErrInvalidWeight)
		}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate without touching the
// active set.
func (w Weights) Clone() Weights {
	values := make(map[Indicator]float64, len(w.Values))
	for k, v := range w.Values {
		values[k] = v
	}
	return Weights{Values: values, Revision: w.Revision, UpdatedAt: w.UpdatedAt}
}

// WeightChange is one audit record for one changed indicator weight.
// History rows are append-only and never rewritten.
type WeightChange struct {
	Indicator   Indicator `json:"indicator"`
	OldWeight   float64   `json:"old_weight"`
	NewWeight   float64   `json:"new_weight"`
	Correlation float64   `json:"correlation"`
	SampleSize  int       `json:"sample_size"`
	Reason      string    `json:"reason"`
	ChangedAt   time.Time `json:"changed_at"`
}
