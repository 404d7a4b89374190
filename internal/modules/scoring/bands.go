// Package scoring maps raw indicators into banded sub-scores and applies
// the active weight set. The band boundaries were fitted by grid search
// over historical fills and are fixed constants: re-deriving them is a
// parameter-tuning exercise, not part of this code.
package scoring

import "math"

// Score bands per core indicator, 15 points each.
const (
	SubScoreMax = 15.0
	TotalMax    = 100.0

	// CCI: optimal 160-180 peaking at 170, overextension penalized.
	CCIOptimalLow  = 160.0
	CCIOptimalHigh = 180.0
	CCIPeak        = 170.0

	// Change rate (%): optimal 2-8 peaking at 5, blow-off tops penalized.
	ChangeOptimalLow  = 2.0
	ChangeOptimalHigh = 8.0
	ChangePeak        = 5.0

	// Disparity from MA20 (%): optimal 2-8 peaking at 5.
	DisparityOptimalLow  = 2.0
	DisparityOptimalHigh = 8.0
	DisparityPeak        = 5.0

	// Volume ratio: optimal 1.5-3.0x peaking at 2.0x.
	VolumeOptimalLow  = 1.5
	VolumeOptimalHigh = 3.0
	VolumePeak        = 2.0

	// Bonus caps, 10 points combined.
	BonusCCIRisingMax = 4.0
	BonusMA20Trend    = 3.0
	BonusCandleShape  = 3.0
)

// CCIValueScore scores the raw CCI value.
//
//	optimal  160-180      -> 14-15
//	good     140-160, 180-200 -> 10-14
//	fair     100-140, 200-250 -> 5-10
//	risky    everything else  -> 0-5
func CCIValueScore(cci float64) float64 {
	switch {
	case cci >= CCIOptimalLow && cci <= CCIOptimalHigh:
		return 15.0 - math.Abs(cci-CCIPeak)/10.0
	case cci >= 140 && cci < CCIOptimalLow:
		return 10.0 + (cci-140)/20.0*4.0
	case cci > CCIOptimalHigh && cci <= 200:
		return 14.0 - (cci-180)/20.0*4.0
	case cci >= 100 && cci < 140:
		return 5.0 + (cci-100)/40.0*5.0
	case cci > 200 && cci <= 250:
		return 10.0 - (cci-200)/50.0*5.0
	case cci > 250:
		// Overheated: fades to zero by 350.
		if cci > 350 {
			return 0.0
		}
		return 5.0 - (cci-250)/100.0*5.0
	default:
		// Momentum missing: below 100.
		if cci < 0 {
			return 2.0
		}
		return 2.0 + cci/100.0*3.0
	}
}

// ChangeScore scores the day's change rate (%).
//
//	optimal  2-8   -> 14-15
//	good     1-2, 8-10 -> 10-14
//	fair     0-1, 10-15 -> 5-10
//	risky    negative or 15+ -> 0-5
func ChangeScore(changeRate float64) float64 {
	switch {
	case changeRate < 0:
		if changeRate < -5 {
			return 0.0
		}
		return 3.0 + (changeRate+5)*0.6
	case changeRate >= ChangeOptimalLow && changeRate <= ChangeOptimalHigh:
		return 15.0 - math.Abs(changeRate-ChangePeak)/3.0
	case changeRate >= 1.0 && changeRate < ChangeOptimalLow:
		return 10.0 + (changeRate-1.0)*4.0
	case changeRate > ChangeOptimalHigh && changeRate <= 10.0:
		return 14.0 - (changeRate-8.0)/2.0*4.0
	case changeRate < 1.0:
		return 5.0 + changeRate*5.0
	case changeRate <= 15.0:
		return 10.0 - (changeRate-10.0)/5.0*5.0
	default:
		if changeRate >= 25 {
			return 0.0
		}
		return 5.0 - (changeRate-15.0)/10.0*5.0
	}
}

// DisparityScore scores the deviation from MA20 (%).
//
//	optimal  2-8  -> 14-15
//	good     0-2, 8-10 -> 10-14
//	fair     -2-0, 10-15 -> 5-10
//	risky    below -2 or 15+ -> 0-5
func DisparityScore(disparity float64) float64 {
	switch {
	case disparity >= DisparityOptimalLow && disparity <= DisparityOptimalHigh:
		return 15.0 - math.Abs(disparity-DisparityPeak)/3.0
	case disparity >= 0 && disparity < DisparityOptimalLow:
		return 10.0 + disparity/2.0*4.0
	case disparity > DisparityOptimalHigh && disparity <= 10.0:
		return 14.0 - (disparity-8.0)/2.0*4.0
	case disparity >= -2.0 && disparity < 0:
		return 5.0 + (disparity+2.0)/2.0*5.0
	case disparity > 10.0 && disparity <= 15.0:
		return 10.0 - (disparity-10.0)/5.0*5.0
	case disparity < -2.0:
		// Below trend: fades to zero by -10.
		if disparity < -10 {
			return 0.0
		}
		return 5.0 + (disparity+10.0)/8.0*5.0
	default:
		// 15%+ overextension.
		if disparity >= 25 {
			return 0.0
		}
		return 5.0 - (disparity-15.0)/10.0*5.0
	}
}

// consecScoreMap scores the trailing up-day run. 2-3 days is the sweet
// spot; long runs invite profit-taking the next morning.
var consecScoreMap = map[int]float64{
	0: 8.0,
	1: 12.0,
	2: 15.0,
	3: 15.0,
	4: 12.0,
	5: 8.0,
	6: 5.0,
	7: 3.0,
}

// ConsecScore scores the consecutive up-day count.
func ConsecScore(days int) float64 {
	if s, ok := consecScoreMap[days]; ok {
		return s
	}
	if days > 7 {
		return math.Max(0.0, 3.0-float64(days-7))
	}
	return 8.0
}

// VolumeScore scores the volume ratio against the trailing average.
//
//	optimal  1.5-3.0x -> 14-15
//	good     1.0-1.5x, 3.0-5.0x -> 10-14
//	fair     0.5-1.0x, 5.0-8.0x -> 5-10
//	risky    under 0.5x or 8x+ -> 0-5
func VolumeScore(ratio float64) float64 {
	switch {
	case ratio >= VolumeOptimalLow && ratio <= VolumeOptimalHigh:
		return 15.0 - math.Abs(ratio-VolumePeak)
	case ratio >= 1.0 && ratio < VolumeOptimalLow:
		return 10.0 + (ratio-1.0)/0.5*4.0
	case ratio > VolumeOptimalHigh && ratio <= 5.0:
		return 14.0 - (ratio-3.0)/2.0*4.0
	case ratio >= 0.5 && ratio < 1.0:
		return 5.0 + (ratio-0.5)/0.5*5.0
	case ratio > 5.0 && ratio <= 8.0:
		return 10.0 - (ratio-5.0)/3.0*5.0
	case ratio < 0.5:
		return math.Max(0, ratio*10.0)
	default:
		// 8x+ volume explosion.
		if ratio >= 15 {
			return 0.0
		}
		return 5.0 - (ratio-8.0)/7.0*5.0
	}
}

// CandleScore scores candle quality from direction and upper wick. A
// bullish close with almost no upper shadow means no overhead supply was
// hit; a bearish candle caps at 7.
func CandleScore(isBullish bool, upperWickRatio float64) float64 {
	if !isBullish {
		switch {
		case upperWickRatio <= 0.3:
			return 7.0
		case upperWickRatio <= 0.5:
			return 5.0
		default:
			return 3.0
		}
	}
	switch {
	case upperWickRatio <= 0.1:
		return 15.0
	case upperWickRatio <= 0.2:
		return 14.0
	case upperWickRatio <= 0.3:
		return 12.0
	case upperWickRatio <= 0.5:
		return 10.0
	case upperWickRatio <= 0.7:
		return 8.0
	default:
		return 6.0
	}
}

// CCIRisingBonus grants up to 4 points when CCI rose against yesterday,
// stepped by the size of the rise. Present/absent, never scaled by weight.
func CCIRisingBonus(rising bool, riseAmount float64) float64 {
	if !rising {
		return 0.0
	}
	switch {
	case riseAmount > 20:
		return 4.0
	case riseAmount > 10:
		return 3.5
	case riseAmount > 5:
		return 3.0
	default:
		return 2.5
	}
}

// MA20TrendBonus grants 3 points for a 3-day MA20 uptrend, 1.5 for a
// 2-day one.
func MA20TrendBonus(threeUp, twoUp bool) float64 {
	if threeUp {
		return BonusMA20Trend
	}
	if twoUp {
		return BonusMA20Trend / 2
	}
	return 0.0
}

// CandleShapeBonus grants 3 points when the close was NOT pinned to the
// session high. A high==close bullish candle is the limit-up pattern that
// tends to gap down the next morning.
func CandleShapeBonus(highEqualsClose bool) float64 {
	if highEqualsClose {
		return 0.0
	}
	return BonusCandleShape
}
