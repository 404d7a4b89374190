// Package formulas provides the indicator math shared by the screener:
// CCI and moving averages via go-talib, summary statistics via gonum.
package formulas

import (
	"github.com/markcheno/go-talib"
)

// CCISeries calculates the Commodity Channel Index over the given period
// using typical price (H+L+C)/3 and the standard 0.015 mean-deviation
// normalization.
//
// Returns one CCI value per bar starting at the first bar with a full
// window, oldest first. Returns nil when fewer than period bars exist.
func CCISeries(highs, lows, closes []float64, period int) []float64 {
	if len(closes) < period || len(highs) != len(closes) || len(lows) != len(closes) {
		return nil
	}

	// go-talib pads the warm-up window with zeros; strip it so callers
	// index real values only.
	raw := talib.Cci(highs, lows, closes, period)
	return raw[period-1:]
}

// SMASeries calculates the simple moving average of values over period.
// Returns one value per input starting at the first full window, or nil
// when fewer than period values exist.
func SMASeries(values []float64, period int) []float64 {
	if len(values) < period {
		return nil
	}
	raw := talib.Sma(values, period)
	return raw[period-1:]
}
