package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev returns the sample standard deviation, or 0 when fewer than two
// values exist.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// PearsonCorrelation returns the Pearson correlation coefficient between
// x and y, clamped to [-1, 1]. Returns 0 for mismatched or short inputs
// and for degenerate (zero-variance) series, where the coefficient is
// undefined.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 3 {
		return 0
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return math.Max(-1, math.Min(1, r))
}

// PercentChange returns the percentage change from base to value, or 0
// when base is 0.
func PercentChange(base, value float64) float64 {
	if base == 0 {
		return 0
	}
	return (value - base) / base * 100
}

// Round1 rounds to one decimal place. Screening totals are stored at this
// precision so reruns compare byte-identical.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
