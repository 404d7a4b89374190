package formulas

import (
	"math"
	"testing"
)

func TestSMASeries(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	sma := SMASeries(values, 3)

	if len(sma) != 4 {
		t.Fatalf("Expected 4 values, got %d", len(sma))
	}
	expected := []float64{2, 3, 4, 5}
	for i, e := range expected {
		if math.Abs(sma[i]-e) > 1e-9 {
			t.Errorf("sma[%d]: expected %v, got %v", i, e, sma[i])
		}
	}
}

func TestSMASeriesInsufficientData(t *testing.T) {
	if got := SMASeries([]float64{1, 2}, 3); got != nil {
		t.Errorf("Expected nil for short input, got %v", got)
	}
}

func TestCCISeriesLength(t *testing.T) {
	n := 30
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100.0 + float64(i)
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}

	cci := CCISeries(highs, lows, closes, 14)
	if len(cci) != n-13 {
		t.Fatalf("Expected %d values, got %d", n-13, len(cci))
	}
	// Steadily rising typical price keeps CCI positive once warmed up.
	if cci[len(cci)-1] <= 0 {
		t.Errorf("Expected positive CCI for a steady uptrend, got %v", cci[len(cci)-1])
	}
}

func TestCCISeriesInsufficientData(t *testing.T) {
	highs := []float64{1, 2, 3}
	if got := CCISeries(highs, highs, highs, 14); got != nil {
		t.Errorf("Expected nil for short input, got %v", got)
	}
}

func TestCCISeriesMismatchedLengths(t *testing.T) {
	long := make([]float64, 20)
	short := make([]float64, 19)
	if got := CCISeries(long, short, long, 14); got != nil {
		t.Errorf("Expected nil for mismatched input, got %v", got)
	}
}
