package formulas

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3, 4}); got != 2.5 {
		t.Errorf("Expected 2.5, got %v", got)
	}
	if got := Mean(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("Expected 0 for single value, got %v", got)
	}
	// Sample stddev of {2, 4, 4, 4, 5, 5, 7, 9} is ~2.138
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2.138) > 0.01 {
		t.Errorf("Expected ~2.138, got %v", got)
	}
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name     string
		x, y     []float64
		expected float64
	}{
		{
			name:     "perfect positive",
			x:        []float64{1, 2, 3, 4, 5},
			y:        []float64{2, 4, 6, 8, 10},
			expected: 1.0,
		},
		{
			name:     "perfect negative",
			x:        []float64{1, 2, 3, 4, 5},
			y:        []float64{10, 8, 6, 4, 2},
			expected: -1.0,
		},
		{
			name:     "zero variance is undefined, returns 0",
			x:        []float64{3, 3, 3, 3},
			y:        []float64{1, 2, 3, 4},
			expected: 0,
		},
		{
			name:     "mismatched lengths",
			x:        []float64{1, 2, 3},
			y:        []float64{1, 2},
			expected: 0,
		},
		{
			name:     "too short",
			x:        []float64{1, 2},
			y:        []float64{1, 2},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PearsonCorrelation(tt.x, tt.y)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestPercentChange(t *testing.T) {
	if got := PercentChange(100, 105); got != 5.0 {
		t.Errorf("Expected 5.0, got %v", got)
	}
	if got := PercentChange(100, 95); got != -5.0 {
		t.Errorf("Expected -5.0, got %v", got)
	}
	if got := PercentChange(0, 50); got != 0 {
		t.Errorf("Expected 0 for zero base, got %v", got)
	}
}

func TestRound1(t *testing.T) {
	if got := Round1(83.456); got != 83.5 {
		t.Errorf("Expected 83.5, got %v", got)
	}
	if got := Round1(83.44); got != 83.4 {
		t.Errorf("Expected 83.4, got %v", got)
	}
}
