package scoring

import (
	"math"
	"testing"
)

func TestCCIValueScore(t *testing.T) {
	tests := []struct {
		name     string
		cci      float64
		expected float64
	}{
		{"peak", 170, 15.0},
		{"optimal band low edge", 160, 14.0},
		{"optimal band high edge", 180, 14.0},
		{"good below", 150, 12.0},
		{"good above", 190, 12.0},
		{"fair low", 120, 7.5},
		{"fair high", 225, 7.5},
		{"overheated", 300, 2.5},
		{"exhausted", 400, 0},
		{"weak momentum", 50, 3.5},
		{"negative", -50, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CCIValueScore(tt.cci)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CCIValueScore(%v): expected %v, got %v", tt.cci, tt.expected, got)
			}
		})
	}
}

func TestChangeScore(t *testing.T) {
	tests := []struct {
		name     string
		change   float64
		expected float64
	}{
		{"peak", 5.0, 15.0},
		{"optimal low edge", 2.0, 14.0},
		{"optimal high edge", 8.0, 14.0},
		{"mild", 1.5, 12.0},
		{"stretched", 9.0, 12.0},
		{"flat", 0.5, 7.5},
		{"hot", 12.5, 7.5},
		{"blow-off", 20.0, 2.5},
		{"collapsed", 30.0, 0},
		{"slightly red", -2.0, 4.8},
		{"deep red", -10.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChangeScore(tt.change)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ChangeScore(%v): expected %v, got %v", tt.change, tt.expected, got)
			}
		})
	}
}

func TestDisparityScore(t *testing.T) {
	tests := []struct {
		name      string
		disparity float64
		expected  float64
	}{
		{"peak", 5.0, 15.0},
		{"at MA", 0, 10.0},
		{"slightly below MA", -1.0, 7.5},
		{"stretched", 9.0, 12.0},
		{"hot", 12.5, 7.5},
		{"far below trend", -6.0, 7.5},
		{"collapsed", -15.0, 0},
		{"parabolic", 20.0, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisparityScore(tt.disparity)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("DisparityScore(%v): expected %v, got %v", tt.disparity, tt.expected, got)
			}
		})
	}
}

func TestConsecScore(t *testing.T) {
	tests := []struct {
		days     int
		expected float64
	}{
		{0, 8.0},
		{1, 12.0},
		{2, 15.0},
		{3, 15.0},
		{4, 12.0},
		{5, 8.0},
		{6, 5.0},
		{7, 3.0},
		{8, 2.0},
		{10, 0},
		{20, 0},
	}

	for _, tt := range tests {
		if got := ConsecScore(tt.days); got != tt.expected {
			t.Errorf("ConsecScore(%d): expected %v, got %v", tt.days, tt.expected, got)
		}
	}
}

func TestVolumeScore(t *testing.T) {
	tests := []struct {
		name     string
		ratio    float64
		expected float64
	}{
		{"peak", 2.0, 15.0},
		{"optimal low edge", 1.5, 14.5},
		{"optimal high edge", 3.0, 14.0},
		{"average volume", 1.0, 10.0},
		{"elevated", 4.0, 12.0},
		{"thin", 0.75, 7.5},
		{"spike", 6.5, 7.5},
		{"dried up", 0.2, 2.0},
		{"explosion", 11.5, 2.5},
		{"extreme", 20.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VolumeScore(tt.ratio)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("VolumeScore(%v): expected %v, got %v", tt.ratio, tt.expected, got)
			}
		})
	}
}

func TestCandleScore(t *testing.T) {
	tests := []struct {
		name      string
		bullish   bool
		wickRatio float64
		expected  float64
	}{
		{"bullish clean close", true, 0.05, 15.0},
		{"bullish small wick", true, 0.15, 14.0},
		{"bullish moderate wick", true, 0.25, 12.0},
		{"bullish heavy wick", true, 0.4, 10.0},
		{"bullish long wick", true, 0.6, 8.0},
		{"bullish shooting star", true, 1.5, 6.0},
		{"bearish clean", false, 0.1, 7.0},
		{"bearish wicked", false, 0.4, 5.0},
		{"bearish rejected", false, 0.8, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CandleScore(tt.bullish, tt.wickRatio); got != tt.expected {
				t.Errorf("CandleScore(%v, %v): expected %v, got %v", tt.bullish, tt.wickRatio, tt.expected, got)
			}
		})
	}
}

// A bearish candle never outscores the weakest bullish one.
func TestCandleScoreBearishCap(t *testing.T) {
	for _, wick := range []float64{0, 0.2, 0.5, 1.0} {
		if got := CandleScore(false, wick); got > 7.0 {
			t.Errorf("Bearish candle scored %v, cap is 7", got)
		}
	}
}

func TestCCIRisingBonus(t *testing.T) {
	tests := []struct {
		rising   bool
		rise     float64
		expected float64
	}{
		{false, 50, 0},
		{true, 25, 4.0},
		{true, 15, 3.5},
		{true, 7, 3.0},
		{true, 2, 2.5},
	}

	for _, tt := range tests {
		if got := CCIRisingBonus(tt.rising, tt.rise); got != tt.expected {
			t.Errorf("CCIRisingBonus(%v, %v): expected %v, got %v", tt.rising, tt.rise, tt.expected, got)
		}
	}
}

func TestMA20TrendBonus(t *testing.T) {
	if got := MA20TrendBonus(true, true); got != 3.0 {
		t.Errorf("Three-day uptrend: expected 3.0, got %v", got)
	}
	if got := MA20TrendBonus(false, true); got != 1.5 {
		t.Errorf("Two-day uptrend: expected 1.5, got %v", got)
	}
	if got := MA20TrendBonus(false, false); got != 0 {
		t.Errorf("Flat MA: expected 0, got %v", got)
	}
}

func TestCandleShapeBonus(t *testing.T) {
	if got := CandleShapeBonus(true); got != 0 {
		t.Errorf("High==close: expected 0, got %v", got)
	}
	if got := CandleShapeBonus(false); got != 3.0 {
		t.Errorf("Close off the high: expected 3.0, got %v", got)
	}
}

// The sub-score curves stay inside [0, 15] across their full input range.
func TestBandRanges(t *testing.T) {
	for cci := -500.0; cci <= 600; cci += 7.3 {
		if s := CCIValueScore(cci); s < 0 || s > SubScoreMax {
			t.Fatalf("CCIValueScore(%v) = %v out of range", cci, s)
		}
	}
	for ch := -30.0; ch <= 40; ch += 0.37 {
		if s := ChangeScore(ch); s < 0 || s > SubScoreMax {
			t.Fatalf("ChangeScore(%v) = %v out of range", ch, s)
		}
	}
	for d := -40.0; d <= 40; d += 0.53 {
		if s := DisparityScore(d); s < 0 || s > SubScoreMax {
			t.Fatalf("DisparityScore(%v) = %v out of range", d, s)
		}
	}
	for r := 0.0; r <= 30; r += 0.11 {
		if s := VolumeScore(r); s < 0 || s > SubScoreMax {
			t.Fatalf("VolumeScore(%v) = %v out of range", r, s)
		}
	}
	for days := 0; days <= 30; days++ {
		if s := ConsecScore(days); s < 0 || s > SubScoreMax {
			t.Fatalf("ConsecScore(%d) = %v out of range", days, s)
		}
	}
}
