package domain

import (
	"errors"
	"testing"
)

func TestGradeFor(t *testing.T) {
	tests := []struct {
		total    float64
		expected Grade
	}{
		{100, GradeS},
		{85, GradeS},
		{84.9999, GradeA},
		{75, GradeA},
		{74.9999, GradeB},
		{65, GradeB},
		{64.9999, GradeC},
		{55, GradeC},
		{54.9999, GradeD},
		{0, GradeD},
	}

	for _, tt := range tests {
		if got := GradeFor(tt.total); got != tt.expected {
			t.Errorf("GradeFor(%v): expected %s, got %s", tt.total, tt.expected, got)
		}
	}
}

// Every grade the banding can produce must map to a strategy.
func TestStrategyForCoversAllGrades(t *testing.T) {
	for _, total := range []float64{0, 55, 65, 75, 85, 100} {
		grade := GradeFor(total)
		s, err := StrategyFor(grade)
		if err != nil {
			t.Fatalf("StrategyFor(%s): %v", grade, err)
		}
		if s.OpenSellRatio+s.TargetSellRatio != 100 {
			t.Errorf("Grade %s: sell ratios sum to %d, want 100", grade, s.OpenSellRatio+s.TargetSellRatio)
		}
		if s.TargetProfit <= 0 {
			t.Errorf("Grade %s: non-positive target profit %v", grade, s.TargetProfit)
		}
		if s.StopLoss >= 0 {
			t.Errorf("Grade %s: non-negative stop loss %v", grade, s.StopLoss)
		}
	}
}

func TestStrategyForTable(t *testing.T) {
	s, err := StrategyFor(GradeS)
	if err != nil {
		t.Fatal(err)
	}
	if s.OpenSellRatio != 30 || s.TargetSellRatio != 70 || s.TargetProfit != 4.0 || s.StopLoss != -3.0 {
		t.Errorf("Unexpected S strategy: %+v", s)
	}

	d, err := StrategyFor(GradeD)
	if err != nil {
		t.Fatal(err)
	}
	if d.OpenSellRatio != 100 || d.TargetSellRatio != 0 {
		t.Errorf("Grade D must exit fully at the open, got %+v", d)
	}
}

func TestStrategyForUnknownGrade(t *testing.T) {
	_, err := StrategyFor(Grade("X"))
	if !errors.Is(err, ErrUnknownGrade) {
		t.Errorf("Expected ErrUnknownGrade, got %v", err)
	}
}
