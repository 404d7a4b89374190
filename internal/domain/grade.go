package domain

import "fmt"

// Grade is the closed letter-grade enumeration banded by total score.
type Grade string

const (
	GradeS Grade = "S" // 85 and above
	GradeA Grade = "A" // [75, 85)
	GradeB Grade = "B" // [65, 75)
	GradeC Grade = "C" // [55, 65)
	GradeD Grade = "D" // below 55
)

// GradeFor maps a total score to its grade. This is the single source of
// truth for the banding: boundaries are lower-inclusive, the bands
// partition [0, 100] with no gaps or overlaps.
func GradeFor(total float64) Grade {
	switch {
	case total >= 85:
		return GradeS
	case total >= 75:
		return GradeA
	case total >= 65:
		return GradeB
	case total >= 55:
		return GradeC
	default:
		return GradeD
	}
}

// SellStrategy is the fixed next-morning exit policy for a grade.
// Higher confidence holds longer; D exits entirely at the open.
type SellStrategy struct {
	Grade           Grade   `json:"grade"`
	OpenSellRatio   int     `json:"open_sell_ratio"`   // % sold at next open
	TargetSellRatio int     `json:"target_sell_ratio"` // % held for the target
	TargetProfit    float64 `json:"target_profit"`     // take-profit, %
	StopLoss        float64 `json:"stop_loss"`         // stop, %
	Confidence      string  `json:"confidence"`
}

// sellStrategies is the fixed grade -> policy table.
var sellStrategies = map[Grade]SellStrategy{
	GradeS: {Grade: GradeS, OpenSellRatio: 30, TargetSellRatio: 70, TargetProfit: 4.0, StopLoss: -3.0, Confidence: "very high"},
	GradeA: {Grade: GradeA, OpenSellRatio: 40, TargetSellRatio: 60, TargetProfit: 3.0, StopLoss: -2.5, Confidence: "high"},
	GradeB: {Grade: GradeB, OpenSellRatio: 50, TargetSellRatio: 50, TargetProfit: 2.5, StopLoss: -2.0, Confidence: "medium-high"},
	GradeC: {Grade: GradeC, OpenSellRatio: 70, TargetSellRatio: 30, TargetProfit: 2.0, StopLoss: -1.5, Confidence: "medium"},
	GradeD: {Grade: GradeD, OpenSellRatio: 100, TargetSellRatio: 0, TargetProfit: 1.0, StopLoss: -1.0, Confidence: "low"},
}

// StrategyFor returns the exit policy for a grade. Every grade produced by
// GradeFor maps to exactly one policy; anything else reports ErrUnknownGrade.
func StrategyFor(grade Grade) (SellStrategy, error) {
	s, ok := sellStrategies[grade]
	if !ok {
		return SellStrategy{}, fmt.Errorf("grade %q: %w", grade, ErrUnknownGrade)
	}
	return s, nil
}
