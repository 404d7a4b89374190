// Package domain contains the core data model for the closing-price screener.
// The domain layer is pure: no database, HTTP, or logging dependencies.
package domain

import (
	"time"
)

// DailyBar is one trading day for one stock. Immutable once recorded.
// Bars for a stock form a strictly chronological sequence; non-trading
// days are simply absent.
type DailyBar struct {
	Date         time.Time `json:"date"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
	TradingValue float64   `json:"trading_value,omitempty"` // in 100M KRW, optional
}

// IsBullish reports whether the bar closed above its open.
func (b DailyBar) IsBullish() bool {
	return b.Close > b.Open
}

// BodySize returns the absolute size of the candle body.
func (b DailyBar) BodySize() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// UpperWick returns the length of the upper shadow.
func (b DailyBar) UpperWick() float64 {
	if b.Close >= b.Open {
		return b.High - b.Close
	}
	return b.High - b.Open
}

// UpperWickRatio returns the upper shadow length relative to the body.
// A doji (zero body) with any upper shadow counts as ratio 1.0.
func (b DailyBar) UpperWickRatio() float64 {
	body := b.BodySize()
	if body == 0 {
		if b.UpperWick() > 0 {
			return 1.0
		}
		return 0.0
	}
	return b.UpperWick() / body
}

// Stock identifies one listed equity in the screening universe.
type Stock struct {
	Code   string `json:"code"` // 6-digit KRX code
	Name   string `json:"name"`
	Market string `json:"market"` // KOSPI / KOSDAQ
}

// IndicatorSet holds the raw technical indicators for one stock on one
// evaluation day. Computed fresh each run; never persisted on its own.
type IndicatorSet struct {
	CCI           float64 // CCI(14), latest value
	CCISlope      float64 // CCI(today) - CCI(3 bars ago)
	CCIRise       float64 // CCI(today) - CCI(yesterday)
	CCIRising     bool    // CCI(today) > CCI(yesterday)
	MA20          float64 // 20-day simple moving average of close
	MA20Slope     float64 // % change of MA20 over the last 3 values
	MA20ThreeUp   bool    // MA20 rose on each of the last 3 values
	MA20TwoUp     bool    // MA20 rose on the last value
	Disparity     float64 // (close/MA20 - 1) * 100
	ConsecutiveUp int     // trailing run of closes above the previous close
	VolumeRatio   float64 // today's volume / mean volume of trailing 5 bars
	ChangeRate    float64 // % change of close vs previous close
	IsBullish     bool
	UpperWickRatio float64
	HighEqualsClose bool // close was driven to the session high
}

// SubScores are the six banded core sub-scores, each in [0, 15].
type SubScores struct {
	CCIValue  float64 `json:"cci_value"`
	Change    float64 `json:"change"`
	Disparity float64 `json:"disparity"`
	Consec    float64 `json:"consec"`
	Volume    float64 `json:"volume"`
	Candle    float64 `json:"candle"`
}

// Sum returns the unweighted sum of the core sub-scores.
func (s SubScores) Sum() float64 {
	return s.CCIValue + s.Change + s.Disparity + s.Consec + s.Volume + s.Candle
}

// Bonuses are the boolean-gated bonus sub-scores, 10 points combined.
type Bonuses struct {
	CCIRising      float64 `json:"cci_rising"`        // up to 4
	MA20Trend      float64 `json:"ma20_trend"`        // up to 3
	NotHighEqClose float64 `json:"not_high_eq_close"` // up to 3
}

// Sum returns the combined bonus points.
func (b Bonuses) Sum() float64 {
	return b.CCIRising + b.MA20Trend + b.NotHighEqClose
}

// StockScore is one stock's evaluation result for one screening run.
// Immutable after creation; a rescoring creates a new StockScore.
type StockScore struct {
	StockCode    string    `json:"stock_code"`
	StockName    string    `json:"stock_name"`
	ScreenDate   time.Time `json:"screen_date"`
	CurrentPrice float64   `json:"current_price"`
	ChangeRate   float64   `json:"change_rate"`
	TradingValue float64   `json:"trading_value"`

	Indicators IndicatorSet `json:"-"`
	Raw        SubScores    `json:"raw_scores"`      // pre-weight sub-scores
	Weighted   SubScores    `json:"weighted_scores"` // raw * weight per indicator
	Bonus      Bonuses      `json:"bonus_scores"`

	Total    float64      `json:"total"` // clamped to [0, 100]
	Grade    Grade        `json:"grade"`
	Rank     int          `json:"rank"` // 1-based, dense within a run
	Strategy SellStrategy `json:"sell_strategy"`
}

// NextDayOutcome is the realized next-trading-day price action for a
// StockScore, linked 1:1 by (stock code, screen date). Optimizer input only.
type NextDayOutcome struct {
	StockCode      string    `json:"stock_code"`
	ScreenDate     time.Time `json:"screen_date"`
	NextDate       time.Time `json:"next_date"`
	GapRate        float64   `json:"gap_rate"`         // open vs scored close, %
	DayChangeRate  float64   `json:"day_change_rate"`  // close vs scored close, %
	HighChangeRate float64   `json:"high_change_rate"` // high vs scored close, %
	LowChangeRate  float64   `json:"low_change_rate"`  // low vs scored close, %
}

// ScreeningRun is one execution of the ranking engine over one day's
// eligible universe.
type ScreeningRun struct {
	ID         string       `json:"id"` // uuid
	ScreenDate time.Time    `json:"screen_date"`
	CreatedAt  time.Time    `json:"created_at"`
	Universe   int          `json:"universe_size"` // stocks scored (after exclusions)
	Excluded   int          `json:"excluded"`      // stocks dropped for bad input
	Scores     []StockScore `json:"scores"`        // rank order
}

// ScoreOutcomePair joins a score's sub-scores with its realized next-day
// outcome. The optimizer consumes a window of these.
type ScoreOutcomePair struct {
	StockCode  string
	ScreenDate time.Time
	Scores     SubScores
	Outcome    NextDayOutcome
}
