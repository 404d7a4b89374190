// Package universe holds the screening universe: the stock list, the
// local daily-bar store, and the pre-filter that an eligible candidate
// must pass before scoring.
package universe

import "strings"

// Candidate is one stock with the day-level stats the pre-filter needs.
type Candidate struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ChangeRate   float64 `json:"change_rate"`   // %
	TradingValue float64 `json:"trading_value"` // 100M KRW
}

// FilterConfig are the hard eligibility gates applied before scoring.
// Grid-searched defaults from the backtest; all tunable via env.
type FilterConfig struct {
	MinTradingValue float64 // 100M KRW
	MinChangeRate   float64 // %
	MaxChangeRate   float64 // %
	MinPrice        float64
}

// DefaultFilterConfig returns the backtested gates: trading value over
// 200 (100M KRW), change rate between 2% and 15%.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinTradingValue: 200,
		MinChangeRate:   2.0,
		MaxChangeRate:   15.0,
		MinPrice:        1000,
	}
}

// excludedNameFragments filters out leveraged/inverse products, ETFs,
// SPACs, REITs and preferred shares - instruments the closing-price
// setup was never fitted for.
var excludedNameFragments = []string{
	"인버스", "레버리지", "2X", "3X", "곱버스",
	"ETF", "ETN", "KODEX", "TIGER", "KBSTAR", "ARIRANG", "HANARO",
	"스팩", "SPAC", "리츠", "REIT",
	"우선주",
}

// Eligible reports whether a candidate passes the hard gates.
func Eligible(c Candidate, cfg FilterConfig) bool {
	if c.TradingValue < cfg.MinTradingValue {
		return false
	}
	if c.ChangeRate < cfg.MinChangeRate || c.ChangeRate > cfg.MaxChangeRate {
		return false
	}
	if c.Price < cfg.MinPrice {
		return false
	}
	upper := strings.ToUpper(c.Name)
	for _, frag := range excludedNameFragments {
		if strings.Contains(upper, strings.ToUpper(frag)) {
			return false
		}
	}
	return true
}

// Filter returns the candidates that pass the hard gates, order
// preserved.
func Filter(candidates []Candidate, cfg FilterConfig) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if Eligible(c, cfg) {
			eligible = append(eligible, c)
		}
	}
	return eligible
}
