// Package ranking orders one day's scored universe and selects the
// TOP-N slice.
package ranking

import (
	"sort"

	"jongga-screener/internal/domain"
)

// DefaultTopN is the number of candidates surfaced per screening run.
const DefaultTopN = 5

// Rank deduplicates by stock code, sorts descending by total score with
// deterministic tie-breaks (trading value descending, then stock code
// ascending), and assigns dense 1-based ranks. The input slice is not
// modified.
func Rank(scores []domain.StockScore) []domain.StockScore {
	// Dedupe by code, keeping the stronger entry under the same ordering
	// used for the final sort.
	byCode := make(map[string]domain.StockScore, len(scores))
	for _, s := range scores {
		existing, ok := byCode[s.StockCode]
		if !ok || less(s, existing) {
			byCode[s.StockCode] = s
		}
	}

	ranked := make([]domain.StockScore, 0, len(byCode))
	for _, s := range byCode {
		ranked = append(ranked, s)
	}

	sort.Slice(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// less reports whether a sorts before b: higher total first, then higher
// trading value, then lexicographically smaller code. Reruns over the
// same input must produce identical order.
func less(a, b domain.StockScore) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	if a.TradingValue != b.TradingValue {
		return a.TradingValue > b.TradingValue
	}
	return a.StockCode < b.StockCode
}

// TopN returns the first n ranked entries (fewer when the universe is
// smaller).
func TopN(ranked []domain.StockScore, n int) []domain.StockScore {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(ranked) < n {
		n = len(ranked)
	}
	return ranked[:n]
}
