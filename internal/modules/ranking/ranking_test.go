package ranking

import (
	"testing"

	"jongga-screener/internal/domain"
)

func score(code string, total, tradingValue float64) domain.StockScore {
	return domain.StockScore{
		StockCode:    code,
		StockName:    "stock-" + code,
		Total:        total,
		TradingValue: tradingValue,
	}
}

func TestRankOrdersByTotalDescending(t *testing.T) {
	ranked := Rank([]domain.StockScore{
		score("000100", 70.5, 300),
		score("000200", 88.2, 500),
		score("000300", 81.0, 400),
	})

	want := []string{"000200", "000300", "000100"}
	for i, code := range want {
		if ranked[i].StockCode != code {
			t.Errorf("Position %d: expected %s, got %s", i, code, ranked[i].StockCode)
		}
		if ranked[i].Rank != i+1 {
			t.Errorf("Position %d: expected rank %d, got %d", i, i+1, ranked[i].Rank)
		}
	}
}

func TestRankTieBreaksOnTradingValueThenCode(t *testing.T) {
	ranked := Rank([]domain.StockScore{
		score("000300", 80, 200),
		score("000100", 80, 500),
		score("000200", 80, 200),
	})

	// Equal totals: higher trading value first, then smaller code.
	want := []string{"000100", "000200", "000300"}
	for i, code := range want {
		if ranked[i].StockCode != code {
			t.Errorf("Position %d: expected %s, got %s", i, code, ranked[i].StockCode)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	input := []domain.StockScore{
		score("000500", 80, 100),
		score("000100", 80, 100),
		score("000300", 90, 100),
		score("000400", 80, 100),
		score("000200", 80, 100),
	}

	first := Rank(input)
	for run := 0; run < 10; run++ {
		again := Rank(input)
		for i := range first {
			if again[i].StockCode != first[i].StockCode {
				t.Fatalf("Run %d position %d: %s != %s", run, i, again[i].StockCode, first[i].StockCode)
			}
		}
	}
}

func TestRankDeduplicatesByCode(t *testing.T) {
	ranked := Rank([]domain.StockScore{
		score("000100", 70, 100),
		score("000100", 85, 100),
		score("000200", 80, 100),
	})

	if len(ranked) != 2 {
		t.Fatalf("Expected 2 entries after dedupe, got %d", len(ranked))
	}
	if ranked[0].StockCode != "000100" || ranked[0].Total != 85 {
		t.Errorf("Dedupe must keep the stronger entry, got %+v", ranked[0])
	}
}

func TestRankAssignsUniqueDenseRanks(t *testing.T) {
	ranked := Rank([]domain.StockScore{
		score("000100", 80, 100),
		score("000200", 80, 100),
		score("000300", 80, 100),
	})

	seen := map[int]bool{}
	for _, s := range ranked {
		if seen[s.Rank] {
			t.Errorf("Duplicate rank %d", s.Rank)
		}
		seen[s.Rank] = true
	}
	for i := 1; i <= len(ranked); i++ {
		if !seen[i] {
			t.Errorf("Missing rank %d", i)
		}
	}
}

func TestRankDoesNotModifyInput(t *testing.T) {
	input := []domain.StockScore{
		score("000200", 70, 100),
		score("000100", 90, 100),
	}
	Rank(input)

	if input[0].StockCode != "000200" || input[0].Rank != 0 {
		t.Errorf("Input slice was modified: %+v", input[0])
	}
}

func TestTopN(t *testing.T) {
	ranked := Rank([]domain.StockScore{
		score("000100", 90, 100),
		score("000200", 80, 100),
		score("000300", 70, 100),
	})

	top := TopN(ranked, 2)
	if len(top) != 2 || top[0].StockCode != "000100" {
		t.Errorf("Unexpected top slice: %+v", top)
	}

	all := TopN(ranked, 10)
	if len(all) != 3 {
		t.Errorf("Expected full slice when n exceeds size, got %d", len(all))
	}

	def := TopN(ranked, 0)
	if len(def) != 3 {
		t.Errorf("Expected DefaultTopN capped at size, got %d", len(def))
	}
}
