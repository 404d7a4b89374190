package screener

import (
	"context"
	"testing"
	"time"

	"jongga-screener/internal/domain"
	"jongga-screener/internal/modules/universe"
	"jongga-screener/pkg/logger"
)

type fakeBarSource struct {
	bars map[string][]domain.DailyBar
}

func (f *fakeBarSource) GetDailyBars(_ context.Context, code string, _ int) ([]domain.DailyBar, error) {
	return f.bars[code], nil
}

type fakeWeightStore struct {
	weights domain.Weights
}

func (f *fakeWeightStore) Active(context.Context) (domain.Weights, error) { return f.weights, nil }
func (f *fakeWeightStore) Replace(context.Context, domain.Weights, []domain.WeightChange) error {
	return nil
}
func (f *fakeWeightStore) History(context.Context, int) ([]domain.WeightChange, error) {
	return nil, nil
}

type fakeScoreStore struct {
	saved []domain.ScreeningRun
}

func (f *fakeScoreStore) SaveRun(_ context.Context, run domain.ScreeningRun) error {
	f.saved = append(f.saved, run)
	return nil
}
func (f *fakeScoreStore) GetRun(context.Context, time.Time) (*domain.ScreeningRun, error) {
	return nil, nil
}
func (f *fakeScoreStore) LatestRun(context.Context) (*domain.ScreeningRun, error) { return nil, nil }
func (f *fakeScoreStore) ScoresWithoutOutcome(context.Context, time.Time) ([]domain.StockScore, error) {
	return nil, nil
}
func (f *fakeScoreStore) PendingOutcomeDates(context.Context) ([]time.Time, error) {
	return nil, nil
}

// trendBars builds n chronological bars ending at endDate, rising by
// step per day.
func trendBars(n int, endDate time.Time, base, step float64) []domain.DailyBar {
	bars := make([]domain.DailyBar, n)
	for i := 0; i < n; i++ {
		c := base + float64(i)*step
		open := c - step
		bars[i] = domain.DailyBar{
			Date:   endDate.AddDate(0, 0, i-n+1),
			Open:   open,
			High:   c * 1.012,
			Low:    open * 0.99,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func candidate(code string, tradingValue float64) universe.Candidate {
	return universe.Candidate{
		Code:         code,
		Name:         "stock-" + code,
		Price:        12000,
		ChangeRate:   4.0,
		TradingValue: tradingValue,
	}
}

func newTestService(bars domain.BarSource, scores domain.ScoreStore) *Service {
	weights := &fakeWeightStore{weights: domain.DefaultWeights()}
	log := logger.New(logger.Config{Level: "error"})
	return NewService(bars, weights, scores, universe.DefaultFilterConfig(), 5, log)
}

func TestRunScoresAndPersists(t *testing.T) {
	screenDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := &fakeBarSource{bars: map[string][]domain.DailyBar{
		"000100": trendBars(40, screenDate, 10000, 60),
		"000200": trendBars(40, screenDate, 20000, 100),
	}}
	store := &fakeScoreStore{}
	svc := newTestService(bars, store)

	run, err := svc.Run(context.Background(), screenDate,
		[]universe.Candidate{candidate("000100", 500), candidate("000200", 800)})
	if err != nil {
		t.Fatal(err)
	}

	if len(store.saved) != 1 {
		t.Fatalf("Expected 1 persisted run, got %d", len(store.saved))
	}
	if run.ID == "" {
		t.Error("Run must carry an id")
	}
	if run.Universe != 2 || run.Excluded != 0 {
		t.Errorf("Expected universe 2 excluded 0, got %d/%d", run.Universe, run.Excluded)
	}
	for i, s := range run.Scores {
		if s.Rank != i+1 {
			t.Errorf("Score %d has rank %d", i, s.Rank)
		}
		if s.Grade == "" || s.Strategy.Grade != s.Grade {
			t.Errorf("Score %s missing grade/strategy: %+v", s.StockCode, s)
		}
		if s.Total < 0 || s.Total > 100 {
			t.Errorf("Total out of range: %v", s.Total)
		}
	}
	if len(run.Scores) == 2 && run.Scores[0].Total < run.Scores[1].Total {
		t.Error("Scores must be ordered by total descending")
	}
}

func TestRunExcludesStockWithShortHistory(t *testing.T) {
	screenDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := &fakeBarSource{bars: map[string][]domain.DailyBar{
		"000100": trendBars(40, screenDate, 10000, 60),
		"000200": trendBars(5, screenDate, 20000, 100), // freshly listed
	}}
	store := &fakeScoreStore{}
	svc := newTestService(bars, store)

	run, err := svc.Run(context.Background(), screenDate,
		[]universe.Candidate{candidate("000100", 500), candidate("000200", 800)})
	if err != nil {
		t.Fatal(err)
	}
	if run.Universe != 1 || run.Excluded != 1 {
		t.Errorf("Expected 1 scored and 1 excluded, got %d/%d", run.Universe, run.Excluded)
	}
	if run.Scores[0].StockCode != "000100" {
		t.Errorf("Wrong survivor: %s", run.Scores[0].StockCode)
	}
}

func TestRunIgnoresBarsAfterScreenDate(t *testing.T) {
	screenDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	clean := trendBars(40, screenDate, 10000, 60)

	// Same series with two future bars appended; they must not change
	// the score.
	leaky := trendBars(42, screenDate.AddDate(0, 0, 2), 10000, 60)

	store1 := &fakeScoreStore{}
	svc1 := newTestService(&fakeBarSource{bars: map[string][]domain.DailyBar{"000100": clean}}, store1)
	run1, err := svc1.Run(context.Background(), screenDate, []universe.Candidate{candidate("000100", 500)})
	if err != nil {
		t.Fatal(err)
	}

	store2 := &fakeScoreStore{}
	svc2 := newTestService(&fakeBarSource{bars: map[string][]domain.DailyBar{"000100": leaky}}, store2)
	run2, err := svc2.Run(context.Background(), screenDate, []universe.Candidate{candidate("000100", 500)})
	if err != nil {
		t.Fatal(err)
	}

	if run1.Scores[0].Total != run2.Scores[0].Total {
		t.Errorf("Future bars leaked into the score: %v vs %v", run1.Scores[0].Total, run2.Scores[0].Total)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	screenDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := &fakeBarSource{bars: map[string][]domain.DailyBar{
		"000100": trendBars(40, screenDate, 10000, 60),
		"000200": trendBars(40, screenDate, 20000, 100),
		"000300": trendBars(40, screenDate, 15000, 80),
	}}
	candidates := []universe.Candidate{
		candidate("000100", 500), candidate("000200", 500), candidate("000300", 500),
	}

	svc := newTestService(bars, &fakeScoreStore{})
	first, err := svc.Run(context.Background(), screenDate, candidates)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		again, err := svc.Run(context.Background(), screenDate, candidates)
		if err != nil {
			t.Fatal(err)
		}
		for j := range first.Scores {
			if again.Scores[j].StockCode != first.Scores[j].StockCode ||
				again.Scores[j].Total != first.Scores[j].Total {
				t.Fatalf("Rerun %d diverged at position %d", i, j)
			}
		}
	}
}

func TestRunAppliesUniverseFilter(t *testing.T) {
	screenDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars := &fakeBarSource{bars: map[string][]domain.DailyBar{
		"000100": trendBars(40, screenDate, 10000, 60),
	}}
	store := &fakeScoreStore{}
	svc := newTestService(bars, store)

	thin := candidate("000900", 10) // below the trading-value gate
	run, err := svc.Run(context.Background(), screenDate,
		[]universe.Candidate{candidate("000100", 500), thin})
	if err != nil {
		t.Fatal(err)
	}
	if run.Universe != 1 {
		t.Errorf("Gated candidate must never be scored, got universe %d", run.Universe)
	}
}
