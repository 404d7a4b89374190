package universe

import "testing"

func baseCandidate() Candidate {
	return Candidate{
		Code:         "000100",
		Name:         "삼성전자",
		Price:        70000,
		ChangeRate:   4.5,
		TradingValue: 1500,
	}
}

func TestEligiblePassesCleanCandidate(t *testing.T) {
	if !Eligible(baseCandidate(), DefaultFilterConfig()) {
		t.Error("Clean candidate must pass the gates")
	}
}

func TestEligibleGates(t *testing.T) {
	cfg := DefaultFilterConfig()

	tests := []struct {
		name   string
		mutate func(*Candidate)
	}{
		{"thin trading value", func(c *Candidate) { c.TradingValue = 50 }},
		{"change below minimum", func(c *Candidate) { c.ChangeRate = 1.0 }},
		{"change above maximum", func(c *Candidate) { c.ChangeRate = 20.0 }},
		{"red day", func(c *Candidate) { c.ChangeRate = -3.0 }},
		{"penny stock", func(c *Candidate) { c.Price = 500 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCandidate()
			tt.mutate(&c)
			if Eligible(c, cfg) {
				t.Errorf("Candidate must be rejected: %+v", c)
			}
		})
	}
}

func TestEligibleBoundaries(t *testing.T) {
	cfg := DefaultFilterConfig()

	c := baseCandidate()
	c.ChangeRate = cfg.MinChangeRate
	if !Eligible(c, cfg) {
		t.Error("Minimum change rate is inclusive")
	}
	c.ChangeRate = cfg.MaxChangeRate
	if !Eligible(c, cfg) {
		t.Error("Maximum change rate is inclusive")
	}
	c = baseCandidate()
	c.TradingValue = cfg.MinTradingValue
	if !Eligible(c, cfg) {
		t.Error("Minimum trading value is inclusive")
	}
}

func TestEligibleExcludesInstrumentsByName(t *testing.T) {
	cfg := DefaultFilterConfig()
	names := []string{
		"KODEX 레버리지",
		"TIGER 200",
		"삼성 인버스 2X",
		"교보10호스팩",
		"맥쿼리인프라 리츠",
		"현대차우선주",
		"Some ETF Fund",
	}

	for _, name := range names {
		c := baseCandidate()
		c.Name = name
		if Eligible(c, cfg) {
			t.Errorf("%q must be excluded by name", name)
		}
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	a := baseCandidate()
	a.Code = "000100"
	b := baseCandidate()
	b.Code = "000200"
	bad := baseCandidate()
	bad.Code = "000300"
	bad.ChangeRate = 0.5

	got := Filter([]Candidate{a, bad, b}, DefaultFilterConfig())
	if len(got) != 2 || got[0].Code != "000100" || got[1].Code != "000200" {
		t.Errorf("Unexpected filter output: %+v", got)
	}
}
