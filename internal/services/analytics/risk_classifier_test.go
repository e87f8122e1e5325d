package analytics

import (
	"reflect"
	"testing"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
)

func TestTiersPartitionScoreRange(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	cases := []struct {
		score float64
		tier  string
	}{
		{-5, models.TierStable},
		{0, models.TierStable},
		{19.99, models.TierStable},
		{20, models.TierWatchlist},
		{39.99, models.TierWatchlist},
		{40, models.TierElevated},
		{59.99, models.TierElevated},
		{60, models.TierHigh},
		{79.99, models.TierHigh},
		{80, models.TierCritical},
		{100, models.TierCritical},
		{250, models.TierCritical},
	}
	for _, tc := range cases {
		if got := c.tierFor(tc.score); got != tc.tier {
			t.Errorf("tierFor(%v) = %s, want %s", tc.score, got, tc.tier)
		}
	}
}

func TestClassifyNeutralSituation(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	tier := c.Classify(domsvc.RiskInput{
		Series:      compositeOf(0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5),
		Shocks:      nil,
		Convergence: models.NeutralConvergence(),
	})
	if tier.BaseRisk != 25 {
		t.Fatalf("base risk = %v, want 25", tier.BaseRisk)
	}
	if tier.ShockAdj != 0 || tier.ConvergenceAdj != 0 || tier.TrendAdj != 0 {
		t.Fatalf("neutral situation should have zero adjustments: %+v", tier)
	}
	if tier.Tier != models.TierWatchlist {
		t.Fatalf("score 25 should sit in watchlist, got %s", tier.Tier)
	}
}

func TestClassifyShockAdjustmentCapped(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	series := compositeOf(0.5, 0.5, 0.5, 0.5, 0.5)
	last, _ := series.LastDate()
	shocks := make([]models.ShockEvent, 0, 6)
	for i := 0; i < 6; i++ {
		shocks = append(shocks, models.ShockEvent{
			Index:    models.EconomicStress,
			Severity: models.SeveritySevere,
			Date:     last,
		})
	}
	tier := c.Classify(domsvc.RiskInput{Series: series, Shocks: shocks, Convergence: models.NeutralConvergence()})
	if tier.ShockAdj != shockAdjCap {
		t.Fatalf("shock adjustment = %v, want capped at %v", tier.ShockAdj, shockAdjCap)
	}
}

func TestClassifyIgnoresStaleShocks(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	series := compositeOf(make([]float64, 30)...)
	for i := range series.Values {
		series.Values[i] = 0.5
	}
	old := models.ShockEvent{
		Index:    models.EconomicStress,
		Severity: models.SeveritySevere,
		Date:     dayAt(0), // 29 days before the window end
	}
	tier := c.Classify(domsvc.RiskInput{Series: series, Shocks: []models.ShockEvent{old}, Convergence: models.NeutralConvergence()})
	if tier.ShockAdj != 0 {
		t.Fatalf("stale shock should not adjust risk, got %v", tier.ShockAdj)
	}
}

func TestClassifyTrendRaisesRisk(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	rising := compositeOf(0.3, 0.35, 0.4, 0.45, 0.5, 0.55, 0.6)
	flat := compositeOf(0.6, 0.6, 0.6, 0.6, 0.6, 0.6, 0.6)
	up := c.Classify(domsvc.RiskInput{Series: rising, Convergence: models.NeutralConvergence()})
	level := c.Classify(domsvc.RiskInput{Series: flat, Convergence: models.NeutralConvergence()})
	if up.TrendAdj <= 0 {
		t.Fatalf("rising composite should add trend risk, got %v", up.TrendAdj)
	}
	if level.TrendAdj != 0 {
		t.Fatalf("flat composite should not adjust for trend, got %v", level.TrendAdj)
	}
	found := false
	for _, f := range up.Factors {
		if f == "rising index trend" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rising trend factor, got %v", up.Factors)
	}
}

func TestClassifyConvergenceAdjustmentSign(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	series := compositeOf(0.5, 0.5, 0.5)
	high := c.Classify(domsvc.RiskInput{Series: series, Convergence: &models.ConvergenceResult{Score: 90}})
	low := c.Classify(domsvc.RiskInput{Series: series, Convergence: &models.ConvergenceResult{Score: 10}})
	if high.ConvergenceAdj <= 0 {
		t.Fatalf("high convergence should raise risk, got %v", high.ConvergenceAdj)
	}
	if low.ConvergenceAdj >= 0 {
		t.Fatalf("low convergence should lower risk, got %v", low.ConvergenceAdj)
	}
}

func TestClassifyDeterministicFactors(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	in := domsvc.RiskInput{
		Series:      compositeOf(0.6, 0.65, 0.7, 0.75, 0.8),
		Shocks:      []models.ShockEvent{{Index: models.PoliticalStress, Severity: models.SeverityHigh, Date: dayAt(4)}},
		Convergence: &models.ConvergenceResult{Score: 80},
	}
	a := c.Classify(in)
	b := c.Classify(in)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("classification not deterministic: %+v vs %+v", a, b)
	}
	if len(a.Factors) == 0 {
		t.Fatalf("expected contributing factors")
	}
}

func TestClassifyScoreClamped(t *testing.T) {
	c := NewRiskClassifier(testConfig())
	series := compositeOf(0.9, 0.95, 1.0, 1.0, 1.0)
	shocks := []models.ShockEvent{}
	last, _ := series.LastDate()
	for i := 0; i < 10; i++ {
		shocks = append(shocks, models.ShockEvent{Severity: models.SeveritySevere, Date: last})
	}
	tier := c.Classify(domsvc.RiskInput{Series: series, Shocks: shocks, Convergence: &models.ConvergenceResult{Score: 100}})
	if tier.RiskScore > 100 || tier.RiskScore < 0 {
		t.Fatalf("risk score escaped [0,100]: %v", tier.RiskScore)
	}
	if tier.Tier != models.TierCritical {
		t.Fatalf("maxed inputs should classify critical, got %s", tier.Tier)
	}
}
