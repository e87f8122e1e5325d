package analytics

import (
	"errors"
	"testing"

	"RegionPulse/internal/domain/models"
)

func risingSeries(name string, start, step float64, n int) models.SubIndexSeries {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = start + step*float64(i)
	}
	return seriesOf(name, vals...)
}

func TestAnalyzeReinforcingPair(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress:  risingSeries(models.EconomicStress, 0.2, 0.02, 14),
		models.PoliticalStress: risingSeries(models.PoliticalStress, 0.3, 0.02, 14),
	}
	res, err := e.Analyze(indices)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Reinforcing) != 1 {
		t.Fatalf("expected 1 reinforcing pair, got %d", len(res.Reinforcing))
	}
	if res.Reinforcing[0].Correlation <= 0.7 {
		t.Fatalf("parallel rises should correlate strongly, got %v", res.Reinforcing[0].Correlation)
	}
	if res.Score <= 50 {
		t.Fatalf("reinforcing-only window should score above 50, got %v", res.Score)
	}
}

func TestAnalyzeConflictingPair(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress:   risingSeries(models.EconomicStress, 0.2, 0.02, 14),
		models.MobilityActivity: risingSeries(models.MobilityActivity, 0.8, -0.02, 14),
	}
	res, err := e.Analyze(indices)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Conflicting) != 1 {
		t.Fatalf("expected 1 conflicting pair, got %d", len(res.Conflicting))
	}
	if res.Score >= 50 {
		t.Fatalf("conflicting-only window should score below 50, got %v", res.Score)
	}
}

func TestScoreMonotonicInNetStrength(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	strong := map[string]models.SubIndexSeries{
		models.EconomicStress:  risingSeries(models.EconomicStress, 0.2, 0.02, 14),
		models.PoliticalStress: risingSeries(models.PoliticalStress, 0.3, 0.02, 14),
	}
	// same shape with noise that drags the pair below the threshold
	noisy := map[string]models.SubIndexSeries{
		models.EconomicStress:  risingSeries(models.EconomicStress, 0.2, 0.02, 14),
		models.PoliticalStress: seriesOf(models.PoliticalStress, 0.5, 0.2, 0.7, 0.1, 0.6, 0.3, 0.8, 0.2, 0.5, 0.4, 0.6, 0.1, 0.7, 0.3),
	}
	strongRes, err := e.Analyze(strong)
	if err != nil {
		t.Fatalf("Analyze strong: %v", err)
	}
	noisyRes, err := e.Analyze(noisy)
	if err != nil {
		t.Fatalf("Analyze noisy: %v", err)
	}
	if strongRes.Score < noisyRes.Score {
		t.Fatalf("stronger net correlation scored lower: %v < %v", strongRes.Score, noisyRes.Score)
	}
}

func TestAnalyzeSkippedOnShortWindow(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress:  seriesOf(models.EconomicStress, 0.3, 0.4),
		models.PoliticalStress: seriesOf(models.PoliticalStress, 0.5, 0.6),
	}
	if _, err := e.Analyze(indices); !errors.Is(err, models.ErrAnalysisSkipped) {
		t.Fatalf("expected ErrAnalysisSkipped, got %v", err)
	}
}

func TestAnalyzeSkippedOnSingleIndex(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress: risingSeries(models.EconomicStress, 0.2, 0.02, 14),
	}
	if _, err := e.Analyze(indices); !errors.Is(err, models.ErrAnalysisSkipped) {
		t.Fatalf("expected ErrAnalysisSkipped, got %v", err)
	}
}

func TestPatternMatchUnrestRisk(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.PoliticalStress:      flatSeries(models.PoliticalStress, 0.8, 14),
		models.MisinformationStress: flatSeries(models.MisinformationStress, 0.75, 14),
		models.SocialCohesionStress: flatSeries(models.SocialCohesionStress, 0.7, 14),
		models.EconomicStress:       flatSeries(models.EconomicStress, 0.2, 14),
	}
	res, err := e.Analyze(indices)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, p := range res.Patterns {
		if p.Name == "unrest risk" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unrest risk pattern, got %v", res.Patterns)
	}
}

func TestPatternNotMatchedBelowElevated(t *testing.T) {
	e := NewConvergenceEngine(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.PoliticalStress:      flatSeries(models.PoliticalStress, 0.8, 14),
		models.MisinformationStress: flatSeries(models.MisinformationStress, 0.4, 14),
		models.SocialCohesionStress: flatSeries(models.SocialCohesionStress, 0.7, 14),
	}
	res, err := e.Analyze(indices)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, p := range res.Patterns {
		if p.Name == "unrest risk" {
			t.Fatalf("pattern should not match with one index below the elevated level")
		}
	}
}
