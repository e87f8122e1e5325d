package analytics

import (
	"errors"
	"testing"

	"RegionPulse/internal/domain/models"
)

func TestCorrelateFullTable(t *testing.T) {
	e := NewCorrelationEngine(testConfig())
	out, err := e.Correlate(map[string]models.SubIndexSeries{
		models.EconomicStress:      risingSeries(models.EconomicStress, 0.1, 0.04, 14),
		models.PoliticalStress:     risingSeries(models.PoliticalStress, 0.2, 0.04, 14),
		models.EnvironmentalStress: flatSeries(models.EnvironmentalStress, 0.5, 14),
		models.MobilityActivity:    risingSeries(models.MobilityActivity, 0.9, -0.04, 14),
	})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if got := len(out.Relationships); got != 6 {
		t.Fatalf("relationships = %d, want 6 for 4 indices", got)
	}
	want := []string{
		models.EconomicStress,
		models.EnvironmentalStress,
		models.MobilityActivity,
		models.PoliticalStress,
	}
	if len(out.Indices) != len(want) {
		t.Fatalf("indices analyzed = %v", out.Indices)
	}
	for i, name := range want {
		if out.Indices[i] != name {
			t.Fatalf("indices[%d] = %s, want %s", i, out.Indices[i], name)
		}
	}
	for _, rel := range out.Relationships {
		if rel.Index1 >= rel.Index2 {
			t.Errorf("pair (%s, %s) not in sorted order", rel.Index1, rel.Index2)
		}
	}
}

func TestCorrelateStrengthAndDirection(t *testing.T) {
	e := NewCorrelationEngine(testConfig())
	out, err := e.Correlate(map[string]models.SubIndexSeries{
		models.EconomicStress:  risingSeries(models.EconomicStress, 0.1, 0.05, 14),
		models.PoliticalStress: risingSeries(models.PoliticalStress, 0.8, -0.05, 14),
	})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	rel := out.Relationships[0]
	if rel.Correlation > -0.99 {
		t.Fatalf("anti-parallel lines should correlate near -1, got %v", rel.Correlation)
	}
	if rel.Strength != models.StrengthStrong {
		t.Fatalf("strength = %s, want %s", rel.Strength, models.StrengthStrong)
	}
	if rel.Direction != models.DirectionNegative {
		t.Fatalf("direction = %s, want %s", rel.Direction, models.DirectionNegative)
	}
}

func TestCorrelateFlatSideUncorrelated(t *testing.T) {
	e := NewCorrelationEngine(testConfig())
	out, err := e.Correlate(map[string]models.SubIndexSeries{
		models.EconomicStress:      risingSeries(models.EconomicStress, 0.1, 0.05, 14),
		models.EnvironmentalStress: flatSeries(models.EnvironmentalStress, 0.5, 14),
	})
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	rel := out.Relationships[0]
	if rel.Correlation != 0 {
		t.Fatalf("flat side correlation = %v, want 0", rel.Correlation)
	}
	if rel.Strength != models.StrengthWeak {
		t.Fatalf("strength = %s, want %s", rel.Strength, models.StrengthWeak)
	}
	if rel.Direction != models.DirectionPositive {
		t.Fatalf("direction = %s, want %s", rel.Direction, models.DirectionPositive)
	}
}

func TestCorrelateSkipsShortWindow(t *testing.T) {
	e := NewCorrelationEngine(testConfig())
	_, err := e.Correlate(map[string]models.SubIndexSeries{
		models.EconomicStress:  seriesOf(models.EconomicStress, 0.1, 0.2),
		models.PoliticalStress: seriesOf(models.PoliticalStress, 0.3, 0.4),
	})
	if !errors.Is(err, models.ErrAnalysisSkipped) {
		t.Fatalf("err = %v, want ErrAnalysisSkipped", err)
	}
}

func TestCorrelateSkipsSingleIndex(t *testing.T) {
	e := NewCorrelationEngine(testConfig())
	_, err := e.Correlate(map[string]models.SubIndexSeries{
		models.EconomicStress: risingSeries(models.EconomicStress, 0.1, 0.05, 14),
	})
	if !errors.Is(err, models.ErrAnalysisSkipped) {
		t.Fatalf("err = %v, want ErrAnalysisSkipped", err)
	}
}
