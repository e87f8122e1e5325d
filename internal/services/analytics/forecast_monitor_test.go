package analytics

import (
	"testing"

	"RegionPulse/internal/domain/models"
)

func TestAssessConstantSeries(t *testing.T) {
	m := NewForecastMonitor(testConfig(), testLogger())
	out := m.Assess(map[string]models.SubIndexSeries{
		models.EconomicStress: flatSeries(models.EconomicStress, 0.3, 20),
	})
	if got := out.Drift[models.EconomicStress]; got != 0 {
		t.Fatalf("constant series drift = %v, want 0", got)
	}
	if got := out.Confidence[models.EconomicStress]; got != 1 {
		t.Fatalf("constant observed series confidence = %v, want 1", got)
	}
}

func TestAssessImputedDaysLowerConfidence(t *testing.T) {
	m := NewForecastMonitor(testConfig(), testLogger())
	observed := flatSeries(models.PoliticalStress, 0.3, 20)
	imputed := flatSeries(models.PoliticalStress, 0.3, 20)
	for i := 10; i < 20; i++ {
		imputed.Values[i] = models.NeutralValue
	}
	full := m.Assess(map[string]models.SubIndexSeries{models.PoliticalStress: observed})
	holey := m.Assess(map[string]models.SubIndexSeries{models.PoliticalStress: imputed})
	if holey.Confidence[models.PoliticalStress] >= full.Confidence[models.PoliticalStress] {
		t.Fatalf("imputed days should lower confidence: %v >= %v",
			holey.Confidence[models.PoliticalStress], full.Confidence[models.PoliticalStress])
	}
}

func TestAssessVolatilityLowersConfidence(t *testing.T) {
	m := NewForecastMonitor(testConfig(), testLogger())
	calm := flatSeries(models.EconomicStress, 0.4, 20)
	choppy := seriesOf(models.EconomicStress,
		0.1, 0.9, 0.2, 0.8, 0.15, 0.85, 0.1, 0.9, 0.2, 0.8,
		0.1, 0.9, 0.2, 0.8, 0.15, 0.85, 0.1, 0.9, 0.2, 0.8)
	calmOut := m.Assess(map[string]models.SubIndexSeries{models.EconomicStress: calm})
	choppyOut := m.Assess(map[string]models.SubIndexSeries{models.EconomicStress: choppy})
	if choppyOut.Confidence[models.EconomicStress] >= calmOut.Confidence[models.EconomicStress] {
		t.Fatalf("volatile series should have lower confidence")
	}
	if choppyOut.Drift[models.EconomicStress] <= 0 {
		t.Fatalf("volatile series should drift, got %v", choppyOut.Drift[models.EconomicStress])
	}
}

func TestAssessConfidenceInRange(t *testing.T) {
	m := NewForecastMonitor(testConfig(), testLogger())
	out := m.Assess(map[string]models.SubIndexSeries{
		models.EconomicStress:       seriesOf(models.EconomicStress, 0.1, 0.9, 0.5, 0.5, 0.3),
		models.PoliticalStress:      flatSeries(models.PoliticalStress, 0.5, 5),
		models.EnvironmentalStress:  seriesOf(models.EnvironmentalStress, 0.2),
		models.MisinformationStress: seriesOf(models.MisinformationStress),
	})
	for name, conf := range out.Confidence {
		if conf < 0 || conf > 1 {
			t.Errorf("%s confidence %v out of range", name, conf)
		}
	}
	for name, drift := range out.Drift {
		if drift < 0 {
			t.Errorf("%s drift %v negative", name, drift)
		}
	}
}

func TestAssessAllImputedWindow(t *testing.T) {
	m := NewForecastMonitor(testConfig(), testLogger())
	out := m.Assess(map[string]models.SubIndexSeries{
		models.SocialCohesionStress: flatSeries(models.SocialCohesionStress, models.NeutralValue, 20),
	})
	// completeness 0, stability 1 -> confidence settles at 0.5
	if got := out.Confidence[models.SocialCohesionStress]; got != 0.5 {
		t.Fatalf("fully imputed window confidence = %v, want 0.5", got)
	}
}
