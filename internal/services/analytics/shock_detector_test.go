package analytics

import (
	"testing"

	"RegionPulse/internal/domain/models"
)

func flatSeries(name string, level float64, n int) models.SubIndexSeries {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = level
	}
	return seriesOf(name, vals...)
}

func TestDetectConstantSeriesNoShocks(t *testing.T) {
	d := NewShockDetector(testConfig())
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress: flatSeries(models.EconomicStress, 0.4, 30),
	}
	if events := d.Detect(indices); len(events) != 0 {
		t.Fatalf("constant series produced %d shocks", len(events))
	}
}

func TestDetectJumpFires(t *testing.T) {
	d := NewShockDetector(testConfig())
	vals := make([]float64, 21)
	for i := range vals {
		vals[i] = 0.3
	}
	vals[20] = 0.9
	indices := map[string]models.SubIndexSeries{
		models.PoliticalStress: seriesOf(models.PoliticalStress, vals...),
	}
	events := d.Detect(indices)
	if len(events) != 1 {
		t.Fatalf("expected one merged event, got %d", len(events))
	}
	ev := events[0]
	if ev.Index != models.PoliticalStress {
		t.Fatalf("unexpected index %s", ev.Index)
	}
	if !ev.Date.Equal(dayAt(20)) {
		t.Fatalf("unexpected date %v", ev.Date)
	}
	if ev.Severity != models.SeveritySevere {
		t.Fatalf("a 0.6 jump should be severe, got %s", ev.Severity)
	}
	if ev.Value != 0.9 {
		t.Fatalf("unexpected observed value %v", ev.Value)
	}
}

func TestDetectMergeKeepsHighestSeverity(t *testing.T) {
	d := NewShockDetector(testConfig())
	// one method's window sees a moderate move, another a severe one;
	// the day must be reported once with the stronger grade
	vals := make([]float64, 21)
	for i := range vals {
		vals[i] = 0.3
	}
	vals[20] = 0.9
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress: seriesOf(models.EconomicStress, vals...),
	}
	events := d.Detect(indices)
	if len(events) != 1 {
		t.Fatalf("same day should merge, got %d events", len(events))
	}
	if events[0].Severity != models.SeveritySevere {
		t.Fatalf("merge should keep the highest severity, got %s", events[0].Severity)
	}
}

func TestSeverityMonotonicInMagnitude(t *testing.T) {
	d := NewShockDetector(testConfig())
	prev := 0
	for _, mag := range []float64{0.16, 0.2, 0.25, 0.31, 0.4, 0.46, 0.7, 1.2} {
		sev, ok := d.severityFor(mag, d.deltaThresh)
		if !ok {
			t.Fatalf("magnitude %v above base should fire", mag)
		}
		if sev.Rank() < prev {
			t.Fatalf("severity dropped at magnitude %v", mag)
		}
		prev = sev.Rank()
	}
}

func TestSeverityBelowBaseDoesNotFire(t *testing.T) {
	d := NewShockDetector(testConfig())
	if _, ok := d.severityFor(0.1, d.deltaThresh); ok {
		t.Fatalf("below-threshold magnitude fired")
	}
}

func TestDetectSortedBySeverityDescending(t *testing.T) {
	d := NewShockDetector(testConfig())
	mild := make([]float64, 21)
	big := make([]float64, 21)
	for i := range mild {
		mild[i] = 0.3
		big[i] = 0.3
	}
	mild[20] = 0.47 // delta 0.17, just over base
	big[20] = 0.9   // delta 0.6, severe
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress:  seriesOf(models.EconomicStress, mild...),
		models.PoliticalStress: seriesOf(models.PoliticalStress, big...),
	}
	events := d.Detect(indices)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Index != models.PoliticalStress {
		t.Fatalf("strongest shock should sort first, got %s", events[0].Index)
	}
	if events[0].Severity.Rank() < events[1].Severity.Rank() {
		t.Fatalf("events not sorted by severity")
	}
}

func TestDetectFlatWindowSmallJumpGradesMild(t *testing.T) {
	d := NewShockDetector(testConfig())
	// A forward-filled stretch leaves the trailing window flat. The
	// z-score scan must sit out rather than divide by a rounding-error
	// std and inflate a small jump to severe.
	vals := make([]float64, 21)
	for i := range vals {
		vals[i] = 0.3
	}
	vals[20] = 0.47
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress: seriesOf(models.EconomicStress, vals...),
	}
	events := d.Detect(indices)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Method == MethodZScore {
		t.Fatalf("zscore fired on a flat trailing window")
	}
	if events[0].Severity != models.SeverityMild {
		t.Fatalf("a 0.17 jump after a flat window should be mild, got %s", events[0].Severity)
	}
}

func TestDetectNoWindowNoZScore(t *testing.T) {
	d := NewShockDetector(testConfig())
	// too short for the z-score window but long enough for delta
	indices := map[string]models.SubIndexSeries{
		models.EconomicStress: seriesOf(models.EconomicStress, 0.3, 0.9),
	}
	events := d.Detect(indices)
	if len(events) != 1 {
		t.Fatalf("expected delta-only detection, got %d", len(events))
	}
	if events[0].Method == MethodZScore {
		t.Fatalf("zscore must not fire without a full trailing window")
	}
}
