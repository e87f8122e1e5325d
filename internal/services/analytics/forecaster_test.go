package analytics

import (
	"testing"
	"time"

	"RegionPulse/internal/domain/models"
)

func newTestForecaster() *IndexForecaster {
	cfg := testConfig()
	return NewIndexForecaster(cfg, DefaultModelRegistry(cfg), testLogger())
}

func trendingComposite(n int) *models.CompositeIndexSeries {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 0.3 + 0.01*float64(i) + 0.005*float64(i%3)
	}
	return compositeOf(vals...)
}

func TestForecastHorizonAndDates(t *testing.T) {
	f := newTestForecaster()
	series := trendingComposite(30)
	fc, err := f.Forecast(series, 7)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(fc.Points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(fc.Points))
	}
	last, _ := series.LastDate()
	for i, p := range fc.Points {
		want := last.AddDate(0, 0, i+1)
		if !p.Date.Equal(want) {
			t.Fatalf("point %d date %v, want %v", i, p.Date, want)
		}
		if p.Lower > p.Mean || p.Mean > p.Upper {
			t.Fatalf("point %d bounds out of order: %v %v %v", i, p.Lower, p.Mean, p.Upper)
		}
	}
}

func TestForecastPrimaryModelUsed(t *testing.T) {
	f := newTestForecaster()
	fc, err := f.Forecast(trendingComposite(30), 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if fc.Model != "holt" {
		t.Fatalf("expected holt on a long varied series, got %s", fc.Model)
	}
}

func TestForecastFallbackOnConstantSeries(t *testing.T) {
	f := newTestForecaster()
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 0.42
	}
	fc, err := f.Forecast(compositeOf(vals...), 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if fc.Model != "trend" {
		t.Fatalf("expected trend fallback on constant series, got %s", fc.Model)
	}
	for i, p := range fc.Points {
		if p.Lower > p.Mean || p.Mean > p.Upper {
			t.Fatalf("point %d bounds out of order", i)
		}
	}
}

func TestForecastFallbackOnShortSeries(t *testing.T) {
	f := newTestForecaster()
	fc, err := f.Forecast(compositeOf(0.3, 0.4, 0.35, 0.45), 3)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if fc.Model != "trend" {
		t.Fatalf("expected trend below the smoother minimum, got %s", fc.Model)
	}
}

func TestForecastInsufficientHistory(t *testing.T) {
	f := newTestForecaster()
	_, err := f.Forecast(compositeOf(0.5), 7)
	if err == nil {
		t.Fatalf("expected error on single point")
	}
	if !models.IsInsufficientHistory(err) {
		t.Fatalf("expected InsufficientHistoryError, got %v", err)
	}
}

func TestForecastBoundsClamped(t *testing.T) {
	f := newTestForecaster()
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 0.7 + 0.01*float64(i)
	}
	fc, err := f.Forecast(compositeOf(vals...), 10)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	for i, p := range fc.Points {
		if p.Upper > 1 || p.Lower < 0 || p.Mean < 0 || p.Mean > 1 {
			t.Fatalf("point %d escaped [0,1]: %+v", i, p)
		}
	}
}

func TestForecastDeterministic(t *testing.T) {
	f := newTestForecaster()
	series := trendingComposite(30)
	a, err := f.Forecast(series, 7)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	b, err := f.Forecast(series, 7)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	for i := range a.Points {
		if a.Points[i] != b.Points[i] {
			t.Fatalf("point %d differs across identical calls", i)
		}
	}
}

func TestHoltRejectsDegenerate(t *testing.T) {
	m := NewHoltModel(0, 0)
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = 0.5
	}
	if err := m.Fit(vals); err == nil {
		t.Fatalf("expected degenerate fit error")
	}
}

func TestHoltTracksTrend(t *testing.T) {
	m := NewHoltModel(0.5, 0.3)
	vals := make([]float64, 20)
	for i := range vals {
		vals[i] = 0.2 + 0.01*float64(i)
	}
	if err := m.Fit(vals); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	preds, err := m.Predict(3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	last := vals[len(vals)-1]
	if preds[0].Mean <= last {
		t.Fatalf("upward series should forecast above last value: %v <= %v", preds[0].Mean, last)
	}
	if preds[2].Mean <= preds[0].Mean {
		t.Fatalf("trend should keep rising across horizon")
	}
}

func TestRegistryResolveFreshInstances(t *testing.T) {
	r := DefaultModelRegistry(testConfig())
	a, err := r.Resolve("holt")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	b, _ := r.Resolve("holt")
	if a == b {
		t.Fatalf("expected fresh model instances per resolve")
	}
}

func TestRegistryUnknownModel(t *testing.T) {
	r := DefaultModelRegistry(testConfig())
	if _, err := r.Resolve("arima"); err == nil {
		t.Fatalf("expected unknown model error")
	}
}

func TestRegistryNamesSorted(t *testing.T) {
	names := DefaultModelRegistry(testConfig()).Names()
	want := []string{"holt", "naive", "trend"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestForecastDatesAreConsecutiveDays(t *testing.T) {
	f := newTestForecaster()
	fc, err := f.Forecast(trendingComposite(20), 5)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	for i := 1; i < len(fc.Points); i++ {
		if fc.Points[i].Date.Sub(fc.Points[i-1].Date) != 24*time.Hour {
			t.Fatalf("gap between forecast days %d and %d", i-1, i)
		}
	}
}
