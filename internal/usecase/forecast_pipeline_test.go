package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/internal/services/analytics"
	"RegionPulse/pkg/config"
	applogger "RegionPulse/pkg/logger"
)

type stubHistory struct {
	records []models.DailyRecord
	err     error
}

func (s *stubHistory) History(ctx context.Context, region string, daysBack int) ([]models.DailyRecord, error) {
	return s.records, s.err
}

type noopMetrics struct{}

func (noopMetrics) RecordObservation(backend, source string)         {}
func (noopMetrics) RecordError(kind string)                          {}
func (noopMetrics) RecordBehaviorIndex(region string, value float64) {}
func (noopMetrics) RecordLatency(op string, seconds float64)         {}

func pipelineConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Environment = "test"
	cfg.Backend.Type = "clickhouse"
	cfg.Regions = []string{"PL-MZ"}
	cfg.Index.Weights = map[string]float64{
		models.EconomicStress:  0.5,
		models.PoliticalStress: 0.5,
	}
	return cfg
}

func pipelineLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestPipeline(t *testing.T, history *stubHistory) *ForecastPipeline {
	t.Helper()
	cfg := pipelineConfig()
	log := pipelineLogger(t)

	composer, err := analytics.NewComposer(cfg)
	if err != nil {
		t.Fatalf("composer: %v", err)
	}
	return NewForecastPipeline(
		history,
		composer,
		analytics.NewIndexForecaster(cfg, analytics.DefaultModelRegistry(cfg), log),
		analytics.NewShockDetector(cfg),
		analytics.NewConvergenceEngine(cfg),
		analytics.NewRiskClassifier(cfg),
		analytics.NewForecastMonitor(cfg, log),
		analytics.NewCorrelationEngine(cfg),
		noopMetrics{},
		log,
	)
}

func pipelineHistory(days int) []models.DailyRecord {
	recs := make([]models.DailyRecord, 0, days)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		recs = append(recs, models.DailyRecord{
			Date: base.AddDate(0, 0, i),
			Values: map[string]float64{
				models.EconomicStress:  0.3 + 0.01*float64(i%7),
				models.PoliticalStress: 0.4 + 0.005*float64(i%5),
			},
		})
	}
	return recs
}

func TestBuildForecastShortWindowUsesNeutralAnalysis(t *testing.T) {
	// Two days is enough to fit the trend fallback but too short for the
	// correlation window, so convergence and correlations must come back
	// as their neutral substitutes rather than abort the run.
	p := newTestPipeline(t, &stubHistory{records: pipelineHistory(2)})

	res, err := p.BuildForecast(context.Background(), "PL-MZ", 2, 3)
	if err != nil {
		t.Fatalf("BuildForecast: %v", err)
	}
	if res.Convergence == nil || res.Convergence.Score != 50 {
		t.Fatalf("convergence = %+v, want neutral score 50", res.Convergence)
	}
	if len(res.Convergence.Reinforcing) != 0 || len(res.Convergence.Conflicting) != 0 {
		t.Fatalf("neutral convergence must carry no signals, got %+v", res.Convergence)
	}
	if res.Correlations == nil || len(res.Correlations.Relationships) != 0 {
		t.Fatalf("correlations = %+v, want empty table", res.Correlations)
	}
	if len(res.Forecast) != 3 {
		t.Fatalf("forecast points = %d, want 3", len(res.Forecast))
	}
	if res.RiskTier == nil || res.RiskTier.Tier == "" {
		t.Fatalf("risk tier missing: %+v", res.RiskTier)
	}
}

func TestBuildForecastHistoryErrorPropagates(t *testing.T) {
	want := errors.New("clickhouse down")
	p := newTestPipeline(t, &stubHistory{err: want})

	if _, err := p.BuildForecast(context.Background(), "PL-MZ", 30, 7); !errors.Is(err, want) {
		t.Fatalf("err = %v, want wrapped %v", err, want)
	}
}

func TestBuildForecastEmptyWindowIsUnavailable(t *testing.T) {
	p := newTestPipeline(t, &stubHistory{})

	_, err := p.BuildForecast(context.Background(), "PL-MZ", 30, 7)
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Fatalf("err = %v, want ErrDataUnavailable", err)
	}
}

func TestBuildForecastInsufficientHistoryIsFatal(t *testing.T) {
	p := newTestPipeline(t, &stubHistory{records: pipelineHistory(1)})
	// raise the bar above the available single point
	cfg := pipelineConfig()
	cfg.Forecast.MinHistory = 10
	log := pipelineLogger(t)
	p.forecaster = analytics.NewIndexForecaster(cfg, analytics.DefaultModelRegistry(cfg), log)

	_, err := p.BuildForecast(context.Background(), "PL-MZ", 1, 7)
	if !models.IsInsufficientHistory(err) {
		t.Fatalf("err = %v, want InsufficientHistoryError", err)
	}
}

func TestBuildForecastDeterministic(t *testing.T) {
	p := newTestPipeline(t, &stubHistory{records: pipelineHistory(30)})
	clock := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return clock })

	first, err := p.BuildForecast(context.Background(), "PL-MZ", 30, 7)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := p.BuildForecast(context.Background(), "PL-MZ", 30, 7)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("identical input produced differing JSON:\n%s\n%s", a, b)
	}
}
