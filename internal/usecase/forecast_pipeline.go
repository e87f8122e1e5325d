package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	drepo "RegionPulse/internal/domain/repository"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/analytics"
	applogger "RegionPulse/pkg/logger"
)

const (
	DefaultDaysBack = drepo.DefaultDaysBack
	DefaultHorizon  = drepo.DefaultHorizon
)

// ForecastPipeline runs the full analysis for one region: harmonized
// history in, assembled ForecastResult out. Stages run sequentially; a
// failed non-fatal stage is replaced by its neutral result and the run
// continues. Only missing history and an over-short composite series abort
// the request.
type ForecastPipeline struct {
	history     drepo.HistoryProvider
	composer    domsvc.IndexComposer
	forecaster  domsvc.Forecaster
	shocks      domsvc.ShockDetector
	convergence domsvc.ConvergenceAnalyzer
	risk        domsvc.RiskClassifier
	monitor     domsvc.ForecastMonitor
	correlation domsvc.CorrelationAnalyzer
	metrics     drepo.Metrics
	logger      *applogger.Logger
	now         func() time.Time
}

func NewForecastPipeline(
	history drepo.HistoryProvider,
	composer domsvc.IndexComposer,
	forecaster domsvc.Forecaster,
	shocks domsvc.ShockDetector,
	convergence domsvc.ConvergenceAnalyzer,
	risk domsvc.RiskClassifier,
	monitor domsvc.ForecastMonitor,
	correlation domsvc.CorrelationAnalyzer,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *ForecastPipeline {
	return &ForecastPipeline{
		history:     history,
		composer:    composer,
		forecaster:  forecaster,
		shocks:      shocks,
		convergence: convergence,
		risk:        risk,
		monitor:     monitor,
		correlation: correlation,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the provenance timestamp source.
func (p *ForecastPipeline) SetClock(now func() time.Time) { p.now = now }

// BuildForecast produces the aggregate result for one region. Identical
// history yields an identical result apart from GeneratedAt.
func (p *ForecastPipeline) BuildForecast(ctx context.Context, region string, daysBack, horizon int) (*models.ForecastResult, error) {
	daysBack = drepo.ClampDaysBack(daysBack)
	horizon = drepo.ClampHorizon(horizon)
	start := time.Now()

	history, err := p.history.History(ctx, region, daysBack)
	if err != nil {
		p.metrics.RecordError("history")
		return nil, err
	}
	if len(history) == 0 {
		p.metrics.RecordError("history")
		return nil, fmt.Errorf("%w: empty window for %s", models.ErrDataUnavailable, region)
	}

	series, err := p.composer.Compose(history)
	if err != nil {
		p.metrics.RecordError("compose")
		return nil, fmt.Errorf("compose %s: %w", region, err)
	}
	indices := analytics.SplitIndices(history)

	fc, err := p.forecaster.Forecast(series, horizon)
	if err != nil {
		p.metrics.RecordError("forecast")
		return nil, err
	}

	shocks := p.shocks.Detect(indices)

	conv, err := p.convergence.Analyze(indices)
	if err != nil {
		if !errors.Is(err, models.ErrAnalysisSkipped) {
			p.metrics.RecordError("convergence")
			p.logger.Warn("convergence failed, using neutral",
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
		conv = models.NeutralConvergence()
	}

	tier := p.risk.Classify(domsvc.RiskInput{Series: series, Shocks: shocks, Convergence: conv})

	cd := p.monitor.Assess(indices)

	corr, err := p.correlation.Correlate(indices)
	if err != nil {
		if !errors.Is(err, models.ErrAnalysisSkipped) {
			p.metrics.RecordError("correlation")
			p.logger.Warn("correlation failed, using empty table",
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
		corr = models.EmptyCorrelations()
	}

	result := &models.ForecastResult{
		History:      assembleHistory(history, series),
		Forecast:     fc.Points,
		ShockEvents:  shocks,
		Convergence:  conv,
		RiskTier:     tier,
		Confidence:   cd.Confidence,
		ModelDrift:   cd.Drift,
		Correlations: corr,
		Region:       region,
		Model:        fc.Model,
		GeneratedAt:  p.now().UTC(),
	}

	if latest, ok := series.Latest(); ok {
		p.metrics.RecordBehaviorIndex(region, latest)
	}
	p.metrics.RecordLatency("pipeline_run", time.Since(start).Seconds())
	return result, nil
}

// assembleHistory zips harmonized records with their composite values.
// Compose emits one value per record, in order.
func assembleHistory(history []models.DailyRecord, series *models.CompositeIndexSeries) []models.HistoryDay {
	out := make([]models.HistoryDay, len(history))
	for i, rec := range history {
		out[i] = models.HistoryDay{
			Date:      rec.Date,
			Values:    rec.Values,
			Composite: series.Values[i],
		}
	}
	return out
}
