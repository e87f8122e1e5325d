package service

import (
	"RegionPulse/internal/domain/models"
)

// IndexComposer folds harmonized daily records into the composite
// behavior-index series.
type IndexComposer interface {
	Compose(history []models.DailyRecord) (*models.CompositeIndexSeries, error)
}

// Forecaster fits a model to the composite series and predicts horizon
// days ahead. Fails with InsufficientHistoryError below the minimum.
type Forecaster interface {
	Forecast(series *models.CompositeIndexSeries, horizon int) (*models.Forecast, error)
}

// ShockDetector scans sub-index series for significant jumps.
type ShockDetector interface {
	Detect(indices map[string]models.SubIndexSeries) []models.ShockEvent
}

// ConvergenceAnalyzer correlates sub-indices over the recent window and
// matches named patterns. Returns ErrAnalysisSkipped on short windows.
type ConvergenceAnalyzer interface {
	Analyze(indices map[string]models.SubIndexSeries) (*models.ConvergenceResult, error)
}

// RiskInput bundles everything the classifier weighs.
type RiskInput struct {
	Series      *models.CompositeIndexSeries
	Shocks      []models.ShockEvent
	Convergence *models.ConvergenceResult
}

// RiskClassifier maps the current situation to a discrete tier.
type RiskClassifier interface {
	Classify(in RiskInput) *models.RiskTier
}

// ForecastMonitor scores per-index confidence and drift.
type ForecastMonitor interface {
	Assess(indices map[string]models.SubIndexSeries) *models.ConfidenceDrift
}

// CorrelationAnalyzer builds the full pairwise relationship table.
// Returns ErrAnalysisSkipped on short windows.
type CorrelationAnalyzer interface {
	Correlate(indices map[string]models.SubIndexSeries) (*models.CorrelationSet, error)
}
