package analytics

import (
	"fmt"
	"math"

	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
)

const (
	// z for a symmetric 95% interval
	intervalZ = 1.96

	// holtMinPoints is the shortest series the smoother will fit; below
	// this the forecaster falls back to the trend model.
	holtMinPoints = 10

	// degenerateVariance marks a series too flat to smooth.
	degenerateVariance = 1e-10
)

// HoltModel is double exponential smoothing: a level and an additive
// trend, updated per observation. One-step-ahead residuals collected
// during the fit drive the interval width.
type HoltModel struct {
	alpha float64
	beta  float64

	level       float64
	trend       float64
	residualStd float64
	fitted      bool
}

func NewHoltModel(alpha, beta float64) *HoltModel {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.5
	}
	if beta <= 0 || beta >= 1 {
		beta = 0.3
	}
	return &HoltModel{alpha: alpha, beta: beta}
}

func (m *HoltModel) Name() string { return "holt" }

func (m *HoltModel) Fit(series []float64) error {
	if len(series) < holtMinPoints {
		return fmt.Errorf("holt: need at least %d points, got %d", holtMinPoints, len(series))
	}
	if features.SampleVariance(series) < degenerateVariance {
		return fmt.Errorf("holt: series is degenerate")
	}

	level := series[0]
	trend := series[1] - series[0]
	residuals := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		pred := level + trend
		residuals = append(residuals, series[i]-pred)
		prevLevel := level
		level = m.alpha*series[i] + (1-m.alpha)*(level+trend)
		trend = m.beta*(level-prevLevel) + (1-m.beta)*trend
	}

	m.level = level
	m.trend = trend
	m.residualStd = features.StdDev(residuals)
	m.fitted = true
	return nil
}

func (m *HoltModel) Predict(horizon int) ([]domsvc.Prediction, error) {
	if !m.fitted {
		return nil, fmt.Errorf("holt: model not fitted")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("holt: horizon must be positive, got %d", horizon)
	}
	out := make([]domsvc.Prediction, 0, horizon)
	for h := 1; h <= horizon; h++ {
		mean := m.level + float64(h)*m.trend
		width := intervalZ * m.residualStd * math.Sqrt(float64(h))
		out = append(out, domsvc.Prediction{Mean: mean, Lower: mean - width, Upper: mean + width})
	}
	return out, nil
}

var _ domsvc.ForecastModel = (*HoltModel)(nil)
