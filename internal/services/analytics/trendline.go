package analytics

import (
	"fmt"
	"math"

	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
)

const (
	trendWindow = 7

	// fallback intervals are deliberately wider than the smoother's
	trendIntervalZ = 2.5

	// floor so a flat series still gets a visible band
	trendMinSpread = 0.02
)

// TrendModel is the fallback: a moving-average level extrapolated with
// the least-squares slope of the recent window. It fits anything with
// two points, which is the pipeline's global minimum.
type TrendModel struct {
	window int

	level  float64
	slope  float64
	spread float64
	fitted bool
}

func NewTrendModel() *TrendModel {
	return &TrendModel{window: trendWindow}
}

func (m *TrendModel) Name() string { return "trend" }

func (m *TrendModel) Fit(series []float64) error {
	if len(series) < 2 {
		return fmt.Errorf("trend: need at least 2 points, got %d", len(series))
	}
	w := m.window
	if w > len(series) {
		w = len(series)
	}
	tail := series[len(series)-w:]

	m.level = features.Mean(tail)
	m.slope = features.Slope(tail)
	m.spread = features.StdDev(tail)
	if m.spread < trendMinSpread {
		m.spread = trendMinSpread
	}
	m.fitted = true
	return nil
}

func (m *TrendModel) Predict(horizon int) ([]domsvc.Prediction, error) {
	if !m.fitted {
		return nil, fmt.Errorf("trend: model not fitted")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("trend: horizon must be positive, got %d", horizon)
	}
	out := make([]domsvc.Prediction, 0, horizon)
	for h := 1; h <= horizon; h++ {
		mean := m.level + float64(h)*m.slope
		width := trendIntervalZ * m.spread * math.Sqrt(float64(h))
		out = append(out, domsvc.Prediction{Mean: mean, Lower: mean - width, Upper: mean + width})
	}
	return out, nil
}

var _ domsvc.ForecastModel = (*TrendModel)(nil)
