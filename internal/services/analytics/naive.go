package analytics

import (
	"fmt"
	"math"

	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
)

// NaiveModel repeats the last observation. Registered mostly as a
// baseline for comparing drift, not as a production default.
type NaiveModel struct {
	last   float64
	step   float64
	fitted bool
}

func NewNaiveModel() *NaiveModel { return &NaiveModel{} }

func (m *NaiveModel) Name() string { return "naive" }

func (m *NaiveModel) Fit(series []float64) error {
	if len(series) == 0 {
		return fmt.Errorf("naive: empty series")
	}
	m.last = series[len(series)-1]
	m.step = features.StdDev(features.Diffs(series))
	if m.step < trendMinSpread {
		m.step = trendMinSpread
	}
	m.fitted = true
	return nil
}

func (m *NaiveModel) Predict(horizon int) ([]domsvc.Prediction, error) {
	if !m.fitted {
		return nil, fmt.Errorf("naive: model not fitted")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("naive: horizon must be positive, got %d", horizon)
	}
	out := make([]domsvc.Prediction, 0, horizon)
	for h := 1; h <= horizon; h++ {
		width := intervalZ * m.step * math.Sqrt(float64(h))
		out = append(out, domsvc.Prediction{Mean: m.last, Lower: m.last - width, Upper: m.last + width})
	}
	return out, nil
}

var _ domsvc.ForecastModel = (*NaiveModel)(nil)
