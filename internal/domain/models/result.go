package models

import (
	"encoding/json"
	"time"
)

// ForecastPoint is one predicted day: mean plus symmetric interval bounds.
// Lower <= Mean <= Upper always holds.
type ForecastPoint struct {
	Date  time.Time
	Mean  float64
	Lower float64
	Upper float64
}

func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	type alias struct {
		Date  string  `json:"date"`
		Mean  float64 `json:"mean"`
		Lower float64 `json:"lower"`
		Upper float64 `json:"upper"`
	}
	return json.Marshal(alias{
		Date:  p.Date.Format(time.DateOnly),
		Mean:  p.Mean,
		Lower: p.Lower,
		Upper: p.Upper,
	})
}

// Forecast is the forecaster's output: the model that produced it and one
// point per horizon day, dated consecutively after the last history date.
type Forecast struct {
	Model  string
	Points []ForecastPoint
}

// HistoryDay is one day of the assembled result: every sub-index value
// plus the composite behavior index. Serializes with the sub-index names
// as top-level keys.
type HistoryDay struct {
	Date      time.Time
	Values    map[string]float64
	Composite float64
}

func (d HistoryDay) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.Values)+2)
	for name, v := range d.Values {
		m[name] = v
	}
	m["date"] = d.Date.Format(time.DateOnly)
	m["behavior_index"] = d.Composite
	return json.Marshal(m)
}

// ForecastResult is the aggregate output for one region and one request.
// Field order matches the serialized contract consumed by the dashboard.
type ForecastResult struct {
	History      []HistoryDay       `json:"history"`
	Forecast     []ForecastPoint    `json:"forecast"`
	ShockEvents  []ShockEvent       `json:"shock_events"`
	Convergence  *ConvergenceResult `json:"convergence"`
	RiskTier     *RiskTier          `json:"risk_tier"`
	Confidence   map[string]float64 `json:"forecast_confidence"`
	ModelDrift   map[string]float64 `json:"model_drift"`
	Correlations *CorrelationSet    `json:"correlations"`
	Region       string             `json:"region"`
	Model        string             `json:"model"`
	GeneratedAt  time.Time          `json:"generated_at"`
}
