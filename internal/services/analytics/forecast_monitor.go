package analytics

import (
	"math"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
	"RegionPulse/pkg/logger"
)

const (
	monitorEWMAAlpha = 0.3

	// volatility scaling for the stability half of confidence
	stabilityScale = 10.0

	// below this completeness the input is flagged as degraded
	degradedCompleteness = 0.8
)

// ForecastMonitor scores each sub-index on how trustworthy its forecast
// inputs are. Confidence blends completeness (share of non-imputed days)
// with stability (inverse recent volatility); drift is the rolling gap
// between a one-step EWMA self-forecast and what actually arrived.
type ForecastMonitor struct {
	window int
	log    *logger.Logger
}

func NewForecastMonitor(cfg *config.Config, log *logger.Logger) *ForecastMonitor {
	w := cfg.Monitor.Window
	if w <= 0 {
		w = 14
	}
	return &ForecastMonitor{window: w, log: log}
}

func (m *ForecastMonitor) Assess(indices map[string]models.SubIndexSeries) *models.ConfidenceDrift {
	out := &models.ConfidenceDrift{
		Confidence: make(map[string]float64, len(indices)),
		Drift:      make(map[string]float64, len(indices)),
	}
	for _, name := range sortedIndexNames(indices) {
		tail := indices[name].Tail(m.window)
		if len(tail) == 0 {
			out.Confidence[name] = models.NeutralValue
			out.Drift[name] = 0
			continue
		}

		completeness := m.completeness(tail)
		if completeness < degradedCompleteness {
			m.log.Debug("degraded input window",
				logger.String("index", name),
				logger.Float64("completeness", completeness))
		}

		vol := features.StdDev(features.Diffs(tail))
		stability := 1 / (1 + stabilityScale*vol)

		out.Confidence[name] = features.Round(features.Clamp01(0.5*completeness+0.5*stability), 3)
		out.Drift[name] = features.Round(m.drift(tail), 4)
	}
	return out
}

// completeness is the share of days not sitting exactly on the neutral
// default the harmonizer substitutes for missing sources.
func (m *ForecastMonitor) completeness(tail []float64) float64 {
	observed := 0
	for _, v := range tail {
		if v != models.NeutralValue {
			observed++
		}
	}
	return float64(observed) / float64(len(tail))
}

// drift is the mean absolute one-step error of the EWMA baseline: for
// each day, how far yesterday's baseline missed today's value.
func (m *ForecastMonitor) drift(tail []float64) float64 {
	if len(tail) < 2 {
		return 0
	}
	baseline := features.EWMASeries(tail, monitorEWMAAlpha)
	sum := 0.0
	for i := 1; i < len(tail); i++ {
		sum += math.Abs(tail[i] - baseline[i-1])
	}
	return sum / float64(len(tail)-1)
}

var _ domsvc.ForecastMonitor = (*ForecastMonitor)(nil)
