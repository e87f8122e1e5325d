package analytics

import (
	"math"
	"sort"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
)

const (
	MethodZScore = "zscore"
	MethodDelta  = "delta"
	MethodEWMA   = "ewma"
)

// ShockDetector runs three independent scans per sub-index and merges
// their hits: a trailing-window z-score, a day-over-day delta, and a
// deviation from an EWMA baseline. Severity scales with how far the
// triggering magnitude exceeds the method's base threshold.
type ShockDetector struct {
	window        int
	zThreshold    float64
	deltaThresh   float64
	ewmaAlpha     float64
	ewmaThreshold float64
	steps         []float64
}

func NewShockDetector(cfg *config.Config) *ShockDetector {
	d := &ShockDetector{
		window:        cfg.Shock.Window,
		zThreshold:    cfg.Shock.ZScore,
		deltaThresh:   cfg.Shock.Delta,
		ewmaAlpha:     cfg.Shock.EWMAAlpha,
		ewmaThreshold: cfg.Shock.EWMAThreshold,
		steps:         cfg.SeveritySteps(),
	}
	if d.window <= 1 {
		d.window = 14
	}
	if d.zThreshold <= 0 {
		d.zThreshold = 2.5
	}
	if d.deltaThresh <= 0 {
		d.deltaThresh = 0.15
	}
	if d.ewmaAlpha <= 0 || d.ewmaAlpha >= 1 {
		d.ewmaAlpha = 0.3
	}
	if d.ewmaThreshold <= 0 {
		d.ewmaThreshold = 0.12
	}
	return d
}

func (d *ShockDetector) Detect(indices map[string]models.SubIndexSeries) []models.ShockEvent {
	events := []models.ShockEvent{}
	for _, name := range sortedIndexNames(indices) {
		s := indices[name]
		// day offset -> strongest event for that day
		merged := make(map[int]models.ShockEvent)
		d.scanZScore(s, merged)
		d.scanDelta(s, merged)
		d.scanEWMA(s, merged)
		for _, ev := range merged {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Severity.Rank() != events[j].Severity.Rank() {
			return events[i].Severity.Rank() > events[j].Severity.Rank()
		}
		if events[i].Index != events[j].Index {
			return events[i].Index < events[j].Index
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

func (d *ShockDetector) scanZScore(s models.SubIndexSeries, merged map[int]models.ShockEvent) {
	for i := d.window; i < len(s.Values); i++ {
		trailing := s.Values[i-d.window : i]
		mean := features.Mean(trailing)
		std := features.StdDev(trailing)
		if std < 1e-9 {
			// flat window: let the delta scan judge any jump
			continue
		}
		z := (s.Values[i] - mean) / std
		if sev, ok := d.severityFor(math.Abs(z), d.zThreshold); ok {
			d.keep(merged, i, models.ShockEvent{
				Index:    s.Name,
				Severity: sev,
				Delta:    s.Values[i] - mean,
				Value:    s.Values[i],
				Date:     s.Dates[i],
				Method:   MethodZScore,
			})
		}
	}
}

func (d *ShockDetector) scanDelta(s models.SubIndexSeries, merged map[int]models.ShockEvent) {
	for i := 1; i < len(s.Values); i++ {
		delta := s.Values[i] - s.Values[i-1]
		if sev, ok := d.severityFor(math.Abs(delta), d.deltaThresh); ok {
			d.keep(merged, i, models.ShockEvent{
				Index:    s.Name,
				Severity: sev,
				Delta:    delta,
				Value:    s.Values[i],
				Date:     s.Dates[i],
				Method:   MethodDelta,
			})
		}
	}
}

func (d *ShockDetector) scanEWMA(s models.SubIndexSeries, merged map[int]models.ShockEvent) {
	if len(s.Values) < 2 {
		return
	}
	baseline := features.EWMASeries(s.Values, d.ewmaAlpha)
	for i := 1; i < len(s.Values); i++ {
		dev := s.Values[i] - baseline[i-1]
		if sev, ok := d.severityFor(math.Abs(dev), d.ewmaThreshold); ok {
			d.keep(merged, i, models.ShockEvent{
				Index:    s.Name,
				Severity: sev,
				Delta:    dev,
				Value:    s.Values[i],
				Date:     s.Dates[i],
				Method:   MethodEWMA,
			})
		}
	}
}

// severityFor grades a magnitude against the ladder of multiples of the
// method's base threshold. Below the first step nothing fires.
func (d *ShockDetector) severityFor(magnitude, base float64) (models.ShockSeverity, bool) {
	ratio := magnitude / base
	switch {
	case ratio >= d.steps[3]:
		return models.SeveritySevere, true
	case ratio >= d.steps[2]:
		return models.SeverityHigh, true
	case ratio >= d.steps[1]:
		return models.SeverityModerate, true
	case ratio > d.steps[0]:
		return models.SeverityMild, true
	default:
		return "", false
	}
}

// keep records the event unless the day already holds a stronger one.
func (d *ShockDetector) keep(merged map[int]models.ShockEvent, day int, ev models.ShockEvent) {
	if held, ok := merged[day]; ok && held.Severity.Rank() >= ev.Severity.Rank() {
		return
	}
	merged[day] = ev
}

var _ domsvc.ShockDetector = (*ShockDetector)(nil)
