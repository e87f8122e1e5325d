package usecase

import (
	"sort"
	"time"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/pkg/config"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/util"
)

type sourceBounds struct {
	min float64
	max float64
}

// Harmonizer turns raw per-source observations into the gap-free daily
// records the analytics pipeline consumes. Per day and sub-index it
// averages the scaled readings of every reporting source, forward-fills
// interior gaps, and substitutes NeutralValue where a sub-index has not
// reported yet.
type Harmonizer struct {
	subIndices []string
	bounds     map[string]sourceBounds
	logger     *applogger.Logger
}

var _ domsvc.Harmonizer = (*Harmonizer)(nil)

func NewHarmonizer(cfg *config.Config, logger *applogger.Logger) *Harmonizer {
	names := make([]string, 0, len(cfg.IndexWeights()))
	for name := range cfg.IndexWeights() {
		names = append(names, name)
	}
	sort.Strings(names)

	bounds := make(map[string]sourceBounds, len(cfg.Sources))
	for _, s := range cfg.Sources {
		bounds[s.Name] = sourceBounds{min: s.Min, max: s.Max}
	}

	return &Harmonizer{subIndices: names, bounds: bounds, logger: logger}
}

// Harmonize aligns obs onto the calendar [from, to]. The result has one
// record per day, ascending, with a value for every configured sub-index.
func (h *Harmonizer) Harmonize(region string, from, to time.Time, obs []*models.SourceObservation) []models.DailyRecord {
	from, to = util.Day(from), util.Day(to)
	if to.Before(from) {
		return nil
	}

	type acc struct {
		sum float64
		n   int
	}
	// day offset -> sub-index -> accumulated scaled readings
	days := util.DaysBetween(from, to) + 1
	byDay := make([]map[string]*acc, days)

	dropped := 0
	for _, o := range obs {
		if o == nil {
			continue
		}
		day := util.Day(o.Date)
		idx := util.DaysBetween(from, day)
		if idx < 0 || idx >= days {
			dropped++
			continue
		}
		if byDay[idx] == nil {
			byDay[idx] = make(map[string]*acc)
		}
		a := byDay[idx][o.SubIndex]
		if a == nil {
			a = &acc{}
			byDay[idx][o.SubIndex] = a
		}
		a.sum += h.scale(o.Source, o.Value)
		a.n++
	}
	if dropped > 0 && h.logger != nil {
		h.logger.Debug("observations outside window dropped",
			applogger.String("region", region),
			applogger.Int("dropped", dropped),
		)
	}

	records := make([]models.DailyRecord, days)
	lastSeen := make(map[string]float64, len(h.subIndices))
	for i := 0; i < days; i++ {
		values := make(map[string]float64, len(h.subIndices))
		for _, name := range h.subIndices {
			if byDay[i] != nil {
				if a := byDay[i][name]; a != nil && a.n > 0 {
					v := a.sum / float64(a.n)
					values[name] = v
					lastSeen[name] = v
					continue
				}
			}
			if v, ok := lastSeen[name]; ok {
				values[name] = v
				continue
			}
			values[name] = models.NeutralValue
		}
		records[i] = models.DailyRecord{
			Date:   from.AddDate(0, 0, i),
			Values: values,
		}
	}
	return records
}

// scale maps a raw source reading into [0,1] using the configured bounds,
// clamping outliers. Sources without bounds are assumed unit-scaled.
func (h *Harmonizer) scale(source string, v float64) float64 {
	if b, ok := h.bounds[source]; ok && b.max > b.min {
		v = (v - b.min) / (b.max - b.min)
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
