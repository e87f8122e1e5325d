package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
)

// Composer folds harmonized records into the weighted behavior index.
// Sub-index values arrive already normalized to [0,1]; anything outside
// that range is an upstream contract violation and is not corrected here.
type Composer struct {
	weights map[string]float64
	names   []string // sorted, for deterministic folds
}

// NewComposer validates the weight table and builds the composer. A sum
// off 1.0 beyond tolerance is a startup failure, mirroring config
// validation for callers that construct with hand-built weights.
func NewComposer(cfg *config.Config) (*Composer, error) {
	weights := cfg.IndexWeights()
	sum := 0.0
	names := make([]string, 0, len(weights))
	for name, w := range weights {
		sum += w
		names = append(names, name)
	}
	if math.Abs(sum-1.0) > config.WeightTolerance {
		return nil, &config.ConfigurationError{
			Field:  "index.weights",
			Reason: fmt.Sprintf("must sum to 1.0, got %v", sum),
		}
	}
	sort.Strings(names)
	return &Composer{weights: weights, names: names}, nil
}

// Compose computes composite_d = sum(w_i * v_i,d) per day, with
// mobility_activity contributing inverted (high mobility reads as low
// stress). The result stays in [0,1] because values do and weights sum
// to one; Clamp01 only absorbs float error.
func (c *Composer) Compose(history []models.DailyRecord) (*models.CompositeIndexSeries, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("compose: empty history")
	}
	out := &models.CompositeIndexSeries{
		Dates:  make([]time.Time, 0, len(history)),
		Values: make([]float64, 0, len(history)),
	}
	for _, rec := range history {
		day := 0.0
		for _, name := range c.names {
			v := rec.Values[name]
			if name == models.MobilityActivity {
				v = 1 - v
			}
			day += c.weights[name] * v
		}
		out.Dates = append(out.Dates, rec.Date)
		out.Values = append(out.Values, features.Clamp01(day))
	}
	return out, nil
}

var _ domsvc.IndexComposer = (*Composer)(nil)
