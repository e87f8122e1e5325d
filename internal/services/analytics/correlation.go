package analytics

import (
	"math"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
)

// CorrelationEngine emits the full pairwise table for the analysis
// window, flagged or not, so the dashboard can render the whole matrix.
type CorrelationEngine struct {
	window   int
	weakMax  float64
	strongAt float64
}

func NewCorrelationEngine(cfg *config.Config) *CorrelationEngine {
	e := &CorrelationEngine{
		window:   cfg.Convergence.Window,
		weakMax:  0.3,
		strongAt: 0.7,
	}
	if e.window <= 0 {
		e.window = 14
	}
	return e
}

func (e *CorrelationEngine) Correlate(indices map[string]models.SubIndexSeries) (*models.CorrelationSet, error) {
	names := sortedIndexNames(indices)
	if len(names) < 2 {
		return nil, models.ErrAnalysisSkipped
	}
	shortest := math.MaxInt
	for _, name := range names {
		if n := indices[name].Len(); n < shortest {
			shortest = n
		}
	}
	if shortest < minCorrelationWindow {
		return nil, models.ErrAnalysisSkipped
	}

	rels := make([]models.CorrelationRelationship, 0, len(names)*(len(names)-1)/2)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			r, ok := features.Pearson(indices[names[i]].Tail(e.window), indices[names[j]].Tail(e.window))
			if !ok {
				// undefined (flat side): report as uncorrelated
				r = 0
			}
			rels = append(rels, models.CorrelationRelationship{
				Index1:      names[i],
				Index2:      names[j],
				Correlation: features.Round(r, 3),
				Strength:    e.strengthFor(r),
				Direction:   directionFor(r),
			})
		}
	}
	return &models.CorrelationSet{Relationships: rels, Indices: names}, nil
}

func (e *CorrelationEngine) strengthFor(r float64) string {
	abs := math.Abs(r)
	switch {
	case abs > e.strongAt:
		return models.StrengthStrong
	case abs >= e.weakMax:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

func directionFor(r float64) string {
	if r < 0 {
		return models.DirectionNegative
	}
	return models.DirectionPositive
}

var _ domsvc.CorrelationAnalyzer = (*CorrelationEngine)(nil)
