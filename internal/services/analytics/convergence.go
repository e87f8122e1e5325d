package analytics

import (
	"math"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
)

// minCorrelationWindow is the shortest window Pearson results are
// trusted on; below it the analysis is skipped.
const minCorrelationWindow = 3

// PatternRule is one entry of the named catalog: the pattern matches
// when every listed sub-index sits at or above the elevated level on the
// latest day.
type PatternRule struct {
	Name        string
	Description string
	Indices     []string
}

// DefaultPatterns is the shipped catalog. Order is presentation order.
func DefaultPatterns() []PatternRule {
	return []PatternRule{
		{
			Name:        "unrest risk",
			Description: "political, misinformation and social cohesion stress elevated together",
			Indices:     []string{models.PoliticalStress, models.MisinformationStress, models.SocialCohesionStress},
		},
		{
			Name:        "economic spiral",
			Description: "economic stress spilling into social cohesion",
			Indices:     []string{models.EconomicStress, models.SocialCohesionStress},
		},
		{
			Name:        "systemic overload",
			Description: "economic, environmental and political stress elevated together",
			Indices:     []string{models.EconomicStress, models.EnvironmentalStress, models.PoliticalStress},
		},
	}
}

// ConvergenceEngine correlates every sub-index pair over the recent
// window, splits them into reinforcing and conflicting signals, and
// matches the pattern catalog against the latest day.
type ConvergenceEngine struct {
	window    int
	threshold float64
	elevated  float64
	patterns  []PatternRule
}

func NewConvergenceEngine(cfg *config.Config) *ConvergenceEngine {
	e := &ConvergenceEngine{
		window:    cfg.Convergence.Window,
		threshold: cfg.Convergence.Threshold,
		elevated:  cfg.Convergence.ElevatedLevel,
		patterns:  DefaultPatterns(),
	}
	if e.window <= 0 {
		e.window = 14
	}
	if e.threshold <= 0 || e.threshold > 1 {
		e.threshold = 0.7
	}
	if e.elevated <= 0 || e.elevated >= 1 {
		e.elevated = 0.65
	}
	return e
}

func (e *ConvergenceEngine) Analyze(indices map[string]models.SubIndexSeries) (*models.ConvergenceResult, error) {
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

	reinforcing := []models.SignalPair{}
	conflicting := []models.SignalPair{}
	net := 0.0
	pairs := 0
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			pairs++
			r, ok := features.Pearson(indices[names[i]].Tail(e.window), indices[names[j]].Tail(e.window))
			if !ok {
				continue
			}
			pair := models.SignalPair{IndexA: names[i], IndexB: names[j], Correlation: features.Round(r, 3)}
			switch {
			case r > e.threshold:
				reinforcing = append(reinforcing, pair)
				net += math.Abs(r)
			case r < -e.threshold:
				conflicting = append(conflicting, pair)
				net -= math.Abs(r)
			}
		}
	}

	// centered at 50, monotonic in net strength, clamped to [0,100]
	score := features.Round(features.Clamp(50+50*net/float64(pairs), 0, 100), 2)

	return &models.ConvergenceResult{
		Score:       score,
		Reinforcing: reinforcing,
		Conflicting: conflicting,
		Patterns:    e.matchPatterns(indices),
	}, nil
}

func (e *ConvergenceEngine) matchPatterns(indices map[string]models.SubIndexSeries) []models.Pattern {
	matched := []models.Pattern{}
	for _, rule := range e.patterns {
		all := true
		for _, name := range rule.Indices {
			s, ok := indices[name]
			if !ok || s.Len() == 0 || s.Values[s.Len()-1] < e.elevated {
				all = false
				break
			}
		}
		if all {
			matched = append(matched, models.Pattern{
				Name:        rule.Name,
				Description: rule.Description,
				Indices:     rule.Indices,
			})
		}
	}
	return matched
}

var _ domsvc.ConvergenceAnalyzer = (*ConvergenceEngine)(nil)
