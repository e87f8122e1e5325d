package analytics

import (
	"fmt"

	"RegionPulse/internal/domain/models"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/services/features"
	"RegionPulse/pkg/config"
)

// Additive shock weights per severity, applied to shocks inside the
// recency window and capped.
const (
	shockWeightSevere   = 8.0
	shockWeightHigh     = 5.0
	shockWeightModerate = 2.0
	shockWeightMild     = 0.5
	shockAdjCap         = 20.0

	convergenceAdjSpan = 15.0
	trendAdjCap        = 15.0

	elevatedComposite = 0.65
)

// RiskClassifier folds the current composite level, recent shocks,
// convergence and trend into one score and a discrete tier. The four
// boundaries partition the real line, so any finite score lands in
// exactly one tier.
type RiskClassifier struct {
	boundaries []float64
	trendScale float64
	trendDays  int
	recentDays int
}

func NewRiskClassifier(cfg *config.Config) *RiskClassifier {
	c := &RiskClassifier{
		boundaries: cfg.TierBoundaries(),
		trendScale: cfg.Risk.TrendScale,
		trendDays:  cfg.Risk.TrendDays,
		recentDays: cfg.Shock.RecentDays,
	}
	if c.trendScale <= 0 {
		c.trendScale = 200
	}
	if c.trendDays <= 1 {
		c.trendDays = 7
	}
	if c.recentDays <= 0 {
		c.recentDays = 7
	}
	return c
}

func (c *RiskClassifier) Classify(in domsvc.RiskInput) *models.RiskTier {
	latest, ok := in.Series.Latest()
	if !ok {
		latest = 0
	}

	base := latest * 50

	shockAdj, shockCount, maxSev := c.shockAdjustment(in)

	convAdj := 0.0
	if in.Convergence != nil {
		convAdj = (in.Convergence.Score - 50) / 50 * convergenceAdjSpan
	}

	slope := features.Slope(tailValues(in.Series, c.trendDays))
	trendAdj := features.Clamp(slope*c.trendScale, -trendAdjCap, trendAdjCap)

	score := features.Round(features.Clamp(base+shockAdj+convAdj+trendAdj, 0, 100), 2)

	factors := []string{}
	if latest >= elevatedComposite {
		factors = append(factors, "elevated behavior index")
	}
	if shockAdj > 0 {
		factors = append(factors, fmt.Sprintf("%d recent shocks (max severity %s)", shockCount, maxSev))
	}
	if convAdj > 0 {
		factors = append(factors, "reinforcing signal convergence")
	} else if convAdj < 0 {
		factors = append(factors, "conflicting signal divergence")
	}
	if trendAdj > 0 {
		factors = append(factors, "rising index trend")
	} else if trendAdj < 0 {
		factors = append(factors, "falling index trend")
	}

	return &models.RiskTier{
		Tier:           c.tierFor(score),
		RiskScore:      score,
		BaseRisk:       features.Round(base, 2),
		ShockAdj:       features.Round(shockAdj, 2),
		ConvergenceAdj: features.Round(convAdj, 2),
		TrendAdj:       features.Round(trendAdj, 2),
		Factors:        factors,
	}
}

func (c *RiskClassifier) shockAdjustment(in domsvc.RiskInput) (adj float64, count int, maxSev models.ShockSeverity) {
	lastDate, ok := in.Series.LastDate()
	if !ok {
		return 0, 0, ""
	}
	cutoff := lastDate.AddDate(0, 0, -c.recentDays)
	for _, ev := range in.Shocks {
		if ev.Date.Before(cutoff) {
			continue
		}
		count++
		if ev.Severity.Rank() > maxSev.Rank() {
			maxSev = ev.Severity
		}
		switch ev.Severity {
		case models.SeveritySevere:
			adj += shockWeightSevere
		case models.SeverityHigh:
			adj += shockWeightHigh
		case models.SeverityModerate:
			adj += shockWeightModerate
		case models.SeverityMild:
			adj += shockWeightMild
		}
	}
	if adj > shockAdjCap {
		adj = shockAdjCap
	}
	return adj, count, maxSev
}

// tierFor is total over the reals: below the first boundary is stable,
// at or above the last is critical.
func (c *RiskClassifier) tierFor(score float64) string {
	tiers := []string{models.TierStable, models.TierWatchlist, models.TierElevated, models.TierHigh}
	for i, b := range c.boundaries {
		if score < b {
			return tiers[i]
		}
	}
	return models.TierCritical
}

func tailValues(s *models.CompositeIndexSeries, n int) []float64 {
	if s == nil || len(s.Values) == 0 {
		return nil
	}
	if n >= len(s.Values) {
		return s.Values
	}
	return s.Values[len(s.Values)-n:]
}

var _ domsvc.RiskClassifier = (*RiskClassifier)(nil)
