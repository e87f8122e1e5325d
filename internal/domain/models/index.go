package models

import "time"

// Canonical sub-index names. The harmonizer emits one value per name per
// day; weights in config are keyed by these.
const (
	EconomicStress       = "economic_stress"
	EnvironmentalStress  = "environmental_stress"
	MobilityActivity     = "mobility_activity"
	PoliticalStress      = "political_stress"
	MisinformationStress = "misinformation_stress"
	SocialCohesionStress = "social_cohesion_stress"
)

// NeutralValue is the harmonizer's substitute for missing or failed
// sources. The forecast monitor treats days at exactly this value as
// imputed when scoring completeness.
const NeutralValue = 0.5

// DailyRecord is one harmonized day for a region: a calendar date plus a
// normalized [0,1] value per sub-index. Dates ascend, are unique, and have
// no gaps; the harmonizer enforces all three.
type DailyRecord struct {
	Date   time.Time
	Values map[string]float64
}

// SubIndexSeries is one sub-index's ordered values across a region's
// history. Unit of analysis for shock detection, drift, and correlation.
type SubIndexSeries struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

func (s SubIndexSeries) Len() int { return len(s.Values) }

// Tail returns the last n values, or all of them when the series is
// shorter than n.
func (s SubIndexSeries) Tail(n int) []float64 {
	if n >= len(s.Values) {
		return s.Values
	}
	return s.Values[len(s.Values)-n:]
}

// CompositeIndexSeries is the weighted behavior index per day, derived
// from DailyRecords by the composer. Every value lies in [0,1].
type CompositeIndexSeries struct {
	Dates  []time.Time
	Values []float64
}

func (s *CompositeIndexSeries) Len() int { return len(s.Values) }

// Latest returns the most recent composite value.
func (s *CompositeIndexSeries) Latest() (float64, bool) {
	if len(s.Values) == 0 {
		return 0, false
	}
	return s.Values[len(s.Values)-1], true
}

// LastDate returns the date of the most recent composite value.
func (s *CompositeIndexSeries) LastDate() (time.Time, bool) {
	if len(s.Dates) == 0 {
		return time.Time{}, false
	}
	return s.Dates[len(s.Dates)-1], true
}
