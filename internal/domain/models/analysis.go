package models

import (
	"encoding/json"
	"time"
)

// ShockSeverity orders anomalous jumps from mild to severe.
type ShockSeverity string

const (
	SeverityMild     ShockSeverity = "mild"
	SeverityModerate ShockSeverity = "moderate"
	SeverityHigh     ShockSeverity = "high"
	SeveritySevere   ShockSeverity = "severe"
)

var severityRank = map[ShockSeverity]int{
	SeverityMild:     1,
	SeverityModerate: 2,
	SeverityHigh:     3,
	SeveritySevere:   4,
}

// Rank returns the ordinal position of the severity; higher is worse.
// Unknown severities rank below mild.
func (s ShockSeverity) Rank() int { return severityRank[s] }

// ShockEvent is a statistically significant jump in one sub-index on one
// day. Created fresh per analysis call, never persisted by the analytics
// core.
type ShockEvent struct {
	Index    string        `json:"index"`
	Severity ShockSeverity `json:"severity"`
	Delta    float64       `json:"delta"`
	Value    float64       `json:"value"`
	Date     time.Time     `json:"-"`
	Method   string        `json:"method"`
}

func (e ShockEvent) MarshalJSON() ([]byte, error) {
	type alias struct {
		Index     string        `json:"index"`
		Severity  ShockSeverity `json:"severity"`
		Delta     float64       `json:"delta"`
		Value     float64       `json:"value"`
		Timestamp string        `json:"timestamp"`
		Method    string        `json:"method"`
	}
	return json.Marshal(alias{
		Index:     e.Index,
		Severity:  e.Severity,
		Delta:     e.Delta,
		Value:     e.Value,
		Timestamp: e.Date.Format(time.DateOnly),
		Method:    e.Method,
	})
}

// SignalPair is a correlated pair of sub-indices. Serializes as the
// [indexA, indexB, correlation] triple the dashboard consumes.
type SignalPair struct {
	IndexA      string
	IndexB      string
	Correlation float64
}

func (p SignalPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.IndexA, p.IndexB, p.Correlation})
}

// Pattern is a matched entry from the named convergence catalog.
type Pattern struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Indices     []string `json:"indices"`
}

// ConvergenceResult reports how strongly sub-indices are moving together.
// Score is bounded to [0,100] with 50 meaning no net signal.
type ConvergenceResult struct {
	Score       float64      `json:"score"`
	Reinforcing []SignalPair `json:"reinforcing_signals"`
	Conflicting []SignalPair `json:"conflicting_signals"`
	Patterns    []Pattern    `json:"patterns"`
}

// NeutralConvergence is the substitute when the analysis window is too
// short to correlate.
func NeutralConvergence() *ConvergenceResult {
	return &ConvergenceResult{
		Score:       50,
		Reinforcing: []SignalPair{},
		Conflicting: []SignalPair{},
		Patterns:    []Pattern{},
	}
}

// Risk tier labels, ordered from calm to critical.
const (
	TierStable    = "stable"
	TierWatchlist = "watchlist"
	TierElevated  = "elevated"
	TierHigh      = "high"
	TierCritical  = "critical"
)

// RiskTier is the discrete classification plus the additive score
// breakdown that produced it.
type RiskTier struct {
	Tier           string   `json:"tier"`
	RiskScore      float64  `json:"risk_score"`
	BaseRisk       float64  `json:"base_risk"`
	ShockAdj       float64  `json:"shock_adjustment"`
	ConvergenceAdj float64  `json:"convergence_adjustment"`
	TrendAdj       float64  `json:"trend_adjustment"`
	Factors        []string `json:"contributing_factors"`
}

// ConfidenceDrift carries the forecast monitor's per-index health scores.
// Confidence lies in [0,1]; drift is non-negative.
type ConfidenceDrift struct {
	Confidence map[string]float64
	Drift      map[string]float64
}

// CorrelationRelationship is one entry of the full pairwise table.
type CorrelationRelationship struct {
	Index1      string  `json:"index1"`
	Index2      string  `json:"index2"`
	Correlation float64 `json:"correlation"`
	Strength    string  `json:"strength"`
	Direction   string  `json:"direction"`
}

// Strength buckets and directions for correlation relationships.
const (
	StrengthWeak     = "weak"
	StrengthModerate = "moderate"
	StrengthStrong   = "strong"

	DirectionPositive = "positive"
	DirectionNegative = "negative"
)

// CorrelationSet is the full relationship table for the analysis window.
type CorrelationSet struct {
	Relationships []CorrelationRelationship `json:"relationships"`
	Indices       []string                  `json:"indices_analyzed"`
}

// EmptyCorrelations is the substitute when the window cannot support a
// pairwise table.
func EmptyCorrelations() *CorrelationSet {
	return &CorrelationSet{
		Relationships: []CorrelationRelationship{},
		Indices:       []string{},
	}
}
