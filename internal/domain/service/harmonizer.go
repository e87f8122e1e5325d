package service

import (
	"time"

	"RegionPulse/internal/domain/models"
)

// Harmonizer aligns raw per-source observations onto the daily calendar
// over [from, to], scales values into [0,1], fills gaps, and substitutes
// the neutral value for missing sources.
type Harmonizer interface {
	Harmonize(region string, from, to time.Time, obs []*models.SourceObservation) []models.DailyRecord
}
