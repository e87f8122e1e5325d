package repository

import (
	"context"
	"time"

	"RegionPulse/internal/domain/models"
)

// HistoryProvider supplies harmonized per-region daily records for the
// analytics pipeline. Implementations own alignment, gap filling, and
// caching; callers receive a ready-to-analyze window.
type HistoryProvider interface {
	History(ctx context.Context, region string, daysBack int) ([]models.DailyRecord, error)
}

// RawHistoryReader gives the harmonizer access to stored observations.
type RawHistoryReader interface {
	ReadRange(ctx context.Context, region string, from, to time.Time) ([]*models.SourceObservation, error)
}
