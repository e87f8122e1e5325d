package repository

import (
	"context"
	"time"

	"RegionPulse/internal/domain/models"
)

type SourceConnector interface {
	Name() string
	SubIndex() string
	FetchDaily(ctx context.Context, region string, from, to time.Time) ([]models.SourceObservation, error)
}

type Publisher interface {
	Publish(ctx context.Context, o *models.SourceObservation) error
	PublishBatch(ctx context.Context, obs []*models.SourceObservation) error
	Close() error
}

type ObservationStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, o *models.SourceObservation) error
	StoreBatch(ctx context.Context, obs []*models.SourceObservation) error
	Query(ctx context.Context, region string, from, to time.Time) ([]*models.SourceObservation, error)
	Health(ctx context.Context) error // ping
	Close() error
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *models.ForecastSnapshot) error
	LatestSnapshot(ctx context.Context, region string) (*models.ForecastSnapshot, error)
}

type ResultPublisher interface {
	PublishResult(ctx context.Context, snap *models.ForecastSnapshot) error
	Close() error
}

// Broadcaster pushes freshly computed results to live subscribers.
type Broadcaster interface {
	BroadcastResult(region string, payload []byte)
}

type Metrics interface {
	RecordObservation(backend, source string)
	RecordError(kind string)
	RecordBehaviorIndex(region string, value float64)
	RecordLatency(op string, seconds float64)
}
