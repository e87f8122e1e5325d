package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/internal/domain/repository"
	pkgch "RegionPulse/pkg/clickhouse"
	pkgkafka "RegionPulse/pkg/kafka"
	applogger "RegionPulse/pkg/logger"
)

// DefaultSnapshotTable holds one row per computed forecast result.
const DefaultSnapshotTable = "regionpulse.forecast_snapshots"

// CHSnapshotStore persists computed forecast results to ClickHouse.
type CHSnapshotStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHSnapshotStore(ch *pkgch.Client, table string) *CHSnapshotStore {
	if table == "" {
		table = DefaultSnapshotTable
	}
	return &CHSnapshotStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHSnapshotStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHSnapshotStore) SaveSnapshot(ctx context.Context, snap *models.ForecastSnapshot) error {
	q := fmt.Sprintf("INSERT INTO %s (region, model, horizon, generated_at, payload) VALUES (?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		snap.Region,
		snap.Model,
		snap.Horizon,
		snap.GeneratedAt,
		string(snap.Payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse snapshot insert error",
				applogger.String("table", s.table),
				applogger.String("region", snap.Region),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for a region, or nil when
// none has been stored yet.
func (s *CHSnapshotStore) LatestSnapshot(ctx context.Context, region string) (*models.ForecastSnapshot, error) {
	start := time.Now()
	const qtpl = `
        SELECT region, model, horizon, generated_at, payload
        FROM %s
        WHERE region = ?
        ORDER BY generated_at DESC
        LIMIT 1
    `
	q := fmt.Sprintf(qtpl, s.table)

	var snap models.ForecastSnapshot
	var payload string
	row := s.db.QueryRowContext(ctx, q, region)
	if err := row.Scan(&snap.Region, &snap.Model, &snap.Horizon, &snap.GeneratedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if s.l != nil {
			s.l.Error("clickhouse snapshot query error",
				applogger.String("table", s.table),
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.Payload = []byte(payload)

	if s.l != nil {
		s.l.Info("clickhouse snapshot ok",
			applogger.String("table", s.table),
			applogger.String("region", region),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &snap, nil
}

// KafkaResultPublisher pushes computed result payloads to a results topic
// for downstream consumers. The payload is published as-is, keyed by region.
type KafkaResultPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) repository.ResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

func (p *KafkaResultPublisher) PublishResult(ctx context.Context, snap *models.ForecastSnapshot) error {
	return p.producer.Publish(ctx, p.topic, []byte(snap.Region), snap.Payload)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
