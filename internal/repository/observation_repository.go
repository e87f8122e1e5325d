package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"RegionPulse/internal/domain/models"
	"RegionPulse/internal/domain/repository"
	pkgch "RegionPulse/pkg/clickhouse"
	pkgkafka "RegionPulse/pkg/kafka"
	applogger "RegionPulse/pkg/logger"
)

// DefaultObservationTable is where raw per-source observations land.
const DefaultObservationTable = "regionpulse.observations_raw"

// CHObservationStore implements ObservationStore backed by ClickHouse.
type CHObservationStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHObservationStore creates ClickHouse observation storage.
func NewCHObservationStore(ch *pkgch.Client, table string) *CHObservationStore {
	if table == "" {
		table = DefaultObservationTable
	}
	return &CHObservationStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHObservationStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHObservationStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *CHObservationStore) Store(ctx context.Context, o *models.SourceObservation) error {
	q := fmt.Sprintf("INSERT INTO %s (region, sub_index, source, date, value, fetched) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		o.Region,
		o.SubIndex,
		o.Source,
		o.Date,
		o.Value,
		o.Fetched,
	)
	return err
}

func (s *CHObservationStore) StoreBatch(ctx context.Context, obs []*models.SourceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, o := range obs[start:end] {
			if o == nil || o.Region == "" || o.SubIndex == "" || o.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				o.Region,
				o.SubIndex,
				o.Source,
				o.Date,
				o.Value,
				o.Fetched,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (region, sub_index, source, date, value, fetched) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Query returns raw observations for a region over [from, to], ascending by
// date. The last write for a region/sub_index/source/date wins.
func (s *CHObservationStore) Query(ctx context.Context, region string, from, to time.Time) ([]*models.SourceObservation, error) {
	start := time.Now()
	const qtpl = `
        SELECT region, sub_index, source, date, argMax(value, fetched) AS value, max(fetched) AS fetched
        FROM %s
        WHERE region = ? AND date >= ? AND date <= ?
        GROUP BY region, sub_index, source, date
        ORDER BY date ASC, sub_index ASC, source ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, region, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse observations query error",
				applogger.String("table", s.table),
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query observations: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SourceObservation, 0, 1024)
	for rows.Next() {
		var o models.SourceObservation
		if err := rows.Scan(&o.Region, &o.SubIndex, &o.Source, &o.Date, &o.Value, &o.Fetched); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse observations scan error",
					applogger.String("table", s.table),
					applogger.String("region", region),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse observations rows error",
				applogger.String("table", s.table),
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse observations ok",
			applogger.String("table", s.table),
			applogger.String("region", region),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// ReadRange satisfies RawHistoryReader for the harmonized history provider.
func (s *CHObservationStore) ReadRange(ctx context.Context, region string, from, to time.Time) ([]*models.SourceObservation, error) {
	return s.Query(ctx, region, from, to)
}

func (s *CHObservationStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHObservationStore) Close() error {
	return nil // Managed by pkg
}

// KafkaObservationPublisher implements Publisher for Kafka.
type KafkaObservationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaObservationPublisher creates the observations-topic publisher.
func NewKafkaObservationPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaObservationPublisher{producer: producer, topic: topic}
}

func (p *KafkaObservationPublisher) Publish(ctx context.Context, o *models.SourceObservation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.Region), observationPayload(o))
}

func (p *KafkaObservationPublisher) PublishBatch(ctx context.Context, obs []*models.SourceObservation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(o.Region),
			Value: observationPayload(o),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaObservationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func observationPayload(o *models.SourceObservation) map[string]interface{} {
	return map[string]interface{}{
		"region":    o.Region,
		"sub_index": o.SubIndex,
		"source":    o.Source,
		"date":      o.Date.Format(time.DateOnly),
		"value":     o.Value,
		"fetched":   o.Fetched.Unix(),
	}
}
