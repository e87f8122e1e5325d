package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	domrepo "RegionPulse/internal/domain/repository"
	pkgkafka "RegionPulse/pkg/kafka"
	"RegionPulse/pkg/util"
)

// KafkaObservationsHandler consumes the observations topic and sinks rows
// into storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.ObservationStore
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.ObservationStore, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {region, sub_index, source, date, value, fetched}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Region   string  `json:"region"`
		SubIndex string  `json:"sub_index"`
		Source   string  `json:"source"`
		Date     string  `json:"date"`
		Value    float64 `json:"value"`
		Fetched  int64   `json:"fetched"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	day, ok := util.ParseTime(m.Date)
	if !ok {
		h.metrics.RecordError("consumer_bad_date")
		return fmt.Errorf("bad observation date: %q", m.Date)
	}
	fetched := time.Unix(m.Fetched, 0).UTC()
	if m.Fetched <= 0 {
		fetched = time.Now().UTC()
	}
	// E2E latency from fetch time to sink (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(fetched).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.SourceObservation{
		Region:   m.Region,
		SubIndex: m.SubIndex,
		Source:   m.Source,
		Date:     util.Day(day),
		Value:    m.Value,
		Fetched:  fetched,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation("clickhouse", m.Source)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
