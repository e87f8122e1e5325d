package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"RegionPulse/internal/domain/models"
	drepo "RegionPulse/internal/domain/repository"
	pkgcache "RegionPulse/pkg/cache"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/queue"
)

// RefreshMessageType routes refresh messages to the RefreshJob.
const RefreshMessageType = "forecast.refresh"

// refreshLockTTL bounds how long a crashed worker can keep a region
// locked against other refresh workers.
const refreshLockTTL = 5 * time.Minute

// RefreshPayload is one queued recompute request.
type RefreshPayload struct {
	Region   string `json:"region"`
	DaysBack int    `json:"days_back"`
	Horizon  int    `json:"horizon"`
}

// HistoryInvalidator drops cached history windows before a recompute.
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, region string)
}

// RefreshJob recomputes one region end to end: fresh history, full
// analysis, snapshot to ClickHouse, result to Kafka, broadcast to live
// subscribers. Queue retries handle transient failures.
type RefreshJob struct {
	pipeline    *ForecastPipeline
	snapshots   drepo.SnapshotStore
	results     drepo.ResultPublisher
	broadcaster drepo.Broadcaster
	invalidator HistoryInvalidator
	locks       pkgcache.Service
	metrics     drepo.Metrics
	logger      *applogger.Logger
}

var _ queue.Job = (*RefreshJob)(nil)

func NewRefreshJob(
	pipeline *ForecastPipeline,
	snapshots drepo.SnapshotStore,
	results drepo.ResultPublisher,
	broadcaster drepo.Broadcaster,
	invalidator HistoryInvalidator,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *RefreshJob {
	return &RefreshJob{
		pipeline:    pipeline,
		snapshots:   snapshots,
		results:     results,
		broadcaster: broadcaster,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
	}
}

// SetLocks enables the cross-worker region lock. Without it concurrent
// workers may recompute the same region, which is wasteful but safe.
func (j *RefreshJob) SetLocks(c pkgcache.Service) { j.locks = c }

func (j *RefreshJob) Name() string { return "forecast-refresh" }

func (j *RefreshJob) Type() string { return RefreshMessageType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	if p.Region == "" {
		return fmt.Errorf("refresh payload: region empty")
	}
	start := time.Now()

	if j.locks != nil {
		lockKey := "refresh:lock:" + p.Region
		held, err := j.locks.TryLock(ctx, lockKey, refreshLockTTL)
		if err != nil {
			// lock backend trouble: recompute anyway
			j.logger.Warn("refresh lock unavailable",
				applogger.String("region", p.Region),
				applogger.Error(err),
			)
		} else if !held {
			j.logger.Debug("refresh already in flight, skipping",
				applogger.String("region", p.Region),
			)
			return nil
		} else {
			defer func() {
				if err := j.locks.Unlock(context.WithoutCancel(ctx), lockKey); err != nil {
					j.logger.Warn("refresh unlock failed",
						applogger.String("region", p.Region),
						applogger.Error(err),
					)
				}
			}()
		}
	}

	if j.invalidator != nil {
		j.invalidator.Invalidate(ctx, p.Region)
	}

	result, err := j.pipeline.BuildForecast(ctx, p.Region, p.DaysBack, p.Horizon)
	if err != nil {
		j.metrics.RecordError("refresh")
		return fmt.Errorf("refresh %s: %w", p.Region, err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result %s: %w", p.Region, err)
	}
	snap := &models.ForecastSnapshot{
		Region:      result.Region,
		Model:       result.Model,
		Horizon:     len(result.Forecast),
		GeneratedAt: result.GeneratedAt,
		Payload:     body,
	}

	if err := j.snapshots.SaveSnapshot(ctx, snap); err != nil {
		j.metrics.RecordError("snapshot_save")
		return fmt.Errorf("save snapshot %s: %w", p.Region, err)
	}
	if j.results != nil {
		if err := j.results.PublishResult(ctx, snap); err != nil {
			j.metrics.RecordError("result_publish")
			return fmt.Errorf("publish result %s: %w", p.Region, err)
		}
	}
	if j.broadcaster != nil {
		j.broadcaster.BroadcastResult(p.Region, body)
	}

	j.metrics.RecordLatency("refresh", time.Since(start).Seconds())
	j.logger.Info("region refreshed",
		applogger.String("region", p.Region),
		applogger.String("model", result.Model),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return nil
}

// RefreshScheduler enqueues one refresh per region per interval. The
// first round fires immediately so snapshots exist soon after boot.
type RefreshScheduler struct {
	q        queue.QueueService
	regions  []string
	interval time.Duration
	daysBack int
	horizon  int
	logger   *applogger.Logger
	cancel   context.CancelFunc
}

func NewRefreshScheduler(q queue.QueueService, regions []string, interval time.Duration, daysBack, horizon int, logger *applogger.Logger) *RefreshScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RefreshScheduler{
		q:        q,
		regions:  regions,
		interval: interval,
		daysBack: daysBack,
		horizon:  horizon,
		logger:   logger,
	}
}

func (s *RefreshScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
}

func (s *RefreshScheduler) run(ctx context.Context) {
	s.enqueueAll(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll(ctx)
		}
	}
}

func (s *RefreshScheduler) enqueueAll(ctx context.Context) {
	for _, region := range s.regions {
		err := s.q.PublishMessage(ctx, RefreshMessageType, RefreshPayload{
			Region:   region,
			DaysBack: s.daysBack,
			Horizon:  s.horizon,
		})
		if err != nil {
			s.logger.Warn("refresh enqueue failed",
				applogger.String("region", region),
				applogger.Error(err),
			)
		}
	}
}

func (s *RefreshScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}
