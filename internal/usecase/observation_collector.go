package usecase

import (
	"context"
	"time"

	"RegionPulse/internal/domain/models"
	drepo "RegionPulse/internal/domain/repository"
	mid "RegionPulse/internal/middleware"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/util"
)

// ObservationCollector sweeps every configured source for every region on
// a schedule and feeds the results through the pipeline.
type ObservationCollector struct {
	connectors []drepo.SourceConnector
	regions    []string
	proc       *ObservationProcessor
	metrics    drepo.Metrics
	pipe       *mid.ObservationPipeline
	logger     *applogger.Logger
	interval   time.Duration
	daysBack   int
	cancel     context.CancelFunc
}

// NewObservationCollector creates a new ObservationCollector instance.
func NewObservationCollector(
	connectors []drepo.SourceConnector,
	regions []string,
	proc *ObservationProcessor,
	metrics drepo.Metrics,
	pipe *mid.ObservationPipeline,
	logger *applogger.Logger,
	interval time.Duration,
	daysBack int,
) *ObservationCollector {
	if interval <= 0 {
		interval = time.Hour
	}
	if daysBack <= 0 {
		daysBack = 7
	}
	return &ObservationCollector{
		connectors: connectors,
		regions:    regions,
		proc:       proc,
		metrics:    metrics,
		pipe:       pipe,
		logger:     logger,
		interval:   interval,
		daysBack:   daysBack,
	}
}

// Start runs the sweep loop until the context is cancelled. The first
// sweep happens immediately.
func (c *ObservationCollector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	go c.run(ctx)
	return nil
}

func (c *ObservationCollector) run(ctx context.Context) {
	c.CollectOnce(ctx)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce(ctx)
		}
	}
}

// CollectOnce sweeps every region across every connector. Individual
// source failures are logged and skipped; the sweep continues.
func (c *ObservationCollector) CollectOnce(ctx context.Context) {
	from, to := util.DayRange(time.Now(), c.daysBack)
	for _, region := range c.regions {
		for _, conn := range c.connectors {
			obs, err := conn.FetchDaily(ctx, region, from, to)
			if err != nil {
				c.metrics.RecordError("collect")
				if c.logger != nil {
					c.logger.Warn("source fetch failed",
						applogger.String("source", conn.Name()),
						applogger.String("region", region),
						applogger.Error(err),
					)
				}
				continue
			}
			c.dispatch(ctx, obs)
		}
	}
}

func (c *ObservationCollector) dispatch(ctx context.Context, obs []models.SourceObservation) {
	if len(obs) == 0 {
		return
	}
	if c.pipe != nil {
		for i := range obs {
			_ = c.pipe.Process(ctx, &obs[i])
		}
		return
	}
	batch := make([]*models.SourceObservation, len(obs))
	for i := range obs {
		batch[i] = &obs[i]
	}
	_ = c.proc.ProcessBatch(ctx, batch)
}

func (c *ObservationCollector) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Processor returns the underlying ObservationProcessor for lifecycle management.
func (c *ObservationCollector) Processor() *ObservationProcessor { return c.proc }

// Shutdown stops the pipeline and the sweep loop.
func (c *ObservationCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.Stop()
}
