package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"RegionPulse/internal/domain/repository"
	domsvc "RegionPulse/internal/domain/service"
	"RegionPulse/internal/handler/api"
	"RegionPulse/internal/handler/ws"
	mid "RegionPulse/internal/middleware"
	internalrepo "RegionPulse/internal/repository"
	icache "RegionPulse/internal/service/cache"
	"RegionPulse/internal/service/sources"
	"RegionPulse/internal/services/analytics"
	"RegionPulse/internal/usecase"
	pkgcache "RegionPulse/pkg/cache"
	pkgch "RegionPulse/pkg/clickhouse"
	"RegionPulse/pkg/config"
	pkgkafka "RegionPulse/pkg/kafka"
	applogger "RegionPulse/pkg/logger"
	"RegionPulse/pkg/metrics"
	pkgqueue "RegionPulse/pkg/queue"
	"RegionPulse/pkg/server"
)

// ProvideLogger creates the shared application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "regionpulse"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".observations_raw (region String, sub_index String, source String, date Date, value Float64, fetched DateTime) ENGINE=MergeTree ORDER BY (region, sub_index, date)",
		"CREATE TABLE IF NOT EXISTS " + db + ".forecast_snapshots (region String, model String, horizon Int32, generated_at DateTime, payload String) ENGINE=MergeTree ORDER BY (region, generated_at)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. Deployments without
// brokers (pure ClickHouse backend, no result topic) get nil.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStore creates the ClickHouse observation repository.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHObservationStore {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "regionpulse"
	}
	store := internalrepo.NewCHObservationStore(chClient, db+".observations_raw")
	store.SetLogger(l)
	return store
}

// ProvideObservationStoreIface adapts the concrete store to the domain port.
func ProvideObservationStoreIface(store *internalrepo.CHObservationStore) repository.ObservationStore {
	return store
}

// ProvideRawHistoryReader exposes the store to the history provider.
func ProvideRawHistoryReader(store *internalrepo.CHObservationStore) repository.RawHistoryReader {
	return store
}

// ProvideObservationPublisher creates the Kafka observation publisher.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaObservationPublisher(producer, cfg.Kafka.Topic)
}

// ProvideSnapshotStore creates the ClickHouse snapshot repository.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.SnapshotStore {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "regionpulse"
	}
	store := internalrepo.NewCHSnapshotStore(chClient, db+".forecast_snapshots")
	store.SetLogger(l)
	return store
}

// ProvideResultPublisher creates the Kafka result publisher.
func ProvideResultPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ResultPublisher {
	if producer == nil || cfg.Kafka.ResultsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.ResultsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
// Only the kafka backend consumes; the direct ClickHouse path gets nil.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers the handler for the raw topic.
func ProvideKafkaObservationsHandler(store repository.ObservationStore, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideSourceRegistry builds one connector per configured source.
func ProvideSourceRegistry(cfg *config.Config, l *applogger.Logger) *sources.Registry {
	return sources.NewRegistry(cfg, l)
}

// ProvideSourceConnectors flattens the registry for the collector.
func ProvideSourceConnectors(reg *sources.Registry) []repository.SourceConnector {
	return reg.All()
}

// ProvideObservationProcessor creates the backend router use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates the source sweep use case.
func ProvideObservationCollector(
	connectors []repository.SourceConnector,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.ObservationCollector {
	// Build middleware pipeline between source connectors and the backend
	pipe := mid.NewObservationPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(connectors, cfg.Regions, processor, metrics, pipe, l, time.Hour, 7)
}

// ProvideCacheService selects the shared cache backend: layered
// Redis+memory when Redis is configured, plain memory otherwise.
func ProvideCacheService(cfg *config.Config) pkgcache.Service {
	mem := pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(cfg.Cache.MaxSize))
	if !cfg.Redis.Enabled {
		return mem
	}
	host, port := splitHostPort(cfg.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		// degrade to memory-only rather than refusing to boot
		return mem
	}
	return pkgcache.NewLayeredCache(rc, pkgcache.WithLayeredMemorySize(cfg.Cache.MaxSize))
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "localhost", 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideHarmonizer creates the observation harmonizer.
func ProvideHarmonizer(cfg *config.Config, l *applogger.Logger) domsvc.Harmonizer {
	return usecase.NewHarmonizer(cfg, l)
}

// ProvideHistoryProvider creates the cached harmonized-history source.
func ProvideHistoryProvider(
	reader repository.RawHistoryReader,
	harmonizer domsvc.Harmonizer,
	cache pkgcache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) repository.HistoryProvider {
	return internalrepo.NewCachedHistoryProvider(reader, harmonizer, cache, cfg.Cache.HistoryTTL, l)
}

// ProvideHistoryInvalidator reuses the provider's cache invalidation.
func ProvideHistoryInvalidator(hp repository.HistoryProvider) usecase.HistoryInvalidator {
	if inv, ok := hp.(usecase.HistoryInvalidator); ok {
		return inv
	}
	return nil
}

// ProvideComposer creates the weighted index composer.
func ProvideComposer(cfg *config.Config) (domsvc.IndexComposer, error) {
	c, err := analytics.NewComposer(cfg)
	if err != nil {
		return nil, fmt.Errorf("composer: %w", err)
	}
	return c, nil
}

// ProvideForecaster creates the model-backed forecaster.
func ProvideForecaster(cfg *config.Config, l *applogger.Logger) domsvc.Forecaster {
	return analytics.NewIndexForecaster(cfg, analytics.DefaultModelRegistry(cfg), l)
}

// ProvideShockDetector creates the multi-method shock detector.
func ProvideShockDetector(cfg *config.Config) domsvc.ShockDetector {
	return analytics.NewShockDetector(cfg)
}

// ProvideConvergenceEngine creates the cross-index convergence analyzer.
func ProvideConvergenceEngine(cfg *config.Config) domsvc.ConvergenceAnalyzer {
	return analytics.NewConvergenceEngine(cfg)
}

// ProvideRiskClassifier creates the tiered risk classifier.
func ProvideRiskClassifier(cfg *config.Config) domsvc.RiskClassifier {
	return analytics.NewRiskClassifier(cfg)
}

// ProvideForecastMonitor creates the confidence and drift monitor.
func ProvideForecastMonitor(cfg *config.Config, l *applogger.Logger) domsvc.ForecastMonitor {
	return analytics.NewForecastMonitor(cfg, l)
}

// ProvideCorrelationEngine creates the pairwise correlation analyzer.
func ProvideCorrelationEngine(cfg *config.Config) domsvc.CorrelationAnalyzer {
	return analytics.NewCorrelationEngine(cfg)
}

// ProvideForecastPipeline wires the full per-region analysis.
func ProvideForecastPipeline(
	history repository.HistoryProvider,
	composer domsvc.IndexComposer,
	forecaster domsvc.Forecaster,
	shocks domsvc.ShockDetector,
	convergence domsvc.ConvergenceAnalyzer,
	risk domsvc.RiskClassifier,
	monitor domsvc.ForecastMonitor,
	correlation domsvc.CorrelationAnalyzer,
	metrics repository.Metrics,
	l *applogger.Logger,
) *usecase.ForecastPipeline {
	return usecase.NewForecastPipeline(history, composer, forecaster, shocks, convergence, risk, monitor, correlation, metrics, l)
}

// ProvideHistoryUseCase creates the harmonized-history read use case.
func ProvideHistoryUseCase(hp repository.HistoryProvider, composer domsvc.IndexComposer, cfg *config.Config) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(hp, composer, cfg.Regions)
}

// ProvideHub creates the WebSocket result hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideBroadcaster adapts the hub to the domain port.
func ProvideBroadcaster(hub *ws.Hub) repository.Broadcaster {
	return hub
}

// ProvideForecastHandler creates the HTTP API handler.
func ProvideForecastHandler(
	l *applogger.Logger,
	pipeline *usecase.ForecastPipeline,
	history *usecase.HistoryUseCase,
	snapshots repository.SnapshotStore,
	cfg *config.Config,
) *api.ForecastEchoHandler {
	h := api.NewForecastEchoHandler(l, pipeline, history, cfg)
	h.SetCache(icache.FromConfig(cfg))
	h.SetSnapshots(snapshots)
	return h
}

// ProvideRedisClient creates the Redis connection used by the refresh
// queue. Nil when the queue is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Refresh.Enabled || !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideRefreshJob creates the per-region recompute job. The shared
// cache doubles as the cross-worker region lock.
func ProvideRefreshJob(
	pipeline *usecase.ForecastPipeline,
	snapshots repository.SnapshotStore,
	results repository.ResultPublisher,
	broadcaster repository.Broadcaster,
	invalidator usecase.HistoryInvalidator,
	cache pkgcache.Service,
	metrics repository.Metrics,
	l *applogger.Logger,
) *usecase.RefreshJob {
	job := usecase.NewRefreshJob(pipeline, snapshots, results, broadcaster, invalidator, metrics, l)
	job.SetLocks(cache)
	return job
}

// ProvideRefreshQueue creates the Redis-backed refresh queue with the
// job registered. Nil when refresh is disabled.
func ProvideRefreshQueue(client *redis.Client, job *usecase.RefreshJob, cfg *config.Config, l *applogger.Logger) *pkgqueue.RedisQueue {
	if client == nil {
		return nil
	}
	qc := &pkgqueue.QueueConfig{
		Workers:    cfg.Refresh.Workers,
		RetryLimit: 3,
		RetryDelay: 30 * time.Second,
	}
	opts := []pkgqueue.RedisQueueOption{}
	if cfg.Refresh.Queue != "" {
		opts = append(opts, pkgqueue.WithKeyPrefix(cfg.Refresh.Queue))
	}
	q := pkgqueue.NewRedisQueue(l, qc, client, opts...)
	q.RegisterJob(job)
	return q
}

// ProvideRefreshScheduler creates the interval enqueuer. Nil when the
// queue is absent.
func ProvideRefreshScheduler(q *pkgqueue.RedisQueue, cfg *config.Config, l *applogger.Logger) *usecase.RefreshScheduler {
	if q == nil {
		return nil
	}
	return usecase.NewRefreshScheduler(q, cfg.Regions, cfg.Refresh.Interval, cfg.Refresh.DaysBack, cfg.Refresh.Horizon, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	queue *pkgqueue.RedisQueue,
	scheduler *usecase.RefreshScheduler,
	hub *ws.Hub,
	handler *api.ForecastEchoHandler,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, producer, queue, scheduler, hub)
	app.SetHTTPHandler(handler)
	// attach observation processor to app for closing resources via collector
	if collector != nil {
		app.ObsProc = collector.Processor()
	}
	return app
}
