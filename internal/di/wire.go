//go:build wireinject
// +build wireinject

package di

import (
	"RegionPulse/pkg/config"
	"RegionPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisClient,
		ProvideCacheService,

		// Repositories
		ProvideObservationStore,
		ProvideObservationStoreIface,
		ProvideRawHistoryReader,
		ProvideObservationPublisher,
		ProvideSnapshotStore,
		ProvideResultPublisher,
		ProvideSourceRegistry,
		ProvideSourceConnectors,
		ProvideHistoryProvider,
		ProvideHistoryInvalidator,

		// Analytics services
		ProvideHarmonizer,
		ProvideComposer,
		ProvideForecaster,
		ProvideShockDetector,
		ProvideConvergenceEngine,
		ProvideRiskClassifier,
		ProvideForecastMonitor,
		ProvideCorrelationEngine,

		// Use cases
		ProvideObservationProcessor,
		ProvideObservationCollector,
		ProvideKafkaObservationsHandler,
		ProvideForecastPipeline,
		ProvideHistoryUseCase,
		ProvideRefreshJob,
		ProvideRefreshQueue,
		ProvideRefreshScheduler,

		// Delivery
		ProvideHub,
		ProvideBroadcaster,
		ProvideForecastHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
