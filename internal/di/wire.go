//go:build wireinject
// +build wireinject

package di

import (
	"FinEdge/pkg/config"
	"FinEdge/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideMarketStore,
		ProvideSignalStore,
		ProvidePriceStore,
		ProvideWatchlistStore,
		ProvideSignalLog,
		ProvidePredictionStore,
		ProvideModelMetricsStore,
		ProvideModelStore,
		ProvideSentimentStore,
		ProvideSignalPublisher,

		// Services
		ProvideMarketDataService,
		ProvideHeadlineProvider,
		ProvideSentimentScorer,
		ProvideTechnicalScorer,
		ProvideEnricher,
		ProvidePredictEngine,
		ProvidePredictor,
		ProvideTrainer,
		ProvideNotifier,

		// Use cases
		ProvideComposer,
		ProvideRetrainer,
		ProvideDashboard,

		// Background processing
		ProvideRefreshJob,
		ProvideRetrainJob,
		ProvideTaskQueue,
		ProvideTaskPublisher,
		ProvideScheduler,

		// HTTP and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
