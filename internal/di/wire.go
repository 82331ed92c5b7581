//go:build wireinject
// +build wireinject

package di

import (
	"TradeTuner/pkg/config"
	"TradeTuner/pkg/server"

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

		// Repositories and collaborators
		ProvideAuditStore,
		ProvidePublisher,
		ProvideTradeTape,
		ProvideMarketDataProvider,
		ProvideTradeStream,
		ProvideBytesCache,
		ProvideExternalOptimizer,

		// Use cases
		ProvideMarketAnalyzer,
		ProvideParameterOptimizer,
		ProvidePipeline,
		ProvideTradeCollector,
		ProvideKafkaTradesHandler,
		ProvideRedisQueue,
		ProvideAnalysisJob,
		ProvideScheduler,

		// HTTP surface and application server
		ProvideAnalysisHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
