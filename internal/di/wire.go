//go:build wireinject
// +build wireinject

package di

import (
	"astrochart/pkg/config"
	"astrochart/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideRedisClient,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideQueue,

		// Repositories
		ProvideChartArchive,
		ProvideChartPublisher,

		// Core computation
		ProvideAssembler,
		ProvideRegistry,

		// Use cases
		ProvideChartService,
		ProvideChartRequestsHandler,
		ProvideSolarReturnJob,

		// Transport
		ProvideTransitHub,
		ProvideChartsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
