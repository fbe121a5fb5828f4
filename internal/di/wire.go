//go:build wireinject
// +build wireinject

package di

import (
	"OilSim/pkg/config"
	"OilSim/pkg/server"

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

		// Repositories
		ProvideArchive,
		ProvidePublisher,
		ProvideLeaderboard,

		// Use cases
		ProvideScenarioLibrary,
		ProvideResultProcessor,
		ProvideSessionManager,

		// HTTP
		ProvideSessionsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
