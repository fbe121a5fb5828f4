package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"OilSim/internal/domain/repository"
	"OilSim/internal/handler/api"
	internalrepo "OilSim/internal/repository"
	"OilSim/internal/scenario"
	"OilSim/internal/usecase"
	pkgch "OilSim/pkg/clickhouse"
	"OilSim/pkg/config"
	xhttp "OilSim/pkg/http"
	pkgkafka "OilSim/pkg/kafka"
	"OilSim/pkg/logger"
	"OilSim/pkg/metrics"
	"OilSim/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideScenarioLibrary loads the scenario catalog. Fails fast on any
// invalid scenario file.
func ProvideScenarioLibrary(cfg *config.Config) (*scenario.Library, error) {
	lib, err := scenario.Load(cfg.Sim.ScenarioDir)
	if err != nil {
		return nil, fmt.Errorf("scenario library: %w", err)
	}
	return lib, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// clickhouse backend is not selected.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Backend.Type != "clickhouse" {
		return nil, nil
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when the kafka
// backend is not selected.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if cfg.Backend.Type != "kafka" {
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

// ProvideArchive creates the ClickHouse result archive, or nil without the
// clickhouse backend. Table creation happens here so the service fails at
// startup rather than on the first finished session.
func ProvideArchive(chClient *pkgch.Client, cfg *config.Config) (repository.Archive, error) {
	if chClient == nil {
		return nil, nil
	}

	archive := internalrepo.NewClickHouseArchive(chClient.DB(), cfg.ClickHouse.Database+".session_results")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// ProvidePublisher creates the Kafka result publisher, or nil without the
// kafka backend.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideLeaderboard creates the Redis leaderboard, or nil when disabled.
func ProvideLeaderboard(cfg *config.Config) (repository.Leaderboard, error) {
	if !cfg.Leaderboard.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Leaderboard.Addr,
		Password: cfg.Leaderboard.Password,
		DB:       cfg.Leaderboard.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return internalrepo.NewRedisLeaderboard(client, cfg.Leaderboard.Key), nil
}

// ProvideResultProcessor creates the result processor use case.
func ProvideResultProcessor(
	pub repository.Publisher,
	archive repository.Archive,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.ResultProcessor {
	return usecase.NewResultProcessor(pub, archive, m, cfg.Backend.Type)
}

// ProvideSessionManager creates the session manager.
func ProvideSessionManager(
	lib *scenario.Library,
	processor *usecase.ResultProcessor,
	lb repository.Leaderboard,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.SessionManager {
	return usecase.NewSessionManager(lib, processor, lb, m, log, cfg.Sim.TickInterval, cfg.Sim.MaxSessions, cfg.Sim.SessionTTL)
}

// ProvideSessionsHandler creates the HTTP handler.
func ProvideSessionsHandler(log *logger.Logger, manager *usecase.SessionManager) xhttp.Handler {
	return api.NewSessionsEchoHandler(log, manager)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	manager *usecase.SessionManager,
	processor *usecase.ResultProcessor,
	chClient *pkgch.Client,
	handler xhttp.Handler,
	log *logger.Logger,
) *server.App {
	return server.New(cfg, manager, processor, chClient, handler, log)
}
