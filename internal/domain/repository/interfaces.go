package repository

import (
	"context"

	"OilSim/internal/domain/models"
)

// Publisher streams finished-session results to an external broker.
type Publisher interface {
	PublishResult(ctx context.Context, r *models.SessionResult) error
	Close() error
}

// Archive persists finished-session results for later analysis.
type Archive interface {
	Init(ctx context.Context) error // ensure tables
	StoreResult(ctx context.Context, r *models.SessionResult) error
	Health(ctx context.Context) error
	Close() error
}

// Leaderboard ranks players by composite score.
type Leaderboard interface {
	Record(ctx context.Context, player string, score float64) error
	Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
	Close() error
}

// Metrics records operational counters for the simulator.
type Metrics interface {
	RecordSessionStarted(scenario string)
	RecordSessionFinished(scenario string, composite int)
	RecordTick(scenario string)
	RecordTrade(scenario string, executed bool)
	RecordLastPrice(scenario string, price float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
