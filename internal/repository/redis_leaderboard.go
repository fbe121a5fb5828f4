package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"OilSim/internal/domain/models"
	"OilSim/internal/domain/repository"
)

// RedisLeaderboard implements Leaderboard on a Redis sorted set. GT keeps a
// player's best composite score; replays never lower a ranking.
type RedisLeaderboard struct {
	client *redis.Client
	key    string
}

// NewRedisLeaderboard creates the leaderboard against an existing client.
func NewRedisLeaderboard(client *redis.Client, key string) repository.Leaderboard {
	return &RedisLeaderboard{client: client, key: key}
}

func (l *RedisLeaderboard) Record(ctx context.Context, player string, score float64) error {
	err := l.client.ZAddGT(ctx, l.key, redis.Z{Score: score, Member: player}).Err()
	if err != nil {
		return fmt.Errorf("leaderboard record: %w", err)
	}
	return nil
}

func (l *RedisLeaderboard) Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	zs, err := l.client.ZRevRangeWithScores(ctx, l.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard top: %w", err)
	}

	out := make([]models.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		player, _ := z.Member.(string)
		out = append(out, models.LeaderboardEntry{Player: player, Score: z.Score})
	}
	return out, nil
}

func (l *RedisLeaderboard) Close() error {
	return l.client.Close()
}
