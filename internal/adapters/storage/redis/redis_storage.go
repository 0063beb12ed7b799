// Package redis disponibiliza a implementação do storage baseada em Redis.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/kaificial/likes-service/internal/core/ports"
)

const (
	countKey     = "love-count"
	markerPrefix = "liked:"
	windowPrefix = "window:"
)

type Storage struct {
	client *redis.Client
}

var _ ports.Storage = (*Storage)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) (*Storage, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Storage{client: client}, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}

func (s *Storage) GetCount(ctx context.Context) (int64, error) {
	val, err := s.client.Get(ctx, countKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed counter value %q: %w", val, err)
	}
	return count, nil
}

func (s *Storage) IncrementCount(ctx context.Context) (int64, error) {
	return s.client.Incr(ctx, countKey).Result()
}

func (s *Storage) HasMarker(ctx context.Context, identity string) (bool, error) {
	exists, err := s.client.Exists(ctx, markerPrefix+identity).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

func (s *Storage) SetMarker(ctx context.Context, identity string, ttl time.Duration) error {
	return s.client.Set(ctx, markerPrefix+identity, "1", ttl).Err()
}

// CountWindow mantém um sorted set de timestamps por chave: remove os eventos
// fora da janela, registra o atual e conta o que sobrou, tudo num pipeline.
func (s *Storage) CountWindow(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()
	cutoff := now.Add(-window).UnixNano()
	member := strconv.FormatInt(now.UnixNano(), 10)
	zkey := windowPrefix + key

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zkey, "0", strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, zkey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	card := pipe.ZCard(ctx, zkey)
	oldest := pipe.ZRangeWithScores(ctx, zkey, 0, 0)
	pipe.Expire(ctx, zkey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	oldestAt := now
	if entries := oldest.Val(); len(entries) > 0 {
		oldestAt = time.Unix(0, int64(entries[0].Score))
	}

	return card.Val(), oldestAt, nil
}
