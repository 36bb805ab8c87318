package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/sankalpa/vivah-portrait-go/pkg/errors"
)

// CacheService wraps the redis client used by the HTTP layer's rate
// limiter. Counters are short-lived; nothing request-related is persisted.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, apperrors.NewCacheError("failed to connect to Redis", "ping", "", err)
	}

	logger.Info("Redis connected",
		zap.String("addr", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		zap.Int("db", cfg.DB),
	)

	return &CacheService{
		client: client,
		logger: logger,
	}, nil
}

// IncrWindow bumps a fixed-window counter, setting the window TTL on first
// increment, and returns the new count.
func (c *CacheService) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Error("Cache incr failed", zap.String("key", key), zap.Error(err))
		return 0, apperrors.NewCacheError("incr failed", "incr", key, err)
	}
	if count == 1 && window > 0 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			c.logger.Error("Cache expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	return count, nil
}

func (c *CacheService) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewCacheError("ping failed", "ping", "", err)
	}
	return nil
}

func (c *CacheService) Close() error {
	return c.client.Close()
}
