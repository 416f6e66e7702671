package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "addr_corrector:"

// RedisCacheService stores results as JSON strings with a TTL.
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService connects to redisURL and pings it.
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}, nil
}

func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.CorrectionResult, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("redis get failed", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	var result models.CorrectionResult
	if err := json.Unmarshal(val, &result); err != nil {
		rcs.logger.Warn("dropping undecodable cache entry", zap.Error(err), zap.String("key", cacheKey))
		_ = rcs.client.Del(ctx, cacheKey).Err()
		rcs.misses.Add(1)
		return nil, false, nil
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("redis cache hit", zap.String("key", key))
	return &result, true, nil
}

func (rcs *RedisCacheService) Set(ctx context.Context, key string, result *models.CorrectionResult) error {
	cacheKey := rcs.prefix + key

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := rcs.client.Set(ctx, cacheKey, data, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("redis set failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.prefix + key
	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("redis delete failed", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// Clear deletes every key under the service prefix.
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := rcs.client.Scan(ctx, cursor, rcs.prefix+"*", 500).Result()
		if err != nil {
			return fmt.Errorf("scan redis keys: %w", err)
		}
		if len(keys) > 0 {
			if err := rcs.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete redis keys: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	rcs.hits.Store(0)
	rcs.misses.Store(0)
	rcs.logger.Info("redis cache cleared", zap.Int("keys_deleted", deleted))
	return nil
}

func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	var items int64
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		items++
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("count redis keys: %w", err)
	}

	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	return &CacheStats{
		Backend:    "redis",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: items,
	}, nil
}

// Ping checks that redis answers.
func (rcs *RedisCacheService) Ping(ctx context.Context) error {
	return rcs.client.Ping(ctx).Err()
}

func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
