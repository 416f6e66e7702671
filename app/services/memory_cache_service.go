package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kruegge82/adressCorrector/app/models"
	"go.uber.org/zap"
)

// MemoryCacheService is an in-process LRU cache with a per-entry TTL.
type MemoryCacheService struct {
	lru    *expirable.LRU[string, *models.CorrectionResult]
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryCacheService creates a cache holding up to size results for ttl.
// A zero ttl keeps entries until they are evicted.
func NewMemoryCacheService(size int, ttl time.Duration, logger *zap.Logger) *MemoryCacheService {
	if size <= 0 {
		size = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryCacheService{
		lru:    expirable.NewLRU[string, *models.CorrectionResult](size, nil, ttl),
		logger: logger,
	}
}

func (m *MemoryCacheService) Get(ctx context.Context, key string) (*models.CorrectionResult, bool, error) {
	result, ok := m.lru.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, false, nil
	}
	m.hits.Add(1)
	return result.Clone(), true, nil
}

func (m *MemoryCacheService) Set(ctx context.Context, key string, result *models.CorrectionResult) error {
	if result == nil {
		return nil
	}
	m.lru.Add(key, result.Clone())
	return nil
}

func (m *MemoryCacheService) Delete(ctx context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

func (m *MemoryCacheService) Clear(ctx context.Context) error {
	m.lru.Purge()
	m.hits.Store(0)
	m.misses.Store(0)
	m.logger.Info("memory cache cleared")
	return nil
}

func (m *MemoryCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := m.hits.Load(), m.misses.Load()
	return &CacheStats{
		Backend:    "memory",
		HitRate:    hitRate(hits, misses),
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(m.lru.Len()),
	}, nil
}

func (m *MemoryCacheService) Close() error { return nil }
