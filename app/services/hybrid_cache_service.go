package services

import (
	"context"
	"errors"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"go.uber.org/zap"
)

// HybridCacheService puts a fast local cache (L1) in front of a shared one (L2).
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService combines l1 and l2.
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// Get tries L1, then L2. An L2 hit is copied back into L1.
func (h *HybridCacheService) Get(ctx context.Context, key string) (*models.CorrectionResult, bool, error) {
	result, found, err := h.l1.Get(ctx, key)
	if err != nil {
		h.logger.Warn("L1 cache failed, falling back to L2", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = h.l2.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	if err := h.l1.Set(ctx, key, result); err != nil {
		h.logger.Warn("cannot promote L2 entry to L1", zap.Error(err), zap.String("key", key))
	}
	return result, true, nil
}

// Set writes both levels. An L2 failure is returned after L1 has been written.
func (h *HybridCacheService) Set(ctx context.Context, key string, result *models.CorrectionResult) error {
	errCh := make(chan error, 2)

	go func() { errCh <- h.l1.Set(ctx, key, result) }()
	go func() { errCh <- h.l2.Set(ctx, key, result) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *HybridCacheService) Delete(ctx context.Context, key string) error {
	return errors.Join(h.l1.Delete(ctx, key), h.l2.Delete(ctx, key))
}

func (h *HybridCacheService) Clear(ctx context.Context) error {
	return errors.Join(h.l1.Clear(ctx), h.l2.Clear(ctx))
}

// GetStats reports L2 item counts with hits summed over both levels.
func (h *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	l1, err := h.l1.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	l2, err := h.l2.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	hits := l1.TotalHits + l2.TotalHits
	// Every L2 lookup is an L1 miss, so L2 misses are the real misses.
	return &CacheStats{
		Backend:    l1.Backend + "+" + l2.Backend,
		HitRate:    hitRate(hits, l2.TotalMiss),
		TotalHits:  hits,
		TotalMiss:  l2.TotalMiss,
		TotalItems: l2.TotalItems,
	}, nil
}

func (h *HybridCacheService) Close() error {
	return errors.Join(h.l1.Close(), h.l2.Close())
}
