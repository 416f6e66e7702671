package services

import (
	"context"

	"github.com/kruegge82/adressCorrector/app/models"
)

// CacheStats summarises cache usage.
type CacheStats struct {
	Backend    string  `json:"backend"`
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService stores correction results by record fingerprint.
type ICacheService interface {
	// Get returns the cached result for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (*models.CorrectionResult, bool, error)

	Set(ctx context.Context, key string, result *models.CorrectionResult) error

	Delete(ctx context.Context, key string) error

	// Clear drops every entry and resets the counters.
	Clear(ctx context.Context) error

	GetStats(ctx context.Context) (*CacheStats, error)

	Close() error
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
