package services

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"go.uber.org/zap"
)

// CityIndexer rebuilds the typo-tolerant city index.
type CityIndexer interface {
	IndexCities(ctx context.Context, cities []models.CityRecord) error
}

// AdminService groups the maintenance operations: cache control, reference
// reloads and runtime statistics.
type AdminService struct {
	corrections *CorrectionService
	seeder      reference.Seeder
	indexer     CityIndexer
	logger      *zap.Logger
}

// DatasetValidation is the outcome of checking a reference dataset.
type DatasetValidation struct {
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SeedResult reports a reference reload.
type SeedResult struct {
	Cities           int   `json:"cities"`
	Streets          int   `json:"streets"`
	Districts        int   `json:"districts"`
	Indexed          bool  `json:"indexed"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats is the payload of the stats endpoint.
type SystemStats struct {
	Service     ServiceStats           `json:"service"`
	Cache       *CacheStats            `json:"cache,omitempty"`
	MemoryUsage map[string]interface{} `json:"memory_usage"`
	Goroutines  int                    `json:"goroutines"`
}

// NewAdminService creates an AdminService. seeder and indexer may be nil.
func NewAdminService(corrections *CorrectionService, seeder reference.Seeder, indexer CityIndexer, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		corrections: corrections,
		seeder:      seeder,
		indexer:     indexer,
		logger:      logger,
	}
}

var rePostalCode = regexp.MustCompile(`^\d{4,5}$`)

// ValidateDataset checks required fields and postal code shape. Duplicates
// only warn.
func ValidateDataset(data models.Dataset) *DatasetValidation {
	v := &DatasetValidation{}
	if len(data.Cities) == 0 && len(data.Streets) == 0 {
		v.Errors = append(v.Errors, "dataset has no cities and no streets")
	}

	seenCities := make(map[string]bool)
	for i, c := range data.Cities {
		if strings.TrimSpace(c.Name) == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("city %d: missing name", i))
		}
		if !rePostalCode.MatchString(strings.TrimSpace(c.PostalCode)) {
			v.Errors = append(v.Errors, fmt.Sprintf("city %d: invalid postal code %q", i, c.PostalCode))
		}
		key := reference.CanonicalPostalCode(c.PostalCode) + "|" + strings.ToLower(c.Name)
		if seenCities[key] {
			v.Warnings = append(v.Warnings, fmt.Sprintf("city %d: duplicate %s %s", i, c.PostalCode, c.Name))
		}
		seenCities[key] = true
	}

	for i, s := range data.Streets {
		if strings.TrimSpace(s.CurrentName) == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("street %d: missing current name", i))
		}
		if !rePostalCode.MatchString(strings.TrimSpace(s.PostalCode)) {
			v.Errors = append(v.Errors, fmt.Sprintf("street %d: invalid postal code %q", i, s.PostalCode))
		}
		if s.OldName != nil && strings.EqualFold(strings.TrimSpace(*s.OldName), strings.TrimSpace(s.CurrentName)) {
			v.Warnings = append(v.Warnings, fmt.Sprintf("street %d: old name equals current name", i))
		}
	}

	for i, d := range data.Districts {
		if strings.TrimSpace(d.Name) == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("district %d: missing name", i))
		}
		if !rePostalCode.MatchString(strings.TrimSpace(d.PostalCode)) {
			v.Errors = append(v.Errors, fmt.Sprintf("district %d: invalid postal code %q", i, d.PostalCode))
		}
	}

	v.Passed = len(v.Errors) == 0
	return v
}

// SeedReference replaces the reference data, rebuilds the city index and
// clears cached results, which may depend on the old data.
func (as *AdminService) SeedReference(ctx context.Context, data models.Dataset) (*SeedResult, error) {
	if as.seeder == nil {
		return nil, fmt.Errorf("reference backend does not support seeding")
	}
	start := time.Now()

	// 1. Validate
	validation := ValidateDataset(data)
	if !validation.Passed {
		return nil, fmt.Errorf("invalid reference data: %s", strings.Join(validation.Errors, "; "))
	}
	for _, w := range validation.Warnings {
		as.logger.Warn("reference data warning", zap.String("warning", w))
	}

	// 2. Store
	data = reference.Prepare(data)
	if err := as.seeder.Seed(ctx, data); err != nil {
		return nil, fmt.Errorf("seed reference data: %w", err)
	}

	result := &SeedResult{
		Cities:    len(data.Cities),
		Streets:   len(data.Streets),
		Districts: len(data.Districts),
	}

	// 3. City index
	if as.indexer != nil {
		if err := as.indexer.IndexCities(ctx, data.Cities); err != nil {
			as.logger.Warn("city index rebuild failed", zap.Error(err))
		} else {
			result.Indexed = true
		}
	}

	// 4. Results computed against the old data are stale
	if err := as.ClearCache(ctx); err != nil {
		as.logger.Warn("cannot clear result cache after seed", zap.Error(err))
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	as.logger.Info("reference data seeded",
		zap.Int("cities", result.Cities),
		zap.Int("streets", result.Streets),
		zap.Int("districts", result.Districts),
		zap.Bool("indexed", result.Indexed),
		zap.Int64("processing_time_ms", result.ProcessingTimeMs))
	return result, nil
}

// ClearCache drops every cached result. It is a no-op without a cache.
func (as *AdminService) ClearCache(ctx context.Context) error {
	cache := as.corrections.Cache()
	if cache == nil {
		return nil
	}
	return cache.Clear(ctx)
}

// DeleteCacheEntry drops the cached result for one fingerprint.
func (as *AdminService) DeleteCacheEntry(ctx context.Context, fingerprint string) error {
	cache := as.corrections.Cache()
	if cache == nil {
		return nil
	}
	return cache.Delete(ctx, fingerprint)
}

func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		Service: as.corrections.Stats(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
	}

	if cache := as.corrections.Cache(); cache != nil {
		cacheStats, err := cache.GetStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("cache stats: %w", err)
		}
		stats.Cache = cacheStats
	}
	return stats, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
