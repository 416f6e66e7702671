package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/external"
	"github.com/kruegge82/adressCorrector/internal/parser"
	"go.uber.org/zap"
)

var (
	ErrEmptyAddress    = errors.New("address is empty")
	ErrAddressTooShort = errors.New("address is too short")
	ErrBatchTooLarge   = errors.New("batch exceeds the maximum size")
)

// Corrector is what the HTTP and CLI layers need from the correction service.
type Corrector interface {
	Correct(ctx context.Context, fields models.AddressFields) (*models.CorrectionResult, bool, error)
	CorrectRaw(ctx context.Context, raw string) (*models.CorrectionResult, bool, error)
	CorrectBatch(ctx context.Context, records []models.AddressFields) ([]*models.CorrectionResult, error)
}

// CorrectionService runs the pipeline behind an optional result cache.
type CorrectionService struct {
	pipeline  *parser.Pipeline
	cache     ICacheService
	cfg       config.CorrectorCfg
	logger    *zap.Logger
	startTime time.Time

	processed atomic.Int64
	cacheHits atomic.Int64
	mu        sync.Mutex
	byStatus  map[string]int64
}

var _ Corrector = (*CorrectionService)(nil)

// NewCorrectionService creates the service. cache may be nil.
func NewCorrectionService(pipeline *parser.Pipeline, cache ICacheService, cfg config.CorrectorCfg, logger *zap.Logger) *CorrectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorrectionService{
		pipeline:  pipeline,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
		byStatus:  make(map[string]int64),
	}
}

// Fingerprint identifies a record independent of case and surrounding blanks.
func Fingerprint(f models.AddressFields) string {
	parts := []string{f.Company, f.Street, f.StreetNumber, f.AddressAddition, f.PostalCode, f.City, f.District}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Correct returns the corrected record and whether it came from the cache.
// Cache failures are logged and never fail the request.
func (cs *CorrectionService) Correct(ctx context.Context, fields models.AddressFields) (*models.CorrectionResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	key := Fingerprint(fields)

	// 1. Cache
	if cs.cache != nil {
		cached, found, err := cs.cache.Get(ctx, key)
		if err != nil {
			cs.logger.Warn("cache lookup failed", zap.Error(err), zap.String("fingerprint", key))
		} else if found {
			cs.cacheHits.Add(1)
			cs.record(cached.Status)
			return cached, true, nil
		}
	}

	// 2. Pipeline
	result := cs.pipeline.Correct(ctx, fields)
	result.Fingerprint = key
	cs.record(result.Status)

	// 3. Store. Results degraded by a failed lookup are not cached.
	switch {
	case cs.cache == nil:
	case result.HasFlag(string(parser.FlagLookupFailed)):
		cs.logger.Debug("result not cached after lookup failure", zap.String("fingerprint", key))
	default:
		if err := cs.cache.Set(ctx, key, result); err != nil {
			cs.logger.Warn("cache write failed", zap.Error(err), zap.String("fingerprint", key))
		}
	}
	return result, false, nil
}

// CorrectRaw splits a single address line into fields and corrects them.
func (cs *CorrectionService) CorrectRaw(ctx context.Context, raw string) (*models.CorrectionResult, bool, error) {
	fields, err := cs.ParseRaw(raw)
	if err != nil {
		return nil, false, err
	}
	return cs.Correct(ctx, fields)
}

// ParseRaw splits raw into fields. libpostal is used when compiled in and it
// recognised a road or postcode; otherwise the regex parser runs.
func (cs *CorrectionService) ParseRaw(raw string) (models.AddressFields, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.AddressFields{}, ErrEmptyAddress
	}
	if utf8.RuneCountInString(raw) < cs.cfg.MinRawLength {
		return models.AddressFields{}, fmt.Errorf("%w: need at least %d characters", ErrAddressTooShort, cs.cfg.MinRawLength)
	}

	if external.Available() {
		if fields, coverage, ok := external.ParseWithLibpostal(raw); ok {
			cs.logger.Debug("parsed with libpostal", zap.Float64("coverage", coverage))
			return fields, nil
		}
	}
	return parser.ParseRawAddress(raw), nil
}

// CorrectBatch corrects records in order. One result per record; a record
// never fails the batch. Only cancellation stops it early.
func (cs *CorrectionService) CorrectBatch(ctx context.Context, records []models.AddressFields) ([]*models.CorrectionResult, error) {
	if cs.cfg.MaxBatchSize > 0 && len(records) > cs.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(records), cs.cfg.MaxBatchSize)
	}

	start := time.Now()
	results := make([]*models.CorrectionResult, 0, len(records))
	for i, rec := range records {
		result, _, err := cs.Correct(ctx, rec)
		if err != nil {
			cs.logger.Warn("batch interrupted",
				zap.Int("processed", i),
				zap.Int("total", len(records)),
				zap.Error(err))
			return results, err
		}
		results = append(results, result)
	}

	cs.logger.Info("batch corrected",
		zap.Int("total", len(records)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

// ServiceStats are the counters reported by the admin endpoint.
type ServiceStats struct {
	Uptime    string           `json:"uptime"`
	StartTime string           `json:"start_time"`
	Processed int64            `json:"processed"`
	CacheHits int64            `json:"cache_hits"`
	ByStatus  map[string]int64 `json:"by_status"`
}

func (cs *CorrectionService) Stats() ServiceStats {
	cs.mu.Lock()
	byStatus := make(map[string]int64, len(cs.byStatus))
	for k, v := range cs.byStatus {
		byStatus[k] = v
	}
	cs.mu.Unlock()

	return ServiceStats{
		Uptime:    time.Since(cs.startTime).Round(time.Second).String(),
		StartTime: cs.startTime.Format(time.RFC3339),
		Processed: cs.processed.Load(),
		CacheHits: cs.cacheHits.Load(),
		ByStatus:  byStatus,
	}
}

// Cache returns the result cache, nil when caching is off.
func (cs *CorrectionService) Cache() ICacheService { return cs.cache }

func (cs *CorrectionService) record(status string) {
	cs.processed.Add(1)
	cs.mu.Lock()
	cs.byStatus[status]++
	cs.mu.Unlock()
}
