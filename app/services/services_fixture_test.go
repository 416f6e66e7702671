package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/parser"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"go.uber.org/zap"
)

func fixtureDataset() models.Dataset {
	return models.Dataset{
		Cities: []models.CityRecord{
			{Name: "Paderborn", PostalCode: "33100"},
			{Name: "Berlin", PostalCode: "10115"},
		},
		Streets: []models.StreetRecord{
			{CurrentName: "Pielstraße", PostalCode: "33100", Version: 1},
			{CurrentName: "Hauptstraße", PostalCode: "10115", Version: 1},
		},
		Districts: []models.DistrictRecord{
			{Name: "Kernstadt", City: "Paderborn", PostalCode: "33100", Version: 1},
			{Name: "Mitte", City: "Berlin", PostalCode: "10115", Version: 1},
		},
	}
}

type fixture struct {
	repo    *reference.MemoryRepository
	cache   *MemoryCacheService
	service *CorrectionService
}

func newFixture(t *testing.T, mutate ...func(*config.CorrectorCfg)) *fixture {
	t.Helper()
	cfg := config.Default()
	for _, m := range mutate {
		m(&cfg)
	}
	repo := reference.NewMemoryRepository(fixtureDataset())
	store := reference.NewStore(repo, nil, zap.NewNop())
	pipeline := parser.NewPipeline(store, cfg, zap.NewNop())
	cache := NewMemoryCacheService(100, time.Hour, zap.NewNop())
	return &fixture{
		repo:    repo,
		cache:   cache,
		service: NewCorrectionService(pipeline, cache, cfg, zap.NewNop()),
	}
}

// failingCache fails every operation.
type failingCache struct{ err error }

func (f failingCache) Get(context.Context, string) (*models.CorrectionResult, bool, error) {
	return nil, false, f.err
}
func (f failingCache) Set(context.Context, string, *models.CorrectionResult) error { return f.err }
func (f failingCache) Delete(context.Context, string) error                        { return f.err }
func (f failingCache) Clear(context.Context) error                                 { return f.err }
func (f failingCache) GetStats(context.Context) (*CacheStats, error)               { return nil, f.err }
func (f failingCache) Close() error                                                { return nil }

// flakyResolver fails the first district lookup and then delegates.
type flakyResolver struct {
	reference.Resolver
	calls int
}

func (r *flakyResolver) FindCityDistrict(ctx context.Context, city, postalCode, street string) (string, bool, error) {
	r.calls++
	if r.calls == 1 {
		return "", false, &reference.LookupError{Op: "find_city_district", Err: errors.New("connection reset")}
	}
	return r.Resolver.FindCityDistrict(ctx, city, postalCode, street)
}
