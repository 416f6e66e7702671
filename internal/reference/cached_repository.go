package reference

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kruegge82/adressCorrector/app/models"
	"go.uber.org/zap"
)

// CachedRepository keeps postal code lookups of another repository in LRU caches.
// Reference data is read-mostly; call Purge after reseeding.
type CachedRepository struct {
	next    Repository
	cities  *lru.Cache[string, []models.CityRecord]
	streets *lru.Cache[string, []models.StreetRecord]
	logger  *zap.Logger
}

// NewCachedRepository wraps next with caches holding up to size postal codes each.
func NewCachedRepository(next Repository, size int, logger *zap.Logger) (*CachedRepository, error) {
	cities, err := lru.New[string, []models.CityRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create city cache: %w", err)
	}
	streets, err := lru.New[string, []models.StreetRecord](size)
	if err != nil {
		return nil, fmt.Errorf("create street cache: %w", err)
	}
	return &CachedRepository{next: next, cities: cities, streets: streets, logger: logger}, nil
}

func (r *CachedRepository) CitiesByPostalCode(ctx context.Context, postalCode string) ([]models.CityRecord, error) {
	if v, ok := r.cities.Get(postalCode); ok {
		return v, nil
	}
	v, err := r.next.CitiesByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	r.cities.Add(postalCode, v)
	return v, nil
}

func (r *CachedRepository) StreetsByPostalCode(ctx context.Context, postalCode string) ([]models.StreetRecord, error) {
	if v, ok := r.streets.Get(postalCode); ok {
		return v, nil
	}
	v, err := r.next.StreetsByPostalCode(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	r.streets.Add(postalCode, v)
	return v, nil
}

func (r *CachedRepository) CitiesByRegion(ctx context.Context, region string) ([]models.CityRecord, error) {
	return r.next.CitiesByRegion(ctx, region)
}

func (r *CachedRepository) CitiesByNamePrefix(ctx context.Context, prefix string, limit int) ([]models.CityRecord, error) {
	return r.next.CitiesByNamePrefix(ctx, prefix, limit)
}

func (r *CachedRepository) DistrictByStreet(ctx context.Context, postalCode, streetKey string) (*models.DistrictRecord, error) {
	return r.next.DistrictByStreet(ctx, postalCode, streetKey)
}

func (r *CachedRepository) DistrictByPostalCode(ctx context.Context, postalCode string) (*models.DistrictRecord, error) {
	return r.next.DistrictByPostalCode(ctx, postalCode)
}

// Seed forwards to the wrapped repository and empties the caches.
func (r *CachedRepository) Seed(ctx context.Context, data models.Dataset) error {
	seeder, ok := r.next.(Seeder)
	if !ok {
		return fmt.Errorf("repository %T cannot be seeded", r.next)
	}
	if err := seeder.Seed(ctx, data); err != nil {
		return err
	}
	r.Purge()
	return nil
}

// Purge empties both caches.
func (r *CachedRepository) Purge() {
	r.cities.Purge()
	r.streets.Purge()
	r.logger.Debug("reference cache purged")
}

// Len returns the number of cached postal codes for cities and streets.
func (r *CachedRepository) Len() (cities, streets int) {
	return r.cities.Len(), r.streets.Len()
}
