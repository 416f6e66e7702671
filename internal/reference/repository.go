package reference

import (
	"context"

	"github.com/kruegge82/adressCorrector/app/models"
)

// Repository is a storage backend for reference data. Postal codes passed in
// are canonical (see CanonicalPostalCode) and street keys come from normalizer.StreetKey.
type Repository interface {
	CitiesByPostalCode(ctx context.Context, postalCode string) ([]models.CityRecord, error)
	CitiesByRegion(ctx context.Context, region string) ([]models.CityRecord, error)
	CitiesByNamePrefix(ctx context.Context, prefix string, limit int) ([]models.CityRecord, error)
	StreetsByPostalCode(ctx context.Context, postalCode string) ([]models.StreetRecord, error)
	// DistrictByStreet returns the highest version district for the street or ErrNotFound.
	DistrictByStreet(ctx context.Context, postalCode, streetKey string) (*models.DistrictRecord, error)
	// DistrictByPostalCode returns the highest version active district without street restriction or ErrNotFound.
	DistrictByPostalCode(ctx context.Context, postalCode string) (*models.DistrictRecord, error)
}

// Seeder is implemented by repositories that can be loaded with a dataset.
type Seeder interface {
	Seed(ctx context.Context, data models.Dataset) error
}
