// Package reference answers questions about German postal reference data:
// which cities and streets belong to a postal code, which streets were
// renamed and which district a street lies in.
package reference

import (
	"context"
	"errors"
	"fmt"

	"github.com/kruegge82/adressCorrector/app/models"
)

// ErrNotFound is returned by repositories when a single record lookup has no result.
var ErrNotFound = errors.New("reference record not found")

// Resolver is the lookup surface the correction pipeline depends on.
type Resolver interface {
	FindClosestCity(ctx context.Context, city, postalCode string) (string, error)
	ValidatePostalCode(ctx context.Context, postalCode, city string) (bool, error)
	FindCityDistrict(ctx context.Context, city, postalCode, street string) (string, bool, error)
	FindStreetsByPostalCode(ctx context.Context, postalCode string) ([]string, error)
	GetStreetsWithDetails(ctx context.Context, postalCode string) ([]models.StreetRecord, error)
	StreetExists(ctx context.Context, street, postalCode string) (bool, error)
	FindSimilarStreet(ctx context.Context, street string, candidates []string) (string, error)
}

// LookupError marks a failure of the backing data source.
type LookupError struct {
	Op  string
	Err error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("reference lookup %s: %v", e.Op, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func lookupErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LookupError{Op: op, Err: err}
}
