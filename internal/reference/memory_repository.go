package reference

import (
	"context"
	"strings"
	"sync"

	"github.com/kruegge82/adressCorrector/app/models"
)

// MemoryRepository keeps a prepared dataset in memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	cities    map[string][]models.CityRecord
	regions   map[string][]models.CityRecord
	allCities []models.CityRecord
	streets   map[string][]models.StreetRecord
	districts map[string][]models.DistrictRecord
}

// NewMemoryRepository creates a repository holding data.
func NewMemoryRepository(data models.Dataset) *MemoryRepository {
	r := &MemoryRepository{}
	r.reset()
	r.add(Prepare(data))
	return r
}

func (r *MemoryRepository) reset() {
	r.cities = make(map[string][]models.CityRecord)
	r.regions = make(map[string][]models.CityRecord)
	r.allCities = nil
	r.streets = make(map[string][]models.StreetRecord)
	r.districts = make(map[string][]models.DistrictRecord)
}

func (r *MemoryRepository) add(data models.Dataset) {
	for _, c := range data.Cities {
		r.cities[c.PostalCode] = append(r.cities[c.PostalCode], c)
		r.regions[c.Region] = append(r.regions[c.Region], c)
		r.allCities = append(r.allCities, c)
	}
	for _, s := range data.Streets {
		r.streets[s.PostalCode] = append(r.streets[s.PostalCode], s)
	}
	for _, d := range data.Districts {
		r.districts[d.PostalCode] = append(r.districts[d.PostalCode], d)
	}
}

// Seed replaces the repository content with data.
func (r *MemoryRepository) Seed(_ context.Context, data models.Dataset) error {
	prepared := Prepare(data)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
	r.add(prepared)
	return nil
}

func (r *MemoryRepository) CitiesByPostalCode(_ context.Context, postalCode string) ([]models.CityRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.CityRecord(nil), r.cities[postalCode]...), nil
}

func (r *MemoryRepository) CitiesByRegion(_ context.Context, region string) ([]models.CityRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.CityRecord(nil), r.regions[region]...), nil
}

func (r *MemoryRepository) CitiesByNamePrefix(_ context.Context, prefix string, limit int) ([]models.CityRecord, error) {
	if prefix == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.CityRecord
	for _, c := range r.allCities {
		if strings.HasPrefix(c.NormalizedName, prefix) {
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *MemoryRepository) StreetsByPostalCode(_ context.Context, postalCode string) ([]models.StreetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.StreetRecord(nil), r.streets[postalCode]...), nil
}

func (r *MemoryRepository) DistrictByStreet(_ context.Context, postalCode, streetKey string) (*models.DistrictRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return latestDistrict(r.districts[postalCode], func(d models.DistrictRecord) bool {
		return d.StreetKey != "" && d.StreetKey == streetKey
	})
}

func (r *MemoryRepository) DistrictByPostalCode(_ context.Context, postalCode string) (*models.DistrictRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return latestDistrict(r.districts[postalCode], func(d models.DistrictRecord) bool {
		return d.StreetKey == "" && d.IsActive()
	})
}

func latestDistrict(records []models.DistrictRecord, keep func(models.DistrictRecord) bool) (*models.DistrictRecord, error) {
	var best *models.DistrictRecord
	for i := range records {
		d := records[i]
		if !keep(d) {
			continue
		}
		if best == nil || d.Version > best.Version {
			best = &d
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	return best, nil
}
