package reference

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/normalizer"
	"github.com/kruegge82/adressCorrector/internal/similarity"
	"go.uber.org/zap"
)

// Scores of the fuzzy city tiers, best first.
const (
	scoreCityPrefix   = 0.9
	scoreCitySuffix   = 0.8
	scoreCityContains = 0.7
	scoreCityPhonetic = 0.6
	scoreCityTypo     = 0.5

	typoThreshold   = 0.9
	namePrefixLimit = 10
	indexHitLimit   = 5
)

// Words that start the descriptive part of a compound city name ("Frankfurt am Main").
var cityQualifiers = map[string]bool{
	"am": true, "an": true, "im": true, "in": true, "auf": true, "bei": true,
	"ob": true, "a.": true, "i.": true, "a.d.": true, "v.": true, "vor": true,
}

// CityIndex is an optional full-text index consulted when postal code lookups fail.
type CityIndex interface {
	SearchCities(ctx context.Context, query string, limit int) ([]models.CityRecord, error)
}

// Store implements Resolver on top of a Repository.
type Store struct {
	repo   Repository
	index  CityIndex
	logger *zap.Logger
}

// NewStore creates a Store. index may be nil.
func NewStore(repo Repository, index CityIndex, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, index: index, logger: logger}
}

var _ Resolver = (*Store)(nil)

// FindClosestCity returns the reference spelling of city. Candidates of the
// postal code are tried first, then the city index, then a name prefix search.
// The input comes back unchanged when nothing matches.
func (s *Store) FindClosestCity(ctx context.Context, city, postalCode string) (string, error) {
	name := strings.TrimSpace(city)
	if name == "" {
		return name, nil
	}
	key := normalizer.CityKey(name)

	if code := CanonicalPostalCode(postalCode); code != "" {
		cities, err := s.repo.CitiesByPostalCode(ctx, code)
		if err != nil {
			return name, lookupErr("find_closest_city", err)
		}
		if best, ok := closestCity(key, cities); ok {
			return best, nil
		}
	}

	if s.index != nil {
		hits, err := s.index.SearchCities(ctx, name, indexHitLimit)
		if err != nil {
			s.logger.Warn("city index unavailable", zap.String("city", name), zap.Error(err))
		}
		for _, h := range hits {
			if similarity.JaroWinkler(normalizer.Fold(name), normalizer.Fold(h.Name)) >= typoThreshold ||
				strings.HasPrefix(normalizer.CityKey(h.Name), key) {
				return h.Name, nil
			}
		}
	}

	cities, err := s.repo.CitiesByNamePrefix(ctx, normalizer.Fold(name), namePrefixLimit)
	if err != nil {
		return name, lookupErr("find_closest_city", err)
	}
	if shortest := shortestName(cities); shortest != "" {
		return shortest, nil
	}
	return name, nil
}

// closestCity picks the exact match or the best fuzzy tier. Ties go to the shorter name.
func closestCity(key string, cities []models.CityRecord) (string, bool) {
	for _, c := range cities {
		if normalizer.CityKey(c.Name) == key {
			return c.Name, true
		}
	}
	best, bestScore := "", 0.0
	for _, c := range cities {
		sc := cityScore(key, normalizer.CityKey(c.Name))
		if sc == 0 {
			continue
		}
		if sc > bestScore || (sc == bestScore && utf8.RuneCountInString(c.Name) < utf8.RuneCountInString(best)) {
			best, bestScore = c.Name, sc
		}
	}
	return best, bestScore > 0
}

func cityScore(query, candidate string) float64 {
	switch {
	case query == "" || candidate == "":
		return 0
	case strings.HasPrefix(candidate, query) || strings.HasPrefix(query, candidate):
		return scoreCityPrefix
	case strings.HasSuffix(candidate, query) || strings.HasSuffix(query, candidate):
		return scoreCitySuffix
	case strings.Contains(candidate, query) || strings.Contains(query, candidate):
		return scoreCityContains
	case similarity.Phonetic(normalizer.Fold(query), normalizer.Fold(candidate)):
		return scoreCityPhonetic
	case similarity.JaroWinkler(query, candidate) >= typoThreshold:
		return scoreCityTypo
	}
	return 0
}

func shortestName(cities []models.CityRecord) string {
	best := ""
	for _, c := range cities {
		if best == "" || utf8.RuneCountInString(c.Name) < utf8.RuneCountInString(best) {
			best = c.Name
		}
	}
	return best
}

// ValidatePostalCode reports whether city belongs to postalCode. Without an
// exact postal code entry the three digit region is consulted.
func (s *Store) ValidatePostalCode(ctx context.Context, postalCode, city string) (bool, error) {
	code := CanonicalPostalCode(postalCode)
	if code == "" || strings.TrimSpace(city) == "" {
		return false, nil
	}
	cities, err := s.repo.CitiesByPostalCode(ctx, code)
	if err != nil {
		return false, lookupErr("validate_postal_code", err)
	}
	if len(cities) == 0 {
		if cities, err = s.repo.CitiesByRegion(ctx, Region(postalCode)); err != nil {
			return false, lookupErr("validate_postal_code", err)
		}
	}
	for _, c := range cities {
		if cityMatches(city, c.Name) {
			return true, nil
		}
	}
	return false, nil
}

// cityMatches compares base names, ignoring qualifiers like "am Main" or "(Saale)".
func cityMatches(a, b string) bool {
	ka := normalizer.CityKey(baseCityName(a))
	kb := normalizer.CityKey(baseCityName(b))
	if ka == "" || kb == "" {
		return false
	}
	if ka == kb || strings.HasPrefix(ka, kb) || strings.HasPrefix(kb, ka) {
		return true
	}
	return similarity.Phonetic(normalizer.Fold(ka), normalizer.Fold(kb))
}

func baseCityName(city string) string {
	c := strings.TrimSpace(city)
	if i := strings.IndexAny(c, "(/,"); i > 0 {
		c = c[:i]
	}
	words := strings.Fields(c)
	for i, w := range words {
		if i > 0 && cityQualifiers[strings.ToLower(w)] {
			words = words[:i]
			break
		}
	}
	return strings.Join(words, " ")
}

// FindCityDistrict looks up the district of a street, falling back to the
// postal code wide district.
func (s *Store) FindCityDistrict(ctx context.Context, city, postalCode, street string) (string, bool, error) {
	code := CanonicalPostalCode(postalCode)
	if code == "" {
		return "", false, nil
	}
	if key := normalizer.StreetKey(street); key != "" {
		d, err := s.repo.DistrictByStreet(ctx, code, key)
		switch {
		case err == nil && districtFits(d, city):
			return d.Name, true, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return "", false, lookupErr("find_city_district", err)
		}
	}
	d, err := s.repo.DistrictByPostalCode(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, lookupErr("find_city_district", err)
	}
	if !districtFits(d, city) {
		return "", false, nil
	}
	return d.Name, true, nil
}

func districtFits(d *models.DistrictRecord, city string) bool {
	if d == nil {
		return false
	}
	if d.City == "" || strings.TrimSpace(city) == "" {
		return true
	}
	return cityMatches(city, d.City)
}

// FindStreetsByPostalCode returns the distinct current street names of a postal code.
func (s *Store) FindStreetsByPostalCode(ctx context.Context, postalCode string) ([]string, error) {
	records, err := s.GetStreetsWithDetails(ctx, postalCode)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(records))
	names := make([]string, 0, len(records))
	for _, r := range records {
		if r.CurrentName == "" || seen[r.CurrentName] {
			continue
		}
		seen[r.CurrentName] = true
		names = append(names, r.CurrentName)
	}
	return names, nil
}

// GetStreetsWithDetails returns every street record of a postal code, renames included.
func (s *Store) GetStreetsWithDetails(ctx context.Context, postalCode string) ([]models.StreetRecord, error) {
	code := CanonicalPostalCode(postalCode)
	if code == "" {
		return nil, nil
	}
	records, err := s.repo.StreetsByPostalCode(ctx, code)
	if err != nil {
		return nil, lookupErr("streets_by_postal_code", err)
	}
	return records, nil
}

// StreetExists reports whether street is a current street of postalCode.
// "Pielstr." and "Pielstraße" are the same street.
func (s *Store) StreetExists(ctx context.Context, street, postalCode string) (bool, error) {
	key := normalizer.StreetKey(street)
	if key == "" {
		return false, nil
	}
	names, err := s.FindStreetsByPostalCode(ctx, postalCode)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if normalizer.StreetKey(n) == key {
			return true, nil
		}
	}
	return false, nil
}

// FindSimilarStreet returns the best candidate scoring above the acceptance
// threshold, or street itself.
func (s *Store) FindSimilarStreet(_ context.Context, street string, candidates []string) (string, error) {
	if best, _, ok := similarity.SelectBestMatchFunc(street, candidates, normalizer.StreetKey); ok {
		return best, nil
	}
	return street, nil
}
