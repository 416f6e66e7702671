package reference

import (
	"context"
	"errors"
	"testing"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func fixture() models.Dataset {
	return models.Dataset{
		Cities: []models.CityRecord{
			{Name: "Paderborn", PostalCode: "33100"},
			{Name: "Paderborn-Elsen", PostalCode: "33100"},
			{Name: "Berlin", PostalCode: "10115"},
			{Name: "Frankfurt am Main", PostalCode: "60311"},
			{Name: "Dresden", PostalCode: "01067"},
			{Name: "München", PostalCode: "80331"},
			{Name: "Musterstadt", PostalCode: "12345"},
		},
		Streets: []models.StreetRecord{
			{CurrentName: "Pielstraße", PostalCode: "33100", Version: 1},
			{CurrentName: "Bahnhofstraße", PostalCode: "33100", Version: 1},
			{CurrentName: "Hauptstraße", PostalCode: "10115", Version: 1},
			{CurrentName: "Neue Gasse", OldName: strPtr("Alte Gasse"), PostalCode: "12345", Version: 2},
		},
		Districts: []models.DistrictRecord{
			{Name: "Altstadt", PostalCode: "12345", Street: "Neue Gasse", Version: 1},
			{Name: "Neustadt", PostalCode: "12345", Street: "Neue Gasse", Version: 3},
			{Name: "Zentrum", PostalCode: "12345", Version: 2},
			{Name: "Alt", PostalCode: "12345", Version: 5, Status: "inactive"},
			{Name: "Mitte", City: "Berlin", PostalCode: "10115", Version: 1},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewMemoryRepository(fixture()), nil, zap.NewNop())
}

func TestFindClosestCity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []struct {
		name, city, plz, want string
	}{
		{"exact case insensitive", "paderborn", "33100", "Paderborn"},
		{"prefix prefers shorter", "Pader", "33100", "Paderborn"},
		{"phonetic", "Paterborn", "33100", "Paderborn"},
		{"diacritics", "Munchen", "80331", "München"},
		{"name prefix without postal match", "Münch", "99999", "München"},
		{"unknown echoes input", "Xyzdorf", "99999", "Xyzdorf"},
		{"empty", "", "33100", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.FindClosestCity(ctx, tc.city, tc.plz)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidatePostalCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.ValidatePostalCode(ctx, "33100", "Paderborn")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.ValidatePostalCode(ctx, "60311", "Frankfurt")
	assert.True(t, ok, "compound name matches its base name")

	ok, _ = s.ValidatePostalCode(ctx, "01067", "Dresden")
	assert.True(t, ok)
	ok, _ = s.ValidatePostalCode(ctx, "1067", "Dresden")
	assert.True(t, ok, "leading zeros are insignificant")

	ok, _ = s.ValidatePostalCode(ctx, "33102", "Paderborn")
	assert.True(t, ok, "region fallback")

	ok, _ = s.ValidatePostalCode(ctx, "10115", "Potsdam")
	assert.False(t, ok)

	ok, _ = s.ValidatePostalCode(ctx, "", "Berlin")
	assert.False(t, ok)
}

func TestFindCityDistrict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	name, found, err := s.FindCityDistrict(ctx, "Musterstadt", "12345", "Neue Gasse")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Neustadt", name, "latest street version wins")

	name, found, _ = s.FindCityDistrict(ctx, "Musterstadt", "12345", "")
	assert.True(t, found)
	assert.Equal(t, "Zentrum", name, "inactive versions are skipped")

	name, found, _ = s.FindCityDistrict(ctx, "Berlin", "10115", "Hauptstr.")
	assert.True(t, found)
	assert.Equal(t, "Mitte", name)

	_, found, _ = s.FindCityDistrict(ctx, "Potsdam", "10115", "")
	assert.False(t, found, "district of another city")

	_, found, err = s.FindCityDistrict(ctx, "Paderborn", "33100", "Pielstr.")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStreetLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	names, err := s.FindStreetsByPostalCode(ctx, "33100")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pielstraße", "Bahnhofstraße"}, names)

	ok, err := s.StreetExists(ctx, "Pielstr.", "33100")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.StreetExists(ctx, "PIELSTRASSE", "33100")
	assert.True(t, ok)
	ok, _ = s.StreetExists(ctx, "Pielstr. 8", "33100")
	assert.False(t, ok)
	ok, _ = s.StreetExists(ctx, "Alte Gasse", "12345")
	assert.False(t, ok, "old names are not current streets")

	details, err := s.GetStreetsWithDetails(ctx, "12345")
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].OldName)
	assert.Equal(t, "alte gasse", details[0].OldNameKey)

	best, err := s.FindSimilarStreet(ctx, "Bahnhofstrase", names)
	require.NoError(t, err)
	assert.Equal(t, "Bahnhofstraße", best)

	best, _ = s.FindSimilarStreet(ctx, "Zzz", names)
	assert.Equal(t, "Zzz", best)
}

type brokenRepository struct{ Repository }

var errDown = errors.New("backend down")

func (brokenRepository) CitiesByPostalCode(context.Context, string) ([]models.CityRecord, error) {
	return nil, errDown
}

func (brokenRepository) StreetsByPostalCode(context.Context, string) ([]models.StreetRecord, error) {
	return nil, errDown
}

func TestStoreWrapsBackendErrors(t *testing.T) {
	s := NewStore(brokenRepository{}, nil, zap.NewNop())
	ctx := context.Background()

	_, err := s.ValidatePostalCode(ctx, "33100", "Paderborn")
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "validate_postal_code", lerr.Op)
	assert.ErrorIs(t, err, errDown)

	city, err := s.FindClosestCity(ctx, "Paderborn", "33100")
	assert.Error(t, err)
	assert.Equal(t, "Paderborn", city)

	_, err = s.StreetExists(ctx, "Pielstr.", "33100")
	assert.ErrorIs(t, err, errDown)
}

func TestPostalCodeHelpers(t *testing.T) {
	assert.Equal(t, "1067", CanonicalPostalCode(" 01067 "))
	assert.Equal(t, "01067", PaddedPostalCode("1067"))
	assert.Equal(t, "010", Region("1067"))
	assert.Equal(t, "331", Region("33100"))
	assert.Equal(t, "", CanonicalPostalCode(""))
}
