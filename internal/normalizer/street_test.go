package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStreetName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Pielstraße", "Pielstr."},
		{"Pielstrasse 8", "Pielstr. 8"},
		{"Hauptstr 1", "Hauptstr. 1"},
		{"Hauptstr. 1", "Hauptstr. 1"},
		{"Straße des 17. Juni", "Str. des 17. Juni"},
		{"Marktpl. 3", "Marktplatz 3"},
		{"Pl. der Einheit", "Platz der Einheit"},
		{"Dipl.-Ing.-Müller-Weg 3", "Dipl.-Ing.-Müller-Weg 3"},
		{"Dipl. Ing. Müller Weg 3", "Dipl. Ing. Müller Weg 3"},
		{"Marktpl.", "Marktplatz"},
		{"  Am   Ring  5 ", "Am Ring 5"},
		{"Straßenbahnweg", "Straßenbahnweg"},
		{"Dieter Strödicke Pielstraße 8", "Dieter Strödicke Pielstr. 8"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeStreetName(tc.in))
		})
	}
}

func TestNormalizeStreetNameIsIdempotent(t *testing.T) {
	for _, in := range []string{"Pielstraße", "Hauptstr 1", "Marktpl.", "Karl-Marx-Strasse 12a"} {
		once := NormalizeStreetName(in)
		assert.Equal(t, once, NormalizeStreetName(once), in)
	}
}

func TestNormalizeCityName(t *testing.T) {
	assert.Equal(t, "Berlin", NormalizeCityName("Berlin-Mitte"))
	assert.Equal(t, "Paderborn", NormalizeCityName(" Paderborn "))
	assert.Equal(t, "Frankfurt", NormalizeCityName("Frankfurt - Sachsenhausen"))
	assert.Equal(t, "-Mitte", NormalizeCityName("-Mitte"))
	assert.Equal(t, "", NormalizeCityName(""))
}

func TestStreetKey(t *testing.T) {
	assert.Equal(t, "pielstr.", StreetKey("Pielstraße"))
	assert.Equal(t, StreetKey("Pielstr."), StreetKey("PIELSTRASSE"))
	assert.Equal(t, "karl marx str.", StreetKey("Karl-Marx-Straße"))
	assert.Equal(t, StreetKey("Karl Marx Str."), StreetKey("Karl-Marx-Straße"))
}

func TestExpandAbbreviations(t *testing.T) {
	variants := ExpandAbbreviations("Dr.-Otto-Str. 5")
	assert.Equal(t, "Dr.-Otto-Str. 5", variants[0])
	assert.Contains(t, variants, "Doktor -Otto-straße 5")

	assert.Equal(t, []string{"Hauptweg 1"}, ExpandAbbreviations("Hauptweg 1"))
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Hotel Adlon", StripMarkup(`&quot;Hotel Adlon&quot;`))
	assert.Equal(t, "Haus Sonne", StripMarkup("„Haus Sonne“"))
}

func TestCityKeyAndFold(t *testing.T) {
	assert.Equal(t, "munchen", CityKey("München"))
	assert.Equal(t, "giessen", CityKey("Gießen"))
	assert.Equal(t, "munchen", Fold("München"))
	assert.Equal(t, "strasse", Fold("Straße"))
}

func TestLoadRulesConfig(t *testing.T) {
	rc, err := LoadRulesConfig()
	require.NoError(t, err)
	require.NotEmpty(t, rc.Titles)
	assert.Equal(t, Rule{Abbr: "dr", Word: "Doktor"}, rc.Titles[0])

	abbrs, err := rc.compile()
	require.NoError(t, err)
	assert.Len(t, abbrs, len(rc.Titles)+len(rc.Suffixes))

	bad := &RulesConfig{Titles: []Rule{{Abbr: "dr"}}}
	_, err = bad.compile()
	assert.Error(t, err)
}
