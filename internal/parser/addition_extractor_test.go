package parser

import (
	"testing"

	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractLeading(t *testing.T) {
	e := NewAdditionExtractor(config.DefaultVenueKeywords)

	cases := []struct {
		name, street, wantStreet, wantAddition string
	}{
		{"person before street", "Dieter Strödicke Pielstraße 8", "Pielstraße 8", "Dieter Strödicke"},
		{"company before street", "Müller GmbH Bahnhofweg 3", "Bahnhofweg 3", "Müller GmbH"},
		{"article is part of the name", "Am Ring 5", "Am Ring 5", ""},
		{"adjective is part of the name", "Alte Gasse 5", "Alte Gasse 5", ""},
		{"suffix in first token", "Karl-Marx-Allee 12", "Karl-Marx-Allee 12", ""},
		{"no trailing number", "Dieter Strödicke Pielstraße", "Dieter Strödicke Pielstraße", ""},
		{"abbreviated suffix", "Firma Lenz Hauptstr. 4", "Hauptstr. 4", "Firma Lenz"},
		{"suffix inside a surname", "Anna Bringmann Pielstraße 8", "Pielstraße 8", "Anna Bringmann"},
		{"suffix at start of a surname", "Karl Wegner Bahnhofstraße 3", "Bahnhofstraße 3", "Karl Wegner"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := models.AddressFields{Street: tc.street}
			phrase := e.ExtractLeading(&f)
			assert.Equal(t, tc.wantStreet, f.Street)
			assert.Equal(t, tc.wantAddition, f.AddressAddition)
			assert.Equal(t, tc.wantAddition, phrase)
		})
	}
}

func TestExtractLeadingAppendsToExistingAddition(t *testing.T) {
	e := NewAdditionExtractor(nil)
	f := models.AddressFields{Street: "Dieter Strödicke Pielstraße 8", AddressAddition: "2. OG"}
	e.ExtractLeading(&f)
	assert.Equal(t, "2. OG, Dieter Strödicke", f.AddressAddition)
}

func TestExtractVenue(t *testing.T) {
	e := NewAdditionExtractor(config.DefaultVenueKeywords)

	f := models.AddressFields{Street: "Hotel Adlon Unter den Linden 77"}
	assert.Equal(t, "Hotel Adlon Unter den Linden 77", e.ExtractVenue(&f))
	assert.Equal(t, "", f.Street)
	assert.Equal(t, "Hotel Adlon Unter den Linden 77", f.AddressAddition)

	f = models.AddressFields{Street: "&quot;Rathausstraße&quot; 4"}
	assert.Equal(t, "", e.ExtractVenue(&f))
	assert.Equal(t, "Rathausstraße 4", f.Street, "keywords inside words do not match")
}

func TestExtractVenueKeywords(t *testing.T) {
	e := NewAdditionExtractor(config.DefaultVenueKeywords)

	cases := []struct {
		street, wantStreet, wantAddition string
	}{
		{"Pielstraße 8 Hotel Krone", "Pielstraße 8", "Hotel Krone"},
		{"Pielstraße 8 Pension Sonnenblick", "Pielstraße 8", "Pension Sonnenblick"},
		{"Pielstraße 8 Landgasthof Krone", "Pielstraße 8", "Landgasthof Krone"},
		{"Pielstraße 8 Gasthof Linde", "Pielstraße 8", "Gasthof Linde"},
		{"Pielstraße 8 Gasthaus Zum Adler", "Pielstraße 8", "Gasthaus Zum Adler"},
		{"Pielstraße 8 Gaststätte Eck", "Pielstraße 8", "Gaststätte Eck"},
		{"Pielstraße 8 Restaurant Roma", "Pielstraße 8", "Restaurant Roma"},
		{"Pielstraße 8 Café Central", "Pielstraße 8", "Café Central"},
		{"Pielstraße 8 Cafe Central", "Pielstraße 8", "Cafe Central"},
		{"Pielstraße 8 Hostel Mitte", "Pielstraße 8", "Hostel Mitte"},
		{"Pielstraße 8 Ferienwohnung Ost", "Pielstraße 8", "Ferienwohnung Ost"},
		{"Pielstraße 8 Ferienhaus Heide", "Pielstraße 8", "Ferienhaus Heide"},
		{"Pielstraße 8 Brauerei Keller", "Pielstraße 8", "Brauerei Keller"},
		{"Pielstraße 8 Klinik am Park", "Pielstraße 8", "Klinik am Park"},
		{"Pielstraße 8 Praxis Dr. Wolf", "Pielstraße 8", "Praxis Dr. Wolf"},
		{"Pielstraße 8 Apotheke am Markt", "Pielstraße 8", "Apotheke am Markt"},
		{"Pielstraße 8 Kanzlei Braun", "Pielstraße 8", "Kanzlei Braun"},
		{"Pielstraße 8 Autohaus Schmidt", "Pielstraße 8", "Autohaus Schmidt"},
		{"Pielstraße 8, Hinterhaus", "Pielstraße 8, Hinterhaus", ""},
	}
	for _, tc := range cases {
		t.Run(tc.street, func(t *testing.T) {
			f := models.AddressFields{Street: tc.street}
			assert.Equal(t, tc.wantAddition, e.ExtractVenue(&f))
			assert.Equal(t, tc.wantStreet, f.Street)
			assert.Equal(t, tc.wantAddition, f.AddressAddition)
		})
	}
}
