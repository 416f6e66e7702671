package reference

import (
	"strings"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/internal/normalizer"
)

// CanonicalPostalCode strips surrounding space and leading zeros ("01067" -> "1067").
func CanonicalPostalCode(code string) string {
	c := strings.TrimLeft(strings.TrimSpace(code), "0")
	if c == "" && strings.TrimSpace(code) != "" {
		return "0"
	}
	return c
}

// PaddedPostalCode left pads a canonical code to five digits.
func PaddedPostalCode(code string) string {
	c := CanonicalPostalCode(code)
	if c == "" {
		return ""
	}
	if n := len(c); n < 5 {
		c = strings.Repeat("0", 5-n) + c
	}
	return c
}

// Region is the three digit postal region of a code.
func Region(code string) string {
	p := PaddedPostalCode(code)
	if len(p) < 3 {
		return p
	}
	return p[:3]
}

// Prepare fills derived fields (canonical codes, keys, regions) of every record.
func Prepare(data models.Dataset) models.Dataset {
	out := models.Dataset{
		Cities:    make([]models.CityRecord, len(data.Cities)),
		Streets:   make([]models.StreetRecord, len(data.Streets)),
		Districts: make([]models.DistrictRecord, len(data.Districts)),
	}
	for i, c := range data.Cities {
		c.Name = strings.TrimSpace(c.Name)
		c.Region = Region(c.PostalCode)
		c.PostalCode = CanonicalPostalCode(c.PostalCode)
		c.NormalizedName = normalizer.Fold(c.Name)
		out.Cities[i] = c
	}
	for i, s := range data.Streets {
		s.CurrentName = strings.TrimSpace(s.CurrentName)
		s.PostalCode = CanonicalPostalCode(s.PostalCode)
		s.NameKey = normalizer.StreetKey(s.CurrentName)
		s.OldNameKey = ""
		if s.OldName != nil && strings.TrimSpace(*s.OldName) != "" {
			s.OldNameKey = normalizer.StreetKey(*s.OldName)
		} else {
			s.OldName = nil
		}
		if s.Status == "" {
			s.Status = "active"
		}
		out.Streets[i] = s
	}
	for i, d := range data.Districts {
		d.PostalCode = CanonicalPostalCode(d.PostalCode)
		d.StreetKey = ""
		if strings.TrimSpace(d.Street) != "" {
			d.StreetKey = normalizer.StreetKey(d.Street)
		}
		if d.Status == "" {
			d.Status = "active"
		}
		out.Districts[i] = d
	}
	return out
}
