//go:build cgo && libpostal

// Package external adapts the libpostal address parser.
package external

import (
	"strings"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/openvenues/gopostal/parser"
)

// Available reports whether libpostal was compiled in.
func Available() bool { return true }

// ParseWithLibpostal labels the parts of a raw German address. libpostal
// lowercases its output, so values are mapped back to the spelling in raw.
// ok is false when neither road nor postcode was recognised.
func ParseWithLibpostal(raw string) (fields models.AddressFields, coverage float64, ok bool) {
	comps := parser.ParseAddressOptions(raw, parser.ParserOptions{Language: "de", Country: "de"})
	covered, total := 0, len(strings.Fields(raw))
	for _, c := range comps {
		value := restoreCase(raw, c.Value)
		switch c.Label {
		case "house_number":
			fields.StreetNumber = value
		case "road":
			fields.Street = value
		case "postcode":
			fields.PostalCode = value
		case "city":
			fields.City = value
		case "city_district", "suburb":
			fields.District = value
		case "house":
			fields.Company = value
		case "unit", "level", "entrance", "staircase", "po_box":
			fields.AppendAddition(value)
		}
		covered += len(strings.Fields(c.Value))
	}
	if total > 0 {
		coverage = float64(covered) / float64(total)
	}
	return fields, coverage, fields.Street != "" || fields.PostalCode != ""
}

func restoreCase(raw, value string) string {
	if i := strings.Index(strings.ToLower(raw), value); i >= 0 && i+len(value) <= len(raw) {
		return raw[i : i+len(value)]
	}
	return value
}
