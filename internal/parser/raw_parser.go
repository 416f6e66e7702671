package parser

import (
	"regexp"
	"strings"

	"github.com/kruegge82/adressCorrector/app/models"
)

var (
	rePostalCity   = regexp.MustCompile(`^(?:D\s*-\s*)?(\d{4,5})\s+(.+)$`)
	reInlineStreet = regexp.MustCompile(`^(.+?\d+[A-Za-z]?)\s+(?:D\s*-\s*)?(\d{5})\s+(.+)$`)
	reSegmentSplit = regexp.MustCompile(`[,;\n]+`)
	reHasDigit     = regexp.MustCompile(`\d`)
)

// ParseRawAddress splits a free-form address into fields. Segments are
// separated by comma, semicolon or newline. The "12345 City" segment gives
// postal code and city, the first segment with a digit before it the street,
// everything else goes to address_addition. A leading segment without digits
// is taken as company.
func ParseRawAddress(raw string) models.AddressFields {
	var f models.AddressFields
	var segments []string
	for _, s := range reSegmentSplit.Split(raw, -1) {
		if s = cleanFragment(s); s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 1 {
		if m := reInlineStreet.FindStringSubmatch(segments[0]); m != nil {
			f.Street, f.PostalCode, f.City = m[1], m[2], m[3]
			return f
		}
	}

	postalIdx := -1
	for i, s := range segments {
		if m := rePostalCity.FindStringSubmatch(s); m != nil {
			f.PostalCode, f.City = m[1], strings.TrimSpace(m[2])
			postalIdx = i
			break
		}
	}

	for i, s := range segments {
		switch {
		case i == postalIdx:
		case f.Street == "" && (postalIdx < 0 || i < postalIdx) && reHasDigit.MatchString(s):
			f.Street = s
		case i == 0 && len(segments) > 2:
			f.Company = s
		default:
			f.AppendAddition(s)
		}
	}
	return f
}
