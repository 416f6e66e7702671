package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks ("München" -> "Munchen").
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Fold transliterates s to lowercase ASCII. Used for search keys and phonetic codes.
func Fold(s string) string {
	s = strings.ReplaceAll(s, "ß", "ss")
	return strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
}

// CityKey is the comparison key for city names: lowercase, ß expanded, diacritics stripped.
func CityKey(city string) string {
	city = strings.ReplaceAll(strings.TrimSpace(city), "ß", "ss")
	return strings.ToLower(collapseSpaces(StripDiacritics(city)))
}
