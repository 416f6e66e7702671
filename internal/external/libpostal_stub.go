//go:build !cgo || !libpostal

package external

import "github.com/kruegge82/adressCorrector/app/models"

// Available reports whether libpostal was compiled in.
func Available() bool { return false }

// ParseWithLibpostal is unavailable in this build; callers fall back to the regex parser.
func ParseWithLibpostal(string) (models.AddressFields, float64, bool) {
	return models.AddressFields{}, 0, false
}
