package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random (version 4) UUID.
func GenerateUUID() string {
	return uuid.NewString()
}

// GenerateShortID returns the first 8 hex characters of a random UUID.
func GenerateShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
