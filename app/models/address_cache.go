package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCache is the persisted form of a cached correction.
type AddressCache struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Fingerprint  string             `bson:"fingerprint" json:"fingerprint"`
	Result       CorrectionResult   `bson:"result" json:"result"`
	Confidence   float64            `bson:"confidence" json:"confidence"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	LastAccessed time.Time          `bson:"last_accessed" json:"last_accessed"`
	AccessCount  int                `bson:"access_count" json:"access_count"`
}

// NewAddressCache wraps result for storage under fingerprint.
func NewAddressCache(fingerprint string, result CorrectionResult) *AddressCache {
	now := time.Now()
	return &AddressCache{
		Fingerprint:  fingerprint,
		Result:       result,
		Confidence:   result.ConfidenceScore,
		Status:       result.Status,
		CreatedAt:    now,
		LastAccessed: now,
		AccessCount:  1,
	}
}

// IsExpired reports whether the entry is older than ttl. A zero ttl never expires.
func (ac *AddressCache) IsExpired(ttl time.Duration) bool {
	return ttl > 0 && time.Since(ac.CreatedAt) > ttl
}
