package models

// Correction status values derived from the confidence score.
const (
	StatusMatched     = "matched"
	StatusAmbiguous   = "ambiguous"
	StatusNeedsReview = "needs_review"
)

// CorrectionResult is the corrected record plus quality information.
type CorrectionResult struct {
	AddressFields   `bson:",inline"`
	ConfidenceScore float64  `json:"confidence_score" bson:"confidence_score"`
	Flags           []string `json:"flags,omitempty" bson:"flags,omitempty"`
	Status          string   `json:"status" bson:"status"`
	Fingerprint     string   `json:"fingerprint,omitempty" bson:"fingerprint,omitempty"`
}

// Clone returns a copy that shares no slices with r.
func (r *CorrectionResult) Clone() *CorrectionResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Flags != nil {
		out.Flags = append([]string(nil), r.Flags...)
	}
	return &out
}

// HasFlag reports whether flag was raised for r.
func (r *CorrectionResult) HasFlag(flag string) bool {
	for _, f := range r.Flags {
		if f == flag {
			return true
		}
	}
	return false
}
