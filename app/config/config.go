package config

import (
	"fmt"
	"os"

	"github.com/kruegge82/adressCorrector/app/models"
	"gopkg.in/yaml.v3"
)

// Thresholds map a confidence score to a status.
type Thresholds struct {
	High      float64 `yaml:"high" json:"high"`
	ReviewLow float64 `yaml:"review_low" json:"review_low"`
}

// Penalties are the confidence adjustments applied by the pipeline.
type Penalties struct {
	StreetNotFound     float64 `yaml:"street_not_found" json:"street_not_found"`
	RenameCompensation float64 `yaml:"rename_compensation" json:"rename_compensation"`
	FuzzyFactor        float64 `yaml:"fuzzy_factor" json:"fuzzy_factor"`
	PostalMismatch     float64 `yaml:"postal_mismatch" json:"postal_mismatch"`
	DistrictMissing    float64 `yaml:"district_missing" json:"district_missing"`
}

// CorrectorCfg tunes the correction pipeline.
type CorrectorCfg struct {
	RecoveryThreshold   float64    `yaml:"recovery_threshold" json:"recovery_threshold"`
	StrictFieldRecovery bool       `yaml:"strict_field_recovery" json:"strict_field_recovery"`
	MinRawLength        int        `yaml:"min_raw_length" json:"min_raw_length"`
	MaxBatchSize        int        `yaml:"max_batch_size" json:"max_batch_size"`
	VenueKeywords       []string   `yaml:"venue_keywords" json:"venue_keywords"`
	Penalties           Penalties  `yaml:"penalties" json:"penalties"`
	Thresholds          Thresholds `yaml:"thresholds" json:"thresholds"`
}

// DefaultVenueKeywords start the venue part of a street field ("Hotel Adlon Unter den Linden 77").
var DefaultVenueKeywords = []string{
	"hotel", "pension", "landgasthof", "gasthof", "gasthaus", "gaststätte",
	"restaurant", "café", "cafe", "hostel", "ferienwohnung", "ferienhaus",
	"brauerei", "klinik", "praxis", "apotheke", "kanzlei", "autohaus",
}

// Default returns the built-in tuning.
func Default() CorrectorCfg {
	return CorrectorCfg{
		RecoveryThreshold: 0.7,
		MinRawLength:      5,
		MaxBatchSize:      1000,
		VenueKeywords:     append([]string(nil), DefaultVenueKeywords...),
		Penalties: Penalties{
			StreetNotFound:     0.1,
			RenameCompensation: 0.1,
			FuzzyFactor:        0.3,
			PostalMismatch:     0.2,
			DistrictMissing:    0.1,
		},
		Thresholds: Thresholds{High: 0.9, ReviewLow: 0.6},
	}
}

// LoadFile reads tuning from path over the defaults. Environment variables
// override the file.
func LoadFile(path string) (CorrectorCfg, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read corrector config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse corrector config %s: %w", path, err)
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv applies STRICT_FIELD_RECOVERY=0|1 to cfg.
func ApplyEnv(cfg *CorrectorCfg) {
	switch os.Getenv("STRICT_FIELD_RECOVERY") {
	case "0", "false":
		cfg.StrictFieldRecovery = false
	case "1", "true":
		cfg.StrictFieldRecovery = true
	}
}

// Status maps a confidence score to matched, ambiguous or needs_review.
func (c CorrectorCfg) Status(score float64) string {
	switch {
	case score >= c.Thresholds.High:
		return models.StatusMatched
	case score >= c.Thresholds.ReviewLow:
		return models.StatusAmbiguous
	default:
		return models.StatusNeedsReview
	}
}
