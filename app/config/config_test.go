package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.7, cfg.RecoveryThreshold)
	assert.False(t, cfg.StrictFieldRecovery)
	assert.Contains(t, cfg.VenueKeywords, "hotel")
	assert.Equal(t, 0.2, cfg.Penalties.PostalMismatch)
}

func TestStatus(t *testing.T) {
	cfg := Default()
	assert.Equal(t, models.StatusMatched, cfg.Status(1.0))
	assert.Equal(t, models.StatusMatched, cfg.Status(0.9))
	assert.Equal(t, models.StatusAmbiguous, cfg.Status(0.7))
	assert.Equal(t, models.StatusNeedsReview, cfg.Status(0.59))
}

func TestLoadFileKeepsDefaultsAndAppliesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrector.yaml")
	require.NoError(t, os.WriteFile(path, []byte("penalties:\n  postal_mismatch: 0.3\n"), 0o600))

	t.Setenv("STRICT_FIELD_RECOVERY", "1")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 0.3, cfg.Penalties.PostalMismatch)
	assert.Equal(t, 0.1, cfg.Penalties.StreetNotFound)
	assert.True(t, cfg.StrictFieldRecovery)
	assert.NotEmpty(t, cfg.VenueKeywords)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrector.yaml")
	require.NoError(t, os.WriteFile(path, []byte("min_raw_length: 8\nvenue_keywords: [hotel]\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MinRawLength)
	assert.Equal(t, []string{"hotel"}, cfg.VenueKeywords)

	_, err = LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
