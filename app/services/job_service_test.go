package services

import (
	"testing"
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJobServiceRunsBatchInBackground(t *testing.T) {
	f := newFixture(t)
	jobs := NewJobService(f.service, time.Hour, zap.NewNop())

	id := jobs.Submit([]models.AddressFields{
		{Street: "Hauptstr 1", PostalCode: "10115", City: "Berlin"},
		{Street: "Pielstraße 8", PostalCode: "33100", City: "Paderborn"},
	})
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		st, err := jobs.Status(id)
		return err == nil && st.Status == JobDone
	}, 2*time.Second, 10*time.Millisecond)

	st, err := jobs.Status(id)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Processed)
	assert.Equal(t, 2, st.Total)
	assert.InDelta(t, 1.0, st.Progress, 1e-9)

	results, ok, err := jobs.Results(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, results, 2)
	assert.Equal(t, "Hauptstr.", results[0].Street)
	assert.Equal(t, "Pielstr.", results[1].Street)
}

func TestJobServiceUnknownJob(t *testing.T) {
	f := newFixture(t)
	jobs := NewJobService(f.service, time.Hour, zap.NewNop())

	_, err := jobs.Status("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, _, err = jobs.Results("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestJobServiceEvictsFinishedJobs(t *testing.T) {
	f := newFixture(t)
	jobs := NewJobService(f.service, time.Millisecond, zap.NewNop())

	old := jobs.Submit([]models.AddressFields{{Street: "Pielstraße 8", PostalCode: "33100"}})
	require.Eventually(t, func() bool {
		st, err := jobs.Status(old)
		return err == nil && st.Status == JobDone
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(5 * time.Millisecond)
	jobs.Submit(nil)

	_, err := jobs.Status(old)
	assert.ErrorIs(t, err, ErrJobNotFound)
}
