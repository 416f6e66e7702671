package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kruegge82/adressCorrector/app/bootstrap"
	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/app/services"
	"github.com/kruegge82/adressCorrector/internal/parser"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testApp() *bootstrap.App {
	data := models.Dataset{
		Cities:  []models.CityRecord{{Name: "Berlin", PostalCode: "10115"}},
		Streets: []models.StreetRecord{{CurrentName: "Hauptstraße", PostalCode: "10115", Version: 1}},
		Districts: []models.DistrictRecord{
			{Name: "Mitte", City: "Berlin", PostalCode: "10115", Version: 1},
		},
	}
	cfg := config.Default()
	store := reference.NewStore(reference.NewMemoryRepository(data), nil, zap.NewNop())
	return &bootstrap.App{
		Corrections: services.NewCorrectionService(parser.NewPipeline(store, cfg, zap.NewNop()), nil, cfg, zap.NewNop()),
	}
}

func TestRunBatch(t *testing.T) {
	in := strings.Join([]string{
		`{"street":"Hauptstr 1","postal_code":"10115","city":"Berlin"}`,
		``,
		`"Hauptstr 1, 10115 Berlin-Mitte"`,
		`{not json`,
		`"A 1"`,
	}, "\n")
	var out bytes.Buffer

	stats, err := runBatch(context.Background(), testApp(), strings.NewReader(in), &out)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.processed)
	assert.Equal(t, 2, stats.failed)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	var first models.CorrectionResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Hauptstr.", first.Street)
	assert.Equal(t, "Berlin", first.City)

	var second models.CorrectionResult
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "10115", second.PostalCode)
	assert.Equal(t, "Mitte", second.District)

	var bad batchError
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &bad))
	assert.Equal(t, 4, bad.Line)
	assert.Contains(t, bad.Error, "invalid JSON object")

	require.NoError(t, json.Unmarshal([]byte(lines[3]), &bad))
	assert.Equal(t, 5, bad.Line)
}

func TestRunBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := runBatch(ctx, testApp(), strings.NewReader(`"Hauptstr 1, 10115 Berlin"`), &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func TestCorrectCommandRequiresInput(t *testing.T) {
	configFile := ""
	cmd := correctCmd(&configFile)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw address")
}

func TestSeedCommandRequiresFile(t *testing.T) {
	configFile := ""
	cmd := seedCmd(&configFile)
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}
