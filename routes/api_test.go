package routes

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/config"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/app/responses"
	"github.com/kruegge82/adressCorrector/app/services"
	"github.com/kruegge82/adressCorrector/internal/parser"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T, opts Options, checks map[string]controllers.HealthCheck) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	repo := reference.NewMemoryRepository(models.Dataset{
		Cities: []models.CityRecord{
			{Name: "Paderborn", PostalCode: "33100"},
			{Name: "Berlin", PostalCode: "10115"},
		},
		Streets: []models.StreetRecord{
			{CurrentName: "Pielstraße", PostalCode: "33100", Version: 1},
			{CurrentName: "Hauptstraße", PostalCode: "10115", Version: 1},
		},
		Districts: []models.DistrictRecord{
			{Name: "Mitte", City: "Berlin", PostalCode: "10115", Version: 1},
		},
	})
	store := reference.NewStore(repo, nil, zap.NewNop())
	cache := services.NewMemoryCacheService(100, time.Hour, zap.NewNop())
	corrections := services.NewCorrectionService(parser.NewPipeline(store, cfg, zap.NewNop()), cache, cfg, zap.NewNop())
	jobs := services.NewJobService(corrections, time.Hour, zap.NewNop())
	admin := services.NewAdminService(corrections, repo, nil, zap.NewNop())

	router := gin.New()
	SetupAllRoutes(router,
		controllers.NewAddressController(corrections, jobs, checks, 0, zap.NewNop()),
		controllers.NewAdminController(admin, zap.NewNop()),
		opts)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCorrectEndpoint(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/correct",
		`{"street":"Hauptstr 1","postal_code":"10115","city":"Berlin-Mitte"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp responses.CorrectAddressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hauptstr.", resp.Result.Street)
	assert.Equal(t, "1", resp.Result.StreetNumber)
	assert.Equal(t, "Berlin", resp.Result.City)
	assert.Equal(t, "Mitte", resp.Result.District)
	assert.False(t, resp.CacheHit)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(router, http.MethodPost, "/v1/addresses/correct",
		`{"street":"Hauptstr 1","postal_code":"10115","city":"Berlin-Mitte"}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.CacheHit)
}

func TestCorrectEndpointRejectsMalformedJSON(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/correct", `{"street":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestParseEndpoint(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/parse", `{"address":"Pielstraße 8, 33100 Paderborn"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp responses.CorrectAddressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Parsed)
	assert.Equal(t, "Pielstraße 8", resp.Parsed.Street)
	assert.Equal(t, "Pielstr.", resp.Result.Street)
	assert.Equal(t, "8", resp.Result.StreetNumber)

	w = do(router, http.MethodPost, "/v1/addresses/parse", `{"address":"ab"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "INVALID_INPUT", errResp.Error)

	w = do(router, http.MethodPost, "/v1/addresses/parse", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/batch", `{"addresses":[
		{"street":"Hauptstr 1","postal_code":"10115","city":"Berlin"},
		{},
		{"street":"Pielstraße 8","postal_code":"33100","city":"Paderborn"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp responses.BatchCorrectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Hauptstr.", resp.Results[0].Street)
	assert.Equal(t, "Pielstr.", resp.Results[2].Street)

	w = do(router, http.MethodPost, "/v1/addresses/batch", `{"addresses":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var big bytes.Buffer
	big.WriteString(`{"addresses":[`)
	for i := 0; i < 1001; i++ {
		if i > 0 {
			big.WriteString(",")
		}
		big.WriteString(`{"street":"Pielstraße 8"}`)
	}
	big.WriteString(`]}`)
	w = do(router, http.MethodPost, "/v1/addresses/batch", big.String())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobEndpoints(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/jobs", `{"addresses":[
		{"street":"Hauptstr 1","postal_code":"10115","city":"Berlin"},
		{"street":"Pielstraße 8","postal_code":"33100","city":"Paderborn"}]}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var submitted responses.SubmitJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.NotEmpty(t, submitted.JobID)

	require.Eventually(t, func() bool {
		w := do(router, http.MethodGet, "/v1/addresses/jobs/"+submitted.JobID+"/status", "")
		var st services.JobStatus
		return w.Code == http.StatusOK && json.Unmarshal(w.Body.Bytes(), &st) == nil && st.Status == services.JobDone
	}, 2*time.Second, 10*time.Millisecond)

	w = do(router, http.MethodGet, "/v1/addresses/jobs/"+submitted.JobID+"/results?format=ndjson&gzip=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	var first models.CorrectionResult
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "Hauptstr.", first.Street)

	w = do(router, http.MethodGet, "/v1/addresses/jobs/not-a-uuid/status", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/v1/addresses/jobs/6f1c1c36-3c38-4b43-9a43-2b0f4a1c2d11/status", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminEndpoints(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodPost, "/v1/addresses/correct", `{"street":"Pielstraße 8","postal_code":"33100"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var corrected responses.CorrectAddressResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &corrected))

	w = do(router, http.MethodGet, "/v1/admin/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.SystemStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Service.Processed)
	require.NotNil(t, stats.Cache)
	assert.EqualValues(t, 1, stats.Cache.TotalItems)

	w = do(router, http.MethodDelete, "/v1/admin/cache/"+corrected.Result.Fingerprint, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/v1/admin/cache/clear", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/v1/admin/reference/seed?dry_run=true",
		`{"data":{"cities":[{"name":"Musterstadt","postal_code":"1234X"}]}}`)
	require.Equal(t, http.StatusOK, w.Code)
	var dry responses.SeedReferenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dry))
	assert.True(t, dry.DryRun)
	assert.False(t, dry.ValidationPassed)

	w = do(router, http.MethodPost, "/v1/admin/reference/seed",
		`{"data":{"cities":[{"name":"Musterstadt","postal_code":"12345"}],
		"streets":[{"current_name":"Lindenweg","postal_code":"12345","version":1}]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var seeded responses.SeedReferenceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &seeded))
	assert.Equal(t, 1, seeded.Cities)
	assert.Equal(t, 1, seeded.Streets)
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t, Options{}, map[string]controllers.HealthCheck{
		"redis": func(context.Context) error { return nil },
	})

	for _, path := range []string{"/health", "/v1/health", "/ready"} {
		w := do(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var resp responses.HealthCheckResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "healthy", resp.Services["redis"])
	}

	degraded := testRouter(t, Options{}, map[string]controllers.HealthCheck{
		"mongo": func(context.Context) error { return errors.New("no reachable servers") },
	})
	w := do(degraded, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNoRoute(t *testing.T) {
	router := testRouter(t, Options{}, nil)

	w := do(router, http.MethodGet, "/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp responses.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error)
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := testRouter(t, Options{}, nil)
	id := "6f1c1c36-3c38-4b43-9a43-2b0f4a1c2d11"

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", id)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	router := testRouter(t, Options{RateLimit: 1, Burst: 2}, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(router, http.MethodGet, "/live", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
