package controllers

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/app/requests"
	"github.com/kruegge82/adressCorrector/app/responses"
	"github.com/kruegge82/adressCorrector/app/services"
	"github.com/kruegge82/adressCorrector/helpers/utils"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// DefaultRequestTimeout bounds a single correction when no timeout is configured.
const DefaultRequestTimeout = 1500 * time.Millisecond

// HealthCheck probes one backend.
type HealthCheck func(ctx context.Context) error

// AddressController serves the correction endpoints.
type AddressController struct {
	corrections *services.CorrectionService
	jobs        *services.JobService
	checks      map[string]HealthCheck
	timeout     time.Duration
	logger      *zap.Logger
	startTime   time.Time
}

// NewAddressController creates an AddressController. checks may be nil; a
// non-positive timeout means DefaultRequestTimeout.
func NewAddressController(corrections *services.CorrectionService, jobs *services.JobService, checks map[string]HealthCheck, timeout time.Duration, logger *zap.Logger) *AddressController {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &AddressController{
		corrections: corrections,
		jobs:        jobs,
		checks:      checks,
		timeout:     timeout,
		logger:      logger,
		startTime:   time.Now(),
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, responses.NewErrorResponse(code, message, c.GetString(RequestIDKey)))
}

// Correct corrects one structured record.
func (ac *AddressController) Correct(c *gin.Context) {
	var req requests.CorrectAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ac.timeout)
	defer cancel()

	start := time.Now()
	result, cacheHit, err := ac.corrections.Correct(ctx, req.AddressFields)
	if err != nil {
		ac.handleCorrectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.CorrectAddressResponse{
		Result:           result,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		CacheHit:         cacheHit,
	})
}

// Parse splits a single address line into fields and corrects them.
func (ac *AddressController) Parse(c *gin.Context) {
	var req requests.ParseAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	parsed, err := ac.corrections.ParseRaw(req.Address)
	if err != nil {
		ac.handleCorrectionError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ac.timeout)
	defer cancel()

	start := time.Now()
	result, cacheHit, err := ac.corrections.Correct(ctx, parsed)
	if err != nil {
		ac.handleCorrectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.CorrectAddressResponse{
		Result:           result,
		Parsed:           &parsed,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		CacheHit:         cacheHit,
	})
}

// Batch corrects up to 1000 records synchronously.
func (ac *AddressController) Batch(c *gin.Context) {
	var req requests.BatchCorrectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	start := time.Now()
	results, err := ac.corrections.CorrectBatch(c.Request.Context(), req.Addresses)
	if err != nil {
		ac.handleCorrectionError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.BatchCorrectResponse{
		Results:          results,
		Total:            len(results),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// SubmitJob queues a large batch for background processing.
func (ac *AddressController) SubmitJob(c *gin.Context) {
	var req requests.SubmitJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request: "+err.Error())
		return
	}

	jobID := ac.jobs.Submit(req.Addresses)
	c.JSON(http.StatusAccepted, responses.SubmitJobResponse{
		JobID:          jobID,
		TotalAddresses: len(req.Addresses),
		Message:        "job accepted",
	})
}

func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID, ok := ac.jobID(c)
	if !ok {
		return
	}

	status, err := ac.jobs.Status(jobID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", err.Error())
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetJobResults returns the results of a finished job as JSON, or as NDJSON
// with ?format=ndjson (optionally gzip compressed with &gzip=1).
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID, ok := ac.jobID(c)
	if !ok {
		return
	}

	results, done, err := ac.jobs.Results(jobID)
	if err != nil {
		abortWithError(c, http.StatusNotFound, "JOB_NOT_FOUND", err.Error())
		return
	}
	if !done {
		abortWithError(c, http.StatusConflict, "JOB_NOT_FINISHED", "job is still running")
		return
	}

	if c.Query("format") == "ndjson" {
		ac.streamNDJSON(c, results, c.Query("gzip") == "1")
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   "job results",
		Data:      results,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (ac *AddressController) jobID(c *gin.Context) (string, bool) {
	jobID := c.Param("jobID")
	if !utils.IsValidUUID(jobID) {
		abortWithError(c, http.StatusBadRequest, "INVALID_JOB_ID", "job id must be a UUID")
		return "", false
	}
	return jobID, true
}

// HealthCheck reports degraded when any backend probe fails.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	checked := map[string]string{"corrector": "healthy"}
	for name, check := range ac.checks {
		if err := check(ctx); err != nil {
			ac.logger.Warn("health check failed", zap.String("service", name), zap.Error(err))
			checked[name] = "unhealthy: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checked[name] = "healthy"
	}

	c.JSON(code, responses.HealthCheckResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(ac.startTime).Round(time.Second).String(),
		Version:   Version,
		Services:  checked,
	})
}

func (ac *AddressController) handleCorrectionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyAddress), errors.Is(err, services.ErrAddressTooShort):
		abortWithError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, services.ErrBatchTooLarge):
		abortWithError(c, http.StatusBadRequest, "TOO_MANY_ADDRESSES", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		abortWithError(c, http.StatusGatewayTimeout, "TIMEOUT", "correction timed out")
	case errors.Is(err, context.Canceled):
		abortWithError(c, 499, "CANCELLED", "request cancelled")
	default:
		ac.logger.Error("correction failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "CORRECTION_ERROR", err.Error())
	}
}

func (ac *AddressController) streamNDJSON(c *gin.Context, results []*models.CorrectionResult, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
	}
	c.Status(http.StatusOK)

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}

	encoder := json.NewEncoder(writer)
	for _, result := range results {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("cannot encode ndjson line", zap.Error(err))
			return
		}
		writer.Flush()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) Flush() {
	_ = w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}
