package responses

import (
	"time"

	"github.com/kruegge82/adressCorrector/app/models"
)

// CorrectAddressResponse is the answer to a single correction.
type CorrectAddressResponse struct {
	Result           *models.CorrectionResult `json:"result"`
	Parsed           *models.AddressFields    `json:"parsed,omitempty"`
	ProcessingTimeMs int64                    `json:"processing_time_ms"`
	CacheHit         bool                     `json:"cache_hit"`
}

// BatchCorrectResponse holds one result per submitted record, in order.
type BatchCorrectResponse struct {
	Results          []*models.CorrectionResult `json:"results"`
	Total            int                        `json:"total"`
	ProcessingTimeMs int64                      `json:"processing_time_ms"`
}

// SubmitJobResponse is returned when a background job was accepted.
type SubmitJobResponse struct {
	JobID          string `json:"job_id"`
	TotalAddresses int    `json:"total_addresses"`
	Message        string `json:"message"`
}

// SeedReferenceResponse reports a reference reload or its dry run.
type SeedReferenceResponse struct {
	ValidationPassed bool     `json:"validation_passed"`
	Errors           []string `json:"errors,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
	Cities           int      `json:"cities,omitempty"`
	Streets          int      `json:"streets,omitempty"`
	Districts        int      `json:"districts,omitempty"`
	Indexed          bool     `json:"indexed"`
	ProcessingTimeMs int64    `json:"processing_time_ms,omitempty"`
	DryRun           bool     `json:"dry_run"`
	Message          string   `json:"message"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// NewErrorResponse stamps an ErrorResponse with the current time.
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
		RequestID: requestID,
	}
}

type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse reports the state of the service and its backends.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
