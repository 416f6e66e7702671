package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kruegge82/adressCorrector/app/models"
	"go.uber.org/zap"
)

// Job states.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

var ErrJobNotFound = errors.New("job not found")

// JobStatus is the progress of a background batch.
type JobStatus struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Processed int       `json:"processed"`
	Total     int       `json:"total"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobService runs batches in the background and keeps their results until
// they are older than retention.
type JobService struct {
	corrector Corrector
	retention time.Duration
	logger    *zap.Logger

	mu      sync.RWMutex
	jobs    map[string]*JobStatus
	results map[string][]*models.CorrectionResult
}

// NewJobService creates a JobService.
func NewJobService(corrector Corrector, retention time.Duration, logger *zap.Logger) *JobService {
	if retention <= 0 {
		retention = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{
		corrector: corrector,
		retention: retention,
		logger:    logger,
		jobs:      make(map[string]*JobStatus),
		results:   make(map[string][]*models.CorrectionResult),
	}
}

// Submit queues records and returns the job id. The job outlives the
// request context.
func (js *JobService) Submit(records []models.AddressFields) string {
	jobID := uuid.NewString()
	now := time.Now()

	js.mu.Lock()
	js.evictExpired(now)
	js.jobs[jobID] = &JobStatus{
		JobID:     jobID,
		Status:    JobQueued,
		Total:     len(records),
		CreatedAt: now,
		UpdatedAt: now,
	}
	js.mu.Unlock()

	go js.run(jobID, records)
	return jobID
}

func (js *JobService) run(jobID string, records []models.AddressFields) {
	ctx := context.Background()
	js.update(jobID, func(j *JobStatus) { j.Status = JobRunning })

	results := make([]*models.CorrectionResult, 0, len(records))
	for i, rec := range records {
		result, _, err := js.corrector.Correct(ctx, rec)
		if err != nil {
			js.update(jobID, func(j *JobStatus) {
				j.Status = JobFailed
				j.Message = err.Error()
			})
			js.logger.Error("batch job failed", zap.String("job_id", jobID), zap.Error(err))
			return
		}
		results = append(results, result)

		processed := i + 1
		js.update(jobID, func(j *JobStatus) {
			j.Processed = processed
			j.Progress = float64(processed) / float64(len(records))
		})
	}

	js.mu.Lock()
	js.results[jobID] = results
	if j, ok := js.jobs[jobID]; ok {
		j.Status = JobDone
		j.Progress = 1
		j.UpdatedAt = time.Now()
	}
	js.mu.Unlock()

	js.logger.Info("batch job completed",
		zap.String("job_id", jobID),
		zap.Int("total", len(records)))
}

func (js *JobService) update(jobID string, fn func(*JobStatus)) {
	js.mu.Lock()
	defer js.mu.Unlock()
	if j, ok := js.jobs[jobID]; ok {
		fn(j)
		j.UpdatedAt = time.Now()
	}
}

// Status returns a snapshot of the job.
func (js *JobService) Status(jobID string) (JobStatus, error) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	j, ok := js.jobs[jobID]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return *j, nil
}

// Results returns the results of a finished job. ok is false while it runs.
func (js *JobService) Results(jobID string) (results []*models.CorrectionResult, ok bool, err error) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	if _, exists := js.jobs[jobID]; !exists {
		return nil, false, ErrJobNotFound
	}
	results, ok = js.results[jobID]
	return results, ok, nil
}

// evictExpired drops finished jobs older than retention. Callers hold mu.
func (js *JobService) evictExpired(now time.Time) {
	for id, j := range js.jobs {
		finished := j.Status == JobDone || j.Status == JobFailed
		if finished && now.Sub(j.UpdatedAt) > js.retention {
			delete(js.jobs, id)
			delete(js.results, id)
		}
	}
}
