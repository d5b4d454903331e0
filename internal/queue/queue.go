package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobType defines the type of job
type JobType string

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Job represents a background job
type Job struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Type       JobType         `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Status     JobStatus       `json:"status"`
	RetryCount int             `json:"retry_count" gorm:"default:0"`
	MaxRetries int             `json:"max_retries" gorm:"default:3"`
	NextRetry  *time.Time      `json:"next_retry,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Error      string          `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// JobHandler is a function that processes a job
type JobHandler func(ctx context.Context, job Job) (interface{}, error)

// QueueInterface defines the interface for job queue operations
type QueueInterface interface {
	RegisterHandler(jobType JobType, handler JobHandler)
	EnqueueJob(jobType JobType, payload interface{}) (string, error)
}

// Queue is a database-backed job queue. Jobs survive restarts; failed jobs
// retry with exponential backoff up to MaxRetries.
type Queue struct {
	db       *gorm.DB
	handlers map[JobType]JobHandler
	quit     chan struct{}
}

// NewQueue creates a new queue
func NewQueue(db *gorm.DB) *Queue {
	return &Queue{
		db:       db,
		handlers: make(map[JobType]JobHandler),
		quit:     make(chan struct{}),
	}
}

// RegisterHandler registers a handler for a job type
func (q *Queue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.handlers[jobType] = handler
}

// EnqueueJob adds a job to the queue
func (q *Queue) EnqueueJob(jobType JobType, payload interface{}) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := Job{
		ID:        uuid.New(),
		Type:      jobType,
		Payload:   payloadBytes,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := q.db.Create(&job).Error; err != nil {
		return "", err
	}

	return job.ID.String(), nil
}

// GetJob retrieves a job by ID
func (q *Queue) GetJob(id string) (*Job, error) {
	var job Job
	if err := q.db.Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// ProcessJobs polls for pending jobs and runs their handlers until Stop is called
func (q *Queue) ProcessJobs() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-q.quit:
			return
		case <-ticker.C:
			q.processPending()
		}
	}
}

// Stop stops the processing loop
func (q *Queue) Stop() {
	close(q.quit)
}

// processPending runs one batch of due jobs
func (q *Queue) processPending() {
	var jobs []Job
	now := time.Now()
	err := q.db.Where("status = ? AND (next_retry IS NULL OR next_retry <= ?)", JobStatusPending, now).
		Order("created_at").
		Limit(10).
		Find(&jobs).Error
	if err != nil {
		log.Printf("Error fetching pending jobs: %v", err)
		return
	}

	for _, job := range jobs {
		q.runJob(job)
	}
}

// runJob executes a single job and records the result
func (q *Queue) runJob(job Job) {
	handler, ok := q.handlers[job.Type]
	if !ok {
		log.Printf("No handler registered for job type %s", job.Type)
		q.db.Model(&job).Updates(map[string]interface{}{
			"status": JobStatusFailed,
			"error":  "no handler registered",
		})
		return
	}

	if err := q.db.Model(&job).Update("status", JobStatusProcessing).Error; err != nil {
		log.Printf("Error marking job %s as processing: %v", job.ID, err)
		return
	}

	result, err := handler(context.Background(), job)
	if err != nil {
		q.failJob(job, err)
		return
	}

	resultBytes, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		resultBytes = nil
	}
	if err := q.db.Model(&job).Updates(map[string]interface{}{
		"status": JobStatusCompleted,
		"result": resultBytes,
		"error":  "",
	}).Error; err != nil {
		log.Printf("Error marking job %s as completed: %v", job.ID, err)
	}
}

// failJob records a failure and schedules a retry with exponential backoff
func (q *Queue) failJob(job Job, jobErr error) {
	retryCount := job.RetryCount + 1

	if retryCount > job.MaxRetries {
		if err := q.db.Model(&job).Updates(map[string]interface{}{
			"status":      JobStatusFailed,
			"retry_count": retryCount,
			"error":       jobErr.Error(),
		}).Error; err != nil {
			log.Printf("Error marking job %s as failed: %v", job.ID, err)
		}
		return
	}

	nextRetry := time.Now().Add(RetryBackoff(retryCount))
	if err := q.db.Model(&job).Updates(map[string]interface{}{
		"status":      JobStatusPending,
		"retry_count": retryCount,
		"next_retry":  nextRetry,
		"error":       jobErr.Error(),
	}).Error; err != nil {
		log.Printf("Error scheduling retry for job %s: %v", job.ID, err)
	}
}

// RetryBackoff returns the delay before the given retry attempt
func RetryBackoff(retryCount int) time.Duration {
	if retryCount < 1 {
		retryCount = 1
	}
	delay := time.Duration(1<<uint(retryCount-1)) * 30 * time.Second
	if delay > 30*time.Minute {
		delay = 30 * time.Minute
	}
	return delay
}
