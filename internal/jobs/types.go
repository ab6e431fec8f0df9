package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeScan represents a recurring-payment detection scan.
	JobTypeScan JobType = "recurring_scan"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is being retried.
	JobStatusRetrying JobStatus = "retrying"
)

// ScanJob is a request to run the detection engine over one user's debit
// window. Each run recomputes groups from scratch; the job records only
// run bookkeeping and summary counters, never the groups themselves.
type ScanJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// UserID selects whose transactions to scan.
	UserID string `json:"user_id"`

	// ExportBucket, when set, receives the JSON report in GCS.
	ExportBucket string `json:"export_bucket,omitempty"`

	// ExportURI is the gs:// URI of the report once exported.
	ExportURI string `json:"export_uri,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// GroupCount and ActiveCount are filled in when the scan completes.
	GroupCount  int `json:"group_count"`
	ActiveCount int `json:"active_count"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the job failed.
	Error string `json:"error,omitempty"`

	// RetryCount is the number of times this job has been retried.
	RetryCount int `json:"retry_count"`

	// MaxRetries is the maximum number of retries allowed.
	MaxRetries int `json:"max_retries"`
}

// GetID returns the unique job identifier.
func (j *ScanJob) GetID() string {
	return j.JobID
}

// GetType returns the job type.
func (j *ScanJob) GetType() JobType {
	return JobTypeScan
}

// GetStatus returns the current job status.
func (j *ScanJob) GetStatus() JobStatus {
	return j.Status
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

// Publisher defines the interface for publishing jobs to a queue.
// The abstraction allows for different queue implementations (in-memory,
// Cloud Tasks, Pub/Sub).
type Publisher interface {
	// PublishScan publishes a detection scan job.
	PublishScan(ctx context.Context, job *ScanJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue. The handler function
	// is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler is a function that processes a job. It should return an
// error if the job failed and should be retried.
type JobHandler func(ctx context.Context, job Job) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *ScanJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID string) (*ScanJob, error)

	// ListJobs retrieves jobs with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*ScanJob, error)

	// UpdateJobStatus updates the status of a job.
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// UserID filters jobs by user.
	UserID string

	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
