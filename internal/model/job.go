package model

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// JobStatus is the lifecycle state of an AI extraction job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusAnalyzing  JobStatus = "analyzing"
	JobStatusExtracting JobStatus = "extracting"
	JobStatusUploading  JobStatus = "uploading"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// JobTransitions is the allowed status edge table for processing jobs.
// failed is reachable from every active state; completed and failed are
// terminal (retries create new jobs rather than reviving old ones).
var JobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusAnalyzing, JobStatusFailed},
	JobStatusAnalyzing:  {JobStatusExtracting, JobStatusFailed},
	JobStatusExtracting: {JobStatusUploading, JobStatusFailed},
	JobStatusUploading:  {JobStatusCompleted, JobStatusFailed},
	JobStatusCompleted:  {},
	JobStatusFailed:     {},
}

// ProcessingJob represents one instruction-driven extraction run over a video
type ProcessingJob struct {
	ID           string     `json:"id" db:"id"`
	VideoID      string     `json:"video_id" db:"video_id"`
	Instructions string     `json:"instructions" db:"instructions"`
	Status       JobStatus  `json:"status" db:"status"`
	RawResponse  *string    `json:"raw_response,omitempty" db:"raw_response"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// NewProcessingJob creates a pending job for a video with free-text instructions
func NewProcessingJob(videoID, instructions string) ProcessingJob {
	now := time.Now()
	return ProcessingJob{
		ID:           uuid.NewString(),
		VideoID:      videoID,
		Instructions: instructions,
		Status:       JobStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// WithStatus returns a copy advanced to target if the edge is allowed.
// Entering the first active state stamps StartedAt once; entering a terminal
// state stamps CompletedAt.
func (j ProcessingJob) WithStatus(target JobStatus) (ProcessingJob, error) {
	if !jobEdgeAllowed(j.Status, target) {
		return ProcessingJob{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"job %s cannot transition from %s to %s", j.ID, j.Status, target)
	}
	now := time.Now()
	switch target {
	case JobStatusAnalyzing, JobStatusExtracting, JobStatusUploading:
		if j.StartedAt == nil {
			j.StartedAt = &now
		}
	case JobStatusCompleted, JobStatusFailed:
		j.CompletedAt = &now
	}
	j.Status = target
	j.UpdatedAt = now
	return j, nil
}

// MarkFailed moves the job to failed with the given error message
func (j ProcessingJob) MarkFailed(message string) (ProcessingJob, error) {
	failed, err := j.WithStatus(JobStatusFailed)
	if err != nil {
		return ProcessingJob{}, err
	}
	failed.ErrorMessage = &message
	return failed, nil
}

// WithRawResponse stores the raw text-model response for diagnosis
func (j ProcessingJob) WithRawResponse(raw string) ProcessingJob {
	j.RawResponse = &raw
	j.UpdatedAt = time.Now()
	return j
}

func jobEdgeAllowed(from, to JobStatus) bool {
	for _, next := range JobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
