package model

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// ClipStatus is the lifecycle state of an extracted clip
type ClipStatus string

const (
	ClipStatusPending    ClipStatus = "pending"
	ClipStatusProcessing ClipStatus = "processing"
	ClipStatusCompleted  ClipStatus = "completed"
	ClipStatusFailed     ClipStatus = "failed"
)

// ClipTransitions is the allowed status edge table for clips. Each clip's
// lifecycle is independent of its siblings; failed is reachable from every
// active state and carries an error message.
var ClipTransitions = map[ClipStatus][]ClipStatus{
	ClipStatusPending:    {ClipStatusProcessing, ClipStatusFailed},
	ClipStatusProcessing: {ClipStatusCompleted, ClipStatusFailed},
	ClipStatusCompleted:  {},
	ClipStatusFailed:     {},
}

// Clip represents one extracted sub-range of a video
type Clip struct {
	ID             string     `json:"id" db:"id"`
	VideoID        string     `json:"video_id" db:"video_id"`
	StartSeconds   float64    `json:"start_seconds" db:"start_seconds"`
	EndSeconds     float64    `json:"end_seconds" db:"end_seconds"`
	Title          *string    `json:"title,omitempty" db:"title"`
	Excerpt        *string    `json:"excerpt,omitempty" db:"excerpt"`
	Status         ClipStatus `json:"status" db:"status"`
	UploadedFileID *string    `json:"uploaded_file_id,omitempty" db:"uploaded_file_id"`
	ErrorMessage   *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// NewClip creates a pending clip after validating its time range against the
// configured duration bounds. Durations exactly at a bound are accepted.
func NewClip(videoID string, startSeconds, endSeconds, minDuration, maxDuration float64) (Clip, error) {
	if startSeconds < 0 {
		return Clip{}, apperrors.New(apperrors.CodeValidation, "start time must not be negative")
	}
	if endSeconds <= startSeconds {
		return Clip{}, apperrors.New(apperrors.CodeValidation, "end time must be after start time")
	}
	duration := endSeconds - startSeconds
	if duration < minDuration || duration > maxDuration {
		return Clip{}, apperrors.Newf(apperrors.CodeInvalidDuration,
			"clip duration %.1fs is outside the allowed range [%.1fs, %.1fs]",
			duration, minDuration, maxDuration)
	}
	now := time.Now()
	return Clip{
		ID:           uuid.NewString(),
		VideoID:      videoID,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
		Status:       ClipStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// DurationSeconds returns the clip length
func (c Clip) DurationSeconds() float64 {
	return c.EndSeconds - c.StartSeconds
}

// WithStatus returns a copy advanced to target if the edge is allowed
func (c Clip) WithStatus(target ClipStatus) (Clip, error) {
	if !clipEdgeAllowed(c.Status, target) {
		return Clip{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"clip %s cannot transition from %s to %s", c.ID, c.Status, target)
	}
	c.Status = target
	c.UpdatedAt = time.Now()
	return c, nil
}

// MarkFailed moves the clip to failed with the given error message
func (c Clip) MarkFailed(message string) (Clip, error) {
	failed, err := c.WithStatus(ClipStatusFailed)
	if err != nil {
		return Clip{}, err
	}
	failed.ErrorMessage = &message
	return failed, nil
}

// WithTitle sets the clip title
func (c Clip) WithTitle(title string) Clip {
	c.Title = &title
	c.UpdatedAt = time.Now()
	return c
}

// WithExcerpt sets the transcript excerpt shown alongside the clip
func (c Clip) WithExcerpt(excerpt string) Clip {
	c.Excerpt = &excerpt
	c.UpdatedAt = time.Now()
	return c
}

// WithUploadedFile records the uploaded artifact reference
func (c Clip) WithUploadedFile(fileID string) Clip {
	c.UploadedFileID = &fileID
	c.UpdatedAt = time.Now()
	return c
}

func clipEdgeAllowed(from, to ClipStatus) bool {
	for _, next := range ClipTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
