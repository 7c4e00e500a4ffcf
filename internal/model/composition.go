package model

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// CompositionStatus is the lifecycle state of a scene-composed video
type CompositionStatus string

const (
	CompositionStatusPending    CompositionStatus = "pending"
	CompositionStatusProcessing CompositionStatus = "processing"
	CompositionStatusCompleted  CompositionStatus = "completed"
	CompositionStatusFailed     CompositionStatus = "failed"
)

// CompositionTransitions is the allowed status edge table for composed
// videos. completed and failed return to pending only through Reset.
var CompositionTransitions = map[CompositionStatus][]CompositionStatus{
	CompositionStatusPending:    {CompositionStatusProcessing, CompositionStatusFailed},
	CompositionStatusProcessing: {CompositionStatusCompleted, CompositionStatusFailed},
	CompositionStatusCompleted:  {},
	CompositionStatusFailed:     {},
}

// ComposedVideo represents one scene-composed short for a (project, script)
// pair. At most one active composition exists per script.
type ComposedVideo struct {
	ID              string            `json:"id" db:"id"`
	ProjectID       string            `json:"project_id" db:"project_id"`
	ScriptID        string            `json:"script_id" db:"script_id"`
	OutputFileID    *string           `json:"output_file_id,omitempty" db:"output_file_id"`
	DurationSeconds *float64          `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Status          CompositionStatus `json:"status" db:"status"`
	BGM             *string           `json:"bgm,omitempty" db:"bgm"`
	ErrorMessage    *string           `json:"error_message,omitempty" db:"error_message"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

// NewComposedVideo creates a pending composition for a project/script pair
func NewComposedVideo(projectID, scriptID string, bgm *string) ComposedVideo {
	now := time.Now()
	return ComposedVideo{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		ScriptID:  scriptID,
		BGM:       bgm,
		Status:    CompositionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithStatus returns a copy advanced to target if the edge is allowed
func (cv ComposedVideo) WithStatus(target CompositionStatus) (ComposedVideo, error) {
	if !compositionEdgeAllowed(cv.Status, target) {
		return ComposedVideo{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"composed video %s cannot transition from %s to %s", cv.ID, cv.Status, target)
	}
	cv.Status = target
	cv.UpdatedAt = time.Now()
	return cv, nil
}

// MarkFailed moves the composition to failed with the given error message
func (cv ComposedVideo) MarkFailed(message string) (ComposedVideo, error) {
	failed, err := cv.WithStatus(CompositionStatusFailed)
	if err != nil {
		return ComposedVideo{}, err
	}
	failed.ErrorMessage = &message
	return failed, nil
}

// WithOutput records the composed artifact reference and its duration
func (cv ComposedVideo) WithOutput(fileID string, durationSeconds float64) ComposedVideo {
	cv.OutputFileID = &fileID
	cv.DurationSeconds = &durationSeconds
	cv.UpdatedAt = time.Now()
	return cv
}

// Reset returns a completed or failed composition to pending for
// regeneration, clearing the output reference, duration and error message.
// Reset of an in-flight composition is rejected: interrupting it would leave
// the media gateway's work orphaned.
func (cv ComposedVideo) Reset() (ComposedVideo, error) {
	switch cv.Status {
	case CompositionStatusCompleted, CompositionStatusFailed:
	default:
		return ComposedVideo{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"composed video %s cannot be reset from %s", cv.ID, cv.Status)
	}
	cv.Status = CompositionStatusPending
	cv.OutputFileID = nil
	cv.DurationSeconds = nil
	cv.ErrorMessage = nil
	cv.UpdatedAt = time.Now()
	return cv, nil
}

func compositionEdgeAllowed(from, to CompositionStatus) bool {
	for _, next := range CompositionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
