package model

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// VideoStatus is the lifecycle state of a source video
type VideoStatus string

const (
	VideoStatusPending      VideoStatus = "pending"
	VideoStatusProcessing   VideoStatus = "processing"
	VideoStatusTranscribing VideoStatus = "transcribing"
	VideoStatusTranscribed  VideoStatus = "transcribed"
	VideoStatusExtracting   VideoStatus = "extracting"
	VideoStatusCompleted    VideoStatus = "completed"
	VideoStatusFailed       VideoStatus = "failed"
)

// VideoTransitions is the allowed status edge table. failed is reachable from
// every non-terminal state. completed and failed have no normal outgoing
// edges; they re-enter the pipeline only through the corrective operations
// ReenterPending and ReenterTranscribed.
var VideoTransitions = map[VideoStatus][]VideoStatus{
	VideoStatusPending:      {VideoStatusProcessing, VideoStatusFailed},
	VideoStatusProcessing:   {VideoStatusTranscribing, VideoStatusFailed},
	VideoStatusTranscribing: {VideoStatusTranscribed, VideoStatusFailed},
	VideoStatusTranscribed:  {VideoStatusExtracting, VideoStatusFailed},
	VideoStatusExtracting:   {VideoStatusCompleted, VideoStatusFailed},
	VideoStatusCompleted:    {},
	VideoStatusFailed:       {},
}

// Video represents a submitted source video and its pipeline state.
// Values are immutable snapshots: every mutator returns a new Video.
type Video struct {
	ID              string      `json:"id" db:"id"`
	SourceFileID    string      `json:"source_file_id" db:"source_file_id"`
	Title           string      `json:"title" db:"title"`
	FileSize        *int64      `json:"file_size,omitempty" db:"file_size"`
	DurationSeconds *float64    `json:"duration_seconds,omitempty" db:"duration_seconds"`
	Status          VideoStatus `json:"status" db:"status"`
	CachedBlobKey   *string     `json:"cached_blob_key,omitempty" db:"cached_blob_key"`
	CacheExpiresAt  *time.Time  `json:"cache_expires_at,omitempty" db:"cache_expires_at"`
	AudioBlobKey    *string     `json:"audio_blob_key,omitempty" db:"audio_blob_key"`
	Progress        *string     `json:"progress,omitempty" db:"progress"`
	ErrorMessage    *string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// NewVideo creates a pending video for a source file reference
func NewVideo(sourceFileID, title string) Video {
	now := time.Now()
	return Video{
		ID:           uuid.NewString(),
		SourceFileID: sourceFileID,
		Title:        title,
		Status:       VideoStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// WithStatus returns a copy advanced to target if the edge is allowed.
// Invalid edges are rejected, never coerced.
func (v Video) WithStatus(target VideoStatus) (Video, error) {
	if !videoEdgeAllowed(v.Status, target) {
		return Video{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"video %s cannot transition from %s to %s", v.ID, v.Status, target)
	}
	v.Status = target
	v.UpdatedAt = time.Now()
	return v, nil
}

// MarkFailed moves the video to failed with the given error message
func (v Video) MarkFailed(message string) (Video, error) {
	failed, err := v.WithStatus(VideoStatusFailed)
	if err != nil {
		return Video{}, err
	}
	failed.ErrorMessage = &message
	return failed, nil
}

// ReenterTranscribed returns the video to the transcribed checkpoint.
// This is a corrective operation, not a normal edge: allowed from completed
// and failed (retry-from-checkpoint) and from extracting (orchestrator
// rollback after an extraction-stage failure).
func (v Video) ReenterTranscribed() (Video, error) {
	switch v.Status {
	case VideoStatusCompleted, VideoStatusFailed, VideoStatusExtracting:
	default:
		return Video{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"video %s cannot re-enter transcribed from %s", v.ID, v.Status)
	}
	v.Status = VideoStatusTranscribed
	v.ErrorMessage = nil
	v.Progress = nil
	v.UpdatedAt = time.Now()
	return v, nil
}

// ReenterPending returns the video to pending for a full reprocess.
// Allowed from completed and failed only. The cached blob reference is kept
// so the reprocess can reuse it; the derived audio reference is cleared
// because processing regenerates it.
func (v Video) ReenterPending() (Video, error) {
	switch v.Status {
	case VideoStatusCompleted, VideoStatusFailed:
	default:
		return Video{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"video %s cannot re-enter pending from %s", v.ID, v.Status)
	}
	v.Status = VideoStatusPending
	v.ErrorMessage = nil
	v.Progress = nil
	v.AudioBlobKey = nil
	v.UpdatedAt = time.Now()
	return v, nil
}

// HasValidCache reports whether the cached blob reference can be trusted:
// a reference exists and its expiry is more than buffer in the future.
// Physical existence still has to be re-verified against the cache store.
func (v Video) HasValidCache(now time.Time, buffer time.Duration) bool {
	if v.CachedBlobKey == nil || v.CacheExpiresAt == nil {
		return false
	}
	return now.Add(buffer).Before(*v.CacheExpiresAt)
}

// WithCachedBlob records a fresh cache reference and its expiry
func (v Video) WithCachedBlob(key string, expiresAt time.Time) Video {
	v.CachedBlobKey = &key
	v.CacheExpiresAt = &expiresAt
	v.UpdatedAt = time.Now()
	return v
}

// ClearCachedBlob drops an invalidated cache reference
func (v Video) ClearCachedBlob() Video {
	v.CachedBlobKey = nil
	v.CacheExpiresAt = nil
	v.UpdatedAt = time.Now()
	return v
}

// WithAudioBlob records the derived-audio cache reference
func (v Video) WithAudioBlob(key string) Video {
	v.AudioBlobKey = &key
	v.UpdatedAt = time.Now()
	return v
}

// WithProgress overwrites the human-readable progress string
func (v Video) WithProgress(progress string) Video {
	v.Progress = &progress
	v.UpdatedAt = time.Now()
	return v
}

// WithMetadata records source file metadata discovered after submission
func (v Video) WithMetadata(fileSize *int64, durationSeconds *float64) Video {
	if fileSize != nil {
		v.FileSize = fileSize
	}
	if durationSeconds != nil {
		v.DurationSeconds = durationSeconds
	}
	v.UpdatedAt = time.Now()
	return v
}

func videoEdgeAllowed(from, to VideoStatus) bool {
	for _, next := range VideoTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
