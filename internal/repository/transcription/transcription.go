package transcription

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for Transcription persistence. A video has at
// most one transcription; Replace swaps the stored record atomically.
type Repository interface {
	Replace(ctx context.Context, transcription model.Transcription) error
	GetByID(ctx context.Context, id string) (model.Transcription, error)
	GetByVideoID(ctx context.Context, videoID string) (model.Transcription, error)
	Delete(ctx context.Context, id string) error
}

// RefinedRepository defines operations for RefinedTranscription persistence.
// A transcription has at most one refined version; Replace upserts it.
type RefinedRepository interface {
	Replace(ctx context.Context, refined model.RefinedTranscription) error
	GetByTranscriptionID(ctx context.Context, transcriptionID string) (model.RefinedTranscription, error)
}
