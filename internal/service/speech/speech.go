package speech

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Transcriber defines speech-to-text operations for the pipeline
type Transcriber interface {
	// TranscribeLong transcribes a full-length audio file. Long inputs are
	// handled by the underlying engine; callers do not pre-chunk audio.
	TranscribeLong(ctx context.Context, audioPath string, language string) (Result, error)
}

// Result is the engine-agnostic transcription output. The caller attaches it
// to a video and persists it as a model.Transcription.
type Result struct {
	Text            string
	LanguageCode    string
	DurationSeconds float64
	Segments        []model.TranscriptSegment
}
