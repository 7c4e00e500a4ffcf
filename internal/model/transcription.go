package model

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptSegment is the smallest transcribed unit as emitted by the
// speech-to-text gateway, with absolute timestamps and confidence.
type TranscriptSegment struct {
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Confidence   float64 `json:"confidence"`
}

// Transcription is the raw speech-to-text result for a video. It is
// append-only: re-running transcription replaces the previous record.
type Transcription struct {
	ID              string              `json:"id" db:"id"`
	VideoID         string              `json:"video_id" db:"video_id"`
	FullText        string              `json:"full_text" db:"full_text"`
	Segments        []TranscriptSegment `json:"segments" db:"segments"`
	LanguageCode    string              `json:"language_code" db:"language_code"`
	DurationSeconds float64             `json:"duration_seconds" db:"duration_seconds"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
}

// NewTranscription creates a transcription record for a video
func NewTranscription(videoID, fullText string, segments []TranscriptSegment, languageCode string, durationSeconds float64) Transcription {
	return Transcription{
		ID:              uuid.NewString(),
		VideoID:         videoID,
		FullText:        fullText,
		Segments:        segments,
		LanguageCode:    languageCode,
		DurationSeconds: durationSeconds,
		CreatedAt:       time.Now(),
	}
}

// RefinedSentence is one corrected sentence produced by the refinement
// engine, referencing the absolute indices of the segments it was built from.
type RefinedSentence struct {
	Text                   string  `json:"text"`
	StartSeconds           float64 `json:"start_seconds"`
	EndSeconds             float64 `json:"end_seconds"`
	OriginalSegmentIndices []int   `json:"original_segment_indices"`
}

// RefinedTranscription is the dictionary-corrected, sentence-level rendering
// of one Transcription. Regeneration is idempotent: it replaces the previous
// refined record for the same transcription.
type RefinedTranscription struct {
	ID                string            `json:"id" db:"id"`
	TranscriptionID   string            `json:"transcription_id" db:"transcription_id"`
	FullText          string            `json:"full_text" db:"full_text"`
	Sentences         []RefinedSentence `json:"sentences" db:"sentences"`
	DictionaryVersion string            `json:"dictionary_version" db:"dictionary_version"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// NewRefinedTranscription creates a refined transcription record
func NewRefinedTranscription(transcriptionID, fullText string, sentences []RefinedSentence, dictionaryVersion string) RefinedTranscription {
	return RefinedTranscription{
		ID:                uuid.NewString(),
		TranscriptionID:   transcriptionID,
		FullText:          fullText,
		Sentences:         sentences,
		DictionaryVersion: dictionaryVersion,
		CreatedAt:         time.Now(),
	}
}
