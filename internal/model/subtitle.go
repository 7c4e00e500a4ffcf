package model

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

// SubtitleStatus marks a clip subtitle as editable draft or confirmed
type SubtitleStatus string

const (
	SubtitleStatusDraft     SubtitleStatus = "draft"
	SubtitleStatusConfirmed SubtitleStatus = "confirmed"
)

// Default display constraints for a subtitle segment. 16 characters per line
// and at most two lines follow the Japanese broadcast subtitle convention.
const (
	DefaultSubtitleMaxLineRunes = 16
	DefaultSubtitleMaxLines     = 2
)

// SubtitleLimits carries the configured display constraints
type SubtitleLimits struct {
	MaxLines     int
	MaxLineRunes int
}

// DefaultSubtitleLimits returns the broadcast-convention constraints
func DefaultSubtitleLimits() SubtitleLimits {
	return SubtitleLimits{
		MaxLines:     DefaultSubtitleMaxLines,
		MaxLineRunes: DefaultSubtitleMaxLineRunes,
	}
}

// SubtitleSegment is one displayed subtitle cue, timed relative to the clip
type SubtitleSegment struct {
	Index        int      `json:"index"`
	Lines        []string `json:"lines"`
	StartSeconds float64  `json:"start_seconds"`
	EndSeconds   float64  `json:"end_seconds"`
}

// ClipSubtitle is the subtitle track of one clip; exactly one exists per
// clip. It stays draft until explicitly confirmed, and any edit reverts a
// confirmed track to draft.
type ClipSubtitle struct {
	ID        string            `json:"id" db:"id"`
	ClipID    string            `json:"clip_id" db:"clip_id"`
	Segments  []SubtitleSegment `json:"segments" db:"segments"`
	Status    SubtitleStatus    `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// NewClipSubtitle creates a draft subtitle track after validating segments
func NewClipSubtitle(clipID string, segments []SubtitleSegment, limits SubtitleLimits) (ClipSubtitle, error) {
	if err := ValidateSubtitleSegments(segments, limits); err != nil {
		return ClipSubtitle{}, err
	}
	now := time.Now()
	return ClipSubtitle{
		ID:        uuid.NewString(),
		ClipID:    clipID,
		Segments:  segments,
		Status:    SubtitleStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Confirm marks a draft track as confirmed
func (s ClipSubtitle) Confirm() (ClipSubtitle, error) {
	if s.Status != SubtitleStatusDraft {
		return ClipSubtitle{}, apperrors.Newf(apperrors.CodeInvalidTransition,
			"subtitle %s cannot be confirmed from %s", s.ID, s.Status)
	}
	s.Status = SubtitleStatusConfirmed
	s.UpdatedAt = time.Now()
	return s, nil
}

// WithSegments replaces the segments and reverts the track to draft
func (s ClipSubtitle) WithSegments(segments []SubtitleSegment, limits SubtitleLimits) (ClipSubtitle, error) {
	if err := ValidateSubtitleSegments(segments, limits); err != nil {
		return ClipSubtitle{}, err
	}
	s.Segments = segments
	s.Status = SubtitleStatusDraft
	s.UpdatedAt = time.Now()
	return s, nil
}

// ValidateSubtitleSegments enforces the display constraints: 1 to maxLines
// lines per segment, at most maxLineRunes runes per line, positional indices
// counting up from 0, and a forward time range per segment.
func ValidateSubtitleSegments(segments []SubtitleSegment, limits SubtitleLimits) error {
	for i, seg := range segments {
		if seg.Index != i {
			return apperrors.Newf(apperrors.CodeValidation,
				"subtitle segment index %d at position %d: indices must count up from 0", seg.Index, i)
		}
		if len(seg.Lines) < 1 || len(seg.Lines) > limits.MaxLines {
			return apperrors.Newf(apperrors.CodeValidation,
				"subtitle segment %d has %d lines: must be 1 to %d", seg.Index, len(seg.Lines), limits.MaxLines)
		}
		for _, line := range seg.Lines {
			if n := utf8.RuneCountInString(line); n > limits.MaxLineRunes {
				return apperrors.Newf(apperrors.CodeValidation,
					"subtitle segment %d line exceeds %d characters: %q", seg.Index, limits.MaxLineRunes, line)
			}
		}
		if seg.StartSeconds < 0 {
			return apperrors.Newf(apperrors.CodeValidation,
				"subtitle segment %d has a negative start time", seg.Index)
		}
		if seg.EndSeconds <= seg.StartSeconds {
			return apperrors.Newf(apperrors.CodeValidation,
				"subtitle segment %d has an inverted time range", seg.Index)
		}
	}
	return nil
}
