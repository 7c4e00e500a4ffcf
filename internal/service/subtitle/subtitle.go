package subtitle

import (
	"context"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	cliprepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/clip"
	subtitlerepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/subtitle"
	transcriptionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/transcription"
)

// Service manages the subtitle track of extracted clips
type Service interface {
	GenerateDraft(ctx context.Context, clipID string) (model.ClipSubtitle, error)
	Confirm(ctx context.Context, clipID string) (model.ClipSubtitle, error)
	UpdateSegments(ctx context.Context, clipID string, segments []model.SubtitleSegment) (model.ClipSubtitle, error)
	ExportSRT(ctx context.Context, clipID string, includeDraft bool) (string, error)
	Get(ctx context.Context, clipID string) (model.ClipSubtitle, error)
}

type subtitleService struct {
	clips          cliprepo.Repository
	transcriptions transcriptionrepo.Repository
	refined        transcriptionrepo.RefinedRepository
	subtitles      subtitlerepo.Repository
	limits         model.SubtitleLimits
	logger         logging.Logger
}

// NewService creates the subtitle service
func NewService(
	clips cliprepo.Repository,
	transcriptions transcriptionrepo.Repository,
	refined transcriptionrepo.RefinedRepository,
	subtitles subtitlerepo.Repository,
	limits model.SubtitleLimits,
	logger logging.Logger,
) Service {
	if limits.MaxLines <= 0 {
		limits.MaxLines = model.DefaultSubtitleMaxLines
	}
	if limits.MaxLineRunes <= 0 {
		limits.MaxLineRunes = model.DefaultSubtitleMaxLineRunes
	}
	return &subtitleService{
		clips:          clips,
		transcriptions: transcriptions,
		refined:        refined,
		subtitles:      subtitles,
		limits:         limits,
		logger:         logger,
	}
}

// GenerateDraft builds a draft subtitle track from the refined sentences
// spoken inside the clip range. Long sentences are split into display-sized
// segments whose timing follows each piece's share of the sentence text.
// Any previous track for the clip is replaced.
func (s *subtitleService) GenerateDraft(ctx context.Context, clipID string) (model.ClipSubtitle, error) {
	clip, err := s.clips.GetByID(ctx, clipID)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	transcription, err := s.transcriptions.GetByVideoID(ctx, clip.VideoID)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	refined, err := s.refined.GetByTranscriptionID(ctx, transcription.ID)
	if err != nil {
		return model.ClipSubtitle{}, err
	}

	segments := s.buildSegments(clip, refined.Sentences)
	if len(segments) == 0 {
		return model.ClipSubtitle{}, apperrors.Newf(apperrors.CodeValidation,
			"no refined sentences overlap clip %s", clipID)
	}

	subtitle, err := model.NewClipSubtitle(clip.ID, segments, s.limits)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	if err := s.subtitles.Upsert(ctx, subtitle); err != nil {
		return model.ClipSubtitle{}, err
	}

	s.logger.Info().
		Str("clip_id", clipID).
		Int("segments", len(segments)).
		Msg("subtitle draft generated")
	return subtitle, nil
}

// Confirm marks the clip's draft track as confirmed
func (s *subtitleService) Confirm(ctx context.Context, clipID string) (model.ClipSubtitle, error) {
	subtitle, err := s.subtitles.GetByClipID(ctx, clipID)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	confirmed, err := subtitle.Confirm()
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	if err := s.subtitles.Update(ctx, confirmed); err != nil {
		return model.ClipSubtitle{}, err
	}
	return confirmed, nil
}

// UpdateSegments replaces the track's segments. The edit reverts a confirmed
// track to draft, so it has to be confirmed again before export.
func (s *subtitleService) UpdateSegments(ctx context.Context, clipID string, segments []model.SubtitleSegment) (model.ClipSubtitle, error) {
	subtitle, err := s.subtitles.GetByClipID(ctx, clipID)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	edited, err := subtitle.WithSegments(segments, s.limits)
	if err != nil {
		return model.ClipSubtitle{}, err
	}
	if err := s.subtitles.Update(ctx, edited); err != nil {
		return model.ClipSubtitle{}, err
	}
	return edited, nil
}

func (s *subtitleService) Get(ctx context.Context, clipID string) (model.ClipSubtitle, error) {
	return s.subtitles.GetByClipID(ctx, clipID)
}

// buildSegments converts the sentences overlapping the clip range into
// clip-relative subtitle segments.
func (s *subtitleService) buildSegments(clip model.Clip, sentences []model.RefinedSentence) []model.SubtitleSegment {
	clipDuration := clip.EndSeconds - clip.StartSeconds
	var segments []model.SubtitleSegment

	for _, sentence := range sentences {
		if sentence.EndSeconds <= clip.StartSeconds || sentence.StartSeconds >= clip.EndSeconds {
			continue
		}

		relStart := sentence.StartSeconds - clip.StartSeconds
		if relStart < 0 {
			relStart = 0
		}
		relEnd := sentence.EndSeconds - clip.StartSeconds
		if relEnd > clipDuration {
			relEnd = clipDuration
		}
		if relEnd <= relStart {
			continue
		}

		chunks := splitSentence(sentence.Text, s.limits)
		if len(chunks) == 0 {
			continue
		}

		total := 0
		for _, lines := range chunks {
			total += runeCount(lines)
		}

		span := relEnd - relStart
		consumed := 0
		for _, lines := range chunks {
			segStart := relStart + span*float64(consumed)/float64(total)
			consumed += runeCount(lines)
			segEnd := relStart + span*float64(consumed)/float64(total)
			segments = append(segments, model.SubtitleSegment{
				Index:        len(segments),
				Lines:        lines,
				StartSeconds: segStart,
				EndSeconds:   segEnd,
			})
		}
	}
	return segments
}

// splitSentence folds one sentence into subtitle-sized chunks, each at most
// MaxLines lines of MaxLineRunes runes.
func splitSentence(text string, limits model.SubtitleLimits) [][]string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	perSegment := limits.MaxLines * limits.MaxLineRunes
	var chunks [][]string
	for start := 0; start < len(runes); start += perSegment {
		end := start + perSegment
		if end > len(runes) {
			end = len(runes)
		}
		chunk := runes[start:end]

		var lines []string
		for ls := 0; ls < len(chunk); ls += limits.MaxLineRunes {
			le := ls + limits.MaxLineRunes
			if le > len(chunk) {
				le = len(chunk)
			}
			lines = append(lines, string(chunk[ls:le]))
		}
		chunks = append(chunks, lines)
	}
	return chunks
}

func runeCount(lines []string) int {
	n := 0
	for _, line := range lines {
		n += len([]rune(line))
	}
	return n
}
