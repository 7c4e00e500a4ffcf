package subtitle

import (
	"context"
	"fmt"
	"math"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// ExportSRT renders the clip's subtitle track in SubRip format. Only
// confirmed tracks are exported unless includeDraft is set.
func (s *subtitleService) ExportSRT(ctx context.Context, clipID string, includeDraft bool) (string, error) {
	subtitle, err := s.subtitles.GetByClipID(ctx, clipID)
	if err != nil {
		return "", err
	}
	if subtitle.Status != model.SubtitleStatusConfirmed && !includeDraft {
		return "", apperrors.Newf(apperrors.CodeValidation,
			"subtitle for clip %s is still a draft; confirm it or export with the draft flag", clipID)
	}
	if len(subtitle.Segments) == 0 {
		return "", apperrors.Newf(apperrors.CodeValidation,
			"subtitle for clip %s has no segments", clipID)
	}
	return renderSRT(subtitle.Segments), nil
}

func renderSRT(segments []model.SubtitleSegment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatSRTTime(seg.StartSeconds), formatSRTTime(seg.EndSeconds))
		for _, line := range seg.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// formatSRTTime renders seconds as the SubRip timestamp HH:MM:SS,mmm
func formatSRTTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int(math.Round(seconds * 1000))
	h := totalMillis / 3600000
	m := totalMillis % 3600000 / 60000
	s := totalMillis % 60000 / 1000
	ms := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
