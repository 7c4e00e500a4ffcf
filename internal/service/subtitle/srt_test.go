package subtitle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

func confirmedTrack() model.ClipSubtitle {
	return model.ClipSubtitle{
		ID:     "sub-1",
		ClipID: "clip-1",
		Status: model.SubtitleStatusConfirmed,
		Segments: []model.SubtitleSegment{
			{Index: 0, Lines: []string{"こんにちは"}, StartSeconds: 0, EndSeconds: 3.5},
			{Index: 1, Lines: []string{"二行目の", "テスト"}, StartSeconds: 3.5, EndSeconds: 7.25},
		},
	}
}

func TestSubtitleService_ExportSRT(t *testing.T) {
	t.Run("renders a confirmed track", func(t *testing.T) {
		m := defaultMocks()
		m.subtitles.GetByClipIDFunc = func(_ context.Context, _ string) (model.ClipSubtitle, error) {
			return confirmedTrack(), nil
		}

		srt, err := newTestService(m).ExportSRT(context.Background(), "clip-1", false)

		require.NoError(t, err)
		want := "1\n" +
			"00:00:00,000 --> 00:00:03,500\n" +
			"こんにちは\n" +
			"\n" +
			"2\n" +
			"00:00:03,500 --> 00:00:07,250\n" +
			"二行目の\n" +
			"テスト\n"
		assert.Equal(t, want, srt)
	})

	t.Run("a draft is not exported without the flag", func(t *testing.T) {
		m := defaultMocks()
		track := confirmedTrack()
		track.Status = model.SubtitleStatusDraft
		m.subtitles.GetByClipIDFunc = func(_ context.Context, _ string) (model.ClipSubtitle, error) {
			return track, nil
		}

		_, err := newTestService(m).ExportSRT(context.Background(), "clip-1", false)

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))

		srt, err := newTestService(m).ExportSRT(context.Background(), "clip-1", true)
		require.NoError(t, err)
		assert.Contains(t, srt, "00:00:00,000 --> 00:00:03,500")
	})

	t.Run("an empty track is rejected", func(t *testing.T) {
		m := defaultMocks()
		m.subtitles.GetByClipIDFunc = func(_ context.Context, _ string) (model.ClipSubtitle, error) {
			return model.ClipSubtitle{ID: "sub-1", ClipID: "clip-1", Status: model.SubtitleStatusConfirmed}, nil
		}

		_, err := newTestService(m).ExportSRT(context.Background(), "clip-1", false)

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
	})
}

func TestFormatSRTTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "00:00:00,000"},
		{name: "millisecond precision", seconds: 3.5, want: "00:00:03,500"},
		{name: "hours minutes seconds", seconds: 3661.25, want: "01:01:01,250"},
		{name: "rounding carries into the next second", seconds: 59.9995, want: "00:01:00,000"},
		{name: "negative clamps to zero", seconds: -1.5, want: "00:00:00,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSRTTime(tt.seconds))
		})
	}
}
