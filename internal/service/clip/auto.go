package clip

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/batch"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/textgen"
)

type clipCandidate struct {
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Title        string  `json:"title"`
	Reason       string  `json:"reason"`
}

type clipSelection struct {
	Clips []clipCandidate `json:"clips"`
}

// ExtractClipsFromInstructions asks the text model to pick clip ranges
// matching the instructions and extracts every valid candidate. Candidates
// that fail validation are skipped, and one clip's failure never stops the
// others or the parent job.
func (s *clipService) ExtractClipsFromInstructions(ctx context.Context, videoID, instructions string) (model.ProcessingJob, []model.Clip, error) {
	if strings.TrimSpace(instructions) == "" {
		return model.ProcessingJob{}, nil, apperrors.New(apperrors.CodeValidation, "instructions are required")
	}

	v, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.ProcessingJob{}, nil, err
	}
	transcription, err := s.transcriptions.GetByVideoID(ctx, videoID)
	if err != nil {
		return model.ProcessingJob{}, nil, err
	}
	refined, err := s.refined.GetByTranscriptionID(ctx, transcription.ID)
	if err != nil {
		return model.ProcessingJob{}, nil, err
	}

	job := model.NewProcessingJob(videoID, instructions)
	if err := s.jobs.Create(ctx, job); err != nil {
		return model.ProcessingJob{}, nil, err
	}
	if job, err = s.advanceJob(ctx, job, model.JobStatusAnalyzing); err != nil {
		return model.ProcessingJob{}, nil, err
	}

	prompt := buildClipSelectionPrompt(refined.Sentences, transcription.DurationSeconds, instructions, s.cfg.MinDurationSeconds, s.cfg.MaxDurationSeconds)
	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return s.failJob(ctx, job, nil, err)
	}

	job = job.WithRawResponse(raw)
	if err := s.jobs.Update(ctx, job); err != nil {
		return s.failJob(ctx, job, nil, err)
	}

	candidates, err := parseClipCandidates(raw)
	if err != nil {
		return s.failJob(ctx, job, nil, err)
	}

	clips, skipped := s.buildCandidateClips(videoID, candidates, refined.Sentences, transcription.DurationSeconds)
	if skipped > 0 {
		s.logger.Warn().
			Int("skipped", skipped).
			Str("job_id", job.ID).
			Msg("invalid clip candidates skipped")
	}

	v, err = s.advanceToExtracting(ctx, v)
	if err != nil {
		return s.failJob(ctx, job, nil, err)
	}
	if job, err = s.advanceJob(ctx, job, model.JobStatusExtracting); err != nil {
		return s.failJob(ctx, job, &v, err)
	}

	processed := make([]model.Clip, 0, len(clips))
	if len(clips) > 0 {
		tempDir, err := os.MkdirTemp("", "videoproc-clip-*")
		if err != nil {
			return s.failJob(ctx, job, &v, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory"))
		}
		defer os.RemoveAll(tempDir)

		localPath, materialized, err := s.blobs.Materialize(ctx, v, tempDir)
		if err != nil {
			return s.failJob(ctx, job, &v, err)
		}
		v = materialized

		if err := s.clips.CreateBatch(ctx, clips); err != nil {
			return s.failJob(ctx, job, &v, err)
		}

		batch.ForEach(ctx, s.logger, "clip extraction", clips, func(ctx context.Context, _ int, c model.Clip) error {
			done, err := s.cutAndUpload(ctx, c, localPath, tempDir, transcription.DurationSeconds)
			processed = append(processed, done)
			return err
		})
	}

	if job, err = s.advanceJob(ctx, job, model.JobStatusUploading); err != nil {
		return s.failJob(ctx, job, &v, err)
	}
	if job, err = s.advanceJob(ctx, job, model.JobStatusCompleted); err != nil {
		return s.failJob(ctx, job, &v, err)
	}

	v, err = v.WithStatus(model.VideoStatusCompleted)
	if err != nil {
		return job, processed, err
	}
	if err := s.videos.Update(ctx, v); err != nil {
		return job, processed, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("video_id", videoID).
		Int("clips", len(processed)).
		Msg("instruction-driven extraction finished")
	return job, processed, nil
}

func (s *clipService) advanceJob(ctx context.Context, job model.ProcessingJob, status model.JobStatus) (model.ProcessingJob, error) {
	job, err := job.WithStatus(status)
	if err != nil {
		return model.ProcessingJob{}, err
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		return model.ProcessingJob{}, err
	}
	return job, nil
}

// failJob marks the job failed and, when the video already advanced to
// extracting, reverts it to the transcribed checkpoint before re-raising.
func (s *clipService) failJob(ctx context.Context, job model.ProcessingJob, v *model.Video, cause error) (model.ProcessingJob, []model.Clip, error) {
	failed, err := job.MarkFailed(cause.Error())
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("could not mark job failed")
	} else if err := s.jobs.Update(ctx, failed); err != nil {
		s.logger.Error().Err(err).Str("job_id", job.ID).Msg("could not persist failed job status")
	} else {
		job = failed
	}
	if v != nil && v.Status == model.VideoStatusExtracting {
		s.revertVideo(ctx, *v)
	}
	return job, nil, cause
}

// buildCandidateClips validates the model's candidates into pending clips.
// Invalid candidates are skipped and counted rather than failing the batch.
func (s *clipService) buildCandidateClips(videoID string, candidates []clipCandidate, sentences []model.RefinedSentence, duration float64) ([]model.Clip, int) {
	clips := make([]model.Clip, 0, len(candidates))
	skipped := 0
	for _, c := range candidates {
		clip, err := model.NewClip(videoID, c.StartSeconds, c.EndSeconds, s.cfg.MinDurationSeconds, s.cfg.MaxDurationSeconds)
		if err != nil {
			skipped++
			s.logger.Warn().
				Err(err).
				Float64("start", c.StartSeconds).
				Float64("end", c.EndSeconds).
				Msg("clip candidate rejected")
			continue
		}
		if duration > 0 && c.EndSeconds > duration {
			skipped++
			s.logger.Warn().
				Float64("end", c.EndSeconds).
				Float64("duration", duration).
				Msg("clip candidate reaches past the video duration")
			continue
		}

		title := strings.TrimSpace(c.Title)
		if title == "" {
			title = deriveTitle(sentences, c.StartSeconds, c.EndSeconds)
		}
		if title != "" {
			clip = clip.WithTitle(title)
		}
		if excerpt := deriveExcerpt(sentences, c.StartSeconds, c.EndSeconds, s.cfg.ExcerptMaxRunes); excerpt != "" {
			clip = clip.WithExcerpt(excerpt)
		}
		clips = append(clips, clip)
	}
	return clips, skipped
}

// buildClipSelectionPrompt lays out the refined transcript with sentence
// timestamps and asks for clip ranges as strict JSON.
func buildClipSelectionPrompt(sentences []model.RefinedSentence, duration float64, instructions string, minSeconds, maxSeconds float64) string {
	var b strings.Builder
	b.WriteString("あなたは動画編集者です。以下の文字起こしから、指示に合う切り抜きクリップの時間範囲を選んでください。\n\n")

	b.WriteString("指示:\n")
	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "動画の長さ: %.1f秒\n\n", duration)

	b.WriteString("文字起こし(開始秒-終了秒: テキスト):\n")
	for _, s := range sentences {
		fmt.Fprintf(&b, "%.1f-%.1f: %s\n", s.StartSeconds, s.EndSeconds, s.Text)
	}
	b.WriteString("\n")

	b.WriteString("次のJSON形式のみで出力してください:\n")
	b.WriteString(`{"clips": [{"start_seconds": 12.0, "end_seconds": 45.0, "title": "クリップの題名", "reason": "選定理由"}]}`)
	b.WriteString("\n\n")

	b.WriteString("ルール:\n")
	fmt.Fprintf(&b, "- 各クリップは%.0f秒以上%.0f秒以下にすること\n", minSeconds, maxSeconds)
	b.WriteString("- start_secondsはend_secondsより小さく、end_secondsは動画の長さ以下にすること\n")
	b.WriteString("- クリップ同士の範囲は重ねないこと\n")
	b.WriteString("- 指示に合う箇所がない場合は空の配列を返すこと\n")
	return b.String()
}

// parseClipCandidates accepts either the documented object form or a bare
// JSON array of candidates.
func parseClipCandidates(raw string) ([]clipCandidate, error) {
	payload, err := textgen.ExtractJSONPayload(raw)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(strings.TrimSpace(payload), "[") {
		var candidates []clipCandidate
		if err := json.Unmarshal([]byte(payload), &candidates); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeParse,
				fmt.Sprintf("malformed clip candidate JSON: %s", truncateRunes(payload, 200)))
		}
		return candidates, nil
	}

	var selection clipSelection
	if err := json.Unmarshal([]byte(payload), &selection); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParse,
			fmt.Sprintf("malformed clip candidate JSON: %s", truncateRunes(payload, 200)))
	}
	return selection.Clips, nil
}
