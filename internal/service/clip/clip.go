package clip

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	cliprepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/clip"
	jobrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/job"
	transcriptionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/transcription"
	videorepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/video"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/textgen"
)

// Materializer is the slice of the blob cache manager the orchestrators need
type Materializer interface {
	Materialize(ctx context.Context, v model.Video, workDir string) (string, model.Video, error)
}

// Config carries the clip extraction tunables
type Config struct {
	MinDurationSeconds     float64
	MaxDurationSeconds     float64
	TrailingPaddingSeconds float64
	ExcerptMaxRunes        int
	ClipsFolder            string
}

// DefaultConfig returns the tunables used when nothing is configured
func DefaultConfig() Config {
	return Config{
		MinDurationSeconds:     5,
		MaxDurationSeconds:     600,
		TrailingPaddingSeconds: 0.5,
		ExcerptMaxRunes:        80,
		ClipsFolder:            "clips",
	}
}

// Service extracts clips from transcribed videos, either from an explicit
// time range or from free-text instructions interpreted by the text model.
type Service interface {
	ExtractClip(ctx context.Context, videoID string, startSeconds, endSeconds float64, title *string) (model.Clip, error)
	ExtractClipsFromInstructions(ctx context.Context, videoID, instructions string) (model.ProcessingJob, []model.Clip, error)
	Get(ctx context.Context, clipID string) (model.Clip, error)
	ListByVideo(ctx context.Context, videoID string) ([]model.Clip, error)
	GetJob(ctx context.Context, jobID string) (model.ProcessingJob, error)
	ListJobs(ctx context.Context, videoID string) ([]model.ProcessingJob, error)
}

type clipService struct {
	videos         videorepo.Repository
	clips          cliprepo.Repository
	jobs           jobrepo.Repository
	transcriptions transcriptionrepo.Repository
	refined        transcriptionrepo.RefinedRepository
	origin         storage.OriginStore
	blobs          Materializer
	media          media.Gateway
	generator      textgen.Generator
	cfg            Config
	logger         logging.Logger
}

// NewService creates the clip extraction service
func NewService(
	videos videorepo.Repository,
	clips cliprepo.Repository,
	jobs jobrepo.Repository,
	transcriptions transcriptionrepo.Repository,
	refined transcriptionrepo.RefinedRepository,
	origin storage.OriginStore,
	blobs Materializer,
	mediaGateway media.Gateway,
	generator textgen.Generator,
	cfg Config,
	logger logging.Logger,
) Service {
	if cfg.MinDurationSeconds <= 0 {
		cfg.MinDurationSeconds = DefaultConfig().MinDurationSeconds
	}
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = DefaultConfig().MaxDurationSeconds
	}
	if cfg.ExcerptMaxRunes <= 0 {
		cfg.ExcerptMaxRunes = DefaultConfig().ExcerptMaxRunes
	}
	if cfg.ClipsFolder == "" {
		cfg.ClipsFolder = DefaultConfig().ClipsFolder
	}
	return &clipService{
		videos:         videos,
		clips:          clips,
		jobs:           jobs,
		transcriptions: transcriptions,
		refined:        refined,
		origin:         origin,
		blobs:          blobs,
		media:          mediaGateway,
		generator:      generator,
		cfg:            cfg,
		logger:         logger,
	}
}

// ExtractClip cuts an explicit time range out of a transcribed video. A
// failure while cutting or uploading marks the clip failed but still
// completes the video; failures before the clip work starts revert the video
// to the transcribed checkpoint and are returned.
func (s *clipService) ExtractClip(ctx context.Context, videoID string, startSeconds, endSeconds float64, title *string) (model.Clip, error) {
	v, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.Clip{}, err
	}
	transcription, err := s.transcriptions.GetByVideoID(ctx, videoID)
	if err != nil {
		return model.Clip{}, err
	}
	refined, err := s.refined.GetByTranscriptionID(ctx, transcription.ID)
	if err != nil {
		return model.Clip{}, err
	}

	clip, err := model.NewClip(videoID, startSeconds, endSeconds, s.cfg.MinDurationSeconds, s.cfg.MaxDurationSeconds)
	if err != nil {
		return model.Clip{}, err
	}
	if transcription.DurationSeconds > 0 && endSeconds > transcription.DurationSeconds {
		return model.Clip{}, apperrors.Newf(apperrors.CodeValidation,
			"clip end %.1fs exceeds the transcribed duration %.1fs", endSeconds, transcription.DurationSeconds)
	}

	if title != nil && strings.TrimSpace(*title) != "" {
		clip = clip.WithTitle(strings.TrimSpace(*title))
	} else if derived := deriveTitle(refined.Sentences, startSeconds, endSeconds); derived != "" {
		clip = clip.WithTitle(derived)
	} else {
		clip = clip.WithTitle(v.Title)
	}
	if excerpt := deriveExcerpt(refined.Sentences, startSeconds, endSeconds, s.cfg.ExcerptMaxRunes); excerpt != "" {
		clip = clip.WithExcerpt(excerpt)
	}

	v, err = s.advanceToExtracting(ctx, v)
	if err != nil {
		return model.Clip{}, err
	}

	tempDir, err := os.MkdirTemp("", "videoproc-clip-*")
	if err != nil {
		s.revertVideo(ctx, v)
		return model.Clip{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	localPath, v, err := s.blobs.Materialize(ctx, v, tempDir)
	if err != nil {
		s.revertVideo(ctx, v)
		return model.Clip{}, err
	}

	if err := s.clips.Create(ctx, clip); err != nil {
		s.revertVideo(ctx, v)
		return model.Clip{}, err
	}

	clip, cutErr := s.cutAndUpload(ctx, clip, localPath, tempDir, transcription.DurationSeconds)
	if cutErr != nil {
		s.logger.Warn().
			Err(cutErr).
			Str("clip_id", clip.ID).
			Msg("clip work failed; the video pipeline continues")
	}

	v, err = v.WithStatus(model.VideoStatusCompleted)
	if err != nil {
		return clip, err
	}
	if err := s.videos.Update(ctx, v); err != nil {
		return clip, err
	}

	s.logger.Info().
		Str("clip_id", clip.ID).
		Str("video_id", videoID).
		Str("status", string(clip.Status)).
		Msg("clip extraction finished")
	return clip, nil
}

func (s *clipService) Get(ctx context.Context, clipID string) (model.Clip, error) {
	return s.clips.GetByID(ctx, clipID)
}

func (s *clipService) ListByVideo(ctx context.Context, videoID string) ([]model.Clip, error) {
	return s.clips.ListByVideoID(ctx, videoID)
}

func (s *clipService) GetJob(ctx context.Context, jobID string) (model.ProcessingJob, error) {
	return s.jobs.GetByID(ctx, jobID)
}

func (s *clipService) ListJobs(ctx context.Context, videoID string) ([]model.ProcessingJob, error) {
	return s.jobs.ListByVideoID(ctx, videoID)
}

// advanceToExtracting moves the video to extracting, using the corrective
// re-entry when it sits at completed or failed.
func (s *clipService) advanceToExtracting(ctx context.Context, v model.Video) (model.Video, error) {
	if v.Status == model.VideoStatusCompleted || v.Status == model.VideoStatusFailed {
		reentered, err := v.ReenterTranscribed()
		if err != nil {
			return model.Video{}, err
		}
		v = reentered
	}

	v, err := v.WithStatus(model.VideoStatusExtracting)
	if err != nil {
		return model.Video{}, err
	}
	if err := s.videos.Update(ctx, v); err != nil {
		return model.Video{}, err
	}
	return v, nil
}

// revertVideo returns the video to the transcribed checkpoint after an
// orchestrator-level failure so the extraction can be retried.
func (s *clipService) revertVideo(ctx context.Context, v model.Video) {
	reverted, err := v.ReenterTranscribed()
	if err != nil {
		s.logger.Error().Err(err).Str("video_id", v.ID).Msg("could not revert video to transcribed")
		return
	}
	if err := s.videos.Update(ctx, reverted); err != nil {
		s.logger.Error().Err(err).Str("video_id", v.ID).Msg("could not persist video revert")
	}
}

// cutAndUpload renders one clip from the local source file and stores it in
// the clips folder of the origin store. The trailing padding avoids cutting
// off the last word but never reaches past the source duration.
func (s *clipService) cutAndUpload(ctx context.Context, clip model.Clip, localSource, tempDir string, sourceDuration float64) (model.Clip, error) {
	clip, err := clip.WithStatus(model.ClipStatusProcessing)
	if err != nil {
		return clip, err
	}
	if err := s.clips.Update(ctx, clip); err != nil {
		return clip, err
	}

	paddedEnd := clip.EndSeconds + s.cfg.TrailingPaddingSeconds
	if sourceDuration > 0 && paddedEnd > sourceDuration {
		paddedEnd = sourceDuration
	}

	fileName := "clip_" + clip.ID + ".mp4"
	outputPath := filepath.Join(tempDir, fileName)
	if err := s.media.ExtractSubrange(ctx, localSource, clip.StartSeconds, paddedEnd, outputPath); err != nil {
		return s.failClip(ctx, clip, err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		return s.failClip(ctx, clip, apperrors.Wrap(err, apperrors.CodeInternal, "rendered clip could not be reopened"))
	}
	defer f.Close()

	folderID, err := s.origin.EnsureFolder(ctx, s.cfg.ClipsFolder, "")
	if err != nil {
		return s.failClip(ctx, clip, err)
	}
	uploaded, err := s.origin.Write(ctx, f, fileName, folderID)
	if err != nil {
		return s.failClip(ctx, clip, err)
	}

	clip = clip.WithUploadedFile(uploaded.ID)
	clip, err = clip.WithStatus(model.ClipStatusCompleted)
	if err != nil {
		return clip, err
	}
	if err := s.clips.Update(ctx, clip); err != nil {
		return clip, err
	}
	return clip, nil
}

func (s *clipService) failClip(ctx context.Context, clip model.Clip, cause error) (model.Clip, error) {
	failed, err := clip.MarkFailed(cause.Error())
	if err != nil {
		s.logger.Error().Err(err).Str("clip_id", clip.ID).Msg("could not mark clip failed")
		return clip, cause
	}
	if err := s.clips.Update(ctx, failed); err != nil {
		s.logger.Error().Err(err).Str("clip_id", clip.ID).Msg("could not persist failed clip status")
	}
	return failed, cause
}
