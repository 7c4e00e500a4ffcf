package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	transcriptionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/transcription"
	videorepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/video"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/refine"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/speech"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

const defaultListLimit = 20

// Materializer is the slice of the blob cache manager the pipeline needs:
// a local, playable copy of the source plus the refreshed video snapshot.
type Materializer interface {
	Materialize(ctx context.Context, v model.Video, workDir string) (string, model.Video, error)
}

// Service drives a video from submission through transcription and refinement
type Service interface {
	Submit(ctx context.Context, sourceFileID, title string) (model.Video, error)
	Process(ctx context.Context, videoID string) (model.Video, error)
	Reprocess(ctx context.Context, videoID string) (model.Video, error)
	Get(ctx context.Context, videoID string) (model.Video, error)
	List(ctx context.Context, status string, limit, offset int) ([]model.Video, error)
	Delete(ctx context.Context, videoID string) error
}

type videoService struct {
	videos         videorepo.Repository
	transcriptions transcriptionrepo.Repository
	origin         storage.OriginStore
	cache          storage.CacheStore
	blobs          Materializer
	media          media.Gateway
	speech         speech.Transcriber
	refiner        refine.Service
	language       string
	logger         logging.Logger
}

// NewService creates the intake and transcription pipeline service
func NewService(
	videos videorepo.Repository,
	transcriptions transcriptionrepo.Repository,
	origin storage.OriginStore,
	cache storage.CacheStore,
	blobs Materializer,
	mediaGateway media.Gateway,
	transcriber speech.Transcriber,
	refiner refine.Service,
	language string,
	logger logging.Logger,
) Service {
	return &videoService{
		videos:         videos,
		transcriptions: transcriptions,
		origin:         origin,
		cache:          cache,
		blobs:          blobs,
		media:          mediaGateway,
		speech:         transcriber,
		refiner:        refiner,
		language:       language,
		logger:         logger,
	}
}

// Submit registers a source file as a pending video. The title falls back to
// the origin file name when not given.
func (s *videoService) Submit(ctx context.Context, sourceFileID, title string) (model.Video, error) {
	if strings.TrimSpace(sourceFileID) == "" {
		return model.Video{}, apperrors.New(apperrors.CodeValidation, "source file id is required")
	}

	meta, err := s.origin.GetMetadata(ctx, sourceFileID)
	if err != nil {
		return model.Video{}, err
	}

	if strings.TrimSpace(title) == "" {
		title = meta.Name
	}

	v := model.NewVideo(sourceFileID, title)
	v = v.WithMetadata(&meta.SizeBytes, nil)
	if err := s.videos.Create(ctx, v); err != nil {
		return model.Video{}, err
	}

	s.logger.Info().
		Str("video_id", v.ID).
		Str("source_file_id", sourceFileID).
		Msg("video submitted")
	return v, nil
}

// Process runs a pending video through materialization, audio extraction,
// transcription and refinement, persisting progress after every stage.
// Pipeline failures mark the video failed and are returned to the caller.
func (s *videoService) Process(ctx context.Context, videoID string) (model.Video, error) {
	v, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.Video{}, err
	}

	v, err = v.WithStatus(model.VideoStatusProcessing)
	if err != nil {
		return model.Video{}, err
	}
	if v, err = s.saveProgress(ctx, v, "materializing source video"); err != nil {
		return model.Video{}, err
	}

	tempDir, err := os.MkdirTemp("", "videoproc-pipeline-*")
	if err != nil {
		return s.fail(ctx, v, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory"))
	}
	defer os.RemoveAll(tempDir)

	localPath, v, err := s.blobs.Materialize(ctx, v, tempDir)
	if err != nil {
		return s.fail(ctx, v, err)
	}

	if v, err = s.saveProgress(ctx, v, "extracting audio"); err != nil {
		return model.Video{}, err
	}
	audioPath := filepath.Join(tempDir, "audio.wav")
	if err := s.media.ExtractAudio(ctx, localPath, audioPath); err != nil {
		return s.fail(ctx, v, err)
	}
	v = s.parkAudio(ctx, v, audioPath)

	v, err = v.WithStatus(model.VideoStatusTranscribing)
	if err != nil {
		return s.fail(ctx, v, err)
	}
	if v, err = s.saveProgress(ctx, v, "transcribing audio"); err != nil {
		return model.Video{}, err
	}

	result, err := s.speech.TranscribeLong(speech.WithWorkDir(ctx, tempDir), audioPath, s.language)
	if err != nil {
		return s.fail(ctx, v, err)
	}

	languageCode := result.LanguageCode
	if languageCode == "" {
		languageCode = s.language
	}
	transcription := model.NewTranscription(v.ID, result.Text, result.Segments, languageCode, result.DurationSeconds)
	if err := s.transcriptions.Replace(ctx, transcription); err != nil {
		return s.fail(ctx, v, err)
	}

	v = v.WithMetadata(nil, &result.DurationSeconds)
	v, err = v.WithStatus(model.VideoStatusTranscribed)
	if err != nil {
		return s.fail(ctx, v, err)
	}
	if v, err = s.saveProgress(ctx, v, "refining transcript"); err != nil {
		return model.Video{}, err
	}

	if _, err := s.refiner.Refine(ctx, transcription); err != nil {
		return s.fail(ctx, v, err)
	}

	if v, err = s.saveProgress(ctx, v, "ready for clip extraction"); err != nil {
		return model.Video{}, err
	}

	s.logger.Info().
		Str("video_id", v.ID).
		Float64("duration_seconds", result.DurationSeconds).
		Int("segments", len(result.Segments)).
		Msg("video processing completed")
	return v, nil
}

// Reprocess re-enters a completed or failed video at pending and runs the
// full pipeline again. The cached source blob is reused when still valid.
func (s *videoService) Reprocess(ctx context.Context, videoID string) (model.Video, error) {
	v, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return model.Video{}, err
	}

	v, err = v.ReenterPending()
	if err != nil {
		return model.Video{}, err
	}
	if err := s.videos.Update(ctx, v); err != nil {
		return model.Video{}, err
	}

	s.logger.Info().Str("video_id", v.ID).Msg("video re-entered pending for reprocess")
	return s.Process(ctx, videoID)
}

func (s *videoService) Get(ctx context.Context, videoID string) (model.Video, error) {
	return s.videos.GetByID(ctx, videoID)
}

// List returns videos, optionally filtered to one lifecycle status
func (s *videoService) List(ctx context.Context, status string, limit, offset int) ([]model.Video, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if status == "" {
		return s.videos.List(ctx, limit, offset)
	}

	st := model.VideoStatus(status)
	if _, ok := model.VideoTransitions[st]; !ok {
		return nil, apperrors.Newf(apperrors.CodeValidation, "unknown video status %q", status)
	}
	return s.videos.ListByStatus(ctx, st, limit, offset)
}

func (s *videoService) Delete(ctx context.Context, videoID string) error {
	if _, err := s.videos.GetByID(ctx, videoID); err != nil {
		return err
	}
	return s.videos.Delete(ctx, videoID)
}

// saveProgress persists the video with an updated progress note
func (s *videoService) saveProgress(ctx context.Context, v model.Video, progress string) (model.Video, error) {
	v = v.WithProgress(progress)
	if err := s.videos.Update(ctx, v); err != nil {
		return model.Video{}, err
	}
	s.logger.Info().
		Str("video_id", v.ID).
		Str("status", string(v.Status)).
		Str("progress", progress).
		Msg("video pipeline progress")
	return v, nil
}

// parkAudio stores the extracted audio in the cache store so a later
// re-transcription can skip the extraction. The local file keeps the pipeline
// going when the cache store is unavailable.
func (s *videoService) parkAudio(ctx context.Context, v model.Video, audioPath string) model.Video {
	f, err := os.Open(audioPath)
	if err != nil {
		s.logger.Warn().Err(err).Str("video_id", v.ID).Msg("extracted audio could not be reopened for caching")
		return v
	}
	defer f.Close()

	entry, err := s.cache.Put(ctx, f, v.ID+"_audio.wav")
	if err != nil {
		s.logger.Warn().Err(err).Str("video_id", v.ID).Msg("parking extracted audio in cache failed")
		return v
	}

	updated := v.WithAudioBlob(entry.Key)
	if err := s.videos.Update(ctx, updated); err != nil {
		s.logger.Warn().Err(err).Str("video_id", v.ID).Msg("failed to persist audio cache reference")
		return v
	}
	return updated
}

func (s *videoService) fail(ctx context.Context, v model.Video, cause error) (model.Video, error) {
	failed, err := v.MarkFailed(cause.Error())
	if err != nil {
		s.logger.Error().Err(err).Str("video_id", v.ID).Msg("could not mark video failed")
		return model.Video{}, cause
	}
	if err := s.videos.Update(ctx, failed); err != nil {
		s.logger.Error().Err(err).Str("video_id", v.ID).Msg("could not persist failed video status")
	}
	return model.Video{}, cause
}
