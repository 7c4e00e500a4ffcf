package compose

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	compositionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/composition"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/batch"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

// Config carries the composition tunables
type Config struct {
	ComposedFolder string
	BGMFolder      string
	CanvasWidth    int
	CanvasHeight   int
}

// DefaultConfig returns the folders and canvas used when nothing is configured
func DefaultConfig() Config {
	canvas := media.DefaultCanvas()
	return Config{
		ComposedFolder: "composed",
		BGMFolder:      "bgm",
		CanvasWidth:    canvas.Width,
		CanvasHeight:   canvas.Height,
	}
}

// Service renders scene lists into composed short videos
type Service interface {
	Compose(ctx context.Context, projectID, scriptID string, scenes []SceneInput, bgm *string) (model.ComposedVideo, error)
	Reset(ctx context.Context, composedVideoID string) (model.ComposedVideo, error)
	Get(ctx context.Context, composedVideoID string) (model.ComposedVideo, error)
	GetByScript(ctx context.Context, scriptID string) (model.ComposedVideo, error)
	ListByProject(ctx context.Context, projectID string) ([]model.ComposedVideo, error)
}

type composeService struct {
	compositions compositionrepo.Repository
	origin       storage.OriginStore
	media        media.Gateway
	cfg          Config
	logger       logging.Logger
}

// NewService creates the composition service
func NewService(
	compositions compositionrepo.Repository,
	origin storage.OriginStore,
	mediaGateway media.Gateway,
	cfg Config,
	logger logging.Logger,
) Service {
	defaults := DefaultConfig()
	if cfg.ComposedFolder == "" {
		cfg.ComposedFolder = defaults.ComposedFolder
	}
	if cfg.BGMFolder == "" {
		cfg.BGMFolder = defaults.BGMFolder
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		cfg.CanvasWidth = defaults.CanvasWidth
		cfg.CanvasHeight = defaults.CanvasHeight
	}
	return &composeService{
		compositions: compositions,
		origin:       origin,
		media:        mediaGateway,
		cfg:          cfg,
		logger:       logger,
	}
}

// Compose renders the scene list into one video for the script. A script has
// at most one composition: an in-flight or finished one has to be reset
// before composing again. Scene assets that cannot be resolved are skipped;
// only a fully unresolvable list fails the composition.
func (s *composeService) Compose(ctx context.Context, projectID, scriptID string, scenes []SceneInput, bgm *string) (model.ComposedVideo, error) {
	if err := validateScenes(scenes); err != nil {
		return model.ComposedVideo{}, err
	}

	cv, err := s.prepareComposition(ctx, projectID, scriptID, bgm)
	if err != nil {
		return model.ComposedVideo{}, err
	}

	cv, err = cv.WithStatus(model.CompositionStatusProcessing)
	if err != nil {
		return model.ComposedVideo{}, err
	}
	if err := s.compositions.Update(ctx, cv); err != nil {
		return model.ComposedVideo{}, err
	}

	tempDir, err := os.MkdirTemp("", "videoproc-compose-*")
	if err != nil {
		return s.fail(ctx, cv, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create temp directory"))
	}
	defer os.RemoveAll(tempDir)

	resolved := make([]media.Scene, 0, len(scenes))
	batch.ForEach(ctx, s.logger, "scene resolution", scenes, func(ctx context.Context, i int, in SceneInput) error {
		scene, err := s.resolveScene(ctx, i, in, tempDir)
		if err != nil {
			return err
		}
		resolved = append(resolved, scene)
		return nil
	})
	if len(resolved) == 0 {
		return s.fail(ctx, cv, apperrors.New(apperrors.CodeExternal, "no scene assets could be resolved"))
	}

	bgmPath := ""
	if cv.BGM != nil && *cv.BGM != "" {
		bgmPath, err = s.resolveBGM(ctx, *cv.BGM, tempDir)
		if err != nil {
			return s.fail(ctx, cv, err)
		}
	}

	fileName := "composed_" + cv.ID + ".mp4"
	outputPath := filepath.Join(tempDir, fileName)
	canvas := media.Canvas{Width: s.cfg.CanvasWidth, Height: s.cfg.CanvasHeight}
	if err := s.media.ComposeScenes(ctx, resolved, canvas, bgmPath, outputPath); err != nil {
		return s.fail(ctx, cv, err)
	}

	duration, err := s.media.ProbeDuration(ctx, outputPath)
	if err != nil {
		return s.fail(ctx, cv, err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		return s.fail(ctx, cv, apperrors.Wrap(err, apperrors.CodeInternal, "composed video could not be reopened"))
	}
	defer f.Close()

	folderID, err := s.origin.EnsureFolder(ctx, s.cfg.ComposedFolder, "")
	if err != nil {
		return s.fail(ctx, cv, err)
	}
	uploaded, err := s.origin.Write(ctx, f, fileName, folderID)
	if err != nil {
		return s.fail(ctx, cv, err)
	}

	cv = cv.WithOutput(uploaded.ID, duration)
	cv, err = cv.WithStatus(model.CompositionStatusCompleted)
	if err != nil {
		return model.ComposedVideo{}, err
	}
	if err := s.compositions.Update(ctx, cv); err != nil {
		return model.ComposedVideo{}, err
	}

	s.logger.Info().
		Str("composed_video_id", cv.ID).
		Str("script_id", scriptID).
		Int("scenes", len(resolved)).
		Float64("duration_seconds", duration).
		Msg("composition finished")
	return cv, nil
}

// Reset returns a finished composition to pending for regeneration
func (s *composeService) Reset(ctx context.Context, composedVideoID string) (model.ComposedVideo, error) {
	cv, err := s.compositions.GetByID(ctx, composedVideoID)
	if err != nil {
		return model.ComposedVideo{}, err
	}
	reset, err := cv.Reset()
	if err != nil {
		return model.ComposedVideo{}, err
	}
	if err := s.compositions.Update(ctx, reset); err != nil {
		return model.ComposedVideo{}, err
	}
	return reset, nil
}

func (s *composeService) Get(ctx context.Context, composedVideoID string) (model.ComposedVideo, error) {
	return s.compositions.GetByID(ctx, composedVideoID)
}

func (s *composeService) GetByScript(ctx context.Context, scriptID string) (model.ComposedVideo, error) {
	return s.compositions.GetByScriptID(ctx, scriptID)
}

func (s *composeService) ListByProject(ctx context.Context, projectID string) ([]model.ComposedVideo, error) {
	return s.compositions.ListByProjectID(ctx, projectID)
}

// prepareComposition returns the pending composition to run: a fresh record,
// or the script's existing pending one. Anything further along is a conflict.
func (s *composeService) prepareComposition(ctx context.Context, projectID, scriptID string, bgm *string) (model.ComposedVideo, error) {
	existing, err := s.compositions.GetByScriptID(ctx, scriptID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			cv := model.NewComposedVideo(projectID, scriptID, bgm)
			if err := s.compositions.Create(ctx, cv); err != nil {
				return model.ComposedVideo{}, err
			}
			return cv, nil
		}
		return model.ComposedVideo{}, err
	}

	switch existing.Status {
	case model.CompositionStatusPending:
		existing.BGM = bgm
		return existing, nil
	case model.CompositionStatusProcessing:
		return model.ComposedVideo{}, apperrors.Newf(apperrors.CodeConflict,
			"a composition for script %s is already processing", scriptID)
	default:
		return model.ComposedVideo{}, apperrors.Newf(apperrors.CodeConflict,
			"script %s already has a %s composition; reset it before composing again", scriptID, existing.Status)
	}
}

// resolveScene downloads one scene asset into the working directory
func (s *composeService) resolveScene(ctx context.Context, index int, in SceneInput, tempDir string) (media.Scene, error) {
	meta, err := s.origin.GetMetadata(ctx, in.AssetFileID)
	if err != nil {
		return media.Scene{}, err
	}

	assetPath := filepath.Join(tempDir, fmt.Sprintf("scene_%03d%s", index, filepath.Ext(meta.Name)))
	if err := s.download(ctx, in.AssetFileID, assetPath); err != nil {
		return media.Scene{}, err
	}

	return media.Scene{
		AssetPath:       assetPath,
		DurationSeconds: in.DurationSeconds,
		Caption:         in.Caption,
	}, nil
}

// resolveBGM downloads the background music track into the working directory.
// A bare track name that is not a file ID itself is looked up inside the
// configured BGM folder.
func (s *composeService) resolveBGM(ctx context.Context, fileID, tempDir string) (string, error) {
	meta, err := s.origin.GetMetadata(ctx, fileID)
	if apperrors.IsCode(err, apperrors.CodeNotFound) && !strings.Contains(fileID, "/") {
		fileID = path.Join(s.cfg.BGMFolder, fileID)
		meta, err = s.origin.GetMetadata(ctx, fileID)
	}
	if err != nil {
		return "", err
	}
	bgmPath := filepath.Join(tempDir, "bgm"+filepath.Ext(meta.Name))
	if err := s.download(ctx, fileID, bgmPath); err != nil {
		return "", err
	}
	return bgmPath, nil
}

func (s *composeService) download(ctx context.Context, fileID, localPath string) error {
	rc, err := s.origin.ReadStream(ctx, fileID)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to create local asset file")
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to download asset")
	}
	return nil
}

func (s *composeService) fail(ctx context.Context, cv model.ComposedVideo, cause error) (model.ComposedVideo, error) {
	failed, err := cv.MarkFailed(cause.Error())
	if err != nil {
		s.logger.Error().Err(err).Str("composed_video_id", cv.ID).Msg("could not mark composition failed")
		return model.ComposedVideo{}, cause
	}
	if err := s.compositions.Update(ctx, failed); err != nil {
		s.logger.Error().Err(err).Str("composed_video_id", cv.ID).Msg("could not persist failed composition status")
	}
	return failed, cause
}

func validateScenes(scenes []SceneInput) error {
	if len(scenes) == 0 {
		return apperrors.New(apperrors.CodeValidation, "at least one scene is required")
	}
	for i, sc := range scenes {
		if strings.TrimSpace(sc.AssetFileID) == "" {
			return apperrors.Newf(apperrors.CodeValidation, "scene %d is missing asset_file_id", i)
		}
		if sc.DurationSeconds <= 0 {
			return apperrors.Newf(apperrors.CodeValidation, "scene %d needs a positive duration", i)
		}
	}
	return nil
}
