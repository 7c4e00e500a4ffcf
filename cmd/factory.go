package cmd

import (
	"context"
	"fmt"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/config"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	cliprepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/clip"
	compositionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/composition"
	jobrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/job"
	subtitlerepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/subtitle"
	transcriptionrepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/transcription"
	videorepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/video"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/blobcache"
	clipsvc "github.com/team-mirai-volunteer/video-processor-sub003/internal/service/clip"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/common"
	composesvc "github.com/team-mirai-volunteer/video-processor-sub003/internal/service/compose"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/refine"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/speech"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
	subtitlesvc "github.com/team-mirai-volunteer/video-processor-sub003/internal/service/subtitle"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/textgen"
	videosvc "github.com/team-mirai-volunteer/video-processor-sub003/internal/service/video"
)

// App bundles the wired pipeline services for the command layer
type App struct {
	Video    videosvc.Service
	Clip     clipsvc.Service
	Subtitle subtitlesvc.Service
	Compose  composesvc.Service
	Blobs    *blobcache.Manager
	Logger   logging.Logger
}

// ServiceFactory builds the dependency graph once per command invocation:
// config, database pool, repositories, gateways, services. All wiring is
// explicit; nothing is constructed lazily at first use.
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateApp wires all services with real dependencies. The returned cleanup
// function closes the database pool and must be called when the command ends.
func (f *ServiceFactory) CreateApp(ctx context.Context) (*App, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.AppEnv)

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	videos := videorepo.NewRepository(dbPool)
	clips := cliprepo.NewRepository(dbPool)
	jobs := jobrepo.NewRepository(dbPool)
	transcriptions := transcriptionrepo.NewRepository(dbPool)
	refined := transcriptionrepo.NewRefinedRepository(dbPool)
	subtitles := subtitlerepo.NewRepository(dbPool)
	compositions := compositionrepo.NewRepository(dbPool)

	origin, err := storage.NewFSOriginStore(cfg.Storage.OriginRoot)
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to open origin store: %w", err)
	}
	cache, err := storage.NewFSCacheStore(cfg.Cache.Root, cfg.CacheTTL(), cfg.Cache.SigningSecret, "")
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	blobs := blobcache.NewManager(origin, cache, videos, logger, cfg.CacheSafetyBuffer(), cfg.ReadURLTTL())

	runner := common.NewCmdRunner()
	mediaGateway := media.NewFFmpegGatewayWithCmdRunner(runner, cfg.Media.FFmpegBin, cfg.Media.FFprobeBin)
	transcriber := speech.NewWhisperTranscriberWithCmdRunner(runner, cfg.Speech.WhisperBin, cfg.Speech.Model)
	generator := textgen.NewGeminiClient(cfg.TextGen.APIKey, cfg.TextGen.Model, cfg.TextGen.BaseURL, cfg.TextGenTimeout())

	dict, err := refine.LoadDictionary(cfg.Refine.DictionaryPath)
	if err != nil {
		dbPool.Close()
		return nil, nil, fmt.Errorf("failed to load correction dictionary: %w", err)
	}
	refiner := refine.NewService(generator, refined, dict, cfg.Refine.ChunkSize, cfg.Refine.Overlap, logger)

	videoService := videosvc.NewService(
		videos, transcriptions, origin, cache, blobs,
		mediaGateway, transcriber, refiner, cfg.Speech.Language, logger,
	)
	clipService := clipsvc.NewService(
		videos, clips, jobs, transcriptions, refined, origin, blobs,
		mediaGateway, generator,
		clipsvc.Config{
			MinDurationSeconds:     cfg.Clip.MinDurationSeconds,
			MaxDurationSeconds:     cfg.Clip.MaxDurationSeconds,
			TrailingPaddingSeconds: cfg.Clip.TrailingPaddingSeconds,
			ExcerptMaxRunes:        cfg.Clip.ExcerptMaxRunes,
			ClipsFolder:            cfg.Storage.ClipsFolder,
		},
		logger,
	)
	subtitleService := subtitlesvc.NewService(
		clips, transcriptions, refined, subtitles,
		model.SubtitleLimits{
			MaxLines:     cfg.Subtitle.MaxLines,
			MaxLineRunes: cfg.Subtitle.MaxLineRunes,
		},
		logger,
	)
	composeService := composesvc.NewService(
		compositions, origin, mediaGateway,
		composesvc.Config{
			ComposedFolder: cfg.Storage.ComposedFolder,
			BGMFolder:      cfg.Compose.BGMFolder,
			CanvasWidth:    cfg.Compose.CanvasWidth,
			CanvasHeight:   cfg.Compose.CanvasHeight,
		},
		logger,
	)

	app := &App{
		Video:    videoService,
		Clip:     clipService,
		Subtitle: subtitleService,
		Compose:  composeService,
		Blobs:    blobs,
		Logger:   logger,
	}
	cleanup := func() {
		dbPool.Close()
	}
	return app, cleanup, nil
}
