package blobcache

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/logging"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	videorepo "github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/video"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

const (
	defaultSafetyBuffer = 5 * time.Minute
	defaultReadURLTTL   = 60 * time.Minute
)

// Manager decides whether a video's cached source blob is usable, re-acquires
// it from the origin store when it is not, and materializes the bytes as a
// local file for tools that need filesystem input. Each fallback tier is
// attempted only when the previous one is unusable; tier failures are logged
// and fall through, so a degraded path still completes when only the final
// origin read succeeds.
type Manager struct {
	origin       storage.OriginStore
	cache        storage.CacheStore
	videos       videorepo.Repository
	logger       logging.Logger
	safetyBuffer time.Duration
	readURLTTL   time.Duration
}

// NewManager creates a Manager. Non-positive durations fall back to the
// 5-minute safety buffer and 60-minute read URL lifetime.
func NewManager(origin storage.OriginStore, cache storage.CacheStore, videos videorepo.Repository, logger logging.Logger, safetyBuffer, readURLTTL time.Duration) *Manager {
	if safetyBuffer <= 0 {
		safetyBuffer = defaultSafetyBuffer
	}
	if readURLTTL <= 0 {
		readURLTTL = defaultReadURLTTL
	}
	return &Manager{
		origin:       origin,
		cache:        cache,
		videos:       videos,
		logger:       logger,
		safetyBuffer: safetyBuffer,
		readURLTTL:   readURLTTL,
	}
}

// Materialize returns a local path to the video's source bytes inside
// workDir, along with the video snapshot carrying any refreshed cache
// reference. The caller owns workDir and deletes it when done.
func (m *Manager) Materialize(ctx context.Context, v model.Video, workDir string) (string, model.Video, error) {
	if workDir == "" {
		return "", v, apperrors.New(apperrors.CodeValidation, "work directory is required")
	}

	key, cached, err := m.ensureCached(ctx, v)
	v = cached
	if err == nil {
		localPath, copyErr := m.copyCacheToLocal(ctx, key, workDir, localSourceName(v))
		if copyErr == nil {
			return localPath, v, nil
		}
		m.logger.Warn().Err(copyErr).Str("video_id", v.ID).Str("cache_key", key).
			Msg("reading cached blob failed, falling back to origin")
	} else {
		m.logger.Warn().Err(err).Str("video_id", v.ID).
			Msg("caching source blob failed, falling back to origin")
	}

	localPath, err := m.copyOriginToLocal(ctx, v, workDir)
	if err != nil {
		return "", v, apperrors.Wrap(err, apperrors.CodeExternal,
			"source video could not be materialized from cache or origin")
	}
	return localPath, v, nil
}

// IssueReadURL returns a time-boxed URL for the video's cached source blob,
// caching it first when needed. Callers that need a remote-readable locator
// use this instead of Materialize.
func (m *Manager) IssueReadURL(ctx context.Context, v model.Video) (string, error) {
	key, _, err := m.ensureCached(ctx, v)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal,
			"source video could not be cached for a read URL")
	}
	return m.cache.SignedURL(key, m.readURLTTL)
}

// ensureCached runs the trust tiers: validity check, physical existence
// re-verification, then re-cache from origin. A fresh cache reference is
// persisted on the video immediately so later calls reuse it even if this
// pipeline run fails further down.
func (m *Manager) ensureCached(ctx context.Context, v model.Video) (string, model.Video, error) {
	if v.HasValidCache(time.Now(), m.safetyBuffer) {
		key := *v.CachedBlobKey
		ok, err := m.cache.Exists(ctx, key)
		switch {
		case err != nil:
			m.logger.Warn().Err(err).Str("video_id", v.ID).Str("cache_key", key).
				Msg("cache existence check failed, re-caching")
		case ok:
			return key, v, nil
		default:
			m.logger.Warn().Str("video_id", v.ID).Str("cache_key", key).
				Msg("cached blob no longer present in cache store, re-caching")
		}
		v = v.ClearCachedBlob()
	}

	rc, err := m.origin.ReadStream(ctx, v.SourceFileID)
	if err != nil {
		return "", v, err
	}
	defer rc.Close()

	entry, err := m.cache.Put(ctx, rc, path.Base(v.SourceFileID))
	if err != nil {
		return "", v, err
	}

	v = v.WithCachedBlob(entry.Key, entry.ExpiresAt)
	if err := m.videos.Update(ctx, v); err != nil {
		m.logger.Warn().Err(err).Str("video_id", v.ID).
			Msg("failed to persist cache reference on video")
	}
	return entry.Key, v, nil
}

func (m *Manager) copyCacheToLocal(ctx context.Context, key, workDir, name string) (string, error) {
	rc, err := m.cache.ReadStream(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return writeLocal(rc, workDir, name)
}

func (m *Manager) copyOriginToLocal(ctx context.Context, v model.Video, workDir string) (string, error) {
	rc, err := m.origin.ReadStream(ctx, v.SourceFileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return writeLocal(rc, workDir, localSourceName(v))
}

func writeLocal(r io.Reader, workDir, name string) (string, error) {
	localPath := filepath.Join(workDir, name)
	f, err := os.Create(localPath)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to create local file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(localPath)
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to write local file")
	}
	if err := f.Close(); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to close local file")
	}
	return localPath, nil
}

// localSourceName keeps the source's base name (ffmpeg uses the extension as
// a container hint) under a stable prefix.
func localSourceName(v model.Video) string {
	base := path.Base(strings.ReplaceAll(v.SourceFileID, "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return "source_" + v.ID
	}
	return "source_" + base
}
