package blobcache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(origin *mockOriginStore, cache *mockCacheStore, videos *mockVideoRepo) *Manager {
	return NewManager(origin, cache, videos, zerolog.Nop(), 5*time.Minute, time.Hour)
}

func cachedVideo(expiresIn time.Duration) model.Video {
	v := model.NewVideo("uploads/interview.mp4", "区政報告インタビュー")
	return v.WithCachedBlob("cache-key-1_interview.mp4", time.Now().Add(expiresIn))
}

func streamOf(content string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(content))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestManager_Materialize_ValidCacheFastPath(t *testing.T) {
	originReads := 0
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			originReads++
			return streamOf("origin bytes"), nil
		},
	}
	cache := &mockCacheStore{
		ExistsFunc: func(ctx context.Context, key string) (bool, error) {
			assert.Equal(t, "cache-key-1_interview.mp4", key)
			return true, nil
		},
		ReadStreamFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return streamOf("cached bytes"), nil
		},
	}
	updates := 0
	videos := &mockVideoRepo{
		UpdateFunc: func(ctx context.Context, video model.Video) error {
			updates++
			return nil
		},
	}

	manager := newTestManager(origin, cache, videos)
	workDir := t.TempDir()
	v := cachedVideo(time.Hour)

	localPath, updated, err := manager.Materialize(context.Background(), v, workDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workDir, "source_interview.mp4"), localPath)
	assert.Equal(t, "cached bytes", readFile(t, localPath))
	assert.Equal(t, *v.CachedBlobKey, *updated.CachedBlobKey, "fast path must keep the existing reference")
	assert.Zero(t, originReads, "fast path must not touch the origin store")
	assert.Zero(t, updates, "fast path must not rewrite the video")
}

func TestManager_Materialize_RecachesWhenEntryVanished(t *testing.T) {
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			assert.Equal(t, "uploads/interview.mp4", fileID)
			return streamOf("origin bytes"), nil
		},
	}
	newExpiry := time.Now().Add(7 * 24 * time.Hour)
	cache := &mockCacheStore{
		ExistsFunc: func(ctx context.Context, key string) (bool, error) {
			return false, nil
		},
		PutFunc: func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
			content, _ := io.ReadAll(r)
			assert.Equal(t, "origin bytes", string(content))
			assert.Equal(t, "interview.mp4", name)
			return storage.CacheEntry{Key: "cache-key-2_interview.mp4", ExpiresAt: newExpiry}, nil
		},
		ReadStreamFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			assert.Equal(t, "cache-key-2_interview.mp4", key)
			return streamOf("origin bytes"), nil
		},
	}
	var persisted model.Video
	videos := &mockVideoRepo{
		UpdateFunc: func(ctx context.Context, video model.Video) error {
			persisted = video
			return nil
		},
	}

	manager := newTestManager(origin, cache, videos)
	v := cachedVideo(time.Hour)

	localPath, updated, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "origin bytes", readFile(t, localPath))
	require.NotNil(t, updated.CachedBlobKey)
	assert.Equal(t, "cache-key-2_interview.mp4", *updated.CachedBlobKey)
	assert.Equal(t, newExpiry, *updated.CacheExpiresAt)
	require.NotNil(t, persisted.CachedBlobKey, "new cache reference must be persisted immediately")
	assert.Equal(t, "cache-key-2_interview.mp4", *persisted.CachedBlobKey)
}

func TestManager_Materialize_ExpiredReferenceSkipsExistenceCheck(t *testing.T) {
	existsCalls := 0
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			return streamOf("origin bytes"), nil
		},
	}
	cache := &mockCacheStore{
		ExistsFunc: func(ctx context.Context, key string) (bool, error) {
			existsCalls++
			return true, nil
		},
		PutFunc: func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
			io.Copy(io.Discard, r)
			return storage.CacheEntry{Key: "fresh-key", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
		ReadStreamFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return streamOf("origin bytes"), nil
		},
	}

	manager := newTestManager(origin, cache, &mockVideoRepo{})
	v := cachedVideo(-time.Minute) // already expired

	_, updated, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.NoError(t, err)
	assert.Zero(t, existsCalls, "expired reference must not be trusted enough to verify")
	assert.Equal(t, "fresh-key", *updated.CachedBlobKey)
}

func TestManager_Materialize_DirectFallbackWhenCachePutFails(t *testing.T) {
	originReads := 0
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			originReads++
			return streamOf("origin bytes"), nil
		},
	}
	cache := &mockCacheStore{
		PutFunc: func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
			return storage.CacheEntry{}, apperrors.New(apperrors.CodeExternal, "cache store unavailable")
		},
	}
	updates := 0
	videos := &mockVideoRepo{
		UpdateFunc: func(ctx context.Context, video model.Video) error {
			updates++
			return nil
		},
	}

	manager := newTestManager(origin, cache, videos)
	v := model.NewVideo("uploads/interview.mp4", "インタビュー")

	localPath, updated, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.NoError(t, err, "cache outage must not stop the pipeline")
	assert.Equal(t, "origin bytes", readFile(t, localPath))
	assert.Nil(t, updated.CachedBlobKey)
	assert.Equal(t, 2, originReads, "one read for the put attempt, one for the direct copy")
	assert.Zero(t, updates)
}

func TestManager_Materialize_FallsBackWhenCacheReadFails(t *testing.T) {
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			return streamOf("origin bytes"), nil
		},
	}
	cache := &mockCacheStore{
		ExistsFunc: func(ctx context.Context, key string) (bool, error) {
			return true, nil
		},
		ReadStreamFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return nil, apperrors.Newf(apperrors.CodeNotFound, "cache entry expired: %s", key)
		},
	}

	manager := newTestManager(origin, cache, &mockVideoRepo{})
	v := cachedVideo(time.Hour)

	localPath, _, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "origin bytes", readFile(t, localPath))
}

func TestManager_Materialize_AllTiersExhausted(t *testing.T) {
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			return nil, apperrors.New(apperrors.CodeExternal, "origin store unreachable")
		},
	}

	manager := newTestManager(origin, &mockCacheStore{}, &mockVideoRepo{})
	v := model.NewVideo("uploads/interview.mp4", "インタビュー")

	_, _, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExternal, apperrors.Code(err))
	assert.Contains(t, err.Error(), "could not be materialized")
}

func TestManager_Materialize_PersistFailureIsNonFatal(t *testing.T) {
	origin := &mockOriginStore{
		ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
			return streamOf("origin bytes"), nil
		},
	}
	cache := &mockCacheStore{
		PutFunc: func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
			io.Copy(io.Discard, r)
			return storage.CacheEntry{Key: "fresh-key", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
		ReadStreamFunc: func(ctx context.Context, key string) (io.ReadCloser, error) {
			return streamOf("origin bytes"), nil
		},
	}
	videos := &mockVideoRepo{
		UpdateFunc: func(ctx context.Context, video model.Video) error {
			return apperrors.New(apperrors.CodeInternal, "database unavailable")
		},
	}

	manager := newTestManager(origin, cache, videos)
	v := model.NewVideo("uploads/interview.mp4", "インタビュー")

	localPath, updated, err := manager.Materialize(context.Background(), v, t.TempDir())

	require.NoError(t, err)
	assert.NotEmpty(t, localPath)
	assert.Equal(t, "fresh-key", *updated.CachedBlobKey, "in-memory snapshot still carries the reference")
}

func TestManager_Materialize_RequiresWorkDir(t *testing.T) {
	manager := newTestManager(&mockOriginStore{}, &mockCacheStore{}, &mockVideoRepo{})

	_, _, err := manager.Materialize(context.Background(), model.NewVideo("f", "t"), "")

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
}

func TestManager_IssueReadURL(t *testing.T) {
	t.Run("signs the existing cache entry", func(t *testing.T) {
		cache := &mockCacheStore{
			ExistsFunc: func(ctx context.Context, key string) (bool, error) {
				return true, nil
			},
			SignedURLFunc: func(key string, ttl time.Duration) (string, error) {
				assert.Equal(t, "cache-key-1_interview.mp4", key)
				assert.Equal(t, time.Hour, ttl)
				return "http://cache.local/cache/" + key + "?sig=abc", nil
			},
		}

		manager := newTestManager(&mockOriginStore{}, cache, &mockVideoRepo{})
		url, err := manager.IssueReadURL(context.Background(), cachedVideo(time.Hour))

		require.NoError(t, err)
		assert.Contains(t, url, "cache-key-1_interview.mp4")
	})

	t.Run("caches first when no valid entry exists", func(t *testing.T) {
		origin := &mockOriginStore{
			ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
				return streamOf("origin bytes"), nil
			},
		}
		persisted := false
		cache := &mockCacheStore{
			PutFunc: func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
				io.Copy(io.Discard, r)
				return storage.CacheEntry{Key: "fresh-key", ExpiresAt: time.Now().Add(time.Hour)}, nil
			},
			SignedURLFunc: func(key string, ttl time.Duration) (string, error) {
				assert.Equal(t, "fresh-key", key)
				return "http://cache.local/cache/fresh-key?sig=abc", nil
			},
		}
		videos := &mockVideoRepo{
			UpdateFunc: func(ctx context.Context, video model.Video) error {
				persisted = true
				return nil
			},
		}

		manager := newTestManager(origin, cache, videos)
		url, err := manager.IssueReadURL(context.Background(), model.NewVideo("uploads/interview.mp4", "t"))

		require.NoError(t, err)
		assert.NotEmpty(t, url)
		assert.True(t, persisted)
	})

	t.Run("origin failure surfaces as external error", func(t *testing.T) {
		origin := &mockOriginStore{
			ReadStreamFunc: func(ctx context.Context, fileID string) (io.ReadCloser, error) {
				return nil, apperrors.New(apperrors.CodeExternal, "origin store unreachable")
			},
		}

		manager := newTestManager(origin, &mockCacheStore{}, &mockVideoRepo{})
		_, err := manager.IssueReadURL(context.Background(), model.NewVideo("uploads/interview.mp4", "t"))

		require.Error(t, err)
		assert.Equal(t, apperrors.CodeExternal, apperrors.Code(err))
	})
}
