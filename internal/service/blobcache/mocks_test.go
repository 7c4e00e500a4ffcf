package blobcache

import (
	"context"
	"io"
	"time"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

// Mock stores and repositories for testing

// mockOriginStore mocks storage.OriginStore
type mockOriginStore struct {
	GetMetadataFunc  func(ctx context.Context, fileID string) (storage.FileMetadata, error)
	ReadStreamFunc   func(ctx context.Context, fileID string) (io.ReadCloser, error)
	WriteFunc        func(ctx context.Context, r io.Reader, name, parentFolderID string) (storage.WriteResult, error)
	EnsureFolderFunc func(ctx context.Context, name, parentFolderID string) (string, error)
}

func (m *mockOriginStore) GetMetadata(ctx context.Context, fileID string) (storage.FileMetadata, error) {
	if m.GetMetadataFunc != nil {
		return m.GetMetadataFunc(ctx, fileID)
	}
	return storage.FileMetadata{}, nil
}

func (m *mockOriginStore) ReadStream(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if m.ReadStreamFunc != nil {
		return m.ReadStreamFunc(ctx, fileID)
	}
	return nil, nil
}

func (m *mockOriginStore) Write(ctx context.Context, r io.Reader, name, parentFolderID string) (storage.WriteResult, error) {
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, r, name, parentFolderID)
	}
	return storage.WriteResult{}, nil
}

func (m *mockOriginStore) EnsureFolder(ctx context.Context, name, parentFolderID string) (string, error) {
	if m.EnsureFolderFunc != nil {
		return m.EnsureFolderFunc(ctx, name, parentFolderID)
	}
	return "", nil
}

// mockCacheStore mocks storage.CacheStore
type mockCacheStore struct {
	PutFunc        func(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error)
	ExistsFunc     func(ctx context.Context, key string) (bool, error)
	ReadStreamFunc func(ctx context.Context, key string) (io.ReadCloser, error)
	SignedURLFunc  func(key string, ttl time.Duration) (string, error)
}

func (m *mockCacheStore) Put(ctx context.Context, r io.Reader, name string) (storage.CacheEntry, error) {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, r, name)
	}
	return storage.CacheEntry{}, nil
}

func (m *mockCacheStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, key)
	}
	return false, nil
}

func (m *mockCacheStore) ReadStream(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.ReadStreamFunc != nil {
		return m.ReadStreamFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockCacheStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if m.SignedURLFunc != nil {
		return m.SignedURLFunc(key, ttl)
	}
	return "", nil
}

// mockVideoRepo mocks video.Repository
type mockVideoRepo struct {
	CreateFunc       func(ctx context.Context, video model.Video) error
	GetByIDFunc      func(ctx context.Context, id string) (model.Video, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]model.Video, error)
	ListByStatusFunc func(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error)
	UpdateFunc       func(ctx context.Context, video model.Video) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *mockVideoRepo) Create(ctx context.Context, video model.Video) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, video)
	}
	return nil
}

func (m *mockVideoRepo) GetByID(ctx context.Context, id string) (model.Video, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return model.Video{}, nil
}

func (m *mockVideoRepo) List(ctx context.Context, limit, offset int) ([]model.Video, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []model.Video{}, nil
}

func (m *mockVideoRepo) ListByStatus(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	return []model.Video{}, nil
}

func (m *mockVideoRepo) Update(ctx context.Context, video model.Video) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, video)
	}
	return nil
}

func (m *mockVideoRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}
