package compose

import (
	"context"
	"io"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

type mockCompositionRepo struct {
	CreateFunc          func(ctx context.Context, composed model.ComposedVideo) error
	GetByIDFunc         func(ctx context.Context, id string) (model.ComposedVideo, error)
	GetByScriptIDFunc   func(ctx context.Context, scriptID string) (model.ComposedVideo, error)
	ListByProjectIDFunc func(ctx context.Context, projectID string) ([]model.ComposedVideo, error)
	UpdateFunc          func(ctx context.Context, composed model.ComposedVideo) error
}

func (m *mockCompositionRepo) Create(ctx context.Context, composed model.ComposedVideo) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, composed)
}

func (m *mockCompositionRepo) GetByID(ctx context.Context, id string) (model.ComposedVideo, error) {
	if m.GetByIDFunc == nil {
		return model.ComposedVideo{}, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCompositionRepo) GetByScriptID(ctx context.Context, scriptID string) (model.ComposedVideo, error) {
	if m.GetByScriptIDFunc == nil {
		return model.ComposedVideo{}, nil
	}
	return m.GetByScriptIDFunc(ctx, scriptID)
}

func (m *mockCompositionRepo) ListByProjectID(ctx context.Context, projectID string) ([]model.ComposedVideo, error) {
	if m.ListByProjectIDFunc == nil {
		return nil, nil
	}
	return m.ListByProjectIDFunc(ctx, projectID)
}

func (m *mockCompositionRepo) Update(ctx context.Context, composed model.ComposedVideo) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, composed)
}

type mockOriginStore struct {
	GetMetadataFunc  func(ctx context.Context, fileID string) (storage.FileMetadata, error)
	ReadStreamFunc   func(ctx context.Context, fileID string) (io.ReadCloser, error)
	WriteFunc        func(ctx context.Context, r io.Reader, name, parentFolderID string) (storage.WriteResult, error)
	EnsureFolderFunc func(ctx context.Context, name, parentFolderID string) (string, error)
}

func (m *mockOriginStore) GetMetadata(ctx context.Context, fileID string) (storage.FileMetadata, error) {
	if m.GetMetadataFunc == nil {
		return storage.FileMetadata{}, nil
	}
	return m.GetMetadataFunc(ctx, fileID)
}

func (m *mockOriginStore) ReadStream(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if m.ReadStreamFunc == nil {
		return nil, nil
	}
	return m.ReadStreamFunc(ctx, fileID)
}

func (m *mockOriginStore) Write(ctx context.Context, r io.Reader, name, parentFolderID string) (storage.WriteResult, error) {
	if m.WriteFunc == nil {
		return storage.WriteResult{}, nil
	}
	return m.WriteFunc(ctx, r, name, parentFolderID)
}

func (m *mockOriginStore) EnsureFolder(ctx context.Context, name, parentFolderID string) (string, error) {
	if m.EnsureFolderFunc == nil {
		return "", nil
	}
	return m.EnsureFolderFunc(ctx, name, parentFolderID)
}

type mockMediaGateway struct {
	ExtractAudioFunc    func(ctx context.Context, inputPath, outputPath string) error
	ExtractSubrangeFunc func(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error
	ProbeDurationFunc   func(ctx context.Context, inputPath string) (float64, error)
	ComposeScenesFunc   func(ctx context.Context, scenes []media.Scene, canvas media.Canvas, bgmPath, outputPath string) error
}

func (m *mockMediaGateway) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if m.ExtractAudioFunc == nil {
		return nil
	}
	return m.ExtractAudioFunc(ctx, inputPath, outputPath)
}

func (m *mockMediaGateway) ExtractSubrange(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error {
	if m.ExtractSubrangeFunc == nil {
		return nil
	}
	return m.ExtractSubrangeFunc(ctx, inputPath, startSeconds, endSeconds, outputPath)
}

func (m *mockMediaGateway) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	if m.ProbeDurationFunc == nil {
		return 0, nil
	}
	return m.ProbeDurationFunc(ctx, inputPath)
}

func (m *mockMediaGateway) ComposeScenes(ctx context.Context, scenes []media.Scene, canvas media.Canvas, bgmPath, outputPath string) error {
	if m.ComposeScenesFunc == nil {
		return nil
	}
	return m.ComposeScenesFunc(ctx, scenes, canvas, bgmPath, outputPath)
}
