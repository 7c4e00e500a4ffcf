package video

import (
	"context"
	"io"
	"time"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/speech"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

// mockVideoRepo is a test double for the video repository
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
	return nil, nil
}

func (m *mockVideoRepo) ListByStatus(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status, limit, offset)
	}
	return nil, nil
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

// mockTranscriptionRepo is a test double for the transcription repository
type mockTranscriptionRepo struct {
	ReplaceFunc      func(ctx context.Context, transcription model.Transcription) error
	GetByIDFunc      func(ctx context.Context, id string) (model.Transcription, error)
	GetByVideoIDFunc func(ctx context.Context, videoID string) (model.Transcription, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *mockTranscriptionRepo) Replace(ctx context.Context, transcription model.Transcription) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, transcription)
	}
	return nil
}

func (m *mockTranscriptionRepo) GetByID(ctx context.Context, id string) (model.Transcription, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return model.Transcription{}, nil
}

func (m *mockTranscriptionRepo) GetByVideoID(ctx context.Context, videoID string) (model.Transcription, error) {
	if m.GetByVideoIDFunc != nil {
		return m.GetByVideoIDFunc(ctx, videoID)
	}
	return model.Transcription{}, nil
}

func (m *mockTranscriptionRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// mockOriginStore is a test double for the origin blob store
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

// mockCacheStore is a test double for the cache blob store
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

// mockMaterializer is a test double for the blob cache manager
type mockMaterializer struct {
	MaterializeFunc func(ctx context.Context, v model.Video, workDir string) (string, model.Video, error)
}

func (m *mockMaterializer) Materialize(ctx context.Context, v model.Video, workDir string) (string, model.Video, error) {
	if m.MaterializeFunc != nil {
		return m.MaterializeFunc(ctx, v, workDir)
	}
	return "", v, nil
}

// mockMediaGateway is a test double for the media gateway
type mockMediaGateway struct {
	ExtractAudioFunc    func(ctx context.Context, inputPath, outputPath string) error
	ExtractSubrangeFunc func(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error
	ProbeDurationFunc   func(ctx context.Context, inputPath string) (float64, error)
	ComposeScenesFunc   func(ctx context.Context, scenes []media.Scene, canvas media.Canvas, bgmPath, outputPath string) error
}

func (m *mockMediaGateway) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if m.ExtractAudioFunc != nil {
		return m.ExtractAudioFunc(ctx, inputPath, outputPath)
	}
	return nil
}

func (m *mockMediaGateway) ExtractSubrange(ctx context.Context, inputPath string, startSeconds, endSeconds float64, outputPath string) error {
	if m.ExtractSubrangeFunc != nil {
		return m.ExtractSubrangeFunc(ctx, inputPath, startSeconds, endSeconds, outputPath)
	}
	return nil
}

func (m *mockMediaGateway) ProbeDuration(ctx context.Context, inputPath string) (float64, error) {
	if m.ProbeDurationFunc != nil {
		return m.ProbeDurationFunc(ctx, inputPath)
	}
	return 0, nil
}

func (m *mockMediaGateway) ComposeScenes(ctx context.Context, scenes []media.Scene, canvas media.Canvas, bgmPath, outputPath string) error {
	if m.ComposeScenesFunc != nil {
		return m.ComposeScenesFunc(ctx, scenes, canvas, bgmPath, outputPath)
	}
	return nil
}

// mockTranscriber is a test double for the speech gateway
type mockTranscriber struct {
	TranscribeLongFunc func(ctx context.Context, audioPath, language string) (speech.Result, error)
}

func (m *mockTranscriber) TranscribeLong(ctx context.Context, audioPath, language string) (speech.Result, error) {
	if m.TranscribeLongFunc != nil {
		return m.TranscribeLongFunc(ctx, audioPath, language)
	}
	return speech.Result{}, nil
}

// mockRefiner is a test double for the refinement service
type mockRefiner struct {
	RefineFunc func(ctx context.Context, transcription model.Transcription) (model.RefinedTranscription, error)
}

func (m *mockRefiner) Refine(ctx context.Context, transcription model.Transcription) (model.RefinedTranscription, error) {
	if m.RefineFunc != nil {
		return m.RefineFunc(ctx, transcription)
	}
	return model.RefinedTranscription{}, nil
}
