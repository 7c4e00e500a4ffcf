package clip

import (
	"context"
	"io"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/media"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/service/storage"
)

type mockVideoRepo struct {
	CreateFunc       func(ctx context.Context, video model.Video) error
	GetByIDFunc      func(ctx context.Context, id string) (model.Video, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]model.Video, error)
	ListByStatusFunc func(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error)
	UpdateFunc       func(ctx context.Context, video model.Video) error
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *mockVideoRepo) Create(ctx context.Context, video model.Video) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, video)
}

func (m *mockVideoRepo) GetByID(ctx context.Context, id string) (model.Video, error) {
	if m.GetByIDFunc == nil {
		return model.Video{}, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockVideoRepo) List(ctx context.Context, limit, offset int) ([]model.Video, error) {
	if m.ListFunc == nil {
		return nil, nil
	}
	return m.ListFunc(ctx, limit, offset)
}

func (m *mockVideoRepo) ListByStatus(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error) {
	if m.ListByStatusFunc == nil {
		return nil, nil
	}
	return m.ListByStatusFunc(ctx, status, limit, offset)
}

func (m *mockVideoRepo) Update(ctx context.Context, video model.Video) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, video)
}

func (m *mockVideoRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

type mockClipRepo struct {
	CreateFunc        func(ctx context.Context, clip model.Clip) error
	CreateBatchFunc   func(ctx context.Context, clips []model.Clip) error
	GetByIDFunc       func(ctx context.Context, id string) (model.Clip, error)
	ListByVideoIDFunc func(ctx context.Context, videoID string) ([]model.Clip, error)
	UpdateFunc        func(ctx context.Context, clip model.Clip) error
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *mockClipRepo) Create(ctx context.Context, clip model.Clip) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, clip)
}

func (m *mockClipRepo) CreateBatch(ctx context.Context, clips []model.Clip) error {
	if m.CreateBatchFunc == nil {
		return nil
	}
	return m.CreateBatchFunc(ctx, clips)
}

func (m *mockClipRepo) GetByID(ctx context.Context, id string) (model.Clip, error) {
	if m.GetByIDFunc == nil {
		return model.Clip{}, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockClipRepo) ListByVideoID(ctx context.Context, videoID string) ([]model.Clip, error) {
	if m.ListByVideoIDFunc == nil {
		return nil, nil
	}
	return m.ListByVideoIDFunc(ctx, videoID)
}

func (m *mockClipRepo) Update(ctx context.Context, clip model.Clip) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, clip)
}

func (m *mockClipRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

type mockJobRepo struct {
	CreateFunc        func(ctx context.Context, job model.ProcessingJob) error
	GetByIDFunc       func(ctx context.Context, id string) (model.ProcessingJob, error)
	ListByVideoIDFunc func(ctx context.Context, videoID string) ([]model.ProcessingJob, error)
	UpdateFunc        func(ctx context.Context, job model.ProcessingJob) error
}

func (m *mockJobRepo) Create(ctx context.Context, job model.ProcessingJob) error {
	if m.CreateFunc == nil {
		return nil
	}
	return m.CreateFunc(ctx, job)
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (model.ProcessingJob, error) {
	if m.GetByIDFunc == nil {
		return model.ProcessingJob{}, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockJobRepo) ListByVideoID(ctx context.Context, videoID string) ([]model.ProcessingJob, error) {
	if m.ListByVideoIDFunc == nil {
		return nil, nil
	}
	return m.ListByVideoIDFunc(ctx, videoID)
}

func (m *mockJobRepo) Update(ctx context.Context, job model.ProcessingJob) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, job)
}

type mockTranscriptionRepo struct {
	ReplaceFunc      func(ctx context.Context, transcription model.Transcription) error
	GetByIDFunc      func(ctx context.Context, id string) (model.Transcription, error)
	GetByVideoIDFunc func(ctx context.Context, videoID string) (model.Transcription, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *mockTranscriptionRepo) Replace(ctx context.Context, transcription model.Transcription) error {
	if m.ReplaceFunc == nil {
		return nil
	}
	return m.ReplaceFunc(ctx, transcription)
}

func (m *mockTranscriptionRepo) GetByID(ctx context.Context, id string) (model.Transcription, error) {
	if m.GetByIDFunc == nil {
		return model.Transcription{}, nil
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *mockTranscriptionRepo) GetByVideoID(ctx context.Context, videoID string) (model.Transcription, error) {
	if m.GetByVideoIDFunc == nil {
		return model.Transcription{}, nil
	}
	return m.GetByVideoIDFunc(ctx, videoID)
}

func (m *mockTranscriptionRepo) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

type mockRefinedRepo struct {
	ReplaceFunc              func(ctx context.Context, refined model.RefinedTranscription) error
	GetByTranscriptionIDFunc func(ctx context.Context, transcriptionID string) (model.RefinedTranscription, error)
}

func (m *mockRefinedRepo) Replace(ctx context.Context, refined model.RefinedTranscription) error {
	if m.ReplaceFunc == nil {
		return nil
	}
	return m.ReplaceFunc(ctx, refined)
}

func (m *mockRefinedRepo) GetByTranscriptionID(ctx context.Context, transcriptionID string) (model.RefinedTranscription, error) {
	if m.GetByTranscriptionIDFunc == nil {
		return model.RefinedTranscription{}, nil
	}
	return m.GetByTranscriptionIDFunc(ctx, transcriptionID)
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

type mockMaterializer struct {
	MaterializeFunc func(ctx context.Context, v model.Video, workDir string) (string, model.Video, error)
}

func (m *mockMaterializer) Materialize(ctx context.Context, v model.Video, workDir string) (string, model.Video, error) {
	if m.MaterializeFunc == nil {
		return "", v, nil
	}
	return m.MaterializeFunc(ctx, v, workDir)
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

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc == nil {
		return "", nil
	}
	return m.GenerateFunc(ctx, prompt)
}
