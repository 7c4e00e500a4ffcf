package subtitle

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

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

type mockSubtitleRepo struct {
	UpsertFunc      func(ctx context.Context, subtitle model.ClipSubtitle) error
	GetByClipIDFunc func(ctx context.Context, clipID string) (model.ClipSubtitle, error)
	UpdateFunc      func(ctx context.Context, subtitle model.ClipSubtitle) error
}

func (m *mockSubtitleRepo) Upsert(ctx context.Context, subtitle model.ClipSubtitle) error {
	if m.UpsertFunc == nil {
		return nil
	}
	return m.UpsertFunc(ctx, subtitle)
}

func (m *mockSubtitleRepo) GetByClipID(ctx context.Context, clipID string) (model.ClipSubtitle, error) {
	if m.GetByClipIDFunc == nil {
		return model.ClipSubtitle{}, nil
	}
	return m.GetByClipIDFunc(ctx, clipID)
}

func (m *mockSubtitleRepo) Update(ctx context.Context, subtitle model.ClipSubtitle) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, subtitle)
}
