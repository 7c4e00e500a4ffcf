package clip

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for Clip persistence
type Repository interface {
	Create(ctx context.Context, clip model.Clip) error
	CreateBatch(ctx context.Context, clips []model.Clip) error
	GetByID(ctx context.Context, id string) (model.Clip, error)
	ListByVideoID(ctx context.Context, videoID string) ([]model.Clip, error)
	Update(ctx context.Context, clip model.Clip) error
	Delete(ctx context.Context, id string) error
}
