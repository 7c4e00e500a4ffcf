package video

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for Video persistence
type Repository interface {
	Create(ctx context.Context, video model.Video) error
	GetByID(ctx context.Context, id string) (model.Video, error)
	List(ctx context.Context, limit, offset int) ([]model.Video, error)
	ListByStatus(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error)
	Update(ctx context.Context, video model.Video) error
	Delete(ctx context.Context, id string) error
}
