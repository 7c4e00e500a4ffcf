package job

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for ProcessingJob persistence
type Repository interface {
	Create(ctx context.Context, job model.ProcessingJob) error
	GetByID(ctx context.Context, id string) (model.ProcessingJob, error)
	ListByVideoID(ctx context.Context, videoID string) ([]model.ProcessingJob, error)
	Update(ctx context.Context, job model.ProcessingJob) error
}
