package composition

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for ComposedVideo persistence
type Repository interface {
	Create(ctx context.Context, composed model.ComposedVideo) error
	GetByID(ctx context.Context, id string) (model.ComposedVideo, error)
	GetByScriptID(ctx context.Context, scriptID string) (model.ComposedVideo, error)
	ListByProjectID(ctx context.Context, projectID string) ([]model.ComposedVideo, error)
	Update(ctx context.Context, composed model.ComposedVideo) error
}
