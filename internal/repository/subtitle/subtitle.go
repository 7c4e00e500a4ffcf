package subtitle

import (
	"context"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

// Repository defines operations for ClipSubtitle persistence. A clip has at
// most one subtitle; regenerating a draft overwrites the stored record.
type Repository interface {
	Upsert(ctx context.Context, subtitle model.ClipSubtitle) error
	GetByClipID(ctx context.Context, clipID string) (model.ClipSubtitle, error)
	Update(ctx context.Context, subtitle model.ClipSubtitle) error
}
