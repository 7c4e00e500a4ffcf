package subtitle

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// subtitleRepository implements Repository using PostgreSQL
type subtitleRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &subtitleRepository{
		pool: pool,
	}
}

const subtitleColumns = "id, clip_id, segments, status, created_at, updated_at"

// Upsert stores the subtitle for a clip, overwriting any previous one
func (r *subtitleRepository) Upsert(ctx context.Context, subtitle model.ClipSubtitle) error {
	segments, err := json.Marshal(subtitle.Segments)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode subtitle segments")
	}

	sql := `INSERT INTO clip_subtitles (` + subtitleColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (clip_id) DO UPDATE SET
		id = EXCLUDED.id, segments = EXCLUDED.segments, status = EXCLUDED.status,
		created_at = EXCLUDED.created_at, updated_at = EXCLUDED.updated_at`
	_, err = r.pool.Exec(ctx, sql,
		subtitle.ID,
		subtitle.ClipID,
		segments,
		subtitle.Status,
		subtitle.CreatedAt,
		subtitle.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to upsert clip subtitle")
	}
	return nil
}

// GetByClipID retrieves the subtitle for a clip
func (r *subtitleRepository) GetByClipID(ctx context.Context, clipID string) (model.ClipSubtitle, error) {
	sql := "SELECT " + subtitleColumns + " FROM clip_subtitles WHERE clip_id = $1"
	row := r.pool.QueryRow(ctx, sql, clipID)

	var subtitle model.ClipSubtitle
	var segments []byte
	err := row.Scan(
		&subtitle.ID,
		&subtitle.ClipID,
		&segments,
		&subtitle.Status,
		&subtitle.CreatedAt,
		&subtitle.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ClipSubtitle{}, apperrors.Wrap(err, apperrors.CodeNotFound, "clip subtitle not found")
		}
		return model.ClipSubtitle{}, common.HandlePostgreSQLError(err, "failed to get clip subtitle")
	}
	if err := json.Unmarshal(segments, &subtitle.Segments); err != nil {
		return model.ClipSubtitle{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode subtitle segments")
	}
	return subtitle, nil
}

// Update updates the segments and status of an existing subtitle record
func (r *subtitleRepository) Update(ctx context.Context, subtitle model.ClipSubtitle) error {
	segments, err := json.Marshal(subtitle.Segments)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode subtitle segments")
	}

	sql := "UPDATE clip_subtitles SET segments = $2, status = $3, updated_at = $4 WHERE id = $1"
	_, err = r.pool.Exec(ctx, sql,
		subtitle.ID,
		segments,
		subtitle.Status,
		subtitle.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update clip subtitle")
	}
	return nil
}
