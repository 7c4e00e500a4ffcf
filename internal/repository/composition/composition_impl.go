package composition

import (
	"context"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// compositionRepository implements Repository using PostgreSQL
type compositionRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &compositionRepository{
		pool: pool,
	}
}

const compositionColumns = "id, project_id, script_id, output_file_id, duration_seconds, status, bgm, error_message, created_at, updated_at"

// Create creates a new composed video record
func (r *compositionRepository) Create(ctx context.Context, composed model.ComposedVideo) error {
	sql := "INSERT INTO composed_videos (" + compositionColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"
	_, err := r.pool.Exec(ctx, sql,
		composed.ID,
		composed.ProjectID,
		composed.ScriptID,
		composed.OutputFileID,
		composed.DurationSeconds,
		composed.Status,
		composed.BGM,
		composed.ErrorMessage,
		composed.CreatedAt,
		composed.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create composed video")
	}
	return nil
}

// GetByID retrieves a composed video by its ID
func (r *compositionRepository) GetByID(ctx context.Context, id string) (model.ComposedVideo, error) {
	sql := "SELECT " + compositionColumns + " FROM composed_videos WHERE id = $1"
	return r.getOne(ctx, sql, id)
}

// GetByScriptID retrieves the composed video for a script
func (r *compositionRepository) GetByScriptID(ctx context.Context, scriptID string) (model.ComposedVideo, error) {
	sql := "SELECT " + compositionColumns + " FROM composed_videos WHERE script_id = $1"
	return r.getOne(ctx, sql, scriptID)
}

// ListByProjectID retrieves all composed videos for a project, newest first
func (r *compositionRepository) ListByProjectID(ctx context.Context, projectID string) ([]model.ComposedVideo, error) {
	sql := "SELECT " + compositionColumns + " FROM composed_videos WHERE project_id = $1 ORDER BY created_at DESC, id"
	rows, err := r.pool.Query(ctx, sql, projectID)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list composed videos by project ID")
	}
	defer rows.Close()

	composedVideos := []model.ComposedVideo{}
	for rows.Next() {
		composed, err := scanComposedVideo(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan composed video row")
		}
		composedVideos = append(composedVideos, composed)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to iterate composed video rows")
	}
	return composedVideos, nil
}

// Update updates an existing composed video record
func (r *compositionRepository) Update(ctx context.Context, composed model.ComposedVideo) error {
	sql := `UPDATE composed_videos SET output_file_id = $2, duration_seconds = $3, status = $4,
		bgm = $5, error_message = $6, updated_at = $7 WHERE id = $1`
	_, err := r.pool.Exec(ctx, sql,
		composed.ID,
		composed.OutputFileID,
		composed.DurationSeconds,
		composed.Status,
		composed.BGM,
		composed.ErrorMessage,
		composed.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update composed video")
	}
	return nil
}

func (r *compositionRepository) getOne(ctx context.Context, sql string, arg any) (model.ComposedVideo, error) {
	row := r.pool.QueryRow(ctx, sql, arg)

	composed, err := scanComposedVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ComposedVideo{}, apperrors.Wrap(err, apperrors.CodeNotFound, "composed video not found")
		}
		return model.ComposedVideo{}, common.HandlePostgreSQLError(err, "failed to get composed video")
	}
	return composed, nil
}

func scanComposedVideo(row pgx.Row) (model.ComposedVideo, error) {
	var composed model.ComposedVideo
	err := row.Scan(
		&composed.ID,
		&composed.ProjectID,
		&composed.ScriptID,
		&composed.OutputFileID,
		&composed.DurationSeconds,
		&composed.Status,
		&composed.BGM,
		&composed.ErrorMessage,
		&composed.CreatedAt,
		&composed.UpdatedAt,
	)
	return composed, err
}
