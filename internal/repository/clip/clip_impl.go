package clip

import (
	"context"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// clipRepository implements Repository using PostgreSQL
type clipRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &clipRepository{
		pool: pool,
	}
}

const clipColumns = "id, video_id, start_seconds, end_seconds, title, excerpt, status, uploaded_file_id, error_message, created_at, updated_at"

// Create creates a new clip record
func (r *clipRepository) Create(ctx context.Context, clip model.Clip) error {
	sql := "INSERT INTO clips (" + clipColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)"
	_, err := r.pool.Exec(ctx, sql,
		clip.ID,
		clip.VideoID,
		clip.StartSeconds,
		clip.EndSeconds,
		clip.Title,
		clip.Excerpt,
		clip.Status,
		clip.UploadedFileID,
		clip.ErrorMessage,
		clip.CreatedAt,
		clip.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create clip")
	}
	return nil
}

// CreateBatch creates multiple clip records using bulk insert (COPY FROM)
func (r *clipRepository) CreateBatch(ctx context.Context, clips []model.Clip) error {
	if len(clips) == 0 {
		return nil
	}

	rows := make([][]any, len(clips))
	for i, clip := range clips {
		rows[i] = []any{clip.ID, clip.VideoID, clip.StartSeconds, clip.EndSeconds, clip.Title,
			clip.Excerpt, clip.Status, clip.UploadedFileID, clip.ErrorMessage, clip.CreatedAt, clip.UpdatedAt}
	}

	tableName := pgx.Identifier{"clips"}
	columnNames := []string{"id", "video_id", "start_seconds", "end_seconds", "title",
		"excerpt", "status", "uploaded_file_id", "error_message", "created_at", "updated_at"}
	copyFromSource := pgx.CopyFromRows(rows)

	_, err := r.pool.CopyFrom(ctx, tableName, columnNames, copyFromSource)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create clips in batch using COPY FROM")
	}

	return nil
}

// GetByID retrieves a clip by its ID
func (r *clipRepository) GetByID(ctx context.Context, id string) (model.Clip, error) {
	sql := "SELECT " + clipColumns + " FROM clips WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	clip, err := scanClip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Clip{}, apperrors.Wrap(err, apperrors.CodeNotFound, "clip not found")
		}
		return model.Clip{}, common.HandlePostgreSQLError(err, "failed to get clip")
	}
	return clip, nil
}

// ListByVideoID retrieves all clips extracted from a video, in timeline order
func (r *clipRepository) ListByVideoID(ctx context.Context, videoID string) ([]model.Clip, error) {
	sql := "SELECT " + clipColumns + " FROM clips WHERE video_id = $1 ORDER BY start_seconds, id"
	rows, err := r.pool.Query(ctx, sql, videoID)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list clips by video ID")
	}
	defer rows.Close()

	clips := []model.Clip{}
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan clip row")
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to iterate clip rows")
	}
	return clips, nil
}

// Update updates an existing clip record. Time bounds are immutable after
// creation; extraction only advances status and fills in derived fields.
func (r *clipRepository) Update(ctx context.Context, clip model.Clip) error {
	sql := `UPDATE clips SET title = $2, excerpt = $3, status = $4, uploaded_file_id = $5,
		error_message = $6, updated_at = $7 WHERE id = $1`
	_, err := r.pool.Exec(ctx, sql,
		clip.ID,
		clip.Title,
		clip.Excerpt,
		clip.Status,
		clip.UploadedFileID,
		clip.ErrorMessage,
		clip.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update clip")
	}
	return nil
}

// Delete deletes a clip by its ID
func (r *clipRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM clips WHERE id = $1"
	_, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete clip")
	}
	return nil
}

func scanClip(row pgx.Row) (model.Clip, error) {
	var clip model.Clip
	err := row.Scan(
		&clip.ID,
		&clip.VideoID,
		&clip.StartSeconds,
		&clip.EndSeconds,
		&clip.Title,
		&clip.Excerpt,
		&clip.Status,
		&clip.UploadedFileID,
		&clip.ErrorMessage,
		&clip.CreatedAt,
		&clip.UpdatedAt,
	)
	return clip, err
}
