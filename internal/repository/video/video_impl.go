package video

import (
	"context"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// videoRepository implements Repository using PostgreSQL
type videoRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &videoRepository{
		pool: pool,
	}
}

const videoColumns = "id, source_file_id, title, file_size, duration_seconds, status, cached_blob_key, cache_expires_at, audio_blob_key, progress, error_message, created_at, updated_at"

// Create creates a new video record
func (r *videoRepository) Create(ctx context.Context, video model.Video) error {
	sql := "INSERT INTO videos (" + videoColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)"
	_, err := r.pool.Exec(ctx, sql,
		video.ID,
		video.SourceFileID,
		video.Title,
		video.FileSize,
		video.DurationSeconds,
		video.Status,
		video.CachedBlobKey,
		video.CacheExpiresAt,
		video.AudioBlobKey,
		video.Progress,
		video.ErrorMessage,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create video")
	}
	return nil
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Video{}, apperrors.Wrap(err, apperrors.CodeNotFound, "video not found")
		}
		return model.Video{}, common.HandlePostgreSQLError(err, "failed to get video")
	}
	return video, nil
}

// List retrieves videos with pagination, newest first
func (r *videoRepository) List(ctx context.Context, limit, offset int) ([]model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos ORDER BY created_at DESC, id LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list videos")
	}
	defer rows.Close()

	return collectVideos(rows)
}

// ListByStatus retrieves videos in a given lifecycle state with pagination
func (r *videoRepository) ListByStatus(ctx context.Context, status model.VideoStatus, limit, offset int) ([]model.Video, error) {
	sql := "SELECT " + videoColumns + " FROM videos WHERE status = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3"
	rows, err := r.pool.Query(ctx, sql, status, limit, offset)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list videos by status")
	}
	defer rows.Close()

	return collectVideos(rows)
}

// Update updates an existing video record. The source file reference and
// creation time are immutable.
func (r *videoRepository) Update(ctx context.Context, video model.Video) error {
	sql := `UPDATE videos SET title = $2, file_size = $3, duration_seconds = $4, status = $5,
		cached_blob_key = $6, cache_expires_at = $7, audio_blob_key = $8,
		progress = $9, error_message = $10, updated_at = $11 WHERE id = $1`
	_, err := r.pool.Exec(ctx, sql,
		video.ID,
		video.Title,
		video.FileSize,
		video.DurationSeconds,
		video.Status,
		video.CachedBlobKey,
		video.CacheExpiresAt,
		video.AudioBlobKey,
		video.Progress,
		video.ErrorMessage,
		video.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update video")
	}
	return nil
}

// Delete deletes a video by its ID. Dependent rows (jobs, transcriptions,
// clips) are removed by the schema's cascade rules.
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM videos WHERE id = $1"
	_, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete video")
	}
	return nil
}

func scanVideo(row pgx.Row) (model.Video, error) {
	var video model.Video
	err := row.Scan(
		&video.ID,
		&video.SourceFileID,
		&video.Title,
		&video.FileSize,
		&video.DurationSeconds,
		&video.Status,
		&video.CachedBlobKey,
		&video.CacheExpiresAt,
		&video.AudioBlobKey,
		&video.Progress,
		&video.ErrorMessage,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	return video, err
}

func collectVideos(rows pgx.Rows) ([]model.Video, error) {
	videos := []model.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan video row")
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to iterate video rows")
	}
	return videos, nil
}
