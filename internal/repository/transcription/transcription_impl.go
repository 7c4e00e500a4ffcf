package transcription

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// transcriptionRepository implements Repository using PostgreSQL
type transcriptionRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &transcriptionRepository{
		pool: pool,
	}
}

const transcriptionColumns = "id, video_id, full_text, segments, language_code, duration_seconds, created_at"

// Replace stores the transcription for a video, discarding any previous one.
// The delete and insert run in one transaction so a failed insert never
// leaves the video without its old transcription. Deleting the old row also
// cascades away its refined version, which was derived from stale segments.
func (r *transcriptionRepository) Replace(ctx context.Context, transcription model.Transcription) error {
	segments, err := json.Marshal(transcription.Segments)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode transcript segments")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to begin transcription replace")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM transcriptions WHERE video_id = $1", transcription.VideoID); err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete previous transcription")
	}

	sql := "INSERT INTO transcriptions (" + transcriptionColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7)"
	if _, err := tx.Exec(ctx, sql,
		transcription.ID,
		transcription.VideoID,
		transcription.FullText,
		segments,
		transcription.LanguageCode,
		transcription.DurationSeconds,
		transcription.CreatedAt,
	); err != nil {
		return common.HandlePostgreSQLError(err, "failed to insert transcription")
	}

	if err := tx.Commit(ctx); err != nil {
		return common.HandlePostgreSQLError(err, "failed to commit transcription replace")
	}
	return nil
}

// GetByID retrieves a transcription by its ID
func (r *transcriptionRepository) GetByID(ctx context.Context, id string) (model.Transcription, error) {
	sql := "SELECT " + transcriptionColumns + " FROM transcriptions WHERE id = $1"
	return r.getOne(ctx, sql, id)
}

// GetByVideoID retrieves the transcription for a video
func (r *transcriptionRepository) GetByVideoID(ctx context.Context, videoID string) (model.Transcription, error) {
	sql := "SELECT " + transcriptionColumns + " FROM transcriptions WHERE video_id = $1"
	return r.getOne(ctx, sql, videoID)
}

// Delete deletes a transcription by its ID
func (r *transcriptionRepository) Delete(ctx context.Context, id string) error {
	sql := "DELETE FROM transcriptions WHERE id = $1"
	_, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to delete transcription")
	}
	return nil
}

func (r *transcriptionRepository) getOne(ctx context.Context, sql string, arg any) (model.Transcription, error) {
	row := r.pool.QueryRow(ctx, sql, arg)

	var transcription model.Transcription
	var segments []byte
	err := row.Scan(
		&transcription.ID,
		&transcription.VideoID,
		&transcription.FullText,
		&segments,
		&transcription.LanguageCode,
		&transcription.DurationSeconds,
		&transcription.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Transcription{}, apperrors.Wrap(err, apperrors.CodeNotFound, "transcription not found")
		}
		return model.Transcription{}, common.HandlePostgreSQLError(err, "failed to get transcription")
	}
	if err := json.Unmarshal(segments, &transcription.Segments); err != nil {
		return model.Transcription{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode transcript segments")
	}
	return transcription, nil
}
