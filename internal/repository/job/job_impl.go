package job

import (
	"context"
	"errors"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// jobRepository implements Repository using PostgreSQL
type jobRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &jobRepository{
		pool: pool,
	}
}

const jobColumns = "id, video_id, instructions, status, raw_response, started_at, completed_at, error_message, created_at, updated_at"

// Create creates a new processing job record
func (r *jobRepository) Create(ctx context.Context, job model.ProcessingJob) error {
	sql := "INSERT INTO processing_jobs (" + jobColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)"
	_, err := r.pool.Exec(ctx, sql,
		job.ID,
		job.VideoID,
		job.Instructions,
		job.Status,
		job.RawResponse,
		job.StartedAt,
		job.CompletedAt,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create processing job")
	}
	return nil
}

// GetByID retrieves a processing job by its ID
func (r *jobRepository) GetByID(ctx context.Context, id string) (model.ProcessingJob, error) {
	sql := "SELECT " + jobColumns + " FROM processing_jobs WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProcessingJob{}, apperrors.Wrap(err, apperrors.CodeNotFound, "processing job not found")
		}
		return model.ProcessingJob{}, common.HandlePostgreSQLError(err, "failed to get processing job")
	}
	return job, nil
}

// ListByVideoID retrieves all processing jobs for a video, newest first
func (r *jobRepository) ListByVideoID(ctx context.Context, videoID string) ([]model.ProcessingJob, error) {
	sql := "SELECT " + jobColumns + " FROM processing_jobs WHERE video_id = $1 ORDER BY created_at DESC, id"
	rows, err := r.pool.Query(ctx, sql, videoID)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list processing jobs by video ID")
	}
	defer rows.Close()

	jobs := []model.ProcessingJob{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan processing job row")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to iterate processing job rows")
	}
	return jobs, nil
}

// Update updates an existing processing job record
func (r *jobRepository) Update(ctx context.Context, job model.ProcessingJob) error {
	sql := `UPDATE processing_jobs SET status = $2, raw_response = $3, started_at = $4,
		completed_at = $5, error_message = $6, updated_at = $7 WHERE id = $1`
	_, err := r.pool.Exec(ctx, sql,
		job.ID,
		job.Status,
		job.RawResponse,
		job.StartedAt,
		job.CompletedAt,
		job.ErrorMessage,
		job.UpdatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update processing job")
	}
	return nil
}

func scanJob(row pgx.Row) (model.ProcessingJob, error) {
	var job model.ProcessingJob
	err := row.Scan(
		&job.ID,
		&job.VideoID,
		&job.Instructions,
		&job.Status,
		&job.RawResponse,
		&job.StartedAt,
		&job.CompletedAt,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	return job, err
}
