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

// refinedRepository implements RefinedRepository using PostgreSQL
type refinedRepository struct {
	pool common.Pool
}

// NewRefinedRepository creates a new instance of RefinedRepository
func NewRefinedRepository(pool common.Pool) RefinedRepository {
	return &refinedRepository{
		pool: pool,
	}
}

const refinedColumns = "id, transcription_id, full_text, sentences, dictionary_version, created_at"

// Replace upserts the refined version of a transcription. Regeneration keyed
// on transcription_id overwrites the previous refinement in place.
func (r *refinedRepository) Replace(ctx context.Context, refined model.RefinedTranscription) error {
	sentences, err := json.Marshal(refined.Sentences)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode refined sentences")
	}

	sql := `INSERT INTO refined_transcriptions (` + refinedColumns + `) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (transcription_id) DO UPDATE SET
		id = EXCLUDED.id, full_text = EXCLUDED.full_text, sentences = EXCLUDED.sentences,
		dictionary_version = EXCLUDED.dictionary_version, created_at = EXCLUDED.created_at`
	_, err = r.pool.Exec(ctx, sql,
		refined.ID,
		refined.TranscriptionID,
		refined.FullText,
		sentences,
		refined.DictionaryVersion,
		refined.CreatedAt,
	)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to replace refined transcription")
	}
	return nil
}

// GetByTranscriptionID retrieves the refined version of a transcription
func (r *refinedRepository) GetByTranscriptionID(ctx context.Context, transcriptionID string) (model.RefinedTranscription, error) {
	sql := "SELECT " + refinedColumns + " FROM refined_transcriptions WHERE transcription_id = $1"
	row := r.pool.QueryRow(ctx, sql, transcriptionID)

	var refined model.RefinedTranscription
	var sentences []byte
	err := row.Scan(
		&refined.ID,
		&refined.TranscriptionID,
		&refined.FullText,
		&sentences,
		&refined.DictionaryVersion,
		&refined.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefinedTranscription{}, apperrors.Wrap(err, apperrors.CodeNotFound, "refined transcription not found")
		}
		return model.RefinedTranscription{}, common.HandlePostgreSQLError(err, "failed to get refined transcription")
	}
	if err := json.Unmarshal(sentences, &refined.Sentences); err != nil {
		return model.RefinedTranscription{}, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode refined sentences")
	}
	return refined, nil
}
