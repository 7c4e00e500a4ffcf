package common

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
)

func TestHandlePostgreSQLError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "non-postgres error maps to internal",
			err:         assert.AnError,
			wantCode:    apperrors.CodeInternal,
			wantMessage: "operation failed",
		},
		{
			name:        "primary key violation",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "videos_pkey"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "resource with this ID already exists",
		},
		{
			name:        "one transcription per video",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "transcriptions_video_id_key"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "video already has a transcription",
		},
		{
			name:        "one refined version per transcription",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "refined_transcriptions_transcription_id_key"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "transcription already has a refined version",
		},
		{
			name:        "one subtitle per clip",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "clip_subtitles_clip_id_key"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "clip already has a subtitle",
		},
		{
			name:        "one composed video per script",
			err:         &pgconn.PgError{Code: "23505", ConstraintName: "composed_videos_script_id_key"},
			wantCode:    apperrors.CodeConflict,
			wantMessage: "script already has a composed video",
		},
		{
			name:        "foreign key to video",
			err:         &pgconn.PgError{Code: "23503", ConstraintName: "clips_video_id_fkey"},
			wantCode:    apperrors.CodeValidation,
			wantMessage: "referenced video does not exist",
		},
		{
			name:        "foreign key to clip",
			err:         &pgconn.PgError{Code: "23503", ConstraintName: "clip_subtitles_clip_id_fkey"},
			wantCode:    apperrors.CodeValidation,
			wantMessage: "referenced clip does not exist",
		},
		{
			name:        "not null violation",
			err:         &pgconn.PgError{Code: "23502"},
			wantCode:    apperrors.CodeValidation,
			wantMessage: "required field is missing",
		},
		{
			name:        "check violation",
			err:         &pgconn.PgError{Code: "23514"},
			wantCode:    apperrors.CodeValidation,
			wantMessage: "data violates check constraint",
		},
		{
			name:        "connection failure",
			err:         &pgconn.PgError{Code: "08006"},
			wantCode:    apperrors.CodeInternal,
			wantMessage: "database connection error",
		},
		{
			name:        "unknown postgres code",
			err:         &pgconn.PgError{Code: "55P03"},
			wantCode:    apperrors.CodeInternal,
			wantMessage: "database error (PostgreSQL code: 55P03)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandlePostgreSQLError(tt.err, "operation failed")

			if tt.err == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
