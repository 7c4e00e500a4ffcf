package composition

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/team-mirai-volunteer/video-processor-sub003/internal/errors"
	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

func compositionRowDefs() []string {
	return []string{"id", "project_id", "script_id", "output_file_id", "duration_seconds",
		"status", "bgm", "error_message", "created_at", "updated_at"}
}

func addCompositionRow(rows *pgxmock.Rows, cv model.ComposedVideo) *pgxmock.Rows {
	return rows.AddRow(cv.ID, cv.ProjectID, cv.ScriptID, cv.OutputFileID, cv.DurationSeconds,
		cv.Status, cv.BGM, cv.ErrorMessage, cv.CreatedAt, cv.UpdatedAt)
}

func TestCompositionRepository_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		bgm := "bgm/energetic.mp3"
		cv := model.NewComposedVideo("project-1", "script-1", &bgm)

		mock.ExpectExec("INSERT INTO composed_videos").
			WithArgs(cv.ID, cv.ProjectID, cv.ScriptID, cv.OutputFileID, cv.DurationSeconds,
				cv.Status, cv.BGM, cv.ErrorMessage, cv.CreatedAt, cv.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, repo.Create(ctx, cv))
		assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
	})
}

func TestCompositionRepository_GetByScriptID(t *testing.T) {
	t.Run("composition found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cv := model.NewComposedVideo("project-1", "script-1", nil)
		mock.ExpectQuery("SELECT (.+) FROM composed_videos WHERE script_id = \\$1").
			WithArgs("script-1").
			WillReturnRows(addCompositionRow(pgxmock.NewRows(compositionRowDefs()), cv))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := repo.GetByScriptID(ctx, "script-1")
		require.NoError(t, err)
		assert.Equal(t, cv, got)

		assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
	})

	t.Run("composition not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("SELECT (.+) FROM composed_videos WHERE script_id = \\$1").
			WithArgs("script-404").
			WillReturnRows(pgxmock.NewRows(compositionRowDefs()))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err = repo.GetByScriptID(ctx, "script-404")
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))

		assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
	})
}

func TestCompositionRepository_ListByProjectID(t *testing.T) {
	t.Run("returns all compositions for a project", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		first := model.NewComposedVideo("project-1", "script-1", nil)
		second := model.NewComposedVideo("project-1", "script-2", nil)

		rows := addCompositionRow(addCompositionRow(pgxmock.NewRows(compositionRowDefs()), second), first)
		mock.ExpectQuery("SELECT (.+) FROM composed_videos WHERE project_id = \\$1 ORDER BY created_at DESC, id").
			WithArgs("project-1").
			WillReturnRows(rows)

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		got, err := repo.ListByProjectID(ctx, "project-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ScriptID, got[0].ScriptID)
		assert.Equal(t, first.ScriptID, got[1].ScriptID)

		assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
	})
}

func TestCompositionRepository_Update(t *testing.T) {
	t.Run("persists output after completion", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		cv := model.NewComposedVideo("project-1", "script-1", nil)
		cv, err = cv.WithStatus(model.CompositionStatusProcessing)
		require.NoError(t, err)
		cv, err = cv.WithStatus(model.CompositionStatusCompleted)
		require.NoError(t, err)
		cv = cv.WithOutput("file-out-99", 58.4)

		mock.ExpectExec("UPDATE composed_videos SET").
			WithArgs(cv.ID, cv.OutputFileID, cv.DurationSeconds, cv.Status, cv.BGM, cv.ErrorMessage, cv.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewRepository(mock)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		require.NoError(t, repo.Update(ctx, cv))
		assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
	})
}
