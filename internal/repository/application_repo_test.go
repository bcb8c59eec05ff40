package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarship-finder/internal/domain"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var (
	deleteTasksSQL     = regexp.QuoteMeta(`DELETE FROM tasks WHERE application_id IN (SELECT id FROM applications WHERE id = $1 AND user_id = $2)`)
	deleteDocumentsSQL = regexp.QuoteMeta(`DELETE FROM documents WHERE application_id IN (SELECT id FROM applications WHERE id = $1 AND user_id = $2)`)
	deleteAppSQL       = regexp.QuoteMeta(`DELETE FROM applications WHERE id = $1 AND user_id = $2`)
)

func TestPgApplicationRepository_DeleteForUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgApplicationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(deleteTasksSQL).WithArgs("app-1", "user-1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(deleteDocumentsSQL).WithArgs("app-1", "user-1").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(deleteAppSQL).WithArgs("app-1", "user-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteForUser(context.Background(), "app-1", "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgApplicationRepository_DeleteForUserNotOwned(t *testing.T) {
	mock := newMockPool(t)
	repo := NewPgApplicationRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(deleteTasksSQL).WithArgs("app-1", "intruder").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(deleteDocumentsSQL).WithArgs("app-1", "intruder").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(deleteAppSQL).WithArgs("app-1", "intruder").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := repo.DeleteForUser(context.Background(), "app-1", "intruder")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgApplicationRepository_GetForUser(t *testing.T) {
	query := regexp.QuoteMeta(`WHERE a.id = $1 AND a.user_id = $2`)
	columns := []string{"id", "user_id", "scholarship_id", "status", "notes", "submitted_at", "created_at", "updated_at", "title", "deadline"}

	t.Run("owned", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewPgApplicationRepository(mock)
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		deadline := time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(query).WithArgs("app-1", "user-1").WillReturnRows(
			pgxmock.NewRows(columns).AddRow(
				"app-1", "user-1", "sch-1", domain.ApplicationDraft, "", (*time.Time)(nil),
				created, created, "Beca DAAD", &deadline,
			),
		)

		app, err := repo.GetForUser(context.Background(), "app-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, "sch-1", app.ScholarshipID)
		assert.Equal(t, "Beca DAAD", app.ScholarshipTitle)
		assert.Nil(t, app.SubmittedAt)
		require.NotNil(t, app.Deadline)
		assert.True(t, app.Deadline.Equal(deadline))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other user", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewPgApplicationRepository(mock)

		mock.ExpectQuery(query).WithArgs("app-1", "intruder").WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetForUser(context.Background(), "app-1", "intruder")
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgApplicationRepository_CreateWithDocuments(t *testing.T) {
	insertApp := regexp.QuoteMeta(`INSERT INTO applications`)
	insertDoc := regexp.QuoteMeta(`INSERT INTO documents`)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	app := domain.Application{
		ID: "app-1", UserID: "user-1", ScholarshipID: "sch-1", Status: domain.ApplicationDraft,
		CreatedAt: now, UpdatedAt: now,
	}
	docs := []domain.Document{
		{ID: "doc-1", ApplicationID: "app-1", Name: "CV", Status: domain.DocumentPending, CreatedAt: now, UpdatedAt: now},
		{ID: "doc-2", ApplicationID: "app-1", Name: "Carta", Status: domain.DocumentPending, CreatedAt: now, UpdatedAt: now},
	}

	t.Run("commits application and documents", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewPgApplicationRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec(insertApp).
			WithArgs("app-1", "user-1", "sch-1", domain.ApplicationDraft, "", (*time.Time)(nil), now, now).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		for _, d := range docs {
			mock.ExpectExec(insertDoc).
				WithArgs(d.ID, "app-1", d.Name, domain.DocumentPending, "", "", now, now).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mock.ExpectCommit()

		require.NoError(t, repo.CreateWithDocuments(context.Background(), app, docs))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate rolls back", func(t *testing.T) {
		mock := newMockPool(t)
		repo := NewPgApplicationRepository(mock)

		mock.ExpectBegin()
		mock.ExpectExec(insertApp).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "applications_user_id_scholarship_id_key"})
		mock.ExpectRollback()

		err := repo.CreateWithDocuments(context.Background(), app, docs)
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
