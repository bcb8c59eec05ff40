package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

// ApplicationRepository persiste postulaciones. Toda lectura o escritura
// sobre una fila existente va filtrada por el user_id del duenio.
type ApplicationRepository interface {
	CreateWithDocuments(ctx context.Context, app domain.Application, docs []domain.Document) error
	ListByUser(ctx context.Context, userID string) ([]domain.Application, error)
	GetForUser(ctx context.Context, id, userID string) (domain.Application, error)
	Update(ctx context.Context, app domain.Application) error
	DeleteForUser(ctx context.Context, id, userID string) error
}

type PgApplicationRepository struct {
	pool DB
}

func NewPgApplicationRepository(pool DB) *PgApplicationRepository {
	return &PgApplicationRepository{pool: pool}
}

// CreateWithDocuments inserta la postulacion y sus documentos requeridos en
// una sola transaccion.
func (r *PgApplicationRepository) CreateWithDocuments(ctx context.Context, app domain.Application, docs []domain.Document) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertApp = `
			INSERT INTO applications (id, user_id, scholarship_id, status, notes, submitted_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.Exec(ctx, insertApp,
			app.ID,
			app.UserID,
			app.ScholarshipID,
			app.Status,
			app.Notes,
			app.SubmittedAt,
			app.CreatedAt,
			app.UpdatedAt,
		)
		if err != nil {
			return translateWriteErr(err)
		}

		for _, d := range docs {
			_, err := tx.Exec(ctx, insertDocumentQuery, d.ID, d.ApplicationID, d.Name, d.Status, d.URL, d.Notes, d.CreatedAt, d.UpdatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

const applicationSelect = `
	SELECT a.id, a.user_id, a.scholarship_id, a.status, a.notes, a.submitted_at,
		a.created_at, a.updated_at, s.title, s.deadline
	FROM applications a
	JOIN scholarships s ON s.id = a.scholarship_id
`

func (r *PgApplicationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	const query = applicationSelect + ` WHERE a.user_id = $1 ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *PgApplicationRepository) GetForUser(ctx context.Context, id, userID string) (domain.Application, error) {
	const query = applicationSelect + ` WHERE a.id = $1 AND a.user_id = $2`
	return scanApplication(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PgApplicationRepository) Update(ctx context.Context, app domain.Application) error {
	const query = `
		UPDATE applications
		SET status = $3, notes = $4, submitted_at = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		app.ID,
		app.UserID,
		app.Status,
		app.Notes,
		app.SubmittedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteForUser borra tareas, documentos y la postulacion en una transaccion.
func (r *PgApplicationRepository) DeleteForUser(ctx context.Context, id, userID string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		const owned = `SELECT id FROM applications WHERE id = $1 AND user_id = $2`
		if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE application_id IN (`+owned+`)`, id, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE application_id IN (`+owned+`)`, id, userID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.ScholarshipID,
		&a.Status,
		&a.Notes,
		&a.SubmittedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.ScholarshipTitle,
		&a.Deadline,
	)
	if err != nil {
		return domain.Application{}, err
	}
	return a, nil
}
