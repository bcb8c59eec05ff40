package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

// DocumentRepository: los documentos pertenecen al usuario a traves de su postulacion.
type DocumentRepository interface {
	Create(ctx context.Context, doc domain.Document) error
	ListByApplication(ctx context.Context, applicationID string) ([]domain.Document, error)
	GetForUser(ctx context.Context, id, applicationID, userID string) (domain.Document, error)
	Update(ctx context.Context, doc domain.Document) error
	Delete(ctx context.Context, id, applicationID string) error
}

type PgDocumentRepository struct {
	pool DB
}

func NewPgDocumentRepository(pool DB) *PgDocumentRepository {
	return &PgDocumentRepository{pool: pool}
}

const insertDocumentQuery = `
	INSERT INTO documents (id, application_id, name, status, url, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (r *PgDocumentRepository) Create(ctx context.Context, d domain.Document) error {
	_, err := r.pool.Exec(ctx, insertDocumentQuery,
		d.ID,
		d.ApplicationID,
		d.Name,
		d.Status,
		d.URL,
		d.Notes,
		d.CreatedAt,
		d.UpdatedAt,
	)
	return err
}

func (r *PgDocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]domain.Document, error) {
	const query = `
		SELECT id, application_id, name, status, url, notes, created_at, updated_at
		FROM documents
		WHERE application_id = $1
		ORDER BY created_at ASC, name ASC
	`
	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *PgDocumentRepository) GetForUser(ctx context.Context, id, applicationID, userID string) (domain.Document, error) {
	const query = `
		SELECT d.id, d.application_id, d.name, d.status, d.url, d.notes, d.created_at, d.updated_at
		FROM documents d
		JOIN applications a ON a.id = d.application_id
		WHERE d.id = $1 AND d.application_id = $2 AND a.user_id = $3
	`
	return scanDocument(r.pool.QueryRow(ctx, query, id, applicationID, userID))
}

func (r *PgDocumentRepository) Update(ctx context.Context, d domain.Document) error {
	const query = `
		UPDATE documents
		SET name = $3, status = $4, url = $5, notes = $6, updated_at = $7
		WHERE id = $1 AND application_id = $2
	`
	tag, err := r.pool.Exec(ctx, query,
		d.ID,
		d.ApplicationID,
		d.Name,
		d.Status,
		d.URL,
		d.Notes,
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgDocumentRepository) Delete(ctx context.Context, id, applicationID string) error {
	const query = `DELETE FROM documents WHERE id = $1 AND application_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, applicationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanDocument(row pgx.Row) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.ApplicationID,
		&d.Name,
		&d.Status,
		&d.URL,
		&d.Notes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	return d, nil
}
