package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

type FavoriteRepository interface {
	Create(ctx context.Context, fav domain.Favorite) error
	ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error)
	Delete(ctx context.Context, userID, scholarshipID string) error
}

type PgFavoriteRepository struct {
	pool DB
}

func NewPgFavoriteRepository(pool DB) *PgFavoriteRepository {
	return &PgFavoriteRepository{pool: pool}
}

func (r *PgFavoriteRepository) Create(ctx context.Context, fav domain.Favorite) error {
	const query = `
		INSERT INTO favorites (user_id, scholarship_id, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, fav.UserID, fav.ScholarshipID, fav.CreatedAt)
	return translateWriteErr(err)
}

func (r *PgFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Favorite, error) {
	const query = `
		SELECT f.user_id, f.scholarship_id, f.created_at,
			s.id, s.title, s.provider, s.description, s.amount_cents, s.currency, s.deadline,
			s.country_code, s.field_id, s.degree_level_id, s.university_id, s.url,
			s.required_documents, s.active, s.created_at, s.updated_at
		FROM favorites f
		JOIN scholarships s ON s.id = f.scholarship_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favs := []domain.Favorite{}
	for rows.Next() {
		var (
			f domain.Favorite
			s domain.Scholarship
		)
		err := rows.Scan(
			&f.UserID,
			&f.ScholarshipID,
			&f.CreatedAt,
			&s.ID,
			&s.Title,
			&s.Provider,
			&s.Description,
			&s.AmountCents,
			&s.Currency,
			&s.Deadline,
			&s.CountryCode,
			&s.FieldID,
			&s.DegreeLevelID,
			&s.UniversityID,
			&s.URL,
			&s.RequiredDocuments,
			&s.Active,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		f.Scholarship = &s
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return favs, nil
}

func (r *PgFavoriteRepository) Delete(ctx context.Context, userID, scholarshipID string) error {
	const query = `DELETE FROM favorites WHERE user_id = $1 AND scholarship_id = $2`
	tag, err := r.pool.Exec(ctx, query, userID, scholarshipID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
