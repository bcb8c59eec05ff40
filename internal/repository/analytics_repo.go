package repository

import (
	"context"
	"time"

	"scholarship-finder/internal/domain"
)

// AnalyticsRepository expone consultas agregadas de solo lectura.
type AnalyticsRepository interface {
	CountUsers(ctx context.Context) (int, error)
	CountUsersSince(ctx context.Context, since time.Time) (int, error)
	CountScholarships(ctx context.Context) (int, error)
	CountUniversities(ctx context.Context) (int, error)
	ApplicationsByStatus(ctx context.Context) (map[string]int, error)
	TopFavorited(ctx context.Context, limit int) ([]domain.ScholarshipCount, error)
}

type PgAnalyticsRepository struct {
	pool DB
}

func NewPgAnalyticsRepository(pool DB) *PgAnalyticsRepository {
	return &PgAnalyticsRepository{pool: pool}
}

func (r *PgAnalyticsRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *PgAnalyticsRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM users`)
}

func (r *PgAnalyticsRepository) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM users WHERE created_at >= $1`, since)
}

func (r *PgAnalyticsRepository) CountScholarships(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM scholarships WHERE active = TRUE`)
}

func (r *PgAnalyticsRepository) CountUniversities(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM universities`)
}

func (r *PgAnalyticsRepository) ApplicationsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PgAnalyticsRepository) TopFavorited(ctx context.Context, limit int) ([]domain.ScholarshipCount, error) {
	const query = `
		SELECT s.id, s.title, count(*) AS n
		FROM favorites f
		JOIN scholarships s ON s.id = f.scholarship_id
		GROUP BY s.id, s.title
		ORDER BY n DESC, s.title ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ScholarshipCount{}
	for rows.Next() {
		var c domain.ScholarshipCount
		if err := rows.Scan(&c.ScholarshipID, &c.Title, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
