package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/search"
)

type UniversityRepository interface {
	Create(ctx context.Context, u domain.University) error
	GetByID(ctx context.Context, id string) (domain.University, error)
	Update(ctx context.Context, u domain.University) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter domain.UniversityFilter) ([]domain.University, int, error)
}

type PgUniversityRepository struct {
	pool DB
}

func NewPgUniversityRepository(pool DB) *PgUniversityRepository {
	return &PgUniversityRepository{pool: pool}
}

const universityColumns = `id, name, country_code, city, website, ranking, description, created_at, updated_at`

func (r *PgUniversityRepository) Create(ctx context.Context, u domain.University) error {
	const query = `
		INSERT INTO universities (` + universityColumns + `, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.CountryCode,
		u.City,
		u.Website,
		u.Ranking,
		u.Description,
		u.CreatedAt,
		u.UpdatedAt,
		search.Document(u.SearchFields()...),
	)
	return translateWriteErr(err)
}

func (r *PgUniversityRepository) GetByID(ctx context.Context, id string) (domain.University, error) {
	const query = `SELECT ` + universityColumns + ` FROM universities WHERE id = $1`
	return scanUniversity(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUniversityRepository) Update(ctx context.Context, u domain.University) error {
	const query = `
		UPDATE universities
		SET name = $2, country_code = $3, city = $4, website = $5, ranking = $6,
			description = $7, updated_at = $8, search_text = $9
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		u.ID,
		u.Name,
		u.CountryCode,
		u.City,
		u.Website,
		u.Ranking,
		u.Description,
		u.UpdatedAt,
		search.Document(u.SearchFields()...),
	)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUniversityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM universities WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgUniversityRepository) Search(ctx context.Context, f domain.UniversityFilter) ([]domain.University, int, error) {
	var (
		conds []string
		args  []any
	)
	if q := search.Normalize(f.Query); q != "" {
		args = append(args, search.LikePattern(q))
		conds = append(conds, fmt.Sprintf("search_text LIKE $%d", len(args)))
	}
	if f.CountryCode != "" {
		args = append(args, strings.ToUpper(f.CountryCode))
		conds = append(conds, fmt.Sprintf("country_code = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM universities`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := `SELECT ` + universityColumns + ` FROM universities` + where +
		fmt.Sprintf(` ORDER BY ranking ASC NULLS LAST, name ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.University{}
	for rows.Next() {
		u, err := scanUniversity(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanUniversity(row pgx.Row) (domain.University, error) {
	var u domain.University
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.CountryCode,
		&u.City,
		&u.Website,
		&u.Ranking,
		&u.Description,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.University{}, err
	}
	return u, nil
}
