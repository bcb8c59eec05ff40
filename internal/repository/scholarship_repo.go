package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
	"scholarship-finder/internal/search"
)

type ScholarshipRepository interface {
	Create(ctx context.Context, s domain.Scholarship) error
	GetByID(ctx context.Context, id string) (domain.Scholarship, error)
	Update(ctx context.Context, s domain.Scholarship) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, filter domain.ScholarshipFilter) ([]domain.Scholarship, int, error)
}

type PgScholarshipRepository struct {
	pool DB
}

func NewPgScholarshipRepository(pool DB) *PgScholarshipRepository {
	return &PgScholarshipRepository{pool: pool}
}

const scholarshipColumns = `id, title, provider, description, amount_cents, currency, deadline,
	country_code, field_id, degree_level_id, university_id, url, required_documents, active,
	created_at, updated_at`

func (r *PgScholarshipRepository) Create(ctx context.Context, s domain.Scholarship) error {
	const query = `
		INSERT INTO scholarships (` + scholarshipColumns + `, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Title,
		s.Provider,
		s.Description,
		s.AmountCents,
		s.Currency,
		s.Deadline,
		s.CountryCode,
		s.FieldID,
		s.DegreeLevelID,
		s.UniversityID,
		s.URL,
		nonNilStrings(s.RequiredDocuments),
		s.Active,
		s.CreatedAt,
		s.UpdatedAt,
		search.Document(s.SearchFields()...),
	)
	return translateWriteErr(err)
}

func (r *PgScholarshipRepository) GetByID(ctx context.Context, id string) (domain.Scholarship, error) {
	const query = `SELECT ` + scholarshipColumns + ` FROM scholarships WHERE id = $1`
	return scanScholarship(r.pool.QueryRow(ctx, query, id))
}

func (r *PgScholarshipRepository) Update(ctx context.Context, s domain.Scholarship) error {
	const query = `
		UPDATE scholarships
		SET title = $2, provider = $3, description = $4, amount_cents = $5, currency = $6,
			deadline = $7, country_code = $8, field_id = $9, degree_level_id = $10,
			university_id = $11, url = $12, required_documents = $13, active = $14,
			updated_at = $15, search_text = $16
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Title,
		s.Provider,
		s.Description,
		s.AmountCents,
		s.Currency,
		s.Deadline,
		s.CountryCode,
		s.FieldID,
		s.DegreeLevelID,
		s.UniversityID,
		s.URL,
		nonNilStrings(s.RequiredDocuments),
		s.Active,
		s.UpdatedAt,
		search.Document(s.SearchFields()...),
	)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgScholarshipRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM scholarships WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Search filtra con condiciones fijas; los valores siempre van como parametros.
func (r *PgScholarshipRepository) Search(ctx context.Context, f domain.ScholarshipFilter) ([]domain.Scholarship, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if !f.IncludeClosed {
		conds = append(conds, "active = TRUE")
	}
	if q := search.Normalize(f.Query); q != "" {
		add("search_text LIKE $%d", search.LikePattern(q))
	}
	if f.CountryCode != "" {
		add("country_code = $%d", strings.ToUpper(f.CountryCode))
	}
	if f.FieldID != "" {
		add("field_id = $%d", f.FieldID)
	}
	if f.DegreeLevelID != "" {
		add("degree_level_id = $%d", f.DegreeLevelID)
	}
	if f.UniversityID != "" {
		add("university_id = $%d", f.UniversityID)
	}
	if f.MinAmountCents > 0 {
		add("amount_cents >= $%d", f.MinAmountCents)
	}
	if f.DeadlineAfter != nil {
		add("(deadline IS NULL OR deadline >= $%d)", *f.DeadlineAfter)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM scholarships`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page.Normalize()
	args = append(args, page.Limit, page.Offset)
	query := `SELECT ` + scholarshipColumns + ` FROM scholarships` + where +
		fmt.Sprintf(` ORDER BY deadline ASC NULLS LAST, title ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.Scholarship{}
	for rows.Next() {
		s, err := scanScholarship(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanScholarship(row pgx.Row) (domain.Scholarship, error) {
	var s domain.Scholarship
	err := row.Scan(
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
		return domain.Scholarship{}, err
	}
	if s.RequiredDocuments == nil {
		s.RequiredDocuments = []string{}
	}
	return s, nil
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
