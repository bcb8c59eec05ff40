package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

type ReferenceRepository interface {
	List(ctx context.Context, kind string) ([]domain.ReferenceItem, error)
	Create(ctx context.Context, kind string, item domain.ReferenceItem) error
	Update(ctx context.Context, kind string, item domain.ReferenceItem) error
	Delete(ctx context.Context, kind, id string) error
}

// Nombres de tabla fijos por tipo; nunca vienen del request.
var referenceTables = map[string]string{
	domain.ReferenceCountries:    "countries",
	domain.ReferenceFields:       "fields_of_study",
	domain.ReferenceDegreeLevels: "degree_levels",
}

var ErrUnknownReferenceKind = fmt.Errorf("unknown reference kind")

type PgReferenceRepository struct {
	pool DB
}

func NewPgReferenceRepository(pool DB) *PgReferenceRepository {
	return &PgReferenceRepository{pool: pool}
}

func referenceTable(kind string) (string, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
	}
	return table, nil
}

func (r *PgReferenceRepository) List(ctx context.Context, kind string) ([]domain.ReferenceItem, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.ReferenceItem{}
	for rows.Next() {
		var item domain.ReferenceItem
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PgReferenceRepository) Create(ctx context.Context, kind string, item domain.ReferenceItem) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO `+table+` (id, name) VALUES ($1, $2)`, item.ID, item.Name)
	return translateWriteErr(err)
}

func (r *PgReferenceRepository) Update(ctx context.Context, kind string, item domain.ReferenceItem) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE `+table+` SET name = $2 WHERE id = $1`, item.ID, item.Name)
	if err != nil {
		return translateWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgReferenceRepository) Delete(ctx context.Context, kind, id string) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
