package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"scholarship-finder/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	// GetIdentity resuelve un token vigente junto con su usuario.
	GetIdentity(ctx context.Context, token string, now time.Time) (domain.Identity, error)
	// GetIdentityByHandle resuelve una sesion vigente por su handle (sha256 del token).
	GetIdentityByHandle(ctx context.Context, handle string, now time.Time) (domain.Identity, error)
	Extend(ctx context.Context, token string, expiresAt time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpiredToken(ctx context.Context, token string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type PgSessionRepository struct {
	pool DB
}

func NewPgSessionRepository(pool DB) *PgSessionRepository {
	return &PgSessionRepository{pool: pool}
}

func (r *PgSessionRepository) Create(ctx context.Context, session domain.Session) error {
	const query = `
		INSERT INTO sessions (token, token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		session.Token,
		domain.SessionHandle(session.Token),
		session.UserID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return translateWriteErr(err)
}

const sessionIdentitySelect = `
	SELECT u.id, u.name, u.email, u.role, u.image, s.token, s.expires_at
	FROM sessions s
	JOIN users u ON u.id = s.user_id
`

func (r *PgSessionRepository) GetIdentity(ctx context.Context, token string, now time.Time) (domain.Identity, error) {
	const query = sessionIdentitySelect + ` WHERE s.token = $1 AND s.expires_at > $2`
	return scanIdentity(r.pool.QueryRow(ctx, query, token, now))
}

func (r *PgSessionRepository) GetIdentityByHandle(ctx context.Context, handle string, now time.Time) (domain.Identity, error) {
	const query = sessionIdentitySelect + ` WHERE s.token_hash = $1 AND s.expires_at > $2`
	return scanIdentity(r.pool.QueryRow(ctx, query, handle, now))
}

func scanIdentity(row pgx.Row) (domain.Identity, error) {
	var id domain.Identity
	err := row.Scan(
		&id.UserID,
		&id.Name,
		&id.Email,
		&id.Role,
		&id.Image,
		&id.SessionToken,
		&id.SessionExpiresAt,
	)
	if err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

// Extend solo mueve la expiracion; el token nunca cambia.
func (r *PgSessionRepository) Extend(ctx context.Context, token string, expiresAt time.Time) error {
	const query = `UPDATE sessions SET expires_at = $2 WHERE token = $1`
	tag, err := r.pool.Exec(ctx, query, token, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgSessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *PgSessionRepository) DeleteExpiredToken(ctx context.Context, token string, now time.Time) error {
	const query = `DELETE FROM sessions WHERE token = $1 AND expires_at <= $2`
	_, err := r.pool.Exec(ctx, query, token, now)
	return err
}

func (r *PgSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= $1`
	tag, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
