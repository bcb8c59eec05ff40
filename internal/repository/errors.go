package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate se devuelve cuando una restriccion UNIQUE rechaza la escritura.
var ErrDuplicate = errors.New("duplicate row")

const uniqueViolation = "23505"

func translateWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
