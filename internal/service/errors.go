package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"scholarship-finder/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// detailError conserva el sentinel para errors.Is y expone solo el detalle.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func invalid(err error) error {
	return &detailError{kind: ErrValidation, msg: err.Error()}
}

func invalidf(format string, args ...any) error {
	return &detailError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &detailError{kind: ErrNotFound, msg: msg}
}

func conflict(msg string) error {
	return &detailError{kind: ErrConflict, msg: msg}
}

// translate convierte errores de persistencia en errores de servicio.
// what describe el recurso en los mensajes de 404 y 409.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(what + " not found")
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict(what + " already exists")
	}
	if errors.Is(err, repository.ErrUnknownReferenceKind) {
		return notFound("reference kind not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return invalidf("%s references a missing record", what)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
