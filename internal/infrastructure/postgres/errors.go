package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
)

// Códigos SQLSTATE relevantes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeStringTooLong        = "22001"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify traduce errores de PostgreSQL a errores de dominio conservando el original en el mensaje.
// Serialización, deadlock y lock_timeout son reintentables.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		return fmt.Errorf("%w: %v", domain.ErrConflictRetryable, err)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	case codeCheckViolation, codeStringTooLong:
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return err
}

// isMissing indica una fila inexistente o un id que ni siquiera es un uuid válido.
func isMissing(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == codeInvalidText
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}
