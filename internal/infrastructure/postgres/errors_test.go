package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
)

func TestClassify_CodigosSQLState(t *testing.T) {
	cases := map[string]error{
		codeSerializationFailure: domain.ErrConflictRetryable,
		codeDeadlockDetected:     domain.ErrConflictRetryable,
		codeLockNotAvailable:     domain.ErrConflictRetryable,
		codeUniqueViolation:      domain.ErrDuplicate,
		codeCheckViolation:       domain.ErrInvalidInput,
		codeStringTooLong:        domain.ErrInvalidInput,
	}
	for code, want := range cases {
		t.Run(code, func(t *testing.T) {
			err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "x"})
			assert.ErrorIs(t, classify(err), want)
		})
	}
}

func TestClassify_OtrosErroresSinCambio(t *testing.T) {
	plain := errors.New("conexión cerrada")
	assert.Equal(t, plain, classify(plain))
	assert.Nil(t, classify(nil))
}

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(pgx.ErrNoRows))
	assert.True(t, isMissing(&pgconn.PgError{Code: codeInvalidText}))
	assert.False(t, isMissing(&pgconn.PgError{Code: codeUniqueViolation}))
}

func TestLikePattern_EscapaComodines(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}
