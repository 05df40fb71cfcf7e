package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-ledger-api/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger-api/pkg/config"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

const tracerName = "github.com/jhoicas/inventario-ledger-api/internal/infrastructure/postgres"

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT ... FOR UPDATE).
type TxRunner struct {
	pool             *pgxpool.Pool
	statementTimeout time.Duration
	lockTimeout      time.Duration
	tracer           trace.Tracer
}

// NewTxRunner construye el runner con el pool y los timeouts por transacción de cfg.
func NewTxRunner(pool *pgxpool.Pool, cfg config.DBConfig) *TxRunner {
	return &TxRunner{
		pool:             pool,
		statementTimeout: cfg.StatementTimeout,
		lockTimeout:      cfg.LockTimeout,
		tracer:           otel.Tracer(tracerName),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un lock que no se obtiene dentro de lock_timeout termina en domain.ErrConflictRetryable.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) (err error) {
	ctx, span := r.tracer.Start(ctx, "postgres.TxRunner.Run")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", classify(err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.setLocalTimeouts(ctx, tx); err != nil {
		return err
	}
	span.SetAttributes(
		attribute.Int64("db.statement_timeout_ms", r.statementTimeout.Milliseconds()),
		attribute.Int64("db.lock_timeout_ms", r.lockTimeout.Milliseconds()),
	)

	if err := fn(NewInventoryMovementRepository(tx), NewProductRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}

// setLocalTimeouts aplica statement_timeout y lock_timeout solo a esta transacción. 0 los deja sin cambio.
func (r *TxRunner) setLocalTimeouts(ctx context.Context, tx pgx.Tx) error {
	settings := map[string]time.Duration{
		"statement_timeout": r.statementTimeout,
		"lock_timeout":      r.lockTimeout,
	}
	for name, d := range settings {
		if d <= 0 {
			continue
		}
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", name, strconv.FormatInt(d.Milliseconds(), 10)); err != nil {
			return fmt.Errorf("set %s: %w", name, classify(err))
		}
	}
	return nil
}
