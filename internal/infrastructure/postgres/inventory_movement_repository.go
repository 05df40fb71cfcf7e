package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

var movementColumns = []string{
	"m.id", "m.product_id::text AS product_id", "m.movement_type::text AS movement_type", "m.reason::text AS reason",
	"m.quantity", "m.stock_before", "m.stock_after",
	"COALESCE(m.user_id::text, '') AS user_id", "COALESCE(m.reference, '') AS reference", "COALESCE(m.notes, '') AS notes",
	"m.created_at", "p.sku AS product_sku", "p.name AS product_name", "COALESCE(u.full_name, '') AS user_full_name",
}

type movementRow struct {
	ID           int64     `db:"id"`
	ProductID    string    `db:"product_id"`
	MovementType string    `db:"movement_type"`
	Reason       string    `db:"reason"`
	Quantity     int64     `db:"quantity"`
	StockBefore  int64     `db:"stock_before"`
	StockAfter   int64     `db:"stock_after"`
	UserID       string    `db:"user_id"`
	Reference    string    `db:"reference"`
	Notes        string    `db:"notes"`
	CreatedAt    time.Time `db:"created_at"`
	ProductSKU   string    `db:"product_sku"`
	ProductName  string    `db:"product_name"`
	UserFullName string    `db:"user_full_name"`
}

// InventoryMovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

func selectMovements() squirrel.SelectBuilder {
	return psql.Select(movementColumns...).
		From("inventory_movements m").
		Join("products p ON p.id = m.product_id").
		LeftJoin("users u ON u.id = m.user_id")
}

// Create inserta el movimiento y completa ID y CreatedAt desde la base.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.Quantity <= 0 || m.StockBefore < 0 || m.StockAfter < 0 {
		return domain.ErrInvalidInput
	}
	var createdAt *time.Time
	if !m.CreatedAt.IsZero() {
		createdAt = &m.CreatedAt
	}
	const query = `
		INSERT INTO inventory_movements
			(product_id, movement_type, reason, quantity, stock_before, stock_after, user_id, reference, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10::timestamptz, now()))
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ProductID, m.MovementType, m.Reason, m.Quantity, m.StockBefore, m.StockAfter,
		nullable(m.UserID), nullable(m.Reference), nullable(m.Notes), createdAt,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) || isMissing(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create inventory movement: %w", classify(err))
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id int64) (*entity.InventoryMovement, error) {
	sql, args, err := selectMovements().Where(squirrel.Eq{"m.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get movement: %w", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", classify(err))
	}
	return row.toEntity(), nil
}

// List lista movimientos filtrados, más recientes primero, con el total sin paginar.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.InventoryMovement, int, error) {
	where := movementWhere(f)

	countSQL, countArgs, err := psql.Select("count(*)").From("inventory_movements m").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count movements: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		if isMissing(err) {
			return []*entity.InventoryMovement{}, 0, nil
		}
		return nil, 0, fmt.Errorf("count movements: %w", classify(err))
	}

	list, err := r.selectMany(ctx, selectMovements().Where(where), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByProduct devuelve los últimos limit movimientos del producto.
func (r *InventoryMovementRepo) ListByProduct(ctx context.Context, productID string, limit int) ([]*entity.InventoryMovement, error) {
	return r.selectMany(ctx, selectMovements().Where(squirrel.Eq{"m.product_id": productID}), limit, 0)
}

// LastForProduct devuelve el movimiento más reciente del producto o nil.
func (r *InventoryMovementRepo) LastForProduct(ctx context.Context, productID string) (*entity.InventoryMovement, error) {
	list, err := r.ListByProduct(ctx, productID, 1)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (r *InventoryMovementRepo) selectMany(ctx context.Context, b squirrel.SelectBuilder, limit, offset int) ([]*entity.InventoryMovement, error) {
	b = b.OrderBy("m.created_at DESC", "m.id DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		b = b.Offset(uint64(offset))
	}
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		if isMissing(err) {
			return []*entity.InventoryMovement{}, nil
		}
		return nil, fmt.Errorf("list movements: %w", classify(err))
	}
	out := make([]*entity.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *InventoryMovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		if isMissing(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count movements by product: %w", classify(err))
	}
	return n, nil
}

// CountSince cuenta movimientos con created_at >= since.
func (r *InventoryMovementRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements since: %w", classify(err))
	}
	return n, nil
}

func movementWhere(f repository.MovementFilter) squirrel.And {
	where := squirrel.And{}
	if f.ProductID != "" {
		where = append(where, squirrel.Eq{"m.product_id": f.ProductID})
	}
	if f.MovementType != "" {
		where = append(where, squirrel.Eq{"m.movement_type::text": f.MovementType})
	}
	if f.Reason != "" {
		where = append(where, squirrel.Eq{"m.reason::text": f.Reason})
	}
	if f.UserID != "" {
		where = append(where, squirrel.Eq{"m.user_id": f.UserID})
	}
	if f.Reference != "" {
		where = append(where, squirrel.ILike{"m.reference": likePattern(f.Reference)})
	}
	if f.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"m.created_at": *f.DateFrom})
	}
	if f.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"m.created_at": *f.DateTo})
	}
	return where
}

func (r movementRow) toEntity() *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:           r.ID,
		ProductID:    r.ProductID,
		MovementType: r.MovementType,
		Reason:       r.Reason,
		Quantity:     r.Quantity,
		StockBefore:  r.StockBefore,
		StockAfter:   r.StockAfter,
		UserID:       r.UserID,
		Reference:    r.Reference,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		ProductSKU:   r.ProductSKU,
		ProductName:  r.ProductName,
		UserFullName: r.UserFullName,
	}
}
