package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

var productColumns = []string{
	"id::text AS id", "sku", "name", "description", "category_id::text AS category_id", "supplier_id::text AS supplier_id",
	"stock_current", "stock_min", "cost", "price", "is_active", "created_at", "updated_at",
}

type productRow struct {
	ID           string          `db:"id"`
	SKU          string          `db:"sku"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	CategoryID   *string         `db:"category_id"`
	SupplierID   *string         `db:"supplier_id"`
	StockCurrent int64           `db:"stock_current"`
	StockMin     int64           `db:"stock_min"`
	Cost         decimal.Decimal `db:"cost"`
	Price        decimal.Decimal `db:"price"`
	IsActive     bool            `db:"is_active"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:           r.ID,
		SKU:          r.SKU,
		Name:         r.Name,
		Description:  r.Description,
		CategoryID:   deref(r.CategoryID),
		SupplierID:   deref(r.SupplierID),
		StockCurrent: r.StockCurrent,
		StockMin:     r.StockMin,
		Cost:         r.Cost,
		Price:        r.Price,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	sql, args, err := psql.Insert("products").
		Columns("id", "sku", "name", "description", "category_id", "supplier_id",
			"stock_current", "stock_min", "cost", "price", "is_active", "created_at", "updated_at").
		Values(p.ID, p.SKU, p.Name, p.Description, nullable(p.CategoryID), nullable(p.SupplierID),
			p.StockCurrent, p.StockMin, p.Cost, p.Price, p.IsActive, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert product: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría o proveedor inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert product: %w", classify(err))
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}))
}

// GetForUpdate lee el producto tomando el lock de fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.getOne(ctx, psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// GetBySKU obtiene un producto por SKU exacto (ya normalizado).
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	return r.getOne(ctx, psql.Select(productColumns...).From("products").Where(squirrel.Eq{"sku": sku}))
}

func (r *ProductRepo) getOne(ctx context.Context, b squirrel.SelectBuilder) (*entity.Product, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select product: %w", err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", classify(err))
	}
	return row.toEntity(), nil
}

// Update actualiza un producto existente. No modifica stock_current (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	sql, args, err := psql.Update("products").
		Set("sku", p.SKU).
		Set("name", p.Name).
		Set("description", p.Description).
		Set("category_id", nullable(p.CategoryID)).
		Set("supplier_id", nullable(p.SupplierID)).
		Set("stock_min", p.StockMin).
		Set("cost", p.Cost).
		Set("price", p.Price).
		Set("is_active", p.IsActive).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update product: %w", err)
	}
	return r.execOne(ctx, "update product", sql, args...)
}

// UpdateStock fija stock_current; solo lo usa el motor de movimientos dentro de su transacción.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	if stock < 0 {
		return domain.ErrInvalidInput
	}
	return r.execOne(ctx, "update product stock",
		`UPDATE products SET stock_current = $2, updated_at = now() WHERE id = $1`, id, stock)
}

// SoftDelete marca el producto como inactivo.
func (r *ProductRepo) SoftDelete(ctx context.Context, id string) error {
	return r.execOne(ctx, "soft delete product",
		`UPDATE products SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
}

func (r *ProductRepo) execOne(ctx context.Context, op, sql string, args ...any) error {
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if isMissing(err) {
			return domain.ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: categoría o proveedor inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos filtrados, ordenados por nombre, con el total sin paginar.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	where := productWhere(f)

	countSQL, countArgs, err := psql.Select("count(*)").From("products").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count products: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", classify(err))
	}

	q := psql.Select(productColumns...).From("products").Where(where).OrderBy("name", "id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list products: %w", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", classify(err))
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

func productWhere(f repository.ProductFilter) squirrel.And {
	where := squirrel.And{}
	if f.CategoryID != "" {
		where = append(where, squirrel.Eq{"category_id": f.CategoryID})
	}
	if f.SupplierID != "" {
		where = append(where, squirrel.Eq{"supplier_id": f.SupplierID})
	}
	if f.IsActive != nil {
		where = append(where, squirrel.Eq{"is_active": *f.IsActive})
	}
	if f.LowStockOnly {
		where = append(where, squirrel.Expr("stock_current < stock_min"))
	}
	if f.MinPrice != nil {
		where = append(where, squirrel.GtOrEq{"price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		where = append(where, squirrel.LtOrEq{"price": *f.MaxPrice})
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		where = append(where, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"sku": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return where
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return r.count(ctx, "category_id", categoryID)
}

func (r *ProductRepo) CountBySupplier(ctx context.Context, supplierID string) (int, error) {
	return r.count(ctx, "supplier_id", supplierID)
}

func (r *ProductRepo) count(ctx context.Context, column, id string) (int, error) {
	sql, args, err := psql.Select("count(*)").From("products").Where(squirrel.Eq{column: id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count by %s: %w", column, err)
	}
	var n int
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		if isMissing(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("count by %s: %w", column, classify(err))
	}
	return n, nil
}

type lowStockRow struct {
	ProductID    string `db:"product_id"`
	SKU          string `db:"sku"`
	Name         string `db:"name"`
	StockCurrent int64  `db:"stock_current"`
	StockMin     int64  `db:"stock_min"`
	CategoryName string `db:"category_name"`
	SupplierName string `db:"supplier_name"`
}

// ListLowStock devuelve los productos activos bajo el mínimo, el más deficitario primero.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]repository.LowStockRow, error) {
	const query = `
		SELECT p.id::text AS product_id, p.sku, p.name, p.stock_current, p.stock_min,
		       COALESCE(c.name, '') AS category_name, COALESCE(s.name, '') AS supplier_name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE p.is_active AND p.stock_current < p.stock_min
		ORDER BY (p.stock_current - p.stock_min) ASC, p.sku ASC`
	var rows []lowStockRow
	if err := pgxscan.Select(ctx, r.q, &rows, query); err != nil {
		return nil, fmt.Errorf("list low stock: %w", classify(err))
	}
	out := make([]repository.LowStockRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.LowStockRow(row))
	}
	return out, nil
}

type stockSummaryRow struct {
	TotalProducts   int             `db:"total_products"`
	TotalStockValue decimal.Decimal `db:"total_stock_value"`
	LowStockCount   int             `db:"low_stock_count"`
	OutOfStockCount int             `db:"out_of_stock_count"`
}

// GetStockSummary agrega los productos activos en una sola pasada.
func (r *ProductRepo) GetStockSummary(ctx context.Context) (repository.StockSummary, error) {
	const query = `
		SELECT count(*) AS total_products,
		       COALESCE(sum(stock_current * cost), 0) AS total_stock_value,
		       count(*) FILTER (WHERE stock_current > 0 AND stock_current < stock_min) AS low_stock_count,
		       count(*) FILTER (WHERE stock_current = 0) AS out_of_stock_count
		FROM products
		WHERE is_active`
	var row stockSummaryRow
	if err := pgxscan.Get(ctx, r.q, &row, query); err != nil {
		return repository.StockSummary{}, fmt.Errorf("stock summary: %w", classify(err))
	}
	return repository.StockSummary(row), nil
}
