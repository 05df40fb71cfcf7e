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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

var supplierColumns = []string{
	"id::text AS id", "name", "contact_person", "email", "phone", "address", "is_active", "created_at", "updated_at",
}

type supplierRow struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	ContactPerson string    `db:"contact_person"`
	Email         string    `db:"email"`
	Phone         string    `db:"phone"`
	Address       string    `db:"address"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// SupplierRepo implementación de SupplierRepository sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	sql, args, err := psql.Insert("suppliers").
		Columns("id", "name", "contact_person", "email", "phone", "address", "is_active", "created_at", "updated_at").
		Values(s.ID, s.Name, s.ContactPerson, s.Email, s.Phone, s.Address, s.IsActive, s.CreatedAt, s.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert supplier: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert supplier: %w", classify(err))
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	sql, args, err := psql.Select(supplierColumns...).From("suppliers").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get supplier: %w", err)
	}
	var row supplierRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", classify(err))
	}
	s := entity.Supplier(row)
	return &s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	sql, args, err := psql.Update("suppliers").
		Set("name", s.Name).
		Set("contact_person", s.ContactPerson).
		Set("email", s.Email).
		Set("phone", s.Phone).
		Set("address", s.Address).
		Set("is_active", s.IsActive).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update supplier: %w", err)
	}
	cmd, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		if isMissing(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update supplier: %w", classify(err))
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SupplierRepo) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*entity.Supplier, error) {
	q := psql.Select(supplierColumns...).From("suppliers")
	if activeOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}
	return r.selectMany(ctx, q, limit, offset)
}

// SearchByName coincide por subcadena sin distinguir mayúsculas.
func (r *SupplierRepo) SearchByName(ctx context.Context, query string, limit int) ([]*entity.Supplier, error) {
	q := psql.Select(supplierColumns...).From("suppliers").Where(squirrel.ILike{"name": likePattern(query)})
	return r.selectMany(ctx, q, limit, 0)
}

func (r *SupplierRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder, limit, offset int) ([]*entity.Supplier, error) {
	q = q.OrderBy("name")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list suppliers: %w", err)
	}
	var rows []supplierRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", classify(err))
	}
	out := make([]*entity.Supplier, 0, len(rows))
	for _, row := range rows {
		s := entity.Supplier(row)
		out = append(out, &s)
	}
	return out, nil
}
