package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/repository"
)

// ProductRepository implementa repository.ProductRepository en memoria.
type ProductRepository struct {
	store *Store
	tx    *state
}

// NewProductRepository construye el repositorio fuera de transacción.
func NewProductRepository(store *Store) *ProductRepository {
	return &ProductRepository{store: store}
}

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	return r.store.view(r.tx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.products {
			if other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		if p.StockCurrent < 0 {
			return domain.ErrInvalidInput
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a GetByID: dentro de Run el mutex del Store ya está tomado.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	var out *entity.Product
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.SKU == sku {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	return r.store.view(r.tx, func(st *state) error {
		current, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.products {
			if other.ID != p.ID && other.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		updated := *p
		updated.StockCurrent = current.StockCurrent
		updated.CreatedAt = current.CreatedAt
		st.products[p.ID] = updated
		return nil
	})
}

func (r *ProductRepository) UpdateStock(_ context.Context, id string, stock int64) error {
	if stock < 0 {
		return domain.ErrInvalidInput
	}
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockCurrent = stock
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	var (
		out   []*entity.Product
		total int
	)
	err := r.store.view(r.tx, func(st *state) error {
		matched := make([]entity.Product, 0, len(st.products))
		for _, p := range st.products {
			if matchProduct(p, f) {
				matched = append(matched, p)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].Name != matched[j].Name {
				return matched[i].Name < matched[j].Name
			}
			return matched[i].ID < matched[j].ID
		})
		total = len(matched)
		for _, p := range page(matched, limit, offset) {
			out = append(out, &p)
		}
		return nil
	})
	return out, total, err
}

func matchProduct(p entity.Product, f repository.ProductFilter) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.SupplierID != "" && p.SupplierID != f.SupplierID {
		return false
	}
	if f.IsActive != nil && p.IsActive != *f.IsActive {
		return false
	}
	if f.LowStockOnly && !p.IsLowStock() {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.SKU), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

func (r *ProductRepository) SoftDelete(_ context.Context, id string) error {
	return r.store.view(r.tx, func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.IsActive = false
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepository) CountByCategory(_ context.Context, categoryID string) (int, error) {
	n := 0
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.CategoryID == categoryID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepository) CountBySupplier(_ context.Context, supplierID string) (int, error) {
	n := 0
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if p.SupplierID == supplierID {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *ProductRepository) ListLowStock(_ context.Context) ([]repository.LowStockRow, error) {
	var rows []repository.LowStockRow
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if !p.IsActive || !p.IsLowStock() {
				continue
			}
			rows = append(rows, repository.LowStockRow{
				ProductID:    p.ID,
				SKU:          p.SKU,
				Name:         p.Name,
				StockCurrent: p.StockCurrent,
				StockMin:     p.StockMin,
				CategoryName: st.categories[p.CategoryID].Name,
				SupplierName: st.suppliers[p.SupplierID].Name,
			})
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		di, dj := rows[i].StockCurrent-rows[i].StockMin, rows[j].StockCurrent-rows[j].StockMin
		if di != dj {
			return di < dj
		}
		return rows[i].SKU < rows[j].SKU
	})
	return rows, err
}

func (r *ProductRepository) GetStockSummary(_ context.Context) (repository.StockSummary, error) {
	summary := repository.StockSummary{TotalStockValue: decimal.Zero}
	err := r.store.view(r.tx, func(st *state) error {
		for _, p := range st.products {
			if !p.IsActive {
				continue
			}
			summary.TotalProducts++
			summary.TotalStockValue = summary.TotalStockValue.Add(p.StockValue())
			switch {
			case p.StockCurrent == 0:
				summary.OutOfStockCount++
			case p.StockCurrent < p.StockMin:
				summary.LowStockCount++
			}
		}
		return nil
	})
	return summary, err
}

// page recorta items a la ventana [offset, offset+limit). limit <= 0 no limita.
func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	if offset > 0 {
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
