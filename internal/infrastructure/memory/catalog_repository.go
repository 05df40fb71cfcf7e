package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/inventario-ledger-api/internal/domain"
	"github.com/jhoicas/inventario-ledger-api/internal/domain/entity"
)

// CategoryRepository implementa repository.CategoryRepository en memoria.
type CategoryRepository struct {
	store *Store
}

// NewCategoryRepository construye el repositorio.
func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

func (r *CategoryRepository) Create(_ context.Context, c *entity.Category) error {
	return r.store.view(nil, func(st *state) error {
		for _, other := range st.categories {
			if strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepository) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.store.view(nil, func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepository) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.store.view(nil, func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, name) {
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepository) Update(_ context.Context, c *entity.Category) error {
	return r.store.view(nil, func(st *state) error {
		current, ok := st.categories[c.ID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.categories {
			if other.ID != c.ID && strings.EqualFold(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		updated := *c
		updated.CreatedAt = current.CreatedAt
		st.categories[c.ID] = updated
		return nil
	})
}

func (r *CategoryRepository) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.store.view(nil, func(st *state) error {
		all := make([]entity.Category, 0, len(st.categories))
		for _, c := range st.categories {
			all = append(all, c)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		for _, c := range page(all, limit, offset) {
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepository) Delete(_ context.Context, id string) error {
	return r.store.view(nil, func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.ErrNotFound
		}
		for _, p := range st.products {
			if p.CategoryID == id {
				return domain.ErrHasDependents
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// SupplierRepository implementa repository.SupplierRepository en memoria.
type SupplierRepository struct {
	store *Store
}

// NewSupplierRepository construye el repositorio.
func NewSupplierRepository(store *Store) *SupplierRepository {
	return &SupplierRepository{store: store}
}

func (r *SupplierRepository) Create(_ context.Context, s *entity.Supplier) error {
	return r.store.view(nil, func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return domain.ErrDuplicate
		}
		st.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepository) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.store.view(nil, func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SupplierRepository) Update(_ context.Context, s *entity.Supplier) error {
	return r.store.view(nil, func(st *state) error {
		current, ok := st.suppliers[s.ID]
		if !ok {
			return domain.ErrNotFound
		}
		updated := *s
		updated.CreatedAt = current.CreatedAt
		st.suppliers[s.ID] = updated
		return nil
	})
}

func (r *SupplierRepository) List(_ context.Context, activeOnly bool, limit, offset int) ([]*entity.Supplier, error) {
	return r.filter(func(s entity.Supplier) bool { return !activeOnly || s.IsActive }, limit, offset)
}

func (r *SupplierRepository) SearchByName(_ context.Context, query string, limit int) ([]*entity.Supplier, error) {
	q := strings.ToLower(query)
	return r.filter(func(s entity.Supplier) bool { return strings.Contains(strings.ToLower(s.Name), q) }, limit, 0)
}

func (r *SupplierRepository) filter(keep func(entity.Supplier) bool, limit, offset int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.store.view(nil, func(st *state) error {
		matched := make([]entity.Supplier, 0, len(st.suppliers))
		for _, s := range st.suppliers {
			if keep(s) {
				matched = append(matched, s)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
		for _, s := range page(matched, limit, offset) {
			out = append(out, &s)
		}
		return nil
	})
	return out, err
}
