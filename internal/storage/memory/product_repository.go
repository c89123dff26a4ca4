package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// productRepository — операции над товарами внутри одной атомарной операции
// Store; блокировку держит Store.WithinTx.
type productRepository struct {
	store *Store
}

func (r *productRepository) Create(_ context.Context, p domain.Product) error {
	for _, existing := range r.store.products {
		if existing.Name == p.Name {
			return domain.ErrProductNameTaken
		}
	}
	r.store.products[p.ID] = p
	return nil
}

func (r *productRepository) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *productRepository) Save(_ context.Context, p domain.Product) error {
	if _, ok := r.store.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	for id, existing := range r.store.products {
		if id != p.ID && existing.Name == p.Name {
			return domain.ErrProductNameTaken
		}
	}
	r.store.products[p.ID] = p
	return nil
}

func (r *productRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.store.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.store.products, id)
	return nil
}

func (r *productRepository) AdjustStock(_ context.Context, id string, delta int64) (domain.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	p.Stock += delta
	r.store.products[id] = p
	return p, nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
