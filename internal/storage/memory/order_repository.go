package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// orderRepository — операции над заказами внутри одной атомарной операции Store.
type orderRepository struct {
	store *Store
}

func (r *orderRepository) Create(_ context.Context, o domain.Order) error {
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepository) Get(_ context.Context, id string) (domain.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepository) List(_ context.Context, direction *domain.Direction) ([]domain.Order, error) {
	result := make([]domain.Order, 0, len(r.store.orders))
	for _, o := range r.store.orders {
		if direction != nil && o.Direction != *direction {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *orderRepository) Save(_ context.Context, o domain.Order) error {
	if _, ok := r.store.orders[o.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	r.store.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.store.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.store.orders, id)
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
