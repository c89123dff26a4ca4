package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// Store — in-memory реализация domain.Store для локальной разработки и тестов.
// Мьютекс сериализует логические операции целиком; на время fn снимается
// снимок состояния, который восстанавливается при ошибке.
type Store struct {
	mu       sync.Mutex
	products map[string]domain.Product
	orders   map[string]domain.Order
	requests map[string]domain.Request
}

// NewStore возвращает пустое in-memory хранилище.
func NewStore() *Store {
	return &Store{
		products: make(map[string]domain.Product),
		orders:   make(map[string]domain.Order),
		requests: make(map[string]domain.Request),
	}
}

// WithinTx выполняет fn под общим мьютексом. Ошибка fn откатывает все
// изменения к состоянию на момент входа.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r domain.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	repos := domain.Repos{
		Products: &productRepository{store: s},
		Orders:   &orderRepository{store: s},
		Requests: &requestRepository{store: s},
	}

	if err := fn(ctx, repos); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type stateSnapshot struct {
	products map[string]domain.Product
	orders   map[string]domain.Order
	requests map[string]domain.Request
}

func (s *Store) snapshot() stateSnapshot {
	snap := stateSnapshot{
		products: make(map[string]domain.Product, len(s.products)),
		orders:   make(map[string]domain.Order, len(s.orders)),
		requests: make(map[string]domain.Request, len(s.requests)),
	}
	for id, p := range s.products {
		snap.products[id] = p
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for id, r := range s.requests {
		snap.requests[id] = cloneRequest(r)
	}
	return snap
}

func (s *Store) restore(snap stateSnapshot) {
	s.products = snap.products
	s.orders = snap.orders
	s.requests = snap.requests
}

// Копии защищают внутренние срезы позиций от мутаций извне.
func cloneOrder(o domain.Order) domain.Order {
	lines := make([]domain.OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	o.Lines = lines
	return o
}

func cloneRequest(r domain.Request) domain.Request {
	lines := make([]domain.RequestLine, len(r.Lines))
	copy(lines, r.Lines)
	r.Lines = lines
	return r
}

var _ domain.Store = (*Store)(nil)
