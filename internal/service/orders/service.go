package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
)

// Service — движок заказов. Каждая операция выполняется в одной атомарной
// границе Store: проверки, запись документа и поправки остатков либо
// применяются целиком, либо не оставляют следов.
type Service struct {
	store   domain.Store
	logger  *log.Entry
	metrics *metrics.StockMetrics
	events  *kafka.Producer // опциональный producer событий заказов
}

// NewService конструирует движок заказов. Metrics и events опциональны.
func NewService(store domain.Store, logger *log.Entry, m *metrics.StockMetrics, events *kafka.Producer) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Service{store: store, logger: logger, metrics: m, events: events}
}

// CreateOrder описывает входные данные нового заказа.
type CreateOrder struct {
	// Date документа; нулевое значение заменяется текущим временем.
	Date      time.Time
	Direction domain.Direction
	Lines     []domain.OrderLine
}

// UpdateOrder описывает полную замену содержимого заказа.
type UpdateOrder struct {
	// Date, если задана, перезаписывает дату документа.
	Date      *time.Time
	Direction domain.Direction
	Lines     []domain.OrderLine
}

// Create проводит новый заказ: проверяет ссылки и остатки, считает сумму,
// сохраняет документ и применяет поправки остатков.
//
// Направление incoming списывает остаток и требует stock >= qty по каждой
// позиции; outgoing увеличивает остаток без проверок.
func (s *Service) Create(ctx context.Context, input CreateOrder) (domain.Order, error) {
	start := time.Now()
	defer s.recordDuration("create", start)

	order := domain.Order{
		ID:        uuid.NewString(),
		Date:      input.Date,
		Direction: input.Direction,
		Lines:     input.Lines,
	}
	if order.Date.IsZero() {
		order.Date = time.Now().UTC()
	}

	if err := domain.NewValidationError(order.ValidateInvariants()); err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		products, err := s.resolveProducts(ctx, r, order.Lines)
		if err != nil {
			return err
		}

		if order.Direction == domain.DirectionIncoming {
			if err := s.checkStock(order.Lines, products); err != nil {
				return err
			}
		}

		order.TotalMinor = totalMinor(order.Lines, products)

		if err := r.Orders.Create(ctx, order); err != nil {
			return err
		}
		return s.applyStock(ctx, r, order.Direction, order.Lines)
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to create order")
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderRegistered(string(order.Direction))
	}
	s.publishEvent(kafka.EventTypeOrderRegistered, order)

	s.logger.WithFields(log.Fields{
		"order_id":  order.ID,
		"direction": order.Direction,
		"lines":     len(order.Lines),
	}).Info("order registered")
	return order, nil
}

// Get возвращает заказ с позициями.
func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	var order domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		var err error
		order, err = r.Orders.Get(ctx, id)
		return err
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List возвращает заказы с позициями; direction — необязательный фильтр.
func (s *Service) List(ctx context.Context, direction *domain.Direction) ([]domain.Order, error) {
	var result []domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		var err error
		result, err = r.Orders.List(ctx, direction)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return result, nil
}

// Update заменяет содержимое заказа: сначала полностью откатывает прежний
// эффект по старому направлению, затем проверяет новые позиции против уже
// восстановленных остатков и проводит их по новому направлению.
func (s *Service) Update(ctx context.Context, id string, input UpdateOrder) (domain.Order, error) {
	start := time.Now()
	defer s.recordDuration("update", start)

	replacement := domain.Order{ID: id, Direction: input.Direction, Lines: input.Lines}
	if err := domain.NewValidationError(replacement.ValidateInvariants()); err != nil {
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}

	var updated domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		existing, err := r.Orders.Get(ctx, id)
		if err != nil {
			return err
		}

		// Откат прежнего эффекта по направлению существующего заказа.
		for _, line := range existing.Lines {
			if _, err := r.Products.AdjustStock(ctx, line.ProductID, existing.Direction.ReversalDelta(line.Qty)); err != nil {
				return err
			}
		}

		products, err := s.resolveProducts(ctx, r, replacement.Lines)
		if err != nil {
			return err
		}

		// Валидация против уже восстановленных остатков, не против исходных.
		if replacement.Direction == domain.DirectionIncoming {
			if err := s.checkStock(replacement.Lines, products); err != nil {
				return err
			}
		}

		replacement.Date = existing.Date
		if input.Date != nil {
			replacement.Date = *input.Date
		}
		replacement.TotalMinor = totalMinor(replacement.Lines, products)

		if err := r.Orders.Save(ctx, replacement); err != nil {
			return err
		}
		if err := s.applyStock(ctx, r, replacement.Direction, replacement.Lines); err != nil {
			return err
		}

		updated, err = r.Orders.Get(ctx, id)
		return err
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("failed to update order")
		return domain.Order{}, fmt.Errorf("update order: %w", err)
	}

	s.publishEvent(kafka.EventTypeOrderUpdated, updated)
	s.logger.WithField("order_id", id).Info("order updated")
	return updated, nil
}

// Delete удаляет заказ, НЕ откатывая его влияние на остатки.
// Возврат остатков выполняет отдельная операция ReturnStock.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Orders.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	s.publishEvent(kafka.EventTypeOrderDeleted, domain.Order{ID: id})
	s.logger.WithField("order_id", id).Info("order deleted")
	return nil
}

// ReturnStock возвращает количество каждой позиции на склад безусловно,
// независимо от направления заказа, и удаляет сам заказ.
func (s *Service) ReturnStock(ctx context.Context, id string) error {
	start := time.Now()
	defer s.recordDuration("return_stock", start)

	var returned domain.Order
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		order, err := r.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		for _, line := range order.Lines {
			if _, err := r.Products.AdjustStock(ctx, line.ProductID, line.Qty); err != nil {
				return err
			}
		}
		returned = order
		return r.Orders.Delete(ctx, id)
	})
	if err != nil {
		s.logger.WithError(err).WithField("order_id", id).Error("failed to return stock")
		return fmt.Errorf("return order stock: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderReturned()
	}
	s.publishEvent(kafka.EventTypeOrderReturned, returned)
	s.logger.WithField("order_id", id).Info("order stock returned, order deleted")
	return nil
}

// resolveProducts загружает товары всех позиций; отсутствие любого из них —
// ошибка ссылки на несуществующий товар.
func (s *Service) resolveProducts(ctx context.Context, r domain.Repos, lines []domain.OrderLine) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(lines))
	for _, line := range lines {
		p, err := r.Products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, domain.ErrUnknownProduct
			}
			return nil, err
		}
		products[line.ProductID] = p
	}
	return products, nil
}

// checkStock проверяет достаточность остатка в порядке следования позиций;
// возвращается первое нарушение.
func (s *Service) checkStock(lines []domain.OrderLine, products map[string]domain.Product) error {
	for _, line := range lines {
		p := products[line.ProductID]
		if p.Stock < line.Qty {
			if s.metrics != nil {
				s.metrics.RecordStockRejection()
			}
			return &domain.InsufficientStockError{
				ProductID: p.ID,
				Product:   p.Name,
				Available: p.Stock,
				Requested: line.Qty,
			}
		}
	}
	return nil
}

func (s *Service) applyStock(ctx context.Context, r domain.Repos, direction domain.Direction, lines []domain.OrderLine) error {
	for _, line := range lines {
		if _, err := r.Products.AdjustStock(ctx, line.ProductID, direction.StockDelta(line.Qty)); err != nil {
			return err
		}
	}
	return nil
}

func totalMinor(lines []domain.OrderLine, products map[string]domain.Product) int64 {
	var total int64
	for _, line := range lines {
		total += products[line.ProductID].PriceMinor * line.Qty
	}
	return total
}

func (s *Service) recordDuration(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordOpDuration(op, time.Since(start))
	}
}

func (s *Service) publishEvent(eventType kafka.EventType, order domain.Order) {
	if s.events == nil {
		return
	}
	event := kafka.NewOrderEvent(eventType, order.ID, string(order.Direction), order.TotalMinor)
	if err := s.events.PublishEvent(kafka.TopicOrderEvents, order.ID, event); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to publish order event")
	}
}
