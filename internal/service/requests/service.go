package requests

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

// Service — движок отложенных заявок. Заявка резервирует количества только
// логически: при создании остатки не меняются, при погашении количество
// возвращается на склад и позиция уменьшается.
type Service struct {
	store   domain.Store
	logger  *log.Entry
	metrics *metrics.StockMetrics
	events  *kafka.Producer // опциональный producer событий заявок
}

// NewService конструирует движок заявок. Metrics и events опциональны.
func NewService(store domain.Store, logger *log.Entry, m *metrics.StockMetrics, events *kafka.Producer) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "requests")
	}
	return &Service{store: store, logger: logger, metrics: m, events: events}
}

// Settlement — отчёт о частичном погашении: товар и погашенное количество.
type Settlement struct {
	ProductID string
	Qty       int64
}

// SettleResult описывает исход погашения заявки.
type SettleResult struct {
	// RequestDeleted — заявка удалена, потому что позиций не осталось.
	RequestDeleted bool
	// LinesLeft — количество позиций, оставшихся после погашения.
	LinesLeft int
}

// Create сохраняет новую заявку с текущей датой. Все товары позиций должны
// существовать; остатки при создании не меняются.
func (s *Service) Create(ctx context.Context, lines []domain.RequestLine) (domain.Request, error) {
	request := domain.Request{
		ID:    uuid.NewString(),
		Date:  time.Now().UTC(),
		Lines: lines,
	}

	if err := domain.NewValidationError(request.ValidateInvariants()); err != nil {
		return domain.Request{}, fmt.Errorf("create request: %w", err)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		for _, line := range lines {
			if _, err := r.Products.Get(ctx, line.ProductID); err != nil {
				if errors.Is(err, domain.ErrProductNotFound) {
					return domain.ErrUnknownProduct
				}
				return err
			}
		}
		return r.Requests.Create(ctx, request)
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to create request")
		return domain.Request{}, fmt.Errorf("create request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRequestCreated()
	}
	s.publishEvent(kafka.EventTypeRequestCreated, request.ID, len(request.Lines))

	s.logger.WithFields(log.Fields{
		"request_id": request.ID,
		"lines":      len(request.Lines),
	}).Info("request created")
	return request, nil
}

// ListPending возвращает все непогашенные заявки с позициями.
func (s *Service) ListPending(ctx context.Context) ([]domain.Request, error) {
	var result []domain.Request
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		var err error
		result, err = r.Requests.ListPending(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return result, nil
}

// Delete удаляет заявку вместе с позициями.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Requests.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	s.logger.WithField("request_id", id).Info("request deleted")
	return nil
}

// Settle применяет погашения к заявке: каждая запись уменьшает
// соответствующую позицию и возвращает погашенное количество на склад.
// Позиция, дошедшая до нуля, удаляется; заявка без позиций удаляется целиком.
func (s *Service) Settle(ctx context.Context, id string, settlements []Settlement) (SettleResult, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOpDuration("settle", time.Since(start))
		}
	}()

	var result SettleResult
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		request, err := r.Requests.Get(ctx, id)
		if err != nil {
			return err
		}

		for _, settlement := range settlements {
			line, ok := request.Line(settlement.ProductID)
			if !ok {
				return &domain.LineNotFoundError{ProductID: settlement.ProductID}
			}

			// Отрицательный остаток позиции не охраняется: погашение сверх
			// заявленного схлопывает позицию.
			remaining := line.Qty - settlement.Qty
			if remaining > 0 {
				if err := r.Requests.SaveLine(ctx, id, domain.RequestLine{
					ProductID: settlement.ProductID,
					Qty:       remaining,
				}); err != nil {
					return err
				}
			} else {
				if err := r.Requests.DeleteLine(ctx, id, settlement.ProductID); err != nil {
					return err
				}
			}

			if _, err := r.Products.AdjustStock(ctx, settlement.ProductID, settlement.Qty); err != nil {
				return err
			}

			if s.metrics != nil {
				s.metrics.RecordSettlement()
			}
			// Обновляем локальный снимок заявки для последующих записей.
			request, err = r.Requests.Get(ctx, id)
			if err != nil {
				return err
			}
		}

		remaining, err := r.Requests.Lines(ctx, id)
		if err != nil {
			return err
		}
		result.LinesLeft = len(remaining)
		if len(remaining) == 0 {
			result.RequestDeleted = true
			return r.Requests.Delete(ctx, id)
		}
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("request_id", id).Error("failed to settle request")
		return SettleResult{}, fmt.Errorf("settle request: %w", err)
	}

	if result.RequestDeleted {
		if s.metrics != nil {
			s.metrics.RecordRequestClosed()
		}
		s.publishEvent(kafka.EventTypeRequestClosed, id, 0)
		s.logger.WithField("request_id", id).Info("request fully settled and removed")
	} else {
		s.publishEvent(kafka.EventTypeRequestSettled, id, result.LinesLeft)
		s.logger.WithFields(log.Fields{
			"request_id": id,
			"lines_left": result.LinesLeft,
		}).Info("request settled")
	}
	return result, nil
}

func (s *Service) publishEvent(eventType kafka.EventType, requestID string, linesLeft int) {
	if s.events == nil {
		return
	}
	event := kafka.NewRequestEvent(eventType, requestID, linesLeft)
	if err := s.events.PublishEvent(kafka.TopicRequestEvents, requestID, event); err != nil {
		s.logger.WithError(err).WithField("request_id", requestID).Warn("failed to publish request event")
	}
}
