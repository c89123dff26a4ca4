package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// Service — каталог товаров. Владеет карточками и их валидацией;
// остатки меняют движки заказов и заявок через общий Store.
type Service struct {
	store  domain.Store
	logger *log.Entry
}

// NewService конструирует каталог с зависимостями.
func NewService(store domain.Store, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{store: store, logger: logger}
}

// CreateProduct описывает входные данные новой карточки товара.
type CreateProduct struct {
	Name        string
	PriceMinor  int64
	Stock       int64
	Description string
}

// Create валидирует и сохраняет новую карточку товара.
func (s *Service) Create(ctx context.Context, input CreateProduct) (domain.Product, error) {
	product := domain.Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		PriceMinor:  input.PriceMinor,
		Stock:       input.Stock,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := domain.NewValidationError(product.ValidateInvariants()); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Products.Create(ctx, product)
	})
	if err != nil {
		s.logger.WithError(err).WithField("name", input.Name).Error("failed to create product")
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("product created")
	return product, nil
}

// Get возвращает карточку товара по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		var err error
		product, err = r.Products.Get(ctx, id)
		return err
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// List возвращает все карточки каталога.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		var err error
		products, err = r.Products.List(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Update накладывает частичное обновление на карточку товара.
func (s *Service) Update(ctx context.Context, id string, update domain.ProductUpdate) (domain.Product, error) {
	if update.Empty() {
		return domain.Product{}, fmt.Errorf("update product: %w", domain.ErrEmptyUpdate)
	}

	var product domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		current, err := r.Products.Get(ctx, id)
		if err != nil {
			return err
		}
		current.Apply(update)
		if err := domain.NewValidationError(current.ValidateInvariants()); err != nil {
			return err
		}
		if err := r.Products.Save(ctx, current); err != nil {
			return err
		}
		product = current
		return nil
	})
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	s.logger.WithField("product_id", id).Info("product updated")
	return product, nil
}

// Delete удаляет карточку товара.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Products.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}
