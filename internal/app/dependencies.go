package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/metrics"
	"github.com/vladislavdragonenkov/ims/internal/service/catalog"
	"github.com/vladislavdragonenkov/ims/internal/service/orders"
	"github.com/vladislavdragonenkov/ims/internal/service/requests"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Store    domain.Store
	Catalog  *catalog.Service
	Orders   *orders.Service
	Requests *requests.Service
	Metrics  *metrics.StockMetrics
	Logger   *log.Entry
}

// NewDependencies собирает зависимости поверх хранилища в памяти.
// Используется в тестах и при запуске без PostgreSQL.
func NewDependencies(logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	store := memory.NewStore()
	m := metrics.NewStockMetrics()
	return &Dependencies{
		Store:    store,
		Catalog:  catalog.NewService(store, logger.WithField("layer", "catalog")),
		Orders:   orders.NewService(store, logger.WithField("layer", "orders"), m, nil),
		Requests: requests.NewService(store, logger.WithField("layer", "requests"), m, nil),
		Metrics:  m,
		Logger:   logger,
	}
}
