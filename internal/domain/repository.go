package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
// AdjustStock не запрещает уход остатка в минус: предварительные проверки
// выполняют движки.
type ProductRepository interface {
	// Create сохраняет новую карточку. Возвращает ErrProductNameTaken при конфликте имени.
	Create(ctx context.Context, p Product) error
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id string) (Product, error)
	// List возвращает все товары каталога.
	List(ctx context.Context) ([]Product, error)
	// Save перезаписывает существующую карточку.
	Save(ctx context.Context, p Product) error
	// Delete удаляет карточку или возвращает ErrProductNotFound.
	Delete(ctx context.Context, id string) error
	// AdjustStock прибавляет delta (возможно отрицательную) к остатку.
	AdjustStock(ctx context.Context, id string, delta int64) (Product, error)
}

// OrderRepository описывает требования к хранилищу заказов и их позиций.
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями.
	Create(ctx context.Context, o Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	// List возвращает заказы с позициями; direction задаёт необязательный фильтр.
	List(ctx context.Context, direction *Direction) ([]Order, error)
	// Save перезаписывает шапку заказа и полностью заменяет его позиции.
	Save(ctx context.Context, o Order) error
	// Delete удаляет заказ и его позиции без влияния на остатки.
	Delete(ctx context.Context, id string) error
}

// RequestRepository описывает требования к хранилищу заявок и их позиций.
type RequestRepository interface {
	// Create сохраняет заявку вместе с позициями.
	Create(ctx context.Context, r Request) error
	// Get возвращает заявку с позициями или ErrRequestNotFound.
	Get(ctx context.Context, id string) (Request, error)
	// ListPending возвращает все непогашенные заявки с позициями.
	ListPending(ctx context.Context) ([]Request, error)
	// SaveLine обновляет количество в позиции заявки.
	SaveLine(ctx context.Context, requestID string, line RequestLine) error
	// DeleteLine удаляет позицию заявки.
	DeleteLine(ctx context.Context, requestID, productID string) error
	// Lines возвращает оставшиеся позиции заявки.
	Lines(ctx context.Context, requestID string) ([]RequestLine, error)
	// Delete удаляет заявку вместе с позициями.
	Delete(ctx context.Context, id string) error
}

// Repos — набор репозиториев, привязанных к одной атомарной операции.
type Repos struct {
	Products ProductRepository
	Orders   OrderRepository
	Requests RequestRepository
}

// Store предоставляет атомарную границу для логических операций движков:
// fn выполняется целиком либо не оставляет следов. Postgres-реализация
// использует транзакцию БД, in-memory — снимок состояния.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
}
