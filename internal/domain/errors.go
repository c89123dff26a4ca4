package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProductNotFound возвращается, если товар не найден в хранилище.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrRequestNotFound возвращается, если заявка не найдена в хранилище.
	ErrRequestNotFound = errors.New("request not found")
	// ErrUnknownProduct — хотя бы одна позиция ссылается на несуществующий товар.
	ErrUnknownProduct = errors.New("one or more referenced products do not exist")
	// ErrProductNameTaken — нарушение уникальности имени товара.
	ErrProductNameTaken = errors.New("product name is already taken")

	// Ошибка отсутствующего имени товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка неположительной цены товара.
	ErrProductPriceInvalid = errors.New("product price must be greater than zero")
	// Ошибка отрицательного остатка при создании/обновлении карточки.
	ErrProductStockNegative = errors.New("product stock must be non-negative")
	// Ошибка отсутствия позиций в документе.
	ErrLinesRequired = errors.New("document must contain at least one line")
	// Ошибка некорректного количества в позиции (< 1).
	ErrLineQtyInvalid = errors.New("line qty must be at least 1")
	// Ошибка повторения товара в позициях одного документа.
	ErrLineDuplicated = errors.New("line product is duplicated")
	// Ошибка неизвестного направления заказа.
	ErrDirectionInvalid = errors.New("direction must be incoming or outgoing")
	// Ошибка пустого частичного обновления.
	ErrEmptyUpdate = errors.New("update must contain at least one field")
)

// ValidationError агрегирует нарушения инвариантов одной операции.
type ValidationError struct {
	Violations []error
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap отдаёт нарушения для errors.Is по отдельным sentinel-ошибкам.
func (e *ValidationError) Unwrap() []error {
	return e.Violations
}

// NewValidationError собирает ValidationError или возвращает nil, если нарушений нет.
func NewValidationError(violations []error) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// InsufficientStockError — запрошенное количество превышает доступный остаток.
type InsufficientStockError struct {
	ProductID string
	Product   string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q has insufficient stock: available %d, requested %d",
		e.Product, e.Available, e.Requested)
}

// LineNotFoundError — погашение ссылается на товар, которого нет среди позиций заявки.
type LineNotFoundError struct {
	ProductID string
}

func (e *LineNotFoundError) Error() string {
	return fmt.Sprintf("product %s is not part of the request", e.ProductID)
}

// IsNotFound проверяет, что ошибка — отсутствие товара, заказа или заявки.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
