package domain

import "time"

// Product — карточка товара каталога. Stock — текущий складской остаток,
// которым управляют движки заказов и заявок; цена хранится в минорных
// единицах валюты.
type Product struct {
	ID          string
	Name        string
	PriceMinor  int64
	Stock       int64
	Description string
	CreatedAt   time.Time
}

// ValidateInvariants проверяет инварианты карточки: имя обязательно,
// цена положительна, остаток неотрицателен.
func (p *Product) ValidateInvariants() []error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, ErrProductNameRequired)
	}
	if p.PriceMinor <= 0 {
		errs = append(errs, ErrProductPriceInvalid)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrProductStockNegative)
	}
	return errs
}

// ProductUpdate — частичное обновление карточки: nil-поле остаётся без изменений.
type ProductUpdate struct {
	Name        *string
	PriceMinor  *int64
	Stock       *int64
	Description *string
}

// Empty сообщает, что обновление не содержит ни одного поля.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.PriceMinor == nil && u.Stock == nil && u.Description == nil
}

// Apply накладывает заданные поля обновления на карточку.
func (p *Product) Apply(u ProductUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.PriceMinor != nil {
		p.PriceMinor = *u.PriceMinor
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
}
