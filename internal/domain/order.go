package domain

import "time"

// Direction задаёт знак влияния заказа на складской остаток.
type Direction string

const (
	// DirectionIncoming — заказ списывает остаток и требует достаточного стока.
	// Семантика унаследована от исходной системы: "incoming" проверяется
	// против доступного остатка, как расходная операция.
	DirectionIncoming Direction = "incoming"
	// DirectionOutgoing — заказ увеличивает остаток без предварительных проверок.
	DirectionOutgoing Direction = "outgoing"
)

// ParseDirection разбирает строковое представление направления.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionIncoming, DirectionOutgoing:
		return Direction(s), nil
	default:
		return "", ErrDirectionInvalid
	}
}

// StockDelta возвращает знаковую поправку остатка для количества qty
// при проведении заказа в данном направлении.
func (d Direction) StockDelta(qty int64) int64 {
	if d == DirectionIncoming {
		return -qty
	}
	return qty
}

// ReversalDelta возвращает поправку, откатывающую ранее проведённый заказ.
func (d Direction) ReversalDelta(qty int64) int64 {
	return -d.StockDelta(qty)
}

// OrderLine — позиция заказа: товар и количество. Пара (заказ, товар) уникальна.
type OrderLine struct {
	ProductID string
	Qty       int64
}

// Order — подтверждённый складской документ с направлением и позициями.
type Order struct {
	ID   string
	Date time.Time
	// Direction определяет знак поправки остатка для каждой позиции.
	Direction Direction
	// TotalMinor — снимок суммы Σ цена×количество на момент создания/обновления.
	TotalMinor int64
	Lines      []OrderLine
}

// ValidateInvariants проверяет входные инварианты заказа: направление,
// наличие позиций, количество и уникальность товара в позициях.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if _, err := ParseDirection(string(o.Direction)); err != nil {
		errs = append(errs, err)
	}
	if len(o.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	seen := make(map[string]struct{}, len(o.Lines))
	for _, line := range o.Lines {
		if line.Qty < 1 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if _, dup := seen[line.ProductID]; dup {
			errs = append(errs, ErrLineDuplicated)
		}
		seen[line.ProductID] = struct{}{}
	}

	return errs
}
