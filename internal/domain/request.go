package domain

import "time"

// RequestLine — позиция заявки: обещанное к возврату количество товара.
type RequestLine struct {
	ProductID string
	Qty       int64
}

// Request — отложенная заявка, погашаемая частями. Каждое погашение
// возвращает количество на склад и уменьшает позицию; заявка без позиций
// удаляется целиком.
type Request struct {
	ID    string
	Date  time.Time
	Lines []RequestLine
}

// ValidateInvariants проверяет наличие позиций и корректность количеств.
func (r *Request) ValidateInvariants() []error {
	var errs []error

	if len(r.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	seen := make(map[string]struct{}, len(r.Lines))
	for _, line := range r.Lines {
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

// Line возвращает позицию заявки по товару.
func (r *Request) Line(productID string) (RequestLine, bool) {
	for _, line := range r.Lines {
		if line.ProductID == productID {
			return line, true
		}
	}
	return RequestLine{}, false
}
