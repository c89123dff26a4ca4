package domain

import (
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	for _, raw := range []string{"incoming", "outgoing"} {
		direction, err := ParseDirection(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if string(direction) != raw {
			t.Errorf("expected %q, got %q", raw, direction)
		}
	}

	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrDirectionInvalid) {
		t.Errorf("expected ErrDirectionInvalid, got %v", err)
	}
}

func TestDirectionStockDelta(t *testing.T) {
	if got := DirectionIncoming.StockDelta(5); got != -5 {
		t.Errorf("incoming delta: expected -5, got %d", got)
	}
	if got := DirectionOutgoing.StockDelta(5); got != 5 {
		t.Errorf("outgoing delta: expected 5, got %d", got)
	}
	if got := DirectionIncoming.ReversalDelta(5); got != 5 {
		t.Errorf("incoming reversal: expected 5, got %d", got)
	}
	if got := DirectionOutgoing.ReversalDelta(5); got != -5 {
		t.Errorf("outgoing reversal: expected -5, got %d", got)
	}
}

func TestProductValidateInvariants(t *testing.T) {
	valid := Product{Name: "bolt", PriceMinor: 100, Stock: 0}
	if errs := valid.ValidateInvariants(); len(errs) != 0 {
		t.Errorf("expected no violations, got %v", errs)
	}

	invalid := Product{Name: "", PriceMinor: 0, Stock: -1}
	err := NewValidationError(invalid.ValidateInvariants())
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []error{ErrProductNameRequired, ErrProductPriceInvalid, ErrProductStockNegative} {
		if !errors.Is(err, want) {
			t.Errorf("expected violation %v in %v", want, err)
		}
	}
}

func TestProductUpdateApply(t *testing.T) {
	if !(ProductUpdate{}).Empty() {
		t.Error("zero update must be empty")
	}

	name := "nut"
	stock := int64(7)
	update := ProductUpdate{Name: &name, Stock: &stock}
	if update.Empty() {
		t.Error("update with fields must not be empty")
	}

	p := Product{Name: "bolt", PriceMinor: 100, Stock: 3, Description: "old"}
	p.Apply(update)

	if p.Name != "nut" || p.Stock != 7 {
		t.Errorf("update not applied: %+v", p)
	}
	if p.PriceMinor != 100 || p.Description != "old" {
		t.Errorf("untouched fields changed: %+v", p)
	}
}

func TestOrderValidateInvariants(t *testing.T) {
	valid := Order{
		Direction: DirectionIncoming,
		Lines:     []OrderLine{{ProductID: "p1", Qty: 1}, {ProductID: "p2", Qty: 2}},
	}
	if errs := valid.ValidateInvariants(); len(errs) != 0 {
		t.Errorf("expected no violations, got %v", errs)
	}

	invalid := Order{
		Direction: "sideways",
		Lines:     []OrderLine{{ProductID: "p1", Qty: 0}, {ProductID: "p1", Qty: 2}},
	}
	err := NewValidationError(invalid.ValidateInvariants())
	for _, want := range []error{ErrDirectionInvalid, ErrLineQtyInvalid, ErrLineDuplicated} {
		if !errors.Is(err, want) {
			t.Errorf("expected violation %v in %v", want, err)
		}
	}

	empty := Order{Direction: DirectionOutgoing}
	if err := NewValidationError(empty.ValidateInvariants()); !errors.Is(err, ErrLinesRequired) {
		t.Errorf("expected ErrLinesRequired, got %v", err)
	}
}

func TestRequestLineLookup(t *testing.T) {
	request := Request{Lines: []RequestLine{{ProductID: "p1", Qty: 2}}}

	line, ok := request.Line("p1")
	if !ok || line.Qty != 2 {
		t.Errorf("expected line p1 qty 2, got %+v ok=%v", line, ok)
	}

	if _, ok := request.Line("p2"); ok {
		t.Error("expected miss for unknown product")
	}
}

func TestIsNotFound(t *testing.T) {
	for _, err := range []error{ErrProductNotFound, ErrOrderNotFound, ErrRequestNotFound} {
		if !IsNotFound(err) {
			t.Errorf("expected IsNotFound for %v", err)
		}
	}
	if IsNotFound(ErrProductNameTaken) {
		t.Error("name conflict is not a not-found error")
	}
	if IsNotFound(nil) {
		t.Error("nil is not a not-found error")
	}
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ProductID: "p1", Product: "bolt", Available: 3, Requested: 5}
	want := `product "bolt" has insufficient stock: available 3, requested 5`
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
