package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Products.Create(ctx, domain.Product{ID: "p1", Name: "bolt", PriceMinor: 100, Stock: 5})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		p, err := r.Products.Get(ctx, "p1")
		if err != nil {
			return err
		}
		if p.Stock != 5 {
			t.Errorf("expected stock 5, got %d", p.Stock)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Products.Create(ctx, domain.Product{ID: "p1", Name: "bolt", PriceMinor: 100, Stock: 5})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if _, err := r.Products.AdjustStock(ctx, "p1", -3); err != nil {
			return err
		}
		if err := r.Orders.Create(ctx, domain.Order{ID: "o1", Direction: domain.DirectionIncoming}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	_ = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		p, err := r.Products.Get(ctx, "p1")
		if err != nil {
			return err
		}
		if p.Stock != 5 {
			t.Errorf("expected stock restored to 5, got %d", p.Stock)
		}
		if _, err := r.Orders.Get(ctx, "o1"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Errorf("expected order rolled back, got %v", err)
		}
		return nil
	})
}

func TestProductRepositoryNameUniqueness(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if err := r.Products.Create(ctx, domain.Product{ID: "p1", Name: "bolt", PriceMinor: 100}); err != nil {
			return err
		}
		return r.Products.Create(ctx, domain.Product{ID: "p2", Name: "bolt", PriceMinor: 200})
	})
	if !errors.Is(err, domain.ErrProductNameTaken) {
		t.Fatalf("expected ErrProductNameTaken, got %v", err)
	}

	// Откат затронул и первую вставку: операция атомарна целиком.
	_ = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if _, err := r.Products.Get(ctx, "p1"); !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("expected first insert rolled back, got %v", err)
		}
		return nil
	})
}

func TestProductRepositorySaveRenameConflict(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if err := r.Products.Create(ctx, domain.Product{ID: "p1", Name: "bolt", PriceMinor: 100}); err != nil {
			return err
		}
		return r.Products.Create(ctx, domain.Product{ID: "p2", Name: "nut", PriceMinor: 100})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Products.Save(ctx, domain.Product{ID: "p2", Name: "bolt", PriceMinor: 100})
	})
	if !errors.Is(err, domain.ErrProductNameTaken) {
		t.Fatalf("expected ErrProductNameTaken on rename, got %v", err)
	}
}

func TestOrderRepositoryListFiltersByDirection(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if err := r.Orders.Create(ctx, domain.Order{ID: "o1", Direction: domain.DirectionIncoming}); err != nil {
			return err
		}
		return r.Orders.Create(ctx, domain.Order{ID: "o2", Direction: domain.DirectionOutgoing})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		all, err := r.Orders.List(ctx, nil)
		if err != nil {
			return err
		}
		if len(all) != 2 {
			t.Errorf("expected 2 orders, got %d", len(all))
		}

		incoming := domain.DirectionIncoming
		filtered, err := r.Orders.List(ctx, &incoming)
		if err != nil {
			return err
		}
		if len(filtered) != 1 || filtered[0].ID != "o1" {
			t.Errorf("expected only o1, got %+v", filtered)
		}
		return nil
	})
}

func TestRequestRepositoryLineOperations(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		return r.Requests.Create(ctx, domain.Request{
			ID: "r1",
			Lines: []domain.RequestLine{
				{ProductID: "p1", Qty: 2},
				{ProductID: "p2", Qty: 3},
			},
		})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if err := r.Requests.SaveLine(ctx, "r1", domain.RequestLine{ProductID: "p1", Qty: 1}); err != nil {
			t.Fatalf("save line: %v", err)
		}
		if err := r.Requests.DeleteLine(ctx, "r1", "p2"); err != nil {
			t.Fatalf("delete line: %v", err)
		}

		lines, err := r.Requests.Lines(ctx, "r1")
		if err != nil {
			return err
		}
		if len(lines) != 1 || lines[0].ProductID != "p1" || lines[0].Qty != 1 {
			t.Errorf("unexpected lines: %+v", lines)
		}

		var lineErr *domain.LineNotFoundError
		err = r.Requests.SaveLine(ctx, "r1", domain.RequestLine{ProductID: "p9", Qty: 1})
		if !errors.As(err, &lineErr) {
			t.Errorf("expected LineNotFoundError, got %v", err)
		}
		return nil
	})
}

func TestRepositoriesReturnNotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	_ = store.WithinTx(ctx, func(ctx context.Context, r domain.Repos) error {
		if _, err := r.Products.Get(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("products.Get: expected ErrProductNotFound, got %v", err)
		}
		if err := r.Products.Delete(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("products.Delete: expected ErrProductNotFound, got %v", err)
		}
		if _, err := r.Orders.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Errorf("orders.Get: expected ErrOrderNotFound, got %v", err)
		}
		if err := r.Orders.Delete(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
			t.Errorf("orders.Delete: expected ErrOrderNotFound, got %v", err)
		}
		if _, err := r.Requests.Get(ctx, "missing"); !errors.Is(err, domain.ErrRequestNotFound) {
			t.Errorf("requests.Get: expected ErrRequestNotFound, got %v", err)
		}
		if err := r.Requests.Delete(ctx, "missing"); !errors.Is(err, domain.ErrRequestNotFound) {
			t.Errorf("requests.Delete: expected ErrRequestNotFound, got %v", err)
		}
		return nil
	})
}
