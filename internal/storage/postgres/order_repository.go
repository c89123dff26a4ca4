package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// orderRepository — PostgreSQL-реализация domain.OrderRepository.
// Позиции живут в order_lines и удаляются каскадно вместе с заказом.
type orderRepository struct {
	q querier
}

func (r *orderRepository) Create(ctx context.Context, o domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (id, order_date, direction, total_minor)
		VALUES ($1,$2,$3,$4)
	`, o.ID, o.Date, string(o.Direction), o.TotalMinor)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertLines(ctx, o.ID, o.Lines)
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	var (
		o         domain.Order
		direction string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, order_date, direction, total_minor
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.Date, &direction, &o.TotalMinor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	o.Direction = domain.Direction(direction)

	lines, err := r.loadLines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	o.Lines = lines
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, direction *domain.Direction) ([]domain.Order, error) {
	query := `
		SELECT id, order_date, direction, total_minor
		FROM orders
	`

	var (
		rows *sql.Rows
		err  error
	)
	if direction != nil {
		rows, err = r.q.QueryContext(ctx, query+` WHERE direction = $1 ORDER BY order_date ASC, id ASC`, string(*direction))
	} else {
		rows, err = r.q.QueryContext(ctx, query+` ORDER BY order_date ASC, id ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o   domain.Order
			dir string
		)
		if err := rows.Scan(&o.ID, &o.Date, &dir, &o.TotalMinor); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.Direction = domain.Direction(dir)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *orderRepository) Save(ctx context.Context, o domain.Order) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET order_date = $1, direction = $2, total_minor = $3
		WHERE id = $4
	`, o.Date, string(o.Direction), o.TotalMinor, o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if err := requireAffected(res, domain.ErrOrderNotFound); err != nil {
		return err
	}

	// Полная замена позиций: прежние строки удаляются, новые вставляются.
	if _, err := r.q.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return r.insertLines(ctx, o.ID, o.Lines)
}

func (r *orderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireAffected(res, domain.ErrOrderNotFound)
}

func (r *orderRepository) insertLines(ctx context.Context, orderID string, lines []domain.OrderLine) error {
	for _, line := range lines {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, qty)
			VALUES ($1,$2,$3)
		`, orderID, line.ProductID, line.Qty); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT product_id, qty
		FROM order_lines
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.OrderLine, 0)
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ProductID, &line.Qty); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
