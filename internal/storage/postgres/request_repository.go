package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// requestRepository — PostgreSQL-реализация domain.RequestRepository.
type requestRepository struct {
	q querier
}

func (r *requestRepository) Create(ctx context.Context, req domain.Request) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO requests (id, request_date)
		VALUES ($1,$2)
	`, req.ID, req.Date)
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}

	for _, line := range req.Lines {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO request_lines (request_id, product_id, qty)
			VALUES ($1,$2,$3)
		`, req.ID, line.ProductID, line.Qty); err != nil {
			return fmt.Errorf("insert request line: %w", err)
		}
	}
	return nil
}

func (r *requestRepository) Get(ctx context.Context, id string) (domain.Request, error) {
	var req domain.Request
	err := r.q.QueryRowContext(ctx, `
		SELECT id, request_date
		FROM requests
		WHERE id = $1
	`, id).Scan(&req.ID, &req.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Request{}, domain.ErrRequestNotFound
		}
		return domain.Request{}, fmt.Errorf("select request: %w", err)
	}

	lines, err := r.Lines(ctx, req.ID)
	if err != nil {
		return domain.Request{}, err
	}
	req.Lines = lines
	return req, nil
}

func (r *requestRepository) ListPending(ctx context.Context) ([]domain.Request, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, request_date
		FROM requests
		ORDER BY request_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	requests := make([]domain.Request, 0)
	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(&req.ID, &req.Date); err != nil {
			return nil, fmt.Errorf("scan request row: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request rows: %w", err)
	}

	for i := range requests {
		lines, err := r.Lines(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Lines = lines
	}
	return requests, nil
}

func (r *requestRepository) SaveLine(ctx context.Context, requestID string, line domain.RequestLine) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE request_lines
		SET qty = $1
		WHERE request_id = $2 AND product_id = $3
	`, line.Qty, requestID, line.ProductID)
	if err != nil {
		return fmt.Errorf("update request line: %w", err)
	}
	return requireAffected(res, &domain.LineNotFoundError{ProductID: line.ProductID})
}

func (r *requestRepository) DeleteLine(ctx context.Context, requestID, productID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM request_lines
		WHERE request_id = $1 AND product_id = $2
	`, requestID, productID)
	if err != nil {
		return fmt.Errorf("delete request line: %w", err)
	}
	return requireAffected(res, &domain.LineNotFoundError{ProductID: productID})
}

func (r *requestRepository) Lines(ctx context.Context, requestID string) ([]domain.RequestLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT product_id, qty
		FROM request_lines
		WHERE request_id = $1
		ORDER BY product_id ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.RequestLine, 0)
	for rows.Next() {
		var line domain.RequestLine
		if err := rows.Scan(&line.ProductID, &line.Qty); err != nil {
			return nil, fmt.Errorf("scan request line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request lines: %w", err)
	}
	return lines, nil
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireAffected(res, domain.ErrRequestNotFound)
}

var _ domain.RequestRepository = (*requestRepository)(nil)
