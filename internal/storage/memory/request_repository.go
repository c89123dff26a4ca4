package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

// requestRepository — операции над заявками внутри одной атомарной операции Store.
type requestRepository struct {
	store *Store
}

func (r *requestRepository) Create(_ context.Context, req domain.Request) error {
	r.store.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *requestRepository) Get(_ context.Context, id string) (domain.Request, error) {
	req, ok := r.store.requests[id]
	if !ok {
		return domain.Request{}, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *requestRepository) ListPending(_ context.Context) ([]domain.Request, error) {
	result := make([]domain.Request, 0, len(r.store.requests))
	for _, req := range r.store.requests {
		result = append(result, cloneRequest(req))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *requestRepository) SaveLine(_ context.Context, requestID string, line domain.RequestLine) error {
	req, ok := r.store.requests[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	for i := range req.Lines {
		if req.Lines[i].ProductID == line.ProductID {
			req.Lines[i].Qty = line.Qty
			r.store.requests[requestID] = req
			return nil
		}
	}
	return &domain.LineNotFoundError{ProductID: line.ProductID}
}

func (r *requestRepository) DeleteLine(_ context.Context, requestID, productID string) error {
	req, ok := r.store.requests[requestID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	for i := range req.Lines {
		if req.Lines[i].ProductID == productID {
			req.Lines = append(req.Lines[:i], req.Lines[i+1:]...)
			r.store.requests[requestID] = req
			return nil
		}
	}
	return &domain.LineNotFoundError{ProductID: productID}
}

func (r *requestRepository) Lines(_ context.Context, requestID string) ([]domain.RequestLine, error) {
	req, ok := r.store.requests[requestID]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	lines := make([]domain.RequestLine, len(req.Lines))
	copy(lines, req.Lines)
	return lines, nil
}

func (r *requestRepository) Delete(_ context.Context, id string) error {
	if _, ok := r.store.requests[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.store.requests, id)
	return nil
}

var _ domain.RequestRepository = (*requestRepository)(nil)
