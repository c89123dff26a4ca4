package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("failed to encode response body")
	}
}

// writeError транслирует ошибку движка в HTTP-статус. Неопознанные ошибки
// не раскрываются клиенту и уходят в лог как 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		stockErr *domain.InsufficientStockError
		lineErr  *domain.LineNotFoundError
		validErr *domain.ValidationError
	)

	switch {
	case domain.IsNotFound(err):
		h.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &stockErr):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: stockErr.Error()})
	case errors.Is(err, domain.ErrProductNameTaken):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: domain.ErrProductNameTaken.Error()})
	case errors.As(err, &validErr),
		errors.As(err, &lineErr),
		errors.Is(err, domain.ErrUnknownProduct),
		errors.Is(err, domain.ErrDirectionInvalid),
		errors.Is(err, domain.ErrEmptyUpdate):
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
