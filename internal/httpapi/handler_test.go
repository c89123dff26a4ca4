package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ims/internal/service/catalog"
	"github.com/vladislavdragonenkov/ims/internal/service/orders"
	"github.com/vladislavdragonenkov/ims/internal/service/requests"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "httpapi-test")

	store := memory.NewStore()
	return NewHandler(
		catalog.NewService(store, entry),
		orders.NewService(store, entry, nil, nil),
		requests.NewService(store, entry, nil, nil),
		entry,
	).Routes()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(dst))
}

func createProduct(t *testing.T, handler http.Handler, name string, price, stock int64) string {
	t.Helper()
	w := doJSON(t, handler, http.MethodPost, "/products", map[string]any{
		"name": name, "price_minor": price, "stock": stock,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &resp)
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestProductLifecycle(t *testing.T) {
	handler := newTestHandler(t)

	id := createProduct(t, handler, "bolt", 150, 10)

	w := doJSON(t, handler, http.MethodGet, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Name       string `json:"name"`
		PriceMinor int64  `json:"price_minor"`
		Stock      int64  `json:"stock"`
	}
	decodeBody(t, w, &got)
	require.Equal(t, "bolt", got.Name)
	require.Equal(t, int64(150), got.PriceMinor)
	require.Equal(t, int64(10), got.Stock)

	w = doJSON(t, handler, http.MethodPut, "/products/"+id, map[string]any{"price_minor": 200})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, handler, http.MethodDelete, "/products/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, handler, http.MethodGet, "/products/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductValidationStatus(t *testing.T) {
	handler := newTestHandler(t)

	w := doJSON(t, handler, http.MethodPost, "/products", map[string]any{"name": "", "price_minor": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductNameConflictStatus(t *testing.T) {
	handler := newTestHandler(t)
	createProduct(t, handler, "bolt", 100, 1)

	w := doJSON(t, handler, http.MethodPost, "/products", map[string]any{"name": "bolt", "price_minor": 100})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderCreateAndStockEffect(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 5)

	w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
		"direction": "incoming",
		"lines":     []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order struct {
		ID         string `json:"id"`
		TotalMinor int64  `json:"total_minor"`
	}
	decodeBody(t, w, &order)
	require.Equal(t, int64(200), order.TotalMinor)

	w = doJSON(t, handler, http.MethodGet, "/products/"+productID, nil)
	var product struct {
		Stock int64 `json:"stock"`
	}
	decodeBody(t, w, &product)
	require.Equal(t, int64(3), product.Stock)
}

func TestOrderInsufficientStockStatus(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 1)

	w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
		"direction": "incoming",
		"lines":     []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	decodeBody(t, w, &resp)
	require.Contains(t, resp.Error, "insufficient stock")
}

func TestOrderInvalidDirectionStatus(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 5)

	w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
		"direction": "sideways",
		"lines":     []map[string]any{{"product_id": productID, "qty": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderUnknownProductStatus(t *testing.T) {
	handler := newTestHandler(t)

	w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
		"direction": "outgoing",
		"lines":     []map[string]any{{"product_id": "ghost", "qty": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderListDirectionFilter(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 100)

	for _, direction := range []string{"incoming", "outgoing"} {
		w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
			"direction": direction,
			"lines":     []map[string]any{{"product_id": productID, "qty": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, handler, http.MethodGet, "/orders?direction=outgoing", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		Direction string `json:"direction"`
	}
	decodeBody(t, w, &list)
	require.Len(t, list, 1)
	require.Equal(t, "outgoing", list[0].Direction)

	w = doJSON(t, handler, http.MethodGet, "/orders?direction=sideways", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderReturnStock(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 5)

	w := doJSON(t, handler, http.MethodPost, "/orders", map[string]any{
		"direction": "incoming",
		"lines":     []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &order)

	w = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/orders/%s/return", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 5 - 2 при создании, затем +2 возврата.
	w = doJSON(t, handler, http.MethodGet, "/products/"+productID, nil)
	var product struct {
		Stock int64 `json:"stock"`
	}
	decodeBody(t, w, &product)
	require.Equal(t, int64(5), product.Stock)

	w = doJSON(t, handler, http.MethodGet, "/orders/"+order.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestSettleFlow(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 0)

	w := doJSON(t, handler, http.MethodPost, "/requests", map[string]any{
		"lines": []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var request struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &request)

	w = doJSON(t, handler, http.MethodPut, "/requests/"+request.ID, map[string]any{
		"settlements": []map[string]any{{"product_id": productID, "qty": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &resp)
	require.Equal(t, "request updated", resp.Message)

	w = doJSON(t, handler, http.MethodPut, "/requests/"+request.ID, map[string]any{
		"settlements": []map[string]any{{"product_id": productID, "qty": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	require.Equal(t, "request deleted, no lines remaining", resp.Message)

	w = doJSON(t, handler, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []json.RawMessage
	decodeBody(t, w, &pending)
	require.Empty(t, pending)
}

func TestRequestSettleUnknownLineStatus(t *testing.T) {
	handler := newTestHandler(t)
	productID := createProduct(t, handler, "bolt", 100, 0)

	w := doJSON(t, handler, http.MethodPost, "/requests", map[string]any{
		"lines": []map[string]any{{"product_id": productID, "qty": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var request struct {
		ID string `json:"id"`
	}
	decodeBody(t, w, &request)

	w = doJSON(t, handler, http.MethodPut, "/requests/"+request.ID, map[string]any{
		"settlements": []map[string]any{{"product_id": "ghost", "qty": 1}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestNotFoundStatus(t *testing.T) {
	handler := newTestHandler(t)

	w := doJSON(t, handler, http.MethodDelete, "/requests/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, handler, http.MethodPut, "/requests/missing", map[string]any{
		"settlements": []map[string]any{{"product_id": "p", "qty": 1}},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}
