package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/service/catalog"
	"github.com/vladislavdragonenkov/ims/internal/service/orders"
	"github.com/vladislavdragonenkov/ims/internal/service/requests"
)

// Handler — REST-слой над движками. Трансляция ошибок в HTTP-статусы
// живёт здесь; движки про HTTP ничего не знают.
type Handler struct {
	catalog  *catalog.Service
	orders   *orders.Service
	requests *requests.Service
	logger   *log.Entry
}

// NewHandler конструирует REST-слой с зависимостями.
func NewHandler(c *catalog.Service, o *orders.Service, r *requests.Service, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	return &Handler{catalog: c, orders: o, requests: r, logger: logger}
}

// Routes собирает маршруты REST API.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("PUT /products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /products/{id}", h.deleteProduct)

	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PUT /orders/{id}", h.updateOrder)
	mux.HandleFunc("DELETE /orders/{id}", h.deleteOrder)
	mux.HandleFunc("POST /orders/{id}/return", h.returnOrderStock)

	mux.HandleFunc("POST /requests", h.createRequest)
	mux.HandleFunc("GET /requests", h.listRequests)
	mux.HandleFunc("PUT /requests/{id}", h.settleRequest)
	mux.HandleFunc("DELETE /requests/{id}", h.deleteRequest)

	return mux
}

type productPayload struct {
	Name        string `json:"name"`
	PriceMinor  int64  `json:"price_minor"`
	Stock       int64  `json:"stock"`
	Description string `json:"description"`
}

type productUpdatePayload struct {
	Name        *string `json:"name"`
	PriceMinor  *int64  `json:"price_minor"`
	Stock       *int64  `json:"stock"`
	Description *string `json:"description"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PriceMinor  int64     `json:"price_minor"`
	Stock       int64     `json:"stock"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type linePayload struct {
	ProductID string `json:"product_id"`
	Qty       int64  `json:"qty"`
}

type orderPayload struct {
	Date      *time.Time    `json:"date"`
	Direction string        `json:"direction"`
	Lines     []linePayload `json:"lines"`
}

type orderResponse struct {
	ID         string        `json:"id"`
	Date       time.Time     `json:"date"`
	Direction  string        `json:"direction"`
	TotalMinor int64         `json:"total_minor"`
	Lines      []linePayload `json:"lines"`
}

type requestPayload struct {
	Lines []linePayload `json:"lines"`
}

type requestResponse struct {
	ID    string        `json:"id"`
	Date  time.Time     `json:"date"`
	Lines []linePayload `json:"lines"`
}

type settlePayload struct {
	Settlements []linePayload `json:"settlements"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !h.decode(w, r, &payload) {
		return
	}

	product, err := h.catalog.Create(r.Context(), catalog.CreateProduct{
		Name:        payload.Name,
		PriceMinor:  payload.PriceMinor,
		Stock:       payload.Stock,
		Description: payload.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := make([]productResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var payload productUpdatePayload
	if !h.decode(w, r, &payload) {
		return
	}

	product, err := h.catalog.Update(r.Context(), r.PathValue("id"), domain.ProductUpdate{
		Name:        payload.Name,
		PriceMinor:  payload.PriceMinor,
		Stock:       payload.Stock,
		Description: payload.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "product deleted"})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if !h.decode(w, r, &payload) {
		return
	}

	input := orders.CreateOrder{
		Direction: domain.Direction(payload.Direction),
		Lines:     toOrderLines(payload.Lines),
	}
	if payload.Date != nil {
		input.Date = *payload.Date
	}

	order, err := h.orders.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter *domain.Direction
	if raw := r.URL.Query().Get("direction"); raw != "" {
		direction, err := domain.ParseDirection(raw)
		if err != nil {
			h.writeError(w, err)
			return
		}
		filter = &direction
	}

	list, err := h.orders.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := make([]orderResponse, 0, len(list))
	for _, o := range list {
		result = append(result, toOrderResponse(o))
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if !h.decode(w, r, &payload) {
		return
	}

	order, err := h.orders.Update(r.Context(), r.PathValue("id"), orders.UpdateOrder{
		Date:      payload.Date,
		Direction: domain.Direction(payload.Direction),
		Lines:     toOrderLines(payload.Lines),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "order deleted"})
}

func (h *Handler) returnOrderStock(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.ReturnStock(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "order stock returned, order deleted"})
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var payload requestPayload
	if !h.decode(w, r, &payload) {
		return
	}

	request, err := h.requests.Create(r.Context(), toRequestLines(payload.Lines))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toRequestResponse(request))
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	list, err := h.requests.ListPending(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	result := make([]requestResponse, 0, len(list))
	for _, req := range list {
		result = append(result, toRequestResponse(req))
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) settleRequest(w http.ResponseWriter, r *http.Request) {
	var payload settlePayload
	if !h.decode(w, r, &payload) {
		return
	}

	settlements := make([]requests.Settlement, 0, len(payload.Settlements))
	for _, s := range payload.Settlements {
		settlements = append(settlements, requests.Settlement{ProductID: s.ProductID, Qty: s.Qty})
	}

	result, err := h.requests.Settle(r.Context(), r.PathValue("id"), settlements)
	if err != nil {
		h.writeError(w, err)
		return
	}

	message := "request updated"
	if result.RequestDeleted {
		message = "request deleted, no lines remaining"
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

func (h *Handler) deleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.requests.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "request deleted"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		PriceMinor:  p.PriceMinor,
		Stock:       p.Stock,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]linePayload, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, linePayload{ProductID: line.ProductID, Qty: line.Qty})
	}
	return orderResponse{
		ID:         o.ID,
		Date:       o.Date,
		Direction:  string(o.Direction),
		TotalMinor: o.TotalMinor,
		Lines:      lines,
	}
}

func toRequestResponse(r domain.Request) requestResponse {
	lines := make([]linePayload, 0, len(r.Lines))
	for _, line := range r.Lines {
		lines = append(lines, linePayload{ProductID: line.ProductID, Qty: line.Qty})
	}
	return requestResponse{ID: r.ID, Date: r.Date, Lines: lines}
}

func toOrderLines(lines []linePayload) []domain.OrderLine {
	result := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		result = append(result, domain.OrderLine{ProductID: line.ProductID, Qty: line.Qty})
	}
	return result
}

func toRequestLines(lines []linePayload) []domain.RequestLine {
	result := make([]domain.RequestLine, 0, len(lines))
	for _, line := range lines {
		result = append(result, domain.RequestLine{ProductID: line.ProductID, Qty: line.Qty})
	}
	return result
}
