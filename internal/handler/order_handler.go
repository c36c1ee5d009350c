package handler

import (
	"encoding/json"
	"net/http"

	"vendora/internal/model"
	"vendora/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

func orderID(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid order ID format", logger)
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body", h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles PUT /api/orders/{id}/cancel requests.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid request body", h.logger)
		return
	}

	order, err := h.service.CancelOrder(r.Context(), id, req.Note)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Deliver handles PUT /api/orders/{id}/deliver requests.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// PartiallyDeliver handles PUT /api/orders/{id}/partially-delivered/{vendorId}.
func (h *OrderHandler) PartiallyDeliver(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r, h.logger)
	if !ok {
		return
	}

	vendorID := chi.URLParam(r, "vendorId")
	if vendorID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidInput, "vendor ID is required", h.logger)
		return
	}

	order, err := h.service.MarkPartiallyDelivered(r.Context(), id, vendorID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListByCustomer handles GET /api/orders/customer/{customerId} requests.
func (h *OrderHandler) ListByCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByCustomer(r.Context(), chi.URLParam(r, "customerId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// ListByVendor handles GET /api/orders/vendor/{vendorId} requests.
func (h *OrderHandler) ListByVendor(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByVendor(r.Context(), chi.URLParam(r, "vendorId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	writeJSON(w, http.StatusOK, orders)
}

// PendingForProduct handles GET /api/orders/product/{productId}/pending.
func (h *OrderHandler) PendingForProduct(w http.ResponseWriter, r *http.Request) {
	pending, err := h.service.HasPendingOrdersForProduct(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"hasPendingOrders": pending})
}
