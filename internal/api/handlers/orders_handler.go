package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listing-studio/engine/internal/api/types"
	"github.com/listing-studio/engine/internal/services"
)

// OrdersHandler takes leads posted by published landings. The body is stored as sent.
// Listing is scoped to the project owning the landing.
type OrdersHandler struct {
	orders   services.OrderService
	defaults Defaults
}

func NewOrdersHandler(orders services.OrderService, d Defaults) *OrdersHandler {
	return &OrdersHandler{orders: orders, defaults: d}
}

func (h *OrdersHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req types.OrderRequest
	if !decodeBody(w, r, nil, &req) {
		return
	}
	_, err := h.orders.SubmitOrder(r.Context(), chi.URLParam(r, "landingId"), services.OrderInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, types.OKResponse{OK: true})
}

func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.orders.ListOrders(r.Context(),
		h.defaults.user(r.URL.Query().Get("userId")),
		chi.URLParam(r, "id"),
		chi.URLParam(r, "landingId"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: int64(len(items))}})
}
